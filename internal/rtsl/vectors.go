package rtsl

import "github.com/samber/lo"

// VectorNames is the platform-specific list of per-vector APIC entry
// probes (excluding the two generic/per-vector IRQ entries, which
// VectorMode selects between). Keeping this as a plain slice, rather than
// hard-coding it into probeNames, lets a deployment bind a subset — e.g.
// skip thermal/error/spurious APIC vectors on a platform that doesn't
// raise them.
var VectorNames = []string{
	"local_timer_entry",
	"thermal_apic_entry",
	"deferred_error_apic_entry",
	"threshold_apic_entry",
	"call_function_single_entry",
	"call_function_entry",
	"reschedule_entry",
	"irq_work_entry",
	"x86_platform_ipi_entry",
	"error_apic_entry",
	"spurious_apic_entry",
}

// FilterVectorNames keeps only the probe names present in want, preserving
// VectorNames's order; an empty want means "all of them". Unknown names in
// want are silently dropped, mirroring enabledIrqTypes's bitmask filter.
func FilterVectorNames(want []string) []string {
	if len(want) == 0 {
		return append([]string(nil), VectorNames...)
	}

	return lo.Filter(VectorNames, func(name string, _ int) bool {
		return lo.Contains(want, name)
	})
}
