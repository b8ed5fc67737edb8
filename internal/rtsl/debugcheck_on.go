//go:build debugchecks

package rtsl

import (
	"runtime/debug"

	log "github.com/sirupsen/logrus"
)

// stackDumpObserver is the debugchecks-build implementation of
// NegativeDurationObserver: it logs the calling goroutine's stack at Warn
// level. Never linked into a release build.
type stackDumpObserver struct{}

func (stackDumpObserver) ObserveNegativeDuration(cpu int, window string, raw int64) {
	log.Warnf("rtsl: negative duration %dns closing %q window on cpu %d\n%s", raw, window, cpu, debug.Stack())
}

// NewDebugObserver returns the stack-dumping observer. Only present in
// binaries built with the debugchecks tag.
func NewDebugObserver() NegativeDurationObserver {
	return stackDumpObserver{}
}
