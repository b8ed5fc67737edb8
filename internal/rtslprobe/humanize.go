package rtslprobe

import "fmt"

// humanDuration renders a nanosecond duration the way rtsl's event
// messages do: ms/us/ns, whichever is coarsest without truncating to zero.
func humanDuration(ns uint64) string {
	switch {
	case ns > 1000*1000:
		return fmt.Sprintf("%d ms", ns/(1000*1000))
	case ns > 1000:
		return fmt.Sprintf("%d us", ns/1000)
	default:
		return fmt.Sprintf("%d ns", ns)
	}
}
