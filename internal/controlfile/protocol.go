// Package controlfile implements the byte-level protocol of the debugfs
// enable file: one file whose read returns a single hex digit plus a
// newline, and whose write accepts 1-3 bytes that mean enable (with
// implicit reset if already enabled), disable, or invalid-argument.
package controlfile

import "errors"

// ErrInvalidArgument is returned for a write whose leading byte isn't '0'
// or '1', or whose length exceeds the 3-byte limit real debugfs files
// enforce to reject accidental multi-value writes.
var ErrInvalidArgument = errors.New("controlfile: invalid argument")

// ErrBadAddress mirrors EFAULT: a zero-length write, as if the copy from
// user space faulted before any byte arrived.
var ErrBadAddress = errors.New("controlfile: bad address")

// Action is the effect a write to the control file requests.
type Action int

const (
	// ActionNone is never returned alongside a nil error; it exists so
	// the zero Action isn't mistaken for a real request.
	ActionNone Action = iota
	// ActionEnable requests enable, resetting state first if already
	// enabled.
	ActionEnable
	// ActionDisable requests disable.
	ActionDisable
)

// ParseWrite decodes the bytes written to the control file into the
// Action they request, or the error the write should fail with.
func ParseWrite(data []byte) (Action, error) {
	if len(data) == 0 {
		return ActionNone, ErrBadAddress
	}
	if len(data) > 3 {
		return ActionNone, ErrInvalidArgument
	}
	switch data[0] {
	case '1':
		return ActionEnable, nil
	case '0':
		return ActionDisable, nil
	default:
		return ActionNone, ErrInvalidArgument
	}
}

// FormatRead renders the current enable state the way a read of the
// control file returns it: one hex digit and a trailing newline.
func FormatRead(enabled bool) []byte {
	if enabled {
		return []byte("1\n")
	}
	return []byte("0\n")
}
