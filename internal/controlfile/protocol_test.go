package controlfile

import (
	"errors"
	"testing"
)

func TestParseWriteEnable(t *testing.T) {
	action, err := ParseWrite([]byte("1"))
	if err != nil {
		t.Fatalf("ParseWrite(\"1\"): %v", err)
	}
	if action != ActionEnable {
		t.Errorf("action = %v, want ActionEnable", action)
	}
}

func TestParseWriteDisable(t *testing.T) {
	action, err := ParseWrite([]byte("0"))
	if err != nil {
		t.Fatalf("ParseWrite(\"0\"): %v", err)
	}
	if action != ActionDisable {
		t.Errorf("action = %v, want ActionDisable", action)
	}
}

func TestParseWriteWithTrailingNewline(t *testing.T) {
	action, err := ParseWrite([]byte("1\n"))
	if err != nil {
		t.Fatalf("ParseWrite(\"1\\n\"): %v", err)
	}
	if action != ActionEnable {
		t.Errorf("action = %v, want ActionEnable", action)
	}
}

func TestParseWriteInvalidCharacter(t *testing.T) {
	_, err := ParseWrite([]byte("x"))
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestParseWriteTooLong(t *testing.T) {
	_, err := ParseWrite([]byte("1\n\n\n"))
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestParseWriteEmpty(t *testing.T) {
	_, err := ParseWrite(nil)
	if !errors.Is(err, ErrBadAddress) {
		t.Errorf("err = %v, want ErrBadAddress", err)
	}
}

func TestFormatRead(t *testing.T) {
	if got := string(FormatRead(true)); got != "1\n" {
		t.Errorf("FormatRead(true) = %q, want %q", got, "1\n")
	}
	if got := string(FormatRead(false)); got != "0\n" {
		t.Errorf("FormatRead(false) = %q, want %q", got, "0\n")
	}
}
