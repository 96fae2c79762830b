package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorCodes(t *testing.T) {
	err := Error(EINVALID, "units per em must be positive, is %d", 0)
	if Code(err) != EINVALID {
		t.Errorf("expected code %d, have %d", EINVALID, Code(err))
	}
	if UserMessage(err) != "units per em must be positive, is 0" {
		t.Errorf("unexpected user message: %q", UserMessage(err))
	}
}

func TestWrappedErrors(t *testing.T) {
	cause := errors.New("offset overflow")
	err := WrapError(cause, ELIMIT, "GPOS table too large")
	if !errors.Is(err, cause) {
		t.Errorf("expected wrapped error to unwrap to its cause")
	}
	outer := fmt.Errorf("compile: %w", err)
	if Code(outer) != ELIMIT {
		t.Errorf("expected code %d through wrapping, have %d", ELIMIT, Code(outer))
	}
	if Code(nil) != NOERROR || UserMessage(nil) != "" {
		t.Errorf("nil error should map to NOERROR and empty message")
	}
	if Code(cause) != EINTERNAL {
		t.Errorf("plain errors should map to EINTERNAL")
	}
}
