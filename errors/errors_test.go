package errors

import (
	stdlib "errors"
	"fmt"
	"strings"
	"testing"

	"github.com/pkg/errors"
)

func TestCause(t *testing.T) {
	std := stdlib.New("this is a stdlib error")

	cases := map[string]struct {
		err  error
		root error
	}{
		"Errors are self-causing": {
			err:  ErrNotFound,
			root: ErrNotFound,
		},
		"Wrap reveals root cause": {
			err:  Wrap(ErrNotFound, "foo"),
			root: ErrNotFound,
		},
		"Cause works for stderr as root": {
			err:  Wrap(std, "Some helpful text"),
			root: std,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if got := errors.Cause(tc.err); got != tc.root {
				t.Fatal("unexpected result")
			}
		})
	}
}

func TestErrorIs(t *testing.T) {
	cases := map[string]struct {
		a      *Error
		b      error
		wantIs bool
	}{
		"instance of the same error": {
			a:      ErrNotFound,
			b:      ErrNotFound,
			wantIs: true,
		},
		"two different coded errors": {
			a:      ErrNotFound,
			b:      ErrModel,
			wantIs: false,
		},
		"successful comparison to a wrapped error": {
			a:      ErrNotFound,
			b:      errors.Wrap(ErrNotFound, "gone"),
			wantIs: true,
		},
		"unsuccessful comparison to a wrapped error": {
			a:      ErrNotFound,
			b:      errors.Wrap(ErrOverflow, "too big"),
			wantIs: false,
		},
		"not equal to stdlib error": {
			a:      ErrNotFound,
			b:      fmt.Errorf("stdlib error"),
			wantIs: false,
		},
		"nil is nil": {
			a:      nil,
			b:      nil,
			wantIs: true,
		},
		"nil is any error nil": {
			a:      nil,
			b:      (*wrappedError)(nil),
			wantIs: true,
		},
		"nil is not not-nil": {
			a:      nil,
			b:      ErrNotFound,
			wantIs: false,
		},
		"holding period is not insufficient yield": {
			a:      ErrHoldingPeriodNotMet,
			b:      Wrap(ErrInsufficientYield, "claim"),
			wantIs: false,
		},
		"group matches when any member matches": {
			a:      ErrHoldingPeriodNotMet,
			b:      Append(ErrInput, Wrap(ErrHoldingPeriodNotMet, "claim")),
			wantIs: true,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if got := tc.a.Is(tc.b); got != tc.wantIs {
				t.Fatalf("unexpected result - wanted %t, got %t", tc.wantIs, got)
			}
		})
	}
}

func TestRegisterDuplicatedCode(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("registering a code twice must panic")
		}
	}()
	Register(ErrNotFound.Code(), "again")
}

func TestCode(t *testing.T) {
	cases := map[string]struct {
		err  error
		want uint32
	}{
		"nil":           {err: nil, want: 0},
		"root":          {err: ErrPaused, want: 111},
		"wrapped twice": {err: Wrap(Wrap(ErrReentrant, "inner"), "outer"), want: 110},
		"stdlib":        {err: stdlib.New("boom"), want: 1},
		"field":         {err: Field("BaseBps", ErrInvalidParameter, "too big"), want: 101},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if got := Code(tc.err); got != tc.want {
				t.Fatalf("want %d, got %d", tc.want, got)
			}
		})
	}
}

func TestRedact(t *testing.T) {
	if err := Redact(Wrap(ErrNotAuthorized, "caller")); !ErrNotAuthorized.Is(err) {
		t.Fatalf("registered error must not be redacted: %v", err)
	}
	if err := Redact(stdlib.New("secret path")); err.Error() != internalLog {
		t.Fatalf("internal error must be redacted: %v", err)
	}
	var panicked error
	func() {
		defer Recover(&panicked)
		panic("oh no")
	}()
	if !ErrPanic.Is(panicked) {
		t.Fatalf("want panic error, got %v", panicked)
	}
	if err := Redact(panicked); err.Error() != internalLog {
		t.Fatalf("panic must be redacted: %v", err)
	}
}

func TestWrapFormatting(t *testing.T) {
	err := Wrapf(ErrInsufficientYield, "want %d", 10)
	if got := err.Error(); got != "want 10: insufficient yield" {
		t.Fatalf("unexpected message: %q", got)
	}
	if got := fmt.Sprintf("%v", err); !strings.HasPrefix(got, "want 10: insufficient yield [") {
		t.Fatalf("compressed frame missing: %q", got)
	}
	if Wrap(nil, "nothing") != nil {
		t.Fatal("wrapping nil must return nil")
	}
}
