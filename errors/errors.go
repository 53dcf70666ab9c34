package errors

import (
	"fmt"
	"reflect"

	"github.com/pkg/errors"
)

// Generic root errors. Codes below 100 are reserved for errors that are not
// specific to the yield distribution domain.
var (
	// ErrUnauthorized is used whenever a request without sufficient
	// authorization is handled.
	ErrUnauthorized = Register(2, "unauthorized")

	// ErrNotFound is used when a requested operation cannot be completed
	// due to missing data.
	ErrNotFound = Register(3, "not found")

	// ErrInput stands for general input problems indication.
	ErrInput = Register(4, "invalid input")

	// ErrModel is returned whenever a stored model is invalid and cannot
	// be used (ie. persisted).
	ErrModel = Register(5, "invalid model")

	// ErrHuman is returned when application reaches a code path which
	// should not ever be reached if the code was written as expected.
	ErrHuman = Register(6, "coding error")

	// ErrEmpty is returned when a value fails a not empty assertion.
	ErrEmpty = Register(7, "value is empty")

	// ErrState is returned when an object is in invalid state.
	ErrState = Register(8, "invalid state")

	// ErrType is returned whenever the type is not what was expected.
	ErrType = Register(9, "invalid type")

	// ErrAmount stands for invalid amount of whatever.
	ErrAmount = Register(10, "invalid amount")

	// ErrOverflow is returned when a computation cannot be completed
	// because the result value exceeds the type.
	ErrOverflow = Register(11, "an operation cannot be completed due to value overflow")

	// ErrDatabase is returned when a database operation fails.
	ErrDatabase = Register(12, "database")

	// ErrIteratorDone is returned by an iterator when there are no more
	// values to return.
	ErrIteratorDone = Register(13, "iterator done")

	// ErrPanic is only set when we recover from a panic, so we know to
	// redact potentially sensitive system info.
	ErrPanic = Register(111222, "panic")
)

// Yield distribution root errors. Each of them is a distinct rejection
// reason of a whole operation.
var (
	// ErrZeroAddress is returned when an address argument is empty.
	ErrZeroAddress = Register(100, "zero address")

	// ErrInvalidParameter is returned for malformed configuration input.
	ErrInvalidParameter = Register(101, "invalid parameter")

	// ErrNotAuthorized is returned when the caller lacks the required
	// role or is neither the participant nor its owning pool.
	ErrNotAuthorized = Register(102, "not authorized")

	// ErrInsufficientYield is returned when a claim or an emergency
	// distribution exceeds the relevant pool accumulator.
	ErrInsufficientYield = Register(103, "insufficient yield")

	// ErrHoldingPeriodNotMet is returned when a user claim is attempted
	// before the holding period since the last deposit elapsed.
	ErrHoldingPeriodNotMet = Register(104, "holding period not met")

	// ErrInvalidShiftRange is returned when the maximum allocation is
	// configured below the base allocation.
	ErrInvalidShiftRange = Register(105, "invalid shift range")

	// ErrUnauthorizedYieldSource is returned when a source that is not
	// registered for the credited category calls AddYield.
	ErrUnauthorizedYieldSource = Register(106, "unauthorized yield source")

	// ErrYieldAmountMismatch is returned when the declared and the
	// actually transferred yield amounts diverge beyond tolerance.
	ErrYieldAmountMismatch = Register(107, "yield amount mismatch")

	// ErrArrayLengthMismatch is returned by batched operations when the
	// argument lists differ in length.
	ErrArrayLengthMismatch = Register(108, "array length mismatch")

	// ErrBatchSizeTooLarge is returned by batched operations that exceed
	// the maximum batch size.
	ErrBatchSizeTooLarge = Register(109, "batch size too large")

	// ErrReentrant is returned when an operation is called while another
	// operation of the same engine is still in flight.
	ErrReentrant = Register(110, "reentrant call")

	// ErrPaused is returned when a state changing operation is called
	// while the engine is paused.
	ErrPaused = Register(111, "paused")
)

// Register returns an error instance that should be used as the base for
// creating error instances during runtime.
//
// This function ensures that no error code is used twice. Attempt to reuse
// an error code results in panic.
//
// Use this function only during a program startup phase.
func Register(code uint32, description string) *Error {
	if e := getUsed(code); e != nil {
		panic(fmt.Sprintf("error with code %d is already registered: %q", code, e.desc))
	}
	err := &Error{
		code: code,
		desc: description,
	}
	setUsed(err)
	return err
}

// usedCodes is keeping track of used codes to ensure their uniqueness. No two
// error instances should share the same error code.
var usedCodes = map[uint32]*Error{}

func getUsed(code uint32) *Error {
	return usedCodes[code]
}

func setUsed(err *Error) {
	usedCodes[err.code] = err
}

// Error represents a root error.
//
// Root errors are used to categorize issues. Each instance created during
// the runtime should wrap one of the declared root errors. This allows error
// tests and returning all errors to the client in a safe manner.
type Error struct {
	code uint32
	desc string
}

func (e Error) Error() string {
	return e.desc
}

// Code returns the code registered for this root error.
func (e Error) Code() uint32 {
	return e.code
}

// New returns a new error. Returned instance is having the root cause set to
// this error. Below two lines are equal
//   e.New("my description")
//   Wrap(e, "my description")
func (e *Error) New(description string) error {
	return Wrap(e, description)
}

// Newf is basically New with formatting capabilities.
func (e *Error) Newf(description string, args ...interface{}) error {
	return e.New(fmt.Sprintf(description, args...))
}

// Is check if given error instance is of a given kind/type. This involves
// unwrapping given error using the Cause method if available.
func (e *Error) Is(err error) bool {
	// Reflect usage is necessary to correctly compare with
	// a nil implementation of an error.
	if e == nil {
		return isNilErr(err)
	}

	for {
		if err == e {
			return true
		}

		// If this is a collection of errors, this function must return
		// true if at least one from the group match.
		if u, ok := err.(unpacker); ok {
			for _, er := range u.Unpack() {
				if e.Is(er) {
					return true
				}
			}
		}

		if c, ok := err.(causer); ok {
			err = c.Cause()
		} else {
			return false
		}
	}
}

// isNilErr returns true if value represented by the given error is nil.
//
// Most of the time a simple == check is enough. There is a very narrowed
// spectrum of cases (mostly in tests) where a more sophisticated check is
// required.
func isNilErr(err error) bool {
	if err == nil {
		return true
	}
	if val := reflect.ValueOf(err); val.Kind() == reflect.Ptr {
		return val.IsNil()
	}
	return false
}

// Wrap extends given error with an additional information.
//
// If err is nil, this returns nil, avoiding the need for an if statement when
// wrapping a error returned at the end of a function
func Wrap(err error, description string) error {
	if err == nil {
		return nil
	}

	// If this error does not carry the stacktrace information yet, attach
	// one. This should be done only once per error at the lowest frame
	// possible (most inner wrap).
	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}

	return &wrappedError{
		parent: err,
		msg:    description,
	}
}

// Wrapf extends given error with an additional information.
//
// This function works like Wrap function with additional funtionality of
// formatting the input as specified.
func Wrapf(err error, format string, args ...interface{}) error {
	desc := fmt.Sprintf(format, args...)
	return Wrap(err, desc)
}

type wrappedError struct {
	// This error layer description.
	msg string
	// The underlying error that triggered this one.
	parent error
}

func (e *wrappedError) Error() string {
	return fmt.Sprintf("%s: %s", e.msg, e.parent.Error())
}

func (e *wrappedError) Cause() error {
	return e.parent
}

// Recover captures a panic and stop its propagation. If panic happens it is
// transformed into a ErrPanic instance and assigned to given error. Call this
// function using defer in order to work as expected.
func Recover(err *error) {
	if r := recover(); r != nil {
		*err = Wrapf(ErrPanic, "%v", r)
	}
}

// WithType is a helper to augment an error with a corresponding type message.
func WithType(err error, obj interface{}) error {
	return Wrap(err, fmt.Sprintf("%T", obj))
}

// Code returns the code of the root error that given error wraps. Errors
// that do not wrap any registered root error are internal and return code 1.
// A nil error returns 0.
func Code(err error) uint32 {
	if isNilErr(err) {
		return 0
	}
	for {
		if e, ok := err.(*Error); ok {
			return e.code
		}
		if c, ok := err.(causer); ok {
			err = c.Cause()
		} else {
			return internalCode
		}
	}
}

const (
	internalCode uint32 = 1
	internalLog         = "internal error"
)

// Redact replace all errors that do not wrap a registered root error with a
// generic internal error instance. This function is supposed to hide
// implementation details errors before they are returned to a remote client.
func Redact(err error) error {
	if isNilErr(err) {
		return nil
	}
	if ErrPanic.Is(err) || Code(err) == internalCode {
		return errors.New(internalLog)
	}
	return err
}

// causer is an interface implemented by an error that supports wrapping. Use
// it to test if an error wraps another error instance.
type causer interface {
	Cause() error
}

// unpacker is implemented by errors that group other errors.
type unpacker interface {
	Unpack() []error
}
