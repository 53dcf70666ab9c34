package errors

import (
	"fmt"
	"strings"
)

// Append clubs together all provided errors. Nil values are ignored.
//
// If none or only a single non nil value is provided, that value is returned
// as it is. Otherwise a group of errors is returned. A group is flattened, so
// appending to a group extends it instead of nesting.
func Append(errs ...error) error {
	var res multiErr
	for _, err := range errs {
		if isNilErr(err) {
			continue
		}
		if m, ok := err.(multiErr); ok {
			res = append(res, m...)
		} else {
			res = append(res, err)
		}
	}

	switch len(res) {
	case 0:
		return nil
	case 1:
		return res[0]
	default:
		return res
	}
}

// multiErr represents a group of errors that were collected at once, for
// example while validating all fields of a model.
type multiErr []error

func (e multiErr) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = fmt.Sprintf("\t* %s", err)
	}
	return fmt.Sprintf("%d errors occurred:\n%s", len(e), strings.Join(msgs, "\n"))
}

// Unpack implements unpacker interface.
func (e multiErr) Unpack() []error {
	return e
}

// Cause returns the first error of the group. Code and Is tests are using it
// when the group is not unpacked.
func (e multiErr) Cause() error {
	if len(e) == 0 {
		return nil
	}
	return e[0]
}
