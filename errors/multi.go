package errors

import (
	"fmt"
	"strings"
)

// Append clubs together all provided errors. Nil values are ignored.
//
// If no errors are provided or all of them are nil, nil is returned.
func Append(errs ...error) error {
	var me multiErr
	for _, err := range errs {
		if isNilErr(err) {
			continue
		}
		// Flatten so that the result is always a flat list.
		if m, ok := err.(multiErr); ok {
			me = append(me, m...)
		} else {
			me = append(me, err)
		}
	}
	if len(me) == 0 {
		return nil
	}
	return me
}

// multiErr represents a list of independent errors. It is usually the
// result of a validation that does not stop at the first failure.
type multiErr []error

// Unpack returns all errors that this multi error contains.
func (m multiErr) Unpack() []error {
	return []error(m)
}

func (m multiErr) Error() string {
	if len(m) == 1 {
		return m[0].Error()
	}
	points := make([]string, len(m))
	for i, err := range m {
		points[i] = fmt.Sprintf("* %s", err)
	}
	return fmt.Sprintf("%d errors occurred:\n\t%s", len(m), strings.Join(points, "\n\t"))
}

// Code returns the code of the first error consistent with fail-fast
// approach or falls back to the internal error code.
func (m multiErr) Code() uint32 {
	if len(m) == 0 {
		return SuccessCode
	}
	return code(m[0])
}

// unpacker is implemented by errors that are a collection of errors.
type unpacker interface {
	Unpack() []error
}

var (
	_ unpacker = multiErr(nil)
	_ coder    = multiErr(nil)
)
