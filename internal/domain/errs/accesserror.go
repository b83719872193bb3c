package errs

import "fmt"

type AccessDeniedError struct {
	message string
}

func (v *AccessDeniedError) Error() string {
	return v.message
}

func AccessDeniedErrorf(format string, args ...any) *AccessDeniedError {
	return &AccessDeniedError{
		message: fmt.Sprintf(format, args...),
	}
}

var _ error = &AccessDeniedError{}
