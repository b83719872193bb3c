package errs

import "fmt"

// SchemaError reports a malformed or incomplete CLI parameter schema.
type SchemaError struct {
	message string
}

func (v *SchemaError) Error() string {
	return v.message
}

func SchemaErrorf(format string, args ...any) *SchemaError {
	return &SchemaError{
		message: fmt.Sprintf(format, args...),
	}
}

// UnsupportedTypeError reports a parameter whose declared type is outside
// the supported set.
type UnsupportedTypeError struct {
	Parameter string
	Type      string
}

func (v *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("parameter %q has unsupported type %q", v.Parameter, v.Type)
}

// InvalidIndexedOutputTypeError reports an indexed output parameter that is
// not storage-backed and therefore cannot be uploaded after the run.
type InvalidIndexedOutputTypeError struct {
	Parameter string
	Index     int
	Type      string
}

func (v *InvalidIndexedOutputTypeError) Error() string {
	return fmt.Sprintf("the type of indexed output parameter %d (%s) must be one of file, image, item, directory; got %s",
		v.Index, v.Parameter, v.Type)
}

var (
	_ error = &SchemaError{}
	_ error = &UnsupportedTypeError{}
	_ error = &InvalidIndexedOutputTypeError{}
)
