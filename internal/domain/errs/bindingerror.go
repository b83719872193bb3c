package errs

import "fmt"

// InvalidReferenceError reports a storage identifier that does not resolve
// or is not accessible at the required level.
type InvalidReferenceError struct {
	Kind string
	ID   string
}

func (v *InvalidReferenceError) Error() string {
	return fmt.Sprintf("Invalid %s id (%s).", v.Kind, v.ID)
}

// ParameterFormatError reports a supplied value that could not be coerced
// to the parameter's declared type.
type ParameterFormatError struct {
	Parameter string
	Type      string
	Value     string
	Err       error
}

func (v *ParameterFormatError) Error() string {
	msg := fmt.Sprintf("parameter value is not in JSON format: parameter %q, type %q, value %q", v.Parameter, v.Type, v.Value)
	if v.Err != nil {
		msg += ": " + v.Err.Error()
	}
	return msg
}

func (v *ParameterFormatError) Unwrap() error {
	return v.Err
}

var (
	_ error = &InvalidReferenceError{}
	_ error = &ParameterFormatError{}
)
