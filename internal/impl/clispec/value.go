package clispec

import (
	"bytes"
	"encoding/json"

	"github.com/drujensen/cliweb/internal/domain/entities"
	"github.com/drujensen/cliweb/internal/domain/errs"
)

// FormatValue converts a value supplied for a non-storage parameter into
// the token passed on the container command line. Direct types are passed
// through unchanged. Vectors must be JSON arrays and are joined with ", ";
// every other type must be JSON and is rendered from its decoded value.
func FormatValue(p *entities.ParameterSpec, value string) (string, error) {
	if p.Type.Direct() && !p.IsVector() {
		return value, nil
	}

	decoded, err := decodeJSON(value)
	if err != nil {
		return "", &errs.ParameterFormatError{Parameter: p.Identifier(), Type: string(p.Type), Value: value, Err: err}
	}
	if p.IsVector() {
		elements, ok := decoded.([]any)
		if !ok {
			return "", &errs.ParameterFormatError{Parameter: p.Identifier(), Type: string(p.Type), Value: value,
				Err: errs.ValidationErrorf("expected a JSON array")}
		}
		return joinScalars(elements, ", "), nil
	}
	return scalarString(decoded), nil
}

func decodeJSON(value string) (any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(value)))
	dec.UseNumber()
	var decoded any
	if err := dec.Decode(&decoded); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errs.ValidationErrorf("trailing data after JSON value")
	}
	return decoded, nil
}
