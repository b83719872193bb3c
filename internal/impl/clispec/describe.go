package clispec

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/drujensen/cliweb/internal/domain/entities"
	"github.com/drujensen/cliweb/internal/domain/errs"

	"github.com/go-openapi/spec"
	"github.com/yuin/goldmark"
)

const returnParameterFileDescription = "Filename in which to write simple return parameters " +
	"(integer, float, integer-vector, etc.) as opposed to bulk return parameters " +
	"(image, file, directory, item)."

// DefaultValue derives the value an optional input takes when the caller
// does not supply one. The second result is false when the parameter has
// no default at all, which is the case for vectors and storage references.
func DefaultValue(p *entities.ParameterSpec) (string, bool, error) {
	switch {
	case p.Default != nil:
		return *p.Default, true, nil
	case p.Type == entities.TypeBoolean:
		return "false", true, nil
	case p.IsVector(), p.Type.StorageBacked():
		return "", false, nil
	case p.Type == entities.TypeInteger, p.Type == entities.TypeFloat, p.Type == entities.TypeDouble:
		return "0", true, nil
	}
	return "", false, errs.SchemaErrorf("optional parameters of type %s must provide a default value in the xml", p.Type)
}

// GenerateDescription renders the descriptive fields of an executable as
// HTML for API documentation.
func GenerateDescription(exe *entities.Executable) string {
	parts := []string{"Description:\n\n" + exe.Description}
	for _, f := range []struct{ label, value string }{
		{"Version", exe.Version},
		{"License", exe.License},
		{"Author(s)", exe.Contributor},
		{"Acknowledgements", exe.Acknowledgements},
	} {
		if f.value != "" {
			parts = append(parts, f.label+": "+f.value)
		}
	}

	source := strings.Join(parts, "\n\n")
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(source), &buf); err != nil {
		return source
	}
	return strings.TrimSpace(buf.String())
}

// Describe documents the request parameters accepted by the run handler of
// a classified executable. Indexed parameters are required; optional ones
// carry their derived default.
func Describe(exe *entities.Executable, operationID string) (*spec.Operation, error) {
	op := spec.NewOperation(operationID).
		WithSummary(exe.Title).
		WithDescription(GenerateDescription(exe)).
		WithProduces("application/json").
		WithDefaultResponse(spec.NewResponse().WithDescription("job descriptor"))

	add := func(params []*entities.ParameterSpec, required bool) error {
		for _, p := range params {
			var described []*spec.Parameter
			if p.IsOutput() {
				described = describeOutput(p, required)
			} else {
				param, err := describeInput(p, required)
				if err != nil {
					return err
				}
				described = []*spec.Parameter{param}
			}
			for _, d := range described {
				op.AddParam(d)
			}
		}
		return nil
	}
	if err := add(exe.IndexedParams, true); err != nil {
		return nil, err
	}
	if err := add(exe.OptionalParams, false); err != nil {
		return nil, err
	}
	if exe.HasSimpleReturnFile {
		op.AddParam(spec.QueryParam(entities.ReturnParameterFileName + entities.FolderSuffix).
			Typed("string", "").
			WithDescription(fmt.Sprintf("ID of parent folder for output file - %s: %s",
				entities.ReturnParameterFileName, returnParameterFileDescription)))
		op.AddParam(spec.QueryParam(entities.ReturnParameterFileName).
			Typed("string", "").
			WithDescription(fmt.Sprintf("Name of output file - %s: %s",
				entities.ReturnParameterFileName, returnParameterFileDescription)))
	}
	return op, nil
}

func describeInput(p *entities.ParameterSpec, required bool) (*spec.Parameter, error) {
	param := spec.QueryParam(p.Identifier())
	desc := p.Description

	switch {
	case p.Type.StorageBacked():
		param.Typed("string", "")
		desc = fmt.Sprintf("ID of input %s - %s: %s", p.Type, p.Identifier(), p.Description)
	case p.Type == entities.TypeStringEnumeration:
		param.Typed("string", "")
		enum := make([]any, len(p.Elements))
		for i, e := range p.Elements {
			enum[i] = e
		}
		param.WithEnum(enum...)
	case p.Type.Direct():
		param.Typed(openAPIType(p.Type))
		applyConstraints(param, p.Constraints)
	case p.IsVector():
		param.Typed("string", "json")
		itemType, itemFormat := openAPIType(entities.ParameterType(strings.TrimSuffix(string(p.Type), "-vector")))
		param.AddExtension("x-json-schema", map[string]any{
			"type":  "array",
			"items": map[string]any{"type": itemType, "format": itemFormat},
		})
		desc = fmt.Sprintf("%s as JSON (%s)", p.Description, p.Type)
	default:
		param.Typed("string", "json")
		desc = fmt.Sprintf("%s as JSON (%s)", p.Description, p.Type)
	}
	param.WithDescription(desc)

	if !required || p.Default != nil {
		value, ok, err := DefaultValue(p)
		if err != nil {
			return nil, err
		}
		if ok {
			param.WithDefault(value)
		}
	}
	if required {
		param.AsRequired()
	}
	return param, nil
}

// describeOutput documents a storage output as a destination folder and a
// target name. Simple outputs are reported through the return parameter
// file and have no request parameters of their own.
func describeOutput(p *entities.ParameterSpec, required bool) []*spec.Parameter {
	if !p.Type.StorageBacked() {
		return nil
	}
	folder := spec.QueryParam(p.FolderKey()).
		Typed("string", "").
		WithDescription(fmt.Sprintf("ID of parent folder for output %s - %s: %s", p.Type, p.Identifier(), p.Description))
	name := spec.QueryParam(p.Identifier()).
		Typed("string", "").
		WithDescription(fmt.Sprintf("Name of output %s - %s: %s", p.Type, p.Identifier(), p.Description))
	if ext := p.DefaultExtension(); ext != "" {
		name.WithDefault(p.Identifier() + ext)
	}
	if required {
		folder.AsRequired()
		name.AsRequired()
	}
	return []*spec.Parameter{folder, name}
}

func openAPIType(t entities.ParameterType) (string, string) {
	switch t {
	case entities.TypeBoolean:
		return "boolean", ""
	case entities.TypeInteger:
		return "integer", "int64"
	case entities.TypeFloat:
		return "number", "float"
	case entities.TypeDouble:
		return "number", "double"
	}
	return "string", ""
}

func applyConstraints(param *spec.Parameter, c *entities.Constraints) {
	if c == nil {
		return
	}
	if v, err := strconv.ParseFloat(c.Minimum, 64); err == nil {
		param.WithMinimum(v, false)
	}
	if v, err := strconv.ParseFloat(c.Maximum, 64); err == nil {
		param.WithMaximum(v, false)
	}
	// step is a slider increment, not a divisibility rule.
	if v, err := strconv.ParseFloat(c.Step, 64); err == nil && v > 0 {
		param.AddExtension("x-step", v)
	}
}
