package clispec

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"sync"

	_ "embed"

	"github.com/drujensen/cliweb/internal/domain/errs"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var schemaDocument []byte

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaDocument))
	if err != nil {
		return nil, fmt.Errorf("unmarshal schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("schema.json", doc); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	return c.Compile("schema.json")
})

// TranscodeJSON validates a JSON CLI description and converts it to XML.
func TranscodeJSON(raw []byte) ([]byte, error) {
	data, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, errs.SchemaErrorf("invalid JSON CLI spec: %v", err)
	}
	return transcode(data)
}

// TranscodeYAML validates a YAML CLI description and converts it to XML.
func TranscodeYAML(raw []byte) ([]byte, error) {
	var data any
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, errs.SchemaErrorf("invalid YAML CLI spec: %v", err)
	}
	// Round trip through JSON so numbers and maps look the same as for JSON input.
	encoded, err := json.Marshal(data)
	if err != nil {
		return nil, errs.SchemaErrorf("invalid YAML CLI spec: %v", err)
	}
	return TranscodeJSON(encoded)
}

func transcode(data any) ([]byte, error) {
	schema, err := compiledSchema()
	if err != nil {
		return nil, fmt.Errorf("compile CLI schema: %w", err)
	}
	if err := schema.Validate(data); err != nil {
		return nil, errs.SchemaErrorf("CLI spec does not match schema: %v", err)
	}
	root, ok := data.(map[string]any)
	if !ok {
		return nil, errs.SchemaErrorf("CLI spec must be an object")
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")

	w := &xmlWriter{enc: enc}
	w.start("executable", nil)
	w.copy(root, "category", "title", "description", "version", "license", "contributor")
	w.copyAs(root, "documentation_url", "documentation-url")
	w.copy(root, "acknowledgements")
	if groups, ok := root["parameter_groups"].([]any); ok {
		for _, g := range groups {
			if group, ok := g.(map[string]any); ok {
				w.group(group)
			}
		}
	}
	w.end("executable")
	if w.err == nil {
		w.err = enc.Flush()
	}
	if w.err != nil {
		return nil, errs.SchemaErrorf("failed to transcode CLI spec: %v", w.err)
	}
	buf.WriteString("\n")
	return buf.Bytes(), nil
}

// xmlWriter keeps the first encoding error so the conversion reads linearly.
type xmlWriter struct {
	enc *xml.Encoder
	err error
}

func (w *xmlWriter) token(t xml.Token) {
	if w.err == nil {
		w.err = w.enc.EncodeToken(t)
	}
}

func (w *xmlWriter) start(name string, attrs []xml.Attr) {
	w.token(xml.StartElement{Name: xml.Name{Local: name}, Attr: attrs})
}

func (w *xmlWriter) end(name string) {
	w.token(xml.EndElement{Name: xml.Name{Local: name}})
}

func (w *xmlWriter) text(name, value string, attrs ...xml.Attr) {
	w.start(name, attrs)
	w.token(xml.CharData(value))
	w.end(name)
}

func (w *xmlWriter) copy(data map[string]any, keys ...string) {
	for _, key := range keys {
		w.copyAs(data, key, key)
	}
}

func (w *xmlWriter) copyAs(data map[string]any, key, element string) {
	if v, ok := data[key]; ok {
		w.text(element, scalarString(v))
	}
}

func (w *xmlWriter) group(group map[string]any) {
	var attrs []xml.Attr
	if advanced, _ := group["advanced"].(bool); advanced {
		attrs = append(attrs, xml.Attr{Name: xml.Name{Local: "advanced"}, Value: "true"})
	}
	w.start("parameters", attrs)
	w.copy(group, "label", "description")
	if params, ok := group["parameters"].([]any); ok {
		for _, p := range params {
			if param, ok := p.(map[string]any); ok {
				w.param(param)
			}
		}
	}
	w.end("parameters")
}

func (w *xmlWriter) param(param map[string]any) {
	typ := scalarString(param["type"])

	var attrs []xml.Attr
	if multiple, _ := param["multiple"].(bool); multiple {
		attrs = append(attrs, xml.Attr{Name: xml.Name{Local: "multiple"}, Value: "true"})
	}
	for _, key := range []string{"coordinateSystem", "fileExtensions"} {
		if v, ok := param[key]; ok {
			attrs = append(attrs, xml.Attr{Name: xml.Name{Local: key}, Value: scalarString(v)})
		}
	}
	if v, ok := param["image_type"]; ok {
		attrs = append(attrs, xml.Attr{Name: xml.Name{Local: "type"}, Value: scalarString(v)})
	}
	if ref, ok := param["reference"].(string); ok {
		attrs = append(attrs, xml.Attr{Name: xml.Name{Local: "reference"}, Value: ref})
	}

	w.start(typ, attrs)
	w.copy(param, "label", "description", "name", "flag", "longflag", "index", "channel")

	if def, ok := param["default"]; ok {
		w.text("default", defaultString(typ, def))
	}
	if elements, ok := param["enumeration"].([]any); ok {
		for _, e := range elements {
			w.text("element", scalarString(e))
		}
	}
	if constraints, ok := param["constraints"].(map[string]any); ok {
		w.start("constraints", nil)
		w.copy(constraints, "minimum", "maximum", "step")
		w.end("constraints")
	}
	if ref, ok := param["reference"].(map[string]any); ok {
		var refAttrs []xml.Attr
		for _, key := range []string{"role", "parameter"} {
			if v, ok := ref[key]; ok {
				refAttrs = append(refAttrs, xml.Attr{Name: xml.Name{Local: key}, Value: scalarString(v)})
			}
		}
		w.text("reference", scalarString(ref["value"]), refAttrs...)
	}
	w.end(typ)
}

func defaultString(typ string, value any) string {
	switch v := value.(type) {
	case []any:
		if len(typ) > len("-vector") && typ[len(typ)-len("-vector"):] == "-vector" {
			return joinScalars(v, ",")
		}
	case map[string]any:
		if typ == "region" {
			center, _ := v["center"].(map[string]any)
			radius, _ := v["radius"].(map[string]any)
			return joinScalars([]any{center["x"], center["y"], center["z"], radius["x"], radius["y"], radius["z"]}, ",")
		}
	}
	return scalarString(value)
}

func joinScalars(values []any, sep string) string {
	var buf bytes.Buffer
	for i, v := range values {
		if i > 0 {
			buf.WriteString(sep)
		}
		buf.WriteString(scalarString(v))
	}
	return buf.String()
}

// scalarString renders a decoded JSON value the way it appears on a
// command line: strings unquoted, numbers in their literal form, and
// arrays as a comma separated list in brackets.
func scalarString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		if v {
			return "true"
		}
		return "false"
	case float64:
		return fmt.Sprint(v)
	case []any:
		return "[" + joinScalars(v, ", ") + "]"
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(encoded)
	}
}
