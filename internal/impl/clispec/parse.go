// Package clispec parses Slicer execution model documents into classified
// CLI descriptions.
package clispec

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/drujensen/cliweb/internal/domain/entities"
	"github.com/drujensen/cliweb/internal/domain/errs"
)

type Format string

const (
	FormatXML  Format = "xml"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

type xmlExecutable struct {
	XMLName             xml.Name   `xml:"executable"`
	Category            string     `xml:"category"`
	Title               string     `xml:"title"`
	Description         string     `xml:"description"`
	Version             string     `xml:"version"`
	DocumentationURL    string     `xml:"documentation-url"`
	DocumentationURLAlt string     `xml:"documentation_url"`
	License             string     `xml:"license"`
	Contributor         string     `xml:"contributor"`
	Acknowledgements    string     `xml:"acknowledgements"`
	Groups              []xmlGroup `xml:"parameters"`
}

type xmlGroup struct {
	Advanced    string     `xml:"advanced,attr"`
	Label       string     `xml:"label"`
	Description string     `xml:"description"`
	Params      []xmlParam `xml:",any"`
}

type xmlReference struct {
	Role      string `xml:"role,attr"`
	Parameter string `xml:"parameter,attr"`
	Value     string `xml:",chardata"`
}

type xmlParam struct {
	XMLName        xml.Name
	Multiple       string                `xml:"multiple,attr"`
	FileExtensions string                `xml:"fileExtensions,attr"`
	ReferenceAttr  string                `xml:"reference,attr"`
	Name           string                `xml:"name"`
	Label          string                `xml:"label"`
	Description    string                `xml:"description"`
	Channel        string                `xml:"channel"`
	Index          *string               `xml:"index"`
	Flag           string                `xml:"flag"`
	LongFlag       string                `xml:"longflag"`
	Default        *string               `xml:"default"`
	Elements       []string              `xml:"element"`
	Constraints    *entities.Constraints `xml:"constraints"`
	Reference      *xmlReference         `xml:"reference"`
}

// Parse reads a raw schema document in the given format. JSON and YAML
// documents are validated and transcoded to XML first, so XML is the only
// representation that is actually parsed.
func Parse(raw []byte, format Format) (*entities.Executable, error) {
	doc, err := ToXML(raw, format)
	if err != nil {
		return nil, err
	}
	return ParseXML(doc)
}

// ToXML returns the canonical XML form of a schema document.
func ToXML(raw []byte, format Format) ([]byte, error) {
	switch format {
	case FormatXML, "":
		return raw, nil
	case FormatJSON:
		return TranscodeJSON(raw)
	case FormatYAML:
		return TranscodeYAML(raw)
	default:
		return nil, errs.SchemaErrorf("unknown schema format %q", format)
	}
}

// ParseXML parses a Slicer execution model XML document.
func ParseXML(raw []byte) (*entities.Executable, error) {
	var doc xmlExecutable
	decoder := xml.NewDecoder(bytes.NewReader(raw))
	if err := decoder.Decode(&doc); err != nil {
		return nil, errs.SchemaErrorf("failed to parse CLI xml: %v", err)
	}

	exe := &entities.Executable{
		Category:         clean(doc.Category),
		Title:            clean(doc.Title),
		Description:      clean(doc.Description),
		Version:          clean(doc.Version),
		DocumentationURL: clean(doc.DocumentationURL),
		License:          clean(doc.License),
		Contributor:      clean(doc.Contributor),
		Acknowledgements: clean(doc.Acknowledgements),
	}
	if exe.DocumentationURL == "" {
		exe.DocumentationURL = clean(doc.DocumentationURLAlt)
	}
	if exe.Title == "" {
		return nil, errs.SchemaErrorf("CLI xml has no title")
	}

	seen := map[string]bool{}
	for _, group := range doc.Groups {
		for _, xp := range group.Params {
			param, err := convertParam(xp)
			if err != nil {
				return nil, err
			}
			param.Group = clean(group.Label)
			param.Advanced = group.Advanced == "true"

			id := param.Identifier()
			if seen[id] {
				return nil, errs.SchemaErrorf("duplicate parameter %q", id)
			}
			seen[id] = true
			exe.Parameters = append(exe.Parameters, param)
		}
	}
	return exe, nil
}

func convertParam(xp xmlParam) (*entities.ParameterSpec, error) {
	p := &entities.ParameterSpec{
		Name:        clean(xp.Name),
		Label:       clean(xp.Label),
		Description: clean(xp.Description),
		Type:        entities.ParameterType(xp.XMLName.Local),
		Channel:     entities.Channel(clean(xp.Channel)),
		Flag:        clean(xp.Flag),
		LongFlag:    clean(xp.LongFlag),
		Multiple:    xp.Multiple == "true",
		Reference:   clean(xp.ReferenceAttr),
		Constraints: xp.Constraints,
	}
	if p.Type == "" {
		return nil, errs.SchemaErrorf("parameter %q has no type", p.Identifier())
	}
	if p.Identifier() == "" {
		return nil, errs.SchemaErrorf("%s parameter has no name, flag or longflag", p.Type)
	}
	if !p.Type.Supported() {
		return nil, &errs.UnsupportedTypeError{Parameter: p.Identifier(), Type: string(p.Type)}
	}

	switch p.Channel {
	case "":
		p.Channel = entities.ChannelInput
	case entities.ChannelInput, entities.ChannelOutput:
	default:
		return nil, errs.SchemaErrorf("parameter %q has invalid channel %q", p.Identifier(), p.Channel)
	}

	if xp.Index != nil {
		index, err := strconv.Atoi(clean(*xp.Index))
		if err != nil || index < 0 {
			return nil, errs.SchemaErrorf("parameter %q has invalid index %q", p.Identifier(), *xp.Index)
		}
		p.Index = &index
		if p.Flag != "" || p.LongFlag != "" {
			return nil, errs.SchemaErrorf("parameter %q declares both an index and a flag", p.Identifier())
		}
	}

	if xp.Default != nil {
		d := clean(*xp.Default)
		p.Default = &d
	}
	for _, e := range xp.Elements {
		p.Elements = append(p.Elements, clean(e))
	}
	if xp.FileExtensions != "" {
		for _, ext := range strings.Split(xp.FileExtensions, ",") {
			if ext = strings.TrimSpace(ext); ext != "" {
				p.FileExtensions = append(p.FileExtensions, ext)
			}
		}
	}
	if xp.Reference != nil {
		p.Reference = clean(xp.Reference.Value)
		p.ReferenceRole = xp.Reference.Role
		if p.Reference == "" {
			p.Reference = xp.Reference.Parameter
		}
	}
	if p.Type.IsEnumeration() && len(p.Elements) == 0 {
		return nil, errs.SchemaErrorf("enumeration parameter %q has no elements", p.Identifier())
	}
	return p, nil
}

func clean(s string) string {
	return strings.TrimSpace(s)
}

// Compile parses and classifies a schema document.
func Compile(raw []byte, format Format) (*entities.Executable, error) {
	exe, err := Parse(raw, format)
	if err != nil {
		return nil, err
	}
	indexed, optional, simple, err := Classify(exe)
	if err != nil {
		return nil, err
	}
	exe.IndexedParams = indexed
	exe.OptionalParams = optional
	exe.SimpleOutputParams = simple
	exe.HasSimpleReturnFile = len(simple) > 0
	return exe, nil
}

// FormatOf picks the format of a CLI document from whichever field is set.
func FormatOf(doc entities.CLIDocument) ([]byte, Format, error) {
	switch {
	case doc.XML != "":
		return []byte(doc.XML), FormatXML, nil
	case doc.JSON != "":
		return []byte(doc.JSON), FormatJSON, nil
	case doc.YAML != "":
		return []byte(doc.YAML), FormatYAML, nil
	}
	return nil, "", fmt.Errorf("CLI document has no xml, json or yaml spec")
}
