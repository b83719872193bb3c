package entities

// Executable is the parsed and classified description of one CLI tool.
type Executable struct {
	Category         string           `json:"category,omitempty"`
	Title            string           `json:"title"`
	Description      string           `json:"description,omitempty"`
	Version          string           `json:"version,omitempty"`
	DocumentationURL string           `json:"documentation_url,omitempty"`
	License          string           `json:"license,omitempty"`
	Contributor      string           `json:"contributor,omitempty"`
	Acknowledgements string           `json:"acknowledgements,omitempty"`
	Parameters       []*ParameterSpec `json:"parameters"`

	IndexedParams       []*ParameterSpec `json:"-"`
	OptionalParams      []*ParameterSpec `json:"-"`
	SimpleOutputParams  []*ParameterSpec `json:"-"`
	HasSimpleReturnFile bool             `json:"-"`
}

// Metadata returns the descriptive fields stored alongside a registered CLI.
func (e *Executable) Metadata() map[string]string {
	meta := map[string]string{}
	for k, v := range map[string]string{
		"category":         e.Category,
		"version":          e.Version,
		"license":          e.License,
		"contributor":      e.Contributor,
		"acknowledgements": e.Acknowledgements,
	} {
		if v != "" {
			meta[k] = v
		}
	}
	return meta
}
