package entities

// EndpointInfo describes the routes installed for one registered CLI. Paths
// are relative to the API root.
type EndpointInfo struct {
	ToolID      string `json:"_id"`
	Image       string `json:"image"`
	Name        string `json:"name"`
	RunPath     string `json:"run"`
	XMLSpecPath string `json:"xmlspec,omitempty"`
}

// CLIEndpoints is the per-CLI entry of the docker image listing.
type CLIEndpoints struct {
	Type    string `json:"type"`
	XMLSpec string `json:"xmlspec,omitempty"`
	Run     string `json:"run,omitempty"`
}

// ImageListing maps repository to tag to CLI name.
type ImageListing map[string]map[string]map[string]CLIEndpoints
