package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/drujensen/cliweb/internal/impl/endpoints"

	"github.com/go-openapi/spec"
	"github.com/swaggo/swag"
)

// routeDoc serves the swagger document for the swagger UI. It is rebuilt
// from the installed routes on every read so that newly registered CLIs
// show up without a restart.
type routeDoc struct {
	mu    sync.RWMutex
	synth *endpoints.Synthesizer
}

var doc = &routeDoc{}

func init() {
	swag.Register(swag.Name, doc)
}

func (d *routeDoc) use(synth *endpoints.Synthesizer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.synth = synth
}

func (d *routeDoc) ReadDoc() string {
	d.mu.RLock()
	synth := d.synth
	d.mu.RUnlock()

	data, err := json.Marshal(BuildSwagger(synth))
	if err != nil {
		return "{}"
	}
	return string(data)
}

// BuildSwagger documents the generated CLI routes under /api.
func BuildSwagger(synth *endpoints.Synthesizer) *spec.Swagger {
	sw := &spec.Swagger{
		SwaggerProps: spec.SwaggerProps{
			Swagger:  "2.0",
			BasePath: "/api",
			Info: &spec.Info{
				InfoProps: spec.InfoProps{
					Title:       "cliweb API",
					Description: "REST endpoints generated for registered containerized CLIs.",
					Version:     "1.0",
				},
			},
			Paths: &spec.Paths{Paths: map[string]spec.PathItem{}},
		},
	}
	if synth == nil {
		return sw
	}

	for _, route := range synth.Routes() {
		path := "/" + synth.Resource() + route.Key.Path
		item := sw.Paths.Paths[path]
		switch route.Key.Method {
		case http.MethodPost:
			item.Post = route.Operation
		case http.MethodGet:
			item.Get = xmlSpecOperation(route)
		}
		sw.Paths.Paths[path] = item
	}
	return sw
}

func xmlSpecOperation(route *endpoints.Route) *spec.Operation {
	op := spec.NewOperation("xmlspec_" + route.ToolID).
		WithSummary("Get the XML spec of the CLI").
		WithProduces("application/xml").
		RespondsWith(http.StatusOK, spec.NewResponse().WithDescription("CLI parameter schema"))
	if route.Operation != nil {
		op.WithTags(route.Operation.Tags...)
	}
	if name := strings.TrimSuffix(route.Key.Path, "/xmlspec"); name != route.Key.Path {
		op.WithDescription("Schema for " + strings.TrimPrefix(name, "/"))
	}
	return op
}
