package interfaces

import (
	"context"

	"github.com/drujensen/cliweb/internal/domain/entities"
)

// EndpointRegistry exposes the routes currently installed for registered CLIs.
type EndpointRegistry interface {
	RetractRoutes(ctx context.Context, imageName string)
	RetractTool(ctx context.Context, toolID string)
	Endpoints() map[string]entities.EndpointInfo
}
