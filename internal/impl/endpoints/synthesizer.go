// Package endpoints installs and retracts the REST routes generated for
// registered CLIs.
package endpoints

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"sync"

	"github.com/drujensen/cliweb/internal/domain/entities"
	"github.com/drujensen/cliweb/internal/domain/interfaces"
	"github.com/drujensen/cliweb/internal/domain/services"

	"go.uber.org/zap"
)

// EndpointRecord pairs the routes installed for one CLI with the action that
// retracts them.
type EndpointRecord struct {
	Tool *entities.CLIItem
	Info entities.EndpointInfo
	Undo func() error
}

// Synthesizer owns the live route table. Requests read it through Lookup
// while registration changes rebuild it. rebuildMu serializes every change
// from registry read to table swap; mu only guards the table itself.
type Synthesizer struct {
	resource string
	registry services.ImageRegistry
	binder   services.BindingService
	jobs     services.JobService
	logger   *zap.Logger

	rebuildMu sync.Mutex

	mu      sync.RWMutex
	table   *RouteTable
	records map[string]*EndpointRecord
}

// NewSynthesizer creates a synthesizer whose route paths are reported under
// /<resource>.
func NewSynthesizer(resource string, registry services.ImageRegistry, binder services.BindingService,
	jobs services.JobService, logger *zap.Logger) *Synthesizer {
	return &Synthesizer{
		resource: resource,
		registry: registry,
		binder:   binder,
		jobs:     jobs,
		logger:   logger,
		table:    NewRouteTable(),
		records:  map[string]*EndpointRecord{},
	}
}

func idRunPath(tool *entities.CLIItem) string {
	return "/cli/" + tool.ID + "/run"
}

func namedPath(tool *entities.CLIItem, operation string) string {
	return "/" + tool.RestBasePath() + "/" + tool.Name + "/" + operation
}

// InstallRoutes builds and installs the routes of one CLI, first retracting
// any routes it already has.
func (s *Synthesizer) InstallRoutes(ctx context.Context, tool *entities.CLIItem) (*EndpointRecord, error) {
	s.rebuildMu.Lock()
	defer s.rebuildMu.Unlock()

	desc, err := s.BuildHandler(tool)
	if err != nil {
		s.logger.Error("Failed to create REST endpoints",
			zap.String("image", tool.Image), zap.String("cli", tool.Name), zap.String("item_id", tool.ID), zap.Error(err))
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.retractLocked(tool.ID)
	return s.installLocked(desc), nil
}

// installLocked attaches the id based run route and, when the named paths
// are free, the named run and xmlspec routes.
func (s *Synthesizer) installLocked(desc *HandlerDescriptor) *EndpointRecord {
	tool := desc.Tool
	var keys []RouteKey
	add := func(method, path string, handler Handler) bool {
		route := &Route{Key: RouteKey{Method: method, Path: path}, ToolID: tool.ID, Handler: handler, Operation: desc.Operation}
		if !s.table.Add(route) {
			return false
		}
		keys = append(keys, route.Key)
		return true
	}

	info := entities.EndpointInfo{ToolID: tool.ID, Image: tool.Image, Name: tool.Name}
	add(http.MethodPost, idRunPath(tool), desc.Run)
	info.RunPath = "/" + s.resource + idRunPath(tool)

	if add(http.MethodPost, namedPath(tool, "run"), desc.Run) {
		info.RunPath = "/" + s.resource + namedPath(tool, "run")
		if add(http.MethodGet, namedPath(tool, "xmlspec"), desc.XMLSpec) {
			info.XMLSpecPath = "/" + s.resource + namedPath(tool, "xmlspec")
		}
	} else {
		s.logger.Debug("Named route already taken, CLI reachable by id only",
			zap.String("image", tool.Image), zap.String("cli", tool.Name), zap.String("item_id", tool.ID))
	}

	record := &EndpointRecord{
		Tool: tool,
		Info: info,
		Undo: func() error {
			var errs []error
			for _, key := range keys {
				errs = append(errs, s.table.Remove(key, tool.ID))
			}
			return errors.Join(errs...)
		},
	}
	s.records[tool.ID] = record
	s.logger.Debug("Created REST endpoints", zap.String("image", tool.Image), zap.String("cli", tool.Name))
	return record
}

// retractLocked undoes and forgets the record of one CLI. Undo failures are
// logged; the record is dropped regardless.
func (s *Synthesizer) retractLocked(toolID string) {
	record, ok := s.records[toolID]
	if !ok {
		return
	}
	delete(s.records, toolID)
	if err := record.Undo(); err != nil {
		s.logger.Error("Failed to remove route",
			zap.String("image", record.Tool.Image), zap.String("cli", record.Tool.Name), zap.String("item_id", toolID), zap.Error(err))
	}
}

// RetractRoutes removes the routes of every CLI of the named image.
func (s *Synthesizer) RetractRoutes(ctx context.Context, imageName string) {
	s.rebuildMu.Lock()
	defer s.rebuildMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, record := range s.records {
		if record.Tool.Image == imageName {
			s.retractLocked(id)
		}
	}
}

// RetractTool removes the routes of a single CLI.
func (s *Synthesizer) RetractTool(ctx context.Context, toolID string) {
	s.rebuildMu.Lock()
	defer s.rebuildMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.retractLocked(toolID)
}

func (s *Synthesizer) RetractAll(ctx context.Context) {
	s.rebuildMu.Lock()
	defer s.rebuildMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.retractAllLocked()
}

func (s *Synthesizer) retractAllLocked() {
	for id := range s.records {
		s.retractLocked(id)
	}
}

// RebuildAll replaces every installed route with routes for the tools
// currently registered. Tools are installed newest first, so when two
// tools derive the same named path the most recent one gets it. A tool
// whose handler cannot be built is logged and skipped. Only one rebuild
// runs at a time, so a later rebuild always sees the registry after an
// earlier one finished.
func (s *Synthesizer) RebuildAll(ctx context.Context) error {
	s.rebuildMu.Lock()
	defer s.rebuildMu.Unlock()

	tools, err := s.registry.FindAllTools(ctx, nil)
	if err != nil {
		return err
	}
	sort.SliceStable(tools, func(i, j int) bool {
		return tools[i].CreatedAt.After(tools[j].CreatedAt)
	})

	descs := make([]*HandlerDescriptor, 0, len(tools))
	for _, tool := range tools {
		desc, err := s.BuildHandler(tool)
		if err != nil {
			s.logger.Error("Failed to create REST endpoints",
				zap.String("image", tool.Image), zap.String("cli", tool.Name), zap.String("item_id", tool.ID), zap.Error(err))
			continue
		}
		descs = append(descs, desc)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.retractAllLocked()
	for _, desc := range descs {
		s.installLocked(desc)
	}
	s.logger.Info("Rebuilt CLI endpoints", zap.Int("tools", len(descs)), zap.Int("skipped", len(tools)-len(descs)))
	return nil
}

// OnJobCompleted rebuilds the routes when an image job succeeds. Other job
// types and statuses are ignored.
func (s *Synthesizer) OnJobCompleted(ctx context.Context, jobType string, status entities.JobStatus) {
	if jobType != entities.ImageJobType || status != entities.JobStatusSuccess {
		return
	}
	if err := s.RebuildAll(ctx); err != nil {
		s.logger.Error("Failed to rebuild CLI endpoints", zap.Error(err))
	}
}

// Lookup finds the handler installed for method and path, where path is
// relative to the resource.
func (s *Synthesizer) Lookup(method, path string) (*Route, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table.Get(RouteKey{Method: method, Path: path})
}

// Endpoints returns the installed endpoints keyed by CLI id.
func (s *Synthesizer) Endpoints() map[string]entities.EndpointInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	endpoints := make(map[string]entities.EndpointInfo, len(s.records))
	for id, record := range s.records {
		endpoints[id] = record.Info
	}
	return endpoints
}

// Routes returns a snapshot of the installed routes.
func (s *Synthesizer) Routes() []*Route {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table.Routes()
}

// Resource is the path segment generated routes are reported under.
func (s *Synthesizer) Resource() string {
	return s.resource
}

var (
	_ interfaces.EndpointRegistry = &Synthesizer{}
	_ interfaces.JobObserver      = &Synthesizer{}
)
