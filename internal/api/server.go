// Package api serves the static registration API and the routes generated
// for registered CLIs.
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/drujensen/cliweb/internal/api/auth"
	apicontrollers "github.com/drujensen/cliweb/internal/api/controllers"
	"github.com/drujensen/cliweb/internal/api/websocket"
	"github.com/drujensen/cliweb/internal/domain/interfaces"
	"github.com/drujensen/cliweb/internal/domain/services"
	"github.com/drujensen/cliweb/internal/impl/endpoints"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"
)

// Dependencies are the services the API routes delegate to. Queue is nil
// when jobs go to an external queue.
type Dependencies struct {
	Images      services.DockerImageService
	Registry    services.ImageRegistry
	Storage     services.StorageService
	Jobs        services.JobService
	Queue       interfaces.JobQueue
	Synthesizer *endpoints.Synthesizer
	Hub         *websocket.JobHub
}

type Server struct {
	echo   *echo.Echo
	synth  *endpoints.Synthesizer
	logger *zap.Logger
}

func NewServer(deps Dependencies, jwtSecret string, logger *zap.Logger) *Server {
	s := &Server{
		echo:   echo.New(),
		synth:  deps.Synthesizer,
		logger: logger,
	}
	e := s.echo
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORS())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("logger", logger)
			return next(c)
		}
	})

	api := e.Group("/api", auth.Middleware(jwtSecret, logger))
	resource := api.Group("/" + deps.Synthesizer.Resource())
	apicontrollers.NewDockerImageController(logger, deps.Images).RegisterRoutes(resource)
	apicontrollers.NewCLIController(logger, deps.Registry, deps.Synthesizer).RegisterRoutes(resource)
	apicontrollers.NewJobController(logger, deps.Jobs, deps.Queue, deps.Hub).RegisterRoutes(resource)
	apicontrollers.NewFileController(logger, deps.Storage).RegisterRoutes(resource)
	resource.Any("/*", s.dispatch)

	doc.use(deps.Synthesizer)
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	return s
}

// dispatch runs the generated handler installed for the request, if any.
func (s *Server) dispatch(c echo.Context) error {
	method := c.Request().Method
	path := "/" + c.Param("*")
	route, ok := s.synth.Lookup(method, path)
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]interface{}{
			"error": fmt.Sprintf("No matching route for \"%s %s\"", method, path),
		})
	}

	params, err := c.FormParams()
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{"error": "Invalid request parameters"})
	}
	values := make(map[string]string, len(params))
	for key, v := range params {
		if len(v) > 0 {
			values[key] = v[0]
		}
	}

	resp, err := route.Handler(c.Request().Context(), endpoints.Request{Values: values, User: auth.User(c)})
	if err != nil {
		return apicontrollers.WriteError(c, s.logger, err)
	}
	if resp.ContentType != "" {
		body, _ := resp.Body.([]byte)
		return c.Blob(resp.Status, resp.ContentType, body)
	}
	return c.JSON(resp.Status, resp.Body)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

func (s *Server) Start(addr string) error {
	s.logger.Info("Starting HTTP server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
