package apicontrollers

import (
	"net/http"

	"github.com/drujensen/cliweb/internal/api/auth"
	"github.com/drujensen/cliweb/internal/domain/entities"
	"github.com/drujensen/cliweb/internal/domain/interfaces"
	"github.com/drujensen/cliweb/internal/domain/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// CLIDump is the public view of a registered CLI.
type CLIDump struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Image       string `json:"image"`
	Description string `json:"description"`
	XML         string `json:"xml,omitempty"`
}

func dumpCLI(cli *entities.CLIItem, details bool) CLIDump {
	dump := CLIDump{
		ID:          cli.ID,
		Name:        cli.Name,
		Type:        cli.Type,
		Image:       cli.Image,
		Description: cli.Description,
	}
	if details {
		dump.XML = string(cli.XML)
	}
	return dump
}

type CLIController struct {
	logger    *zap.Logger
	registry  services.ImageRegistry
	endpoints interfaces.EndpointRegistry
}

func NewCLIController(logger *zap.Logger, registry services.ImageRegistry, endpoints interfaces.EndpointRegistry) *CLIController {
	return &CLIController{
		logger:    logger,
		registry:  registry,
		endpoints: endpoints,
	}
}

// RegisterRoutes registers the CLI routes with Echo
func (c *CLIController) RegisterRoutes(e *echo.Group) {
	e.GET("/cli", c.ListCLIs)
	e.GET("/cli/:id", c.GetCLI)
	e.DELETE("/cli/:id", c.DeleteCLI)
	e.GET("/cli/:id/xml", c.GetCLIXML)
}

// ListCLIs godoc
// @Summary List CLIs
// @Description Lists the registered CLIs the caller can read.
// @Tags cli
// @Produce json
// @Param folder query string false "Only list CLIs of images registered in this folder"
// @Success 200 {array} CLIDump "CLIs"
// @Failure 403 {object} map[string]interface{} "Not logged in"
// @Router /api/slicer_cli_web/cli [get]
func (c *CLIController) ListCLIs(ctx echo.Context) error {
	user := auth.User(ctx)
	if err := requireUser(user); err != nil {
		return c.handleError(ctx, err)
	}

	clis, err := c.registry.ListTools(ctx.Request().Context(), ctx.QueryParam("folder"), user)
	if err != nil {
		return c.handleError(ctx, err)
	}
	result := make([]CLIDump, 0, len(clis))
	for _, cli := range clis {
		result = append(result, dumpCLI(cli, false))
	}
	return ctx.JSON(http.StatusOK, result)
}

// GetCLI godoc
// @Summary Get a CLI
// @Tags cli
// @Produce json
// @Param id path string true "CLI item ID"
// @Success 200 {object} CLIDump "CLI with its xml"
// @Failure 404 {object} map[string]interface{} "CLI not found"
// @Router /api/slicer_cli_web/cli/{id} [get]
func (c *CLIController) GetCLI(ctx echo.Context) error {
	cli, err := c.findCLI(ctx)
	if err != nil {
		return c.handleError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, dumpCLI(cli, true))
}

// GetCLIXML godoc
// @Summary Get the xml spec of a CLI
// @Tags cli
// @Produce xml
// @Param id path string true "CLI item ID"
// @Router /api/slicer_cli_web/cli/{id}/xml [get]
func (c *CLIController) GetCLIXML(ctx echo.Context) error {
	cli, err := c.findCLI(ctx)
	if err != nil {
		return c.handleError(ctx, err)
	}
	return ctx.Blob(http.StatusOK, echo.MIMEApplicationXMLCharsetUTF8, cli.XML)
}

// DeleteCLI godoc
// @Summary Delete a CLI
// @Description Removes the CLI and its endpoints.
// @Tags cli
// @Param id path string true "CLI item ID"
// @Success 204 "CLI removed"
// @Failure 403 {object} map[string]interface{} "Write access required"
// @Router /api/slicer_cli_web/cli/{id} [delete]
func (c *CLIController) DeleteCLI(ctx echo.Context) error {
	user := auth.User(ctx)
	if err := requireUser(user); err != nil {
		return c.handleError(ctx, err)
	}

	cli, err := c.registry.RemoveTool(ctx.Request().Context(), ctx.Param("id"), user)
	if err != nil {
		return c.handleError(ctx, err)
	}
	c.endpoints.RetractTool(ctx.Request().Context(), cli.ID)
	return ctx.NoContent(http.StatusNoContent)
}

func (c *CLIController) findCLI(ctx echo.Context) (*entities.CLIItem, error) {
	user := auth.User(ctx)
	if err := requireUser(user); err != nil {
		return nil, err
	}
	return c.registry.FindTool(ctx.Request().Context(), ctx.Param("id"), user)
}

func (c *CLIController) handleError(ctx echo.Context, err error) error {
	return WriteError(ctx, c.logger, err)
}
