package apicontrollers

import (
	"net/http"
	"strconv"

	"github.com/drujensen/cliweb/internal/api/auth"
	"github.com/drujensen/cliweb/internal/domain/errs"
	"github.com/drujensen/cliweb/internal/domain/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type DockerImageController struct {
	logger       *zap.Logger
	imageService services.DockerImageService
}

func NewDockerImageController(logger *zap.Logger, imageService services.DockerImageService) *DockerImageController {
	return &DockerImageController{
		logger:       logger,
		imageService: imageService,
	}
}

// RegisterRoutes registers the image registration routes with Echo
func (c *DockerImageController) RegisterRoutes(e *echo.Group) {
	e.PUT("/docker_image", c.AddImages)
	e.DELETE("/docker_image", c.DeleteImages)
	e.GET("/docker_image", c.ListImages)
}

// AddImages godoc
// @Summary Register docker images
// @Description Schedules a job that pulls the images and registers their CLIs.
// @Tags docker_image
// @Produce json
// @Param name query string true "Image name or JSON list of image names"
// @Param folder query string false "Folder to store the image folders in"
// @Success 200 {object} entities.Job "Registration job"
// @Failure 400 {object} map[string]interface{} "Invalid image name"
// @Failure 403 {object} map[string]interface{} "Administrator access required"
// @Router /api/slicer_cli_web/docker_image [put]
func (c *DockerImageController) AddImages(ctx echo.Context) error {
	names, err := c.imageService.ParseImageNameList(ctx.FormValue("name"))
	if err != nil {
		return c.handleError(ctx, err)
	}

	job, err := c.imageService.AddImages(ctx.Request().Context(), names, ctx.FormValue("folder"), auth.User(ctx))
	if err != nil {
		return c.handleError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, job)
}

// DeleteImages godoc
// @Summary Remove docker images
// @Description Removes registered images and their endpoints, optionally scheduling removal from the local docker store.
// @Tags docker_image
// @Produce json
// @Param name query string true "Image name or JSON list of image names"
// @Param delete_from_local_repo query bool false "Also remove the images from the local docker store"
// @Success 200 {object} entities.Job "Deletion job, or null"
// @Failure 400 {object} map[string]interface{} "Some images could not be removed"
// @Failure 403 {object} map[string]interface{} "Administrator access required"
// @Router /api/slicer_cli_web/docker_image [delete]
func (c *DockerImageController) DeleteImages(ctx echo.Context) error {
	names, err := c.imageService.ParseImageNameList(ctx.FormValue("name"))
	if err != nil {
		return c.handleError(ctx, err)
	}

	deleteFromLocal := false
	if raw := ctx.FormValue("delete_from_local_repo"); raw != "" {
		deleteFromLocal, err = strconv.ParseBool(raw)
		if err != nil {
			return c.handleError(ctx, errs.ValidationErrorf("delete_from_local_repo must be a boolean"))
		}
	}

	job, err := c.imageService.DeleteImages(ctx.Request().Context(), names, deleteFromLocal, auth.User(ctx))
	if err != nil {
		return c.handleError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, job)
}

// ListImages godoc
// @Summary List registered images
// @Description Lists the CLIs of every registered image by repository and tag with their endpoints.
// @Tags docker_image
// @Produce json
// @Success 200 {object} entities.ImageListing "Images"
// @Router /api/slicer_cli_web/docker_image [get]
func (c *DockerImageController) ListImages(ctx echo.Context) error {
	listing, err := c.imageService.ListImages(ctx.Request().Context(), auth.User(ctx))
	if err != nil {
		return c.handleError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, listing)
}

func (c *DockerImageController) handleError(ctx echo.Context, err error) error {
	return WriteError(ctx, c.logger, err)
}
