package apicontrollers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/drujensen/cliweb/internal/api/auth"
	"github.com/drujensen/cliweb/internal/domain/entities"
	"github.com/drujensen/cliweb/internal/domain/errs"
	"github.com/drujensen/cliweb/internal/domain/services"

	"github.com/dustin/go-humanize"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type FileController struct {
	logger         *zap.Logger
	storageService services.StorageService
}

func NewFileController(logger *zap.Logger, storageService services.StorageService) *FileController {
	return &FileController{
		logger:         logger,
		storageService: storageService,
	}
}

// RegisterRoutes registers the file and folder routes with Echo
func (c *FileController) RegisterRoutes(e *echo.Group) {
	e.POST("/file", c.UploadFile)
	e.GET("/file/:id", c.GetFile)
	e.GET("/file/:id/download", c.DownloadFile)
	e.POST("/folder", c.CreateFolder)
	e.GET("/folder/:id", c.GetFolder)
}

// UploadFile stores the multipart "file" field as a new item in folderId.
// An optional reference is kept with the file.
func (c *FileController) UploadFile(ctx echo.Context) error {
	header, err := ctx.FormFile("file")
	if err != nil {
		return c.handleError(ctx, errs.ValidationErrorf("a file field is required"))
	}
	content, err := header.Open()
	if err != nil {
		return c.handleError(ctx, errs.InternalErrorf("failed to read upload: %v", err))
	}
	defer content.Close()

	name := ctx.FormValue("name")
	if name == "" {
		name = header.Filename
	}
	contentType := header.Header.Get(echo.HeaderContentType)
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}

	file, err := c.storageService.UploadFile(ctx.Request().Context(), services.FileUpload{
		FolderID:    ctx.FormValue("folderId"),
		Name:        name,
		ContentType: contentType,
		Size:        header.Size,
		Reference:   ctx.FormValue("reference"),
		Content:     content,
	}, auth.User(ctx))
	if err != nil {
		return c.handleError(ctx, err)
	}
	return ctx.JSON(http.StatusCreated, file)
}

func (c *FileController) GetFile(ctx echo.Context) error {
	file, err := c.storageService.LoadFile(ctx.Request().Context(), ctx.Param("id"), auth.User(ctx), entities.AccessRead)
	if err != nil {
		return c.handleError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, file)
}

// DownloadFile streams the file content. Link files redirect to their URL.
func (c *FileController) DownloadFile(ctx echo.Context) error {
	file, content, err := c.storageService.DownloadFile(ctx.Request().Context(), ctx.Param("id"), auth.User(ctx))
	if err != nil {
		return c.handleError(ctx, err)
	}
	if content == nil {
		return ctx.Redirect(http.StatusSeeOther, file.LinkURL)
	}
	defer content.Close()

	c.logger.Debug("Serving file",
		zap.String("file_id", file.ID),
		zap.String("size", humanize.Bytes(uint64(max(file.Size, 0)))))

	mimeType := file.MimeType
	if mimeType == "" {
		mimeType = echo.MIMEOctetStream
	}
	headers := ctx.Response().Header()
	headers.Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", file.Name))
	headers.Set(echo.HeaderContentLength, strconv.FormatInt(file.Size, 10))
	return ctx.Stream(http.StatusOK, mimeType, content)
}

func (c *FileController) CreateFolder(ctx echo.Context) error {
	public := false
	if raw := ctx.FormValue("public"); raw != "" {
		var err error
		if public, err = strconv.ParseBool(raw); err != nil {
			return c.handleError(ctx, errs.ValidationErrorf("public must be a boolean"))
		}
	}

	folder, err := c.storageService.CreateFolder(ctx.Request().Context(),
		ctx.FormValue("name"), ctx.FormValue("description"), ctx.FormValue("parentId"), public, auth.User(ctx))
	if err != nil {
		return c.handleError(ctx, err)
	}
	return ctx.JSON(http.StatusCreated, folder)
}

func (c *FileController) GetFolder(ctx echo.Context) error {
	folder, err := c.storageService.LoadFolder(ctx.Request().Context(), ctx.Param("id"), auth.User(ctx), entities.AccessRead)
	if err != nil {
		return c.handleError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, folder)
}

func (c *FileController) handleError(ctx echo.Context, err error) error {
	return WriteError(ctx, c.logger, err)
}
