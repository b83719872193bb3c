package apicontrollers

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/drujensen/cliweb/internal/api/auth"
	"github.com/drujensen/cliweb/internal/domain/entities"
	"github.com/drujensen/cliweb/internal/domain/errs"
	"github.com/drujensen/cliweb/internal/domain/interfaces"
	"github.com/drujensen/cliweb/internal/domain/services"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

var (
	testUser  = &entities.User{ID: "user-1", Login: "ann"}
	testAdmin = &entities.User{ID: "admin-1", Login: "root", Admin: true}
)

type routeRegistrar interface {
	RegisterRoutes(e *echo.Group)
}

func newTestServer(controllers ...routeRegistrar) *echo.Echo {
	e := echo.New()
	g := e.Group("/api/slicer_cli_web", auth.Middleware(testSecret, zap.NewNop()))
	for _, c := range controllers {
		c.RegisterRoutes(g)
	}
	return e
}

func serve(t *testing.T, e *echo.Echo, req *http.Request, user *entities.User) *httptest.ResponseRecorder {
	t.Helper()
	if user != nil {
		token, err := auth.IssueToken(testSecret, user, time.Hour)
		require.NoError(t, err)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func formRequest(method, target string, values url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(values.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return req
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", errs.ValidationErrorf("bad"), http.StatusBadRequest},
		{"schema", errs.SchemaErrorf("bad xml"), http.StatusBadRequest},
		{"reference", &errs.InvalidReferenceError{Kind: "file", ID: "x"}, http.StatusBadRequest},
		{"format", &errs.ParameterFormatError{Parameter: "scale", Type: "double-vector", Value: "a"}, http.StatusBadRequest},
		{"indexed output", &errs.InvalidIndexedOutputTypeError{Parameter: "out", Index: 1, Type: "string"}, http.StatusBadRequest},
		{"access", errs.AccessDeniedErrorf("no"), http.StatusForbidden},
		{"not found", errs.NotFoundErrorf("missing"), http.StatusNotFound},
		{"duplicate", errs.DuplicateErrorf("exists"), http.StatusConflict},
		{"internal", errs.InternalErrorf("boom"), http.StatusInternalServerError},
		{"untyped", io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, ErrorStatus(tt.err))
		})
	}
}

func TestDockerImageController(t *testing.T) {
	t.Run("add images", func(t *testing.T) {
		images := new(mockDockerImageService)
		job := entities.NewJob("Pulling and caching docker images", entities.ImageJobType, testAdmin.ID)
		images.On("ParseImageNameList", `["org/tool:v1"]`).Return([]string{"org/tool:v1"}, nil)
		images.On("AddImages", mock.Anything, []string{"org/tool:v1"}, "folder-1", testAdmin).Return(job, nil)

		e := newTestServer(NewDockerImageController(zap.NewNop(), images))
		rec := serve(t, e, formRequest(http.MethodPut, "/api/slicer_cli_web/docker_image",
			url.Values{"name": {`["org/tool:v1"]`}, "folder": {"folder-1"}}), testAdmin)

		assert.Equal(t, http.StatusOK, rec.Code)
		var got entities.Job
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, job.ID, got.ID)
		images.AssertExpectations(t)
	})

	t.Run("invalid name", func(t *testing.T) {
		images := new(mockDockerImageService)
		images.On("ParseImageNameList", "org/tool").Return(nil, errs.ValidationErrorf("Image org/tool does not have a tag or digest"))

		e := newTestServer(NewDockerImageController(zap.NewNop(), images))
		rec := serve(t, e, httptest.NewRequest(http.MethodPut, "/api/slicer_cli_web/docker_image?name=org/tool", nil), testAdmin)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Image org/tool does not have a tag or digest", errorMessage(t, rec))
		images.AssertNotCalled(t, "AddImages", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("delete images", func(t *testing.T) {
		images := new(mockDockerImageService)
		images.On("ParseImageNameList", "org/tool:v1").Return([]string{"org/tool:v1"}, nil)
		images.On("DeleteImages", mock.Anything, []string{"org/tool:v1"}, true, testAdmin).Return(nil, nil)

		e := newTestServer(NewDockerImageController(zap.NewNop(), images))
		rec := serve(t, e, httptest.NewRequest(http.MethodDelete,
			"/api/slicer_cli_web/docker_image?name=org/tool:v1&delete_from_local_repo=true", nil), testAdmin)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "null", strings.TrimSpace(rec.Body.String()))
		images.AssertExpectations(t)
	})

	t.Run("delete flag must be boolean", func(t *testing.T) {
		images := new(mockDockerImageService)
		images.On("ParseImageNameList", "org/tool:v1").Return([]string{"org/tool:v1"}, nil)

		e := newTestServer(NewDockerImageController(zap.NewNop(), images))
		rec := serve(t, e, httptest.NewRequest(http.MethodDelete,
			"/api/slicer_cli_web/docker_image?name=org/tool:v1&delete_from_local_repo=maybe", nil), testAdmin)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("anonymous listing", func(t *testing.T) {
		images := new(mockDockerImageService)
		var anonymous *entities.User
		images.On("ListImages", mock.Anything, anonymous).Return(entities.ImageListing{}, nil)

		e := newTestServer(NewDockerImageController(zap.NewNop(), images))
		rec := serve(t, e, httptest.NewRequest(http.MethodGet, "/api/slicer_cli_web/docker_image", nil), nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "{}", strings.TrimSpace(rec.Body.String()))
	})
}

func TestCLIController(t *testing.T) {
	cli := &entities.CLIItem{ID: "cli-1", Name: "Segment", Type: "python", Image: "org/tool:v1", XML: []byte("<executable/>")}

	t.Run("list requires login", func(t *testing.T) {
		e := newTestServer(NewCLIController(zap.NewNop(), new(mockImageRegistry), new(mockEndpointRegistry)))
		rec := serve(t, e, httptest.NewRequest(http.MethodGet, "/api/slicer_cli_web/cli", nil), nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("list in folder", func(t *testing.T) {
		registry := new(mockImageRegistry)
		registry.On("ListTools", mock.Anything, "base", testUser).Return([]*entities.CLIItem{cli}, nil)

		e := newTestServer(NewCLIController(zap.NewNop(), registry, new(mockEndpointRegistry)))
		rec := serve(t, e, httptest.NewRequest(http.MethodGet, "/api/slicer_cli_web/cli?folder=base", nil), testUser)

		require.Equal(t, http.StatusOK, rec.Code)
		var dumps []CLIDump
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dumps))
		require.Len(t, dumps, 1)
		assert.Equal(t, "Segment", dumps[0].Name)
		assert.Empty(t, dumps[0].XML)
	})

	t.Run("get includes xml", func(t *testing.T) {
		registry := new(mockImageRegistry)
		registry.On("FindTool", mock.Anything, "cli-1", testUser).Return(cli, nil)

		e := newTestServer(NewCLIController(zap.NewNop(), registry, new(mockEndpointRegistry)))
		rec := serve(t, e, httptest.NewRequest(http.MethodGet, "/api/slicer_cli_web/cli/cli-1", nil), testUser)

		require.Equal(t, http.StatusOK, rec.Code)
		var dump CLIDump
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dump))
		assert.Equal(t, "<executable/>", dump.XML)
	})

	t.Run("xml", func(t *testing.T) {
		registry := new(mockImageRegistry)
		registry.On("FindTool", mock.Anything, "cli-1", testUser).Return(cli, nil)

		e := newTestServer(NewCLIController(zap.NewNop(), registry, new(mockEndpointRegistry)))
		rec := serve(t, e, httptest.NewRequest(http.MethodGet, "/api/slicer_cli_web/cli/cli-1/xml", nil), testUser)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "<executable/>", rec.Body.String())
		assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "application/xml")
	})

	t.Run("delete retracts routes", func(t *testing.T) {
		registry := new(mockImageRegistry)
		endpoints := new(mockEndpointRegistry)
		registry.On("RemoveTool", mock.Anything, "cli-1", testUser).Return(cli, nil)
		endpoints.On("RetractTool", mock.Anything, "cli-1").Return().Once()

		e := newTestServer(NewCLIController(zap.NewNop(), registry, endpoints))
		rec := serve(t, e, httptest.NewRequest(http.MethodDelete, "/api/slicer_cli_web/cli/cli-1", nil), testUser)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		endpoints.AssertExpectations(t)
	})

	t.Run("delete without write access", func(t *testing.T) {
		registry := new(mockImageRegistry)
		endpoints := new(mockEndpointRegistry)
		registry.On("RemoveTool", mock.Anything, "cli-1", testUser).Return(nil, errs.AccessDeniedErrorf("write access denied for item cli-1"))

		e := newTestServer(NewCLIController(zap.NewNop(), registry, endpoints))
		rec := serve(t, e, httptest.NewRequest(http.MethodDelete, "/api/slicer_cli_web/cli/cli-1", nil), testUser)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		endpoints.AssertNotCalled(t, "RetractTool", mock.Anything, mock.Anything)
	})
}

func TestJobController(t *testing.T) {
	job := entities.NewJob("Segment on slide.tif", "org/tool:v1#Segment", testUser.ID)

	t.Run("list own jobs", func(t *testing.T) {
		jobs := new(mockJobService)
		jobs.On("ListJobs", mock.Anything, interfaces.JobFilter{
			UserID:   testUser.ID,
			Statuses: []entities.JobStatus{entities.JobStatusQueued, entities.JobStatusRunning},
		}).Return([]*entities.Job{job}, nil)

		e := newTestServer(NewJobController(zap.NewNop(), jobs, nil, nil))
		rec := serve(t, e, httptest.NewRequest(http.MethodGet, "/api/slicer_cli_web/job?status=queued,running", nil), testUser)

		assert.Equal(t, http.StatusOK, rec.Code)
		jobs.AssertExpectations(t)
	})

	t.Run("list rejects unknown status", func(t *testing.T) {
		e := newTestServer(NewJobController(zap.NewNop(), new(mockJobService), nil, nil))
		rec := serve(t, e, httptest.NewRequest(http.MethodGet, "/api/slicer_cli_web/job?status=done", nil), testUser)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("get", func(t *testing.T) {
		jobs := new(mockJobService)
		jobs.On("GetJob", mock.Anything, "missing", testUser).Return(nil, errs.NotFoundErrorf("job not found: missing"))

		e := newTestServer(NewJobController(zap.NewNop(), jobs, nil, nil))
		rec := serve(t, e, httptest.NewRequest(http.MethodGet, "/api/slicer_cli_web/job/missing", nil), testUser)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("update takes the id from the path", func(t *testing.T) {
		jobs := new(mockJobService)
		jobs.On("UpdateJob", mock.Anything, entities.JobUpdate{JobID: job.ID, Status: entities.JobStatusSuccess, Log: "done"}).
			Return(job, nil).Once()

		e := newTestServer(NewJobController(zap.NewNop(), jobs, nil, nil))
		req := httptest.NewRequest(http.MethodPut, "/api/slicer_cli_web/job/"+job.ID,
			strings.NewReader(`{"jobId":"other","status":"success","log":"done"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := serve(t, e, req, testAdmin)

		assert.Equal(t, http.StatusOK, rec.Code)
		jobs.AssertExpectations(t)
	})

	t.Run("update requires admin", func(t *testing.T) {
		jobs := new(mockJobService)
		e := newTestServer(NewJobController(zap.NewNop(), jobs, nil, nil))
		req := httptest.NewRequest(http.MethodPut, "/api/slicer_cli_web/job/"+job.ID, strings.NewReader(`{"status":"success"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := serve(t, e, req, testUser)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		jobs.AssertNotCalled(t, "UpdateJob", mock.Anything, mock.Anything)
	})

	t.Run("claim", func(t *testing.T) {
		jobs := new(mockJobService)
		queue := new(mockJobQueue)
		queue.On("Next", mock.Anything).Return(job.ID, true).Once()
		queue.On("Next", mock.Anything).Return("", false).Once()
		jobs.On("GetJob", mock.Anything, job.ID, testAdmin).Return(job, nil)

		e := newTestServer(NewJobController(zap.NewNop(), jobs, queue, nil))
		rec := serve(t, e, httptest.NewRequest(http.MethodPost, "/api/slicer_cli_web/job/claim", nil), testAdmin)
		require.Equal(t, http.StatusOK, rec.Code)
		var claimed entities.Job
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &claimed))
		assert.Equal(t, job.ID, claimed.ID)

		rec = serve(t, e, httptest.NewRequest(http.MethodPost, "/api/slicer_cli_web/job/claim", nil), testAdmin)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("claim without local queue", func(t *testing.T) {
		e := newTestServer(NewJobController(zap.NewNop(), new(mockJobService), nil, nil))
		rec := serve(t, e, httptest.NewRequest(http.MethodPost, "/api/slicer_cli_web/job/claim", nil), testAdmin)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestFileController(t *testing.T) {
	t.Run("upload", func(t *testing.T) {
		storage := new(mockStorageService)
		stored := entities.NewFile("params.txt", "item-1", testUser.ID)
		storage.On("UploadFile", mock.Anything, mock.MatchedBy(func(u services.FileUpload) bool {
			return u.FolderID == "folder-1" && u.Name == "params.txt" && u.Size == 5 &&
				u.Reference == `{"type":"slicer_cli.parameteroutput","jobId":"job-1"}`
		}), testUser).Return(stored, nil)

		var body bytes.Buffer
		writer := multipart.NewWriter(&body)
		require.NoError(t, writer.WriteField("folderId", "folder-1"))
		require.NoError(t, writer.WriteField("reference", `{"type":"slicer_cli.parameteroutput","jobId":"job-1"}`))
		part, err := writer.CreateFormFile("file", "params.txt")
		require.NoError(t, err)
		_, err = part.Write([]byte("a = 1"))
		require.NoError(t, err)
		require.NoError(t, writer.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/slicer_cli_web/file", &body)
		req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
		e := newTestServer(NewFileController(zap.NewNop(), storage))
		rec := serve(t, e, req, testUser)

		assert.Equal(t, http.StatusCreated, rec.Code)
		storage.AssertExpectations(t)
	})

	t.Run("upload without file", func(t *testing.T) {
		e := newTestServer(NewFileController(zap.NewNop(), new(mockStorageService)))
		rec := serve(t, e, formRequest(http.MethodPost, "/api/slicer_cli_web/file", url.Values{"folderId": {"f"}}), testUser)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("download content", func(t *testing.T) {
		storage := new(mockStorageService)
		file := &entities.File{ID: "file-1", Name: "out.anot", Size: 2, MimeType: "application/json"}
		storage.On("DownloadFile", mock.Anything, "file-1", testUser).Return(file, io.NopCloser(strings.NewReader("{}")), nil)

		e := newTestServer(NewFileController(zap.NewNop(), storage))
		rec := serve(t, e, httptest.NewRequest(http.MethodGet, "/api/slicer_cli_web/file/file-1/download", nil), testUser)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "{}", rec.Body.String())
		assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), `filename="out.anot"`)
	})

	t.Run("download link", func(t *testing.T) {
		storage := new(mockStorageService)
		link := &entities.File{ID: "doc", Name: "Documentation", LinkURL: "https://example.org/doc"}
		storage.On("DownloadFile", mock.Anything, "doc", testUser).Return(link, nil, nil)

		e := newTestServer(NewFileController(zap.NewNop(), storage))
		rec := serve(t, e, httptest.NewRequest(http.MethodGet, "/api/slicer_cli_web/file/doc/download", nil), testUser)

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "https://example.org/doc", rec.Header().Get(echo.HeaderLocation))
	})

	t.Run("create folder", func(t *testing.T) {
		storage := new(mockStorageService)
		folder := entities.NewFolder("results", "", "parent", testUser.ID)
		storage.On("CreateFolder", mock.Anything, "results", "", "parent", true, testUser).Return(folder, nil)

		e := newTestServer(NewFileController(zap.NewNop(), storage))
		rec := serve(t, e, formRequest(http.MethodPost, "/api/slicer_cli_web/folder",
			url.Values{"name": {"results"}, "parentId": {"parent"}, "public": {"true"}}), testUser)

		assert.Equal(t, http.StatusCreated, rec.Code)
		storage.AssertExpectations(t)
	})

	t.Run("folder access denied", func(t *testing.T) {
		storage := new(mockStorageService)
		var anonymous *entities.User
		storage.On("LoadFolder", mock.Anything, "private", anonymous, entities.AccessRead).
			Return(nil, errs.AccessDeniedErrorf("read access denied for folder private"))

		e := newTestServer(NewFileController(zap.NewNop(), storage))
		rec := serve(t, e, httptest.NewRequest(http.MethodGet, "/api/slicer_cli_web/folder/private", nil), nil)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "read access denied for folder private", errorMessage(t, rec))
	})
}
