package services

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/drujensen/cliweb/internal/domain/entities"
	"github.com/drujensen/cliweb/internal/domain/errs"
	"github.com/drujensen/cliweb/internal/domain/interfaces"

	"go.uber.org/zap"
)

const (
	pullImagesJobTitle   = "Pulling and caching docker images"
	deleteImagesJobTitle = "Deleting Docker Images"
)

type DockerImageService interface {
	ParseImageNameList(raw string) ([]string, error)
	AddImages(ctx context.Context, names []string, folderID string, user *entities.User) (*entities.Job, error)
	DeleteImages(ctx context.Context, names []string, deleteFromLocal bool, user *entities.User) (*entities.Job, error)
	ListImages(ctx context.Context, user *entities.User) (entities.ImageListing, error)
}

type dockerImageService struct {
	registry      ImageRegistry
	storage       StorageService
	jobs          JobService
	endpoints     interfaces.EndpointRegistry
	defaultFolder string
	logger        *zap.Logger
}

func NewDockerImageService(registry ImageRegistry, storage StorageService, jobs JobService,
	endpoints interfaces.EndpointRegistry, defaultFolder string, logger *zap.Logger) *dockerImageService {
	return &dockerImageService{
		registry:      registry,
		storage:       storage,
		jobs:          jobs,
		endpoints:     endpoints,
		defaultFolder: defaultFolder,
		logger:        logger,
	}
}

// ParseImageNameList accepts a bare image name, a JSON string or a JSON
// list of strings. Every name must carry a tag or a digest.
func (s *dockerImageService) ParseImageNameList(raw string) ([]string, error) {
	var decoded any = raw
	var parsed any
	if err := json.Unmarshal([]byte(raw), &parsed); err == nil {
		decoded = parsed
	}

	var names []string
	switch v := decoded.(type) {
	case string:
		names = []string{v}
	case []any:
		for _, n := range v {
			name, ok := n.(string)
			if !ok {
				return nil, errs.ValidationErrorf("%v is not a valid string.", n)
			}
			names = append(names, name)
		}
	default:
		return nil, errs.ValidationErrorf("A valid string or a list of strings is required.")
	}

	for _, name := range names {
		if err := entities.ValidateImageName(name); err != nil {
			return nil, errs.ValidationErrorf("%v", err)
		}
	}
	return names, nil
}

func requireAdmin(user *entities.User) error {
	if user == nil || !user.Admin {
		return errs.AccessDeniedErrorf("You are not a system administrator.")
	}
	return nil
}

// AddImages schedules a job that pulls and inspects the images. The folder
// given with the request takes precedence over the configured default.
func (s *dockerImageService) AddImages(ctx context.Context, names []string, folderID string, user *entities.User) (*entities.Job, error) {
	if err := requireAdmin(user); err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, errs.ValidationErrorf("at least one image name is required")
	}
	if folderID == "" {
		folderID = s.defaultFolder
	}
	if folderID == "" {
		return nil, errs.ValidationErrorf("no upload folder given or defined by default")
	}
	if _, err := s.storage.LoadFolder(ctx, folderID, user, entities.AccessWrite); err != nil {
		return nil, err
	}

	job := entities.NewJob(pullImagesJobTitle, entities.ImageJobType, user.ID)
	job.Public = true
	job.Kwargs["nameList"] = names
	job.Kwargs["folder"] = folderID
	if err := s.jobs.CreateJob(ctx, job); err != nil {
		return nil, err
	}
	if err := s.jobs.ScheduleJob(ctx, job); err != nil {
		return nil, err
	}
	s.logger.Info("Scheduled image registration", zap.String("job_id", job.ID), zap.Strings("images", names))
	return job, nil
}

// DeleteImages removes registered images and their routes. When
// deleteFromLocal is set, a job removing the images from the local
// container store is scheduled and returned.
func (s *dockerImageService) DeleteImages(ctx context.Context, names []string, deleteFromLocal bool, user *entities.User) (*entities.Job, error) {
	if err := requireAdmin(user); err != nil {
		return nil, err
	}
	removed, err := s.registry.RemoveImages(ctx, names, user)
	if err != nil {
		return nil, err
	}
	for _, name := range removed {
		s.endpoints.RetractRoutes(ctx, name)
	}

	var rest []string
	for _, name := range names {
		if !slices.Contains(removed, name) {
			rest = append(rest, "'"+name+"'")
		}
	}
	if len(rest) > 0 {
		return nil, errs.ValidationErrorf("Some docker images could not be removed. [%s]", strings.Join(rest, ", "))
	}

	if !deleteFromLocal || len(removed) == 0 {
		return nil, nil
	}
	job := entities.NewJob(deleteImagesJobTitle, entities.ImageJobType, user.ID)
	job.Public = true
	job.Kwargs["deleteList"] = removed
	if err := s.jobs.CreateJob(ctx, job); err != nil {
		return nil, err
	}
	if err := s.jobs.ScheduleJob(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

// ListImages reports, per repository and tag, the CLIs the user can see
// that currently have routes. Anonymous callers get an empty listing.
func (s *dockerImageService) ListImages(ctx context.Context, user *entities.User) (entities.ImageListing, error) {
	listing := entities.ImageListing{}
	if user == nil {
		return listing, nil
	}

	images, err := s.registry.FindAllImages(ctx, user)
	if err != nil {
		return nil, err
	}
	endpoints := s.endpoints.Endpoints()
	for _, image := range images {
		clis, err := s.registry.ImageCLIs(ctx, image, user)
		if err != nil {
			return nil, err
		}
		data := map[string]entities.CLIEndpoints{}
		for _, cli := range clis {
			info, ok := endpoints[cli.ID]
			if !ok {
				s.logger.Warn(fmt.Sprintf("%q not present in endpoint data.", cli.Name), zap.String("image", image.Name))
				continue
			}
			data[cli.Name] = entities.CLIEndpoints{
				Type:    cli.Type,
				XMLSpec: info.XMLSpecPath,
				Run:     info.RunPath,
			}
		}
		if listing[image.Image] == nil {
			listing[image.Image] = map[string]map[string]entities.CLIEndpoints{}
		}
		listing[image.Image][image.Tag] = data
	}
	return listing, nil
}

var _ DockerImageService = &dockerImageService{}
