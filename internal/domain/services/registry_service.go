package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/drujensen/cliweb/internal/domain/entities"
	"github.com/drujensen/cliweb/internal/domain/errs"
	"github.com/drujensen/cliweb/internal/domain/interfaces"
	"github.com/drujensen/cliweb/internal/impl/clispec"

	"github.com/pmezard/go-difflib/difflib"
	"go.uber.org/zap"
)

const (
	imageFolderDescription = "Slicer CLI generated docker image folder"
	documentationLinkName  = "Documentation"
)

// ImageRegistry maps the image folders and CLI items held in storage to
// registered images and tools. Methods taking a user filter by that user's
// access; a nil user sees everything and is reserved for internal callers
// such as route rebuilding.
type ImageRegistry interface {
	FindAllImages(ctx context.Context, user *entities.User) ([]*entities.DockerImage, error)
	FindAllTools(ctx context.Context, user *entities.User) ([]*entities.CLIItem, error)
	FindTool(ctx context.Context, id string, user *entities.User) (*entities.CLIItem, error)
	ImageCLIs(ctx context.Context, image *entities.DockerImage, user *entities.User) ([]*entities.CLIItem, error)
	ListTools(ctx context.Context, baseFolderID string, user *entities.User) ([]*entities.CLIItem, error)
	RemoveImages(ctx context.Context, names []string, user *entities.User) ([]string, error)
	RemoveTool(ctx context.Context, id string, user *entities.User) (*entities.CLIItem, error)
	SaveImage(ctx context.Context, inspection entities.ImageInspection, baseFolderID, creatorID string) (*entities.DockerImage, error)
}

type imageRegistry struct {
	folderRepo interfaces.FolderRepository
	itemRepo   interfaces.ItemRepository
	fileRepo   interfaces.FileRepository
	storage    StorageService
	logger     *zap.Logger
}

func NewImageRegistry(folderRepo interfaces.FolderRepository, itemRepo interfaces.ItemRepository,
	fileRepo interfaces.FileRepository, storage StorageService, logger *zap.Logger) *imageRegistry {
	return &imageRegistry{
		folderRepo: folderRepo,
		itemRepo:   itemRepo,
		fileRepo:   fileRepo,
		storage:    storage,
		logger:     logger,
	}
}

func (r *imageRegistry) canAccess(folder *entities.Folder, user *entities.User, level entities.AccessLevel) bool {
	return user == nil || r.storage.FolderAccess(folder, user) >= level
}

func (r *imageRegistry) FindAllImages(ctx context.Context, user *entities.User) ([]*entities.DockerImage, error) {
	return r.findImages(ctx, interfaces.FolderFilter{MetaKey: entities.MetaIsImage}, user)
}

func (r *imageRegistry) findImages(ctx context.Context, filter interfaces.FolderFilter, user *entities.User) ([]*entities.DockerImage, error) {
	folders, err := r.folderRepo.ListFolders(ctx, filter)
	if err != nil {
		return nil, err
	}
	var images []*entities.DockerImage
	for _, folder := range folders {
		if r.canAccess(folder, user, entities.AccessRead) {
			images = append(images, entities.NewDockerImage(folder))
		}
	}
	return images, nil
}

func (r *imageRegistry) ImageCLIs(ctx context.Context, image *entities.DockerImage, user *entities.User) ([]*entities.CLIItem, error) {
	if image.Folder != nil && !r.canAccess(image.Folder, user, entities.AccessRead) {
		return nil, nil
	}
	items, err := r.itemRepo.ListItems(ctx, interfaces.ItemFilter{FolderIDs: []string{image.ID}, MetaKey: entities.MetaIsTask})
	if err != nil {
		return nil, err
	}
	clis := make([]*entities.CLIItem, 0, len(items))
	for _, item := range items {
		cli, err := entities.NewCLIItem(item)
		if err != nil {
			r.logger.Warn("Skipping CLI item without schema", zap.String("item_id", item.ID), zap.Error(err))
			continue
		}
		if cli.Image == "" {
			cli.Image = image.Name
		}
		clis = append(clis, cli)
	}
	return clis, nil
}

func (r *imageRegistry) FindAllTools(ctx context.Context, user *entities.User) ([]*entities.CLIItem, error) {
	images, err := r.FindAllImages(ctx, user)
	if err != nil {
		return nil, err
	}
	return r.toolsOf(ctx, images, user)
}

func (r *imageRegistry) toolsOf(ctx context.Context, images []*entities.DockerImage, user *entities.User) ([]*entities.CLIItem, error) {
	var tools []*entities.CLIItem
	for _, image := range images {
		clis, err := r.ImageCLIs(ctx, image, user)
		if err != nil {
			return nil, err
		}
		tools = append(tools, clis...)
	}
	return tools, nil
}

// ListTools lists the tools visible to the user, restricted to images
// registered under baseFolderID when it is set.
func (r *imageRegistry) ListTools(ctx context.Context, baseFolderID string, user *entities.User) ([]*entities.CLIItem, error) {
	if baseFolderID == "" {
		return r.FindAllTools(ctx, user)
	}
	if _, err := r.storage.LoadFolder(ctx, baseFolderID, user, entities.AccessRead); err != nil {
		return nil, err
	}
	images, err := r.findImages(ctx, interfaces.FolderFilter{ParentID: baseFolderID, MetaKey: entities.MetaIsImage}, user)
	if err != nil {
		return nil, err
	}
	return r.toolsOf(ctx, images, user)
}

func (r *imageRegistry) FindTool(ctx context.Context, id string, user *entities.User) (*entities.CLIItem, error) {
	if id == "" {
		return nil, errs.ValidationErrorf("CLI id is required")
	}
	var (
		item *entities.Item
		err  error
	)
	if user == nil {
		item, err = r.itemRepo.GetItem(ctx, id)
	} else {
		item, err = r.storage.LoadItem(ctx, id, user, entities.AccessRead)
	}
	if err != nil {
		return nil, err
	}
	if isTask, _ := item.Meta[entities.MetaIsTask].(bool); !isTask {
		return nil, errs.NotFoundErrorf("CLI not found: %s", id)
	}
	return entities.NewCLIItem(item)
}

func (r *imageRegistry) RemoveTool(ctx context.Context, id string, user *entities.User) (*entities.CLIItem, error) {
	item, err := r.storage.LoadItem(ctx, id, user, entities.AccessWrite)
	if err != nil {
		return nil, err
	}
	cli, err := entities.NewCLIItem(item)
	if err != nil {
		return nil, errs.NotFoundErrorf("CLI not found: %s", id)
	}
	if err := r.deleteItem(ctx, item.ID); err != nil {
		return nil, err
	}
	r.logger.Info("CLI removed", zap.String("item_id", id), zap.String("name", cli.Name))
	return cli, nil
}

// RemoveImages deletes the image folders with the given names that the user
// may write to, and returns the names actually removed.
func (r *imageRegistry) RemoveImages(ctx context.Context, names []string, user *entities.User) ([]string, error) {
	folders, err := r.folderRepo.ListFolders(ctx, interfaces.FolderFilter{Names: names, MetaKey: entities.MetaIsImage})
	if err != nil {
		return nil, err
	}
	removed := map[string]bool{}
	for _, folder := range folders {
		if !r.canAccess(folder, user, entities.AccessWrite) {
			continue
		}
		items, err := r.itemRepo.ListItems(ctx, interfaces.ItemFilter{FolderIDs: []string{folder.ID}})
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			if err := r.deleteItem(ctx, item.ID); err != nil {
				return nil, err
			}
		}
		if err := r.folderRepo.DeleteFolder(ctx, folder.ID); err != nil {
			return nil, err
		}
		removed[folder.Name] = true
		r.logger.Info("Docker image removed", zap.String("image", folder.Name), zap.String("folder_id", folder.ID))
	}

	var result []string
	for _, name := range names {
		if removed[name] && !slices.Contains(result, name) {
			result = append(result, name)
		}
	}
	return result, nil
}

func (r *imageRegistry) deleteItem(ctx context.Context, id string) error {
	files, err := r.fileRepo.ListFiles(ctx, id)
	if err != nil {
		return err
	}
	for _, f := range files {
		if err := r.fileRepo.DeleteFile(ctx, f.ID); err != nil {
			return err
		}
	}
	return r.itemRepo.DeleteItem(ctx, id)
}

// SaveImage stores the CLIs an inspection found for one image under the
// base folder. The image folder and the items of CLIs that already exist
// are reused so their ids stay stable across re-registration; CLIs the
// image no longer provides are removed. CLIs whose schema does not parse
// are skipped and reported in the returned error alongside the saved image.
func (r *imageRegistry) SaveImage(ctx context.Context, inspection entities.ImageInspection, baseFolderID, creatorID string) (*entities.DockerImage, error) {
	if err := entities.ValidateImageName(inspection.Name); err != nil {
		return nil, errs.ValidationErrorf("%v", err)
	}

	folder, err := r.imageFolder(ctx, inspection, baseFolderID, creatorID)
	if err != nil {
		return nil, err
	}

	existing, err := r.itemRepo.ListItems(ctx, interfaces.ItemFilter{FolderIDs: []string{folder.ID}, MetaKey: entities.MetaIsTask})
	if err != nil {
		return nil, err
	}
	byName := map[string]*entities.Item{}
	for _, item := range existing {
		byName[item.Name] = item
	}

	names := make([]string, 0, len(inspection.CLIs))
	for name := range inspection.CLIs {
		names = append(names, name)
	}
	sort.Strings(names)

	var failures []error
	kept := map[string]bool{}
	for _, name := range names {
		if err := r.saveCLI(ctx, folder, inspection, name, byName[name], creatorID); err != nil {
			r.logger.Error("Failed to store CLI",
				zap.String("image", inspection.Name), zap.String("cli", name), zap.Error(err))
			failures = append(failures, fmt.Errorf("%s: %w", name, err))
			continue
		}
		kept[name] = true
	}

	for name, item := range byName {
		if kept[name] {
			continue
		}
		if err := r.deleteItem(ctx, item.ID); err != nil {
			return nil, err
		}
		r.logger.Info("Removed CLI no longer provided by image",
			zap.String("image", inspection.Name), zap.String("cli", name))
	}

	return entities.NewDockerImage(folder), errors.Join(failures...)
}

func (r *imageRegistry) imageFolder(ctx context.Context, inspection entities.ImageInspection, baseFolderID, creatorID string) (*entities.Folder, error) {
	if _, err := r.folderRepo.GetFolder(ctx, baseFolderID); err != nil {
		return nil, err
	}
	folders, err := r.folderRepo.ListFolders(ctx, interfaces.FolderFilter{ParentID: baseFolderID, Names: []string{inspection.Name}})
	if err != nil {
		return nil, err
	}

	var folder *entities.Folder
	if len(folders) > 0 {
		folder = folders[0]
	} else {
		folder = entities.NewFolder(inspection.Name, imageFolderDescription, baseFolderID, creatorID)
	}
	if folder.Meta == nil {
		folder.Meta = map[string]any{}
	}
	folder.Meta[entities.MetaIsImage] = true
	if inspection.Digest != "" {
		folder.Meta[entities.MetaDigest] = inspection.Digest
	}
	folder.UpdatedAt = time.Now()

	if len(folders) > 0 {
		err = r.folderRepo.UpdateFolder(ctx, folder)
	} else {
		err = r.folderRepo.CreateFolder(ctx, folder)
	}
	if err != nil {
		return nil, err
	}
	return folder, nil
}

func (r *imageRegistry) saveCLI(ctx context.Context, folder *entities.Folder, inspection entities.ImageInspection,
	name string, item *entities.Item, creatorID string) error {
	raw, format, err := clispec.FormatOf(inspection.CLIs[name])
	if err != nil {
		return errs.SchemaErrorf("%v", err)
	}
	xml, err := clispec.ToXML(raw, format)
	if err != nil {
		return err
	}
	exe, err := clispec.ParseXML(xml)
	if err != nil {
		return err
	}

	created := item == nil
	if created {
		item = entities.NewItem(name, "", folder.ID, creatorID)
	} else if previous, _ := item.Meta[entities.MetaXML].(string); previous != string(xml) {
		diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(previous),
			B:        difflib.SplitLines(string(xml)),
			FromFile: "previous",
			ToFile:   "current",
			Context:  1,
		})
		r.logger.Debug("CLI schema changed",
			zap.String("image", inspection.Name), zap.String("cli", name), zap.String("diff", diff))
	}

	item.Description = fmt.Sprintf("**%s**\n\n%s", exe.Title, exe.Description)
	item.Meta = map[string]any{
		entities.MetaIsTask: true,
		entities.MetaType:   inspection.CLIs[name].Type,
		entities.MetaXML:    string(xml),
		entities.MetaImage:  inspection.Name,
		entities.MetaDigest: inspection.Digest,
	}
	for k, v := range exe.Metadata() {
		item.Meta[k] = v
	}
	item.UpdatedAt = time.Now()

	if created {
		err = r.itemRepo.CreateItem(ctx, item)
	} else {
		err = r.itemRepo.UpdateItem(ctx, item)
	}
	if err != nil {
		return err
	}

	if exe.DocumentationURL != "" {
		if _, err := r.storage.CreateLinkFile(ctx, item, documentationLinkName, exe.DocumentationURL, creatorID); err != nil {
			return err
		}
	}
	return nil
}

var _ ImageRegistry = &imageRegistry{}
