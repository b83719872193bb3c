package services

import (
	"context"
	"encoding/json"

	"github.com/drujensen/cliweb/internal/domain/entities"
	"github.com/drujensen/cliweb/internal/domain/errs"
	"github.com/drujensen/cliweb/internal/impl/clispec"

	"go.uber.org/zap"
)

// BindingService turns the values a caller supplies for a CLI into
// container arguments, storage bindings and result hooks.
type BindingService interface {
	Bind(ctx context.Context, exe *entities.Executable, values map[string]string, user *entities.User, jobID string) (*entities.BoundTask, error)
}

type bindingService struct {
	storage StorageService
	logger  *zap.Logger
}

func NewBindingService(storage StorageService, logger *zap.Logger) *bindingService {
	return &bindingService{
		storage: storage,
		logger:  logger,
	}
}

// Bind emits optional parameters in flag order, then the return parameter
// file when requested, then indexed parameters in index order. Output hooks
// follow the order of their arguments. Nothing is bound partially: the
// first invalid value fails the whole call.
func (s *bindingService) Bind(ctx context.Context, exe *entities.Executable, values map[string]string, user *entities.User, jobID string) (*entities.BoundTask, error) {
	task := &entities.BoundTask{ContainerArgs: []entities.ContainerArg{}, ResultHooks: []entities.ResultHook{}}

	for _, p := range exe.OptionalParams {
		if p.IsOutput() {
			if err := s.bindOptionalOutput(ctx, task, p, values, user); err != nil {
				return nil, err
			}
			continue
		}
		if err := s.bindOptionalInput(ctx, task, p, values, user); err != nil {
			return nil, err
		}
	}

	if exe.HasSimpleReturnFile {
		if err := s.bindReturnParameterFile(ctx, task, values, user, jobID); err != nil {
			return nil, err
		}
	}

	for _, p := range exe.IndexedParams {
		if p.IsOutput() {
			if err := s.bindIndexedOutput(ctx, task, p, values, user); err != nil {
				return nil, err
			}
			continue
		}
		if err := s.bindIndexedInput(ctx, task, p, values, user); err != nil {
			return nil, err
		}
	}
	return task, nil
}

func (s *bindingService) bindOptionalInput(ctx context.Context, task *entities.BoundTask, p *entities.ParameterSpec,
	values map[string]string, user *entities.User) error {
	value, ok := values[p.Identifier()]
	if !ok {
		return nil
	}
	arg, _, err := s.inputArg(ctx, p, value, user)
	if err != nil {
		return err
	}
	task.ContainerArgs = append(task.ContainerArgs, entities.LiteralArg(p.CommandFlag()), arg)
	return nil
}

func (s *bindingService) bindOptionalOutput(ctx context.Context, task *entities.BoundTask, p *entities.ParameterSpec,
	values map[string]string, user *entities.User) error {
	if !p.Type.StorageBacked() {
		return nil
	}
	name, hasName := values[p.Identifier()]
	folderID, hasFolder := values[p.FolderKey()]
	if !hasName || !hasFolder {
		return nil
	}
	arg, err := s.outputArg(ctx, task, p.Identifier(), folderID, name, "", user)
	if err != nil {
		return err
	}
	task.ContainerArgs = append(task.ContainerArgs, entities.LiteralArg(p.CommandFlag()), arg)
	return nil
}

func (s *bindingService) bindReturnParameterFile(ctx context.Context, task *entities.BoundTask,
	values map[string]string, user *entities.User, jobID string) error {
	name, hasName := values[entities.ReturnParameterFileName]
	folderID, hasFolder := values[entities.ReturnParameterFileName+entities.FolderSuffix]
	if !hasName || !hasFolder {
		return nil
	}
	reference, err := json.Marshal(map[string]string{
		"type":  entities.ParameterOutputReference,
		"jobId": jobID,
	})
	if err != nil {
		return errs.InternalErrorf("failed to encode output reference: %v", err)
	}
	arg, err := s.outputArg(ctx, task, entities.ReturnParameterFileName, folderID, name, string(reference), user)
	if err != nil {
		return err
	}
	task.ContainerArgs = append(task.ContainerArgs, entities.LiteralArg(entities.ReturnParameterFileFlag), arg)
	return nil
}

func (s *bindingService) bindIndexedInput(ctx context.Context, task *entities.BoundTask, p *entities.ParameterSpec,
	values map[string]string, user *entities.User) error {
	value, ok := values[p.Identifier()]
	if !ok {
		return errs.ValidationErrorf("parameter %q is required", p.Identifier())
	}
	arg, name, err := s.inputArg(ctx, p, value, user)
	if err != nil {
		return err
	}
	if task.PrimaryInputName == "" && p.Type.StorageBacked() && p.Type != entities.TypeDirectory {
		task.PrimaryInputName = name
	}
	task.ContainerArgs = append(task.ContainerArgs, arg)
	return nil
}

func (s *bindingService) bindIndexedOutput(ctx context.Context, task *entities.BoundTask, p *entities.ParameterSpec,
	values map[string]string, user *entities.User) error {
	if !p.Type.StorageBacked() {
		return &errs.InvalidIndexedOutputTypeError{Parameter: p.Identifier(), Index: *p.Index, Type: string(p.Type)}
	}
	name, ok := values[p.Identifier()]
	if !ok {
		return errs.ValidationErrorf("parameter %q is required", p.Identifier())
	}
	folderID, ok := values[p.FolderKey()]
	if !ok {
		return errs.ValidationErrorf("parameter %q is required", p.FolderKey())
	}
	arg, err := s.outputArg(ctx, task, p.Identifier(), folderID, name, "", user)
	if err != nil {
		return err
	}
	task.ContainerArgs = append(task.ContainerArgs, arg)
	return nil
}

// inputArg binds one input value. Storage references are checked for read
// access and returned with the referenced object's name.
func (s *bindingService) inputArg(ctx context.Context, p *entities.ParameterSpec, value string, user *entities.User) (entities.ContainerArg, string, error) {
	if !p.Type.StorageBacked() {
		token, err := clispec.FormatValue(p, value)
		if err != nil {
			s.logger.Warn("Parameter value is not in JSON format",
				zap.String("parameter", p.Identifier()),
				zap.String("type", string(p.Type)),
				zap.String("value", value))
			return entities.ContainerArg{}, "", err
		}
		return entities.LiteralArg(token), "", nil
	}

	model := p.Type.StorageModel()
	name, err := s.loadName(ctx, model, value, user)
	if err != nil {
		return entities.ContainerArg{}, "", err
	}
	return entities.ContainerArg{
		Kind: entities.ArgInput,
		Input: &entities.InputBinding{
			Parameter:    p.Identifier(),
			ResourceType: model,
			ID:           value,
			Name:         name,
		},
	}, name, nil
}

func (s *bindingService) loadName(ctx context.Context, model entities.ResourceType, id string, user *entities.User) (string, error) {
	var (
		name string
		err  error
	)
	switch model {
	case entities.ResourceFolder:
		var folder *entities.Folder
		if folder, err = s.storage.LoadFolder(ctx, id, user, entities.AccessRead); err == nil {
			name = folder.Name
		}
	case entities.ResourceItem:
		var item *entities.Item
		if item, err = s.storage.LoadItem(ctx, id, user, entities.AccessRead); err == nil {
			name = item.Name
		}
	default:
		var file *entities.File
		if file, err = s.storage.LoadFile(ctx, id, user, entities.AccessRead); err == nil {
			name = file.Name
		}
	}
	if err != nil {
		return "", referenceError(model, id, err)
	}
	return name, nil
}

// outputArg checks write access to the destination folder and records the
// upload hook for the output.
func (s *bindingService) outputArg(ctx context.Context, task *entities.BoundTask, parameter, folderID, name, reference string,
	user *entities.User) (entities.ContainerArg, error) {
	if _, err := s.storage.LoadFolder(ctx, folderID, user, entities.AccessWrite); err != nil {
		return entities.ContainerArg{}, referenceError(entities.ResourceFolder, folderID, err)
	}
	task.ResultHooks = append(task.ResultHooks, entities.ResultHook{
		Type:      entities.HookUploadToFolder,
		Parameter: parameter,
		FolderID:  folderID,
		Name:      name,
		Reference: reference,
	})
	return entities.ContainerArg{
		Kind: entities.ArgOutput,
		Output: &entities.OutputBinding{
			Parameter: parameter,
			FolderID:  folderID,
			Name:      name,
			Reference: reference,
		},
	}, nil
}

// referenceError reports missing and inaccessible objects alike.
func referenceError(model entities.ResourceType, id string, err error) error {
	switch err.(type) {
	case *errs.NotFoundError, *errs.AccessDeniedError, *errs.ValidationError:
		return &errs.InvalidReferenceError{Kind: string(model), ID: id}
	}
	return err
}

var _ BindingService = &bindingService{}
