package entities

type ArgKind string

const (
	ArgLiteral ArgKind = "literal"
	ArgInput   ArgKind = "input"
	ArgOutput  ArgKind = "output"
)

// ContainerArg is one materialized container invocation argument: a literal
// token, a storage input to mount, or an output path to upload afterwards.
type ContainerArg struct {
	Kind   ArgKind        `json:"kind" bson:"kind"`
	Value  string         `json:"value,omitempty" bson:"value,omitempty"`
	Input  *InputBinding  `json:"input,omitempty" bson:"input,omitempty"`
	Output *OutputBinding `json:"output,omitempty" bson:"output,omitempty"`
}

func LiteralArg(value string) ContainerArg {
	return ContainerArg{Kind: ArgLiteral, Value: value}
}

// InputBinding is resolved into a mounted path when the job runs.
type InputBinding struct {
	Parameter    string       `json:"parameter" bson:"parameter"`
	ResourceType ResourceType `json:"resource_type" bson:"resource_type"`
	ID           string       `json:"id" bson:"id"`
	Name         string       `json:"name" bson:"name"`
}

// OutputBinding is a path inside the output volume whose content is uploaded
// to FolderID once the job has succeeded.
type OutputBinding struct {
	Parameter string `json:"parameter" bson:"parameter"`
	FolderID  string `json:"folder_id" bson:"folder_id"`
	Name      string `json:"name" bson:"name"`
	Reference string `json:"reference,omitempty" bson:"reference,omitempty"`
}

type HookType string

const HookUploadToFolder HookType = "upload_to_folder"

// ResultHook is a deferred action run, in order, after the job succeeds.
type ResultHook struct {
	Type      HookType `json:"type" bson:"type"`
	Parameter string   `json:"parameter" bson:"parameter"`
	FolderID  string   `json:"folder_id" bson:"folder_id"`
	Name      string   `json:"name" bson:"name"`
	Reference string   `json:"reference,omitempty" bson:"reference,omitempty"`
}

// BoundTask is the outcome of binding request parameters to a CLI.
type BoundTask struct {
	ContainerArgs    []ContainerArg
	ResultHooks      []ResultHook
	PrimaryInputName string
}
