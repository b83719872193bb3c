package entities

import "strings"

type ParameterType string

const (
	TypeBoolean            ParameterType = "boolean"
	TypeInteger            ParameterType = "integer"
	TypeFloat              ParameterType = "float"
	TypeDouble             ParameterType = "double"
	TypeString             ParameterType = "string"
	TypeIntegerVector      ParameterType = "integer-vector"
	TypeFloatVector        ParameterType = "float-vector"
	TypeDoubleVector       ParameterType = "double-vector"
	TypeStringVector       ParameterType = "string-vector"
	TypeIntegerEnumeration ParameterType = "integer-enumeration"
	TypeFloatEnumeration   ParameterType = "float-enumeration"
	TypeDoubleEnumeration  ParameterType = "double-enumeration"
	TypeStringEnumeration  ParameterType = "string-enumeration"
	TypePoint              ParameterType = "point"
	TypeRegion             ParameterType = "region"
	TypeFile               ParameterType = "file"
	TypeDirectory          ParameterType = "directory"
	TypeImage              ParameterType = "image"
	TypeItem               ParameterType = "item"
)

var supportedTypes = map[ParameterType]bool{
	TypeBoolean: true, TypeInteger: true, TypeFloat: true, TypeDouble: true, TypeString: true,
	TypeIntegerVector: true, TypeFloatVector: true, TypeDoubleVector: true, TypeStringVector: true,
	TypeIntegerEnumeration: true, TypeFloatEnumeration: true, TypeDoubleEnumeration: true,
	TypeStringEnumeration: true, TypePoint: true, TypeRegion: true,
	TypeFile: true, TypeDirectory: true, TypeImage: true, TypeItem: true,
}

// storageModels maps storage-backed types to the storage model that holds them.
var storageModels = map[ParameterType]ResourceType{
	TypeFile:      ResourceFile,
	TypeImage:     ResourceFile,
	TypeItem:      ResourceItem,
	TypeDirectory: ResourceFolder,
}

// directTypes are passed to the container exactly as supplied.
var directTypes = map[ParameterType]bool{
	TypeBoolean: true, TypeInteger: true, TypeFloat: true, TypeDouble: true,
	TypeString: true, TypeStringEnumeration: true,
}

func (t ParameterType) Supported() bool {
	return supportedTypes[t]
}

// StorageBacked reports whether values of this type are references to
// persisted folders, items or files.
func (t ParameterType) StorageBacked() bool {
	_, ok := storageModels[t]
	return ok
}

// StorageModel returns the resource type that holds values of this type.
func (t ParameterType) StorageModel() ResourceType {
	return storageModels[t]
}

func (t ParameterType) Direct() bool {
	return directTypes[t]
}

func (t ParameterType) IsVectorType() bool {
	return strings.HasSuffix(string(t), "-vector")
}

func (t ParameterType) IsEnumeration() bool {
	return strings.HasSuffix(string(t), "-enumeration")
}

type Channel string

const (
	ChannelInput  Channel = "input"
	ChannelOutput Channel = "output"
)

type Constraints struct {
	Minimum string `json:"minimum,omitempty" xml:"minimum"`
	Maximum string `json:"maximum,omitempty" xml:"maximum"`
	Step    string `json:"step,omitempty" xml:"step"`
}

// ParameterSpec is one declared parameter of a CLI tool.
type ParameterSpec struct {
	Name           string        `json:"name"`
	Label          string        `json:"label,omitempty"`
	Description    string        `json:"description,omitempty"`
	Type           ParameterType `json:"type"`
	Channel        Channel       `json:"channel"`
	Index          *int          `json:"index,omitempty"`
	Flag           string        `json:"flag,omitempty"`
	LongFlag       string        `json:"longflag,omitempty"`
	Default        *string       `json:"default,omitempty"`
	Multiple       bool          `json:"multiple,omitempty"`
	Elements       []string      `json:"elements,omitempty"`
	FileExtensions []string      `json:"file_extensions,omitempty"`
	Reference      string        `json:"reference,omitempty"`
	ReferenceRole  string        `json:"reference_role,omitempty"`
	Constraints    *Constraints  `json:"constraints,omitempty"`
	Group          string        `json:"group,omitempty"`
	Advanced       bool          `json:"advanced,omitempty"`
}

// Identifier is the parameter's name, falling back to its long flag and then
// its short flag without leading dashes.
func (p *ParameterSpec) Identifier() string {
	if p.Name != "" {
		return p.Name
	}
	if f := strings.TrimLeft(p.LongFlag, "-"); f != "" {
		return f
	}
	return strings.TrimLeft(p.Flag, "-")
}

func (p *ParameterSpec) Indexed() bool {
	return p.Index != nil
}

func (p *ParameterSpec) IsOutput() bool {
	return p.Channel == ChannelOutput
}

// IsVector reports whether values are JSON arrays rendered as a joined list.
func (p *ParameterSpec) IsVector() bool {
	return p.Type.IsVectorType() || (p.Multiple && !p.Type.StorageBacked())
}

// IsSimpleOutput reports an output whose value is written to the return
// parameter file rather than uploaded as a storage object.
func (p *ParameterSpec) IsSimpleOutput() bool {
	return p.IsOutput() && !p.Type.StorageBacked()
}

// CommandFlag returns the flag used on the command line, preferring the long
// flag. Leading dashes are added when the schema omits them.
func (p *ParameterSpec) CommandFlag() string {
	if f := strings.TrimLeft(p.LongFlag, "-"); f != "" {
		return "--" + f
	}
	if f := strings.TrimLeft(p.Flag, "-"); f != "" {
		return "-" + f
	}
	return ""
}

// SortKey is the normalized flag used to order optional parameters.
func (p *ParameterSpec) SortKey() string {
	return strings.TrimLeft(p.CommandFlag(), "-")
}

const (
	// FolderSuffix is appended to an output parameter's identifier to name
	// the request value holding its destination folder.
	FolderSuffix = "_folder"

	ReturnParameterFileName = "returnparameterfile"
	ReturnParameterFileFlag = "--returnparameterfile"
)

// FolderKey is the request key carrying the destination folder of an output.
func (p *ParameterSpec) FolderKey() string {
	return p.Identifier() + FolderSuffix
}

// DefaultExtension returns the first declared file extension, cut at the
// first alternative separator.
func (p *ParameterSpec) DefaultExtension() string {
	if len(p.FileExtensions) == 0 {
		return ""
	}
	ext, _, _ := strings.Cut(p.FileExtensions[0], "|")
	return ext
}
