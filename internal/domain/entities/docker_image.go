package entities

import (
	"fmt"
	"strings"
	"time"

	"github.com/distribution/reference"
)

const (
	MetaIsImage = "isSlicerCLIImage"
	MetaIsTask  = "isSlicerCLITask"
	MetaType    = "type"
	MetaXML     = "xml"
	MetaImage   = "image"
	MetaDigest  = "digest"
)

// DockerImage is a registered container image, persisted as a folder named
// after the image reference.
type DockerImage struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Image     string    `json:"image"`
	Tag       string    `json:"tag"`
	Digest    string    `json:"digest,omitempty"`
	RestPath  string    `json:"restPath"`
	CreatedAt time.Time `json:"created"`
	Folder    *Folder   `json:"-"`
}

func NewDockerImage(folder *Folder) *DockerImage {
	image, tag := SplitImageName(folder.Name)
	img := &DockerImage{
		ID:        folder.ID,
		Name:      folder.Name,
		Image:     image,
		Tag:       tag,
		RestPath:  RestPath(folder.Name),
		CreatedAt: folder.CreatedAt,
		Folder:    folder,
	}
	if d, ok := folder.Meta[MetaDigest].(string); ok {
		img.Digest = d
	}
	return img
}

// SplitImageName splits an image reference into its repository and its tag
// or digest.
func SplitImageName(name string) (string, string) {
	if named, err := reference.ParseNormalizedNamed(name); err == nil {
		repo := reference.FamiliarName(named)
		if tagged, ok := named.(reference.Tagged); ok {
			return repo, tagged.Tag()
		}
		if digested, ok := named.(reference.Digested); ok {
			return repo, digested.Digest().String()
		}
	}
	sep := ":"
	if !strings.Contains(name, sep) {
		sep = "@"
	}
	if i := strings.LastIndex(name, sep); i >= 0 {
		return name[:i], name[i+1:]
	}
	return name, ""
}

// ValidateImageName checks that an image name carries a tag or a digest.
func ValidateImageName(name string) error {
	if !strings.Contains(name, ":") && !strings.Contains(name, "@") {
		return fmt.Errorf("Image %s does not have a tag or digest", name)
	}
	named, err := reference.ParseNormalizedNamed(name)
	if err != nil {
		return fmt.Errorf("Image %s is not a valid image reference: %v", name, err)
	}
	_, tagged := named.(reference.Tagged)
	_, digested := named.(reference.Digested)
	if !tagged && !digested {
		return fmt.Errorf("Image %s does not have a tag or digest", name)
	}
	return nil
}

// RestPath turns an image name into a single URL path segment.
func RestPath(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

// CLIItem is one runnable tool of a registered image, persisted as an item
// inside the image folder.
type CLIItem struct {
	ID          string            `json:"_id"`
	Name        string            `json:"name"`
	Type        string            `json:"type"`
	Description string            `json:"description"`
	Image       string            `json:"image"`
	Digest      string            `json:"digest"`
	XML         []byte            `json:"-"`
	FolderID    string            `json:"folderId"`
	Meta        map[string]string `json:"meta,omitempty"`
	CreatedAt   time.Time         `json:"created"`
}

func NewCLIItem(item *Item) (*CLIItem, error) {
	xml, ok := item.Meta[MetaXML].(string)
	if !ok {
		return nil, fmt.Errorf("item %s has no CLI xml", item.ID)
	}
	cli := &CLIItem{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		XML:         []byte(xml),
		FolderID:    item.FolderID,
		Meta:        map[string]string{},
		CreatedAt:   item.CreatedAt,
	}
	cli.Type, _ = item.Meta[MetaType].(string)
	cli.Image, _ = item.Meta[MetaImage].(string)
	cli.Digest, _ = item.Meta[MetaDigest].(string)
	for _, k := range []string{"category", "version", "license", "contributor", "acknowledgements"} {
		if v, ok := item.Meta[k].(string); ok {
			cli.Meta[k] = v
		}
	}
	return cli, nil
}

// RestBasePath is the path segment shared by all tools of the CLI's image.
func (c *CLIItem) RestBasePath() string {
	return RestPath(c.Image)
}

// JobType tags jobs that run this CLI.
func (c *CLIItem) JobType() string {
	return c.Image + "#" + c.Name
}

// RunImage is the image reference handed to the container runtime,
// pinned to the content digest when known.
func (c *CLIItem) RunImage() string {
	if c.Digest != "" {
		return c.Digest
	}
	return c.Image
}

// CLIDocument is the raw parameter schema of one CLI as reported by image
// inspection. Exactly one of XML, JSON or YAML is set.
type CLIDocument struct {
	Type string `json:"type"`
	XML  string `json:"xml,omitempty"`
	JSON string `json:"json,omitempty"`
	YAML string `json:"yaml,omitempty"`
}

// ImageInspection is what an image registration job reports for one image.
type ImageInspection struct {
	Name   string                 `json:"name"`
	Digest string                 `json:"digest,omitempty"`
	CLIs   map[string]CLIDocument `json:"clis"`
}
