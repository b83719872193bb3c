package entities

import (
	"time"

	"github.com/google/uuid"
)

type ResourceType string

const (
	ResourceFolder ResourceType = "folder"
	ResourceItem   ResourceType = "item"
	ResourceFile   ResourceType = "file"
)

type AccessLevel int

const (
	AccessNone  AccessLevel = -1
	AccessRead  AccessLevel = 0
	AccessWrite AccessLevel = 1
	AccessAdmin AccessLevel = 2
)

func (l AccessLevel) String() string {
	switch l {
	case AccessRead:
		return "read"
	case AccessWrite:
		return "write"
	case AccessAdmin:
		return "admin"
	default:
		return "none"
	}
}

// Folder is a container of items and sub folders. Access is granted to its
// creator, to users listed in Access, and for reading to everyone when Public.
type Folder struct {
	ID          string                 `json:"_id" bson:"_id"`
	Name        string                 `json:"name" bson:"name"`
	Description string                 `json:"description" bson:"description"`
	ParentID    string                 `json:"parentId,omitempty" bson:"parent_id,omitempty"`
	CreatorID   string                 `json:"creatorId" bson:"creator_id"`
	Public      bool                   `json:"public" bson:"public"`
	Access      map[string]AccessLevel `json:"access,omitempty" bson:"access,omitempty"`
	Meta        map[string]any         `json:"meta,omitempty" bson:"meta,omitempty"`
	CreatedAt   time.Time              `json:"created" bson:"created_at"`
	UpdatedAt   time.Time              `json:"updated" bson:"updated_at"`
}

func NewFolder(name, description, parentID, creatorID string) *Folder {
	return &Folder{
		ID:          uuid.New().String(),
		Name:        name,
		Description: description,
		ParentID:    parentID,
		CreatorID:   creatorID,
		Access:      map[string]AccessLevel{},
		Meta:        map[string]any{},
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
}

// Item lives in a folder and inherits the folder's access.
type Item struct {
	ID          string         `json:"_id" bson:"_id"`
	Name        string         `json:"name" bson:"name"`
	Description string         `json:"description" bson:"description"`
	FolderID    string         `json:"folderId" bson:"folder_id"`
	CreatorID   string         `json:"creatorId" bson:"creator_id"`
	Meta        map[string]any `json:"meta,omitempty" bson:"meta,omitempty"`
	CreatedAt   time.Time      `json:"created" bson:"created_at"`
	UpdatedAt   time.Time      `json:"updated" bson:"updated_at"`
}

func NewItem(name, description, folderID, creatorID string) *Item {
	return &Item{
		ID:          uuid.New().String(),
		Name:        name,
		Description: description,
		FolderID:    folderID,
		CreatorID:   creatorID,
		Meta:        map[string]any{},
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
}

// File is either blob content attached to an item or a link to an external URL.
type File struct {
	ID        string    `json:"_id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	ItemID    string    `json:"itemId" bson:"item_id"`
	CreatorID string    `json:"creatorId" bson:"creator_id"`
	Size      int64     `json:"size" bson:"size"`
	MimeType  string    `json:"mimeType,omitempty" bson:"mime_type,omitempty"`
	LinkURL   string    `json:"linkUrl,omitempty" bson:"link_url,omitempty"`
	Reference string    `json:"reference,omitempty" bson:"reference,omitempty"`
	CreatedAt time.Time `json:"created" bson:"created_at"`
}

func NewFile(name, itemID, creatorID string) *File {
	return &File{
		ID:        uuid.New().String(),
		Name:      name,
		ItemID:    itemID,
		CreatorID: creatorID,
		CreatedAt: time.Now(),
	}
}

// User is the authenticated caller of a request.
type User struct {
	ID    string `json:"id"`
	Login string `json:"login"`
	Admin bool   `json:"admin"`
}
