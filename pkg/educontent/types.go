package educontent

import (
	"time"

	"github.com/google/uuid"
)

// BackendKind distinguishes where a stored file physically lives.
type BackendKind string

// Backend kinds (typed).
const (
	BackendLocal  BackendKind = "local"
	BackendRemote BackendKind = "remote"
)

// MediaClass is a top-level category of upload accepted by a namespace.
type MediaClass string

// Media class constants (typed).
const (
	MediaImage    MediaClass = "image"
	MediaVideo    MediaClass = "video"
	MediaDocument MediaClass = "document"
)

// FileReference is the persisted pointer to an uploaded file.
//
// For the local backend PathOrURL is a path relative to the upload root; for
// the remote backend it is a resolvable URL and ObjectKey holds the internal
// storage identifier. A reference is immutable once created and is owned
// exclusively by the entity it is attached to.
type FileReference struct {
	PathOrURL    string      `json:"path_or_url"`
	Backend      BackendKind `json:"backend"`
	ObjectKey    string      `json:"object_key,omitempty"`
	OriginalName string      `json:"original_name"`
	MimeType     string      `json:"mime_type"`
}

// Course is the root of the content hierarchy. Images holds the uploaded
// gallery in submission order; it is never nil (zero uploads is an empty
// slice).
type Course struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Price     float64         `json:"price"`
	Category  string          `json:"category"`
	Images    []FileReference `json:"images"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Video is a lesson belonging to exactly one Course. CourseID must resolve
// to an existing Course for the lifetime of the Video.
type Video struct {
	ID        uuid.UUID     `json:"id"`
	CourseID  uuid.UUID     `json:"course_id"`
	Chapter   string        `json:"chapter"`
	Content   string        `json:"content"`
	File      FileReference `json:"file"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Question is a question-bank entry with document attachments.
type Question struct {
	ID          uuid.UUID       `json:"id"`
	Subject     string          `json:"subject"`
	Body        string          `json:"body"`
	Attachments []FileReference `json:"attachments"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Feature is an entry in the miscellaneous media feed.
type Feature struct {
	ID        uuid.UUID       `json:"id"`
	Title     string          `json:"title"`
	Notes     string          `json:"notes"`
	Category  string          `json:"category"`
	Files     []FileReference `json:"files"`
	CreatedAt time.Time       `json:"created_at"`
}
