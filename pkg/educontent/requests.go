package educontent

import (
	"io"

	"github.com/google/uuid"
)

// Request DTOs

// UploadFile is one incoming multipart file. Reader is consumed exactly once
// by the storage pipeline; Size and MimeType are the client-declared values
// checked by the validator.
type UploadFile struct {
	FieldName string
	FileName  string
	MimeType  string
	Size      int64
	Reader    io.Reader
}

// Info returns the declared metadata used for validation.
func (f UploadFile) Info() FileInfo {
	return FileInfo{FileName: f.FileName, MimeType: f.MimeType, Size: f.Size}
}

// CreateCourseRequest contains parameters for creating a course
type CreateCourseRequest struct {
	Name     string
	Price    float64
	Category string
	Images   []UploadFile
}

// UpdateCourseRequest contains parameters for updating a course. Zero-value
// fields are left unchanged; a non-empty Images slice replaces the stored
// gallery.
type UpdateCourseRequest struct {
	ID       uuid.UUID
	Name     string
	Price    *float64
	Category string
	Images   []UploadFile
}

// AddVideoRequest contains parameters for adding a video to a course
type AddVideoRequest struct {
	CourseID uuid.UUID
	Chapter  string
	Content  string
	File     *UploadFile
}

// UpdateVideoRequest contains parameters for updating a video. A nil File
// keeps the stored file.
type UpdateVideoRequest struct {
	ID      uuid.UUID
	Chapter string
	Content string
	File    *UploadFile
}

// AddQuestionRequest contains parameters for adding a question
type AddQuestionRequest struct {
	Subject     string
	Body        string
	Attachments []UploadFile
}

// CreateFeatureRequest contains parameters for creating a feature
type CreateFeatureRequest struct {
	Title    string
	Notes    string
	Category string
	Files    []UploadFile
}
