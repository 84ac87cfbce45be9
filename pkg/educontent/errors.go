package educontent

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Error types
var (
	// ErrCourseNotFound indicates a course was not found
	ErrCourseNotFound = errors.New("course not found")

	// ErrVideoNotFound indicates a video was not found
	ErrVideoNotFound = errors.New("video not found")

	// ErrQuestionNotFound indicates a question was not found
	ErrQuestionNotFound = errors.New("question not found")

	// ErrFeatureNotFound indicates a feature was not found
	ErrFeatureNotFound = errors.New("feature not found")

	// ErrCourseHasVideos indicates a course cannot be deleted while videos reference it
	ErrCourseHasVideos = errors.New("course has videos and cannot be deleted")

	// ErrStorageBackendNotFound indicates a storage backend was not found
	ErrStorageBackendNotFound = errors.New("storage backend not found")

	// ErrUnknownNamespace indicates an upload namespace has no configured policy
	ErrUnknownNamespace = errors.New("unknown upload namespace")
)

// ValidationError rejects an upload before any byte is persisted. Reason is
// user-facing and names the violated constraint.
type ValidationError struct {
	FileName string
	Reason   string
}

func (e *ValidationError) Error() string {
	if e.FileName == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.FileName, e.Reason)
}

// StorageError represents an error related to storage operations
type StorageError struct {
	Backend string
	Key     string
	Op      string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s failed for key %s on backend %s: %v", e.Op, e.Key, e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// EntityError represents an error related to a content entity operation
type EntityError struct {
	ID  uuid.UUID
	Op  string
	Err error
}

func (e *EntityError) Error() string {
	return fmt.Sprintf("operation %s failed for entity %s: %v", e.Op, e.ID, e.Err)
}

func (e *EntityError) Unwrap() error {
	return e.Err
}
