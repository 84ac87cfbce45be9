package educontent

import (
	"context"

	"github.com/google/uuid"
)

// Service defines the main interface for the edu-content library
type Service interface {
	// Course operations
	CreateCourse(ctx context.Context, req CreateCourseRequest) (*Course, error)
	GetCourse(ctx context.Context, id uuid.UUID) (*Course, error)
	UpdateCourse(ctx context.Context, req UpdateCourseRequest) (*Course, error)
	DeleteCourse(ctx context.Context, id uuid.UUID) error
	ListCourses(ctx context.Context) ([]*Course, error)

	// Video operations
	AddVideo(ctx context.Context, req AddVideoRequest) (*Video, error)
	GetVideo(ctx context.Context, id uuid.UUID) (*Video, error)
	UpdateVideo(ctx context.Context, req UpdateVideoRequest) (*Video, error)
	ListVideosByCourse(ctx context.Context, courseID uuid.UUID) ([]*Video, error)

	// Question operations
	AddQuestion(ctx context.Context, req AddQuestionRequest) (*Question, error)
	GetQuestion(ctx context.Context, id uuid.UUID) (*Question, error)
	ListQuestions(ctx context.Context) ([]*Question, error)
	ListSubjects(ctx context.Context) ([]string, error)

	// Feature operations
	CreateFeature(ctx context.Context, req CreateFeatureRequest) (*Feature, error)
	GetFeature(ctx context.Context, id uuid.UUID) (*Feature, error)
	DeleteFeature(ctx context.Context, id uuid.UUID) error
	ListFeatures(ctx context.Context) ([]*Feature, error)

	// Storage backend operations
	RegisterBackend(name string, backend BlobStore)
	GetBackend(name string) (BlobStore, error)
}
