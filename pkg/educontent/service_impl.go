package educontent

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/tendant/edu-content/pkg/educontent/uploadname"
)

// service implements the Service interface
type service struct {
	repository Repository
	blobStores map[string]BlobStore
	policies   map[string]NamespacePolicy
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the repository for the service
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// WithBlobStore adds a blob storage backend
func WithBlobStore(name string, store BlobStore) Option {
	return func(s *service) {
		if s.blobStores == nil {
			s.blobStores = make(map[string]BlobStore)
		}
		s.blobStores[name] = store
	}
}

// WithPolicies registers the namespace policies the storage router dispatches
// on. Later policies override earlier ones with the same namespace.
func WithPolicies(policies ...NamespacePolicy) Option {
	return func(s *service) {
		if s.policies == nil {
			s.policies = make(map[string]NamespacePolicy)
		}
		for _, p := range policies {
			s.policies[p.Namespace] = p
		}
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		blobStores: make(map[string]BlobStore),
		policies:   make(map[string]NamespacePolicy),
	}

	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}

	return s, nil
}

// RegisterBackend registers a storage backend under a name
func (s *service) RegisterBackend(name string, backend BlobStore) {
	s.blobStores[name] = backend
}

// GetBackend returns a registered storage backend by name
func (s *service) GetBackend(name string) (BlobStore, error) {
	store, ok := s.blobStores[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrStorageBackendNotFound)
	}
	return store, nil
}

func (s *service) policyFor(namespace string) (NamespacePolicy, error) {
	policy, ok := s.policies[namespace]
	if !ok {
		return NamespacePolicy{}, fmt.Errorf("%s: %w", namespace, ErrUnknownNamespace)
	}
	return policy, nil
}

// storeFiles is the storage router. It validates the whole batch up front,
// then stores each file under a generated name on the namespace's backend.
// The batch is all-or-nothing: a failure on file k deletes files 1..k-1
// before returning, so a failed request never leaves orphaned blobs.
func (s *service) storeFiles(ctx context.Context, namespace string, files []UploadFile) ([]FileReference, error) {
	policy, err := s.policyFor(namespace)
	if err != nil {
		return nil, err
	}

	infos := make([]FileInfo, len(files))
	for i, f := range files {
		infos[i] = f.Info()
	}
	if err := policy.ValidateBatch(infos); err != nil {
		return nil, err
	}

	store, err := s.GetBackend(policy.StorageBackend)
	if err != nil {
		return nil, err
	}

	refs := make([]FileReference, 0, len(files))
	stored := make([]string, 0, len(files))

	fail := func(key, op string, cause error) ([]FileReference, error) {
		s.discardKeys(ctx, store, stored)
		return nil, &StorageError{Backend: policy.StorageBackend, Key: key, Op: op, Err: cause}
	}

	for _, f := range files {
		ext := filepath.Ext(f.FileName)
		mimeType := f.MimeType
		if policy.CanonicalFormat != "" {
			// Remote uploads are re-encoded to one fixed container format.
			ext = "." + policy.CanonicalFormat
			if mt := mime.TypeByExtension(ext); mt != "" {
				mimeType = mt
			}
		}

		key := uploadname.Generate(f.FieldName, ext)
		if policy.Kind == BackendRemote {
			key = policy.Namespace + "/" + key
		}

		if err := store.UploadWithParams(ctx, f.Reader, UploadParams{ObjectKey: key, MimeType: mimeType}); err != nil {
			return fail(key, "upload", err)
		}
		stored = append(stored, key)

		ref := FileReference{
			Backend:      policy.Kind,
			ObjectKey:    key,
			OriginalName: f.FileName,
			MimeType:     mimeType,
		}
		if policy.Kind == BackendRemote {
			url, err := store.GetDownloadURL(ctx, key, "")
			if err != nil {
				return fail(key, "resolve-url", err)
			}
			ref.PathOrURL = url
		} else {
			ref.PathOrURL = key
		}
		refs = append(refs, ref)
	}

	return refs, nil
}

// discardKeys removes already-stored blobs after a failed batch. Deletion
// failures are logged and skipped; an unbound blob is the lesser problem.
func (s *service) discardKeys(ctx context.Context, store BlobStore, keys []string) {
	for _, key := range keys {
		if err := store.Delete(ctx, key); err != nil {
			slog.Warn("failed to discard stored file", "key", key, "err", err)
		}
	}
}

// discardRefs deletes the blobs behind references that are no longer bound
// to any entity (replaced or deleted). Best effort.
func (s *service) discardRefs(ctx context.Context, namespace string, refs []FileReference) {
	policy, err := s.policyFor(namespace)
	if err != nil {
		return
	}
	store, err := s.GetBackend(policy.StorageBackend)
	if err != nil {
		return
	}
	keys := make([]string, 0, len(refs))
	for _, ref := range refs {
		if ref.ObjectKey != "" {
			keys = append(keys, ref.ObjectKey)
		}
	}
	s.discardKeys(ctx, store, keys)
}

// Course operations

func (s *service) CreateCourse(ctx context.Context, req CreateCourseRequest) (*Course, error) {
	refs, err := s.storeFiles(ctx, NamespaceCourseImages, req.Images)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	course := &Course{
		ID:        uuid.New(),
		Name:      req.Name,
		Price:     req.Price,
		Category:  req.Category,
		Images:    refs,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repository.CreateCourse(ctx, course); err != nil {
		s.discardRefs(ctx, NamespaceCourseImages, refs)
		return nil, &EntityError{ID: course.ID, Op: "create_course", Err: err}
	}

	return course, nil
}

func (s *service) GetCourse(ctx context.Context, id uuid.UUID) (*Course, error) {
	return s.repository.GetCourse(ctx, id)
}

func (s *service) ListCourses(ctx context.Context) ([]*Course, error) {
	return s.repository.ListCourses(ctx)
}

// UpdateCourse applies field changes and, when new images are supplied,
// replaces the stored gallery wholesale. Either every new image validates
// and stores, or the course is left unchanged.
func (s *service) UpdateCourse(ctx context.Context, req UpdateCourseRequest) (*Course, error) {
	course, err := s.repository.GetCourse(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		course.Name = req.Name
	}
	if req.Price != nil {
		course.Price = *req.Price
	}
	if req.Category != "" {
		course.Category = req.Category
	}

	var replaced []FileReference
	if len(req.Images) > 0 {
		refs, err := s.storeFiles(ctx, NamespaceCourseImages, req.Images)
		if err != nil {
			return nil, err
		}
		replaced = course.Images
		course.Images = refs
	}
	course.UpdatedAt = time.Now().UTC()

	if err := s.repository.UpdateCourse(ctx, course); err != nil {
		if len(req.Images) > 0 {
			s.discardRefs(ctx, NamespaceCourseImages, course.Images)
		}
		return nil, &EntityError{ID: course.ID, Op: "update_course", Err: err}
	}

	if len(replaced) > 0 {
		s.discardRefs(ctx, NamespaceCourseImages, replaced)
	}

	return course, nil
}

// DeleteCourse removes a course that has no videos. Deletion is blocked
// (ErrCourseHasVideos) while child videos reference it.
func (s *service) DeleteCourse(ctx context.Context, id uuid.UUID) error {
	course, err := s.repository.GetCourse(ctx, id)
	if err != nil {
		return err
	}

	videos, err := s.repository.ListVideosByCourse(ctx, id)
	if err != nil {
		return err
	}
	if len(videos) > 0 {
		return fmt.Errorf("course %s: %w", id, ErrCourseHasVideos)
	}

	if err := s.repository.DeleteCourse(ctx, id); err != nil {
		return &EntityError{ID: id, Op: "delete_course", Err: err}
	}

	s.discardRefs(ctx, NamespaceCourseImages, course.Images)
	return nil
}

// Video operations

// AddVideo binds an uploaded video to an existing course. The parent is
// resolved before any storage write, so a missing course persists nothing.
func (s *service) AddVideo(ctx context.Context, req AddVideoRequest) (*Video, error) {
	if req.File == nil {
		return nil, &ValidationError{Reason: "a video file is required"}
	}

	if _, err := s.repository.GetCourse(ctx, req.CourseID); err != nil {
		return nil, err
	}

	refs, err := s.storeFiles(ctx, NamespaceShopVideos, []UploadFile{*req.File})
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	video := &Video{
		ID:        uuid.New(),
		CourseID:  req.CourseID,
		Chapter:   req.Chapter,
		Content:   req.Content,
		File:      refs[0],
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repository.CreateVideo(ctx, video); err != nil {
		s.discardRefs(ctx, NamespaceShopVideos, refs)
		return nil, &EntityError{ID: video.ID, Op: "create_video", Err: err}
	}

	return video, nil
}

func (s *service) GetVideo(ctx context.Context, id uuid.UUID) (*Video, error) {
	return s.repository.GetVideo(ctx, id)
}

func (s *service) UpdateVideo(ctx context.Context, req UpdateVideoRequest) (*Video, error) {
	video, err := s.repository.GetVideo(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.Chapter != "" {
		video.Chapter = req.Chapter
	}
	if req.Content != "" {
		video.Content = req.Content
	}

	var replaced *FileReference
	if req.File != nil {
		refs, err := s.storeFiles(ctx, NamespaceShopVideos, []UploadFile{*req.File})
		if err != nil {
			return nil, err
		}
		old := video.File
		replaced = &old
		video.File = refs[0]
	}
	video.UpdatedAt = time.Now().UTC()

	if err := s.repository.UpdateVideo(ctx, video); err != nil {
		if req.File != nil {
			s.discardRefs(ctx, NamespaceShopVideos, []FileReference{video.File})
		}
		return nil, &EntityError{ID: video.ID, Op: "update_video", Err: err}
	}

	if replaced != nil {
		s.discardRefs(ctx, NamespaceShopVideos, []FileReference{*replaced})
	}

	return video, nil
}

func (s *service) ListVideosByCourse(ctx context.Context, courseID uuid.UUID) ([]*Video, error) {
	if _, err := s.repository.GetCourse(ctx, courseID); err != nil {
		return nil, err
	}
	return s.repository.ListVideosByCourse(ctx, courseID)
}

// Question operations

func (s *service) AddQuestion(ctx context.Context, req AddQuestionRequest) (*Question, error) {
	refs, err := s.storeFiles(ctx, NamespaceQuestionDocs, req.Attachments)
	if err != nil {
		return nil, err
	}

	question := &Question{
		ID:          uuid.New(),
		Subject:     req.Subject,
		Body:        req.Body,
		Attachments: refs,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.repository.CreateQuestion(ctx, question); err != nil {
		s.discardRefs(ctx, NamespaceQuestionDocs, refs)
		return nil, &EntityError{ID: question.ID, Op: "create_question", Err: err}
	}

	return question, nil
}

func (s *service) GetQuestion(ctx context.Context, id uuid.UUID) (*Question, error) {
	return s.repository.GetQuestion(ctx, id)
}

func (s *service) ListQuestions(ctx context.Context) ([]*Question, error) {
	return s.repository.ListQuestions(ctx)
}

func (s *service) ListSubjects(ctx context.Context) ([]string, error) {
	return s.repository.ListSubjects(ctx)
}

// Feature operations

func (s *service) CreateFeature(ctx context.Context, req CreateFeatureRequest) (*Feature, error) {
	refs, err := s.storeFiles(ctx, NamespaceFeatures, req.Files)
	if err != nil {
		return nil, err
	}

	feature := &Feature{
		ID:        uuid.New(),
		Title:     req.Title,
		Notes:     req.Notes,
		Category:  req.Category,
		Files:     refs,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repository.CreateFeature(ctx, feature); err != nil {
		s.discardRefs(ctx, NamespaceFeatures, refs)
		return nil, &EntityError{ID: feature.ID, Op: "create_feature", Err: err}
	}

	return feature, nil
}

func (s *service) GetFeature(ctx context.Context, id uuid.UUID) (*Feature, error) {
	return s.repository.GetFeature(ctx, id)
}

func (s *service) ListFeatures(ctx context.Context) ([]*Feature, error) {
	return s.repository.ListFeatures(ctx)
}

func (s *service) DeleteFeature(ctx context.Context, id uuid.UUID) error {
	feature, err := s.repository.GetFeature(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repository.DeleteFeature(ctx, id); err != nil {
		return &EntityError{ID: id, Op: "delete_feature", Err: err}
	}

	s.discardRefs(ctx, NamespaceFeatures, feature.Files)
	return nil
}
