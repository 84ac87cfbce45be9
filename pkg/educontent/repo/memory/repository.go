package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/tendant/edu-content/pkg/educontent"
)

// Repository implements educontent.Repository using in-memory storage
type Repository struct {
	mu             sync.RWMutex
	courses        map[uuid.UUID]*educontent.Course
	videos         map[uuid.UUID]*educontent.Video
	questions      map[uuid.UUID]*educontent.Question
	features       map[uuid.UUID]*educontent.Feature
	videosByCourse map[uuid.UUID][]uuid.UUID // course_id -> []video_id

	// seq breaks created_at ties so listing order is deterministic.
	seq    uint64
	seqFor map[uuid.UUID]uint64
}

// New creates a new in-memory repository
func New() *Repository {
	return &Repository{
		courses:        make(map[uuid.UUID]*educontent.Course),
		videos:         make(map[uuid.UUID]*educontent.Video),
		questions:      make(map[uuid.UUID]*educontent.Question),
		features:       make(map[uuid.UUID]*educontent.Feature),
		videosByCourse: make(map[uuid.UUID][]uuid.UUID),
		seqFor:         make(map[uuid.UUID]uint64),
	}
}

func (r *Repository) nextSeq(id uuid.UUID) {
	r.seq++
	r.seqFor[id] = r.seq
}

// newestFirst orders ids by creation sequence, newest first.
func (r *Repository) newerThan(a, b uuid.UUID) bool {
	return r.seqFor[a] > r.seqFor[b]
}

// Course operations

func (r *Repository) CreateCourse(ctx context.Context, course *educontent.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	courseCopy := cloneCourse(course)
	r.courses[course.ID] = courseCopy
	r.nextSeq(course.ID)

	return nil
}

func (r *Repository) GetCourse(ctx context.Context, id uuid.UUID) (*educontent.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	course, exists := r.courses[id]
	if !exists {
		return nil, educontent.ErrCourseNotFound
	}
	return cloneCourse(course), nil
}

func (r *Repository) UpdateCourse(ctx context.Context, course *educontent.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.courses[course.ID]; !exists {
		return educontent.ErrCourseNotFound
	}
	r.courses[course.ID] = cloneCourse(course)

	return nil
}

func (r *Repository) DeleteCourse(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.courses[id]; !exists {
		return educontent.ErrCourseNotFound
	}
	delete(r.courses, id)
	delete(r.seqFor, id)

	return nil
}

func (r *Repository) ListCourses(ctx context.Context) ([]*educontent.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*educontent.Course, 0, len(r.courses))
	for _, course := range r.courses {
		result = append(result, cloneCourse(course))
	}

	// Newest first
	sort.Slice(result, func(i, j int) bool {
		return r.newerThan(result[i].ID, result[j].ID)
	})

	return result, nil
}

// Video operations

func (r *Repository) CreateVideo(ctx context.Context, video *educontent.Video) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Referential integrity: the parent course must exist.
	if _, exists := r.courses[video.CourseID]; !exists {
		return educontent.ErrCourseNotFound
	}

	videoCopy := *video
	r.videos[video.ID] = &videoCopy
	r.videosByCourse[video.CourseID] = append(r.videosByCourse[video.CourseID], video.ID)
	r.nextSeq(video.ID)

	return nil
}

func (r *Repository) GetVideo(ctx context.Context, id uuid.UUID) (*educontent.Video, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	video, exists := r.videos[id]
	if !exists {
		return nil, educontent.ErrVideoNotFound
	}
	videoCopy := *video
	return &videoCopy, nil
}

func (r *Repository) UpdateVideo(ctx context.Context, video *educontent.Video) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.videos[video.ID]; !exists {
		return educontent.ErrVideoNotFound
	}
	videoCopy := *video
	r.videos[video.ID] = &videoCopy

	return nil
}

func (r *Repository) ListVideosByCourse(ctx context.Context, courseID uuid.UUID) ([]*educontent.Video, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.videosByCourse[courseID]
	result := make([]*educontent.Video, 0, len(ids))
	for _, id := range ids {
		if video, exists := r.videos[id]; exists {
			videoCopy := *video
			result = append(result, &videoCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return r.newerThan(result[i].ID, result[j].ID)
	})

	return result, nil
}

// Question operations

func (r *Repository) CreateQuestion(ctx context.Context, question *educontent.Question) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	questionCopy := *question
	questionCopy.Attachments = cloneRefs(question.Attachments)
	r.questions[question.ID] = &questionCopy
	r.nextSeq(question.ID)

	return nil
}

func (r *Repository) GetQuestion(ctx context.Context, id uuid.UUID) (*educontent.Question, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	question, exists := r.questions[id]
	if !exists {
		return nil, educontent.ErrQuestionNotFound
	}
	questionCopy := *question
	questionCopy.Attachments = cloneRefs(question.Attachments)
	return &questionCopy, nil
}

func (r *Repository) ListQuestions(ctx context.Context) ([]*educontent.Question, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*educontent.Question, 0, len(r.questions))
	for _, question := range r.questions {
		questionCopy := *question
		questionCopy.Attachments = cloneRefs(question.Attachments)
		result = append(result, &questionCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		return r.newerThan(result[i].ID, result[j].ID)
	})

	return result, nil
}

func (r *Repository) ListSubjects(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	var subjects []string
	for _, question := range r.questions {
		if _, ok := seen[question.Subject]; ok {
			continue
		}
		seen[question.Subject] = struct{}{}
		subjects = append(subjects, question.Subject)
	}
	sort.Strings(subjects)

	return subjects, nil
}

// Feature operations

func (r *Repository) CreateFeature(ctx context.Context, feature *educontent.Feature) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	featureCopy := *feature
	featureCopy.Files = cloneRefs(feature.Files)
	r.features[feature.ID] = &featureCopy
	r.nextSeq(feature.ID)

	return nil
}

func (r *Repository) GetFeature(ctx context.Context, id uuid.UUID) (*educontent.Feature, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	feature, exists := r.features[id]
	if !exists {
		return nil, educontent.ErrFeatureNotFound
	}
	featureCopy := *feature
	featureCopy.Files = cloneRefs(feature.Files)
	return &featureCopy, nil
}

func (r *Repository) DeleteFeature(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.features[id]; !exists {
		return educontent.ErrFeatureNotFound
	}
	delete(r.features, id)
	delete(r.seqFor, id)

	return nil
}

func (r *Repository) ListFeatures(ctx context.Context) ([]*educontent.Feature, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*educontent.Feature, 0, len(r.features))
	for _, feature := range r.features {
		featureCopy := *feature
		featureCopy.Files = cloneRefs(feature.Files)
		result = append(result, &featureCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		return r.newerThan(result[i].ID, result[j].ID)
	})

	return result, nil
}

// Copies guard against external mutation of stored state.

func cloneCourse(course *educontent.Course) *educontent.Course {
	courseCopy := *course
	courseCopy.Images = cloneRefs(course.Images)
	return &courseCopy
}

func cloneRefs(refs []educontent.FileReference) []educontent.FileReference {
	cloned := make([]educontent.FileReference, len(refs))
	copy(cloned, refs)
	return cloned
}
