package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tendant/edu-content/pkg/educontent"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements educontent.Repository using PostgreSQL. File
// reference sequences are stored as JSONB so submission order survives the
// round trip.
type Repository struct {
	db DBTX
}

// New creates a new PostgreSQL repository
func New(db DBTX) *Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

func refsToJSON(refs []educontent.FileReference) ([]byte, error) {
	if refs == nil {
		refs = []educontent.FileReference{}
	}
	return json.Marshal(refs)
}

func refsFromJSON(data []byte) ([]educontent.FileReference, error) {
	refs := []educontent.FileReference{}
	if len(data) == 0 {
		return refs, nil
	}
	if err := json.Unmarshal(data, &refs); err != nil {
		return nil, fmt.Errorf("failed to decode file references: %w", err)
	}
	return refs, nil
}

func refToJSON(ref educontent.FileReference) ([]byte, error) {
	return json.Marshal(ref)
}

func refFromJSON(data []byte) (educontent.FileReference, error) {
	var ref educontent.FileReference
	if err := json.Unmarshal(data, &ref); err != nil {
		return ref, fmt.Errorf("failed to decode file reference: %w", err)
	}
	return ref, nil
}

// isForeignKeyViolation reports whether err is a Postgres FK violation.
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

// Course operations

func (r *Repository) CreateCourse(ctx context.Context, course *educontent.Course) error {
	images, err := refsToJSON(course.Images)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO courses (id, name, price, category, images, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = r.db.Exec(ctx, query,
		course.ID, course.Name, course.Price, course.Category, images,
		course.CreatedAt, course.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}

	return nil
}

func (r *Repository) GetCourse(ctx context.Context, id uuid.UUID) (*educontent.Course, error) {
	query := `
		SELECT id, name, price, category, images, created_at, updated_at
		FROM courses WHERE id = $1`

	var course educontent.Course
	var images []byte
	err := r.db.QueryRow(ctx, query, id).Scan(
		&course.ID, &course.Name, &course.Price, &course.Category, &images,
		&course.CreatedAt, &course.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, educontent.ErrCourseNotFound
		}
		return nil, err
	}

	if course.Images, err = refsFromJSON(images); err != nil {
		return nil, err
	}

	return &course, nil
}

func (r *Repository) UpdateCourse(ctx context.Context, course *educontent.Course) error {
	images, err := refsToJSON(course.Images)
	if err != nil {
		return err
	}

	query := `
		UPDATE courses SET name = $2, price = $3, category = $4, images = $5, updated_at = $6
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		course.ID, course.Name, course.Price, course.Category, images, course.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update course: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return educontent.ErrCourseNotFound
	}

	return nil
}

func (r *Repository) DeleteCourse(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return educontent.ErrCourseHasVideos
		}
		return fmt.Errorf("failed to delete course: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return educontent.ErrCourseNotFound
	}

	return nil
}

func (r *Repository) ListCourses(ctx context.Context) ([]*educontent.Course, error) {
	query := `
		SELECT id, name, price, category, images, created_at, updated_at
		FROM courses ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	courses := []*educontent.Course{}
	for rows.Next() {
		var course educontent.Course
		var images []byte
		if err := rows.Scan(
			&course.ID, &course.Name, &course.Price, &course.Category, &images,
			&course.CreatedAt, &course.UpdatedAt); err != nil {
			return nil, err
		}
		if course.Images, err = refsFromJSON(images); err != nil {
			return nil, err
		}
		courses = append(courses, &course)
	}

	return courses, rows.Err()
}

// Video operations

func (r *Repository) CreateVideo(ctx context.Context, video *educontent.Video) error {
	file, err := refToJSON(video.File)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO videos (id, course_id, chapter, content, file, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = r.db.Exec(ctx, query,
		video.ID, video.CourseID, video.Chapter, video.Content, file,
		video.CreatedAt, video.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return educontent.ErrCourseNotFound
		}
		return fmt.Errorf("failed to create video: %w", err)
	}

	return nil
}

func (r *Repository) GetVideo(ctx context.Context, id uuid.UUID) (*educontent.Video, error) {
	query := `
		SELECT id, course_id, chapter, content, file, created_at, updated_at
		FROM videos WHERE id = $1`

	var video educontent.Video
	var file []byte
	err := r.db.QueryRow(ctx, query, id).Scan(
		&video.ID, &video.CourseID, &video.Chapter, &video.Content, &file,
		&video.CreatedAt, &video.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, educontent.ErrVideoNotFound
		}
		return nil, err
	}

	if video.File, err = refFromJSON(file); err != nil {
		return nil, err
	}

	return &video, nil
}

func (r *Repository) UpdateVideo(ctx context.Context, video *educontent.Video) error {
	file, err := refToJSON(video.File)
	if err != nil {
		return err
	}

	query := `
		UPDATE videos SET chapter = $2, content = $3, file = $4, updated_at = $5
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		video.ID, video.Chapter, video.Content, file, video.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update video: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return educontent.ErrVideoNotFound
	}

	return nil
}

func (r *Repository) ListVideosByCourse(ctx context.Context, courseID uuid.UUID) ([]*educontent.Video, error) {
	query := `
		SELECT id, course_id, chapter, content, file, created_at, updated_at
		FROM videos WHERE course_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	videos := []*educontent.Video{}
	for rows.Next() {
		var video educontent.Video
		var file []byte
		if err := rows.Scan(
			&video.ID, &video.CourseID, &video.Chapter, &video.Content, &file,
			&video.CreatedAt, &video.UpdatedAt); err != nil {
			return nil, err
		}
		if video.File, err = refFromJSON(file); err != nil {
			return nil, err
		}
		videos = append(videos, &video)
	}

	return videos, rows.Err()
}

// Question operations

func (r *Repository) CreateQuestion(ctx context.Context, question *educontent.Question) error {
	attachments, err := refsToJSON(question.Attachments)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO questions (id, subject, body, attachments, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err = r.db.Exec(ctx, query,
		question.ID, question.Subject, question.Body, attachments, question.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create question: %w", err)
	}

	return nil
}

func (r *Repository) GetQuestion(ctx context.Context, id uuid.UUID) (*educontent.Question, error) {
	query := `
		SELECT id, subject, body, attachments, created_at
		FROM questions WHERE id = $1`

	var question educontent.Question
	var attachments []byte
	err := r.db.QueryRow(ctx, query, id).Scan(
		&question.ID, &question.Subject, &question.Body, &attachments, &question.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, educontent.ErrQuestionNotFound
		}
		return nil, err
	}

	if question.Attachments, err = refsFromJSON(attachments); err != nil {
		return nil, err
	}

	return &question, nil
}

func (r *Repository) ListQuestions(ctx context.Context) ([]*educontent.Question, error) {
	query := `
		SELECT id, subject, body, attachments, created_at
		FROM questions ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	questions := []*educontent.Question{}
	for rows.Next() {
		var question educontent.Question
		var attachments []byte
		if err := rows.Scan(
			&question.ID, &question.Subject, &question.Body, &attachments,
			&question.CreatedAt); err != nil {
			return nil, err
		}
		if question.Attachments, err = refsFromJSON(attachments); err != nil {
			return nil, err
		}
		questions = append(questions, &question)
	}

	return questions, rows.Err()
}

func (r *Repository) ListSubjects(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT subject FROM questions ORDER BY subject`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subjects []string
	for rows.Next() {
		var subject string
		if err := rows.Scan(&subject); err != nil {
			return nil, err
		}
		subjects = append(subjects, subject)
	}

	return subjects, rows.Err()
}

// Feature operations

func (r *Repository) CreateFeature(ctx context.Context, feature *educontent.Feature) error {
	files, err := refsToJSON(feature.Files)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO features (id, title, notes, category, files, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err = r.db.Exec(ctx, query,
		feature.ID, feature.Title, feature.Notes, feature.Category, files, feature.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create feature: %w", err)
	}

	return nil
}

func (r *Repository) GetFeature(ctx context.Context, id uuid.UUID) (*educontent.Feature, error) {
	query := `
		SELECT id, title, notes, category, files, created_at
		FROM features WHERE id = $1`

	var feature educontent.Feature
	var files []byte
	err := r.db.QueryRow(ctx, query, id).Scan(
		&feature.ID, &feature.Title, &feature.Notes, &feature.Category, &files,
		&feature.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, educontent.ErrFeatureNotFound
		}
		return nil, err
	}

	if feature.Files, err = refsFromJSON(files); err != nil {
		return nil, err
	}

	return &feature, nil
}

func (r *Repository) DeleteFeature(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM features WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete feature: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return educontent.ErrFeatureNotFound
	}

	return nil
}

func (r *Repository) ListFeatures(ctx context.Context) ([]*educontent.Feature, error) {
	query := `
		SELECT id, title, notes, category, files, created_at
		FROM features ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	features := []*educontent.Feature{}
	for rows.Next() {
		var feature educontent.Feature
		var files []byte
		if err := rows.Scan(
			&feature.ID, &feature.Title, &feature.Notes, &feature.Category, &files,
			&feature.CreatedAt); err != nil {
			return nil, err
		}
		if feature.Files, err = refsFromJSON(files); err != nil {
			return nil, err
		}
		features = append(features, &feature)
	}

	return features, rows.Err()
}
