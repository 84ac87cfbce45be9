package educontent_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/edu-content/pkg/educontent"
	repomemory "github.com/tendant/edu-content/pkg/educontent/repo/memory"
	memorystorage "github.com/tendant/edu-content/pkg/educontent/storage/memory"
)

type testEnv struct {
	svc    educontent.Service
	local  *memorystorage.Backend
	remote *memorystorage.Backend
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	local := memorystorage.New()
	remote := memorystorage.NewWithURLPrefix("https://cdn.example.com")

	svc, err := educontent.New(
		educontent.WithRepository(repomemory.New()),
		educontent.WithBlobStore("local", local),
		educontent.WithBlobStore("remote", remote),
		educontent.WithPolicies(educontent.DefaultPolicies("local", "remote")...),
	)
	require.NoError(t, err)

	return &testEnv{svc: svc, local: local, remote: remote}
}

func upload(field, name, mimeType, content string) educontent.UploadFile {
	return educontent.UploadFile{
		FieldName: field,
		FileName:  name,
		MimeType:  mimeType,
		Size:      int64(len(content)),
		Reader:    strings.NewReader(content),
	}
}

func image(name, content string) educontent.UploadFile {
	return upload("images", name, "image/png", content)
}

func TestServiceCreation(t *testing.T) {
	tests := []struct {
		name        string
		options     []educontent.Option
		expectError bool
	}{
		{
			name:        "no options should fail",
			options:     []educontent.Option{},
			expectError: true,
		},
		{
			name: "repository only is enough",
			options: []educontent.Option{
				educontent.WithRepository(repomemory.New()),
			},
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := educontent.New(tt.options...)
			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, svc)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, svc)
			}
		})
	}
}

func TestCreateCourseWithImages(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	course, err := env.svc.CreateCourse(ctx, educontent.CreateCourseRequest{
		Name:     "Algebra I",
		Price:    5000,
		Category: "math",
		Images: []educontent.UploadFile{
			image("a.png", "image-a"),
			image("b.png", "image-b"),
			image("c.png", "image-c"),
		},
	})
	require.NoError(t, err)
	require.NotNil(t, course)

	assert.Equal(t, "Algebra I", course.Name)
	assert.Equal(t, float64(5000), course.Price)
	require.Len(t, course.Images, 3)
	assert.Equal(t, 3, env.local.Len())

	// Submission order is preserved and every reference resolves to its
	// own stored bytes.
	originals := []string{"a.png", "b.png", "c.png"}
	contents := []string{"image-a", "image-b", "image-c"}
	for i, ref := range course.Images {
		assert.Equal(t, originals[i], ref.OriginalName)
		assert.Equal(t, educontent.BackendLocal, ref.Backend)
		assert.Equal(t, ref.ObjectKey, ref.PathOrURL)

		rc, err := env.local.Download(ctx, ref.ObjectKey)
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		assert.Equal(t, contents[i], string(data))
	}

	// Round trip through the repository keeps the order too.
	fetched, err := env.svc.GetCourse(ctx, course.ID)
	require.NoError(t, err)
	for i, ref := range fetched.Images {
		assert.Equal(t, originals[i], ref.OriginalName)
	}
}

func TestCreateCourseNoImages(t *testing.T) {
	env := newTestEnv(t)

	course, err := env.svc.CreateCourse(context.Background(), educontent.CreateCourseRequest{Name: "No media"})
	require.NoError(t, err)

	assert.NotNil(t, course.Images)
	assert.Len(t, course.Images, 0)
	assert.Equal(t, 0, env.local.Len())
}

func TestCreateCourseRejectsNonImage(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.CreateCourse(context.Background(), educontent.CreateCourseRequest{
		Name: "Bad upload",
		Images: []educontent.UploadFile{
			image("ok.png", "fine"),
			upload("images", "syllabus.pdf", "application/pdf", "not an image"),
		},
	})

	var vErr *educontent.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, 0, env.local.Len(), "a rejected batch must persist nothing")
}

func TestListCoursesNewestFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.svc.CreateCourse(ctx, educontent.CreateCourseRequest{Name: "first"})
	require.NoError(t, err)
	second, err := env.svc.CreateCourse(ctx, educontent.CreateCourseRequest{Name: "second"})
	require.NoError(t, err)

	courses, err := env.svc.ListCourses(ctx)
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, second.ID, courses[0].ID)
	assert.Equal(t, first.ID, courses[1].ID)
}

// Supplying new images on update replaces the gallery wholesale: the final
// reference list is exactly the last upload batch and the replaced blobs are
// removed from storage.
func TestUpdateCourseReplacesImages(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	course, err := env.svc.CreateCourse(ctx, educontent.CreateCourseRequest{
		Name:   "Replace me",
		Images: []educontent.UploadFile{image("one.png", "1"), image("two.png", "2"), image("three.png", "3")},
	})
	require.NoError(t, err)
	require.Equal(t, 3, env.local.Len())

	updated, err := env.svc.UpdateCourse(ctx, educontent.UpdateCourseRequest{
		ID:     course.ID,
		Images: []educontent.UploadFile{image("new.png", "new")},
	})
	require.NoError(t, err)

	require.Len(t, updated.Images, 1)
	assert.Equal(t, "new.png", updated.Images[0].OriginalName)
	assert.Equal(t, 1, env.local.Len(), "replaced blobs should be gone")

	// A second replacement wins again.
	updated, err = env.svc.UpdateCourse(ctx, educontent.UpdateCourseRequest{
		ID:     course.ID,
		Images: []educontent.UploadFile{image("x.png", "x"), image("y.png", "y")},
	})
	require.NoError(t, err)
	assert.Len(t, updated.Images, 2)
	assert.Equal(t, 2, env.local.Len())
}

func TestUpdateCourseFieldsOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	course, err := env.svc.CreateCourse(ctx, educontent.CreateCourseRequest{
		Name:   "Original",
		Price:  100,
		Images: []educontent.UploadFile{image("keep.png", "keep")},
	})
	require.NoError(t, err)

	price := 250.0
	updated, err := env.svc.UpdateCourse(ctx, educontent.UpdateCourseRequest{
		ID:    course.ID,
		Name:  "Renamed",
		Price: &price,
	})
	require.NoError(t, err)

	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, 250.0, updated.Price)
	require.Len(t, updated.Images, 1, "images stay untouched when none are supplied")
	assert.Equal(t, 1, env.local.Len())
}

func TestUpdateCourseNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.UpdateCourse(context.Background(), educontent.UpdateCourseRequest{ID: uuid.New()})
	assert.ErrorIs(t, err, educontent.ErrCourseNotFound)
}

func TestDeleteCourse(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	course, err := env.svc.CreateCourse(ctx, educontent.CreateCourseRequest{
		Name:   "Doomed",
		Images: []educontent.UploadFile{image("gone.png", "gone")},
	})
	require.NoError(t, err)

	require.NoError(t, env.svc.DeleteCourse(ctx, course.ID))

	_, err = env.svc.GetCourse(ctx, course.ID)
	assert.ErrorIs(t, err, educontent.ErrCourseNotFound)
	assert.Equal(t, 0, env.local.Len(), "orphaned images are removed")
}

func TestDeleteCourseBlockedByVideos(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	course, err := env.svc.CreateCourse(ctx, educontent.CreateCourseRequest{Name: "Parent"})
	require.NoError(t, err)

	_, err = env.svc.AddVideo(ctx, educontent.AddVideoRequest{
		CourseID: course.ID,
		Chapter:  "1",
		File:     videoUpload("lesson.mp4", "video-bytes"),
	})
	require.NoError(t, err)

	err = env.svc.DeleteCourse(ctx, course.ID)
	assert.ErrorIs(t, err, educontent.ErrCourseHasVideos)

	// The course is still there.
	_, err = env.svc.GetCourse(ctx, course.ID)
	assert.NoError(t, err)
}

func videoUpload(name, content string) *educontent.UploadFile {
	f := upload("file", name, "video/mp4", content)
	return &f
}

func TestAddVideo(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	course, err := env.svc.CreateCourse(ctx, educontent.CreateCourseRequest{Name: "Parent"})
	require.NoError(t, err)

	video, err := env.svc.AddVideo(ctx, educontent.AddVideoRequest{
		CourseID: course.ID,
		Chapter:  "Intro",
		Content:  "Welcome",
		File:     videoUpload("lesson.avi", "video-bytes"),
	})
	require.NoError(t, err)

	assert.Equal(t, course.ID, video.CourseID)
	assert.Equal(t, educontent.BackendRemote, video.File.Backend)
	assert.True(t, strings.HasPrefix(video.File.ObjectKey, educontent.NamespaceShopVideos+"/"),
		"remote keys are namespace-prefixed, got %s", video.File.ObjectKey)
	assert.True(t, strings.HasSuffix(video.File.ObjectKey, ".mp4"),
		"stored name is normalized to mp4, got %s", video.File.ObjectKey)
	assert.True(t, strings.HasPrefix(video.File.PathOrURL, "https://cdn.example.com/"),
		"remote reference carries a resolvable URL, got %s", video.File.PathOrURL)
	assert.Equal(t, "lesson.avi", video.File.OriginalName)
	assert.Equal(t, 1, env.remote.Len())
}

// A missing parent course fails the request before any storage write.
func TestAddVideoParentNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.AddVideo(context.Background(), educontent.AddVideoRequest{
		CourseID: uuid.New(),
		File:     videoUpload("lesson.mp4", "video-bytes"),
	})

	assert.ErrorIs(t, err, educontent.ErrCourseNotFound)
	assert.Equal(t, 0, env.remote.Len(), "nothing may be stored for a missing parent")
}

func TestAddVideoRequiresFile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	course, err := env.svc.CreateCourse(ctx, educontent.CreateCourseRequest{Name: "Parent"})
	require.NoError(t, err)

	_, err = env.svc.AddVideo(ctx, educontent.AddVideoRequest{CourseID: course.ID})
	var vErr *educontent.ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestAddVideoRejectsOversize(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	course, err := env.svc.CreateCourse(ctx, educontent.CreateCourseRequest{Name: "Parent"})
	require.NoError(t, err)

	big := educontent.UploadFile{
		FieldName: "file",
		FileName:  "huge.mp4",
		MimeType:  "video/mp4",
		Size:      educontent.MaxVideoSize + 1,
		Reader:    strings.NewReader("declared size is what counts"),
	}
	_, err = env.svc.AddVideo(ctx, educontent.AddVideoRequest{CourseID: course.ID, File: &big})

	var vErr *educontent.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, 0, env.remote.Len(), "oversize uploads are rejected before any write")
}

func TestAddVideoRejectsWrongType(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	course, err := env.svc.CreateCourse(ctx, educontent.CreateCourseRequest{Name: "Parent"})
	require.NoError(t, err)

	doc := upload("file", "syllabus.pdf", "application/pdf", "pdf bytes")
	_, err = env.svc.AddVideo(ctx, educontent.AddVideoRequest{CourseID: course.ID, File: &doc})

	var vErr *educontent.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, 0, env.remote.Len())

	videos, err := env.svc.ListVideosByCourse(ctx, course.ID)
	require.NoError(t, err)
	assert.Len(t, videos, 0)
}

func TestUpdateVideoReplacesFile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	course, err := env.svc.CreateCourse(ctx, educontent.CreateCourseRequest{Name: "Parent"})
	require.NoError(t, err)

	video, err := env.svc.AddVideo(ctx, educontent.AddVideoRequest{
		CourseID: course.ID,
		Chapter:  "1",
		File:     videoUpload("v1.mp4", "first"),
	})
	require.NoError(t, err)
	oldKey := video.File.ObjectKey

	updated, err := env.svc.UpdateVideo(ctx, educontent.UpdateVideoRequest{
		ID:      video.ID,
		Chapter: "1 revised",
		File:    videoUpload("v2.mp4", "second"),
	})
	require.NoError(t, err)

	assert.Equal(t, "1 revised", updated.Chapter)
	assert.NotEqual(t, oldKey, updated.File.ObjectKey)
	assert.Equal(t, 1, env.remote.Len(), "the replaced blob is removed")

	_, err = env.remote.Download(ctx, oldKey)
	assert.Error(t, err, "old object should be gone")
}

func TestListVideosByCourse(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	course, err := env.svc.CreateCourse(ctx, educontent.CreateCourseRequest{Name: "Parent"})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := env.svc.AddVideo(ctx, educontent.AddVideoRequest{
			CourseID: course.ID,
			Chapter:  fmt.Sprintf("ch%d", i),
			File:     videoUpload("v.mp4", "bytes"),
		})
		require.NoError(t, err)
	}

	videos, err := env.svc.ListVideosByCourse(ctx, course.ID)
	require.NoError(t, err)
	assert.Len(t, videos, 3)

	_, err = env.svc.ListVideosByCourse(ctx, uuid.New())
	assert.ErrorIs(t, err, educontent.ErrCourseNotFound)
}

func TestAddQuestionWithDocuments(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	question, err := env.svc.AddQuestion(ctx, educontent.AddQuestionRequest{
		Subject: "physics",
		Body:    "Why is the sky blue?",
		Attachments: []educontent.UploadFile{
			upload("attachments", "notes.pdf", "application/pdf", "pdf"),
			upload("attachments", "data.xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "xlsx"),
		},
	})
	require.NoError(t, err)

	require.Len(t, question.Attachments, 2)
	assert.Equal(t, "notes.pdf", question.Attachments[0].OriginalName)
	assert.Equal(t, 2, env.local.Len())

	subjects, err := env.svc.ListSubjects(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"physics"}, subjects)
}

func TestListSubjectsDistinct(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, subject := range []string{"math", "physics", "math", "biology"} {
		_, err := env.svc.AddQuestion(ctx, educontent.AddQuestionRequest{Subject: subject, Body: "q"})
		require.NoError(t, err)
	}

	subjects, err := env.svc.ListSubjects(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"biology", "math", "physics"}, subjects)
}

func TestCreateAndDeleteFeature(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	feature, err := env.svc.CreateFeature(ctx, educontent.CreateFeatureRequest{
		Title:    "Launch banner",
		Category: "marketing",
		Files: []educontent.UploadFile{
			upload("files", "banner.png", "image/png", "png"),
			upload("files", "teaser.mp4", "video/mp4", "mp4"),
		},
	})
	require.NoError(t, err)
	require.Len(t, feature.Files, 2)
	assert.Equal(t, 2, env.local.Len())

	require.NoError(t, env.svc.DeleteFeature(ctx, feature.ID))

	_, err = env.svc.GetFeature(ctx, feature.ID)
	assert.ErrorIs(t, err, educontent.ErrFeatureNotFound)
	assert.Equal(t, 0, env.local.Len(), "feature files are removed with the entity")
}

// failingStore errors on the nth upload, to exercise batch rollback.
type failingStore struct {
	*memorystorage.Backend
	failAt int
	calls  int
}

func (f *failingStore) UploadWithParams(ctx context.Context, reader io.Reader, params educontent.UploadParams) error {
	f.calls++
	if f.calls == f.failAt {
		return errors.New("disk full")
	}
	return f.Backend.UploadWithParams(ctx, reader, params)
}

// A backend failure mid-batch removes everything already stored for that
// request: all-or-nothing.
func TestStoreFilesRollbackOnMidBatchFailure(t *testing.T) {
	store := &failingStore{Backend: memorystorage.New(), failAt: 3}

	svc, err := educontent.New(
		educontent.WithRepository(repomemory.New()),
		educontent.WithBlobStore("local", store),
		educontent.WithPolicies(educontent.DefaultPolicies("local", "remote")...),
	)
	require.NoError(t, err)

	_, err = svc.CreateCourse(context.Background(), educontent.CreateCourseRequest{
		Name: "Doomed batch",
		Images: []educontent.UploadFile{
			image("a.png", "a"),
			image("b.png", "b"),
			image("c.png", "c"),
		},
	})

	var sErr *educontent.StorageError
	require.ErrorAs(t, err, &sErr)
	assert.Equal(t, "upload", sErr.Op)
	assert.Equal(t, 0, store.Len(), "files stored before the failure must be discarded")
}

func TestUnknownNamespaceAndBackend(t *testing.T) {
	svc, err := educontent.New(
		educontent.WithRepository(repomemory.New()),
		educontent.WithPolicies(educontent.NamespacePolicy{
			Namespace:      educontent.NamespaceCourseImages,
			StorageBackend: "nowhere",
			Kind:           educontent.BackendLocal,
			Allowed:        []educontent.MediaClass{educontent.MediaImage},
		}),
	)
	require.NoError(t, err)

	_, err = svc.CreateCourse(context.Background(), educontent.CreateCourseRequest{
		Name:   "No backend",
		Images: []educontent.UploadFile{image("a.png", "a")},
	})
	assert.ErrorIs(t, err, educontent.ErrStorageBackendNotFound)

	_, err = svc.AddVideo(context.Background(), educontent.AddVideoRequest{
		CourseID: uuid.New(),
		File:     videoUpload("v.mp4", "v"),
	})
	assert.ErrorIs(t, err, educontent.ErrCourseNotFound)
}
