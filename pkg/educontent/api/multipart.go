package api

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/tendant/edu-content/pkg/educontent"
)

// maxMultipartMemory bounds the in-memory portion of multipart parsing;
// larger parts spill to temp files.
const maxMultipartMemory = 32 << 20

// openUploads opens every file submitted under the given form field and
// converts them to service upload requests. The returned closer must be
// called after the service consumed the readers.
func openUploads(r *http.Request, field string) ([]educontent.UploadFile, func(), error) {
	if r.MultipartForm == nil {
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			return nil, func() {}, fmt.Errorf("failed to parse multipart form: %w", err)
		}
	}

	headers := r.MultipartForm.File[field]
	files := make([]educontent.UploadFile, 0, len(headers))
	opened := make([]multipart.File, 0, len(headers))
	closeAll := func() {
		for _, f := range opened {
			f.Close()
		}
	}

	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			closeAll()
			return nil, func() {}, fmt.Errorf("failed to open uploaded file %s: %w", header.Filename, err)
		}
		opened = append(opened, f)

		files = append(files, educontent.UploadFile{
			FieldName: field,
			FileName:  header.Filename,
			MimeType:  header.Header.Get("Content-Type"),
			Size:      header.Size,
			Reader:    f,
		})
	}

	return files, closeAll, nil
}

// openSingleUpload opens at most one file for the given form field. A missing
// field returns (nil, noop, nil); the handler decides whether that is an
// error.
func openSingleUpload(r *http.Request, field string) (*educontent.UploadFile, func(), error) {
	files, closeAll, err := openUploads(r, field)
	if err != nil {
		return nil, closeAll, err
	}
	if len(files) == 0 {
		return nil, closeAll, nil
	}
	if len(files) > 1 {
		closeAll()
		return nil, func() {}, &educontent.ValidationError{
			Reason: fmt.Sprintf("exactly one %q file is expected", field),
		}
	}
	return &files[0], closeAll, nil
}

// formValue returns a trimmed form value from a parsed multipart request.
func formValue(r *http.Request, key string) string {
	return strings.TrimSpace(r.FormValue(key))
}
