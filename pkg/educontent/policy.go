package educontent

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Well-known upload namespaces.
const (
	NamespaceCourseImages = "course-images"
	NamespaceShopVideos   = "shop-videos"
	NamespaceQuestionDocs = "question-docs"
	NamespaceFeatures     = "features"
	NamespaceShopItems    = "shop-items"
)

// MaxVideoSize is the ceiling for a single video upload.
const MaxVideoSize = 50 << 20 // 50 MiB

// FileInfo is the declared metadata of an incoming upload, checked before
// any byte is persisted.
type FileInfo struct {
	FileName string
	MimeType string
	Size     int64
}

// NamespacePolicy is the static wiring of one upload namespace: which
// backend it stores to and what it accepts. Policies are fixed at
// construction time, not chosen per request.
type NamespacePolicy struct {
	Namespace      string
	StorageBackend string
	Kind           BackendKind
	Allowed        []MediaClass
	MaxFiles       int
	// MaxFileSize in bytes; 0 means no ceiling.
	MaxFileSize int64
	// CanonicalFormat forces the stored extension (e.g. "mp4", "png") for
	// remote uploads that the object store re-encodes. Empty keeps the
	// original extension.
	CanonicalFormat string
}

// documentTypes maps the accepted document extensions to the mime types a
// client may declare for them. Both the extension and the declared type must
// match for a document upload to pass.
var documentTypes = map[string][]string{
	".pdf":  {"application/pdf"},
	".docx": {"application/vnd.openxmlformats-officedocument.wordprocessingml.document", "application/msword"},
	".xlsx": {"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "application/vnd.ms-excel"},
	".txt":  {"text/plain"},
}

// Validate checks a declared upload against the namespace allow-list and
// size ceiling. It is a pure check with no side effects; a non-nil result is
// always a *ValidationError carrying a user-facing reason.
func (p NamespacePolicy) Validate(file FileInfo) error {
	if !p.accepts(file) {
		return &ValidationError{
			FileName: file.FileName,
			Reason:   fmt.Sprintf("only %s files are allowed", describeClasses(p.Allowed)),
		}
	}

	if p.MaxFileSize > 0 && file.Size > p.MaxFileSize {
		return &ValidationError{
			FileName: file.FileName,
			Reason:   fmt.Sprintf("file exceeds the %d MB size limit", p.MaxFileSize>>20),
		}
	}

	return nil
}

// ValidateBatch checks the file count and every file of a multi-file request
// up front, so a rejection never follows a storage write.
func (p NamespacePolicy) ValidateBatch(files []FileInfo) error {
	if p.MaxFiles > 0 && len(files) > p.MaxFiles {
		return &ValidationError{
			Reason: fmt.Sprintf("at most %d files are allowed per request", p.MaxFiles),
		}
	}
	for _, f := range files {
		if err := p.Validate(f); err != nil {
			return err
		}
	}
	return nil
}

func (p NamespacePolicy) accepts(file FileInfo) bool {
	mime := strings.ToLower(file.MimeType)
	ext := strings.ToLower(filepath.Ext(file.FileName))

	for _, class := range p.Allowed {
		switch class {
		case MediaImage:
			if strings.HasPrefix(mime, "image/") {
				return true
			}
		case MediaVideo:
			if strings.HasPrefix(mime, "video/") {
				return true
			}
		case MediaDocument:
			allowed, ok := documentTypes[ext]
			if !ok {
				continue
			}
			for _, m := range allowed {
				if mime == m {
					return true
				}
			}
		}
	}
	return false
}

func describeClasses(classes []MediaClass) string {
	parts := make([]string, 0, len(classes))
	for _, c := range classes {
		switch c {
		case MediaDocument:
			parts = append(parts, "PDF, DOCX, XLSX and TXT")
		default:
			parts = append(parts, string(c))
		}
	}
	return strings.Join(parts, " and ")
}

// DefaultPolicies returns the deployment wiring for the known namespaces.
// localBackend and remoteBackend are the registered blob-store names for the
// two kinds.
func DefaultPolicies(localBackend, remoteBackend string) []NamespacePolicy {
	return []NamespacePolicy{
		{
			Namespace:      NamespaceCourseImages,
			StorageBackend: localBackend,
			Kind:           BackendLocal,
			Allowed:        []MediaClass{MediaImage},
			MaxFiles:       5,
		},
		{
			Namespace:       NamespaceShopVideos,
			StorageBackend:  remoteBackend,
			Kind:            BackendRemote,
			Allowed:         []MediaClass{MediaVideo},
			MaxFiles:        1,
			MaxFileSize:     MaxVideoSize,
			CanonicalFormat: "mp4",
		},
		{
			Namespace:      NamespaceQuestionDocs,
			StorageBackend: localBackend,
			Kind:           BackendLocal,
			Allowed:        []MediaClass{MediaDocument},
			MaxFiles:       10,
		},
		{
			Namespace:      NamespaceFeatures,
			StorageBackend: localBackend,
			Kind:           BackendLocal,
			Allowed:        []MediaClass{MediaImage, MediaVideo},
			MaxFiles:       10,
		},
		{
			Namespace:       NamespaceShopItems,
			StorageBackend:  remoteBackend,
			Kind:            BackendRemote,
			Allowed:         []MediaClass{MediaImage},
			MaxFiles:        5,
			CanonicalFormat: "png",
		},
	}
}
