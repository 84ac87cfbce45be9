package fs

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFSBackend_BasicOps(t *testing.T) {
	tmp := t.TempDir()
	backend, err := New(Config{BaseDir: tmp})
	if err != nil {
		t.Fatalf("new fs backend: %v", err)
	}

	ctx := context.Background()
	key := "images-1700000000000-123456789.png"

	data := []byte("hello fs")
	if err := backend.Upload(ctx, key, bytes.NewReader(data)); err != nil {
		t.Fatalf("upload: %v", err)
	}

	meta, err := backend.GetObjectMeta(ctx, key)
	if err != nil {
		t.Fatalf("get meta: %v", err)
	}
	if meta.Size != int64(len(data)) {
		t.Fatalf("expected size %d, got %d", len(data), meta.Size)
	}

	rc, err := backend.Download(ctx, key)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	got, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(got) != string(data) {
		t.Fatalf("download mismatch: %q", string(got))
	}

	if err := backend.Delete(ctx, key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(tmp, key)); !os.IsNotExist(err) {
		t.Fatalf("expected file removed, stat err=%v", err)
	}
}

func TestFSBackend_NestedKeyCleansUpDirectories(t *testing.T) {
	tmp := t.TempDir()
	backend, err := New(Config{BaseDir: tmp})
	if err != nil {
		t.Fatalf("new fs backend: %v", err)
	}

	ctx := context.Background()
	key := "shop-videos/file-1700000000000-42.mp4"

	if err := backend.Upload(ctx, key, strings.NewReader("v")); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if err := backend.Delete(ctx, key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(tmp, "shop-videos")); !os.IsNotExist(err) {
		t.Fatalf("expected empty namespace dir removed, stat err=%v", err)
	}
}

type brokenReader struct{}

func (brokenReader) Read([]byte) (int, error) { return 0, errors.New("stream broke") }

// A failed write must not leave a partial file behind.
func TestFSBackend_PartialWriteRemoved(t *testing.T) {
	tmp := t.TempDir()
	backend, err := New(Config{BaseDir: tmp})
	if err != nil {
		t.Fatalf("new fs backend: %v", err)
	}

	key := "broken.bin"
	if err := backend.Upload(context.Background(), key, brokenReader{}); err == nil {
		t.Fatal("expected upload error")
	}
	if _, err := os.Stat(filepath.Join(tmp, key)); !os.IsNotExist(err) {
		t.Fatalf("partial file should be removed, stat err=%v", err)
	}
}

func TestFSBackend_CancelledContext(t *testing.T) {
	tmp := t.TempDir()
	backend, err := New(Config{BaseDir: tmp})
	if err != nil {
		t.Fatalf("new fs backend: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := backend.Upload(ctx, "cancelled.bin", strings.NewReader("data")); err == nil {
		t.Fatal("expected error from cancelled context")
	}
	if _, err := os.Stat(filepath.Join(tmp, "cancelled.bin")); !os.IsNotExist(err) {
		t.Fatalf("file from cancelled upload should be removed, stat err=%v", err)
	}
}

func TestFSBackend_DownloadURL(t *testing.T) {
	tmp := t.TempDir()

	noPrefix, err := New(Config{BaseDir: tmp})
	if err != nil {
		t.Fatalf("new fs backend: %v", err)
	}
	if _, err := noPrefix.GetDownloadURL(context.Background(), "k", ""); err == nil {
		t.Fatal("expected error without url prefix")
	}

	withPrefix, err := New(Config{BaseDir: tmp, URLPrefix: "/uploads"})
	if err != nil {
		t.Fatalf("new fs backend: %v", err)
	}
	url, err := withPrefix.GetDownloadURL(context.Background(), "a.png", "")
	if err != nil {
		t.Fatalf("get download url: %v", err)
	}
	if url != "/uploads/a.png" {
		t.Fatalf("unexpected url %q", url)
	}
}

func TestFSBackend_RequiresBaseDir(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("expected error for missing base dir")
	}
}
