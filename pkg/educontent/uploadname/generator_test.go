package uploadname

import (
	"regexp"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

var namePattern = regexp.MustCompile(`^([a-zA-Z0-9_.-]+)-(\d+)-(\d+)(\.[a-z0-9]+)?$`)

func TestGenerateFormat(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	name := GenerateAt("images", ".png", now)

	m := namePattern.FindStringSubmatch(name)
	if m == nil {
		t.Fatalf("name %q does not match expected format", name)
	}
	if m[1] != "images" {
		t.Errorf("field component = %q, want %q", m[1], "images")
	}
	if m[2] != strconv.FormatInt(now.UnixMilli(), 10) {
		t.Errorf("time component = %q, want %d", m[2], now.UnixMilli())
	}
	random, err := strconv.ParseInt(m[3], 10, 64)
	if err != nil || random < 0 || random >= randRange {
		t.Errorf("random component %q out of [0, %d)", m[3], int64(randRange))
	}
	if m[4] != ".png" {
		t.Errorf("extension = %q, want .png", m[4])
	}
}

func TestGenerateUppercaseExtensionLowered(t *testing.T) {
	name := Generate("file", ".MP4")
	if !strings.HasSuffix(name, ".mp4") {
		t.Errorf("name %q should end with lowercase extension", name)
	}
}

func TestGenerateEmptyField(t *testing.T) {
	name := Generate("", ".txt")
	if !strings.HasPrefix(name, "file-") {
		t.Errorf("name %q should fall back to the default field prefix", name)
	}
}

func TestGenerateSanitizesField(t *testing.T) {
	name := Generate("user files/2024", ".pdf")
	for _, forbidden := range []string{"/", "\\", " ", ":"} {
		if strings.Contains(name, forbidden) {
			t.Errorf("name %q contains forbidden character %q", name, forbidden)
		}
	}
}

// Ten thousand concurrent generations must not collide; collisions would
// silently overwrite stored files.
func TestGenerateConcurrentNoCollisions(t *testing.T) {
	const (
		workers   = 10
		perWorker = 1000
	)

	names := make(chan string, workers*perWorker)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				names <- Generate("file", ".bin")
			}
		}()
	}
	wg.Wait()
	close(names)

	seen := make(map[string]struct{}, workers*perWorker)
	for name := range names {
		if _, dup := seen[name]; dup {
			t.Fatalf("duplicate name generated: %s", name)
		}
		seen[name] = struct{}{}
	}
	if len(seen) != workers*perWorker {
		t.Fatalf("expected %d unique names, got %d", workers*perWorker, len(seen))
	}
}
