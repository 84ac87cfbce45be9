// Package uploadname produces collision-resistant names for accepted
// uploads. A name is a pure function of the clock and an RNG draw; no
// central sequence counter is involved, so concurrent requests allocate
// names without coordination.
package uploadname

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

const randRange = 1_000_000_000

// Generate returns "{field}-{epochMillis}-{random}{ext}". The time component
// keeps names roughly sortable; the random suffix makes same-millisecond
// collisions negligible. ext should include the leading dot ("" for none).
func Generate(fieldName, ext string) string {
	return GenerateAt(fieldName, ext, time.Now())
}

// GenerateAt is Generate with an explicit clock reading, for tests.
func GenerateAt(fieldName, ext string, now time.Time) string {
	field := sanitizeField(fieldName)
	if field == "" {
		field = "file"
	}
	return fmt.Sprintf("%s-%d-%d%s", field, now.UnixMilli(), rand.Int63n(randRange), strings.ToLower(ext))
}

func sanitizeField(field string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "_",
	)
	return replacer.Replace(field)
}
