package storage

import (
	"context"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"imageproxy/internal/domain"
)

// Identifier prefixes for published images.
const (
	PrefixGenerated = "generated_"
	PrefixEdited    = "edited_"
)

// Publisher uploads image bytes under a fresh identifier and returns the public URL.
type Publisher interface {
	Publish(ctx context.Context, data []byte, prefix string) (domain.PublishedResult, error)
}

// Namer hands out prefix+millisecond identifiers. Within one process the
// numeric part strictly increases: a clock reading at or below the last value
// issued is bumped to the next unused millisecond. Separate processes can
// still collide on the same millisecond.
type Namer struct {
	last atomic.Int64
	now  func() time.Time
}

// NewNamer returns a Namer reading the wall clock.
func NewNamer() *Namer {
	return &Namer{now: time.Now}
}

// Next returns the next identifier for prefix.
func (n *Namer) Next(prefix string) string {
	now := n.now
	if now == nil {
		now = time.Now
	}
	for {
		ms := now().UnixMilli()
		last := n.last.Load()
		if ms <= last {
			ms = last + 1
		}
		if n.last.CompareAndSwap(last, ms) {
			return prefix + strconv.FormatInt(ms, 10)
		}
	}
}

// sniff returns the content type and a file extension for data.
func sniff(data []byte) (string, string) {
	ct := http.DetectContentType(data)
	switch ct {
	case "image/png":
		return ct, ".png"
	case "image/jpeg":
		return ct, ".jpg"
	case "image/gif":
		return ct, ".gif"
	case "image/webp":
		return ct, ".webp"
	case "image/bmp":
		return ct, ".bmp"
	default:
		return ct, ""
	}
}
