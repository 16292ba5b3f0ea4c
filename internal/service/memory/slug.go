package memory

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sandevgo/tuskmem/internal/core"
)

const maxSlugLength = 40

// Slugify lowercases text, collapses every run of characters outside
// [a-z0-9] into a single '-' and truncates to maxSlugLength.
func Slugify(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	dash := false
	for _, r := range strings.ToLower(text) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}

	slug := b.String()
	if len(slug) > maxSlugLength {
		slug = slug[:maxSlugLength]
	}
	return strings.Trim(slug, "-")
}

// assignName picks a free name for base. Must run inside the write
// transaction so the existence check and the insert see the same state.
func (s *Service) assignName(ctx context.Context, r core.MemoryReader, base string, now time.Time) (string, error) {
	if base == "" {
		base = fmt.Sprintf("memory-%d", now.Unix())
	}

	_, taken, err := r.GetMemory(ctx, base)
	if err != nil {
		return "", err
	}
	if !taken {
		return base, nil
	}
	return base + "-" + now.Format("20060102150405"), nil
}

// collisionSuffix is used once when the insert itself hits the unique index.
func collisionSuffix(now time.Time) string {
	return "-" + strconv.FormatInt(now.UnixNano(), 36)
}
