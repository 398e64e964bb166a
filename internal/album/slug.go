package album

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"time"
)

const maxSlugLen = 80

// slugProbes bounds the base, base-2, base-3 ... probe sequence before
// falling back to a random suffix.
const slugProbes = 25

var (
	slugSeparators = regexp.MustCompile(`[_\s]+`)
	slugInvalid    = regexp.MustCompile(`[^a-z0-9-]`)
	slugDashRuns   = regexp.MustCompile(`-+`)
)

// NormalizeSlug lowercases the input, collapses whitespace/underscore runs
// and anything outside [a-z0-9] into single hyphens, trims edge hyphens, and
// caps the length at 80.
func NormalizeSlug(input string) string {
	s := strings.ToLower(strings.TrimSpace(input))
	s = slugSeparators.ReplaceAllString(s, "-")
	s = slugInvalid.ReplaceAllString(s, "")
	s = slugDashRuns.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > maxSlugLen {
		s = s[:maxSlugLen]
	}
	return s
}

// slugProber answers whether a candidate slug is already taken by a live
// album other than excludeID.
type slugProber interface {
	SlugTaken(ctx context.Context, slug string, excludeID *string) (bool, error)
}

// ensureUniqueSlug normalizes base and probes base, base-2, base-3 ... until
// a free slug is found, falling back to a random hex suffix when every probe
// collides. The probing is advisory: two concurrent creates deriving the
// same base can race, and the partial unique index is the backstop.
func ensureUniqueSlug(ctx context.Context, prober slugProber, base string, excludeID *string) (string, error) {
	slug := NormalizeSlug(base)
	if slug == "" {
		slug = fmt.Sprintf("album-%d", time.Now().Unix())
	}

	for i := 0; i < slugProbes; i++ {
		candidate := slug
		if i > 0 {
			candidate = fmt.Sprintf("%s-%d", slug, i+1)
		}
		taken, err := prober.SlugTaken(ctx, candidate, excludeID)
		if err != nil {
			return "", fmt.Errorf("probe slug %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
	}

	suffix := make([]byte, 3)
	if _, err := rand.Read(suffix); err != nil {
		return "", fmt.Errorf("random slug suffix: %w", err)
	}
	return fmt.Sprintf("%s-%s", slug, hex.EncodeToString(suffix)), nil
}
