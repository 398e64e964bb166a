package photo

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

// MaxFileSizeBytes is the upper bound for a single photo upload (10 MiB).
const MaxFileSizeBytes = 10 << 20

// maxOriginalNameLen bounds the stored display name.
const maxOriginalNameLen = 200

// extByType maps allow-listed content types to object key extensions.
// A content type outside this map is rejected at request time.
var extByType = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// AllowedContentType reports whether ct is an accepted upload type.
func AllowedContentType(ct string) bool {
	_, ok := extByType[ct]
	return ok
}

// MakeKey generates a globally unique object key with the layout
// {prefix}/{year}/{month}/{uuid}.{ext}. The UUID component guarantees
// uniqueness; the UTC year/month partitioning keeps storage listings
// manageable. contentType must be allow-listed.
func MakeKey(prefix, contentType string) string {
	ext := extByType[contentType]
	p := strings.Trim(strings.TrimSpace(prefix), "/")
	if p == "" {
		p = "photos"
	}
	now := time.Now().UTC()
	return fmt.Sprintf("%s/%04d/%02d/%s.%s", p, now.Year(), int(now.Month()), uuid.NewString(), ext)
}

// SanitizeFilename strips path segments and any character outside a
// conservative allow-list (letters, digits, '.', '_', space, '-'), then
// truncates to a bounded length. The result is used only for display,
// never for addressing.
func SanitizeFilename(name string) string {
	base := name
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}
	if base == "" {
		base = "file"
	}

	var b strings.Builder
	for _, r := range base {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '.' || r == '_' || r == ' ' || r == '-':
			b.WriteRune(r)
		}
	}

	out := []rune(b.String())
	if len(out) > maxOriginalNameLen {
		out = out[:maxOriginalNameLen]
	}
	return string(out)
}
