package album

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"testing"
)

func TestNormalizeSlug(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "Summer", "summer"},
		{"spaces to hyphen", "My Trip", "my-trip"},
		{"underscores to hyphen", "my_trip_2026", "my-trip-2026"},
		{"specials dropped", "Héllo, Wörld!", "hllo-wrld"},
		{"dash runs collapsed", "a -- b --- c", "a-b-c"},
		{"edge hyphens trimmed", "  -trip-  ", "trip"},
		{"empty", "!!!", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeSlug(tt.in); got != tt.want {
				t.Errorf("NormalizeSlug(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeSlugLengthCap(t *testing.T) {
	long := strings.Repeat("a", 200)
	if got := NormalizeSlug(long); len(got) != 80 {
		t.Errorf("len = %d, want 80", len(got))
	}
}

// mapProber is a slugProber backed by a slug -> owning album id map.
type mapProber map[string]string

func (m mapProber) SlugTaken(_ context.Context, slug string, excludeID *string) (bool, error) {
	owner, ok := m[slug]
	if !ok {
		return false, nil
	}
	if excludeID != nil && owner == *excludeID {
		return false, nil
	}
	return true, nil
}

func TestEnsureUniqueSlugFreeBase(t *testing.T) {
	got, err := ensureUniqueSlug(context.Background(), mapProber{}, "My Trip", nil)
	if err != nil {
		t.Fatal(err)
	}
	if got != "my-trip" {
		t.Errorf("got %q, want my-trip", got)
	}
}

func TestEnsureUniqueSlugProbesSuffixes(t *testing.T) {
	prober := mapProber{"my-trip": "x", "my-trip-2": "y"}
	got, err := ensureUniqueSlug(context.Background(), prober, "My Trip", nil)
	if err != nil {
		t.Fatal(err)
	}
	if got != "my-trip-3" {
		t.Errorf("got %q, want my-trip-3", got)
	}
}

func TestEnsureUniqueSlugExcludesOwnRow(t *testing.T) {
	id := "album-1"
	prober := mapProber{"my-trip": id}
	got, err := ensureUniqueSlug(context.Background(), prober, "My Trip", &id)
	if err != nil {
		t.Fatal(err)
	}
	if got != "my-trip" {
		t.Errorf("got %q, want my-trip (own row excluded)", got)
	}
}

func TestEnsureUniqueSlugRandomFallback(t *testing.T) {
	prober := mapProber{"trip": "x"}
	for i := 2; i <= slugProbes; i++ {
		prober["trip-"+strconv.Itoa(i)] = "x"
	}

	got, err := ensureUniqueSlug(context.Background(), prober, "trip", nil)
	if err != nil {
		t.Fatal(err)
	}
	if !regexp.MustCompile(`^trip-[0-9a-f]{6}$`).MatchString(got) {
		t.Errorf("got %q, want trip-<6 hex chars>", got)
	}
}

func TestEnsureUniqueSlugEmptyBase(t *testing.T) {
	got, err := ensureUniqueSlug(context.Background(), mapProber{}, "!!!", nil)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(got, "album-") {
		t.Errorf("got %q, want album-<timestamp> fallback", got)
	}
}
