package media

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"path"
	"slices"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

const (
	// UploadPrefix is the flat directory every stored media path lives in.
	UploadPrefix = "uploads/"

	maxBaseRunes    = 80
	suffixBytes     = 4
	maxAllocRetries = 8
)

// Allocator derives collision-resistant file names from human hints such as a project title.
type Allocator struct {
	now  func() time.Time
	rand io.Reader
}

func NewAllocator() *Allocator {
	return &Allocator{now: time.Now, rand: rand.Reader}
}

// NewAllocatorWith is NewAllocator with a fixed clock and random source.
func NewAllocatorWith(now func() time.Time, random io.Reader) *Allocator {
	return &Allocator{now: now, rand: random}
}

// BaseName turns hint into "<slug>_YYYYMMDD_<8 hex>". An empty slug uses fallback.
func (a *Allocator) BaseName(hint, fallback string) (string, error) {
	slug := Slugify(hint)
	if slug == "" {
		slug = Slugify(fallback)
	}
	if slug == "" {
		slug = "file"
	}

	suffix, err := a.randomHex()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s_%s_%s", slug, a.now().Format("20060102"), suffix), nil
}

// Allocate returns an unused "uploads/<base><ext>" path in store.
func (a *Allocator) Allocate(ctx context.Context, store Store, hint, fallback, ext string) (string, error) {
	base, err := a.BaseName(hint, fallback)
	if err != nil {
		return "", err
	}

	candidate := UploadPrefix + base + ext
	for i := 0; i < maxAllocRetries; i++ {
		exists, err := store.Exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check %s: %w", candidate, err)
		}
		if !exists {
			return candidate, nil
		}
		extra, err := a.randomHex()
		if err != nil {
			return "", err
		}
		candidate = UploadPrefix + base + "_" + extra + ext
	}
	return "", fmt.Errorf("no free file name for %q after %d attempts", hint, maxAllocRetries)
}

func (a *Allocator) randomHex() (string, error) {
	buf := make([]byte, suffixBytes)
	if _, err := io.ReadFull(a.rand, buf); err != nil {
		return "", fmt.Errorf("read random suffix: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// Slugify keeps letters of any script, digits, '_' and '-'. Whitespace runs become a single '-'.
// The result is trimmed of leading and trailing separators and cut to 80 runes.
func Slugify(s string) string {
	var b strings.Builder
	inSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteRune('-')
			}
			inSpace = true
			continue
		}
		inSpace = false
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' {
			b.WriteRune(r)
		}
	}

	slug := strings.Trim(b.String(), "-_")
	if utf8.RuneCountInString(slug) > maxBaseRunes {
		slug = string([]rune(slug)[:maxBaseRunes])
	}
	return slug
}

var extByType = map[string][]string{
	"image/jpeg": {".jpg", ".jpeg"},
	"image/png":  {".png"},
	"image/gif":  {".gif"},
	"image/webp": {".webp"},
	"video/mp4":  {".mp4", ".m4v"},
	"video/webm": {".webm"},
}

// Extension picks the stored extension. The original one is kept, lower-cased, when it is
// a known spelling for the detected type; otherwise the canonical extension is used.
func Extension(filename, mimeType string) string {
	known := extByType[mimeType]
	if len(known) == 0 {
		return ""
	}
	ext := strings.ToLower(path.Ext(filename))
	if slices.Contains(known, ext) {
		return ext
	}
	return known[0]
}

// IsUploadPath reports whether p is a normalised path inside UploadPrefix.
func IsUploadPath(p string) bool {
	if !strings.HasPrefix(p, UploadPrefix) || strings.Contains(p, "..") {
		return false
	}
	name := strings.TrimPrefix(p, UploadPrefix)
	return name != "" && !strings.Contains(name, "/")
}
