package media

import (
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"

	"github.com/rpupo63/portfolio-site-backend/errs"
)

const sniffLen = 512

var (
	imageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}
	videoTypes = []string{"video/mp4", "video/webm"}
)

// Rules bound what one upload slot accepts.
type Rules struct {
	Name         string
	AllowedTypes []string
	MaxSize      int64
}

// WithMaxSize returns a copy of r with a different size limit. Non-positive sizes keep the current limit.
func (r Rules) WithMaxSize(size int64) Rules {
	if size > 0 {
		r.MaxSize = size
	}
	return r
}

func (r Rules) allows(mimeType string) bool {
	return slices.Contains(r.AllowedTypes, mimeType)
}

var (
	CoverRules   = Rules{Name: "cover image", AllowedTypes: imageTypes, MaxSize: 10 << 20}
	PreviewRules = Rules{Name: "preview media", AllowedTypes: []string{"image/gif", "video/mp4", "video/webm"}, MaxSize: 20 << 20}
	GalleryRules = Rules{Name: "gallery image", AllowedTypes: imageTypes, MaxSize: 5 << 20}
	HeroRules    = Rules{Name: "hero media", AllowedTypes: append(slices.Clone(imageTypes), videoTypes...), MaxSize: 20 << 20}
)

// ValidationError explains why an upload was refused. It unwraps to an errs sentinel.
type ValidationError struct {
	Field  string
	Reason string
	kind   error
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func (e *ValidationError) Unwrap() error {
	return e.kind
}

// ApiErr converts the rejection for the HTTP layer.
func (e *ValidationError) ApiErr() *errs.ApiErr {
	apiErr := errs.NewValidationError(e.Field, e.Reason)
	switch e.kind {
	case errs.ErrUnsupportedMediaType:
		apiErr.StatusCode = http.StatusUnsupportedMediaType
	case errs.ErrMaxBodySizeExceeded:
		apiErr.StatusCode = http.StatusRequestEntityTooLarge
	}
	return apiErr
}

func reject(field string, kind error, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...), kind: kind}
}

// Checked is an upload that passed validation, with the type detected from its content.
type Checked struct {
	Upload
	MimeType string
}

// Ext is the extension stored on disk, dot included.
func (c Checked) Ext() string {
	return Extension(c.Filename, c.MimeType)
}

// IsVideo reports whether the detected content is a video container.
func (c Checked) IsVideo() bool {
	return strings.HasPrefix(c.MimeType, "video/")
}

// Validate runs the checks in order and stops at the first failure: arrival status,
// size limit, declared type and finally the sniffed type, which must match the declared one.
func Validate(u Upload, rules Rules) (Checked, error) {
	switch u.Status {
	case UploadOK:
	case UploadNoFile:
		return Checked{}, reject(u.Field, errs.ErrMissingRequiredField, "no %s was uploaded", rules.Name)
	case UploadPartial:
		return Checked{}, reject(u.Field, errs.ErrValidation, "%s was only partially uploaded", rules.Name)
	default:
		return Checked{}, reject(u.Field, errs.ErrValidation, "%s upload failed", rules.Name)
	}

	if u.Size > rules.MaxSize {
		return Checked{}, reject(u.Field, errs.ErrMaxBodySizeExceeded,
			"%s exceeds the %.1fMB limit", rules.Name, float64(rules.MaxSize)/(1<<20))
	}

	declared := NormalizeType(u.DeclaredType)
	if !rules.allows(declared) {
		return Checked{}, reject(u.Field, errs.ErrUnsupportedMediaType,
			"%s type %q is not allowed (allowed: %s)", rules.Name, declared, strings.Join(rules.AllowedTypes, ", "))
	}

	sniffed, err := SniffType(u)
	if err != nil {
		return Checked{}, reject(u.Field, errs.ErrValidation, "could not read %s: %v", rules.Name, err)
	}
	if !rules.allows(sniffed) || sniffed != declared {
		return Checked{}, reject(u.Field, errs.ErrUnsupportedMediaType,
			"%s content (%s) does not match its declared type %s", rules.Name, sniffed, declared)
	}

	return Checked{Upload: u, MimeType: sniffed}, nil
}

// SniffType detects the content type from the first bytes of the upload.
func SniffType(u Upload) (string, error) {
	if u.Open == nil {
		return "", fmt.Errorf("upload %q has no content", u.Filename)
	}
	rc, err := u.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(rc, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", err
	}
	return NormalizeType(http.DetectContentType(head[:n])), nil
}

// NormalizeType lower-cases a media type and drops parameters such as charset.
func NormalizeType(t string) string {
	if i := strings.IndexByte(t, ';'); i >= 0 {
		t = t[:i]
	}
	return strings.ToLower(strings.TrimSpace(t))
}
