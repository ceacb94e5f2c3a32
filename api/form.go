package api

import (
	"errors"
	"mime/multipart"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/rpupo63/portfolio-site-backend/errs"
	"github.com/rpupo63/portfolio-site-backend/media"
	"github.com/rpupo63/portfolio-site-backend/services"
)

// DefaultMaxFormBytes bounds a whole admin form, all files included.
const DefaultMaxFormBytes int64 = 64 << 20

// parts above this size spill to temporary files
const multipartMemory = 8 << 20

var (
	captionKey   = regexp.MustCompile(`^captions\[(\d+)\]$`)
	sortOrderKey = regexp.MustCompile(`^sort_orders\[(\d+)\]$`)
)

// parseAdminForm reads a multipart or urlencoded admin form, capping the body at maxBytes.
func parseAdminForm(w http.ResponseWriter, r *http.Request, maxBytes int64) error {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxFormBytes
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		err = r.ParseMultipartForm(multipartMemory)
	} else {
		err = r.ParseForm()
	}
	if err == nil {
		return nil
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
		return errs.NewMaxBodySizeExceededError(maxBytes)
	}
	return errs.NewMalformedPayloadError("form", err)
}

// projectInputFromForm maps a parsed admin form onto the service input.
func projectInputFromForm(r *http.Request) services.ProjectInput {
	form := r.PostForm
	if form == nil {
		form = url.Values{}
	}

	in := services.ProjectInput{
		ID:          formInt64(form.Get("id")),
		Title:       form.Get("title"),
		CategoryID:  formInt64(form.Get("category_id")),
		Description: form.Get("description"),
		ProjectLink: form.Get("project_link"),
		GithubLink:  form.Get("github_link"),
		SortOrder:   formInt(form.Get("sort_order")),
		IsPublished: form.Has("is_published"),
		OldCover:    form.Get("old_cover_image"),
		OldPreview:  form.Get("old_preview_media"),
	}

	tags := append(append([]string{}, form["tags[]"]...), form["tags"]...)
	if len(tags) > 0 {
		in.Tags = tags
	}

	in.Hero = formUpload(r, "hero_media")
	in.Cover = formUpload(r, "cover_image")
	in.Preview = formUpload(r, "preview_media")
	in.Gallery = galleryUploads(r, form)
	in.GalleryMeta = galleryMeta(form)
	return in
}

func formUpload(r *http.Request, field string) media.Upload {
	files := formFiles(r, field)
	if len(files) == 0 {
		return media.UploadFromFileHeader(field, nil)
	}
	return media.UploadFromFileHeader(field, files[0])
}

func formFiles(r *http.Request, field string) []*multipart.FileHeader {
	if r.MultipartForm == nil {
		return nil
	}
	return r.MultipartForm.File[field]
}

// galleryUploads pairs each gallery file with the caption and sort order at the same index.
// A file with no matching entry gets an empty caption and order 0.
func galleryUploads(r *http.Request, form url.Values) []services.GalleryUpload {
	files := append(append([]*multipart.FileHeader{}, formFiles(r, "gallery_images[]")...), formFiles(r, "gallery_images")...)
	captions := form["gallery_captions[]"]
	orders := form["gallery_sort_orders[]"]

	uploads := make([]services.GalleryUpload, 0, len(files))
	for i, fh := range files {
		g := services.GalleryUpload{File: media.UploadFromFileHeader("gallery_images", fh)}
		if i < len(captions) {
			g.Caption = captions[i]
		}
		if i < len(orders) {
			g.SortOrder = formInt(orders[i])
		}
		if !g.File.Present() {
			continue
		}
		uploads = append(uploads, g)
	}
	return uploads
}

// galleryMeta collects captions[<id>] and sort_orders[<id>]. Every captioned id is edited; a
// missing sort order means 0.
func galleryMeta(form url.Values) []services.GalleryMeta {
	orders := map[int64]int{}
	for key, values := range form {
		if m := sortOrderKey.FindStringSubmatch(key); m != nil && len(values) > 0 {
			orders[formInt64(m[1])] = formInt(values[0])
		}
	}

	var meta []services.GalleryMeta
	for key, values := range form {
		m := captionKey.FindStringSubmatch(key)
		if m == nil || len(values) == 0 {
			continue
		}
		id := formInt64(m[1])
		if id <= 0 {
			continue
		}
		meta = append(meta, services.GalleryMeta{ID: id, Caption: values[0], SortOrder: orders[id]})
	}
	sort.Slice(meta, func(i, j int) bool { return meta[i].ID < meta[j].ID })
	return meta
}

func formInt64(raw string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func formInt(raw string) int {
	return int(formInt64(raw))
}
