package api

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rpupo63/portfolio-site-backend/database"
	"github.com/rpupo63/portfolio-site-backend/media"
	"github.com/rpupo63/portfolio-site-backend/models"
	"github.com/rpupo63/portfolio-site-backend/services"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func pngData() []byte {
	return append(bytes.Clone(pngHeader), bytes.Repeat([]byte{0}, 64)...)
}

type testServer struct {
	router *chi.Mux
	db     database.Database
	store  *media.LocalStore
	web    int64
}

func newTestServer(t *testing.T, maxFormBytes int64) *testServer {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "portfolio.db") + "?_foreign_keys=on"
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, models.Migrate(gdb, false))
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})

	store, err := media.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	db := database.New(gdb)
	web := models.Category{Name: "Web"}
	require.NoError(t, db.CategoryRepo().Add(context.Background(), &web))

	deps := Dependencies{
		Database:     db,
		Projects:     services.NewProjectService(db, store, t.TempDir()),
		Admin:        services.NewAdminService(db),
		Store:        store,
		MaxFormBytes: maxFormBytes,
	}
	return &testServer{router: NewRouter(deps), db: db, store: store, web: web.ID}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

type formFile struct {
	field, name, contentType string
	data                     []byte
}

// multipartRequest builds a POST with explicit part content types, as browsers send them.
func multipartRequest(t *testing.T, target string, fields map[string][]string, files ...formFile) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for key, values := range fields {
		for _, v := range values {
			require.NoError(t, w.WriteField(key, v))
		}
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, f.field, f.name))
		h.Set("Content-Type", f.contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func (s *testServer) projectFields(title string) map[string][]string {
	return map[string][]string{
		"title":        {title},
		"category_id":  {fmt.Sprint(s.web)},
		"description":  {"Built with Go"},
		"sort_order":   {"1"},
		"is_published": {"on"},
	}
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func bytesReader(b []byte) *bytes.Reader {
	return bytes.NewReader(b)
}
