package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rpupo63/portfolio-site-backend/services"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlashRoundTrip(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, setFlash(rec, Flash{Type: "success", Message: "Project updated, tags: 2"}))
	cookie := findCookie(rec, flashCookieName)
	require.NotNil(t, cookie)
	assert.Equal(t, "/admin", cookie.Path)
	assert.True(t, cookie.HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/admin/", nil)
	req.AddCookie(cookie)
	out := httptest.NewRecorder()
	flash := popFlash(out, req)
	require.NotNil(t, flash)
	assert.Equal(t, Flash{Type: "success", Message: "Project updated, tags: 2"}, *flash)

	cleared := findCookie(out, flashCookieName)
	require.NotNil(t, cleared)
	assert.Equal(t, "", cleared.Value)
}

func TestFlashIgnoresGarbage(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/admin/", nil)
	req.AddCookie(&http.Cookie{Name: flashCookieName, Value: "%%%not-base64"})
	assert.Nil(t, popFlash(httptest.NewRecorder(), req))

	assert.Nil(t, popFlash(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/admin/", nil)))
}

func TestWriteResultLogsFlashEncodingFailure(t *testing.T) {
	encodeFlash = func(any) ([]byte, error) { return nil, errors.New("encoder broke") }
	t.Cleanup(func() { encodeFlash = json.Marshal })

	var logs bytes.Buffer
	h := adminHandler{logger: zerolog.New(&logs)}
	h.responder = NewResponder(h.logger)

	rec := httptest.NewRecorder()
	h.writeResult(rec, httptest.NewRequest(http.MethodPost, "/admin/actions", nil), services.Result{
		Status:         services.StatusSuccess,
		Message:        "Project created",
		RedirectTarget: "/admin/edit?id=1",
	})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/edit?id=1", rec.Header().Get("Location"))
	assert.Nil(t, findCookie(rec, flashCookieName))
	assert.Contains(t, logs.String(), "could not set flash message")
	assert.Contains(t, logs.String(), "encoder broke")
}
