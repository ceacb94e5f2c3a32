package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rpupo63/portfolio-site-backend/database"
	"github.com/rpupo63/portfolio-site-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *testServer) addProject(t *testing.T, title string, sortOrder int, published bool) int64 {
	t.Helper()
	cover := "uploads/" + title + ".png"
	p := &models.Project{
		CategoryID:    s.web,
		Title:         title,
		Description:   title + " description",
		CoverImageURL: &cover,
		SortOrder:     sortOrder,
		IsPublished:   published,
	}
	require.NoError(t, s.db.ProjectRepo().Add(context.Background(), p))
	return p.ID
}

func TestListProjects(t *testing.T) {
	s := newTestServer(t, 0)
	s.addProject(t, "b", 2, true)
	s.addProject(t, "a", 1, true)
	s.addProject(t, "hidden", 0, false)

	rec := s.do(httptest.NewRequest(http.MethodGet, "/api/projects?category=Web", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

	var list []database.ProjectSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].Title)
	assert.Equal(t, "b", list[1].Title)
	require.NotNil(t, list[0].PreviewMediaURL)
	assert.Equal(t, "uploads/a.png", *list[0].PreviewMediaURL)

	rec = s.do(httptest.NewRequest(http.MethodGet, "/api/projects?category=Mobile", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestListProjectsRejectsNonNumericPaging(t *testing.T) {
	s := newTestServer(t, 0)

	for _, target := range []string{"/api/projects?limit=ten", "/api/projects?offset=x"} {
		rec := s.do(httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)

		var body ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "error", body.Status)
	}

	rec := s.do(httptest.NewRequest(http.MethodGet, "/api/projects?limit=-5&offset=-1", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetProject(t *testing.T) {
	s := newTestServer(t, 0)
	id := s.addProject(t, "shown", 1, true)
	hidden := s.addProject(t, "hidden", 1, false)

	for _, target := range []string{"/api/projects/1", "/api/project?id=1"} {
		rec := s.do(httptest.NewRequest(http.MethodGet, target, nil))
		require.Equal(t, http.StatusOK, rec.Code, target)

		var detail database.ProjectDetail
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
		assert.Equal(t, id, detail.ID)
		require.NotNil(t, detail.CategoryName)
		assert.Equal(t, "Web", *detail.CategoryName)
	}

	rec := s.do(httptest.NewRequest(http.MethodGet, "/api/projects/"+itoa(hidden), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(httptest.NewRequest(http.MethodGet, "/api/projects/999", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	for _, target := range []string{"/api/project", "/api/project?id=abc", "/api/projects/0"} {
		rec = s.do(httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, 0)

	rec := s.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}
