package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tracking-dashboard/config"
	"tracking-dashboard/schedule"
	"tracking-dashboard/store"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Config{
		Projects: []config.Project{
			{ProjectID: "PRJ1", RootPath: t.TempDir()},
		},
		StorePath:     t.TempDir(),
		CacheTTLHours: 24,
	}
	return NewServer(cfg, zap.NewNop())
}

func doJSON(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, req)
	return rec
}

func TestHealthCheck(t *testing.T) {
	s := testServer(t)

	rec := doJSON(t, s, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "healthy", response["status"])
	assert.Equal(t, "tracking-dashboard-api", response["service"])
}

func TestGetProgramsEmptySnapshot(t *testing.T) {
	s := testServer(t)

	rec := doJSON(t, s, http.MethodGet, "/api/programs", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var response struct {
		Status string             `json:"status"`
		Data   []schedule.Program `json:"data"`
		Stats  map[string]int     `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "success", response.Status)
	assert.Empty(t, response.Data)
	assert.Equal(t, 0, response.Stats["programs"])
}

func TestGetProgramsReturnsSnapshot(t *testing.T) {
	s := testServer(t)

	st := store.New(s.config.StorePath, s.config.CacheTTL())
	require.NoError(t, st.SavePrograms([]schedule.Program{
		{PRGID: "P100", PRGName: "Login"},
		{PRGID: "P200", PRGName: "Billing"},
	}))

	rec := doJSON(t, s, http.MethodGet, "/api/programs", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var response struct {
		Data  []schedule.Program `json:"data"`
		Stats map[string]int     `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	require.Len(t, response.Data, 2)
	assert.Equal(t, "P100", response.Data[0].PRGID)
	assert.Equal(t, 2, response.Stats["programs"])
}

func TestImportProgramsUnknownProject(t *testing.T) {
	s := testServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/programs/import",
		map[string]string{"project_id": "NOPE"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestImportProgramsBadBody(t *testing.T) {
	s := testServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/programs/import",
		bytes.NewBufferString("{"))
	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReconcileWithoutSnapshot(t *testing.T) {
	s := testServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/programs/reconcile",
		map[string]string{"project_id": "PRJ1"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestReconcileUnknownProject(t *testing.T) {
	s := testServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/programs/reconcile",
		map[string]string{"project_id": "NOPE"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetIssuesNoProjectsConfigured(t *testing.T) {
	cfg := config.Config{StorePath: t.TempDir(), CacheTTLHours: 24}
	s := NewServer(cfg, zap.NewNop())

	rec := doJSON(t, s, http.MethodGet, "/api/issues", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var response struct {
		Status string `json:"status"`
		Stats  map[string]int
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "success", response.Status)
	assert.Equal(t, 0, response.Stats["fetched"])
	assert.Equal(t, 0, response.Stats["returned"])
}
