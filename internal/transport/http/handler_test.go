package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rolesmith/rolesmith/internal/audit"
	"github.com/rolesmith/rolesmith/internal/permission"
	"github.com/rolesmith/rolesmith/internal/role"
	"github.com/rolesmith/rolesmith/internal/store"
)

func newTestRouter(t *testing.T) (*Handler, http.Handler) {
	t.Helper()
	h := NewHandler(role.NewManager(), store.NewFileStore(t.TempDir()), audit.NewSlogLogger(), nil)
	return h, NewRouter(h, NewRateLimiter(100, 200))
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthCheck(t *testing.T) {
	_, router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/health", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestCreateRole(t *testing.T) {
	_, router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/v1/role", map[string]string{
		"name":        "Storage Reader",
		"description": "Read-only storage access",
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	var def role.Definition
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &def))
	assert.Equal(t, "Storage Reader", def.Name)
	assert.Equal(t, role.TypeCustomRole, def.Type)
	assert.True(t, def.IsCustom)
	require.Len(t, def.Permissions, 1)
	assert.True(t, def.Permissions[0].IsEmpty())
}

func TestCreateRole_MissingName(t *testing.T) {
	_, router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/v1/role", map[string]string{})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetRole_NoneLoaded(t *testing.T) {
	_, router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/v1/role", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMergeRole(t *testing.T) {
	_, router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/v1/role", map[string]string{"name": "Combined"})
	require.Equal(t, http.StatusCreated, rec.Code)

	source := role.Definition{
		Name: "Reader",
		Permissions: []permission.Block{{
			Actions: []string{
				"Microsoft.Storage/storageAccounts/read",
				"Microsoft.Compute/virtualMachines/read",
			},
			DataActions: []string{
				"Microsoft.Storage/storageAccounts/blobServices/containers/blobs/read",
			},
		}},
	}

	rec = doJSON(t, router, http.MethodPost, "/v1/role/merge", mergeRequest{
		Sources:      []role.Definition{source},
		StringFilter: "storage",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var def role.Definition
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &def))
	require.Len(t, def.Permissions, 1)
	assert.Equal(t, []string{"Microsoft.Storage/storageAccounts/read"}, def.Permissions[0].Actions)
	assert.Equal(t, []string{"Microsoft.Storage/storageAccounts/blobServices/containers/blobs/read"}, def.Permissions[0].DataActions)
}

func TestMergeRole_NoCurrentRole(t *testing.T) {
	_, router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/v1/role/merge", mergeRequest{
		Sources: []role.Definition{{Name: "Reader"}},
	})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMergeRole_InvalidTypeFilter(t *testing.T) {
	_, router := newTestRouter(t)

	doJSON(t, router, http.MethodPost, "/v1/role", map[string]string{"name": "Combined"})

	rec := doJSON(t, router, http.MethodPost, "/v1/role/merge", mergeRequest{
		Sources:    []role.Definition{{Name: "Reader"}},
		TypeFilter: "bogus",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRemoveActions_RequiresFilter(t *testing.T) {
	_, router := newTestRouter(t)

	doJSON(t, router, http.MethodPost, "/v1/role", map[string]string{"name": "Combined"})

	rec := doJSON(t, router, http.MethodPost, "/v1/role/remove", removeRequest{})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRemoveActions(t *testing.T) {
	_, router := newTestRouter(t)

	doJSON(t, router, http.MethodPost, "/v1/role", map[string]string{"name": "Combined"})
	doJSON(t, router, http.MethodPost, "/v1/role/merge", mergeRequest{
		Sources: []role.Definition{{
			Name: "Mixed",
			Permissions: []permission.Block{{
				Actions: []string{
					"Microsoft.Storage/storageAccounts/read",
					"Microsoft.Compute/virtualMachines/read",
				},
			}},
		}},
	})

	rec := doJSON(t, router, http.MethodPost, "/v1/role/remove", removeRequest{
		StringFilter: "compute",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var def role.Definition
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &def))
	require.Len(t, def.Permissions, 1)
	assert.Equal(t, []string{"Microsoft.Storage/storageAccounts/read"}, def.Permissions[0].Actions)
}

func TestUpdateRole(t *testing.T) {
	_, router := newTestRouter(t)

	doJSON(t, router, http.MethodPost, "/v1/role", map[string]string{"name": "Draft"})

	name := "Final Name"
	rec := doJSON(t, router, http.MethodPatch, "/v1/role", updateRoleRequest{
		Name:             &name,
		AssignableScopes: []string{"/subscriptions/00000000-0000-0000-0000-000000000000"},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var def role.Definition
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &def))
	assert.Equal(t, "Final Name", def.Name)
	assert.Equal(t, []string{"/subscriptions/00000000-0000-0000-0000-000000000000"}, def.AssignableScopes)
}

func TestSaveAndLoadRole(t *testing.T) {
	_, router := newTestRouter(t)

	doJSON(t, router, http.MethodPost, "/v1/role", map[string]string{"name": "Keep Me"})

	rec := doJSON(t, router, http.MethodPost, "/v1/role/save", saveRoleRequest{})
	require.Equal(t, http.StatusOK, rec.Code)

	// Saving again without overwrite conflicts.
	rec = doJSON(t, router, http.MethodPost, "/v1/role/save", saveRoleRequest{})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/v1/role/save", saveRoleRequest{Overwrite: true})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/v1/roles", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listing map[string][]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	assert.Equal(t, []string{"keep-me"}, listing["roles"])

	rec = doJSON(t, router, http.MethodPost, "/v1/role/load", loadRoleRequest{Name: "Keep Me"})
	require.Equal(t, http.StatusOK, rec.Code)
	var def role.Definition
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &def))
	assert.Equal(t, "Keep Me", def.Name)
}

func TestLoadRole_NotFound(t *testing.T) {
	_, router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/v1/role/load", loadRoleRequest{Name: "missing"})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
