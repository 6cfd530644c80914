package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fulmenhq/gofulmen/appidentity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionHandlerIncludesIdentityMetadata(t *testing.T) {
	SetBuildInfo(BuildInfo{Version: "1.2.3", Commit: "abcd123", BuildDate: "2025-11-07T12:00:00Z"})
	SetAppIdentity(&appidentity.Identity{BinaryName: "example-service"})
	t.Cleanup(func() {
		SetBuildInfo(BuildInfo{Version: "dev", Commit: "unknown", BuildDate: "unknown"})
		SetAppIdentity(nil)
	})

	rec := httptest.NewRecorder()
	VersionHandler(5)(rec, httptest.NewRequest(http.MethodGet, "/version", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp VersionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "example-service", resp.App.Name)
	assert.Equal(t, "1.2.3", resp.App.Version)
	assert.Equal(t, "abcd123", resp.App.Commit)
	assert.Equal(t, 5, resp.Templates)
	assert.NotEmpty(t, resp.Dependencies.Gofulmen)
	assert.NotEmpty(t, resp.Dependencies.Crucible)
}

func TestVersionHandlerFallsBackToDefaultName(t *testing.T) {
	SetAppIdentity(nil)

	rec := httptest.NewRecorder()
	VersionHandler(0)(rec, httptest.NewRequest(http.MethodGet, "/version", nil))

	var resp VersionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "memeforge", resp.App.Name)
}
