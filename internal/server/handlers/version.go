package handlers

import (
	"net/http"
	"runtime"
	"sync"

	"github.com/fulmenhq/gofulmen/appidentity"
	"github.com/fulmenhq/gofulmen/crucible"

	"github.com/memeforge/memeforge/internal/appid"
)

// BuildInfo is stamped into the binary by main.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildDate string
}

var (
	buildMu   sync.RWMutex
	buildInfo = BuildInfo{Version: "dev", Commit: "unknown", BuildDate: "unknown"}
	identity  *appidentity.Identity
)

// SetBuildInfo records the build metadata reported by /version.
func SetBuildInfo(info BuildInfo) {
	buildMu.Lock()
	defer buildMu.Unlock()
	buildInfo = info
}

// SetAppIdentity sets the identity reported by /version.
func SetAppIdentity(id *appidentity.Identity) {
	buildMu.Lock()
	defer buildMu.Unlock()
	identity = id
}

// VersionResponse represents the version information response
type VersionResponse struct {
	App          AppInfo     `json:"app"`
	Dependencies DepInfo     `json:"dependencies"`
	Runtime      RuntimeInfo `json:"runtime"`
	Templates    int         `json:"templates"`
}

// AppInfo contains application version details
type AppInfo struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Commit    string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version,omitempty"`
}

// DepInfo contains dependency version information
type DepInfo struct {
	Gofulmen string `json:"gofulmen"`
	Crucible string `json:"crucible"`
}

// RuntimeInfo contains runtime environment information
type RuntimeInfo struct {
	Platform      string `json:"platform"`
	NumCPU        int    `json:"num_cpu"`
	NumGoroutines int    `json:"num_goroutines"`
}

// VersionHandler reports build, dependency and runtime details along with
// the number of registered templates.
func VersionHandler(templates int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buildMu.RLock()
		info, id := buildInfo, identity
		buildMu.RUnlock()

		name := appid.DefaultName
		if id != nil && id.BinaryName != "" {
			name = id.BinaryName
		}

		deps := crucible.GetVersion()
		writeJSON(w, http.StatusOK, VersionResponse{
			App: AppInfo{
				Name:      name,
				Version:   info.Version,
				Commit:    info.Commit,
				BuildDate: info.BuildDate,
				GoVersion: runtime.Version(),
			},
			Dependencies: DepInfo{
				Gofulmen: deps.Gofulmen,
				Crucible: deps.Crucible,
			},
			Runtime: RuntimeInfo{
				Platform:      runtime.GOOS + "/" + runtime.GOARCH,
				NumCPU:        runtime.NumCPU(),
				NumGoroutines: runtime.NumGoroutine(),
			},
			Templates: templates,
		})
	}
}
