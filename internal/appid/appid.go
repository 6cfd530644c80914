// Package appid resolves the memeforge application identity.
//
// An explicit identity file (FULMEN_APP_IDENTITY_PATH or .fulmen/app.yaml)
// wins; otherwise the copy embedded in the binary is used.
package appid

import (
	"context"
	"strings"

	"github.com/fulmenhq/gofulmen/appidentity"

	appidentityassets "github.com/memeforge/memeforge/internal/assets/appidentity"
)

// DefaultName is used when the identity leaves a name blank.
const DefaultName = "memeforge"

func init() {
	_ = appidentity.RegisterEmbeddedIdentityYAML(appidentityassets.YAML)
}

func Get(ctx context.Context) (*appidentity.Identity, error) {
	return appidentity.Get(ctx)
}

// EnvPrefix returns the identity's environment prefix with a trailing
// underscore.
func EnvPrefix(identity *appidentity.Identity) string {
	prefix := strings.ToUpper(DefaultName) + "_"
	if identity != nil && strings.TrimSpace(identity.EnvPrefix) != "" {
		prefix = identity.EnvPrefix
	}
	if !strings.HasSuffix(prefix, "_") {
		prefix += "_"
	}
	return prefix
}

// Names returns the config and binary names, falling back to DefaultName.
func Names(identity *appidentity.Identity) (configName, binaryName string) {
	configName, binaryName = DefaultName, DefaultName
	if identity == nil {
		return configName, binaryName
	}
	if strings.TrimSpace(identity.ConfigName) != "" {
		configName = identity.ConfigName
	}
	if strings.TrimSpace(identity.BinaryName) != "" {
		binaryName = identity.BinaryName
	}
	return configName, binaryName
}
