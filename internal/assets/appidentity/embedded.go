package appidentityassets

import _ "embed"

// YAML is the application identity compiled into the binary so it runs
// without a `.fulmen/app.yaml` next to it.
//
//go:embed app.yaml
var YAML []byte
