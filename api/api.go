// Package api embeds the OpenAPI document of the introspection server.
package api

import _ "embed"

// OpenAPI is the introspection API document in YAML.
//
//go:embed openapi.yaml
var OpenAPI []byte
