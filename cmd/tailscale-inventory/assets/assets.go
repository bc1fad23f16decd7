package assets

import _ "embed"

// OpenApiData is the OpenAPI description of the serve-mode HTTP API.
//
//go:embed openapi.yaml
var OpenApiData []byte
