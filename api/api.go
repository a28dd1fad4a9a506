// Package api holds the OpenAPI description of the HTTP interface. Requests are
// validated against it at runtime.
package api

import _ "embed"

//go:embed openapi.yml
var OpenAPISpec []byte
