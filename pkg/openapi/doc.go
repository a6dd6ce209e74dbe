// Package openapi describes the JSON API with an embedded OpenAPI 3 document
// and validates incoming requests against it using kin-openapi.
package openapi
