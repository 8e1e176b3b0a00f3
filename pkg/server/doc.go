// Package server exposes the legalization pipeline over HTTP.
//
// # Routes
//
//	POST /v1/legalize   legalize a DEF or JSON layout
//	POST /v1/check      report placement violations without moving cells
//	GET  /healthz       liveness and build version
//
// The request body is the layout itself. Options travel as query
// parameters with the same names as the TOML config keys:
//
//	curl --data-binary @adder.def 'localhost:8080/v1/legalize?sites=2&plot=svg'
//
// Responses are JSON. With raw=true, /v1/legalize answers with the
// legalized layout alone, optionally as an attachment named by filename.
//
// # Errors
//
// Failures are reported as
//
//	{"error": {"code": "PARSE_ERROR", "message": "..."}, "request_id": "..."}
//
// with the status given by [errors.HTTPStatus].
//
// # Caching
//
// The server shares one [pipeline.Runner] across requests. Pass a runner
// backed by [cache.RedisCache] to share legalized results between
// instances.
package server
