// Package middleware groups the HTTP middleware for the Fiber application.
//
//   - auth: API key validation (X-API-Key) protecting every route except skipped paths.
//   - rayid: request id (X-Ray-ID) generated or propagated for every request and stored
//     in c.Locals("ray_id") for logger.WithRayID.
package middleware
