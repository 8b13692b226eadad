// Package server holds the HTTP server configuration.
//
// The start command builds the Fiber app from this section: listen port, the API key
// checked by the auth middleware, and the request body limit used for uploads.
package server
