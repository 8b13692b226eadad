// Package integrity checks that a bucket has the layout the service expects.
//
// # Checks Provided
//
//   - Structure: every configured folder has at least one object under "folder/".
//     Missing folders can be fixed by writing folder markers.
//   - Files: every configured key exists as an exact object key.
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs all checks.
//   - GET /integrity/structure : Runs structure check (supports ?fix=true).
//   - GET /integrity/files : Runs required files check.
package integrity
