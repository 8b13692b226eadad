// Package objects is the storage facade: the single entry point handlers and commands
// use to look up, read and upload objects.
//
// # Operations
//
//   - KeyPathAvailable: true when any key starts with a prefix.
//   - Bucket: lazy bucket handle (no request is made).
//   - FileObject: key lookup returning Single or Multiple; callers type-switch.
//   - ReadObject: body as Raw, Text or Stream.
//   - LoadModel / SaveModel: model blobs, gob by default, CBOR for ".cbor" keys.
//   - CreateFolder / CreateFolders: idempotent zero-byte "folder/" markers.
//   - UploadFile / UploadTableAsCSV: local file or table upload, local copy removed on request.
//   - ObjectToTable / ReadCSV: CSV objects parsed into a table.Table ("na" is missing).
//
// # Errors
//
// Every failure is an *Error with a Kind (ErrConfig, ErrArgument, ErrNotFound,
// ErrTransport, ErrLocal, ErrParse, ErrSerialization). The underlying cause stays in
// the chain:
//
//	if errors.Is(err, objects.ErrNotFound) { ... }
//
// # HTTP Endpoints
//
//   - GET /objects?bucket=&key= : lookup (single or multiple).
//   - GET /objects/exists?bucket=&prefix= : prefix existence.
//   - GET /objects/content?bucket=&key= : raw body.
//   - GET /objects/csv?bucket=&key= : parsed CSV as JSON.
//   - GET /objects/uploads?bucket=&limit= : audited uploads (needs a database).
//   - POST /objects/folders : create a folder marker.
//   - POST /objects/upload?bucket=&key= : multipart upload of field "file".
package objects
