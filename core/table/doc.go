// Package table is the tabular payload used for CSV uploads and downloads.
//
// A Table wraps one Apache Arrow record batch. Reading infers column types from the
// CSV text; the only reserved token is MissingToken ("na"), which round-trips as null.
package table
