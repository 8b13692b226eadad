// Package utils holds small conversion helpers shared by the HTTP handlers and commands,
// mostly for turning query-string values into ints and flags.
package utils
