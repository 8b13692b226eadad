// Package database opens the optional MySQL connection used by the upload audit trail.
//
// It wraps GORM with the MySQL driver, applies pool limits and verifies the connection
// with a bounded ping. Callers decide whether a failed connection is fatal; the server
// and CLI simply run without auditing.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    logg.Warn("Audit database unavailable", zap.Error(err))
//	}
package database
