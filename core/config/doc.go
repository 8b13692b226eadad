// Package config provides configuration management for the storage service.
//
// It uses Viper to read environment variables (optionally seeded from a .env file),
// with defaults declared on the struct tags of each section.
//
// # Configuration Structure
//
//   - Server: HTTP port and API key
//   - Storage: provider, endpoint, credentials, default bucket, integrity requirements
//   - Log: level and format
//   - Database: optional MySQL connection for the upload audit trail
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Storage.Bucket)
package config
