package storage

// Provider names accepted in Config.Provider.
const (
	ProviderMinio  = "minio"
	ProviderS3     = "s3"
	ProviderMemory = "memory"
)

// Config holds configuration for the storage provider.
type Config struct {
	// Provider selects the backend implementation (minio, s3, memory).
	Provider string `mapstructure:"provider" default:"minio"`
	// Endpoint is the URL of the storage service. Empty means the provider default (AWS only).
	Endpoint string `mapstructure:"endpoint" default:"localhost:9000"`
	// AccessKey is the access key ID for authentication.
	AccessKey string `mapstructure:"access_key" default:"minioadmin"`
	// SecretKey is the secret access key for authentication.
	SecretKey string `mapstructure:"secret_key" default:"minioadmin"`
	// UseSSL indicates whether to use SSL/TLS for connections.
	UseSSL bool `mapstructure:"use_ssl" default:"false"`
	// Bucket is the default bucket used when a caller does not name one.
	Bucket string `mapstructure:"bucket" default:"artifacts"`
	// Region is the location of the bucket (e.g., us-east-1).
	Region string `mapstructure:"region" default:"us-east-1"`
	// TimeoutSeconds is the connection timeout in seconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// RequiredFolders lists folder markers the integrity check expects (comma separated).
	RequiredFolders []string `mapstructure:"required_folders" default:"models,data"`
	// RequiredFiles lists object keys the integrity check expects (comma separated).
	RequiredFiles []string `mapstructure:"required_files" default:""`
}
