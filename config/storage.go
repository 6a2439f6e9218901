package config

// StorageConfig contains artifact storage (S3 or S3-compatible) configuration.
type StorageConfig struct {
	Bucket string `env:"BUCKET,required"`
	Region string `env:"REGION" envDefault:"eu-west-1"`

	// Endpoint overrides the S3 endpoint for S3-compatible stores (MinIO).
	Endpoint string `env:"ENDPOINT" envDefault:""`

	// Static credentials; when empty the default AWS chain is used.
	AccessKeyID     string `env:"ACCESS_KEY_ID"     envDefault:""`
	SecretAccessKey string `env:"SECRET_ACCESS_KEY" envDefault:""`

	// UsePathStyle is required by most S3-compatible stores.
	UsePathStyle bool `env:"USE_PATH_STYLE" envDefault:"false"`
}
