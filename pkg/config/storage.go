package config

// StorageConfig holds object storage settings for cover images
type StorageConfig struct {
	Endpoint  string `env:"STORAGE_ENDPOINT" env-default:"localhost:9000"`
	AccessKey string `env:"STORAGE_ACCESS_KEY" env-default:"minioadmin"`
	SecretKey string `env:"STORAGE_SECRET_KEY" env-default:"minioadmin"`
	Bucket    string `env:"STORAGE_BUCKET" env-default:"platform-media"`
	UseSSL    bool   `env:"STORAGE_USE_SSL" env-default:"false"`
}
