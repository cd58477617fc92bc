package config

import (
	"os"
	"sync"
)

type StorageConfig struct {
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	// Endpoint overrides the S3 endpoint for S3-compatible stores (MinIO, R2).
	Endpoint string
}

var (
	storageConfig *StorageConfig
	storageOnce   sync.Once
)

func LoadStorageConfig() *StorageConfig {
	storageOnce.Do(func() {
		storageConfig = &StorageConfig{
			Region:    os.Getenv("AWS_REGION"),
			AccessKey: os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
			Bucket:    getEnv("RESUME_BUCKET", "pdfs"),
			Endpoint:  os.Getenv("S3_ENDPOINT"),
		}
	})
	return storageConfig
}

func (c *StorageConfig) Enabled() bool {
	return c.Region != "" && c.AccessKey != "" && c.SecretKey != ""
}
