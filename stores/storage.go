package stores

import (
	"emojiart-server/config"
	"emojiart-server/core"
	"emojiart-server/stores/aws"
	"emojiart-server/stores/filesystem"
	"emojiart-server/stores/memory"
	"emojiart-server/stores/sqlite"

	"github.com/sirupsen/logrus"
)

// GetStore picks the drawing store backend named by cfg.StorageType.
func GetStore(cfg config.Config) core.DrawingStore {
	var store core.DrawingStore

	storageField := logrus.Fields{
		"storageType": cfg.StorageType,
	}

	switch cfg.StorageType {
	case "filesystem":
		storageField["basePath"] = cfg.LocalStoragePath
		store = filesystem.NewDrawingStore(cfg.LocalStoragePath)
	case "sqlite":
		storageField["dataSourceName"] = cfg.DataSourceName
		store = sqlite.NewDrawingStore(cfg.DataSourceName)
	case "s3":
		if cfg.S3BucketName == "" {
			logrus.Fatal("S3_BUCKET_NAME environment variable must be set for s3 storage type")
		}
		storageField["bucketName"] = cfg.S3BucketName
		store = aws.NewDrawingStore(cfg.S3BucketName)
	default:
		store = memory.NewDrawingStore()
		storageField["storageType"] = "in-memory"
	}
	logrus.WithFields(storageField).Info("Use storage")
	return store
}
