package main

import (
	"github.com/code19m/errx"
	"github.com/rise-and-shine/recipebook/internal/service"
	"github.com/rise-and-shine/recipebook/internal/upload"
	"github.com/rise-and-shine/recipebook/pkg/filestore"
	"github.com/rise-and-shine/recipebook/pkg/filestore/localwr"
	"github.com/rise-and-shine/recipebook/pkg/filestore/miniowr"
	"github.com/rise-and-shine/recipebook/pkg/http/server"
	"github.com/rise-and-shine/recipebook/pkg/logger"
	"github.com/rise-and-shine/recipebook/pkg/pg"
)

// Config is the full service configuration, loaded from config/<env>.yaml.
type Config struct {
	ServiceName    string `yaml:"service_name"    validate:"required"`
	ServiceVersion string `yaml:"service_version" default:"0.1.0"`

	Logger logger.Config `yaml:"logger"`
	Server server.Config `yaml:"server"`
	PG     pg.Config     `yaml:"pg"`

	FileStore FileStoreConfig     `yaml:"filestore"`
	Upload    upload.Config       `yaml:"upload"`
	Image     service.ImageConfig `yaml:"image"`
	Auth      service.AuthConfig  `yaml:"auth"`
}

// FileStoreConfig selects and configures the file storage backend. The
// backend sections are pointers so the unused one can stay absent from the
// YAML file without tripping validation.
type FileStoreConfig struct {
	Backend string `yaml:"backend" default:"local" validate:"oneof=local minio"`

	Local *localwr.Config `yaml:"local"`
	Minio *miniowr.Config `yaml:"minio"`
}

// newFileStore builds the configured storage backend.
func newFileStore(cfg FileStoreConfig) (filestore.FileStore, error) {
	switch cfg.Backend {
	case "minio":
		if cfg.Minio == nil {
			return nil, errx.New("minio filestore selected but the minio section is missing")
		}
		return miniowr.New(*cfg.Minio)
	default:
		if cfg.Local == nil {
			return nil, errx.New("local filestore selected but the local section is missing")
		}
		return localwr.New(*cfg.Local)
	}
}
