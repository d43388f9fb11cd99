package models

import (
	"os"

	"gopkg.in/yaml.v2"
)

type Config struct {
	ServerAddr  string `yaml:"server_addr"`
	DatabaseURL string `yaml:"database_url"`
	KafkaBroker string `yaml:"kafka_broker"`
	KafkaTopic  string `yaml:"kafka_topic"`

	Gallery GalleryConfig `yaml:"gallery"`
}

// GalleryConfig holds everything the engine needs to lay files out on disk
// and derive public URLs from them.
type GalleryConfig struct {
	StoragePath string `yaml:"storage_path"`
	BaseURL     string `yaml:"base_url"`
	Host        string `yaml:"host"`
	Extension   string `yaml:"extension"`

	// Query parameter name for the mtime-based cache-busting suffix.
	// Empty disables the suffix entirely.
	TimeHashParam string `yaml:"time_hash_param"`

	PreviewWidth      int `yaml:"preview_width"`
	PreviewHeight     int `yaml:"preview_height"`
	OriginalMaxWidth  int `yaml:"original_max_width"`
	OriginalMaxHeight int `yaml:"original_max_height"`
	Quality           int `yaml:"quality"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Gallery.ApplyDefaults()
	return &cfg, nil
}

func (g *GalleryConfig) ApplyDefaults() {
	if g.Extension == "" {
		g.Extension = "jpg"
	}
	if g.PreviewWidth == 0 {
		g.PreviewWidth = 200
	}
	if g.PreviewHeight == 0 {
		g.PreviewHeight = 200
	}
	if g.OriginalMaxWidth == 0 {
		g.OriginalMaxWidth = 1920
	}
	if g.OriginalMaxHeight == 0 {
		g.OriginalMaxHeight = 1080
	}
	if g.Quality == 0 {
		g.Quality = 100
	}
}
