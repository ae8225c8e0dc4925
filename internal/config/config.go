package config

import (
	_ "embed"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

//go:embed imaging.yaml
var imagingYAML []byte

type Config struct {
	Upload   UploadConfig
	Imaging  ImagingConfig
	Database DatabaseConfig
	Web      WebConfig
}

type UploadConfig struct {
	Dir             string // root of the per-project photo directories
	MaxRequestBytes int64  `yaml:"max_request_bytes"`
}

// ImagingConfig carries the normalization and thumbnail parameters.
// Defaults ship in the embedded imaging.yaml.
type ImagingConfig struct {
	Normalize struct {
		MaxWidth    int `yaml:"max_width"`
		MaxHeight   int `yaml:"max_height"`
		JPEGQuality int `yaml:"jpeg_quality"`
	} `yaml:"normalize"`
	Thumbnail struct {
		Box int `yaml:"box"`
	} `yaml:"thumbnail"`
	Upload struct {
		MaxRequestBytes int64 `yaml:"max_request_bytes"`
	} `yaml:"upload"`
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL
	MaxOpenConns int    // default 25
	MaxIdleConns int    // default 5
}

type WebConfig struct {
	Host string
	Port int
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func Load() *Config {
	var imaging ImagingConfig
	if err := yaml.Unmarshal(imagingYAML, &imaging); err != nil {
		// Embedded file, should never happen in practice.
		panic("failed to unmarshal embedded imaging.yaml: " + err.Error())
	}

	return &Config{
		Upload: UploadConfig{
			Dir:             envString("UPLOAD_DIR", "uploads"),
			MaxRequestBytes: imaging.Upload.MaxRequestBytes,
		},
		Imaging: imaging,
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Web: WebConfig{
			Host: envString("WEB_HOST", "0.0.0.0"),
			Port: envInt("WEB_PORT", 8080),
		},
	}
}
