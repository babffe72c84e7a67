package utils

import (
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Config holds the service configuration, loaded from a YAML file. Missing
// keys keep their defaults, so a minimal file only needs the paths.
type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port string `yaml:"port"`
	} `yaml:"server"`
	Dataset struct {
		// Path is the dataset JSON file; backups are written next to it.
		Path string `yaml:"path"`
		// ImageDir holds the radiographs referenced by the dataset.
		ImageDir string `yaml:"image_dir"`
	} `yaml:"dataset"`
	Thumbnail struct {
		Size           int `yaml:"size"`
		MaxSize        int `yaml:"max_size"`
		Quality        int `yaml:"quality"`
		TTLSeconds     int `yaml:"ttl_seconds"`
		CleanupSeconds int `yaml:"cleanup_seconds"`
	} `yaml:"thumbnail"`
	Autosave struct {
		IntervalMS int `yaml:"interval_ms"`
	} `yaml:"autosave"`
}

// DefaultConfig The configuration used when keys are absent
func DefaultConfig() *Config {
	config := &Config{}
	config.Server.Port = "8080"
	config.Dataset.Path = "dataset/dataset.json"
	config.Dataset.ImageDir = "dataset"
	config.Thumbnail.Size = 256
	config.Thumbnail.MaxSize = 1024
	config.Thumbnail.Quality = 75
	config.Thumbnail.TTLSeconds = 300
	config.Thumbnail.CleanupSeconds = 60
	config.Autosave.IntervalMS = 30000
	return config
}

// NewConfig Load the configuration from a YAML file over the defaults
func NewConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	file, err := os.Open(configPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	d := yaml.NewDecoder(file)
	if err := d.Decode(&config); err != nil {
		return nil, fmt.Errorf("parsing %s: %v", configPath, err)
	}

	return config, nil
}

// ValidateConfigPath Make sure the path points at a regular file
func ValidateConfigPath(path string) error {
	s, err := os.Stat(path)
	if err != nil {
		return err
	}
	if s.IsDir() {
		return fmt.Errorf("'%s' is a directory, not a normal file", path)
	}
	return nil
}

// ParseFlags Parse the command line and validate the config path
func ParseFlags() (string, bool, error) {
	var configPath string
	var debugMode bool

	flag.StringVar(&configPath, "config", "./config.yml", "path to config file")
	flag.BoolVar(&debugMode, "debug", false, "enable debug mode")
	flag.Parse()

	if err := ValidateConfigPath(configPath); err != nil {
		return "", false, err
	}

	return configPath, debugMode, nil
}
