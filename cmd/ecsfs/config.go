package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

const (
	envVarPrefix = "ECSFS"
	appName      = "ecsfs"

	defaultDisk     = "disk.img"
	defaultLogLevel = "warn"
	defaultBlocks   = 8192
)

type Config struct {
	Disk     string `envconfig:"DISK"      yaml:"disk"`
	LogLevel string `envconfig:"LOG_LEVEL" yaml:"logLevel"`
	Blocks   int    `envconfig:"BLOCKS"    yaml:"blocks"`
	S3Bucket string `envconfig:"S3_BUCKET" yaml:"s3Bucket"`
	S3Prefix string `envconfig:"S3_PREFIX" yaml:"s3Prefix"`
	S3Region string `envconfig:"S3_REGION" yaml:"s3Region"`
}

// LoadConfig reads the optional YAML config file and then overlays the
// environment. Unset fields take their defaults.
func LoadConfig() (*Config, error) {
	configFile := os.Getenv(envVarPrefix + "_CONFIG_FILE")
	if configFile == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			configFile = filepath.Join(home, ".config", appName+".yaml")
		}
	}

	var c Config
	if configFile != "" {
		data, err := os.ReadFile(configFile)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		} else if err := yaml.UnmarshalStrict(data, &c); err != nil {
			return nil, fmt.Errorf(
				"unmarshaling config file `%s`: %w",
				configFile,
				err,
			)
		}
	}

	if err := envconfig.Process(envVarPrefix, &c); err != nil {
		return nil, fmt.Errorf("parsing environment variables: %w", err)
	}

	c.defaults()
	return &c, nil
}

func (c *Config) defaults() {
	if c.Disk == "" {
		c.Disk = defaultDisk
	}
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	if c.Blocks == 0 {
		c.Blocks = defaultBlocks
	}
}

func (c *Config) Validate() error {
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf(
			"invalid configuration: logLevel / %s_LOG_LEVEL: %w",
			envVarPrefix,
			err,
		)
	}
	return nil
}

// ValidateS3 checks the settings the remote image commands need.
func (c *Config) ValidateS3() error {
	if c.S3Bucket == "" {
		return fmt.Errorf(
			"missing required configuration: s3Bucket / %s_S3_BUCKET",
			envVarPrefix,
		)
	}
	return nil
}
