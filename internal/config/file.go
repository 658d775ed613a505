package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors Config for the YAML layer. Pointer fields distinguish
// "absent" from zero values so the file only overrides what it names.
type fileConfig struct {
	Server struct {
		Port     *int    `yaml:"port"`
		Bind     *string `yaml:"bind"`
		Debug    *bool   `yaml:"debug"`
		LogLevel *string `yaml:"log_level"`
	} `yaml:"server"`
	Database struct {
		URL *string `yaml:"url"`
	} `yaml:"database"`
	RabbitMQ struct {
		URL *string `yaml:"url"`
	} `yaml:"rabbitmq"`
}

// applyFile layers a YAML config file onto the receiver.
func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if fc.Server.Port != nil {
		c.Port = *fc.Server.Port
	}
	if fc.Server.Bind != nil {
		c.Bind = *fc.Server.Bind
	}
	if fc.Server.Debug != nil {
		c.Debug = *fc.Server.Debug
	}
	if fc.Server.LogLevel != nil {
		c.LogLevel = *fc.Server.LogLevel
	}
	if fc.Database.URL != nil {
		c.DatabaseURL = *fc.Database.URL
	}
	if fc.RabbitMQ.URL != nil {
		c.RabbitMQURL = *fc.RabbitMQ.URL
	}
	return nil
}
