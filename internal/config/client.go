package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type DefaultServer struct {
	ServerIP    string `yaml:"server-ip"`
	AutoConnect bool   `yaml:"auto-connect"`
}

// ClientConfig is the client-side identity and connection settings,
// nested under a top-level "client" key in the YAML file.
type ClientConfig struct {
	UserName      string            `yaml:"user-name"`
	UserToken     string            `yaml:"user-token"`
	DefaultServer *DefaultServer    `yaml:"default-server"`
	RoomAliases   map[string]string `yaml:"room_aliases"`
}

type clientConfigFile struct {
	Client *ClientConfig `yaml:"client"`
}

// ResolveRoomAlias maps a room alias from the config to its real room
// name; unknown names pass through unchanged.
func (c *ClientConfig) ResolveRoomAlias(name string) string {
	if real, ok := c.RoomAliases[name]; ok {
		return real
	}

	return name
}

func (c *ClientConfig) validate() error {
	if c.UserToken == "" {
		return fmt.Errorf("user-token cannot be empty")
	}

	return nil
}

// LoadClientConfig reads and validates the client YAML config.
func LoadClientConfig(path string) (*ClientConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read client config: %w", err)
	}

	var file clientConfigFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse client config: %w", err)
	}

	if file.Client == nil {
		return nil, fmt.Errorf("client config missing top-level client key")
	}

	cfg := file.Client
	if cfg.UserName == "" {
		cfg.UserName = "unknown"
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
