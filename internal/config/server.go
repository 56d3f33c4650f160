package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	defaultServerName   = "MyHostedServer"
	defaultServerDesc   = "Self hosted server!"
	defaultServerAddr   = "localhost:8080"
	defaultMaxRooms     = 16
	defaultRoomCapacity = 5
)

// AdminConfig holds the server admin credentials. The role hierarchy
// behind it is not exercised by the current command set; the values
// are parsed and stored only.
type AdminConfig struct {
	Name         string `yaml:"name"`
	Token        string `yaml:"token"`
	PasswordHash string `yaml:"password_hash"`
}

type GeneralServerConfig struct {
	Name           string   `yaml:"name"`
	Description    string   `yaml:"description"`
	WelcomeMessage string   `yaml:"welcome_message"`
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type RoomPolicyConfig struct {
	MaxRooms        int   `yaml:"max_rooms"`
	DefaultCapacity int   `yaml:"default_capacity"`
	DeleteWhenEmpty *bool `yaml:"delete_when_empty"`
}

type ServerConfig struct {
	Server GeneralServerConfig `yaml:"server"`
	Admin  AdminConfig         `yaml:"admin"`
	Rooms  RoomPolicyConfig    `yaml:"rooms"`
}

// DeleteEmptyRooms reports the empty-room policy; rooms are deleted
// when their last occupant leaves unless configured otherwise.
func (c *ServerConfig) DeleteEmptyRooms() bool {
	if c.Rooms.DeleteWhenEmpty == nil {
		return true
	}

	return *c.Rooms.DeleteWhenEmpty
}

func (c *ServerConfig) applyDefaults() {
	if c.Server.Name == "" {
		c.Server.Name = defaultServerName
	}
	if c.Server.Description == "" {
		c.Server.Description = defaultServerDesc
	}
	if c.Server.Addr == "" {
		c.Server.Addr = defaultServerAddr
	}
	if c.Rooms.MaxRooms == 0 {
		c.Rooms.MaxRooms = defaultMaxRooms
	}
	if c.Rooms.DefaultCapacity == 0 {
		c.Rooms.DefaultCapacity = defaultRoomCapacity
	}
}

func (c *ServerConfig) validate() error {
	if c.Rooms.MaxRooms < 0 {
		return fmt.Errorf("max_rooms cannot be negative")
	}
	if c.Rooms.DefaultCapacity < 0 {
		return fmt.Errorf("default_capacity cannot be negative")
	}

	return nil
}

// LoadServerConfig reads and validates the server YAML config. A
// missing or unparsable file is a startup failure.
func LoadServerConfig(path string) (*ServerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read server config: %w", err)
	}

	var cfg ServerConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse server config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
