package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	assert.NoError(t, os.WriteFile(path, []byte(content), 0644), "expected the config to be written")
	return path
}

func TestLoadServerConfig(t *testing.T) {
	t.Run("fully specified", func(t *testing.T) {
		path := writeConfigFile(t, `
server:
  name: TestServer
  description: A test server
  welcome_message: hello there
  addr: 0.0.0.0:9000
  allowed_origins:
    - http://localhost:3000
admin:
  name: root
  token: tok-123
rooms:
  max_rooms: 4
  default_capacity: 2
  delete_when_empty: false
`)

		cfg, err := LoadServerConfig(path)
		assert.NoError(t, err, "expected no error")
		assert.Equal(t, "TestServer", cfg.Server.Name, "expected the server name to match")
		assert.Equal(t, "hello there", cfg.Server.WelcomeMessage, "expected the welcome message to match")
		assert.Equal(t, "0.0.0.0:9000", cfg.Server.Addr, "expected the address to match")
		assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.AllowedOrigins,
			"expected the allowed origins to match")
		assert.Equal(t, "root", cfg.Admin.Name, "expected the admin name to match")
		assert.Equal(t, 4, cfg.Rooms.MaxRooms, "expected the room cap to match")
		assert.Equal(t, 2, cfg.Rooms.DefaultCapacity, "expected the default capacity to match")
		assert.False(t, cfg.DeleteEmptyRooms(), "expected the empty-room policy to be disabled")
	})

	t.Run("defaults", func(t *testing.T) {
		path := writeConfigFile(t, "{}\n")

		cfg, err := LoadServerConfig(path)
		assert.NoError(t, err, "expected no error")
		assert.Equal(t, "MyHostedServer", cfg.Server.Name, "expected the default server name")
		assert.Equal(t, "Self hosted server!", cfg.Server.Description, "expected the default description")
		assert.Equal(t, "localhost:8080", cfg.Server.Addr, "expected the default address")
		assert.Equal(t, 16, cfg.Rooms.MaxRooms, "expected the default room cap")
		assert.Equal(t, 5, cfg.Rooms.DefaultCapacity, "expected the default capacity")
		assert.True(t, cfg.DeleteEmptyRooms(), "expected empty rooms to be deleted by default")
	})

	t.Run("negative room cap", func(t *testing.T) {
		path := writeConfigFile(t, "rooms:\n  max_rooms: -1\n")

		_, err := LoadServerConfig(path)
		assert.ErrorContains(t, err, "max_rooms", "expected the room cap to be validated")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadServerConfig(filepath.Join(t.TempDir(), "missing.yml"))
		assert.Error(t, err, "expected a missing file to fail")
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := writeConfigFile(t, "server: [not a mapping\n")

		_, err := LoadServerConfig(path)
		assert.ErrorContains(t, err, "parse server config", "expected a parse failure")
	})
}

func TestLoadClientConfig(t *testing.T) {
	t.Run("fully specified", func(t *testing.T) {
		path := writeConfigFile(t, `
client:
  user-name: alice
  user-token: tok-123
  default-server:
    server-ip: 10.0.0.5
    auto-connect: true
  room_aliases:
    l: lobby
`)

		cfg, err := LoadClientConfig(path)
		assert.NoError(t, err, "expected no error")
		assert.Equal(t, "alice", cfg.UserName, "expected the user name to match")
		assert.Equal(t, "tok-123", cfg.UserToken, "expected the token to match")
		assert.Equal(t, "10.0.0.5", cfg.DefaultServer.ServerIP, "expected the server ip to match")
		assert.True(t, cfg.DefaultServer.AutoConnect, "expected auto-connect to be enabled")
	})

	t.Run("defaults the user name", func(t *testing.T) {
		path := writeConfigFile(t, "client:\n  user-token: tok-123\n")

		cfg, err := LoadClientConfig(path)
		assert.NoError(t, err, "expected no error")
		assert.Equal(t, "unknown", cfg.UserName, "expected the placeholder user name")
	})

	t.Run("missing token", func(t *testing.T) {
		path := writeConfigFile(t, "client:\n  user-name: alice\n")

		_, err := LoadClientConfig(path)
		assert.ErrorContains(t, err, "user-token", "expected the token to be required")
	})

	t.Run("missing client key", func(t *testing.T) {
		path := writeConfigFile(t, "user-token: tok-123\n")

		_, err := LoadClientConfig(path)
		assert.ErrorContains(t, err, "client key", "expected the top-level key to be required")
	})
}

func TestResolveRoomAlias(t *testing.T) {
	cfg := &ClientConfig{RoomAliases: map[string]string{"l": "lobby"}}

	assert.Equal(t, "lobby", cfg.ResolveRoomAlias("l"), "expected the alias to resolve")
	assert.Equal(t, "den", cfg.ResolveRoomAlias("den"), "expected unknown names to pass through")
}
