package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/draftkit/draftroom/go/internal/models"
)

type roomDefaultsFile struct {
	RoomDefaults models.RoomSettings `yaml:"room_defaults"`
}

// loadRoomDefaults reads the YAML room-settings file at path. An empty path
// or a missing file yields the built-in defaults.
func loadRoomDefaults(path string) (models.RoomSettings, error) {
	if path == "" {
		return models.DefaultRoomSettings(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return models.DefaultRoomSettings(), nil
		}
		return models.RoomSettings{}, fmt.Errorf("read room defaults: %w", err)
	}

	cfg := roomDefaultsFile{RoomDefaults: models.DefaultRoomSettings()}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return models.RoomSettings{}, fmt.Errorf("parse room defaults: %w", err)
	}
	if err := cfg.RoomDefaults.Validate(); err != nil {
		return models.RoomSettings{}, fmt.Errorf("room defaults %s: %w", path, err)
	}

	return cfg.RoomDefaults, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
