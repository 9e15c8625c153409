package emu

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"

	"gxvideo/emu/log"
	"gxvideo/video/vertexmgr"
)

type Config struct {
	Video   vertexmgr.Config `toml:"video"`
	General GeneralConfig    `toml:"general"`
}

type GeneralConfig struct {
	// Modules for which debug logs are enabled by default.
	LogModules []string `toml:"log_modules"`

	// Maximum number of frames encoded concurrently, 0 means one per CPU.
	Workers int `toml:"workers"`
}

func DefaultConfig() Config {
	return Config{Video: vertexmgr.DefaultConfig()}
}

var ConfigDir = sync.OnceValue(func() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		log.ModEmu.Fatalf("failed to locate user config directory: %v", err)
	}
	return filepath.Join(dir, "gxvideo")
})

const cfgFilename = "config.toml"

// DefaultConfigPath is the path of the configuration file in the gxvideo
// config directory.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), cfgFilename)
}

// LoadConfig loads the configuration at path. Missing keys keep their
// default value.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfigOrDefault loads the configuration at path, or provides the
// default one if it can't be read.
func LoadConfigOrDefault(path string) Config {
	cfg, err := LoadConfig(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.ModEmu.Warnf("ignoring config file %s: %v", path, err)
		}
		return DefaultConfig()
	}
	return cfg
}

// SaveConfig writes cfg at path, creating its directory if needed.
func SaveConfig(path string, cfg Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}
