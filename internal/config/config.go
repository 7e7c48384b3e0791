package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	log "github.com/sirupsen/logrus"

	"go-hammy-upload/internal/helpers"
	"go-hammy-upload/internal/models"
)

const (
	appDirName     = "hammy"
	configFileName = "hammy_config.toml"
)

// ErrMissingApiKey is returned when the loaded configuration has no API
// key. The run cannot proceed: every upload would fail identically.
var ErrMissingApiKey = errors.New("no API key configured")

// DefaultPath returns the platform-standard per-user config file path,
// e.g. ~/.config/hammy/hammy_config.toml on Linux.
func DefaultPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating user config directory: %w", err)
	}
	return filepath.Join(base, appDirName, configFileName), nil
}

// Load reads the configuration from configFilePath and applies defaults
// for unset optional fields.
func Load(configFilePath string) (models.Config, error) {
	var cfg models.Config
	if _, err := toml.DecodeFile(configFilePath, &cfg); err != nil {
		return models.Config{}, fmt.Errorf("error loading config file %s: %w", configFilePath, err)
	}
	applyDefaults(&cfg, configFilePath)
	return cfg, nil
}

// Save writes the configuration to configFilePath, creating parent
// directories as needed.
func Save(cfg models.Config, configFilePath string) error {
	if !helpers.CheckAndMakeDir(filepath.Dir(configFilePath)) {
		return fmt.Errorf("creating config directory for %s", configFilePath)
	}
	f, err := os.Create(configFilePath)
	if err != nil {
		return fmt.Errorf("error creating config file %s: %w", configFilePath, err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("error writing config file %s: %w", configFilePath, err)
	}
	return nil
}

// LoadOrCreate loads the configuration, writing a placeholder file on
// first run. The returned bool is true when a new file was created; the
// caller is expected to abort with an instructive message in that case,
// since the placeholder carries an empty API key.
func LoadOrCreate(configFilePath string) (models.Config, bool, error) {
	if _, err := os.Stat(configFilePath); err == nil {
		cfg, loadErr := Load(configFilePath)
		if loadErr != nil {
			return models.Config{}, false, loadErr
		}
		log.Debugf("Configuration loaded from %s", configFilePath)
		return cfg, false, nil
	} else if !os.IsNotExist(err) {
		return models.Config{}, false, fmt.Errorf("error checking config file %s: %w", configFilePath, err)
	}

	var cfg models.Config
	applyDefaults(&cfg, configFilePath)
	if err := Save(cfg, configFilePath); err != nil {
		return models.Config{}, false, err
	}
	log.Infof("New default config saved in: %s", configFilePath)
	return cfg, true, nil
}

// Validate checks the fields every run requires.
func Validate(cfg models.Config, configFilePath string) error {
	if cfg.ApiKey == "" {
		return fmt.Errorf("%w: set ApiKey in %s", ErrMissingApiKey, configFilePath)
	}
	return nil
}

func applyDefaults(cfg *models.Config, configFilePath string) {
	if cfg.TxtPath == "" {
		cfg.TxtPath = filepath.Join(filepath.Dir(configFilePath), "txt")
	}
	if cfg.ApiClientTimeoutSec <= 0 {
		cfg.ApiClientTimeoutSec = 60
	}
}
