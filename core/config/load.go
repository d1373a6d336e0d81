package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"path/filepath"

	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

// Load loads the configuration from the directory.
func Load(path string) (*Configuration, error) {
	return LoadFs(afero.NewOsFs(), path)
}

// LoadFs loads the configuration from a directory of fsys.
func LoadFs(fsys afero.Fs, path string) (*Configuration, error) {
	// If given the path to a config.yaml file, move back up a level.
	if filepath.Base(path) == ConfigurationName {
		path = filepath.Dir(path)
	}

	name := filepath.Join(path, ConfigurationName)
	configContents, err := afero.ReadFile(fsys, name)
	if err != nil {
		return nil, err
	}
	var out Configuration
	if err := yaml.UnmarshalStrict(configContents, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	out.configFs = fsys
	out.dir = path
	return &out, nil
}

// LoadOrDefault loads the configuration from the directory, or returns the
// built-in one if the directory has none. The built-in configuration writes
// no files until it is initialized.
func LoadOrDefault(path string) (*Configuration, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg = Default()
		cfg.HistoryFile = ""
		cfg.EventLog = ""
		return cfg, nil
	}
	return cfg, err
}

// Initialize writes the default configuration to dir unless one exists, then
// loads it.
func Initialize(dir string, logger *log.Logger) (*Configuration, error) {
	return InitializeFs(afero.NewOsFs(), dir, logger)
}

// InitializeFs is Initialize on an arbitrary filesystem.
func InitializeFs(fsys afero.Fs, dir string, logger *log.Logger) (*Configuration, error) {
	if err := fsys.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}

	name := filepath.Join(dir, ConfigurationName)
	switch _, err := fsys.Stat(name); {
	case err == nil:
		logger.Printf("%s already exists, leaving it alone", name)
	case errors.Is(err, fs.ErrNotExist):
		if err := afero.WriteFile(fsys, name, defaultConfigData, 0600); err != nil {
			return nil, err
		}
		logger.Printf("Wrote %s", name)
	default:
		return nil, err
	}

	return LoadFs(fsys, dir)
}
