// Package config stores named target profiles for udd in a YAML file,
// by default $HOME/.udd/config.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	homedir "github.com/mitchellh/go-homedir"
	yaml "gopkg.in/yaml.v3"
)

// Target is one remote endpoint profile.
type Target struct {
	Name string `yaml:"name"`
	Addr string `yaml:"addr"`
	Bind string `yaml:"bind,omitempty"`
	Mode string `yaml:"mode,omitempty"`
}

type Config struct {
	CurrentTarget  string    `yaml:"current-target"`
	TargetOverride string    `yaml:"-"`
	Targets        []*Target `yaml:"targets"`
	// configPath is the file path used for reading and writing this config.
	configPath string `yaml:"-"`
}

func (c *Config) HasTarget(name string) bool {
	for _, target := range c.Targets {
		if target.Name == name {
			return true
		}
	}
	return false
}

func (c *Config) SetCurrentTarget(name string) error {
	var oldTarget string
	if c.ActiveTarget() != nil {
		oldTarget = c.ActiveTarget().Name
	}
	for _, target := range c.Targets {
		if target.Name == name {
			c.CurrentTarget = name

			if err := c.Write(); err != nil {
				// "Revert" the change, either everything is
				// successful or nothing.
				c.CurrentTarget = oldTarget
				return err
			}
			return nil
		}
	}
	return fmt.Errorf("could not find target with name %v", name)
}

// RemoveTarget deletes the named profile, clearing the current-target
// selection when it pointed at it.
func (c *Config) RemoveTarget(name string) error {
	for i, target := range c.Targets {
		if target.Name == name {
			c.Targets = append(c.Targets[:i], c.Targets[i+1:]...)
			if c.CurrentTarget == name {
				c.CurrentTarget = ""
			}
			return c.Write()
		}
	}
	return fmt.Errorf("could not find target with name %v", name)
}

func (c *Config) ActiveTarget() *Target {
	if c == nil {
		return nil
	}

	toSearch := c.TargetOverride
	if c.TargetOverride == "" {
		toSearch = c.CurrentTarget
	}

	if toSearch == "" {
		return nil
	}

	for _, target := range c.Targets {
		if target.Name == toSearch {
			// Make a copy; handing out a pointer leads to
			// modifications being written back into the config.
			t := *target
			return &t
		}
	}
	return nil
}

func (c *Config) Write() error {
	configPath := c.configPath
	if configPath == "" {
		var err error
		configPath, err = getDefaultConfigPath()
		if err != nil {
			return err
		}
	}
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(configDir, "config.*.tmp")
	if err != nil {
		return fmt.Errorf("create temp config file: %w", err)
	}
	tmpPath := tmpFile.Name()

	encoder := yaml.NewEncoder(tmpFile)
	if err := encoder.Encode(c); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("encode config: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp config file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0600); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("chmod temp config file: %w", err)
	}
	if err := os.Rename(tmpPath, configPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp config file: %w", err)
	}
	return nil
}

// ReadConfig loads the config at cfgPath, or at the default location
// when cfgPath is empty. A missing or empty default file yields an
// empty config; an explicitly given path must exist.
func ReadConfig(cfgPath string) (c Config, err error) {
	resolvedPath, err := resolveConfigPath(cfgPath)
	if err != nil {
		return Config{}, err
	}

	file, err := os.OpenFile(resolvedPath, os.O_RDONLY, 0644)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{configPath: resolvedPath}, nil
		}
		return Config{}, fmt.Errorf("open config file: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	err = decoder.Decode(&c)
	if err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	c.configPath = resolvedPath
	return c, nil
}

func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

func resolveConfigPath(cfgPath string) (string, error) {
	if cfgPath == "" {
		return getDefaultConfigPath()
	}
	if !fileExists(cfgPath) {
		return "", fmt.Errorf("config file %q does not exist", cfgPath)
	}
	return cfgPath, nil
}

func getDefaultConfigPath() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".udd", "config"), nil
}
