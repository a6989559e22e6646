package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadExperiment loads the experiment configuration.
// Search order: customPath -> ~/.slingshot/experiment.yaml -> ./configs/experiment.yaml -> embedded default
func LoadExperiment(customPath string) (Experiment, error) {
	var exp Experiment

	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return exp, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &exp); err != nil {
			return exp, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return exp, nil
	}

	// Try user config directory
	if userCfgPath := userConfigPath("experiment.yaml"); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if err := yaml.Unmarshal(data, &exp); err == nil {
				return exp, nil
			}
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile("configs/experiment.yaml"); err == nil {
		if err := yaml.Unmarshal(data, &exp); err == nil {
			return exp, nil
		}
	}

	// Use embedded default YAML
	if err := yaml.Unmarshal(defaultExperimentYAML, &exp); err != nil {
		return DefaultExperiment(), nil // Fallback to hardcoded if embed fails
	}
	return exp, nil
}

// UserDir returns ~/.slingshot, or empty if home is unavailable.
func UserDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".slingshot")
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	dir := UserDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, filename)
}
