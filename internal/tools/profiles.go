package tools

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadProfiles reads a profile-name → tool-name mapping from a YAML file.
func LoadProfiles(path string) (map[string][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profiles file: %w", err)
	}
	profiles := make(map[string][]string)
	if err := yaml.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("parse profiles YAML %s: %w", path, err)
	}
	return profiles, nil
}

// init lets a deployment regroup the tool surface without a rebuild: the
// first readable override file replaces the compiled-in ProfileDefinitions.
// A broken file is reported and ignored.
func init() {
	for _, path := range profileOverridePaths() {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			continue
		}
		profiles, err := LoadProfiles(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: ignoring profile overrides: %v\n", err)
			return
		}
		ProfileDefinitions = profiles
		return
	}
}

// profileOverridePaths lists candidate override locations in precedence
// order: explicit env var, working directory, beside the executable.
func profileOverridePaths() []string {
	paths := []string{
		os.Getenv("PROFILES_CONFIG_PATH"),
		filepath.Join("configs", "profiles.yaml"),
	}
	if exe, err := os.Executable(); err == nil {
		paths = append(paths, filepath.Join(filepath.Dir(exe), "configs", "profiles.yaml"))
	}
	return paths
}
