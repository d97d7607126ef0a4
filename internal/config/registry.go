package config

import (
	"os"
	"path/filepath"
)

// appName is the directory component used under the OS-appropriate config
// and data roots, matching the original's "com.karukan.karukan-im" project
// identifier collapsed to a single path segment.
const appName = "karukan"

// ConfigDir returns the OS-appropriate configuration directory for karukan,
// e.g. "$XDG_CONFIG_HOME/karukan" or its platform equivalent via
// [os.UserConfigDir].
func ConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, appName), nil
}

// DataDir returns the OS-appropriate data directory for karukan, used to
// store the system dictionary, user dictionaries, and the learning cache.
func DataDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, appName), nil
}

// ConfigFile returns the path to the main TOML configuration file.
func ConfigFile() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// DictPath returns the path to the system dictionary binary, honouring
// s.Conversion.DictPath when set.
func DictPath(s *Settings) (string, error) {
	if s != nil && s.Conversion.DictPath != "" {
		return s.Conversion.DictPath, nil
	}
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "dict.bin"), nil
}

// UserDictDir returns the directory scanned at startup for user dictionary
// files. Files within are loaded in sorted path order for determinism.
func UserDictDir() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "user_dicts"), nil
}

// LearningFile returns the path to the learning cache TSV file.
func LearningFile() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "learning.tsv"), nil
}
