// Package envfile loads longrun settings from .env files.
// Variables already present in the environment always win, and only keys
// carrying the longrun prefix are applied so a project's application .env
// does not leak into the process.
package envfile

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Prefix selects the keys Load applies.
const Prefix = "LONGRUN_"

// Load reads the env file at path and sets every LONGRUN_ variable that is
// not already in the environment. It returns the keys it set, in file order.
// A missing file is not an error.
func Load(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening env file %s: %w", path, err)
	}
	defer file.Close() //nolint:errcheck // read-only

	var set []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := parseEnvLine(line)
		if !ok || !strings.HasPrefix(key, Prefix) {
			continue
		}
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return set, fmt.Errorf("setting %s from %s: %w", key, path, err)
		}
		set = append(set, key)
	}
	if err := scanner.Err(); err != nil {
		return set, fmt.Errorf("reading env file %s: %w", path, err)
	}
	return set, nil
}

// LoadAll loads paths in order; the first file to define a key wins.
// It stops at the first read failure.
func LoadAll(paths ...string) ([]string, error) {
	var set []string
	for _, path := range paths {
		keys, err := Load(path)
		set = append(set, keys...)
		if err != nil {
			return set, err
		}
	}
	return set, nil
}

// parseEnvLine splits KEY=VALUE, dropping an optional "export " prefix and
// one pair of matching quotes around the value.
func parseEnvLine(line string) (key, value string, ok bool) {
	key, value, found := strings.Cut(line, "=")
	if !found {
		return "", "", false
	}

	key = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(key), "export "))
	value = strings.TrimSpace(value)
	if key == "" {
		return "", "", false
	}

	if len(value) >= 2 {
		if (value[0] == '"' && value[len(value)-1] == '"') ||
			(value[0] == '\'' && value[len(value)-1] == '\'') {
			value = value[1 : len(value)-1]
		}
	}
	return key, value, true
}
