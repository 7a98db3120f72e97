// Package yaml provides small helpers around gopkg.in/yaml.v2.
package yaml

import (
	"os"

	"gopkg.in/yaml.v2"
)

// WriteFile serializes v to a file with the given name and permissions.
func WriteFile(name string, v interface{}, perm os.FileMode) error {
	b, err := yaml.Marshal(v)
	if err != nil {
		return err
	}

	return os.WriteFile(name, b, perm)
}

// ReadFile deserializes the file with the given name into v.
func ReadFile(name string, v interface{}) error {
	f, err := os.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()

	return yaml.NewDecoder(f).Decode(v)
}
