// Package text writes plain text artifacts that let other tooling locate a queued build.
package text

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

const (
	URLFile = "Build-url.txt"
	IDFile  = "Build-id.txt"
)

// WriteBuildRef writes the build's web URL and id into dir.
func WriteBuildRef(dir, url string, id int) error {
	files := map[string]string{
		URLFile: url,
		IDFile:  strconv.Itoa(id),
	}
	for name, content := range files {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", p, err)
		}
	}
	return nil
}
