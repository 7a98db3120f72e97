// Package artifact uploads the files produced by a pipeline invocation.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"

	"github.com/funcinfra/pipelinectl/internal/errkind"
)

// Pattern matches the files that are uploaded.
const Pattern = "*.{txt,svg,json}"

var contentTypes = map[string]string{
	".json": "application/json",
	".txt":  "text/plain",
	".svg":  "image/svg+xml",
}

// ContentType returns the content type for the file name.
func ContentType(name string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// UploadError is returned when artifacts could not be uploaded.
type UploadError struct {
	Path   string
	Reason string
	Err    error
}

func (e *UploadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to upload %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("failed to upload %s: %s", e.Path, e.Reason)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// Is reports an UploadError as an upload error.
func (e *UploadError) Is(target error) bool {
	return target == errkind.ErrUpload
}

// Collect returns the names of the files in dir matching Pattern, sorted by name. Sub directories are not searched.
func Collect(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &UploadError{Path: dir, Reason: "directory does not exist"}
		}
		return nil, &UploadError{Path: dir, Reason: "unable to read directory", Err: err}
	}
	if !info.IsDir() {
		return nil, &UploadError{Path: dir, Reason: "not a directory"}
	}

	matches, err := doublestar.Glob(os.DirFS(dir), Pattern)
	if err != nil {
		return nil, &UploadError{Path: dir, Reason: "unable to read directory", Err: err}
	}
	if len(matches) == 0 {
		return nil, &UploadError{Path: dir, Reason: "no files matching " + Pattern}
	}
	sort.Strings(matches)

	return matches, nil
}

// BlobPath returns the name under which a file is stored: {version}/{folder}/{fileName}.
func BlobPath(version, folder, fileName string) string {
	return path.Join(version, folder, fileName)
}

// Store is the interface for persisting a single file.
type Store interface {
	// Put stores the file at localPath under name.
	Put(ctx context.Context, name, localPath, contentType string) error
}

// Uploader uploads result folders to a Store.
type Uploader struct {
	Store Store
}

// Upload uploads all matching files in dir to {version}/{folder}/. It returns the names of the stored blobs.
// The first failing file aborts the upload.
func (u Uploader) Upload(ctx context.Context, dir, version, folder string) ([]string, error) {
	files, err := Collect(dir)
	if err != nil {
		return nil, err
	}

	var uploaded []string
	for _, f := range files {
		local := filepath.Join(dir, f)
		name := BlobPath(version, folder, f)

		if err := u.Store.Put(ctx, name, local, ContentType(f)); err != nil {
			return uploaded, &UploadError{Path: local, Reason: "unable to store " + name, Err: err}
		}
		uploaded = append(uploaded, name)

		var size uint64
		if info, err := os.Stat(local); err == nil {
			size = uint64(info.Size())
		}
		log.Info().Str("blob", name).Str("size", humanize.Bytes(size)).Msg("Uploaded artifact.")
	}

	return uploaded, nil
}
