package artifact

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"gotest.tools/v3/fs"

	"github.com/funcinfra/pipelinectl/internal/errkind"
)

type put struct {
	Name        string
	LocalPath   string
	ContentType string
}

type fakeStore struct {
	puts   []put
	failOn string
}

func (s *fakeStore) Put(_ context.Context, name, localPath, contentType string) error {
	if name == s.failOn {
		return errors.New("403 AuthorizationFailure")
	}
	s.puts = append(s.puts, put{Name: name, LocalPath: localPath, ContentType: contentType})
	return nil
}

func TestContentType(t *testing.T) {
	testCases := map[string]string{
		"pipeline-results.json": "application/json",
		"Build-id.txt":          "text/plain",
		"last-run.svg":          "image/svg+xml",
		"LAST-RUN.SVG":          "image/svg+xml",
		"notes.md":              "application/octet-stream",
		"noext":                 "application/octet-stream",
	}
	for name, want := range testCases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, want, ContentType(name))
		})
	}
}

func TestUploader_Upload(t *testing.T) {
	dir := fs.NewDir(t, "pipelinectl-results",
		fs.WithFile("test-results.svg", "<svg/>"),
		fs.WithFile("pipeline-results.json", "{}"),
		fs.WithFile("README.md", "# ignored"),
		fs.WithDir("nested", fs.WithFile("deep.json", "{}")),
	)
	defer dir.Remove()

	store := &fakeStore{}
	u := Uploader{Store: store}

	uploaded, err := u.Upload(context.Background(), dir.Path(), "4", "nightly")
	assert.NoError(t, err)
	assert.Equal(t, []string{"4/nightly/pipeline-results.json", "4/nightly/test-results.svg"}, uploaded)

	want := []put{
		{Name: "4/nightly/pipeline-results.json", LocalPath: filepath.Join(dir.Path(), "pipeline-results.json"), ContentType: "application/json"},
		{Name: "4/nightly/test-results.svg", LocalPath: filepath.Join(dir.Path(), "test-results.svg"), ContentType: "image/svg+xml"},
	}
	if !cmp.Equal(want, store.puts) {
		t.Errorf("unexpected uploads: %s", cmp.Diff(want, store.puts))
	}
}

func TestUploader_Upload_AbortsOnFailure(t *testing.T) {
	dir := fs.NewDir(t, "pipelinectl-results",
		fs.WithFile("a.txt", "a"),
		fs.WithFile("b.txt", "b"),
		fs.WithFile("c.txt", "c"),
	)
	defer dir.Remove()

	store := &fakeStore{failOn: "3/p/b.txt"}
	uploaded, err := Uploader{Store: store}.Upload(context.Background(), dir.Path(), "3", "p")

	assert.ErrorIs(t, err, errkind.ErrUpload)
	assert.ErrorContains(t, err, "403 AuthorizationFailure")
	assert.Equal(t, []string{"3/p/a.txt"}, uploaded)
	assert.Len(t, store.puts, 1)
}

func TestCollect_Errors(t *testing.T) {
	empty := fs.NewDir(t, "pipelinectl-empty", fs.WithFile("notes.md", ""))
	defer empty.Remove()

	file := fs.NewFile(t, "pipelinectl-file")
	defer file.Remove()

	testCases := []struct {
		name    string
		dir     string
		wantErr string
	}{
		{
			name:    "missing directory",
			dir:     filepath.Join(empty.Path(), "missing"),
			wantErr: "failed to upload " + filepath.Join(empty.Path(), "missing") + ": directory does not exist",
		},
		{
			name:    "no matching files",
			dir:     empty.Path(),
			wantErr: "failed to upload " + empty.Path() + ": no files matching *.{txt,svg,json}",
		},
		{
			name:    "not a directory",
			dir:     file.Path(),
			wantErr: "failed to upload " + file.Path() + ": not a directory",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			store := &fakeStore{}
			_, err := Uploader{Store: store}.Upload(context.Background(), tc.dir, "4", "x")
			assert.EqualError(t, err, tc.wantErr)
			assert.ErrorIs(t, err, errkind.ErrUpload)
			assert.Empty(t, store.puts)
		})
	}
}

func TestBlobPath(t *testing.T) {
	assert.Equal(t, "4/nightly/Build-id.txt", BlobPath("4", "nightly", "Build-id.txt"))
}
