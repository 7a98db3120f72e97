package storage

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gotest.tools/v3/fs"

	"github.com/funcinfra/pipelinectl/internal/errkind"
)

type upload struct {
	container    string
	name         string
	content      string
	contentType  string
	cacheControl string
}

type fakeBlobClient struct {
	uploads []upload
	err     error
}

func (c *fakeBlobClient) UploadFile(_ context.Context, containerName string, blobName string, file *os.File, o *azblob.UploadFileOptions) (azblob.UploadFileResponse, error) {
	if c.err != nil {
		return azblob.UploadFileResponse{}, c.err
	}
	b, err := os.ReadFile(file.Name())
	if err != nil {
		return azblob.UploadFileResponse{}, err
	}
	c.uploads = append(c.uploads, upload{
		container:    containerName,
		name:         blobName,
		content:      string(b),
		contentType:  *o.HTTPHeaders.BlobContentType,
		cacheControl: *o.HTTPHeaders.BlobCacheControl,
	})
	return azblob.UploadFileResponse{}, nil
}

func TestBlobStore_Put(t *testing.T) {
	dir := fs.NewDir(t, "pipelinectl-storage", fs.WithFile("Build-id.txt", "1234"))
	defer dir.Remove()

	client := &fakeBlobClient{}
	s := &BlobStore{client: client, Account: "funcresults", Container: DefaultContainer}

	err := s.Put(context.Background(), "4/nightly/Build-id.txt", filepath.Join(dir.Path(), "Build-id.txt"), "text/plain")
	require.NoError(t, err)

	assert.Equal(t, []upload{{
		container:    "pipelineresults",
		name:         "4/nightly/Build-id.txt",
		content:      "1234",
		contentType:  "text/plain",
		cacheControl: "no-cache",
	}}, client.uploads)
}

func TestBlobStore_Put_Errors(t *testing.T) {
	dir := fs.NewDir(t, "pipelinectl-storage", fs.WithFile("a.json", "{}"))
	defer dir.Remove()

	authErr := &azcore.ResponseError{ErrorCode: "AuthenticationFailed", StatusCode: http.StatusForbidden}
	s := &BlobStore{client: &fakeBlobClient{err: authErr}, Account: "funcresults", Container: DefaultContainer}
	err := s.Put(context.Background(), "a.json", filepath.Join(dir.Path(), "a.json"), "application/json")
	assert.ErrorIs(t, err, errkind.ErrAuthentication)

	other := errors.New("connection reset")
	s = &BlobStore{client: &fakeBlobClient{err: other}, Account: "funcresults", Container: DefaultContainer}
	err = s.Put(context.Background(), "a.json", filepath.Join(dir.Path(), "a.json"), "application/json")
	assert.Equal(t, other, err)

	err = s.Put(context.Background(), "missing.json", filepath.Join(dir.Path(), "missing.json"), "application/json")
	assert.True(t, os.IsNotExist(err))
}

func TestNewBlobStore_InvalidKey(t *testing.T) {
	_, err := NewBlobStore(Account{Name: "funcresults", Key: "not base64!"}, DefaultContainer)
	assert.ErrorIs(t, err, errkind.ErrAuthentication)
	assert.ErrorContains(t, err, `authentication with storage account "funcresults" failed`)
}

func TestBlobStore_Put_NoRetries(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	dir := fs.NewDir(t, "pipelinectl-storage", fs.WithFile("Build-id.txt", "1234"))
	defer dir.Remove()

	cred, err := azblob.NewSharedKeyCredential("funcresults", "a2V5")
	require.NoError(t, err)
	s, err := newBlobStore(srv.URL+"/", cred, DefaultContainer)
	require.NoError(t, err)
	assert.Equal(t, "funcresults", s.Account)

	err = s.Put(context.Background(), "4/nightly/Build-id.txt", filepath.Join(dir.Path(), "Build-id.txt"), "text/plain")
	assert.Error(t, err)
	assert.Equal(t, int32(1), requests.Load())
}

func TestAccount_URLs(t *testing.T) {
	a := Account{Name: "funcresults"}
	assert.Equal(t, "https://funcresults.blob.core.windows.net/", a.BlobURL())
	assert.Equal(t, "https://funcresults.queue.core.windows.net/", a.QueueURL())
}
