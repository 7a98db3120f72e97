// Package storage connects to an Azure storage account.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"

	"github.com/funcinfra/pipelinectl/internal/errkind"
)

// DefaultContainer is the container that pipeline results are uploaded to.
const DefaultContainer = "pipelineresults"

// Account identifies a storage account and its shared key.
type Account struct {
	Name string
	Key  string
}

// BlobURL returns the blob service endpoint of the account.
func (a Account) BlobURL() string {
	return fmt.Sprintf("https://%s.blob.core.windows.net/", a.Name)
}

// QueueURL returns the queue service endpoint of the account.
func (a Account) QueueURL() string {
	return fmt.Sprintf("https://%s.queue.core.windows.net/", a.Name)
}

// AuthenticationError is returned when the storage account credentials are invalid or rejected.
type AuthenticationError struct {
	Account string
	Err     error
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication with storage account %q failed: %v", e.Account, e.Err)
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// Is reports an AuthenticationError as an authentication error.
func (e *AuthenticationError) Is(target error) bool {
	return target == errkind.ErrAuthentication
}

type blobClient interface {
	UploadFile(ctx context.Context, containerName string, blobName string, file *os.File, o *azblob.UploadFileOptions) (azblob.UploadFileResponse, error)
}

// BlobStore stores files as block blobs in a single container.
type BlobStore struct {
	client    blobClient
	Account   string
	Container string
}

// NewBlobStore returns a BlobStore for the given account, authenticated with its shared key.
func NewBlobStore(a Account, container string) (*BlobStore, error) {
	cred, err := azblob.NewSharedKeyCredential(a.Name, a.Key)
	if err != nil {
		return nil, &AuthenticationError{Account: a.Name, Err: err}
	}

	return newBlobStore(a.BlobURL(), cred, container)
}

func newBlobStore(serviceURL string, cred *azblob.SharedKeyCredential, container string) (*BlobStore, error) {
	client, err := azblob.NewClientWithSharedKeyCredential(serviceURL, cred, clientOptions())
	if err != nil {
		return nil, err
	}

	return &BlobStore{client: client, Account: cred.AccountName(), Container: container}, nil
}

// clientOptions turns off the SDK's retries, a failed upload is reported right away.
func clientOptions() *azblob.ClientOptions {
	return &azblob.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Retry: policy.RetryOptions{MaxRetries: -1},
		},
	}
}

// Put uploads the file at localPath to the blob name. Caching is disabled for the blob.
func (s *BlobStore) Put(ctx context.Context, name, localPath, contentType string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = s.client.UploadFile(ctx, s.Container, name, f, &azblob.UploadFileOptions{
		HTTPHeaders: &blob.HTTPHeaders{
			BlobContentType:  to.Ptr(contentType),
			BlobCacheControl: to.Ptr("no-cache"),
		},
	})
	if err != nil {
		if isAuthError(err) {
			return &AuthenticationError{Account: s.Account, Err: err}
		}
		return err
	}

	return nil
}

func isAuthError(err error) bool {
	return bloberror.HasCode(err,
		bloberror.AuthenticationFailed,
		bloberror.AuthorizationFailure,
		bloberror.InvalidAuthenticationInfo,
	) || errors.Is(err, errkind.ErrAuthentication)
}
