package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"docworker/internal/config"
	"docworker/internal/domain"
	"docworker/internal/port"
)

type gcsClient struct {
	client *storage.Client
	bucket *storage.BucketHandle
	name   string
}

// NewGCSClient creates a Google Cloud Storage backed ObjectStorage bound to bucket.
func NewGCSClient(ctx context.Context, cfg *config.GCSConfig, bucket string) (port.ObjectStorage, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	if cfg.Endpoint != "" {
		// Emulators such as fake-gcs-server accept unauthenticated requests.
		opts = append(opts, option.WithEndpoint(cfg.Endpoint), option.WithoutAuthentication())
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating gcs client: %w", err)
	}
	return &gcsClient{
		client: client,
		bucket: client.Bucket(bucket),
		name:   bucket,
	}, nil
}

// Upload writes the object only if the key is not already taken.
func (c *gcsClient) Upload(ctx context.Context, input port.UploadInput) (*port.UploadOutput, error) {
	writer := c.bucket.Object(input.Key).If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)
	writer.ContentType = input.ContentType

	if _, err := io.Copy(writer, input.Body); err != nil {
		_ = writer.Close()
		return nil, fmt.Errorf("gcs upload: %w", mapWriteError(input.Key, err))
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("gcs upload finalize: %w", mapWriteError(input.Key, err))
	}

	attrs := writer.Attrs()
	return &port.UploadOutput{
		Location: fmt.Sprintf("gs://%s/%s", c.name, input.Key),
		ETag:     attrs.Etag,
	}, nil
}

func (c *gcsClient) Download(ctx context.Context, key string) ([]byte, error) {
	reader, err := c.bucket.Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, fmt.Errorf("gcs download %s: %w", key, domain.ErrBlobNotFound)
		}
		return nil, fmt.Errorf("gcs download: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("gcs download read: %w", err)
	}
	return data, nil
}

func (c *gcsClient) List(ctx context.Context, prefix string) ([]port.ObjectInfo, error) {
	it := c.bucket.Objects(ctx, &storage.Query{Prefix: prefix})

	var objects []port.ObjectInfo
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("gcs list: %w", err)
		}
		objects = append(objects, port.ObjectInfo{
			Key:          attrs.Name,
			Size:         attrs.Size,
			LastModified: attrs.Updated,
		})
	}
	return objects, nil
}

func (c *gcsClient) Delete(ctx context.Context, key string) error {
	if err := c.bucket.Object(key).Delete(ctx); err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("gcs delete: %w", err)
	}
	return nil
}

func mapWriteError(key string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusPreconditionFailed {
		return fmt.Errorf("%s: %w", key, domain.ErrBlobExists)
	}
	return err
}
