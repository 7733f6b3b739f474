package s3_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docworker/internal/config"
	"docworker/internal/domain"
	"docworker/internal/port"
	s3storage "docworker/internal/storage/s3"
)

const listResponse = `<?xml version="1.0" encoding="UTF-8"?>
<ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">
  <Name>docs</Name>
  <Prefix>in/</Prefix>
  <KeyCount>2</KeyCount>
  <MaxKeys>1000</MaxKeys>
  <IsTruncated>false</IsTruncated>
  <Contents><Key>in/a.pdf</Key><LastModified>2024-01-01T00:00:00.000Z</LastModified><Size>10</Size></Contents>
  <Contents><Key>in/b.txt</Key><LastModified>2024-01-02T00:00:00.000Z</LastModified><Size>20</Size></Contents>
</ListBucketResult>`

const noSuchKeyResponse = `<?xml version="1.0" encoding="UTF-8"?>
<Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message><Key>missing.pdf</Key></Error>`

func newTestStorage(t *testing.T, handler http.HandlerFunc) port.ObjectStorage {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	store, err := s3storage.NewS3Client(context.Background(), &config.S3Config{
		Region:    "us-east-1",
		Endpoint:  server.URL,
		AccessKey: "test",
		SecretKey: "test",
	}, "docs")
	require.NoError(t, err)
	return store
}

func TestS3Client_Download(t *testing.T) {
	store := newTestStorage(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/docs/in/a.pdf", r.URL.Path)
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4"))
	})

	data, err := store.Download(context.Background(), "in/a.pdf")
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4"), data)
}

func TestS3Client_Download_Missing(t *testing.T) {
	store := newTestStorage(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(noSuchKeyResponse))
	})

	_, err := store.Download(context.Background(), "missing.pdf")
	assert.ErrorIs(t, err, domain.ErrBlobNotFound)
}

func TestS3Client_List(t *testing.T) {
	store := newTestStorage(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("list-type"))
		assert.Equal(t, "in/", r.URL.Query().Get("prefix"))
		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write([]byte(listResponse))
	})

	objects, err := store.List(context.Background(), "in/")
	require.NoError(t, err)
	require.Len(t, objects, 2)
	assert.Equal(t, "in/a.pdf", objects[0].Key)
	assert.Equal(t, int64(10), objects[0].Size)
	assert.Equal(t, "in/b.txt", objects[1].Key)
	assert.Equal(t, 2024, objects[1].LastModified.Year())
}

func TestS3Client_Delete(t *testing.T) {
	var called bool
	store := newTestStorage(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/docs/in/a.pdf", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, store.Delete(context.Background(), "in/a.pdf"))
	assert.True(t, called)
}
