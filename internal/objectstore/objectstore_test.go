package objectstore

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucketOperations(t *testing.T) {
	reg := NewRegistry()

	require.NoError(t, reg.CreateBucket("test-bucket"))
	assert.True(t, reg.BucketExists("test-bucket"))

	buckets := reg.ListBuckets()
	require.Len(t, buckets, 1)
	assert.Equal(t, "test-bucket", buckets[0].Name)

	require.NoError(t, reg.DeleteBucket("test-bucket"))
	assert.False(t, reg.BucketExists("test-bucket"))
}

func TestObjectOperations(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.CreateBucket("test-bucket"))
	b, err := reg.Bucket("test-bucket")
	require.NoError(t, err)

	obj := b.PutObject("test-key", []byte("hello world"), ObjectMetadata{})
	assert.NotEmpty(t, obj.ETag)

	got, err := b.GetObject("test-key")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello world"), got.Data)

	b.DeleteObject("test-key")
	_, err = b.GetObject("test-key")
	assert.Error(t, err)
}

func TestMultipartUpload(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.CreateBucket("test-bucket"))
	b, err := reg.Bucket("test-bucket")
	require.NoError(t, err)

	upload := b.CreateMultipartUpload("large-object", ObjectMetadata{})

	etag1, err := b.UploadPart(upload.UploadID, 1, []byte("part1"))
	require.NoError(t, err)
	assert.NotEmpty(t, etag1)

	etag2, err := b.UploadPart(upload.UploadID, 2, []byte("part2"))
	require.NoError(t, err)
	assert.NotEmpty(t, etag2)

	result, err := b.CompleteMultipartUpload(upload.UploadID, []int{1, 2})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(result.ETag, `-2"`))
	assert.Equal(t, []byte("part1part2"), result.Data)

	obj, err := b.GetObject("large-object")
	require.NoError(t, err)
	assert.Equal(t, []byte("part1part2"), obj.Data)

	_, err = b.ListParts(upload.UploadID)
	assert.Error(t, err, "upload record should be gone after completion")
}

func TestListObjectsWithDelimiter(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.CreateBucket("test-bucket"))
	b, err := reg.Bucket("test-bucket")
	require.NoError(t, err)

	b.PutObject("photos/2024/a.jpg", []byte("a"), ObjectMetadata{})
	b.PutObject("photos/2024/b.jpg", []byte("b"), ObjectMetadata{})
	b.PutObject("photos/readme.txt", []byte("r"), ObjectMetadata{})

	result := b.ListObjects(ListObjectsInput{Prefix: "photos/", Delimiter: "/"})
	require.Len(t, result.Contents, 1)
	assert.Equal(t, "photos/readme.txt", result.Contents[0].Key)
	require.Len(t, result.CommonPrefixes, 1)
	assert.Equal(t, "photos/2024/", result.CommonPrefixes[0])
}

func TestCopyObject(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.CreateBucket("src-bucket"))
	require.NoError(t, reg.CreateBucket("dst-bucket"))
	src, err := reg.Bucket("src-bucket")
	require.NoError(t, err)
	dst, err := reg.Bucket("dst-bucket")
	require.NoError(t, err)

	src.PutObject("key", []byte("payload"), ObjectMetadata{ContentType: "text/plain"})

	copied, err := src.CopyObject("key", dst, "copied-key")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), copied.Data)

	got, err := dst.GetObject("copied-key")
	require.NoError(t, err)
	assert.Equal(t, "text/plain", got.Metadata.ContentType)
}

func TestDeleteNonEmptyBucketFails(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.CreateBucket("test-bucket"))
	b, err := reg.Bucket("test-bucket")
	require.NoError(t, err)
	b.PutObject("key", []byte("data"), ObjectMetadata{})

	err = reg.DeleteBucket("test-bucket")
	assert.Error(t, err)
}
