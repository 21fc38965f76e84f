package objectstore

import (
	"crypto/md5"
	"encoding/hex"
	"sort"
	"strings"
	"time"

	"stackbox/internal/apierrors"
)

func computeETag(data []byte) string {
	sum := md5.Sum(data)
	return `"` + hex.EncodeToString(sum[:]) + `"`
}

// PutObject always overwrites any existing object at key.
func (b *Bucket) PutObject(key string, data []byte, meta ObjectMetadata) *StoredObject {
	b.mu.Lock()
	defer b.mu.Unlock()

	obj := &StoredObject{
		Data:         data,
		ETag:         computeETag(data),
		LastModified: time.Now().UTC(),
		Metadata:     meta,
	}
	b.objects[key] = obj
	return obj
}

// GetObject returns the object at key, failing with NoSuchKey if absent.
func (b *Bucket) GetObject(key string) (*StoredObject, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	obj, ok := b.objects[key]
	if !ok {
		return nil, apierrors.New(apierrors.KindNoSuchKey, "the specified key does not exist")
	}
	return obj, nil
}

// DeleteObject removes the object at key. Deletion is idempotent: deleting an
// already-absent key still succeeds, matching S3's own semantics.
func (b *Bucket) DeleteObject(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, key)
}

// ListObjectsInput gathers ListObjects(V2) parameters.
type ListObjectsInput struct {
	Prefix    string
	Delimiter string
	MaxKeys   int
}

// ListObjects lists objects under Prefix, collapsing everything after the
// first Delimiter occurrence (relative to Prefix) into CommonPrefixes.
func (b *Bucket) ListObjects(in ListObjectsInput) ListObjectsResult {
	b.mu.RLock()
	defer b.mu.RUnlock()

	maxKeys := in.MaxKeys
	if maxKeys <= 0 {
		maxKeys = 1000
	}

	var keys []string
	for key := range b.objects {
		if in.Prefix != "" && !strings.HasPrefix(key, in.Prefix) {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var contents []ObjectSummary
	prefixSeen := map[string]bool{}
	var commonPrefixes []string

	for _, key := range keys {
		if in.Delimiter != "" {
			rest := key[len(in.Prefix):]
			if idx := strings.Index(rest, in.Delimiter); idx >= 0 {
				cp := in.Prefix + rest[:idx+len(in.Delimiter)]
				if !prefixSeen[cp] {
					prefixSeen[cp] = true
					commonPrefixes = append(commonPrefixes, cp)
				}
				continue
			}
		}
		obj := b.objects[key]
		contents = append(contents, ObjectSummary{
			Key:          key,
			ETag:         obj.ETag,
			Size:         int64(len(obj.Data)),
			LastModified: obj.LastModified,
		})
		if len(contents)+len(commonPrefixes) >= maxKeys {
			break
		}
	}

	sort.Strings(commonPrefixes)
	return ListObjectsResult{Contents: contents, CommonPrefixes: commonPrefixes, IsTruncated: false}
}

// CopyObject copies srcKey in b to dstKey in dst (possibly the same bucket).
// Absent from spec.md's operation list but present in the reference
// implementation's storage trait; implemented as a get-then-put.
func (b *Bucket) CopyObject(srcKey string, dst *Bucket, dstKey string) (*StoredObject, error) {
	src, err := b.GetObject(srcKey)
	if err != nil {
		return nil, err
	}
	data := make([]byte, len(src.Data))
	copy(data, src.Data)
	return dst.PutObject(dstKey, data, src.Metadata), nil
}
