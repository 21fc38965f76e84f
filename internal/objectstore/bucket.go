package objectstore

import (
	"sort"
	"sync"
	"time"

	"stackbox/internal/apierrors"
)

// Bucket is one S3 bucket: its objects and in-progress multipart uploads,
// guarded by a single fine-grained lock per the registry's locking model.
type Bucket struct {
	mu        sync.RWMutex
	name      string
	createdAt time.Time
	objects   map[string]*StoredObject
	uploads   map[string]*MultipartUpload
}

func newBucket(name string) *Bucket {
	return &Bucket{
		name:      name,
		createdAt: time.Now().UTC(),
		objects:   map[string]*StoredObject{},
		uploads:   map[string]*MultipartUpload{},
	}
}

// Registry is the process-wide bucket registry.
type Registry struct {
	mu      sync.RWMutex
	buckets map[string]*Bucket
}

// NewRegistry builds an empty bucket registry.
func NewRegistry() *Registry {
	return &Registry{buckets: map[string]*Bucket{}}
}

// CreateBucket creates a new bucket, failing with BucketAlreadyOwnedByYou if
// the name is already taken (this engine has a single synthetic account, so
// every pre-existing bucket is "owned by you").
func (r *Registry) CreateBucket(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.buckets[name]; exists {
		return apierrors.New(apierrors.KindBucketAlreadyOwnedByYou, "your previous request to create the named bucket succeeded and you already own it")
	}
	r.buckets[name] = newBucket(name)
	return nil
}

// DeleteBucket removes an empty bucket, failing with BucketNotEmpty if it
// still holds objects or in-progress uploads, or NoSuchBucket if absent.
func (r *Registry) DeleteBucket(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.buckets[name]
	if !ok {
		return apierrors.New(apierrors.KindNoSuchBucket, "the specified bucket does not exist")
	}

	b.mu.RLock()
	empty := len(b.objects) == 0 && len(b.uploads) == 0
	b.mu.RUnlock()
	if !empty {
		return apierrors.New(apierrors.KindBucketNotEmpty, "the bucket you tried to delete is not empty")
	}

	delete(r.buckets, name)
	return nil
}

// Bucket returns the named bucket, failing with NoSuchBucket if it doesn't
// exist.
func (r *Registry) Bucket(name string) (*Bucket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.buckets[name]
	if !ok {
		return nil, apierrors.New(apierrors.KindNoSuchBucket, "the specified bucket does not exist")
	}
	return b, nil
}

// BucketExists reports whether name is a registered bucket.
func (r *Registry) BucketExists(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.buckets[name]
	return ok
}

// BucketInfo is the listing-shape of a bucket.
type BucketInfo struct {
	Name      string
	CreatedAt time.Time
}

// ListBuckets returns every bucket, sorted by name.
func (r *Registry) ListBuckets() []BucketInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]BucketInfo, 0, len(r.buckets))
	for _, b := range r.buckets {
		out = append(out, BucketInfo{Name: b.name, CreatedAt: b.createdAt})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
