package objectstore

import (
	"crypto/md5"
	"encoding/hex"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"stackbox/internal/apierrors"
)

// CreateMultipartUpload starts a new upload, capturing meta at creation time
// (the metadata a client supplies at CompleteMultipartUpload is ignored, the
// same way a real S3-compatible backend fixes metadata up front).
func (b *Bucket) CreateMultipartUpload(key string, meta ObjectMetadata) *MultipartUpload {
	b.mu.Lock()
	defer b.mu.Unlock()

	upload := &MultipartUpload{
		UploadID:  uuid.NewString(),
		Key:       key,
		Metadata:  meta,
		CreatedAt: time.Now().UTC(),
		Parts:     map[int]Part{},
	}
	b.uploads[upload.UploadID] = upload
	return upload
}

// UploadPart stores (or overwrites) one part of an in-progress upload.
func (b *Bucket) UploadPart(uploadID string, partNumber int, data []byte) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	upload, ok := b.uploads[uploadID]
	if !ok {
		return "", apierrors.New(apierrors.KindNoSuchUpload, "the specified upload does not exist")
	}
	etag := computeETag(data)
	upload.Parts[partNumber] = Part{Data: data, ETag: etag}
	return etag, nil
}

// CompleteMultipartUpload assembles the parts named in order, in the order
// the caller submitted them (not re-sorted by part number — matching the
// reference implementation), computes the compound ETag, installs the
// resulting object, and removes the upload record.
//
// The compound ETag is md5(concat(md5(part) for part in order)) + "-" + N,
// where N is the submitted part count; this holds even for a single-part
// upload ("-1"), matching the reference implementation's unconditional
// suffix.
func (b *Bucket) CompleteMultipartUpload(uploadID string, order []int) (*StoredObject, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	upload, ok := b.uploads[uploadID]
	if !ok {
		return nil, apierrors.New(apierrors.KindNoSuchUpload, "the specified upload does not exist")
	}

	var combined []byte
	var digestConcat []byte
	for _, partNumber := range order {
		part, ok := upload.Parts[partNumber]
		if !ok {
			return nil, apierrors.Newf(apierrors.KindInvalidPart, "part %d was not uploaded", partNumber)
		}
		combined = append(combined, part.Data...)
		sum := md5.Sum(part.Data)
		digestConcat = append(digestConcat, sum[:]...)
	}

	finalSum := md5.Sum(digestConcat)
	etag := `"` + hex.EncodeToString(finalSum[:]) + "-" + strconv.Itoa(len(order)) + `"`

	obj := &StoredObject{
		Data:         combined,
		ETag:         etag,
		LastModified: time.Now().UTC(),
		Metadata:     upload.Metadata,
	}
	b.objects[upload.Key] = obj
	delete(b.uploads, uploadID)
	return obj, nil
}

// AbortMultipartUpload removes an upload record. Idempotent: aborting an
// already-absent upload still succeeds.
func (b *Bucket) AbortMultipartUpload(uploadID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.uploads, uploadID)
}

// ListMultipartUploads lists every in-progress upload, sorted by key then
// upload id.
func (b *Bucket) ListMultipartUploads() []MultipartUploadInfo {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]MultipartUploadInfo, 0, len(b.uploads))
	for _, u := range b.uploads {
		out = append(out, MultipartUploadInfo{Key: u.Key, UploadID: u.UploadID, Initiated: u.CreatedAt})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Key != out[j].Key {
			return out[i].Key < out[j].Key
		}
		return out[i].UploadID < out[j].UploadID
	})
	return out
}

// ListParts lists every part of an in-progress upload, sorted by part number.
func (b *Bucket) ListParts(uploadID string) ([]PartInfo, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	upload, ok := b.uploads[uploadID]
	if !ok {
		return nil, apierrors.New(apierrors.KindNoSuchUpload, "the specified upload does not exist")
	}

	out := make([]PartInfo, 0, len(upload.Parts))
	for n, p := range upload.Parts {
		out = append(out, PartInfo{PartNumber: n, ETag: p.ETag, Size: int64(len(p.Data)), LastModified: upload.CreatedAt})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PartNumber < out[j].PartNumber })
	return out, nil
}
