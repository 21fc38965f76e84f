package objectstore

import (
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"stackbox/internal/apierrors"
)

// Service wires an HTTP handler onto a bucket Registry, implementing the S3
// REST surface: bucket and object CRUD plus multipart upload.
type Service struct {
	Registry *Registry
}

// NewService builds an S3 Service over an empty bucket registry.
func NewService() *Service {
	return &Service{Registry: NewRegistry()}
}

// Routes mounts the S3 surface onto a chi router.
func (s *Service) Routes(r chi.Router) {
	r.Get("/", s.listBuckets)
	r.Route("/{bucket}", func(r chi.Router) {
		r.Put("/", s.createBucket)
		r.Delete("/", s.deleteBucket)
		r.Head("/", s.headBucket)
		r.Get("/", s.listObjectsOrUploads)
		r.Route("/{key:.*}", func(r chi.Router) {
			r.Put("/", s.putObjectOrCopyOrUploadPart)
			r.Get("/", s.getObjectOrListParts)
			r.Delete("/", s.deleteOrAbort)
			r.Head("/", s.headObject)
			r.Post("/", s.postObject)
		})
	})
}

func (s *Service) listBuckets(w http.ResponseWriter, r *http.Request) {
	buckets := s.Registry.ListBuckets()
	writeXML(w, http.StatusOK, FormatListBuckets(buckets))
}

func (s *Service) createBucket(w http.ResponseWriter, r *http.Request) {
	bucket := chi.URLParam(r, "bucket")
	if err := s.Registry.CreateBucket(bucket); err != nil {
		writeS3Error(w, r, err, bucket)
		return
	}
	w.Header().Set("Location", "/"+bucket)
	w.WriteHeader(http.StatusOK)
}

func (s *Service) deleteBucket(w http.ResponseWriter, r *http.Request) {
	bucket := chi.URLParam(r, "bucket")
	if err := s.Registry.DeleteBucket(bucket); err != nil {
		writeS3Error(w, r, err, bucket)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) headBucket(w http.ResponseWriter, r *http.Request) {
	bucket := chi.URLParam(r, "bucket")
	if !s.Registry.BucketExists(bucket) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// listObjectsOrUploads handles both ListObjectsV2 and ListMultipartUploads
// (?uploads), the same bucket-level GET split the reference router uses.
func (s *Service) listObjectsOrUploads(w http.ResponseWriter, r *http.Request) {
	bucket := chi.URLParam(r, "bucket")
	b, err := s.Registry.Bucket(bucket)
	if err != nil {
		writeS3Error(w, r, err, bucket)
		return
	}

	q := r.URL.Query()
	if _, ok := q["uploads"]; ok {
		uploads := b.ListMultipartUploads()
		writeXML(w, http.StatusOK, FormatListMultipartUploads(bucket, uploads))
		return
	}

	maxKeys, _ := strconv.Atoi(q.Get("max-keys"))
	prefix := q.Get("prefix")
	delimiter := q.Get("delimiter")

	result := b.ListObjects(ListObjectsInput{Prefix: prefix, Delimiter: delimiter, MaxKeys: maxKeys})
	body := FormatListObjects(ListObjectsParams{Bucket: bucket, Prefix: prefix, Delimiter: delimiter}, result)
	writeXML(w, http.StatusOK, body)
}

// putObjectOrCopyOrUploadPart handles PutObject, CopyObject (the
// x-amz-copy-source header), and UploadPart, distinguished the same way the
// reference implementation does: copy source header first, then the
// partNumber/uploadId query parameters, both driven by net/http's own header
// and query parsing rather than a proprietary workaround.
func (s *Service) putObjectOrCopyOrUploadPart(w http.ResponseWriter, r *http.Request) {
	bucket := chi.URLParam(r, "bucket")
	key := chi.URLParam(r, "key")
	b, err := s.Registry.Bucket(bucket)
	if err != nil {
		writeS3Error(w, r, err, bucket+"/"+key)
		return
	}

	if copySource := r.Header.Get("x-amz-copy-source"); copySource != "" {
		s.copyObject(w, r, copySource, b, key)
		return
	}

	q := r.URL.Query()
	uploadID := q.Get("uploadId")
	partNumberStr := q.Get("partNumber")

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeS3Error(w, r, apierrors.New(apierrors.KindInvalidArgument, "failed to read request body"), bucket+"/"+key)
		return
	}

	if uploadID != "" && partNumberStr != "" {
		partNumber, convErr := strconv.Atoi(partNumberStr)
		if convErr != nil {
			writeS3Error(w, r, apierrors.New(apierrors.KindInvalidArgument, "partNumber must be an integer"), bucket+"/"+key)
			return
		}
		etag, err := b.UploadPart(uploadID, partNumber, body)
		if err != nil {
			writeS3Error(w, r, err, bucket+"/"+key)
			return
		}
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusOK)
		return
	}

	meta := metadataFromHeaders(r.Header)
	obj := b.PutObject(key, body, meta)
	w.Header().Set("ETag", obj.ETag)
	w.WriteHeader(http.StatusOK)
}

// copyObject resolves the x-amz-copy-source header (a URL-encoded
// "/bucket/key" or "bucket/key" path) and copies into dstBucket/dstKey.
func (s *Service) copyObject(w http.ResponseWriter, r *http.Request, copySource string, dstBucket *Bucket, dstKey string) {
	decoded, err := url.QueryUnescape(copySource)
	if err != nil {
		writeS3Error(w, r, apierrors.New(apierrors.KindInvalidArgument, "malformed x-amz-copy-source"), dstKey)
		return
	}
	decoded = strings.TrimPrefix(decoded, "/")
	srcBucket, srcKey, ok := strings.Cut(decoded, "/")
	if !ok {
		writeS3Error(w, r, apierrors.New(apierrors.KindInvalidArgument, "x-amz-copy-source must be bucket/key"), dstKey)
		return
	}

	src, err := s.Registry.Bucket(srcBucket)
	if err != nil {
		writeS3Error(w, r, err, srcBucket+"/"+srcKey)
		return
	}
	obj, err := src.CopyObject(srcKey, dstBucket, dstKey)
	if err != nil {
		writeS3Error(w, r, err, srcBucket+"/"+srcKey)
		return
	}
	writeXML(w, http.StatusOK, FormatCopyObjectResult(obj.ETag, formatTime(obj.LastModified)))
}

// getObjectOrListParts handles both GetObject and ListParts (?uploadId),
// the same key-level GET split the reference router uses.
func (s *Service) getObjectOrListParts(w http.ResponseWriter, r *http.Request) {
	bucket := chi.URLParam(r, "bucket")
	key := chi.URLParam(r, "key")
	b, err := s.Registry.Bucket(bucket)
	if err != nil {
		writeS3Error(w, r, err, bucket+"/"+key)
		return
	}

	if uploadID := r.URL.Query().Get("uploadId"); uploadID != "" {
		parts, err := b.ListParts(uploadID)
		if err != nil {
			writeS3Error(w, r, err, bucket+"/"+key)
			return
		}
		writeXML(w, http.StatusOK, FormatListParts(bucket, key, uploadID, parts))
		return
	}

	obj, err := b.GetObject(key)
	if err != nil {
		writeS3Error(w, r, err, bucket+"/"+key)
		return
	}
	writeObjectHeaders(w, obj)
	w.WriteHeader(http.StatusOK)
	w.Write(obj.Data)
}

func (s *Service) headObject(w http.ResponseWriter, r *http.Request) {
	bucket := chi.URLParam(r, "bucket")
	key := chi.URLParam(r, "key")
	b, err := s.Registry.Bucket(bucket)
	if err != nil {
		w.WriteHeader(statusOf(err))
		return
	}
	obj, err := b.GetObject(key)
	if err != nil {
		w.WriteHeader(statusOf(err))
		return
	}
	writeObjectHeaders(w, obj)
	w.WriteHeader(http.StatusOK)
}

func statusOf(err error) int {
	if awsErr, ok := err.(*apierrors.AWSError); ok {
		return awsErr.Kind.Status()
	}
	return http.StatusInternalServerError
}

// deleteOrAbort handles both DeleteObject and AbortMultipartUpload,
// distinguished by the uploadId query parameter.
func (s *Service) deleteOrAbort(w http.ResponseWriter, r *http.Request) {
	bucket := chi.URLParam(r, "bucket")
	key := chi.URLParam(r, "key")
	b, err := s.Registry.Bucket(bucket)
	if err != nil {
		writeS3Error(w, r, err, bucket+"/"+key)
		return
	}

	if uploadID := r.URL.Query().Get("uploadId"); uploadID != "" {
		b.AbortMultipartUpload(uploadID)
		writeXML(w, http.StatusNoContent, FormatAbortMultipartUpload())
		return
	}

	b.DeleteObject(key)
	w.WriteHeader(http.StatusNoContent)
}

// postObject handles CreateMultipartUpload (?uploads) and
// CompleteMultipartUpload (?uploadId=...).
func (s *Service) postObject(w http.ResponseWriter, r *http.Request) {
	bucket := chi.URLParam(r, "bucket")
	key := chi.URLParam(r, "key")
	b, err := s.Registry.Bucket(bucket)
	if err != nil {
		writeS3Error(w, r, err, bucket+"/"+key)
		return
	}

	q := r.URL.Query()
	if _, ok := q["uploads"]; ok {
		meta := metadataFromHeaders(r.Header)
		upload := b.CreateMultipartUpload(key, meta)
		writeXML(w, http.StatusOK, FormatCreateMultipartUpload(bucket, key, upload.UploadID))
		return
	}

	if uploadID := q.Get("uploadId"); uploadID != "" {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			writeS3Error(w, r, apierrors.New(apierrors.KindInvalidArgument, "failed to read request body"), bucket+"/"+key)
			return
		}
		order, err := parseCompleteMultipartOrder(body)
		if err != nil {
			writeS3Error(w, r, err, bucket+"/"+key)
			return
		}
		obj, err := b.CompleteMultipartUpload(uploadID, order)
		if err != nil {
			writeS3Error(w, r, err, bucket+"/"+key)
			return
		}
		location := "/" + bucket + "/" + key
		writeXML(w, http.StatusOK, FormatCompleteMultipartUpload(bucket, key, obj.ETag, location))
		return
	}

	writeS3Error(w, r, apierrors.New(apierrors.KindInvalidArgument, "unsupported POST operation"), bucket+"/"+key)
}

func metadataFromHeaders(h http.Header) ObjectMetadata {
	meta := ObjectMetadata{
		ContentType:        h.Get("Content-Type"),
		ContentEncoding:    h.Get("Content-Encoding"),
		ContentDisposition: h.Get("Content-Disposition"),
		ContentLanguage:    h.Get("Content-Language"),
		CacheControl:       h.Get("Cache-Control"),
		StorageClass:       "STANDARD",
	}
	for k := range h {
		if strings.HasPrefix(strings.ToLower(k), "x-amz-meta-") {
			if meta.UserMetadata == nil {
				meta.UserMetadata = map[string]string{}
			}
			name := strings.TrimPrefix(strings.ToLower(k), "x-amz-meta-")
			meta.UserMetadata[name] = h.Get(k)
		}
	}
	return meta
}

func writeObjectHeaders(w http.ResponseWriter, obj *StoredObject) {
	w.Header().Set("ETag", obj.ETag)
	w.Header().Set("Content-Length", strconv.Itoa(len(obj.Data)))
	w.Header().Set("Last-Modified", obj.LastModified.Format(http.TimeFormat))
	if obj.Metadata.ContentType != "" {
		w.Header().Set("Content-Type", obj.Metadata.ContentType)
	}
	if obj.Metadata.ContentEncoding != "" {
		w.Header().Set("Content-Encoding", obj.Metadata.ContentEncoding)
	}
	if obj.Metadata.ContentDisposition != "" {
		w.Header().Set("Content-Disposition", obj.Metadata.ContentDisposition)
	}
	if obj.Metadata.ContentLanguage != "" {
		w.Header().Set("Content-Language", obj.Metadata.ContentLanguage)
	}
	if obj.Metadata.CacheControl != "" {
		w.Header().Set("Cache-Control", obj.Metadata.CacheControl)
	}
	for k, v := range obj.Metadata.UserMetadata {
		w.Header().Set("x-amz-meta-"+k, v)
	}
}

func writeXML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(status)
	w.Write(body)
}

func writeS3Error(w http.ResponseWriter, r *http.Request, err error, resource string) {
	awsErr, ok := err.(*apierrors.AWSError)
	if !ok {
		awsErr = apierrors.Wrap(err, err.Error())
	}
	awsErr = awsErr.WithResource(resource)
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(awsErr.Kind.Status())
	w.Write(awsErr.ToS3XML())
}
