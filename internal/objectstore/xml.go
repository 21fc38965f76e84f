package objectstore

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"
)

const xmlns = `xmlns="http://s3.amazonaws.com/doc/2006-03-01/"`

func xmlEscape(s string) string {
	r := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&apos;",
	)
	return r.Replace(s)
}

func formatTime(t time.Time) string {
	return t.Format("2006-01-02T15:04:05.000Z")
}

// FormatListBuckets renders a ListBuckets response body.
func FormatListBuckets(buckets []BucketInfo) []byte {
	var b strings.Builder
	b.WriteString(xml.Header)
	fmt.Fprintf(&b, "<ListAllMyBucketsResult %s>\n", xmlns)
	b.WriteString("  <Owner>\n    <ID>000000000000</ID>\n    <DisplayName>stackbox</DisplayName>\n  </Owner>\n")
	b.WriteString("  <Buckets>\n")
	for _, bucket := range buckets {
		fmt.Fprintf(&b, "    <Bucket>\n      <Name>%s</Name>\n      <CreationDate>%s</CreationDate>\n    </Bucket>\n",
			xmlEscape(bucket.Name), formatTime(bucket.CreatedAt))
	}
	b.WriteString("  </Buckets>\n</ListAllMyBucketsResult>")
	return []byte(b.String())
}

// ListObjectsParams carries the echoed request parameters a ListObjectsV2
// response must include.
type ListObjectsParams struct {
	Bucket                string
	Prefix                string
	Delimiter             string
	NextContinuationToken string
}

// FormatListObjects renders a ListObjectsV2 response body.
func FormatListObjects(params ListObjectsParams, result ListObjectsResult) []byte {
	var b strings.Builder
	b.WriteString(xml.Header)
	fmt.Fprintf(&b, "<ListBucketResult %s>\n", xmlns)
	fmt.Fprintf(&b, "  <Name>%s</Name>\n", xmlEscape(params.Bucket))
	if params.Prefix != "" {
		fmt.Fprintf(&b, "  <Prefix>%s</Prefix>\n", xmlEscape(params.Prefix))
	} else {
		b.WriteString("  <Prefix/>\n")
	}
	if params.Delimiter != "" {
		fmt.Fprintf(&b, "  <Delimiter>%s</Delimiter>\n", xmlEscape(params.Delimiter))
	}
	fmt.Fprintf(&b, "  <MaxKeys>1000</MaxKeys>\n  <IsTruncated>%t</IsTruncated>\n", result.IsTruncated)
	if params.NextContinuationToken != "" {
		fmt.Fprintf(&b, "  <NextContinuationToken>%s</NextContinuationToken>\n", params.NextContinuationToken)
	}
	for _, obj := range result.Contents {
		fmt.Fprintf(&b, "  <Contents>\n    <Key>%s</Key>\n    <LastModified>%s</LastModified>\n    <ETag>%s</ETag>\n    <Size>%d</Size>\n    <StorageClass>STANDARD</StorageClass>\n  </Contents>\n",
			xmlEscape(obj.Key), formatTime(obj.LastModified), xmlEscape(obj.ETag), obj.Size)
	}
	for _, prefix := range result.CommonPrefixes {
		fmt.Fprintf(&b, "  <CommonPrefixes>\n    <Prefix>%s</Prefix>\n  </CommonPrefixes>\n", xmlEscape(prefix))
	}
	b.WriteString("</ListBucketResult>")
	return []byte(b.String())
}

// FormatCopyObjectResult renders a CopyObject response body.
func FormatCopyObjectResult(etag, lastModified string) []byte {
	var b strings.Builder
	b.WriteString(xml.Header)
	b.WriteString("<CopyObjectResult>\n")
	fmt.Fprintf(&b, "  <ETag>%s</ETag>\n  <LastModified>%s</LastModified>\n", etag, lastModified)
	b.WriteString("</CopyObjectResult>")
	return []byte(b.String())
}

// FormatCreateMultipartUpload renders an InitiateMultipartUpload response body.
func FormatCreateMultipartUpload(bucket, key, uploadID string) []byte {
	var b strings.Builder
	b.WriteString(xml.Header)
	fmt.Fprintf(&b, "<InitiateMultipartUploadResult %s>\n", xmlns)
	fmt.Fprintf(&b, "  <Bucket>%s</Bucket>\n  <Key>%s</Key>\n  <UploadId>%s</UploadId>\n",
		xmlEscape(bucket), xmlEscape(key), uploadID)
	b.WriteString("</InitiateMultipartUploadResult>")
	return []byte(b.String())
}

// FormatCompleteMultipartUpload renders a CompleteMultipartUpload response body.
func FormatCompleteMultipartUpload(bucket, key, etag, location string) []byte {
	var b strings.Builder
	b.WriteString(xml.Header)
	fmt.Fprintf(&b, "<CompleteMultipartUploadResult %s>\n", xmlns)
	fmt.Fprintf(&b, "  <Location>%s</Location>\n  <Bucket>%s</Bucket>\n  <Key>%s</Key>\n  <ETag>%s</ETag>\n",
		xmlEscape(location), xmlEscape(bucket), xmlEscape(key), etag)
	b.WriteString("</CompleteMultipartUploadResult>")
	return []byte(b.String())
}

// FormatAbortMultipartUpload renders an AbortMultipartUpload response body.
func FormatAbortMultipartUpload() []byte {
	var b strings.Builder
	b.WriteString(xml.Header)
	fmt.Fprintf(&b, "<AbortMultipartUploadResult %s>\n</AbortMultipartUploadResult>", xmlns)
	return []byte(b.String())
}

// FormatListMultipartUploads renders a ListMultipartUploads response body.
func FormatListMultipartUploads(bucket string, uploads []MultipartUploadInfo) []byte {
	var b strings.Builder
	b.WriteString(xml.Header)
	fmt.Fprintf(&b, "<ListMultipartUploadsResult %s>\n", xmlns)
	fmt.Fprintf(&b, "  <Bucket>%s</Bucket>\n  <KeyMarker/>\n  <UploadIdMarker/>\n", xmlEscape(bucket))
	if len(uploads) > 0 {
		b.WriteString("  <Uploads>\n")
		for _, u := range uploads {
			fmt.Fprintf(&b, "    <Upload>\n      <Key>%s</Key>\n      <UploadId>%s</UploadId>\n      <Initiator>\n        <ID>000000000000</ID>\n        <DisplayName>stackbox</DisplayName>\n      </Initiator>\n      <Owner>\n        <ID>000000000000</ID>\n        <DisplayName>stackbox</DisplayName>\n      </Owner>\n      <StorageClass>STANDARD</StorageClass>\n      <Initiated>%s</Initiated>\n    </Upload>\n",
				xmlEscape(u.Key), u.UploadID, formatTime(u.Initiated))
		}
		b.WriteString("  </Uploads>\n")
	}
	b.WriteString("</ListMultipartUploadsResult>")
	return []byte(b.String())
}

// FormatListParts renders a ListParts response body.
func FormatListParts(bucket, key, uploadID string, parts []PartInfo) []byte {
	var b strings.Builder
	b.WriteString(xml.Header)
	fmt.Fprintf(&b, "<ListPartsResult %s>\n", xmlns)
	fmt.Fprintf(&b, "  <Bucket>%s</Bucket>\n  <Key>%s</Key>\n  <UploadId>%s</UploadId>\n  <StorageClass>STANDARD</StorageClass>\n  <IsTruncated>false</IsTruncated>\n",
		xmlEscape(bucket), xmlEscape(key), uploadID)
	if len(parts) > 0 {
		b.WriteString("  <Parts>\n")
		for _, p := range parts {
			fmt.Fprintf(&b, "    <Part>\n      <PartNumber>%d</PartNumber>\n      <ETag>%s</ETag>\n      <Size>%d</Size>\n    </Part>\n",
				p.PartNumber, p.ETag, p.Size)
		}
		b.WriteString("  </Parts>\n")
	}
	b.WriteString("</ListPartsResult>")
	return []byte(b.String())
}
