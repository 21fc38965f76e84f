package objectstore

import (
	"encoding/xml"
	"sort"

	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"stackbox/internal/apierrors"
)

// completeMultipartUploadRequest mirrors the CompleteMultipartUpload request
// body's <Part> list; parseCompleteMultipartOrder converts each entry to the
// SDK's CompletedPart.
type completeMultipartUploadRequest struct {
	XMLName xml.Name `xml:"CompleteMultipartUpload"`
	Parts   []struct {
		PartNumber int32  `xml:"PartNumber"`
		ETag       string `xml:"ETag"`
	} `xml:"Part"`
}

// parseCompleteMultipartOrder reads the part order a CompleteMultipartUpload
// request names, validated to be strictly increasing per spec (out-of-order
// or duplicate part numbers are rejected as InvalidPartOrder).
func parseCompleteMultipartOrder(body []byte) ([]int, error) {
	var req completeMultipartUploadRequest
	if err := xml.Unmarshal(body, &req); err != nil {
		return nil, apierrors.New(apierrors.KindInvalidArgument, "malformed CompleteMultipartUpload request body")
	}

	completed := make([]s3types.CompletedPart, 0, len(req.Parts))
	for _, p := range req.Parts {
		partNumber := p.PartNumber
		etag := p.ETag
		completed = append(completed, s3types.CompletedPart{PartNumber: &partNumber, ETag: &etag})
	}

	order := make([]int, 0, len(completed))
	for _, p := range completed {
		order = append(order, int(*p.PartNumber))
	}

	if !sort.IntsAreSorted(order) {
		return nil, apierrors.New(apierrors.KindInvalidPartOrder, "the list of parts was not in ascending order")
	}
	for i := 1; i < len(order); i++ {
		if order[i] == order[i-1] {
			return nil, apierrors.New(apierrors.KindInvalidPartOrder, "duplicate part number in completion request")
		}
	}

	return order, nil
}
