// Package apierrors generalizes the project's typed-error convention into the
// two wire envelopes the dispatcher speaks: S3's XML error document and
// DynamoDB's JSON error body.
package apierrors

import (
	"encoding/xml"
	"fmt"
	"net/http"
)

// ErrorKind is a service-neutral AWS error code. The same kind renders to
// either wire envelope depending on which engine raised it.
type ErrorKind string

const (
	// S3
	KindNoSuchBucket            ErrorKind = "NoSuchBucket"
	KindBucketAlreadyExists     ErrorKind = "BucketAlreadyExists"
	KindBucketAlreadyOwnedByYou ErrorKind = "BucketAlreadyOwnedByYou"
	KindBucketNotEmpty          ErrorKind = "BucketNotEmpty"
	KindNoSuchKey                ErrorKind = "NoSuchKey"
	KindNoSuchUpload             ErrorKind = "NoSuchUpload"
	KindInvalidPart              ErrorKind = "InvalidPart"
	KindInvalidPartOrder         ErrorKind = "InvalidPartOrder"
	KindInvalidBucketName        ErrorKind = "InvalidBucketName"
	KindInvalidArgument          ErrorKind = "InvalidArgument"
	KindMethodNotAllowed         ErrorKind = "MethodNotAllowed"

	// DynamoDB
	KindResourceNotFoundException            ErrorKind = "ResourceNotFoundException"
	KindResourceInUseException                ErrorKind = "ResourceInUseException"
	KindConditionalCheckFailedException       ErrorKind = "ConditionalCheckFailedException"
	KindValidationException                   ErrorKind = "ValidationException"
	KindItemCollectionSizeLimitExceededException ErrorKind = "ItemCollectionSizeLimitExceededException"

	// Shared
	KindInternalError     ErrorKind = "InternalError"
	KindServiceException  ErrorKind = "ServiceException"
	KindNotImplemented    ErrorKind = "NotImplemented"
)

// statusByKind mirrors ruststack-core's ErrorCode::http_status table.
var statusByKind = map[ErrorKind]int{
	KindNoSuchBucket:            http.StatusNotFound,
	KindBucketAlreadyExists:     http.StatusConflict,
	KindBucketAlreadyOwnedByYou: http.StatusConflict,
	KindBucketNotEmpty:          http.StatusConflict,
	KindNoSuchKey:                http.StatusNotFound,
	KindNoSuchUpload:             http.StatusNotFound,
	KindInvalidPart:              http.StatusBadRequest,
	KindInvalidPartOrder:         http.StatusBadRequest,
	KindInvalidBucketName:        http.StatusBadRequest,
	KindInvalidArgument:          http.StatusBadRequest,
	KindMethodNotAllowed:         http.StatusMethodNotAllowed,

	KindResourceNotFoundException:                http.StatusBadRequest,
	KindResourceInUseException:                   http.StatusBadRequest,
	KindConditionalCheckFailedException:          http.StatusBadRequest,
	KindValidationException:                      http.StatusBadRequest,
	KindItemCollectionSizeLimitExceededException: http.StatusBadRequest,

	KindInternalError:    http.StatusInternalServerError,
	KindServiceException: http.StatusInternalServerError,
	KindNotImplemented:   http.StatusNotImplemented,
}

// Status returns the HTTP status code a kind renders with.
func (k ErrorKind) Status() int {
	if s, ok := statusByKind[k]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// AWSError is the error type every engine operation returns on failure.
type AWSError struct {
	Kind      ErrorKind
	Message   string
	Resource  string
	RequestID string
	Err       error
}

func (e *AWSError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AWSError) Unwrap() error { return e.Err }

// New builds an AWSError of the given kind.
func New(kind ErrorKind, message string) *AWSError {
	return &AWSError{Kind: kind, Message: message}
}

// Newf builds an AWSError with a formatted message.
func Newf(kind ErrorKind, format string, args ...any) *AWSError {
	return &AWSError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithResource attaches the S3-style resource path (e.g. "/bucket/key").
func (e *AWSError) WithResource(resource string) *AWSError {
	e.Resource = resource
	return e
}

// WithRequestID attaches the request id assigned by the dispatcher.
func (e *AWSError) WithRequestID(id string) *AWSError {
	e.RequestID = id
	return e
}

// Wrap converts an arbitrary error into an internal AWSError, preserving an
// existing AWSError's kind instead of flattening it.
func Wrap(err error, message string) *AWSError {
	if err == nil {
		return nil
	}
	if awsErr, ok := err.(*AWSError); ok {
		return &AWSError{
			Kind:    awsErr.Kind,
			Message: fmt.Sprintf("%s: %s", message, awsErr.Message),
			Err:     awsErr.Err,
		}
	}
	return &AWSError{Kind: KindInternalError, Message: message, Err: err}
}

// IsKind reports whether err is an AWSError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	awsErr, ok := err.(*AWSError)
	return ok && awsErr.Kind == kind
}

// s3XMLError is the wire shape of an S3 <Error> document.
type s3XMLError struct {
	XMLName   xml.Name `xml:"Error"`
	Code      string   `xml:"Code"`
	Message   string   `xml:"Message"`
	Resource  string   `xml:"Resource,omitempty"`
	RequestID string   `xml:"RequestId"`
}

// ToS3XML renders e as an S3 error document (application/xml body).
func (e *AWSError) ToS3XML() []byte {
	doc := s3XMLError{
		Code:      string(e.Kind),
		Message:   e.Message,
		Resource:  e.Resource,
		RequestID: e.RequestID,
	}
	out, _ := xml.MarshalIndent(doc, "", "  ")
	return append([]byte(xml.Header), out...)
}

// dynamoJSONError is the wire shape of a DynamoDB JSON error body.
type dynamoJSONError struct {
	Type    string `json:"__type"`
	Message string `json:"message"`
}

// ToDynamoDBJSON renders e as a DynamoDB JSON error body
// (application/x-amz-json-1.0).
func (e *AWSError) ToDynamoDBJSON() []byte {
	return mustMarshalDynamoError(dynamoJSONError{
		Type:    "com.amazonaws.dynamodb.v20120810#" + string(e.Kind),
		Message: e.Message,
	})
}
