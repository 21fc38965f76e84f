// Package lambdastub answers requests classified as targeting the Lambda
// invocation surface. Full function execution is out of scope (see
// SPEC_FULL.md's Non-goals); this package only owns the boundary so the
// dispatcher has somewhere real to route Lambda-shaped requests instead of
// folding them into S3's catch-all.
package lambdastub

import (
	"net/http"

	"stackbox/internal/apierrors"
)

// Handler returns 501 Not Implemented with a ServiceException body for any
// request reaching the Lambda invocation surface.
//
// aws-lambda-go and aws-lambda-go-api-proxy describe the shape a real
// implementation would take (APIGatewayProxyRequest/Response translation
// over a handler registered with lambda.Start) but are not wired further,
// since this module never hosts a function runtime.
func Handler(w http.ResponseWriter, r *http.Request) {
	err := apierrors.New(apierrors.KindServiceException, "Lambda function invocation is not implemented")
	w.Header().Set("Content-Type", "application/x-amz-json-1.0")
	w.WriteHeader(http.StatusNotImplemented)
	w.Write(err.ToDynamoDBJSON())
}
