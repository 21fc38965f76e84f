package dynamo

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"stackbox/internal/apierrors"
	"stackbox/internal/dynamo/expr"
	"stackbox/internal/dynamo/wire"
	"stackbox/internal/logging"
)

// Service is the HTTP front for the DynamoDB engine: it parses the
// X-Amz-Target header, decodes the JSON body, dispatches to the Registry/
// Table methods, and renders the result (or error) back to the wire.
type Service struct {
	Registry *Registry
}

// NewService builds a DynamoDB service backed by a fresh table registry.
func NewService(clock func() int64) *Service {
	return &Service{Registry: NewRegistry(clock)}
}

const targetPrefix = "DynamoDB_20120810."

// Action extracts the operation name from an X-Amz-Target header value, e.g.
// "DynamoDB_20120810.PutItem" -> "PutItem".
func Action(target string) (string, bool) {
	if !strings.HasPrefix(target, targetPrefix) {
		return "", false
	}
	return strings.TrimPrefix(target, targetPrefix), true
}

func (s *Service) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	target := r.Header.Get("X-Amz-Target")
	action, ok := Action(target)
	if !ok {
		s.writeError(w, r, apierrors.Newf(apierrors.KindValidationException, "missing or unrecognized X-Amz-Target %q", target))
		return
	}
	ctx := logging.WithOperation(r.Context(), action)
	*r = *r.WithContext(ctx)

	body, err := readAll(r)
	if err != nil {
		s.writeError(w, r, apierrors.Wrap(err, "failed to read request body"))
		return
	}

	var result any
	var opErr error

	switch action {
	case "CreateTable":
		result, opErr = s.createTable(body)
	case "DeleteTable":
		result, opErr = s.deleteTable(body)
	case "DescribeTable":
		result, opErr = s.describeTable(body)
	case "ListTables":
		result, opErr = s.listTables(body)
	case "PutItem":
		result, opErr = s.putItem(body)
	case "GetItem":
		result, opErr = s.getItem(body)
	case "DeleteItem":
		result, opErr = s.deleteItem(body)
	case "UpdateItem":
		result, opErr = s.updateItem(body)
	case "Query":
		result, opErr = s.query(body)
	case "Scan":
		result, opErr = s.scan(body)
	case "BatchGetItem":
		result, opErr = s.batchGetItem(body)
	case "BatchWriteItem":
		result, opErr = s.batchWriteItem(body)
	default:
		opErr = apierrors.Newf(apierrors.KindValidationException, "unknown operation %q", action)
	}

	if opErr != nil {
		s.writeError(w, r, opErr)
		return
	}
	s.writeJSON(w, result)
}

func readAll(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	defer r.Body.Close()
	buf := make([]byte, 0, 4096)
	chunk := make([]byte, 4096)
	for {
		n, err := r.Body.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
		}
		if err != nil {
			break
		}
	}
	return buf, nil
}

func (s *Service) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/x-amz-json-1.0")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Service) writeError(w http.ResponseWriter, r *http.Request, err error) {
	awsErr, ok := err.(*apierrors.AWSError)
	if !ok {
		awsErr = apierrors.Wrap(err, "internal error")
	}
	w.Header().Set("Content-Type", "application/x-amz-json-1.0")
	w.WriteHeader(awsErr.Kind.Status())
	_, _ = w.Write(awsErr.ToDynamoDBJSON())
}

func buildSubstitutionContext(names map[string]string, values wire.ItemMap) (*expr.SubstitutionContext, error) {
	vals, err := wire.UnmarshalItem(values)
	if err != nil {
		return nil, fmt.Errorf("invalid ExpressionAttributeValues: %w", err)
	}
	return &expr.SubstitutionContext{Names: names, Values: vals}, nil
}

func toTableDescription(t *Table) wire.TableDescription {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var gsis []ddbtypes.GlobalSecondaryIndex
	var lsis []ddbtypes.LocalSecondaryIndex
	for _, idx := range t.indexes {
		hasRange := false
		for _, e := range idx.KeySchema {
			if e.KeyType == ddbtypes.KeyTypeRange {
				hasRange = true
			}
		}
		if hasRange && !sameKeySchemaPrefix(idx.KeySchema, t.KeySchema) {
			gsis = append(gsis, ddbtypes.GlobalSecondaryIndex{
				IndexName:  strPtr(idx.Name),
				KeySchema:  idx.KeySchema,
				Projection: idx.Projection,
			})
		} else {
			lsis = append(lsis, ddbtypes.LocalSecondaryIndex{
				IndexName:  strPtr(idx.Name),
				KeySchema:  idx.KeySchema,
				Projection: idx.Projection,
			})
		}
	}
	return wire.TableDescription{
		TableName:              t.Name,
		TableStatus:            string(t.Status),
		KeySchema:              t.KeySchema,
		AttributeDefinitions:   t.AttributeDefinitions,
		GlobalSecondaryIndexes: gsis,
		LocalSecondaryIndexes:  lsis,
		CreationDateTime:       t.CreatedAt,
		ItemCount:              int64(len(t.items)),
	}
}

func sameKeySchemaPrefix(a, b []ddbtypes.KeySchemaElement) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	return *a[0].AttributeName == *b[0].AttributeName
}

func strPtr(s string) *string { return &s }
