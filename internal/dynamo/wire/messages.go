package wire

import (
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// The AWS SDK's table-schema types (KeySchemaElement, AttributeDefinition,
// Projection, GlobalSecondaryIndex, LocalSecondaryIndex, ProvisionedThroughput)
// carry no smithy-internal exported fields beyond what the wire protocol
// itself needs, so encoding/json's default field-name matching reproduces the
// DynamoDB JSON wire shape without any hand-written struct tags.

// CreateTableRequest is the CreateTable request body.
type CreateTableRequest struct {
	TableName             string                          `json:"TableName"`
	KeySchema             []ddbtypes.KeySchemaElement     `json:"KeySchema"`
	AttributeDefinitions  []ddbtypes.AttributeDefinition  `json:"AttributeDefinitions"`
	GlobalSecondaryIndexes []ddbtypes.GlobalSecondaryIndex `json:"GlobalSecondaryIndexes,omitempty"`
	LocalSecondaryIndexes  []ddbtypes.LocalSecondaryIndex  `json:"LocalSecondaryIndexes,omitempty"`
}

// TableDescription is the shared table-shape used by CreateTable/DescribeTable
// responses.
type TableDescription struct {
	TableName              string                          `json:"TableName"`
	TableStatus             string                          `json:"TableStatus"`
	KeySchema               []ddbtypes.KeySchemaElement     `json:"KeySchema"`
	AttributeDefinitions    []ddbtypes.AttributeDefinition  `json:"AttributeDefinitions"`
	GlobalSecondaryIndexes  []ddbtypes.GlobalSecondaryIndex `json:"GlobalSecondaryIndexes,omitempty"`
	LocalSecondaryIndexes   []ddbtypes.LocalSecondaryIndex  `json:"LocalSecondaryIndexes,omitempty"`
	CreationDateTime        int64                           `json:"CreationDateTime"`
	ItemCount                int64                           `json:"ItemCount"`
}

// PutItemRequest is the PutItem request body.
type PutItemRequest struct {
	TableName                 string             `json:"TableName"`
	Item                      ItemMap            `json:"Item"`
	ConditionExpression       string             `json:"ConditionExpression,omitempty"`
	ExpressionAttributeNames  map[string]string  `json:"ExpressionAttributeNames,omitempty"`
	ExpressionAttributeValues ItemMap            `json:"ExpressionAttributeValues,omitempty"`
	ReturnValues              string             `json:"ReturnValues,omitempty"`
}

// PutItemResponse is the PutItem response body.
type PutItemResponse struct {
	Attributes ItemMap `json:"Attributes,omitempty"`
}

// GetItemRequest is the GetItem request body.
type GetItemRequest struct {
	TableName string  `json:"TableName"`
	Key       ItemMap `json:"Key"`
}

// GetItemResponse is the GetItem response body.
type GetItemResponse struct {
	Item ItemMap `json:"Item,omitempty"`
}

// DeleteItemRequest is the DeleteItem request body.
type DeleteItemRequest struct {
	TableName                 string            `json:"TableName"`
	Key                       ItemMap            `json:"Key"`
	ConditionExpression       string             `json:"ConditionExpression,omitempty"`
	ExpressionAttributeNames  map[string]string  `json:"ExpressionAttributeNames,omitempty"`
	ExpressionAttributeValues ItemMap            `json:"ExpressionAttributeValues,omitempty"`
	ReturnValues              string             `json:"ReturnValues,omitempty"`
}

// DeleteItemResponse is the DeleteItem response body.
type DeleteItemResponse struct {
	Attributes ItemMap `json:"Attributes,omitempty"`
}

// UpdateItemRequest is the UpdateItem request body.
type UpdateItemRequest struct {
	TableName                 string            `json:"TableName"`
	Key                       ItemMap            `json:"Key"`
	UpdateExpression          string             `json:"UpdateExpression"`
	ConditionExpression       string             `json:"ConditionExpression,omitempty"`
	ExpressionAttributeNames  map[string]string  `json:"ExpressionAttributeNames,omitempty"`
	ExpressionAttributeValues ItemMap            `json:"ExpressionAttributeValues,omitempty"`
	ReturnValues              string             `json:"ReturnValues,omitempty"`
}

// UpdateItemResponse is the UpdateItem response body.
type UpdateItemResponse struct {
	Attributes ItemMap `json:"Attributes,omitempty"`
}

// QueryRequest is the Query request body.
type QueryRequest struct {
	TableName                 string            `json:"TableName"`
	IndexName                 string             `json:"IndexName,omitempty"`
	KeyConditionExpression    string             `json:"KeyConditionExpression"`
	FilterExpression          string             `json:"FilterExpression,omitempty"`
	ExpressionAttributeNames  map[string]string  `json:"ExpressionAttributeNames,omitempty"`
	ExpressionAttributeValues ItemMap            `json:"ExpressionAttributeValues,omitempty"`
	ScanIndexForward          *bool              `json:"ScanIndexForward,omitempty"`
	Limit                     int                `json:"Limit,omitempty"`
	ExclusiveStartKey         ItemMap            `json:"ExclusiveStartKey,omitempty"`
}

// ScanRequest is the Scan request body.
type ScanRequest struct {
	TableName                 string            `json:"TableName"`
	IndexName                 string             `json:"IndexName,omitempty"`
	FilterExpression          string             `json:"FilterExpression,omitempty"`
	ExpressionAttributeNames  map[string]string  `json:"ExpressionAttributeNames,omitempty"`
	ExpressionAttributeValues ItemMap            `json:"ExpressionAttributeValues,omitempty"`
	Limit                     int                `json:"Limit,omitempty"`
	ExclusiveStartKey         ItemMap            `json:"ExclusiveStartKey,omitempty"`
}

// QueryResponse/ScanResponse share the same response shape.
type QueryResponse struct {
	Items            []ItemMap `json:"Items"`
	Count            int       `json:"Count"`
	ScannedCount     int       `json:"ScannedCount"`
	LastEvaluatedKey ItemMap   `json:"LastEvaluatedKey,omitempty"`
}

// BatchGetItemRequest is the BatchGetItem request body.
type BatchGetItemRequest struct {
	RequestItems map[string]KeysAndAttributes `json:"RequestItems"`
}

// KeysAndAttributes is the per-table key list in a BatchGetItem request.
type KeysAndAttributes struct {
	Keys []ItemMap `json:"Keys"`
}

// BatchGetItemResponse is the BatchGetItem response body.
type BatchGetItemResponse struct {
	Responses map[string][]ItemMap `json:"Responses"`
}

// BatchWriteItemRequest is the BatchWriteItem request body.
type BatchWriteItemRequest struct {
	RequestItems map[string][]WriteRequest `json:"RequestItems"`
}

// WriteRequest is one PutRequest or DeleteRequest entry in a BatchWriteItem
// call.
type WriteRequest struct {
	PutRequest    *PutRequest    `json:"PutRequest,omitempty"`
	DeleteRequest *DeleteRequest `json:"DeleteRequest,omitempty"`
}

type PutRequest struct {
	Item ItemMap `json:"Item"`
}

type DeleteRequest struct {
	Key ItemMap `json:"Key"`
}

// BatchWriteItemResponse is the BatchWriteItem response body. This engine
// never partially fails a batch, so UnprocessedItems is always empty.
type BatchWriteItemResponse struct {
	UnprocessedItems map[string][]WriteRequest `json:"UnprocessedItems"`
}

// ListTablesResponse is the ListTables response body.
type ListTablesResponse struct {
	TableNames []string `json:"TableNames"`
}

// DeleteTableRequest/DescribeTableRequest share the same shape.
type TableNameRequest struct {
	TableName string `json:"TableName"`
}

// DescribeTableResponse/CreateTableResponse/DeleteTableResponse share the same
// shape: a single "Table" key.
type TableResponse struct {
	Table TableDescription `json:"Table"`
}
