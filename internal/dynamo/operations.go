package dynamo

import (
	"encoding/json"

	"stackbox/internal/apierrors"
	"stackbox/internal/dynamo/expr"
	"stackbox/internal/dynamo/wire"
)

func decode[T any](body []byte) (T, error) {
	var v T
	if len(body) > 0 {
		if err := json.Unmarshal(body, &v); err != nil {
			return v, apierrors.Wrap(err, "failed to parse request body")
		}
	}
	return v, nil
}

func (s *Service) createTable(body []byte) (any, error) {
	req, err := decode[wire.CreateTableRequest](body)
	if err != nil {
		return nil, err
	}
	t, err := s.Registry.CreateTable(req.TableName, req.KeySchema, req.AttributeDefinitions, req.GlobalSecondaryIndexes, req.LocalSecondaryIndexes)
	if err != nil {
		return nil, err
	}
	return wire.TableResponse{Table: toTableDescription(t)}, nil
}

func (s *Service) deleteTable(body []byte) (any, error) {
	req, err := decode[wire.TableNameRequest](body)
	if err != nil {
		return nil, err
	}
	t, err := s.Registry.DeleteTable(req.TableName)
	if err != nil {
		return nil, err
	}
	return wire.TableResponse{Table: toTableDescription(t)}, nil
}

func (s *Service) describeTable(body []byte) (any, error) {
	req, err := decode[wire.TableNameRequest](body)
	if err != nil {
		return nil, err
	}
	t, err := s.Registry.DescribeTable(req.TableName)
	if err != nil {
		return nil, err
	}
	return wire.TableResponse{Table: toTableDescription(t)}, nil
}

func (s *Service) listTables(body []byte) (any, error) {
	return wire.ListTablesResponse{TableNames: s.Registry.ListTables()}, nil
}

func (s *Service) putItem(body []byte) (any, error) {
	req, err := decode[wire.PutItemRequest](body)
	if err != nil {
		return nil, err
	}
	t, err := s.Registry.DescribeTable(req.TableName)
	if err != nil {
		return nil, err
	}
	item, err := wire.UnmarshalItem(req.Item)
	if err != nil {
		return nil, apierrors.Wrap(err, "invalid Item")
	}

	var cond *expr.Node
	if req.ConditionExpression != "" {
		cond, err = expr.ParseCondition(req.ConditionExpression)
		if err != nil {
			return nil, apierrors.Wrap(err, "invalid ConditionExpression")
		}
	}
	ctx, err := buildSubstitutionContext(req.ExpressionAttributeNames, req.ExpressionAttributeValues)
	if err != nil {
		return nil, apierrors.Wrap(err, "invalid expression attributes")
	}

	old, err := t.PutItem(item, cond, ctx)
	if err != nil {
		return nil, err
	}

	resp := wire.PutItemResponse{}
	if req.ReturnValues == "ALL_OLD" && old != nil {
		wireOld, err := wire.MarshalItem(old)
		if err != nil {
			return nil, err
		}
		resp.Attributes = wireOld
	}
	return resp, nil
}

func (s *Service) getItem(body []byte) (any, error) {
	req, err := decode[wire.GetItemRequest](body)
	if err != nil {
		return nil, err
	}
	t, err := s.Registry.DescribeTable(req.TableName)
	if err != nil {
		return nil, err
	}
	key, err := wire.UnmarshalItem(req.Key)
	if err != nil {
		return nil, apierrors.Wrap(err, "invalid Key")
	}
	item, ok, err := t.GetItem(key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return wire.GetItemResponse{}, nil
	}
	wireItem, err := wire.MarshalItem(item)
	if err != nil {
		return nil, err
	}
	return wire.GetItemResponse{Item: wireItem}, nil
}

func (s *Service) deleteItem(body []byte) (any, error) {
	req, err := decode[wire.DeleteItemRequest](body)
	if err != nil {
		return nil, err
	}
	t, err := s.Registry.DescribeTable(req.TableName)
	if err != nil {
		return nil, err
	}
	key, err := wire.UnmarshalItem(req.Key)
	if err != nil {
		return nil, apierrors.Wrap(err, "invalid Key")
	}

	var cond *expr.Node
	if req.ConditionExpression != "" {
		cond, err = expr.ParseCondition(req.ConditionExpression)
		if err != nil {
			return nil, apierrors.Wrap(err, "invalid ConditionExpression")
		}
	}
	ctx, err := buildSubstitutionContext(req.ExpressionAttributeNames, req.ExpressionAttributeValues)
	if err != nil {
		return nil, err
	}

	old, existed, err := t.DeleteItem(key, cond, ctx)
	if err != nil {
		return nil, err
	}

	resp := wire.DeleteItemResponse{}
	if req.ReturnValues == "ALL_OLD" && existed {
		wireOld, err := wire.MarshalItem(old)
		if err != nil {
			return nil, err
		}
		resp.Attributes = wireOld
	}
	return resp, nil
}

func (s *Service) updateItem(body []byte) (any, error) {
	req, err := decode[wire.UpdateItemRequest](body)
	if err != nil {
		return nil, err
	}
	t, err := s.Registry.DescribeTable(req.TableName)
	if err != nil {
		return nil, err
	}
	key, err := wire.UnmarshalItem(req.Key)
	if err != nil {
		return nil, apierrors.Wrap(err, "invalid Key")
	}

	update, err := expr.ParseUpdate(req.UpdateExpression)
	if err != nil {
		return nil, apierrors.Wrap(err, "invalid UpdateExpression")
	}
	var cond *expr.Node
	if req.ConditionExpression != "" {
		cond, err = expr.ParseCondition(req.ConditionExpression)
		if err != nil {
			return nil, apierrors.Wrap(err, "invalid ConditionExpression")
		}
	}
	ctx, err := buildSubstitutionContext(req.ExpressionAttributeNames, req.ExpressionAttributeValues)
	if err != nil {
		return nil, err
	}

	rv := ReturnValues(req.ReturnValues)
	if rv == "" {
		rv = ReturnNone
	}
	before, after, err := t.UpdateItem(key, update, cond, ctx, rv)
	if err != nil {
		return nil, err
	}

	resp := wire.UpdateItemResponse{}
	switch rv {
	case ReturnAllOld, ReturnUpdatedOld:
		if before != nil {
			wireItem, err := wire.MarshalItem(before)
			if err != nil {
				return nil, err
			}
			resp.Attributes = wireItem
		}
	case ReturnAllNew, ReturnUpdatedNew:
		if after != nil {
			wireItem, err := wire.MarshalItem(after)
			if err != nil {
				return nil, err
			}
			resp.Attributes = wireItem
		}
	}
	return resp, nil
}
