package dynamo

import (
	"stackbox/internal/apierrors"
	"stackbox/internal/dynamo/expr"
	"stackbox/internal/dynamo/wire"
)

func (s *Service) query(body []byte) (any, error) {
	req, err := decode[wire.QueryRequest](body)
	if err != nil {
		return nil, err
	}
	t, err := s.Registry.DescribeTable(req.TableName)
	if err != nil {
		return nil, err
	}

	kc, err := expr.ParseKeyCondition(req.KeyConditionExpression)
	if err != nil {
		return nil, apierrors.Wrap(err, "invalid KeyConditionExpression")
	}
	var filter *expr.Node
	if req.FilterExpression != "" {
		filter, err = expr.ParseCondition(req.FilterExpression)
		if err != nil {
			return nil, apierrors.Wrap(err, "invalid FilterExpression")
		}
	}
	ctx, err := buildSubstitutionContext(req.ExpressionAttributeNames, req.ExpressionAttributeValues)
	if err != nil {
		return nil, err
	}
	var startKey Item
	if len(req.ExclusiveStartKey) > 0 {
		startKey, err = wire.UnmarshalItem(req.ExclusiveStartKey)
		if err != nil {
			return nil, apierrors.Wrap(err, "invalid ExclusiveStartKey")
		}
	}

	scanForward := true
	if req.ScanIndexForward != nil {
		scanForward = *req.ScanIndexForward
	}

	result, err := t.Query(QueryInput{
		IndexName:         req.IndexName,
		KeyCondition:      kc,
		FilterExpression:  filter,
		Ctx:               ctx,
		ScanForward:       scanForward,
		Limit:             req.Limit,
		ExclusiveStartKey: startKey,
	})
	if err != nil {
		return nil, err
	}
	return toQueryResponse(result)
}

func (s *Service) scan(body []byte) (any, error) {
	req, err := decode[wire.ScanRequest](body)
	if err != nil {
		return nil, err
	}
	t, err := s.Registry.DescribeTable(req.TableName)
	if err != nil {
		return nil, err
	}

	var filter *expr.Node
	if req.FilterExpression != "" {
		filter, err = expr.ParseCondition(req.FilterExpression)
		if err != nil {
			return nil, apierrors.Wrap(err, "invalid FilterExpression")
		}
	}
	ctx, err := buildSubstitutionContext(req.ExpressionAttributeNames, req.ExpressionAttributeValues)
	if err != nil {
		return nil, err
	}
	var startKey Item
	if len(req.ExclusiveStartKey) > 0 {
		startKey, err = wire.UnmarshalItem(req.ExclusiveStartKey)
		if err != nil {
			return nil, apierrors.Wrap(err, "invalid ExclusiveStartKey")
		}
	}

	result, err := t.Scan(QueryInput{
		IndexName:         req.IndexName,
		FilterExpression:  filter,
		Ctx:               ctx,
		Limit:             req.Limit,
		ExclusiveStartKey: startKey,
	})
	if err != nil {
		return nil, err
	}
	return toQueryResponse(result)
}

func toQueryResponse(result *QueryResult) (*wire.QueryResponse, error) {
	items := make([]wire.ItemMap, len(result.Items))
	for i, item := range result.Items {
		wireItem, err := wire.MarshalItem(item)
		if err != nil {
			return nil, err
		}
		items[i] = wireItem
	}
	resp := &wire.QueryResponse{
		Items:        items,
		Count:        result.Count,
		ScannedCount: result.ScannedCount,
	}
	if result.LastEvaluatedKey != nil {
		wireKey, err := wire.MarshalItem(result.LastEvaluatedKey)
		if err != nil {
			return nil, err
		}
		resp.LastEvaluatedKey = wireKey
	}
	return resp, nil
}

func (s *Service) batchGetItem(body []byte) (any, error) {
	req, err := decode[wire.BatchGetItemRequest](body)
	if err != nil {
		return nil, err
	}
	responses := map[string][]wire.ItemMap{}
	for tableName, keysAndAttrs := range req.RequestItems {
		t, err := s.Registry.DescribeTable(tableName)
		if err != nil {
			return nil, err
		}
		var items []wire.ItemMap
		for _, rawKey := range keysAndAttrs.Keys {
			key, err := wire.UnmarshalItem(rawKey)
			if err != nil {
				return nil, apierrors.Wrap(err, "invalid key in BatchGetItem")
			}
			item, ok, err := t.GetItem(key)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			wireItem, err := wire.MarshalItem(item)
			if err != nil {
				return nil, err
			}
			items = append(items, wireItem)
		}
		responses[tableName] = items
	}
	return wire.BatchGetItemResponse{Responses: responses}, nil
}

func (s *Service) batchWriteItem(body []byte) (any, error) {
	req, err := decode[wire.BatchWriteItemRequest](body)
	if err != nil {
		return nil, err
	}

	// Validate every table exists and every request well-formed before
	// applying any mutation, so a batch never partially fails.
	tables := map[string]*Table{}
	for tableName, writes := range req.RequestItems {
		t, err := s.Registry.DescribeTable(tableName)
		if err != nil {
			return nil, err
		}
		tables[tableName] = t
		for _, w := range writes {
			if (w.PutRequest == nil) == (w.DeleteRequest == nil) {
				return nil, apierrors.New(apierrors.KindValidationException, "each write request must set exactly one of PutRequest or DeleteRequest")
			}
			var raw wire.ItemMap
			if w.PutRequest != nil {
				raw = w.PutRequest.Item
			} else {
				raw = w.DeleteRequest.Key
			}
			decoded, err := wire.UnmarshalItem(raw)
			if err != nil {
				return nil, apierrors.Wrap(err, "invalid request in BatchWriteItem")
			}
			if _, err := t.primaryKeyFor(decoded); err != nil {
				return nil, err
			}
		}
	}

	for tableName, writes := range req.RequestItems {
		t := tables[tableName]
		for _, w := range writes {
			if w.PutRequest != nil {
				item, err := wire.UnmarshalItem(w.PutRequest.Item)
				if err != nil {
					return nil, apierrors.Wrap(err, "invalid item in BatchWriteItem")
				}
				if _, err := t.PutItem(item, nil, nil); err != nil {
					return nil, err
				}
			} else {
				key, err := wire.UnmarshalItem(w.DeleteRequest.Key)
				if err != nil {
					return nil, apierrors.Wrap(err, "invalid key in BatchWriteItem")
				}
				if _, _, err := t.DeleteItem(key, nil, nil); err != nil {
					return nil, err
				}
			}
		}
	}

	return wire.BatchWriteItemResponse{UnprocessedItems: map[string][]wire.WriteRequest{}}, nil
}
