package dynamo

import (
	"sort"

	"stackbox/internal/apierrors"
	"stackbox/internal/dynamo/expr"
)

// QueryInput gathers the parameters of a Query or Scan call. KeyCondition is
// nil for Scan.
type QueryInput struct {
	IndexName         string
	KeyCondition      *expr.KeyCondition
	FilterExpression  *expr.Node
	Ctx               *expr.SubstitutionContext
	ScanForward       bool
	Limit             int // 0 means unlimited
	ExclusiveStartKey Item
}

// QueryResult is the result of a Query or Scan call.
type QueryResult struct {
	Items            []Item
	Count            int
	ScannedCount     int
	LastEvaluatedKey Item
}

// Query evaluates a KeyConditionExpression (required) and optional
// FilterExpression over the table or a named index, in sort-key order.
func (t *Table) Query(in QueryInput) (*QueryResult, error) {
	return t.queryOrScan(in, true)
}

// Scan evaluates an optional FilterExpression over every item in the table or
// a named index; item order is unspecified beyond whatever the underlying
// candidate set yields.
func (t *Table) Scan(in QueryInput) (*QueryResult, error) {
	return t.queryOrScan(in, false)
}

func (t *Table) queryOrScan(in QueryInput, isQuery bool) (*QueryResult, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	candidates, sortKeyName, err := t.candidateSet(in.IndexName)
	if err != nil {
		return nil, err
	}

	var matched []Item
	scanned := 0
	for _, item := range candidates {
		scanned++
		if isQuery {
			ok, err := expr.EvaluateKeyCondition(in.KeyCondition, item, in.Ctx)
			if err != nil {
				return nil, apierrors.Wrap(err, "KeyConditionExpression evaluation failed")
			}
			if !ok {
				continue
			}
		}
		if in.FilterExpression != nil {
			ok, err := expr.Evaluate(in.FilterExpression, item, in.Ctx)
			if err != nil {
				return nil, apierrors.Wrap(err, "FilterExpression evaluation failed")
			}
			if !ok {
				continue
			}
		}
		matched = append(matched, item)
	}

	if isQuery && sortKeyName != "" {
		sort.SliceStable(matched, func(i, j int) bool {
			cmp := expr.Compare(matched[i][sortKeyName], matched[j][sortKeyName])
			if in.ScanForward {
				return cmp < 0
			}
			return cmp > 0
		})
	}

	start := 0
	if in.ExclusiveStartKey != nil {
		startPK, err := t.primaryKeyOf(in.ExclusiveStartKey, in.IndexName)
		if err != nil {
			return nil, err
		}
		for i, item := range matched {
			pk, _ := t.primaryKeyFor(item)
			if pk == startPK {
				start = i + 1
				break
			}
		}
	}
	matched = matched[start:]

	result := &QueryResult{ScannedCount: scanned}
	if in.Limit > 0 && len(matched) > in.Limit {
		result.Items = cloneAll(matched[:in.Limit])
		result.LastEvaluatedKey = t.extractKey(matched[in.Limit-1])
	} else {
		result.Items = cloneAll(matched)
	}
	result.Count = len(result.Items)
	return result, nil
}

// primaryKeyOf computes the table's own primary key string for an item drawn
// from an index's key schema (ExclusiveStartKey always carries the full
// primary key regardless of which index is being queried).
func (t *Table) primaryKeyOf(item Item, indexName string) (string, error) {
	return t.primaryKeyFor(item)
}

// candidateSet returns the items to consider (the whole table, or everything
// reachable through a named secondary index) plus that index's sort-key
// attribute name (empty for Scan or an index without a range key).
func (t *Table) candidateSet(indexName string) ([]Item, string, error) {
	if indexName == "" {
		items := make([]Item, 0, len(t.items))
		for _, item := range t.items {
			items = append(items, item)
		}
		return items, t.rangeKeyName(), nil
	}

	idx, ok := t.indexes[indexName]
	if !ok {
		return nil, "", apierrors.Newf(apierrors.KindValidationException, "index %q does not exist on table %q", indexName, t.Name)
	}
	var items []Item
	for _, pk := range idx.primaryKeys() {
		items = append(items, t.items[pk])
	}
	return items, idx.rangeKeyName(), nil
}

func cloneAll(items []Item) []Item {
	out := make([]Item, len(items))
	for i, item := range items {
		out[i] = cloneItem(item)
	}
	return out
}
