// Package dynamo implements the in-memory DynamoDB table registry, item
// store, and Query/Scan engine.
package dynamo

import (
	"sort"
	"strings"
	"sync"

	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"stackbox/internal/apierrors"
)

// Item is an attribute map, reusing the AWS SDK's own tagged-union
// AttributeValue as the per-attribute representation.
type Item = map[string]ddbtypes.AttributeValue

// SecondaryIndex maintains an index-key -> set-of-primary-keys membership
// map alongside the table's items, updated in lockstep with every mutation so
// a lookup through the index never observes a stale primary key.
type SecondaryIndex struct {
	Name         string
	KeySchema    []ddbtypes.KeySchemaElement
	Projection   *ddbtypes.Projection
	membership   map[string]map[string]bool // index key -> set of primary keys
}

func newSecondaryIndex(name string, schema []ddbtypes.KeySchemaElement, proj *ddbtypes.Projection) *SecondaryIndex {
	return &SecondaryIndex{
		Name:       name,
		KeySchema:  schema,
		Projection: proj,
		membership: map[string]map[string]bool{},
	}
}

func (si *SecondaryIndex) hashKeyName() string {
	return keyNameByType(si.KeySchema, ddbtypes.KeyTypeHash)
}

func (si *SecondaryIndex) rangeKeyName() string {
	return keyNameByType(si.KeySchema, ddbtypes.KeyTypeRange)
}

func keyNameByType(schema []ddbtypes.KeySchemaElement, kt ddbtypes.KeyType) string {
	for _, e := range schema {
		if e.KeyType == kt {
			return *e.AttributeName
		}
	}
	return ""
}

// indexKeyFor builds the "#"-joined scalar key string for an item, or ok=false
// if the item doesn't carry every key attribute this index needs.
func (si *SecondaryIndex) indexKeyFor(item Item) (string, bool) {
	var parts []string
	h := si.hashKeyName()
	hv, ok := item[h]
	if !ok {
		return "", false
	}
	parts = append(parts, scalarString(hv))

	if r := si.rangeKeyName(); r != "" {
		rv, ok := item[r]
		if !ok {
			return "", false
		}
		parts = append(parts, scalarString(rv))
	}
	return strings.Join(parts, "#"), true
}

func scalarString(v ddbtypes.AttributeValue) string {
	switch vv := v.(type) {
	case *ddbtypes.AttributeValueMemberS:
		return vv.Value
	case *ddbtypes.AttributeValueMemberN:
		return vv.Value
	case *ddbtypes.AttributeValueMemberB:
		return string(vv.Value)
	default:
		return ""
	}
}

func (si *SecondaryIndex) remove(primaryKey string, item Item) {
	key, ok := si.indexKeyFor(item)
	if !ok {
		return
	}
	if set, ok := si.membership[key]; ok {
		delete(set, primaryKey)
		if len(set) == 0 {
			delete(si.membership, key)
		}
	}
}

func (si *SecondaryIndex) insert(primaryKey string, item Item) {
	key, ok := si.indexKeyFor(item)
	if !ok {
		return
	}
	set, ok := si.membership[key]
	if !ok {
		set = map[string]bool{}
		si.membership[key] = set
	}
	set[primaryKey] = true
}

func (si *SecondaryIndex) primaryKeys() []string {
	seen := map[string]bool{}
	for _, set := range si.membership {
		for pk := range set {
			seen[pk] = true
		}
	}
	keys := make([]string, 0, len(seen))
	for pk := range seen {
		keys = append(keys, pk)
	}
	sort.Strings(keys)
	return keys
}

// Table is one DynamoDB table: a fine-grained-locked items map plus its
// secondary indexes.
type Table struct {
	mu sync.RWMutex

	Name                 string
	KeySchema            []ddbtypes.KeySchemaElement
	AttributeDefinitions []ddbtypes.AttributeDefinition
	Status               ddbtypes.TableStatus
	CreatedAt            int64

	items   map[string]Item
	indexes map[string]*SecondaryIndex
}

func newTable(name string, keySchema []ddbtypes.KeySchemaElement, attrs []ddbtypes.AttributeDefinition, gsis []ddbtypes.GlobalSecondaryIndex, lsis []ddbtypes.LocalSecondaryIndex, createdAt int64) *Table {
	t := &Table{
		Name:                 name,
		KeySchema:            keySchema,
		AttributeDefinitions: attrs,
		Status:               ddbtypes.TableStatusActive,
		CreatedAt:            createdAt,
		items:                map[string]Item{},
		indexes:              map[string]*SecondaryIndex{},
	}
	for _, g := range gsis {
		t.indexes[*g.IndexName] = newSecondaryIndex(*g.IndexName, g.KeySchema, g.Projection)
	}
	for _, l := range lsis {
		t.indexes[*l.IndexName] = newSecondaryIndex(*l.IndexName, l.KeySchema, l.Projection)
	}
	return t
}

func (t *Table) hashKeyName() string { return keyNameByType(t.KeySchema, ddbtypes.KeyTypeHash) }
func (t *Table) rangeKeyName() string { return keyNameByType(t.KeySchema, ddbtypes.KeyTypeRange) }

// primaryKeyFor builds this table's own "#"-joined primary key string for an
// item, returning an error if a key attribute is missing.
func (t *Table) primaryKeyFor(item Item) (string, error) {
	h := t.hashKeyName()
	hv, ok := item[h]
	if !ok {
		return "", apierrors.New(apierrors.KindValidationException, "missing partition key attribute "+h)
	}
	key := scalarString(hv)
	if r := t.rangeKeyName(); r != "" {
		rv, ok := item[r]
		if !ok {
			return "", apierrors.New(apierrors.KindValidationException, "missing sort key attribute "+r)
		}
		key += "#" + scalarString(rv)
	}
	return key, nil
}

// extractKey returns the key-only item (partition + sort key attributes).
func (t *Table) extractKey(item Item) Item {
	key := Item{}
	h := t.hashKeyName()
	key[h] = item[h]
	if r := t.rangeKeyName(); r != "" {
		key[r] = item[r]
	}
	return key
}

func (t *Table) updateIndexes(primaryKey string, oldItem, newItem Item) {
	for _, idx := range t.indexes {
		if oldItem != nil {
			idx.remove(primaryKey, oldItem)
		}
		if newItem != nil {
			idx.insert(primaryKey, newItem)
		}
	}
}

func cloneItem(item Item) Item {
	out := make(Item, len(item))
	for k, v := range item {
		out[k] = v
	}
	return out
}
