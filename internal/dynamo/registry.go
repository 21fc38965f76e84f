package dynamo

import (
	"sort"
	"sync"

	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"stackbox/internal/apierrors"
)

// Registry is the process-wide table registry, following the same
// mutex-guarded-map shape as the project's in-memory store adapters.
type Registry struct {
	mu     sync.RWMutex
	tables map[string]*Table
	clock  func() int64
}

// NewRegistry builds an empty table registry. clock supplies CreatedAt
// timestamps and is injected so tests can control it.
func NewRegistry(clock func() int64) *Registry {
	return &Registry{tables: map[string]*Table{}, clock: clock}
}

// CreateTable creates a new table, or fails with ResourceInUseException if
// the name is already taken.
func (r *Registry) CreateTable(name string, keySchema []ddbtypes.KeySchemaElement, attrs []ddbtypes.AttributeDefinition, gsis []ddbtypes.GlobalSecondaryIndex, lsis []ddbtypes.LocalSecondaryIndex) (*Table, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tables[name]; exists {
		return nil, apierrors.Newf(apierrors.KindResourceInUseException, "table %q already exists", name)
	}
	if len(keySchema) == 0 {
		return nil, apierrors.New(apierrors.KindValidationException, "KeySchema must not be empty")
	}

	t := newTable(name, keySchema, attrs, gsis, lsis, r.clock())
	r.tables[name] = t
	return t, nil
}

// DeleteTable removes a table, failing with ResourceNotFoundException if it
// doesn't exist.
func (r *Registry) DeleteTable(name string) (*Table, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tables[name]
	if !ok {
		return nil, apierrors.Newf(apierrors.KindResourceNotFoundException, "table %q not found", name)
	}
	delete(r.tables, name)

	t.mu.Lock()
	t.Status = ddbtypes.TableStatusDeleting
	t.mu.Unlock()
	return t, nil
}

// DescribeTable returns the table, failing with ResourceNotFoundException if
// it doesn't exist.
func (r *Registry) DescribeTable(name string) (*Table, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tables[name]
	if !ok {
		return nil, apierrors.Newf(apierrors.KindResourceNotFoundException, "table %q not found", name)
	}
	return t, nil
}

// ListTables returns every table name, sorted.
func (r *Registry) ListTables() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tables))
	for name := range r.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
