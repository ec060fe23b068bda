package persistence

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
)

// MemoryStore is a process-local Store with the same conditional semantics as DynamoStore.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[Key]Item
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[Key]Item)}
}

func (m *MemoryStore) PutIfAbsent(_ context.Context, item Item) error {
	key, err := keyOf(item)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.items[key]; exists {
		return fmt.Errorf("%w: %s exists", ErrConditionFailed, key)
	}
	m.items[key] = clone(item)
	return nil
}

func (m *MemoryStore) Get(_ context.Context, key Key) (Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	item, ok := m.items[key]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(item), nil
}

func (m *MemoryStore) Scan(_ context.Context, filter ScanFilter) ([]Item, error) {
	if filter.PKPrefix == "" {
		return nil, errors.New("scan requires a PK prefix")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]Key, 0, len(m.items))
	for key := range m.items {
		if !strings.HasPrefix(key.PK, filter.PKPrefix) {
			continue
		}
		if filter.SK != "" && key.SK != filter.SK {
			continue
		}
		if !attributesEqual(m.items[key], filter.Equals) {
			continue
		}
		keys = append(keys, key)
	}
	// Deterministic order for tests; callers still sort.
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })

	items := make([]Item, 0, len(keys))
	for _, key := range keys {
		items = append(items, clone(m.items[key]))
	}
	return items, nil
}

func (m *MemoryStore) Update(_ context.Context, key Key, set map[string]any, guard Guard) (Item, error) {
	if len(set) == 0 {
		return nil, errors.New("update requires at least one attribute")
	}

	values := make(Item, len(set))
	for name, v := range set {
		av, err := attributevalue.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("marshal %s: %w", name, err)
		}
		values[name] = av
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	current, exists := m.items[key]
	if err := checkGuard(key, current, exists, guard); err != nil {
		return nil, err
	}

	next := clone(current)
	if next == nil {
		next = keyAttributes(key)
	}
	for name, av := range values {
		next[name] = av
	}
	m.items[key] = next
	return clone(next), nil
}

func (m *MemoryStore) Delete(_ context.Context, key Key, guard Guard) (Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, exists := m.items[key]
	if err := checkGuard(key, current, exists, guard); err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}
	delete(m.items, key)
	return current, nil
}

func (m *MemoryStore) Ping(context.Context) error {
	return nil
}

// Len reports how many items are stored.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

func checkGuard(key Key, current Item, exists bool, guard Guard) error {
	if guard.MustExist && !exists {
		return fmt.Errorf("%w: %s does not exist", ErrConditionFailed, key)
	}
	if len(guard.Equals) > 0 && (!exists || !attributesEqual(current, guard.Equals)) {
		return fmt.Errorf("%w: %s attributes differ", ErrConditionFailed, key)
	}
	return nil
}

func attributesEqual(item Item, equals map[string]string) bool {
	for name, want := range equals {
		got, ok := StringAttr(item, name)
		if !ok || got != want {
			return false
		}
	}
	return true
}

func clone(item Item) Item {
	if item == nil {
		return nil
	}
	out := make(Item, len(item))
	for k, v := range item {
		out[k] = v
	}
	return out
}

var _ Store = (*MemoryStore)(nil)
var _ Store = (*DynamoStore)(nil)
