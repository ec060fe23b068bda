package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/solarcare/inverter-service/internal/config"
)

// Attribute names of the single-table primary key.
const (
	AttrPK = "PK"
	AttrSK = "SK"
)

var (
	// ErrConditionFailed is returned when a conditional write's condition does not hold.
	ErrConditionFailed = errors.New("conditional check failed")
	// ErrNotFound is returned by Get when no item exists at the key.
	ErrNotFound = errors.New("item not found")
)

// Key addresses one item in the single table.
type Key struct {
	PK string
	SK string
}

func (k Key) String() string {
	return k.PK + "|" + k.SK
}

// Item is one raw record in the table.
type Item = map[string]types.AttributeValue

// ScanFilter selects items whose PK starts with PKPrefix, whose SK equals SK (when set)
// and whose string attributes equal every entry in Equals.
type ScanFilter struct {
	PKPrefix string
	SK       string
	Equals   map[string]string
}

// Guard conditions an update or delete. MustExist requires the item to be present,
// Equals requires string attributes to hold the given values.
type Guard struct {
	MustExist bool
	Equals    map[string]string
}

func (g Guard) empty() bool {
	return !g.MustExist && len(g.Equals) == 0
}

// Store is the storage port every repository talks to.
type Store interface {
	// PutIfAbsent writes item only when no item with the same key exists.
	PutIfAbsent(ctx context.Context, item Item) error
	// Get returns the item at key or ErrNotFound.
	Get(ctx context.Context, key Key) (Item, error)
	// Scan reads the whole table and returns the matching items.
	Scan(ctx context.Context, filter ScanFilter) ([]Item, error)
	// Update merges set into the item and returns the new attributes.
	Update(ctx context.Context, key Key, set map[string]any, guard Guard) (Item, error)
	// Delete removes the item and returns its prior attributes, nil if there were none.
	Delete(ctx context.Context, key Key, guard Guard) (Item, error)
	// Ping verifies the backing store is reachable.
	Ping(ctx context.Context) error
}

// NewStore builds the store selected by cfg.Driver.
func NewStore(ctx context.Context, cfg config.StoreConfig, logger *zap.Logger) (Store, error) {
	switch cfg.Driver {
	case config.StoreDriverMemory:
		logger.Warn("using in-memory store; data is lost on restart")
		return NewMemoryStore(), nil
	case config.StoreDriverDynamo, "":
		return NewDynamo(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

func keyOf(item Item) (Key, error) {
	pk, ok := StringAttr(item, AttrPK)
	if !ok || pk == "" {
		return Key{}, errors.New("item has no PK")
	}
	sk, ok := StringAttr(item, AttrSK)
	if !ok || sk == "" {
		return Key{}, errors.New("item has no SK")
	}
	return Key{PK: pk, SK: sk}, nil
}

// StringAttr reads a string attribute from item.
func StringAttr(item Item, name string) (string, bool) {
	av, ok := item[name]
	if !ok {
		return "", false
	}
	s, ok := av.(*types.AttributeValueMemberS)
	if !ok {
		return "", false
	}
	return s.Value, true
}

func keyAttributes(key Key) Item {
	return Item{
		AttrPK: &types.AttributeValueMemberS{Value: key.PK},
		AttrSK: &types.AttributeValueMemberS{Value: key.SK},
	}
}
