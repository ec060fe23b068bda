package persistence

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(pk, sk string, attrs map[string]string) Item {
	out := keyAttributes(Key{PK: pk, SK: sk})
	for k, v := range attrs {
		out[k] = &types.AttributeValueMemberS{Value: v}
	}
	return out
}

func TestPutIfAbsentRejectsExistingKey(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.PutIfAbsent(ctx, item("USER#1", "PROFILE", nil)))
	err := store.PutIfAbsent(ctx, item("USER#1", "PROFILE", nil))
	assert.ErrorIs(t, err, ErrConditionFailed)

	assert.Error(t, store.PutIfAbsent(ctx, Item{}))
}

func TestConcurrentCreateYieldsOneRecord(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	var wg sync.WaitGroup
	var conflicts, successes int32
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := store.PutIfAbsent(ctx, item("TICKET#X", "DETAILS", nil))
			if err == nil {
				atomic.AddInt32(&successes, 1)
				return
			}
			assert.ErrorIs(t, err, ErrConditionFailed)
			atomic.AddInt32(&conflicts, 1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), successes)
	assert.Equal(t, int32(15), conflicts)
	assert.Equal(t, 1, store.Len())
}

func TestScanFilters(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.PutIfAbsent(ctx, item("USER#1", "PROFILE", map[string]string{"role": "ADMIN"})))
	require.NoError(t, store.PutIfAbsent(ctx, item("USER#2", "PROFILE", map[string]string{"role": "CUSTOMER"})))
	require.NoError(t, store.PutIfAbsent(ctx, item("EMAIL#a@b.com", "UNIQUE", nil)))
	require.NoError(t, store.PutIfAbsent(ctx, item("USER#3", "OTHER", map[string]string{"role": "ADMIN"})))

	admins, err := store.Scan(ctx, ScanFilter{PKPrefix: "USER#", SK: "PROFILE", Equals: map[string]string{"role": "ADMIN"}})
	require.NoError(t, err)
	require.Len(t, admins, 1)
	pk, _ := StringAttr(admins[0], AttrPK)
	assert.Equal(t, "USER#1", pk)

	users, err := store.Scan(ctx, ScanFilter{PKPrefix: "USER#"})
	require.NoError(t, err)
	assert.Len(t, users, 3)

	_, err = store.Scan(ctx, ScanFilter{})
	assert.Error(t, err)
}

func TestUpdateGuards(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	key := Key{PK: "DEVICE#1", SK: "METADATA"}

	_, err := store.Update(ctx, key, map[string]any{"serialNo": "A"}, Guard{MustExist: true})
	assert.ErrorIs(t, err, ErrConditionFailed)

	created, err := store.Update(ctx, key, map[string]any{"serialNo": "A"}, Guard{})
	require.NoError(t, err)
	serial, _ := StringAttr(created, "serialNo")
	assert.Equal(t, "A", serial)

	updated, err := store.Update(ctx, key, map[string]any{"serialNo": "B", "count": 2}, Guard{MustExist: true})
	require.NoError(t, err)
	serial, _ = StringAttr(updated, "serialNo")
	assert.Equal(t, "B", serial)
	assert.IsType(t, &types.AttributeValueMemberN{}, updated["count"])

	_, err = store.Update(ctx, key, map[string]any{}, Guard{})
	assert.Error(t, err)
}

func TestDeleteReturnsPriorAttributes(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	key := Key{PK: "USER#1", SK: "PROFILE"}
	require.NoError(t, store.PutIfAbsent(ctx, item(key.PK, key.SK, map[string]string{"userId": "1"})))

	_, err := store.Delete(ctx, key, Guard{Equals: map[string]string{"userId": "2"}})
	assert.ErrorIs(t, err, ErrConditionFailed)

	old, err := store.Delete(ctx, key, Guard{Equals: map[string]string{"userId": "1"}})
	require.NoError(t, err)
	userID, _ := StringAttr(old, "userId")
	assert.Equal(t, "1", userID)

	_, err = store.Get(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)

	gone, err := store.Delete(ctx, key, Guard{})
	require.NoError(t, err)
	assert.Nil(t, gone)

	_, err = store.Delete(ctx, key, Guard{MustExist: true})
	assert.ErrorIs(t, err, ErrConditionFailed)
}

func TestGetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	key := Key{PK: "TICKET#1", SK: "DETAILS"}
	require.NoError(t, store.PutIfAbsent(ctx, item(key.PK, key.SK, map[string]string{"status": "OPEN"})))

	got, err := store.Get(ctx, key)
	require.NoError(t, err)
	got["status"] = &types.AttributeValueMemberS{Value: "DONE"}

	again, err := store.Get(ctx, key)
	require.NoError(t, err)
	status, _ := StringAttr(again, "status")
	assert.Equal(t, "OPEN", status)
}
