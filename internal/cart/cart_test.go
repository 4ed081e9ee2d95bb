package cart

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	tomat = Product{ID: "p1", Name: "Tomat", Price: 5000, Image: "img/tomat.jpg"}
	cabai = Product{ID: "p2", Name: "Cabai Rawit", Price: 2500}
)

func newTestStore(t *testing.T) (*Store, *MemoryStorage) {
	t.Helper()
	kv := NewMemoryStorage()
	s, err := Open(context.Background(), kv, "cart:test")
	require.NoError(t, err)
	return s, kv
}

func TestAddItemMergesOnProductID(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	require.NoError(t, s.AddItem(ctx, tomat, 2))
	require.NoError(t, s.AddItem(ctx, tomat, 3))

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "p1", items[0].ProductID)
	assert.Equal(t, 5, items[0].Quantity)
	assert.Equal(t, "Tomat", items[0].Name)
	assert.Equal(t, int64(5000), items[0].UnitPrice)
}

func TestAddItemNonPositiveQuantityIsNoop(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	require.NoError(t, s.AddItem(ctx, tomat, 0))
	require.NoError(t, s.AddItem(ctx, tomat, -3))
	assert.True(t, s.Empty())
}

func TestRemoveItemUnknownIDLeavesCartUnchanged(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	require.NoError(t, s.AddItem(ctx, tomat, 2))

	before := s.Items()
	require.NoError(t, s.RemoveItem(ctx, "does-not-exist"))
	assert.Equal(t, before, s.Items())
}

func TestRemoveItemDeletesLine(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	require.NoError(t, s.AddItem(ctx, tomat, 2))
	require.NoError(t, s.AddItem(ctx, cabai, 1))

	require.NoError(t, s.RemoveItem(ctx, "p1"))
	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "p2", items[0].ProductID)
}

func TestUpdateQuantityBelowOneIsNoop(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	require.NoError(t, s.AddItem(ctx, tomat, 2))

	require.NoError(t, s.UpdateQuantity(ctx, "p1", 0))
	assert.Equal(t, 2, s.Items()[0].Quantity)

	require.NoError(t, s.UpdateQuantity(ctx, "p1", -1))
	assert.Equal(t, 2, s.Items()[0].Quantity)
}

func TestUpdateQuantitySetsExactValue(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	require.NoError(t, s.AddItem(ctx, tomat, 2))

	require.NoError(t, s.UpdateQuantity(ctx, "p1", 7))
	assert.Equal(t, 7, s.Items()[0].Quantity)

	// product ID asing: no-op
	require.NoError(t, s.UpdateQuantity(ctx, "p9", 3))
	require.Len(t, s.Items(), 1)
}

func TestTotalAndCount(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	require.NoError(t, s.AddItem(ctx, Product{ID: "a", Name: "A", Price: 1000}, 2))
	require.NoError(t, s.AddItem(ctx, Product{ID: "b", Name: "B", Price: 2500}, 1))

	assert.Equal(t, int64(4500), s.Total())
	assert.Equal(t, 3, s.Count())
}

func TestClearEmptiesAndPersists(t *testing.T) {
	ctx := context.Background()
	s, kv := newTestStore(t)
	require.NoError(t, s.AddItem(ctx, tomat, 2))

	require.NoError(t, s.Clear(ctx))
	assert.True(t, s.Empty())

	b, err := kv.Get(ctx, "cart:test")
	require.NoError(t, err)
	var persisted []LineItem
	require.NoError(t, json.Unmarshal(b, &persisted))
	assert.Empty(t, persisted)
}

func TestRoundTripThroughStorage(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryStorage()

	s1, err := Open(ctx, kv, "cart:rt")
	require.NoError(t, err)
	require.NoError(t, s1.AddItem(ctx, tomat, 2))
	require.NoError(t, s1.AddItem(ctx, cabai, 4))
	require.NoError(t, s1.UpdateQuantity(ctx, "p2", 3))

	s2, err := Open(ctx, kv, "cart:rt")
	require.NoError(t, err)
	assert.Equal(t, s1.Items(), s2.Items())
	assert.Equal(t, s1.Total(), s2.Total())
}

func TestEveryMutationWritesThrough(t *testing.T) {
	ctx := context.Background()
	s, kv := newTestStore(t)

	persisted := func() []LineItem {
		b, err := kv.Get(ctx, "cart:test")
		require.NoError(t, err)
		var items []LineItem
		require.NoError(t, json.Unmarshal(b, &items))
		return items
	}

	require.NoError(t, s.AddItem(ctx, tomat, 1))
	assert.Equal(t, s.Items(), persisted())

	require.NoError(t, s.UpdateQuantity(ctx, "p1", 5))
	assert.Equal(t, s.Items(), persisted())

	require.NoError(t, s.RemoveItem(ctx, "p1"))
	assert.Equal(t, s.Items(), persisted())
}

func TestListenersRunAfterPersistInOrder(t *testing.T) {
	ctx := context.Background()
	s, kv := newTestStore(t)

	var calls []string
	s.Subscribe(func(items []LineItem) {
		// saat listener jalan, storage sudah berisi state baru
		b, err := kv.Get(ctx, "cart:test")
		require.NoError(t, err)
		var persisted []LineItem
		require.NoError(t, json.Unmarshal(b, &persisted))
		assert.Equal(t, items, persisted)
		calls = append(calls, "first")
	})
	s.Subscribe(func([]LineItem) { calls = append(calls, "second") })

	require.NoError(t, s.AddItem(ctx, tomat, 1))
	assert.Equal(t, []string{"first", "second"}, calls)
}

type failingStorage struct {
	*MemoryStorage
	fail bool
}

func (f *failingStorage) Set(ctx context.Context, key string, value []byte) error {
	if f.fail {
		return errors.New("disk full")
	}
	return f.MemoryStorage.Set(ctx, key, value)
}

func TestFailedPersistKeepsOldState(t *testing.T) {
	ctx := context.Background()
	kv := &failingStorage{MemoryStorage: NewMemoryStorage()}
	s, err := Open(ctx, kv, "cart:test")
	require.NoError(t, err)
	require.NoError(t, s.AddItem(ctx, tomat, 2))

	kv.fail = true
	require.Error(t, s.AddItem(ctx, cabai, 1))

	// memori tetap sama dengan storage terakhir yang sukses
	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "p1", items[0].ProductID)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestOpenWithCorruptPayloadFails(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryStorage()
	require.NoError(t, kv.Set(ctx, "cart:bad", []byte("{not json")))

	_, err := Open(ctx, kv, "cart:bad")
	assert.Error(t, err)
}
