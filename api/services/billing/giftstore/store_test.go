package giftstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peshal-hash/activepieces/api/services/billing/catalog"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return New(client, 6*time.Hour), mr
}

func TestPutGetConsume(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	end := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Put(ctx, "plat_1", "cus_1", Hold{TrialEnd: end, Plan: catalog.PlanPlus}))

	got, err := store.Get(ctx, "plat_1", "cus_1")
	require.NoError(t, err)
	assert.True(t, end.Equal(got.TrialEnd))
	assert.Equal(t, catalog.PlanPlus, got.Plan)

	got, err = store.Consume(ctx, "plat_1", "cus_1")
	require.NoError(t, err)
	assert.Equal(t, catalog.PlanPlus, got.Plan)

	_, err = store.Consume(ctx, "plat_1", "cus_1")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestKeyIsCompositeAndPrefixed(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t)

	require.NoError(t, store.Put(ctx, "plat_1", "cus_1", Hold{Plan: catalog.PlanBusiness}))
	assert.True(t, mr.Exists("billing:gift-trial:plat_1:cus_1"))

	_, err := store.Get(ctx, "plat_1", "cus_2")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestHoldExpires(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t)

	require.NoError(t, store.Put(ctx, "plat_1", "cus_1", Hold{Plan: catalog.PlanPlus}))
	assert.Equal(t, 6*time.Hour, mr.TTL(Key("plat_1", "cus_1")))

	mr.FastForward(6*time.Hour + time.Second)
	_, err := store.Get(ctx, "plat_1", "cus_1")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestPutSupersedes(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	require.NoError(t, store.Put(ctx, "plat_1", "cus_1", Hold{Plan: catalog.PlanPlus}))
	require.NoError(t, store.Put(ctx, "plat_1", "cus_1", Hold{Plan: catalog.PlanBusiness}))

	got, err := store.Get(ctx, "plat_1", "cus_1")
	require.NoError(t, err)
	assert.Equal(t, catalog.PlanBusiness, got.Plan)

	require.NoError(t, store.Discard(ctx, "plat_1", "cus_1"))
	_, err = store.Get(ctx, "plat_1", "cus_1")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestCorruptHold(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t)
	require.NoError(t, mr.Set(Key("plat_1", "cus_1"), "not json"))

	_, err := store.Get(ctx, "plat_1", "cus_1")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}
