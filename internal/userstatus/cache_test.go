package userstatus

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingStore wraps a Store and counts GetStatus calls.
type countingStore struct {
	Store
	reads int
}

func (c *countingStore) GetStatus(ctx context.Context, userID int64) (Status, error) {
	c.reads++
	return c.Store.GetStatus(ctx, userID)
}

func newCached(t *testing.T, inner Store) (*CachedStore, *miniredis.Miniredis, *[]string) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	var results []string
	cs := NewCachedStore(inner, rdb,
		WithTTL(time.Minute),
		WithObserver(func(r string) { results = append(results, r) }),
	)
	return cs, mr, &results
}

func TestCachedStoreContract(t *testing.T) {
	cs, _, _ := newCached(t, newSQLiteStore(t))
	exerciseStore(t, cs)
}

func TestCachedStoreReadThrough(t *testing.T) {
	ctx := context.Background()
	inner := &countingStore{Store: newSQLiteStore(t)}
	cs, mr, results := newCached(t, inner)

	require.NoError(t, inner.SetSubscribed(ctx, 7, true))

	st, err := cs.GetStatus(ctx, 7)
	require.NoError(t, err)
	assert.True(t, st.Subscribed)
	st, err = cs.GetStatus(ctx, 7)
	require.NoError(t, err)
	assert.True(t, st.Subscribed)

	assert.Equal(t, 1, inner.reads)
	assert.Equal(t, []string{"miss", "hit"}, *results)
	assert.True(t, mr.Exists("gamegate:status:7"))
	assert.Equal(t, time.Minute, mr.TTL("gamegate:status:7"))
}

func TestCachedStoreWriteInvalidates(t *testing.T) {
	ctx := context.Background()
	inner := &countingStore{Store: newSQLiteStore(t)}
	cs, mr, _ := newCached(t, inner)

	_, err := cs.GetStatus(ctx, 8)
	require.NoError(t, err)
	require.True(t, mr.Exists("gamegate:status:8"))

	require.NoError(t, cs.SetVerified(ctx, 8, true))
	assert.False(t, mr.Exists("gamegate:status:8"))

	st, err := cs.GetStatus(ctx, 8)
	require.NoError(t, err)
	assert.True(t, st.VerifJoined)
	assert.Equal(t, 2, inner.reads)
}

func TestCachedStoreRedisDown(t *testing.T) {
	ctx := context.Background()
	inner := &countingStore{Store: newSQLiteStore(t)}
	cs, mr, results := newCached(t, inner)
	mr.Close()

	require.NoError(t, cs.MarkRegistered(ctx, 9))
	st, err := cs.GetStatus(ctx, 9)
	require.NoError(t, err)
	assert.True(t, st.Registered)
	assert.Equal(t, []string{"error"}, *results)
}

func TestCachedStoreMalformedEntry(t *testing.T) {
	ctx := context.Background()
	inner := &countingStore{Store: newSQLiteStore(t)}
	cs, mr, _ := newCached(t, inner)
	require.NoError(t, mr.Set("gamegate:status:10", "not json"))

	st, err := cs.GetStatus(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, Status{UserID: 10}, st)
	assert.Equal(t, 1, inner.reads)
}
