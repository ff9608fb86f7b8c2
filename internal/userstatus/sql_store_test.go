package userstatus

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coredatabase "github.com/m3rciful/gamegate/core/database"
	"github.com/m3rciful/gamegate/migrations"
)

func newSQLiteStore(t *testing.T) *SQLStore {
	t.Helper()
	cfg := coredatabase.Config{
		Driver: coredatabase.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "status.db"),
	}
	require.NoError(t, coredatabase.RunMigrations(cfg, migrations.FS))
	db, err := coredatabase.Connect(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewSQLStore(db)
}

// exerciseStore runs the Store contract against any implementation.
func exerciseStore(t *testing.T, s Store) {
	ctx := context.Background()

	t.Run("unknown user reads all false", func(t *testing.T) {
		st, err := s.GetStatus(ctx, 12345)
		require.NoError(t, err)
		assert.Equal(t, Status{UserID: 12345}, st)
	})

	t.Run("ensure is idempotent and keeps flags", func(t *testing.T) {
		require.NoError(t, s.Ensure(ctx, 1))
		require.NoError(t, s.SetSubscribed(ctx, 1, true))
		require.NoError(t, s.Ensure(ctx, 1))

		st, err := s.GetStatus(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, Status{UserID: 1, Subscribed: true}, st)
	})

	t.Run("setters are independent", func(t *testing.T) {
		require.NoError(t, s.SetSubscribed(ctx, 2, true))
		st, err := s.GetStatus(ctx, 2)
		require.NoError(t, err)
		assert.True(t, st.Subscribed)
		assert.False(t, st.VerifJoined)

		require.NoError(t, s.SetVerified(ctx, 2, true))
		require.NoError(t, s.SetSubscribed(ctx, 2, false))
		st, err = s.GetStatus(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, Status{UserID: 2, VerifJoined: true}, st)
	})

	t.Run("registered is monotonic", func(t *testing.T) {
		require.NoError(t, s.SetVerified(ctx, 3, true))
		require.NoError(t, s.MarkRegistered(ctx, 3))
		require.NoError(t, s.SetVerified(ctx, 3, false))
		require.NoError(t, s.MarkRegistered(ctx, 3))

		st, err := s.GetStatus(ctx, 3)
		require.NoError(t, err)
		assert.False(t, st.VerifJoined)
		assert.True(t, st.Registered)
	})

	t.Run("mark registered creates the record", func(t *testing.T) {
		require.NoError(t, s.MarkRegistered(ctx, 4))
		st, err := s.GetStatus(ctx, 4)
		require.NoError(t, err)
		assert.Equal(t, Status{UserID: 4, Registered: true}, st)
	})
}

func TestSQLStoreSQLite(t *testing.T) {
	exerciseStore(t, newSQLiteStore(t))
}

func TestSQLStoreClosedDB(t *testing.T) {
	s := newSQLiteStore(t)
	require.NoError(t, s.db.Close())

	_, err := s.GetStatus(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "userstatus: get 1")

	err = s.SetSubscribed(context.Background(), 1, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "userstatus: set_subscribed")
}
