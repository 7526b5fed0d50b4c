package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMigrator_UpDownCycle(t *testing.T) {
	store := openRawPostgresStoreForIntegrationTest(t)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	all, err := loadMigrationsFromFS(embeddedMigrations)
	require.NoError(t, err)
	latest := all[len(all)-1].Version

	requireStatus := func(wantVersion int64, wantApplied int) {
		t.Helper()
		version, applied, err := store.MigrationStatus(ctx)
		require.NoError(t, err)
		require.Equal(t, wantVersion, version)
		require.Equal(t, wantApplied, applied)
	}

	require.NoError(t, store.MigrateDown(ctx, len(all)+10))
	requireStatus(0, 0)

	require.NoError(t, store.MigrateUp(ctx, 1))
	requireStatus(1, 1)

	require.NoError(t, store.MigrateUp(ctx, 0))
	requireStatus(latest, len(all))

	// Повторный up ничего не меняет.
	require.NoError(t, store.MigrateUp(ctx, 0))
	requireStatus(latest, len(all))

	require.NoError(t, store.MigrateDown(ctx, 0))
	requireStatus(all[len(all)-2].Version, len(all)-1)

	require.NoError(t, store.MigrateDown(ctx, len(all)))
	requireStatus(0, 0)

	require.NoError(t, store.MigrateDown(ctx, 1))

	require.NoError(t, store.EnsureSchema(ctx))
	requireStatus(latest, len(all))
}

func TestMigrator_NilStore(t *testing.T) {
	var store *Store
	ctx := context.Background()

	require.ErrorIs(t, store.MigrateUp(ctx, 0), errStoreNotInitialized)
	require.ErrorIs(t, store.MigrateDown(ctx, 1), errStoreNotInitialized)
	_, _, err := store.MigrationStatus(ctx)
	require.ErrorIs(t, err, errStoreNotInitialized)
}
