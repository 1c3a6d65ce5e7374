package database

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryStore(t *testing.T) {
	ctx := context.Background()
	db := TestDatabase(t)
	history := NewHistoryStore(db, zerolog.Nop())

	assert.Equal(t, "migrations_history", history.Table())
	require.NoError(t, history.Ensure(ctx))
	require.NoError(t, history.Ensure(ctx), "ensure is idempotent")

	applied, err := history.IsApplied(ctx, "001_first")
	require.NoError(t, err)
	assert.False(t, applied)

	require.NoError(t, history.Record(ctx, "001_first"))
	require.NoError(t, history.Record(ctx, "002_second"))

	applied, err = history.IsApplied(ctx, "001_first")
	require.NoError(t, err)
	assert.True(t, applied)

	list, err := history.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "001_first", list[0].Migration)
	assert.Equal(t, "002_second", list[1].Migration)
	assert.False(t, list[0].ExecutedAt.IsZero())
	assert.False(t, list[1].ExecutedAt.Before(list[0].ExecutedAt))

	names, err := history.Applied(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"001_first": true, "002_second": true}, names)

	t.Run("Names are unique", func(t *testing.T) {
		assert.Error(t, history.Record(ctx, "001_first"))
	})

	require.NoError(t, history.Remove(ctx, "001_first"))
	applied, err = history.IsApplied(ctx, "001_first")
	require.NoError(t, err)
	assert.False(t, applied)

	require.NoError(t, history.Drop(ctx))
	_, err = history.List(ctx)
	assert.Error(t, err, "table no longer exists")

	require.NoError(t, history.Drop(ctx), "dropping a missing table succeeds")
	require.NoError(t, history.Ensure(ctx))
	list, err = history.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}
