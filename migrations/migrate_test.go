package migrations

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNames_Sorted(t *testing.T) {
	names, err := Names()
	require.NoError(t, err)
	require.NotEmpty(t, names)

	for i, n := range names {
		assert.True(t, strings.HasSuffix(n, ".sql"))
		if i > 0 {
			assert.Less(t, names[i-1], n)
		}
	}
}

func TestApply_Idempotent(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	_, err = Apply(ctx, pool)
	require.NoError(t, err)

	applied, err := Apply(ctx, pool)
	require.NoError(t, err)
	assert.Equal(t, 0, applied)
}
