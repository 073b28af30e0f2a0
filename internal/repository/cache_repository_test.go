package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/absensi-karyawan/pkg/errors"
)

type cachedSnapshot struct {
	Rows []int `json:"rows"`
}

func TestMemoryCacheRepositoryRoundTrip(t *testing.T) {
	repo := NewMemoryCacheRepository(0)
	ctx := context.Background()

	var dest cachedSnapshot
	assert.True(t, errors.Is(repo.Get(ctx, "absensi:attendance:snapshot", &dest), appErrors.ErrCacheMiss))

	require.NoError(t, repo.Set(ctx, "absensi:attendance:snapshot", cachedSnapshot{Rows: []int{1, 2}}, 0))
	require.NoError(t, repo.Get(ctx, "absensi:attendance:snapshot", &dest))
	assert.Equal(t, []int{1, 2}, dest.Rows)
}

func TestMemoryCacheRepositoryExpires(t *testing.T) {
	repo := NewMemoryCacheRepository(time.Hour)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "k", cachedSnapshot{}, time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	var dest cachedSnapshot
	assert.True(t, errors.Is(repo.Get(ctx, "k", &dest), appErrors.ErrCacheMiss))
}

func TestMemoryCacheRepositoryDeleteByPattern(t *testing.T) {
	repo := NewMemoryCacheRepository(0)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "absensi:attendance:snapshot", cachedSnapshot{}, 0))
	require.NoError(t, repo.Set(ctx, "absensi:attendance:other", cachedSnapshot{}, 0))
	require.NoError(t, repo.Set(ctx, "absensi:employees", cachedSnapshot{}, 0))

	require.NoError(t, repo.DeleteByPattern(ctx, "absensi:attendance:*"))

	var dest cachedSnapshot
	assert.True(t, errors.Is(repo.Get(ctx, "absensi:attendance:snapshot", &dest), appErrors.ErrCacheMiss))
	assert.True(t, errors.Is(repo.Get(ctx, "absensi:attendance:other", &dest), appErrors.ErrCacheMiss))
	assert.NoError(t, repo.Get(ctx, "absensi:employees", &dest))

	assert.Error(t, repo.DeleteByPattern(ctx, "["))
}

func TestRedisCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewRedisCacheRepository(nil, nil)
	ctx := context.Background()

	var dest cachedSnapshot
	assert.True(t, errors.Is(repo.Get(ctx, "k", &dest), appErrors.ErrCacheMiss))
	assert.NoError(t, repo.Set(ctx, "k", dest, 0))
	assert.NoError(t, repo.DeleteByPattern(ctx, "*"))
	assert.NoError(t, repo.Ping(ctx))
	assert.NoError(t, repo.Close())
}
