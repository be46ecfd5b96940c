package repository

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AtSheen/efg/internal/logger"
	"github.com/AtSheen/efg/internal/storage"
)

// memorySource serves testdata files and counts fetches per resource.
type memorySource struct {
	files   map[string][]byte
	fetches sync.Map
	total   atomic.Int32
	fail    atomic.Bool
	delay   time.Duration
}

func newMemorySource(t *testing.T) *memorySource {
	t.Helper()
	src := &memorySource{files: make(map[string][]byte)}
	for _, res := range Resources() {
		data, err := os.ReadFile(filepath.Join("testdata", res.FileName))
		require.NoError(t, err)
		src.files[res.FileName] = data
	}
	return src
}

func (m *memorySource) Name() string { return "memory" }

func (m *memorySource) Fetch(ctx context.Context, res storage.Resource) (io.ReadCloser, error) {
	m.total.Add(1)
	n, _ := m.fetches.LoadOrStore(res.Key, new(atomic.Int32))
	n.(*atomic.Int32).Add(1)

	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.fail.Load() {
		return nil, errors.New("blob service unreachable")
	}
	data, ok := m.files[res.FileName]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func TestStore_LoadsAllResources(t *testing.T) {
	src := newMemorySource(t)
	store := NewStore(src, time.Second, logger.Nop())

	assert.False(t, store.Loaded())
	assert.Equal(t, "memory", store.SourceName())

	snap, err := store.Snapshot(context.Background())
	require.NoError(t, err)

	assert.True(t, store.Loaded())
	assert.Equal(t, int32(len(Resources())), src.total.Load())
	assert.Len(t, snap.TaxCodeCatalog(), 6)
	assert.Equal(t, 2, snap.AttentionList().Len())
	assert.Equal(t, 1, snap.VATIPIssues().Len())
	assert.Equal(t, 2, snap.HistoricalMeta().Len())
	assert.False(t, snap.LoadedAt().IsZero())
}

func TestStore_ConcurrentFirstAccessLoadsOnce(t *testing.T) {
	src := newMemorySource(t)
	src.delay = 20 * time.Millisecond
	store := NewStore(src, time.Second, logger.Nop())

	var wg sync.WaitGroup
	snaps := make([]*Snapshot, 16)
	for i := range snaps {
		wg.Add(1)
		go func() {
			defer wg.Done()
			snap, err := store.Snapshot(context.Background())
			assert.NoError(t, err)
			snaps[i] = snap
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(len(Resources())), src.total.Load(), "each resource must be fetched exactly once")
	for _, snap := range snaps {
		assert.Same(t, snaps[0], snap)
	}
}

func TestStore_FailureIsNotCached(t *testing.T) {
	src := newMemorySource(t)
	src.fail.Store(true)
	store := NewStore(src, time.Second, logger.Nop())

	_, err := store.Snapshot(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrReferenceDataUnavailable))
	assert.False(t, store.Loaded())

	src.fail.Store(false)
	snap, err := store.Snapshot(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, snap)
}

func TestStore_MissingResource(t *testing.T) {
	src := newMemorySource(t)
	delete(src.files, VendorInfoResource.FileName)
	store := NewStore(src, time.Second, logger.Nop())

	_, err := store.Snapshot(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrReferenceDataUnavailable))
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestStore_MalformedTable(t *testing.T) {
	src := newMemorySource(t)
	src.files[TaxCodeInfoResource.FileName] = []byte("Country,Tax Code\nDE,V0\n")
	store := NewStore(src, time.Second, logger.Nop())

	_, err := store.Snapshot(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tax_code_info")
}

func TestStore_Timeout(t *testing.T) {
	src := newMemorySource(t)
	src.delay = time.Second
	store := NewStore(src, 20*time.Millisecond, logger.Nop())

	_, err := store.Snapshot(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestStore_LocalSource(t *testing.T) {
	src, err := storage.NewLocalSource("testdata")
	require.NoError(t, err)

	snap, err := NewStore(src, time.Second, logger.Nop()).Snapshot(context.Background())
	require.NoError(t, err)

	company, ok := snap.Company("1027")
	require.True(t, ok)
	assert.Equal(t, "Efg Deutschland GmbH", *company.CompanyName)
}

func TestNewStaticStore(t *testing.T) {
	snap := loadFixtureSnapshot(t)
	store := NewStaticStore(snap)

	assert.True(t, store.Loaded())
	assert.Equal(t, "static", store.SourceName())

	got, err := store.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Same(t, snap, got)
}
