// CarMatch - Vehicle Recommendation and Reliability Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carmatch

package enrich

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSource counts calls and returns fixed counts or an error.
type stubSource struct {
	complaints int
	recalls    int
	err        error
	release    chan struct{}

	complaintCalls atomic.Int32
	recallCalls    atomic.Int32
}

func (s *stubSource) Complaints(ctx context.Context, _, _ string, _ int) (int, error) {
	s.complaintCalls.Add(1)
	if s.release != nil {
		select {
		case <-s.release:
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
	if s.err != nil {
		return 0, s.err
	}
	return s.complaints, nil
}

func (s *stubSource) Recalls(_ context.Context, _, _ string, _ int) (int, error) {
	s.recallCalls.Add(1)
	if s.err != nil {
		return 0, s.err
	}
	return s.recalls, nil
}

// memStore is an in-memory Store with an optional write failure.
type memStore struct {
	mu       sync.Mutex
	entries  map[string]Entry
	putErr   error
	putCalls int
}

func newMemStore() *memStore { return &memStore{entries: map[string]Entry{}} }

func (m *memStore) Get(_ context.Context, key string) (Entry, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	return e, ok, nil
}

func (m *memStore) Put(_ context.Context, key string, e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putCalls++
	if m.putErr != nil {
		return m.putErr
	}
	m.entries[key] = e
	return nil
}

func (m *memStore) Close() error { return nil }

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func TestCacheKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "2018_honda_civic", CacheKey(2018, "Honda", "Civic"))
	assert.Equal(t, "2019_land_rover_range_rover_sport", CacheKey(2019, "Land Rover", "Range Rover Sport"))
}

func TestScoreIssues(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name        string
		complaints  int
		recalls     int
		year        int
		reliability float64
		safety      float64
		age         int
	}{
		{"clean five year old", 0, 0, 2020, 0.8, 1.0, 5},
		{"moderate issues", 20, 2, 2023, 0.55, 0.8, 2},
		{"floors applied", 1000, 10, 2024, 0.3, 0.4, 1},
		{"future model year counts as one year", 0, 1, 2027, 0.65, 0.8, 1},
		{"rounded to three decimals", 7, 1, 2022, 0.727, 0.933, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ScoreIssues(tt.complaints, tt.recalls, tt.year, now)
			assert.InDelta(t, tt.reliability, got.Reliability, 1e-9)
			assert.InDelta(t, tt.safety, got.Safety, 1e-9)
			assert.Equal(t, tt.age, got.AgeYears)
		})
	}
}

func TestCache_HitWithinTTL(t *testing.T) {
	t.Parallel()

	src := &stubSource{complaints: 0, recalls: 0}
	clock := newClock()
	cache := NewCache(src, newMemStore(), Options{Now: clock.Now}, zerolog.Nop())

	first := cache.Get(context.Background(), 2020, "Honda", "Civic")
	require.True(t, first.OK())
	assert.False(t, first.Cached)
	assert.InDelta(t, 0.8, first.Data.ReliabilityScore, 1e-9)
	assert.InDelta(t, 1.0, first.Data.SafetyScore, 1e-9)
	assert.Equal(t, 5, first.Data.VehicleAgeYears)

	clock.Advance(29 * 24 * time.Hour)
	second := cache.Get(context.Background(), 2020, "honda", "civic")
	require.True(t, second.OK())
	assert.True(t, second.Cached)
	assert.Equal(t, first.Data, second.Data)

	assert.EqualValues(t, 1, src.complaintCalls.Load())
	assert.EqualValues(t, 1, src.recallCalls.Load())
}

func TestCache_ExpiredEntryRefetches(t *testing.T) {
	t.Parallel()

	src := &stubSource{complaints: 3}
	clock := newClock()
	cache := NewCache(src, newMemStore(), Options{Now: clock.Now}, zerolog.Nop())

	require.True(t, cache.Get(context.Background(), 2020, "Honda", "Civic").OK())
	clock.Advance(DefaultTTL)
	res := cache.Get(context.Background(), 2020, "Honda", "Civic")

	require.True(t, res.OK())
	assert.False(t, res.Cached)
	assert.EqualValues(t, 2, src.complaintCalls.Load())
}

func TestCache_ErrorsAreNotCached(t *testing.T) {
	t.Parallel()

	src := &stubSource{err: errors.New("connection refused")}
	store := newMemStore()
	cache := NewCache(src, store, Options{Now: newClock().Now}, zerolog.Nop())

	res := cache.Get(context.Background(), 2018, "Subaru", "WRX")
	require.False(t, res.OK())
	assert.Equal(t, &ErrorPayload{Error: ServiceUnavailableMessage, Year: 2018, Make: "Subaru", Model: "WRX"}, res.Failure)
	assert.ErrorIs(t, res.Err, ErrServiceUnavailable)
	assert.Equal(t, res.Failure, res.Body())
	assert.Zero(t, store.putCalls)

	cache.Get(context.Background(), 2018, "Subaru", "WRX")
	assert.EqualValues(t, 2, src.complaintCalls.Load())
	// Recalls are never queried once complaints fail.
	assert.Zero(t, src.recallCalls.Load())
}

func TestCache_NegativeCountIsFailure(t *testing.T) {
	t.Parallel()

	src := &stubSource{complaints: -1}
	cache := NewCache(src, newMemStore(), Options{}, zerolog.Nop())

	res := cache.Get(context.Background(), 2018, "Subaru", "WRX")
	assert.False(t, res.OK())
	assert.ErrorIs(t, res.Err, ErrServiceUnavailable)
}

func TestCache_WriteFailureIsWarning(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	store.putErr = errors.New("disk full")
	cache := NewCache(&stubSource{complaints: 4, recalls: 1}, store, Options{Now: newClock().Now}, zerolog.Nop())

	res := cache.Get(context.Background(), 2019, "Nissan", "Leaf")
	require.True(t, res.OK())
	require.Error(t, res.Warning)
	assert.Contains(t, res.Warning.Error(), "disk full")
	assert.Equal(t, 4, res.Data.ComplaintsCount)
	assert.Equal(t, res.Data, res.Body())
}

func TestCache_ConcurrentSameKeySingleFetch(t *testing.T) {
	t.Parallel()

	src := &stubSource{complaints: 1, release: make(chan struct{})}
	cache := NewCache(src, newMemStore(), Options{Now: newClock().Now}, zerolog.Nop())

	const callers = 16
	var wg sync.WaitGroup
	results := make([]Result, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = cache.Get(context.Background(), 2018, "Honda", "Civic")
		}()
	}

	// Let the flight run once at least one caller has started it.
	require.Eventually(t, func() bool { return src.complaintCalls.Load() == 1 }, time.Second, time.Millisecond)
	close(src.release)
	wg.Wait()

	assert.EqualValues(t, 1, src.complaintCalls.Load())
	for _, r := range results {
		assert.True(t, r.OK())
		assert.Equal(t, 1, r.Data.ComplaintsCount)
	}
}

func TestCache_CallerCancellation(t *testing.T) {
	t.Parallel()

	src := &stubSource{release: make(chan struct{})}
	defer close(src.release)
	cache := NewCache(src, newMemStore(), Options{}, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	res := cache.Get(ctx, 2018, "Honda", "Civic")
	require.False(t, res.OK())
	assert.ErrorIs(t, res.Err, context.DeadlineExceeded)
}

func TestFileStore_RoundTripAcrossInstances(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nhtsa_cache.json")
	ctx := context.Background()
	entry := Entry{
		Data:     Payload{ModelYear: 2018, Make: "Honda", Model: "Civic", ComplaintsCount: 12, ReliabilityScore: 0.78, SafetyScore: 1, VehicleAgeYears: 7},
		CachedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	s1 := NewFileStore(path, zerolog.Nop())
	require.NoError(t, s1.Put(ctx, "2018_honda_civic", entry))

	s2 := NewFileStore(path, zerolog.Nop())
	got, ok, err := s2.Get(ctx, "2018_honda_civic")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, entry.Data, got.Data)
	assert.True(t, entry.CachedAt.Equal(got.CachedAt))
	assert.Equal(t, 1, s2.Len())
}

func TestFileStore_SharedFileKeepsOtherWriters(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nhtsa_cache.json")
	ctx := context.Background()
	civic := Entry{Data: Payload{ModelYear: 2018, Make: "Honda", Model: "Civic", ComplaintsCount: 3}, CachedAt: time.Now().UTC()}
	wrx := Entry{Data: Payload{ModelYear: 2018, Make: "Subaru", Model: "WRX", RecallsCount: 1}, CachedAt: time.Now().UTC()}

	server := NewFileStore(path, zerolog.Nop())
	batch := NewFileStore(path, zerolog.Nop())

	// The server has already read the (empty) file before the batch writes.
	_, ok, err := server.Get(ctx, "2018_honda_civic")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, batch.Put(ctx, "2018_honda_civic", civic))

	// A later read in the server picks up the batch's entry.
	got, ok, err := server.Get(ctx, "2018_honda_civic")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, civic.Data, got.Data)

	require.NoError(t, server.Put(ctx, "2018_subaru_wrx", wrx))
	require.NoError(t, batch.Put(ctx, "2019_nissan_leaf", Entry{CachedAt: time.Now().UTC()}))

	fresh := NewFileStore(path, zerolog.Nop())
	assert.Equal(t, 3, fresh.Len())
	for _, key := range []string{"2018_honda_civic", "2018_subaru_wrx", "2019_nissan_leaf"} {
		_, ok, err := fresh.Get(ctx, key)
		require.NoError(t, err)
		assert.True(t, ok, "missing %s", key)
	}
}

func TestFileStore_MergeKeepsNewerEntry(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nhtsa_cache.json")
	ctx := context.Background()
	older := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(24 * time.Hour)

	a := NewFileStore(path, zerolog.Nop())
	b := NewFileStore(path, zerolog.Nop())

	require.NoError(t, a.Put(ctx, "k", Entry{Data: Payload{ComplaintsCount: 1}, CachedAt: older}))
	require.NoError(t, b.Put(ctx, "k", Entry{Data: Payload{ComplaintsCount: 2}, CachedAt: newer}))
	require.NoError(t, a.Put(ctx, "other", Entry{CachedAt: older}))

	got, ok, err := NewFileStore(path, zerolog.Nop()).Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2, got.Data.ComplaintsCount)
}

func TestFileStore_CorruptFileIsEmpty(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nhtsa_cache.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	s := NewFileStore(path, zerolog.Nop())
	_, ok, err := s.Get(context.Background(), "2018_honda_civic")
	require.NoError(t, err)
	assert.False(t, ok)

	// The next write replaces the corrupt file.
	require.NoError(t, s.Put(context.Background(), "k", Entry{}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"k"`)
}

func TestFileStore_FailedWriteKeepsMemoryState(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	s := NewFileStore(filepath.Join(blocker, "cache.json"), zerolog.Nop())
	err := s.Put(context.Background(), "k", Entry{})
	require.Error(t, err)
	assert.Zero(t, s.Len())
}

func TestBadgerStore(t *testing.T) {
	t.Parallel()

	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	store := NewBadgerStore(db, time.Hour)
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	_, ok, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	entry := Entry{Data: Payload{ModelYear: 2019, Make: "Nissan", Model: "Leaf", RecallsCount: 2}, CachedAt: time.Now().UTC()}
	require.NoError(t, store.Put(ctx, "2019_nissan_leaf", entry))

	got, ok, err := store.Get(ctx, "2019_nissan_leaf")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, entry.Data, got.Data)
}
