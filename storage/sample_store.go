package storage

import (
	"sync"

	"github.com/dgraph-io/ristretto"

	"mcstat/value"
)

// SampleStore keeps per-series sample sequences on a Backend, with a
// lossy ristretto cache in front of the decoded values. Series lengths are
// tracked exactly in memory and written through to the backend.
type SampleStore struct {
	backend      Backend
	cacheEnabled bool
	valueCache   *ristretto.Cache

	mu      sync.Mutex
	lengths map[int64]int64
}

func NewSampleStore(backend Backend, cacheEnabled bool) *SampleStore {
	valueCache, _ := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e6,
		MaxCost:     1 << 26,
		BufferItems: 64,
	})

	return &SampleStore{
		backend:      backend,
		cacheEnabled: cacheEnabled,
		valueCache:   valueCache,
		lengths:      make(map[int64]int64),
	}
}

// Append stores v as the next sample of the series and returns its index.
func (store *SampleStore) Append(seriesID int64, v value.Value) (int64, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	length, err := store.seriesLength(seriesID)
	if err != nil {
		return 0, err
	}
	index := length

	if err := store.backend.PutSample(seriesID, index, ValueToBytes(v)); err != nil {
		return 0, err
	}
	if err := store.backend.PutSeriesLength(seriesID, length+1); err != nil {
		return 0, err
	}
	store.lengths[seriesID] = length + 1

	if store.cacheEnabled {
		store.valueCache.Set(string(GetSampleKey(seriesID, index)), v, 1)
	}
	return index, nil
}

func (store *SampleStore) Get(seriesID, index int64) (value.Value, error) {
	if store.cacheEnabled {
		cached, found := store.valueCache.Get(string(GetSampleKey(seriesID, index)))
		if found {
			return cached.(value.Value), nil
		}
	}
	buf, err := store.backend.GetSample(seriesID, index)
	if err != nil {
		return value.Value{}, err
	}
	v, err := BytesToValue(buf)
	if err != nil {
		return value.Value{}, err
	}
	if store.cacheEnabled {
		store.valueCache.Set(string(GetSampleKey(seriesID, index)), v, 1)
	}
	return v, nil
}

func (store *SampleStore) Len(seriesID int64) (int64, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.seriesLength(seriesID)
}

// seriesLength is called with store.mu held.
func (store *SampleStore) seriesLength(seriesID int64) (int64, error) {
	if length, ok := store.lengths[seriesID]; ok {
		return length, nil
	}
	length, err := store.backend.GetSeriesLength(seriesID)
	if err != nil {
		return 0, err
	}
	store.lengths[seriesID] = length
	return length, nil
}

// Series returns a fixed-length view of the samples stored so far. Samples
// appended after the call are not visible through the view.
func (store *SampleStore) Series(seriesID int64) (*Series, error) {
	length, err := store.Len(seriesID)
	if err != nil {
		return nil, err
	}
	return &Series{store: store, id: seriesID, length: length}, nil
}

func (store *SampleStore) Close() error {
	return store.backend.Close()
}

// Series adapts one stored sample sequence to random-access iteration.
// It satisfies the stat package's Samples interface.
type Series struct {
	store  *SampleStore
	id     int64
	length int64
}

func (series *Series) Len() int {
	return int(series.length)
}

// At returns the i-th sample. A sample that cannot be read or decoded
// comes back as the zero Value, which any statistic over the series then
// rejects as a shape mismatch.
func (series *Series) At(i int) value.Value {
	v, err := series.store.Get(series.id, int64(i))
	if err != nil {
		return value.Value{}
	}
	return v
}
