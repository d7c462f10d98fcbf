package storage

import (
	"encoding/binary"
	"errors"
	"sync"
)

var ErrNotFound = errors.New("sample not found")

const (
	kindSample = iota
	kindMeta
)

// metadata slots under kindMeta
const (
	lengthOffset = iota
)

func GetSampleKey(seriesID, index int64) []byte {
	buf := make([]byte, 17)

	// <8 bytes series ID> <1 byte kind> <8 bytes sample index>
	binary.LittleEndian.PutUint64(buf[:8], uint64(seriesID))
	buf[8] = kindSample
	binary.LittleEndian.PutUint64(buf[9:], uint64(index))

	return buf
}

func GetMetaKey(seriesID int64, offset int64) []byte {
	buf := make([]byte, 17)
	binary.LittleEndian.PutUint64(buf[:8], uint64(seriesID))
	buf[8] = kindMeta
	binary.LittleEndian.PutUint64(buf[9:], uint64(offset))
	return buf
}

func GetSeriesIDFromKey(buf []byte) int64 {
	return int64(binary.LittleEndian.Uint64(buf[:8]))
}

func GetIndexFromKey(buf []byte) int64 {
	return int64(binary.LittleEndian.Uint64(buf[9:]))
}

// Backend persists encoded samples keyed by (series ID, sample index),
// plus a per-series length entry maintained by the layer above.
type Backend interface {
	GetSample(seriesID, index int64) ([]byte, error)
	PutSample(seriesID, index int64, buf []byte) error
	DeleteSample(seriesID, index int64) error

	GetSeriesLength(seriesID int64) (int64, error)
	PutSeriesLength(seriesID, length int64) error

	IterateSamples(seriesID int64, lambda func(int64) error) error

	Close() error
}

type InMemoryBackend struct {
	samples map[string][]byte
	lengths map[int64]int64
	mutex   sync.RWMutex
}

func NewInMemoryBackend() *InMemoryBackend {
	return &InMemoryBackend{
		samples: make(map[string][]byte),
		lengths: make(map[int64]int64),
	}
}

func (backend *InMemoryBackend) GetSample(seriesID, index int64) ([]byte, error) {
	backend.mutex.RLock()
	defer backend.mutex.RUnlock()
	buf, ok := backend.samples[string(GetSampleKey(seriesID, index))]
	if !ok {
		return nil, ErrNotFound
	}
	return buf, nil
}

func (backend *InMemoryBackend) PutSample(seriesID, index int64, buf []byte) error {
	backend.mutex.Lock()
	defer backend.mutex.Unlock()
	backend.samples[string(GetSampleKey(seriesID, index))] = buf
	return nil
}

func (backend *InMemoryBackend) DeleteSample(seriesID, index int64) error {
	backend.mutex.Lock()
	defer backend.mutex.Unlock()
	delete(backend.samples, string(GetSampleKey(seriesID, index)))
	return nil
}

func (backend *InMemoryBackend) GetSeriesLength(seriesID int64) (int64, error) {
	backend.mutex.RLock()
	defer backend.mutex.RUnlock()
	return backend.lengths[seriesID], nil
}

func (backend *InMemoryBackend) PutSeriesLength(seriesID, length int64) error {
	backend.mutex.Lock()
	defer backend.mutex.Unlock()
	backend.lengths[seriesID] = length
	return nil
}

func (backend *InMemoryBackend) IterateSamples(seriesID int64, lambda func(int64) error) error {
	backend.mutex.RLock()
	defer backend.mutex.RUnlock()
	for k := range backend.samples {
		buf := []byte(k)
		if GetSeriesIDFromKey(buf) != seriesID {
			continue
		}
		if err := lambda(GetIndexFromKey(buf)); err != nil {
			return err
		}
	}
	return nil
}

func (backend *InMemoryBackend) Close() error {
	backend.mutex.Lock()
	defer backend.mutex.Unlock()
	backend.samples = nil
	backend.lengths = nil
	return nil
}
