package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBadgerBackend(t *testing.T) {
	backend := NewBadgerBackend(TestBadgerDB())
	testBackendRoundTrip(t, backend)
	testBackendSeriesLength(t, backend)
	testIterateSamples(t, backend)
	assert.NoError(t, backend.Close())
}

func TestBadgerBackendLengthSurvivesSamples(t *testing.T) {
	backend := NewBadgerBackend(TestBadgerDB())
	defer backend.Close()

	// length entries and sample entries must not collide
	assert.NoError(t, backend.PutSample(3, 0, []byte{1}))
	assert.NoError(t, backend.PutSeriesLength(3, 1))

	buf, err := backend.GetSample(3, 0)
	assert.NoError(t, err)
	assert.Equal(t, []byte{1}, buf)

	length, err := backend.GetSeriesLength(3)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), length)

	var count int
	assert.NoError(t, backend.IterateSamples(3, func(int64) error {
		count++
		return nil
	}))
	assert.Equal(t, 1, count)
}
