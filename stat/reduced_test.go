package stat

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"mcstat/comm"
	"mcstat/value"
)

func reduceOnAll(ranks []*comm.Rank, body func(r *comm.Rank, i int)) {
	var wg sync.WaitGroup
	for i, r := range ranks {
		wg.Add(1)
		go func(i int, r *comm.Rank) {
			defer wg.Done()
			body(r, i)
		}(i, r)
	}
	wg.Wait()
}

func TestMeanReducedSelf(t *testing.T) {
	m, err := MeanReduced(comm.Self(), Float64Samples{1, 2, 3, 4, 5})
	assert.NoError(t, err)
	assert.Equal(t, complex128(3), m.Scalar())
}

func TestMeanReducedMatchesConcatenation(t *testing.T) {
	parts := []Float64Samples{
		{2, 4, 4},
		{4, 5},
		{5, 7, 9},
	}
	full := Float64Samples{2, 4, 4, 4, 5, 5, 7, 9}
	want, err := Mean(full)
	assert.NoError(t, err)

	ranks := comm.NewGroup(len(parts))
	means := make([]value.Value, len(parts))
	errs := make([]error, len(parts))
	reduceOnAll(ranks, func(r *comm.Rank, i int) {
		means[i], errs[i] = MeanReduced(r, parts[i])
	})

	for i := range means {
		assert.NoError(t, errs[i])
		assert.InDelta(t, real(want.Scalar()), real(means[i].Scalar()), 1e-12)
		// reduced results are bitwise identical on every rank
		assert.True(t, means[i].Equal(means[0]))
	}
}

func TestMeanReducedEmptyRank(t *testing.T) {
	parts := []Float64Samples{
		{1, 2},
		{},
		{3, 4, 5},
	}

	ranks := comm.NewGroup(len(parts))
	means := make([]value.Value, len(parts))
	errs := make([]error, len(parts))
	reduceOnAll(ranks, func(r *comm.Rank, i int) {
		means[i], errs[i] = MeanReduced(r, parts[i])
	})

	for i := range means {
		assert.NoError(t, errs[i])
		assert.InDelta(t, 3.0, real(means[i].Scalar()), 1e-12)
	}
}

func TestMeanReducedAllEmpty(t *testing.T) {
	ranks := comm.NewGroup(2)
	errs := make([]error, 2)
	reduceOnAll(ranks, func(r *comm.Rank, i int) {
		_, errs[i] = MeanReduced(r, Float64Samples{})
	})

	assert.Equal(t, ErrEmptyData, errs[0])
	assert.Equal(t, ErrEmptyData, errs[1])
}

func TestMeanAndErrorReducedMatchesConcatenation(t *testing.T) {
	parts := []Float64Samples{
		{2, 4, 4, 4},
		{5, 5, 7, 9},
	}
	full := Float64Samples{2, 4, 4, 4, 5, 5, 7, 9}
	wantMean, wantErr, err := MeanAndError(full)
	assert.NoError(t, err)

	ranks := comm.NewGroup(len(parts))
	means := make([]value.Value, len(parts))
	sems := make([]value.Value, len(parts))
	errs := make([]error, len(parts))
	reduceOnAll(ranks, func(r *comm.Rank, i int) {
		means[i], sems[i], errs[i] = MeanAndErrorReduced(r, parts[i])
	})

	for i := range means {
		assert.NoError(t, errs[i])
		assert.InDelta(t, real(wantMean.Scalar()), real(means[i].Scalar()), 1e-12)
		// centering on the global mean keeps the distributed error estimate
		// equal to the single-process one; a local-mean centering would
		// come out larger
		assert.InDelta(t, real(wantErr.Scalar()), real(sems[i].Scalar()), 1e-12)
		assert.True(t, means[i].Equal(means[0]))
		assert.True(t, sems[i].Equal(sems[0]))
	}
}

func TestMeanAndErrorReducedEmptyRank(t *testing.T) {
	parts := []Complex128Samples{
		{1 + 1i, 3 + 3i},
		{},
	}
	wantMean, wantErr, err := MeanAndError(Complex128Samples{1 + 1i, 3 + 3i})
	assert.NoError(t, err)

	ranks := comm.NewGroup(len(parts))
	means := make([]value.Value, len(parts))
	sems := make([]value.Value, len(parts))
	errs := make([]error, len(parts))
	reduceOnAll(ranks, func(r *comm.Rank, i int) {
		means[i], sems[i], errs[i] = MeanAndErrorReduced(r, parts[i])
	})

	for i := range means {
		assert.NoError(t, errs[i])
		assert.InDelta(t, real(wantMean.Scalar()), real(means[i].Scalar()), 1e-12)
		assert.InDelta(t, imag(wantMean.Scalar()), imag(means[i].Scalar()), 1e-12)
		assert.InDelta(t, real(wantErr.Scalar()), real(sems[i].Scalar()), 1e-12)
	}
}

func TestMeanAndErrorReducedTensor(t *testing.T) {
	mk := func(xs ...float64) value.Value {
		v, err := value.RealTensor([]int{2}, xs)
		assert.NoError(t, err)
		return v
	}
	parts := []ValueSamples{
		{mk(1, 10)},
		{mk(3, 30), mk(5, 50)},
	}
	full := ValueSamples{mk(1, 10), mk(3, 30), mk(5, 50)}
	wantMean, wantErr, err := MeanAndError(full)
	assert.NoError(t, err)

	ranks := comm.NewGroup(len(parts))
	means := make([]value.Value, len(parts))
	sems := make([]value.Value, len(parts))
	errs := make([]error, len(parts))
	reduceOnAll(ranks, func(r *comm.Rank, i int) {
		means[i], sems[i], errs[i] = MeanAndErrorReduced(r, parts[i])
	})

	for i := range means {
		assert.NoError(t, errs[i])
		for k, want := range wantMean.Float64s() {
			assert.InDelta(t, want, means[i].Float64s()[k], 1e-12)
		}
		for k, want := range wantErr.Float64s() {
			assert.InDelta(t, want, sems[i].Float64s()[k], 1e-12)
		}
	}
}

func TestMeanAndErrorReducedTooFewSamples(t *testing.T) {
	parts := []Float64Samples{{7}, {}}

	ranks := comm.NewGroup(len(parts))
	errs := make([]error, len(parts))
	reduceOnAll(ranks, func(r *comm.Rank, i int) {
		_, _, errs[i] = MeanAndErrorReduced(r, parts[i])
	})

	assert.Equal(t, ErrTooFewSamples, errs[0])
	assert.Equal(t, ErrTooFewSamples, errs[1])
}

func TestReducedIdempotent(t *testing.T) {
	data := Float64Samples{0.5, 1.5, 2.5}

	m1, e1, err := MeanAndErrorReduced(comm.Self(), data)
	assert.NoError(t, err)
	m2, e2, err := MeanAndErrorReduced(comm.Self(), data)
	assert.NoError(t, err)

	assert.True(t, m1.Equal(m2))
	assert.True(t, e1.Equal(e2))
	assert.InDelta(t, 1.5, real(m1.Scalar()), 1e-12)
	assert.InDelta(t, math.Sqrt(2.0/6.0), real(e1.Scalar()), 1e-12)
}
