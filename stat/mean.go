package stat

import (
	"errors"

	"mcstat/comm"
	"mcstat/value"
)

var ErrEmptyData = errors.New("no samples")
var ErrTooFewSamples = errors.New("need at least two samples")

// Mean returns the arithmetic mean of data. The mean is accumulated
// incrementally, m += (x_n - m)/(n+1), so long sequences do not lose
// precision to a growing running sum.
func Mean(data Samples) (value.Value, error) {
	if data.Len() == 0 {
		return value.Value{}, ErrEmptyData
	}
	m := data.At(0).ZeroLike()
	for n := 0; n < data.Len(); n++ {
		d, err := data.At(n).Sub(m)
		if err != nil {
			return value.Value{}, err
		}
		m, err = m.Add(d.Div(float64(n + 1)))
		if err != nil {
			return value.Value{}, err
		}
	}
	return m, nil
}

// MeanReduced returns the mean over the union of every rank's local data,
// identical on every rank. Local sizes may differ; a rank with no local
// samples still participates and contributes nothing. Fails with
// ErrEmptyData on every rank when the whole group holds no samples.
func MeanReduced(g comm.Group, data Samples) (value.Value, error) {
	nLocal := data.Len()
	nGlobal, err := g.AllReduceInt(nLocal)
	if err != nil {
		return value.Value{}, err
	}
	if nGlobal == 0 {
		return value.Value{}, ErrEmptyData
	}
	var contrib value.Value
	if nLocal > 0 {
		m, err := Mean(data)
		if err != nil {
			return value.Value{}, err
		}
		// Weight the local mean by the local share of the global count;
		// the group sum of these contributions is the global mean.
		contrib = m.Div(float64(nGlobal) / float64(nLocal))
	}
	if err := g.AllReduceInPlace(&contrib); err != nil {
		return value.Value{}, err
	}
	return contrib, nil
}

// MeanAndError returns the mean of data and the standard error of that
// mean, sqrt(sum |x_i - m|^2 / (N(N-1))) element-wise. The error value is
// always real, whatever the sample kind. Fails with ErrTooFewSamples for
// fewer than two samples.
func MeanAndError(data Samples) (value.Value, value.Value, error) {
	n := data.Len()
	if n < 2 {
		return value.Value{}, value.Value{}, ErrTooFewSamples
	}
	m, err := Mean(data)
	if err != nil {
		return value.Value{}, value.Value{}, err
	}
	e := m.RealZeroLike()
	norm := float64(n) * float64(n-1)
	for i := 0; i < n; i++ {
		d, err := data.At(i).Sub(m)
		if err != nil {
			return value.Value{}, value.Value{}, err
		}
		sq, err := d.ConjRealMul(d)
		if err != nil {
			return value.Value{}, value.Value{}, err
		}
		e, err = e.Add(sq.Div(norm))
		if err != nil {
			return value.Value{}, value.Value{}, err
		}
	}
	return m, e.Sqrt(), nil
}

// MeanAndErrorReduced returns the mean and standard error over the union
// of every rank's local data, identical on every rank. Squared deviations
// are centered on the global mean; centering on each rank's local mean
// would bias the error estimate. Fails with ErrTooFewSamples on every rank
// when the group holds fewer than two samples in total.
func MeanAndErrorReduced(g comm.Group, data Samples) (value.Value, value.Value, error) {
	nGlobal, err := g.AllReduceInt(data.Len())
	if err != nil {
		return value.Value{}, value.Value{}, err
	}
	if nGlobal < 2 {
		return value.Value{}, value.Value{}, ErrTooFewSamples
	}
	m, err := MeanReduced(g, data)
	if err != nil {
		return value.Value{}, value.Value{}, err
	}
	part := m.RealZeroLike()
	for i := 0; i < data.Len(); i++ {
		d, err := data.At(i).Sub(m)
		if err != nil {
			return value.Value{}, value.Value{}, err
		}
		sq, err := d.ConjRealMul(d)
		if err != nil {
			return value.Value{}, value.Value{}, err
		}
		part, err = part.Add(sq)
		if err != nil {
			return value.Value{}, value.Value{}, err
		}
	}
	if err := g.AllReduceInPlace(&part); err != nil {
		return value.Value{}, value.Value{}, err
	}
	norm := float64(nGlobal) * float64(nGlobal-1)
	return m, part.Div(norm).Sqrt(), nil
}
