package stat

import "mcstat/value"

// Welford is a single-pass running mean and variance accumulator over
// samples of one shared shape. The spread term accumulates
// Re(conj(x - m_old) * (x - m_new)), which reduces to Welford's classic
// update for real data and to the squared modulus for complex data.
type Welford struct {
	count int64
	mean  value.Value
	m2    value.Value
}

func NewWelford() *Welford {
	return &Welford{}
}

// Update folds one sample into the accumulator. The first sample fixes the
// shape; later samples of a different shape fail with ErrShapeMismatch and
// leave the accumulator unchanged.
func (w *Welford) Update(x value.Value) error {
	mean, m2 := w.mean, w.m2
	if w.count == 0 {
		mean = x.ZeroLike()
		m2 = x.RealZeroLike()
	}
	count := w.count + 1

	delta, err := x.Sub(mean)
	if err != nil {
		return err
	}
	mean, err = mean.Add(delta.Div(float64(count)))
	if err != nil {
		return err
	}
	delta2, err := x.Sub(mean)
	if err != nil {
		return err
	}
	sq, err := delta.ConjRealMul(delta2)
	if err != nil {
		return err
	}
	m2, err = m2.Add(sq)
	if err != nil {
		return err
	}

	w.count, w.mean, w.m2 = count, mean, m2
	return nil
}

func (w *Welford) Count() int64 {
	return w.count
}

func (w *Welford) Mean() (value.Value, error) {
	if w.count == 0 {
		return value.Value{}, ErrEmptyData
	}
	return w.mean, nil
}

// SampleVariance returns the element-wise unbiased variance, M2/(n-1).
func (w *Welford) SampleVariance() (value.Value, error) {
	if w.count < 2 {
		return value.Value{}, ErrTooFewSamples
	}
	return w.m2.Div(float64(w.count - 1)), nil
}

// StandardError returns the element-wise standard error of the mean,
// sqrt(M2 / (n(n-1))).
func (w *Welford) StandardError() (value.Value, error) {
	if w.count < 2 {
		return value.Value{}, ErrTooFewSamples
	}
	norm := float64(w.count) * float64(w.count-1)
	return w.m2.Div(norm).Sqrt(), nil
}

// MergeWelford combines two accumulators into one covering both sample
// streams, without access to the raw samples.
func MergeWelford(a, b *Welford) (*Welford, error) {
	if a.count == 0 {
		return &Welford{count: b.count, mean: b.mean, m2: b.m2}, nil
	}
	if b.count == 0 {
		return &Welford{count: a.count, mean: a.mean, m2: a.m2}, nil
	}
	na, nb := float64(a.count), float64(b.count)
	n := na + nb

	delta, err := b.mean.Sub(a.mean)
	if err != nil {
		return nil, err
	}
	mean, err := a.mean.Add(delta.Div(n / nb))
	if err != nil {
		return nil, err
	}
	sq, err := delta.ConjRealMul(delta)
	if err != nil {
		return nil, err
	}
	m2, err := a.m2.Add(b.m2)
	if err != nil {
		return nil, err
	}
	m2, err = m2.Add(sq.Div(n / (na * nb)))
	if err != nil {
		return nil, err
	}

	return &Welford{count: a.count + b.count, mean: mean, m2: m2}, nil
}
