package stat

import "mcstat/value"

// Samples is read-only random access to an ordered sequence of samples.
// Every sample in one sequence must have the same shape. The sequence is
// owned by the caller; no operation in this package mutates or retains it.
type Samples interface {
	Len() int
	At(i int) value.Value
}

type Float64Samples []float64

func (s Float64Samples) Len() int { return len(s) }

func (s Float64Samples) At(i int) value.Value { return value.Real(s[i]) }

type Complex128Samples []complex128

func (s Complex128Samples) Len() int { return len(s) }

func (s Complex128Samples) At(i int) value.Value { return value.Complex(s[i]) }

type ValueSamples []value.Value

func (s ValueSamples) Len() int { return len(s) }

func (s ValueSamples) At(i int) value.Value { return s[i] }
