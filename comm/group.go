package comm

import (
	"errors"

	"mcstat/value"
)

var ErrProtocolViolation = errors.New("collective call sequence diverged across ranks")

// Group is the collective-communication boundary between cooperating
// processes. Every rank in a group must issue the same sequence of
// collective calls; each call blocks until the whole group has contributed.
// A rank that skips or reorders a call breaks the protocol for the whole
// group.
type Group interface {
	Rank() int
	Size() int

	// AllReduceInt returns the group-wide sum of n, the same on every rank.
	AllReduceInt(n int) (int, error)

	// AllReduce returns the group-wide element-wise sum, the same on every
	// rank. The zero Value is the neutral contribution: it adds nothing and
	// does not constrain the shape of the reduction.
	AllReduce(v value.Value) (value.Value, error)

	// AllReduceInPlace overwrites v with the group-wide sum on every rank.
	AllReduceInPlace(v *value.Value) error
}

type selfGroup struct{}

// Self returns the trivial single-rank group. Reductions are the identity.
func Self() Group {
	return selfGroup{}
}

func (selfGroup) Rank() int { return 0 }
func (selfGroup) Size() int { return 1 }

func (selfGroup) AllReduceInt(n int) (int, error) {
	return n, nil
}

func (selfGroup) AllReduce(v value.Value) (value.Value, error) {
	return v, nil
}

func (selfGroup) AllReduceInPlace(*value.Value) error {
	return nil
}
