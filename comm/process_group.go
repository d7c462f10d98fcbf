package comm

import (
	"sync"

	"mcstat/value"
)

const (
	opInt = iota
	opValue
)

// round is one in-flight collective operation. The last rank to arrive
// computes the sum, publishes it and releases the others.
type round struct {
	op      int
	seq     uint64
	ints    []int
	vals    []value.Value
	arrived int
	done    chan struct{}
	intSum  int
	valSum  value.Value
	err     error
}

type groupState struct {
	size   int
	mu     sync.Mutex
	cur    *round
	failed bool
}

// Rank is one member handle of an in-process group. A Rank is intended for
// use from a single goroutine, matching the one-thread-per-process model of
// the processes it stands in for.
type Rank struct {
	st   *groupState
	rank int
	seq  uint64
}

// NewGroup creates an in-process group of the given size and returns one
// Rank handle per member. Collective calls on the handles rendezvous with
// each other: every call blocks until all size members have contributed,
// and every member receives the identical result.
//
// Each collective call carries an operation kind and a per-rank sequence
// number; if members disagree, the round fails on every rank with
// ErrProtocolViolation instead of hanging, and the group stays failed.
func NewGroup(size int) []*Rank {
	if size < 1 {
		size = 1
	}
	st := &groupState{size: size}
	ranks := make([]*Rank, size)
	for i := range ranks {
		ranks[i] = &Rank{st: st, rank: i}
	}
	return ranks
}

func (r *Rank) Rank() int { return r.rank }
func (r *Rank) Size() int { return r.st.size }

func (r *Rank) AllReduceInt(n int) (int, error) {
	rd, err := r.collect(opInt, n, value.Value{})
	if err != nil {
		return 0, err
	}
	return rd.intSum, nil
}

func (r *Rank) AllReduce(v value.Value) (value.Value, error) {
	rd, err := r.collect(opValue, 0, v)
	if err != nil {
		return value.Value{}, err
	}
	return rd.valSum, nil
}

func (r *Rank) AllReduceInPlace(v *value.Value) error {
	out, err := r.AllReduce(*v)
	if err != nil {
		return err
	}
	*v = out
	return nil
}

func (r *Rank) collect(op int, n int, v value.Value) (*round, error) {
	r.seq++
	st := r.st

	st.mu.Lock()
	if st.failed {
		st.mu.Unlock()
		return nil, ErrProtocolViolation
	}
	rd := st.cur
	if rd == nil {
		rd = &round{
			op:   op,
			seq:  r.seq,
			ints: make([]int, st.size),
			vals: make([]value.Value, st.size),
			done: make(chan struct{}),
		}
		st.cur = rd
	}
	if rd.op != op || rd.seq != r.seq {
		st.failed = true
		st.cur = nil
		rd.err = ErrProtocolViolation
		close(rd.done)
		st.mu.Unlock()
		return nil, ErrProtocolViolation
	}
	rd.ints[r.rank] = n
	rd.vals[r.rank] = v
	rd.arrived++
	if rd.arrived == st.size {
		rd.finish()
		st.cur = nil
		close(rd.done)
		st.mu.Unlock()
	} else {
		st.mu.Unlock()
		<-rd.done
	}
	return rd, rd.err
}

// finish sums the contributions once, in rank order, so every member
// observes the bitwise-identical result.
func (rd *round) finish() {
	if rd.op == opInt {
		for _, n := range rd.ints {
			rd.intSum += n
		}
		return
	}
	var sum value.Value
	for _, v := range rd.vals {
		if !v.IsValid() {
			continue
		}
		if !sum.IsValid() {
			sum = v.ZeroLike()
		}
		var err error
		sum, err = sum.Add(v)
		if err != nil {
			rd.err = err
			return
		}
	}
	rd.valSum = sum
}
