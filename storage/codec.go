package storage

import (
	"encoding/binary"
	"errors"
	"math"

	"mcstat/value"
)

var ErrMalformedValue = errors.New("malformed value encoding")

const (
	flagComplex = 1 << iota
	flagTensor
)

// ValueToBytes encodes a value as:
//
//	<1 byte flags> <1 byte rank> <rank * 4 bytes dims>
//	<size * 8 bytes real parts> [<size * 8 bytes imaginary parts>]
//
// all little-endian. Invalid values encode to nil.
func ValueToBytes(v value.Value) []byte {
	if !v.IsValid() {
		return nil
	}

	shape := v.Shape()
	elems := v.Complex128s()

	size := 2 + 4*len(shape) + 8*len(elems)
	if v.IsComplex() {
		size += 8 * len(elems)
	}
	buf := make([]byte, size)

	if v.IsComplex() {
		buf[0] |= flagComplex
	}
	if len(shape) > 0 {
		buf[0] |= flagTensor
	}
	buf[1] = byte(len(shape))

	at := 2
	for _, dim := range shape {
		binary.LittleEndian.PutUint32(buf[at:], uint32(dim))
		at += 4
	}
	for _, z := range elems {
		binary.LittleEndian.PutUint64(buf[at:], math.Float64bits(real(z)))
		at += 8
	}
	if v.IsComplex() {
		for _, z := range elems {
			binary.LittleEndian.PutUint64(buf[at:], math.Float64bits(imag(z)))
			at += 8
		}
	}
	return buf
}

func BytesToValue(buf []byte) (value.Value, error) {
	if len(buf) < 2 {
		return value.Value{}, ErrMalformedValue
	}
	isComplex := buf[0]&flagComplex != 0
	isTensor := buf[0]&flagTensor != 0
	rank := int(buf[1])
	if isTensor == (rank == 0) {
		return value.Value{}, ErrMalformedValue
	}

	at := 2
	if len(buf) < at+4*rank {
		return value.Value{}, ErrMalformedValue
	}
	shape := make([]int, rank)
	size := 1
	for i := range shape {
		shape[i] = int(binary.LittleEndian.Uint32(buf[at:]))
		if shape[i] < 1 {
			return value.Value{}, ErrMalformedValue
		}
		size *= shape[i]
		at += 4
	}

	want := at + 8*size
	if isComplex {
		want += 8 * size
	}
	if len(buf) != want {
		return value.Value{}, ErrMalformedValue
	}

	elems := make([]complex128, size)
	for i := range elems {
		re := math.Float64frombits(binary.LittleEndian.Uint64(buf[at:]))
		elems[i] = complex(re, 0)
		at += 8
	}
	if isComplex {
		for i := range elems {
			im := math.Float64frombits(binary.LittleEndian.Uint64(buf[at:]))
			elems[i] = complex(real(elems[i]), im)
			at += 8
		}
	}

	if !isTensor {
		if isComplex {
			return value.Complex(elems[0]), nil
		}
		return value.Real(real(elems[0])), nil
	}
	if isComplex {
		return value.ComplexTensor(shape, elems)
	}
	reals := make([]float64, size)
	for i, z := range elems {
		reals[i] = real(z)
	}
	return value.RealTensor(shape, reals)
}
