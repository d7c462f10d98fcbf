package value

import (
	"errors"
	"math"
	"math/cmplx"
)

var ErrShapeMismatch = errors.New("shape mismatch")
var ErrSizeMismatch = errors.New("data length does not match shape")

// Value is one numeric sample: a real or complex scalar, or a fixed-shape
// real or complex tensor. All operations return fresh values and never
// mutate their receiver. The zero Value is invalid; it acts as the neutral
// contribution in collective sums.
type Value struct {
	shape []int
	data  []complex128
	cmplx bool
}

func Real(x float64) Value {
	return Value{data: []complex128{complex(x, 0)}}
}

func Complex(z complex128) Value {
	return Value{data: []complex128{z}, cmplx: true}
}

func RealTensor(shape []int, data []float64) (Value, error) {
	if shapeSize(shape) != len(data) || len(shape) == 0 {
		return Value{}, ErrSizeMismatch
	}
	buf := make([]complex128, len(data))
	for i, x := range data {
		buf[i] = complex(x, 0)
	}
	return Value{shape: copyShape(shape), data: buf}, nil
}

func ComplexTensor(shape []int, data []complex128) (Value, error) {
	if shapeSize(shape) != len(data) || len(shape) == 0 {
		return Value{}, ErrSizeMismatch
	}
	buf := make([]complex128, len(data))
	copy(buf, data)
	return Value{shape: copyShape(shape), data: buf, cmplx: true}, nil
}

func (v Value) IsValid() bool {
	return v.data != nil
}

func (v Value) IsComplex() bool {
	return v.cmplx
}

func (v Value) IsScalar() bool {
	return v.data != nil && len(v.shape) == 0
}

func (v Value) Shape() []int {
	return copyShape(v.shape)
}

func (v Value) Size() int {
	return len(v.data)
}

// ZeroLike returns the additive identity with the shape and number kind of v.
func (v Value) ZeroLike() Value {
	if !v.IsValid() {
		return Value{}
	}
	return Value{
		shape: copyShape(v.shape),
		data:  make([]complex128, len(v.data)),
		cmplx: v.cmplx,
	}
}

// RealZeroLike returns the real-valued additive identity with the shape of v.
func (v Value) RealZeroLike() Value {
	if !v.IsValid() {
		return Value{}
	}
	return Value{
		shape: copyShape(v.shape),
		data:  make([]complex128, len(v.data)),
	}
}

func (v Value) Add(w Value) (Value, error) {
	if !v.shapeEqual(w) {
		return Value{}, ErrShapeMismatch
	}
	out := v.fresh(w)
	for i := range out.data {
		out.data[i] = v.data[i] + w.data[i]
	}
	return out, nil
}

func (v Value) Sub(w Value) (Value, error) {
	if !v.shapeEqual(w) {
		return Value{}, ErrShapeMismatch
	}
	out := v.fresh(w)
	for i := range out.data {
		out.data[i] = v.data[i] - w.data[i]
	}
	return out, nil
}

// Div divides every element by the scalar s. Dividing an invalid Value
// returns it unchanged.
func (v Value) Div(s float64) Value {
	if !v.IsValid() {
		return v
	}
	out := v.fresh(v)
	d := complex(s, 0)
	for i := range out.data {
		out.data[i] = v.data[i] / d
	}
	return out
}

// ConjRealMul returns the element-wise real part of conj(v)*w. The result
// is always real-valued; for real operands it degenerates to the plain
// element-wise product.
func (v Value) ConjRealMul(w Value) (Value, error) {
	if !v.shapeEqual(w) {
		return Value{}, ErrShapeMismatch
	}
	out := Value{shape: copyShape(v.shape), data: make([]complex128, len(v.data))}
	for i := range out.data {
		out.data[i] = complex(real(cmplx.Conj(v.data[i])*w.data[i]), 0)
	}
	return out, nil
}

// Sqrt returns the element-wise square root. Complex values use the
// principal branch.
func (v Value) Sqrt() Value {
	if !v.IsValid() {
		return v
	}
	out := v.fresh(v)
	for i := range out.data {
		if v.cmplx {
			out.data[i] = cmplx.Sqrt(v.data[i])
		} else {
			out.data[i] = complex(math.Sqrt(real(v.data[i])), 0)
		}
	}
	return out
}

// Scalar returns the single element of a scalar Value.
func (v Value) Scalar() complex128 {
	return v.data[0]
}

// Float64s returns the real parts of all elements in row-major order.
func (v Value) Float64s() []float64 {
	out := make([]float64, len(v.data))
	for i, z := range v.data {
		out[i] = real(z)
	}
	return out
}

// Complex128s returns all elements in row-major order.
func (v Value) Complex128s() []complex128 {
	out := make([]complex128, len(v.data))
	copy(out, v.data)
	return out
}

// Equal reports exact equality of shape, number kind and elements.
func (v Value) Equal(w Value) bool {
	if !v.IsValid() || !w.IsValid() {
		return v.IsValid() == w.IsValid()
	}
	if v.cmplx != w.cmplx || !v.shapeEqual(w) {
		return false
	}
	for i := range v.data {
		if v.data[i] != w.data[i] {
			return false
		}
	}
	return true
}

func (v Value) shapeEqual(w Value) bool {
	if !v.IsValid() || !w.IsValid() || len(v.shape) != len(w.shape) {
		return false
	}
	for i := range v.shape {
		if v.shape[i] != w.shape[i] {
			return false
		}
	}
	return true
}

// fresh allocates a result value shaped like v, complex if either operand is.
func (v Value) fresh(w Value) Value {
	return Value{
		shape: copyShape(v.shape),
		data:  make([]complex128, len(v.data)),
		cmplx: v.cmplx || w.cmplx,
	}
}

func shapeSize(shape []int) int {
	size := 1
	for _, dim := range shape {
		if dim < 1 {
			return -1
		}
		size *= dim
	}
	return size
}

func copyShape(shape []int) []int {
	if shape == nil {
		return nil
	}
	out := make([]int, len(shape))
	copy(out, shape)
	return out
}
