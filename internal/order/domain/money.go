package domain

import (
	"math"
	"math/bits"
	"strconv"
)

// Money is a whole-unit amount. Being unsigned, it cannot go negative.
type Money uint64

func (m Money) Times(qty int) Money {
	if qty <= 0 {
		return 0
	}
	return m * Money(qty)
}

// MaxAmount is the largest amount the BIGINT columns can hold.
const MaxAmount Money = math.MaxInt64

// CheckedTimes is Times that reports false when the product exceeds MaxAmount.
func (m Money) CheckedTimes(qty int) (Money, bool) {
	if qty <= 0 {
		return 0, true
	}
	hi, lo := bits.Mul64(uint64(m), uint64(qty))
	if hi != 0 || Money(lo) > MaxAmount {
		return 0, false
	}
	return Money(lo), true
}

// CheckedAdd reports false when the sum exceeds MaxAmount.
func (m Money) CheckedAdd(o Money) (Money, bool) {
	sum, carry := bits.Add64(uint64(m), uint64(o), 0)
	if carry != 0 || Money(sum) > MaxAmount {
		return 0, false
	}
	return Money(sum), true
}

func (m Money) String() string { return strconv.FormatUint(uint64(m), 10) }

// Int64 is the column representation; amounts beyond int64 never reach storage.
func (m Money) Int64() int64 {
	if m > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(m)
}
