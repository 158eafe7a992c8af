package common

import (
	"fmt"
	"math"
)

// SafeUint64ToInt safely converts uint64 to int with bounds checking
func SafeUint64ToInt(value uint64) (int, error) {
	if value > math.MaxInt {
		return 0, fmt.Errorf("value %d out of range for int (0-%d)", value, math.MaxInt)
	}
	return int(value), nil
}

// SafeUint64ToInt64 safely converts uint64 to int64 with bounds checking
func SafeUint64ToInt64(value uint64) (int64, error) {
	if value > math.MaxInt64 {
		return 0, fmt.Errorf("value %d out of range for int64 (0-%d)", value, int64(math.MaxInt64))
	}
	return int64(value), nil
}

// SafeInt64ToUint64 safely converts int64 to uint64 with bounds checking
func SafeInt64ToUint64(value int64) (uint64, error) {
	if value < 0 {
		return 0, fmt.Errorf("value %d is negative, cannot convert to uint64", value)
	}
	return uint64(value), nil
}
