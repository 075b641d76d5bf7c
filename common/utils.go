package common

// Coalesce returns the first non-zero value from the provided values, or the zero value if all are zero.
//
// Parameters:
//   - values: a variadic list of values to check for non-zero status
//
// Returns:
//   - T: the first non-zero value from the input, or the zero value if all are zero
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

// RoundUpAlign rounds value up to the next multiple of alignment. Alignment must be a power of
// two; an alignment of 0 returns value unchanged.
//
// Parameters:
//   - alignment: the required alignment in bytes
//   - value: the value to round up
//
// Returns:
//   - uint64: the smallest multiple of alignment that is >= value
func RoundUpAlign(alignment, value uint64) uint64 {
	if alignment == 0 {
		return value
	}
	return (value + alignment - 1) &^ (alignment - 1)
}
