package engine

import "golang.org/x/exp/constraints"

// sum totals values generically over any Numerical reaction's scalar type.
// NumericValuer fixes float64 as the interface boundary, but the
// accumulation itself doesn't need to be float64-specific, so it's kept
// generic rather than inlined into SumReceived's loop.
func sum[T constraints.Float | constraints.Integer](values []T) T {
	var total T
	for _, v := range values {
		total += v
	}
	return total
}
