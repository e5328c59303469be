package internal

import (
	"iter"
)

// UniqueConcat2 concatenates key/value iterators, yielding each key only
// the first time it is seen. Earlier sequences shadow later ones.
func UniqueConcat2[K comparable, V any](seqs ...iter.Seq2[K, V]) iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		seen := map[K]bool{}
		for _, seq := range seqs {
			for key, val := range seq {
				if seen[key] {
					continue
				}
				seen[key] = true
				if !yield(key, val) {
					return // Stop if the consumer stops
				}
			}
		}
	}
}
