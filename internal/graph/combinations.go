package graph

import "iter"

// Choose yields every k-element combination of items in lexicographic index
// order. The yielded slice is reused between iterations; callers that keep
// a combination must copy it.
func Choose[T any](items []T, k int) iter.Seq[[]T] {
	return func(yield func([]T) bool) {
		n := len(items)
		if k <= 0 || k > n {
			return
		}
		idx := make([]int, k)
		for i := range idx {
			idx[i] = i
		}
		buf := make([]T, k)
		for {
			for i, j := range idx {
				buf[i] = items[j]
			}
			if !yield(buf) {
				return
			}
			// Advance the rightmost index that still has room.
			i := k - 1
			for i >= 0 && idx[i] == n-k+i {
				i--
			}
			if i < 0 {
				return
			}
			idx[i]++
			for j := i + 1; j < k; j++ {
				idx[j] = idx[j-1] + 1
			}
		}
	}
}

// Permutations yields every ordering of items (Heap's algorithm). The
// yielded slice is reused between iterations.
func Permutations[T any](items []T) iter.Seq[[]T] {
	return func(yield func([]T) bool) {
		buf := make([]T, len(items))
		copy(buf, items)
		if !yield(buf) {
			return
		}
		c := make([]int, len(buf))
		i := 0
		for i < len(buf) {
			if c[i] < i {
				if i%2 == 0 {
					buf[0], buf[i] = buf[i], buf[0]
				} else {
					buf[c[i]], buf[i] = buf[i], buf[c[i]]
				}
				if !yield(buf) {
					return
				}
				c[i]++
				i = 0
				continue
			}
			c[i] = 0
			i++
		}
	}
}
