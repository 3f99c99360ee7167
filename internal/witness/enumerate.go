package witness

import (
	"math/bits"

	"goadmit/domain/system"
)

// enumerate yields disjoint nonempty subset pairs over a universe of n
// indices with |S|,|T| <= maxSize. Order: increasing total size, then |S|,
// then lexicographic index order of S, then of T. Each unordered pair
// appears exactly once: |S| <= |T|, and for equal sizes S carries the
// smaller minimum index. emit returns false to stop the enumeration.
func enumerate(n, maxSize int, emit func(s, t system.Subset) bool) {
	if maxSize > n-1 {
		maxSize = n - 1
	}
	scratchS := make([]int, 0, maxSize)
	scratchT := make([]int, 0, maxSize)
	pool := make([]int, 0, n)

	for total := 2; total <= 2*maxSize && total <= n; total++ {
		for sizeS := 1; sizeS <= total/2; sizeS++ {
			sizeT := total - sizeS
			if sizeT > maxSize {
				continue
			}
			cont := combinations(n, sizeS, scratchS, func(sIdx []int) bool {
				s := system.SubsetOf(sIdx...)
				pool = pool[:0]
				for i := 0; i < n; i++ {
					if !s.Contains(i) {
						pool = append(pool, i)
					}
				}
				return combinationsFrom(pool, sizeT, scratchT, func(tIdx []int) bool {
					t := system.SubsetOf(tIdx...)
					if sizeS == sizeT && minIndex(t) < minIndex(s) {
						return true
					}
					return emit(s, t)
				})
			})
			if !cont {
				return
			}
		}
	}
}

// combinations enumerates k-element index combinations of [0,n) in
// lexicographic order. f returns false to abort; the return value
// propagates the abort.
func combinations(n, k int, scratch []int, f func([]int) bool) bool {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return combinationsFrom(idx, k, scratch, f)
}

// combinationsFrom enumerates k-element combinations of an ascending index
// pool in lexicographic order.
func combinationsFrom(pool []int, k int, scratch []int, f func([]int) bool) bool {
	if k > len(pool) {
		return true
	}
	var rec func(start int, cur []int) bool
	rec = func(start int, cur []int) bool {
		if len(cur) == k {
			return f(cur)
		}
		// Not enough elements left to complete the combination.
		need := k - len(cur)
		for i := start; i <= len(pool)-need; i++ {
			if !rec(i+1, append(cur, pool[i])) {
				return false
			}
		}
		return true
	}
	return rec(0, scratch[:0])
}

func minIndex(s system.Subset) int {
	return bits.TrailingZeros64(uint64(s))
}
