package diff

// diagonal is a run of matching items: old[x:x+size] is the same sequence
// of entities as new[y:y+size].
type diagonal struct {
	x, y, size int
}

func (d diagonal) endX() int { return d.x + d.size }
func (d diagonal) endY() int { return d.y + d.size }

// myers implements the Myers diff algorithm over item identity.
// It returns the diagonals of a shortest edit script in ascending order.
// ok is false when the edit distance exceeds maxD (maxD <= 0 means no limit).
func myers(n, m int, same func(oldIndex, newIndex int) bool, maxD int) (diagonals []diagonal, ok bool) {
	// Nothing can match when either side is empty
	if n == 0 || m == 0 {
		return nil, true
	}

	limit := n + m
	if maxD > 0 && maxD < limit {
		limit = maxD
	}

	// V[-limit-1..limit+1] maps to v[0..2*limit+2]
	offset := limit + 1
	v := make([]int, 2*limit+3)

	// trace[d] holds V[-d..d] as it was after step d.
	var trace [][]int

	for d := 0; d <= limit; d++ {
		for k := -d; k <= d; k += 2 {
			var x int
			if k == -d || (k != d && v[offset+k-1] < v[offset+k+1]) {
				x = v[offset+k+1]
			} else {
				x = v[offset+k-1] + 1
			}

			y := x - k

			// Follow the diagonal while items match
			for x < n && y < m && same(x, y) {
				x++
				y++
			}

			v[offset+k] = x

			if x >= n && y >= m {
				return backtrack(trace, n, m, d), true
			}
		}

		window := make([]int, 2*d+1)
		copy(window, v[offset-d:offset+d+1])
		trace = append(trace, window)
	}

	return nil, false
}

// backtrack walks the trace from (n, m) back to (0, 0) collecting the
// diagonals crossed on the way.
func backtrack(trace [][]int, n, m, depth int) []diagonal {
	x, y := n, m
	var diagonals []diagonal

	for d := depth; d > 0; d-- {
		prev := trace[d-1]
		at := func(k int) int { return prev[k+d-1] }

		k := x - y
		var prevK int
		if k == -d || (k != d && at(k-1) < at(k+1)) {
			prevK = k + 1
		} else {
			prevK = k - 1
		}

		prevX := at(prevK)
		prevY := prevX - prevK

		// The diagonal starts right after the single insert or delete step.
		startX, startY := prevX, prevY+1
		if prevK == k-1 {
			startX, startY = prevX+1, prevY
		}
		if size := x - startX; size > 0 {
			diagonals = append(diagonals, diagonal{x: startX, y: startY, size: size})
		}

		x, y = prevX, prevY
	}

	// Leading diagonal reached at d == 0
	if x > 0 {
		diagonals = append(diagonals, diagonal{x: 0, y: 0, size: x})
	}

	// Reverse (we built them backwards)
	for i, j := 0, len(diagonals)-1; i < j; i, j = i+1, j-1 {
		diagonals[i], diagonals[j] = diagonals[j], diagonals[i]
	}

	return diagonals
}

// withEdges brackets diagonals with an empty diagonal at (0, 0), when the
// first one does not already start there, and one at (n, m). Dispatch and
// move matching rely on both being present.
func withEdges(diagonals []diagonal, n, m int) []diagonal {
	out := make([]diagonal, 0, len(diagonals)+2)
	if len(diagonals) == 0 || diagonals[0].x != 0 || diagonals[0].y != 0 {
		out = append(out, diagonal{})
	}
	out = append(out, diagonals...)
	return append(out, diagonal{x: n, y: m})
}
