package track

import "testing"

func TestHungarianAssignEmpty(t *testing.T) {
	if result := hungarianAssign(nil); result != nil {
		t.Errorf("expected nil for empty cost matrix, got %v", result)
	}
}

func TestHungarianAssignSingleElement(t *testing.T) {
	result := hungarianAssign([][]float64{{5.0}})
	if len(result) != 1 || result[0] != 0 {
		t.Errorf("expected [0], got %v", result)
	}
}

func TestHungarianAssignSquareOptimal(t *testing.T) {
	// Classic 3x3 assignment:
	//   [1 2 3]     Optimal: row0→col0 (1), row1→col1 (4), row2→col2 (5) = 10
	//   [4 4 6]     NOT: row0→col0 (1), row1→col2 (6), row2→col1 (8) = 15
	//   [9 8 5]
	cost := [][]float64{
		{1, 2, 3},
		{4, 4, 6},
		{9, 8, 5},
	}
	result := hungarianAssign(cost)

	if len(result) != 3 {
		t.Fatalf("expected 3 assignments, got %d", len(result))
	}

	total := 0.0
	for i, j := range result {
		if j < 0 {
			t.Errorf("row %d unassigned", i)
			continue
		}
		total += cost[i][j]
	}
	if total != 10.0 {
		t.Errorf("expected optimal cost 10, got %v (assignments: %v)", total, result)
	}
}

func TestHungarianAssignNegativeCosts(t *testing.T) {
	// Negated IoU values: the solver must pick the strongest overlaps.
	cost := [][]float64{
		{-0.9, -0.1},
		{-0.2, -0.8},
	}
	result := hungarianAssign(cost)
	if result[0] != 0 || result[1] != 1 {
		t.Errorf("expected diagonal assignment, got %v", result)
	}
}

func TestHungarianAssignForbidden(t *testing.T) {
	// Row 1 has no reachable column.
	cost := [][]float64{
		{1, 2},
		{forbiddenCost, forbiddenCost},
	}
	result := hungarianAssign(cost)

	if len(result) != 2 {
		t.Fatalf("expected 2 assignments, got %d", len(result))
	}
	if result[0] != 0 {
		t.Errorf("row 0 should take col 0, got %d", result[0])
	}
	if result[1] != -1 {
		t.Errorf("row 1 should stay unassigned, got %d", result[1])
	}
}

func TestHungarianAssignRectangular(t *testing.T) {
	// More rows than columns: one row must stay unassigned.
	cost := [][]float64{
		{1, 5},
		{2, 1},
		{3, 4},
	}
	result := hungarianAssign(cost)

	assigned := map[int]bool{}
	count := 0
	for _, j := range result {
		if j < 0 {
			continue
		}
		if assigned[j] {
			t.Fatalf("column %d assigned twice: %v", j, result)
		}
		assigned[j] = true
		count++
	}
	if count != 2 {
		t.Errorf("expected 2 assigned rows, got %d (%v)", count, result)
	}

	// More columns than rows: every row assigned.
	cost = [][]float64{
		{4, 1, 3},
		{2, 0, 5},
	}
	result = hungarianAssign(cost)
	for i, j := range result {
		if j < 0 {
			t.Errorf("row %d unassigned with spare columns: %v", i, result)
		}
	}
}

func TestHungarianAssignDeterministic(t *testing.T) {
	cost := [][]float64{
		{-0.5, -0.5, -0.1},
		{-0.5, -0.5, -0.2},
		{-0.3, -0.2, -0.5},
	}
	first := hungarianAssign(cost)
	for run := 0; run < 10; run++ {
		next := hungarianAssign(cost)
		for i := range first {
			if first[i] != next[i] {
				t.Fatalf("run %d diverged: %v vs %v", run, first, next)
			}
		}
	}
}
