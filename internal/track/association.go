package track

// iouMatrix builds the M×N similarity matrix between predicted track
// boxes (rows) and detections (columns). IoU is the sole association
// signal; no appearance features are used.
func iouMatrix(trackBoxes, detBoxes []Box) [][]float64 {
	m := make([][]float64, len(trackBoxes))
	for i, tb := range trackBoxes {
		row := make([]float64, len(detBoxes))
		for j, db := range detBoxes {
			row[j] = IoU(tb, db)
		}
		m[i] = row
	}
	return m
}

// associate solves the per-frame assignment between predicted tracks
// and detections. Candidate pairs from the optimal matching are kept
// only when their IoU meets minIoU; rejected pairs push both sides
// into the unmatched sets. Every track and detection index lands in
// exactly one output set.
func associate(trackBoxes, detBoxes []Box, minIoU float64) (matches [][2]int, unmatchedTracks, unmatchedDets []int) {
	if len(trackBoxes) == 0 || len(detBoxes) == 0 {
		for i := range trackBoxes {
			unmatchedTracks = append(unmatchedTracks, i)
		}
		for j := range detBoxes {
			unmatchedDets = append(unmatchedDets, j)
		}
		return nil, unmatchedTracks, unmatchedDets
	}

	iou := iouMatrix(trackBoxes, detBoxes)

	cost := make([][]float64, len(trackBoxes))
	for i := range iou {
		row := make([]float64, len(detBoxes))
		for j := range row {
			row[j] = -iou[i][j]
		}
		cost[i] = row
	}

	assignment := hungarianAssign(cost)

	detMatched := make([]bool, len(detBoxes))
	for i, j := range assignment {
		if j >= 0 && iou[i][j] >= minIoU {
			matches = append(matches, [2]int{i, j})
			detMatched[j] = true
		} else {
			unmatchedTracks = append(unmatchedTracks, i)
		}
	}
	for j := range detBoxes {
		if !detMatched[j] {
			unmatchedDets = append(unmatchedDets, j)
		}
	}
	return matches, unmatchedTracks, unmatchedDets
}
