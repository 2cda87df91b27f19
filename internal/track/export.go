package track

import (
	"encoding/csv"
	"fmt"
	"io"
)

// Result is one per-frame, per-vehicle row of replay output. Plate
// fields are populated when a plate detection was matched to the
// vehicle on that frame.
type Result struct {
	Frame      int64
	TrackID    int64
	VehicleBox Box

	PlateBox       *Box
	PlateScore     float64
	PlateText      string
	PlateTextScore float64
}

// WriteCSV writes results in the column layout downstream ANPR tooling
// consumes: frame number, car id, car box, plate box, plate detection
// score, plate text, plate text score. Boxes are formatted as
// "[x1 y1 x2 y2]". Rows must already be in frame order.
func WriteCSV(w io.Writer, results []Result) error {
	cw := csv.NewWriter(w)

	header := []string{
		"frame_nmr", "car_id", "car_bbox",
		"license_plate_bbox", "license_plate_bbox_score",
		"license_number", "license_number_score",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, res := range results {
		row := []string{
			fmt.Sprintf("%d", res.Frame),
			fmt.Sprintf("%d", res.TrackID),
			formatBox(res.VehicleBox),
			"", "", "", "",
		}
		if res.PlateBox != nil {
			row[3] = formatBox(*res.PlateBox)
			row[4] = fmt.Sprintf("%g", res.PlateScore)
			row[5] = res.PlateText
			row[6] = fmt.Sprintf("%g", res.PlateTextScore)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatBox(b Box) string {
	return fmt.Sprintf("[%g %g %g %g]", b.X1, b.Y1, b.X2, b.Y2)
}
