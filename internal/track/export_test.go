package track

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestWriteCSV(t *testing.T) {
	plate := Box{X1: 220, Y1: 140, X2: 280, Y2: 160}
	results := []Result{
		{Frame: 1, TrackID: 1, VehicleBox: Box{X1: 10, Y1: 10, X2: 50, Y2: 50}},
		{
			Frame:          2,
			TrackID:        1,
			VehicleBox:     Box{X1: 12, Y1: 11, X2: 52, Y2: 51},
			PlateBox:       &plate,
			PlateScore:     0.91,
			PlateText:      "AB12CDE",
			PlateTextScore: 0.85,
		},
	}

	var sb strings.Builder
	if err := WriteCSV(&sb, results); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	want := strings.Join([]string{
		"frame_nmr,car_id,car_bbox,license_plate_bbox,license_plate_bbox_score,license_number,license_number_score",
		"1,1,[10 10 50 50],,,,",
		"2,1,[12 11 52 51],[220 140 280 160],0.91,AB12CDE,0.85",
		"",
	}, "\n")

	if diff := cmp.Diff(want, sb.String()); diff != "" {
		t.Errorf("csv mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteCSVEmpty(t *testing.T) {
	var sb strings.Builder
	if err := WriteCSV(&sb, nil); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	if got := sb.String(); !strings.HasPrefix(got, "frame_nmr,") {
		t.Errorf("expected header-only output, got %q", got)
	}
}
