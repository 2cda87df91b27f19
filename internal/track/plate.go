package track

// MatchVehicle finds the reported vehicle whose box strictly contains
// the plate detection. Plates sit inside their vehicle's box, so the
// first containing track wins; ok is false when no vehicle contains
// the plate (partial occlusion or a plate detected without its car).
func MatchVehicle(plate Box, vehicles []TrackedBox) (TrackedBox, bool) {
	for _, v := range vehicles {
		if v.Box.Contains(plate) {
			return v, true
		}
	}
	return TrackedBox{}, false
}
