package click

// regionTailSeconds pads a region past its last onset to cover the decay
// of the final click.
const regionTailSeconds = 0.1

// Region is a run of onsets with no silence gap inside it. End is the last
// onset plus the tail padding.
type Region struct {
	Start  int
	End    int
	Onsets []int
}

// SegmentRegions groups ascending onsets into regions, closing a region
// whenever the distance to the next onset reaches gapSeconds.
func SegmentRegions(onsets []int, sampleRate int, gapSeconds float64) []Region {
	if len(onsets) == 0 {
		return nil
	}
	gap := int(gapSeconds * float64(sampleRate))
	tail := int(regionTailSeconds * float64(sampleRate))

	var regions []Region
	first := 0
	for i := 1; i <= len(onsets); i++ {
		if i < len(onsets) && onsets[i]-onsets[i-1] < gap {
			continue
		}
		members := append([]int(nil), onsets[first:i]...)
		regions = append(regions, Region{
			Start:  members[0],
			End:    members[len(members)-1] + tail,
			Onsets: members,
		})
		first = i
	}
	return regions
}
