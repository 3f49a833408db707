package viewstate

import (
	"fmt"

	"github.com/pkg/errors"
)

// FlamechartID names one of the coordinated flamechart views of a profile.
type FlamechartID int

const (
	Chrono FlamechartID = iota
	LeftHeavy
	SandwichInvertedCallers
	SandwichCallees
)

var flamechartIDNames = map[FlamechartID]string{
	Chrono:                  "CHRONO",
	LeftHeavy:               "LEFT_HEAVY",
	SandwichInvertedCallers: "SANDWICH_INVERTED_CALLERS",
	SandwichCallees:         "SANDWICH_CALLEES",
}

// FlamechartIDs lists every view, in the order hovers are cleared.
var FlamechartIDs = []FlamechartID{Chrono, LeftHeavy, SandwichCallees, SandwichInvertedCallers}

func (id FlamechartID) String() string {
	if s, ok := flamechartIDNames[id]; ok {
		return s
	}
	return fmt.Sprintf("FlamechartID(%d)", int(id))
}

// IsSandwich reports whether the view only exists while a frame is
// selected for sandwich analysis.
func (id FlamechartID) IsSandwich() bool {
	return id == SandwichInvertedCallers || id == SandwichCallees
}

func ParseFlamechartID(s string) (FlamechartID, error) {
	for id, name := range flamechartIDNames {
		if name == s {
			return id, nil
		}
	}
	return 0, errors.Errorf("unknown flamechart id %q", s)
}
