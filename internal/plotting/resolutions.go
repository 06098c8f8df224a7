package plotting

import (
	"fmt"

	"github.com/asver12/iso-value-selection/internal/isolevels"
)

// Resolutions is the set of level counts a comparison run covers. It is a
// tagged value constructed at the boundary: either a single resolution or an
// explicit ordered list. Invalid counts are rejected at construction, so
// consumers can range over Values without further checks.
type Resolutions struct {
	values []int
}

// SingleResolution returns a Resolutions covering exactly one level count.
func SingleResolution(k int) (Resolutions, error) {
	return ResolutionList(k)
}

// ResolutionList returns a Resolutions covering the given level counts in
// order. At least one count is required and every count must be positive.
func ResolutionList(ks ...int) (Resolutions, error) {
	if len(ks) == 0 {
		return Resolutions{}, fmt.Errorf("%w: no resolutions given", isolevels.ErrBadResolution)
	}
	for _, k := range ks {
		if k < 1 {
			return Resolutions{}, fmt.Errorf("%w: k=%d", isolevels.ErrBadResolution, k)
		}
	}
	return Resolutions{values: append([]int(nil), ks...)}, nil
}

// DefaultResolutions covers only isolevels.DefaultK.
func DefaultResolutions() Resolutions {
	return Resolutions{values: []int{isolevels.DefaultK}}
}

// Values returns the covered level counts in order. The slice is a copy.
func (r Resolutions) Values() []int {
	return append([]int(nil), r.values...)
}

// Len returns the number of covered level counts.
func (r Resolutions) Len() int { return len(r.values) }
