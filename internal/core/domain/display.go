package domain

import (
	"fmt"
	"strconv"
)

// DisplayID identifies the physical display a schedule governs.
// It is set when the schedule is built and never changes.
type DisplayID uint64

// String returns the display identity in the form used by dumps and logs.
func (id DisplayID) String() string {
	return fmt.Sprintf("PhysicalDisplayId{value=%d}", uint64(id))
}

// ParseDisplayID parses a decimal display identity.
func ParseDisplayID(s string) (DisplayID, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: display id %q", ErrInvalidInput, s)
	}
	return DisplayID(v), nil
}
