package request

import (
	"fmt"
	"strconv"
)

// Snapshot listing bounds.
const (
	DefaultSnapshotLimit = 30
	MaxSnapshotLimit     = 365
)

// ParseSnapshotLimit validates the limit query parameter of the snapshot listing.
// An empty value yields DefaultSnapshotLimit.
func ParseSnapshotLimit(limitParam string) (int, error) {
	if limitParam == "" {
		return DefaultSnapshotLimit, nil
	}
	limit, err := strconv.Atoi(limitParam)
	if err != nil {
		return 0, fmt.Errorf("invalid limit: must be a number")
	}
	if limit < 1 || limit > MaxSnapshotLimit {
		return 0, fmt.Errorf("invalid limit: must be between 1 and %d", MaxSnapshotLimit)
	}
	return limit, nil
}
