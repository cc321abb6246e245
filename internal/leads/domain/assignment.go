package domain

import (
	"errors"

	"github.com/google/uuid"
)

// ErrNothingToAssign means the batch had no unassigned leads or the requested
// total was zero.
var ErrNothingToAssign = errors.New("no unassigned leads")

// Quota asks for Count leads to go to AgentID.
type Quota struct {
	AgentID uuid.UUID
	Count   int
}

// Allocation is the outcome of one quota.
type Allocation struct {
	AgentID uuid.UUID
	LeadIDs []uuid.UUID
}

// Partition splits ordered lead ids contiguously between quotas in list order.
// A quota asking for more than remains receives only what remains; ids beyond
// the sum of the counts are left out. Quotas that end up empty are dropped.
func Partition(ordered []uuid.UUID, quotas []Quota) ([]Allocation, error) {
	total := 0
	for _, q := range quotas {
		if q.Count < 0 {
			return nil, errors.New("count must not be negative")
		}
		total += q.Count
	}
	if len(ordered) == 0 || total == 0 {
		return nil, ErrNothingToAssign
	}

	allocations := make([]Allocation, 0, len(quotas))
	offset := 0
	for _, q := range quotas {
		if offset >= len(ordered) {
			break
		}
		end := min(offset+q.Count, len(ordered))
		if end == offset {
			continue
		}
		allocations = append(allocations, Allocation{AgentID: q.AgentID, LeadIDs: ordered[offset:end]})
		offset = end
	}
	return allocations, nil
}

// AssignedCount sums the lead ids across allocations.
func AssignedCount(allocations []Allocation) int {
	n := 0
	for _, a := range allocations {
		n += len(a.LeadIDs)
	}
	return n
}
