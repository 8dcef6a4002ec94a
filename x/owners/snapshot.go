package owners

import (
	"sort"

	"github.com/iov-one/quorum"
)

// Snapshot is an immutable in memory copy of a registry.
type Snapshot struct {
	owners    []quorum.Address
	index     map[string]struct{}
	threshold uint32
}

// NewSnapshot builds a snapshot from a list of owners. The list is copied.
func NewSnapshot(owners []quorum.Address, threshold uint32) *Snapshot {
	s := &Snapshot{
		owners:    make([]quorum.Address, 0, len(owners)),
		index:     make(map[string]struct{}, len(owners)),
		threshold: threshold,
	}
	for _, o := range owners {
		if _, ok := s.index[string(o)]; ok {
			continue
		}
		s.index[string(o)] = struct{}{}
		s.owners = append(s.owners, o.Clone())
	}
	sort.Slice(s.owners, func(i, j int) bool {
		return s.owners[i].Compare(s.owners[j]) < 0
	})
	return s
}

// IsOwner returns true if the identity is a member.
func (s *Snapshot) IsOwner(a quorum.Address) (bool, error) {
	_, ok := s.index[string(a)]
	return ok, nil
}

// Threshold returns the number of signatures required for a quorum.
func (s *Snapshot) Threshold() uint32 {
	return s.threshold
}

// Count returns the number of owners.
func (s *Snapshot) Count() uint32 {
	return uint32(len(s.owners))
}

// Owners returns all owners in ascending identity order.
func (s *Snapshot) Owners() []quorum.Address {
	res := make([]quorum.Address, len(s.owners))
	copy(res, s.owners)
	return res
}
