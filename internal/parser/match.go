package parser

import "txflow/internal/model"

// matchDirection constrains closest-transfer matching relative to an anchor.
type matchDirection int

const (
	// matchBefore admits transfers at or before the anchor's log index.
	matchBefore matchDirection = iota
	// matchAfter admits transfers at or after the anchor's log index.
	matchAfter
)

// transferMatch pairs a transfer with its index into the shared working set.
type transferMatch struct {
	index    int
	transfer model.TokenTransfer
}

// indexSet tracks transfer indices already claimed within a detector scan,
// so one anchor cannot steal another anchor's matched transfers.
type indexSet map[int]struct{}

func newIndexSet(indices ...int) indexSet {
	s := make(indexSet, len(indices))
	for _, i := range indices {
		s[i] = struct{}{}
	}
	return s
}

func (s indexSet) has(i int) bool {
	_, ok := s[i]
	return ok
}

func (s indexSet) add(i int) {
	s[i] = struct{}{}
}

func (s indexSet) clone() indexSet {
	out := make(indexSet, len(s))
	for i := range s {
		out[i] = struct{}{}
	}
	return out
}

// findClosestTransfer picks, among transfers satisfying the predicate and
// the directional constraint, the one whose log index is nearest to the
// anchor. Nearest-by-distance is the deterministic disambiguation rule when
// several anchors of the same kind compete for the same transfer pool.
func findClosestTransfer(
	transfers []model.TokenTransfer,
	anchorLogIndex uint64,
	direction matchDirection,
	exclude indexSet,
	predicate func(model.TokenTransfer) bool,
) (transferMatch, bool) {
	bestIdx := -1
	var bestDist uint64

	for i, t := range transfers {
		if exclude.has(i) {
			continue
		}
		if !predicate(t) {
			continue
		}
		if direction == matchBefore && t.LogIndex > anchorLogIndex {
			continue
		}
		if direction == matchAfter && t.LogIndex < anchorLogIndex {
			continue
		}

		dist := logIndexDistance(t.LogIndex, anchorLogIndex)
		if bestIdx == -1 || dist < bestDist {
			bestIdx = i
			bestDist = dist
		}
	}

	if bestIdx == -1 {
		return transferMatch{}, false
	}
	return transferMatch{index: bestIdx, transfer: transfers[bestIdx]}, true
}
