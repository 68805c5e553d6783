package parser

import (
	"sort"

	"txflow/internal/model"
)

// AssembleFlow merges the surviving transfers, the detected operations and
// the unconsumed native transfers into one list ordered by position. Each
// claimed transfer index and each claimed native triple is dropped exactly
// once; everything else passes through untouched.
func AssembleFlow(
	transfers []model.TokenTransfer,
	operations []model.Operation,
	nativeTransfers []model.NativeTransfer,
	claimedTransferIndices []int,
	claimedNative []model.NativeClaim,
) []model.FlowItem {
	claimed := make(map[int]struct{}, len(claimedTransferIndices))
	for _, i := range claimedTransferIndices {
		claimed[i] = struct{}{}
	}

	items := make([]model.FlowItem, 0, len(transfers)+len(operations)+len(nativeTransfers))

	for i := range transfers {
		if _, ok := claimed[i]; ok {
			continue
		}
		items = append(items, model.FlowItem{Transfer: &transfers[i]})
	}

	for _, op := range operations {
		items = append(items, model.FlowItem{Operation: op})
	}

	// Each claim consumes at most one matching native transfer.
	remaining := make([]model.NativeClaim, len(claimedNative))
	copy(remaining, claimedNative)
	for i := range nativeTransfers {
		nt := &nativeTransfers[i]
		if consumeNativeClaim(&remaining, nt) {
			continue
		}
		items = append(items, model.FlowItem{NativeTransfer: nt})
	}

	sort.SliceStable(items, func(a, b int) bool {
		return items[a].Position() < items[b].Position()
	})
	return items
}

func consumeNativeClaim(claims *[]model.NativeClaim, nt *model.NativeTransfer) bool {
	for i, c := range *claims {
		if sameAddr(c.From, nt.From) && sameAddr(c.To, nt.To) && c.Value == nt.Amount {
			*claims = append((*claims)[:i], (*claims)[i+1:]...)
			return true
		}
	}
	return false
}
