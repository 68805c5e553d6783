package parser

import "txflow/internal/model"

// ExtractNativeTransfers builds the native-currency transfer list from the
// transaction's top-level value and its internal calls. Only strictly
// positive values are included. Positions are assigned sequentially from
// startPosition, which the caller picks past the last ERC-20 log index.
func ExtractNativeTransfers(
	internalCalls []model.InternalCall,
	topLevelValue string,
	topLevelFrom string,
	topLevelTo string,
	startPosition uint64,
) []model.NativeTransfer {
	results := make([]model.NativeTransfer, 0, len(internalCalls)+1)
	position := startPosition

	if isPositive(topLevelValue) {
		results = append(results, model.NativeTransfer{
			From:     topLevelFrom,
			To:       topLevelTo,
			Amount:   topLevelValue,
			LogIndex: position,
		})
		position++
	}

	for _, call := range internalCalls {
		if !isPositive(call.Value) {
			continue
		}
		results = append(results, model.NativeTransfer{
			From:     call.From,
			To:       call.To,
			Amount:   call.Value,
			LogIndex: position,
		})
		position++
	}

	return results
}
