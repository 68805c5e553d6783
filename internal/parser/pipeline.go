package parser

import (
	"context"

	"go.uber.org/zap"

	"txflow/internal/model"
)

// DecodeInput is one transaction's raw material: envelope fields, receipt
// logs, and the value-bearing internal calls (possibly empty when no trace
// was available).
type DecodeInput struct {
	TxHash        string
	From          string
	To            string
	Value         string
	Logs          []model.EventLog
	InternalCalls []model.InternalCall
}

// DecodeTransaction runs the full pipeline over one transaction: decode
// transfer logs, enrich with token metadata, extract native transfers, run
// the protocol detectors, and assemble the ordered flow. The computation is
// stateless aside from the metadata lookup.
func DecodeTransaction(ctx context.Context, in DecodeInput, lookup MetadataLookup, logger *zap.Logger) model.TransactionFlow {
	if logger == nil {
		logger = zap.NewNop()
	}

	plain := DecodeTransferLogs(in.Logs, logger)
	transfers := EnrichTransfers(ctx, plain, lookup)

	// Native transfers are positioned after the last log so unconsumed ones
	// sort to the tail of the flow.
	startPosition := uint64(0)
	for _, log := range in.Logs {
		if log.LogIndex >= startPosition {
			startPosition = log.LogIndex + 1
		}
	}
	natives := ExtractNativeTransfers(in.InternalCalls, in.Value, in.From, in.To, startPosition)

	var operations []model.Operation
	var claimedIndices []int
	var claimedNative []model.NativeClaim

	lending := DetectLendingOperations(in.Logs, transfers)
	operations = append(operations, lending.Operations...)
	claimedIndices = append(claimedIndices, lending.ClaimedTransferIndices...)

	swaps := DetectSwaps(in.Logs, transfers, natives, in.From)
	operations = append(operations, swaps.Operations...)
	claimedIndices = append(claimedIndices, swaps.ClaimedTransferIndices...)
	claimedNative = append(claimedNative, swaps.ClaimedNativeTransfers...)

	liquidity := DetectLiquidity(in.Logs, transfers, natives, in.From)
	operations = append(operations, liquidity.Operations...)
	claimedIndices = append(claimedIndices, liquidity.ClaimedTransferIndices...)
	claimedNative = append(claimedNative, liquidity.ClaimedNativeTransfers...)

	flow := AssembleFlow(transfers, operations, natives, claimedIndices, claimedNative)

	logger.Debug("transaction decoded",
		zap.String("tx", in.TxHash),
		zap.Int("logs", len(in.Logs)),
		zap.Int("transfers", len(transfers)),
		zap.Int("natives", len(natives)),
		zap.Int("operations", len(operations)),
		zap.Int("flow_items", len(flow)),
	)

	return model.TransactionFlow{TxHash: lower(in.TxHash), Flow: flow}
}
