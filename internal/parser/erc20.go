package parser

import (
	"go.uber.org/zap"

	"txflow/internal/model"
)

// DecodeTransferLogs extracts ERC-20 Transfer records from a transaction's
// raw logs. Logs carrying a provider-decoded Transfer event are read by
// parameter name; anything else falls back to raw topic/data decoding when
// topic0 matches the Transfer hash. Logs that are not Transfers are skipped
// silently; Transfers missing required fields are skipped with a diagnostic.
func DecodeTransferLogs(logs []model.EventLog, logger *zap.Logger) []model.PlainTransfer {
	if logger == nil {
		logger = zap.NewNop()
	}

	transfers := make([]model.PlainTransfer, 0, len(logs))
	for _, log := range logs {
		if transfer, ok := decodeTransferLog(log, logger); ok {
			transfers = append(transfers, transfer)
		}
	}
	return transfers
}

func decodeTransferLog(log model.EventLog, logger *zap.Logger) (model.PlainTransfer, bool) {
	if log.DecodedEvent != nil && log.DecodedEvent.Signature == erc20TransferSignature {
		from := paramValue(log.DecodedEvent.Params, "from")
		to := paramValue(log.DecodedEvent.Params, "to")
		// Some tokens name the amount parameter "value", others "amount".
		value := paramValue(log.DecodedEvent.Params, "value")
		if value == "" {
			value = paramValue(log.DecodedEvent.Params, "amount")
		}

		if from != "" && to != "" && value != "" {
			return model.PlainTransfer{
				From:         from,
				To:           to,
				TokenAddress: log.Address,
				Value:        value,
				LogIndex:     log.LogIndex,
			}, true
		}
		// Incomplete decoded event: fall through to raw topic decoding.
	}

	if !sameAddr(log.Topic0, erc20TransferTopic0) {
		return model.PlainTransfer{}, false
	}
	if log.Topic1 == "" || log.Topic2 == "" {
		logger.Warn("transfer log missing indexed topics",
			zap.String("address", log.Address),
			zap.Uint64("log_index", log.LogIndex),
		)
		return model.PlainTransfer{}, false
	}

	return model.PlainTransfer{
		From:         addressFromTopic(log.Topic1),
		To:           addressFromTopic(log.Topic2),
		TokenAddress: log.Address,
		Value:        dataAsAmount(log.Data),
		LogIndex:     log.LogIndex,
	}, true
}

// CollectDecodeErrors reports the Transfer-shaped logs that could not be
// decoded, as persistable diagnostics mirroring the warnings emitted during
// decoding.
func CollectDecodeErrors(txHash string, logs []model.EventLog) []model.DecodeError {
	var errs []model.DecodeError
	for _, log := range logs {
		if !sameAddr(log.Topic0, erc20TransferTopic0) {
			continue
		}
		if log.Topic1 != "" && log.Topic2 != "" {
			continue
		}
		// A complete provider-decoded event rescues the log.
		if _, ok := decodeTransferLog(log, zap.NewNop()); ok {
			continue
		}
		errs = append(errs, model.DecodeError{
			TxHash:   lower(txHash),
			LogIndex: log.LogIndex,
			Address:  lower(log.Address),
			Topic0:   lower(log.Topic0),
			Error:    "transfer log missing indexed topics",
		})
	}
	return errs
}

func paramValue(params []model.DecodedEventParam, name string) string {
	for _, p := range params {
		if p.Name == name {
			return p.Value
		}
	}
	return ""
}
