package model

// DecodeError records a non-fatal decode failure for one log.
type DecodeError struct {
	TxHash   string `json:"tx_hash"`
	LogIndex uint64 `json:"log_index"`
	Address  string `json:"address"`
	Topic0   string `json:"topic0"`
	Error    string `json:"error"`
}
