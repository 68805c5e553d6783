package model

// FlowItem is one entry of the final ordered flow: exactly one of Transfer,
// Operation, or NativeTransfer is set.
type FlowItem struct {
	Transfer       *TokenTransfer  `json:"transfer,omitempty"`
	Operation      Operation       `json:"operation,omitempty"`
	NativeTransfer *NativeTransfer `json:"nativeTransfer,omitempty"`
}

// Position returns the item's place in the transaction's log order.
func (fi FlowItem) Position() uint64 {
	switch {
	case fi.Transfer != nil:
		return fi.Transfer.LogIndex
	case fi.Operation != nil:
		return fi.Operation.Position()
	case fi.NativeTransfer != nil:
		return fi.NativeTransfer.LogIndex
	default:
		return 0
	}
}

// TransactionFlow is the decoded result for one transaction.
type TransactionFlow struct {
	TxHash string     `json:"txHash"`
	Flow   []FlowItem `json:"flow"`
}

// NativeClaim identifies a native transfer consumed into an operation, so
// the assembler can drop it from the leftover native list.
type NativeClaim struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Value string `json:"value"`
}
