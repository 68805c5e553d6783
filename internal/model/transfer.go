package model

// PlainTransfer is one decoded ERC-20 Transfer log. Value is a base-10
// decimal string; amounts can exceed 64 bits so they are never held in
// native integer types.
type PlainTransfer struct {
	From         string `json:"from"`
	To           string `json:"to"`
	TokenAddress string `json:"tokenAddress"`
	Value        string `json:"value"`
	LogIndex     uint64 `json:"logIndex"`
}

// TokenTransfer is a PlainTransfer enriched with token metadata. The slice
// of these, indexed by discovery order, is the shared working set every
// detector reports claimed indices into.
type TokenTransfer struct {
	From         string `json:"from"`
	To           string `json:"to"`
	TokenAddress string `json:"tokenAddress"`
	TokenName    string `json:"tokenName"`
	TokenSymbol  string `json:"tokenSymbol"`
	TokenLogo    string `json:"tokenLogo,omitempty"`
	Amount       string `json:"amount"`
	Decimals     uint8  `json:"decimals"`
	LogIndex     uint64 `json:"logIndex"`
}

// NativeTransfer is a value-bearing native-currency movement. LogIndex is
// synthetic: positions are assigned after the last ERC-20 log index so
// native transfers sort into the same order space.
type NativeTransfer struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Amount   string `json:"amount"`
	LogIndex uint64 `json:"logIndex"`
}

// TokenMetadata describes one ERC-20 token as returned by the metadata
// collaborator. Lookups never fail; unknown tokens get the fallback record.
type TokenMetadata struct {
	Address  string `json:"address"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
	Logo     string `json:"logo,omitempty"`
}
