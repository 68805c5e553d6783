package model

// DecodedEventParam is one named parameter of a provider-decoded event.
type DecodedEventParam struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Value string `json:"value"`
}

// DecodedEvent carries the provider's own interpretation of a log, when present.
type DecodedEvent struct {
	Label     string              `json:"label"`
	Signature string              `json:"signature"`
	Params    []DecodedEventParam `json:"params"`
}

// EventLog is the normalized representation of one raw receipt log.
// Topics are 32-byte hex words; an address occupies the low 20 bytes of a
// topic. Data is a 0x-prefixed concatenation of 32-byte big-endian words.
type EventLog struct {
	Address      string        `json:"address"`
	Topic0       string        `json:"topic0"`
	Topic1       string        `json:"topic1,omitempty"`
	Topic2       string        `json:"topic2,omitempty"`
	Topic3       string        `json:"topic3,omitempty"`
	Data         string        `json:"data"`
	LogIndex     uint64        `json:"log_index"`
	DecodedEvent *DecodedEvent `json:"decoded_event,omitempty"`
}

// InternalCall is one internal (trace-level) call of a transaction. Value is
// a base-10 decimal string; most internal calls carry a zero value.
type InternalCall struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Value string `json:"value"`
}
