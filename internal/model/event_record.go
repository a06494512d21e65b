package model

// EventRecord is the journal representation of a dispatched event.
type EventRecord struct {
	ChainID     uint64    `json:"chain_id"`
	BlockNumber uint64    `json:"block_number"`
	BlockHash   string    `json:"block_hash"`
	TxHash      string    `json:"tx_hash"`
	LogIndex    uint64    `json:"log_index"`
	Address     string    `json:"address"`
	EventName   EventKind `json:"event_name"`
	Decoded     Event     `json:"decoded"`
	ReceivedAt  string    `json:"received_at"`
}
