package models

// Quote is one live tick from the monitoring quote stream.
type Quote struct {
	Symbol    string
	Price     float64
	Volume    float64
	Timestamp int64 // unix seconds
}
