package models

// Requests for the read-only HTTP endpoints. Defined in domain for consistency and reuse.

type FeaturesRequest struct {
	N int `query:"n" json:"n" default:"1" validate:"gte=1,lte=252"`
}

type TradesRequest struct {
	From  string `query:"from" json:"from"`
	To    string `query:"to" json:"to"`
	Limit int    `query:"limit" json:"limit" default:"100" validate:"gte=1,lte=1000"`
}
