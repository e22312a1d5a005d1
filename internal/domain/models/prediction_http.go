package models

// Requests for the prediction HTTP endpoints.

type CreatePredictionRequest struct {
	UserID      string `json:"user_id" validate:"required"`
	Symbol      string `json:"symbol" validate:"required"`
	Timeframe   string `json:"timeframe" default:"5m"`
	StakeAmount int    `json:"stake_amount" default:"1" validate:"gte=1,lte=2"`
}

type ListPredictionsRequest struct {
	UserID string `query:"user_id" json:"user_id" validate:"required"`
	Limit  int    `query:"limit" json:"limit" default:"100" validate:"gte=1,lte=500"`
}

type CurrentPriceRequest struct {
	Currency string `query:"currency" json:"currency" default:"USD" validate:"len=3"`
}
