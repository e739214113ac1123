package dto

import "github.com/LordMercury-blip/Web3-Betting-dapp/internal/bet-service/model"

type PlaceBetResponse struct {
	Success bool   `json:"success"`
	BetID   string `json:"betId"`
	Message string `json:"message"`
}

type SettleBetResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type ActiveBetsResponse struct {
	Bets  []model.Bet `json:"bets"`
	Count int         `json:"count"`
}

// ErrorResponse carries a machine-readable kind plus a human-readable
// message. Store and cache internals never leak through here.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
	Field string `json:"field,omitempty"`
}
