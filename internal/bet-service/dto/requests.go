package dto

import "github.com/LordMercury-blip/Web3-Betting-dapp/internal/bet-service/model"

type PlaceBetRequest struct {
	UserAddress string `json:"userAddress"`
	Token       string `json:"token"`     // "ETH" | "BTC" | "LINK"
	Amount      string `json:"amount"`    // decimal string
	Direction   string `json:"direction"` // "up" | "down"
	Duration    int    `json:"duration"`  // 300 | 900 | 3600
	TxHash      string `json:"txHash"`
	StartPrice  string `json:"startPrice"`
	CommitHash  string `json:"commitHash"`
}

type SettleBetRequest struct {
	BetID        string  `json:"betId"`
	EndPrice     string  `json:"endPrice"`
	IsWinner     bool    `json:"isWinner"`
	Payout       string  `json:"payout"`
	TxHash       string  `json:"txHash"`
	RevealTxHash *string `json:"revealTxHash,omitempty"`
}

type UpdatePreferencesRequest struct {
	Address     string            `json:"address"`
	Signature   string            `json:"signature"`
	Message     string            `json:"message"` // signed JSON payload with a timestamp
	Preferences model.Preferences `json:"preferences"`
	Referrer    *string           `json:"referrer,omitempty"`
}
