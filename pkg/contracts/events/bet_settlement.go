package events

// BetSettlement is the settlement instruction produced by the chain watcher
// once the reveal transaction for a bet lands on-chain.
type BetSettlement struct {
	BetID        string `json:"bet_id"`
	EndPrice     string `json:"end_price"`
	IsWinner     bool   `json:"is_winner"`
	Payout       string `json:"payout"`
	SettleTxHash string `json:"settle_tx_hash"`
	RevealTxHash string `json:"reveal_tx_hash,omitempty"`
	TsUnixMs     int64  `json:"ts_unix_ms"`
}
