package events

type BetPlaced struct {
	BetID       string `json:"bet_id"`
	UserAddress string `json:"user_address"`
	Token       string `json:"token"`
	Amount      string `json:"amount"`
	Direction   string `json:"direction"`
	Duration    int    `json:"duration"`
	TxHash      string `json:"tx_hash"`
	TsUnixMs    int64  `json:"ts_unix_ms"`
}
