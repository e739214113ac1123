package events

type BetSettled struct {
	BetID       string `json:"bet_id"`
	UserAddress string `json:"user_address"`
	Token       string `json:"token"`
	IsWinner    bool   `json:"is_winner"`
	Payout      string `json:"payout"`
	TsUnixMs    int64  `json:"ts_unix_ms"`
}
