package events

type BetExpired struct {
	BetID       string `json:"bet_id"`
	UserAddress string `json:"user_address"`
	Token       string `json:"token"`
	Duration    int    `json:"duration"`
	StartTimeMs int64  `json:"start_time_ms"`
	ExpiredAtMs int64  `json:"expired_at_ms"`
}
