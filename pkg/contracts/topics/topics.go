package topics

const (
	// Outbound
	BetPlaced  = "bet_placed"
	BetSettled = "bet_settled"
	BetExpired = "bet_expired"

	// Inbound settlement instructions from the chain watcher
	BetSettlements = "bet_settlements"

	// DLQ
	BetSettlementsDLQ = "bet_settlements_dlq"
)
