package topics

const (
	// VRF (oráculo de aleatoriedade)
	VRFRequests  = "vrf_requests"
	VRFFulfilled = "vrf_fulfilled"

	// Ciclo de vida das apostas
	BetPlaced   = "bet_placed"
	BetSettled  = "bet_settled"
	BetRefunded = "bet_refunded"

	// DLQs
	VRFFulfilledDLQ = "vrf_fulfilled_dlq"
)
