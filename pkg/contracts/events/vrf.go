package events

// Payloads do round trip com o oráculo de aleatoriedade.
// Publicados nos tópicos "vrf_requests" e "vrf_fulfilled".
type VRFRequested struct {
	RequestToken string `json:"request_token"`
	SeedHex      string `json:"seed_hex"`
	TsUnixMs     int64  `json:"ts_unix_ms"`
}

// VRFFulfilled carrega 32 bytes de aleatoriedade em hex.
// O oráculo entrega exatamente um fulfillment por token.
type VRFFulfilled struct {
	RequestToken  string `json:"request_token"`
	RandomnessHex string `json:"randomness_hex"`
	TsUnixMs      int64  `json:"ts_unix_ms"`
}
