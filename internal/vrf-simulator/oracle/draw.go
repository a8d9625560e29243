package oracle

import (
	"crypto/hmac"
	"crypto/sha256"
)

// Draw deriva os 32 bytes de aleatoriedade de um pedido:
// HMAC-SHA256 do segredo do oráculo sobre token|seed.
// O mesmo pedido produz sempre o mesmo sorteio, o que mantém o
// simulador determinístico e auditável entre execuções.
func Draw(secret []byte, requestToken, seedHex string) []byte {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(requestToken))
	mac.Write([]byte("|"))
	mac.Write([]byte(seedHex))
	return mac.Sum(nil)
}
