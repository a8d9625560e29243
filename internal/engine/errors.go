package engine

import "errors"

// Erros sentinela do motor de apostas. Toda operação falha de forma
// atômica: nenhum estado muda quando um destes é retornado.
var (
	ErrInvalidBet            = errors.New("invalid bet")
	ErrInvalidParam          = errors.New("invalid parameter")
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")
	ErrUnknownBet            = errors.New("unknown bet")
	ErrAlreadySettled        = errors.New("bet already settled")
	ErrRefundTooEarly        = errors.New("refund not available yet")
	ErrTransfer              = errors.New("transfer failed")
)
