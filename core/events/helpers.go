package events

import (
	"encoding/hex"
	"math/big"
)

func formatAddress(addr [20]byte) string {
	return "0x" + hex.EncodeToString(addr[:])
}

func formatHash(hash [32]byte) string {
	return "0x" + hex.EncodeToString(hash[:])
}

func formatAmount(amount *big.Int) string {
	if amount == nil {
		return "0"
	}
	return amount.String()
}

func formatBool(v bool) string {
	if v {
		return "true"
	}
	return "false"
}
