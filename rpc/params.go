package rpc

import (
	"fmt"
	"math/big"
	"strings"
)

// parseAmount reads a base-10 token amount. Zero is accepted so the engines
// report their own ZeroAmount failure.
func parseAmount(amount string) (*big.Int, error) {
	trimmed := strings.TrimSpace(amount)
	if trimmed == "" {
		return nil, &paramError{message: "amount is required"}
	}
	value, ok := new(big.Int).SetString(trimmed, 10)
	if !ok {
		return nil, &paramError{message: fmt.Sprintf("invalid amount %q", amount)}
	}
	if value.Sign() < 0 {
		return nil, &paramError{message: "amount must not be negative"}
	}
	return value, nil
}

func parseAmounts(values []string) ([]*big.Int, error) {
	out := make([]*big.Int, len(values))
	for i, raw := range values {
		amount, err := parseAmount(raw)
		if err != nil {
			return nil, err
		}
		out[i] = amount
	}
	return out, nil
}

func formatAmount(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
