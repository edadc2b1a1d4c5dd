package amount

import (
	"fmt"
	"math/big"
	"regexp"
	"strings"

	agenterr "github.com/restakehq/restake-agent/internal/errors"
)

// Decimals is the fixed-point scale of every ledger amount: shares and
// underlying balances alike are integers scaled by 10^18.
const Decimals = 18

var (
	decimalPattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)
	oneUnit        = new(big.Int).Exp(big.NewInt(10), big.NewInt(Decimals), nil)
)

// OneUnit returns 10^18 as a fresh big.Int.
func OneUnit() *big.Int {
	return new(big.Int).Set(oneUnit)
}

// ParseDecimal converts a user-facing decimal string into base units without
// ever touching floating point. More than 18 fractional digits is rejected
// rather than rounded.
func ParseDecimal(decimal string) (*big.Int, error) {
	decimal = strings.TrimSpace(decimal)
	if !decimalPattern.MatchString(decimal) {
		return nil, agenterr.New(agenterr.CodeUsage, fmt.Sprintf("amount must be in decimal form like 0.5, got %q", decimal))
	}

	parts := strings.SplitN(decimal, ".", 2)
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if len(fracPart) > Decimals {
		return nil, agenterr.New(agenterr.CodeUsage, fmt.Sprintf("amount precision exceeds %d decimals", Decimals))
	}

	fracPart += strings.Repeat("0", Decimals-len(fracPart))
	combined := strings.TrimLeft(intPart+fracPart, "0")
	if combined == "" {
		return big.NewInt(0), nil
	}
	out, ok := new(big.Int).SetString(combined, 10)
	if !ok {
		return nil, agenterr.New(agenterr.CodeUsage, "invalid decimal amount")
	}
	return out, nil
}

// FormatUnits renders base units as a decimal string with trailing zeros
// trimmed. It is the exact inverse of ParseDecimal.
func FormatUnits(v *big.Int) string {
	if v == nil {
		return "0"
	}
	s := v.String()
	if len(s) <= Decimals {
		s = strings.Repeat("0", Decimals-len(s)+1) + s
	}
	intPart := s[:len(s)-Decimals]
	fracPart := strings.TrimRight(s[len(s)-Decimals:], "0")
	if fracPart == "" {
		return intPart
	}
	return intPart + "." + fracPart
}

// FormatFixed renders base units with exactly the given number of fractional
// places, truncating rather than rounding. Display-only: ledger values never
// round-trip through this form.
func FormatFixed(v *big.Int, places int) string {
	if v == nil {
		v = big.NewInt(0)
	}
	if places <= 0 {
		return new(big.Int).Quo(v, oneUnit).String()
	}
	if places > Decimals {
		places = Decimals
	}
	s := v.String()
	if len(s) <= Decimals {
		s = strings.Repeat("0", Decimals-len(s)+1) + s
	}
	intPart := s[:len(s)-Decimals]
	fracPart := s[len(s)-Decimals:]
	return intPart + "." + fracPart[:places]
}

// ProportionalShares computes the share amount for a partial withdrawal of
// requested base units out of the staker's current shares, assuming a 1:1
// share/underlying rate. Both divisions truncate, in this order:
//
//	proportion  = requested * 10^18 / 10^18
//	shareAmount = shares * proportion / 10^18
//
// Callers should prefer the strategy's live underlyingToSharesView read and
// fall back to this only when that read fails.
func ProportionalShares(shares, requested *big.Int) *big.Int {
	proportion := new(big.Int).Mul(requested, oneUnit)
	proportion.Quo(proportion, oneUnit)
	out := new(big.Int).Mul(shares, proportion)
	return out.Quo(out, oneUnit)
}

// Sum adds share values as integers. Never goes through floating point.
func Sum(values []*big.Int) *big.Int {
	total := new(big.Int)
	for _, v := range values {
		if v != nil {
			total.Add(total, v)
		}
	}
	return total
}

// SumStrings parses and adds decimal-integer share strings as returned by the
// remote index. Malformed entries are skipped.
func SumStrings(values []string) *big.Int {
	total := new(big.Int)
	for _, raw := range values {
		v, ok := new(big.Int).SetString(strings.TrimSpace(raw), 10)
		if !ok || v.Sign() < 0 {
			continue
		}
		total.Add(total, v)
	}
	return total
}
