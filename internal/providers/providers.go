package providers

import (
	"context"
	"math/big"
	"strings"

	"github.com/restakehq/restake-agent/internal/amount"
	"github.com/restakehq/restake-agent/internal/message"
	"github.com/restakehq/restake-agent/internal/providers/explorer"
)

// Provider answers read-only queries. Respond returns nil when the message is
// not for this provider; otherwise it always returns a reply, rendering
// failures as user-facing text.
type Provider interface {
	Name() string
	Respond(ctx context.Context, msg message.Message) *message.Reply
}

func totalShares(shares []explorer.StakerShare) *big.Int {
	raw := make([]string, 0, len(shares))
	for _, s := range shares {
		raw = append(raw, s.Shares)
	}
	return amount.SumStrings(raw)
}

// groupThousands renders a decimal string with comma separators, e.g.
// 1234567.89 -> 1,234,567.89.
func groupThousands(s string) string {
	intPart := s
	fracPart := ""
	if idx := strings.IndexByte(s, '.'); idx >= 0 {
		intPart, fracPart = s[:idx], s[idx:]
	}
	if len(intPart) <= 3 {
		return intPart + fracPart
	}
	var b strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}
	return b.String() + fracPart
}
