package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/restakehq/restake-agent/internal/amount"
	agenterr "github.com/restakehq/restake-agent/internal/errors"
	"github.com/restakehq/restake-agent/internal/intent"
	"github.com/restakehq/restake-agent/internal/message"
	"github.com/restakehq/restake-agent/internal/providers/explorer"
)

// Operator answers operator status queries from the remote index.
type Operator struct {
	explorer *explorer.Client
	log      zerolog.Logger
}

func NewOperator(client *explorer.Client, log zerolog.Logger) *Operator {
	return &Operator{explorer: client, log: log}
}

func (p *Operator) Name() string { return "operator" }

func (p *Operator) Respond(ctx context.Context, msg message.Message) *message.Reply {
	matched, params := intent.MatchOperator(msg.Text)
	if !matched {
		return nil
	}
	if params.Address == "" {
		return &message.Reply{Text: "Please provide a valid operator address (0x...)"}
	}

	data, err := p.explorer.Operator(ctx, params.Address)
	if err != nil {
		p.log.Error().Str("operator", params.Address).Err(err).Msg("operator fetch failed")
		switch {
		case agenterr.HasCode(err, agenterr.CodeNotFound):
			return &message.Reply{Text: fmt.Sprintf("No operator found for address %s. Please verify the address and try again.", params.Address)}
		case agenterr.HasCode(err, agenterr.CodeServerError):
			return &message.Reply{Text: "Unable to fetch operator data at the moment due to a server error. Please try again later."}
		default:
			return &message.Reply{Text: "An unexpected error occurred while fetching operator data. Please try again later."}
		}
	}

	name := data.MetadataName
	if name == "" {
		name = params.Address
	}
	active := 0
	for _, avs := range data.AVSRegistrations {
		if avs.IsActive {
			active++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "EigenLayer Operator Status for %s:\n", name)
	if data.MetadataDescription != "" {
		fmt.Fprintf(&b, "Description: %s\n", data.MetadataDescription)
	}
	fmt.Fprintf(&b, "- Total Stakers: %d\n", data.TotalStakers)
	fmt.Fprintf(&b, "- Total AVS: %d\n", data.TotalAVS)
	fmt.Fprintf(&b, "- APY: %s%%\n", data.APY)
	fmt.Fprintf(&b, "- Total Shares: %s ETH\n", amount.FormatFixed(totalShares(data.Shares), 2))
	if data.MetadataWebsite != "" {
		fmt.Fprintf(&b, "- Website: %s\n", data.MetadataWebsite)
	}
	fmt.Fprintf(&b, "- Active AVS Services: %d", active)

	return &message.Reply{Text: b.String()}
}
