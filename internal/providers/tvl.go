package providers

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	agenterr "github.com/restakehq/restake-agent/internal/errors"
	"github.com/restakehq/restake-agent/internal/intent"
	"github.com/restakehq/restake-agent/internal/message"
	"github.com/restakehq/restake-agent/internal/providers/explorer"
)

// TVL answers protocol-wide TVL queries from the remote index.
type TVL struct {
	explorer *explorer.Client
	log      zerolog.Logger
}

func NewTVL(client *explorer.Client, log zerolog.Logger) *TVL {
	return &TVL{explorer: client, log: log}
}

func (p *TVL) Name() string { return "tvl" }

func (p *TVL) Respond(ctx context.Context, msg message.Message) *message.Reply {
	if !intent.MatchTVL(msg.Text) {
		return nil
	}

	data, err := p.explorer.TVL(ctx)
	if err != nil {
		p.log.Error().Err(err).Msg("tvl fetch failed")
		if agenterr.HasCode(err, agenterr.CodeServerError) {
			return &message.Reply{Text: "Unable to fetch TVL data at the moment due to a server error. Please try again later."}
		}
		return &message.Reply{Text: "Unable to fetch TVL data at the moment."}
	}

	return &message.Reply{
		Text: fmt.Sprintf("The current Total Value Locked (TVL) in EigenLayer is $%s",
			groupThousands(fmt.Sprintf("%.2f", data.TVL))),
	}
}
