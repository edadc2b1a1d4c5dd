package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/restakehq/restake-agent/internal/intent"
	"github.com/restakehq/restake-agent/internal/message"
	"github.com/restakehq/restake-agent/internal/providers/explorer"
)

const stakersListLimit = 5

// StakersList answers "list stakers" queries with the first page of the
// staker index.
type StakersList struct {
	explorer *explorer.Client
	log      zerolog.Logger
}

func NewStakersList(client *explorer.Client, log zerolog.Logger) *StakersList {
	return &StakersList{explorer: client, log: log}
}

func (p *StakersList) Name() string { return "stakers-list" }

func (p *StakersList) Respond(ctx context.Context, msg message.Message) *message.Reply {
	if !intent.MatchStakersList(msg.Text) {
		return nil
	}

	list, err := p.explorer.Stakers(ctx)
	if err != nil || len(list.Data) == 0 {
		if err != nil {
			p.log.Error().Err(err).Msg("stakers list fetch failed")
		}
		return &message.Reply{Text: "No stakers found."}
	}

	limit := stakersListLimit
	if len(list.Data) < limit {
		limit = len(list.Data)
	}
	lines := make([]string, 0, limit)
	for _, s := range list.Data[:limit] {
		lines = append(lines, fmt.Sprintf("%s (delegated to %s)", s.Address, s.OperatorAddress))
	}
	return &message.Reply{
		Text: fmt.Sprintf("Found %d stakers. Here are the first %d:\n- %s",
			list.Meta.Total, limit, strings.Join(lines, "\n- ")),
	}
}
