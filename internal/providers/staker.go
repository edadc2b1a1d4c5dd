package providers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"

	"github.com/restakehq/restake-agent/internal/amount"
	"github.com/restakehq/restake-agent/internal/chain"
	agenterr "github.com/restakehq/restake-agent/internal/errors"
	"github.com/restakehq/restake-agent/internal/intent"
	"github.com/restakehq/restake-agent/internal/message"
	"github.com/restakehq/restake-agent/internal/providers/explorer"
	"github.com/restakehq/restake-agent/internal/registry"
)

// Staker answers wallet-status and staker-status queries. The remote index is
// asked first; when it has not indexed the address yet, the provider falls
// back to reading the ledger directly.
type Staker struct {
	explorer *explorer.Client
	ledger   chain.Ledger
	log      zerolog.Logger
}

// NewStaker builds the provider. ledger may be nil when no RPC endpoint is
// configured; the fallback is skipped in that case.
func NewStaker(client *explorer.Client, ledger chain.Ledger, log zerolog.Logger) *Staker {
	return &Staker{explorer: client, ledger: ledger, log: log}
}

func (p *Staker) Name() string { return "staker" }

func (p *Staker) Respond(ctx context.Context, msg message.Message) *message.Reply {
	if intent.MatchWalletStatus(msg.Text) {
		return p.walletStatus(ctx)
	}
	matched, params := intent.MatchStakerStatus(msg.Text)
	if !matched {
		return nil
	}
	return p.stakerStatus(ctx, params.Address)
}

func (p *Staker) walletStatus(ctx context.Context) *message.Reply {
	if p.ledger == nil || p.ledger.SignerAddress() == (common.Address{}) {
		return &message.Reply{Text: "Wallet not configured. Please set your RESTAKE_PRIVATE_KEY in environment variables to check your wallet status."}
	}
	address := p.ledger.SignerAddress().Hex()

	data, err := p.explorer.Staker(ctx, address)
	if err != nil {
		if agenterr.HasCode(err, agenterr.CodeNotFound) {
			if reply := p.onChainStatus(ctx, address); reply != nil {
				return reply
			}
			return &message.Reply{Text: fmt.Sprintf("No stakes found for %s. If you just made a deposit, please wait a few minutes for it to be indexed.", address)}
		}
		p.log.Error().Err(err).Msg("wallet status fetch failed")
		return &message.Reply{Text: "Unable to fetch your wallet status at the moment. Your deposits are safe on-chain, but we are having trouble accessing the data. Please try again in a few minutes."}
	}

	lines := []string{
		"EigenLayer Wallet Status",
		fmt.Sprintf("Address: %s", address),
		fmt.Sprintf("Total Staked: %s ETH", amount.FormatFixed(totalShares(data.Shares), 4)),
		fmt.Sprintf("Delegated to Operator: %s", data.OperatorAddress),
		fmt.Sprintf("Last Activity: %s", formatDate(data.UpdatedAt)),
	}
	return &message.Reply{Text: strings.Join(lines, "\n")}
}

func (p *Staker) stakerStatus(ctx context.Context, address string) *message.Reply {
	if address == "" {
		return &message.Reply{Text: "Please provide a valid staker address (0x...) to check their status."}
	}

	data, err := p.explorer.Staker(ctx, address)
	if err != nil {
		if agenterr.HasCode(err, agenterr.CodeNotFound) {
			if reply := p.onChainStatus(ctx, address); reply != nil {
				return reply
			}
			return &message.Reply{Text: fmt.Sprintf("No staking activity found for %s. This address is not currently staking in EigenLayer or the deposits have not been indexed yet.", address)}
		}
		p.log.Error().Str("staker", address).Err(err).Msg("staker status fetch failed")
		return &message.Reply{Text: "Unable to fetch staker information. The deposits are safe on-chain, but we are having trouble accessing the data. Please try again later."}
	}

	lines := []string{
		"EigenLayer Staker Status",
		fmt.Sprintf("Address: %s", address),
		fmt.Sprintf("Total Staked: %s ETH", amount.FormatFixed(totalShares(data.Shares), 4)),
		fmt.Sprintf("Delegated to Operator: %s", data.OperatorAddress),
		fmt.Sprintf("Started Staking: %s", formatDate(data.CreatedAt)),
		fmt.Sprintf("Last Activity: %s", formatDate(data.UpdatedAt)),
	}
	return &message.Reply{Text: strings.Join(lines, "\n")}
}

// onChainStatus reads the staker's position from the ledger. Nil means the
// address holds no stETH strategy shares (or the ledger is unavailable).
func (p *Staker) onChainStatus(ctx context.Context, address string) *message.Reply {
	if p.ledger == nil {
		return nil
	}
	addr := common.HexToAddress(address)
	strategies, shares, err := p.ledger.GetDeposits(ctx, addr)
	if err != nil {
		p.log.Error().Str("staker", address).Err(err).Msg("on-chain deposits read failed")
		return nil
	}

	strategyAddr := common.HexToAddress(registry.StETHStrategyAddress)
	idx := -1
	for i, s := range strategies {
		if s == strategyAddr {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}

	delegated, err := p.ledger.IsDelegated(ctx, addr)
	if err != nil {
		p.log.Error().Str("staker", address).Err(err).Msg("on-chain delegation read failed")
		return nil
	}
	// Display read: a missing operator just drops the line.
	operator, opErr := p.ledger.DelegatedTo(ctx, addr)

	lines := []string{
		"EigenLayer Wallet Status",
		fmt.Sprintf("Address: %s", address),
		fmt.Sprintf("Total Staked: %s ETH", amount.FormatFixed(shares[idx], 4)),
		fmt.Sprintf("Strategy: stETH (%s)", registry.StETHStrategyAddress),
	}
	if delegated {
		lines = append(lines, "Delegation Status: Delegated")
	} else {
		lines = append(lines, "Delegation Status: Not Delegated")
	}
	if opErr == nil && operator != (common.Address{}) {
		lines = append(lines, fmt.Sprintf("Delegated To: %s", operator.Hex()))
	}
	lines = append(lines, "Note: Using on-chain data as API data is still indexing")
	return &message.Reply{Text: strings.Join(lines, "\n")}
}

func formatDate(raw string) string {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return raw
	}
	return t.Format("2006-01-02")
}
