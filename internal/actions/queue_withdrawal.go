package actions

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"

	"github.com/restakehq/restake-agent/internal/amount"
	"github.com/restakehq/restake-agent/internal/chain"
	"github.com/restakehq/restake-agent/internal/intent"
	"github.com/restakehq/restake-agent/internal/journal"
	"github.com/restakehq/restake-agent/internal/message"
	"github.com/restakehq/restake-agent/internal/registry"
)

// QueueWithdrawal starts the withdrawal escrow for part of the staker's
// strategy shares. The live underlyingToSharesView rate is authoritative for
// the share amount; the proportional floor math is the fallback when that
// read fails.
type QueueWithdrawal struct {
	base
}

func NewQueueWithdrawal(ledger chain.Ledger, store *journal.Store, log zerolog.Logger) *QueueWithdrawal {
	return &QueueWithdrawal{base{ledger: ledger, journal: store, log: log}}
}

func (a *QueueWithdrawal) Name() string { return "queue-withdrawal" }

func (a *QueueWithdrawal) Match(msg message.Message) (bool, intent.Params) {
	return intent.MatchQueueWithdrawal(msg.Text)
}

func (a *QueueWithdrawal) Handle(ctx context.Context, msg message.Message, params intent.Params) message.Reply {
	fail := func(text string) message.Reply {
		reply := message.Reply{Text: text, Action: a.Name()}
		a.record(msg, reply, journal.StatusFailed, "")
		return reply
	}

	requested, err := amount.ParseDecimal(params.Amount)
	if err != nil || requested.Sign() <= 0 {
		return fail("Please provide a valid amount to withdraw (e.g. 0.1).")
	}
	if a.ledger == nil {
		return fail(rpcUnavailableText)
	}
	self := a.ledger.SignerAddress()
	if self == (common.Address{}) {
		return fail(walletNotConfiguredText)
	}
	log := a.log.With().Str("action", a.Name()).Str("wallet", self.Hex()).Str("amount", params.Amount).Logger()

	delegation, err := a.ledger.DelegationStatus(ctx, self)
	if err != nil {
		log.Error().Err(err).Msg("delegation status read failed")
		return fail("Failed to queue withdrawal. Unable to read the wallet's delegation status.")
	}
	if !delegation.Delegated {
		return fail("Failed to queue withdrawal. Wallet is not delegated.")
	}
	if delegation.Operator != self {
		return fail("Failed to queue withdrawal. Wallet is delegated to a different operator.")
	}

	userShares, err := a.ledger.StakerStrategyShares(ctx, self)
	if err != nil {
		log.Error().Err(err).Msg("shares read failed")
		return fail("Failed to queue withdrawal. Unable to read the wallet's strategy shares.")
	}

	shareAmount, err := a.ledger.UnderlyingToShares(ctx, requested)
	if err != nil {
		log.Debug().Err(err).Msg("share rate read failed, using proportional fallback")
		shareAmount = amount.ProportionalShares(userShares, requested)
	}
	if shareAmount.Cmp(userShares) > 0 {
		return fail(fmt.Sprintf("Insufficient shares. You have %s shares but trying to withdraw %s shares.",
			amount.FormatUnits(userShares), amount.FormatUnits(shareAmount)))
	}
	if shareAmount.Sign() <= 0 {
		return fail("Share amount must be greater than 0.")
	}

	res, roots, err := a.ledger.QueueWithdrawals(ctx, chain.WithdrawalRequest{
		Strategies:      []common.Address{common.HexToAddress(registry.StETHStrategyAddress)},
		StrategyIndexes: []*big.Int{big.NewInt(0)},
		Shares:          []*big.Int{shareAmount},
		Withdrawer:      self,
	})
	if err != nil {
		log.Error().Err(err).Msg("queue withdrawal failed")
		return fail("Failed to queue withdrawal. " + failureSuffix(err))
	}

	reply := message.Reply{Action: a.Name()}
	if len(roots) > 0 {
		reply.Root = roots[0].Hex()
	}
	if res.Broadcast() {
		reply.Text = fmt.Sprintf("Successfully queued withdrawal of %s ETH from EigenLayer\nTransaction hash: %s", params.Amount, res.Hash.Hex())
		reply.TxHash = res.Hash.Hex()
		log.Info().Str("tx", res.Hash.Hex()).Str("root", reply.Root).Str("share_amount", shareAmount.String()).Msg("withdrawal queued")
	} else {
		reply.Text = fmt.Sprintf("Simulated queueing a withdrawal of %s ETH from EigenLayer. No transaction was broadcast (dry run).", params.Amount)
		log.Info().Str("root", reply.Root).Msg("withdrawal queue simulated")
	}
	a.record(msg, reply, statusFor(res), shareAmount.String())
	return reply
}
