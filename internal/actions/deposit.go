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
)

// Deposit moves stETH into the EigenLayer strategy. The token allowance is
// topped up with an approve transaction first when it is short.
type Deposit struct {
	base
}

func NewDeposit(ledger chain.Ledger, store *journal.Store, log zerolog.Logger) *Deposit {
	return &Deposit{base{ledger: ledger, journal: store, log: log}}
}

func (a *Deposit) Name() string { return "deposit" }

func (a *Deposit) Match(msg message.Message) (bool, intent.Params) {
	return intent.MatchDeposit(msg.Text)
}

func (a *Deposit) Handle(ctx context.Context, msg message.Message, params intent.Params) message.Reply {
	fail := func(text string) message.Reply {
		reply := message.Reply{Text: text, Action: a.Name()}
		a.record(msg, reply, journal.StatusFailed, "")
		return reply
	}

	units, err := amount.ParseDecimal(params.Amount)
	if err != nil || units.Sign() <= 0 {
		return fail("Please provide a valid amount to deposit (e.g. 0.5).")
	}
	if a.ledger == nil {
		return fail(rpcUnavailableText)
	}
	self := a.ledger.SignerAddress()
	if self == (common.Address{}) {
		return fail(walletNotConfiguredText)
	}
	log := a.log.With().Str("action", a.Name()).Str("wallet", self.Hex()).Str("amount", params.Amount).Logger()

	nativeBalance, err := a.ledger.NativeBalance(ctx, self)
	if err != nil {
		log.Error().Err(err).Msg("native balance read failed")
		return fail("Failed to deposit. Unable to read the wallet balance.")
	}
	if nativeBalance.Cmp(units) < 0 {
		return fail(fmt.Sprintf("Insufficient ETH balance. The wallet holds %s ETH.", amount.FormatUnits(nativeBalance)))
	}

	tokenBalance, err := a.ledger.TokenBalance(ctx, self)
	if err != nil {
		log.Error().Err(err).Msg("token balance read failed")
		return fail("Failed to deposit. Unable to read the stETH balance.")
	}
	if tokenBalance.Cmp(units) < 0 {
		return fail(fmt.Sprintf("Insufficient stETH balance. The wallet holds %s stETH but %s was requested.",
			amount.FormatUnits(tokenBalance), params.Amount))
	}

	// Strategy caps are display reads with unlimited sentinels, so a failed
	// bundle just skips the cap checks.
	details, err := a.ledger.StrategyDetails(ctx)
	if err == nil {
		log.Debug().
			Str("strategy_name", details.Name).
			Str("max_per_deposit", amount.FormatUnits(details.MaxPerDeposit)).
			Str("max_total_deposits", amount.FormatUnits(details.MaxTotalDeposits)).
			Msg("strategy details")
		if units.Cmp(details.MaxPerDeposit) > 0 {
			return fail("Amount exceeds max per deposit limit.")
		}
		projected := new(big.Int).Add(details.TokenBalance, units)
		if projected.Cmp(details.MaxTotalDeposits) > 0 {
			return fail("Amount would exceed max total deposits.")
		}
	} else {
		log.Warn().Err(err).Msg("strategy details read failed, skipping cap checks")
	}

	allowance, err := a.ledger.Allowance(ctx, self)
	if err != nil {
		log.Error().Err(err).Msg("allowance read failed")
		return fail("Failed to deposit. Unable to read the stETH allowance.")
	}
	if allowance.Cmp(units) < 0 {
		approveRes, err := a.ledger.Approve(ctx, units)
		if err != nil {
			log.Error().Err(err).Msg("approve failed")
			return fail("Failed to approve stETH spending. " + failureSuffix(err))
		}
		log.Info().Str("tx", approveRes.Hash.Hex()).Msg("approve confirmed")
	}

	// Display read: the expected share estimate is log-only.
	if expected, err := a.ledger.UnderlyingToShares(ctx, units); err == nil {
		log.Debug().Str("expected_shares", expected.String()).Msg("share estimate")
	} else {
		log.Debug().Err(err).Msg("could not estimate shares")
	}

	res, err := a.ledger.DepositIntoStrategy(ctx, units)
	if err != nil {
		log.Error().Err(err).Msg("deposit failed")
		return fail("Failed to deposit. " + failureSuffix(err))
	}

	reply := message.Reply{Action: a.Name()}
	if res.Broadcast() {
		reply.Text = fmt.Sprintf("Successfully deposited %s stETH into EigenLayer\nTransaction hash: %s", params.Amount, res.Hash.Hex())
		reply.TxHash = res.Hash.Hex()
		log.Info().Str("tx", res.Hash.Hex()).Uint64("block", res.Block).Msg("deposit confirmed")
	} else {
		reply.Text = fmt.Sprintf("Simulated deposit of %s stETH into EigenLayer. No transaction was broadcast (dry run).", params.Amount)
		log.Info().Msg("deposit simulated")
	}
	a.record(msg, reply, statusFor(res), "")
	return reply
}
