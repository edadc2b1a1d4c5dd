package actions

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"

	"github.com/restakehq/restake-agent/internal/chain"
	agenterr "github.com/restakehq/restake-agent/internal/errors"
	"github.com/restakehq/restake-agent/internal/intent"
	"github.com/restakehq/restake-agent/internal/journal"
	"github.com/restakehq/restake-agent/internal/message"
	"github.com/restakehq/restake-agent/internal/registry"
)

// CompleteWithdrawal claims a queued withdrawal once the escrow period has
// passed. The share amount is recovered from the journal entry written when
// the withdrawal was queued; only withdrawals queued through this agent can
// be completed.
type CompleteWithdrawal struct {
	base
}

func NewCompleteWithdrawal(ledger chain.Ledger, store *journal.Store, log zerolog.Logger) *CompleteWithdrawal {
	return &CompleteWithdrawal{base{ledger: ledger, journal: store, log: log}}
}

func (a *CompleteWithdrawal) Name() string { return "complete-withdrawal" }

func (a *CompleteWithdrawal) Match(msg message.Message) (bool, intent.Params) {
	return intent.MatchCompleteWithdrawal(msg.Text)
}

func (a *CompleteWithdrawal) Handle(ctx context.Context, msg message.Message, params intent.Params) message.Reply {
	fail := func(text string) message.Reply {
		reply := message.Reply{Text: text, Action: a.Name()}
		a.record(msg, reply, journal.StatusFailed, "")
		return reply
	}

	if a.ledger == nil {
		return fail(rpcUnavailableText)
	}
	self := a.ledger.SignerAddress()
	if self == (common.Address{}) {
		return fail(walletNotConfiguredText)
	}
	log := a.log.With().Str("action", a.Name()).Str("wallet", self.Hex()).Logger()

	var (
		entry journal.Entry
		err   error
	)
	if params.WithdrawalRoot != "" {
		entry, err = a.journal.QueuedWithdrawalByRoot(params.WithdrawalRoot)
		if err != nil {
			if agenterr.HasCode(err, agenterr.CodeNotFound) {
				return fail(fmt.Sprintf("No queued withdrawal with root %s is recorded. Only withdrawals queued through this agent can be completed.", params.WithdrawalRoot))
			}
			log.Error().Err(err).Msg("journal lookup failed")
			return fail("Failed to complete withdrawal. Unable to read the withdrawal journal.")
		}
	} else {
		entry, err = a.journal.LatestQueuedWithdrawal(msg.RoomID)
		if err != nil {
			if agenterr.HasCode(err, agenterr.CodeNotFound) {
				return fail("No withdrawal found to complete. Queue a withdrawal first, or provide the withdrawal root (0x...).")
			}
			log.Error().Err(err).Msg("journal lookup failed")
			return fail("Failed to complete withdrawal. Unable to read the withdrawal journal.")
		}
	}

	shares, ok := new(big.Int).SetString(entry.ShareAmount, 10)
	if !ok || shares.Sign() <= 0 {
		log.Error().Str("root", entry.WithdrawalRoot).Str("share_amount", entry.ShareAmount).Msg("journal entry has no usable share amount")
		return fail("Failed to complete withdrawal. The recorded withdrawal is missing its share amount.")
	}
	root := common.HexToHash(entry.WithdrawalRoot)
	log = log.With().Str("root", entry.WithdrawalRoot).Logger()

	ready, err := a.ledger.GetWithdrawalStatus(ctx, root)
	if err != nil {
		log.Error().Err(err).Msg("withdrawal status read failed")
		return fail("Failed to complete withdrawal. Unable to read the withdrawal status.")
	}
	if !ready {
		return fail("Withdrawal is not ready yet. Please wait for the escrow period to complete (7 days on mainnet, 10 blocks on testnet).")
	}

	res, err := a.ledger.CompleteQueuedWithdrawal(ctx, self,
		[]*big.Int{big.NewInt(0)},
		[]common.Address{common.HexToAddress(registry.StETHStrategyAddress)},
		[]*big.Int{shares})
	if err != nil {
		log.Error().Err(err).Msg("complete withdrawal failed")
		return fail("Failed to complete withdrawal. " + failureSuffix(err))
	}

	reply := message.Reply{Action: a.Name(), Root: entry.WithdrawalRoot}
	if res.Broadcast() {
		reply.Text = fmt.Sprintf("Successfully completed withdrawal.\nTransaction: %s", res.Hash.Hex())
		reply.TxHash = res.Hash.Hex()
		log.Info().Str("tx", res.Hash.Hex()).Uint64("block", res.Block).Msg("withdrawal completed")
	} else {
		reply.Text = "Simulated completing the withdrawal. No transaction was broadcast (dry run)."
		log.Info().Msg("withdrawal completion simulated")
	}
	a.record(msg, reply, statusFor(res), entry.ShareAmount)
	return reply
}
