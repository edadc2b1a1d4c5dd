package actions

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/restakehq/restake-agent/internal/chain"
	agenterr "github.com/restakehq/restake-agent/internal/errors"
	"github.com/restakehq/restake-agent/internal/intent"
	"github.com/restakehq/restake-agent/internal/journal"
	"github.com/restakehq/restake-agent/internal/message"
)

// Action is one executable handler. Match decides whether the message is for
// this action and extracts its parameters; Handle runs the full
// precondition/submit/confirm sequence and always returns a terminal reply.
type Action interface {
	Name() string
	Match(msg message.Message) (bool, intent.Params)
	Handle(ctx context.Context, msg message.Message, params intent.Params) message.Reply
}

const (
	walletNotConfiguredText = "Wallet not configured. Please set your RESTAKE_PRIVATE_KEY in environment variables to perform transactions."
	rpcUnavailableText      = "Unable to reach the Ethereum RPC endpoint. Please check the --rpc-url configuration and try again."
)

type base struct {
	ledger  chain.Ledger
	journal *journal.Store
	log     zerolog.Logger
}

// record appends the terminal reply to the conversation journal. A journal
// failure is logged but never overrides the reply already produced.
func (b base) record(msg message.Message, reply message.Reply, status, shareAmount string) {
	err := b.journal.Append(journal.Entry{
		RoomID:         msg.RoomID,
		UserID:         msg.UserID,
		Action:         reply.Action,
		Status:         status,
		TxHash:         reply.TxHash,
		WithdrawalRoot: reply.Root,
		ShareAmount:    shareAmount,
		Text:           reply.Text,
	})
	if err != nil {
		b.log.Error().Err(err).Str("action", reply.Action).Msg("journal append failed")
	}
}

func statusFor(res chain.TxResult) string {
	if !res.Broadcast() {
		return journal.StatusSimulated
	}
	return journal.StatusConfirmed
}

// failureSuffix maps a submission error to the user-facing sentence appended
// after the per-action "Failed to ..." prefix.
func failureSuffix(err error) string {
	typed, _ := agenterr.As(err)
	switch agenterr.CodeOf(err) {
	case agenterr.CodeSignerRejected:
		return "Transaction was rejected by user."
	case agenterr.CodeGasFunds:
		return "Insufficient funds for gas."
	case agenterr.CodeSimulation, agenterr.CodeReverted:
		text := "The transaction would fail. This could be due to insufficient shares or pending withdrawals."
		if typed != nil && typed.Message != "" {
			text += fmt.Sprintf(" (%s)", typed.Message)
		}
		return text
	default:
		if typed != nil && typed.Message != "" {
			return typed.Message
		}
		return "Unknown error occurred."
	}
}
