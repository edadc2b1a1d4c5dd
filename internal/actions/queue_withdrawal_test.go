package actions

import (
	"context"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"

	agenterr "github.com/restakehq/restake-agent/internal/errors"
	"github.com/restakehq/restake-agent/internal/journal"
)

func TestQueueWithdrawalSuccessRecordsRoot(t *testing.T) {
	ledger := newFakeLedger()
	store := newTestJournal(t)
	a := NewQueueWithdrawal(ledger, store, zerolog.Nop())

	reply := a.Handle(context.Background(), testMessage("withdraw 0.1 ETH"), mustMatch(t, a, "withdraw 0.1 ETH"))
	want := "Successfully queued withdrawal of 0.1 ETH from EigenLayer\nTransaction hash: " + testTxHash.Hex()
	if reply.Text != want {
		t.Fatalf("reply = %q, want %q", reply.Text, want)
	}
	if reply.Root != testRoot.Hex() {
		t.Fatalf("root = %q", reply.Root)
	}

	entry := lastEntry(t, store)
	if entry.Action != "queue-withdrawal" || entry.Status != journal.StatusConfirmed {
		t.Fatalf("entry = %+v", entry)
	}
	if entry.WithdrawalRoot != testRoot.Hex() {
		t.Fatalf("entry root = %q", entry.WithdrawalRoot)
	}
	if entry.ShareAmount != mustUnits("0.1").String() {
		t.Fatalf("entry share amount = %q", entry.ShareAmount)
	}
}

func TestQueueWithdrawalNotDelegated(t *testing.T) {
	ledger := newFakeLedger()
	ledger.delegation.Delegated = false
	a := NewQueueWithdrawal(ledger, newTestJournal(t), zerolog.Nop())

	reply := a.Handle(context.Background(), testMessage("withdraw 0.1"), mustMatch(t, a, "withdraw 0.1"))
	if !strings.Contains(reply.Text, "Wallet is not delegated") {
		t.Fatalf("reply = %q", reply.Text)
	}
	if ledger.queueCalls != 0 {
		t.Fatalf("queueCalls = %d", ledger.queueCalls)
	}
}

func TestQueueWithdrawalDelegatedElsewhere(t *testing.T) {
	ledger := newFakeLedger()
	ledger.delegation.Operator = common.HexToAddress("0x2222222222222222222222222222222222222222")
	a := NewQueueWithdrawal(ledger, newTestJournal(t), zerolog.Nop())

	reply := a.Handle(context.Background(), testMessage("withdraw 0.1"), mustMatch(t, a, "withdraw 0.1"))
	if !strings.Contains(reply.Text, "delegated to a different operator") {
		t.Fatalf("reply = %q", reply.Text)
	}
	if ledger.queueCalls != 0 {
		t.Fatalf("queueCalls = %d", ledger.queueCalls)
	}
}

func TestQueueWithdrawalInsufficientShares(t *testing.T) {
	ledger := newFakeLedger()
	ledger.shares = mustUnits("0.05")
	a := NewQueueWithdrawal(ledger, newTestJournal(t), zerolog.Nop())

	reply := a.Handle(context.Background(), testMessage("withdraw 0.1"), mustMatch(t, a, "withdraw 0.1"))
	if !strings.Contains(reply.Text, "Insufficient shares") {
		t.Fatalf("reply = %q", reply.Text)
	}
	if ledger.queueCalls != 0 {
		t.Fatalf("queueCalls = %d", ledger.queueCalls)
	}
}

func TestQueueWithdrawalProportionalFallback(t *testing.T) {
	ledger := newFakeLedger()
	ledger.rateErr = agenterr.New(agenterr.CodeUnavailable, "rate read failed")
	ledger.shares = mustUnits("1")
	a := NewQueueWithdrawal(ledger, newTestJournal(t), zerolog.Nop())

	a.Handle(context.Background(), testMessage("withdraw 0.1"), mustMatch(t, a, "withdraw 0.1"))
	if ledger.queueCalls != 1 {
		t.Fatalf("queueCalls = %d", ledger.queueCalls)
	}
	// 0.1 of 1.0 shares at the 1:1 fallback rate
	if got := ledger.queuedReq.Shares[0]; got.Cmp(mustUnits("0.1")) != 0 {
		t.Fatalf("queued shares = %s", got)
	}
}

func TestQueueWithdrawalRequestShape(t *testing.T) {
	ledger := newFakeLedger()
	a := NewQueueWithdrawal(ledger, newTestJournal(t), zerolog.Nop())

	a.Handle(context.Background(), testMessage("unstake 0.2"), mustMatch(t, a, "unstake 0.2"))
	req := ledger.queuedReq
	if len(req.Strategies) != 1 || len(req.StrategyIndexes) != 1 || len(req.Shares) != 1 {
		t.Fatalf("req = %+v", req)
	}
	if req.Withdrawer != testWallet {
		t.Fatalf("withdrawer = %s", req.Withdrawer.Hex())
	}
	if req.StrategyIndexes[0].Sign() != 0 {
		t.Fatalf("strategy index = %s", req.StrategyIndexes[0])
	}
}
