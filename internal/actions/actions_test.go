package actions

import (
	"context"
	"math/big"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/restakehq/restake-agent/internal/amount"
	"github.com/restakehq/restake-agent/internal/chain"
	"github.com/restakehq/restake-agent/internal/journal"
	"github.com/restakehq/restake-agent/internal/message"
)

var (
	testWallet = common.HexToAddress("0x1111111111111111111111111111111111111111")
	testTxHash = common.HexToHash("0xabab")
	testRoot   = common.HexToHash("0xcdcd")
)

// fakeLedger fulfils the reads from canned values and counts every mutating
// call so tests can assert nothing was submitted past a failed precondition.
type fakeLedger struct {
	chain.Ledger

	signer     common.Address
	native     *big.Int
	token      *big.Int
	allowance  *big.Int
	details    chain.StrategyDetails
	delegation chain.DelegationStatus
	shares     *big.Int
	rateErr    error
	ready      bool
	dryRun     bool

	approveCalls  int
	depositCalls  int
	queueCalls    int
	completeCalls int

	queuedReq       chain.WithdrawalRequest
	completedShares []*big.Int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		signer:    testWallet,
		native:    mustUnits("10"),
		token:     mustUnits("10"),
		allowance: mustUnits("10"),
		details: chain.StrategyDetails{
			Name:             "StETH Strategy",
			Symbol:           "stETH",
			TotalShares:      mustUnits("1000"),
			MaxPerDeposit:    new(big.Int).Set(abi.MaxUint256),
			MaxTotalDeposits: new(big.Int).Set(abi.MaxUint256),
			TokenBalance:     mustUnits("500"),
		},
		delegation: chain.DelegationStatus{Delegated: true, Operator: testWallet},
		shares:     mustUnits("1"),
		ready:      true,
	}
}

func mustUnits(decimal string) *big.Int {
	v, err := amount.ParseDecimal(decimal)
	if err != nil {
		panic("bad decimal " + decimal)
	}
	return v
}

func (f *fakeLedger) SignerAddress() common.Address { return f.signer }

func (f *fakeLedger) NativeBalance(ctx context.Context, addr common.Address) (*big.Int, error) {
	return f.native, nil
}

func (f *fakeLedger) TokenBalance(ctx context.Context, addr common.Address) (*big.Int, error) {
	return f.token, nil
}

func (f *fakeLedger) Allowance(ctx context.Context, owner common.Address) (*big.Int, error) {
	return f.allowance, nil
}

func (f *fakeLedger) StrategyDetails(ctx context.Context) (chain.StrategyDetails, error) {
	return f.details, nil
}

func (f *fakeLedger) DelegationStatus(ctx context.Context, addr common.Address) (chain.DelegationStatus, error) {
	return f.delegation, nil
}

func (f *fakeLedger) StakerStrategyShares(ctx context.Context, staker common.Address) (*big.Int, error) {
	return f.shares, nil
}

func (f *fakeLedger) UnderlyingToShares(ctx context.Context, amount *big.Int) (*big.Int, error) {
	if f.rateErr != nil {
		return nil, f.rateErr
	}
	// 1:1 share rate
	return new(big.Int).Set(amount), nil
}

func (f *fakeLedger) GetWithdrawalStatus(ctx context.Context, root common.Hash) (bool, error) {
	return f.ready, nil
}

func (f *fakeLedger) txResult() chain.TxResult {
	if f.dryRun {
		return chain.TxResult{}
	}
	return chain.TxResult{Hash: testTxHash, Block: 100}
}

func (f *fakeLedger) Approve(ctx context.Context, amount *big.Int) (chain.TxResult, error) {
	f.approveCalls++
	return f.txResult(), nil
}

func (f *fakeLedger) DepositIntoStrategy(ctx context.Context, amount *big.Int) (chain.TxResult, error) {
	f.depositCalls++
	return f.txResult(), nil
}

func (f *fakeLedger) QueueWithdrawals(ctx context.Context, req chain.WithdrawalRequest) (chain.TxResult, []common.Hash, error) {
	f.queueCalls++
	f.queuedReq = req
	return f.txResult(), []common.Hash{testRoot}, nil
}

func (f *fakeLedger) CompleteQueuedWithdrawal(ctx context.Context, recipient common.Address, indexes []*big.Int, strategies []common.Address, shares []*big.Int) (chain.TxResult, error) {
	f.completeCalls++
	f.completedShares = shares
	return f.txResult(), nil
}

func newTestJournal(t *testing.T) *journal.Store {
	t.Helper()
	dir := t.TempDir()
	store, err := journal.Open(filepath.Join(dir, "journal.db"), filepath.Join(dir, "journal.lock"))
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testMessage(text string) message.Message {
	return message.New("user-1", "room-1", "agent-1", text)
}

func lastEntry(t *testing.T, store *journal.Store) journal.Entry {
	t.Helper()
	entries, err := store.Recent("room-1", 1)
	if err != nil {
		t.Fatalf("read journal: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("journal is empty")
	}
	return entries[0]
}
