package chain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// TxResult identifies a confirmed transaction. A zero Hash means the call was
// simulated only (dry run) and never broadcast.
type TxResult struct {
	Hash  common.Hash
	Block uint64
}

func (r TxResult) Broadcast() bool {
	return r.Hash != (common.Hash{})
}

// StrategyDetails is the display-read bundle for the strategy contract.
// Reads that fail fall back to sentinels: "Unknown" names, unlimited caps,
// zero token balance. An unknown cap is treated as unlimited.
type StrategyDetails struct {
	Name             string
	Symbol           string
	TotalShares      *big.Int
	MaxPerDeposit    *big.Int
	MaxTotalDeposits *big.Int
	TokenBalance     *big.Int
}

// DelegationStatus is the critical-read bundle for a staker's delegation.
type DelegationStatus struct {
	Delegated bool
	Operator  common.Address
}

// WithdrawalRequest describes one queued-withdrawal parameter set.
type WithdrawalRequest struct {
	Strategies      []common.Address
	StrategyIndexes []*big.Int
	Shares          []*big.Int
	Withdrawer      common.Address
}

// Ledger is the on-chain capability the actions and providers run against.
type Ledger interface {
	SignerAddress() common.Address

	NativeBalance(ctx context.Context, addr common.Address) (*big.Int, error)
	TokenBalance(ctx context.Context, addr common.Address) (*big.Int, error)
	Allowance(ctx context.Context, owner common.Address) (*big.Int, error)
	GetDeposits(ctx context.Context, addr common.Address) ([]common.Address, []*big.Int, error)
	StakerStrategyShares(ctx context.Context, staker common.Address) (*big.Int, error)
	IsDelegated(ctx context.Context, addr common.Address) (bool, error)
	DelegatedTo(ctx context.Context, addr common.Address) (common.Address, error)
	IsOperator(ctx context.Context, addr common.Address) (bool, error)
	DelegationStatus(ctx context.Context, addr common.Address) (DelegationStatus, error)
	StrategyDetails(ctx context.Context) (StrategyDetails, error)
	UnderlyingToShares(ctx context.Context, amount *big.Int) (*big.Int, error)
	GetWithdrawalStatus(ctx context.Context, root common.Hash) (bool, error)

	Approve(ctx context.Context, amount *big.Int) (TxResult, error)
	DepositIntoStrategy(ctx context.Context, amount *big.Int) (TxResult, error)
	QueueWithdrawals(ctx context.Context, req WithdrawalRequest) (TxResult, []common.Hash, error)
	CompleteQueuedWithdrawal(ctx context.Context, recipient common.Address, indexes []*big.Int, strategies []common.Address, shares []*big.Int) (TxResult, error)

	Close()
}
