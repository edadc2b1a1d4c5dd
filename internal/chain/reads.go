package chain

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"

	agenterr "github.com/restakehq/restake-agent/internal/errors"
)

func (c *Client) callView(ctx context.Context, to common.Address, contractABI abi.ABI, method string, args ...any) ([]any, error) {
	data, err := contractABI.Pack(method, args...)
	if err != nil {
		return nil, agenterr.Wrap(agenterr.CodeInternal, "pack "+method, err)
	}
	ret, err := c.eth.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return nil, agenterr.Wrap(agenterr.CodeUnavailable, "call "+method, err)
	}
	out, err := contractABI.Unpack(method, ret)
	if err != nil {
		return nil, agenterr.Wrap(agenterr.CodeUnavailable, "unpack "+method, err)
	}
	return out, nil
}

func (c *Client) NativeBalance(ctx context.Context, addr common.Address) (*big.Int, error) {
	balance, err := c.eth.BalanceAt(ctx, addr, nil)
	if err != nil {
		return nil, agenterr.Wrap(agenterr.CodeUnavailable, "read native balance", err)
	}
	return balance, nil
}

func (c *Client) TokenBalance(ctx context.Context, addr common.Address) (*big.Int, error) {
	out, err := c.callView(ctx, c.token, c.erc20ABI, "balanceOf", addr)
	if err != nil {
		return nil, err
	}
	return out[0].(*big.Int), nil
}

func (c *Client) Allowance(ctx context.Context, owner common.Address) (*big.Int, error) {
	out, err := c.callView(ctx, c.token, c.erc20ABI, "allowance", owner, c.strategyManager)
	if err != nil {
		return nil, err
	}
	return out[0].(*big.Int), nil
}

func (c *Client) GetDeposits(ctx context.Context, addr common.Address) ([]common.Address, []*big.Int, error) {
	out, err := c.callView(ctx, c.strategyManager, c.strategyManagerABI, "getDeposits", addr)
	if err != nil {
		return nil, nil, err
	}
	return out[0].([]common.Address), out[1].([]*big.Int), nil
}

func (c *Client) StakerStrategyShares(ctx context.Context, staker common.Address) (*big.Int, error) {
	out, err := c.callView(ctx, c.strategyManager, c.strategyManagerABI, "stakerStrategyShares", staker, c.strategy)
	if err != nil {
		return nil, err
	}
	return out[0].(*big.Int), nil
}

func (c *Client) IsDelegated(ctx context.Context, addr common.Address) (bool, error) {
	out, err := c.callView(ctx, c.delegationManager, c.delegationManagerABI, "isDelegated", addr)
	if err != nil {
		return false, err
	}
	return out[0].(bool), nil
}

func (c *Client) DelegatedTo(ctx context.Context, addr common.Address) (common.Address, error) {
	out, err := c.callView(ctx, c.delegationManager, c.delegationManagerABI, "delegatedTo", addr)
	if err != nil {
		return common.Address{}, err
	}
	return out[0].(common.Address), nil
}

func (c *Client) IsOperator(ctx context.Context, addr common.Address) (bool, error) {
	out, err := c.callView(ctx, c.delegationManager, c.delegationManagerABI, "isOperator", addr)
	if err != nil {
		return false, err
	}
	return out[0].(bool), nil
}

// DelegationStatus runs the delegation reads in parallel. Both are critical:
// a failure on either aborts the whole read.
func (c *Client) DelegationStatus(ctx context.Context, addr common.Address) (DelegationStatus, error) {
	var status DelegationStatus
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		delegated, err := c.IsDelegated(gctx, addr)
		if err != nil {
			return err
		}
		status.Delegated = delegated
		return nil
	})
	g.Go(func() error {
		operator, err := c.DelegatedTo(gctx, addr)
		if err != nil {
			return err
		}
		status.Operator = operator
		return nil
	})
	if err := g.Wait(); err != nil {
		return DelegationStatus{}, err
	}
	return status, nil
}

// StrategyDetails runs the strategy display reads in parallel. Each read that
// fails degrades to its sentinel instead of failing the bundle.
func (c *Client) StrategyDetails(ctx context.Context) (StrategyDetails, error) {
	details := StrategyDetails{
		Name:             "Unknown",
		Symbol:           "Unknown",
		TotalShares:      big.NewInt(0),
		MaxPerDeposit:    new(big.Int).Set(abi.MaxUint256),
		MaxTotalDeposits: new(big.Int).Set(abi.MaxUint256),
		TokenBalance:     big.NewInt(0),
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	read := func(method string, apply func([]any)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := c.callView(ctx, c.strategy, c.strategyABI, method)
			if err != nil {
				c.log.Debug().Str("method", method).Err(err).Msg("strategy display read failed, using default")
				return
			}
			mu.Lock()
			apply(out)
			mu.Unlock()
		}()
	}

	read("name", func(out []any) { details.Name = out[0].(string) })
	read("symbol", func(out []any) { details.Symbol = out[0].(string) })
	read("totalShares", func(out []any) { details.TotalShares = out[0].(*big.Int) })
	read("maxPerDeposit", func(out []any) { details.MaxPerDeposit = out[0].(*big.Int) })
	read("maxTotalDeposits", func(out []any) { details.MaxTotalDeposits = out[0].(*big.Int) })
	read("_tokenBalance", func(out []any) { details.TokenBalance = out[0].(*big.Int) })
	wg.Wait()

	return details, nil
}

func (c *Client) UnderlyingToShares(ctx context.Context, amount *big.Int) (*big.Int, error) {
	out, err := c.callView(ctx, c.strategy, c.strategyABI, "underlyingToSharesView", amount)
	if err != nil {
		return nil, err
	}
	return out[0].(*big.Int), nil
}

func (c *Client) GetWithdrawalStatus(ctx context.Context, root common.Hash) (bool, error) {
	out, err := c.callView(ctx, c.delegationManager, c.delegationManagerABI, "getWithdrawalStatus", [32]byte(root))
	if err != nil {
		return false, err
	}
	return out[0].(bool), nil
}
