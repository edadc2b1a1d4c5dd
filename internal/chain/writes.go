package chain

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	agenterr "github.com/restakehq/restake-agent/internal/errors"
)

func (c *Client) Approve(ctx context.Context, amount *big.Int) (TxResult, error) {
	data, err := c.erc20ABI.Pack("approve", c.strategyManager, amount)
	if err != nil {
		return TxResult{}, agenterr.Wrap(agenterr.CodeInternal, "pack approve", err)
	}
	result, _, err := c.submit(ctx, c.token, data, "approve")
	return result, err
}

func (c *Client) DepositIntoStrategy(ctx context.Context, amount *big.Int) (TxResult, error) {
	data, err := c.strategyManagerABI.Pack("depositIntoStrategy", c.strategy, c.token, amount)
	if err != nil {
		return TxResult{}, agenterr.Wrap(agenterr.CodeInternal, "pack depositIntoStrategy", err)
	}
	result, _, err := c.submit(ctx, c.strategyManager, data, "depositIntoStrategy")
	return result, err
}

type queuedWithdrawalParams struct {
	Strategies      []common.Address
	StrategyIndexes []*big.Int
	Shares          []*big.Int
	Withdrawer      common.Address
}

// QueueWithdrawals submits the queue call and returns the withdrawal roots
// recovered from the simulated return data. The simulation runs against the
// same pending state the transaction lands on, so the roots it returns are
// the ones the contract computes.
func (c *Client) QueueWithdrawals(ctx context.Context, req WithdrawalRequest) (TxResult, []common.Hash, error) {
	params := []queuedWithdrawalParams{{
		Strategies:      req.Strategies,
		StrategyIndexes: req.StrategyIndexes,
		Shares:          req.Shares,
		Withdrawer:      req.Withdrawer,
	}}
	data, err := c.delegationManagerABI.Pack("queueWithdrawals", params)
	if err != nil {
		return TxResult{}, nil, agenterr.Wrap(agenterr.CodeInternal, "pack queueWithdrawals", err)
	}
	result, simulated, err := c.submit(ctx, c.delegationManager, data, "queueWithdrawals")
	if err != nil {
		return TxResult{}, nil, err
	}

	roots, err := c.unpackWithdrawalRoots(simulated)
	if err != nil {
		c.log.Warn().Err(err).Msg("could not recover withdrawal roots from simulation")
		return result, nil, nil
	}
	return result, roots, nil
}

func (c *Client) unpackWithdrawalRoots(ret []byte) ([]common.Hash, error) {
	out, err := c.delegationManagerABI.Unpack("queueWithdrawals", ret)
	if err != nil {
		return nil, err
	}
	raw, ok := out[0].([][32]byte)
	if !ok {
		return nil, errors.New("unexpected queueWithdrawals return shape")
	}
	roots := make([]common.Hash, 0, len(raw))
	for _, r := range raw {
		roots = append(roots, common.Hash(r))
	}
	return roots, nil
}

func (c *Client) CompleteQueuedWithdrawal(ctx context.Context, recipient common.Address, indexes []*big.Int, strategies []common.Address, shares []*big.Int) (TxResult, error) {
	data, err := c.delegationManagerABI.Pack("completeQueuedWithdrawal", recipient, indexes, strategies, shares)
	if err != nil {
		return TxResult{}, agenterr.Wrap(agenterr.CodeInternal, "pack completeQueuedWithdrawal", err)
	}
	result, _, err := c.submit(ctx, c.delegationManager, data, "completeQueuedWithdrawal")
	return result, err
}

// submit runs one mutating call through the full pipeline: simulate, estimate
// gas, resolve EIP-1559 fees, sign, broadcast, poll the receipt. The simulated
// return data is handed back so callers can recover contract return values.
// In dry-run mode the pipeline stops after simulation and the result carries a
// zero hash.
func (c *Client) submit(ctx context.Context, to common.Address, data []byte, label string) (TxResult, []byte, error) {
	from := c.txSigner.Address()
	msg := ethereum.CallMsg{From: from, To: &to, Data: data}

	chainID, err := c.eth.ChainID(ctx)
	if err != nil {
		return TxResult{}, nil, agenterr.Wrap(agenterr.CodeUnavailable, "read chain id", err)
	}

	c.log.Info().Str("call", label).Str("to", to.Hex()).Msg("simulating")
	simulated, err := c.eth.CallContract(ctx, msg, nil)
	if err != nil {
		if reason := c.revertReason(err); reason != "" {
			c.log.Warn().Str("call", label).Str("reason", reason).Msg("simulation reverted")
			return TxResult{}, nil, agenterr.Wrap(agenterr.CodeSimulation, "simulation reverted: "+reason, err)
		}
		return TxResult{}, nil, agenterr.Wrap(agenterr.CodeSimulation, "simulate "+label, err)
	}

	if c.opts.DryRun {
		c.log.Info().Str("call", label).Msg("dry run: simulation passed, not broadcasting")
		return TxResult{}, simulated, nil
	}

	gasLimit, err := c.eth.EstimateGas(ctx, msg)
	if err != nil {
		return TxResult{}, nil, agenterr.Wrap(agenterr.CodeSimulation, "estimate gas for "+label, err)
	}
	gasLimit = uint64(float64(gasLimit) * c.opts.GasMultiplier)

	tipCap, err := c.eth.SuggestGasTipCap(ctx)
	if err != nil {
		tipCap = big.NewInt(2_000_000_000) // 2 gwei fallback
	}
	header, err := c.eth.HeaderByNumber(ctx, nil)
	if err != nil {
		return TxResult{}, nil, agenterr.Wrap(agenterr.CodeUnavailable, "fetch latest header", err)
	}
	baseFee := header.BaseFee
	if baseFee == nil {
		baseFee = big.NewInt(1_000_000_000)
	}
	feeCap := new(big.Int).Mul(baseFee, big.NewInt(2))
	feeCap.Add(feeCap, tipCap)

	nonce, err := c.eth.PendingNonceAt(ctx, from)
	if err != nil {
		return TxResult{}, nil, agenterr.Wrap(agenterr.CodeUnavailable, "fetch nonce", err)
	}

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     nonce,
		GasTipCap: tipCap,
		GasFeeCap: feeCap,
		Gas:       gasLimit,
		To:        &to,
		Data:      data,
	})
	signed, err := c.txSigner.SignTx(chainID, tx)
	if err != nil {
		return TxResult{}, nil, agenterr.Wrap(agenterr.CodeSignerRejected, "sign transaction", err)
	}
	if err := c.eth.SendTransaction(ctx, signed); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "insufficient funds") {
			return TxResult{}, nil, agenterr.Wrap(agenterr.CodeGasFunds, "insufficient funds for gas", err)
		}
		return TxResult{}, nil, agenterr.Wrap(agenterr.CodeUnavailable, "broadcast transaction", err)
	}
	c.log.Info().Str("call", label).Str("tx", signed.Hash().Hex()).Msg("submitted")

	waitCtx, cancel := context.WithTimeout(ctx, c.opts.ConfirmTimeout)
	defer cancel()
	ticker := time.NewTicker(c.opts.PollInterval)
	defer ticker.Stop()
	for {
		receipt, err := c.eth.TransactionReceipt(waitCtx, signed.Hash())
		if err == nil && receipt != nil {
			if receipt.Status == types.ReceiptStatusSuccessful {
				c.log.Info().Str("call", label).Uint64("block", receipt.BlockNumber.Uint64()).Msg("confirmed")
				return TxResult{Hash: signed.Hash(), Block: receipt.BlockNumber.Uint64()}, simulated, nil
			}
			return TxResult{}, nil, agenterr.New(agenterr.CodeReverted, "transaction reverted on-chain")
		}
		if err != nil && !errors.Is(err, ethereum.NotFound) {
			c.log.Debug().Str("call", label).Err(err).Msg("receipt poll failed, retrying")
		}
		select {
		case <-waitCtx.Done():
			return TxResult{}, nil, agenterr.Wrap(agenterr.CodeUnavailable, "timed out waiting for receipt", waitCtx.Err())
		case <-ticker.C:
		}
	}
}
