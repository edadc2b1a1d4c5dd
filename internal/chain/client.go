package chain

import (
	"context"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog"

	"github.com/restakehq/restake-agent/internal/chain/signer"
	agenterr "github.com/restakehq/restake-agent/internal/errors"
	"github.com/restakehq/restake-agent/internal/registry"
)

// Options tunes the submission pipeline.
type Options struct {
	DryRun         bool
	PollInterval   time.Duration
	ConfirmTimeout time.Duration
	GasMultiplier  float64
}

func DefaultOptions() Options {
	return Options{
		PollInterval:   2 * time.Second,
		ConfirmTimeout: 2 * time.Minute,
		GasMultiplier:  1.2,
	}
}

// Client implements Ledger over a JSON-RPC endpoint.
type Client struct {
	eth      *ethclient.Client
	txSigner signer.Signer
	opts     Options
	log      zerolog.Logger

	strategyManager   common.Address
	delegationManager common.Address
	strategy          common.Address
	token             common.Address

	erc20ABI             abi.ABI
	strategyManagerABI   abi.ABI
	delegationManagerABI abi.ABI
	strategyABI          abi.ABI
}

func Dial(ctx context.Context, rpcURL string, txSigner signer.Signer, opts Options, log zerolog.Logger) (*Client, error) {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 2 * time.Second
	}
	if opts.ConfirmTimeout <= 0 {
		opts.ConfirmTimeout = 2 * time.Minute
	}
	if opts.GasMultiplier <= 1 {
		opts.GasMultiplier = 1.2
	}

	eth, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, agenterr.Wrap(agenterr.CodeUnavailable, "connect rpc", err)
	}

	c := &Client{
		eth:               eth,
		txSigner:          txSigner,
		opts:              opts,
		log:               log,
		strategyManager:   common.HexToAddress(registry.StrategyManagerAddress),
		delegationManager: common.HexToAddress(registry.DelegationManagerAddress),
		strategy:          common.HexToAddress(registry.StETHStrategyAddress),
		token:             common.HexToAddress(registry.StETHTokenAddress),
	}

	for _, entry := range []struct {
		raw  string
		dest *abi.ABI
	}{
		{registry.ERC20MinimalABI, &c.erc20ABI},
		{registry.StrategyManagerABI, &c.strategyManagerABI},
		{registry.DelegationManagerABI, &c.delegationManagerABI},
		{registry.StrategyABI, &c.strategyABI},
	} {
		parsed, err := abi.JSON(strings.NewReader(entry.raw))
		if err != nil {
			eth.Close()
			return nil, agenterr.Wrap(agenterr.CodeInternal, "parse contract abi", err)
		}
		*entry.dest = parsed
	}
	return c, nil
}

func (c *Client) SignerAddress() common.Address {
	if c.txSigner == nil {
		return common.Address{}
	}
	return c.txSigner.Address()
}

func (c *Client) Close() {
	if c.eth != nil {
		c.eth.Close()
	}
}
