package providers

import (
	"context"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"

	"github.com/restakehq/restake-agent/internal/chain"
	"github.com/restakehq/restake-agent/internal/httpx"
	"github.com/restakehq/restake-agent/internal/message"
	"github.com/restakehq/restake-agent/internal/providers/explorer"
	"github.com/restakehq/restake-agent/internal/registry"
)

// fakeLedger stubs the reads the staker fallback uses and counts them.
type fakeLedger struct {
	chain.Ledger

	signer          common.Address
	strategies      []common.Address
	shares          []*big.Int
	delegated       bool
	operator        common.Address
	getDepositCalls int
}

func (f *fakeLedger) SignerAddress() common.Address { return f.signer }

func (f *fakeLedger) GetDeposits(ctx context.Context, addr common.Address) ([]common.Address, []*big.Int, error) {
	f.getDepositCalls++
	return f.strategies, f.shares, nil
}

func (f *fakeLedger) IsDelegated(ctx context.Context, addr common.Address) (bool, error) {
	return f.delegated, nil
}

func (f *fakeLedger) DelegatedTo(ctx context.Context, addr common.Address) (common.Address, error) {
	return f.operator, nil
}

func newExplorerClient(t *testing.T, handler http.HandlerFunc) *explorer.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return explorer.New(httpx.New(2*time.Second), srv.URL, zerolog.Nop()).WithRetry(3, time.Millisecond)
}

func TestStakerStatusFromIndex(t *testing.T) {
	client := newExplorerClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"address": "0x1111111111111111111111111111111111111111",
			"operatorAddress": "0x2222222222222222222222222222222222222222",
			"shares": [{"strategyAddress": "0x7d704507b76571a51d9cae8addabbfd0ba0e63d3", "shares": "1500000000000000000"}],
			"createdAt": "2024-01-15T00:00:00Z",
			"updatedAt": "2024-02-20T00:00:00Z"
		}`))
	})
	ledger := &fakeLedger{}
	p := NewStaker(client, ledger, zerolog.Nop())

	reply := p.Respond(context.Background(), message.New("u", "r", "a", "staker status 0x1111111111111111111111111111111111111111"))
	if reply == nil {
		t.Fatal("expected a reply")
	}
	if !strings.Contains(reply.Text, "Total Staked: 1.5000 ETH") {
		t.Fatalf("reply = %q", reply.Text)
	}
	if ledger.getDepositCalls != 0 {
		t.Fatalf("index hit should not touch the ledger, got %d calls", ledger.getDepositCalls)
	}
}

func TestStakerFallsBackOnChainOnNotFound(t *testing.T) {
	client := newExplorerClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	ledger := &fakeLedger{
		strategies: []common.Address{common.HexToAddress(registry.StETHStrategyAddress)},
		shares:     []*big.Int{big.NewInt(2500000000000000000)},
		delegated:  true,
		operator:   common.HexToAddress("0x3333333333333333333333333333333333333333"),
	}
	p := NewStaker(client, ledger, zerolog.Nop())

	reply := p.Respond(context.Background(), message.New("u", "r", "a", "staker status 0x1111111111111111111111111111111111111111"))
	if reply == nil {
		t.Fatal("expected a reply")
	}
	if ledger.getDepositCalls != 1 {
		t.Fatalf("expected exactly one on-chain deposits read, got %d", ledger.getDepositCalls)
	}
	if !strings.Contains(reply.Text, "Total Staked: 2.5000 ETH") {
		t.Fatalf("reply = %q", reply.Text)
	}
	if !strings.Contains(reply.Text, "Delegation Status: Delegated") {
		t.Fatalf("reply = %q", reply.Text)
	}
	if !strings.Contains(reply.Text, "Note: Using on-chain data") {
		t.Fatalf("reply = %q", reply.Text)
	}
}

func TestStakerNotFoundAnywhere(t *testing.T) {
	client := newExplorerClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	ledger := &fakeLedger{} // no deposits at all
	p := NewStaker(client, ledger, zerolog.Nop())

	reply := p.Respond(context.Background(), message.New("u", "r", "a", "staker status 0x1111111111111111111111111111111111111111"))
	if reply == nil {
		t.Fatal("expected a reply")
	}
	if !strings.Contains(reply.Text, "No staking activity found") {
		t.Fatalf("reply = %q", reply.Text)
	}
}

func TestStakerServerErrorMentionsFundsSafe(t *testing.T) {
	client := newExplorerClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	p := NewStaker(client, &fakeLedger{}, zerolog.Nop())

	reply := p.Respond(context.Background(), message.New("u", "r", "a", "staker status 0x1111111111111111111111111111111111111111"))
	if reply == nil {
		t.Fatal("expected a reply")
	}
	if !strings.Contains(reply.Text, "safe on-chain") {
		t.Fatalf("reply = %q", reply.Text)
	}
}

func TestWalletStatusUnconfigured(t *testing.T) {
	client := newExplorerClient(t, func(w http.ResponseWriter, r *http.Request) {})
	p := NewStaker(client, &fakeLedger{}, zerolog.Nop())

	reply := p.Respond(context.Background(), message.New("u", "r", "a", "what is my wallet status?"))
	if reply == nil {
		t.Fatal("expected a reply")
	}
	if !strings.Contains(reply.Text, "Wallet not configured") {
		t.Fatalf("reply = %q", reply.Text)
	}
}

func TestStakerIgnoresUnrelatedText(t *testing.T) {
	client := newExplorerClient(t, func(w http.ResponseWriter, r *http.Request) {})
	p := NewStaker(client, &fakeLedger{}, zerolog.Nop())

	if reply := p.Respond(context.Background(), message.New("u", "r", "a", "deposit 1 eth")); reply != nil {
		t.Fatalf("expected nil reply, got %q", reply.Text)
	}
}
