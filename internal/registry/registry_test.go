package registry

import (
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

func TestABIConstantsParse(t *testing.T) {
	abis := []string{
		ERC20MinimalABI,
		StrategyManagerABI,
		DelegationManagerABI,
		StrategyABI,
	}
	for _, raw := range abis {
		if _, err := abi.JSON(strings.NewReader(raw)); err != nil {
			t.Fatalf("failed to parse abi json: %v", err)
		}
	}
}

func TestDelegationManagerErrorsPresent(t *testing.T) {
	parsed, err := abi.JSON(strings.NewReader(DelegationManagerABI))
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"WithdrawalAlreadyQueued", "InsufficientShares", "PendingWithdrawalExists"} {
		if _, ok := parsed.Errors[name]; !ok {
			t.Fatalf("missing error definition %s", name)
		}
	}
}

func TestContractAddressesParse(t *testing.T) {
	for _, raw := range []string{
		StrategyManagerAddress,
		DelegationManagerAddress,
		StETHStrategyAddress,
		StETHTokenAddress,
	} {
		if !common.IsHexAddress(raw) {
			t.Fatalf("invalid address constant %q", raw)
		}
	}
}

func TestResolveRPCURL(t *testing.T) {
	if url, err := ResolveRPCURL("", HoleskyChainID); err != nil || url == "" {
		t.Fatalf("expected holesky default rpc, got url=%q err=%v", url, err)
	}
	if url, err := ResolveRPCURL("https://example.invalid/rpc", 1); err != nil || url != "https://example.invalid/rpc" {
		t.Fatalf("override should win, got url=%q err=%v", url, err)
	}
	if _, err := ResolveRPCURL("", 1); err == nil {
		t.Fatal("expected error for unsupported chain without override")
	}
}
