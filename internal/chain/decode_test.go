package chain

import (
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/restakehq/restake-agent/internal/registry"
)

type fakeDataError struct {
	msg  string
	data any
}

func (e *fakeDataError) Error() string { return e.msg }

func (e *fakeDataError) ErrorData() interface{} { return e.data }

func newTestClient(t *testing.T) *Client {
	t.Helper()
	c := &Client{}
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
			t.Fatalf("parse abi: %v", err)
		}
		*entry.dest = parsed
	}
	return c
}

func TestRevertReasonStandardError(t *testing.T) {
	c := newTestClient(t)

	// Error("insufficient allowance") per the Error(string) convention.
	stringTy, _ := abi.NewType("string", "", nil)
	packed, err := abi.Arguments{{Type: stringTy}}.Pack("insufficient allowance")
	if err != nil {
		t.Fatal(err)
	}
	data := append(hexutil.MustDecode("0x08c379a0"), packed...)

	reason := c.revertReason(&fakeDataError{msg: "execution reverted", data: hexutil.Encode(data)})
	if reason != "insufficient allowance" {
		t.Fatalf("reason = %q", reason)
	}
}

func TestRevertReasonCustomError(t *testing.T) {
	c := newTestClient(t)

	def := c.delegationManagerABI.Errors["InsufficientShares"]
	uintTy, _ := abi.NewType("uint256", "", nil)
	packed, err := abi.Arguments{{Type: uintTy}, {Type: uintTy}}.Pack(big.NewInt(10), big.NewInt(3))
	if err != nil {
		t.Fatal(err)
	}
	data := append(def.ID.Bytes()[:4], packed...)

	reason := c.revertReason(&fakeDataError{msg: "execution reverted", data: hexutil.Encode(data)})
	if !strings.Contains(reason, "InsufficientShares") {
		t.Fatalf("reason = %q, want InsufficientShares", reason)
	}
}

func TestRevertReasonUndecodable(t *testing.T) {
	c := newTestClient(t)
	if got := c.revertReason(&fakeDataError{msg: "boom", data: "0x1234"}); got != "" {
		t.Fatalf("reason = %q, want empty", got)
	}
	if got := c.revertReason(&fakeDataError{msg: "boom", data: nil}); got != "" {
		t.Fatalf("reason = %q, want empty", got)
	}
}

func TestUnpackWithdrawalRoots(t *testing.T) {
	c := newTestClient(t)

	var root [32]byte
	copy(root[:], hexutil.MustDecode("0x"+strings.Repeat("ab", 32)))
	method := c.delegationManagerABI.Methods["queueWithdrawals"]
	ret, err := method.Outputs.Pack([][32]byte{root})
	if err != nil {
		t.Fatal(err)
	}

	roots, err := c.unpackWithdrawalRoots(ret)
	if err != nil {
		t.Fatalf("unpackWithdrawalRoots: %v", err)
	}
	if len(roots) != 1 || roots[0] != common.Hash(root) {
		t.Fatalf("roots = %v", roots)
	}
}
