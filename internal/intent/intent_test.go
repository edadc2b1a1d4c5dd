package intent

import (
	"strings"
	"testing"
)

func TestMatchDeposit(t *testing.T) {
	cases := []struct {
		text   string
		match  bool
		amount string
	}{
		{"Please deposit 0.1 ETH into EigenLayer", true, "0.1"},
		{"stake 2 eth for me", true, "2"},
		{"restake 0.05", true, "0.05"},
		{"deposit some eth", false, ""},
		{"what is 0.1 worth", false, ""},
	}
	for _, tc := range cases {
		matched, params := MatchDeposit(tc.text)
		if matched != tc.match {
			t.Fatalf("MatchDeposit(%q) = %v, want %v", tc.text, matched, tc.match)
		}
		if params.Amount != tc.amount {
			t.Fatalf("MatchDeposit(%q) amount = %q, want %q", tc.text, params.Amount, tc.amount)
		}
	}
}

func TestMatchQueueWithdrawal(t *testing.T) {
	matched, params := MatchQueueWithdrawal("I want to withdraw 0.1 ETH from EigenLayer")
	if !matched || params.Amount != "0.1" {
		t.Fatalf("withdraw match = %v amount %q", matched, params.Amount)
	}
	matched, _ = MatchQueueWithdrawal("unstake 1 eth")
	if !matched {
		t.Fatal("unstake should match")
	}
	if matched, _ := MatchQueueWithdrawal("withdraw everything"); matched {
		t.Fatal("withdrawal without an amount should not match")
	}
}

func TestMatchCompleteWithdrawal(t *testing.T) {
	root := "0x" + strings.Repeat("ab", 32)
	matched, params := MatchCompleteWithdrawal("complete withdrawal " + root)
	if !matched {
		t.Fatal("expected match")
	}
	if params.WithdrawalRoot != root {
		t.Fatalf("root = %q, want %q", params.WithdrawalRoot, root)
	}

	matched, params = MatchCompleteWithdrawal("claim withdrawal please")
	if !matched || params.WithdrawalRoot != "" {
		t.Fatalf("match without root = %v %q", matched, params.WithdrawalRoot)
	}

	if matched, _ := MatchCompleteWithdrawal("withdraw 0.1 eth"); matched {
		t.Fatal("plain withdraw should not match complete")
	}
}

func TestMatchProviders(t *testing.T) {
	if !MatchTVL("what is the eigenlayer TVL?") {
		t.Fatal("tvl should match")
	}
	if MatchTVL("what is the tvl of aave?") {
		t.Fatal("tvl without protocol name should not match")
	}

	addr := "0x" + strings.Repeat("1a", 20)
	matched, params := MatchOperator("operator status for " + addr)
	if !matched || params.Address != addr {
		t.Fatalf("operator match = %v address %q", matched, params.Address)
	}

	if !MatchWalletStatus("show my wallet status") {
		t.Fatal("wallet status should match")
	}
	matched, _ = MatchStakerStatus("staker status " + addr)
	if !matched {
		t.Fatal("staker status should match")
	}
	if !MatchStakersList("list stakers") || !MatchStakersList("show stakers") {
		t.Fatal("stakers list should match")
	}
}
