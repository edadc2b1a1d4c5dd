package intent

import (
	"regexp"
	"strings"
)

// Params carries the values extracted from a message by a matcher. Matchers
// never write back onto the message itself.
type Params struct {
	Amount         string
	Address        string
	WithdrawalRoot string
}

var (
	amountPattern  = regexp.MustCompile(`\d+\.?\d*`)
	addressPattern = regexp.MustCompile(`0x[a-fA-F0-9]{40}`)
	rootPattern    = regexp.MustCompile(`0x[a-fA-F0-9]{64}`)
)

// MatchDeposit reports whether the text asks for a deposit into the strategy.
// A numeric amount is required for a match.
func MatchDeposit(text string) (bool, Params) {
	lower := strings.ToLower(text)
	amount := amountPattern.FindString(lower)
	if amount == "" {
		return false, Params{}
	}
	if !containsAny(lower, "deposit", "stake", "restake") {
		return false, Params{}
	}
	return true, Params{Amount: amount}
}

// MatchQueueWithdrawal reports whether the text asks to start a withdrawal.
func MatchQueueWithdrawal(text string) (bool, Params) {
	lower := strings.ToLower(text)
	amount := amountPattern.FindString(lower)
	if amount == "" {
		return false, Params{}
	}
	if !containsAny(lower, "withdraw", "unstake") {
		return false, Params{}
	}
	return true, Params{Amount: amount}
}

// MatchCompleteWithdrawal reports whether the text asks to finish a queued
// withdrawal. The withdrawal root is optional; the handler recovers it from
// the journal when absent.
func MatchCompleteWithdrawal(text string) (bool, Params) {
	lower := strings.ToLower(text)
	if !containsAny(lower, "complete withdrawal", "claim withdrawal", "finish withdrawal") {
		return false, Params{}
	}
	return true, Params{WithdrawalRoot: rootPattern.FindString(text)}
}

// MatchTVL reports whether the text asks for protocol TVL.
func MatchTVL(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, "tvl") && strings.Contains(lower, "eigenlayer")
}

// MatchOperator reports whether the text asks about an operator. The address
// may be empty even on a match; the provider prompts for it.
func MatchOperator(text string) (bool, Params) {
	lower := strings.ToLower(text)
	if !strings.Contains(lower, "operator") || !strings.Contains(lower, "status") {
		return false, Params{}
	}
	return true, Params{Address: addressPattern.FindString(text)}
}

// MatchWalletStatus reports whether the text asks about the configured
// wallet's own staking position.
func MatchWalletStatus(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, "wallet") && strings.Contains(lower, "status")
}

// MatchStakerStatus reports whether the text asks about an arbitrary staker.
func MatchStakerStatus(text string) (bool, Params) {
	lower := strings.ToLower(text)
	if !strings.Contains(lower, "staker") || !strings.Contains(lower, "status") {
		return false, Params{}
	}
	return true, Params{Address: addressPattern.FindString(text)}
}

// MatchStakersList reports whether the text asks for the staker listing.
func MatchStakersList(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, "list stakers") || strings.Contains(lower, "show stakers")
}

func containsAny(text string, needles ...string) bool {
	for _, needle := range needles {
		if strings.Contains(text, needle) {
			return true
		}
	}
	return false
}
