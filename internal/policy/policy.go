package policy

import (
	"strings"

	agenterr "github.com/restakehq/restake-agent/internal/errors"
)

// CheckActionAllowed enforces the --enable-actions allowlist. An empty
// allowlist permits everything.
func CheckActionAllowed(allowlist []string, action string) error {
	if len(allowlist) == 0 {
		return nil
	}
	norm := normalize(action)
	for _, allowed := range allowlist {
		if normalize(allowed) == norm {
			return nil
		}
	}
	return agenterr.New(agenterr.CodeBlocked, "action blocked by --enable-actions policy")
}

func normalize(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
