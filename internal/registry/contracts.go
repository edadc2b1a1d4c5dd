package registry

import (
	"fmt"
	"strings"
)

// Canonical EigenLayer contracts on Holesky. Addresses are lowercase as the
// original deployment artifacts publish them; common.HexToAddress does not
// care about checksum casing.
const (
	StrategyManagerAddress   = "0xdfb5f6ce42aaa7830e94ecfccad411bef4d4d5b6"
	DelegationManagerAddress = "0xa44151489861fe9e3055d95adc98fbd462b948e7"
	StETHStrategyAddress     = "0x7d704507b76571a51d9cae8addabbfd0ba0e63d3"
	StETHTokenAddress        = "0x3f1c547b21f65e10480de3ad8e19faac46c95034"

	// Remote index serving aggregated restaking data.
	ExplorerAPIBase = "https://api-holesky.eigenexplorer.com"

	HoleskyChainID = 17000
)

var defaultRPCByChainID = map[int64]string{
	HoleskyChainID: "https://ethereum-holesky-rpc.publicnode.com",
}

func DefaultRPCURL(chainID int64) (string, bool) {
	value, ok := defaultRPCByChainID[chainID]
	return value, ok
}

func ResolveRPCURL(override string, chainID int64) (string, error) {
	if strings.TrimSpace(override) != "" {
		return strings.TrimSpace(override), nil
	}
	if value, ok := DefaultRPCURL(chainID); ok {
		return value, nil
	}
	return "", fmt.Errorf("no default rpc configured for chain id %d; provide --rpc-url", chainID)
}
