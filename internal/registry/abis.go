package registry

// ABI fragments used by the ledger client. Error definitions are included so
// revert data can be decoded back into readable reasons.
const (
	ERC20MinimalABI = `[
		{"name":"balanceOf","type":"function","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
		{"name":"allowance","type":"function","stateMutability":"view","inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
		{"name":"approve","type":"function","stateMutability":"nonpayable","inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]}
	]`

	StrategyManagerABI = `[
		{"name":"getDeposits","type":"function","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"strategies","type":"address[]"},{"name":"shares","type":"uint256[]"}]},
		{"name":"stakerStrategyShares","type":"function","stateMutability":"view","inputs":[{"name":"staker","type":"address"},{"name":"strategy","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
		{"name":"depositIntoStrategy","type":"function","stateMutability":"nonpayable","inputs":[{"name":"strategy","type":"address"},{"name":"token","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"shares","type":"uint256"}]},
		{"name":"StrategyNotWhitelisted","type":"error","inputs":[{"name":"strategy","type":"address"}]},
		{"name":"InvalidAmount","type":"error","inputs":[]},
		{"name":"InsufficientBalance","type":"error","inputs":[]},
		{"name":"StrategyNotAcceptingDeposits","type":"error","inputs":[{"name":"strategy","type":"address"}]},
		{"name":"InvalidStrategy","type":"error","inputs":[{"name":"strategy","type":"address"}]},
		{"name":"MaxPerDepositExceeded","type":"error","inputs":[{"name":"amount","type":"uint256"},{"name":"maxPerDeposit","type":"uint256"}]},
		{"name":"MaxTotalDepositsExceeded","type":"error","inputs":[{"name":"totalDeposits","type":"uint256"},{"name":"maxTotalDeposits","type":"uint256"}]}
	]`

	DelegationManagerABI = `[
		{"name":"isDelegated","type":"function","stateMutability":"view","inputs":[{"name":"staker","type":"address"}],"outputs":[{"name":"","type":"bool"}]},
		{"name":"delegatedTo","type":"function","stateMutability":"view","inputs":[{"name":"staker","type":"address"}],"outputs":[{"name":"","type":"address"}]},
		{"name":"isOperator","type":"function","stateMutability":"view","inputs":[{"name":"operator","type":"address"}],"outputs":[{"name":"","type":"bool"}]},
		{"name":"queueWithdrawals","type":"function","stateMutability":"nonpayable","inputs":[{"name":"queuedWithdrawalParams","type":"tuple[]","components":[{"name":"strategies","type":"address[]"},{"name":"strategyIndexes","type":"uint256[]"},{"name":"shares","type":"uint256[]"},{"name":"withdrawer","type":"address"}]}],"outputs":[{"name":"","type":"bytes32[]"}]},
		{"name":"getWithdrawalStatus","type":"function","stateMutability":"view","inputs":[{"name":"withdrawalRoot","type":"bytes32"}],"outputs":[{"name":"","type":"bool"}]},
		{"name":"completeQueuedWithdrawal","type":"function","stateMutability":"nonpayable","inputs":[{"name":"recipient","type":"address"},{"name":"strategyIndexes","type":"uint256[]"},{"name":"strategies","type":"address[]"},{"name":"shares","type":"uint256[]"}],"outputs":[]},
		{"name":"WithdrawalAlreadyQueued","type":"error","inputs":[{"name":"withdrawalRoot","type":"bytes32"}]},
		{"name":"InsufficientShares","type":"error","inputs":[{"name":"requested","type":"uint256"},{"name":"available","type":"uint256"}]},
		{"name":"InvalidStrategyIndices","type":"error","inputs":[]},
		{"name":"InvalidWithdrawalAmount","type":"error","inputs":[]},
		{"name":"PendingWithdrawalExists","type":"error","inputs":[]}
	]`

	StrategyABI = `[
		{"name":"name","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
		{"name":"symbol","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
		{"name":"totalShares","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
		{"name":"sharesToUnderlyingView","type":"function","stateMutability":"view","inputs":[{"name":"shares","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]},
		{"name":"underlyingToSharesView","type":"function","stateMutability":"view","inputs":[{"name":"underlying","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]},
		{"name":"maxPerDeposit","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
		{"name":"maxTotalDeposits","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
		{"name":"_tokenBalance","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]}
	]`
)
