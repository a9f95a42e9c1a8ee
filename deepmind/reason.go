package deepmind

import "fmt"

// BalanceChangeReason tags a BALANCE_CHANGE record with the state transition
// that caused it. The set is closed: the downstream consumer maps each token
// back to a fixed enumeration value, so tokens are append-only and must
// never change.
type BalanceChangeReason string

const (
	// IgnoredBalanceChangeReason is a sentinel requesting suppression of the
	// record, it must never reach the sink.
	IgnoredBalanceChangeReason BalanceChangeReason = "ignored"

	// CallBalanceOverrideReason is reserved but unused, it must never reach
	// the sink either.
	CallBalanceOverrideReason BalanceChangeReason = "call_balance_override"

	BurnBalanceChangeReason                 BalanceChangeReason = "burn"
	DaoAdjustBalanceBalanceChangeReason     BalanceChangeReason = "dao_adjust_balance"
	DaoRefundContractBalanceChangeReason    BalanceChangeReason = "dao_refund_contract"
	GasBuyBalanceChangeReason               BalanceChangeReason = "gas_buy"
	GasRefundBalanceChangeReason            BalanceChangeReason = "gas_refund"
	GenesisBalanceBalanceChangeReason       BalanceChangeReason = "genesis_balance"
	RewardMineBlockBalanceChangeReason      BalanceChangeReason = "reward_mine_block"
	RewardMineUncleBalanceChangeReason      BalanceChangeReason = "reward_mine_uncle"
	RewardTransactionFeeBalanceChangeReason BalanceChangeReason = "reward_transaction_fee"
	SuicideRefundBalanceChangeReason        BalanceChangeReason = "suicide_refund"
	SuicideWithdrawBalanceChangeReason      BalanceChangeReason = "suicide_withdraw"
	TouchAccountBalanceChangeReason         BalanceChangeReason = "touch_account"
	TransferBalanceChangeReason             BalanceChangeReason = "transfer"
	WithdrawalBalanceChangeReason           BalanceChangeReason = "withdrawal"
)

// String returns the protocol token for the reason. Sentinel members have no
// token: a sentinel reaching a formatter means a call site that intended to
// emit was handed a reason that only exists to suppress or reserve, which is
// a bug in the host integration.
func (r BalanceChangeReason) String() string {
	if r == IgnoredBalanceChangeReason || r == CallBalanceOverrideReason {
		panic(fmt.Errorf("balance change reason %q must never be serialized", string(r)))
	}

	return string(r)
}

// GasChangeReason tags a GAS_CHANGE record with the operation that consumed
// or refunded the gas. Same closed-set rules as BalanceChangeReason.
type GasChangeReason string

const (
	// IgnoredGasChangeReason is a sentinel requesting suppression of the
	// record, it must never reach the sink.
	IgnoredGasChangeReason GasChangeReason = "ignored"

	// UnknownGasChangeReason is reserved for changes the host could not
	// attribute, it must never reach the sink either.
	UnknownGasChangeReason GasChangeReason = "unknown"

	CallGasChangeReason                 GasChangeReason = "call"
	CallCodeGasChangeReason             GasChangeReason = "call_code"
	CallDataCopyGasChangeReason         GasChangeReason = "call_data_copy"
	CodeCopyGasChangeReason             GasChangeReason = "code_copy"
	CodeStorageGasChangeReason          GasChangeReason = "code_storage"
	ContractCreationGasChangeReason     GasChangeReason = "contract_creation"
	ContractCreation2GasChangeReason    GasChangeReason = "contract_creation2"
	DelegateCallGasChangeReason         GasChangeReason = "delegate_call"
	EventLogGasChangeReason             GasChangeReason = "event_log"
	ExtCodeCopyGasChangeReason          GasChangeReason = "ext_code_copy"
	FailedExecutionGasChangeReason      GasChangeReason = "failed_execution"
	IntrinsicGasGasChangeReason         GasChangeReason = "intrinsic_gas"
	PrecompiledContractGasChangeReason  GasChangeReason = "precompiled_contract"
	RefundAfterExecutionGasChangeReason GasChangeReason = "refund_after_execution"
	ReturnGasChangeReason               GasChangeReason = "return"
	ReturnDataCopyGasChangeReason       GasChangeReason = "return_data_copy"
	RevertGasChangeReason               GasChangeReason = "revert"
	SelfDestructGasChangeReason         GasChangeReason = "self_destruct"
	StaticCallGasChangeReason           GasChangeReason = "static_call"
	StateColdAccessGasChangeReason      GasChangeReason = "state_cold_access"
)

// String returns the protocol token for the reason, panicking on sentinels,
// see BalanceChangeReason.String.
func (r GasChangeReason) String() string {
	if r == IgnoredGasChangeReason || r == UnknownGasChangeReason {
		panic(fmt.Errorf("gas change reason %q must never be serialized", string(r)))
	}

	return string(r)
}
