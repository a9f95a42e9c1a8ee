package deepmind

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// CallType is the protocol token identifying the kind of nested invocation.
type CallType string

const (
	CallTypeCall     CallType = "CALL"
	CallTypeCallcode CallType = "CALLCODE"
	CallTypeCreate   CallType = "CREATE"
	CallTypeDelegate CallType = "DELEGATE"
	CallTypeStatic   CallType = "STATIC"
)

// TransactionTracer tracks the call nesting and the failure protocol of a
// single transaction. Call frames are identified solely by their
// monotonically assigned index, the parent/child relationship is implicit in
// the push/pop order of the stack. Index 0 never identifies a call: it tags
// records produced while no call is open, the upfront gas purchase for
// example.
//
// The gas event stack is independent from the call stack: it correlates gas
// charged before entering a child call with the gas observed after returning
// from it, and the two pop at different times.
//
// A tracer is created per transaction by the BlockContext and discarded once
// the transaction's closing event is recorded. Both stacks must be empty at
// that point, see Finish.
type TransactionTracer struct {
	printer Printer
	hash    common.Hash

	callIndex       uint64
	callStack       []uint64
	lastPoppedIndex uint64

	gasEventStack []uint64

	pendingFailure *pendingFailure

	logCount        uint64
	logIndexInBlock uint64

	hasher    crypto.KeccakState
	hasherBuf common.Hash
}

// pendingFailure holds the gas remaining at the moment a call step failed,
// waiting to be consumed by the call's closing event. At most one exists per
// transaction at any time.
type pendingFailure struct {
	gasLeft uint64
}

// ActiveCallIndex is the index records are tagged with: the top of the call
// stack, or 0 when no call is open.
func (t *TransactionTracer) ActiveCallIndex() uint64 {
	if len(t.callStack) == 0 {
		return 0
	}

	return t.callStack[len(t.callStack)-1]
}

func (t *TransactionTracer) StartCall(callType CallType, from common.Address, to common.Address, value *uint256.Int, gasLimit uint64, input []byte) {
	t.callIndex++
	t.callStack = append(t.callStack, t.callIndex)

	debugLog("call start index=%d type=%s gas=%d", t.callIndex, callType, gasLimit)

	t.printer.Print(strings.Join([]string{
		"EVM_RUN_CALL",
		string(callType),
		Uint64(t.callIndex),
	}, " "))

	t.printer.Print(strings.Join([]string{
		"EVM_PARAM",
		string(callType),
		Uint64(t.callIndex),
		Addr(from),
		Addr(to),
		Uint256(value),
		Uint64(gasLimit),
		Hex(input),
	}, " "))
}

// RevertedCall records that the active call unwound through its own revert
// instruction. The call stays on the stack, the subsequent EndCall performs
// the pop.
func (t *TransactionTracer) RevertedCall(gasLeft uint64) {
	activeIndex := t.ActiveCallIndex()
	if activeIndex == 0 {
		panic(t.invalidState("revert recorded while no call is active"))
	}

	t.printer.Print(strings.Join([]string{
		"EVM_CALL_FAILED",
		Uint64(activeIndex),
		Uint64(gasLeft),
		"Reverted",
	}, " "))

	t.printer.Print("EVM_REVERTED " + Uint64(activeIndex))
}

// FailedCall records that the active call failed (exception, out of gas) and
// parks the gas remaining at that point until EndFailedCall consumes it. Two
// unconsumed failures cannot coexist.
func (t *TransactionTracer) FailedCall(gasLeftAtFailure uint64, reason string) {
	if t.pendingFailure != nil {
		panic(t.invalidState("a failure is already pending, it must be consumed before a new one is asserted"))
	}

	t.printer.Print(strings.Join([]string{
		"EVM_CALL_FAILED",
		Uint64(t.ActiveCallIndex()),
		Uint64(gasLeftAtFailure),
		reason,
	}, " "))

	t.pendingFailure = &pendingFailure{gasLeft: gasLeftAtFailure}
}

// EndCall pops the active call and closes it with the gas left and the
// return data, "." on the wire when there is none.
func (t *TransactionTracer) EndCall(gasLeft uint64, returnData []byte) {
	if len(t.callStack) == 0 {
		panic(t.invalidState("end of call with an empty call stack, a call open was missed or a close was duplicated"))
	}

	popped := t.callStack[len(t.callStack)-1]
	t.callStack = t.callStack[:len(t.callStack)-1]
	t.lastPoppedIndex = popped

	debugLog("call end index=%d gasLeft=%d", popped, gasLeft)

	t.printer.Print(strings.Join([]string{
		"EVM_END_CALL",
		Uint64(popped),
		Uint64(gasLeft),
		Hex(returnData),
	}, " "))
}

// EndFailedCall consumes the failure parked by FailedCall, records the gas
// consumption that drives the call's remaining gas to zero and closes the
// call. The tag identifies the call site in diagnostics only.
func (t *TransactionTracer) EndFailedCall(tag string) {
	if t.pendingFailure == nil {
		panic(t.invalidState(fmt.Sprintf("%s closed a failed call but no failure is pending", tag)))
	}

	gasLeft := t.pendingFailure.gasLeft
	t.pendingFailure = nil

	t.RecordGasConsume(gasLeft, gasLeft, FailedExecutionGasChangeReason)
	t.EndCall(0, nil)
}

// RecordBeforeCallGasEvent records the gas charged on the active call right
// before a child call is entered. The child does not exist yet, so its
// prospective index (the call counter plus one) is pushed on the gas event
// stack for the matching after_call event to pop.
func (t *TransactionTracer) RecordBeforeCallGasEvent(amount uint64) {
	activeIndex := t.ActiveCallIndex()
	if activeIndex == 0 {
		panic(t.invalidState("before_call gas event recorded while no call is active"))
	}

	childIndex := t.callIndex + 1
	t.gasEventStack = append(t.gasEventStack, childIndex)

	t.printer.Print(strings.Join([]string{
		"GAS_EVENT",
		Uint64(activeIndex),
		Uint64(childIndex),
		"before_call",
		Uint64(amount),
	}, " "))
}

// RecordAfterCallGasEvent records the gas observed on the active call after
// a child call returned, linked to the child through the gas event stack.
func (t *TransactionTracer) RecordAfterCallGasEvent(amount uint64) {
	if len(t.gasEventStack) == 0 {
		panic(t.invalidState("after_call gas event with an empty gas event stack"))
	}

	linkedIndex := t.gasEventStack[len(t.gasEventStack)-1]
	t.gasEventStack = t.gasEventStack[:len(t.gasEventStack)-1]

	t.printer.Print(strings.Join([]string{
		"GAS_EVENT",
		Uint64(t.ActiveCallIndex()),
		Uint64(linkedIndex),
		"after_call",
		Uint64(amount),
	}, " "))
}

func (t *TransactionTracer) RecordBalanceChange(address common.Address, oldValue, newValue *uint256.Int, reason BalanceChangeReason) {
	if reason == IgnoredBalanceChangeReason {
		return
	}

	traceLog("balance changed address=%s reason=%s", address, reason.String())

	t.printer.Print(strings.Join([]string{
		"BALANCE_CHANGE",
		Uint64(t.ActiveCallIndex()),
		Addr(address),
		Uint256(oldValue),
		Uint256(newValue),
		reason.String(),
	}, " "))
}

func (t *TransactionTracer) RecordNonceChange(address common.Address, oldValue, newValue uint64) {
	t.printer.Print(strings.Join([]string{
		"NONCE_CHANGE",
		Uint64(t.ActiveCallIndex()),
		Addr(address),
		Uint64(oldValue),
		Uint64(newValue),
	}, " "))
}

func (t *TransactionTracer) RecordStorageChange(address common.Address, key, oldValue, newValue common.Hash) {
	t.printer.Print(strings.Join([]string{
		"STORAGE_CHANGE",
		Uint64(t.ActiveCallIndex()),
		Addr(address),
		Hash(key),
		Hash(oldValue),
		Hash(newValue),
	}, " "))
}

func (t *TransactionTracer) RecordCodeChange(address common.Address, oldCodeHash common.Hash, oldCode []byte, newCodeHash common.Hash, newCode []byte) {
	t.printer.Print(strings.Join([]string{
		"CODE_CHANGE",
		Uint64(t.ActiveCallIndex()),
		Addr(address),
		Hash(oldCodeHash),
		Hex(oldCode),
		Hash(newCodeHash),
		Hex(newCode),
	}, " "))
}

func (t *TransactionTracer) RecordNewAccount(address common.Address) {
	t.printer.Print(strings.Join([]string{
		"CREATED_ACCOUNT",
		Uint64(t.ActiveCallIndex()),
		Addr(address),
	}, " "))
}

func (t *TransactionTracer) RecordSuicide(address common.Address, alreadySuicided bool, balanceBeforeSuicide *uint256.Int) {
	t.printer.Print(strings.Join([]string{
		"SUICIDE_CHANGE",
		Uint64(t.ActiveCallIndex()),
		Addr(address),
		Bool(alreadySuicided),
		Uint256(balanceBeforeSuicide),
	}, " "))
}

// RecordCallWithoutCode records that the active call targeted an account
// holding no code, so nothing executed.
func (t *TransactionTracer) RecordCallWithoutCode() {
	t.printer.Print("ACCOUNT_WITHOUT_CODE " + Uint64(t.ActiveCallIndex()))
}

func (t *TransactionTracer) RecordKeccak(hashOfData common.Hash, data []byte) {
	t.printer.Print(strings.Join([]string{
		"EVM_KECCAK",
		Uint64(t.ActiveCallIndex()),
		Hash(hashOfData),
		Hex(data),
	}, " "))
}

// RecordKeccakFromScope is the interpreter-facing variant of RecordKeccak:
// it extracts the preimage designated by the top two stack words from the
// memory view and hashes it with a tracer-owned keccak state.
func (t *TransactionTracer) RecordKeccakFromScope(stack []uint256.Int, memory Memory) {
	offset, size := stack[len(stack)-1], stack[len(stack)-2]
	preimage := memory.GetPtrUint256(&offset, &size)

	if t.hasher == nil {
		t.hasher = crypto.NewKeccakState()
	}

	t.hasher.Reset()
	t.hasher.Write(preimage)
	t.hasher.Read(t.hasherBuf[:])

	t.RecordKeccak(t.hasherBuf, preimage)
}

// RecordGasConsume records gas leaving the active scope. A zero cost or the
// Ignored sentinel produces no record.
func (t *TransactionTracer) RecordGasConsume(gasOld, gasCost uint64, reason GasChangeReason) {
	if gasCost == 0 || reason == IgnoredGasChangeReason {
		return
	}

	t.recordGasChange(gasOld, gasOld-gasCost, reason)
}

// RecordGasRefund records gas returning to the active scope after execution.
// A zero refund produces no record.
func (t *TransactionTracer) RecordGasRefund(gasOld, gasRefund uint64) {
	if gasRefund == 0 {
		return
	}

	t.recordGasChange(gasOld, gasOld+gasRefund, RefundAfterExecutionGasChangeReason)
}

func (t *TransactionTracer) recordGasChange(oldValue, newValue uint64, reason GasChangeReason) {
	traceLog("gas changed before=%d after=%d reason=%s", oldValue, newValue, reason.String())

	t.printer.Print(strings.Join([]string{
		"GAS_CHANGE",
		Uint64(t.ActiveCallIndex()),
		Uint64(oldValue),
		Uint64(newValue),
		reason.String(),
	}, " "))
}

// RecordLog assigns the log its block-relative index and advances both the
// transaction counter and the block-relative one.
func (t *TransactionTracer) RecordLog(log *types.Log) {
	topics := "."
	if len(log.Topics) > 0 {
		parts := make([]string, len(log.Topics))
		for i, topic := range log.Topics {
			parts[i] = Hash(topic)
		}
		topics = strings.Join(parts, ",")
	}

	t.printer.Print(strings.Join([]string{
		"ADD_LOG",
		Uint64(t.ActiveCallIndex()),
		Uint64(t.logIndexInBlock),
		Addr(log.Address),
		topics,
		Hex(log.Data),
	}, " "))

	t.logCount++
	t.logIndexInBlock++
}

// LogCount is the number of logs this transaction recorded, consumed by
// BlockContext.RecordLogCount to keep block-wide log indexing continuous.
func (t *TransactionTracer) LogCount() uint64 {
	return t.logCount
}

// Finish asserts the tracer reached a disposable state: both stacks drained
// and no failure pending. A non-empty stack here means the host missed a
// call close, which is a defect, not a recoverable condition.
func (t *TransactionTracer) Finish() {
	if len(t.callStack) != 0 {
		panic(t.invalidState("transaction tracer disposed with calls still open"))
	}

	if len(t.gasEventStack) != 0 {
		panic(t.invalidState("transaction tracer disposed with gas events still linked"))
	}

	if t.pendingFailure != nil {
		panic(t.invalidState("transaction tracer disposed with an unconsumed failure"))
	}
}

// invalidState builds the error for a host contract violation. Those are
// unrecoverable: emitting a line out of the legal sequence would
// desynchronize the downstream consumer, which is worse than crashing.
func (t *TransactionTracer) invalidState(msg string) error {
	return fmt.Errorf("%s (trx=%s, activeCall=%d, depth=%d, lastPopped=%d, pendingFailure=%t)",
		msg, t.hash, t.ActiveCallIndex(), len(t.callStack), t.lastPoppedIndex, t.pendingFailure != nil)
}

// Memory is a view over the interpreter's memory at the time of a keccak
// opcode, used to extract the hash preimage.
type Memory []byte

func (m Memory) GetPtrUint256(offset, size *uint256.Int) []byte {
	return m.GetPtr(int64(offset.Uint64()), int64(size.Uint64()))
}

func (m Memory) GetPtr(offset, size int64) []byte {
	if size == 0 {
		return nil
	}

	if len(m) > int(offset) {
		return m[offset : offset+size]
	}

	return nil
}
