package deepmind

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"
)

// BlockContext orchestrates tracing for a single block. It owns the block's
// cumulative gas counter and the log index continuity across the block's
// transactions, and constructs the per-transaction tracers. A BlockContext
// is created at block start and discarded at block end.
type BlockContext struct {
	printer              Printer
	enabled              bool
	finalizeBlockEnabled bool

	cumulativeGasUsed uint64
	logIndexInBlock   uint64
}

func (b *BlockContext) StartBlock(number uint64) {
	if !b.enabled {
		return
	}

	b.printer.Print("BEGIN_BLOCK " + Uint64(number))
}

// TransactionTracer constructs the tracer for the next transaction of this
// block, handing it the block's current log index so that log indices are
// block-scoped rather than transaction-scoped. The hash is kept for
// diagnostics only.
func (b *BlockContext) TransactionTracer(hash common.Hash) *TransactionTracer {
	printer := b.printer
	if !b.enabled {
		printer = DiscardPrinter{}
	}

	return &TransactionTracer{
		printer:         printer,
		hash:            hash,
		logIndexInBlock: b.logIndexInBlock,
	}
}

func (b *BlockContext) StartTransaction(tx *types.Transaction, from common.Address) {
	if !b.enabled {
		return
	}

	debugLog("trx start hash=%s gas=%d", tx.Hash(), tx.Gas())

	to := "."
	if addr := tx.To(); addr != nil {
		to = Addr(*addr)
	}

	v, r, s := tx.RawSignatureValues()

	b.printer.Print(strings.Join([]string{
		"BEGIN_APPLY_TRX",
		Hash(tx.Hash()),
		to,
		BigInt(tx.Value()),
		BigInt(v),
		BigInt(r),
		BigInt(s),
		Uint64(tx.Gas()),
		BigInt(tx.GasPrice()),
		Uint64(tx.Nonce()),
		Hex(tx.Data()),
	}, " "))

	b.printer.Print("TRX_FROM " + Addr(from))
}

// RecordLogCount advances the block's log index by the number of logs the
// just-finished transaction emitted, see TransactionTracer.LogCount.
func (b *BlockContext) RecordLogCount(count uint64) {
	b.logIndexInBlock += count
}

// EndTransaction closes the transaction with its receipt. The record carries
// the transaction's own gas usage, computed as the receipt's cumulative gas
// minus the block's running total, which is then advanced.
func (b *BlockContext) EndTransaction(receipt *types.Receipt) {
	if !b.enabled {
		return
	}

	logItems := make([]logItem, len(receipt.Logs))
	for i, log := range receipt.Logs {
		topics := make([]hexutil.Bytes, len(log.Topics))
		for j, topic := range log.Topics {
			topics[j] = topic.Bytes()
		}

		logItems[i] = logItem{
			Address: log.Address,
			Topics:  topics,
			Data:    log.Data,
		}
	}

	marshalled, err := json.Marshal(logItems)
	if err != nil {
		panic(fmt.Errorf("unable to marshal %d transaction logs: %w", len(logItems), err))
	}

	b.printer.Print(strings.Join([]string{
		"END_APPLY_TRX",
		Uint64(receipt.CumulativeGasUsed - b.cumulativeGasUsed),
		Hex(receipt.PostState),
		Uint64(receipt.CumulativeGasUsed),
		Hex(receipt.Bloom[:]),
		string(marshalled),
	}, " "))

	b.cumulativeGasUsed = receipt.CumulativeGasUsed
}

// SkipTransaction records that the host skipped the current transaction
// instead of applying it.
func (b *BlockContext) SkipTransaction(reason string) {
	if !b.enabled {
		return
	}

	b.printer.Print("SKIPPED_TRX " + reason)
}

// FailApplyTransaction records that applying the current transaction failed
// at the host level, which aborts the whole block downstream.
func (b *BlockContext) FailApplyTransaction(message string) {
	if !b.enabled {
		return
	}

	b.printer.Print("FAILED_APPLY_TRX " + message)
}

// FinalizeBlock emits the lightweight block completion signal, available
// even when full call tracing is off.
func (b *BlockContext) FinalizeBlock(number uint64) {
	if !b.finalizeBlockEnabled {
		return
	}

	b.printer.Print("FINALIZE_BLOCK " + Uint64(number))
}

func (b *BlockContext) EndBlock(number uint64, size uint64, header *types.Header, uncles []*types.Header) {
	if !b.enabled {
		return
	}

	if uncles == nil {
		uncles = []*types.Header{}
	}

	marshalled, err := json.Marshal(endBlockData{
		Header: header,
		Uncles: uncles,
	})
	if err != nil {
		panic(fmt.Errorf("unable to marshal block %d header: %w", number, err))
	}

	b.printer.Print(strings.Join([]string{
		"END_BLOCK",
		Uint64(number),
		Uint64(size),
		string(marshalled),
	}, " "))
}

// Fields embedded as JSON follow the JSON sub-format's 0x-prefixed hex
// convention, not the ambient "." sentinel one.
type logItem struct {
	Address common.Address  `json:"address"`
	Topics  []hexutil.Bytes `json:"topics"`
	Data    hexutil.Bytes   `json:"data"`
}

type endBlockData struct {
	Header *types.Header   `json:"header"`
	Uncles []*types.Header `json:"uncles"`
}

// BlockTracer records state changes that occur outside of any transaction,
// block and uncle rewards mostly. Its records are always tagged with call
// index 0.
type BlockTracer struct {
	printer Printer
}

func (t *BlockTracer) RecordBalanceChange(address common.Address, oldValue, newValue *uint256.Int, reason BalanceChangeReason) {
	if reason == IgnoredBalanceChangeReason {
		return
	}

	t.printer.Print(strings.Join([]string{
		"BALANCE_CHANGE",
		"0",
		Addr(address),
		Uint256(oldValue),
		Uint256(newValue),
		reason.String(),
	}, " "))
}

// RecordCodeChange records a block-level code change, which some networks
// produce during block finalization.
func (t *BlockTracer) RecordCodeChange(address common.Address, oldCodeHash common.Hash, oldCode []byte, newCodeHash common.Hash, newCode []byte) {
	t.printer.Print(strings.Join([]string{
		"CODE_CHANGE",
		"0",
		Addr(address),
		Hash(oldCodeHash),
		Hex(oldCode),
		Hash(newCodeHash),
		Hex(newCode),
	}, " "))
}
