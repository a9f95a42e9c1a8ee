package deepmind

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/params"
)

// Instrumentation is the tracing level of a Context. It is fixed at
// construction and immutable thereafter, there is no process-global flag.
type Instrumentation int

const (
	// NoInstrumentation emits nothing.
	NoInstrumentation Instrumentation = iota

	// BlockProgressInstrumentation emits only block completion records, a
	// coarse liveness signal without call-level detail.
	BlockProgressInstrumentation

	// FullInstrumentation emits every call and state change record.
	FullInstrumentation
)

// InstrumentationFromString parses a host configuration value.
func InstrumentationFromString(in string) (Instrumentation, error) {
	switch strings.ToLower(in) {
	case "full":
		return FullInstrumentation, nil
	case "block-progress":
		return BlockProgressInstrumentation, nil
	case "", "none":
		return NoInstrumentation, nil
	}

	return NoInstrumentation, fmt.Errorf("invalid instrumentation level %q (accepted: full, block-progress, none)", in)
}

// Protocol handshake version. The consumer selects its decoder from the
// major/minor pair, bump the major on any byte-level change to the emitted
// records.
const (
	ProtocolMajorVersion = 1
	ProtocolMinorVersion = 0
)

const (
	platformName = "geth"
	platformFork = "vanilla"
)

// Context is the process-wide root of the tracer. It owns the line sink and
// the active instrumentation level, emits the one-time protocol handshake
// and constructs the per-block scopes.
type Context struct {
	instrumentation Instrumentation
	printer         Printer
	initSent        *atomic.Bool
}

// NewContext constructs a Context writing to standard output.
func NewContext(instrumentation Instrumentation) *Context {
	return NewContextWithPrinter(instrumentation, NewIoPrinter(os.Stdout))
}

// NewContextWithPrinter constructs a Context against an explicit sink, for
// hosts that route the stream to a file or another writer.
func NewContextWithPrinter(instrumentation Instrumentation, printer Printer) *Context {
	return &Context{
		instrumentation: instrumentation,
		printer:         printer,
		initSent:        new(atomic.Bool),
	}
}

// NewNoopContext constructs a Context that discards everything.
func NewNoopContext() *Context {
	return NewContextWithPrinter(NoInstrumentation, DiscardPrinter{})
}

// IsEnabled reports whether full tracing, including every call and state
// change, is active.
func (c *Context) IsEnabled() bool {
	return c.instrumentation == FullInstrumentation
}

// IsFinalizeBlockEnabled reports whether block completion records are
// active, true at both the full and block-progress levels.
func (c *Context) IsFinalizeBlockEnabled() bool {
	return c.instrumentation == FullInstrumentation || c.instrumentation == BlockProgressInstrumentation
}

// Init emits the protocol handshake the consumer uses to select a compatible
// decoder. It must be called exactly once, before any other record.
func (c *Context) Init(engine string) {
	if wasNeverSent := c.initSent.CompareAndSwap(false, true); !wasNeverSent {
		panic(fmt.Errorf("tracer init was performed more than once"))
	}

	c.printer.Print(strings.Join([]string{
		"INIT",
		Uint64(ProtocolMajorVersion),
		Uint64(ProtocolMinorVersion),
		platformName,
		platformFork,
		Uint64(params.VersionMajor),
		Uint64(params.VersionMinor),
		Uint64(params.VersionPatch),
		engine,
	}, " "))
}

// BlockContext constructs the orchestrator for one block, snapshotting the
// enablement flags so the block's behavior is fixed for its whole lifetime.
func (c *Context) BlockContext() *BlockContext {
	return &BlockContext{
		printer:              c.printer,
		enabled:              c.IsEnabled(),
		finalizeBlockEnabled: c.IsFinalizeBlockEnabled(),
	}
}

// BlockTracer constructs the reduced tracer for state changes that happen
// outside of any transaction, sharing this Context's sink.
func (c *Context) BlockTracer() *BlockTracer {
	return &BlockTracer{printer: c.printer}
}
