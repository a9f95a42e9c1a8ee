package deepmind

import (
	"fmt"
	"io"
	"os"
)

// Printer is the line sink shared by every tracer scope. Implementations
// must preserve submission order, the emitted protocol's correctness depends
// on line order being exactly the order of state transitions. The core never
// calls Print concurrently; serializing writes across host threads is the
// sink's responsibility.
type Printer interface {
	Print(input string)
}

// IoPrinter writes each line to the underlying writer, prefixed with the
// "DMLOG " tag the downstream console reader filters on.
type IoPrinter struct {
	writer io.Writer
}

func NewIoPrinter(writer io.Writer) *IoPrinter {
	return &IoPrinter{writer: writer}
}

func (p *IoPrinter) Print(input string) {
	flushLine([]byte("DMLOG "+input+"\n"), p.writer)
}

// DiscardPrinter drops every line, used when instrumentation is off.
type DiscardPrinter struct{}

func (DiscardPrinter) Print(input string) {}

// flushLine sends the line to the writer, retrying short writes.
//
// If the line is still not fully written after 10 attempts, an error marker
// is printed to the writer itself: a truncated line would desynchronize the
// downstream consumer, the marker at least makes the corruption visible.
func flushLine(in []byte, writer io.Writer) {
	var written int
	var err error
	loops := 10
	for i := 0; i < loops; i++ {
		written, err = writer.Write(in)

		if len(in) == written {
			return
		}

		in = in[written:]
		if i == loops-1 {
			break
		}
	}

	fmt.Fprintf(writer, "\nDEEPMIND FAILED WRITING %dx: %s\n", loops, err)
	fmt.Fprintf(os.Stderr, "[deepmind] failed writing line after %d attempts: %s\n", loops, err)
}
