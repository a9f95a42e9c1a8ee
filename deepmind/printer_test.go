package deepmind

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIoPrinter_PrefixesAndTerminatesLines(t *testing.T) {
	buffer := &bytes.Buffer{}
	printer := NewIoPrinter(buffer)

	printer.Print("BEGIN_BLOCK 1")
	printer.Print("END_BLOCK 1 0 {}")

	require.Equal(t, "DMLOG BEGIN_BLOCK 1\nDMLOG END_BLOCK 1 0 {}\n", buffer.String())
}

type shortWriter struct {
	buffer bytes.Buffer
	chunk  int
}

func (w *shortWriter) Write(in []byte) (int, error) {
	if len(in) <= w.chunk {
		return w.buffer.Write(in)
	}

	n, _ := w.buffer.Write(in[:w.chunk])
	return n, errors.New("short write")
}

func TestFlushLine_RetriesShortWrites(t *testing.T) {
	writer := &shortWriter{chunk: 4}

	flushLine([]byte("DMLOG BEGIN_BLOCK 1\n"), writer)

	require.Equal(t, "DMLOG BEGIN_BLOCK 1\n", writer.buffer.String())
}
