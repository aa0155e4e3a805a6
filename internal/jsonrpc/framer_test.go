package jsonrpc

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func feedAll(f *Framer, chunks ...string) []string {
	var lines []string

	for _, chunk := range chunks {
		lines = append(lines, f.Feed([]byte(chunk))...)
	}

	return lines
}

func TestFramer_SingleChunkMultipleLines(t *testing.T) {
	var f Framer

	lines := feedAll(&f, "{\"id\":1}\n{\"id\":2}\n")

	require.Equal(t, []string{`{"id":1}`, `{"id":2}`}, lines)
	require.Zero(t, f.Buffered())
}

func TestFramer_LineSplitAcrossChunks(t *testing.T) {
	var f Framer

	require.Empty(t, f.Feed([]byte(`{"jsonrpc":"2.0",`)))
	require.Equal(t, 17, f.Buffered())
	require.Empty(t, f.Feed([]byte(`"id":7`)))

	lines := f.Feed([]byte("}\n"))
	require.Equal(t, []string{`{"jsonrpc":"2.0","id":7}`}, lines)
	require.Zero(t, f.Buffered())
}

func TestFramer_RetainsTrailingPartial(t *testing.T) {
	var f Framer

	lines := f.Feed([]byte("one\ntw"))
	require.Equal(t, []string{"one"}, lines)
	require.Equal(t, 2, f.Buffered())

	lines = f.Feed([]byte("o\nthree\n"))
	require.Equal(t, []string{"two", "three"}, lines)
}

func TestFramer_EmptyLinesAreEmitted(t *testing.T) {
	var f Framer

	lines := f.Feed([]byte("a\n\n\nb\n"))

	require.Equal(t, []string{"a", "", "", "b"}, lines)
}

func TestFramer_StripsCarriageReturn(t *testing.T) {
	var f Framer

	lines := f.Feed([]byte("a\r\nb\r\n"))

	require.Equal(t, []string{"a", "b"}, lines)
}

func TestFramer_EmptyChunk(t *testing.T) {
	var f Framer

	require.Empty(t, f.Feed(nil))
	require.Empty(t, f.Feed([]byte{}))
	require.Zero(t, f.Buffered())
}

func TestFramer_Flush(t *testing.T) {
	var f Framer

	require.Equal(t, []string{"done"}, f.Feed([]byte("done\nno newline at end")))
	require.Equal(t, "no newline at end", f.Flush())
	require.Zero(t, f.Buffered())
	require.Empty(t, f.Flush())
}

func TestFramer_Reset(t *testing.T) {
	var f Framer

	f.Feed([]byte("partial"))
	f.Reset()

	require.Zero(t, f.Buffered())
	require.Equal(t, []string{"next"}, f.Feed([]byte("next\n")))
}

// TestFramer_AnySplitYieldsSameLines feeds the same stream under many random
// chunkings and checks that the decoded lines never change.
func TestFramer_AnySplitYieldsSameLines(t *testing.T) {
	want := []string{
		`{"jsonrpc":"2.0","id":1,"result":{"message":"hi"}}`,
		`{"jsonrpc":"2.0","method":"notifications/message","params":{"level":"info"}}`,
		`{"jsonrpc":"2.0","id":2,"result":{"text":"line 1\nline 2"}}`,
		`not json at all`,
		`{"jsonrpc":"2.0","id":3,"error":{"code":-32601,"message":"Unknown method: x"}}`,
		strings.Repeat("x", 5000),
	}
	stream := strings.Join(want, "\n") + "\n"

	rng := rand.New(rand.NewPCG(1, 2))

	for range 200 {
		var (
			f      Framer
			got    []string
			offset int
		)

		for offset < len(stream) {
			n := 1 + rng.IntN(64)
			if offset+n > len(stream) {
				n = len(stream) - offset
			}

			got = append(got, f.Feed([]byte(stream[offset:offset+n]))...)
			offset += n
		}

		require.Equal(t, want, got)
		require.Zero(t, f.Buffered())
	}
}

// TestFramer_EverySplitPoint splits a two-line stream at every byte offset.
func TestFramer_EverySplitPoint(t *testing.T) {
	stream := "{\"id\":1}\n{\"id\":2}\n"

	for i := 0; i <= len(stream); i++ {
		var f Framer

		got := feedAll(&f, stream[:i], stream[i:])

		require.Equal(t, []string{`{"id":1}`, `{"id":2}`}, got, "split at %d", i)
	}
}
