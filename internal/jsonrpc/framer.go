package jsonrpc

import "bytes"

// Framer is an incremental line decoder.
//
// It is not safe for concurrent use; the supervisor feeds it from a single
// reader goroutine.
type Framer struct {
	buf []byte
}

// Feed appends chunk to the retained buffer and returns every complete line,
// stripped of its newline (and of a trailing carriage return). The final
// segment, which may be empty or a partial line, is kept for the next call.
func (f *Framer) Feed(chunk []byte) []string {
	f.buf = append(f.buf, chunk...)

	var lines []string

	for {
		idx := bytes.IndexByte(f.buf, '\n')
		if idx < 0 {
			break
		}

		line := f.buf[:idx]
		line = bytes.TrimSuffix(line, []byte{'\r'})
		lines = append(lines, string(line))

		f.buf = f.buf[idx+1:]
	}

	// Release the consumed prefix so a long-lived framer does not pin old chunks.
	if len(f.buf) == 0 {
		f.buf = nil
	} else if cap(f.buf) > 2*len(f.buf)+4096 {
		f.buf = append([]byte(nil), f.buf...)
	}

	return lines
}

// Buffered returns the number of bytes held as an incomplete line.
func (f *Framer) Buffered() int {
	return len(f.buf)
}

// Flush returns the buffered partial line, if any, and clears it.
func (f *Framer) Flush() string {
	rest := string(bytes.TrimSuffix(f.buf, []byte{'\r'}))
	f.buf = nil

	return rest
}

// Reset discards any buffered partial line.
func (f *Framer) Reset() {
	f.buf = nil
}
