package llmanalysis

// SSEDecoder turns an arbitrary byte stream into discrete logical lines,
// independent of chunk boundaries and line-ending style. "\n", "\r" and
// "\r\n" all terminate a line; a "\r\n" pair split across two Append
// calls still counts as one terminator. Feeding the same bytes one at a
// time or in a single burst yields the same line sequence.
//
// The decoder only splits lines; interpreting the SSE "data:" prefix and
// the "[DONE]" sentinel is the caller's job.
type SSEDecoder struct {
	buf    []byte
	skipLF bool
}

// Append consumes a chunk of bytes and returns the complete lines it
// finished, terminators stripped.
func (d *SSEDecoder) Append(p []byte) []string {
	var lines []string
	for _, b := range p {
		if d.skipLF {
			d.skipLF = false
			if b == '\n' {
				continue
			}
		}
		switch b {
		case '\n':
			lines = append(lines, string(d.buf))
			d.buf = d.buf[:0]
		case '\r':
			lines = append(lines, string(d.buf))
			d.buf = d.buf[:0]
			d.skipLF = true
		default:
			d.buf = append(d.buf, b)
		}
	}
	return lines
}

// Finalize flushes any non-empty remainder as a final line at stream end.
// Returns false when the buffer ended on a terminator.
func (d *SSEDecoder) Finalize() (string, bool) {
	if len(d.buf) == 0 {
		return "", false
	}
	line := string(d.buf)
	d.buf = d.buf[:0]
	return line, true
}
