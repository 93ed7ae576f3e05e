package tabular

// readers.go cleans CSV bytes before encoding/csv sees them. Spreadsheet
// exports from Windows often start with a UTF-8 BOM, and legacy encodings
// leak invalid UTF-8 into otherwise valid files.

import (
	"bufio"
	"bytes"
	"io"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// sanitizingReader strips a leading BOM and replaces each invalid UTF-8
// byte with '?'. Memory use is bounded by the bufio buffer.
type sanitizingReader struct {
	br         *bufio.Reader
	bomChecked bool
	err        error // deferred until buffered runes are returned
}

// newSanitizingReader wraps r. The BOM is checked on first Read.
func newSanitizingReader(r io.Reader) *sanitizingReader {
	return &sanitizingReader{br: bufio.NewReader(r)}
}

func (s *sanitizingReader) Read(p []byte) (int, error) {
	if !s.bomChecked {
		s.bomChecked = true
		if head, err := s.br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
			_, _ = s.br.Discard(len(utf8BOM))
		}
	}

	if s.err != nil {
		return 0, s.err
	}

	n := 0
	for n < len(p) {
		r, size, err := s.br.ReadRune()
		if err != nil {
			if n > 0 {
				s.err = err
				return n, nil
			}
			return 0, err
		}

		// ASCII fast path.
		if size == 1 && r < utf8.RuneSelf {
			p[n] = byte(r)
			n++
			continue
		}
		if r == utf8.RuneError && size == 1 {
			p[n] = '?'
			n++
			continue
		}

		if utf8.RuneLen(r) > len(p)-n {
			_ = s.br.UnreadRune()
			if n == 0 {
				return 0, io.ErrShortBuffer
			}
			return n, nil
		}
		n += utf8.EncodeRune(p[n:], r)
	}
	return n, nil
}
