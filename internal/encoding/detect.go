// Package encoding turns bank exports of unknown charset into UTF-8.
package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	xenc "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// sniffSize is how much of the input is inspected before deciding.
const sniffSize = 4096

type bom struct {
	prefix []byte
	// decoder is nil when the mark is only stripped.
	decoder xenc.Encoding
}

var boms = []bom{
	{prefix: []byte{0xEF, 0xBB, 0xBF}},
	{prefix: []byte{0xFF, 0xFE}, decoder: unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)},
	{prefix: []byte{0xFE, 0xFF}, decoder: unicode.UTF16(unicode.BigEndian, unicode.UseBOM)},
}

// charsets maps chardet names to decoders. Names missing here fall back to
// Windows-1252, which is what Portuguese banks export.
var charsets = map[string]xenc.Encoding{
	"ISO-8859-1":   charmap.Windows1252,
	"windows-1252": charmap.Windows1252,
	"ISO-8859-9":   charmap.ISO8859_9,
	"ISO-8859-15":  charmap.ISO8859_15,
	"windows-1250": charmap.Windows1250,
	"ISO-8859-2":   charmap.ISO8859_2,
}

// Charset names the encoding NewUTF8Reader would decode buf with.
func Charset(buf []byte) string {
	for _, b := range boms {
		if bytes.HasPrefix(buf, b.prefix) {
			if b.decoder == nil {
				return "UTF-8"
			}

			return fmt.Sprint(b.decoder)
		}
	}

	if utf8.Valid(buf) {
		return "UTF-8"
	}

	result, err := chardet.NewTextDetector().DetectBest(buf)
	if err == nil {
		if result.Charset == "UTF-8" {
			return "UTF-8"
		}

		if _, ok := charsets[result.Charset]; ok {
			return result.Charset
		}
	}

	return "windows-1252"
}

// NewUTF8Reader returns a reader that yields r decoded to UTF-8.
//
// A byte order mark wins. Otherwise valid UTF-8 passes through, chardet
// picks among the known single-byte charsets, and anything else is read as
// Windows-1252.
func NewUTF8Reader(r io.Reader) (io.Reader, error) {
	br := bufio.NewReaderSize(r, sniffSize)

	buf, err := br.Peek(sniffSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("peek: %w", err)
	}

	for _, b := range boms {
		if !bytes.HasPrefix(buf, b.prefix) {
			continue
		}

		if b.decoder == nil {
			_, _ = br.Discard(len(b.prefix))
			return br, nil
		}

		return transform.NewReader(br, b.decoder.NewDecoder()), nil
	}

	name := Charset(buf)
	if name == "UTF-8" {
		return br, nil
	}

	dec, ok := charsets[name]
	if !ok {
		dec = charmap.Windows1252
	}

	return transform.NewReader(br, dec.NewDecoder()), nil
}
