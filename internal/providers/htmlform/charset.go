package htmlform

import (
	"bytes"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

// fallbackEncoding is what DetermineEncoding reports when nothing is declared
const fallbackEncoding = "windows-1252"

// detectEncoding picks the document encoding. A BOM, the Content-Type
// header or a <meta> declaration wins; otherwise valid UTF-8 is taken as
// is and anything else goes to statistical detection.
func detectEncoding(data []byte, contentType string) (encoding.Encoding, string) {
	enc, name, certain := charset.DetermineEncoding(data, contentType)
	if certain {
		return enc, name
	}
	if utf8.Valid(data) {
		return unicode.UTF8, "utf-8"
	}
	if name != fallbackEncoding {
		return enc, name
	}
	if detected := detectCharset(data); detected != "" {
		if e, n := charset.Lookup(detected); e != nil {
			return e, n
		}
	}
	return enc, name
}

// detectCharset returns chardet's best guess, lowercased, or ""
func detectCharset(data []byte) string {
	result, err := chardet.NewTextDetector().DetectBest(data)
	if err != nil || result == nil {
		return ""
	}
	return strings.ToLower(result.Charset)
}

// utf8Reader decodes data to UTF-8
func utf8Reader(data []byte, contentType string) (io.Reader, string) {
	enc, name := detectEncoding(data, contentType)
	return enc.NewDecoder().Reader(bytes.NewReader(data)), name
}
