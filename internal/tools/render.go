package tools

import (
	"fmt"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// redactedSourceFields are dropped from every search hit before rendering.
var redactedSourceFields = []string{
	"embedding",
	"metadata._node_content",
}

// indentJSON renders raw with two-space indentation, keeping key order.
// Width 0 keeps every array expanded one element per line. The result is
// pure ASCII.
func indentJSON(raw []byte) string {
	out := pretty.PrettyOptions(raw, &pretty.Options{
		Width:  0,
		Prefix: "",
		Indent: "  ",
	})
	if n := len(out); n > 0 && out[n-1] == '\n' {
		out = out[:n-1]
	}
	return escapeNonASCII(out)
}

// escapeNonASCII rewrites every rune from U+007F up as a lowercase
// \uXXXX escape, using a surrogate pair above the BMP. Valid JSON only
// carries such runes inside strings, so the document stays equivalent.
func escapeNonASCII(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))
	for len(b) > 0 {
		if b[0] < 0x7f {
			sb.WriteByte(b[0])
			b = b[1:]
			continue
		}
		r, size := utf8.DecodeRune(b)
		b = b[size:]
		if r > 0xffff {
			hi, lo := utf16.EncodeRune(r)
			fmt.Fprintf(&sb, "\\u%04x\\u%04x", hi, lo)
			continue
		}
		fmt.Fprintf(&sb, "\\u%04x", r)
	}
	return sb.String()
}

// SanitizeHits removes vector embeddings and node content blobs from each
// hit's _source. Hits without an object _source are left alone.
func SanitizeHits(raw []byte) ([]byte, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("search response is not valid JSON")
	}

	hits := gjson.GetBytes(raw, "hits.hits")
	if !hits.IsArray() {
		return raw, nil
	}

	out := raw
	var err error
	for i, hit := range hits.Array() {
		source := hit.Get("_source")
		if !source.IsObject() {
			continue
		}
		for _, field := range redactedSourceFields {
			if !source.Get(field).Exists() {
				continue
			}
			out, err = sjson.DeleteBytes(out, fmt.Sprintf("hits.hits.%d._source.%s", i, field))
			if err != nil {
				return nil, fmt.Errorf("redact %s: %w", field, err)
			}
		}
	}
	return out, nil
}
