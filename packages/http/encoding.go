package http

import (
	"mime"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

// DefaultEncoding is used when neither the response nor the client names a usable encoding.
const DefaultEncoding = "utf-8"

// EncodingDetector picks an encoding name for a body whose Content-Type carries no charset.
type EncodingDetector func(content []byte) string

// textDecoding holds the client-level fallback used when a response has no charset.
type textDecoding struct {
	defaultName string
	detector    EncodingDetector
}

func lookupEncoding(name string) (encoding.Encoding, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false
	}
	if enc, err := htmlindex.Get(name); err == nil && enc != nil {
		return enc, true
	}
	if enc, err := ianaindex.IANA.Encoding(name); err == nil && enc != nil {
		return enc, true
	}
	return nil, false
}

func charsetFromContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return strings.Trim(params["charset"], `"' `)
}

// resolve returns the encoding name for a response body.
//
// Order: a known charset from Content-Type, then the detector, then the
// configured default, then utf-8.
func (d textDecoding) resolve(contentType string, content []byte) string {
	if cs := charsetFromContentType(contentType); cs != "" {
		if _, ok := lookupEncoding(cs); ok {
			return cs
		}
	}

	var name string
	if d.detector != nil {
		name = d.detector(content)
	} else {
		name = d.defaultName
	}
	if _, ok := lookupEncoding(name); !ok {
		return DefaultEncoding
	}
	return name
}

// decodeText decodes content, replacing invalid sequences with U+FFFD.
func decodeText(content []byte, name string) string {
	enc, ok := lookupEncoding(name)
	if !ok {
		enc = unicode.UTF8
	}
	out, err := enc.NewDecoder().Bytes(content)
	if err != nil {
		return strings.ToValidUTF8(string(content), "�")
	}
	return string(out)
}
