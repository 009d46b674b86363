// internal/app/system/mailer/encoding.go
package mailer

import (
	"encoding/base64"
	"mime"
	"strings"
)

// mimeEncodeHeader makes a header value safe for non-ASCII text
// (reminder subjects are Russian). ASCII-only values pass through.
func mimeEncodeHeader(s string) string {
	return mime.BEncoding.Encode("UTF-8", s)
}

// wrapBase64 encodes the body and folds it at 76 characters per RFC 2045.
func wrapBase64(body string) string {
	enc := base64.StdEncoding.EncodeToString([]byte(body))
	const width = 76
	var b strings.Builder
	for len(enc) > width {
		b.WriteString(enc[:width])
		b.WriteString("\r\n")
		enc = enc[width:]
	}
	b.WriteString(enc)
	return b.String()
}
