package fetch

import (
	"mime"
	"net/url"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/simplifiedchinese"
)

// dispositionName extracts the file name from a Content-Disposition header.
// The extended filename*= value wins, then the strictly parsed filename
// parameter, then a lenient scan for filename=. Plain values may be MIME
// encoded-words, percent-encoded, or raw GBK.
func dispositionName(header string) string {
	if v, ok := rawParam(header, "filename*"); ok {
		if name := decodeExtended(v); name != "" {
			return name
		}
	}
	if _, params, err := mime.ParseMediaType(header); err == nil && params["filename"] != "" {
		return decodeName(params["filename"])
	}
	if v, ok := rawParam(header, "filename"); ok {
		return decodeName(unquote(v))
	}
	return ""
}

// rawParam returns the unparsed value of key= in a header, up to the next
// semicolon. Keys match case-insensitively.
func rawParam(header, key string) (string, bool) {
	idx := strings.Index(strings.ToLower(header), key+"=")
	if idx < 0 {
		return "", false
	}
	v := header[idx+len(key)+1:]
	if end := strings.IndexByte(v, ';'); end >= 0 {
		v = v[:end]
	}
	return strings.TrimSpace(v), true
}

// decodeExtended decodes charset'lang'value. Only UTF-8 percent-encoding
// is understood.
func decodeExtended(v string) string {
	parts := strings.SplitN(v, "'", 3)
	if len(parts) != 3 {
		return ""
	}
	name, err := url.PathUnescape(parts[2])
	if err != nil {
		return ""
	}
	return name
}

func unquote(v string) string {
	if len(v) >= 2 && (v[0] == '"' || v[0] == '\'') && v[len(v)-1] == v[0] {
		return v[1 : len(v)-1]
	}
	return v
}

func decodeName(v string) string {
	if strings.HasPrefix(v, "=?") {
		// the decoder only knows the hyphenated charset name
		word := strings.Replace(v, "UTF8", "UTF-8", 1)
		if name, err := new(mime.WordDecoder).Decode(word); err == nil {
			return name
		}
	}
	name := v
	if unescaped, err := url.QueryUnescape(v); err == nil {
		name = unescaped
	}
	if !utf8.ValidString(name) {
		if gbk, ok := fromGBK(name); ok {
			return gbk
		}
	}
	return name
}

func fromGBK(s string) (string, bool) {
	b, err := simplifiedchinese.GBK.NewDecoder().Bytes([]byte(s))
	if err != nil || !utf8.Valid(b) {
		return "", false
	}
	return string(b), true
}

// urlName returns the last segment of the decoded URL path.
func urlName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Path[strings.LastIndex(u.Path, "/")+1:]
}
