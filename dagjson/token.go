package dagjson

import (
	"unicode/utf16"
	"unicode/utf8"

	"github.com/ipld/libipld/ipld"
)

// skipWS advances pos past any run of JSON insignificant whitespace
// (space, tab, newline, carriage return). Canonical DAG-JSON never
// contains any, but spec.md requires Decode to accept it regardless;
// only Encode is required to emit none.
func skipWS(data []byte, pos int) int {
	for pos < len(data) {
		switch data[pos] {
		case ' ', '\t', '\n', '\r':
			pos++
		default:
			return pos
		}
	}
	return pos
}

// expect skips any leading whitespace, then requires byte b at the
// resulting position.
func expect(data []byte, pos int, b byte, what string) (int, *ipld.DecodeError) {
	pos = skipWS(data, pos)
	if pos >= len(data) {
		return pos, ipld.NewDecodeErrorAt(ipld.UnexpectedEOF, pos, "expected "+what)
	}
	if data[pos] != b {
		return pos, ipld.NewDecodeErrorAt(ipld.NotCanonical, pos, "expected "+what)
	}
	return pos + 1, nil
}

func expectLiteral(data []byte, pos int, lit string) (int, *ipld.DecodeError) {
	if pos+len(lit) > len(data) || string(data[pos:pos+len(lit)]) != lit {
		return pos, ipld.NewDecodeErrorAt(ipld.UnsupportedType, pos, "invalid literal, expected "+lit)
	}
	return pos + len(lit), nil
}

// parseString reads a JSON string starting at the opening quote and
// returns its decoded content.
//
// Only the escapes Encode produces are accepted: \" \\ \b \f \n \r \t,
// and \u00XX (lowercase hex digits) for a control character that has no
// short escape. A raw control character (e.g. a literal tab byte, which
// must be written as \t) is rejected as NotCanonical, and so are \/,
// \uXXXX with any uppercase hex digit, and \uXXXX for any other
// character, since canonical DAG-JSON output never produces them. The
// decoded content must be valid UTF-8, or parseString fails with
// InvalidUTF8.
func parseString(data []byte, pos int) (string, int, *ipld.DecodeError) {
	pos, err := expect(data, pos, '"', `'"'`)
	if err != nil {
		return "", pos, err
	}
	start := pos
	var out []byte
	for {
		if pos >= len(data) {
			return "", pos, ipld.NewDecodeErrorAt(ipld.UnexpectedEOF, pos, "unterminated string")
		}
		c := data[pos]
		switch {
		case c == '"':
			s := out
			if s == nil {
				s = data[start:pos]
			}
			if !utf8.Valid(s) {
				return "", pos, ipld.NewDecodeErrorAt(ipld.InvalidUTF8, start, "string is not valid UTF-8")
			}
			return string(s), pos + 1, nil
		case c == '\\':
			if out == nil {
				out = append(out, data[start:pos]...)
			}
			if pos+1 >= len(data) {
				return "", pos, ipld.NewDecodeErrorAt(ipld.UnexpectedEOF, pos, "truncated escape")
			}
			esc := data[pos+1]
			switch esc {
			case '"', '\\':
				out = append(out, esc)
				pos += 2
			case 'b':
				out = append(out, '\b')
				pos += 2
			case 'f':
				out = append(out, '\f')
				pos += 2
			case 'n':
				out = append(out, '\n')
				pos += 2
			case 'r':
				out = append(out, '\r')
				pos += 2
			case 't':
				out = append(out, '\t')
				pos += 2
			case 'u':
				r, next, uerr := parseUnicodeEscape(data, pos+2)
				if uerr != nil {
					return "", pos, uerr
				}
				if r >= 0x20 || r == '\b' || r == '\f' || r == '\n' || r == '\r' || r == '\t' {
					return "", pos, ipld.NewDecodeErrorAt(ipld.NotCanonical, pos, "\\u escape for a character Encode writes another way")
				}
				var buf [utf8.UTFMax]byte
				n := utf8.EncodeRune(buf[:], r)
				out = append(out, buf[:n]...)
				pos = next
			default:
				return "", pos, ipld.NewDecodeErrorAt(ipld.NotCanonical, pos, "unsupported escape sequence")
			}
		case c < 0x20:
			return "", pos, ipld.NewDecodeErrorAt(ipld.NotCanonical, pos, "unescaped control character in string")
		default:
			if out != nil {
				out = append(out, c)
			}
			pos++
		}
	}
}

func parseUnicodeEscape(data []byte, pos int) (rune, int, *ipld.DecodeError) {
	hi, next, err := hex4(data, pos)
	if err != nil {
		return 0, pos, err
	}
	if utf16.IsSurrogate(rune(hi)) {
		if next+2 > len(data) || data[next] != '\\' || data[next+1] != 'u' {
			return 0, pos, ipld.NewDecodeErrorAt(ipld.NotCanonical, pos, "unpaired surrogate escape")
		}
		lo, next2, err := hex4(data, next+2)
		if err != nil {
			return 0, pos, err
		}
		r := utf16.DecodeRune(rune(hi), rune(lo))
		if r == utf8.RuneError {
			return 0, pos, ipld.NewDecodeErrorAt(ipld.NotCanonical, pos, "invalid surrogate pair")
		}
		return r, next2, nil
	}
	return rune(hi), next, nil
}

func hex4(data []byte, pos int) (uint16, int, *ipld.DecodeError) {
	if pos+4 > len(data) {
		return 0, pos, ipld.NewDecodeErrorAt(ipld.UnexpectedEOF, pos, "truncated \\u escape")
	}
	var v uint16
	for i := 0; i < 4; i++ {
		c := data[pos+i]
		var d uint16
		switch {
		case c >= '0' && c <= '9':
			d = uint16(c - '0')
		case c >= 'a' && c <= 'f':
			d = uint16(c-'a') + 10
		default:
			return 0, pos, ipld.NewDecodeErrorAt(ipld.NotCanonical, pos, "\\u escape must use lowercase hex digits")
		}
		v = v<<4 | d
	}
	return v, pos + 4, nil
}
