package lexer

import (
	"fmt"
	"strings"
)

// Unquote decodes a C string or character literal, quotes included.
// Supported escapes: \n \t \r \a \b \f \v \\ \' \" \? \xHH and octal \ooo.
func Unquote(lit string) (string, error) {
	if len(lit) < 2 || lit[0] != lit[len(lit)-1] || (lit[0] != '"' && lit[0] != '\'') {
		return "", fmt.Errorf("malformed literal %s", lit)
	}
	body := lit[1 : len(lit)-1]
	if !strings.ContainsRune(body, '\\') {
		return body, nil
	}

	var sb strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' {
			sb.WriteByte(c)
			continue
		}
		i++
		if i >= len(body) {
			return "", fmt.Errorf("incomplete escape sequence in %s", lit)
		}
		switch e := body[i]; e {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		case 'a':
			sb.WriteByte('\a')
		case 'b':
			sb.WriteByte('\b')
		case 'f':
			sb.WriteByte('\f')
		case 'v':
			sb.WriteByte('\v')
		case '\\', '\'', '"', '?':
			sb.WriteByte(e)
		case 'x':
			v, n := 0, 0
			for i+1 < len(body) && isHex(body[i+1]) {
				i++
				v = v*16 + hexVal(body[i])
				n++
			}
			if n == 0 || v > 0xff {
				return "", fmt.Errorf("invalid hex escape in %s", lit)
			}
			sb.WriteByte(byte(v))
		default:
			if e < '0' || e > '7' {
				return "", fmt.Errorf("unknown escape sequence \\%c in %s", e, lit)
			}
			v := int(e - '0')
			for n := 1; n < 3 && i+1 < len(body) && '0' <= body[i+1] && body[i+1] <= '7'; n++ {
				i++
				v = v*8 + int(body[i]-'0')
			}
			if v > 0xff {
				return "", fmt.Errorf("octal escape out of range in %s", lit)
			}
			sb.WriteByte(byte(v))
		}
	}
	return sb.String(), nil
}

// Quote encodes s as a C string literal
func Quote(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		writeEscaped(&sb, s[i], '"')
	}
	sb.WriteByte('"')
	return sb.String()
}

// QuoteChar encodes c as a C character constant
func QuoteChar(c byte) string {
	var sb strings.Builder
	sb.WriteByte('\'')
	writeEscaped(&sb, c, '\'')
	sb.WriteByte('\'')
	return sb.String()
}

func writeEscaped(sb *strings.Builder, c, quote byte) {
	switch c {
	case '\n':
		sb.WriteString(`\n`)
	case '\t':
		sb.WriteString(`\t`)
	case '\r':
		sb.WriteString(`\r`)
	case '\\':
		sb.WriteString(`\\`)
	case quote:
		sb.WriteByte('\\')
		sb.WriteByte(c)
	default:
		if c < 0x20 || c >= 0x7f {
			fmt.Fprintf(sb, `\%03o`, c)
			return
		}
		sb.WriteByte(c)
	}
}

func isHex(c byte) bool {
	return isDigit(c) || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

func hexVal(c byte) int {
	switch {
	case isDigit(c):
		return int(c - '0')
	case 'a' <= c && c <= 'f':
		return int(c-'a') + 10
	}
	return int(c-'A') + 10
}
