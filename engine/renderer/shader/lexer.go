// lexer.go tokenizes shader asset text. The asset format is a small object notation of
// named structs, tuples, lists, strings, numbers and identifiers:
//
//	(name: "Gizmo", resources: [...], passes: [(name: "Forward", vertex_shader: r#"..."#)])
//
// Line comments (//) and nestable block comments (/* */) are skipped. Raw strings
// (r"..." and r#"..."#) carry shader bodies without escaping.
package shader

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokLParen
	tokRParen
	tokLBracket
	tokRBracket
	tokColon
	tokComma
	tokIdent
	tokString
	tokNumber
)

var tokenKindNames = map[tokenKind]string{
	tokEOF:      "end of input",
	tokLParen:   "'('",
	tokRParen:   "')'",
	tokLBracket: "'['",
	tokRBracket: "']'",
	tokColon:    "':'",
	tokComma:    "','",
	tokIdent:    "identifier",
	tokString:   "string",
	tokNumber:   "number",
}

func (k tokenKind) String() string {
	return tokenKindNames[k]
}

// token is one lexeme. Text holds the decoded value for strings and the literal for all others.
type token struct {
	Kind  tokenKind
	Text  string
	Start int
}

type lexer struct {
	src string
	pos int
}

// tokenize splits src into tokens terminated by a single tokEOF.
//
// Parameters:
//   - src: the asset text
//
// Returns:
//   - []token: the token stream
//   - error: a *MalformedAssetError at the first invalid lexeme
func tokenize(src string) ([]token, error) {
	l := &lexer{src: src}
	var toks []token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Kind == tokEOF {
			return toks, nil
		}
	}
}

func (l *lexer) next() (token, error) {
	if err := l.skipTrivia(); err != nil {
		return token{}, err
	}
	if l.pos >= len(l.src) {
		return token{Kind: tokEOF, Start: l.pos}, nil
	}

	start := l.pos
	c := l.src[l.pos]
	switch c {
	case '(':
		l.pos++
		return token{Kind: tokLParen, Text: "(", Start: start}, nil
	case ')':
		l.pos++
		return token{Kind: tokRParen, Text: ")", Start: start}, nil
	case '[':
		l.pos++
		return token{Kind: tokLBracket, Text: "[", Start: start}, nil
	case ']':
		l.pos++
		return token{Kind: tokRBracket, Text: "]", Start: start}, nil
	case ':':
		l.pos++
		return token{Kind: tokColon, Text: ":", Start: start}, nil
	case ',':
		l.pos++
		return token{Kind: tokComma, Text: ",", Start: start}, nil
	case '"':
		return l.quoted()
	}

	if c == 'r' && l.pos+1 < len(l.src) && (l.src[l.pos+1] == '"' || l.src[l.pos+1] == '#') {
		return l.raw()
	}
	if c == '-' || c == '+' || c == '.' || isDigit(c) {
		return l.number()
	}
	if c == '_' || isLetter(c) {
		for l.pos < len(l.src) && (l.src[l.pos] == '_' || isLetter(l.src[l.pos]) || isDigit(l.src[l.pos])) {
			l.pos++
		}
		return token{Kind: tokIdent, Text: l.src[start:l.pos], Start: start}, nil
	}

	r, _ := utf8.DecodeRuneInString(l.src[l.pos:])
	return token{}, malformedAt(l.src, start, fmt.Sprintf("unexpected character %q", r))
}

// skipTrivia advances past whitespace and comments.
func (l *lexer) skipTrivia() error {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			l.pos++
		case strings.HasPrefix(l.src[l.pos:], "//"):
			end := strings.IndexByte(l.src[l.pos:], '\n')
			if end < 0 {
				l.pos = len(l.src)
			} else {
				l.pos += end + 1
			}
		case strings.HasPrefix(l.src[l.pos:], "/*"):
			start := l.pos
			depth := 0
			for l.pos < len(l.src) {
				if strings.HasPrefix(l.src[l.pos:], "/*") {
					depth++
					l.pos += 2
					continue
				}
				if strings.HasPrefix(l.src[l.pos:], "*/") {
					depth--
					l.pos += 2
					if depth == 0 {
						break
					}
					continue
				}
				l.pos++
			}
			if depth != 0 {
				return malformedAt(l.src, start, "unterminated block comment")
			}
		default:
			return nil
		}
	}
	return nil
}

// quoted lexes a double-quoted string with escape sequences.
func (l *lexer) quoted() (token, error) {
	start := l.pos
	l.pos++
	var sb strings.Builder
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch c {
		case '"':
			l.pos++
			return token{Kind: tokString, Text: sb.String(), Start: start}, nil
		case '\\':
			if l.pos+1 >= len(l.src) {
				return token{}, malformedAt(l.src, l.pos, "unterminated escape sequence")
			}
			esc := l.src[l.pos+1]
			l.pos += 2
			switch esc {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case '0':
				sb.WriteByte(0)
			case '\\', '"', '\'':
				sb.WriteByte(esc)
			case '\n':
				// line continuation swallows leading whitespace of the next line
				for l.pos < len(l.src) && (l.src[l.pos] == ' ' || l.src[l.pos] == '\t' || l.src[l.pos] == '\n' || l.src[l.pos] == '\r') {
					l.pos++
				}
			case 'u':
				r, err := l.unicodeEscape()
				if err != nil {
					return token{}, err
				}
				sb.WriteRune(r)
			default:
				return token{}, malformedAt(l.src, l.pos-2, fmt.Sprintf("unknown escape sequence \\%c", esc))
			}
		default:
			sb.WriteByte(c)
			l.pos++
		}
	}
	return token{}, malformedAt(l.src, start, "unterminated string")
}

// unicodeEscape lexes the {XXXX} part of a \u{XXXX} escape.
func (l *lexer) unicodeEscape() (rune, error) {
	start := l.pos - 2
	if l.pos >= len(l.src) || l.src[l.pos] != '{' {
		return 0, malformedAt(l.src, start, "expected '{' in unicode escape")
	}
	end := strings.IndexByte(l.src[l.pos:], '}')
	if end < 0 {
		return 0, malformedAt(l.src, start, "unterminated unicode escape")
	}
	hex := l.src[l.pos+1 : l.pos+end]
	l.pos += end + 1
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil || !utf8.ValidRune(rune(v)) {
		return 0, malformedAt(l.src, start, fmt.Sprintf("invalid unicode escape %q", hex))
	}
	return rune(v), nil
}

// raw lexes r"..." and r#"..."# strings. The number of '#' marks closing the string must
// match the number opening it.
func (l *lexer) raw() (token, error) {
	start := l.pos
	l.pos++
	hashes := 0
	for l.pos < len(l.src) && l.src[l.pos] == '#' {
		hashes++
		l.pos++
	}
	if l.pos >= len(l.src) || l.src[l.pos] != '"' {
		return token{}, malformedAt(l.src, start, "expected '\"' after raw string prefix")
	}
	l.pos++
	terminator := "\"" + strings.Repeat("#", hashes)
	end := strings.Index(l.src[l.pos:], terminator)
	if end < 0 {
		return token{}, malformedAt(l.src, start, "unterminated raw string")
	}
	text := l.src[l.pos : l.pos+end]
	l.pos += end + len(terminator)
	return token{Kind: tokString, Text: text, Start: start}, nil
}

// number lexes integer, hexadecimal and floating point literals. Underscores are allowed
// as digit separators and stripped from Text.
func (l *lexer) number() (token, error) {
	start := l.pos
	if l.src[l.pos] == '-' || l.src[l.pos] == '+' {
		l.pos++
	}
	if strings.HasPrefix(l.src[l.pos:], "0x") || strings.HasPrefix(l.src[l.pos:], "0X") {
		l.pos += 2
		for l.pos < len(l.src) && (isHexDigit(l.src[l.pos]) || l.src[l.pos] == '_') {
			l.pos++
		}
	} else {
		for l.pos < len(l.src) {
			c := l.src[l.pos]
			if isDigit(c) || c == '_' || c == '.' {
				l.pos++
				continue
			}
			if (c == 'e' || c == 'E') && l.pos+1 < len(l.src) {
				l.pos++
				if l.src[l.pos] == '-' || l.src[l.pos] == '+' {
					l.pos++
				}
				continue
			}
			break
		}
	}
	text := strings.ReplaceAll(l.src[start:l.pos], "_", "")
	if text == "" || text == "-" || text == "+" || text == "." {
		return token{}, malformedAt(l.src, start, "invalid number literal")
	}
	return token{Kind: tokNumber, Text: text, Start: start}, nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isLetter(c byte) bool {
	return c < utf8.RuneSelf && unicode.IsLetter(rune(c))
}

// lineColumn converts a byte offset to 1-based line and column numbers.
func lineColumn(src string, offset int) (int, int) {
	if offset > len(src) {
		offset = len(src)
	}
	before := src[:offset]
	line := strings.Count(before, "\n") + 1
	col := offset - strings.LastIndexByte(before, '\n')
	return line, col
}

func malformedAt(src string, offset int, msg string) *MalformedAssetError {
	line, col := lineColumn(src, offset)
	return &MalformedAssetError{Offset: offset, Line: line, Column: col, Msg: msg}
}
