package mapformat

import (
	"strconv"
	"strings"
)

// DefaultTextParser is the hand-written fallback UDMF tokenizer used
// when no richer parser service is injected (spec.md §4.8/§6 "UDMF
// text" grammar: root assignments and `kind { key = literal; }`
// blocks, with `//` and `/* */` comments stripped first).
type DefaultTextParser struct{}

func (DefaultTextParser) Parse(src []byte) ([]Block, error) {
	text := stripComments(string(src))
	toks := tokenize(text)
	return parseBlocks(toks)
}

func stripComments(s string) string {
	var b strings.Builder
	i := 0
	for i < len(s) {
		if i+1 < len(s) && s[i] == '/' && s[i+1] == '/' {
			for i < len(s) && s[i] != '\n' {
				i++
			}
			continue
		}
		if i+1 < len(s) && s[i] == '/' && s[i+1] == '*' {
			i += 2
			for i+1 < len(s) && !(s[i] == '*' && s[i+1] == '/') {
				i++
			}
			i += 2
			continue
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}

func tokenize(s string) []string {
	var toks []string
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '{' || c == '}' || c == '=' || c == ';':
			toks = append(toks, string(c))
			i++
		case c == '"':
			j := i + 1
			var b strings.Builder
			for j < len(s) && s[j] != '"' {
				if s[j] == '\\' && j+1 < len(s) {
					j++
				}
				b.WriteByte(s[j])
				j++
			}
			toks = append(toks, `"`+b.String())
			i = j + 1
		default:
			j := i
			for j < len(s) && !strings.ContainsRune(" \t\n\r{}=;\"", rune(s[j])) {
				j++
			}
			toks = append(toks, s[i:j])
			i = j
		}
	}
	return toks
}

func parseBlocks(toks []string) ([]Block, error) {
	var blocks []Block
	i := 0
	for i < len(toks) {
		// Either `name = literal ;` or `name { ... }`
		name := toks[i]
		i++
		if i >= len(toks) {
			break
		}
		switch toks[i] {
		case "=":
			i++
			lit := parseLiteral(toks[i])
			i++
			if i < len(toks) && toks[i] == ";" {
				i++
			}
			blocks = append(blocks, Block{Kind: "", Props: map[string]Literal{strings.ToLower(name): lit}})
		case "{":
			i++
			props := map[string]Literal{}
			for i < len(toks) && toks[i] != "}" {
				key := toks[i]
				i++
				if i < len(toks) && toks[i] == "=" {
					i++
				}
				if i >= len(toks) {
					break
				}
				lit := parseLiteral(toks[i])
				i++
				if i < len(toks) && toks[i] == ";" {
					i++
				}
				props[strings.ToLower(key)] = lit
			}
			if i < len(toks) && toks[i] == "}" {
				i++
			}
			blocks = append(blocks, Block{Kind: strings.ToLower(name), Props: props})
		default:
			// malformed token stream; skip forward
			i++
		}
	}
	return blocks, nil
}

func parseLiteral(tok string) Literal {
	if strings.HasPrefix(tok, `"`) {
		return Literal{Kind: LiteralString, Str: tok[1:]}
	}
	if tok == "true" {
		return Literal{Kind: LiteralBool, Bool: true}
	}
	if tok == "false" {
		return Literal{Kind: LiteralBool, Bool: false}
	}
	if iv, err := strconv.ParseInt(tok, 10, 64); err == nil {
		return Literal{Kind: LiteralInt, Int: iv}
	}
	if fv, err := strconv.ParseFloat(tok, 64); err == nil {
		return Literal{Kind: LiteralFloat, Float: fv}
	}
	return Literal{Kind: LiteralString, Str: tok}
}
