package parser

import (
	"github.com/shibukawa/sqlshard/lexer"
	tok "github.com/shibukawa/sqlshard/tokenizer"
)

// AliasParser extracts the optional `[AS] alias` following a table reference.
type AliasParser struct {
	engine *lexer.Engine
}

// NewAliasParser creates an AliasParser reading from engine.
func NewAliasParser(engine *lexer.Engine) *AliasParser {
	return &AliasParser{engine: engine}
}

// Parse consumes an alias if one is present. After an explicit AS any non-symbol token is
// taken as the alias; without AS only identifiers and quoted strings are.
func (p *AliasParser) Parse() Optional[string] {
	if p.engine.SkipIfEqual(tok.AS) {
		current := p.engine.Current()
		if current.Type.IsSymbol() || current.Type == tok.EOF {
			return None[string]()
		}

		p.engine.Next()

		return Some(ExactValue(current.Value))
	}

	if p.engine.EqualAny(tok.IDENTIFIER, tok.STRING) {
		current := p.engine.Current()
		p.engine.Next()

		return Some(ExactValue(current.Value))
	}

	return None[string]()
}
