package lexer

import (
	"testing"

	"github.com/alecthomas/assert/v2"
	tok "github.com/shibukawa/sqlshard/tokenizer"
)

type counter struct {
	n int
}

func (c *counter) IncreaseParametersIndex() {
	c.n++
}

func newEngine(t *testing.T, sql string) *Engine {
	t.Helper()

	engine, err := New(sql, tok.MySQL)
	assert.NoError(t, err)

	return engine
}

func TestEngineSkipsTrivia(t *testing.T) {
	engine := newEngine(t, "a /* c */ b -- d\n c")

	var values []string
	for !engine.IsEnd() {
		values = append(values, engine.Current().Value)
		engine.Next()
	}

	assert.Equal(t, []string{"a", "b", "c"}, values)
}

func TestNextStopsAtEOF(t *testing.T) {
	engine := newEngine(t, "a")
	engine.Next()
	engine.Next()
	engine.Next()

	assert.True(t, engine.IsEnd())
	assert.Equal(t, tok.EOF, engine.Current().Type)
}

func TestSkipIfEqual(t *testing.T) {
	engine := newEngine(t, "LEFT JOIN t")

	assert.False(t, engine.SkipIfEqual(tok.RIGHT, tok.FULL))
	assert.Equal(t, "LEFT", engine.Current().Value)
	assert.True(t, engine.SkipIfEqual(tok.RIGHT, tok.LEFT))
	assert.Equal(t, "JOIN", engine.Current().Value)
	assert.True(t, engine.EqualAny(tok.JOIN))
	assert.Equal(t, "JOIN", engine.Current().Value)
}

func TestSkipAll(t *testing.T) {
	engine := newEngine(t, "AS AS as t")
	engine.SkipAll(tok.AS)

	assert.Equal(t, "t", engine.Current().Value)
}

func TestAccept(t *testing.T) {
	engine := newEngine(t, "a = b")
	engine.Next()
	assert.NoError(t, engine.Accept(tok.EQUAL))
	assert.Equal(t, "b", engine.Current().Value)

	err := engine.Accept(tok.EQUAL)
	assert.IsError(t, err, ErrSyntaxMismatch)
	assert.Contains(t, err.Error(), "at offset 4")
	assert.Equal(t, "b", engine.Current().Value)
}

func TestSkipParentheses(t *testing.T) {
	engine := newEngine(t, "USING (a, (b), ?) WHERE x = ?")
	engine.Next()

	c := &counter{}
	text, err := engine.SkipParentheses(c)
	assert.NoError(t, err)
	assert.Equal(t, "(a, (b), ?)", text)
	assert.Equal(t, 1, c.n)
	assert.Equal(t, tok.WHERE, engine.Current().Type)
}

func TestSkipParenthesesUnbalanced(t *testing.T) {
	engine := newEngine(t, "(a, (b)")

	_, err := engine.SkipParentheses(nil)
	assert.IsError(t, err, ErrSyntaxMismatch)
}

func TestSkipParenthesesWithoutParen(t *testing.T) {
	engine := newEngine(t, "a")

	text, err := engine.SkipParentheses(nil)
	assert.NoError(t, err)
	assert.Equal(t, "", text)
	assert.Equal(t, "a", engine.Current().Value)
}

func TestMarkResetAndClone(t *testing.T) {
	engine := newEngine(t, "a b c")
	engine.Next()
	mark := engine.Mark()
	engine.Next()
	assert.Equal(t, "c", engine.Current().Value)

	engine.Reset(mark)
	assert.Equal(t, "b", engine.Current().Value)

	clone := engine.Clone()
	assert.Equal(t, "a", clone.Current().Value)
	clone.Next()
	assert.Equal(t, "b", engine.Current().Value)
	assert.Equal(t, "a b c", clone.Input())
}

func TestNewPropagatesTokenizerErrors(t *testing.T) {
	_, err := New("SELECT 'abc", tok.MySQL)
	assert.IsError(t, err, tok.ErrUnterminatedString)
}
