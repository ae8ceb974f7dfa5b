// # internal/engine/parser/pool.go
package parser

import (
	"depgraph/internal/shared/observability"
	"sync"
	"sync/atomic"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// ParserPool hands out tree-sitter parsers bound to one language. A parser
// taken with Get must be returned with Put once its tree is no longer needed.
type ParserPool struct {
	language string
	grammar  *sitter.Language
	parsers  sync.Pool
	leased   atomic.Int64
}

func NewParserPool(language string, grammar *sitter.Language) *ParserPool {
	p := &ParserPool{language: language, grammar: grammar}
	p.parsers.New = func() any {
		sp := sitter.NewParser()
		_ = sp.SetLanguage(grammar)
		return sp
	}
	return p
}

func (p *ParserPool) Get() *sitter.Parser {
	sp := p.parsers.Get().(*sitter.Parser)
	_ = sp.SetLanguage(p.grammar)
	p.leased.Add(1)
	observability.ParserLeases.WithLabelValues(p.language).Inc()
	return sp
}

// Put resets sp for the next caller. Passing nil is a no-op.
func (p *ParserPool) Put(sp *sitter.Parser) {
	if sp == nil {
		return
	}
	sp.Reset()
	p.parsers.Put(sp)
	p.leased.Add(-1)
	observability.ParserLeases.WithLabelValues(p.language).Dec()
}

func (p *ParserPool) Language() string { return p.language }

// Leased is the number of parsers handed out and not yet returned.
func (p *ParserPool) Leased() int {
	return int(p.leased.Load())
}
