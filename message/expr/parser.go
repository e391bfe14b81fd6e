package expr

import (
	"fmt"
	"strings"

	"github.com/fxsml/mediate/message"
)

type node interface {
	eval(env *Env) (message.Value, error)
}

type literal struct {
	v message.Value
}

func (n literal) eval(*Env) (message.Value, error) {
	return n.v, nil
}

type call struct {
	name string
	fn   Function
	args []node
}

func (n *call) eval(env *Env) (message.Value, error) {
	args := make([]message.Value, len(n.args))
	for i, a := range n.args {
		v, err := a.eval(env)
		if err != nil {
			return message.Value{}, err
		}
		args[i] = v
	}
	v, err := n.fn(env, args)
	if err != nil {
		return message.Value{}, fmt.Errorf("%s: %w", n.name, err)
	}
	return v, nil
}

type parser struct {
	lex   lexer
	tok   token
	funcs func(name string) (Function, bool)
}

func parse(src string, funcs func(string) (Function, bool)) (node, error) {
	p := &parser{lex: lexer{src: []rune(src)}, funcs: funcs}
	if err := p.advance(); err != nil {
		return nil, err
	}
	n, err := p.expr()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, fmt.Errorf("%w: unexpected input at %d", ErrSyntax, p.tok.pos)
	}
	return n, nil
}

func (p *parser) advance() error {
	t, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = t
	return nil
}

func (p *parser) expr() (node, error) {
	t := p.tok
	switch t.kind {
	case tokString:
		return literal{message.StringValue(t.text)}, p.advance()
	case tokNumber:
		return literal{message.NumberValue(t.num)}, p.advance()
	case tokVar:
		key, ok := strings.CutPrefix(t.text, "ctx:")
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: unsupported variable $%s", ErrSyntax, t.text)
		}
		fn, _ := p.funcs(getPropertyName)
		return &call{
			name: getPropertyName,
			fn:   fn,
			args: []node{literal{message.StringValue(key)}},
		}, p.advance()
	case tokLParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		n, err := p.expr()
		if err != nil {
			return nil, err
		}
		if p.tok.kind != tokRParen {
			return nil, fmt.Errorf("%w: expected ')' at %d", ErrSyntax, p.tok.pos)
		}
		return n, p.advance()
	case tokName:
		return p.call()
	case tokEOF:
		return nil, fmt.Errorf("%w: unexpected end of expression", ErrSyntax)
	}
	return nil, fmt.Errorf("%w: unexpected token at %d", ErrSyntax, t.pos)
}

func (p *parser) call() (node, error) {
	name := p.tok.text
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.tok.kind != tokLParen {
		return nil, fmt.Errorf("%w: expected '(' after %s", ErrSyntax, name)
	}
	fn, ok := p.funcs(localName(name))
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFunction, name)
	}
	if err := p.advance(); err != nil {
		return nil, err
	}

	c := &call{name: localName(name), fn: fn}
	if p.tok.kind == tokRParen {
		return c, p.advance()
	}
	for {
		arg, err := p.expr()
		if err != nil {
			return nil, err
		}
		c.args = append(c.args, arg)
		switch p.tok.kind {
		case tokComma:
			if err := p.advance(); err != nil {
				return nil, err
			}
		case tokRParen:
			return c, p.advance()
		default:
			return nil, fmt.Errorf("%w: expected ',' or ')' at %d", ErrSyntax, p.tok.pos)
		}
	}
}
