package expr

import "fmt"

// parser is a small recursive-descent / precedence-climbing parser.
//
// Bitwise controls how '&' and '|' are parsed (spec.md §9 open question a):
//   - false (default): they are alternate spellings of logical and/or, parsed
//     at logical precedence (below comparison — "a > 1 & b < 2" works without
//     parens, same as "a > 1 and b < 2").
//   - true: they are Python/pandas-style bitwise operators, parsed at a
//     precedence tighter than comparison — callers must parenthesize
//     comparisons ("(a > 1) & (b < 2)") or get the classic parenthesization
//     trap, preserved faithfully rather than silently normalized away.
type parser struct {
	toks    []token
	pos     int
	bitwise bool
}

// Parse compiles a SAGE expression into an AST. bitwise selects the &/|
// semantics for this expression (see FieldRule.Bitwise / RowCheck.Bitwise /
// CrossRule.Bitwise).
func Parse(src string, bitwise bool) (Node, error) {
	lx := newLexer(src)
	toks, err := lx.tokenize()
	if err != nil {
		return nil, fmt.Errorf("lex %q: %w", src, err)
	}
	p := &parser{toks: toks, bitwise: bitwise}
	node, err := p.parseOr()
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", src, err)
	}
	if p.cur().kind != tokEOF {
		return nil, fmt.Errorf("parse %q: unexpected trailing token", src)
	}
	return node, nil
}

func (p *parser) cur() token {
	return p.toks[p.pos]
}

func (p *parser) advance() token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) expect(k tokenKind, what string) (token, error) {
	if p.cur().kind != k {
		return token{}, fmt.Errorf("expected %s, got token kind %d", what, p.cur().kind)
	}
	return p.advance(), nil
}

// parseOr / parseAnd implement logical disjunction/conjunction. When
// bitwise==false, '&'/'|' tokens are accepted here as aliases for and/or.
func (p *parser) parseOr() (Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for {
		if p.cur().kind == tokIdent && p.cur().text == "or" {
			p.advance()
		} else if !p.bitwise && p.cur().kind == tokPipe {
			p.advance()
		} else {
			return left, nil
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = BinaryExpr{Op: "or", L: left, R: right}
	}
}

func (p *parser) parseAnd() (Node, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for {
		if p.cur().kind == tokIdent && p.cur().text == "and" {
			p.advance()
		} else if !p.bitwise && p.cur().kind == tokAmp {
			p.advance()
		} else {
			return left, nil
		}
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = BinaryExpr{Op: "and", L: left, R: right}
	}
}

func (p *parser) parseNot() (Node, error) {
	if p.cur().kind == tokBang || (p.cur().kind == tokIdent && p.cur().text == "not") {
		p.advance()
		x, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return UnaryExpr{Op: "not", X: x}, nil
	}
	return p.parseComparison()
}

func (p *parser) parseComparison() (Node, error) {
	left, err := p.parseBitwise()
	if err != nil {
		return nil, err
	}
	op := ""
	switch p.cur().kind {
	case tokEq:
		op = "=="
	case tokNeq:
		op = "!="
	case tokLt:
		op = "<"
	case tokLe:
		op = "<="
	case tokGt:
		op = ">"
	case tokGe:
		op = ">="
	default:
		return left, nil
	}
	p.advance()
	right, err := p.parseBitwise()
	if err != nil {
		return nil, err
	}
	return BinaryExpr{Op: op, L: left, R: right}, nil
}

// parseBitwise handles true bitwise &/| (only reachable when bitwise==true;
// otherwise it's a pass-through to parseAdditive since & and | are consumed
// at the logical level instead).
func (p *parser) parseBitwise() (Node, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	if !p.bitwise {
		return left, nil
	}
	for p.cur().kind == tokAmp || p.cur().kind == tokPipe {
		op := "bitand"
		if p.cur().kind == tokPipe {
			op = "bitor"
		}
		p.advance()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = BinaryExpr{Op: op, L: left, R: right}
	}
	return left, nil
}

func (p *parser) parseAdditive() (Node, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.cur().kind == tokPlus || p.cur().kind == tokMinus {
		op := "+"
		if p.cur().kind == tokMinus {
			op = "-"
		}
		p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = BinaryExpr{Op: op, L: left, R: right}
	}
	return left, nil
}

func (p *parser) parseMultiplicative() (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.cur().kind == tokStar || p.cur().kind == tokSlash {
		op := "*"
		if p.cur().kind == tokSlash {
			op = "/"
		}
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = BinaryExpr{Op: op, L: left, R: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (Node, error) {
	if p.cur().kind == tokMinus {
		p.advance()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return UnaryExpr{Op: "-", X: x}, nil
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() (Node, error) {
	node, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.cur().kind {
		case tokDot:
			p.advance()
			nameTok, err := p.expect(tokIdent, "method name")
			if err != nil {
				return nil, err
			}
			method := nameTok.text
			if method == "str" {
				if _, err := p.expect(tokDot, "'.'"); err != nil {
					return nil, err
				}
				sub, err := p.expect(tokIdent, "str method name")
				if err != nil {
					return nil, err
				}
				method = "str." + sub.text
			}
			var args []Node
			if p.cur().kind == tokLParen {
				p.advance()
				args, err = p.parseArgs()
				if err != nil {
					return nil, err
				}
			}
			node = Call{Receiver: node, Method: method, Args: args}
		case tokLBracket:
			// Only meaningful after `df` (frame lookup) or `shape` (row count);
			// the evaluator validates the receiver identity.
			p.advance()
			idx, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(tokRBracket, "']'"); err != nil {
				return nil, err
			}
			node = buildIndexNode(node, idx)
		default:
			return node, nil
		}
	}
}

// buildIndexNode resolves `df['a']['b']` into FrameColumnExpr and
// `shape[0]` into ShapeRowCount; any other indexing is a parse-time error
// surfaced at evaluation (kept simple: returned as a synthetic Call so the
// evaluator can produce a clear "unsupported expression" error).
func buildIndexNode(receiver Node, index Node) Node {
	switch r := receiver.(type) {
	case Identifier:
		if r.Name == "shape" {
			return ShapeRowCount{}
		}
		if r.Name == "df" {
			if lit, ok := index.(StringLit); ok {
				return Call{Method: "__df_logical", Args: []Node{StringLit{Value: lit.Value}}}
			}
		}
	case Call:
		if r.Method == "__df_logical" && len(r.Args) == 1 {
			if logical, ok := r.Args[0].(StringLit); ok {
				if col, ok := index.(StringLit); ok {
					return FrameColumnExpr{Logical: logical.Value, Column: col.Value}
				}
			}
		}
	}
	return Call{Receiver: receiver, Method: "__index", Args: []Node{index}}
}

func (p *parser) parseArgs() ([]Node, error) {
	var args []Node
	if p.cur().kind == tokRParen {
		p.advance()
		return args, nil
	}
	for {
		// Skip `keep=False` / `keep='first'` style kwargs: parse name=value
		// and keep just the value node, since duplicated()'s keep mode is the
		// only kwarg in the supported surface (spec.md §4.2).
		if p.cur().kind == tokIdent && p.peekIsAssign() {
			p.advance() // name
			p.advance() // '='
		}
		arg, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.cur().kind == tokComma {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(tokRParen, "')'"); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *parser) peekIsAssign() bool {
	return p.pos+1 < len(p.toks) && p.toks[p.pos+1].kind == tokAssign
}

func (p *parser) parsePrimary() (Node, error) {
	t := p.cur()
	switch t.kind {
	case tokNumber:
		p.advance()
		return NumberLit{Value: t.num}, nil
	case tokString:
		p.advance()
		return StringLit{Value: t.text}, nil
	case tokLParen:
		p.advance()
		n, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen, "')'"); err != nil {
			return nil, err
		}
		return n, nil
	case tokLBracket:
		p.advance()
		var items []Node
		if p.cur().kind != tokRBracket {
			for {
				item, err := p.parseOr()
				if err != nil {
					return nil, err
				}
				items = append(items, item)
				if p.cur().kind == tokComma {
					p.advance()
					continue
				}
				break
			}
		}
		if _, err := p.expect(tokRBracket, "']'"); err != nil {
			return nil, err
		}
		return ListLit{Items: items}, nil
	case tokIdent:
		switch t.text {
		case "True":
			p.advance()
			return BoolLit{Value: true}, nil
		case "False":
			p.advance()
			return BoolLit{Value: false}, nil
		}
		p.advance()
		if p.cur().kind == tokLParen {
			p.advance()
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			return Call{Method: t.text, Args: args}, nil
		}
		return Identifier{Name: t.text}, nil
	default:
		return nil, fmt.Errorf("unexpected token in expression (kind %d)", t.kind)
	}
}
