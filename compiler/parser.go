package compiler

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Parser consumes the token sequence produced by the Lexer and builds a
// Program. With CollectAll set, a statement that fails to parse is
// recorded, the parser skips ahead to the next statement boundary and
// keeps going, so one run reports every offending statement; the default
// is to stop at the first error. Either way an error means no Program.
type Parser struct {
	tokens []Token
	pos    int

	// CollectAll enables the synchronize-and-continue error mode.
	CollectAll bool

	errs *multierror.Error
}

func NewParser(tokens []Token) *Parser {
	return &Parser{tokens: tokens}
}

// program: declaration* EOF
func (parser *Parser) Parse() (*Program, error) {
	program := &Program{}
	for !parser.check(EOFTP) {
		if parser.match(NewlineTP) {
			continue
		}
		stmt, err := parser.declaration()
		if err != nil {
			if !parser.CollectAll {
				return nil, err
			}
			parser.errs = multierror.Append(parser.errs, err)
			parser.synchronize()
			continue
		}
		program.Stmts = append(program.Stmts, stmt)
	}
	if err := parser.errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return program, nil
}

// declaration: varDecl | funcDecl | statement
func (parser *Parser) declaration() (Stmt, error) {
	switch parser.cur().Tp {
	case VarTP:
		return parser.varDeclaration()
	case FuncTP:
		return parser.funcDeclaration()
	default:
		return parser.statement()
	}
}

// varDecl: 'var' IDENT ('=' expression)? NEWLINE
func (parser *Parser) varDeclaration() (Stmt, error) {
	keyword := parser.advance()
	name, err := parser.expectToken(IdentifierTP, "after 'var'")
	if err != nil {
		return nil, err
	}
	var init Expr
	if parser.match(AssignTP) {
		init, err = parser.expression()
		if err != nil {
			return nil, err
		}
	}
	if err = parser.endOfStatement(); err != nil {
		return nil, err
	}
	return &VarDeclStmt{Name: name.Lexeme, Init: init, Position: keyword.Pos}, nil
}

// funcDecl: 'func' IDENT '(' (IDENT (',' IDENT)*)? ')' ':' block
func (parser *Parser) funcDeclaration() (Stmt, error) {
	keyword := parser.advance()
	name, err := parser.expectToken(IdentifierTP, "after 'func'")
	if err != nil {
		return nil, err
	}
	if _, err = parser.expectToken(LeftParenTP, "after function name"); err != nil {
		return nil, err
	}
	var params []string
	if !parser.check(RightParenTP) {
		for {
			param, err := parser.expectToken(IdentifierTP, "in parameter list")
			if err != nil {
				return nil, err
			}
			params = append(params, param.Lexeme)
			if !parser.match(CommaTP) {
				break
			}
		}
	}
	if _, err = parser.expectToken(RightParenTP, "after parameters"); err != nil {
		return nil, err
	}
	if _, err = parser.expectToken(ColonTP, "after parameter list"); err != nil {
		return nil, err
	}
	body, err := parser.block()
	if err != nil {
		return nil, err
	}
	return &FuncDeclStmt{Name: name.Lexeme, Params: params, Body: body, Position: keyword.Pos}, nil
}

// statement: ifStmt | whileStmt | loopStmt | returnStmt | printStmt
//          | inputStmt | expressionStatement
func (parser *Parser) statement() (Stmt, error) {
	switch parser.cur().Tp {
	case IfTP:
		return parser.ifStatement()
	case WhileTP:
		return parser.whileStatement()
	case LoopTP:
		return parser.loopStatement()
	case ReturnTP:
		return parser.returnStatement()
	case PrintTP:
		return parser.printStatement()
	case InputTP:
		return parser.inputStatement()
	default:
		return parser.expressionStatement()
	}
}

// ifStmt: 'if' expression ':' block ('else' (ifStmt | ':' block))?
func (parser *Parser) ifStatement() (Stmt, error) {
	keyword := parser.advance()
	cond, err := parser.expression()
	if err != nil {
		return nil, err
	}
	if _, err = parser.expectToken(ColonTP, "after if condition"); err != nil {
		return nil, err
	}
	then, err := parser.block()
	if err != nil {
		return nil, err
	}
	stmt := &IfStmt{Cond: cond, Then: then, Position: keyword.Pos}
	if parser.match(ElseTP) {
		if parser.check(IfTP) {
			stmt.Else, err = parser.ifStatement()
		} else {
			if _, err = parser.expectToken(ColonTP, "after 'else'"); err != nil {
				return nil, err
			}
			stmt.Else, err = parser.block()
		}
		if err != nil {
			return nil, err
		}
	}
	return stmt, nil
}

// whileStmt: 'while' expression ':' block
func (parser *Parser) whileStatement() (Stmt, error) {
	keyword := parser.advance()
	cond, err := parser.expression()
	if err != nil {
		return nil, err
	}
	if _, err = parser.expectToken(ColonTP, "after while condition"); err != nil {
		return nil, err
	}
	body, err := parser.block()
	if err != nil {
		return nil, err
	}
	return &WhileStmt{Cond: cond, Body: body, Position: keyword.Pos}, nil
}

// loopStmt: 'loop' IDENT 'in' expression ':' block
//         | 'loop' expression 'times' ':' block
// The two forms are told apart by looking one token past the 'loop'
// keyword: an identifier immediately followed by 'in' selects the
// collection form, anything else is a count expression.
func (parser *Parser) loopStatement() (Stmt, error) {
	keyword := parser.advance()
	if parser.check(IdentifierTP) && parser.peek(1).Tp == InTP {
		name := parser.advance()
		parser.advance() // 'in'
		collection, err := parser.expression()
		if err != nil {
			return nil, err
		}
		if _, err = parser.expectToken(ColonTP, "after loop collection"); err != nil {
			return nil, err
		}
		body, err := parser.block()
		if err != nil {
			return nil, err
		}
		return &LoopInStmt{Var: name.Lexeme, Collection: collection, Body: body, Position: keyword.Pos}, nil
	}
	count, err := parser.expression()
	if err != nil {
		return nil, err
	}
	if _, err = parser.expectToken(TimesTP, "after loop count"); err != nil {
		return nil, err
	}
	if _, err = parser.expectToken(ColonTP, "after 'times'"); err != nil {
		return nil, err
	}
	body, err := parser.block()
	if err != nil {
		return nil, err
	}
	return &LoopTimesStmt{Count: count, Body: body, Position: keyword.Pos}, nil
}

// returnStmt: 'return' expression? NEWLINE
func (parser *Parser) returnStatement() (Stmt, error) {
	keyword := parser.advance()
	var val Expr
	var err error
	if !parser.check(NewlineTP) {
		val, err = parser.expression()
		if err != nil {
			return nil, err
		}
	}
	if err = parser.endOfStatement(); err != nil {
		return nil, err
	}
	return &ReturnStmt{Val: val, Position: keyword.Pos}, nil
}

// printStmt: 'print' expression NEWLINE
func (parser *Parser) printStatement() (Stmt, error) {
	keyword := parser.advance()
	val, err := parser.expression()
	if err != nil {
		return nil, err
	}
	if err = parser.endOfStatement(); err != nil {
		return nil, err
	}
	return &PrintStmt{Val: val, Position: keyword.Pos}, nil
}

// inputStmt: 'input' IDENT NEWLINE
func (parser *Parser) inputStatement() (Stmt, error) {
	keyword := parser.advance()
	name, err := parser.expectToken(IdentifierTP, "after 'input'")
	if err != nil {
		return nil, err
	}
	if err = parser.endOfStatement(); err != nil {
		return nil, err
	}
	return &InputStmt{Name: name.Lexeme, Position: keyword.Pos}, nil
}

// expressionStatement: expression NEWLINE
func (parser *Parser) expressionStatement() (Stmt, error) {
	expr, err := parser.expression()
	if err != nil {
		return nil, err
	}
	if err = parser.endOfStatement(); err != nil {
		return nil, err
	}
	return &ExpressionStmt{Expression: expr, Position: expr.Pos()}, nil
}

// block: NEWLINE INDENT declaration+ DEDENT
func (parser *Parser) block() (*BlockStmt, error) {
	if _, err := parser.expectToken(NewlineTP, "before an indented block"); err != nil {
		return nil, err
	}
	open, err := parser.expectToken(IndentTP, "to begin a block")
	if err != nil {
		return nil, err
	}
	block := &BlockStmt{Position: open.Pos}
	for !parser.check(DedentTP) && !parser.check(EOFTP) {
		if parser.match(NewlineTP) {
			continue
		}
		stmt, err := parser.declaration()
		if err != nil {
			return nil, err
		}
		block.Stmts = append(block.Stmts, stmt)
	}
	if _, err := parser.expectToken(DedentTP, "to close the block"); err != nil {
		return nil, err
	}
	return block, nil
}

func (parser *Parser) endOfStatement() error {
	_, err := parser.expectToken(NewlineTP, "at end of statement")
	return err
}

func (parser *Parser) expression() (Expr, error) {
	return parser.assignment()
}

// assignment: (variable | indexExpr) '=' assignment | logicOr
func (parser *Parser) assignment() (Expr, error) {
	expr, err := parser.logicOr()
	if err != nil {
		return nil, err
	}
	if !parser.check(AssignTP) {
		return expr, nil
	}
	eq := parser.advance()
	value, err := parser.assignment()
	if err != nil {
		return nil, err
	}
	switch expr.(type) {
	case *VariableExpr, *IndexExpr:
		return &BinaryExpr{Op: AssignTP, Left: expr, Right: value, Position: eq.Pos}, nil
	}
	return nil, parser.makeErrorAt(eq, "invalid assignment target")
}

// logicOr: logicAnd ('||' logicAnd)*
func (parser *Parser) logicOr() (Expr, error) {
	expr, err := parser.logicAnd()
	if err != nil {
		return nil, err
	}
	for parser.check(OrTP) {
		op := parser.advance()
		right, err := parser.logicAnd()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{Op: op.Tp, Left: expr, Right: right, Position: op.Pos}
	}
	return expr, nil
}

// logicAnd: equality ('&&' equality)*
func (parser *Parser) logicAnd() (Expr, error) {
	expr, err := parser.equality()
	if err != nil {
		return nil, err
	}
	for parser.check(AndTP) {
		op := parser.advance()
		right, err := parser.equality()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{Op: op.Tp, Left: expr, Right: right, Position: op.Pos}
	}
	return expr, nil
}

// equality: comparison (('==' | '!=') comparison)*
func (parser *Parser) equality() (Expr, error) {
	expr, err := parser.comparison()
	if err != nil {
		return nil, err
	}
	for parser.check(EqualTP) || parser.check(NotEqualTP) {
		op := parser.advance()
		right, err := parser.comparison()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{Op: op.Tp, Left: expr, Right: right, Position: op.Pos}
	}
	return expr, nil
}

// comparison: term (('>' | '<' | '>=' | '<=') term)*
func (parser *Parser) comparison() (Expr, error) {
	expr, err := parser.term()
	if err != nil {
		return nil, err
	}
	for parser.check(GreaterTP) || parser.check(LessTP) ||
		parser.check(GreaterEqualTP) || parser.check(LessEqualTP) {
		op := parser.advance()
		right, err := parser.term()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{Op: op.Tp, Left: expr, Right: right, Position: op.Pos}
	}
	return expr, nil
}

// term: factor (('+' | '-' | '^') factor)*
// Concatenation binds like addition.
func (parser *Parser) term() (Expr, error) {
	expr, err := parser.factor()
	if err != nil {
		return nil, err
	}
	for parser.check(PlusTP) || parser.check(MinusTP) || parser.check(CaretTP) {
		op := parser.advance()
		right, err := parser.factor()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{Op: op.Tp, Left: expr, Right: right, Position: op.Pos}
	}
	return expr, nil
}

// factor: unary (('*' | '/' | '%') unary)*
func (parser *Parser) factor() (Expr, error) {
	expr, err := parser.unary()
	if err != nil {
		return nil, err
	}
	for parser.check(StarTP) || parser.check(SlashTP) || parser.check(PercentTP) {
		op := parser.advance()
		right, err := parser.unary()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{Op: op.Tp, Left: expr, Right: right, Position: op.Pos}
	}
	return expr, nil
}

// unary: ('-' | '!') unary | postfix
func (parser *Parser) unary() (Expr, error) {
	if parser.check(MinusTP) || parser.check(NotTP) {
		op := parser.advance()
		operand, err := parser.unary()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: op.Tp, Operand: operand, Position: op.Pos}, nil
	}
	return parser.postfix()
}

// postfix: primary ('(' arguments? ')' | '[' expression ']' | '.' IDENT)*
func (parser *Parser) postfix() (Expr, error) {
	expr, err := parser.primary()
	if err != nil {
		return nil, err
	}
	for {
		if parser.check(LeftParenTP) {
			expr, err = parser.finishCall(expr)
		} else if parser.check(LeftBracketTP) {
			expr, err = parser.finishIndex(expr)
		} else if parser.check(DotTP) {
			expr, err = parser.finishMember(expr)
		} else {
			return expr, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

func (parser *Parser) finishCall(callee Expr) (Expr, error) {
	open := parser.advance()
	variable, ok := callee.(*VariableExpr)
	if !ok {
		return nil, parser.makeErrorAt(open, "only named functions can be called")
	}
	var args []Expr
	if !parser.check(RightParenTP) {
		for {
			arg, err := parser.expression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if !parser.match(CommaTP) {
				break
			}
		}
	}
	if _, err := parser.expectToken(RightParenTP, "after call arguments"); err != nil {
		return nil, err
	}
	return &CallExpr{Callee: variable.Name, Args: args, Position: variable.Position}, nil
}

func (parser *Parser) finishIndex(array Expr) (Expr, error) {
	open := parser.advance()
	index, err := parser.expression()
	if err != nil {
		return nil, err
	}
	if _, err = parser.expectToken(RightBracketTP, "after index expression"); err != nil {
		return nil, err
	}
	return &IndexExpr{Array: array, Index: index, Position: open.Pos}, nil
}

func (parser *Parser) finishMember(object Expr) (Expr, error) {
	parser.advance()
	member, err := parser.expectToken(IdentifierTP, "after '.'")
	if err != nil {
		return nil, err
	}
	return &MemberExpr{Object: object, Member: member.Lexeme, Position: member.Pos}, nil
}

// primary: INT | FLOAT | STRING | BOOL | IDENT | '(' expression ')'
//        | '[' (expression (',' expression)*)? ']'
func (parser *Parser) primary() (Expr, error) {
	token := parser.cur()
	switch token.Tp {
	case IntTP, FloatTP, StringTP, BoolTP:
		parser.advance()
		return &LiteralExpr{Val: token.Val, Position: token.Pos}, nil
	case IdentifierTP:
		parser.advance()
		return &VariableExpr{Name: token.Lexeme, Position: token.Pos}, nil
	case LeftParenTP:
		parser.advance()
		expr, err := parser.expression()
		if err != nil {
			return nil, err
		}
		if _, err = parser.expectToken(RightParenTP, "after parenthesized expression"); err != nil {
			return nil, err
		}
		return expr, nil
	case LeftBracketTP:
		parser.advance()
		array := &ArrayLiteralExpr{Position: token.Pos}
		if !parser.check(RightBracketTP) {
			for {
				elem, err := parser.expression()
				if err != nil {
					return nil, err
				}
				array.Elems = append(array.Elems, elem)
				if !parser.match(CommaTP) {
					break
				}
			}
		}
		if _, err := parser.expectToken(RightBracketTP, "after array elements"); err != nil {
			return nil, err
		}
		return array, nil
	}
	return nil, parser.makeError("unexpected token in expression")
}

// synchronize discards tokens until the next statement boundary: past a
// NEWLINE, or in front of a keyword that begins a statement.
func (parser *Parser) synchronize() {
	for !parser.check(EOFTP) {
		if parser.match(NewlineTP) {
			return
		}
		switch parser.cur().Tp {
		case VarTP, FuncTP, IfTP, WhileTP, LoopTP, ReturnTP, PrintTP, InputTP:
			return
		}
		parser.advance()
	}
}

func (parser *Parser) cur() Token {
	return parser.tokens[parser.pos]
}

func (parser *Parser) peek(ahead int) Token {
	i := parser.pos + ahead
	if i >= len(parser.tokens) {
		return parser.tokens[len(parser.tokens)-1]
	}
	return parser.tokens[i]
}

func (parser *Parser) advance() Token {
	token := parser.cur()
	if token.Tp != EOFTP {
		parser.pos++
	}
	return token
}

func (parser *Parser) check(tp TokenType) bool {
	return parser.cur().Tp == tp
}

func (parser *Parser) match(tp TokenType) bool {
	if !parser.check(tp) {
		return false
	}
	parser.advance()
	return true
}

func (parser *Parser) expectToken(tp TokenType, context string) (Token, error) {
	if parser.check(tp) {
		return parser.advance(), nil
	}
	return Token{}, parser.makeError("expected %s %s", tp, context)
}

// makeError builds a parse error at the current token.
func (parser *Parser) makeError(format string, args ...interface{}) error {
	return parser.makeErrorAt(parser.cur(), format, args...)
}

func (parser *Parser) makeErrorAt(token Token, format string, args ...interface{}) error {
	near := token.Lexeme
	if near == "" {
		near = tokenTPNames[token.Tp]
	} else {
		near = "'" + near + "'"
	}
	msg := fmt.Sprintf(format, args...)
	return &Error{
		Phase: PhaseParse,
		Msg:   fmt.Sprintf("%s, near %s", msg, near),
		Line:  token.Pos.Line,
		Col:   token.Pos.Col,
	}
}
