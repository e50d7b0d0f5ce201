package compiler

import (
	"fmt"
	"sort"
	"strings"
)

// SymbolKind separates variables from functions during resolution.
type SymbolKind int

const (
	VariableSymbol SymbolKind = iota
	FunctionSymbol
)

// Symbol is one declared name. ParamCount is meaningful for functions
// only; Initialized tracks whether a variable has received a value yet.
type Symbol struct {
	Name        string
	Kind        SymbolKind
	Initialized bool
	ParamCount  int
}

// conversions are the built-in single-argument casts. They are resolved
// before user functions, so a user function of the same name is shadowed.
var conversions = map[string]bool{
	"int":   true,
	"float": true,
	"str":   true,
	"bool":  true,
}

type scopeFrame struct {
	owner   string
	symbols map[string]*Symbol
}

// Analyzer validates a Program against the scoping and initialization
// rules. It owns a stack of scope frames pushed and popped by the walk;
// frames cannot outlive the traversal, on the error path included. The
// first violation aborts the whole pass.
type Analyzer struct {
	scopes    []*scopeFrame
	funcDepth int
	dump      strings.Builder
}

func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Analyze walks the program. After a successful run the symbol-table dump
// is available through SymbolTable.
func (analyzer *Analyzer) Analyze(program *Program) error {
	analyzer.scopes = analyzer.scopes[:0]
	analyzer.funcDepth = 0
	analyzer.dump.Reset()
	analyzer.pushScope("global")
	defer analyzer.popScope()
	for _, stmt := range program.Stmts {
		if err := analyzer.checkStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

// SymbolTable returns the textual dump accumulated by the last Analyze
// run: one section per scope frame in pop order, symbols sorted by name.
func (analyzer *Analyzer) SymbolTable() string {
	return analyzer.dump.String()
}

func (analyzer *Analyzer) checkStmt(stmt Stmt) error {
	switch s := stmt.(type) {
	case *VarDeclStmt:
		if s.Init != nil {
			if err := analyzer.checkExpr(s.Init); err != nil {
				return err
			}
		}
		sym := &Symbol{Name: s.Name, Kind: VariableSymbol, Initialized: s.Init != nil}
		return analyzer.define(sym, s.Position)
	case *FuncDeclStmt:
		return analyzer.checkFuncDecl(s)
	case *ExpressionStmt:
		return analyzer.checkExpr(s.Expression)
	case *IfStmt:
		if err := analyzer.checkExpr(s.Cond); err != nil {
			return err
		}
		if err := analyzer.checkBlock(s.Then, "if"); err != nil {
			return err
		}
		switch elseBranch := s.Else.(type) {
		case nil:
			return nil
		case *BlockStmt:
			return analyzer.checkBlock(elseBranch, "else")
		default:
			return analyzer.checkStmt(elseBranch)
		}
	case *WhileStmt:
		if err := analyzer.checkExpr(s.Cond); err != nil {
			return err
		}
		return analyzer.checkBlock(s.Body, "while")
	case *LoopTimesStmt:
		if err := analyzer.checkExpr(s.Count); err != nil {
			return err
		}
		return analyzer.checkBlock(s.Body, "loop")
	case *LoopInStmt:
		return analyzer.checkLoopIn(s)
	case *ReturnStmt:
		if analyzer.funcDepth == 0 {
			return analyzer.makeError(s.Position, "return outside of a function")
		}
		if s.Val != nil {
			return analyzer.checkExpr(s.Val)
		}
		return nil
	case *BlockStmt:
		return analyzer.checkBlock(s, "block")
	case *PrintStmt:
		return analyzer.checkExpr(s.Val)
	case *InputStmt:
		sym := analyzer.resolve(s.Name)
		if sym == nil {
			return analyzer.makeError(s.Position, "input target '%s' is not declared", s.Name)
		}
		sym.Initialized = true
		return nil
	}
	return nil
}

// checkFuncDecl opens a single frame shared by the parameters and the
// body's own declarations: a top-level `var` of a parameter name is a
// redeclaration, not a shadow. Nested blocks still open child frames.
func (analyzer *Analyzer) checkFuncDecl(s *FuncDeclStmt) error {
	sym := &Symbol{Name: s.Name, Kind: FunctionSymbol, Initialized: true, ParamCount: len(s.Params)}
	if err := analyzer.define(sym, s.Position); err != nil {
		return err
	}
	analyzer.pushScope("func " + s.Name)
	defer analyzer.popScope()
	for _, param := range s.Params {
		err := analyzer.define(&Symbol{Name: param, Kind: VariableSymbol, Initialized: true}, s.Position)
		if err != nil {
			return err
		}
	}
	analyzer.funcDepth++
	defer func() { analyzer.funcDepth-- }()
	for _, stmt := range s.Body.Stmts {
		if err := analyzer.checkStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

// checkLoopIn places the loop variable in the same frame the body
// statements use.
func (analyzer *Analyzer) checkLoopIn(s *LoopInStmt) error {
	if err := analyzer.checkExpr(s.Collection); err != nil {
		return err
	}
	analyzer.pushScope("loop " + s.Var)
	defer analyzer.popScope()
	err := analyzer.define(&Symbol{Name: s.Var, Kind: VariableSymbol, Initialized: true}, s.Position)
	if err != nil {
		return err
	}
	for _, stmt := range s.Body.Stmts {
		if err = analyzer.checkStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (analyzer *Analyzer) checkBlock(block *BlockStmt, owner string) error {
	analyzer.pushScope(owner)
	defer analyzer.popScope()
	for _, stmt := range block.Stmts {
		if err := analyzer.checkStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (analyzer *Analyzer) checkExpr(expr Expr) error {
	switch e := expr.(type) {
	case *LiteralExpr:
		return nil
	case *VariableExpr:
		sym := analyzer.resolve(e.Name)
		if sym == nil {
			return analyzer.makeError(e.Position, "'%s' is not declared", e.Name)
		}
		if sym.Kind == VariableSymbol && !sym.Initialized {
			return analyzer.makeError(e.Position, "'%s' is used before it has a value", e.Name)
		}
		return nil
	case *BinaryExpr:
		if e.Op == AssignTP {
			return analyzer.checkAssignment(e)
		}
		if err := analyzer.checkExpr(e.Left); err != nil {
			return err
		}
		return analyzer.checkExpr(e.Right)
	case *UnaryExpr:
		return analyzer.checkExpr(e.Operand)
	case *CallExpr:
		return analyzer.checkCall(e)
	case *ArrayLiteralExpr:
		for _, elem := range e.Elems {
			if err := analyzer.checkExpr(elem); err != nil {
				return err
			}
		}
		return nil
	case *IndexExpr:
		if err := analyzer.checkExpr(e.Array); err != nil {
			return err
		}
		return analyzer.checkExpr(e.Index)
	case *MemberExpr:
		// Members cannot be validated without a type system; they resolve
		// at run time.
		return analyzer.checkExpr(e.Object)
	}
	return nil
}

// checkAssignment validates the right side first, so a variable cannot be
// read on the line that first gives it a value.
func (analyzer *Analyzer) checkAssignment(e *BinaryExpr) error {
	if err := analyzer.checkExpr(e.Right); err != nil {
		return err
	}
	switch target := e.Left.(type) {
	case *VariableExpr:
		sym := analyzer.resolve(target.Name)
		if sym == nil {
			return analyzer.makeError(target.Position, "'%s' is not declared", target.Name)
		}
		sym.Initialized = true
		return nil
	case *IndexExpr:
		if err := analyzer.checkExpr(target.Array); err != nil {
			return err
		}
		return analyzer.checkExpr(target.Index)
	}
	return analyzer.makeError(e.Position, "invalid assignment target")
}

func (analyzer *Analyzer) checkCall(e *CallExpr) error {
	for _, arg := range e.Args {
		if err := analyzer.checkExpr(arg); err != nil {
			return err
		}
	}
	if conversions[e.Callee] {
		if len(e.Args) != 1 {
			return analyzer.makeError(e.Position, "%s() takes exactly 1 argument, got %d", e.Callee, len(e.Args))
		}
		return nil
	}
	sym := analyzer.resolve(e.Callee)
	if sym == nil {
		return analyzer.makeError(e.Position, "function '%s' is not declared", e.Callee)
	}
	if sym.Kind != FunctionSymbol {
		return analyzer.makeError(e.Position, "'%s' is not a function", e.Callee)
	}
	if sym.ParamCount != len(e.Args) {
		return analyzer.makeError(e.Position, "%s() takes %d arguments, got %d", e.Callee, sym.ParamCount, len(e.Args))
	}
	return nil
}

func (analyzer *Analyzer) pushScope(owner string) {
	frame := &scopeFrame{owner: owner, symbols: map[string]*Symbol{}}
	analyzer.scopes = append(analyzer.scopes, frame)
}

// popScope records the closing frame in the dump before discarding it.
func (analyzer *Analyzer) popScope() {
	frame := analyzer.scopes[len(analyzer.scopes)-1]
	analyzer.scopes = analyzer.scopes[:len(analyzer.scopes)-1]
	analyzer.recordFrame(frame, len(analyzer.scopes))
}

func (analyzer *Analyzer) recordFrame(frame *scopeFrame, depth int) {
	names := make([]string, 0, len(frame.symbols))
	for name := range frame.symbols {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintf(&analyzer.dump, "scope %s (depth %d):\n", frame.owner, depth)
	for _, name := range names {
		sym := frame.symbols[name]
		if sym.Kind == FunctionSymbol {
			fmt.Fprintf(&analyzer.dump, "  func %s/%d\n", sym.Name, sym.ParamCount)
			continue
		}
		state := "uninitialized"
		if sym.Initialized {
			state = "initialized"
		}
		fmt.Fprintf(&analyzer.dump, "  var %s (%s)\n", sym.Name, state)
	}
}

// define adds a symbol to the innermost frame. Only that frame is
// consulted, so shadowing an outer scope's name stays legal.
func (analyzer *Analyzer) define(sym *Symbol, pos Position) error {
	frame := analyzer.scopes[len(analyzer.scopes)-1]
	if _, exists := frame.symbols[sym.Name]; exists {
		return analyzer.makeError(pos, "'%s' is already declared in this scope", sym.Name)
	}
	frame.symbols[sym.Name] = sym
	return nil
}

// resolve searches the frames innermost first.
func (analyzer *Analyzer) resolve(name string) *Symbol {
	for i := len(analyzer.scopes) - 1; i >= 0; i-- {
		if sym, ok := analyzer.scopes[i].symbols[name]; ok {
			return sym
		}
	}
	return nil
}

func (analyzer *Analyzer) makeError(pos Position, format string, args ...interface{}) error {
	return &Error{Phase: PhaseSemantic, Msg: fmt.Sprintf(format, args...), Line: pos.Line, Col: pos.Col}
}
