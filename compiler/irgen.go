package compiler

// IRGenerator lowers a validated Program to linear IR: one IRFunction per
// declared function plus the implicit __main__ holding the top-level
// statements. Expression lowering always lands its result in a fresh
// temporary; structured control flow becomes label/jump sequences.
// Lowering cannot fail on a tree the Analyzer accepted, so it returns no
// error.
type IRGenerator struct {
	program *IRProgram
	cur     *IRFunction
}

func NewIRGenerator() *IRGenerator {
	return &IRGenerator{}
}

func (irGen *IRGenerator) Generate(program *Program) *IRProgram {
	irGen.program = &IRProgram{}
	irGen.cur = irGen.pushFunction(mainFuncName, nil)
	for _, stmt := range program.Stmts {
		irGen.genStmt(stmt)
	}
	irGen.sealFunction()
	return irGen.program
}

func (irGen *IRGenerator) pushFunction(name string, params []string) *IRFunction {
	fn := &IRFunction{Name: name, Params: params}
	irGen.program.Functions = append(irGen.program.Functions, fn)
	return fn
}

// sealFunction appends the implicit no-value RETURN unless the body
// already ends with a return.
func (irGen *IRGenerator) sealFunction() {
	insts := irGen.cur.Instructions
	if len(insts) == 0 || insts[len(insts)-1].Op != Return {
		irGen.cur.emit(Return)
	}
}

func (irGen *IRGenerator) genStmt(stmt Stmt) {
	switch s := stmt.(type) {
	case *VarDeclStmt:
		// A declaration without initializer emits nothing; the variable
		// first exists in the target when something stores to it.
		if s.Init != nil {
			val := irGen.genExpr(s.Init)
			irGen.cur.emit(StoreVar, nameOperand(s.Name), val)
		}
	case *FuncDeclStmt:
		irGen.genFuncDecl(s)
	case *ExpressionStmt:
		irGen.genExpr(s.Expression)
	case *IfStmt:
		irGen.genIf(s)
	case *WhileStmt:
		irGen.genWhile(s)
	case *LoopTimesStmt:
		irGen.genLoopTimes(s)
	case *LoopInStmt:
		irGen.genLoopIn(s)
	case *ReturnStmt:
		if s.Val != nil {
			val := irGen.genExpr(s.Val)
			irGen.cur.emit(Return, val)
			return
		}
		irGen.cur.emit(Return)
	case *BlockStmt:
		for _, child := range s.Stmts {
			irGen.genStmt(child)
		}
	case *PrintStmt:
		val := irGen.genExpr(s.Val)
		irGen.cur.emit(Print, val)
	case *InputStmt:
		irGen.cur.emit(Input, nameOperand(s.Name))
	}
}

// genFuncDecl opens a fresh IRFunction for the body and restores the
// enclosing one afterwards; nested declarations end up hoisted to the top
// level of the IR program.
func (irGen *IRGenerator) genFuncDecl(s *FuncDeclStmt) {
	outer := irGen.cur
	irGen.cur = irGen.pushFunction(s.Name, s.Params)
	for _, stmt := range s.Body.Stmts {
		irGen.genStmt(stmt)
	}
	irGen.sealFunction()
	irGen.cur = outer
}

// if: cond JUMP_IF_FALSE else; then; JUMP end; LABEL else; else?; LABEL end
func (irGen *IRGenerator) genIf(s *IfStmt) {
	cond := irGen.genExpr(s.Cond)
	elseLabel := irGen.cur.newLabel()
	endLabel := irGen.cur.newLabel()
	irGen.cur.emit(JumpIfFalse, cond, labelOperand(elseLabel))
	irGen.genStmt(s.Then)
	irGen.cur.emit(Jump, labelOperand(endLabel))
	irGen.cur.emit(Label, labelOperand(elseLabel))
	if s.Else != nil {
		irGen.genStmt(s.Else)
	}
	irGen.cur.emit(Label, labelOperand(endLabel))
}

// while: LABEL loop; cond JUMP_IF_FALSE end; body; JUMP loop; LABEL end
func (irGen *IRGenerator) genWhile(s *WhileStmt) {
	loopLabel := irGen.cur.newLabel()
	endLabel := irGen.cur.newLabel()
	irGen.cur.emit(Label, labelOperand(loopLabel))
	cond := irGen.genExpr(s.Cond)
	irGen.cur.emit(JumpIfFalse, cond, labelOperand(endLabel))
	irGen.genStmt(s.Body)
	irGen.cur.emit(Jump, labelOperand(loopLabel))
	irGen.cur.emit(Label, labelOperand(endLabel))
}

// loop <expr> times lowers to a counted while: an index temporary runs
// from 0 to the count evaluated once up front.
func (irGen *IRGenerator) genLoopTimes(s *LoopTimesStmt) {
	count := irGen.genExpr(s.Count)
	index := irGen.cur.newTemp()
	irGen.cur.emit(LoadConst, index, literalOperand(Value{Kind: IntValue, Int: 0}))
	loopLabel := irGen.cur.newLabel()
	endLabel := irGen.cur.newLabel()
	irGen.cur.emit(Label, labelOperand(loopLabel))
	cond := irGen.cur.newTemp()
	irGen.cur.emit(BinaryOp, cond, index, nameOperand("<"), count)
	irGen.cur.emit(JumpIfFalse, cond, labelOperand(endLabel))
	irGen.genStmt(s.Body)
	irGen.genIncrement(index)
	irGen.cur.emit(Jump, labelOperand(loopLabel))
	irGen.cur.emit(Label, labelOperand(endLabel))
}

// loop <ident> in <expr> is the same counted while over the collection's
// length; each pass rebinds the loop variable to the current element.
func (irGen *IRGenerator) genLoopIn(s *LoopInStmt) {
	collection := irGen.genExpr(s.Collection)
	length := irGen.cur.newTemp()
	irGen.cur.emit(MemberGet, length, collection, nameOperand("length"))
	index := irGen.cur.newTemp()
	irGen.cur.emit(LoadConst, index, literalOperand(Value{Kind: IntValue, Int: 0}))
	loopLabel := irGen.cur.newLabel()
	endLabel := irGen.cur.newLabel()
	irGen.cur.emit(Label, labelOperand(loopLabel))
	cond := irGen.cur.newTemp()
	irGen.cur.emit(BinaryOp, cond, index, nameOperand("<"), length)
	irGen.cur.emit(JumpIfFalse, cond, labelOperand(endLabel))
	elem := irGen.cur.newTemp()
	irGen.cur.emit(ArrayGet, elem, collection, index)
	irGen.cur.emit(StoreVar, nameOperand(s.Var), elem)
	irGen.genStmt(s.Body)
	irGen.genIncrement(index)
	irGen.cur.emit(Jump, labelOperand(loopLabel))
	irGen.cur.emit(Label, labelOperand(endLabel))
}

func (irGen *IRGenerator) genIncrement(index Operand) {
	one := irGen.cur.newTemp()
	irGen.cur.emit(LoadConst, one, literalOperand(Value{Kind: IntValue, Int: 1}))
	irGen.cur.emit(BinaryOp, index, index, nameOperand("+"), one)
}

func (irGen *IRGenerator) genExpr(expr Expr) Operand {
	switch e := expr.(type) {
	case *LiteralExpr:
		result := irGen.cur.newTemp()
		irGen.cur.emit(LoadConst, result, literalOperand(e.Val))
		return result
	case *VariableExpr:
		result := irGen.cur.newTemp()
		irGen.cur.emit(LoadVar, result, nameOperand(e.Name))
		return result
	case *BinaryExpr:
		if e.Op == AssignTP {
			return irGen.genAssignment(e)
		}
		left := irGen.genExpr(e.Left)
		right := irGen.genExpr(e.Right)
		result := irGen.cur.newTemp()
		irGen.cur.emit(BinaryOp, result, left, nameOperand(operatorText[e.Op]), right)
		return result
	case *UnaryExpr:
		operand := irGen.genExpr(e.Operand)
		result := irGen.cur.newTemp()
		irGen.cur.emit(UnaryOp, result, nameOperand(operatorText[e.Op]), operand)
		return result
	case *CallExpr:
		return irGen.genCall(e)
	case *ArrayLiteralExpr:
		result := irGen.cur.newTemp()
		operands := make([]Operand, 0, len(e.Elems)+1)
		operands = append(operands, result)
		for _, elem := range e.Elems {
			operands = append(operands, irGen.genExpr(elem))
		}
		irGen.cur.emit(ArrayNew, operands...)
		return result
	case *IndexExpr:
		array := irGen.genExpr(e.Array)
		index := irGen.genExpr(e.Index)
		result := irGen.cur.newTemp()
		irGen.cur.emit(ArrayGet, result, array, index)
		return result
	case *MemberExpr:
		object := irGen.genExpr(e.Object)
		result := irGen.cur.newTemp()
		irGen.cur.emit(MemberGet, result, object, nameOperand(e.Member))
		return result
	}
	return Operand{}
}

// genAssignment stores and then yields the stored value, so assignments
// chain and nest as expressions.
func (irGen *IRGenerator) genAssignment(e *BinaryExpr) Operand {
	val := irGen.genExpr(e.Right)
	switch target := e.Left.(type) {
	case *VariableExpr:
		irGen.cur.emit(StoreVar, nameOperand(target.Name), val)
	case *IndexExpr:
		array := irGen.genExpr(target.Array)
		index := irGen.genExpr(target.Index)
		irGen.cur.emit(ArraySet, array, index, val)
	}
	return val
}

func (irGen *IRGenerator) genCall(e *CallExpr) Operand {
	args := make([]Operand, 0, len(e.Args))
	for _, arg := range e.Args {
		args = append(args, irGen.genExpr(arg))
	}
	result := irGen.cur.newTemp()
	if conversions[e.Callee] {
		irGen.cur.emit(Convert, result, nameOperand(e.Callee), args[0])
		return result
	}
	operands := append([]Operand{result, nameOperand(e.Callee)}, args...)
	irGen.cur.emit(Call, operands...)
	return result
}
