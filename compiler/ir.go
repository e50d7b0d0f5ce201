package compiler

import (
	"fmt"
	"strings"
)

// mainFuncName is the synthesized function holding top-level statements.
const mainFuncName = "__main__"

// Opcode enumerates the closed instruction set of the linear IR.
type Opcode int

const (
	LoadConst   Opcode = iota // LOAD_CONST result, literal
	LoadVar                   // LOAD_VAR result, name
	StoreVar                  // STORE_VAR name, value
	BinaryOp                  // BINARY_OP result, left, opTag, right
	UnaryOp                   // UNARY_OP result, opTag, operand
	Jump                      // JUMP label
	JumpIfFalse               // JUMP_IF_FALSE cond, label
	JumpIfTrue                // JUMP_IF_TRUE cond, label
	Call                      // CALL result, callee, args...
	Return                    // RETURN value?
	Print                     // PRINT value
	Input                     // INPUT name
	ArrayNew                  // ARRAY_NEW result, elems...
	ArrayGet                  // ARRAY_GET result, array, index
	ArraySet                  // ARRAY_SET array, index, value
	MemberGet                 // MEMBER_GET result, object, member
	Label                     // LABEL name
	Convert                   // CONVERT result, conversion, value
	Nop                       // NOP
)

var opcodeNames = map[Opcode]string{
	LoadConst:   "LOAD_CONST",
	LoadVar:     "LOAD_VAR",
	StoreVar:    "STORE_VAR",
	BinaryOp:    "BINARY_OP",
	UnaryOp:     "UNARY_OP",
	Jump:        "JUMP",
	JumpIfFalse: "JUMP_IF_FALSE",
	JumpIfTrue:  "JUMP_IF_TRUE",
	Call:        "CALL",
	Return:      "RETURN",
	Print:       "PRINT",
	Input:       "INPUT",
	ArrayNew:    "ARRAY_NEW",
	ArrayGet:    "ARRAY_GET",
	ArraySet:    "ARRAY_SET",
	MemberGet:   "MEMBER_GET",
	Label:       "LABEL",
	Convert:     "CONVERT",
	Nop:         "NOP",
}

func (op Opcode) String() string { return opcodeNames[op] }

// OperandKind tags an instruction operand.
type OperandKind int

const (
	TempOperand    OperandKind = iota // a generator-issued temporary, t<N>
	LabelOperand                      // a jump target name
	NameOperand                       // a variable, callee, member or operator tag
	LiteralOperand                    // a constant that still knows its kind
)

// Operand is a typed instruction argument. Carrying the literal kind from
// the lexer all the way here lets the code generator emit constants
// without guessing their type from text shape.
type Operand struct {
	Kind OperandKind
	Temp int
	Text string
	Lit  Value
}

func tempOperand(n int) Operand        { return Operand{Kind: TempOperand, Temp: n} }
func labelOperand(name string) Operand { return Operand{Kind: LabelOperand, Text: name} }
func nameOperand(name string) Operand  { return Operand{Kind: NameOperand, Text: name} }
func literalOperand(val Value) Operand { return Operand{Kind: LiteralOperand, Lit: val} }

func (operand Operand) String() string {
	switch operand.Kind {
	case TempOperand:
		return fmt.Sprintf("t%d", operand.Temp)
	case LabelOperand, NameOperand:
		return operand.Text
	default:
		return operand.Lit.String()
	}
}

// Instruction is one IR operation. Operand arity and meaning are fixed per
// opcode, as documented on the Opcode constants.
type Instruction struct {
	Op       Opcode
	Operands []Operand
}

func (inst Instruction) String() string {
	if len(inst.Operands) == 0 {
		return inst.Op.String()
	}
	parts := make([]string, len(inst.Operands))
	for i, operand := range inst.Operands {
		parts[i] = operand.String()
	}
	return inst.Op.String() + " " + strings.Join(parts, ", ")
}

// IRFunction is one compiled function body. The temp and label counters
// live on the function itself, so numbering restarts with every function
// and generation never leans on shared generator state.
type IRFunction struct {
	Name         string
	Params       []string
	Instructions []Instruction

	tempCount  int
	labelCount int
}

func (fn *IRFunction) newTemp() Operand {
	operand := tempOperand(fn.tempCount)
	fn.tempCount++
	return operand
}

func (fn *IRFunction) newLabel() string {
	name := fmt.Sprintf("L%d", fn.labelCount)
	fn.labelCount++
	return name
}

func (fn *IRFunction) emit(op Opcode, operands ...Operand) {
	fn.Instructions = append(fn.Instructions, Instruction{Op: op, Operands: operands})
}

// Dump renders the function header and one instruction per line.
func (fn *IRFunction) Dump() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "func %s(%s):\n", fn.Name, strings.Join(fn.Params, ", "))
	for _, inst := range fn.Instructions {
		sb.WriteString("  ")
		sb.WriteString(inst.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// IRProgram holds the implicit top-level function first, then user
// functions in declaration order.
type IRProgram struct {
	Functions []*IRFunction
}

func (program *IRProgram) Dump() string {
	var sb strings.Builder
	for i, fn := range program.Functions {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(fn.Dump())
	}
	return sb.String()
}
