package compiler

import (
	"fmt"
	"strconv"
	"strings"
)

const indentUnit = "    "

// pyBinaryOps maps source operators to their Python spelling. The concat
// operator has no direct counterpart and goes through a helper instead.
var pyBinaryOps = map[string]string{
	"+":  "+",
	"-":  "-",
	"*":  "*",
	"/":  "/",
	"%":  "%",
	"==": "==",
	"!=": "!=",
	">":  ">",
	"<":  "<",
	">=": ">=",
	"<=": "<=",
	"&&": "and",
	"||": "or",
}

// CodeGenerator renders an IRProgram as Python 3 source. Each function
// body is a dispatch loop over a program counter: every instruction owns
// one branch, jumps overwrite the counter, everything else advances it by
// one, and the counter running off the end leaves the loop.
type CodeGenerator struct {
	sb strings.Builder
}

func NewCodeGenerator() *CodeGenerator {
	return &CodeGenerator{}
}

func (codeGen *CodeGenerator) Generate(program *IRProgram) (string, error) {
	codeGen.sb.Reset()
	codeGen.writeHeader()
	for _, fn := range program.Functions {
		if err := codeGen.writeFunction(fn); err != nil {
			return "", err
		}
		codeGen.sb.WriteString("\n")
	}
	codeGen.writeFooter()
	return codeGen.sb.String(), nil
}

func (codeGen *CodeGenerator) writeHeader() {
	codeGen.writeLine(0, "# Generated by adderc. Do not edit.")
	codeGen.sb.WriteString("\n")
	codeGen.writeLine(0, "def _adder_concat(a, b):")
	codeGen.writeLine(1, "return str(a) + str(b)")
	codeGen.sb.WriteString("\n")
	codeGen.writeLine(0, "def _adder_input():")
	codeGen.writeLine(1, "try:")
	codeGen.writeLine(2, "return input()")
	codeGen.writeLine(1, "except EOFError:")
	codeGen.writeLine(2, "return \"\"")
	codeGen.sb.WriteString("\n")
}

func (codeGen *CodeGenerator) writeFooter() {
	codeGen.writeLine(0, "if __name__ == \"__main__\":")
	codeGen.writeLine(1, "%s()", mainFuncName)
}

// collectLabels maps each label to the index of its LABEL instruction so
// the branch for a jump can be resolved while rendering.
func (codeGen *CodeGenerator) collectLabels(fn *IRFunction) (map[string]int, error) {
	labels := map[string]int{}
	for i, inst := range fn.Instructions {
		if inst.Op != Label {
			continue
		}
		name := inst.Operands[0].Text
		if _, ok := labels[name]; ok {
			return nil, &Error{Phase: PhaseCodeGen, Msg: fmt.Sprintf("duplicate label %s in function %s", name, fn.Name)}
		}
		labels[name] = i
	}
	return labels, nil
}

func (codeGen *CodeGenerator) writeFunction(fn *IRFunction) error {
	labels, err := codeGen.collectLabels(fn)
	if err != nil {
		return err
	}
	codeGen.writeLine(0, "def %s(%s):", fn.Name, strings.Join(fn.Params, ", "))
	if len(fn.Instructions) == 0 {
		codeGen.writeLine(1, "pass")
		return nil
	}
	codeGen.writeLine(1, "_pc = 0")
	codeGen.writeLine(1, "while True:")
	for i, inst := range fn.Instructions {
		branch := "elif"
		if i == 0 {
			branch = "if"
		}
		codeGen.writeLine(2, "%s _pc == %d:", branch, i)
		if err := codeGen.writeInstruction(fn, inst, labels); err != nil {
			return err
		}
	}
	codeGen.writeLine(2, "else:")
	codeGen.writeLine(3, "break")
	return nil
}

// writeInstruction renders one dispatch branch. Control transfers write
// their own program counter update and return early; every other opcode
// falls through to the shared increment.
func (codeGen *CodeGenerator) writeInstruction(fn *IRFunction, inst Instruction, labels map[string]int) error {
	ops := inst.Operands
	switch inst.Op {
	case LoadConst:
		codeGen.writeLine(3, "%s = %s", codeGen.pyOperand(ops[0]), codeGen.pyOperand(ops[1]))
	case LoadVar:
		codeGen.writeLine(3, "%s = %s", codeGen.pyOperand(ops[0]), codeGen.pyOperand(ops[1]))
	case StoreVar:
		codeGen.writeLine(3, "%s = %s", codeGen.pyOperand(ops[0]), codeGen.pyOperand(ops[1]))
	case BinaryOp:
		expr, err := codeGen.pyBinary(fn, ops[2].Text, codeGen.pyOperand(ops[1]), codeGen.pyOperand(ops[3]))
		if err != nil {
			return err
		}
		codeGen.writeLine(3, "%s = %s", codeGen.pyOperand(ops[0]), expr)
	case UnaryOp:
		expr, err := codeGen.pyUnary(fn, ops[1].Text, codeGen.pyOperand(ops[2]))
		if err != nil {
			return err
		}
		codeGen.writeLine(3, "%s = %s", codeGen.pyOperand(ops[0]), expr)
	case Jump:
		target, err := codeGen.resolveLabel(fn, labels, ops[0].Text)
		if err != nil {
			return err
		}
		codeGen.writeLine(3, "_pc = %d", target)
		return nil
	case JumpIfFalse:
		target, err := codeGen.resolveLabel(fn, labels, ops[1].Text)
		if err != nil {
			return err
		}
		codeGen.writeLine(3, "if not %s:", codeGen.pyOperand(ops[0]))
		codeGen.writeLine(4, "_pc = %d", target)
		codeGen.writeLine(3, "else:")
		codeGen.writeLine(4, "_pc += 1")
		return nil
	case JumpIfTrue:
		target, err := codeGen.resolveLabel(fn, labels, ops[1].Text)
		if err != nil {
			return err
		}
		codeGen.writeLine(3, "if %s:", codeGen.pyOperand(ops[0]))
		codeGen.writeLine(4, "_pc = %d", target)
		codeGen.writeLine(3, "else:")
		codeGen.writeLine(4, "_pc += 1")
		return nil
	case Call:
		args := make([]string, 0, len(ops)-2)
		for _, arg := range ops[2:] {
			args = append(args, codeGen.pyOperand(arg))
		}
		codeGen.writeLine(3, "%s = %s(%s)", codeGen.pyOperand(ops[0]), ops[1].Text, strings.Join(args, ", "))
	case Return:
		if len(ops) == 0 {
			codeGen.writeLine(3, "return")
			return nil
		}
		codeGen.writeLine(3, "return %s", codeGen.pyOperand(ops[0]))
		return nil
	case Print:
		codeGen.writeLine(3, "print(%s)", codeGen.pyOperand(ops[0]))
	case Input:
		codeGen.writeLine(3, "%s = _adder_input()", codeGen.pyOperand(ops[0]))
	case ArrayNew:
		elems := make([]string, 0, len(ops)-1)
		for _, elem := range ops[1:] {
			elems = append(elems, codeGen.pyOperand(elem))
		}
		codeGen.writeLine(3, "%s = [%s]", codeGen.pyOperand(ops[0]), strings.Join(elems, ", "))
	case ArrayGet:
		codeGen.writeLine(3, "%s = %s[%s]", codeGen.pyOperand(ops[0]), codeGen.pyOperand(ops[1]), codeGen.pyOperand(ops[2]))
	case ArraySet:
		codeGen.writeLine(3, "%s[%s] = %s", codeGen.pyOperand(ops[0]), codeGen.pyOperand(ops[1]), codeGen.pyOperand(ops[2]))
	case MemberGet:
		// length has a fixed translation; any other member becomes a plain
		// attribute read that resolves at run time.
		if member := ops[2].Text; member == "length" {
			codeGen.writeLine(3, "%s = len(%s)", codeGen.pyOperand(ops[0]), codeGen.pyOperand(ops[1]))
		} else {
			codeGen.writeLine(3, "%s = %s.%s", codeGen.pyOperand(ops[0]), codeGen.pyOperand(ops[1]), member)
		}
	case Convert:
		codeGen.writeLine(3, "%s = %s(%s)", codeGen.pyOperand(ops[0]), ops[1].Text, codeGen.pyOperand(ops[2]))
	case Label, Nop:
		// Nothing to execute; the branch just advances.
	default:
		return &Error{Phase: PhaseCodeGen, Msg: fmt.Sprintf("unsupported opcode %s in function %s", inst.Op, fn.Name)}
	}
	codeGen.writeLine(3, "_pc += 1")
	return nil
}

func (codeGen *CodeGenerator) resolveLabel(fn *IRFunction, labels map[string]int, name string) (int, error) {
	target, ok := labels[name]
	if !ok {
		return 0, &Error{Phase: PhaseCodeGen, Msg: fmt.Sprintf("jump to undefined label %s in function %s", name, fn.Name)}
	}
	return target, nil
}

func (codeGen *CodeGenerator) pyBinary(fn *IRFunction, op, left, right string) (string, error) {
	if op == "^" {
		return fmt.Sprintf("_adder_concat(%s, %s)", left, right), nil
	}
	pyOp, ok := pyBinaryOps[op]
	if !ok {
		return "", &Error{Phase: PhaseCodeGen, Msg: fmt.Sprintf("unsupported binary operator '%s' in function %s", op, fn.Name)}
	}
	return fmt.Sprintf("%s %s %s", left, pyOp, right), nil
}

func (codeGen *CodeGenerator) pyUnary(fn *IRFunction, op, operand string) (string, error) {
	switch op {
	case "-":
		return "-" + operand, nil
	case "!":
		return "not " + operand, nil
	}
	return "", &Error{Phase: PhaseCodeGen, Msg: fmt.Sprintf("unsupported unary operator '%s' in function %s", op, fn.Name)}
}

// pyOperand renders an operand as a Python expression. Temps are plain
// local names, so composed expressions never need parentheses.
func (codeGen *CodeGenerator) pyOperand(op Operand) string {
	switch op.Kind {
	case TempOperand:
		return fmt.Sprintf("t%d", op.Temp)
	case LiteralOperand:
		return codeGen.pyLiteral(op.Lit)
	default:
		return op.Text
	}
}

func (codeGen *CodeGenerator) pyLiteral(val Value) string {
	switch val.Kind {
	case IntValue:
		return strconv.FormatInt(val.Int, 10)
	case FloatValue:
		return formatFloat(val.Float)
	case BoolValue:
		if val.Bool {
			return "True"
		}
		return "False"
	case StringValue:
		return strconv.Quote(val.Str)
	}
	return ""
}

func (codeGen *CodeGenerator) writeLine(depth int, format string, args ...interface{}) {
	codeGen.sb.WriteString(strings.Repeat(indentUnit, depth))
	if len(args) == 0 {
		codeGen.sb.WriteString(format)
	} else {
		codeGen.sb.WriteString(fmt.Sprintf(format, args...))
	}
	codeGen.sb.WriteString("\n")
}
