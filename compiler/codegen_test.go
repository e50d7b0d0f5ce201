package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func compileToPython(t *testing.T, src string) string {
	result, err := Compile(src, Options{})
	assert.Nil(t, err, src)
	return result.Output
}

func TestCodeGenerator_DispatchSkeleton(t *testing.T) {
	output := compileToPython(t, "print 1\n")
	assert.Contains(t, output, "def __main__():\n")
	assert.Contains(t, output, "    _pc = 0\n    while True:\n        if _pc == 0:\n")
	assert.Contains(t, output, "        else:\n            break\n")
	assert.Contains(t, output, "            return\n")
}

func TestCodeGenerator_Assignment(t *testing.T) {
	output := compileToPython(t, "var x = 1\nx = x + 2\nprint x\n")
	assert.Contains(t, output, "            t0 = 1\n")
	assert.Contains(t, output, "            x = t0\n")
	assert.Contains(t, output, "            t3 = t1 + t2\n")
	assert.Contains(t, output, "            x = t3\n")
	assert.Contains(t, output, "            print(t4)\n")
}

func TestCodeGenerator_FunctionAndCall(t *testing.T) {
	src := "func add(a, b):\n" +
		"    return a + b\n" +
		"print add(1, 2)\n"
	output := compileToPython(t, src)
	assert.Contains(t, output, "def add(a, b):\n")
	assert.Contains(t, output, "            t2 = add(t0, t1)\n")
	assert.Contains(t, output, "            t2 = t0 + t1\n")
	assert.Contains(t, output, "            return t2\n")
}

// Jumps overwrite the program counter with the target instruction index;
// everything else advances it by one.
func TestCodeGenerator_Branches(t *testing.T) {
	src := "if true:\n" +
		"    print 1\n" +
		"else:\n" +
		"    print 2\n"
	output := compileToPython(t, src)
	assert.Contains(t, output, "            t0 = True\n")
	conditional := "        elif _pc == 1:\n" +
		"            if not t0:\n" +
		"                _pc = 5\n" +
		"            else:\n" +
		"                _pc += 1\n"
	assert.Contains(t, output, conditional)
	assert.Contains(t, output, "        elif _pc == 4:\n            _pc = 8\n")
	assert.Contains(t, output, "        elif _pc == 9:\n            return\n")
}

func TestCodeGenerator_Literals(t *testing.T) {
	output := compileToPython(t, "print 2.0\nprint \"hi\"\nprint true\nprint false\nprint \"123\"\n")
	assert.Contains(t, output, "            t0 = 2.0\n")
	assert.Contains(t, output, "            t1 = \"hi\"\n")
	assert.Contains(t, output, "            t2 = True\n")
	assert.Contains(t, output, "            t3 = False\n")
	// A string that happens to spell a number keeps its quotes; the
	// literal kind travels with the operand instead of being re-read
	// from the text.
	assert.Contains(t, output, "            t4 = \"123\"\n")
}

func TestCodeGenerator_Operators(t *testing.T) {
	src := "print 1 ^ 2\n" +
		"print true && false\n" +
		"print true || false\n" +
		"print !true\n" +
		"print 7 % 3\n"
	output := compileToPython(t, src)
	assert.Contains(t, output, "            t2 = _adder_concat(t0, t1)\n")
	assert.Contains(t, output, "            t5 = t3 and t4\n")
	assert.Contains(t, output, "            t8 = t6 or t7\n")
	assert.Contains(t, output, "            t10 = not t9\n")
	assert.Contains(t, output, "            t13 = t11 % t12\n")
}

func TestCodeGenerator_ArraysLengthInput(t *testing.T) {
	src := "var a = [1, 2]\n" +
		"print a.length\n" +
		"var x\n" +
		"input x\n" +
		"print x\n"
	output := compileToPython(t, src)
	assert.Contains(t, output, "            t0 = [t1, t2]\n")
	assert.Contains(t, output, "            t4 = len(t3)\n")
	assert.Contains(t, output, "            x = _adder_input()\n")
}

func TestCodeGenerator_HelpersAndGuard(t *testing.T) {
	output := compileToPython(t, "print 1\n")
	assert.Contains(t, output, "# Generated by adderc. Do not edit.\n")
	assert.Contains(t, output, "def _adder_concat(a, b):\n    return str(a) + str(b)\n")
	assert.Contains(t, output, "def _adder_input():\n    try:\n        return input()\n    except EOFError:\n        return \"\"\n")
	assert.Contains(t, output, "if __name__ == \"__main__\":\n    __main__()\n")
}

func TestCodeGenerator_EmptyFunctionBody(t *testing.T) {
	fn := &IRFunction{Name: "empty"}
	output, err := NewCodeGenerator().Generate(&IRProgram{Functions: []*IRFunction{fn}})
	assert.Nil(t, err)
	assert.Contains(t, output, "def empty():\n    pass\n")
}

func TestCodeGenerator_DuplicateLabel(t *testing.T) {
	fn := &IRFunction{Name: "broken"}
	fn.emit(Label, labelOperand("L0"))
	fn.emit(Label, labelOperand("L0"))
	_, err := NewCodeGenerator().Generate(&IRProgram{Functions: []*IRFunction{fn}})
	assert.NotNil(t, err)
	compileErr, ok := err.(*Error)
	assert.True(t, ok)
	assert.Equal(t, PhaseCodeGen, compileErr.Phase)
	assert.Contains(t, err.Error(), "duplicate label L0 in function broken")
}

func TestCodeGenerator_UndefinedJump(t *testing.T) {
	fn := &IRFunction{Name: "broken"}
	fn.emit(Jump, labelOperand("L9"))
	_, err := NewCodeGenerator().Generate(&IRProgram{Functions: []*IRFunction{fn}})
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "jump to undefined label L9 in function broken")
}

// length is the one member with a dedicated translation; any other
// member is emitted as an attribute read and resolves at run time.
func TestCodeGenerator_MemberAccess(t *testing.T) {
	output := compileToPython(t, "var a = [1]\nprint a.size\n")
	assert.Contains(t, output, "            t3 = t2.size\n")

	output = compileToPython(t, "var a = [1]\nprint a.length\n")
	assert.Contains(t, output, "            t3 = len(t2)\n")
}
