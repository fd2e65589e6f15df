package bytecode

import (
	"encoding/binary"
	"fmt"
)

type Opcode byte

const (
	OpPushConstant Opcode = iota + 1
	OpPop
	OpDup
	OpLoad
	OpStore
	OpNew
	OpGetField
	OpSetField
	OpAdd
	OpSub
	OpMul
	OpNeg
	OpIntToFloat
	OpFloatDiv
	OpNanoTime
	OpPrint
	OpInvokeVirtual
	OpInvokeStatic
	OpJump
	OpJumpIfTrue
	OpJumpIfEQ
	OpJumpIfNE
	OpJumpIfLT
	OpJumpIfLE
	OpJumpIfGT
	OpJumpIfGE
	OpReturn
	OpReturnValue

	lastOpcode = OpReturnValue
)

var OpcodeNames = [...]string{
	OpPushConstant:  "PUSH_CONST",
	OpPop:           "POP",
	OpDup:           "DUP",
	OpLoad:          "LOAD",
	OpStore:         "STORE",
	OpNew:           "NEW",
	OpGetField:      "GET_FIELD",
	OpSetField:      "SET_FIELD",
	OpAdd:           "ADD",
	OpSub:           "SUB",
	OpMul:           "MUL",
	OpNeg:           "NEG",
	OpIntToFloat:    "INT_TO_FLOAT",
	OpFloatDiv:      "FLOAT_DIV",
	OpNanoTime:      "NANOTIME",
	OpPrint:         "PRINT",
	OpInvokeVirtual: "INVOKE_VIRTUAL",
	OpInvokeStatic:  "INVOKE_STATIC",
	OpJump:          "JUMP",
	OpJumpIfTrue:    "JUMP_IF_TRUE",
	OpJumpIfEQ:      "JUMP_IF_EQ",
	OpJumpIfNE:      "JUMP_IF_NE",
	OpJumpIfLT:      "JUMP_IF_LT",
	OpJumpIfLE:      "JUMP_IF_LE",
	OpJumpIfGT:      "JUMP_IF_GT",
	OpJumpIfGE:      "JUMP_IF_GE",
	OpReturn:        "RETURN",
	OpReturnValue:   "RETURN_VALUE",
}

// OpcodeOperands contains the width in bytes of the operands of each opcode.
var OpcodeOperands = [...][]int{
	OpPushConstant:  {2},
	OpPop:           {},
	OpDup:           {},
	OpLoad:          {1},
	OpStore:         {1},
	OpNew:           {2},
	OpGetField:      {2},
	OpSetField:      {2},
	OpAdd:           {},
	OpSub:           {},
	OpMul:           {},
	OpNeg:           {},
	OpIntToFloat:    {},
	OpFloatDiv:      {},
	OpNanoTime:      {},
	OpPrint:         {},
	OpInvokeVirtual: {2},
	OpInvokeStatic:  {2},
	OpJump:          {2},
	OpJumpIfTrue:    {2},
	OpJumpIfEQ:      {2},
	OpJumpIfNE:      {2},
	OpJumpIfLT:      {2},
	OpJumpIfLE:      {2},
	OpJumpIfGT:      {2},
	OpJumpIfGE:      {2},
	OpReturn:        {},
	OpReturnValue:   {},
}

func (op Opcode) IsValid() bool {
	return op >= OpPushConstant && op <= lastOpcode
}

func (op Opcode) String() string {
	if op.IsValid() {
		return OpcodeNames[op]
	}
	return fmt.Sprintf("Opcode(%d)", byte(op))
}

// IsJump reports whether the operand of the opcode is an address in the routine.
func (op Opcode) IsJump() bool {
	return op >= OpJump && op <= OpJumpIfGE
}

// InstructionSize returns the size in bytes of an instruction with the given opcode.
func InstructionSize(op Opcode) int {
	size := 1
	for _, w := range OpcodeOperands[op] {
		size += w
	}
	return size
}

// MakeInstruction encodes an instruction, operands are big-endian.
func MakeInstruction(op Opcode, operands ...int) []byte {
	if !op.IsValid() {
		panic(fmt.Errorf("invalid opcode %d", op))
	}
	widths := OpcodeOperands[op]
	if len(operands) != len(widths) {
		panic(fmt.Errorf("%s expects %d operand(s), got %d", op, len(widths), len(operands)))
	}

	instruction := make([]byte, InstructionSize(op))
	instruction[0] = byte(op)

	offset := 1
	for i, operand := range operands {
		width := widths[i]
		if operand < 0 || operand >= 1<<(8*width) {
			panic(fmt.Errorf("operand %d of %s does not fit in %d byte(s)", operand, op, width))
		}
		switch width {
		case 1:
			instruction[offset] = byte(operand)
		case 2:
			binary.BigEndian.PutUint16(instruction[offset:], uint16(operand))
		}
		offset += width
	}
	return instruction
}

// ReadOperands decodes the operands of the instruction starting with op, ins starts
// right after the opcode. It returns the operands and the number of bytes read.
func ReadOperands(op Opcode, ins []byte) (operands []int, read int) {
	for _, width := range OpcodeOperands[op] {
		switch width {
		case 1:
			operands = append(operands, int(ins[read]))
		case 2:
			operands = append(operands, int(binary.BigEndian.Uint16(ins[read:])))
		}
		read += width
	}
	return
}
