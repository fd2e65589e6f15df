package bytecode

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/maruel/natural"
)

// Disassemble writes a textual representation of the program, classes are listed in
// natural order and routines in declaration order.
func (p *Program) Disassemble(w io.Writer) error {
	bw := bufio.NewWriter(w)

	names := make([]string, 0, len(p.Classes))
	for name := range p.Classes {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return natural.Less(names[i], names[j])
	})

	fmt.Fprintf(bw, "program %s (entry %s.%s)\n", p.ID, p.Entry.Class, p.Entry.Routine)
	for _, name := range names {
		bw.WriteByte('\n')
		p.Classes[name].disassemble(bw)
	}
	return bw.Flush()
}

func (c *Class) Disassemble(w io.Writer) error {
	bw := bufio.NewWriter(w)
	c.disassemble(bw)
	return bw.Flush()
}

func (c *Class) disassemble(w *bufio.Writer) {
	fmt.Fprintf(w, "class %s\n", c.Name)
	for _, field := range c.Fields {
		fmt.Fprintf(w, "  field %s %s\n", field.Name, field.Kind)
	}
	for _, routine := range c.Routines {
		modifier := ""
		if routine.Static {
			modifier = "static "
		}
		fmt.Fprintf(w, "  %sroutine %s/%d:%s (locals %d)\n", modifier, routine.Name, routine.Params, routine.Returns, routine.Locals)
		for _, line := range c.DisassembleRoutine(routine) {
			fmt.Fprintf(w, "    %s\n", line)
		}
	}
}

// DisassembleRoutine returns one line per instruction of routine.
func (c *Class) DisassembleRoutine(routine *Routine) []string {
	var lines []string
	code := routine.Instructions

	for ip := 0; ip < len(code); {
		op := Opcode(code[ip])
		if !op.IsValid() {
			lines = append(lines, fmt.Sprintf("%04d %s", ip, op))
			ip++
			continue
		}

		operands, read := ReadOperands(op, code[ip+1:])
		line := &strings.Builder{}
		fmt.Fprintf(line, "%04d %s", ip, op)

		for _, operand := range operands {
			fmt.Fprintf(line, " %d", operand)
		}

		switch op {
		case OpPushConstant, OpNew, OpGetField, OpSetField, OpInvokeStatic, OpInvokeVirtual:
			if operands[0] < len(c.Constants) {
				fmt.Fprintf(line, " (%s)", c.Constants[operands[0]])
			}
		}

		lines = append(lines, line.String())
		ip += 1 + read
	}
	return lines
}
