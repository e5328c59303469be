// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Macro represents a macro definition in the assembly language.
type Macro struct {
	LineNo int      // Line number of the macro definition.
	Args   []string // Arguments for the macro.
	Lines  []string // Lines of macro text to expand.
}

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO":      "0",
	"MEMORY_SIZE": fmt.Sprintf("%#x", MEMORY_SIZE),
	"MAX_ADDRESS": fmt.Sprintf("%#x", MAX_ADDRESS),
}

// Assembler is a single pass macro assembler for the 8080.
type Assembler struct {
	Verbose bool     // If set, verbosely logs the assembler actions.
	Opcode  []Opcode // List of generated opcodes.

	predefine map[string]string   // Predefines
	Label     map[string]int      // Map of labels to addresses.
	Equate    map[string]string   // Map of equates.
	Macro     map[string](*Macro) // Map of macros.

	addr int // Address of the next assembled byte.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// operandNames are the register and register pair operands.
var operandNames = map[string]bool{
	"A": true, "B": true, "C": true, "D": true, "E": true,
	"H": true, "L": true, "M": true, "SP": true, "PSW": true,
}

// slotInstructions maps a mnemonic with its operand placeholder replaced
// by '#' to the opcode table entry, e.g. "MVI B,#". Built on first use,
// after the decode table is complete.
var slotInstructions = sync.OnceValue(func() map[string]*Instruction {
	slots := map[string]*Instruction{}
	for inst := range Instructions() {
		if inst.Mnemonic == "???" {
			continue
		}
		key := inst.Mnemonic
		for _, slot := range []string{"d16", "a16", "d8"} {
			key = strings.Replace(key, slot, "#", 1)
		}
		slots[key] = inst
	}
	return slots
})

// valueOf returns the value of a simple word.
// Accepts Go integer syntax (0x1f, 0b101, 31), Intel hex (1Fh, 0FFh), and '$'
// for the current address.
func (asm *Assembler) valueOf(word string) (value int64, err error) {
	if word == "$" {
		value = int64(asm.addr)
		return
	}
	if word[0] == '\'' {
		// Character quotes should have been expanded into
		// values in parseLine()
		err = ErrParseCharacter(word[1 : len(word)-1])
		return
	}

	// Intel hex needs a leading digit, so 'each' stays a label.
	if len(word) > 1 && (word[len(word)-1] == 'h' || word[len(word)-1] == 'H') && word[0] >= '0' && word[0] <= '9' {
		value, err = strconv.ParseInt(word[:len(word)-1], 16, 32)
	} else {
		value, err = strconv.ParseInt(word, 0, 32)
	}
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	return
}

// isIdentifier returns true if word could name a label.
var isIdentifier = regexp.MustCompile(`^[A-Za-z_.@][A-Za-z0-9_.@]*$`).MatchString

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int64, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, addr := range asm.Label {
		pred[key] = starlark.MakeInt(addr)
	}
	for key, str := range asm.Equate {
		var v int64
		v, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			err = nil
			continue
		}
		pred[key] = starlark.MakeInt64(v)
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value, ok = st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	return
}

// parseLine parses a single line as an opcode.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do 'x' evaluations
	re := regexp.MustCompile(`'\\?[^']'`)
	line = re.ReplaceAllStringFunc(line, func(word string) string {
		str := word[1 : len(word)-1]
		if str[0] == '\\' {
			str = str[1:]
			switch str {
			case "\\":
				str = "\\"
			case "n":
				str = "\n"
			case "r":
				str = "\r"
			case "e":
				str = "\033"
			case "0":
				str = "\000"
			default:
				return word
			}
		} else if len(str) != 1 {
			return word
		}
		return fmt.Sprintf("%v", str[0])
	})

	// Do $() evaluations
	re = regexp.MustCompile(`\$\([^\$]*\)`)
	line = re.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%v", value)
	})
	if err != nil {
		return
	}

	words = strings.FieldsFunc(line, func(r rune) bool {
		return r == ' ' || r == '\t' || r == ','
	})

	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if len(words) > 0 && words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for n, word := range words {
		// Check for equate next
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
		}
	}

	for strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}

		if asm.Label == nil {
			asm.Label = make(map[string]int, 16)
		}
		asm.Label[label] = asm.addr
		words = words[1:]
		if len(words) == 0 {
			return
		}
	}

	// .macro processing
	macro, ok := asm.Macro[words[0]]
	if ok {
		name := words[0]

		args := words[1:]
		if len(args) != len(macro.Args) {
			err = ErrMacroSyntax
			return
		}
		// Turn args into equs
		old_equate := maps.Clone(asm.Equate)
		for n, arg := range macro.Args {
			asm.Equate[arg] = words[1+n]
		}
		defer func() { asm.Equate = old_equate }()

		// '@' makes a name local to this invocation.
		local := fmt.Sprintf("%v_%v_", name, lineno)
		for n, line := range macro.Lines {
			macro_lineno := macro.LineNo + n

			line = strings.ReplaceAll(line, "@", local)
			words, err = asm.parseLine(line, macro_lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: macro_lineno, Err: err}
				err = &ErrSyntax{LineNo: macro_lineno, Line: line, Err: err}
				return
			}

			err = asm.parseWords(words, macro_lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: macro_lineno, Err: err}
				err = &ErrSyntax{LineNo: macro_lineno, Line: line, Err: err}
				return
			}
		}
		words = nil
		return
	}

	return
}

// stripComment removes a ';' comment, ignoring ';' inside character quotes.
func stripComment(text string) string {
	quoted := false
	for n := 0; n < len(text); n++ {
		switch text[n] {
		case '\\':
			if quoted {
				n++
			}
		case '\'':
			quoted = !quoted
		case ';':
			if !quoted {
				return text[:n]
			}
		}
	}
	return text
}

// Parse parses an input stream into a Program containing opcodes.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {

	scanner := bufio.NewScanner(input)

	var line string
	var lineno int
	var macro *Macro

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	clear(asm.Label)
	asm.Opcode = asm.Opcode[:0]
	asm.addr = 0
	if asm.Macro == nil {
		asm.Macro = make(map[string](*Macro))
	}
	clear(asm.Macro)
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		line = strings.TrimSpace(stripComment(text))
		words := strings.Fields(line)

		// .macro NAME arg...
		if len(words) > 0 && words[0] == ".macro" {
			if macro != nil {
				err = ErrMacroNesting
				return
			}
			if len(words) < 2 {
				err = ErrMacroSyntax
				return
			}
			_, ok := asm.Macro[words[1]]
			if ok {
				err = ErrMacroDuplicate
				return
			}
			macro = &Macro{
				LineNo: lineno + 1,
			}
			if len(words) > 2 {
				macro.Args = words[2:]
			}
			asm.Macro[words[1]] = macro
			continue
		}

		if len(words) > 0 && words[0] == ".endm" {
			if macro == nil {
				err = ErrMacroLonelyEndm
				return
			}
			macro = nil
			continue
		}

		if macro != nil {
			macro.Lines = append(macro.Lines, line)
			continue
		}

		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	if macro != nil {
		err = ErrMacroLonely
		return
	}

	// Final linking of forward referenced labels.
	for n := range asm.Opcode {
		op := &asm.Opcode[n]

		if len(op.LinkLabel) == 0 {
			continue
		}
		label := op.LinkLabel
		addr, ok := asm.Label[label]
		if !ok {
			lineno = op.LineNo
			line = strings.Join(op.Words, " ")
			err = ErrLabelMissing(label)
			return
		}
		if len(op.Bytes) != 3 {
			log.Fatalf("Unable to link label '%s' to line %d: %v", label, op.LineNo, op.Words)
		}
		op.Bytes[1] = uint8(addr)
		op.Bytes[2] = uint8(addr >> 8)
	}

	prog = &Program{
		Opcodes: slices.Clone(asm.Opcode),
	}

	return
}

// rangeCheck verifies value fits in an operand of width bytes, allowing
// both signed and unsigned spellings.
func rangeCheck(value int64, width int) (err error) {
	limit := int64(1) << (8 * width)
	if value >= limit || value < -(limit/2) {
		err = ErrValueRange
	}
	return
}

// parseData assembles the operands of a .db or .dw directive.
func (asm *Assembler) parseData(width int, args []string) (bytes []uint8, err error) {
	if len(args) == 0 {
		err = ErrDataSyntax
		return
	}

	for _, arg := range args {
		var value int64
		addr, is_label := asm.Label[arg]
		if is_label {
			value = int64(addr)
		} else {
			value, err = asm.valueOf(arg)
			if err != nil {
				return
			}
		}
		err = rangeCheck(value, width)
		if err != nil {
			return
		}
		bytes = append(bytes, uint8(value))
		if width == 2 {
			bytes = append(bytes, uint8(value>>8))
		}
	}

	return
}

// parseInstruction assembles an 8080 mnemonic and its operands.
func (asm *Assembler) parseInstruction(words []string) (bytes []uint8, label string, err error) {
	mnemonic := strings.ToUpper(words[0])
	args := words[1:]

	operands := make([]string, len(args))
	slot := -1
	for n, arg := range args {
		upper := strings.ToUpper(arg)
		if operandNames[upper] {
			operands[n] = upper
			continue
		}
		if slot >= 0 {
			err = ErrOpcodeExtraArgs
			return
		}
		slot = n
		operands[n] = upper
	}

	key := strings.TrimSpace(mnemonic + " " + strings.Join(operands, ","))

	// Fixed operand forms, e.g. "RST 7".
	inst, ok := slotInstructions()[key]
	if ok && slot >= 0 {
		slot = -1
	}

	if !ok && slot >= 0 {
		operands[slot] = "#"
		key = mnemonic + " " + strings.Join(operands, ",")
		inst, ok = slotInstructions()[key]
	}

	if !ok {
		if slot < 0 && !strings.Contains(key, " ") {
			// Mnemonic needs a value that was not supplied.
			_, needs := slotInstructions()[mnemonic+" #"]
			if needs {
				err = ErrOpcodeValueMissing
				return
			}
		}
		err = ErrOpcodeInvalid
		return
	}

	bytes = make([]uint8, inst.Length)
	bytes[0] = inst.Opcode

	if inst.Length == 1 {
		return
	}

	if slot < 0 {
		err = ErrOpcodeValueMissing
		return
	}

	arg := args[slot]
	width := inst.Length - 1

	var value int64
	addr, is_label := asm.Label[arg]
	if is_label {
		value = int64(addr)
	} else {
		value, err = asm.valueOf(arg)
		if err != nil {
			if width == 2 && isIdentifier(arg) {
				// Forward reference, patched after the final line.
				err = nil
				label = arg
			}
			return
		}
	}

	err = rangeCheck(value, width)
	if err != nil {
		return
	}

	bytes[1] = uint8(value)
	if width == 2 {
		bytes[2] = uint8(value >> 8)
	}

	return
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	var bytes []uint8
	var label string

	// no-op
	if len(words) == 0 {
		return
	}

	initial_words := words

	defer func() {
		if err != nil || len(bytes) == 0 {
			return
		}
		if asm.addr+len(bytes) > MEMORY_SIZE {
			err = ErrProgramSize
			return
		}
		opcode := Opcode{LineNo: lineno, Addr: asm.addr, Words: initial_words, Bytes: bytes, LinkLabel: label}
		asm.Opcode = append(asm.Opcode, opcode)
		asm.addr += len(bytes)
	}()

	switch words[0] {
	case ".org":
		if len(words) != 2 {
			err = ErrOrgSyntax
			return
		}
		var value int64
		value, err = asm.valueOf(words[1])
		if err != nil {
			return
		}
		if value < int64(asm.addr) {
			err = ErrOrgBackwards
			return
		}
		if value > MEMORY_SIZE {
			err = ErrProgramSize
			return
		}
		asm.addr = int(value)
	case ".db":
		bytes, err = asm.parseData(1, words[1:])
	case ".dw":
		bytes, err = asm.parseData(2, words[1:])
	default:
		bytes, label, err = asm.parseInstruction(words)
	}

	return
}
