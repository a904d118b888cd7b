// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"fmt"
	"io"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
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
	"LINENO": "0",
}

// Assembler is a single pass macro assembler for Intel 8080 mnemonics.
// Label references are linked once the whole input has been read.
type Assembler struct {
	Verbose bool     // If set, verbosely logs the assembler actions.
	Table   *Table   // Instruction set; nil selects the documented set.
	Opcode  []Opcode // List of generated opcodes.

	predefine map[string]string   // Predefines
	Label     map[string]int      // Map of labels to addresses.
	Equate    map[string]string   // Map of equates.
	Macro     map[string](*Macro) // Map of macros.

	address   int                   // Current assembly address.
	templates map[string][]template // Mnemonic templates by name.
}

// template is an instruction's operand pattern, e.g. MVI [B D8].
type template struct {
	in       Instruction
	operands []string
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// buildTemplates indexes the instruction table by mnemonic.
func (asm *Assembler) buildTemplates() {
	tbl := asm.Table
	if tbl == nil {
		tbl = NewTable(Config{})
	}

	asm.templates = make(map[string][]template, 80)
	for _, in := range tbl.All() {
		if !in.Implemented() || in.Undocumented() {
			continue
		}
		name, args, _ := strings.Cut(in.Mnemonic, " ")
		var operands []string
		if len(args) > 0 {
			operands = strings.Split(args, ",")
		}
		asm.templates[name] = append(asm.templates[name], template{in: in, operands: operands})
	}
}

var reIdent = regexp.MustCompile(`^[A-Za-z_.?@][A-Za-z0-9_.?@]*$`)

// resolve follows equates until word is no longer one.
func (asm *Assembler) resolve(word string) string {
	for range 16 {
		equate, ok := asm.Equate[word]
		if !ok {
			break
		}
		word = equate
	}
	return word
}

// parseNumber parses Intel (0FFH, 1010B, 17O) and Go (0xff) style numbers.
func parseNumber(word string) (value int, err error) {
	lower := strings.ToLower(word)
	base := 0
	if !strings.HasPrefix(strings.TrimLeft(lower, "+-"), "0x") && len(lower) > 1 {
		digits := lower[:len(lower)-1]
		switch lower[len(lower)-1] {
		case 'h':
			base = 16
			lower = digits
		case 'b':
			if strings.Trim(strings.TrimLeft(digits, "+-"), "01") == "" {
				base = 2
				lower = digits
			}
		case 'o', 'q':
			base = 8
			lower = digits
		}
	}

	v64, err := strconv.ParseInt(lower, base, 32)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	value = int(v64)
	return
}

// parseCharacter decodes a single quoted character literal.
func parseCharacter(word string) (value int, err error) {
	data, err := unquote(word)
	if err != nil || len(data) != 1 {
		err = ErrParseCharacter(word)
		return
	}
	value = int(data[0])
	return
}

// unquote decodes a single or double quoted literal.
func unquote(word string) (data []byte, err error) {
	if len(word) < 2 || word[0] != word[len(word)-1] {
		err = ErrDataSyntax
		return
	}

	body := word[1 : len(word)-1]
	for n := 0; n < len(body); n++ {
		c := body[n]
		if c == '\\' {
			n++
			if n == len(body) {
				err = ErrDataSyntax
				return
			}
			switch body[n] {
			case '\\', '\'', '"':
				c = body[n]
			case 'n':
				c = '\n'
			case 'r':
				c = '\r'
			case 't':
				c = '\t'
			case 'e':
				c = '\033'
			case '0':
				c = 0
			default:
				err = ErrDataSyntax
				return
			}
		}
		data = append(data, c)
	}

	return
}

// valueOf returns the value of an operand word, or the label it names.
func (asm *Assembler) valueOf(word string) (value int, label string, err error) {
	word = asm.resolve(word)
	switch {
	case len(word) == 0:
		err = ErrOperandInvalid
	case word == "$":
		value = asm.address
	case word[0] == '\'':
		value, err = parseCharacter(word)
	case word[0] >= '0' && word[0] <= '9', word[0] == '-', word[0] == '+':
		value, err = parseNumber(word)
	case reIdent.MatchString(word):
		label = word
	default:
		err = ErrParseNumber(word)
	}
	return
}

// putValue encodes value into size little-endian bytes.
func putValue(buf []byte, size int, value int) (err error) {
	switch size {
	case 1:
		if value < -0x80 || value > 0xff {
			err = ErrOperandRange
			return
		}
		buf[0] = uint8(value)
	case 2:
		if value < -0x8000 || value > 0xffff {
			err = ErrOperandRange
			return
		}
		buf[0] = uint8(value)
		buf[1] = uint8(value >> 8)
	}
	return
}

// parenEval does compile-time $(...) evaluations. Integer equates and the
// labels defined so far are visible to the expression.
func (asm *Assembler) parenEval(expr string) (value int, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key := range asm.Equate {
		if !reIdent.MatchString(key) {
			continue
		}
		v, label, verr := asm.valueOf(key)
		if verr != nil || len(label) > 0 {
			// Ignore non-integer equates. They may be registers
			// or something else.
			continue
		}
		pred[key] = starlark.MakeInt(v)
	}
	for key, addr := range asm.Label {
		if _, ok := pred[key]; !ok && reIdent.MatchString(key) {
			pred[key] = starlark.MakeInt(addr)
		}
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
	st_int64, ok := st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value = int(st_int64)
	return
}

// scanQuoted walks text, calling fn for every byte outside of quotes.
// fn returns false to stop the walk.
func scanQuoted(text string, fn func(n int, c byte) bool) {
	var quote byte
	for n := 0; n < len(text); n++ {
		c := text[n]
		switch {
		case quote != 0 && c == '\\':
			n++
		case quote != 0 && c == quote:
			quote = 0
		case quote != 0:
		case c == '\'' || c == '"':
			quote = c
		default:
			if !fn(n, c) {
				return
			}
		}
	}
}

// cutComment removes a ; comment, ignoring semicolons inside quotes.
func cutComment(text string) string {
	end := len(text)
	scanQuoted(text, func(n int, c byte) bool {
		if c == ';' {
			end = n
			return false
		}
		return true
	})
	return text[:end]
}

// splitOperands splits a comma separated operand list, respecting quotes.
func splitOperands(text string) (operands []string) {
	text = strings.TrimSpace(text)
	if len(text) == 0 {
		return
	}

	start := 0
	scanQuoted(text, func(n int, c byte) bool {
		if c == ',' {
			operands = append(operands, strings.TrimSpace(text[start:n]))
			start = n + 1
		}
		return true
	})
	operands = append(operands, strings.TrimSpace(text[start:]))

	return
}

var reParen = regexp.MustCompile(`\$\([^\$]*\)`)

// parseLine parses a single line of assembly text.
func (asm *Assembler) parseLine(line string, lineno int) (err error) {
	// Set line number.
	asm.Equate["LINENO"] = strconv.Itoa(lineno)

	// Do $() evaluations
	line = reParen.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return strconv.Itoa(value)
	})
	if err != nil {
		return
	}

	line = strings.TrimSpace(line)

	// Labels
	for {
		word, _, _ := strings.Cut(line, " ")
		word, _, _ = strings.Cut(word, "\t")
		if !strings.HasSuffix(word, ":") {
			break
		}
		label := word[:len(word)-1]
		if !reIdent.MatchString(label) {
			err = ErrOperandInvalid
			return
		}
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}
		asm.Label[label] = asm.address
		line = strings.TrimSpace(line[len(word):])
	}

	if len(line) == 0 {
		return
	}

	name := strings.Fields(line)[0]
	rest := strings.TrimSpace(line[len(name):])
	words := []string{name}
	for _, operand := range splitOperands(rest) {
		words = append(words, asm.resolve(operand))
	}

	switch strings.ToLower(name) {
	case ".equ":
		// .equ CONST VALUE
		args := strings.Fields(rest)
		if len(args) != 2 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[args[0]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[args[0]] = args[1]
		return
	case ".org":
		args := words[1:]
		if len(args) != 1 {
			err = ErrOriginSyntax
			return
		}
		var value int
		var label string
		value, label, err = asm.valueOf(args[0])
		if err != nil {
			return
		}
		if len(label) > 0 {
			value, ok := asm.Label[label]
			if !ok {
				err = ErrOriginSyntax
				return
			}
			asm.address = value
			return
		}
		if value < 0 || value >= MEMORY_SIZE_MAX {
			err = ErrOperandRange
			return
		}
		asm.address = value
		return
	case ".db":
		return asm.data(lineno, words, 1)
	case ".dw":
		return asm.data(lineno, words, 2)
	case ".ds":
		args := words[1:]
		if len(args) != 1 {
			err = ErrDataSyntax
			return
		}
		var size int
		var label string
		size, label, err = asm.valueOf(args[0])
		if err != nil {
			return
		}
		if len(label) > 0 || size < 0 {
			err = ErrDataSyntax
			return
		}
		return asm.emit(lineno, words, make([]byte, size), nil)
	}

	// .macro processing
	macro, ok := asm.Macro[name]
	if ok {
		return asm.expand(name, macro, words[1:], lineno)
	}

	return asm.instruction(lineno, words)
}

// expand substitutes a macro invocation. Macro arguments become equates for
// the duration of the expansion, and '@' in the body becomes a prefix
// unique to the invocation.
func (asm *Assembler) expand(name string, macro *Macro, args []string, lineno int) (err error) {
	if len(args) != len(macro.Args) {
		err = ErrMacroSyntax
		return
	}

	// Turn args into equs
	old_equate := maps.Clone(asm.Equate)
	for n, arg := range macro.Args {
		asm.Equate[arg] = args[n]
	}
	defer func() { asm.Equate = old_equate }()

	for n, line := range macro.Lines {
		mlineno := macro.LineNo + n

		line = strings.ReplaceAll(line, "@", fmt.Sprintf("%v_%v_", name, lineno))
		err = asm.parseLine(line, mlineno)
		if err != nil {
			err = &ErrMacro{Macro: name, Line: mlineno, Err: err}
			err = &ErrSyntax{LineNo: mlineno, Line: line, Err: err}
			return
		}
	}

	return
}

// data assembles .db and .dw directives.
func (asm *Assembler) data(lineno int, words []string, size int) (err error) {
	args := words[1:]
	if len(args) == 0 {
		err = ErrDataSyntax
		return
	}

	var buf []byte
	var links []Link
	for _, arg := range args {
		if size == 1 && len(arg) > 0 && arg[0] == '"' {
			var text []byte
			text, err = unquote(arg)
			if err != nil {
				return
			}
			buf = append(buf, text...)
			continue
		}

		var value int
		var label string
		value, label, err = asm.valueOf(arg)
		if err != nil {
			return
		}

		offset := len(buf)
		buf = append(buf, make([]byte, size)...)
		if len(label) > 0 {
			links = append(links, Link{Label: label, Offset: offset, Size: size})
			continue
		}
		err = putValue(buf[offset:], size, value)
		if err != nil {
			return
		}
	}

	return asm.emit(lineno, words, buf, links)
}

// instruction assembles one mnemonic against the instruction templates.
func (asm *Assembler) instruction(lineno int, words []string) (err error) {
	candidates, ok := asm.templates[strings.ToUpper(words[0])]
	if !ok {
		err = ErrInstructionInvalid
		return
	}

	operands := words[1:]
	for _, tmpl := range candidates {
		if len(tmpl.operands) != len(operands) {
			continue
		}

		var buf []byte
		var links []Link
		var matched bool
		buf, links, matched, err = asm.encode(tmpl, operands)
		if err != nil {
			return
		}
		if matched {
			return asm.emit(lineno, words, buf, links)
		}
	}

	if len(operands) == 0 {
		err = ErrOpcodeMissing
	} else {
		err = ErrOperandInvalid
	}
	return
}

// encode matches operands against a template, and encodes the match.
func (asm *Assembler) encode(tmpl template, operands []string) (buf []byte, links []Link, matched bool, err error) {
	buf = []byte{tmpl.in.Opcode}
	for n, want := range tmpl.operands {
		got := asm.resolve(operands[n])

		var size int
		switch want {
		case "D8":
			size = 1
		case "D16", "adr":
			size = 2
		default:
			// Register, register pair, or RST vector.
			if strings.EqualFold(got, want) {
				continue
			}
			if value, verr := parseNumber(got); verr == nil && strconv.Itoa(value) == want {
				continue
			}
			return nil, nil, false, nil
		}

		var value int
		var label string
		value, label, err = asm.valueOf(got)
		if err != nil {
			return
		}

		offset := len(buf)
		buf = append(buf, make([]byte, size)...)
		if len(label) > 0 {
			links = append(links, Link{Label: label, Offset: offset, Size: size})
			continue
		}
		err = putValue(buf[offset:], size, value)
		if err != nil {
			return
		}
	}

	matched = true
	return
}

// emit appends an Opcode at the current address.
func (asm *Assembler) emit(lineno int, words []string, buf []byte, links []Link) (err error) {
	if asm.address+len(buf) > MEMORY_SIZE_MAX {
		err = &ErrAddress{Address: asm.address + len(buf), Size: MEMORY_SIZE_MAX}
		return
	}

	asm.Opcode = append(asm.Opcode, Opcode{
		LineNo:  lineno,
		Address: asm.address,
		Words:   words,
		Bytes:   buf,
		Links:   links,
	})
	asm.address += len(buf)

	return
}

// Parse parses an input stream into a Program.
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

	if asm.templates == nil {
		asm.buildTemplates()
	}

	asm.Label = make(map[string]int, 16)
	asm.Opcode = nil
	asm.Macro = make(map[string](*Macro))
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}
	asm.address = 0

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			logrus.Debugf("%v: %v", lineno, text)
		}

		line = strings.TrimSpace(cutComment(text))
		words := strings.Fields(line)

		// .macro NAME arg,...
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
			args := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line[len(".macro"):]), words[1]))
			macro.Args = splitOperands(args)
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

		err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	if macro != nil {
		err = ErrMacroLonely
		return
	}

	// Final linking of labels.
	for n := range asm.Opcode {
		op := &asm.Opcode[n]
		for _, link := range op.Links {
			addr, ok := asm.Label[link.Label]
			if !ok {
				lineno, line = op.LineNo, strings.Join(op.Words, " ")
				err = ErrLabelMissing(link.Label)
				return
			}
			err = putValue(op.Bytes[link.Offset:], link.Size, addr)
			if err != nil {
				lineno, line = op.LineNo, strings.Join(op.Words, " ")
				return
			}
		}
	}

	// Overlapping .org regions are an error.
	ordered := slices.Clone(asm.Opcode)
	slices.SortStableFunc(ordered, func(a, b Opcode) int {
		return a.Address - b.Address
	})
	for n := 1; n < len(ordered); n++ {
		prev, op := ordered[n-1], ordered[n]
		if prev.Address+len(prev.Bytes) > op.Address {
			lineno, line = op.LineNo, strings.Join(op.Words, " ")
			err = ErrProgramOverlap
			return
		}
	}

	prog = &Program{
		Opcodes: slices.Clone(asm.Opcode),
	}

	return
}
