// Package aiger parses the AIGER format (both the ASCII ".aag" and binary
// ".aig" encodings) into an *aig.Circuit, so the cube-and-conquer pipeline
// can load circuits from the files the broader AIG tooling ecosystem
// produces instead of only ones built gate-by-gate in code.
package aiger

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/aigcube/aigcube/aig"
)

const (
	falseLabel = "__false__"
	trueLabel  = "__true__"
)

type pendingGate struct {
	label    string
	gtype    aig.GateType
	operands []string
}

// parser accumulates gates in dependency order as it reads the file and
// only emits them into a real aig.Circuit once the symbol table (which is
// physically located after the gate section) has been read, so input gates
// can be built with their final names instead of needing a rename pass.
type parser struct {
	pending        []pendingGate
	index          map[string]bool
	literalToLabel map[int]string
}

func newParser() *parser {
	return &parser{index: make(map[string]bool), literalToLabel: make(map[int]string)}
}

func (p *parser) emplace(label string, t aig.GateType, operands ...string) {
	if p.index[label] {
		return
	}
	p.index[label] = true
	p.pending = append(p.pending, pendingGate{label: label, gtype: t, operands: operands})
}

func (p *parser) getOrCreateFalse() string {
	p.emplace(falseLabel, aig.AlwaysFalse)
	return falseLabel
}

func (p *parser) getOrCreateTrue() string {
	p.emplace(trueLabel, aig.AlwaysTrue)
	return trueLabel
}

// getLiteralLabel resolves an AIGER literal to the gate label representing
// it, lazily synthesizing a NOT gate for an odd (negated) literal the first
// time it is referenced.
func (p *parser) getLiteralLabel(lit int) (string, error) {
	if label, ok := p.literalToLabel[lit]; ok {
		return label, nil
	}
	if lit%2 != 1 {
		return "", parseErrorf("getLiteralLabel", "undefined literal %d", lit)
	}
	base := lit - 1
	baseLabel, ok := p.literalToLabel[base]
	if !ok {
		return "", parseErrorf("getLiteralLabel", "undefined base literal %d", base)
	}
	notLabel := "not_" + baseLabel
	p.emplace(notLabel, aig.Not, baseLabel)
	p.literalToLabel[lit] = notLabel
	return notLabel, nil
}

func (p *parser) addAndGate(lhs, rhs0, rhs1 int) error {
	op0, err := p.getLiteralLabel(rhs0)
	if err != nil {
		return err
	}
	op1, err := p.getLiteralLabel(rhs1)
	if err != nil {
		return err
	}
	label := p.literalToLabel[lhs]
	p.emplace(label, aig.And, op0, op1)
	return nil
}

type andTriple struct{ lhs, rhs0, rhs1 int }

// createAndGatesTopological creates ASCII-format AND gates in dependency
// order: the file lists them in any order, but an operand that is itself
// the LHS of a later gate must be created first.
func (p *parser) createAndGatesTopological(gates []andTriple) error {
	byLHS := make(map[int]andTriple, len(gates))
	for _, g := range gates {
		byLHS[g.lhs] = g
		p.literalToLabel[g.lhs] = "n" + strconv.Itoa(g.lhs/2)
	}
	created := make(map[int]bool, len(gates))

	var create func(lhs int) error
	create = func(lhs int) error {
		if created[lhs] {
			return nil
		}
		g := byLHS[lhs]
		for _, rhs := range [...]int{g.rhs0, g.rhs1} {
			base := rhs &^ 1
			if _, isLHS := byLHS[base]; isLHS && !created[base] {
				if err := create(base); err != nil {
					return err
				}
			}
		}
		if err := p.addAndGate(g.lhs, g.rhs0, g.rhs1); err != nil {
			return err
		}
		created[lhs] = true
		return nil
	}

	for _, g := range gates {
		if err := create(g.lhs); err != nil {
			return err
		}
	}
	return nil
}

func decodeBinaryNumber(r *bufio.Reader) (int, error) {
	result, shift := 0, 0
	for {
		b, err := r.ReadByte()
		if err != nil {
			return 0, parseErrorf("decodeBinaryNumber", "unexpected EOF decoding number")
		}
		result |= int(b&0x7F) << shift
		if b&0x80 == 0 {
			break
		}
		shift += 7
	}
	return result, nil
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// symbolTable maps a 0-based input/output position to its AIGER symbol name.
type symbolTable struct {
	inputs  map[int]string
	outputs map[int]string
}

func parseSymbolLine(line string, symbols symbolTable) {
	if len(line) < 2 {
		return
	}
	kind := line[0]
	rest := line[1:]
	spaceIdx := strings.IndexByte(rest, ' ')
	if spaceIdx == -1 {
		return
	}
	pos, err := strconv.Atoi(rest[:spaceIdx])
	if err != nil {
		return
	}
	name := rest[spaceIdx+1:]
	switch kind {
	case 'i':
		symbols.inputs[pos] = name
	case 'o':
		symbols.outputs[pos] = name
	}
}

func readTrailerSymbols(r *bufio.Reader, symbols symbolTable) error {
	for {
		line, err := readLine(r)
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return nil
		}
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "c") {
			return nil
		}
		if len(line) > 1 && strings.ContainsRune("ilo", rune(line[0])) {
			parseSymbolLine(line, symbols)
		}
	}
}

// Parse reads a circuit in AIGER format from r, auto-detecting the ASCII
// ("aag") or binary ("aig") encoding from its header magic.
func Parse(r io.Reader) (*aig.Circuit, error) {
	br := bufio.NewReader(r)

	headerLine, err := readLine(br)
	if err != nil {
		return nil, parseErrorf("Parse", "reading header: %v", err)
	}
	fields := strings.Fields(headerLine)
	if len(fields) < 6 {
		return nil, parseErrorf("Parse", "invalid AIGER header: %q", headerLine)
	}

	nums := make([]int, 5)
	for i, f := range fields[1:6] {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, parseErrorf("Parse", "invalid AIGER header field %q: %v", f, err)
		}
		nums[i] = v
	}
	m, numInputs, numLatches, numOutputs, numAnd := nums[0], nums[1], nums[2], nums[3], nums[4]
	_ = m
	if numLatches != 0 {
		return nil, parseErrorf("Parse", "latches not supported (L must be 0)")
	}

	switch fields[0] {
	case "aag":
		return parseASCII(br, numInputs, numOutputs, numAnd)
	case "aig":
		return parseBinary(br, numInputs, numLatches, numOutputs, numAnd)
	default:
		return nil, parseErrorf("Parse", "unknown AIGER magic %q", fields[0])
	}
}

func parseASCII(br *bufio.Reader, numInputs, numOutputs, numAnd int) (*aig.Circuit, error) {
	p := newParser()
	p.literalToLabel[0] = p.getOrCreateFalse()
	p.literalToLabel[1] = p.getOrCreateTrue()

	inputLiterals := make([]int, numInputs)
	inputLabels := make([]string, numInputs)
	for idx := 0; idx < numInputs; idx++ {
		line, err := readLine(br)
		if err != nil {
			return nil, parseErrorf("parseASCII", "reading input literal %d: %v", idx, err)
		}
		lit, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil {
			return nil, parseErrorf("parseASCII", "invalid input literal %q: %v", line, err)
		}
		label := "i" + strconv.Itoa(idx)
		inputLiterals[idx] = lit
		inputLabels[idx] = label
		p.emplace(label, aig.Input)
		p.literalToLabel[lit] = label
	}

	outputLiterals := make([]int, numOutputs)
	for idx := 0; idx < numOutputs; idx++ {
		line, err := readLine(br)
		if err != nil {
			return nil, parseErrorf("parseASCII", "reading output literal %d: %v", idx, err)
		}
		lit, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil {
			return nil, parseErrorf("parseASCII", "invalid output literal %q: %v", line, err)
		}
		outputLiterals[idx] = lit
	}

	andGates := make([]andTriple, numAnd)
	for idx := 0; idx < numAnd; idx++ {
		line, err := readLine(br)
		if err != nil {
			return nil, parseErrorf("parseASCII", "reading AND gate %d: %v", idx, err)
		}
		parts := strings.Fields(line)
		if len(parts) != 3 {
			return nil, parseErrorf("parseASCII", "malformed AND gate line %q", line)
		}
		lhs, err1 := strconv.Atoi(parts[0])
		rhs0, err2 := strconv.Atoi(parts[1])
		rhs1, err3 := strconv.Atoi(parts[2])
		if err1 != nil || err2 != nil || err3 != nil {
			return nil, parseErrorf("parseASCII", "malformed AND gate line %q", line)
		}
		andGates[idx] = andTriple{lhs: lhs, rhs0: rhs0, rhs1: rhs1}
	}
	if err := p.createAndGatesTopological(andGates); err != nil {
		return nil, err
	}

	symbols := symbolTable{inputs: make(map[int]string), outputs: make(map[int]string)}
	if err := readTrailerSymbols(br, symbols); err != nil {
		return nil, err
	}

	return p.build(inputLiterals, inputLabels, outputLiterals, symbols)
}

func parseBinary(br *bufio.Reader, numInputs, numLatches, numOutputs, numAnd int) (*aig.Circuit, error) {
	p := newParser()
	p.literalToLabel[0] = p.getOrCreateFalse()
	p.literalToLabel[1] = p.getOrCreateTrue()

	inputLiterals := make([]int, numInputs)
	inputLabels := make([]string, numInputs)
	for idx := 0; idx < numInputs; idx++ {
		lit := 2 * (idx + 1)
		label := "i" + strconv.Itoa(idx)
		inputLiterals[idx] = lit
		inputLabels[idx] = label
		p.emplace(label, aig.Input)
		p.literalToLabel[lit] = label
	}

	outputLiterals := make([]int, numOutputs)
	for idx := 0; idx < numOutputs; idx++ {
		line, err := readLine(br)
		if err != nil {
			return nil, parseErrorf("parseBinary", "reading output literal %d: %v", idx, err)
		}
		lit, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil {
			return nil, parseErrorf("parseBinary", "invalid output literal %q: %v", line, err)
		}
		outputLiterals[idx] = lit
	}

	for idx := 0; idx < numAnd; idx++ {
		lhs := 2 * (numInputs + numLatches + idx + 1)
		delta0, err := decodeBinaryNumber(br)
		if err != nil {
			return nil, err
		}
		delta1, err := decodeBinaryNumber(br)
		if err != nil {
			return nil, err
		}
		rhs0 := lhs - delta0
		rhs1 := rhs0 - delta1
		p.literalToLabel[lhs] = "n" + strconv.Itoa(lhs/2)
		if err := p.addAndGate(lhs, rhs0, rhs1); err != nil {
			return nil, err
		}
	}

	symbols := symbolTable{inputs: make(map[int]string), outputs: make(map[int]string)}
	// The binary trailer (symbol table and comments) is plain ASCII text; a
	// malformed or absent trailer is not an error; it just means no symbols.
	_ = readTrailerSymbols(br, symbols)

	return p.build(inputLiterals, inputLabels, outputLiterals, symbols)
}

// build applies the input symbol table (renaming i<idx> to its symbolic
// name where one is given) and emits every pending gate into a fresh
// aig.Circuit, then resolves and sets the circuit's inputs and outputs.
func (p *parser) build(inputLiterals []int, inputLabels []string, outputLiterals []int, symbols symbolTable) (*aig.Circuit, error) {
	// Resolve output literals first: this may lazily append NOT gates to
	// p.pending, which must happen before the emission loop below so every
	// gate it creates actually makes it into the circuit.
	rawOutputLabels := make([]string, len(outputLiterals))
	for i, lit := range outputLiterals {
		label, err := p.getLiteralLabel(lit)
		if err != nil {
			return nil, err
		}
		rawOutputLabels[i] = label
	}

	rename := make(map[string]string)
	existing := make(map[string]bool, len(p.pending))
	for _, g := range p.pending {
		existing[g.label] = true
	}
	for idx, name := range symbols.inputs {
		if idx < 0 || idx >= len(inputLabels) {
			continue
		}
		oldLabel := inputLabels[idx]
		if name == oldLabel || existing[name] {
			continue
		}
		rename[oldLabel] = name
		oldNot, newNot := "not_"+oldLabel, "not_"+name
		if existing[oldNot] && !existing[newNot] {
			rename[oldNot] = newNot
		}
	}
	resolve := func(label string) string {
		if renamed, ok := rename[label]; ok {
			return renamed
		}
		return label
	}

	circuit := aig.NewCircuit()
	for _, g := range p.pending {
		operands := make([]string, len(g.operands))
		for i, op := range g.operands {
			operands[i] = resolve(op)
		}
		if err := circuit.EmplaceGate(resolve(g.label), g.gtype, operands...); err != nil {
			return nil, parseErrorf("build", "%v", err)
		}
	}

	finalInputs := make([]string, len(inputLabels))
	for i, label := range inputLabels {
		finalInputs[i] = resolve(label)
	}
	circuit.SetInputs(finalInputs)

	outputLabels := make([]string, len(rawOutputLabels))
	for i, label := range rawOutputLabels {
		outputLabels[i] = resolve(label)
	}
	circuit.SetOutputs(outputLabels)

	return circuit, nil
}

// ParseFile opens path and parses it as an AIGER circuit.
func ParseFile(path string) (*aig.Circuit, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, parseErrorf("ParseFile", "%v", err)
	}
	defer f.Close()

	circuit, err := Parse(f)
	if err != nil {
		return nil, parseErrorf("ParseFile", "%s: %v", filepath.Base(path), err)
	}
	return circuit, nil
}
