package aiger

import (
	"strings"
	"testing"

	"github.com/aigcube/aigcube/aig"
)

func TestParseASCIIConjunction(t *testing.T) {
	src := "aag 3 2 0 1 1\n2\n4\n6\n6 2 4\n"
	circuit, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(circuit.Inputs()) != 2 {
		t.Fatalf("Inputs() = %v, want 2 inputs", circuit.Inputs())
	}
	if len(circuit.Outputs()) != 1 {
		t.Fatalf("Outputs() = %v, want 1 output", circuit.Outputs())
	}
	out, err := circuit.Gate(circuit.Outputs()[0])
	if err != nil {
		t.Fatalf("Gate(output): %v", err)
	}
	if out.Type != aig.And {
		t.Fatalf("output gate type = %v, want AND", out.Type)
	}
}

func TestParseASCIINegatedOutput(t *testing.T) {
	// single input, output literal 3 = NOT(input literal 2)
	src := "aag 1 1 0 1 0\n2\n3\n"
	circuit, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	out, err := circuit.Gate(circuit.Outputs()[0])
	if err != nil {
		t.Fatalf("Gate(output): %v", err)
	}
	if out.Type != aig.Not {
		t.Fatalf("output gate type = %v, want NOT", out.Type)
	}
	if out.Operands[0] != circuit.Inputs()[0] {
		t.Fatalf("NOT operand = %q, want %q", out.Operands[0], circuit.Inputs()[0])
	}
}

func TestParseASCIIAppliesInputSymbolRename(t *testing.T) {
	src := "aag 3 2 0 1 1\n2\n4\n6\n6 2 4\ni0 enable\ni1 reset\n"
	circuit, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	inputs := circuit.Inputs()
	if len(inputs) != 2 || inputs[0] != "enable" || inputs[1] != "reset" {
		t.Fatalf("Inputs() = %v, want [enable reset]", inputs)
	}
	out, err := circuit.Gate(circuit.Outputs()[0])
	if err != nil {
		t.Fatalf("Gate(output): %v", err)
	}
	if out.Operands[0] != "enable" || out.Operands[1] != "reset" {
		t.Fatalf("AND operands = %v, want [enable reset]", out.Operands)
	}
}

func TestParseRejectsLatches(t *testing.T) {
	src := "aag 2 1 1 1 0\n2\n4\n"
	if _, err := Parse(strings.NewReader(src)); err == nil {
		t.Fatalf("expected an error for a nonzero latch count")
	}
}

func TestParseRejectsUnknownMagic(t *testing.T) {
	src := "xyz 1 1 0 1 0\n2\n3\n"
	if _, err := Parse(strings.NewReader(src)); err == nil {
		t.Fatalf("expected an error for an unrecognized header magic")
	}
}
