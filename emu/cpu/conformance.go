/*
   conformance.go - the JSON single-step vector format cmd/x86conformance
   and conformance_test.go both consume: construct a CPU in the vector's
   initial state, execute exactly one instruction, and diff against the
   vector's expected final state.

   Copyright (c) 2026, the x86core contributors

   See cpu.go for the project license.
*/
package cpu

import (
	"fmt"
	"sort"

	"github.com/go8086/x86core/emu/membus"
)

// Vector is one conformance test case.
type Vector struct {
	Name    string       `json:"name"`
	Model   string       `json:"model"`
	Initial VectorState  `json:"initial"`
	Cycles  uint16       `json:"cycles"`
	Final   VectorResult `json:"final"`
}

// VectorState seeds a CPU before the single step it's testing.
type VectorState struct {
	Regs map[string]uint16   `json:"regs"`
	RAM  map[string][]byte   `json:"ram"` // linear address (decimal string) -> bytes
	CS   uint16              `json:"cs"`
	IP   uint16              `json:"ip"`
}

// VectorResult is what the step is expected to leave behind.
type VectorResult struct {
	Regs  map[string]uint16 `json:"regs"`
	Flags map[string]bool   `json:"flags"`
}

// ParseModel resolves a vector's "model" string to a Model: one of
// "8088", "8086", "80188", "80186" or "80286".
func ParseModel(name string) (Model, error) {
	switch name {
	case "8088":
		return Model8088, nil
	case "8086":
		return Model8086, nil
	case "80188":
		return Model80188, nil
	case "80186":
		return Model80186, nil
	case "80286":
		return Model80286, nil
	default:
		return 0, fmt.Errorf("cpu: unknown model %q", name)
	}
}

func regPtr(c *CPU, name string) *uint16 {
	switch name {
	case "AX":
		return &c.AX
	case "BX":
		return &c.BX
	case "CX":
		return &c.CX
	case "DX":
		return &c.DX
	case "SP":
		return &c.SP
	case "BP":
		return &c.BP
	case "SI":
		return &c.SI
	case "DI":
		return &c.DI
	default:
		return nil
	}
}

func flagBit(name string) uint16 {
	switch name {
	case "CF":
		return psCF
	case "PF":
		return psPF
	case "AF":
		return psAF
	case "ZF":
		return psZF
	case "SF":
		return psSF
	case "TF":
		return psTF
	case "IF":
		return psIF
	case "DF":
		return psDF
	case "OF":
		return psOF
	default:
		return 0
	}
}

// BuildVectorCPU constructs a CPU for v's model, seeded with v's initial
// state: registers, CS:IP, and a flat RAM image covering every address
// v.Initial.RAM touches, rounded out to whole membus blocks.
func BuildVectorCPU(v Vector) (*CPU, error) {
	model, err := ParseModel(v.Model)
	if err != nil {
		return nil, err
	}
	bus := membus.New()
	blocks := map[uint32][]byte{}
	for addrStr, bytes := range v.Initial.RAM {
		addr, err := parseAddr(addrStr)
		if err != nil {
			return nil, err
		}
		for i, b := range bytes {
			a := addr + uint32(i)
			idx := a >> membus.BlockShift
			blk, ok := blocks[idx]
			if !ok {
				blk = make([]byte, membus.BlockSize)
				blocks[idx] = blk
			}
			blk[a&(membus.BlockSize-1)] = b
		}
	}
	for idx, blk := range blocks {
		bus.InstallRAM(idx, blk)
	}

	c := New(model, WithBus(bus))
	for name, val := range v.Initial.Regs {
		if p := regPtr(c, name); p != nil {
			*p = val
		}
	}
	c.CS = Segment{Selector: v.Initial.CS, Base: uint32(v.Initial.CS) << 4, Limit: 0xFFFF, Access: execAccessDefault}
	c.IP = v.Initial.IP
	c.pfq.flush(c.linearCS())
	return c, nil
}

func parseAddr(s string) (uint32, error) {
	var n uint32
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil {
		return 0, fmt.Errorf("cpu: bad ram address %q: %w", s, err)
	}
	return n, nil
}

// Outcome is RunVector's report: the cycles actually charged and every
// mismatch found against v.Final, empty when the vector passed.
type Outcome struct {
	Name      string
	Cycles    uint16
	Mismatches []string
}

func (o Outcome) Pass() bool { return len(o.Mismatches) == 0 }

// RunVector builds a CPU per v.Initial, executes exactly one instruction,
// and diffs the result against v.Final and v.Cycles.
func RunVector(v Vector) (Outcome, error) {
	c, err := BuildVectorCPU(v)
	if err != nil {
		return Outcome{}, err
	}
	cycles := uint16(c.StepCPU(1))

	out := Outcome{Name: v.Name, Cycles: cycles}
	if v.Cycles != 0 && cycles != v.Cycles {
		out.Mismatches = append(out.Mismatches, fmt.Sprintf("cycles: got %d, want %d", cycles, v.Cycles))
	}
	for name, want := range v.Final.Regs {
		p := regPtr(c, name)
		if p == nil {
			out.Mismatches = append(out.Mismatches, fmt.Sprintf("unknown register %q", name))
			continue
		}
		if *p != want {
			out.Mismatches = append(out.Mismatches, fmt.Sprintf("%s: got %#04x, want %#04x", name, *p, want))
		}
	}
	ps := c.getPS()
	names := make([]string, 0, len(v.Final.Flags))
	for name := range v.Final.Flags {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		want := v.Final.Flags[name]
		bit := flagBit(name)
		if bit == 0 {
			out.Mismatches = append(out.Mismatches, fmt.Sprintf("unknown flag %q", name))
			continue
		}
		got := ps&bit != 0
		if got != want {
			out.Mismatches = append(out.Mismatches, fmt.Sprintf("%s: got %v, want %v", name, got, want))
		}
	}
	return out, nil
}
