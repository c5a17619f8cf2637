package cpu

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedVectors encodes spec seed scenarios 2-4 (5 is the hand-built
// Vector in TestConformanceRealModeInterrupt below; 1 and 6 aren't
// single-step-shaped: reset needs no step, and the prefetch rewind
// property needs queue introspection RunVector doesn't expose) in the
// same JSON shape cmd/x86conformance reads from a file.
const seedVectorsJSON = `[
  {
    "name": "segment arithmetic",
    "model": "8088",
    "initial": {"regs": {}, "ram": {"65568": [184, 52, 18]}, "cs": 4096, "ip": 32},
    "final": {"regs": {"AX": 4660}, "flags": {}}
  },
  {
    "name": "ADD AX,1 overflow",
    "model": "8088",
    "initial": {"regs": {"AX": 32767}, "ram": {"0": [5, 1, 0]}, "cs": 0, "ip": 0},
    "final": {
      "regs": {"AX": 32768},
      "flags": {"CF": false, "ZF": false, "SF": true, "OF": true, "AF": true, "PF": true}
    }
  },
  {
    "name": "shift count masking 8088",
    "model": "8088",
    "initial": {"regs": {"AX": 1, "CX": 33}, "ram": {"0": [211, 224]}, "cs": 0, "ip": 0},
    "final": {"regs": {"AX": 0}, "flags": {}}
  },
  {
    "name": "shift count masking 80286",
    "model": "80286",
    "initial": {"regs": {"AX": 1, "CX": 33}, "ram": {"0": [211, 224]}, "cs": 0, "ip": 0},
    "final": {"regs": {"AX": 2}, "flags": {}}
  }
]`

func loadSeedVectors(t *testing.T) []Vector {
	t.Helper()
	var vectors []Vector
	require.NoError(t, json.Unmarshal([]byte(seedVectorsJSON), &vectors))
	return vectors
}

func TestConformanceSeedVectors(t *testing.T) {
	for _, v := range loadSeedVectors(t) {
		v := v
		t.Run(v.Name, func(t *testing.T) {
			outcome, err := RunVector(v)
			require.NoError(t, err)
			assert.Empty(t, outcome.Mismatches, "vector %q", v.Name)
			if v.Cycles != 0 {
				assert.Equal(t, v.Cycles, outcome.Cycles)
			}
		})
	}
}

// TestConformanceRealModeInterrupt exercises the same INT 0x21 dispatch
// as TestRealModeSoftwareInterrupt, but builds its CPU through the
// vector path (BuildVectorCPU) and steps it directly rather than via
// RunVector, since a software interrupt's setup isn't expressible as a
// flat reg/flag seed alone (it also needs IF set in PS and SS
// pre-seeded, and its outcome is checked on CS:IP and IF). The IVT entry
// rides in the vector's RAM. Kept as a hand-built Vector rather than
// JSON text so the IVT bytes stay readable.
func TestConformanceRealModeInterrupt(t *testing.T) {
	v := Vector{
		Name:  "INT 0x21 dispatch",
		Model: "8088",
		Initial: VectorState{
			Regs: map[string]uint16{"SP": 0x0100},
			RAM: map[string][]byte{
				"132":  {0x00, 0x01, 0x00, 0x20}, // IVT[0x21]: IP=0x0100, CS=0x2000
				"4096": {0xCD, 0x21},              // INT 0x21 at CS=0x0100, IP=0
			},
			CS: 0x0100,
			IP: 0,
		},
		Final: VectorResult{
			Regs: map[string]uint16{},
		},
	}
	c, err := BuildVectorCPU(v)
	require.NoError(t, err)
	c.setPS(0x0202)
	c.SS = Segment{Selector: 0, Base: 0, Limit: 0xFFFF, Access: dataAccessDefault}

	c.StepCPU(1)

	assert.Equal(t, uint16(0x2000), c.CS.Selector)
	assert.Equal(t, uint16(0x0100), c.IP)
	assert.False(t, c.getIF())
}
