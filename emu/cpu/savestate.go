/*
   savestate.go - the opaque save/restore payload spec.md §6 describes:
   an ordered snapshot of every piece of architected (and the handful of
   implementation-scratch) state a caller needs to pause and later
   resume a core exactly, short of memory itself, which lives on the
   caller's Bus/IOBus and is out of this package's reach.

   Copyright (c) 2026, the x86core contributors

   See cpu.go for the project license.
*/
package cpu

import (
	"bytes"
	"encoding/gob"
	"fmt"
)

// SegSave is one segment register's descriptor cache, saved verbatim so
// Restore never has to re-walk a descriptor table to reconstruct it.
type SegSave struct {
	Selector uint16
	Base     uint32
	Limit    uint32
	Access   uint8
	Null     bool
}

func saveSeg(s Segment) SegSave {
	return SegSave{Selector: s.Selector, Base: s.Base, Limit: s.Limit, Access: s.Access, Null: s.Null}
}

func (s SegSave) restore() Segment {
	return Segment{Selector: s.Selector, Base: s.Base, Limit: s.Limit, Access: s.Access, Null: s.Null}
}

// ProtState is the 80286-only descriptor-table state; nil on earlier
// models, matching spec.md §6's "prot_state|null".
type ProtState struct {
	MSW      uint16
	GDTBase  uint32
	GDTLimit uint16
	IDTBase  uint32
	IDTLimit uint16
	LDTSave  SegSave
	TSSSave  SegSave
}

// ScratchState is the per-instruction decode scratch spec.md §6 names.
// segData_name and segStack_name are spec.md's two named slots, but this
// core backs both with the single segOverride register a prefix actually
// re-points (see cpu.go: one override covers both the DS-default and
// SS-default roles at once), so the two names are always equal; EA and
// EAWrite aren't captured because nothing in this decoder keeps a
// register-file copy of the in-flight effective address between decode
// and use - it's a local value within a single handler call, never
// observable at a StepCPU boundary, so there's nothing to snapshot for
// them. This is only meaningful if a save happens mid-instruction, which
// this core never does on its own (StepCPU only returns between logical
// instructions) - but a host driving execOne directly, or one that
// serializes from inside an intNotify callback, can still be mid-decode,
// so the override is captured rather than assumed clear.
type ScratchState struct {
	SegDataName  string // "CS"/"DS"/"SS"/"ES"/"" (empty = no override active)
	SegStackName string
	OpPrefixes   uint16
	IntFlags     uint8
}

// SpeedState is the clock/pacing state of spec.md §6's "speed" group.
type SpeedState struct {
	BurstDivisor uint32
	TotalCycles  uint64
	Multiplier   uint32
}

// SaveState is the full ordered tuple spec.md §6 specifies, opaque to
// callers and stable across minor versions: they're expected to pass it
// to Restore on a freshly-constructed CPU of the same Model, not to
// inspect its fields.
type SaveState struct {
	GeneralRegs [8]uint16 // AX, BX, CX, DX, SP, BP, SI, DI, in that order
	IP          uint16
	Segs        [4]SegSave // CS, DS, SS, ES, in that order
	PS          uint16
	Prot        *ProtState
	Scratch     ScratchState
	Speed       SpeedState
}

func segName(c *CPU, s *Segment) string {
	switch s {
	case &c.CS:
		return "CS"
	case &c.DS:
		return "DS"
	case &c.SS:
		return "SS"
	case &c.ES:
		return "ES"
	default:
		return ""
	}
}

// segByName resolves a saved override name back to its live Segment.
// ok is false for anything but "", "CS", "DS", "SS" or "ES" - Restore
// rejects that rather than silently treating an unrecognized name as
// "no override", per spec.md's recommendation to reject unknown segment
// names during restore instead of guessing.
func segByName(c *CPU, name string) (seg *Segment, ok bool) {
	switch name {
	case "":
		return nil, true
	case "CS":
		return &c.CS, true
	case "DS":
		return &c.DS, true
	case "SS":
		return &c.SS, true
	case "ES":
		return &c.ES, true
	default:
		return nil, false
	}
}

// SaveState captures the core's architected state (everything spec.md §6
// lists besides memory, which the caller owns via Bus/IOBus and snapshots
// separately if it needs to). Safe to call between any two StepCPU/Step
// calls; safe but unusual mid-instruction (see ScratchState's doc comment).
func (c *CPU) SaveState() SaveState {
	s := SaveState{
		GeneralRegs: [8]uint16{c.AX, c.BX, c.CX, c.DX, c.SP, c.BP, c.SI, c.DI},
		IP:          c.IP,
		Segs:        [4]SegSave{saveSeg(c.CS), saveSeg(c.DS), saveSeg(c.SS), saveSeg(c.ES)},
		PS:          c.getPS(),
		Scratch: ScratchState{
			SegDataName:  segName(c, c.segOverride),
			SegStackName: segName(c, c.segOverride),
			OpPrefixes:   uint16(c.opPrefixes),
			IntFlags:     c.intFlags,
		},
		Speed: SpeedState{
			BurstDivisor: c.burstDivisor,
			TotalCycles:  c.totalCycles,
			Multiplier:   c.multiplier,
		},
	}
	if c.model.is286() {
		s.Prot = &ProtState{
			MSW:      c.MSW,
			GDTBase:  c.GDTR.Base,
			GDTLimit: c.GDTR.Limit,
			IDTBase:  c.IDTR.Base,
			IDTLimit: c.IDTR.Limit,
			LDTSave:  saveSeg(c.LDTR),
			TSSSave:  saveSeg(c.TR),
		}
	}
	return s
}

// Restore applies a previously captured SaveState. The caller is
// responsible for constructing the CPU with the same Model the state
// was captured from and for restoring memory separately; Restore
// refuses a mismatched protected-mode shape (a 286 state applied to a
// non-286 core, or vice versa) rather than silently dropping it.
func (c *CPU) Restore(s SaveState) error {
	if (s.Prot != nil) != c.model.is286() {
		return fmt.Errorf("cpu: save state protection shape mismatches model %s", c.model)
	}
	segData, ok := segByName(c, s.Scratch.SegDataName)
	if !ok {
		return fmt.Errorf("cpu: save state: unrecognized segData override %q", s.Scratch.SegDataName)
	}
	segStack, ok := segByName(c, s.Scratch.SegStackName)
	if !ok {
		return fmt.Errorf("cpu: save state: unrecognized segStack override %q", s.Scratch.SegStackName)
	}
	if segData != segStack {
		return fmt.Errorf("cpu: save state: segData/segStack override disagree (%q vs %q)", s.Scratch.SegDataName, s.Scratch.SegStackName)
	}

	c.AX, c.BX, c.CX, c.DX = s.GeneralRegs[0], s.GeneralRegs[1], s.GeneralRegs[2], s.GeneralRegs[3]
	c.SP, c.BP, c.SI, c.DI = s.GeneralRegs[4], s.GeneralRegs[5], s.GeneralRegs[6], s.GeneralRegs[7]
	c.IP = s.IP
	c.CS = s.Segs[0].restore()
	c.DS = s.Segs[1].restore()
	c.SS = s.Segs[2].restore()
	c.ES = s.Segs[3].restore()
	c.setPS(s.PS)

	c.segOverride = segData
	c.opPrefixes = prefixBits(s.Scratch.OpPrefixes)
	c.intFlags = s.Scratch.IntFlags

	c.burstDivisor = s.Speed.BurstDivisor
	c.totalCycles = s.Speed.TotalCycles
	if s.Speed.Multiplier != 0 {
		c.multiplier = s.Speed.Multiplier
	}

	if s.Prot != nil {
		c.MSW = s.Prot.MSW
		c.GDTR = DTReg{Base: s.Prot.GDTBase, Limit: s.Prot.GDTLimit}
		c.IDTR = DTReg{Base: s.Prot.IDTBase, Limit: s.Prot.IDTLimit}
		c.LDTR = s.Prot.LDTSave.restore()
		c.TR = s.Prot.TSSSave.restore()
	}

	c.pfq.flush(c.linearCS())
	return nil
}

// Marshal/Unmarshal encode the payload with encoding/gob: the pack's
// example repos don't settle on a save-state serialization library one
// way or the other, so this stays on the standard library rather than
// reaching for something ungrounded.
func (s SaveState) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(s); err != nil {
		return nil, fmt.Errorf("cpu: encode save state: %w", err)
	}
	return buf.Bytes(), nil
}

func UnmarshalSaveState(data []byte) (SaveState, error) {
	var s SaveState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return SaveState{}, fmt.Errorf("cpu: decode save state: %w", err)
	}
	return s, nil
}
