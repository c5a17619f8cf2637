/*
   model.go - per-model cycle cost table.

   Copyright (c) 2026, the x86core contributors

   See cpu.go for the project license.
*/

// spec.md §9 recommends a typed struct of cycle costs indexed by
// mnemonic class rather than the source's flat named fields; this is
// that struct, generated once per model at construction (New calls
// buildCycleTable after the instruction tables). Handlers read named
// fields (c.cycles.AluRegReg, ...) instead of indexing a opcode-keyed
// array, which keeps the cost of adding or reclassifying an opcode to a
// one-line change here rather than a table edit in table.go.
package cpu

type cycleTable struct {
	AluRegReg   uint16
	AluRegMem   uint16
	AluMemReg   uint16
	AluAccImm   uint16
	AluImmMem   uint16
	IncDecReg   uint16
	PushReg     uint16
	PopReg      uint16
	PushMem     uint16
	PopMem      uint16
	PushImm     uint16
	Pusha       uint16
	Popa        uint16
	MovRegReg   uint16
	MovRegImm   uint16
	MovMemImm   uint16
	MovAcc      uint16
	MovSeg      uint16
	Lea         uint16
	Xchg        uint16
	JccTaken    uint16
	JccNotTaken uint16
	JmpShort    uint16
	JmpNear     uint16
	JmpFar      uint16
	CallNear    uint16
	CallFar     uint16
	RetNear     uint16
	RetFar      uint16
	Loop        uint16
	ShiftBy1    uint16
	ShiftByCL   uint16
	ShiftByImm  uint16
	MulByte     uint16
	MulWord     uint16
	ImulByte    uint16
	ImulWord    uint16
	DivByte     uint16
	DivWord     uint16
	IdivByte    uint16
	IdivWord    uint16
	StringElem  uint16
	RepOverhead uint16
	IntSoftware uint16
	IntHardware uint16
	Iret        uint16
	Hlt         uint16
	Flags       uint16
	InOut       uint16
	Nop         uint16
	Bound       uint16
	EnterBase   uint16
	EnterPerLvl uint16
	Leave       uint16
	Prefix      uint16
	ProtLoad    uint16
}

// buildCycleTable fills in the documented 8088/8086/80186/80286
// per-class costs. The 8088 and 8086 share timings (the bus width
// difference shows up only in the EA/prefetch tables, not in these
// base instruction costs); the 80186 is uniformly faster; the 80286
// is faster again and drops the EA/displacement surcharges entirely
// (folded into decode.go's eaCost/dispCost instead of here).
func (c *CPU) buildCycleTable() {
	switch {
	case c.model.is286():
		c.cycles = cycleTable{
			AluRegReg: 2, AluRegMem: 7, AluMemReg: 7, AluAccImm: 3, AluImmMem: 7,
			IncDecReg: 2, PushReg: 3, PopReg: 5, PushMem: 5, PopMem: 5, PushImm: 3,
			Pusha: 17, Popa: 19, MovRegReg: 2, MovRegImm: 2, MovMemImm: 3, MovAcc: 3,
			MovSeg: 2, Lea: 3, Xchg: 3, JccTaken: 7, JccNotTaken: 3, JmpShort: 7,
			JmpNear: 7, JmpFar: 11, CallNear: 7, CallFar: 13, RetNear: 11, RetFar: 15,
			Loop: 8, ShiftBy1: 2, ShiftByCL: 5, ShiftByImm: 5, MulByte: 13, MulWord: 21,
			ImulByte: 13, ImulWord: 21, DivByte: 14, DivWord: 22, IdivByte: 17, IdivWord: 25,
			StringElem: 5, RepOverhead: 4, IntSoftware: 23, IntHardware: 19, Iret: 17,
			Hlt: 2, Flags: 2, InOut: 3, Nop: 3, Bound: 13, EnterBase: 11, EnterPerLvl: 4,
			Leave: 5, Prefix: 0, ProtLoad: 17,
		}
	case c.model.atLeast186():
		c.cycles = cycleTable{
			AluRegReg: 3, AluRegMem: 9, AluMemReg: 16, AluAccImm: 4, AluImmMem: 17,
			IncDecReg: 3, PushReg: 10, PopReg: 8, PushMem: 16, PopMem: 17, PushImm: 3,
			Pusha: 36, Popa: 51, MovRegReg: 2, MovRegImm: 3, MovMemImm: 12, MovAcc: 8,
			MovSeg: 2, Lea: 6, Xchg: 4, JccTaken: 13, JccNotTaken: 4, JmpShort: 14,
			JmpNear: 14, JmpFar: 21, CallNear: 19, CallFar: 28, RetNear: 16, RetFar: 22,
			Loop: 6, ShiftBy1: 2, ShiftByCL: 8, ShiftByImm: 4, MulByte: 26, MulWord: 35,
			ImulByte: 25, ImulWord: 34, DivByte: 29, DivWord: 38, IdivByte: 44, IdivWord: 53,
			StringElem: 5, RepOverhead: 6, IntSoftware: 47, IntHardware: 50, Iret: 28,
			Hlt: 2, Flags: 2, InOut: 10, Nop: 3, Bound: 13, EnterBase: 15, EnterPerLvl: 4,
			Leave: 8, Prefix: 2, ProtLoad: 0,
		}
	default: // 8088 / 8086
		c.cycles = cycleTable{
			AluRegReg: 3, AluRegMem: 9, AluMemReg: 16, AluAccImm: 4, AluImmMem: 17,
			IncDecReg: 3, PushReg: 15, PopReg: 12, PushMem: 24, PopMem: 25, PushImm: 15,
			Pusha: 0, Popa: 0, MovRegReg: 2, MovRegImm: 4, MovMemImm: 14, MovAcc: 10,
			MovSeg: 2, Lea: 2, Xchg: 4, JccTaken: 16, JccNotTaken: 4, JmpShort: 15,
			JmpNear: 15, JmpFar: 15, CallNear: 19, CallFar: 28, RetNear: 20, RetFar: 25,
			Loop: 5, ShiftBy1: 2, ShiftByCL: 8, ShiftByImm: 0, MulByte: 77, MulWord: 133,
			ImulByte: 80, ImulWord: 134, DivByte: 90, DivWord: 162, IdivByte: 101, IdivWord: 184,
			StringElem: 18, RepOverhead: 9, IntSoftware: 51, IntHardware: 61, Iret: 32,
			Hlt: 2, Flags: 2, InOut: 10, Nop: 3, Bound: 0, EnterBase: 0, EnterPerLvl: 0,
			Leave: 0, Prefix: 2, ProtLoad: 0,
		}
	}
}
