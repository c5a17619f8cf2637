/*
   table.go - InstructionTable: primary and 0x0F opcode dispatch tables.

   Copyright (c) 2026, the x86core contributors

   See cpu.go for the project license.
*/

// Built once per CPU at construction, exactly like the teacher's
// createTable: a flat array of bound method values indexed by opcode.
// Slots with no assigned handler default to opUnk, which raises #UD on
// models that define one (80186+) and is otherwise a same-shaped
// placeholder - the teacher leaves unassigned IBM 370 opcodes pointing
// at its own opUnk for the identical reason.
package cpu

func (c *CPU) buildTables() {
	for i := range c.table {
		c.table[i] = c.opUnk
	}
	for i := range c.table0F {
		c.table0F[i] = c.opUnk
	}

	// 0x00-0x3D: the eight classic ALU groups (ADD OR ADC SBB AND SUB XOR
	// CMP) in their six standard encodings, with the segment push/pop
	// opcodes interleaved exactly where the real map puts them.
	for g := uint8(0); g < 8; g++ {
		base := uint8(g) * 8
		cls := aluClasses[g]
		isCmp := g == 7
		c.table[base+0] = c.makeAluEbGb(cls, isCmp)
		c.table[base+1] = c.makeAluEvGv(cls, isCmp)
		c.table[base+2] = c.makeAluGbEb(cls, isCmp)
		c.table[base+3] = c.makeAluGvEv(cls, isCmp)
		c.table[base+4] = c.makeAluAlIb(cls, isCmp)
		c.table[base+5] = c.makeAluAxIv(cls, isCmp)
	}
	c.table[0x06] = c.opPushES
	c.table[0x07] = c.opPopES
	c.table[0x0E] = c.opPushCS
	c.table[0x0F] = c.opPopCSOr0F // model-dependent, resolved at dispatch
	c.table[0x16] = c.opPushSS
	c.table[0x17] = c.opPopSS
	c.table[0x1E] = c.opPushDS
	c.table[0x1F] = c.opPopDS
	c.table[0x26] = c.makeSegOverride(&c.ES)
	c.table[0x2E] = c.makeSegOverride(&c.CS)
	c.table[0x36] = c.makeSegOverride(&c.SS)
	c.table[0x3E] = c.makeSegOverride(&c.DS)
	c.table[0x27] = c.opDAA
	c.table[0x2F] = c.opDAS
	c.table[0x37] = c.opAAA
	c.table[0x3F] = c.opAAS

	for r := uint8(0); r < 8; r++ {
		c.table[0x40+r] = c.makeIncReg(r)
		c.table[0x48+r] = c.makeDecReg(r)
		c.table[0x50+r] = c.makePushReg(r)
		c.table[0x58+r] = c.makePopReg(r)
		c.table[0x90+r] = c.makeXchgAx(r)
		c.table[0xB0+r] = c.makeMovRegImm8(r)
		c.table[0xB8+r] = c.makeMovRegImm16(r)
	}

	c.table[0x60] = c.opPusha
	c.table[0x61] = c.opPopa
	c.table[0x62] = c.opBound
	c.table[0x68] = c.opPushImm16
	c.table[0x69] = c.opImulGvEvIv
	c.table[0x6A] = c.opPushImm8
	c.table[0x6B] = c.opImulGvEvIb
	c.table[0x6C] = c.opInsb
	c.table[0x6D] = c.opInsw
	c.table[0x6E] = c.opOutsb
	c.table[0x6F] = c.opOutsw

	for cc := uint8(0); cc < 16; cc++ {
		c.table[0x70+cc] = c.makeJcc(cc)
	}

	c.table[0x80] = c.opGrp1Eb
	c.table[0x81] = c.opGrp1Ev
	c.table[0x82] = c.opGrp1Eb // alias: sign-extended imm8, same as 0x80 on real hardware
	c.table[0x83] = c.opGrp1EvIb
	c.table[0x84] = c.opTestEbGb
	c.table[0x85] = c.opTestEvGv
	c.table[0x86] = c.opXchgEbGb
	c.table[0x87] = c.opXchgEvGv
	c.table[0x88] = c.opMovEbGb
	c.table[0x89] = c.opMovEvGv
	c.table[0x8A] = c.opMovGbEb
	c.table[0x8B] = c.opMovGvEv
	c.table[0x8C] = c.opMovEvSw
	c.table[0x8D] = c.opLea
	c.table[0x8E] = c.opMovSwEv
	c.table[0x8F] = c.opPopEv
	c.table[0x98] = c.opCbw
	c.table[0x99] = c.opCwd
	c.table[0x9A] = c.opCallFar
	c.table[0x9B] = c.opWait
	c.table[0x9C] = c.opPushf
	c.table[0x9D] = c.opPopf
	c.table[0x9E] = c.opSahf
	c.table[0x9F] = c.opLahf
	c.table[0xA0] = c.opMovAlMoffs
	c.table[0xA1] = c.opMovAxMoffs
	c.table[0xA2] = c.opMovMoffsAl
	c.table[0xA3] = c.opMovMoffsAx
	c.table[0xA4] = c.opMovsb
	c.table[0xA5] = c.opMovsw
	c.table[0xA6] = c.opCmpsb
	c.table[0xA7] = c.opCmpsw
	c.table[0xA8] = c.opTestAlIb
	c.table[0xA9] = c.opTestAxIv
	c.table[0xAA] = c.opStosb
	c.table[0xAB] = c.opStosw
	c.table[0xAC] = c.opLodsb
	c.table[0xAD] = c.opLodsw
	c.table[0xAE] = c.opScasb
	c.table[0xAF] = c.opScasw

	c.table[0xC0] = c.opGrp2EbIb
	c.table[0xC1] = c.opGrp2EvIb
	c.table[0xC2] = c.opRetNearImm
	c.table[0xC3] = c.opRetNear
	c.table[0xC4] = c.opLes
	c.table[0xC5] = c.opLds
	c.table[0xC6] = c.opMovEbIb
	c.table[0xC7] = c.opMovEvIv
	c.table[0xC8] = c.opEnter
	c.table[0xC9] = c.opLeave
	c.table[0xCA] = c.opRetFarImm
	c.table[0xCB] = c.opRetFar
	c.table[0xCC] = c.opInt3
	c.table[0xCD] = c.opIntImm8
	c.table[0xCE] = c.opInto
	c.table[0xCF] = c.opIret

	c.table[0xD0] = c.opGrp2Eb1
	c.table[0xD1] = c.opGrp2Ev1
	c.table[0xD2] = c.opGrp2EbCL
	c.table[0xD3] = c.opGrp2EvCL
	c.table[0xD4] = c.opAam
	c.table[0xD5] = c.opAad
	c.table[0xD7] = c.opXlat

	c.table[0xE0] = c.opLoopne
	c.table[0xE1] = c.opLoope
	c.table[0xE2] = c.opLoop
	c.table[0xE3] = c.opJcxz
	c.table[0xE4] = c.opInAlIb
	c.table[0xE5] = c.opInAxIb
	c.table[0xE6] = c.opOutIbAl
	c.table[0xE7] = c.opOutIbAx
	c.table[0xE8] = c.opCallNear
	c.table[0xE9] = c.opJmpNear
	c.table[0xEA] = c.opJmpFar
	c.table[0xEB] = c.opJmpShort
	c.table[0xEC] = c.opInAlDx
	c.table[0xED] = c.opInAxDx
	c.table[0xEE] = c.opOutDxAl
	c.table[0xEF] = c.opOutDxAx

	c.table[0xF0] = c.makePrefixFlag(pfxLock)
	c.table[0xF2] = c.makePrefixFlag(pfxRepne)
	c.table[0xF3] = c.makePrefixFlag(pfxRep)
	c.table[0xF4] = c.opHlt
	c.table[0xF5] = c.opCmc
	c.table[0xF6] = c.opGrp3Eb
	c.table[0xF7] = c.opGrp3Ev
	c.table[0xF8] = c.opClc
	c.table[0xF9] = c.opStc
	c.table[0xFA] = c.opCli
	c.table[0xFB] = c.opSti
	c.table[0xFC] = c.opCld
	c.table[0xFD] = c.opStd
	c.table[0xFE] = c.opGrp4
	c.table[0xFF] = c.opGrp5

	if c.model.is286() {
		c.table0F[0x00] = c.opGrp6
		c.table0F[0x01] = c.opGrp7
		c.table0F[0x02] = c.opLar
		c.table0F[0x03] = c.opLsl
		c.table0F[0x06] = c.opClts
	}
}
