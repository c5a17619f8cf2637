/*
   ops_data.go - data movement: MOV variants, LEA, LES/LDS, XCHG,
   CBW/CWD, SAHF/LAHF, and the REP-able string instructions.

   Copyright (c) 2026, the x86core contributors

   See cpu.go for the project license.
*/
package cpu

func (c *CPU) opMovEbGb() uint16 {
	m := c.decodeModRM()
	c.writeModRM8(m, c.getRegByte(m.reg))
	return c.movCost(m)
}

func (c *CPU) opMovEvGv() uint16 {
	m := c.decodeModRM()
	c.writeModRM16(m, c.getRegWord(m.reg))
	return c.movCost(m)
}

func (c *CPU) opMovGbEb() uint16 {
	m := c.decodeModRM()
	c.setRegByte(m.reg, c.readModRM8(m))
	return c.movCost(m)
}

func (c *CPU) opMovGvEv() uint16 {
	m := c.decodeModRM()
	c.setRegWord(m.reg, c.readModRM16(m))
	return c.movCost(m)
}

func (c *CPU) movCost(m modRM) uint16 {
	if m.isReg {
		return c.cycles.MovRegReg
	}
	return c.cycles.MovRegReg + m.eaCycles + 4
}

func (c *CPU) opMovEvSw() uint16 {
	m := c.decodeModRM()
	c.writeModRM16(m, c.segByIndex(m.reg).Selector)
	return c.cycles.MovSeg
}

func (c *CPU) opMovSwEv() uint16 {
	m := c.decodeModRM()
	v := c.readModRM16(m)
	switch m.reg & 3 {
	case 0:
		c.loadES(v)
	case 1:
		c.loadCS(v, c.IP) // MOV CS is not a real encoding but kept harmless
	case 2:
		c.loadSS(v)
	default:
		c.loadDS(v)
	}
	return c.cycles.MovSeg
}

func (c *CPU) makeMovRegImm8(r uint8) opFunc {
	return func() uint16 {
		c.setRegByte(r, c.fetchIPByte())
		return c.cycles.MovRegImm
	}
}

func (c *CPU) makeMovRegImm16(r uint8) opFunc {
	return func() uint16 {
		c.setRegWord(r, c.fetchIPWord())
		return c.cycles.MovRegImm
	}
}

func (c *CPU) opMovEbIb() uint16 {
	m := c.decodeModRM()
	imm := c.fetchIPByte()
	c.writeModRM8(m, imm)
	return c.cycles.MovMemImm
}

func (c *CPU) opMovEvIv() uint16 {
	m := c.decodeModRM()
	imm := c.fetchIPWord()
	c.writeModRM16(m, imm)
	return c.cycles.MovMemImm
}

func (c *CPU) opMovAlMoffs() uint16 {
	off := c.fetchIPWord()
	addr := c.checkRead(c.effSeg(false), off, 0)
	c.AX = c.AX&0xFF00 | uint16(c.bus.ReadByte(addr))
	return c.cycles.MovAcc
}

func (c *CPU) opMovAxMoffs() uint16 {
	off := c.fetchIPWord()
	addr := c.checkRead(c.effSeg(false), off, 1)
	c.AX = c.bus.ReadWord(addr)
	return c.cycles.MovAcc
}

func (c *CPU) opMovMoffsAl() uint16 {
	off := c.fetchIPWord()
	addr := c.checkWrite(c.effSeg(false), off, 0)
	c.bus.WriteByte(addr, byte(c.AX))
	return c.cycles.MovAcc
}

func (c *CPU) opMovMoffsAx() uint16 {
	off := c.fetchIPWord()
	addr := c.checkWrite(c.effSeg(false), off, 1)
	c.bus.WriteWord(addr, c.AX)
	return c.cycles.MovAcc
}

func (c *CPU) opPopEv() uint16 {
	m := c.decodeModRM()
	c.writeModRM16(m, c.popWord())
	return c.cycles.PopReg
}

// opDAA/opDAS/opAAA/opAAS are the classic 8080-descended decimal-adjust
// opcodes. They set AF/CF as a side effect of the adjustment rather than
// through the normal ALU triple, since the adjustment amount itself
// depends on AF/CF's incoming value (spec.md §4.2 calls these out as the
// one place flags feed back into computation instead of only recording
// it).
func (c *CPU) opDAA() uint16 {
	al := byte(c.AX)
	cf := c.getCF()
	af := c.getAF()
	oldAL := al
	if al&0x0F > 9 || af {
		c.setRegByte(0, al+6)
		al = byte(c.AX)
		c.setAF(true)
		if oldAL > 0xF9 {
			cf = true
		}
	} else {
		c.setAF(false)
	}
	if oldAL > 0x99 || cf {
		c.setRegByte(0, al+0x60)
		cf = true
	} else {
		cf = false
	}
	c.setCF(cf)
	al = byte(c.AX)
	c.setZF(al == 0)
	c.setSF(al&0x80 != 0)
	c.setPF(parityTable[al])
	return c.cycles.Flags
}

func (c *CPU) opDAS() uint16 {
	al := byte(c.AX)
	cf := c.getCF()
	af := c.getAF()
	oldAL := al
	if al&0x0F > 9 || af {
		c.setAF(true)
		borrow := oldAL < 6
		c.setRegByte(0, al-6)
		al = byte(c.AX)
		if borrow {
			cf = true
		}
	} else {
		c.setAF(false)
	}
	if oldAL > 0x99 || cf {
		c.setRegByte(0, al-0x60)
		cf = true
	}
	c.setCF(cf)
	al = byte(c.AX)
	c.setZF(al == 0)
	c.setSF(al&0x80 != 0)
	c.setPF(parityTable[al])
	return c.cycles.Flags
}

func (c *CPU) opAAA() uint16 {
	al := byte(c.AX)
	if al&0x0F > 9 || c.getAF() {
		c.AX += 0x0106
		c.setAF(true)
		c.setCF(true)
	} else {
		c.setAF(false)
		c.setCF(false)
	}
	c.AX &= 0xFF0F
	return c.cycles.Flags
}

func (c *CPU) opAAS() uint16 {
	al := byte(c.AX)
	if al&0x0F > 9 || c.getAF() {
		c.AX -= 6
		c.setRegByte(4, byte(c.AX>>8)-1)
		c.setAF(true)
		c.setCF(true)
	} else {
		c.setAF(false)
		c.setCF(false)
	}
	c.AX &= 0xFF0F
	return c.cycles.Flags
}

func (c *CPU) makeIncReg(r uint8) opFunc {
	return func() uint16 {
		v := c.getRegWord(r)
		result := uint32(v) + 1
		c.setArithPreserveCF(sizeWord, uint32(v), 1, result)
		c.setRegWord(r, uint16(result))
		return c.cycles.IncDecReg
	}
}

func (c *CPU) makeDecReg(r uint8) opFunc {
	return func() uint16 {
		v := c.getRegWord(r)
		result := uint32(v) - 1
		c.setArithPreserveCF(sizeWord, uint32(v), 1, result)
		c.setRegWord(r, uint16(result))
		return c.cycles.IncDecReg
	}
}

func (c *CPU) opXlat() uint16 {
	addr := c.checkRead(c.effSeg(false), c.BX+uint16(byte(c.AX)), 0)
	c.setRegByte(0, c.bus.ReadByte(addr))
	return c.cycles.Flags
}

func (c *CPU) opLea() uint16 {
	m := c.decodeModRM()
	if m.isReg {
		c.fault(vecUD)
	}
	c.setRegWord(m.reg, m.offset)
	return c.cycles.Lea
}

func (c *CPU) opLes() uint16 {
	m := c.decodeModRM()
	addr := c.effectiveAddr(m)
	c.setRegWord(m.reg, c.bus.ReadWord(addr))
	c.loadES(c.bus.ReadWord(c.addrMask(addr + 2)))
	return c.cycles.AluRegMem
}

func (c *CPU) opLds() uint16 {
	m := c.decodeModRM()
	addr := c.effectiveAddr(m)
	c.setRegWord(m.reg, c.bus.ReadWord(addr))
	c.loadDS(c.bus.ReadWord(c.addrMask(addr + 2)))
	return c.cycles.AluRegMem
}

func (c *CPU) opXchgEbGb() uint16 {
	m := c.decodeModRM()
	a := c.readModRM8(m)
	b := c.getRegByte(m.reg)
	c.writeModRM8(m, b)
	c.setRegByte(m.reg, a)
	return c.cycles.Xchg
}

func (c *CPU) opXchgEvGv() uint16 {
	m := c.decodeModRM()
	a := c.readModRM16(m)
	b := c.getRegWord(m.reg)
	c.writeModRM16(m, b)
	c.setRegWord(m.reg, a)
	return c.cycles.Xchg
}

func (c *CPU) makeXchgAx(r uint8) opFunc {
	return func() uint16 {
		if r == 0 {
			return c.cycles.Nop // 0x90 NOP = XCHG AX,AX
		}
		a := c.AX
		b := c.getRegWord(r)
		c.AX = b
		c.setRegWord(r, a)
		return c.cycles.Xchg
	}
}

func (c *CPU) opCbw() uint16 {
	c.AX = uint16(int16(int8(byte(c.AX))))
	return c.cycles.Flags
}

func (c *CPU) opCwd() uint16 {
	if int16(c.AX) < 0 {
		c.DX = 0xFFFF
	} else {
		c.DX = 0
	}
	return c.cycles.Flags
}

func (c *CPU) opSahf() uint16 {
	ah := byte(c.AX >> 8)
	ps := c.getPS()&0xFF00 | uint16(ah)
	c.setPS(ps)
	return c.cycles.Flags
}

func (c *CPU) opLahf() uint16 {
	c.AX = c.AX&0x00FF | uint16(byte(c.getPS()))<<8
	return c.cycles.Flags
}

func (c *CPU) opPushf() uint16 {
	c.pushWord(c.getPS())
	return c.cycles.PushReg
}

func (c *CPU) opPopf() uint16 {
	c.setPS(c.popWord())
	return c.cycles.PopReg
}

// --- string instructions -----------------------------------------------

func (c *CPU) strStep() uint16 {
	if c.getDF() {
		return ^uint16(0) // -1
	}
	return 1
}

func (c *CPU) wideStrStep() uint16 {
	if c.getDF() {
		return ^uint16(1) // -2
	}
	return 2
}

// repActive reports whether a REP/REPNE prefix is in force for the
// instruction currently dispatching.
func (c *CPU) repActive() bool { return c.opPrefixes.repeat() }

// repContinue rewinds IP (and the prefetch queue, per spec.md §4.4's
// tail-rewind-for-repeated-string-instructions note) back to the start
// of the prefix chain so the next ExecCore iteration re-decodes it as a
// fresh instruction - which naturally runs the interrupt check between
// each element, giving REP string ops precise atomicity (spec.md §8).
func (c *CPU) repContinue() {
	resume := c.groupIP
	if !c.model.atLeast186() {
		resume = c.lastByteIP
	}
	delta := int(c.IP - resume)
	c.IP = resume
	c.pfq.rewind(delta, c.linearCS())
	c.opPrefixes = 0
	c.prefixCount = 0
}

func (c *CPU) opMovsb() uint16 {
	if c.repActive() && c.CX == 0 {
		c.opPrefixes = 0
		return c.cycles.RepOverhead
	}
	src := c.checkRead(c.effSeg(false), c.SI, 0)
	dst := c.checkWrite(&c.ES, c.DI, 0)
	c.bus.WriteByte(dst, c.bus.ReadByte(src))
	c.SI += c.strStep()
	c.DI += c.strStep()
	if c.repActive() {
		c.CX--
		if c.CX != 0 {
			c.repContinue()
		} else {
			c.opPrefixes = 0
		}
	}
	return c.cycles.StringElem
}

func (c *CPU) opMovsw() uint16 {
	if c.repActive() && c.CX == 0 {
		c.opPrefixes = 0
		return c.cycles.RepOverhead
	}
	src := c.checkRead(c.effSeg(false), c.SI, 1)
	dst := c.checkWrite(&c.ES, c.DI, 1)
	c.bus.WriteWord(dst, c.bus.ReadWord(src))
	c.SI += c.wideStrStep()
	c.DI += c.wideStrStep()
	if c.repActive() {
		c.CX--
		if c.CX != 0 {
			c.repContinue()
		} else {
			c.opPrefixes = 0
		}
	}
	return c.cycles.StringElem
}

func (c *CPU) opStosb() uint16 {
	if c.repActive() && c.CX == 0 {
		c.opPrefixes = 0
		return c.cycles.RepOverhead
	}
	dst := c.checkWrite(&c.ES, c.DI, 0)
	c.bus.WriteByte(dst, byte(c.AX))
	c.DI += c.strStep()
	if c.repActive() {
		c.CX--
		if c.CX != 0 {
			c.repContinue()
		} else {
			c.opPrefixes = 0
		}
	}
	return c.cycles.StringElem
}

func (c *CPU) opStosw() uint16 {
	if c.repActive() && c.CX == 0 {
		c.opPrefixes = 0
		return c.cycles.RepOverhead
	}
	dst := c.checkWrite(&c.ES, c.DI, 1)
	c.bus.WriteWord(dst, c.AX)
	c.DI += c.wideStrStep()
	if c.repActive() {
		c.CX--
		if c.CX != 0 {
			c.repContinue()
		} else {
			c.opPrefixes = 0
		}
	}
	return c.cycles.StringElem
}

func (c *CPU) opLodsb() uint16 {
	if c.repActive() && c.CX == 0 {
		c.opPrefixes = 0
		return c.cycles.RepOverhead
	}
	src := c.checkRead(c.effSeg(false), c.SI, 0)
	c.AX = c.AX&0xFF00 | uint16(c.bus.ReadByte(src))
	c.SI += c.strStep()
	if c.repActive() {
		c.CX--
		if c.CX != 0 {
			c.repContinue()
		} else {
			c.opPrefixes = 0
		}
	}
	return c.cycles.StringElem
}

func (c *CPU) opLodsw() uint16 {
	if c.repActive() && c.CX == 0 {
		c.opPrefixes = 0
		return c.cycles.RepOverhead
	}
	src := c.checkRead(c.effSeg(false), c.SI, 1)
	c.AX = c.bus.ReadWord(src)
	c.SI += c.wideStrStep()
	if c.repActive() {
		c.CX--
		if c.CX != 0 {
			c.repContinue()
		} else {
			c.opPrefixes = 0
		}
	}
	return c.cycles.StringElem
}

// repeatConditionHolds implements REPE/REPNE's extra termination
// condition on top of CX!=0: REP(E) continues only while ZF=1, REPNE
// only while ZF=0.
func (c *CPU) repeatConditionHolds() bool {
	if c.opPrefixes&pfxRep != 0 {
		return c.getZF()
	}
	if c.opPrefixes&pfxRepne != 0 {
		return !c.getZF()
	}
	return true
}

func (c *CPU) opCmpsb() uint16 {
	if c.repActive() && c.CX == 0 {
		c.opPrefixes = 0
		return c.cycles.RepOverhead
	}
	a := c.bus.ReadByte(c.checkRead(c.effSeg(false), c.SI, 0))
	b := c.bus.ReadByte(c.checkRead(&c.ES, c.DI, 0))
	result := uint32(a) - uint32(b)
	c.setArith(sizeByte, uint32(a), uint32(b), result)
	c.SI += c.strStep()
	c.DI += c.strStep()
	if c.repActive() {
		c.CX--
		if c.CX != 0 && c.repeatConditionHolds() {
			c.repContinue()
		} else {
			c.opPrefixes = 0
		}
	}
	return c.cycles.StringElem
}

func (c *CPU) opCmpsw() uint16 {
	if c.repActive() && c.CX == 0 {
		c.opPrefixes = 0
		return c.cycles.RepOverhead
	}
	a := c.bus.ReadWord(c.checkRead(c.effSeg(false), c.SI, 1))
	b := c.bus.ReadWord(c.checkRead(&c.ES, c.DI, 1))
	result := uint32(a) - uint32(b)
	c.setArith(sizeWord, uint32(a), uint32(b), result)
	c.SI += c.wideStrStep()
	c.DI += c.wideStrStep()
	if c.repActive() {
		c.CX--
		if c.CX != 0 && c.repeatConditionHolds() {
			c.repContinue()
		} else {
			c.opPrefixes = 0
		}
	}
	return c.cycles.StringElem
}

func (c *CPU) opScasb() uint16 {
	if c.repActive() && c.CX == 0 {
		c.opPrefixes = 0
		return c.cycles.RepOverhead
	}
	b := c.bus.ReadByte(c.checkRead(&c.ES, c.DI, 0))
	a := byte(c.AX)
	result := uint32(a) - uint32(b)
	c.setArith(sizeByte, uint32(a), uint32(b), result)
	c.DI += c.strStep()
	if c.repActive() {
		c.CX--
		if c.CX != 0 && c.repeatConditionHolds() {
			c.repContinue()
		} else {
			c.opPrefixes = 0
		}
	}
	return c.cycles.StringElem
}

func (c *CPU) opScasw() uint16 {
	if c.repActive() && c.CX == 0 {
		c.opPrefixes = 0
		return c.cycles.RepOverhead
	}
	b := c.bus.ReadWord(c.checkRead(&c.ES, c.DI, 1))
	a := c.AX
	result := uint32(a) - uint32(b)
	c.setArith(sizeWord, uint32(a), uint32(b), result)
	c.DI += c.wideStrStep()
	if c.repActive() {
		c.CX--
		if c.CX != 0 && c.repeatConditionHolds() {
			c.repContinue()
		} else {
			c.opPrefixes = 0
		}
	}
	return c.cycles.StringElem
}

func (c *CPU) opInsb() uint16 {
	if !c.model.atLeast186() {
		c.fault(vecUD)
	}
	dst := c.checkWrite(&c.ES, c.DI, 0)
	c.bus.WriteByte(dst, byte(c.inPort(c.DX, false)))
	c.DI += c.strStep()
	return c.cycles.StringElem
}

func (c *CPU) opInsw() uint16 {
	if !c.model.atLeast186() {
		c.fault(vecUD)
	}
	dst := c.checkWrite(&c.ES, c.DI, 1)
	c.bus.WriteWord(dst, c.inPort(c.DX, true))
	c.DI += c.wideStrStep()
	return c.cycles.StringElem
}

func (c *CPU) opOutsb() uint16 {
	if !c.model.atLeast186() {
		c.fault(vecUD)
	}
	src := c.bus.ReadByte(c.checkRead(c.effSeg(false), c.SI, 0))
	c.outPort(c.DX, uint16(src), false)
	c.SI += c.strStep()
	return c.cycles.StringElem
}

func (c *CPU) opOutsw() uint16 {
	if !c.model.atLeast186() {
		c.fault(vecUD)
	}
	src := c.bus.ReadWord(c.checkRead(c.effSeg(false), c.SI, 1))
	c.outPort(c.DX, src, true)
	c.SI += c.wideStrStep()
	return c.cycles.StringElem
}
