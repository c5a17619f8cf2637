/*
   ops_alu.go - the eight classic ALU groups (ADD OR ADC SBB AND SUB XOR
   CMP), their six standard encodings, and groups 1/3/4/5.

   Copyright (c) 2026, the x86core contributors

   See cpu.go for the project license.
*/
package cpu

// aluClass pairs an ALU group's compute function with whether it belongs
// to the logical family (OR/AND/XOR: CF/OF always clear) rather than the
// arithmetic family (ADD/ADC/SBB/SUB/CMP: full carry/borrow chain).
type aluClass struct {
	compute   func(c *CPU, dst, src uint32) uint32
	isLogical bool
}

func boolToWord(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

var aluClasses = [8]aluClass{
	{compute: func(c *CPU, dst, src uint32) uint32 { return dst + src }},
	{compute: func(c *CPU, dst, src uint32) uint32 { return dst | src }, isLogical: true},
	{compute: func(c *CPU, dst, src uint32) uint32 { return dst + src + boolToWord(c.getCF()) }},
	{compute: func(c *CPU, dst, src uint32) uint32 { return dst - src - boolToWord(c.getCF()) }},
	{compute: func(c *CPU, dst, src uint32) uint32 { return dst & src }, isLogical: true},
	{compute: func(c *CPU, dst, src uint32) uint32 { return dst - src }},
	{compute: func(c *CPU, dst, src uint32) uint32 { return dst ^ src }, isLogical: true},
	{compute: func(c *CPU, dst, src uint32) uint32 { return dst - src }}, // CMP: same as SUB, no writeback
}

func (c *CPU) applyAluFlags(cls aluClass, size, dst, src, result uint32) {
	if cls.isLogical {
		c.setLogical(size, result&(size-1))
	} else {
		c.setArith(size, dst, src, result)
	}
}

// makeAluEbGb builds the "Eb, Gb" encoding: r/m8 op= reg8.
func (c *CPU) makeAluEbGb(cls aluClass, isCmp bool) opFunc {
	return func() uint16 {
		m := c.decodeModRM()
		dst := uint32(c.readModRM8(m))
		src := uint32(c.getRegByte(m.reg))
		result := cls.compute(c, dst, src)
		c.applyAluFlags(cls, sizeByte, dst, src, result)
		if !isCmp {
			c.writeModRM8(m, byte(result))
		}
		return c.aluCost(m, false)
	}
}

func (c *CPU) makeAluEvGv(cls aluClass, isCmp bool) opFunc {
	return func() uint16 {
		m := c.decodeModRM()
		dst := uint32(c.readModRM16(m))
		src := uint32(c.getRegWord(m.reg))
		result := cls.compute(c, dst, src)
		c.applyAluFlags(cls, sizeWord, dst, src, result)
		if !isCmp {
			c.writeModRM16(m, uint16(result))
		}
		return c.aluCost(m, true)
	}
}

func (c *CPU) makeAluGbEb(cls aluClass, isCmp bool) opFunc {
	return func() uint16 {
		m := c.decodeModRM()
		dst := uint32(c.getRegByte(m.reg))
		src := uint32(c.readModRM8(m))
		result := cls.compute(c, dst, src)
		c.applyAluFlags(cls, sizeByte, dst, src, result)
		if !isCmp {
			c.setRegByte(m.reg, byte(result))
		}
		return c.aluCost(m, false)
	}
}

func (c *CPU) makeAluGvEv(cls aluClass, isCmp bool) opFunc {
	return func() uint16 {
		m := c.decodeModRM()
		dst := uint32(c.getRegWord(m.reg))
		src := uint32(c.readModRM16(m))
		result := cls.compute(c, dst, src)
		c.applyAluFlags(cls, sizeWord, dst, src, result)
		if !isCmp {
			c.setRegWord(m.reg, uint16(result))
		}
		return c.aluCost(m, true)
	}
}

func (c *CPU) makeAluAlIb(cls aluClass, isCmp bool) opFunc {
	return func() uint16 {
		imm := uint32(c.fetchIPByte())
		dst := uint32(byte(c.AX))
		result := cls.compute(c, dst, imm)
		c.applyAluFlags(cls, sizeByte, dst, imm, result)
		if !isCmp {
			c.AX = c.AX&0xFF00 | uint16(byte(result))
		}
		return c.cycles.AluAccImm
	}
}

func (c *CPU) makeAluAxIv(cls aluClass, isCmp bool) opFunc {
	return func() uint16 {
		imm := uint32(c.fetchIPWord())
		dst := uint32(c.AX)
		result := cls.compute(c, dst, imm)
		c.applyAluFlags(cls, sizeWord, dst, imm, result)
		if !isCmp {
			c.AX = uint16(result)
		}
		return c.cycles.AluAccImm
	}
}

func (c *CPU) aluCost(m modRM, wide bool) uint16 {
	if m.isReg {
		return c.cycles.AluRegReg
	}
	cost := c.cycles.AluRegMem + m.eaCycles
	_ = wide
	return cost
}

// opGrp1Eb/Ev/EvIb: immediate-to-E/M ALU ops (0x80-0x83), second-level
// dispatch on ModRM's /reg field selects the ALU class.
func (c *CPU) opGrp1Eb() uint16 {
	m := c.decodeModRM()
	cls := aluClasses[m.reg]
	imm := uint32(c.fetchIPByte())
	dst := uint32(c.readModRM8(m))
	result := cls.compute(c, dst, imm)
	c.applyAluFlags(cls, sizeByte, dst, imm, result)
	if m.reg != 7 {
		c.writeModRM8(m, byte(result))
	}
	return c.aluCost(m, false)
}

func (c *CPU) opGrp1Ev() uint16 {
	m := c.decodeModRM()
	cls := aluClasses[m.reg]
	imm := uint32(c.fetchIPWord())
	dst := uint32(c.readModRM16(m))
	result := cls.compute(c, dst, imm)
	c.applyAluFlags(cls, sizeWord, dst, imm, result)
	if m.reg != 7 {
		c.writeModRM16(m, uint16(result))
	}
	return c.aluCost(m, true)
}

func (c *CPU) opGrp1EvIb() uint16 {
	m := c.decodeModRM()
	cls := aluClasses[m.reg]
	imm := uint32(uint16(int16(int8(c.fetchIPByte())))) // sign-extended to 16, kept as uint32
	dst := uint32(c.readModRM16(m))
	result := cls.compute(c, dst, imm)
	c.applyAluFlags(cls, sizeWord, dst, imm, result)
	if m.reg != 7 {
		c.writeModRM16(m, uint16(result))
	}
	return c.aluCost(m, true)
}

func (c *CPU) opTestEbGb() uint16 {
	m := c.decodeModRM()
	dst := uint32(c.readModRM8(m))
	src := uint32(c.getRegByte(m.reg))
	c.setLogical(sizeByte, (dst&src)&0xFF)
	return c.aluCost(m, false)
}

func (c *CPU) opTestEvGv() uint16 {
	m := c.decodeModRM()
	dst := uint32(c.readModRM16(m))
	src := uint32(c.getRegWord(m.reg))
	c.setLogical(sizeWord, (dst & src))
	return c.aluCost(m, true)
}

func (c *CPU) opTestAlIb() uint16 {
	imm := uint32(c.fetchIPByte())
	c.setLogical(sizeByte, (uint32(byte(c.AX)) & imm))
	return c.cycles.AluAccImm
}

func (c *CPU) opTestAxIv() uint16 {
	imm := uint32(c.fetchIPWord())
	c.setLogical(sizeWord, uint32(c.AX)&imm)
	return c.cycles.AluAccImm
}

// opGrp3Eb/Ev: TEST/NOT/NEG/MUL/IMUL/DIV/IDIV (0xF6/0xF7).
func (c *CPU) opGrp3Eb() uint16 {
	m := c.decodeModRM()
	v := c.readModRM8(m)
	switch m.reg {
	case 0, 1: // TEST Eb, ib
		imm := c.fetchIPByte()
		c.setLogical(sizeByte, uint32(v&imm))
	case 2: // NOT
		c.writeModRM8(m, ^v)
	case 3: // NEG
		result := uint32(0) - uint32(v)
		c.setArith(sizeByte, 0, uint32(v), result)
		c.setCF(v != 0)
		c.writeModRM8(m, byte(result))
	case 4: // MUL AL
		prod := uint16(c.AX&0xFF) * uint16(v)
		c.AX = c.AX&0xFF00 | prod&0xFF
		c.AX = c.AX&0x00FF | (prod & 0xFF00)
		hi := prod >> 8
		c.setCF(hi != 0)
		c.setOF(hi != 0)
		return c.cycles.MulByte
	case 5: // IMUL AL
		prod := int16(int8(byte(c.AX))) * int16(int8(v))
		c.AX = uint16(prod)
		ext := prod>>8 == 0 || prod>>8 == -1
		c.setCF(!ext)
		c.setOF(!ext)
		return c.cycles.ImulByte
	case 6: // DIV AL
		if v == 0 {
			c.fault(vecDE)
		}
		q := c.AX / uint16(v)
		r := c.AX % uint16(v)
		if q > 0xFF {
			c.fault(vecDE)
		}
		c.AX = uint16(r)<<8 | q&0xFF
		return c.cycles.DivByte
	case 7: // IDIV AL
		dividend := int16(c.AX)
		divisor := int16(int8(v))
		if divisor == 0 {
			c.fault(vecDE)
		}
		q := dividend / divisor
		r := dividend % divisor
		if q > 127 || q < -128 {
			if !c.model.atLeast186() || q != -128 {
				c.fault(vecDE)
			}
		}
		c.AX = uint16(uint8(r))<<8 | uint16(uint8(q))
		return c.cycles.IdivByte
	}
	return c.aluCost(m, false)
}

func (c *CPU) opGrp3Ev() uint16 {
	m := c.decodeModRM()
	v := c.readModRM16(m)
	switch m.reg {
	case 0, 1:
		imm := c.fetchIPWord()
		c.setLogical(sizeWord, uint32(v&imm))
	case 2:
		c.writeModRM16(m, ^v)
	case 3:
		result := uint32(0) - uint32(v)
		c.setArith(sizeWord, 0, uint32(v), result)
		c.setCF(v != 0)
		c.writeModRM16(m, uint16(result))
	case 4: // MUL AX
		prod := uint32(c.AX) * uint32(v)
		c.DX = uint16(prod >> 16)
		c.AX = uint16(prod)
		c.setCF(c.DX != 0)
		c.setOF(c.DX != 0)
		return c.cycles.MulWord
	case 5: // IMUL AX
		prod := int32(int16(c.AX)) * int32(int16(v))
		c.DX = uint16(uint32(prod) >> 16)
		c.AX = uint16(prod)
		ext := prod>>16 == 0 || prod>>16 == -1
		c.setCF(!ext)
		c.setOF(!ext)
		return c.cycles.ImulWord
	case 6: // DIV AX (with DX as high half)
		if v == 0 {
			c.fault(vecDE)
		}
		dividend := uint32(c.DX)<<16 | uint32(c.AX)
		q := dividend / uint32(v)
		r := dividend % uint32(v)
		if q > 0xFFFF {
			c.fault(vecDE)
		}
		c.AX = uint16(q)
		c.DX = uint16(r)
		return c.cycles.DivWord
	case 7: // IDIV AX
		dividend := int32(uint32(c.DX)<<16 | uint32(c.AX))
		divisor := int32(int16(v))
		if divisor == 0 {
			c.fault(vecDE)
		}
		q := dividend / divisor
		r := dividend % divisor
		if q > 32767 || q < -32768 {
			if !c.model.atLeast186() || q != -32768 {
				c.fault(vecDE)
			}
		}
		c.AX = uint16(q)
		c.DX = uint16(r)
		return c.cycles.IdivWord
	}
	return c.aluCost(m, true)
}

// opGrp4: INC/DEC Eb (0xFE); only /reg 0 and 1 are legal, others #UD.
func (c *CPU) opGrp4() uint16 {
	m := c.decodeModRM()
	v := uint32(c.readModRM8(m))
	switch m.reg {
	case 0:
		result := v + 1
		c.setArithPreserveCF(sizeByte, v, 1, result)
		c.writeModRM8(m, byte(result))
	case 1:
		result := v - 1
		c.setArithPreserveCF(sizeByte, v, 1, result)
		c.writeModRM8(m, byte(result))
	default:
		c.fault(vecUD)
	}
	return c.aluCost(m, false)
}

// opGrp5: INC/DEC Ev, CALL/CALLF/JMP/JMPF Ev, PUSH Ev (0xFF).
func (c *CPU) opGrp5() uint16 {
	m := c.decodeModRM()
	switch m.reg {
	case 0:
		v := uint32(c.readModRM16(m))
		result := v + 1
		c.setArithPreserveCF(sizeWord, v, 1, result)
		c.writeModRM16(m, uint16(result))
		return c.aluCost(m, true)
	case 1:
		v := uint32(c.readModRM16(m))
		result := v - 1
		c.setArithPreserveCF(sizeWord, v, 1, result)
		c.writeModRM16(m, uint16(result))
		return c.aluCost(m, true)
	case 2: // CALL near indirect
		target := c.readModRM16(m)
		c.pushWord(c.IP)
		c.IP = target
		c.pfq.flush(c.linearCS())
		return c.cycles.CallNear
	case 3: // CALL far indirect
		addr := c.effectiveAddr(m)
		newIP := c.bus.ReadWord(addr)
		newCS := c.bus.ReadWord(c.addrMask(addr + 2))
		c.pushWord(c.CS.Selector)
		c.pushWord(c.IP)
		c.loadCS(newCS, newIP)
		return c.cycles.CallFar
	case 4: // JMP near indirect
		c.IP = c.readModRM16(m)
		c.pfq.flush(c.linearCS())
		return c.cycles.JmpNear
	case 5: // JMP far indirect
		addr := c.effectiveAddr(m)
		newIP := c.bus.ReadWord(addr)
		newCS := c.bus.ReadWord(c.addrMask(addr + 2))
		c.loadCS(newCS, newIP)
		return c.cycles.JmpFar
	case 6: // PUSH Ev
		v := c.readModRM16(m)
		c.pushWord(v)
		return c.cycles.PushMem
	default:
		c.fault(vecUD)
		return 0
	}
}
