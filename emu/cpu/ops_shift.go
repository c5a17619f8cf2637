/*
   ops_shift.go - group 2: ROL/ROR/RCL/RCR/SHL/SHR/SAL/SAR, all four
   count encodings (by 1, by CL, by imm8 on 80186+).

   Copyright (c) 2026, the x86core contributors

   See cpu.go for the project license.
*/
package cpu

// maskShiftCount applies spec.md §4.6's 80186+ rule: counts are masked
// mod 32 (mod 16 would be wrong - the mask width is fixed at 5 bits
// regardless of operand size, matching real silicon). Earlier models use
// the count unmasked, up to 255 iterations.
func (c *CPU) maskShiftCount(count uint8) uint8 {
	if c.model.atLeast186() {
		return count & 0x1F
	}
	return count
}

func cf2uint32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

// rotateShift performs one group-2 operation for a given reg (/2..7 and
// the shared ROL/ROR/RCL/RCR 0..3 slots), returning the new value. cf is
// threaded in/out explicitly since RCL/RCR fold it into the rotation.
func (c *CPU) rotateShift(size uint32, val uint32, reg uint8, count uint8, cfIn bool) (result uint32, cfOut, ofOut bool) {
	if count == 0 {
		return val, cfIn, c.getOF()
	}
	bits := uint32(8)
	if size == sizeWord {
		bits = 16
	}
	topBit := uint32(1) << (bits - 1)
	mask := size - 1
	cf := cfIn
	v := val & mask

	switch reg & 7 {
	case 0: // ROL
		for i := uint8(0); i < count; i++ {
			cf = v&topBit != 0
			v = ((v << 1) | cf2uint32(cf)) & mask
		}
		ofOut = (v&topBit != 0) != cf
	case 1: // ROR
		for i := uint8(0); i < count; i++ {
			cf = v&1 != 0
			v = (v >> 1) | (cf2uint32(cf) * topBit)
			v &= mask
		}
		ofOut = (v&topBit != 0) != ((v>>1)&(topBit>>1) != 0)
	case 2: // RCL
		for i := uint8(0); i < count; i++ {
			newCF := v&topBit != 0
			v = ((v << 1) | cf2uint32(cf)) & mask
			cf = newCF
		}
		ofOut = (v&topBit != 0) != cf
	case 3: // RCR
		for i := uint8(0); i < count; i++ {
			newCF := v&1 != 0
			v = (v >> 1) | (cf2uint32(cf) * topBit)
			v &= mask
			cf = newCF
		}
		ofOut = (v&topBit != 0) != (val&topBit != 0)
	case 4, 6: // SHL/SAL (6 is an undocumented alias)
		for i := uint8(0); i < count; i++ {
			cf = v&topBit != 0
			v = (v << 1) & mask
		}
		ofOut = (v&topBit != 0) != cf
	case 5: // SHR
		for i := uint8(0); i < count; i++ {
			cf = v&1 != 0
			v >>= 1
		}
		ofOut = val&topBit != 0
	case 7: // SAR
		sign := val & topBit
		for i := uint8(0); i < count; i++ {
			cf = v&1 != 0
			v = (v >> 1) | sign
		}
		ofOut = false
	}
	return v, cf, ofOut
}

// applyShiftFlags mirrors real hardware's documented quirk: OF is only
// well-defined for a single-bit shift/rotate, so setOF is only called
// when count==1. A multi-bit rotate leaves OF as it was; a multi-bit
// shift leaves it clear, since setArith rewrites the whole triple first.
func (c *CPU) applyShiftFlags(size uint32, reg uint8, result uint32, cf, of bool, count uint8) {
	isRotate := reg&7 <= 3
	if isRotate {
		c.setCF(cf)
		if count == 1 {
			c.setOF(of)
		}
		return
	}
	// SHL/SHR/SAR/SAL: SF/ZF/PF come from the masked result; AF is left
	// undefined by the architecture and simply inherits whatever setArith
	// leaves behind.
	c.setArith(size, result, 0, result)
	c.setCF(cf)
	if count == 1 {
		c.setOF(of)
	}
}

func (c *CPU) grp2Eb(m modRM, count uint8) {
	count = c.maskShiftCount(count)
	val := uint32(c.readModRM8(m))
	result, cf, of := c.rotateShift(sizeByte, val, m.reg, count, c.getCF())
	c.writeModRM8(m, byte(result))
	if count > 0 {
		c.applyShiftFlags(sizeByte, m.reg, result, cf, of, count)
	}
}

func (c *CPU) grp2Ev(m modRM, count uint8) {
	count = c.maskShiftCount(count)
	val := uint32(c.readModRM16(m))
	result, cf, of := c.rotateShift(sizeWord, val, m.reg, count, c.getCF())
	c.writeModRM16(m, uint16(result))
	if count > 0 {
		c.applyShiftFlags(sizeWord, m.reg, result, cf, of, count)
	}
}

func (c *CPU) opGrp2Eb1() uint16 {
	m := c.decodeModRM()
	c.grp2Eb(m, 1)
	return c.cycles.ShiftBy1
}

func (c *CPU) opGrp2Ev1() uint16 {
	m := c.decodeModRM()
	c.grp2Ev(m, 1)
	return c.cycles.ShiftBy1
}

func (c *CPU) opGrp2EbCL() uint16 {
	m := c.decodeModRM()
	c.grp2Eb(m, byte(c.CX))
	return c.cycles.ShiftByCL
}

func (c *CPU) opGrp2EvCL() uint16 {
	m := c.decodeModRM()
	c.grp2Ev(m, byte(c.CX))
	return c.cycles.ShiftByCL
}

func (c *CPU) opGrp2EbIb() uint16 {
	if !c.model.atLeast186() {
		c.fault(vecUD)
	}
	m := c.decodeModRM()
	count := c.fetchIPByte()
	c.grp2Eb(m, count)
	return c.cycles.ShiftByImm
}

func (c *CPU) opGrp2EvIb() uint16 {
	if !c.model.atLeast186() {
		c.fault(vecUD)
	}
	m := c.decodeModRM()
	count := c.fetchIPByte()
	c.grp2Ev(m, count)
	return c.cycles.ShiftByImm
}

func (c *CPU) opAam() uint16 {
	base := c.fetchIPByte()
	if base == 0 {
		c.fault(vecDE)
	}
	al := byte(c.AX)
	ah := al / base
	al = al % base
	c.AX = uint16(ah)<<8 | uint16(al)
	c.setZF(al == 0)
	c.setSF(al&0x80 != 0)
	c.setPF(parityTable[al])
	return c.cycles.Flags
}

func (c *CPU) opAad() uint16 {
	base := c.fetchIPByte()
	al := byte(c.AX)
	ah := byte(c.AX >> 8)
	result := ah*base + al
	c.AX = uint16(result)
	c.setZF(result == 0)
	c.setSF(result&0x80 != 0)
	c.setPF(parityTable[result])
	return c.cycles.Flags
}
