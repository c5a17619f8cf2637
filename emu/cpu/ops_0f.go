/*
   ops_0f.go - the 80286's two-byte 0x0F opcode map: the system
   descriptor-table/LDTR/TR group, LAR/LSL, and CLTS. Unavailable on
   8086/8088/80186/80188, where buildTables never populates table0F and
   byte 0x0F instead means the undocumented POP CS on 8086/8088 and #UD
   on 80186/80188 (ops_stack.go).

   Copyright (c) 2026, the x86core contributors

   See cpu.go for the project license.
*/
package cpu

func (c *CPU) requirePrivileged() {
	if c.protectedMode() && c.cpl != 0 {
		c.faultCode(vecGP, 0)
	}
}

// opGrp6 dispatches SLDT/STR/LLDT/LTR/VERR/VERW by ModRM /reg.
func (c *CPU) opGrp6() uint16 {
	m := c.decodeModRM()
	switch m.reg & 7 {
	case 0: // SLDT
		c.writeModRM16(m, c.LDTR.Selector)
	case 1: // STR
		c.writeModRM16(m, c.TR.Selector)
	case 2: // LLDT
		c.requirePrivileged()
		sel := c.readModRM16(m)
		c.LDTR = c.loadProtected(sel, false, vecNP)
	case 3: // LTR
		c.requirePrivileged()
		sel := c.readModRM16(m)
		c.TR = c.loadProtected(sel, false, vecNP)
	case 4: // VERR
		sel := c.readModRM16(m)
		c.setZF(c.verify(sel, false))
	case 5: // VERW
		sel := c.readModRM16(m)
		c.setZF(c.verify(sel, true))
	default:
		c.fault(vecUD)
	}
	return c.cycles.ProtLoad
}

// verify implements VERR/VERW's "would this selector load without
// faulting" probe, without mutating any segment register.
func (c *CPU) verify(selector uint16, forWrite bool) bool {
	if selector&0xFFFC == 0 {
		return false
	}
	tableBase, tableLimit := c.descriptorTable(selector)
	entryOff := uint32(selector & 0xFFF8)
	if entryOff+7 > uint32(tableLimit) {
		return false
	}
	b := c.readDescriptorBytes(tableBase + entryOff)
	access := b[5]
	if access&descS == 0 {
		return false
	}
	if access&descExec != 0 {
		if forWrite {
			return false
		}
		return access&descRW != 0 // code segment readable?
	}
	if forWrite {
		return access&descRW != 0
	}
	return true
}

// opGrp7 dispatches SGDT/SIDT/LGDT/LIDT/SMSW/LMSW by ModRM /reg.
func (c *CPU) opGrp7() uint16 {
	m := c.decodeModRM()
	switch m.reg & 7 {
	case 0: // SGDT
		addr := c.effectiveAddr(m)
		c.bus.WriteWord(addr, c.GDTR.Limit)
		c.bus.WriteWord(c.addrMask(addr+2), uint16(c.GDTR.Base))
		c.bus.WriteByte(c.addrMask(addr+4), byte(c.GDTR.Base>>16))
	case 1: // SIDT
		addr := c.effectiveAddr(m)
		c.bus.WriteWord(addr, c.IDTR.Limit)
		c.bus.WriteWord(c.addrMask(addr+2), uint16(c.IDTR.Base))
		c.bus.WriteByte(c.addrMask(addr+4), byte(c.IDTR.Base>>16))
	case 2: // LGDT
		c.requirePrivileged()
		addr := c.effectiveAddr(m)
		limit := c.bus.ReadWord(addr)
		base := uint32(c.bus.ReadWord(c.addrMask(addr+2))) | uint32(c.bus.ReadByte(c.addrMask(addr+4)))<<16
		c.GDTR = DTReg{Base: base, Limit: limit}
	case 3: // LIDT
		c.requirePrivileged()
		addr := c.effectiveAddr(m)
		limit := c.bus.ReadWord(addr)
		base := uint32(c.bus.ReadWord(c.addrMask(addr+2))) | uint32(c.bus.ReadByte(c.addrMask(addr+4)))<<16
		c.IDTR = DTReg{Base: base, Limit: limit}
	case 4: // SMSW
		c.writeModRM16(m, c.MSW)
	case 6: // LMSW
		c.requirePrivileged()
		v := c.readModRM16(m)
		c.MSW = c.MSW&mswPE | v // PE, once set, is sticky until reset
		if v&mswPE != 0 {
			c.MSW |= mswPE
		}
	default:
		c.fault(vecUD)
	}
	return c.cycles.ProtLoad
}

func (c *CPU) opLar() uint16 {
	m := c.decodeModRM()
	sel := c.readModRM16(m)
	if sel&0xFFFC == 0 {
		c.setZF(false)
		return c.cycles.ProtLoad
	}
	tableBase, tableLimit := c.descriptorTable(sel)
	entryOff := uint32(sel & 0xFFF8)
	if entryOff+7 > uint32(tableLimit) {
		c.setZF(false)
		return c.cycles.ProtLoad
	}
	b := c.readDescriptorBytes(tableBase + entryOff)
	if b[5]&descS == 0 {
		c.setZF(false)
		return c.cycles.ProtLoad
	}
	c.setRegWord(m.reg, uint16(b[5])<<8|uint16(b[6]&0xF0))
	c.setZF(true)
	return c.cycles.ProtLoad
}

func (c *CPU) opLsl() uint16 {
	m := c.decodeModRM()
	sel := c.readModRM16(m)
	if sel&0xFFFC == 0 {
		c.setZF(false)
		return c.cycles.ProtLoad
	}
	tableBase, tableLimit := c.descriptorTable(sel)
	entryOff := uint32(sel & 0xFFF8)
	if entryOff+7 > uint32(tableLimit) {
		c.setZF(false)
		return c.cycles.ProtLoad
	}
	b := c.readDescriptorBytes(tableBase + entryOff)
	if b[5]&descS == 0 {
		c.setZF(false)
		return c.cycles.ProtLoad
	}
	limit := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[6]&0x0F)<<16
	c.setRegWord(m.reg, uint16(limit))
	c.setZF(true)
	return c.cycles.ProtLoad
}

func (c *CPU) opClts() uint16 {
	c.requirePrivileged()
	c.MSW &^= mswTS
	return c.cycles.ProtLoad
}
