/*
   ops_control.go - Jcc, JMP/CALL/RET in all their near/far/short forms,
   LOOP family, INT/INTO/IRET, HLT, and the single-bit flag-control
   opcodes (CLC/STC/CMC/CLI/STI/CLD/STD).

   Copyright (c) 2026, the x86core contributors

   See cpu.go for the project license.
*/
package cpu

// condTrue evaluates one of the sixteen Jcc conditions (spec.md §1's
// instruction-set surface); cc is the low nibble of the 0x70-0x7F/0x80-
// 0x8F opcode byte, the standard Intel condition-code encoding.
func (c *CPU) condTrue(cc uint8) bool {
	switch cc & 0xF {
	case 0x0:
		return c.getOF()
	case 0x1:
		return !c.getOF()
	case 0x2:
		return c.getCF()
	case 0x3:
		return !c.getCF()
	case 0x4:
		return c.getZF()
	case 0x5:
		return !c.getZF()
	case 0x6:
		return c.getCF() || c.getZF()
	case 0x7:
		return !c.getCF() && !c.getZF()
	case 0x8:
		return c.getSF()
	case 0x9:
		return !c.getSF()
	case 0xA:
		return c.getPF()
	case 0xB:
		return !c.getPF()
	case 0xC:
		return c.getSF() != c.getOF()
	case 0xD:
		return c.getSF() == c.getOF()
	case 0xE:
		return c.getZF() || c.getSF() != c.getOF()
	default: // 0xF
		return !c.getZF() && c.getSF() == c.getOF()
	}
}

func (c *CPU) makeJcc(cc uint8) opFunc {
	return func() uint16 {
		disp := c.fetchIPDisp8()
		if c.condTrue(cc) {
			c.IP = uint16(int32(c.IP) + int32(disp))
			return c.cycles.JccTaken
		}
		return c.cycles.JccNotTaken
	}
}

func (c *CPU) opJmpShort() uint16 {
	disp := c.fetchIPDisp8()
	c.IP = uint16(int32(c.IP) + int32(disp))
	return c.cycles.JmpShort
}

func (c *CPU) opJmpNear() uint16 {
	disp := c.fetchIPDisp16()
	c.IP = uint16(int32(c.IP) + int32(disp))
	return c.cycles.JmpNear
}

func (c *CPU) opJmpFar() uint16 {
	newIP := c.fetchIPWord()
	newCS := c.fetchIPWord()
	c.loadCS(newCS, newIP)
	return c.cycles.JmpFar
}

func (c *CPU) opCallNear() uint16 {
	disp := c.fetchIPDisp16()
	ret := c.IP
	c.IP = uint16(int32(c.IP) + int32(disp))
	c.pushWord(ret)
	return c.cycles.CallNear
}

func (c *CPU) opCallFar() uint16 {
	newIP := c.fetchIPWord()
	newCS := c.fetchIPWord()
	c.pushWord(c.CS.Selector)
	c.pushWord(c.IP)
	c.loadCS(newCS, newIP)
	return c.cycles.CallFar
}

func (c *CPU) opRetNear() uint16 {
	c.IP = c.popWord()
	return c.cycles.RetNear
}

func (c *CPU) opRetNearImm() uint16 {
	imm := c.fetchIPWord()
	c.IP = c.popWord()
	c.SP += imm
	return c.cycles.RetNear
}

func (c *CPU) opRetFar() uint16 {
	newIP := c.popWord()
	newCS := c.popWord()
	c.loadCS(newCS, newIP)
	return c.cycles.RetFar
}

func (c *CPU) opRetFarImm() uint16 {
	imm := c.fetchIPWord()
	newIP := c.popWord()
	newCS := c.popWord()
	c.loadCS(newCS, newIP)
	c.SP += imm
	return c.cycles.RetFar
}

func (c *CPU) opLoop() uint16 {
	disp := c.fetchIPDisp8()
	c.CX--
	if c.CX != 0 {
		c.IP = uint16(int32(c.IP) + int32(disp))
		return c.cycles.Loop
	}
	return c.cycles.JccNotTaken
}

func (c *CPU) opLoope() uint16 {
	disp := c.fetchIPDisp8()
	c.CX--
	if c.CX != 0 && c.getZF() {
		c.IP = uint16(int32(c.IP) + int32(disp))
		return c.cycles.Loop
	}
	return c.cycles.JccNotTaken
}

func (c *CPU) opLoopne() uint16 {
	disp := c.fetchIPDisp8()
	c.CX--
	if c.CX != 0 && !c.getZF() {
		c.IP = uint16(int32(c.IP) + int32(disp))
		return c.cycles.Loop
	}
	return c.cycles.JccNotTaken
}

func (c *CPU) opJcxz() uint16 {
	disp := c.fetchIPDisp8()
	if c.CX == 0 {
		c.IP = uint16(int32(c.IP) + int32(disp))
		return c.cycles.Loop
	}
	return c.cycles.JccNotTaken
}

func (c *CPU) opInt3() uint16 {
	c.raiseINT(vecBP, 0, false)
	return c.cycles.IntSoftware
}

func (c *CPU) opIntImm8() uint16 {
	n := uint8(c.fetchIPByte())
	if c.notifyInt(n) {
		return c.cycles.IntSoftware
	}
	c.raiseINT(n, 0, false)
	return c.cycles.IntSoftware
}

func (c *CPU) opInto() uint16 {
	if c.getOF() {
		c.raiseINT(vecOF, 0, false)
		return c.cycles.IntSoftware
	}
	return c.cycles.JccNotTaken
}

func (c *CPU) opIret() uint16 {
	c.IRET()
	return c.cycles.Iret
}

func (c *CPU) opHlt() uint16 {
	c.intFlags |= intrHALT
	return c.cycles.Hlt
}

func (c *CPU) opWait() uint16 {
	return c.cycles.Nop // no coprocessor modeled; WAIT is always a no-op
}

func (c *CPU) opClc() uint16 { c.setCF(false); return c.cycles.Flags }
func (c *CPU) opStc() uint16 { c.setCF(true); return c.cycles.Flags }
func (c *CPU) opCmc() uint16 { c.setCF(!c.getCF()); return c.cycles.Flags }
func (c *CPU) opCli() uint16 { c.setIF(false); return c.cycles.Flags }
func (c *CPU) opSti() uint16 {
	c.setIF(true)
	c.pic.DelayINTR() // STI shadow: the following instruction still can't be interrupted
	return c.cycles.Flags
}
func (c *CPU) opCld() uint16 { c.setDF(false); return c.cycles.Flags }
func (c *CPU) opStd() uint16 { c.setDF(true); return c.cycles.Flags }
