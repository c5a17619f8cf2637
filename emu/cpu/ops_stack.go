/*
   ops_stack.go - push/pop primitives, PUSH/POP reg/seg/imm, PUSHA/POPA,
   ENTER/LEAVE.

   Copyright (c) 2026, the x86core contributors

   See cpu.go for the project license.
*/
package cpu

// pushWord decrements SP by 2 and stores v at SS:SP on every model.
// spec.md §4.6's PUSH SP dichotomy only matters for the single PUSH SP
// instruction, handled in makePushReg: the 80286 pushes SP's value from
// before the decrement; 8086/80186 push that value minus 2 (equivalently:
// the already-decremented value).
func (c *CPU) pushWord(v uint16) {
	c.SP -= 2
	addr := c.checkWrite(&c.SS, c.SP, 1)
	c.bus.WriteWord(addr, v)
}

func (c *CPU) popWord() uint16 {
	addr := c.checkRead(&c.SS, c.SP, 1)
	v := c.bus.ReadWord(addr)
	c.SP += 2
	return v
}

func (c *CPU) makePushReg(r uint8) opFunc {
	return func() uint16 {
		if r == 4 { // SP: the PUSH SP dichotomy (spec.md §4.6/§8)
			orig := c.SP
			if c.model.is286() {
				c.pushWord(orig) // 80286 pushes SP before decrement
			} else {
				c.pushWord(orig - 2) // 8086/80186 push SP-2
			}
			return c.cycles.PushReg
		}
		c.pushWord(c.getRegWord(r))
		return c.cycles.PushReg
	}
}

func (c *CPU) makePopReg(r uint8) opFunc {
	return func() uint16 {
		c.setRegWord(r, c.popWord())
		return c.cycles.PopReg
	}
}

func (c *CPU) opPushES() uint16 { c.pushWord(c.ES.Selector); return c.cycles.PushReg }
func (c *CPU) opPushCS() uint16 { c.pushWord(c.CS.Selector); return c.cycles.PushReg }
func (c *CPU) opPushSS() uint16 { c.pushWord(c.SS.Selector); return c.cycles.PushReg }
func (c *CPU) opPushDS() uint16 { c.pushWord(c.DS.Selector); return c.cycles.PushReg }

func (c *CPU) opPopES() uint16 { c.loadES(c.popWord()); return c.cycles.PopReg }
func (c *CPU) opPopSS() uint16 { c.loadSS(c.popWord()); return c.cycles.PopReg }
func (c *CPU) opPopDS() uint16 { c.loadDS(c.popWord()); return c.cycles.PopReg }

// opPopCSOr0F implements the 8086's byte 0x0F: POP CS (an undocumented
// but real quirk of the original part, since the 80286 repurposed the
// byte as the two-byte escape). On 80186+ the opcode is reserved (#UD);
// on 80286 it's the two-byte map escape, dispatched by execOne (or by
// consumePrefixByte after a prefix) before the table is ever consulted
// for this byte, so this slot is only reached on the 8086/8088 (POP CS)
// and the 80186/80188 (#UD).
func (c *CPU) opPopCSOr0F() uint16 {
	if c.model.atLeast186() {
		c.fault(vecUD)
	}
	c.CS = loadReal(c.popWord())
	c.pfq.flush(c.linearCS())
	return c.cycles.PopReg
}

func (c *CPU) opPushImm16() uint16 {
	c.pushWord(c.fetchIPWord())
	return c.cycles.PushImm
}

func (c *CPU) opPushImm8() uint16 {
	v := int16(int8(c.fetchIPByte()))
	c.pushWord(uint16(v))
	return c.cycles.PushImm
}

func (c *CPU) opPusha() uint16 {
	if !c.model.atLeast186() {
		c.fault(vecUD)
	}
	sp := c.SP
	regs := [8]uint16{c.AX, c.CX, c.DX, c.BX, sp, c.BP, c.SI, c.DI}
	for _, v := range regs {
		c.pushWord(v)
	}
	return c.cycles.Pusha
}

func (c *CPU) opPopa() uint16 {
	if !c.model.atLeast186() {
		c.fault(vecUD)
	}
	c.DI = c.popWord()
	c.SI = c.popWord()
	c.BP = c.popWord()
	c.popWord() // discard saved SP
	c.BX = c.popWord()
	c.DX = c.popWord()
	c.CX = c.popWord()
	c.AX = c.popWord()
	return c.cycles.Popa
}

func (c *CPU) opEnter() uint16 {
	if !c.model.atLeast186() {
		c.fault(vecUD)
	}
	size := c.fetchIPWord()
	level := c.fetchIPByte() & 0x1F
	c.pushWord(c.BP)
	frameTemp := c.SP
	if level > 0 {
		bp := c.BP
		for i := uint8(1); i < level; i++ {
			bp -= 2
			addr := c.checkRead(&c.SS, bp, 1)
			c.pushWord(c.bus.ReadWord(addr))
		}
		c.pushWord(frameTemp)
	}
	c.BP = frameTemp
	c.SP -= size
	return c.cycles.EnterBase + uint16(level)*c.cycles.EnterPerLvl
}

func (c *CPU) opLeave() uint16 {
	if !c.model.atLeast186() {
		c.fault(vecUD)
	}
	c.SP = c.BP
	c.BP = c.popWord()
	return c.cycles.Leave
}
