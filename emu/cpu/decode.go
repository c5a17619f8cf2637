/*
   decode.go - Decoder/ModRM: byte fetch, ModRM decode, EA resolution.

   Copyright (c) 2026, the x86core contributors

   See cpu.go for the project license.
*/
package cpu

// fetchIPByte reads the next instruction byte through the prefetch queue
// (or directly from the bus when prefetch is disabled), advances IP, and
// charges any bus cycles actually spent - spec.md §4.4/§4.5.
func (c *CPU) fetchIPByte() byte {
	if c.protectedMode() && uint32(c.IP) > c.CS.Limit {
		c.faultCode(vecGP, 0)
	}
	var b byte
	if c.prefetchEnabled {
		var busBytes int
		b, busBytes = c.pfq.fetchByte(c.bus, c.addrMask)
		c.instrBusCycles += uint16(busBytes) * 4
	} else {
		addr := c.addrMask(c.CS.Base + uint32(c.IP))
		b = c.bus.ReadByte(addr)
		c.instrBusCycles += 4
	}
	c.IP++
	return b
}

func (c *CPU) fetchIPWord() uint16 {
	lo := c.fetchIPByte()
	hi := c.fetchIPByte()
	return uint16(lo) | uint16(hi)<<8
}

func (c *CPU) fetchIPDisp8() int8  { return int8(c.fetchIPByte()) }
func (c *CPU) fetchIPDisp16() int16 { return int16(c.fetchIPWord()) }

// modRM is the decoded form of a ModRM byte plus whatever trailing
// displacement it implied.
type modRM struct {
	mod, reg, rm uint8
	isReg        bool
	offset       uint16 // valid when !isReg
	seg          *Segment
	eaCycles     uint16
}

// decodeModRM reads the ModRM byte (and any displacement) and resolves
// r/m per the classic 16-bit addressing table - there is no SIB byte in
// this instruction set, the 80386 innovation that introduced one is out
// of scope (spec.md §1 Non-goals). The default segment is DS for every
// [..] form except the BP-based ones, which default to SS; a segment
// override prefix replaces whichever default applies.
func (c *CPU) decodeModRM() modRM {
	b := c.fetchIPByte()
	m := modRM{mod: (b >> 6) & 3, reg: (b >> 3) & 7, rm: b & 7}
	if m.mod == 3 {
		m.isReg = true
		return m
	}

	var base uint16
	defaultSS := false
	switch m.rm {
	case 0:
		base = c.BX + c.SI
	case 1:
		base = c.BX + c.DI
	case 2:
		base = c.BP + c.SI
		defaultSS = true
	case 3:
		base = c.BP + c.DI
		defaultSS = true
	case 4:
		base = c.SI
	case 5:
		base = c.DI
	case 6:
		if m.mod == 0 {
			base = uint16(c.fetchIPWord())
			m.eaCycles = c.eaCost(6)
			m.offset = base
			m.seg = c.effSeg(false)
			return m
		}
		base = c.BP
		defaultSS = true
	case 7:
		base = c.BX
	}

	disp := uint16(0)
	switch m.mod {
	case 1:
		disp = uint16(int16(c.fetchIPDisp8()))
	case 2:
		disp = uint16(c.fetchIPDisp16())
	}
	m.offset = base + disp
	m.seg = c.effSeg(defaultSS)
	m.eaCycles = c.eaCost(m.rm) + c.dispCost(m.mod)
	return m
}

// effSeg resolves the default-or-overridden segment for a decoded memory
// operand.
func (c *CPU) effSeg(defaultSS bool) *Segment {
	if c.segOverride != nil {
		return c.segOverride
	}
	if defaultSS {
		return &c.SS
	}
	return &c.DS
}

// eaCost and dispCost implement the model-dependent EA cycle table of
// spec.md §4.5: on every model before the 80286 a lone base or index
// register (or a direct address) costs 5, BX+SI/BP+DI cost 7 and the
// awkward BX+DI/BP+SI pairs cost 8; an 8/16-bit displacement adds 4,
// folded into dispCost. All zeroed on 80286 (whose EU overlaps EA
// computation with prefetch, making the classic table moot).
func (c *CPU) eaCost(rm uint8) uint16 {
	if c.model.is286() {
		return 0
	}
	switch rm {
	case 0, 3: // BX+SI, BP+DI
		return 7
	case 1, 2: // BX+DI, BP+SI
		return 8
	case 6: // direct, or BP
		return 5
	default: // SI, DI, BX alone
		return 5
	}
}

func (c *CPU) dispCost(mod uint8) uint16 {
	if c.model.is286() {
		return 0
	}
	if mod == 1 || mod == 2 {
		return 4
	}
	return 0
}

// readModRM16/8 fetch the operand the ModRM referenced, whether register
// or memory.
func (c *CPU) readModRM16(m modRM) uint16 {
	if m.isReg {
		return c.getRegWord(m.rm)
	}
	addr := c.checkRead(m.seg, m.offset, 1)
	return c.bus.ReadWord(addr)
}

func (c *CPU) writeModRM16(m modRM, v uint16) {
	if m.isReg {
		c.setRegWord(m.rm, v)
		return
	}
	addr := c.checkWrite(m.seg, m.offset, 1)
	c.bus.WriteWord(addr, v)
}

func (c *CPU) readModRM8(m modRM) byte {
	if m.isReg {
		return c.getRegByte(m.rm)
	}
	addr := c.checkRead(m.seg, m.offset, 0)
	return c.bus.ReadByte(addr)
}

func (c *CPU) writeModRM8(m modRM, v byte) {
	if m.isReg {
		c.setRegByte(m.rm, v)
		return
	}
	addr := c.checkWrite(m.seg, m.offset, 0)
	c.bus.WriteByte(addr, v)
}

// effectiveAddr returns the linear address a memory-mode ModRM decoded
// to, for instructions (LES/LDS, BOUND, the far-pointer and
// descriptor-table forms) that need the address rather than its
// contents.
func (c *CPU) effectiveAddr(m modRM) uint32 {
	return c.checkRead(m.seg, m.offset, 0)
}

func (c *CPU) getRegWord(i uint8) uint16 {
	switch i & 7 {
	case 0:
		return c.AX
	case 1:
		return c.CX
	case 2:
		return c.DX
	case 3:
		return c.BX
	case 4:
		return c.SP
	case 5:
		return c.BP
	case 6:
		return c.SI
	default:
		return c.DI
	}
}

func (c *CPU) setRegWord(i uint8, v uint16) {
	switch i & 7 {
	case 0:
		c.AX = v
	case 1:
		c.CX = v
	case 2:
		c.DX = v
	case 3:
		c.BX = v
	case 4:
		c.SP = v
	case 5:
		c.BP = v
	case 6:
		c.SI = v
	default:
		c.DI = v
	}
}

func (c *CPU) getRegByte(i uint8) byte {
	switch i & 7 {
	case 0:
		return byte(c.AX)
	case 1:
		return byte(c.CX)
	case 2:
		return byte(c.DX)
	case 3:
		return byte(c.BX)
	case 4:
		return byte(c.AX >> 8)
	case 5:
		return byte(c.CX >> 8)
	case 6:
		return byte(c.DX >> 8)
	default:
		return byte(c.BX >> 8)
	}
}

func (c *CPU) setRegByte(i uint8, v byte) {
	switch i & 7 {
	case 0:
		c.AX = c.AX&0xFF00 | uint16(v)
	case 1:
		c.CX = c.CX&0xFF00 | uint16(v)
	case 2:
		c.DX = c.DX&0xFF00 | uint16(v)
	case 3:
		c.BX = c.BX&0xFF00 | uint16(v)
	case 4:
		c.AX = c.AX&0x00FF | uint16(v)<<8
	case 5:
		c.CX = c.CX&0x00FF | uint16(v)<<8
	case 6:
		c.DX = c.DX&0x00FF | uint16(v)<<8
	default:
		c.BX = c.BX&0x00FF | uint16(v)<<8
	}
}

func (c *CPU) segByIndex(i uint8) *Segment {
	switch i & 3 {
	case 0:
		return &c.ES
	case 1:
		return &c.CS
	case 2:
		return &c.SS
	default:
		return &c.DS
	}
}
