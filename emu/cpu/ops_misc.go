/*
   ops_misc.go - prefix bytes, BOUND, IMUL-immediate, and the table's
   catch-all unassigned-opcode handler.

   Copyright (c) 2026, the x86core contributors

   See cpu.go for the project license.
*/
package cpu

// maxPrefixChain bounds how many prefix bytes a single instruction may
// carry before it's treated as malformed (#UD) rather than looped on
// forever - real silicon has the same kind of limit, just expressed as a
// prefetch-queue-exhaustion fault instead.
const maxPrefixChain = 10

// consumePrefixByte is shared by makeSegOverride/makePrefixFlag: record
// where this prefix byte lives (for the 8086's REP-interrupt resume
// rule, spec.md §8), bump the chain counter, and recurse into the next
// byte so the real opcode ultimately dispatches with the accumulated
// state intact.
func (c *CPU) consumePrefixByte() uint16 {
	c.lastByteIP = c.IP - 1
	c.prefixCount++
	if c.prefixCount > maxPrefixChain {
		c.fault(vecUD)
	}
	next := c.fetchIPByte()
	if next == 0x0F && c.model.is286() {
		return c.table0F[c.fetchIPByte()]()
	}
	return c.table[next]()
}

func (c *CPU) makeSegOverride(seg *Segment) opFunc {
	return func() uint16 {
		c.segOverride = seg
		c.opPrefixes |= pfxSeg
		return c.cycles.Prefix + c.consumePrefixByte()
	}
}

func (c *CPU) makePrefixFlag(bit prefixBits) opFunc {
	return func() uint16 {
		c.opPrefixes |= bit
		return c.cycles.Prefix + c.consumePrefixByte()
	}
}

func (c *CPU) opBound() uint16 {
	if !c.model.atLeast186() {
		c.fault(vecUD)
	}
	m := c.decodeModRM()
	if m.isReg {
		c.fault(vecUD)
	}
	idx := int16(c.getRegWord(m.reg))
	addr := c.effectiveAddr(m)
	lo := int16(c.bus.ReadWord(addr))
	hi := int16(c.bus.ReadWord(c.addrMask(addr + 2)))
	if idx < lo || idx > hi {
		c.fault(vecBR)
	}
	return c.cycles.Bound
}

func imul16(a, b int16) (result int16, overflow bool) {
	full := int32(a) * int32(b)
	result = int16(full)
	overflow = int32(result) != full
	return
}

func (c *CPU) opImulGvEvIv() uint16 {
	if !c.model.atLeast186() {
		c.fault(vecUD)
	}
	m := c.decodeModRM()
	src := int16(c.readModRM16(m))
	imm := int16(c.fetchIPWord())
	result, overflow := imul16(src, imm)
	c.setRegWord(m.reg, uint16(result))
	c.setCF(overflow)
	c.setOF(overflow)
	return c.cycles.ImulWord
}

func (c *CPU) opImulGvEvIb() uint16 {
	if !c.model.atLeast186() {
		c.fault(vecUD)
	}
	m := c.decodeModRM()
	src := int16(c.readModRM16(m))
	imm := int16(int8(c.fetchIPByte()))
	result, overflow := imul16(src, imm)
	c.setRegWord(m.reg, uint16(result))
	c.setCF(overflow)
	c.setOF(overflow)
	return c.cycles.ImulWord
}

// opUnk is the default handler for every opcode slot buildTables leaves
// unassigned: on 80186+ that's architecturally #UD (reserved opcode);
// on 8086/8088, where no invalid-opcode fault exists at all, it behaves
// as a one-byte no-op (no operand bytes are consumed) so an errant
// decode doesn't wedge the core -
// matching the teacher's own unassigned-opcode convention in its IBM 370
// createTable.
func (c *CPU) opUnk() uint16 {
	if c.model.atLeast186() {
		c.fault(vecUD)
	}
	return c.cycles.Nop
}
