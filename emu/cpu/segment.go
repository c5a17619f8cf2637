/*
   segment.go - SegmentUnit: descriptor cache, real/protected loaders,
   and the read/write limit checks every memory reference goes through.

   Copyright (c) 2026, the x86core contributors

   See cpu.go for the project license.
*/
package cpu

// Fault vectors (spec.md §7).
const (
	vecDE = 0 // divide error
	vecDB = 1 // debug trap
	vecNMI = 2
	vecBP  = 3 // INT3
	vecOF  = 4 // INTO
	vecBR  = 5 // BOUND
	vecUD  = 6 // invalid opcode
	vecNM  = 7 // no coprocessor - unused, no FPU modeled
	vecDF  = 8 // double fault
	vecTS  = 10
	vecNP  = 11
	vecSS  = 12
	vecGP  = 13
)

// cpuFault is panicked by segment checks and decode-time validation and
// recovered by ExecCore immediately after the handler returns, which then
// drives InterruptUnit.raiseINT. Every fault in this architecture is
// surfaced as an interrupt, never as a Go error (spec.md §7) - panic is
// only the propagation mechanism out of arbitrarily deep helper calls
// within a single instruction, never observed outside ExecCore's own
// recover.
type cpuFault struct {
	vector    uint8
	errorCode uint16
	hasError  bool
}

func (c *CPU) fault(vector uint8) {
	panic(cpuFault{vector: vector})
}

func (c *CPU) faultCode(vector uint8, code uint16) {
	panic(cpuFault{vector: vector, errorCode: code, hasError: true})
}

// descriptor type byte bits (protected mode).
const (
	descPresent = 1 << 7
	descDPLMask = 3 << 5
	descS       = 1 << 4 // 1 = code/data, 0 = system
	descExec    = 1 << 3 // within a code/data descriptor
	descConform = 1 << 2 // executable: conforming
	descRW      = 1 << 1 // data: writable; code: readable
	descAccessed = 1 << 0
)

func descDPL(access uint8) uint8 { return (access & descDPLMask) >> 5 }

// loadReal computes a real-mode segment load: base = selector<<4, limit
// always 0xFFFF, permissive access. No fault is possible in real mode.
func loadReal(selector uint16) Segment {
	return Segment{
		Selector: selector,
		Base:     uint32(selector) << 4,
		Limit:    0xFFFF,
		Access:   dataAccessDefault,
	}
}

// loadProtected implements spec.md §4.3's protected-mode load algorithm
// for a data-class segment (DS/ES/SS): system and executable
// descriptors are always refused with #GP, and requireWritable demands
// the R/W bit (SS only).
func (c *CPU) loadProtected(selector uint16, requireWritable bool, npVector uint8) Segment {
	if selector&0xFFFC == 0 {
		return Segment{Selector: selector, Null: true}
	}
	tableBase, tableLimit := c.descriptorTable(selector)
	entryOff := uint32(selector & 0xFFF8)
	if entryOff+7 > uint32(tableLimit) {
		c.faultCode(vecGP, selector&0xFFF8)
	}
	addr := tableBase + entryOff
	b := c.readDescriptorBytes(addr)
	access := b[5]
	if access&descS == 0 {
		// system descriptor where a data/code segment was wanted.
		c.faultCode(vecGP, selector&0xFFF8)
	}
	if access&descExec != 0 {
		c.faultCode(vecGP, selector&0xFFF8)
	}
	if requireWritable && access&descRW == 0 {
		c.faultCode(vecSS, selector&0xFFF8)
	}
	if access&descPresent == 0 {
		c.faultCode(npVector, selector&0xFFF8)
	}
	base := uint32(b[2]) | uint32(b[3])<<8 | uint32(b[4])<<16 | uint32(b[7])<<24
	limit := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[6]&0x0F)<<16
	return Segment{Selector: selector, Base: base, Limit: limit, Access: access}
}

// loadProtectedCode handles CS: executable descriptors only, updates CPL.
func (c *CPU) loadProtectedCode(selector uint16) Segment {
	if selector&0xFFFC == 0 {
		c.faultCode(vecGP, 0)
	}
	tableBase, tableLimit := c.descriptorTable(selector)
	entryOff := uint32(selector & 0xFFF8)
	if entryOff+7 > uint32(tableLimit) {
		c.faultCode(vecGP, selector&0xFFF8)
	}
	addr := tableBase + entryOff
	b := c.readDescriptorBytes(addr)
	access := b[5]
	if access&descS == 0 || access&descExec == 0 {
		c.faultCode(vecGP, selector&0xFFF8)
	}
	if access&descPresent == 0 {
		c.faultCode(vecNP, selector&0xFFF8)
	}
	base := uint32(b[2]) | uint32(b[3])<<8 | uint32(b[4])<<16 | uint32(b[7])<<24
	limit := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[6]&0x0F)<<16
	return Segment{Selector: selector, Base: base, Limit: limit, Access: access}
}

func (c *CPU) descriptorTable(selector uint16) (base uint32, limit uint16) {
	if selector&0x4 != 0 {
		return c.LDTR.Base, uint16(c.LDTR.Limit)
	}
	return c.GDTR.Base, c.GDTR.Limit
}

func (c *CPU) readDescriptorBytes(addr uint32) [8]byte {
	var b [8]byte
	for i := range b {
		b[i] = c.bus.ReadByte(c.addrMask(addr + uint32(i)))
	}
	return b
}

// loadDS/ES/SS/CS apply the real-vs-protected dispatch of spec.md §4.3.
// SS additionally arms the NOINTR window so a following MOV SP updates
// atomically with it.
func (c *CPU) loadDS(selector uint16) {
	c.DS = c.loadSegGeneric(selector, false)
}

func (c *CPU) loadES(selector uint16) {
	c.ES = c.loadSegGeneric(selector, false)
}

func (c *CPU) loadSS(selector uint16) {
	c.SS = c.loadSegGeneric(selector, true)
	c.noIntr = true
}

func (c *CPU) loadSegGeneric(selector uint16, isStack bool) Segment {
	if !c.protectedMode() {
		return loadReal(selector)
	}
	npVec := uint8(vecNP)
	if isStack {
		npVec = vecSS
	}
	return c.loadProtected(selector, isStack, npVec)
}

func (c *CPU) loadCS(selector uint16, newIP uint16) {
	if !c.protectedMode() {
		c.CS = loadReal(selector)
	} else {
		c.CS = c.loadProtectedCode(selector)
		c.cpl = uint8(selector & 3)
	}
	c.IP = newIP
	c.pfq.flush(c.linearCS())
}

func (c *CPU) protectedMode() bool {
	return c.model.is286() && c.MSW&mswPE != 0
}

// checkRead validates [offset, offset+extra] against seg's cached limit
// and returns the linear address of offset. extra is byteCount-1 per
// spec.md §4.3. Real mode never faults; protected mode does via #GP
// (#SS if seg is SS).
func (c *CPU) checkRead(seg *Segment, offset uint16, extra uint32) uint32 {
	return c.checkAccess(seg, offset, extra)
}

func (c *CPU) checkWrite(seg *Segment, offset uint16, extra uint32) uint32 {
	if c.protectedMode() && seg.Access&descS != 0 && seg.Access&descExec == 0 && seg.Access&descRW == 0 {
		vec := uint8(vecGP)
		if seg == &c.SS {
			vec = vecSS
		}
		c.faultCode(vec, seg.Selector&0xFFF8)
	}
	return c.checkAccess(seg, offset, extra)
}

func (c *CPU) checkAccess(seg *Segment, offset uint16, extra uint32) uint32 {
	if c.protectedMode() {
		if seg.Null {
			vec := uint8(vecGP)
			if seg == &c.SS {
				vec = vecSS
			}
			c.faultCode(vec, 0)
		}
		if uint32(offset)+extra > seg.Limit {
			vec := uint8(vecGP)
			if seg == &c.SS {
				vec = vecSS
			}
			c.faultCode(vec, seg.Selector&0xFFF8)
		}
	}
	return c.addrMask(seg.Base + uint32(offset))
}
