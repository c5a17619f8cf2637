/*
   interrupt.go - InterruptUnit: IDT/IVT dispatch, INT/IRET, and the
   hardware interrupt-acknowledge cycle ExecCore drives once per step.

   Copyright (c) 2026, the x86core contributors

   See cpu.go for the project license.
*/
package cpu

import (
	"context"

	"github.com/go8086/x86core/util/logger"
)

// gate types read from an 80286 interrupt-descriptor's access byte.
const (
	gateTypeMask      = 0x0F
	gateTypeInterrupt = 0x0E
	gateTypeTrap      = 0x0F
	gateTypeTask      = 0x05
)

// idtEntry is what loadIDTEntry resolves to, real or protected mode
// alike: an offset/selector pair to load into IP/CS, plus the IF/TF
// clearing mask spec.md §4.8 specifies per gate type.
type idtEntry struct {
	offset   uint16
	selector uint16
	clearTF  bool
	clearIF  bool
	clearNT  bool
}

// loadIDTEntry resolves vector n against IDTR. Real mode treats the IVT
// as a flat table of (offset, selector) pairs at n*4; protected mode
// reads an 8-byte gate descriptor and validates its type.
func (c *CPU) loadIDTEntry(n uint8) idtEntry {
	if !c.protectedMode() {
		addr := c.IDTR.Base + uint32(n)*4
		if uint32(n)*4+3 > uint32(c.IDTR.Limit) {
			c.faultCode(vecGP, uint16(n)*4+2)
		}
		off := c.bus.ReadWord(c.addrMask(addr))
		sel := c.bus.ReadWord(c.addrMask(addr + 2))
		return idtEntry{offset: off, selector: sel, clearTF: true, clearIF: true}
	}

	entryOff := uint32(n) * 8
	if entryOff+7 > uint32(c.IDTR.Limit) {
		c.faultCode(vecGP, uint16(n)*8+2)
	}
	b := c.readDescriptorBytes(c.IDTR.Base + entryOff)
	access := b[5]
	offLo := uint16(b[0]) | uint16(b[1])<<8
	sel := uint16(b[2]) | uint16(b[3])<<8
	switch access & gateTypeMask {
	case gateTypeInterrupt:
		return idtEntry{offset: offLo, selector: sel, clearTF: true, clearIF: true, clearNT: true}
	case gateTypeTrap:
		return idtEntry{offset: offLo, selector: sel, clearTF: true, clearNT: true}
	default:
		c.faultCode(vecGP, uint16(n)*8+2)
		return idtEntry{}
	}
}

// tssStackPtr reads the 80286 TSS's SPn/SSn slot for privilege level n
// (0, 1 or 2): SP0/SS0 at offsets 2/4, SP1/SS1 at 6/8, SP2/SS2 at 0xA/0xC,
// the layout spec.md §4.8 names.
func (c *CPU) tssStackPtr(level uint8) (ss, sp uint16) {
	base := c.TR.Base
	spOff := uint32(level)*4 + 2
	ssOff := uint32(level)*4 + 4
	sp = c.bus.ReadWord(c.addrMask(base + spOff))
	ss = c.bus.ReadWord(c.addrMask(base + ssOff))
	return ss, sp
}

// descriptorAccess reads just the access byte of selector's descriptor,
// without the presence/type faulting loadProtectedCode does - used to
// learn a gate target's DPL before deciding whether raiseINT needs a
// privilege-level stack switch.
func (c *CPU) descriptorAccess(selector uint16) uint8 {
	tableBase, tableLimit := c.descriptorTable(selector)
	entryOff := uint32(selector & 0xFFF8)
	if entryOff+7 > uint32(tableLimit) {
		c.faultCode(vecGP, selector&0xFFF8)
	}
	b := c.readDescriptorBytes(tableBase + entryOff)
	return b[5]
}

// revalidateDataSegments implements spec.md §4.8's "revalidate data
// segments" step on a return to an outer (less privileged) level: DS/ES
// are nulled if their DPL is now below the restored CPL, so the next
// access to them faults instead of silently reaching a segment the
// guest is no longer entitled to.
func (c *CPU) revalidateDataSegments() {
	for _, seg := range []*Segment{&c.DS, &c.ES} {
		if !seg.Null && descDPL(seg.Access) < c.cpl {
			*seg = Segment{Selector: seg.Selector, Null: true}
		}
	}
}

// raiseINT implements spec.md §4.8: for a protected-mode gate that
// targets a strictly more privileged (lower CPL) non-conforming code
// segment, first switch to that level's TSS-supplied SS:SP and push the
// old SS:SP onto the new stack; then push PS, CS, IP (in that order,
// each via a decrement-then-write on the now-current SS), optionally an
// error code below those for vectors that have one, then load CS:IP from
// the resolved gate and clear IF/TF per its mask. Real mode and
// same-privilege protected transfers never switch stacks. Used for
// faults, hardware IRQs and explicit INT n alike; the intNotify
// suppression hook is the caller's concern (opIntImm8), not this
// function's.
func (c *CPU) raiseINT(n uint8, errorCode uint16, hasError bool) {
	gate := c.loadIDTEntry(n)
	oldPS := c.getPS()
	oldCS := c.CS.Selector
	oldIP := c.IP

	if c.protectedMode() {
		access := c.descriptorAccess(gate.selector)
		conforming := access&descExec != 0 && access&descConform != 0
		targetDPL := descDPL(access)
		if !conforming && targetDPL < c.cpl {
			oldSS := c.SS.Selector
			oldSP := c.SP
			newSS, newSP := c.tssStackPtr(targetDPL)
			c.SS = c.loadProtected(newSS, true, vecSS)
			c.SP = newSP
			c.pushWord(oldSS)
			c.pushWord(oldSP)
		}
	}

	c.pushWord(oldPS)
	c.pushWord(oldCS)
	c.pushWord(oldIP)
	if hasError {
		c.pushWord(errorCode)
	}

	if gate.clearIF {
		c.setIF(false)
	}
	if gate.clearTF {
		c.setTF(false)
	}
	if gate.clearNT {
		c.directFlags &^= psNT
	}

	c.loadCS(gate.selector, gate.offset)
}

// IRET pops IP, CS, PS in that order; if the popped CS names a strictly
// less privileged (higher-numbered) CPL than the one it's returning
// from, it additionally pops SP:SS from the same (inner) stack and
// revalidates DS/ES against the restored CPL, per spec.md §4.8. NT-based
// task return is not modeled - this core does not implement TSS task
// switching beyond the single inter-privilege stack-pointer pair
// raiseINT/IRET need.
func (c *CPU) IRET() {
	newIP := c.popWord()
	newCS := c.popWord()
	newPS := c.popWord()

	if c.protectedMode() && uint8(newCS&3) > c.cpl {
		newSP := c.popWord()
		newSS := c.popWord()
		c.loadCS(newCS, newIP)
		c.setPS(newPS)
		c.SS = c.loadProtected(newSS, true, vecSS)
		c.SP = newSP
		c.revalidateDataSegments()
	} else {
		c.loadCS(newCS, newIP)
		c.setPS(newPS)
	}

	for addr, fns := range c.retNotify {
		if addr == c.linearCS() {
			for _, fn := range fns {
				fn(addr)
			}
			delete(c.retNotify, addr)
		}
	}
}

// checkINTR implements the per-step interrupt-acknowledge sequence of
// spec.md §4.7/§9. 8086/80186 service a pending hardware IRQ ahead of a
// pending single-step trap; the 80286 Open Question (resolved in
// DESIGN.md) inverts that priority so a trap raised by the instruction
// just executed is serviced before a simultaneously-pending IRQ is
// acknowledged, matching the real part's microcode. Either way, at most
// one of the two is ever acknowledged per call (spec.md §8).
func (c *CPU) checkINTR() {
	if c.noIntr {
		c.noIntr = false
		return
	}
	if c.model.is286() {
		if c.serviceTrap() {
			return
		}
		c.serviceHardwareIRQ()
		return
	}
	if c.serviceHardwareIRQ() {
		return
	}
	c.serviceTrap()
}

func (c *CPU) serviceTrap() bool {
	if c.intFlags&intrTRAP == 0 {
		return false
	}
	c.intFlags &^= intrTRAP
	c.raiseINT(vecDB, 0, false)
	return true
}

func (c *CPU) serviceHardwareIRQ() bool {
	if c.intFlags&intrINTR == 0 || !c.getIF() {
		return false
	}
	vec := c.pic.GetIRRVector()
	if vec < 0 {
		return false
	}
	c.intFlags &^= intrINTR | intrHALT
	c.raiseINT(uint8(vec), 0, false)
	return true
}

// addIntNotify registers fn to observe (and potentially suppress) an
// explicit INT n - never INT3/INTO/divide/hardware IRQs, matching
// spec.md §9's instrumentation surface. fn returning false cancels the
// interrupt's normal dispatch; the caller is expected to have simulated
// whatever the guest expected already.
func (c *CPU) addIntNotify(vector uint8, fn func(vector uint8) bool) {
	c.intNotify[vector] = append(c.intNotify[vector], fn)
}

// notifyInt runs vector n's registered observers, in registration order,
// stopping (and reporting suppressed) at the first one that returns
// false. Only opIntImm8 calls this - INT3/INTO/faults/hardware IRQs all
// dispatch through raiseINT directly and are never observable here.
func (c *CPU) notifyInt(n uint8) (suppressed bool) {
	for _, obs := range c.intNotify[n] {
		if !obs(n) {
			c.log.Log(context.Background(), logger.Trace, "int suppressed", "vector", n)
			return true
		}
	}
	return false
}

// addIntReturn registers a one-shot callback fired exactly when the
// instruction at linearAddr next executes as a return site (i.e. right
// after the matching IRET pops CS:IP there).
func (c *CPU) addIntReturn(linearAddr uint32, fn func(linearAddr uint32)) {
	c.retNotify[linearAddr] = append(c.retNotify[linearAddr], fn)
}
