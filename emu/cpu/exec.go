/*
   exec.go - ExecCore: the step loop spec.md §4.7 describes, the
   panic/recover boundary that turns a cpuFault into a real interrupt,
   and prefetch top-up with whatever cycle budget a step has left over.

   Copyright (c) 2026, the x86core contributors

   See cpu.go for the project license.
*/
package cpu

import (
	"context"

	"github.com/go8086/x86core/emu/opcodemap"
	"github.com/go8086/x86core/util/logger"
)

// StepCPU runs instructions until at least minCycles have been charged
// or the core halts, mirroring the teacher's burst-oriented step
// function rather than single-instruction stepping - callers that want
// exactly one instruction pass minCycles=1, since every handler charges
// at least one cycle.
func (c *CPU) StepCPU(minCycles int) int {
	remaining := minCycles
	executed := 0
	for remaining > 0 {
		n := int(c.execOne())
		executed += n
		remaining -= n
		c.totalCycles += uint64(n)
	}
	return executed
}

// execOne runs exactly one logical instruction (its full prefix chain
// included, since prefix handlers recurse rather than looping back
// through this function - see ops_misc.go's consumePrefixByte) and
// returns the cycles it charged, including whatever bus cost its own
// byte fetches incurred.
func (c *CPU) execOne() (cycles uint16) {
	defer func() {
		if r := recover(); r != nil {
			f, ok := r.(cpuFault)
			if !ok {
				panic(r)
			}
			if !c.dispatchFault(f) {
				cycles = c.cycles.Hlt
				return
			}
			cycles = c.cycles.IntHardware
		}
	}()

	c.timer.Tick()
	c.serviceDMA()
	c.checkINTR()
	if c.intFlags&intrHALT != 0 {
		return c.cycles.Hlt
	}

	c.segOverride = nil
	c.opPrefixes = 0
	c.prefixCount = 0
	c.instrBusCycles = 0
	c.groupIP = c.IP

	// A near branch, call or return moves IP without touching the queue;
	// refetch from CS:IP whenever the queued stream no longer starts there.
	if c.prefetchEnabled && c.pfq.peekAddr() != c.linearCS() {
		c.pfq.flush(c.linearCS())
	}

	c.opcodeIP = c.IP
	opcode := c.fetchIPByte()

	var handler opFunc
	var mnemonic string
	if opcode == 0x0F && c.model.is286() {
		sub := c.fetchIPByte()
		handler = c.table0F[sub]
		mnemonic = opcodemap.Name0F(sub)
	} else {
		handler = c.table[opcode]
		mnemonic = opcodemap.Name(opcode)
	}

	base := handler()
	cycles = base + c.instrBusCycles

	if c.getTF() {
		c.intFlags |= intrTRAP
	}

	if c.log.Enabled(context.Background(), logger.Trace) {
		c.log.Log(context.Background(), logger.Trace, "exec", "cs", c.CS.Selector, "ip", c.opcodeIP, "op", mnemonic, "cycles", cycles)
	}

	if c.prefetchEnabled {
		c.refillPrefetch(base)
	}
	return cycles
}

// dispatchFault raises the interrupt a recovered cpuFault names. A
// second cpuFault while still unwinding the first is a double fault:
// real silicon vectors to #DF (8) for a shot at recovery, and a fault
// raised while already handling #DF is a triple fault silicon answers
// with a full reset. This core has no reset vector to jump to, so it
// reports the condition through setError and halts instead of letting
// the panic escape StepCPU's loop. Returns false on that terminal path.
func (c *CPU) dispatchFault(f cpuFault) (recovered bool) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(cpuFault); !ok {
				panic(r)
			}
			if f.vector == vecDF {
				c.setError("triple fault: halting")
				c.intFlags |= intrHALT
				recovered = false
				return
			}
			recovered = c.dispatchFault(cpuFault{vector: vecDF, errorCode: 0, hasError: true})
		}
	}()
	c.raiseINT(f.vector, f.errorCode, f.hasError)
	return true
}

func (c *CPU) serviceDMA() {
	if c.intFlags&intrDMA == 0 {
		return
	}
	if c.dma.Service() {
		c.intFlags &^= intrDMA
	}
}

// refillPrefetch tops the queue up with whatever spare bus bandwidth a
// step had: one byte per four cycles not already spent fetching, the
// same ratio fetchIPByte charges for a bus-sourced byte, capped at the
// queue's free slots.
func (c *CPU) refillPrefetch(spentCycles uint16) {
	free := c.pfq.depth - c.pfq.queued
	if free <= 0 {
		return
	}
	budget := int(spentCycles) / 4
	if budget > free {
		budget = free
	}
	if budget > 0 {
		c.pfq.fill(c.bus, c.addrMask, budget)
	}
}
