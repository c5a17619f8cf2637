/*
   device - External collaborator contracts for the x86 core.

   Copyright (c) 2024, Richard Cornwell
   Copyright (c) 2026, the x86core contributors

   Permission is hereby granted, free of charge, to any person obtaining a
   copy of this software and associated documentation files (the "Software"),
   to deal in the Software without restriction, including without limitation
   the rights to use, copy, modify, merge, publish, distribute, sublicense,
   and/or sell copies of the Software, and to permit persons to whom the
   Software is furnished to do so, subject to the following conditions:

   The above copyright notice and this permission notice shall be included in
   all copies or substantial portions of the Software.

   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.  IN NO EVENT SHALL
   ROBERT M SUPNIK BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
   IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
   CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
*/

// Package device declares the contracts the CPU core polls or calls into
// but never implements: the PIC, timers and DMA controller of spec §6.
// The S/370 teacher plays the same trick with its Device interface in
// emu/device - a handful of methods the CPU calls without knowing who
// implements them, so channel/device emulation can live entirely outside
// the CPU core. Peripheral chip emulation itself stays out of scope here.
package device

// PIC is the interrupt controller collaborator. The CPU core never holds
// interrupt state it can satisfy on its own; it asks the PIC, the way the
// teacher's CPU asks the channel subsystem via ChanScan rather than
// modeling device state directly.
type PIC interface {
	// GetIRRVector returns the vector to service in 0..255, or -1 when
	// no interrupt is pending (no state change) or the pending request
	// is masked/spurious (also -1, but INTR is cleared by the PIC).
	GetIRRVector() int16

	// DelayINTR inhibits acknowledgment of the next hardware interrupt
	// for one instruction - the CPU calls it for the "STI shadow"; the
	// MOV/POP SS window is kept inside the CPU itself.
	DelayINTR()
}

// Timer is ticked once per ExecCore loop entry, independent of how many
// cycles the instruction about to run will cost.
type Timer interface {
	Tick()
}

// DMA is polled once per instruction while INTFLAG.DMA is set. The CPU
// never blocks on it; it keeps stepping at reduced throughput until
// Service reports done.
type DMA interface {
	// Service advances one unit of asynchronous transfer and reports
	// whether the transfer has completed.
	Service() (done bool)
}

// IntObserver is a registered callback for the software-interrupt
// notification registry (spec §6). It is invoked only for explicit
// INT n, never for INT3/INTO/divide/hardware IRQs/pushed-simulated
// interrupts. Returning false suppresses the original interrupt - the
// mechanism host code uses to implement BIOS services in Go instead of
// ROM.
type IntObserver func(vector uint8) bool

// ReturnObserver is a one-shot callback fired when the instruction at
// the registered linear return address next executes.
type ReturnObserver func(linearAddr uint32)
