/*
   CPU: register file, construction, and reset for the x86 core.

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

/*
   The core emulates the Intel 8086/8088/80186/80188/80286 family: 16-bit
   general registers, four segment registers backed by a descriptor cache
   (selector, base, limit, access) that is loaded one way in real mode and
   another in protected mode, and a processor-status word whose six
   arithmetic bits are never stored directly - they are derived on demand
   from the triple left behind by the last ALU helper (see flags.go).

   Instruction bytes never come straight off the bus: they pass through a
   small prefetch queue (prefetch.go) that models the 8086's bus-interface
   unit well enough to reproduce prefetch-dependent timing without actually
   running it concurrently with the execution unit.

   A single handler table per byte value (table.go) is built once at
   construction, the same shape as the teacher's createTable: a flat array
   of bound method values indexed by opcode, with a second-level dispatch
   on the ModRM /reg field for the classic 8080-descended opcode groups.
*/
package cpu

import (
	"context"
	"log/slog"

	"github.com/go8086/x86core/emu/device"
	"github.com/go8086/x86core/emu/membus"
	"github.com/go8086/x86core/util/logger"
)

// Model distinguishes the handful of construction-time behavioral deltas
// spec.md §4.6 calls out: prefetch depth, shift-count masking, which
// opcodes are reserved, and interrupt/EA cycle costs.
type Model int

const (
	Model8088 Model = iota
	Model8086
	Model80188
	Model80186
	Model80286
)

func (m Model) String() string {
	switch m {
	case Model8088:
		return "8088"
	case Model8086:
		return "8086"
	case Model80188:
		return "80188"
	case Model80186:
		return "80186"
	case Model80286:
		return "80286"
	default:
		return "unknown"
	}
}

// atLeast186 reports whether the model has the 80186-era instruction
// extensions (PUSHA/POPA/BOUND/IMUL-imm/ENTER-LEAVE/INS-OUTS/shift-by-imm)
// and masks shift counts mod 32.
func (m Model) atLeast186() bool {
	return m == Model80186 || m == Model80188 || m == Model80286
}

// is286 reports whether the two-byte 0x0F opcode map and protected mode
// are available.
func (m Model) is286() bool {
	return m == Model80286
}

// wideBus reports a 16-bit external data bus (8086/80186/80286), which
// determines prefetch queue depth; the 8088/80188 have an 8-bit bus.
func (m Model) wideBus() bool {
	return m == Model8086 || m == Model80186 || m == Model80286
}

func (m Model) queueDepth() int {
	if m.wideBus() {
		return 6
	}
	return 4
}

// Segment is the per-segment-register descriptor cache of spec.md §3: a
// selector plus the cached (base, limit, access) triple a load computes
// once so every subsequent reference is a cheap bounds check instead of a
// table walk.
type Segment struct {
	Selector uint16
	Base     uint32 // 24-bit in protected mode, selector<<4 in real mode
	Limit    uint32 // 20-bit effective
	Access   uint8
	Null     bool // RPL=0, index=0: any use faults
}

// DTReg is a descriptor-table register: GDTR or IDTR. Base is 24-bit wide
// to match the 80286 bus; on 8086/80186 only the low 20 bits are ever
// meaningful (the real-mode IVT is always GDTR/IDTR-shaped with base 0,
// limit 0x3FF).
type DTReg struct {
	Base  uint32
	Limit uint16
}

// MSW bits (80286 Machine Status Word, loaded/stored by LMSW/SMSW).
const (
	mswPE = 1 << 0 // Protection Enable
	mswMP = 1 << 1 // Monitor Processor (coprocessor present) - unused, no FPU
	mswEM = 1 << 2 // Emulate processor extension - unused, no FPU
	mswTS = 1 << 3 // Task Switched
)

// intFlags bits (spec.md §3 "Interrupt state").
const (
	intrINTR uint8 = 1 << iota // external interrupt request pending
	intrTRAP                   // single-step trap pending (TF was set)
	intrHALT                   // HLT executed, waiting for INTR/reset
	intrDMA                    // asynchronous DMA transfer in progress
)

// opPrefixes bits, composed while the decoder walks a chain of prefix
// bytes ahead of the real opcode.
type prefixBits uint16

const (
	pfxLock prefixBits = 1 << iota
	pfxRepne
	pfxRep
	pfxSeg
)

func (p prefixBits) repeat() bool { return p&(pfxRep|pfxRepne) != 0 }

// opFunc is an instruction handler, a bound *CPU method value exactly
// like the teacher's createTable entries (cpu.opXxx, bound once at table
// build time): it consumes whatever bytes follow the opcode, mutates
// registers and memory, leaves the flag triple set, and returns the
// cycle count to charge (before any word-access or EA penalties the
// caller adds).
type opFunc func() uint16

// CPU is the complete, constructible emulator core. The zero value is not
// useful; always obtain one from New.
type CPU struct {
	AX, BX, CX, DX uint16
	SP, BP, SI, DI uint16
	IP             uint16

	CS, DS, SS, ES Segment
	LDTR, TR       Segment // 80286 only
	GDTR, IDTR     DTReg   // 80286 only; on earlier models IDTR models the IVT
	MSW            uint16

	// directFlags holds TF, IF, DF, IOPL (2 bits) and NT at their natural
	// PS bit positions; every other PS bit is derived (see flags.go).
	directFlags uint16

	resultValue       uint32
	resultParitySign  uint32
	resultAuxOverflow uint32
	resultSize        uint32

	model  Model
	bus    *membus.Bus
	ioBus  *membus.IOBus

	pfq             prefetchQueue
	prefetchEnabled bool

	intFlags uint8
	noIntr   bool // NOINTR window: one instruction after SS reload (STI's shadow goes through pic.DelayINTR)

	pic   device.PIC
	timer device.Timer
	dma   device.DMA

	intNotify map[uint8][]device.IntObserver
	retNotify map[uint32][]device.ReturnObserver

	table   [256]opFunc
	table0F [256]opFunc

	cycles cycleTable

	// Per-instruction scratch, reset at the top of every fresh logical
	// instruction (spec.md §4.7 step 2) and threaded through decode.
	// segOverride serves both the segData and segStack roles spec.md §4.7
	// names: a single override prefix re-points whichever default (DS for
	// most EA forms, SS for BP-based ones) the instruction would have used,
	// so one pointer is all either role ever needs at once.
	segOverride *Segment
	opPrefixes  prefixBits
	prefixCount int // bytes in the current prefix chain; >10 is #UD on every model
	groupIP     uint16
	lastByteIP  uint16
	opcodeIP    uint16
	cpl         uint8
	instrBusCycles uint16

	totalCycles     uint64
	cyclesPerSecond uint32
	burstDivisor    uint32 // ticks/second a host pacing loop is assumed to drive
	multiplier      uint32 // runtime speed scalar (turbo button), default 1

	halted bool
	errFn  func(msg string)

	log *slog.Logger
}

// Option configures a CPU at construction time, the functional-options
// analogue of the teacher's config.Option: a typed, self-validating unit
// of construction-time configuration instead of public struct fields.
type Option func(*CPU)

// WithBus installs the physical address space the core executes against.
// A CPU constructed without WithBus gets an empty membus.Bus (pure open
// bus) so tests can exercise the register file before wiring memory.
func WithBus(bus *membus.Bus) Option {
	return func(c *CPU) { c.bus = bus }
}

// WithIOBus installs the port-I/O address space IN/OUT/INS/OUTS address.
// A CPU constructed without it gets an empty membus.IOBus (every port
// floats: IN returns 0xFF, OUT is swallowed).
func WithIOBus(io *membus.IOBus) Option {
	return func(c *CPU) { c.ioBus = io }
}

// WithPrefetch enables or disables the prefetch-queue model. Disabled,
// getIPByte/Word read straight from the bus - spec.md §8's "prefetch
// byte-equivalence" property requires both paths to agree on architected
// state.
func WithPrefetch(enabled bool) Option {
	return func(c *CPU) { c.prefetchEnabled = enabled }
}

// WithCyclesPerSecond overrides the model's default clock rate (spec.md
// §6's CLI/configuration surface). Left unset, New applies the model's
// default: 4,772,727 Hz for the 8086 family, 6,000,000 Hz for the 80286.
func WithCyclesPerSecond(n uint32) Option {
	return func(c *CPU) { c.cyclesPerSecond = n }
}

// modelDefaultClock is the nominal crystal rate spec.md §6 names per
// model; intermediate members of the family (8086/80188/80186) run the
// same bus timing as the model they share an instruction set with.
func modelDefaultClock(m Model) uint32 {
	if m.is286() {
		return 6_000_000
	}
	return 4_772_727
}

// WithPIC, WithTimer and WithDMA wire the external collaborators spec.md
// §6 describes. Any left unset default to no-ops: no interrupts ever
// arrive, Tick is a no-op, DMA transfers report immediately done.
func WithPIC(pic device.PIC) Option     { return func(c *CPU) { c.pic = pic } }
func WithTimer(t device.Timer) Option   { return func(c *CPU) { c.timer = t } }
func WithDMA(dma device.DMA) Option     { return func(c *CPU) { c.dma = dma } }
func WithLogger(l *slog.Logger) Option  { return func(c *CPU) { c.log = l } }
func WithErrorFunc(fn func(string)) Option {
	return func(c *CPU) { c.errFn = fn }
}

// setError is the core's own fault-escalation channel: logged at
// logger.Fault regardless of the handler's configured level, and handed
// to errFn when the host wired one up (WithErrorFunc). Reserved for
// conditions the instruction-level fault mechanism (fault/faultCode)
// can't represent, such as a double fault raised while already
// unwinding one.
func (c *CPU) setError(msg string) {
	c.log.Log(context.Background(), logger.Fault, msg)
	if c.errFn != nil {
		c.errFn(msg)
	}
}

type noopPIC struct{}

func (noopPIC) GetIRRVector() int16 { return -1 }
func (noopPIC) DelayINTR()          {}

type noopTimer struct{}

func (noopTimer) Tick() {}

type noopDMA struct{}

func (noopDMA) Service() (done bool) { return true }

// New constructs a CPU for model and applies opts, then resets it -
// mirroring the teacher's InitializeCPU, which is always called
// immediately after a cpuState is allocated.
func New(model Model, opts ...Option) *CPU {
	c := &CPU{
		model:           model,
		bus:             membus.New(),
		ioBus:           membus.NewIOBus(),
		prefetchEnabled: true,
		pic:             noopPIC{},
		timer:           noopTimer{},
		dma:             noopDMA{},
		log:             slog.Default(),
		intNotify:       make(map[uint8][]device.IntObserver),
		retNotify:       make(map[uint32][]device.ReturnObserver),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.cyclesPerSecond == 0 {
		c.cyclesPerSecond = modelDefaultClock(model)
	}
	if c.multiplier == 0 {
		c.multiplier = 1
	}
	c.burstDivisor = defaultTickRate
	c.pfq.depth = model.queueDepth()
	c.buildTables()
	c.buildCycleTable()
	c.Reset()
	return c
}

// defaultTickRate is the pacing frequency Step/TickBudget assume a host
// front end drives the core at, absent any other signal - a PC-class
// front end typically services its own timers and input at this rate.
const defaultTickRate = 60

// Model reports the construction-time model.
func (c *CPU) Model() Model { return c.model }

// CyclesPerSecond reports the configured (or model-default) clock rate.
func (c *CPU) CyclesPerSecond() uint32 { return c.cyclesPerSecond }

// Multiplier reports the current runtime speed scalar (1 = rated speed).
func (c *CPU) Multiplier() uint32 { return c.multiplier }

// SetMultiplier changes the runtime speed scalar a host uses to implement
// a turbo button or deliberate throttling, without altering the model's
// rated clock. 0 is rejected silently (leaves the prior value) since a
// zero multiplier would stall TickBudget forever.
func (c *CPU) SetMultiplier(m uint32) {
	if m == 0 {
		return
	}
	c.multiplier = m
}

// Prefixes reports the prefix bytes recognized on the instruction
// currently being decoded (or most recently decoded, once execOne
// returns): LOCK's bus-claim semantics aren't modeled since no shared
// bus contention exists here, but an external bus model wired in later
// can observe whether the guest asserted it.
func (c *CPU) Prefixes() prefixBits { return c.opPrefixes }

// Locked reports whether the current instruction carries a LOCK prefix.
func (c *CPU) Locked() bool { return c.opPrefixes&pfxLock != 0 }

// TickBudget is the cycle count one Step (one defaultTickRate-th of a
// second at the configured clock, scaled by Multiplier) should charge -
// the burst size a host pacing loop would pass to StepCPU.
func (c *CPU) TickBudget() int {
	return int(c.cyclesPerSecond / c.burstDivisor * c.multiplier)
}

// Step runs one tick's worth of instructions at the current clock and
// speed multiplier; a convenience wrapper over StepCPU(TickBudget()).
func (c *CPU) Step() int {
	return c.StepCPU(c.TickBudget())
}

// Halted reports whether HLT is outstanding (waiting for INTR or reset).
func (c *CPU) Halted() bool { return c.intFlags&intrHALT != 0 }

// UpdateINTR is the PIC-to-CPU half of spec.md §6's external interface:
// an external interrupt controller calls this to assert or withdraw its
// level-triggered request line. The CPU itself never sets intrINTR - it
// only samples it in checkINTR and queries the PIC for a vector once IF
// allows the request through.
func (c *CPU) UpdateINTR(raise bool) {
	if raise {
		c.intFlags |= intrINTR
	} else {
		c.intFlags &^= intrINTR
	}
}

// Reset zeros the general registers, loads the model-specific reset
// vector, and clears transient state - spec.md §8 seed scenario 1.
func (c *CPU) Reset() {
	c.AX, c.BX, c.CX, c.DX = 0, 0, 0, 0
	c.SP, c.BP, c.SI, c.DI = 0, 0, 0, 0

	c.directFlags = 0
	c.resultValue = 1
	c.resultParitySign = 1
	c.resultAuxOverflow = 1
	c.resultSize = sizeWord

	c.intFlags = 0
	c.noIntr = false
	c.halted = false
	c.cpl = 0
	c.opPrefixes = 0
	c.prefixCount = 0

	c.DS = Segment{Selector: 0, Base: 0, Limit: 0xFFFF, Access: dataAccessDefault}
	c.SS = Segment{Selector: 0, Base: 0, Limit: 0xFFFF, Access: dataAccessDefault}
	c.ES = Segment{Selector: 0, Base: 0, Limit: 0xFFFF, Access: dataAccessDefault}
	c.LDTR = Segment{Null: true}
	c.TR = Segment{Null: true}
	c.IDTR = DTReg{Base: 0, Limit: 0x03FF}
	c.GDTR = DTReg{Base: 0, Limit: 0xFFFF}
	c.MSW = 0

	if c.model.is286() {
		c.CS = Segment{Selector: 0xF000, Base: 0xFF0000, Limit: 0xFFFF, Access: execAccessDefault}
		c.IP = 0xFFF0
		c.MSW = 0xFFF0
	} else {
		c.CS = Segment{Selector: 0xFFFF, Base: 0xFFFF0, Limit: 0xFFFF, Access: execAccessDefault}
		c.IP = 0x0000
	}

	c.pfq.flush(c.linearCS())
}

// linearCS returns the current physical instruction address, CS.base+IP -
// the "composite program counter" of spec.md §3.
func (c *CPU) linearCS() uint32 {
	return c.addrMask(c.CS.Base + uint32(c.IP))
}

// addrMask applies the bus's current A20 gate via a round trip through
// membus; the CPU itself never hardcodes a mask, it always asks the bus
// (spec.md §9 "A20... never as a per-instruction branch").
func (c *CPU) addrMask(addr uint32) uint32 {
	return c.bus.MaskAddr(addr)
}

const (
	dataAccessDefault = 0x93 // present, DPL0, data R/W, accessed
	execAccessDefault = 0x9B // present, DPL0, code E/R, accessed
)
