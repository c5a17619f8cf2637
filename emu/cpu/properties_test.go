package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/go8086/x86core/emu/membus"
)

// architected flag bits, per spec.md §8's "flag round-trip" property:
// every bit setPS/getPS actually carries, direct or derived.
const architectedFlagBits = psCF | psPF | psAF | psZF | psSF | psOF | directMask

// TestFlagRoundTrip: getPS(setPS(v)) == v & architectedFlagBits, plus the
// always-set bit 1, for a spread of values covering every flag alone and
// in combination.
func TestFlagRoundTrip(t *testing.T) {
	values := []uint16{
		0x0000, 0xFFFF, psCF, psPF, psAF, psZF, psSF, psOF,
		psTF, psIF, psDF, psIOPLMask, psNT,
		psCF | psZF | psOF, psSF | psAF | psPF,
		0x0F00, 0xAAAA, 0x5555,
	}
	for _, v := range values {
		c := newTestCPU(Model80286)
		c.setPS(v)
		got := c.getPS()
		want := (v & architectedFlagBits) | 0x0002
		assert.Equal(t, want, got, "round-trip of %#04x", v)
	}
}

// TestRealModeAddressLaw: linear(seg,off) = ((seg<<4)+off) & addrMask for
// real-mode segment loads, exercised through the same Segment.Base
// computation every real-mode segment load uses.
func TestRealModeAddressLaw(t *testing.T) {
	cases := []struct{ seg, off uint16 }{
		{0x0000, 0x0000}, {0xFFFF, 0xFFFF}, {0x1000, 0x0020},
		{0x07C0, 0x0000}, {0xF000, 0xFFF0}, {0x8000, 0x8000},
	}
	for _, tc := range cases {
		c := newTestCPU(Model8088)
		seg := loadReal(tc.seg)
		got := c.addrMask(seg.Base + uint32(tc.off))
		want := c.addrMask((uint32(tc.seg) << 4) + uint32(tc.off))
		assert.Equal(t, want, got, "seg=%#04x off=%#04x", tc.seg, tc.off)
	}
}

// TestPrefetchByteEquivalence: the same instruction stream, executed once
// with prefetch enabled and once with it disabled, reaches identical
// architected state; only cycle totals may differ.
func TestPrefetchByteEquivalence(t *testing.T) {
	code := []byte{
		0xB8, 0x34, 0x12, // MOV AX, 0x1234
		0x05, 0x01, 0x00, // ADD AX, 1
		0xBB, 0x00, 0x02, // MOV BX, 0x0200
		0x01, 0xD8, // ADD AX, BX
	}

	withPrefetch := New(Model8088, WithBus(newTestBus()), WithPrefetch(true))
	loadCode(withPrefetch, 0, 0, code)
	for i := 0; i < 4; i++ {
		withPrefetch.StepCPU(1)
	}

	withoutPrefetch := New(Model8088, WithBus(newTestBus()), WithPrefetch(false))
	loadCode(withoutPrefetch, 0, 0, code)
	for i := 0; i < 4; i++ {
		withoutPrefetch.StepCPU(1)
	}

	assert.Equal(t, withPrefetch.AX, withoutPrefetch.AX)
	assert.Equal(t, withPrefetch.BX, withoutPrefetch.BX)
	assert.Equal(t, withPrefetch.IP, withoutPrefetch.IP)
	assert.Equal(t, withPrefetch.getPS(), withoutPrefetch.getPS())
}

func newTestBus() *membus.Bus {
	bus := membus.New()
	bus.InstallRAM(0, make([]byte, membus.BlockSize))
	return bus
}

// fakePIC asserts an IRQ on vector only after skip prior GetIRRVector
// calls have passed, then keeps asserting it (a real PIC holds IRR until
// it's acknowledged).
type fakePIC struct {
	vector int16
	skip   int
	calls  int
}

func (p *fakePIC) GetIRRVector() int16 {
	p.calls++
	if p.calls <= p.skip {
		return -1
	}
	return p.vector
}
func (p *fakePIC) DelayINTR() {}

// TestInterruptAtomicity: with both a pending hardware IRQ and a pending
// single-step trap, a single step acknowledges exactly one of the two -
// never both in the same step, and never neither. Which one depends on
// model: 8086/80186 service the IRQ first, 80286 inverts that.
func TestInterruptAtomicity(t *testing.T) {
	setup := func(model Model) *CPU {
		pic := &fakePIC{vector: 0x08}
		c := New(model, WithBus(newTestBus()), WithPIC(pic))
		loadCode(c, 0, 0, []byte{0x90, 0x90, 0x90}) // NOP NOP NOP
		c.SS = Segment{Selector: 0, Base: 0, Limit: 0xFFFF, Access: dataAccessDefault}
		c.SP = 0x0100
		c.setPS(c.getPS() | psTF | psIF)
		c.intFlags |= intrTRAP // simulates TF having been set by the previous instruction
		c.UpdateINTR(true)     // the fakePIC's request line is asserted throughout
		c.bus.WriteWord(0x08*4, 0x9000) // IVT[8]: hardware IRQ handler
		c.bus.WriteWord(0x08*4+2, 0x9000)
		c.bus.WriteWord(0x01*4, 0x9100) // IVT[1]: single-step trap handler
		c.bus.WriteWord(0x01*4+2, 0x9100)
		return c
	}

	exactlyOneDispatch := func(t *testing.T, c *CPU) {
		t.Helper()
		dispatches := 0
		if c.CS.Selector == 0x9000 {
			dispatches++
		}
		if c.CS.Selector == 0x9100 {
			dispatches++
		}
		assert.Equal(t, 1, dispatches, "expected exactly one interrupt dispatch, landed at CS=%#04x", c.CS.Selector)
	}

	t.Run("8088 services the hardware IRQ first", func(t *testing.T) {
		c := setup(Model8088)
		c.StepCPU(1)
		exactlyOneDispatch(t, c)
		assert.Equal(t, uint16(0x9000), c.CS.Selector)
	})

	t.Run("80286 services the trap first", func(t *testing.T) {
		c := setup(Model80286)
		c.StepCPU(1)
		exactlyOneDispatch(t, c)
		assert.Equal(t, uint16(0x9100), c.CS.Selector)
	})
}

// TestREPStringResumability: an interrupt arriving mid REP MOVSB leaves
// the saved return IP pointing at the REP prefix byte itself (not the
// MOVSB opcode byte after it), so IRET resumes the whole prefixed
// instruction and CX keeps counting down correctly.
func TestREPStringResumability(t *testing.T) {
	pic := &fakePIC{vector: 0x08, skip: 1} // fires only after the first element runs
	c := New(Model80186, WithBus(newTestBus()), WithPIC(pic))
	loadCode(c, 0, 0x0010, []byte{0xF3, 0xA4}) // REP MOVSB at IP=0x0010
	c.SS = Segment{Selector: 0, Base: 0, Limit: 0xFFFF, Access: dataAccessDefault}
	c.SP = 0x0100
	c.DS = Segment{Selector: 0, Base: 0, Limit: 0xFFFF, Access: dataAccessDefault}
	c.ES = Segment{Selector: 0, Base: 0, Limit: 0xFFFF, Access: dataAccessDefault}
	c.CX = 10
	c.SI = 0x0500
	c.DI = 0x0600
	c.setPS(c.getPS() | psIF)
	c.UpdateINTR(true)
	c.bus.WriteWord(0x08*4, 0x2000)
	c.bus.WriteWord(0x08*4+2, 0x2000)

	c.StepCPU(1) // one string element, IP rewound to the REP prefix byte
	c.StepCPU(1) // checkINTR now sees the pending IRQ and dispatches it

	assert.Equal(t, uint16(0x2000), c.CS.Selector, "hardware IRQ should have been acknowledged between string elements")
	savedIP := c.bus.ReadWord(0x0FA)
	assert.Equal(t, uint16(0x0010), savedIP, "saved IP must point at the REP prefix byte, not mid-string")
	assert.Less(t, c.CX, uint16(10), "CX should have counted down before the interrupt landed")
}
