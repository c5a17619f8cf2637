package cpu

import (
	"testing"

	"github.com/go8086/x86core/emu/membus"
)

// newTestCPU returns a CPU over 128KiB of RAM (blocks 0x00-0x1F)
// starting at linear 0, enough room for every test program below.
func newTestCPU(model Model) *CPU {
	bus := membus.New()
	for i := uint32(0); i < 0x20; i++ {
		bus.InstallRAM(i, make([]byte, membus.BlockSize))
	}
	return New(model, WithBus(bus))
}

func loadCode(c *CPU, cs, ip uint16, code []byte) {
	c.CS = Segment{Selector: cs, Base: uint32(cs) << 4, Limit: 0xFFFF, Access: execAccessDefault}
	c.IP = ip
	c.pfq.flush(c.linearCS())
	addr := c.linearCS()
	for i, b := range code {
		c.bus.WriteByte(addr+uint32(i), b)
	}
}

// seed scenario 1: reset state.
func TestResetState8088(t *testing.T) {
	c := newTestCPU(Model8088)
	if c.AX != 0 || c.BX != 0 || c.CX != 0 || c.DX != 0 || c.SP != 0 || c.BP != 0 || c.SI != 0 || c.DI != 0 {
		t.Errorf("general registers not zeroed after reset")
	}
	if c.CS.Selector != 0xFFFF {
		t.Errorf("CS = %#04x, want 0xFFFF", c.CS.Selector)
	}
	if c.IP != 0x0000 {
		t.Errorf("IP = %#04x, want 0x0000", c.IP)
	}
	if c.DS.Selector != 0 || c.ES.Selector != 0 || c.SS.Selector != 0 {
		t.Errorf("DS/ES/SS not zeroed after reset")
	}
	if ps := c.getPS(); ps != 0x0002 {
		t.Errorf("PS = %#04x, want 0x0002", ps)
	}
}

func TestResetState80286(t *testing.T) {
	c := newTestCPU(Model80286)
	if c.CS.Selector != 0xF000 {
		t.Errorf("CS.selector = %#04x, want 0xF000", c.CS.Selector)
	}
	if c.CS.Base != 0xFF0000 {
		t.Errorf("CS.base = %#06x, want 0xFF0000", c.CS.Base)
	}
	if c.IP != 0xFFF0 {
		t.Errorf("IP = %#04x, want 0xFFF0", c.IP)
	}
	if c.MSW != 0xFFF0 {
		t.Errorf("MSW = %#04x, want 0xFFF0", c.MSW)
	}
	if c.IDTR.Limit != 0x03FF {
		t.Errorf("IDT.limit = %#04x, want 0x03FF", c.IDTR.Limit)
	}
}

// seed scenario 2: segment arithmetic.
func TestSegmentArithmetic(t *testing.T) {
	c := newTestCPU(Model8088)
	loadCode(c, 0x1000, 0x0020, []byte{0xB8, 0x34, 0x12}) // MOV AX, 0x1234
	c.StepCPU(1)
	if c.AX != 0x1234 {
		t.Errorf("AX = %#04x, want 0x1234", c.AX)
	}
	if c.IP != 0x0023 {
		t.Errorf("IP = %#04x, want 0x0023", c.IP)
	}
	if got := c.linearCS(); got != 0x10023 {
		t.Errorf("linearIP = %#06x, want 0x10023", got)
	}
}

// seed scenario 3: ADD flags.
func TestAddFlagsOverflow(t *testing.T) {
	c := newTestCPU(Model8088)
	c.AX = 0x7FFF
	loadCode(c, 0, 0, []byte{0x05, 0x01, 0x00}) // ADD AX, 1
	c.StepCPU(1)
	if c.AX != 0x8000 {
		t.Errorf("AX = %#04x, want 0x8000", c.AX)
	}
	if c.getCF() {
		t.Error("CF set, want clear")
	}
	if c.getZF() {
		t.Error("ZF set, want clear")
	}
	if !c.getSF() {
		t.Error("SF clear, want set")
	}
	if !c.getOF() {
		t.Error("OF clear, want set")
	}
	if !c.getPF() {
		t.Error("PF clear, want set") // low byte of 0x8000 is 0x00, even parity
	}
	if !c.getAF() {
		t.Error("AF clear, want set")
	}
}

// seed scenario 4: shift-count masking.
func TestShiftCountMasking(t *testing.T) {
	c8088 := newTestCPU(Model8088)
	c8088.AX = 1
	c8088.CX = 33 // CL = 33
	loadCode(c8088, 0, 0, []byte{0xD3, 0xE0}) // SHL AX, CL
	c8088.StepCPU(1)
	if c8088.AX != 0 {
		t.Errorf("8088: AX = %#04x, want 0 (33 shifts)", c8088.AX)
	}

	c286 := newTestCPU(Model80286)
	c286.AX = 1
	c286.CX = 33
	loadCode(c286, 0, 0, []byte{0xD3, 0xE0})
	c286.StepCPU(1)
	if c286.AX != 2 {
		t.Errorf("80286: AX = %#04x, want 2 (33&31=1 shift)", c286.AX)
	}
}

// seed scenario 5: real-mode software interrupt dispatch.
func TestRealModeSoftwareInterrupt(t *testing.T) {
	c := newTestCPU(Model8088)
	// IVT entry 0x21: offset 0x0100, selector 0x2000.
	c.bus.WriteWord(0x21*4, 0x0100)
	c.bus.WriteWord(0x21*4+2, 0x2000)
	c.setPS(0x0202)
	loadCode(c, 0x0100, 0x0000, []byte{0xCD, 0x21}) // INT 0x21
	c.SS = Segment{Selector: 0, Base: 0, Limit: 0xFFFF, Access: dataAccessDefault}
	c.SP = 0x0100

	c.StepCPU(1)

	if c.CS.Selector != 0x2000 || c.IP != 0x0100 {
		t.Errorf("CS:IP = %#04x:%#04x, want 0x2000:0x0100", c.CS.Selector, c.IP)
	}
	if c.getIF() {
		t.Error("IF set after INT, want clear")
	}
	if c.getTF() {
		t.Error("TF set after INT, want clear")
	}

	savedIP := c.bus.ReadWord(0x0FA)
	savedCS := c.bus.ReadWord(0x0FC)
	savedPS := c.bus.ReadWord(0x0FE)
	if savedIP != 0x0002 {
		t.Errorf("pushed IP = %#04x, want 0x0002", savedIP)
	}
	if savedCS != 0x0100 {
		t.Errorf("pushed CS = %#04x, want 0x0100", savedCS)
	}
	if savedPS != 0x0202 {
		t.Errorf("pushed PS = %#04x, want 0x0202", savedPS)
	}
}

// PUSH SP dichotomy: 8086-family pushes the post-decrement SP (the
// original part's well-documented errata), 80286 pushes the
// pre-decrement value (the behavior Intel corrected it to).
func TestPushSPDichotomy(t *testing.T) {
	c8088 := newTestCPU(Model8088)
	loadCode(c8088, 0, 0, []byte{0xBC, 0x00, 0x01, 0x54}) // MOV SP,0x100; PUSH SP
	c8088.SS = Segment{Selector: 0, Base: 0, Limit: 0xFFFF, Access: dataAccessDefault}
	c8088.StepCPU(1) // MOV SP
	c8088.StepCPU(1) // PUSH SP
	if got := c8088.bus.ReadWord(0x0FE); got != 0x00FE {
		t.Errorf("8086-family: pushed SP = %#04x, want 0x00FE", got)
	}

	c286 := newTestCPU(Model80286)
	loadCode(c286, 0, 0, []byte{0xBC, 0x00, 0x01, 0x54})
	c286.SS = Segment{Selector: 0, Base: 0, Limit: 0xFFFF, Access: dataAccessDefault}
	c286.StepCPU(1) // MOV SP
	c286.StepCPU(1) // PUSH SP
	if got := c286.bus.ReadWord(0x0FE); got != 0x0100 {
		t.Errorf("80286: pushed SP = %#04x, want 0x0100", got)
	}
}
