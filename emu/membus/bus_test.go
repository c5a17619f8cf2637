package membus

import "testing"

func TestOpenBusReadsZero(t *testing.T) {
	b := New()
	if v := b.ReadByte(0x1234); v != 0 {
		t.Errorf("open bus ReadByte = %#x, want 0", v)
	}
	if v := b.ReadWord(0x1234); v != 0 {
		t.Errorf("open bus ReadWord = %#x, want 0", v)
	}
	// Writes to unmapped addresses must not panic and must not be observable.
	b.WriteByte(0x1234, 0xFF)
	if v := b.ReadByte(0x1234); v != 0 {
		t.Errorf("write to open bus became visible: %#x", v)
	}
}

func TestRAMRoundTrip(t *testing.T) {
	b := New()
	b.InstallRAM(0, make([]byte, BlockSize))
	b.WriteByte(0x10, 0x42)
	if v := b.ReadByte(0x10); v != 0x42 {
		t.Errorf("ReadByte = %#x, want 0x42", v)
	}
	b.WriteWord(0x20, 0xBEEF)
	if v := b.ReadWord(0x20); v != 0xBEEF {
		t.Errorf("ReadWord = %#x, want 0xBEEF", v)
	}
}

func TestWordStraddlesBlockBoundary(t *testing.T) {
	b := New()
	b.InstallRAM(0, make([]byte, BlockSize))
	b.InstallRAM(1, make([]byte, BlockSize))
	addr := uint32(BlockSize - 1)
	b.WriteWord(addr, 0x1234)
	if v := b.ReadByte(addr); v != 0x34 {
		t.Errorf("low byte = %#x, want 0x34", v)
	}
	if v := b.ReadByte(addr + 1); v != 0x12 {
		t.Errorf("high byte = %#x, want 0x12", v)
	}
	if v := b.ReadWord(addr); v != 0x1234 {
		t.Errorf("ReadWord across boundary = %#x, want 0x1234", v)
	}
}

func TestA20Wrap(t *testing.T) {
	b := New() // A20 off: 20-bit wrap
	b.InstallRAM(0, make([]byte, BlockSize))
	b.WriteByte(0x00000, 0x55)
	if v := b.ReadByte(0x100000); v != 0x55 {
		t.Errorf("expected wrap at 1MiB with A20 off, got %#x", v)
	}
	b.SetA20(true)
	if v := b.ReadByte(0x100000); v == 0x55 {
		t.Errorf("A20 on should not alias 0x100000 to 0x0 when block 0x100 unmapped")
	}
}
