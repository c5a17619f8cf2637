/*
   membus - Page-indexed physical address space for the x86 core.

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

// Package membus implements the physical address space described in
// spec §4.1: a block-indexed bus where RAM, ROM and memory-mapped I/O
// coexist behind per-block read/write vectors, gated by an A20-style
// address mask. The teacher (S/370's emu/memory) keeps a single flat
// array with a key byte per 2K page; this bus generalizes that one step
// further, the way a PC's BIU actually needs, by letting each block
// install its own vtable instead of assuming RAM everywhere.
package membus

// BlockShift and BlockSize fix the granularity of installable regions.
// 4 KiB blocks match the smallest unit BIOS/adapter ROM and MMIO
// windows are mapped on in the period hardware this core targets.
const (
	BlockShift = 12
	BlockSize  = 1 << BlockShift
	blockMask  = BlockSize - 1
	numBlocks  = 1 << (24 - BlockShift) // 16 MiB physical ceiling (80286 bus)
)

// A20 gate values. The 8086/80188 have a 20-bit address bus; the 80286
// can run in real mode with the gate either forced low (8086
// compatibility, wrapping at 1M) or open (the "high memory area").
const (
	AddrMask20 uint32 = 0x000FFFFF
	AddrMask24 uint32 = 0x00FFFFFF
)

// Block is the per-block vtable a caller installs with InstallBlock.
// A nil entry behaves as open bus: reads return 0, writes are swallowed.
type Block struct {
	ReadByte  func(off uint32) byte
	ReadWord  func(off uint32) uint16
	WriteByte func(off uint32, v byte)
	WriteWord func(off uint32, v uint16)
}

// Bus is the physical address space. The zero value is a bus with no
// installed blocks (pure open bus) and an addrMask of 0, which folds
// every address to 0 until SetA20 or SetAddrMask runs; callers normally
// use New.
type Bus struct {
	blocks   [numBlocks]*Block
	addrMask uint32
}

// New returns a Bus with the A20 gate forced low (8086/80188/80186
// default: addresses wrap at 1 MiB).
func New() *Bus {
	return &Bus{addrMask: AddrMask20}
}

// SetA20 toggles the gate. When on, addresses are masked to 24 bits
// (80286 protected-mode range); when off, to 20 bits, reproducing the
// 8086 high-memory wraparound.
func (b *Bus) SetA20(on bool) {
	if on {
		b.addrMask = AddrMask24
	} else {
		b.addrMask = AddrMask20
	}
}

// SetAddrMask overrides the mask directly - used by the 80286 in real
// mode, which keeps a 24-bit address bus (no wraparound) while still
// computing segment arithmetic as 20-bit (the "HMA anomaly" spec §4.3
// calls out). Passing 0 restores the A20-derived default.
func (b *Bus) SetAddrMask(mask uint32) {
	if mask == 0 {
		mask = AddrMask20
	}
	b.addrMask = mask
}

// InstallBlock installs vtable at blockIndex (addr>>BlockShift). Passing
// a nil vtable uninstalls the block, reverting it to open-bus behavior.
func (b *Bus) InstallBlock(blockIndex uint32, vtable *Block) {
	if int(blockIndex) >= len(b.blocks) {
		return
	}
	b.blocks[blockIndex] = vtable
}

// InstallRAM installs a block backed by a plain byte slice, the common
// case for conventional RAM and option ROM images.
func (b *Bus) InstallRAM(blockIndex uint32, ram []byte) {
	if len(ram) < BlockSize {
		padded := make([]byte, BlockSize)
		copy(padded, ram)
		ram = padded
	}
	b.InstallBlock(blockIndex, &Block{
		ReadByte: func(off uint32) byte { return ram[off] },
		ReadWord: func(off uint32) uint16 {
			return uint16(ram[off]) | uint16(ram[(off+1)&blockMask])<<8
		},
		WriteByte: func(off uint32, v byte) { ram[off] = v },
		WriteWord: func(off uint32, v uint16) {
			ram[off] = byte(v)
			ram[(off+1)&blockMask] = byte(v >> 8)
		},
	})
}

// MaskAddr applies the current A20/address mask to addr without
// performing an access - used by callers (the CPU core's segment
// arithmetic) that need to fold wraparound into a computed linear
// address before deciding whether to fault on it.
func (b *Bus) MaskAddr(addr uint32) uint32 {
	return addr & b.addrMask
}

func (b *Bus) lookup(addr uint32) (*Block, uint32) {
	addr &= b.addrMask
	idx := addr >> BlockShift
	if int(idx) >= len(b.blocks) {
		return nil, 0
	}
	return b.blocks[idx], addr & blockMask
}

// ReadByte returns 0 for unmapped addresses (open bus), matching the
// teacher's philosophy that the bus never faults - only SegmentUnit does.
func (b *Bus) ReadByte(addr uint32) byte {
	blk, off := b.lookup(addr)
	if blk == nil || blk.ReadByte == nil {
		return 0
	}
	return blk.ReadByte(off)
}

// ReadWord reads a 16-bit little-endian word. A word that straddles two
// blocks is split into two byte reads; the second address is masked by
// addrMask only (never by blockMask alone), so the high byte comes from
// the next block (or wraps at the address-mask boundary) rather than
// from the start of the same block.
func (b *Bus) ReadWord(addr uint32) uint16 {
	if addr&blockMask == blockMask {
		lo := b.ReadByte(addr)
		hi := b.ReadByte((addr + 1) & b.addrMask)
		return uint16(lo) | uint16(hi)<<8
	}
	blk, off := b.lookup(addr)
	if blk == nil || blk.ReadWord == nil {
		if blk == nil {
			return 0
		}
		lo := b.ReadByte(addr)
		hi := b.ReadByte(addr + 1)
		return uint16(lo) | uint16(hi)<<8
	}
	return blk.ReadWord(off)
}

// WriteByte swallows writes to unmapped addresses.
func (b *Bus) WriteByte(addr uint32, v byte) {
	blk, off := b.lookup(addr)
	if blk == nil || blk.WriteByte == nil {
		return
	}
	blk.WriteByte(off, v)
}

// WriteWord writes a 16-bit little-endian word, splitting across blocks
// exactly as ReadWord does.
func (b *Bus) WriteWord(addr uint32, v uint16) {
	if addr&blockMask == blockMask {
		b.WriteByte(addr, byte(v))
		b.WriteByte((addr+1)&b.addrMask, byte(v>>8))
		return
	}
	blk, off := b.lookup(addr)
	if blk == nil {
		return
	}
	if blk.WriteWord == nil {
		b.WriteByte(addr, byte(v))
		b.WriteByte(addr+1, byte(v>>8))
		return
	}
	blk.WriteWord(off, v)
}
