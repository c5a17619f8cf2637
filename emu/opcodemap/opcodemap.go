/*
   opcodemap - mnemonic names for the primary and 0x0F opcode maps.

   Copyright (c) 2026, the x86core contributors

   See the project license in emu/cpu/cpu.go.
*/

// Package opcodemap is a disassembler-free mnemonic lookup: one string
// per primary opcode (and per 80286 two-byte 0x0F opcode), used only by
// logging and the conformance runner's failure reports. It never decodes
// operands - that's emu/cpu's job - this just names the byte. Modeled on
// the teacher's emu/opcodemap package, which does the same job for the
// S/370 instruction set.
package opcodemap

// Primary holds one mnemonic per byte 0x00-0xFF of the single-byte
// opcode map, shared by the whole 8086/80188/80186/80286 family; entries
// that are reserved/unassigned on every model read "???".
var Primary = [256]string{
	0x00: "ADD Eb,Gb", 0x01: "ADD Ev,Gv", 0x02: "ADD Gb,Eb", 0x03: "ADD Gv,Ev",
	0x04: "ADD AL,Ib", 0x05: "ADD AX,Iv", 0x06: "PUSH ES", 0x07: "POP ES",
	0x08: "OR Eb,Gb", 0x09: "OR Ev,Gv", 0x0A: "OR Gb,Eb", 0x0B: "OR Gv,Ev",
	0x0C: "OR AL,Ib", 0x0D: "OR AX,Iv", 0x0E: "PUSH CS", 0x0F: "(0x0F)",
	0x10: "ADC Eb,Gb", 0x11: "ADC Ev,Gv", 0x12: "ADC Gb,Eb", 0x13: "ADC Gv,Ev",
	0x14: "ADC AL,Ib", 0x15: "ADC AX,Iv", 0x16: "PUSH SS", 0x17: "POP SS",
	0x18: "SBB Eb,Gb", 0x19: "SBB Ev,Gv", 0x1A: "SBB Gb,Eb", 0x1B: "SBB Gv,Ev",
	0x1C: "SBB AL,Ib", 0x1D: "SBB AX,Iv", 0x1E: "PUSH DS", 0x1F: "POP DS",
	0x20: "AND Eb,Gb", 0x21: "AND Ev,Gv", 0x22: "AND Gb,Eb", 0x23: "AND Gv,Ev",
	0x24: "AND AL,Ib", 0x25: "AND AX,Iv", 0x26: "ES:", 0x27: "DAA",
	0x28: "SUB Eb,Gb", 0x29: "SUB Ev,Gv", 0x2A: "SUB Gb,Eb", 0x2B: "SUB Gv,Ev",
	0x2C: "SUB AL,Ib", 0x2D: "SUB AX,Iv", 0x2E: "CS:", 0x2F: "DAS",
	0x30: "XOR Eb,Gb", 0x31: "XOR Ev,Gv", 0x32: "XOR Gb,Eb", 0x33: "XOR Gv,Ev",
	0x34: "XOR AL,Ib", 0x35: "XOR AX,Iv", 0x36: "SS:", 0x37: "AAA",
	0x38: "CMP Eb,Gb", 0x39: "CMP Ev,Gv", 0x3A: "CMP Gb,Eb", 0x3B: "CMP Gv,Ev",
	0x3C: "CMP AL,Ib", 0x3D: "CMP AX,Iv", 0x3E: "DS:", 0x3F: "AAS",
	0x40: "INC AX", 0x41: "INC CX", 0x42: "INC DX", 0x43: "INC BX",
	0x44: "INC SP", 0x45: "INC BP", 0x46: "INC SI", 0x47: "INC DI",
	0x48: "DEC AX", 0x49: "DEC CX", 0x4A: "DEC DX", 0x4B: "DEC BX",
	0x4C: "DEC SP", 0x4D: "DEC BP", 0x4E: "DEC SI", 0x4F: "DEC DI",
	0x50: "PUSH AX", 0x51: "PUSH CX", 0x52: "PUSH DX", 0x53: "PUSH BX",
	0x54: "PUSH SP", 0x55: "PUSH BP", 0x56: "PUSH SI", 0x57: "PUSH DI",
	0x58: "POP AX", 0x59: "POP CX", 0x5A: "POP DX", 0x5B: "POP BX",
	0x5C: "POP SP", 0x5D: "POP BP", 0x5E: "POP SI", 0x5F: "POP DI",
	0x60: "PUSHA", 0x61: "POPA", 0x62: "BOUND Gv,Ma", 0x63: "???",
	0x64: "???", 0x65: "???", 0x66: "???", 0x67: "???",
	0x68: "PUSH Iv", 0x69: "IMUL Gv,Ev,Iv", 0x6A: "PUSH Ib", 0x6B: "IMUL Gv,Ev,Ib",
	0x6C: "INSB", 0x6D: "INSW", 0x6E: "OUTSB", 0x6F: "OUTSW",
	0x70: "JO Jb", 0x71: "JNO Jb", 0x72: "JB Jb", 0x73: "JNB Jb",
	0x74: "JZ Jb", 0x75: "JNZ Jb", 0x76: "JBE Jb", 0x77: "JA Jb",
	0x78: "JS Jb", 0x79: "JNS Jb", 0x7A: "JP Jb", 0x7B: "JNP Jb",
	0x7C: "JL Jb", 0x7D: "JGE Jb", 0x7E: "JLE Jb", 0x7F: "JG Jb",
	0x80: "GRP1 Eb,Ib", 0x81: "GRP1 Ev,Iv", 0x82: "GRP1 Eb,Ib", 0x83: "GRP1 Ev,Ib",
	0x84: "TEST Eb,Gb", 0x85: "TEST Ev,Gv", 0x86: "XCHG Eb,Gb", 0x87: "XCHG Ev,Gv",
	0x88: "MOV Eb,Gb", 0x89: "MOV Ev,Gv", 0x8A: "MOV Gb,Eb", 0x8B: "MOV Gv,Ev",
	0x8C: "MOV Ev,Sw", 0x8D: "LEA Gv,M", 0x8E: "MOV Sw,Ev", 0x8F: "POP Ev",
	0x90: "NOP", 0x91: "XCHG CX,AX", 0x92: "XCHG DX,AX", 0x93: "XCHG BX,AX",
	0x94: "XCHG SP,AX", 0x95: "XCHG BP,AX", 0x96: "XCHG SI,AX", 0x97: "XCHG DI,AX",
	0x98: "CBW", 0x99: "CWD", 0x9A: "CALL Ap", 0x9B: "WAIT",
	0x9C: "PUSHF", 0x9D: "POPF", 0x9E: "SAHF", 0x9F: "LAHF",
	0xA0: "MOV AL,Ob", 0xA1: "MOV AX,Ov", 0xA2: "MOV Ob,AL", 0xA3: "MOV Ov,AX",
	0xA4: "MOVSB", 0xA5: "MOVSW", 0xA6: "CMPSB", 0xA7: "CMPSW",
	0xA8: "TEST AL,Ib", 0xA9: "TEST AX,Iv", 0xAA: "STOSB", 0xAB: "STOSW",
	0xAC: "LODSB", 0xAD: "LODSW", 0xAE: "SCASB", 0xAF: "SCASW",
	0xB0: "MOV AL,Ib", 0xB1: "MOV CL,Ib", 0xB2: "MOV DL,Ib", 0xB3: "MOV BL,Ib",
	0xB4: "MOV AH,Ib", 0xB5: "MOV CH,Ib", 0xB6: "MOV DH,Ib", 0xB7: "MOV BH,Ib",
	0xB8: "MOV AX,Iv", 0xB9: "MOV CX,Iv", 0xBA: "MOV DX,Iv", 0xBB: "MOV BX,Iv",
	0xBC: "MOV SP,Iv", 0xBD: "MOV BP,Iv", 0xBE: "MOV SI,Iv", 0xBF: "MOV DI,Iv",
	0xC0: "GRP2 Eb,Ib", 0xC1: "GRP2 Ev,Ib", 0xC2: "RET Iw", 0xC3: "RET",
	0xC4: "LES Gv,Mp", 0xC5: "LDS Gv,Mp", 0xC6: "MOV Eb,Ib", 0xC7: "MOV Ev,Iv",
	0xC8: "ENTER Iw,Ib", 0xC9: "LEAVE", 0xCA: "RETF Iw", 0xCB: "RETF",
	0xCC: "INT3", 0xCD: "INT Ib", 0xCE: "INTO", 0xCF: "IRET",
	0xD0: "GRP2 Eb,1", 0xD1: "GRP2 Ev,1", 0xD2: "GRP2 Eb,CL", 0xD3: "GRP2 Ev,CL",
	0xD4: "AAM Ib", 0xD5: "AAD Ib", 0xD6: "SALC", 0xD7: "XLAT",
	0xD8: "ESC 0", 0xD9: "ESC 1", 0xDA: "ESC 2", 0xDB: "ESC 3",
	0xDC: "ESC 4", 0xDD: "ESC 5", 0xDE: "ESC 6", 0xDF: "ESC 7",
	0xE0: "LOOPNE Jb", 0xE1: "LOOPE Jb", 0xE2: "LOOP Jb", 0xE3: "JCXZ Jb",
	0xE4: "IN AL,Ib", 0xE5: "IN AX,Ib", 0xE6: "OUT Ib,AL", 0xE7: "OUT Ib,AX",
	0xE8: "CALL Jv", 0xE9: "JMP Jv", 0xEA: "JMP Ap", 0xEB: "JMP Jb",
	0xEC: "IN AL,DX", 0xED: "IN AX,DX", 0xEE: "OUT DX,AL", 0xEF: "OUT DX,AX",
	0xF0: "LOCK", 0xF1: "???", 0xF2: "REPNE", 0xF3: "REP",
	0xF4: "HLT", 0xF5: "CMC", 0xF6: "GRP3 Eb", 0xF7: "GRP3 Ev",
	0xF8: "CLC", 0xF9: "STC", 0xFA: "CLI", 0xFB: "STI",
	0xFC: "CLD", 0xFD: "STD", 0xFE: "GRP4", 0xFF: "GRP5",
}

// TwoByte holds mnemonics for the 80286 0x0F map this core implements;
// everything else in that map (MMX/386+ forms) is out of scope, left
// empty here, and reported as "???" by Name0F.
var TwoByte = [256]string{
	0x00: "GRP6", 0x01: "GRP7", 0x02: "LAR Gv,Ew", 0x03: "LSL Gv,Ew",
	0x06: "CLTS",
}

// Name returns the primary-map mnemonic for opcode, without resolving
// operands.
func Name(opcode byte) string {
	return Primary[opcode]
}

// Name0F returns the 0x0F-map mnemonic for opcode, or "???" if this core
// leaves that slot unassigned.
func Name0F(opcode byte) string {
	if s := TwoByte[opcode]; s != "" {
		return s
	}
	return "???"
}
