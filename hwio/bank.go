package hwio

import (
	"mbxctl/log"
)

// BankReg32 is a modeled 32-bit register backed by a stored value and
// optional access callbacks. The callbacks let a hardware model compute
// status bits on read or react to writes.
type BankReg32 struct {
	Name  string
	Value uint32

	ReadCb  func(val uint32) uint32
	WriteCb func(old, val uint32)
}

func (reg *BankReg32) read() uint32 {
	if reg.ReadCb != nil {
		return reg.ReadCb(reg.Value)
	}
	return reg.Value
}

func (reg *BankReg32) write(val uint32) {
	old := reg.Value
	reg.Value = val
	if reg.WriteCb != nil {
		reg.WriteCb(old, val)
	}
}

// BankReg64 is the 64-bit counterpart of BankReg32.
type BankReg64 struct {
	Name  string
	Value uint64

	ReadCb  func(val uint64) uint64
	WriteCb func(old, val uint64)
}

func (reg *BankReg64) read() uint64 {
	if reg.ReadCb != nil {
		return reg.ReadCb(reg.Value)
	}
	return reg.Value
}

func (reg *BankReg64) write(val uint64) {
	old := reg.Value
	reg.Value = val
	if reg.WriteCb != nil {
		reg.WriteCb(old, val)
	}
}

// A Bank is a sparse register file implementing MemIO. Registers are mapped
// at absolute addresses; accesses to unmapped addresses are logged and read
// back as zero, as a bus with no device selected would.
type Bank struct {
	Name string

	regs32 map[uint64]*BankReg32
	regs64 map[uint64]*BankReg64
}

func NewBank(name string) *Bank {
	return &Bank{
		Name:   name,
		regs32: make(map[uint64]*BankReg32),
		regs64: make(map[uint64]*BankReg64),
	}
}

func (b *Bank) MapReg32(addr uint64, reg *BankReg32) {
	log.ModHwIo.DebugZ("mapping reg32").
		String("name", reg.Name).
		Hex64("addr", addr).
		String("bank", b.Name).
		End()
	b.regs32[addr] = reg
}

func (b *Bank) MapReg64(addr uint64, reg *BankReg64) {
	log.ModHwIo.DebugZ("mapping reg64").
		String("name", reg.Name).
		Hex64("addr", addr).
		String("bank", b.Name).
		End()
	b.regs64[addr] = reg
}

func (b *Bank) Read32(addr uint64) uint32 {
	reg, ok := b.regs32[addr]
	if !ok {
		log.ModHwIo.ErrorZ("unmapped Read32").
			String("bank", b.Name).
			Hex64("addr", addr).
			End()
		return 0
	}
	return reg.read()
}

func (b *Bank) Write32(addr uint64, val uint32) {
	reg, ok := b.regs32[addr]
	if !ok {
		log.ModHwIo.ErrorZ("unmapped Write32").
			String("bank", b.Name).
			Hex64("addr", addr).
			Hex32("val", val).
			End()
		return
	}
	reg.write(val)
}

func (b *Bank) Read64(addr uint64) uint64 {
	reg, ok := b.regs64[addr]
	if !ok {
		log.ModHwIo.ErrorZ("unmapped Read64").
			String("bank", b.Name).
			Hex64("addr", addr).
			End()
		return 0
	}
	return reg.read()
}

func (b *Bank) Write64(addr uint64, val uint64) {
	reg, ok := b.regs64[addr]
	if !ok {
		log.ModHwIo.ErrorZ("unmapped Write64").
			String("bank", b.Name).
			Hex64("addr", addr).
			Hex64("val", val).
			End()
		return
	}
	reg.write(val)
}
