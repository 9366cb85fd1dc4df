package mbx

import "mbxctl/hwio"

// Register offsets from the mailbox base address.
const (
	offCPUControl = 0x0044
	offInboxCtrl  = 0x8110
	offOutboxCtrl = 0x8114
	offInbox0     = 0x8800
	offInbox1     = 0x8808
	offOutbox0    = 0x8830
	offOutbox1    = 0x8838
)

// CPU_CONTROL fields.
var (
	CPURun = hwio.Bit32(4)
)

// INBOX_CTRL / OUTBOX_CTRL fields. FULL and EMPTY are asserted by the
// hardware and mutually exclusive; ENABLE exists on the inbox only.
var (
	CtrlEnable = hwio.Bit32(1)
	CtrlFull   = hwio.Bit32(16)
	CtrlEmpty  = hwio.Bit32(17)
)

// Header word fields. EP is the routing key; the pointer and count fields
// are hardware ring bookkeeping, round-tripped but never interpreted here.
var (
	HdrEP     = hwio.Field64{Hi: 7, Lo: 0}
	HdrInPtr  = hwio.Field64{Hi: 43, Lo: 40}
	HdrOutPtr = hwio.Field64{Hi: 47, Lo: 44}
	HdrInCnt  = hwio.Field64{Hi: 51, Lo: 48}
	HdrOutCnt = hwio.Field64{Hi: 56, Lo: 52}
)

// Regs is the mailbox register map, resolved against a base address.
type Regs struct {
	CPUControl hwio.Reg32
	InboxCtrl  hwio.Reg32
	OutboxCtrl hwio.Reg32
	Inbox0     hwio.Reg64
	Inbox1     hwio.Reg64
	Outbox0    hwio.Reg64
	Outbox1    hwio.Reg64
}

func NewRegs(bus hwio.MemIO, base uint64) Regs {
	return Regs{
		CPUControl: hwio.Reg32{Name: "CPU_CONTROL", Bus: bus, Addr: base + offCPUControl},
		InboxCtrl:  hwio.Reg32{Name: "INBOX_CTRL", Bus: bus, Addr: base + offInboxCtrl},
		OutboxCtrl: hwio.Reg32{Name: "OUTBOX_CTRL", Bus: bus, Addr: base + offOutboxCtrl},
		Inbox0:     hwio.Reg64{Name: "INBOX0", Bus: bus, Addr: base + offInbox0},
		Inbox1:     hwio.Reg64{Name: "INBOX1", Bus: bus, Addr: base + offInbox1},
		Outbox0:    hwio.Reg64{Name: "OUTBOX0", Bus: bus, Addr: base + offOutbox0},
		Outbox1:    hwio.Reg64{Name: "OUTBOX1", Bus: bus, Addr: base + offOutbox1},
	}
}
