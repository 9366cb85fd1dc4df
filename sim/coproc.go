package sim

import (
	"sync"

	"mbxctl/hwio"
	"mbxctl/log"
	"mbxctl/mbx"
)

// Coproc models the coprocessor side of one mailbox: a register bank with
// one-slot inbox and outbox queues and hardware-style FULL/EMPTY flags. It
// implements hwio.MemIO so the host stack runs against it unchanged.
//
// A host write to INBOX1 latches the frame and, if the coprocessor is
// running, hands it to the firmware hook. A halted coprocessor leaves FULL
// asserted, which is exactly what a blocked Send observes on real hardware.
//
// Unlike the host transport, Coproc is safe for concurrent use: behind the
// proxy server its registers are touched from RPC handler goroutines while
// the firmware side pushes replies from its own.
type Coproc struct {
	mu   sync.Mutex
	bank *hwio.Bank

	running bool

	inData, inHdr uint64
	inFull        bool

	outData, outHdr uint64
	outValid        bool

	// latched frame awaiting OnMessage, fired outside the lock so the
	// hook can call Push
	pendData, pendHdr uint64
	pending           bool

	// Hold suspends delivery: inbox frames stay latched (FULL asserted)
	// until Release. Used by tests driving the back-pressure path.
	Hold bool

	// OnMessage is the firmware hook, invoked for each delivered frame.
	OnMessage func(data, header uint64)
}

func New(base uint64) *Coproc {
	c := &Coproc{bank: hwio.NewBank("coproc")}

	c.bank.MapReg32(base+0x0044, &hwio.BankReg32{
		Name:    "CPU_CONTROL",
		WriteCb: c.writeCPUControl,
	})
	c.bank.MapReg32(base+0x8110, &hwio.BankReg32{
		Name:   "INBOX_CTRL",
		ReadCb: func(uint32) uint32 { return ctrlFlags(c.inFull) },
	})
	c.bank.MapReg32(base+0x8114, &hwio.BankReg32{
		Name:   "OUTBOX_CTRL",
		ReadCb: func(uint32) uint32 { return ctrlFlags(c.outValid) },
	})
	c.bank.MapReg64(base+0x8800, &hwio.BankReg64{
		Name:    "INBOX0",
		WriteCb: func(_, val uint64) { c.inData = val },
	})
	c.bank.MapReg64(base+0x8808, &hwio.BankReg64{
		Name:    "INBOX1",
		WriteCb: c.writeInbox1,
	})
	c.bank.MapReg64(base+0x8830, &hwio.BankReg64{
		Name:   "OUTBOX0",
		ReadCb: func(uint64) uint64 { return c.outData },
	})
	c.bank.MapReg64(base+0x8838, &hwio.BankReg64{
		Name:   "OUTBOX1",
		ReadCb: c.readOutbox1,
	})
	return c
}

func ctrlFlags(full bool) uint32 {
	if full {
		return mbx.CtrlFull.Insert(0, 1)
	}
	return mbx.CtrlEmpty.Insert(0, 1)
}

func (c *Coproc) Read32(addr uint64) uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bank.Read32(addr)
}

func (c *Coproc) Write32(addr uint64, val uint32) {
	c.mu.Lock()
	c.bank.Write32(addr, val)
	c.mu.Unlock()
	c.firePending()
}

func (c *Coproc) Read64(addr uint64) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bank.Read64(addr)
}

func (c *Coproc) Write64(addr uint64, val uint64) {
	c.mu.Lock()
	c.bank.Write64(addr, val)
	c.mu.Unlock()
	c.firePending()
}

// register callbacks, all run with mu held

func (c *Coproc) writeCPUControl(_, val uint32) {
	if mbx.CPURun.Get(val) == 0 {
		return
	}
	log.ModSim.InfoZ("run pulse").End()
	c.running = true
	if c.inFull && !c.Hold {
		c.deliver()
	}
}

func (c *Coproc) writeInbox1(_, val uint64) {
	c.inHdr = val
	c.inFull = true
	if c.running && !c.Hold {
		c.deliver()
	}
}

func (c *Coproc) readOutbox1(uint64) uint64 {
	// Reading the header word consumes the outbox slot.
	c.outValid = false
	return c.outHdr
}

func (c *Coproc) deliver() {
	c.inFull = false
	c.pendData, c.pendHdr = c.inData, c.inHdr
	c.pending = true
	log.ModSim.DebugZ("deliver").
		Hex8("ep", uint8(mbx.HdrEP.Get(c.inHdr))).
		Hex64("data", c.inData).
		End()
}

// firePending invokes the firmware hook outside the lock, so the hook can
// push a reply.
func (c *Coproc) firePending() {
	c.mu.Lock()
	fire := c.pending
	data, hdr := c.pendData, c.pendHdr
	c.pending = false
	c.mu.Unlock()

	if fire && c.OnMessage != nil {
		c.OnMessage(data, hdr)
	}
}

// Release delivers the latched inbox frame, if any. Only meaningful with
// Hold set.
func (c *Coproc) Release() {
	c.mu.Lock()
	if c.inFull && c.running {
		c.deliver()
	}
	c.mu.Unlock()
	c.firePending()
}

// Push places a frame in the outbox for the host to receive. It fails when
// the single slot is still occupied.
func (c *Coproc) Push(data, header uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.outValid {
		return false
	}
	c.outData = data
	c.outHdr = header
	c.outValid = true
	return true
}

func (c *Coproc) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}
