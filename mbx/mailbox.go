package mbx

import (
	"fmt"
	"time"

	"mbxctl/hwio"
	"mbxctl/log"
)

// A Frame is one mailbox message: a data word, opaque to the transport, and
// a header word whose EP field routes it.
type Frame struct {
	Data   uint64
	Header uint64
}

func (f Frame) EP() uint8 {
	return uint8(HdrEP.Get(f.Header))
}

func (f Frame) String() string {
	return fmt.Sprintf("%02x:%#x", f.EP(), f.Data)
}

// Header builds a header word addressing the given endpoint.
func Header(ep uint8) uint64 {
	return HdrEP.Insert(0, uint64(ep))
}

// A Sink receives one diagnostic event per mailbox send/receive/drop. It is
// optional and must not block; nil disables tracing.
type Sink interface {
	Sent(data, header uint64)
	Received(data, header uint64)
	Unhandled(data, header uint64)
}

// Config tunes a Mailbox. The zero value is usable.
type Config struct {
	// SendTimeout bounds the busy-wait on inbox full. Zero keeps the
	// bring-up default: wait forever, visibly.
	SendTimeout time.Duration

	Sink Sink
}

// Mailbox drives one coprocessor mailbox: boot, synchronous sends gated on
// inbox back-pressure, and polled receive with dispatch to registered
// endpoints. It owns its register set exclusively and is not safe for
// concurrent use; all calls must come from the controlling goroutine.
type Mailbox struct {
	regs  Regs
	eps   map[uint8]Endpoint
	names map[string]Endpoint

	timeout time.Duration
	sink    Sink

	cycles uint64 // frames dispatched, for log context
}

func New(bus hwio.MemIO, base uint64, cfg Config) *Mailbox {
	return &Mailbox{
		regs:    NewRegs(bus, base),
		eps:     make(map[uint8]Endpoint),
		names:   make(map[string]Endpoint),
		timeout: cfg.SendTimeout,
		sink:    cfg.Sink,
	}
}

// AddLogContext implements log.LogContext, tagging every log line with the
// dispatch cycle count.
func (mb *Mailbox) AddLogContext(e *log.EntryZ) {
	e.Uint("cycle", uint(mb.cycles))
}

// AddEP registers ep under id and under its short name. Registering the
// same id again replaces the previous endpoint.
func (mb *Mailbox) AddEP(id uint8, ep Endpoint) {
	if old, ok := mb.eps[id]; ok {
		log.ModMbx.WarnZ("endpoint replaced").
			Hex8("id", id).
			String("old", old.Short()).
			String("new", ep.Short()).
			End()
		delete(mb.names, old.Short())
	}
	mb.eps[id] = ep
	mb.names[ep.Short()] = ep
}

// EP returns the endpoint registered under the given short name, or nil.
func (mb *Mailbox) EP(short string) Endpoint {
	return mb.names[short]
}

// Boot pulses the coprocessor run control: RUN=1 then RUN=0. Exactly two
// register writes, no reads. Must be called before any send or receive.
func (mb *Mailbox) Boot() {
	mb.regs.CPUControl.Write(CPURun.Insert(0, 1))
	mb.regs.CPUControl.Write(CPURun.Insert(0, 0))
	log.ModMbx.InfoZ("boot pulse").End()
}

// Send writes one frame to the inbox and busy-waits until the hardware
// clears the FULL flag, accepting the slot. The header's EP field selects
// the destination endpoint. With a zero SendTimeout an unresponsive
// coprocessor blocks the call forever.
func (mb *Mailbox) Send(data, header uint64) error {
	mb.regs.Inbox0.Write(data)
	mb.regs.Inbox1.Write(header)

	if mb.sink != nil {
		mb.sink.Sent(data, header)
	}
	log.ModMbx.DebugZ("send").
		Hex8("ep", uint8(HdrEP.Get(header))).
		Hex64("data", data).
		End()

	var deadline time.Time
	if mb.timeout != 0 {
		deadline = time.Now().Add(mb.timeout)
	}
	for mb.regs.InboxCtrl.Field(CtrlFull) != 0 {
		if !deadline.IsZero() && time.Now().After(deadline) {
			return fmt.Errorf("inbox still full after %s", mb.timeout)
		}
	}
	return nil
}

// Recv polls the outbox. It never blocks: an empty outbox returns ok=false
// immediately. Reading the outbox registers is what consumes the hardware
// slot; there is no separate acknowledge.
func (mb *Mailbox) Recv() (f Frame, ok bool) {
	if mb.regs.OutboxCtrl.Field(CtrlEmpty) != 0 {
		return Frame{}, false
	}

	f.Data = mb.regs.Outbox0.Read()
	f.Header = mb.regs.Outbox1.Read()

	if mb.sink != nil {
		mb.sink.Received(f.Data, f.Header)
	}
	log.ModMbx.DebugZ("recv").
		Hex8("ep", f.EP()).
		Hex64("data", f.Data).
		End()
	return f, true
}

// Dispatch routes a received frame to the endpoint registered under its EP
// and reports whether that endpoint handled it. An unknown EP or a refusing
// endpoint is logged and the frame dropped; neither is an error.
func (mb *Mailbox) Dispatch(f Frame) bool {
	handled := false
	if ep, ok := mb.eps[f.EP()]; ok {
		handled = ep.Handle(f.Data, f.Header)
	}

	if !handled {
		if mb.sink != nil {
			mb.sink.Unhandled(f.Data, f.Header)
		}
		log.ModMbx.WarnZ("unknown message").
			Hex8("ep", f.EP()).
			Hex64("data", f.Data).
			Hex64("header", f.Header).
			End()
	}
	return handled
}

// PumpOnce performs at most one receive+dispatch cycle. idle reports an
// empty outbox (nothing was read); otherwise handled carries the dispatch
// result for the one frame consumed.
func (mb *Mailbox) PumpOnce() (handled, idle bool) {
	f, ok := mb.Recv()
	if !ok {
		return false, true
	}
	mb.cycles++
	return mb.Dispatch(f), false
}

// Pump drains the outbox one frame at a time, stopping when it is empty or
// when a frame goes unhandled. Purely synchronous; the caller decides
// whether and how often to poll again.
func (mb *Mailbox) Pump() {
	for {
		handled, idle := mb.PumpOnce()
		if idle || !handled {
			return
		}
	}
}
