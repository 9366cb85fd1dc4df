package mbx

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

type access struct {
	Kind string // r32, w32, r64, w64
	Addr uint64
	Val  uint64
}

// testBus is a scripted register space standing in for the hardware. The
// inbox FULL flag reports full for a configurable number of polls; outbox
// frames are served in order, consumed by the OUTBOX1 read.
type testBus struct {
	base      uint64
	accesses  []access
	fullPolls int
	outbox    []Frame
	quiet     bool // skip access recording
}

func (b *testBus) record(kind string, addr, val uint64) {
	if b.quiet {
		return
	}
	b.accesses = append(b.accesses, access{Kind: kind, Addr: addr, Val: val})
}

func (b *testBus) Read32(addr uint64) uint32 {
	var val uint32
	switch addr - b.base {
	case offInboxCtrl:
		if b.fullPolls > 0 {
			b.fullPolls--
			val = CtrlFull.Insert(0, 1)
		} else {
			val = CtrlEmpty.Insert(0, 1)
		}
	case offOutboxCtrl:
		if len(b.outbox) == 0 {
			val = CtrlEmpty.Insert(0, 1)
		}
	}
	b.record("r32", addr, uint64(val))
	return val
}

func (b *testBus) Write32(addr uint64, val uint32) {
	b.record("w32", addr, uint64(val))
}

func (b *testBus) Read64(addr uint64) uint64 {
	var val uint64
	switch addr - b.base {
	case offOutbox0:
		if len(b.outbox) > 0 {
			val = b.outbox[0].Data
		}
	case offOutbox1:
		if len(b.outbox) > 0 {
			val = b.outbox[0].Header
			b.outbox = b.outbox[1:]
		}
	}
	b.record("r64", addr, val)
	return val
}

func (b *testBus) Write64(addr uint64, val uint64) {
	b.record("w64", addr, val)
}

// recordEP records every Handle call and answers with a canned result.
type recordEP struct {
	name   string
	result bool
	calls  []Frame
}

func (ep *recordEP) Short() string { return ep.name }

func (ep *recordEP) Handle(data, header uint64) bool {
	ep.calls = append(ep.calls, Frame{Data: data, Header: header})
	return ep.result
}

const testBase = 0x2400000000

func TestBootRunPulse(t *testing.T) {
	bus := &testBus{base: testBase}
	mb := New(bus, testBase, Config{})

	mb.Boot()

	want := []access{
		{Kind: "w32", Addr: testBase + offCPUControl, Val: 1 << 4},
		{Kind: "w32", Addr: testBase + offCPUControl, Val: 0},
	}
	if diff := cmp.Diff(want, bus.accesses); diff != "" {
		t.Errorf("boot access sequence mismatch (-want +got):\n%s", diff)
	}
}

func TestSendWaitsOnInboxFull(t *testing.T) {
	bus := &testBus{base: testBase, fullPolls: 3}
	mb := New(bus, testBase, Config{})

	if err := mb.Send(0x1, Header(0x20)); err != nil {
		t.Fatalf("Send: %v", err)
	}

	want := []access{
		{Kind: "w64", Addr: testBase + offInbox0, Val: 0x1},
		{Kind: "w64", Addr: testBase + offInbox1, Val: 0x20},
		{Kind: "r32", Addr: testBase + offInboxCtrl, Val: 1 << 16},
		{Kind: "r32", Addr: testBase + offInboxCtrl, Val: 1 << 16},
		{Kind: "r32", Addr: testBase + offInboxCtrl, Val: 1 << 16},
		{Kind: "r32", Addr: testBase + offInboxCtrl, Val: 1 << 17},
	}
	if diff := cmp.Diff(want, bus.accesses); diff != "" {
		t.Errorf("send access sequence mismatch (-want +got):\n%s", diff)
	}
}

func TestSendTimeout(t *testing.T) {
	bus := &testBus{base: testBase, fullPolls: int(^uint(0) >> 1), quiet: true}
	mb := New(bus, testBase, Config{SendTimeout: 10 * time.Millisecond})

	start := time.Now()
	err := mb.Send(0x1, Header(0x20))
	if err == nil {
		t.Fatal("Send returned nil, want timeout error")
	}
	if elapsed := time.Since(start); elapsed < 10*time.Millisecond {
		t.Errorf("Send returned after %s, before the timeout", elapsed)
	}
}

func TestRecvEmptyOutbox(t *testing.T) {
	bus := &testBus{base: testBase}
	mb := New(bus, testBase, Config{})

	if _, ok := mb.Recv(); ok {
		t.Fatal("Recv on empty outbox returned a frame")
	}

	// the status check must be the only register access
	want := []access{
		{Kind: "r32", Addr: testBase + offOutboxCtrl, Val: 1 << 17},
	}
	if diff := cmp.Diff(want, bus.accesses); diff != "" {
		t.Errorf("recv access sequence mismatch (-want +got):\n%s", diff)
	}
}

func TestRecvFrame(t *testing.T) {
	hdr := HdrEP.Insert(0, 0x20)
	hdr = HdrInPtr.Insert(hdr, 0x3)
	hdr = HdrOutCnt.Insert(hdr, 0x7)

	bus := &testBus{base: testBase, outbox: []Frame{{Data: 0xdead, Header: hdr}}}
	mb := New(bus, testBase, Config{})

	f, ok := mb.Recv()
	if !ok {
		t.Fatal("Recv returned no frame")
	}
	if f.Data != 0xdead || f.Header != hdr {
		t.Errorf("frame = %#x/%#x, want %#x/%#x", f.Data, f.Header, uint64(0xdead), hdr)
	}
	if f.EP() != 0x20 {
		t.Errorf("EP = %#x, want 0x20", f.EP())
	}
}

func TestDispatch(t *testing.T) {
	for _, result := range []bool{true, false} {
		mgmt := &recordEP{name: "mgmt", result: result}
		mb := New(&testBus{base: testBase}, testBase, Config{})
		mb.AddEP(0x20, mgmt)

		f := Frame{Data: 0xdead, Header: Header(0x20)}
		if got := mb.Dispatch(f); got != result {
			t.Errorf("Dispatch = %v, want %v", got, result)
		}
		if diff := cmp.Diff([]Frame{f}, mgmt.calls); diff != "" {
			t.Errorf("handler calls mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestDispatchUnknownEP(t *testing.T) {
	mgmt := &recordEP{name: "mgmt", result: true}
	mb := New(&testBus{base: testBase}, testBase, Config{})
	mb.AddEP(0x20, mgmt)

	if mb.Dispatch(Frame{Data: 0x1, Header: Header(0x42)}) {
		t.Error("Dispatch of unregistered EP reported handled")
	}
	if len(mgmt.calls) != 0 {
		t.Errorf("handler called %d times for a foreign EP", len(mgmt.calls))
	}
}

func TestPumpOnceIdle(t *testing.T) {
	mb := New(&testBus{base: testBase}, testBase, Config{})

	handled, idle := mb.PumpOnce()
	if !idle || handled {
		t.Errorf("PumpOnce on empty outbox = (%v, %v), want (false, true)", handled, idle)
	}
}

func TestPumpOnceDispatchesOneFrame(t *testing.T) {
	mgmt := &recordEP{name: "mgmt", result: true}
	bus := &testBus{base: testBase, outbox: []Frame{
		{Data: 0xdead, Header: Header(0x20)},
		{Data: 0xbeef, Header: Header(0x20)},
	}}
	mb := New(bus, testBase, Config{})
	mb.AddEP(0x20, mgmt)

	handled, idle := mb.PumpOnce()
	if !handled || idle {
		t.Errorf("PumpOnce = (%v, %v), want (true, false)", handled, idle)
	}
	want := []Frame{{Data: 0xdead, Header: Header(0x20)}}
	if diff := cmp.Diff(want, mgmt.calls); diff != "" {
		t.Errorf("handler calls mismatch (-want +got):\n%s", diff)
	}
	if len(bus.outbox) != 1 {
		t.Errorf("outbox frames left = %d, want 1", len(bus.outbox))
	}
}

func TestPumpDrainsOutbox(t *testing.T) {
	mgmt := &recordEP{name: "mgmt", result: true}
	bus := &testBus{base: testBase, outbox: []Frame{
		{Data: 0x1, Header: Header(0x20)},
		{Data: 0x2, Header: Header(0x20)},
		{Data: 0x3, Header: Header(0x20)},
	}}
	mb := New(bus, testBase, Config{})
	mb.AddEP(0x20, mgmt)

	mb.Pump()

	if len(mgmt.calls) != 3 {
		t.Errorf("handler called %d times, want 3", len(mgmt.calls))
	}
	if len(bus.outbox) != 0 {
		t.Errorf("outbox frames left = %d, want 0", len(bus.outbox))
	}
}

func TestPumpStopsOnUnhandledFrame(t *testing.T) {
	mgmt := &recordEP{name: "mgmt", result: true}
	bus := &testBus{base: testBase, outbox: []Frame{
		{Data: 0x1, Header: Header(0x20)},
		{Data: 0x2, Header: Header(0x42)}, // nobody home
		{Data: 0x3, Header: Header(0x20)},
	}}
	mb := New(bus, testBase, Config{})
	mb.AddEP(0x20, mgmt)

	mb.Pump()

	if len(mgmt.calls) != 1 {
		t.Errorf("handler called %d times, want 1", len(mgmt.calls))
	}
	if len(bus.outbox) != 1 {
		t.Errorf("outbox frames left = %d, want 1", len(bus.outbox))
	}
}

func TestAddEPReplace(t *testing.T) {
	first := &recordEP{name: "mgmt", result: true}
	second := &recordEP{name: "mgmt2", result: true}

	mb := New(&testBus{base: testBase}, testBase, Config{})
	mb.AddEP(0x20, first)
	mb.AddEP(0x20, second)

	mb.Dispatch(Frame{Data: 0x1, Header: Header(0x20)})
	if len(first.calls) != 0 {
		t.Error("replaced endpoint still receives frames")
	}
	if len(second.calls) != 1 {
		t.Errorf("replacement called %d times, want 1", len(second.calls))
	}

	if mb.EP("mgmt2") != second {
		t.Error("EP(mgmt2) does not return the registered endpoint")
	}
	if mb.EP("mgmt") != nil {
		t.Error("EP(mgmt) still resolves after replacement")
	}
}

func TestHeaderFields(t *testing.T) {
	hdr := Header(0xab)
	if got := HdrEP.Get(hdr); got != 0xab {
		t.Errorf("EP = %#x, want 0xab", got)
	}

	// ring bookkeeping fields round-trip independently
	hdr = HdrInCnt.Insert(hdr, 0xf)
	hdr = HdrOutPtr.Insert(hdr, 0x5)
	if got := HdrEP.Get(hdr); got != 0xab {
		t.Errorf("EP clobbered by ring fields: %#x", got)
	}
	if got := HdrInCnt.Get(hdr); got != 0xf {
		t.Errorf("INCNT = %#x, want 0xf", got)
	}
	if got := HdrOutPtr.Get(hdr); got != 0x5 {
		t.Errorf("OUTPTR = %#x, want 0x5", got)
	}
}
