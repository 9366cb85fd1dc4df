package trace

import (
	"fmt"
	"io"
	"time"

	"github.com/go-faster/jx"

	"mbxctl/mbx"
)

type Dir uint8

const (
	Sent Dir = iota
	Received
	Dropped
)

func (d Dir) String() string {
	switch d {
	case Sent:
		return "send"
	case Received:
		return "recv"
	case Dropped:
		return "drop"
	}
	return "<error>"
}

// An Event is one traced mailbox exchange.
type Event struct {
	Time   time.Time
	Dir    Dir
	EP     uint8
	Data   uint64
	Header uint64
}

func event(dir Dir, data, header uint64) Event {
	return Event{
		Time:   time.Now(),
		Dir:    dir,
		EP:     uint8(mbx.HdrEP.Get(header)),
		Data:   data,
		Header: header,
	}
}

// MarshalJSON encodes the event as a flat object, with the 64-bit words as
// hex strings so consumers on the other side of the websocket don't lose
// precision.
func (ev Event) MarshalJSON() ([]byte, error) {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("ts")
	e.Str(ev.Time.Format(time.RFC3339Nano))
	e.FieldStart("dir")
	e.Str(ev.Dir.String())
	e.FieldStart("ep")
	e.Str(fmt.Sprintf("%02x", ev.EP))
	e.FieldStart("data")
	e.Str(fmt.Sprintf("%#x", ev.Data))
	e.FieldStart("header")
	e.Str(fmt.Sprintf("%#x", ev.Header))
	e.ObjEnd()
	return e.Bytes(), nil
}

// Writer is a line-oriented mbx.Sink in the classic bring-up format:
// "> ep:data" for sends, "< ep:data" for receives.
type Writer struct {
	W io.Writer
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{W: w}
}

func (t *Writer) Sent(data, header uint64) {
	fmt.Fprintf(t.W, "> %02x:%#x\n", uint8(mbx.HdrEP.Get(header)), data)
}

func (t *Writer) Received(data, header uint64) {
	fmt.Fprintf(t.W, "< %02x:%#x\n", uint8(mbx.HdrEP.Get(header)), data)
}

func (t *Writer) Unhandled(data, header uint64) {
	fmt.Fprintf(t.W, "unknown message: %#16x / %#x\n", data, header)
}

type multi []mbx.Sink

// Multi fans trace events out to several sinks.
func Multi(sinks ...mbx.Sink) mbx.Sink {
	return multi(sinks)
}

func (m multi) Sent(data, header uint64) {
	for _, s := range m {
		s.Sent(data, header)
	}
}

func (m multi) Received(data, header uint64) {
	for _, s := range m {
		s.Received(data, header)
	}
}

func (m multi) Unhandled(data, header uint64) {
	for _, s := range m {
		s.Unhandled(data, header)
	}
}
