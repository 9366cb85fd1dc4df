package mbx

import "mbxctl/log"

// An Endpoint consumes mailbox frames routed to its identifier. Handle
// reports whether the frame was processed; a false return is diagnostic
// only, the frame is gone either way.
type Endpoint interface {
	Short() string
	Handle(data, header uint64) bool
}

// EndpointFunc adapts a plain function to the Endpoint interface.
type EndpointFunc struct {
	Name string
	Fn   func(data, header uint64) bool
}

func (ep EndpointFunc) Short() string { return ep.Name }

func (ep EndpointFunc) Handle(data, header uint64) bool {
	return ep.Fn(data, header)
}

// LoggerEndpoint accepts every frame and logs it. Handy as a catch-all
// during bring-up, before an endpoint's payload handling exists.
type LoggerEndpoint struct {
	Name string
}

func (ep LoggerEndpoint) Short() string { return ep.Name }

func (ep LoggerEndpoint) Handle(data, header uint64) bool {
	log.ModMbx.InfoZ("frame").
		String("ep", ep.Name).
		Hex64("data", data).
		Hex64("header", header).
		End()
	return true
}
