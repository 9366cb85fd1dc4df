package proxy

import (
	"net"
	"net/http"
	"net/rpc"
	"strconv"

	"mbxctl/hwio"
	"mbxctl/log"
)

var modProxy = log.ModProxy

// memService exposes a register space over net/rpc, one call per access.
type memService struct {
	mem hwio.MemIO
}

type WriteArgs32 struct {
	Addr uint64
	Val  uint32
}

type WriteArgs64 struct {
	Addr uint64
	Val  uint64
}

func (s *memService) Read32(addr uint64, reply *uint32) error {
	*reply = s.mem.Read32(addr)
	return nil
}

func (s *memService) Read64(addr uint64, reply *uint64) error {
	*reply = s.mem.Read64(addr)
	return nil
}

func (s *memService) Write32(args WriteArgs32, _ *struct{}) error {
	s.mem.Write32(args.Addr, args.Val)
	return nil
}

func (s *memService) Write64(args WriteArgs64, _ *struct{}) error {
	s.mem.Write64(args.Addr, args.Val)
	return nil
}

func (s *memService) Ping(_ *struct{}, reply *bool) error {
	*reply = true
	return nil
}

// Server serves a register space to remote proxy clients.
type Server struct {
	ln net.Listener
}

func NewServer(port int, mem hwio.MemIO) (*Server, error) {
	if err := rpc.RegisterName("mem", &memService{mem: mem}); err != nil {
		panic("failed to register proxy server: " + err.Error())
	}
	rpc.HandleHTTP()

	ln, err := net.Listen("tcp", ":"+strconv.Itoa(port))
	if err != nil {
		return nil, err
	}

	modProxy.InfoZ("proxy server listening").Int("port", port).End()
	return &Server{ln: ln}, nil
}

// Serve blocks, handling proxy clients until the listener is closed.
func (s *Server) Serve() error {
	return http.Serve(s.ln, nil)
}

func (s *Server) Close() error {
	return s.ln.Close()
}

func (s *Server) Port() int {
	return s.ln.Addr().(*net.TCPAddr).Port
}

// UnusedPort asks the kernel for a free TCP port.
func UnusedPort() int {
	l, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		panic("pickUnusedPort failed: " + err.Error())
	}
	port := l.Addr().(*net.TCPAddr).Port
	if err := l.Close(); err != nil {
		panic("pickUnusedPort failed: " + err.Error())
	}
	return port
}
