package proxy

import (
	"fmt"
	"net/rpc"
	"time"
)

// Client reaches a remote register space through the debug proxy. It
// implements hwio.MemIO; every access is synchronous and a broken proxy
// link mid-session is fatal.
type Client struct {
	client *rpc.Client
}

func NewClient(addr string) (*Client, error) {
	var (
		client *rpc.Client
		err    error
	)
	const maxretries = 5
	for i := 0; i < maxretries; i++ {
		if client, err = rpc.DialHTTP("tcp", addr); err == nil {
			break
		}
		client = nil
		modProxy.WarnZ("dial tcp failed").Error("err", err).Int("retry", i).End()
		time.Sleep(250 * time.Millisecond)
	}
	if client == nil {
		return nil, fmt.Errorf("dial failed max retries: %v", err)
	}

	c := &Client{client: client}
	if !request[bool](c.client, "mem.Ping", nil) {
		return nil, fmt.Errorf("proxy at %s not ready", addr)
	}
	return c, nil
}

func (c *Client) Close() error {
	modProxy.DebugZ("closing proxy client").End()
	return c.client.Close()
}

func (c *Client) Read32(addr uint64) uint32 {
	return request[uint32](c.client, "mem.Read32", addr)
}

func (c *Client) Read64(addr uint64) uint64 {
	return request[uint64](c.client, "mem.Read64", addr)
}

func (c *Client) Write32(addr uint64, val uint32) {
	call(c.client, "mem.Write32", WriteArgs32{Addr: addr, Val: val})
}

func (c *Client) Write64(addr uint64, val uint64) {
	call(c.client, "mem.Write64", WriteArgs64{Addr: addr, Val: val})
}

func call(client *rpc.Client, funcname string, args any) {
	request[struct{}](client, funcname, args)
}

func request[T any](client *rpc.Client, funcname string, args any) T {
	if args == nil {
		args = &struct{}{}
	}
	var reply T
	if err := client.Call(funcname, args, &reply); err != nil {
		modProxy.FatalZ("proxy call failed").String("func", funcname).Error("err", err).End()
	}
	return reply
}
