package main

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"mbxctl/log"
	"mbxctl/mbx"
	"mbxctl/proxy"
	"mbxctl/sim"
	"mbxctl/trace"
)

func cmdBoot(cfg Config) error {
	client, err := proxy.NewClient(cfg.Proxy.Addr)
	if err != nil {
		return err
	}
	defer client.Close()

	mb := mbx.New(client, cfg.Mailbox.Base, mbx.Config{})
	mb.Boot()
	return nil
}

func cmdSend(cfg Config, args Send) error {
	client, err := proxy.NewClient(cfg.Proxy.Addr)
	if err != nil {
		return err
	}
	defer client.Close()

	mb := mbx.New(client, cfg.Mailbox.Base, mbx.Config{
		SendTimeout: sendTimeout(cfg),
		Sink:        trace.NewWriter(os.Stdout),
	})

	header := mbx.HdrEP.Insert(args.Header, uint64(args.EP))
	return mb.Send(args.Data, header)
}

func cmdPump(cfg Config, args Pump) error {
	client, err := proxy.NewClient(cfg.Proxy.Addr)
	if err != nil {
		return err
	}
	defer client.Close()

	var sinks []mbx.Sink
	if args.Trace != nil {
		defer args.Trace.Close()
		sinks = append(sinks, trace.NewWriter(args.Trace))
	}

	g := new(errgroup.Group)
	if cfg.Trace.Listen != "" {
		ts := trace.NewServer()
		g.Go(func() error { return ts.ListenAndServe(cfg.Trace.Listen) })
		sinks = append(sinks, ts)
	}

	var sink mbx.Sink
	if len(sinks) > 0 {
		sink = trace.Multi(sinks...)
	}

	mb := mbx.New(client, cfg.Mailbox.Base, mbx.Config{
		SendTimeout: sendTimeout(cfg),
		Sink:        sink,
	})
	log.AddContext(mb)

	for _, id := range args.EPs {
		mb.AddEP(id, mbx.LoggerEndpoint{Name: fmt.Sprintf("ep%02x", id)})
	}

	if args.Boot {
		mb.Boot()
	}

	interval := time.Duration(args.Interval) * time.Millisecond
	g.Go(func() error {
		for {
			mb.Pump()
			time.Sleep(interval)
		}
	})
	return g.Wait()
}

func cmdPeek(cfg Config, args Peek) error {
	client, err := proxy.NewClient(cfg.Proxy.Addr)
	if err != nil {
		return err
	}
	defer client.Close()

	addr := cfg.Mailbox.Base + args.Offset
	switch args.Width {
	case 32:
		fmt.Printf("%#010x: %#08x\n", addr, client.Read32(addr))
	case 64:
		fmt.Printf("%#010x: %#016x\n", addr, client.Read64(addr))
	default:
		return fmt.Errorf("invalid access width %d", args.Width)
	}
	return nil
}

func cmdPoke(cfg Config, args Poke) error {
	client, err := proxy.NewClient(cfg.Proxy.Addr)
	if err != nil {
		return err
	}
	defer client.Close()

	addr := cfg.Mailbox.Base + args.Offset
	switch args.Width {
	case 32:
		client.Write32(addr, uint32(args.Value))
	case 64:
		client.Write64(addr, args.Value)
	default:
		return fmt.Errorf("invalid access width %d", args.Width)
	}
	return nil
}

// heartbeatEP is the endpoint the simulated firmware posts its periodic
// beacon to.
const heartbeatEP = 0x01

func cmdServe(cfg Config, args Serve) error {
	coproc := sim.New(cfg.Mailbox.Base)
	coproc.OnMessage = func(data, header uint64) {
		// Echo firmware: bounce every frame back to its sender.
		if !coproc.Push(data, header) {
			log.ModSim.WarnZ("outbox full, echo dropped").
				Hex64("data", data).
				End()
		}
	}

	srv, err := proxy.NewServer(args.Port, coproc)
	if err != nil {
		return err
	}

	g := new(errgroup.Group)
	g.Go(srv.Serve)
	g.Go(func() error {
		for range time.Tick(5 * time.Second) {
			coproc.Push(uint64(time.Now().Unix()), mbx.Header(heartbeatEP))
		}
		return nil
	})
	return g.Wait()
}

func sendTimeout(cfg Config) time.Duration {
	return time.Duration(cfg.Mailbox.SendTimeoutMS) * time.Millisecond
}
