package main

import (
	"fmt"
	"os"
)

func main() {
	cli := parseArgs(os.Args[1:])

	cfg := LoadConfigOrDefault()
	if cli.Proxy != "" {
		cfg.Proxy.Addr = cli.Proxy
	}
	if cli.Base != 0 {
		cfg.Mailbox.Base = cli.Base
	}

	switch cli.mode {
	case bootMode:
		checkf(cmdBoot(cfg), "boot failed")
	case sendMode:
		checkf(cmdSend(cfg, cli.Send), "send failed")
	case pumpMode:
		checkf(cmdPump(cfg, cli.Pump), "pump failed")
	case peekMode:
		checkf(cmdPeek(cfg, cli.Peek), "peek failed")
	case pokeMode:
		checkf(cmdPoke(cfg, cli.Poke), "poke failed")
	case serveMode:
		checkf(cmdServe(cfg, cli.Serve), "serve failed")
	case versionMode:
		fmt.Println("mbxctl", version)
	}
}

func checkf(err error, format string, args ...any) {
	if err == nil {
		return
	}

	fmt.Fprintf(os.Stderr, "fatal error:")
	fmt.Fprintf(os.Stderr, "\n\t%s: %s\n", fmt.Sprintf(format, args...), err)
	os.Exit(1)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "fatal error:")
	fmt.Fprintf(os.Stderr, "\n\t%s\n", fmt.Sprintf(format, args...))
	os.Exit(1)
}
