package main

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/kirsle/configdir"

	"mbxctl/log"
)

type Config struct {
	Proxy   ProxyConfig   `toml:"proxy"`
	Mailbox MailboxConfig `toml:"mailbox"`
	Trace   TraceConfig   `toml:"trace"`
}

type ProxyConfig struct {
	Addr string `toml:"addr"`
}

type MailboxConfig struct {
	Base uint64 `toml:"base"`

	// SendTimeoutMS bounds the busy-wait on a full inbox. Zero means wait
	// forever, the right default against live hardware.
	SendTimeoutMS int `toml:"send_timeout_ms"`
}

type TraceConfig struct {
	// Listen, when set, serves frame trace events over websocket at this
	// address during pump sessions.
	Listen string `toml:"listen"`
}

var ConfigDir string = sync.OnceValue(func() string {
	dir := configdir.LocalConfig("mbxctl")
	if err := configdir.MakePath(dir); err != nil {
		log.ModHost.Fatalf("failed to create directory %s: %v", dir, err)
	}
	return dir
})()

const cfgFilename = "config.toml"

func defaultConfig() Config {
	return Config{
		Proxy: ProxyConfig{Addr: "localhost:9282"},
	}
}

// LoadConfigOrDefault loads the configuration from the mbxctl config
// directory, or provides a default one.
func LoadConfigOrDefault() Config {
	cfg := defaultConfig()
	_, err := toml.DecodeFile(filepath.Join(ConfigDir, cfgFilename), &cfg)
	if err != nil && !os.IsNotExist(err) {
		log.ModHost.Warnf("failed to read config: %v", err)
	}
	return cfg
}

// SaveConfig into the mbxctl config directory.
func SaveConfig(cfg Config) error {
	buf, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(ConfigDir, cfgFilename), buf, 0o644)
}
