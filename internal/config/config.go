// Package config loads naru's configuration file from the XDG config
// directory, following the schema documented in §6 of the specification:
// a [window] section controlling the viewport height, and a [bindings]
// section mapping key spellings to action names.
package config

import (
	"fmt"
	"regexp"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
)

const fileName = "naru.toml"

// DefaultHeight is the window height used when no config file is present
// and no [window] section overrides it.
const DefaultHeight = 20

// WindowConfig controls the selector's viewport height.
type WindowConfig struct {
	// Height, if > 0, is an absolute row count clamped to the terminal
	// height. If <= 0, it is subtracted from the terminal height and
	// clamped to at least 1 row.
	Height int `toml:"height"`
}

// Config is naru's full configuration.
type Config struct {
	Window   WindowConfig      `toml:"window"`
	Bindings map[string]string `toml:"bindings"`
}

// Default returns the configuration used when no config file is found.
func Default() *Config {
	return &Config{
		Window:   WindowConfig{Height: DefaultHeight},
		Bindings: map[string]string{},
	}
}

var bindingKeyRE = regexp.MustCompile(`^c-[a-z]$`)

// Load locates naru.toml via the XDG base-directory convention and parses
// it. An absent file is not an error; Default is returned instead.
func Load() (*Config, error) {
	path, err := xdg.SearchConfigFile(fileName)
	if err != nil {
		// Not found anywhere on XDG_CONFIG_HOME/XDG_CONFIG_DIRS: use defaults.
		return Default(), nil
	}

	cfg := Default()
	cfg.Bindings = map[string]string{}

	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("naru: parsing %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("naru: %s: unknown key %q", path, undecoded[0].String())
	}

	for key := range cfg.Bindings {
		if !bindingKeyRE.MatchString(key) {
			return nil, fmt.Errorf("naru: %s: malformed binding key %q: must be c-<a-z>", path, key)
		}
	}

	return cfg, nil
}

// ControlByte resolves a binding key of the form "c-<letter>" to the
// control byte it denotes (e.g. "c-a" -> 0x01).
func ControlByte(key string) (byte, bool) {
	if !bindingKeyRE.MatchString(key) {
		return 0, false
	}
	return key[2] - 'a' + 1, true
}
