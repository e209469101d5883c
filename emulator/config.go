package emulator

import (
	"io"

	"gopkg.in/yaml.v3"
)

// Config holds the emulator settings that may be read from a YAML file.
//
//	strict: true      # unknown opcodes are fatal
//	verbose: false    # trace every tick
//	tick_limit: 10000 # stop runaway programs, 0 is unlimited
type Config struct {
	Strict    bool `yaml:"strict"`
	Verbose   bool `yaml:"verbose"`
	TickLimit int  `yaml:"tick_limit"`
}

// DefaultConfig is permissive, quiet and unlimited.
var DefaultConfig = Config{}

// ReadConfig parses a YAML configuration, starting from DefaultConfig.
// An empty document yields DefaultConfig.
func ReadConfig(input io.Reader) (config Config, err error) {
	config = DefaultConfig

	dec := yaml.NewDecoder(input)
	dec.KnownFields(true)

	err = dec.Decode(&config)
	if err == io.EOF {
		err = nil
	}

	return
}
