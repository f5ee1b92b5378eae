// Package profile assembles a codec chain and a physical-layer stack
// from a small YAML-plus-flag configuration surface, mirroring the
// original's create_transport_sender/create_transport_receiver factory
// functions (original_source/src/transport.rs) as build-once,
// runtime-selectable wiring instead of Rust's compile-time type
// aliases.
package profile

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/n6dev/airwave/internal/codec"
	"github.com/n6dev/airwave/internal/packet"
	"github.com/n6dev/airwave/internal/physical"
	"github.com/n6dev/airwave/internal/physical/manchester"
	"github.com/n6dev/airwave/internal/physical/pwm"
	"github.com/n6dev/airwave/internal/physical/syncmarker"
	"github.com/n6dev/airwave/internal/pin"
	"github.com/n6dev/airwave/internal/transport"
)

// Config is the demo's runtime-configurable surface: spec.md §6 names
// it build-time ("Packet width... Codec... Compression... Line
// code... resend count... Node addresses"); here every field is
// runtime-settable since there is no Go analogue of Rust's const
// generics/feature flags, but a real deployment still picks one value
// per field and never varies it at runtime.
type Config struct {
	LocalAddress       uint8         `yaml:"local_address"`
	DestinationAddress uint8         `yaml:"destination_address"`

	LineCode string `yaml:"line_code"` // "pwm" or "manchester"

	Codec          string `yaml:"codec"`           // "identity", "reed-solomon", "four-to-six", "chain"
	ReedSolomonECC int    `yaml:"reed_solomon_ecc"` // even, e.g. 4

	Compression string `yaml:"compression"` // "identity" or "lzss"

	Resend int `yaml:"resend"`

	ManchesterPeriod time.Duration `yaml:"manchester_period"`

	LogLevel string `yaml:"log_level"`
}

// DefaultConfig reproduces the original's defaults: ReedSolomon<4,4>
// codec, Identity compression, resend once (original_source/src/transport.rs's
// CodecType/CompressionType/SimpleSender resend), PWM line code.
func DefaultConfig() Config {
	return Config{
		LocalAddress:       0x0f,
		DestinationAddress: 0x01,
		LineCode:           "pwm",
		Codec:              "reed-solomon",
		ReedSolomonECC:     4,
		Compression:        "identity",
		Resend:             1,
		ManchesterPeriod:   4 * time.Millisecond,
		LogLevel:           "info",
	}
}

// Load reads a YAML config file over DefaultConfig, so a file only
// needs to name the fields it overrides.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("profile: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("profile: parse %s: %w", path, err)
	}
	return cfg, nil
}

// BindFlags registers pflag overrides for every Config field, in the
// teacher's own StringP/IntP/BoolP style (cmd/direwolf/main.go).
func BindFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.Uint8VarP(&cfg.LocalAddress, "local-address", "l", cfg.LocalAddress, "This node's address.")
	fs.Uint8VarP(&cfg.DestinationAddress, "destination-address", "d", cfg.DestinationAddress, "Destination node's address.")
	fs.StringVarP(&cfg.LineCode, "line-code", "c", cfg.LineCode, "Line code: pwm or manchester.")
	fs.StringVarP(&cfg.Codec, "codec", "e", cfg.Codec, "FEC codec: identity, reed-solomon, four-to-six, or chain.")
	fs.IntVarP(&cfg.ReedSolomonECC, "reed-solomon-ecc", "r", cfg.ReedSolomonECC, "Reed-Solomon parity byte count (even).")
	fs.StringVarP(&cfg.Compression, "compression", "z", cfg.Compression, "Compression: identity or lzss.")
	fs.IntVarP(&cfg.Resend, "resend", "n", cfg.Resend, "Number of times to resend each packet.")
	fs.DurationVar(&cfg.ManchesterPeriod, "manchester-period", cfg.ManchesterPeriod, "Manchester data-bit period (ignored for pwm).")
	fs.StringVarP(&cfg.LogLevel, "log-level", "v", cfg.LogLevel, "Log level: debug, info, warn, or error.")
}

func (c Config) address() packet.Address {
	return packet.Address{Local: c.LocalAddress, Destination: c.DestinationAddress}
}

func (c Config) buildCodec() (codec.Codec, error) {
	switch c.Codec {
	case "", "identity":
		return codec.Identity{}, nil
	case "reed-solomon":
		return codec.NewReedSolomon(c.ReedSolomonECC), nil
	case "four-to-six":
		return codec.FourToSix{}, nil
	case "chain":
		return codec.NewChain(codec.NewReedSolomon(c.ReedSolomonECC), codec.FourToSix{}), nil
	default:
		return nil, fmt.Errorf("profile: unknown codec %q", c.Codec)
	}
}

func (c Config) buildCompression() (codec.Codec, error) {
	switch c.Compression {
	case "", "identity":
		return codec.Identity{}, nil
	case "lzss":
		return codec.LZSS{}, nil
	default:
		return nil, fmt.Errorf("profile: unknown compression %q", c.Compression)
	}
}

// BuildSenderWriter assembles a physical writer over p, per cfg.LineCode:
// a PWM writer wrapped in a sync-marker preamble, or a bare Manchester
// writer with no preamble.
func (c Config) BuildSenderWriter(p pin.Pin) (physical.Writer, error) {
	switch c.LineCode {
	case "", "pwm":
		w := pwm.NewWriter(pwm.DefaultWriterTiming(), p, false)
		return syncmarker.NewWriter(syncmarker.DefaultSequence(), w), nil
	case "manchester":
		return manchester.NewWriter(manchester.NewTiming(c.ManchesterPeriod), p), nil
	default:
		return nil, fmt.Errorf("profile: unknown line code %q", c.LineCode)
	}
}

// BuildReceiverReader is BuildSenderWriter's read-side counterpart.
func (c Config) BuildReceiverReader(p pin.Pin) (physical.Reader, error) {
	switch c.LineCode {
	case "", "pwm":
		r := pwm.NewReader(pwm.DefaultReaderTiming(), p, false)
		return syncmarker.NewReader(syncmarker.DefaultSequence(), r), nil
	case "manchester":
		return manchester.NewReader(manchester.NewTiming(c.ManchesterPeriod), p), nil
	default:
		return nil, fmt.Errorf("profile: unknown line code %q", c.LineCode)
	}
}

// BuildSender assembles a full transport.Sender[packet.Packet32] from
// cfg, writing to p.
func BuildSender(cfg Config, p pin.Pin) (*transport.Sender[packet.Packet32], error) {
	writer, err := cfg.BuildSenderWriter(p)
	if err != nil {
		return nil, err
	}
	c, err := cfg.buildCodec()
	if err != nil {
		return nil, err
	}
	compression, err := cfg.buildCompression()
	if err != nil {
		return nil, err
	}
	return transport.NewSender(transport.Width32(), cfg.address(), cfg.Resend, c, compression, writer), nil
}

// BuildReceiver assembles a full transport.Receiver[packet.Packet32]
// from cfg, reading from p.
func BuildReceiver(cfg Config, p pin.Pin) (*transport.Receiver[packet.Packet32], error) {
	reader, err := cfg.BuildReceiverReader(p)
	if err != nil {
		return nil, err
	}
	c, err := cfg.buildCodec()
	if err != nil {
		return nil, err
	}
	compression, err := cfg.buildCompression()
	if err != nil {
		return nil, err
	}
	return transport.NewReceiver(transport.Width32(), cfg.address(), c, compression, reader), nil
}
