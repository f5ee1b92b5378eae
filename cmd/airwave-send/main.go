//go:build linux

// Command airwave-send transmits one payload (from an argument or
// stdin) over a single GPIO line using the profile-selected codec,
// compression, and line code.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/pflag"

	"github.com/n6dev/airwave/internal/pin"
	"github.com/n6dev/airwave/internal/profile"
	"github.com/n6dev/airwave/internal/xlog"
)

func main() {
	var profilePath = pflag.StringP("profile", "p", "", "YAML profile file overriding the defaults.")
	var chipName = pflag.StringP("chip", "c", "gpiochip0", "gpiochip name or udev alias to transmit on.")
	var lineOffset = pflag.IntP("line", "l", 0, "GPIO line offset to transmit on.")
	var timeout = pflag.DurationP("timeout", "t", 30*time.Second, "Maximum time to spend transmitting one payload.")
	var help = pflag.BoolP("help", "h", false, "Display help text.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s - transmit a payload over a GPIO line.\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nUsage: %s [options] [payload]\n\n", os.Args[0])
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nIf no payload argument is given, the payload is read from stdin.\n")
	}
	pflag.Parse()

	if *help {
		pflag.Usage()
		return
	}

	log := xlog.New("airwave-send")

	cfg := profile.DefaultConfig()
	if *profilePath != "" {
		loaded, err := profile.Load(*profilePath)
		if err != nil {
			log.Fatal("load profile", "err", err)
		}
		cfg = loaded
	}
	xlog.SetLevel(log, cfg.LogLevel)

	payload, err := readPayload(pflag.Args())
	if err != nil {
		log.Fatal("read payload", "err", err)
	}

	chipPath, err := pin.ResolveChipPath(*chipName)
	if err != nil {
		log.Fatal("resolve chip", "chip", *chipName, "err", err)
	}

	line, err := pin.NewGPIOOutput(chipPath, *lineOffset)
	if err != nil {
		log.Fatal("request output line", "chip", chipPath, "line", *lineOffset, "err", err)
	}
	defer line.Close()

	sender, err := profile.BuildSender(cfg, line)
	if err != nil {
		log.Fatal("build sender", "err", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, *timeout)
	defer cancelTimeout()

	n, err := sender.SendBytes(ctx, payload)
	if err != nil {
		log.Fatal("send", "err", err)
	}
	log.Info("sent", "payload_bytes", len(payload), "wire_bytes", n)
}

func readPayload(args []string) ([]byte, error) {
	if len(args) > 0 {
		return []byte(args[0]), nil
	}
	return io.ReadAll(os.Stdin)
}
