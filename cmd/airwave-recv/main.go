//go:build linux

// Command airwave-recv listens on a single GPIO line and prints each
// reassembled payload to stdout, one per line, until interrupted.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/pflag"

	"github.com/n6dev/airwave/internal/pin"
	"github.com/n6dev/airwave/internal/profile"
	"github.com/n6dev/airwave/internal/xlog"
)

const maxPayloadSize = 4096

func main() {
	var profilePath = pflag.StringP("profile", "p", "", "YAML profile file overriding the defaults.")
	var chipName = pflag.StringP("chip", "c", "gpiochip0", "gpiochip name or udev alias to receive on.")
	var lineOffset = pflag.IntP("line", "l", 0, "GPIO line offset to receive on.")
	var help = pflag.BoolP("help", "h", false, "Display help text.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s - receive payloads from a GPIO line.\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nUsage: %s [options]\n\n", os.Args[0])
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if *help {
		pflag.Usage()
		return
	}

	log := xlog.New("airwave-recv")

	cfg := profile.DefaultConfig()
	if *profilePath != "" {
		loaded, err := profile.Load(*profilePath)
		if err != nil {
			log.Fatal("load profile", "err", err)
		}
		cfg = loaded
	}
	xlog.SetLevel(log, cfg.LogLevel)

	chipPath, err := pin.ResolveChipPath(*chipName)
	if err != nil {
		log.Fatal("resolve chip", "chip", *chipName, "err", err)
	}

	line, err := pin.NewGPIOInput(chipPath, *lineOffset)
	if err != nil {
		log.Fatal("request input line", "chip", chipPath, "line", *lineOffset, "err", err)
	}
	defer line.Close()

	receiver, err := profile.BuildReceiver(cfg, line)
	if err != nil {
		log.Fatal("build receiver", "err", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	buf := make([]byte, maxPayloadSize)
	for {
		n, err := receiver.ReceiveBytes(ctx, buf)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error("receive", "err", err)
			continue
		}
		os.Stdout.Write(buf[:n])
		os.Stdout.Write([]byte{'\n'})
	}
}
