// Command airwave-loopback sends one payload to itself over an
// in-process loopback pin, with no GPIO hardware involved - a quick way
// to exercise the whole sender/receiver stack from the command line.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/n6dev/airwave/internal/pin"
	"github.com/n6dev/airwave/internal/profile"
	"github.com/n6dev/airwave/internal/xlog"
)

func main() {
	var profilePath = pflag.StringP("profile", "p", "", "YAML profile file overriding the defaults.")
	var timeout = pflag.DurationP("timeout", "t", 10*time.Second, "Maximum time to spend on the round trip.")
	var help = pflag.BoolP("help", "h", false, "Display help text.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s - send a payload to yourself over a loopback pin.\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nUsage: %s [options] [payload]\n\n", os.Args[0])
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nIf no payload argument is given, the payload is read from stdin.\n")
	}
	pflag.Parse()

	if *help {
		pflag.Usage()
		return
	}

	log := xlog.New("airwave-loopback")

	senderCfg := profile.DefaultConfig()
	if *profilePath != "" {
		loaded, err := profile.Load(*profilePath)
		if err != nil {
			log.Fatal("load profile", "err", err)
		}
		senderCfg = loaded
	}
	xlog.SetLevel(log, senderCfg.LogLevel)

	receiverCfg := senderCfg
	receiverCfg.LocalAddress, receiverCfg.DestinationAddress = senderCfg.DestinationAddress, senderCfg.LocalAddress

	payload, err := readPayload(pflag.Args())
	if err != nil {
		log.Fatal("read payload", "err", err)
	}

	line, err := pin.NewLoopback()
	if err != nil {
		log.Fatal("open loopback pin", "err", err)
	}
	defer line.Close()

	sender, err := profile.BuildSender(senderCfg, line)
	if err != nil {
		log.Fatal("build sender", "err", err)
	}
	receiver, err := profile.BuildReceiver(receiverCfg, line)
	if err != nil {
		log.Fatal("build receiver", "err", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	errc := make(chan error, 1)
	go func() {
		_, err := sender.SendBytes(ctx, payload)
		errc <- err
	}()

	out := make([]byte, len(payload))
	n, err := receiver.ReceiveBytes(ctx, out)
	if err != nil {
		log.Fatal("receive", "err", err)
	}
	if err := <-errc; err != nil {
		log.Fatal("send", "err", err)
	}

	log.Info("round trip complete", "bytes", n)
	os.Stdout.Write(out[:n])
	os.Stdout.Write([]byte{'\n'})
}

func readPayload(args []string) ([]byte, error) {
	if len(args) > 0 {
		return []byte(args[0]), nil
	}
	return io.ReadAll(os.Stdin)
}
