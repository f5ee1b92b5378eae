package profile_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/n6dev/airwave/internal/pin"
	"github.com/n6dev/airwave/internal/profile"
)

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte("local_address: 7\ncodec: identity\ncompression: identity\nresend: 3\n"), 0o600))

	cfg, err := profile.Load(path)
	require.NoError(t, err)
	require.Equal(t, uint8(7), cfg.LocalAddress)
	require.Equal(t, "identity", cfg.Codec)
	require.Equal(t, 3, cfg.Resend)
	// Fields not named in the file keep DefaultConfig's values.
	require.Equal(t, profile.DefaultConfig().DestinationAddress, cfg.DestinationAddress)
}

func TestLoadRejectsMissingFile(t *testing.T) {
	_, err := profile.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func newLoopback(t *testing.T) *pin.Loopback {
	t.Helper()
	l, err := pin.NewLoopback()
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func TestBuildSenderRejectsUnknownLineCode(t *testing.T) {
	cfg := profile.DefaultConfig()
	cfg.LineCode = "laser"
	_, err := profile.BuildSender(cfg, newLoopback(t))
	require.Error(t, err)
}

func TestBuildSenderRejectsUnknownCodec(t *testing.T) {
	cfg := profile.DefaultConfig()
	cfg.Codec = "turbo"
	_, err := profile.BuildSender(cfg, newLoopback(t))
	require.Error(t, err)
}

func TestBuildReceiverRejectsUnknownCompression(t *testing.T) {
	cfg := profile.DefaultConfig()
	cfg.Compression = "flate"
	_, err := profile.BuildReceiver(cfg, newLoopback(t))
	require.Error(t, err)
}

func TestRoundTripOverLoopbackPWM(t *testing.T) {
	line := newLoopback(t)

	senderCfg := profile.DefaultConfig()
	senderCfg.Codec = "identity"
	receiverCfg := senderCfg
	receiverCfg.LocalAddress, receiverCfg.DestinationAddress = senderCfg.DestinationAddress, senderCfg.LocalAddress

	sender, err := profile.BuildSender(senderCfg, line)
	require.NoError(t, err)
	receiver, err := profile.BuildReceiver(receiverCfg, line)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	payload := []byte{0xde, 0xad, 0xbe, 0xef}

	errc := make(chan error, 1)
	go func() {
		_, err := sender.SendBytes(ctx, payload)
		errc <- err
	}()

	out := make([]byte, len(payload))
	n, err := receiver.ReceiveBytes(ctx, out)
	require.NoError(t, err)
	require.NoError(t, <-errc)
	require.Equal(t, payload, out[:n])
}

func TestBuildSenderSelectsManchesterLineCode(t *testing.T) {
	// Manchester has no sync-marker preamble, so (unlike pwm) it has no
	// byte-alignment guarantee over a fresh pin - this only checks that
	// the line code selection wires a manchester.Writer without error,
	// not an end-to-end transmission.
	cfg := profile.DefaultConfig()
	cfg.LineCode = "manchester"
	cfg.ManchesterPeriod = 2 * time.Millisecond
	_, err := profile.BuildSender(cfg, newLoopback(t))
	require.NoError(t, err)
}
