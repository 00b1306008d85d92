package commands

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/beevik/ntp"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/go-i2p/go-streamtunnel/lib/config"
	"github.com/go-i2p/go-streamtunnel/lib/crypto/aes"
	"github.com/go-i2p/go-streamtunnel/lib/util/time/monotonic"
)

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	viper.Reset()
	config.CfgFile = ""
	t.Setenv("HOME", t.TempDir())
	t.Cleanup(func() {
		viper.Reset()
		config.CfgFile = ""
	})

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestConfigShowPrintsDefaults(t *testing.T) {
	out, err := runRoot(t, "config", "show")
	require.NoError(t, err)

	var got config.TunnelConfig
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	assert.Equal(t, config.Defaults(), got)
	assert.Contains(t, out, "cipher_strength: 128")
	assert.Contains(t, out, "backoff: 1s")
}

func TestConfigShowReflectsEnvironment(t *testing.T) {
	t.Setenv("STREAMTUNNEL_ORIGINATOR_SERVER_ADDRESS", "192.168.1.3:5000")
	out, err := runRoot(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "server_address: 192.168.1.3:5000")
}

func TestListenRejectsInvalidStrength(t *testing.T) {
	_, err := runRoot(t, "listen", "--strength", "64")
	require.Error(t, err)

	var ce *config.ConfigurationError
	require.True(t, errors.As(err, &ce), "got %v", err)
	assert.Equal(t, "listener.cipher_strength", ce.Key)
}

func TestFlagOverridesEnvironment(t *testing.T) {
	t.Setenv("STREAMTUNNEL_LISTENER_CIPHER_STRENGTH", "256")
	_, err := runRoot(t, "listen", "--strength", "100")
	var ce *config.ConfigurationError
	require.True(t, errors.As(err, &ce), "got %v", err)
	assert.Equal(t, "listener.cipher_strength", ce.Key)
}

func TestEnvironmentStrengthValidated(t *testing.T) {
	t.Setenv("STREAMTUNNEL_LISTENER_CIPHER_STRENGTH", "64")
	_, err := runRoot(t, "listen")
	var ce *config.ConfigurationError
	require.True(t, errors.As(err, &ce), "got %v", err)
}

func TestSendRequiresCaptureCommand(t *testing.T) {
	_, err := runRoot(t, "send", "--capture-cmd", "")
	var ce *config.ConfigurationError
	require.True(t, errors.As(err, &ce), "got %v", err)
	assert.Equal(t, "capture.command", ce.Key)
}

func TestUnknownArgumentsRejected(t *testing.T) {
	_, err := runRoot(t, "listen", "extra")
	assert.Error(t, err)
}

func TestNewListenerSession(t *testing.T) {
	cfg := config.Defaults()
	cfg.Listener.CipherStrength = 256
	cfg.Sink.Command = "ffplay"
	cfg.Debug.LogSessionKey = true

	ls, err := newListenerSession(cfg)
	require.NoError(t, err)
	assert.Equal(t, aes.Strength256, ls.Strength)
	assert.Equal(t, cfg.Listener.Address, ls.Addr)
	assert.Equal(t, 4096, ls.ChunkSize)
	assert.NotNil(t, ls.NewSink)
	assert.NotNil(t, ls.Sampler)
	assert.Len(t, ls.Options, 1)

	cfg.Listener.CipherStrength = 64
	_, err = newListenerSession(cfg)
	assert.Error(t, err)
}

func TestNewOriginatorSession(t *testing.T) {
	cfg := config.Defaults()
	orig := newOriginatorSession(cfg, monotonic.NewClock())
	assert.Equal(t, "127.0.0.1:5000", orig.ServerAddr)
	assert.NotNil(t, orig.NewSource)
	assert.Len(t, orig.Options, 1, "clock option only")
}

type fixedNTP struct {
	offset time.Duration
	calls  int
}

func (f *fixedNTP) QueryWithOptions(string, ntp.QueryOptions) (*ntp.Response, error) {
	f.calls++
	return &ntp.Response{
		Leap:        ntp.LeapNoWarning,
		Stratum:     1,
		RTT:         10 * time.Millisecond,
		ClockOffset: f.offset,
		Time:        time.Now(),
	}, nil
}

func TestCorrectClock(t *testing.T) {
	clock := monotonic.NewClock()
	client := &fixedNTP{offset: 3 * time.Hour}

	correctClock(clock, client, config.ClockConfig{})
	assert.Zero(t, client.calls, "no server configured")

	correctClock(clock, client, config.ClockConfig{NTPServer: "a, b", NTPTimeout: time.Second})
	assert.Equal(t, 2, client.calls)
	assert.Equal(t, 3*time.Hour, clock.Offset())
}
