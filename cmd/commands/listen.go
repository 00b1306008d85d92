package commands

import (
	"github.com/spf13/cobra"

	"github.com/go-i2p/go-streamtunnel/lib/config"
	"github.com/go-i2p/go-streamtunnel/lib/relay"
	"github.com/go-i2p/go-streamtunnel/lib/session"
	"github.com/go-i2p/go-streamtunnel/lib/supervisor"
)

// listen: accept one originator at a time and write its decrypted stream to
// stdout or a player.
func listenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Receive and decrypt a stream",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return bindFlags(cmd.Flags(), map[string]string{
				"addr":            "listener.address",
				"strength":        "listener.cipher_strength",
				"sink-cmd":        "sink.command",
				"sink-args":       "sink.args",
				"backoff":         "supervisor.backoff",
				"log-session-key": "debug.log_session_key",
			})
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.CurrentConfig()
			if err := config.ValidateListener(cfg); err != nil {
				return err
			}
			ls, err := newListenerSession(cfg)
			if err != nil {
				return err
			}
			sup := supervisor.New("listener", ls, cfg.Supervisor.Backoff)
			return runSupervised(cmd.Context(), sup)
		},
	}
	d := config.Defaults()
	cmd.Flags().String("addr", d.Listener.Address, "address to listen on")
	cmd.Flags().Int("strength", d.Listener.CipherStrength, "AES key size to advertise: 128, 192 or 256")
	cmd.Flags().String("sink-cmd", d.Sink.Command, "player to feed plaintext to (default stdout)")
	cmd.Flags().StringSlice("sink-args", d.Sink.Args, "arguments for --sink-cmd")
	cmd.Flags().Duration("backoff", d.Supervisor.Backoff, "delay between sessions")
	cmd.Flags().Bool("log-session-key", false, "log raw session keys (unsafe)")
	return cmd
}

func newListenerSession(cfg config.TunnelConfig) (*session.ListenerSession, error) {
	strength, err := cfg.Listener.Strength()
	if err != nil {
		return nil, err
	}
	var sink session.SinkFactory = session.StdoutSink
	if cfg.Sink.Command != "" {
		sink = session.CommandSink(cfg.Sink.Command, cfg.Sink.Args...)
	}
	return &session.ListenerSession{
		Addr:      cfg.Listener.Address,
		Strength:  strength,
		ChunkSize: cfg.Relay.ChunkSize,
		NewSink:   sink,
		Sampler:   relay.NewSampler(cfg.Relay.SampleInterval, cfg.Relay.SampleBytes),
		Options:   handshakeOptions(cfg),
	}, nil
}
