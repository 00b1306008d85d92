package commands

import (
	"github.com/spf13/cobra"

	"github.com/go-i2p/go-streamtunnel/lib/config"
	"github.com/go-i2p/go-streamtunnel/lib/handshake"
	"github.com/go-i2p/go-streamtunnel/lib/session"
	"github.com/go-i2p/go-streamtunnel/lib/supervisor"
	"github.com/go-i2p/go-streamtunnel/lib/util/time/monotonic"
	"github.com/go-i2p/go-streamtunnel/lib/util/time/sntp"
)

// send: run the capture command and stream its encrypted output to a
// listener.
func sendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Capture, encrypt and send a stream",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return bindFlags(cmd.Flags(), map[string]string{
				"server":          "originator.server_address",
				"capture-cmd":     "capture.command",
				"capture-args":    "capture.args",
				"ntp-server":      "clock.ntp_server",
				"backoff":         "supervisor.backoff",
				"log-session-key": "debug.log_session_key",
			})
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.CurrentConfig()
			if err := config.ValidateOriginator(cfg); err != nil {
				return err
			}
			clock := monotonic.NewClock()
			correctClock(clock, &sntp.DefaultNTPClient{}, cfg.Clock)

			sup := supervisor.New("originator", newOriginatorSession(cfg, clock), cfg.Supervisor.Backoff)
			return runSupervised(cmd.Context(), sup)
		},
	}
	d := config.Defaults()
	cmd.Flags().String("server", d.Originator.ServerAddress, "listener address to connect to")
	cmd.Flags().String("capture-cmd", d.Capture.Command, "command whose stdout is streamed")
	cmd.Flags().StringSlice("capture-args", d.Capture.Args, "arguments for --capture-cmd")
	cmd.Flags().String("ntp-server", d.Clock.NTPServer, "comma-separated NTP servers used to correct the nonce timestamp")
	cmd.Flags().Duration("backoff", d.Supervisor.Backoff, "delay between sessions")
	cmd.Flags().Bool("log-session-key", false, "log raw session keys (unsafe)")
	return cmd
}

func newOriginatorSession(cfg config.TunnelConfig, clock *monotonic.Clock) *session.OriginatorSession {
	return &session.OriginatorSession{
		ServerAddr: cfg.Originator.ServerAddress,
		ChunkSize:  cfg.Relay.ChunkSize,
		NewSource:  session.CommandSource(cfg.Capture.Command, cfg.Capture.Args...),
		Options:    handshakeOptions(cfg, handshake.WithClock(clock.Now)),
	}
}

// correctClock applies a one-shot NTP correction. Failure leaves the system
// clock in use.
func correctClock(clock *monotonic.Clock, client sntp.NTPClient, cfg config.ClockConfig) {
	servers := sntp.ParseServers(cfg.NTPServer)
	if len(servers) == 0 {
		return
	}
	if err := sntp.Correct(clock, client, servers, cfg.NTPTimeout); err != nil {
		log.WithError(err).Warn("NTP clock correction failed, using system clock")
	}
}
