package commands

import (
	"context"
	"errors"

	"github.com/go-i2p/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/go-i2p/go-streamtunnel/lib/config"
	"github.com/go-i2p/go-streamtunnel/lib/handshake"
	"github.com/go-i2p/go-streamtunnel/lib/supervisor"
	"github.com/go-i2p/go-streamtunnel/lib/util"
	"github.com/go-i2p/go-streamtunnel/lib/util/signals"
)

var log = logger.GetGoI2PLogger()

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "streamtunnel",
		Short:         "Encrypted point-to-point byte stream tunnel",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.InitConfig()
		},
	}
	root.PersistentFlags().StringVar(&config.CfgFile, "config", "", "config file (default $HOME/.go-streamtunnel/config.yaml)")

	root.AddCommand(listenCmd(), sendCmd(), configCmd())
	return root
}

// bindFlags maps flag names to viper keys so flag > env > file > default.
// Binding happens at run time because several commands share keys.
func bindFlags(flags *pflag.FlagSet, keys map[string]string) error {
	for name, key := range keys {
		if err := viper.BindPFlag(key, flags.Lookup(name)); err != nil {
			return err
		}
	}
	return nil
}

// handshakeOptions turns debug settings into handshake options.
func handshakeOptions(cfg config.TunnelConfig, extra ...handshake.Option) []handshake.Option {
	opts := append([]handshake.Option(nil), extra...)
	if cfg.Debug.LogSessionKey {
		opts = append(opts, handshake.WithKeyLogging(true))
	}
	return opts
}

// runSupervised drives sup until SIGINT/SIGTERM. Interrupt also stops any
// registered subprocess so a blocked read returns.
func runSupervised(parent context.Context, sup *supervisor.Supervisor) error {
	ctx, cancel := signals.WithInterrupt(parent)
	defer cancel()
	closeID := signals.RegisterInterruptHandler(util.CloseAll)
	defer signals.DeregisterInterruptHandler(closeID)
	go signals.Handle()

	err := sup.Run(ctx)
	log.WithFields(logger.Fields{
		"at":       "commands.runSupervised",
		"name":     sup.Name,
		"sessions": sup.Sessions(),
		"failures": sup.Failures(),
	}).Info("shut down")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
