package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-i2p/logger"
	"github.com/samber/oops"
	"github.com/spf13/viper"

	"github.com/go-i2p/go-streamtunnel/lib/util"
)

var (
	CfgFile string
	log     = logger.GetGoI2PLogger()
)

const (
	BaseDirName = ".go-streamtunnel"
	EnvPrefix   = "STREAMTUNNEL"
)

// InitConfig loads defaults, the environment and the config file into viper.
// A missing default config file is created; a missing --config file is an
// error.
func InitConfig() error {
	if CfgFile != "" {
		if !util.CheckFileExists(CfgFile) {
			return oops.Errorf("config file %s not found", CfgFile)
		}
		viper.SetConfigFile(CfgFile)
	} else {
		viper.AddConfigPath(BuildDirPath())
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	setDefaults()

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	return handleConfigFile()
}

func setDefaults() {
	d := Defaults()

	viper.SetDefault("listener.address", d.Listener.Address)
	viper.SetDefault("listener.cipher_strength", d.Listener.CipherStrength)

	viper.SetDefault("originator.server_address", d.Originator.ServerAddress)

	viper.SetDefault("relay.chunk_size", d.Relay.ChunkSize)
	viper.SetDefault("relay.sample_interval", d.Relay.SampleInterval)
	viper.SetDefault("relay.sample_bytes", d.Relay.SampleBytes)

	viper.SetDefault("supervisor.backoff", d.Supervisor.Backoff)

	viper.SetDefault("capture.command", d.Capture.Command)
	viper.SetDefault("capture.args", d.Capture.Args)
	viper.SetDefault("sink.command", d.Sink.Command)
	viper.SetDefault("sink.args", d.Sink.Args)

	viper.SetDefault("clock.ntp_server", d.Clock.NTPServer)
	viper.SetDefault("clock.ntp_timeout", d.Clock.NTPTimeout)

	viper.SetDefault("debug.log_session_key", d.Debug.LogSessionKey)
}

// CurrentConfig returns a snapshot of the effective configuration.
func CurrentConfig() TunnelConfig {
	return TunnelConfig{
		Listener: ListenerConfig{
			Address:        viper.GetString("listener.address"),
			CipherStrength: viper.GetInt("listener.cipher_strength"),
		},
		Originator: OriginatorConfig{
			ServerAddress: viper.GetString("originator.server_address"),
		},
		Relay: RelayConfig{
			ChunkSize:      viper.GetInt("relay.chunk_size"),
			SampleInterval: viper.GetDuration("relay.sample_interval"),
			SampleBytes:    viper.GetInt("relay.sample_bytes"),
		},
		Supervisor: SupervisorConfig{
			Backoff: viper.GetDuration("supervisor.backoff"),
		},
		Capture: CommandConfig{
			Command: viper.GetString("capture.command"),
			Args:    viper.GetStringSlice("capture.args"),
		},
		Sink: CommandConfig{
			Command: viper.GetString("sink.command"),
			Args:    viper.GetStringSlice("sink.args"),
		},
		Clock: ClockConfig{
			NTPServer:  viper.GetString("clock.ntp_server"),
			NTPTimeout: viper.GetDuration("clock.ntp_timeout"),
		},
		Debug: DebugConfig{
			LogSessionKey: viper.GetBool("debug.log_session_key"),
		},
	}
}

func createDefaultConfig(dir string) error {
	file := filepath.Join(dir, "config.yaml")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return oops.Wrapf(err, "create config directory %s", dir)
	}
	if err := viper.SafeWriteConfigAs(file); err != nil {
		return oops.Wrapf(err, "write default config %s", file)
	}
	log.WithField("path", file).Debug("Created default configuration")
	return nil
}

func handleConfigFile() error {
	err := viper.ReadInConfig()
	if err == nil {
		log.WithField("path", viper.ConfigFileUsed()).Debug("Using config file")
		return nil
	}
	var notFound viper.ConfigFileNotFoundError
	switch {
	case CfgFile != "" && (errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)):
		return oops.Wrapf(err, "config file %s not found", CfgFile)
	case errors.As(err, &notFound):
		return createDefaultConfig(BuildDirPath())
	default:
		return oops.Wrapf(err, "read config file")
	}
}

// BuildDirPath returns $HOME/.go-streamtunnel.
func BuildDirPath() string {
	return filepath.Join(util.UserHome(), BaseDirName)
}
