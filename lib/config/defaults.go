package config

import (
	"net"
	"time"

	"github.com/go-i2p/logger"
	"github.com/samber/oops"

	"github.com/go-i2p/go-streamtunnel/lib/crypto/aes"
)

// TunnelConfig is the complete configuration for both roles.
type TunnelConfig struct {
	Listener   ListenerConfig   `yaml:"listener"`
	Originator OriginatorConfig `yaml:"originator"`
	Relay      RelayConfig      `yaml:"relay"`
	Supervisor SupervisorConfig `yaml:"supervisor"`
	Capture    CommandConfig    `yaml:"capture"`
	Sink       CommandConfig    `yaml:"sink"`
	Clock      ClockConfig      `yaml:"clock"`
	Debug      DebugConfig      `yaml:"debug"`
}

// ListenerConfig configures the receiving side.
type ListenerConfig struct {
	// Address to bind for each Session.
	// Default: 0.0.0.0:5000
	Address string `yaml:"address"`

	// CipherStrength is advertised in the first handshake line.
	// Valid values: 128, 192, 256. Default: 128
	CipherStrength int `yaml:"cipher_strength"`
}

// Strength converts CipherStrength to the cipher's tagged value.
func (l ListenerConfig) Strength() (aes.Strength, error) {
	return aes.StrengthFromBits(l.CipherStrength)
}

// OriginatorConfig configures the sending side.
type OriginatorConfig struct {
	// ServerAddress is the listener to dial.
	// Default: 127.0.0.1:5000
	ServerAddress string `yaml:"server_address"`
}

// RelayConfig configures the chunked relay.
type RelayConfig struct {
	// ChunkSize bounds each source read.
	// Default: 4096 bytes
	ChunkSize int `yaml:"chunk_size"`

	// SampleInterval is the minimum gap between ciphertext samples on the
	// listener. Zero samples every chunk.
	// Default: 1 second
	SampleInterval time.Duration `yaml:"sample_interval"`

	// SampleBytes is how many leading ciphertext bytes are logged. Zero
	// disables sampling.
	// Default: 32
	SampleBytes int `yaml:"sample_bytes"`
}

// SupervisorConfig configures the retry loop.
type SupervisorConfig struct {
	// Backoff is the fixed delay between Sessions.
	// Default: 1 second
	Backoff time.Duration `yaml:"backoff"`
}

// CommandConfig names an external program.
type CommandConfig struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
}

// ClockConfig configures nonce timestamp correction.
type ClockConfig struct {
	// NTPServer is queried once at startup. Empty disables the query.
	NTPServer string `yaml:"ntp_server"`

	// NTPTimeout bounds the query.
	// Default: 5 seconds
	NTPTimeout time.Duration `yaml:"ntp_timeout"`
}

// DebugConfig holds unsafe diagnostics.
type DebugConfig struct {
	// LogSessionKey writes every raw session key to the log.
	// Default: false
	LogSessionKey bool `yaml:"log_session_key"`
}

// maxChunkSize keeps one relay buffer well under a megabyte.
const maxChunkSize = 1 << 20

// Defaults returns a TunnelConfig with all default values set.
// This is the single source of truth for all configuration defaults.
func Defaults() TunnelConfig {
	return TunnelConfig{
		Listener: ListenerConfig{
			Address:        "0.0.0.0:5000",
			CipherStrength: 128,
		},
		Originator: OriginatorConfig{
			ServerAddress: "127.0.0.1:5000",
		},
		Relay: RelayConfig{
			ChunkSize:      4096,
			SampleInterval: time.Second,
			SampleBytes:    32,
		},
		Supervisor: SupervisorConfig{
			Backoff: time.Second,
		},
		Capture: CommandConfig{
			Command: "libcamera-vid",
			Args: []string{
				"-t", "0",
				"--width", "1280",
				"--height", "720",
				"--framerate", "30",
				"--codec", "h264",
				"--profile", "baseline",
				"--inline",
				"--libav-format", "mpegts",
				"-o", "-",
			},
		},
		Sink: CommandConfig{
			Args: []string{},
		},
		Clock: ClockConfig{
			NTPTimeout: 5 * time.Second,
		},
	}
}

// Validate checks the settings shared by both roles and returns a
// *ConfigurationError for the first invalid value.
func Validate(cfg TunnelConfig) error {
	log.WithFields(logger.Fields{
		"at":     "config.Validate",
		"reason": "verification_requested",
	}).Debug("validating configuration")

	validators := []func() error{
		func() error { return validateRelay(cfg.Relay) },
		func() error { return validateSupervisor(cfg.Supervisor) },
		func() error { return validateClock(cfg.Clock) },
	}
	return runValidators(validators)
}

// ValidateListener checks everything the listener role needs.
func ValidateListener(cfg TunnelConfig) error {
	if err := Validate(cfg); err != nil {
		return err
	}
	return runValidators([]func() error{
		func() error { return validateListener(cfg.Listener) },
	})
}

// ValidateOriginator checks everything the originator role needs.
func ValidateOriginator(cfg TunnelConfig) error {
	if err := Validate(cfg); err != nil {
		return err
	}
	return runValidators([]func() error{
		func() error { return validateOriginator(cfg.Originator) },
		func() error { return validateCapture(cfg.Capture) },
	})
}

func runValidators(validators []func() error) error {
	for _, validator := range validators {
		if err := validator(); err != nil {
			log.WithError(err).Error("Configuration validation failed")
			return err
		}
	}
	log.WithFields(logger.Fields{
		"at":     "config.Validate",
		"reason": "all_validators_passed",
	}).Debug("configuration validated successfully")
	return nil
}

func validateListener(l ListenerConfig) error {
	if _, err := l.Strength(); err != nil {
		log.WithField("cipher_strength", l.CipherStrength).Error("Invalid listener configuration")
		return newConfigurationError("listener.cipher_strength", err)
	}
	return validateAddress("listener.address", l.Address)
}

func validateOriginator(o OriginatorConfig) error {
	return validateAddress("originator.server_address", o.ServerAddress)
}

func validateAddress(key, addr string) error {
	if addr == "" {
		return newConfigurationError(key, oops.New("address is empty"))
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return newConfigurationError(key, oops.Wrapf(err, "want host:port"))
	}
	return nil
}

func validateRelay(r RelayConfig) error {
	if r.ChunkSize < 1 || r.ChunkSize > maxChunkSize {
		return newConfigurationError("relay.chunk_size",
			oops.Errorf("must be between 1 and %d, got %d", maxChunkSize, r.ChunkSize))
	}
	if r.SampleInterval < 0 {
		return newConfigurationError("relay.sample_interval", oops.New("must not be negative"))
	}
	if r.SampleBytes < 0 {
		return newConfigurationError("relay.sample_bytes", oops.New("must not be negative"))
	}
	return nil
}

func validateSupervisor(s SupervisorConfig) error {
	if s.Backoff < 0 {
		return newConfigurationError("supervisor.backoff", oops.New("must not be negative"))
	}
	return nil
}

func validateCapture(c CommandConfig) error {
	if c.Command == "" {
		return newConfigurationError("capture.command", oops.New("capture command is required"))
	}
	return nil
}

func validateClock(c ClockConfig) error {
	if c.NTPServer != "" && c.NTPTimeout <= 0 {
		return newConfigurationError("clock.ntp_timeout", oops.New("must be positive when clock.ntp_server is set"))
	}
	return nil
}

// ConfigurationError reports an invalid startup setting. The command exits
// non-zero before any Session starts.
type ConfigurationError struct {
	Key string
	Err error
}

func newConfigurationError(key string, err error) error {
	return &ConfigurationError{Key: key, Err: err}
}

func (e *ConfigurationError) Error() string {
	return "configuration validation failed: " + e.Key + ": " + e.Err.Error()
}

func (e *ConfigurationError) Unwrap() error { return e.Err }
