// Package config provides configuration management for go-streamtunnel.
//
// Values are resolved by viper in this order: command-line flag, environment
// variable (prefix STREAMTUNNEL_, dots replaced by underscores), config file,
// default. The config file lives at $HOME/.go-streamtunnel/config.yaml and is
// created with the defaults on first run unless --config names another file.
//
// Defaults returns the single source of truth for default values. Validate
// rejects settings that would make every Session fail, such as a cipher
// strength other than 128, 192 or 256, before the supervisor starts.
package config
