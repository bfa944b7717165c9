package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where ndmpadm looks for its own settings
const DefaultPath = "/etc/ndmpadm.yaml"

// EnvPrefix prefixes environment overrides, e.g. NDMPADM_NDMPD_CONFIG_FILE
const EnvPrefix = "NDMPADM"

// Config holds all settings for ndmpadm
type Config struct {
	NDMPD     NDMPDConfig     `yaml:"ndmpd" mapstructure:"ndmpd"`
	Daemon    DaemonConfig    `yaml:"daemon" mapstructure:"daemon"`
	Network   NetworkConfig   `yaml:"network" mapstructure:"network"`
	Revisions RevisionsConfig `yaml:"revisions" mapstructure:"revisions"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// NDMPDConfig locates the daemon's files
type NDMPDConfig struct {
	ConfigFile    string `yaml:"config_file" mapstructure:"config_file"`
	DumpdatesFile string `yaml:"dumpdates_file" mapstructure:"dumpdates_file"`
}

// DaemonConfig defines how the daemon is started and stopped
type DaemonConfig struct {
	Binary      string `yaml:"binary" mapstructure:"binary"`
	ProcessName string `yaml:"process_name" mapstructure:"process_name"`
	PkillPath   string `yaml:"pkill_path" mapstructure:"pkill_path"`
}

// NetworkConfig defines interface discovery
type NetworkConfig struct {
	Source       string   `yaml:"source" mapstructure:"source"` // ifconfig, native
	IfconfigPath string   `yaml:"ifconfig_path" mapstructure:"ifconfig_path"`
	IfconfigArgs []string `yaml:"ifconfig_args" mapstructure:"ifconfig_args"`
	SkipPrefixes []string `yaml:"skip_prefixes" mapstructure:"skip_prefixes"`
	VerifyNIC    bool     `yaml:"verify_nic" mapstructure:"verify_nic"`
}

// RevisionsConfig defines where previous versions of ndmpd.conf are kept
type RevisionsConfig struct {
	Enabled     bool              `yaml:"enabled" mapstructure:"enabled"`
	Keep        int               `yaml:"keep" mapstructure:"keep"`
	Backend     string            `yaml:"backend" mapstructure:"backend"` // local, s3
	Dir         string            `yaml:"dir" mapstructure:"dir"`
	Timeout     time.Duration     `yaml:"timeout" mapstructure:"timeout"` // whole revision operation
	Compression CompressionConfig `yaml:"compression" mapstructure:"compression"`
	Encryption  EncryptionConfig  `yaml:"encryption" mapstructure:"encryption"`
	Cloud       CloudConfig       `yaml:"cloud" mapstructure:"cloud"`
}

// CompressionConfig defines compression settings
type CompressionConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	Level   int  `yaml:"level" mapstructure:"level"` // zstd level, 1-19
}

// EncryptionConfig defines encryption settings
type EncryptionConfig struct {
	Enabled        bool   `yaml:"enabled" mapstructure:"enabled"`
	PassphraseFile string `yaml:"passphrase_file" mapstructure:"passphrase_file"`
}

// CloudConfig defines the S3 bucket used by the s3 backend
type CloudConfig struct {
	Bucket    string `yaml:"bucket" mapstructure:"bucket"`
	Region    string `yaml:"region" mapstructure:"region"`
	Endpoint  string `yaml:"endpoint" mapstructure:"endpoint"` // For S3-compatible
	AccessKey string `yaml:"access_key" mapstructure:"access_key"`
	SecretKey string `yaml:"secret_key" mapstructure:"secret_key"`
	Prefix    string `yaml:"prefix" mapstructure:"prefix"`
}

// LogConfig defines logging settings
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"` // debug, info, warn, error
	Color bool   `yaml:"color" mapstructure:"color"`
}

// DefaultConfig returns the settings of a stock installation
func DefaultConfig() *Config {
	return &Config{
		NDMPD: NDMPDConfig{
			ConfigFile:    "/etc/ndmpd.conf",
			DumpdatesFile: "/var/log/ndmp/dumpdates",
		},
		Daemon: DaemonConfig{
			Binary:      "/nas/sbin/qndmpd",
			ProcessName: "qndmpd",
			PkillPath:   "pkill",
		},
		Network: NetworkConfig{
			Source:       "ifconfig",
			IfconfigPath: "/sbin/ifconfig",
			IfconfigArgs: []string{},
			SkipPrefixes: []string{"ntb", "tun", "ipfw", "lo"},
			VerifyNIC:    true,
		},
		Revisions: RevisionsConfig{
			Enabled: true,
			Keep:    20,
			Backend: "local",
			Dir:     "/var/lib/ndmpadm/revisions",
			Timeout: 10 * time.Second,
			Compression: CompressionConfig{
				Enabled: true,
				Level:   3,
			},
		},
		Log: LogConfig{
			Level: "info",
			Color: true,
		},
	}
}

// Load reads settings from path on top of the defaults. A missing file is
// not an error. Every key can be overridden from the environment:
// revisions.cloud.bucket becomes NDMPADM_REVISIONS_CLOUD_BUCKET.
func Load(path string) (*Config, error) {
	defaults, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// defaults only
		case err != nil:
			return nil, fmt.Errorf("failed to read settings: %w", err)
		default:
			if err := v.MergeConfig(bytes.NewReader(data)); err != nil {
				return nil, fmt.Errorf("failed to parse settings %s: %w", path, err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes settings to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	// May hold S3 credentials
	return os.WriteFile(path, data, 0600)
}

// Validate checks the settings, filling in values that may not be empty
func (c *Config) Validate() error {
	if c.NDMPD.ConfigFile == "" {
		return fmt.Errorf("ndmpd.config_file must be set")
	}

	switch c.Network.Source {
	case "ifconfig", "native":
	case "":
		c.Network.Source = "ifconfig"
	default:
		return fmt.Errorf("network.source must be ifconfig or native, got %q", c.Network.Source)
	}

	switch c.Revisions.Backend {
	case "local", "s3":
	case "":
		c.Revisions.Backend = "local"
	default:
		return fmt.Errorf("revisions.backend must be local or s3, got %q", c.Revisions.Backend)
	}

	if c.Revisions.Enabled && c.Revisions.Backend == "s3" && c.Revisions.Cloud.Bucket == "" {
		return fmt.Errorf("revisions.cloud.bucket must be set for the s3 backend")
	}
	if c.Revisions.Encryption.Enabled && c.Revisions.Encryption.PassphraseFile == "" {
		return fmt.Errorf("revisions.encryption.passphrase_file must be set when encryption is enabled")
	}

	if c.Revisions.Timeout < 0 {
		c.Revisions.Timeout = 0
	}

	if c.Revisions.Keep < 0 {
		c.Revisions.Keep = 0
	}

	// Clamp compression level
	if c.Revisions.Compression.Level < 1 {
		c.Revisions.Compression.Level = 1
	}
	if c.Revisions.Compression.Level > 19 {
		c.Revisions.Compression.Level = 19
	}

	return nil
}
