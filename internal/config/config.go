package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/restakehq/restake-agent/internal/chain/signer"
	agenterr "github.com/restakehq/restake-agent/internal/errors"
	"github.com/restakehq/restake-agent/internal/registry"
)

type GlobalFlags struct {
	ConfigPath    string
	JSON          bool
	Plain         bool
	Timeout       string
	Retries       int
	EnableActions string
	RPCURL        string
	DryRun        bool
}

// Settings is the resolved runtime configuration, loaded and validated once
// at startup. Precedence: defaults < config file < environment < flags.
type Settings struct {
	OutputMode      string
	Timeout         time.Duration
	RetryAttempts   uint
	RetryDelay      time.Duration
	RPCURL          string
	ChainID         int64
	ExplorerBaseURL string
	JournalPath     string
	JournalLockPath string
	EnableActions   []string
	DryRun          bool
	PollInterval    time.Duration
	ConfirmTimeout  time.Duration

	// WalletConfigured reports whether a signing key was found in the
	// environment. Read-only queries work without one.
	WalletConfigured bool
}

type fileConfig struct {
	Output     string `yaml:"output"`
	Timeout    string `yaml:"timeout"`
	Retries    *int   `yaml:"retries"`
	RetryDelay string `yaml:"retry_delay"`
	Chain      struct {
		RPCURL         string `yaml:"rpc_url"`
		ID             *int64 `yaml:"id"`
		PollInterval   string `yaml:"poll_interval"`
		ConfirmTimeout string `yaml:"confirm_timeout"`
	} `yaml:"chain"`
	Explorer struct {
		URL string `yaml:"url"`
	} `yaml:"explorer"`
	Journal struct {
		Path     string `yaml:"path"`
		LockPath string `yaml:"lock_path"`
	} `yaml:"journal"`
}

func Load(flags GlobalFlags) (Settings, error) {
	settings, err := defaultSettings()
	if err != nil {
		return Settings{}, err
	}

	cfgPath, err := resolveConfigPath(flags.ConfigPath)
	if err != nil {
		return Settings{}, err
	}

	if err := applyFileConfig(cfgPath, &settings); err != nil {
		return Settings{}, err
	}

	applyEnv(&settings)

	if err := applyFlags(flags, &settings); err != nil {
		return Settings{}, err
	}

	if settings.Timeout <= 0 {
		settings.Timeout = 10 * time.Second
	}
	if settings.RetryDelay <= 0 {
		settings.RetryDelay = 2 * time.Second
	}
	settings.WalletConfigured = signer.HasEnvKey()

	return settings, settings.validate()
}

func (s Settings) validate() error {
	if s.OutputMode != "json" && s.OutputMode != "plain" {
		return agenterr.New(agenterr.CodeConfig, "output must be json or plain")
	}
	if _, err := registry.ResolveRPCURL(s.RPCURL, s.ChainID); err != nil {
		return agenterr.Wrap(agenterr.CodeConfig, "resolve rpc endpoint", err)
	}
	return nil
}

func defaultSettings() (Settings, error) {
	journalPath, lockPath, err := defaultJournalPaths()
	if err != nil {
		return Settings{}, err
	}
	rpcURL, _ := registry.DefaultRPCURL(registry.HoleskyChainID)
	return Settings{
		OutputMode:      "plain",
		Timeout:         10 * time.Second,
		RetryAttempts:   3,
		RetryDelay:      2 * time.Second,
		RPCURL:          rpcURL,
		ChainID:         registry.HoleskyChainID,
		ExplorerBaseURL: registry.ExplorerAPIBase,
		JournalPath:     journalPath,
		JournalLockPath: lockPath,
		PollInterval:    2 * time.Second,
		ConfirmTimeout:  2 * time.Minute,
	}, nil
}

func resolveConfigPath(input string) (string, error) {
	if strings.TrimSpace(input) != "" {
		return input, nil
	}
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "restake", "config.yaml"), nil
}

func defaultJournalPaths() (string, string, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", "", err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, "restake")
	return filepath.Join(dir, "journal.db"), filepath.Join(dir, "journal.lock"), nil
}

func applyFileConfig(path string, settings *Settings) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}

	var cfg fileConfig
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return fmt.Errorf("parse config yaml: %w", err)
	}

	if cfg.Output != "" {
		settings.OutputMode = strings.ToLower(cfg.Output)
	}
	if cfg.Timeout != "" {
		d, err := time.ParseDuration(cfg.Timeout)
		if err != nil {
			return fmt.Errorf("config timeout: %w", err)
		}
		settings.Timeout = d
	}
	if cfg.Retries != nil && *cfg.Retries >= 0 {
		settings.RetryAttempts = uint(*cfg.Retries)
	}
	if cfg.RetryDelay != "" {
		d, err := time.ParseDuration(cfg.RetryDelay)
		if err != nil {
			return fmt.Errorf("config retry_delay: %w", err)
		}
		settings.RetryDelay = d
	}
	if cfg.Chain.RPCURL != "" {
		settings.RPCURL = cfg.Chain.RPCURL
	}
	if cfg.Chain.ID != nil {
		settings.ChainID = *cfg.Chain.ID
	}
	if cfg.Chain.PollInterval != "" {
		d, err := time.ParseDuration(cfg.Chain.PollInterval)
		if err != nil {
			return fmt.Errorf("config chain.poll_interval: %w", err)
		}
		settings.PollInterval = d
	}
	if cfg.Chain.ConfirmTimeout != "" {
		d, err := time.ParseDuration(cfg.Chain.ConfirmTimeout)
		if err != nil {
			return fmt.Errorf("config chain.confirm_timeout: %w", err)
		}
		settings.ConfirmTimeout = d
	}
	if cfg.Explorer.URL != "" {
		settings.ExplorerBaseURL = cfg.Explorer.URL
	}
	if cfg.Journal.Path != "" {
		settings.JournalPath = cfg.Journal.Path
	}
	if cfg.Journal.LockPath != "" {
		settings.JournalLockPath = cfg.Journal.LockPath
	}

	return nil
}

func applyEnv(settings *Settings) {
	if v := os.Getenv("RESTAKE_OUTPUT"); v != "" {
		settings.OutputMode = strings.ToLower(v)
	}
	if v := os.Getenv("RESTAKE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			settings.Timeout = d
		}
	}
	if v := os.Getenv("RESTAKE_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			settings.RetryAttempts = uint(n)
		}
	}
	if v := os.Getenv("RESTAKE_RETRY_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			settings.RetryDelay = d
		}
	}
	if v := os.Getenv("RESTAKE_RPC_URL"); v != "" {
		settings.RPCURL = v
	}
	if v := os.Getenv("RESTAKE_CHAIN_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			settings.ChainID = id
		}
	}
	if v := os.Getenv("RESTAKE_EXPLORER_URL"); v != "" {
		settings.ExplorerBaseURL = v
	}
	if v := os.Getenv("RESTAKE_JOURNAL_PATH"); v != "" {
		settings.JournalPath = v
	}
	if v := os.Getenv("RESTAKE_JOURNAL_LOCK_PATH"); v != "" {
		settings.JournalLockPath = v
	}
	if v := os.Getenv("RESTAKE_ENABLE_ACTIONS"); v != "" {
		settings.EnableActions = splitList(v)
	}
	if v := os.Getenv("RESTAKE_DRY_RUN"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			settings.DryRun = b
		}
	}
}

func applyFlags(flags GlobalFlags, settings *Settings) error {
	if flags.JSON && flags.Plain {
		return agenterr.New(agenterr.CodeConfig, "cannot use --json and --plain together")
	}
	if flags.JSON {
		settings.OutputMode = "json"
	}
	if flags.Plain {
		settings.OutputMode = "plain"
	}
	if flags.Timeout != "" {
		d, err := time.ParseDuration(flags.Timeout)
		if err != nil {
			return fmt.Errorf("parse --timeout: %w", err)
		}
		settings.Timeout = d
	}
	if flags.Retries >= 0 {
		settings.RetryAttempts = uint(flags.Retries)
	}
	if strings.TrimSpace(flags.EnableActions) != "" {
		settings.EnableActions = splitList(flags.EnableActions)
	}
	if strings.TrimSpace(flags.RPCURL) != "" {
		settings.RPCURL = strings.TrimSpace(flags.RPCURL)
	}
	if flags.DryRun {
		settings.DryRun = true
	}
	return nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		v := strings.TrimSpace(part)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
