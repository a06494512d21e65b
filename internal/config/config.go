package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "BATTLEFEED"

// WatchConfig holds configuration for the live listener.
type WatchConfig struct {
	RPCURL        string
	Contract      string
	Wallet        string
	Player1Anchor string
	Player2Anchor string
	Journal       string
	Errors        string
	Signals       string
	PGDSN         string
	LogLevel      string
}

// ReplayConfig holds configuration for historical replay.
type ReplayConfig struct {
	RPCURL            string
	Contract          string
	Wallet            string
	Player1Anchor     string
	Player2Anchor     string
	FromBlock         uint64
	ToBlock           uint64
	BatchSize         uint64
	Checkpoint        string
	CheckpointEnabled bool
	MaxRetries        int
	RetryBackoff      time.Duration
	Journal           string
	Errors            string
	Signals           string
	PGDSN             string
	LogLevel          string
}

// LoadWatch merges config file, environment variables, and flags into WatchConfig.
func LoadWatch(cfgFile string, flags *pflag.FlagSet) (WatchConfig, error) {
	v, err := load(cfgFile, flags, map[string]interface{}{
		"errors":    "./data/decode_errors.jsonl",
		"log-level": "info",
	})
	if err != nil {
		return WatchConfig{}, err
	}

	return WatchConfig{
		RPCURL:        v.GetString("rpc"),
		Contract:      v.GetString("contract"),
		Wallet:        strings.TrimSpace(v.GetString("wallet")),
		Player1Anchor: v.GetString("player1-anchor"),
		Player2Anchor: v.GetString("player2-anchor"),
		Journal:       v.GetString("journal"),
		Errors:        v.GetString("errors"),
		Signals:       v.GetString("signals"),
		PGDSN:         v.GetString("pg-dsn"),
		LogLevel:      v.GetString("log-level"),
	}, nil
}

// LoadReplay merges config file, environment variables, and flags into ReplayConfig.
func LoadReplay(cfgFile string, flags *pflag.FlagSet) (ReplayConfig, error) {
	v, err := load(cfgFile, flags, map[string]interface{}{
		"batch-size":         uint64(2000),
		"checkpoint":         "./data/replay_checkpoint.json",
		"checkpoint-enabled": true,
		"max-retries":        5,
		"retry-backoff":      500 * time.Millisecond,
		"errors":             "./data/decode_errors.jsonl",
		"log-level":          "info",
	})
	if err != nil {
		return ReplayConfig{}, err
	}

	return ReplayConfig{
		RPCURL:            v.GetString("rpc"),
		Contract:          v.GetString("contract"),
		Wallet:            strings.TrimSpace(v.GetString("wallet")),
		Player1Anchor:     v.GetString("player1-anchor"),
		Player2Anchor:     v.GetString("player2-anchor"),
		FromBlock:         v.GetUint64("from"),
		ToBlock:           v.GetUint64("to"),
		BatchSize:         v.GetUint64("batch-size"),
		Checkpoint:        v.GetString("checkpoint"),
		CheckpointEnabled: v.GetBool("checkpoint-enabled"),
		MaxRetries:        v.GetInt("max-retries"),
		RetryBackoff:      v.GetDuration("retry-backoff"),
		Journal:           v.GetString("journal"),
		Errors:            v.GetString("errors"),
		Signals:           v.GetString("signals"),
		PGDSN:             v.GetString("pg-dsn"),
		LogLevel:          v.GetString("log-level"),
	}, nil
}

func load(cfgFile string, flags *pflag.FlagSet, defaults map[string]interface{}) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	return v, nil
}
