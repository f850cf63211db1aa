// Package config provides configuration management using viper.
// It supports loading from YAML files and environment variable overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Account  AccountConfig  `mapstructure:"account"`
	Games    GamesConfig    `mapstructure:"games"`
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	PoolSize        int           `mapstructure:"pool_size"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// RedisConfig holds the session store connection configuration.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AccountConfig holds account defaults.
type AccountConfig struct {
	StartingBalance int64 `mapstructure:"starting_balance"`
}

// GamesConfig holds game-specific configuration.
type GamesConfig struct {
	Mines     MinesConfig     `mapstructure:"mines"`
	Blackjack BlackjackConfig `mapstructure:"blackjack"`
	Cards     CardsConfig     `mapstructure:"cards"`
	Lotto     LottoConfig     `mapstructure:"lotto"`
	Sports    SportsConfig    `mapstructure:"sports"`
}

// MinesConfig holds mines game configuration.
type MinesConfig struct {
	MinBet int64 `mapstructure:"min_bet"`
}

// BlackjackConfig holds blackjack game configuration.
type BlackjackConfig struct {
	MinBet int64 `mapstructure:"min_bet"`
}

// CardsConfig holds card game configuration.
type CardsConfig struct {
	MinBet int64 `mapstructure:"min_bet"`
}

// LottoConfig holds lotto configuration.
type LottoConfig struct {
	TicketCost int64 `mapstructure:"ticket_cost"`
	PrizePool  int64 `mapstructure:"prize_pool"`
}

// SportsConfig holds sports betting configuration.
type SportsConfig struct {
	MinStake int64 `mapstructure:"min_stake"`
}

// DSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name,
	)
}

// Load reads configuration from file and environment variables.
// It looks for config.yaml in the given directory.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Environment variables use underscore separator and uppercase,
	// e.g. DATABASE_HOST, REDIS_ADDR, GAMES_MINES_MIN_BET.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK - env vars can provide all config
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "casino")
	v.SetDefault("database.name", "casino")
	v.SetDefault("database.pool_size", 20)
	v.SetDefault("database.connect_timeout", "10s")
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.max_conn_idle_time", "30m")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("account.starting_balance", 1000)

	v.SetDefault("games.mines.min_bet", 10)
	v.SetDefault("games.blackjack.min_bet", 10)
	v.SetDefault("games.cards.min_bet", 10)
	v.SetDefault("games.lotto.ticket_cost", 50)
	v.SetDefault("games.lotto.prize_pool", 100000)
	v.SetDefault("games.sports.min_stake", 10)
}
