/*
Package config loads server configuration.

SOURCES (later wins):
  1. Defaults below
  2. .env file in the working directory (optional)
  3. Environment variables prefixed with SALARY_ (SALARY_PORT, SALARY_DB, ...)
  4. Command-line flags (-port, -db), applied by cmd/server

RATE SEEDING:
  HOURLY_RATE, OVERTIME_RATE1, OVERTIME_RATE2, BREAK_MINUTES and
  SETTLEMENT_DAY only seed the settings store on first start. Once rates
  were saved through the API the stored values win.
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/Chung0221/salary-tracker/payroll"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "SALARY"

type Config struct {
	Port      int    `mapstructure:"PORT"`
	DB        string `mapstructure:"DB"`
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogPretty bool   `mapstructure:"LOG_PRETTY"`

	CORSOrigins []string `mapstructure:"CORS_ORIGINS"`

	SchedulerEnabled   bool          `mapstructure:"SCHEDULER_ENABLED"`
	SettlementInterval time.Duration `mapstructure:"SETTLEMENT_INTERVAL"`

	HourlyRate    string `mapstructure:"HOURLY_RATE"`
	OvertimeRate1 string `mapstructure:"OVERTIME_RATE1"`
	OvertimeRate2 string `mapstructure:"OVERTIME_RATE2"`
	BreakMinutes  int    `mapstructure:"BREAK_MINUTES"`
	SettlementDay int    `mapstructure:"SETTLEMENT_DAY"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", 8080)
	v.SetDefault("DB", "salary.db")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", false)
	v.SetDefault("CORS_ORIGINS", []string{"http://localhost:5173"})
	v.SetDefault("SCHEDULER_ENABLED", true)
	v.SetDefault("SETTLEMENT_INTERVAL", "1h")
	v.SetDefault("HOURLY_RATE", "200")
	v.SetDefault("OVERTIME_RATE1", "1.34")
	v.SetDefault("OVERTIME_RATE2", "1.67")
	v.SetDefault("BREAK_MINUTES", 60)
	v.SetDefault("SETTLEMENT_DAY", 25)
}

// Load reads the given .env files (default ".env"; missing files are
// skipped) and then the environment.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load %s: %w", file, err)
		}
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.SettlementInterval <= 0 {
		return Config{}, fmt.Errorf("invalid SETTLEMENT_INTERVAL %s", cfg.SettlementInterval)
	}
	return cfg, nil
}

// Rates converts the seed values into a validated RateConfig.
func (c Config) Rates() (payroll.RateConfig, error) {
	hourly, err := decimal.NewFromString(c.HourlyRate)
	if err != nil {
		return payroll.RateConfig{}, fmt.Errorf("invalid HOURLY_RATE: %w", err)
	}
	m1, err := decimal.NewFromString(c.OvertimeRate1)
	if err != nil {
		return payroll.RateConfig{}, fmt.Errorf("invalid OVERTIME_RATE1: %w", err)
	}
	m2, err := decimal.NewFromString(c.OvertimeRate2)
	if err != nil {
		return payroll.RateConfig{}, fmt.Errorf("invalid OVERTIME_RATE2: %w", err)
	}

	rates := payroll.RateConfig{
		HourlyRate:          hourly,
		OvertimeMultiplier1: m1,
		OvertimeMultiplier2: m2,
		DefaultBreakMinutes: c.BreakMinutes,
		SettlementDay:       c.SettlementDay,
	}
	if err := rates.Validate(); err != nil {
		return payroll.RateConfig{}, err
	}
	return rates, nil
}

// Addr is the listen address for the configured port.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
