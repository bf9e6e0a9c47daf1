package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// BillingConfig holds the tunable business parameters of the billing core.
type BillingConfig struct {
	// GraceDays is the number of days after the invoice date before an
	// unpaid invoice becomes overdue-eligible.
	GraceDays int `mapstructure:"graceDays"`
	// LateFee is the flat fee applied once per overdue invoice.
	LateFee int64 `mapstructure:"lateFee"`
	// CycleDay is the day of month the scheduler generates the monthly batch.
	CycleDay int `mapstructure:"cycleDay"`
	// DefaultBillingDay is assigned to customers created without one.
	DefaultBillingDay int `mapstructure:"defaultBillingDay"`

	AgingBuckets []AgingBucket `mapstructure:"agingBuckets"`
}

// AgingBucket describes one overdue-age reporting bucket.
type AgingBucket struct {
	Label   string `mapstructure:"label"`
	MinDays int    `mapstructure:"minDays"`
	MaxDays *int   `mapstructure:"maxDays"` // nil = unbounded
}

func DefaultBillingConfig() BillingConfig {
	return BillingConfig{
		GraceDays:         7,
		LateFee:           50_000,
		CycleDay:          1,
		DefaultBillingDay: 1,
		AgingBuckets: []AgingBucket{
			{Label: "1-7", MinDays: 1, MaxDays: intPtr(7)},
			{Label: "8-30", MinDays: 8, MaxDays: intPtr(30)},
			{Label: "30+", MinDays: 31, MaxDays: nil},
		},
	}
}

func intPtr(v int) *int { return &v }

// BillingConfigHolder exposes the current billing config and keeps it fresh
// when the underlying file changes.
type BillingConfigHolder struct {
	current atomic.Value // holds BillingConfig
}

func NewBillingConfigHolder() (*BillingConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("billing")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/netbill/config") // Volume-mounted config
	v.AddConfigPath("/etc/netbill")            // System config
	v.AddConfigPath(".")                       // Current directory (dev mode)

	v.SetEnvPrefix("NETBILL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultBillingConfig()
	v.SetDefault("billing.graceDays", defaults.GraceDays)
	v.SetDefault("billing.lateFee", defaults.LateFee)
	v.SetDefault("billing.cycleDay", defaults.CycleDay)
	v.SetDefault("billing.defaultBillingDay", defaults.DefaultBillingDay)
	v.SetDefault("billing.agingBuckets", defaults.AgingBuckets)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg BillingConfig
	if err := v.UnmarshalKey("billing", &cfg); err != nil {
		return nil, err
	}
	if err := validateBillingConfig(cfg); err != nil {
		return nil, err
	}

	holder := &BillingConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated BillingConfig
		if err := v.UnmarshalKey("billing", &updated); err != nil {
			log.Printf("[billing-config] reload failed: %v", err)
			return
		}
		if err := validateBillingConfig(updated); err != nil {
			log.Printf("[billing-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[billing-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticBillingConfig wraps a fixed config, for tests.
func NewStaticBillingConfig(cfg BillingConfig) *BillingConfigHolder {
	holder := &BillingConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *BillingConfigHolder) Get() BillingConfig {
	return h.current.Load().(BillingConfig)
}

func validateBillingConfig(cfg BillingConfig) error {
	if cfg.GraceDays < 0 {
		return errors.New("billing.graceDays cannot be negative")
	}
	if cfg.LateFee < 0 {
		return errors.New("billing.lateFee cannot be negative")
	}
	if cfg.CycleDay < 1 || cfg.CycleDay > 28 {
		return errors.New("billing.cycleDay must be between 1 and 28")
	}
	if cfg.DefaultBillingDay < 1 || cfg.DefaultBillingDay > 28 {
		return errors.New("billing.defaultBillingDay must be between 1 and 28")
	}
	if len(cfg.AgingBuckets) == 0 {
		return errors.New("billing.agingBuckets cannot be empty")
	}
	return nil
}
