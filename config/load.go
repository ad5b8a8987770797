package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"quote-engine-go/strategy"
)

// AppConfig holds the main runtime configuration.
type AppConfig struct {
	Env         string                      `yaml:"env"`
	Engine      EngineConfig                `yaml:"engine"`
	Instruments map[string]InstrumentConfig `yaml:"instruments"`
	Logging     LoggingConfig               `yaml:"logging"`
	Metrics     MetricsConfig               `yaml:"metrics"`
	Alerts      AlertConfig                 `yaml:"alerts"`
	Feed        FeedConfig                  `yaml:"feed"`
	Venue       VenueConfig                 `yaml:"venue"`
}

// EngineConfig 控制策略选择、信号阈值与报价节奏。
// 时间类参数统一用毫秒/秒整数表示。
type EngineConfig struct {
	Policy              string  `yaml:"policy"`
	BookThreshold       float64 `yaml:"bookThreshold"`
	FlowMin             float64 `yaml:"flowMin"`
	FlowMax             float64 `yaml:"flowMax"`
	TradeWindowSec      int     `yaml:"tradeWindowSec"`    // 成交窗口保留时长
	FlowHorizonSec      int     `yaml:"flowHorizonSec"`    // 成交流不平衡度回看窗口
	RequoteIntervalMs   int     `yaml:"requoteIntervalMs"` // 同一品种两次对齐的最小间隔
	MidShift            float64 `yaml:"midShift"`
	SpreadMultiplier    float64 `yaml:"spreadMultiplier"`
	BiasCompetitiveness bool    `yaml:"biasCompetitiveness"`
	BiasInside          float64 `yaml:"biasInside"`
	BiasDefensive       float64 `yaml:"biasDefensive"`
	MomentumThreshold   float64 `yaml:"momentumThreshold"`
	OrderSize           float64 `yaml:"orderSize"`
	FeeRate             float64 `yaml:"feeRate"`
	MaxPosition         float64 `yaml:"maxPosition"`
	PriceDecimals       int     `yaml:"priceDecimals"`
	MinTick             float64 `yaml:"minTick"`
	MaxStalenessMs      int     `yaml:"maxStalenessMs"` // 0 = 不检查行情陈旧度
	FlattenOnBreach     bool    `yaml:"flattenOnBreach"`
	InitialCapital      float64 `yaml:"initialCapital"`
	DrawdownLimit       float64 `yaml:"drawdownLimit"`      // 0 = 不启用回撤护栏
	CircuitThreshold    int     `yaml:"circuitThreshold"`   // 连续场内失败熔断阈值
	CircuitCooldownSec  int     `yaml:"circuitCooldownSec"` // 熔断冷却
}

// InstrumentConfig 按品种覆盖全局参数；数值为零表示继承全局。
type InstrumentConfig struct {
	OrderSize     float64 `yaml:"orderSize"`
	MaxPosition   float64 `yaml:"maxPosition"`
	PriceDecimals int     `yaml:"priceDecimals"`
	MinTick       float64 `yaml:"minTick"`
	MinQty        float64 `yaml:"minQty"`
	MinNotional   float64 `yaml:"minNotional"`
}

// LoggingConfig mirrors the logger package knobs so they can live in
// the same YAML file.
type LoggingConfig struct {
	Level      string   `yaml:"level"`
	Format     string   `yaml:"format"`
	Outputs    []string `yaml:"outputs"`
	OutputFile string   `yaml:"outputFile"`
	ErrorFile  string   `yaml:"errorFile"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

type AlertConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Channel     string `yaml:"channel"` // log | console
	ThrottleSec int    `yaml:"throttleSec"`
}

type FeedConfig struct {
	URL             string `yaml:"url"`
	ReconnectMaxSec int    `yaml:"reconnectMaxSec"`
}

type VenueConfig struct {
	DryRun     bool    `yaml:"dryRun"`
	RatePerSec float64 `yaml:"ratePerSec"`
	Burst      int     `yaml:"burst"`
}

// Default returns the configuration the engine runs with when a knob
// is left out of the YAML file.
func Default() AppConfig {
	return AppConfig{
		Env: "dev",
		Engine: EngineConfig{
			Policy:             strategy.NameFeeAware,
			BookThreshold:      1.5,
			FlowMin:            0.95,
			FlowMax:            1.05,
			TradeWindowSec:     60,
			FlowHorizonSec:     10,
			RequoteIntervalMs:  100,
			MidShift:           0.25,
			SpreadMultiplier:   0.35,
			BiasInside:         strategy.DefaultBiasInside,
			BiasDefensive:      strategy.DefaultBiasDefensive,
			MomentumThreshold:  0.0025,
			OrderSize:          1,
			FeeRate:            0.004,
			MaxPosition:        50,
			PriceDecimals:      8,
			MinTick:            0.0001,
			InitialCapital:     100000,
			CircuitThreshold:   5,
			CircuitCooldownSec: 30,
		},
		Instruments: map[string]InstrumentConfig{
			"ETH": {},
			"BTC": {},
			"LTC": {},
		},
		Logging: LoggingConfig{Level: "info", Format: "json", Outputs: []string{"stdout"}},
		Metrics: MetricsConfig{Enabled: true, Addr: ":9100"},
		Alerts:  AlertConfig{Enabled: true, Channel: "log", ThrottleSec: 60},
		Feed:    FeedConfig{ReconnectMaxSec: 30},
		Venue:   VenueConfig{DryRun: true, RatePerSec: 20, Burst: 40},
	}
}

// Load reads YAML config from path over the defaults and validates.
// 标量字段逐项覆盖默认值；instruments 段整体替换而不是与默认品种合并。
func Load(path string) (AppConfig, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	// yaml 解码会往已有 map 里追加键，先置空让文件里的品种集合整体生效。
	defaults := cfg.Instruments
	cfg.Instruments = nil
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse yaml: %w", err)
	}
	if cfg.Instruments == nil {
		cfg.Instruments = defaults
	}
	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadWithEnvOverrides loads config then overrides deploy-varying
// fields from env vars if present.
func LoadWithEnvOverrides(path string) (AppConfig, error) {
	cfg, err := Load(path)
	if err != nil {
		return cfg, err
	}
	if v := os.Getenv("QE_ENV"); v != "" {
		cfg.Env = v
	}
	if v := os.Getenv("QE_POLICY"); v != "" {
		cfg.Engine.Policy = v
	}
	if v := os.Getenv("QE_FEED_URL"); v != "" {
		cfg.Feed.URL = v
	}
	if v := os.Getenv("QE_METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
	}
	return cfg, Validate(cfg)
}

// Validate ensures the configuration can actually drive the engine.
// Policy-specific parameters are checked by constructing the policy,
// so bad values surface at load time instead of at the first quote.
func Validate(cfg AppConfig) error {
	if cfg.Env == "" {
		return errors.New("env is required")
	}
	e := cfg.Engine
	if !strategy.Known(e.Policy) {
		return fmt.Errorf("engine.policy %q unknown (want one of %v)", e.Policy, strategy.Names())
	}
	if e.FlowMin > 1 || e.FlowMax < 1 {
		return errors.New("engine.flowMin..flowMax must contain 1.0")
	}
	if e.BookThreshold <= 1 {
		return errors.New("engine.bookThreshold must be > 1")
	}
	if e.TradeWindowSec <= 0 || e.FlowHorizonSec <= 0 {
		return errors.New("engine.tradeWindowSec/flowHorizonSec must be > 0")
	}
	if e.FlowHorizonSec > e.TradeWindowSec {
		return errors.New("engine.flowHorizonSec must not exceed tradeWindowSec")
	}
	if e.RequoteIntervalMs < 10 || e.RequoteIntervalMs > 5000 {
		return errors.New("engine.requoteIntervalMs must be within [10, 5000]")
	}
	if e.OrderSize <= 0 {
		return errors.New("engine.orderSize must be > 0")
	}
	if e.FeeRate < 0 {
		return errors.New("engine.feeRate must be >= 0")
	}
	if e.MaxPosition <= 0 {
		return errors.New("engine.maxPosition must be > 0")
	}
	if e.PriceDecimals < 0 || e.PriceDecimals > 12 {
		return errors.New("engine.priceDecimals must be within [0, 12]")
	}
	if e.MinTick < 0 {
		return errors.New("engine.minTick must be >= 0")
	}
	if e.MaxStalenessMs < 0 {
		return errors.New("engine.maxStalenessMs must be >= 0")
	}
	if e.InitialCapital <= 0 {
		return errors.New("engine.initialCapital must be > 0")
	}
	if e.DrawdownLimit < 0 || e.DrawdownLimit >= 1 {
		return errors.New("engine.drawdownLimit must be within [0, 1)")
	}
	if e.CircuitThreshold < 0 || e.CircuitCooldownSec < 0 {
		return errors.New("engine.circuit settings must be >= 0")
	}
	if _, err := strategy.New(e.Policy, e.StrategyParams()); err != nil {
		return fmt.Errorf("engine policy params: %w", err)
	}
	if len(cfg.Instruments) == 0 {
		return errors.New("instruments config is required")
	}
	for inst, ic := range cfg.Instruments {
		if ic.OrderSize < 0 || ic.MaxPosition < 0 || ic.MinTick < 0 ||
			ic.MinQty < 0 || ic.MinNotional < 0 {
			return fmt.Errorf("instrument %s overrides must be >= 0", inst)
		}
		if ic.PriceDecimals < 0 || ic.PriceDecimals > 12 {
			return fmt.Errorf("instrument %s priceDecimals must be within [0, 12]", inst)
		}
	}
	if cfg.Metrics.Enabled && cfg.Metrics.Addr == "" {
		return errors.New("metrics.addr is required when metrics are enabled")
	}
	if cfg.Alerts.Enabled {
		switch cfg.Alerts.Channel {
		case "log", "console":
		default:
			return fmt.Errorf("alerts.channel %q unknown (want log or console)", cfg.Alerts.Channel)
		}
	}
	if cfg.Venue.RatePerSec < 0 || cfg.Venue.Burst < 0 {
		return errors.New("venue rate limit settings must be >= 0")
	}
	return nil
}

// StrategyParams 把引擎配置映射为策略构造参数。
func (e EngineConfig) StrategyParams() strategy.Params {
	return strategy.Params{
		BookThreshold:       e.BookThreshold,
		FlowMin:             e.FlowMin,
		FlowMax:             e.FlowMax,
		MidShift:            e.MidShift,
		BiasCompetitiveness: e.BiasCompetitiveness,
		BiasInside:          e.BiasInside,
		BiasDefensive:       e.BiasDefensive,
		SpreadMultiplier:    e.SpreadMultiplier,
		FeeRate:             e.FeeRate,
		MinTick:             e.MinTick,
		MomentumThreshold:   e.MomentumThreshold,
	}
}

// Duration accessors for the integer time knobs.

func (e EngineConfig) TradeWindow() time.Duration {
	return time.Duration(e.TradeWindowSec) * time.Second
}

func (e EngineConfig) FlowHorizon() time.Duration {
	return time.Duration(e.FlowHorizonSec) * time.Second
}

func (e EngineConfig) RequoteInterval() time.Duration {
	return time.Duration(e.RequoteIntervalMs) * time.Millisecond
}

func (e EngineConfig) MaxStaleness() time.Duration {
	return time.Duration(e.MaxStalenessMs) * time.Millisecond
}

func (e EngineConfig) CircuitCooldown() time.Duration {
	return time.Duration(e.CircuitCooldownSec) * time.Second
}

// Resolved merges per-instrument overrides over the engine globals
// and returns the effective settings for one instrument.
func (cfg AppConfig) Resolved(inst string) InstrumentConfig {
	e := cfg.Engine
	out := InstrumentConfig{
		OrderSize:     e.OrderSize,
		MaxPosition:   e.MaxPosition,
		PriceDecimals: e.PriceDecimals,
		MinTick:       e.MinTick,
	}
	ic, ok := cfg.Instruments[inst]
	if !ok {
		return out
	}
	if ic.OrderSize > 0 {
		out.OrderSize = ic.OrderSize
	}
	if ic.MaxPosition > 0 {
		out.MaxPosition = ic.MaxPosition
	}
	if ic.PriceDecimals > 0 {
		out.PriceDecimals = ic.PriceDecimals
	}
	if ic.MinTick > 0 {
		out.MinTick = ic.MinTick
	}
	out.MinQty = ic.MinQty
	out.MinNotional = ic.MinNotional
	return out
}

// InstrumentNames returns the configured instrument set.
func (cfg AppConfig) InstrumentNames() []string {
	names := make([]string, 0, len(cfg.Instruments))
	for inst := range cfg.Instruments {
		names = append(names, inst)
	}
	return names
}
