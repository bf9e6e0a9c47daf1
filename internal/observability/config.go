package observability

import (
	"strings"

	"github.com/smallbiznis/netbill/internal/config"
)

// Config carries the observability settings derived from app config.
type Config struct {
	ServiceName string
	Environment string
	Version     string

	LogLevel  string
	LogFormat string

	OtelEnabled          bool
	OtelExporterEndpoint string
	OtelExporterProtocol string
	OtelSamplingRatio    float64
}

func LoadConfig(appCfg config.Config) Config {
	return Config{
		ServiceName:          appCfg.AppName,
		Environment:          appCfg.Environment,
		Version:              appCfg.AppVersion,
		LogLevel:             appCfg.LogLevel,
		LogFormat:            "json",
		OtelEnabled:          appCfg.OtelEnabled,
		OtelExporterEndpoint: appCfg.OtelExporterEndpoint,
		OtelExporterProtocol: appCfg.OtelExporterProtocol,
		OtelSamplingRatio:    0.1,
	}
}

func (c Config) Debug() bool {
	return strings.EqualFold(c.LogLevel, "debug")
}
