package config

import "time"

type Config interface {
	EnvConfig
	CorsConfig
	BridgeConfig
	APIConfig
	StoreConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetHostDataFile() string
	GetHostPageURL() string
	GetLogLevel() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type BridgeConfig interface {
	GetPollInterval() time.Duration
}

type mainConfig struct {
	EnvVars
	Cors
	Bridge
	API
	Store
}

func New() Config {
	return mainConfig{}
}
