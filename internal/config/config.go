package config

import (
	"go.uber.org/zap"
)

// InitLogger builds a development logger unless env is production.
func InitLogger(env string) (*zap.Logger, error) {
	if env == EnvProduction {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
