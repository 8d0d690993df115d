package config

import (
	"flag"
	"os"

	handlerConfig "github.com/iurnickita/stockroom/internal/handler/config"
	loggerConfig "github.com/iurnickita/stockroom/internal/logger/config"
	serviceConfig "github.com/iurnickita/stockroom/internal/service/config"
	storeConfig "github.com/iurnickita/stockroom/internal/store/config"
)

type Config struct {
	Handler handlerConfig.Config
	Service serviceConfig.Config
	Store   storeConfig.Config
	Logger  loggerConfig.Config
}

// GetConfig читает флаги, переменные окружения имеют приоритет
func GetConfig() Config {
	var cfg Config

	flag.StringVar(&cfg.Handler.ServerAddr, "a", "localhost:8080", "server address")
	flag.StringVar(&cfg.Store.DBDsn, "d", "", "database dsn")
	flag.StringVar(&cfg.Logger.LogLevel, "l", "info", "log level")
	flag.StringVar(&cfg.Service.CatalogAddr, "c", "", "catalog bootstrap address")
	flag.Parse()

	if addr := os.Getenv("ADDRESS"); addr != "" {
		cfg.Handler.ServerAddr = addr
	}
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		cfg.Store.DBDsn = dsn
	}
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		cfg.Logger.LogLevel = lvl
	}
	if catalog := os.Getenv("CATALOG_ADDR"); catalog != "" {
		cfg.Service.CatalogAddr = catalog
	}

	return cfg
}
