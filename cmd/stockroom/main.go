package main

import (
	"context"
	"log"

	"github.com/iurnickita/stockroom/internal/catalogclient"
	"github.com/iurnickita/stockroom/internal/config"
	"github.com/iurnickita/stockroom/internal/handler"
	"github.com/iurnickita/stockroom/internal/logger"
	"github.com/iurnickita/stockroom/internal/service"
	"github.com/iurnickita/stockroom/internal/store"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg := config.GetConfig()

	zaplog, err := logger.NewZapLog(cfg.Logger)
	if err != nil {
		return err
	}

	store, err := store.NewStore(cfg.Store)
	if err != nil {
		return err
	}

	srv, err := service.NewService(cfg.Service, store, zaplog)
	if err != nil {
		return err
	}

	// начальная загрузка каталога с внешнего сервиса
	if cfg.Service.CatalogAddr != "" {
		catalog := catalogclient.NewCatalogClient(cfg.Service.CatalogAddr)
		products, err := catalog.GetCatalog()
		if err != nil {
			return err
		}
		if err := srv.InitCatalog(context.Background(), products); err != nil {
			return err
		}
	}

	return handler.Serve(cfg.Handler, srv, zaplog)
}
