package main

import (
	"context"
	"math/big"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/kestrel-wallet/kestreld/internal/config"
	"github.com/kestrel-wallet/kestreld/internal/core/application"
	dbbadger "github.com/kestrel-wallet/kestreld/internal/infrastructure/storage/db/badger"
	"github.com/kestrel-wallet/kestreld/pkg/ethmath"
	"github.com/kestrel-wallet/kestreld/pkg/ethsocket"
	"github.com/kestrel-wallet/kestreld/pkg/explorer/ethapi"
)

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(log.Level(config.GetInt(config.LogLevelKey)))

	dbDir := filepath.Join(config.GetDatadir(), "db")
	dbManager, err := dbbadger.NewDbManager(dbDir, log.New())
	if err != nil {
		log.WithError(err).Fatal("error while opening db")
	}
	defer dbManager.Close()

	explorerSvc, err := ethapi.NewService(
		config.GetString(config.ApiUrlKey),
		config.GetInt(config.ExplorerRequestsPerSecondKey),
	)
	if err != nil {
		log.WithError(err).Fatal("error while connecting to explorer")
	}

	socketSvc := ethsocket.NewService(config.GetString(config.WsUrlKey))
	if err := socketSvc.Connect(); err != nil {
		log.WithError(err).Warn(
			"error while connecting to push socket, live updates disabled",
		)
	}

	walletSvc, err := application.NewWalletService(application.NewWalletServiceOpts{
		Store:           dbbadger.NewMetadataStore(dbManager),
		ExplorerSvc:     explorerSvc,
		SocketSvc:       socketSvc,
		ChainID:         big.NewInt(int64(config.GetInt(config.ChainIdKey))),
		DefaultGasPrice: ethmath.GweiToWei(uint64(config.GetInt(config.GasPriceGweiKey))),
		DefaultGasLimit: uint64(config.GetInt(config.GasLimitKey)),
		SyncDebounce:    config.GetDuration(config.SyncDebounceMsKey),
	})
	if err != nil {
		log.WithError(err).Fatal("error while creating wallet service")
	}
	if err := walletSvc.LoadWallet(context.Background()); err != nil {
		log.WithError(err).Fatal("error while loading wallet")
	}
	if err := walletSvc.RefreshWalletState(context.Background()); err != nil {
		log.WithError(err).Warn("error while refreshing wallet state")
	}

	blockchainListener := application.NewBlockchainListener(socketSvc, walletSvc)
	blockchainListener.ObserveBlockchain()

	log.Info("kestreld is up and running")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("shutting down")
	walletSvc.Close()
}
