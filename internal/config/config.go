package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	// ApiUrlKey is the http endpoint of the remote explorer index
	ApiUrlKey = "API_URL"
	// WsUrlKey is the websocket endpoint delivering live push events
	WsUrlKey = "WS_URL"
	// DatadirKey is the directory holding the badger store
	DatadirKey = "DATADIR"
	// LogLevelKey ...
	LogLevelKey = "LOG_LEVEL"
	// ChainIdKey is the EIP155 chain id payments are signed for
	ChainIdKey = "CHAIN_ID"
	// SyncDebounceMsKey is the metadata sync coalescing window
	SyncDebounceMsKey = "SYNC_DEBOUNCE_MS"
	// GasPriceGweiKey is the default gas price of outgoing payments
	GasPriceGweiKey = "GAS_PRICE_GWEI"
	// GasLimitKey is the default gas limit of outgoing payments
	GasLimitKey = "GAS_LIMIT"
	// ExplorerRequestsPerSecondKey throttles calls to the remote index
	ExplorerRequestsPerSecondKey = "EXPLORER_REQUESTS_PER_SECOND"
)

var vip *viper.Viper

func init() {
	vip = viper.New()
	vip.SetEnvPrefix("KESTREL")
	vip.AutomaticEnv()

	vip.SetDefault(ApiUrlKey, "https://api.blockchain.info")
	vip.SetDefault(WsUrlKey, "wss://ws.blockchain.info/eth/inv")
	vip.SetDefault(DatadirKey, btcutil.AppDataDir("kestreld", false))
	vip.SetDefault(LogLevelKey, int(log.InfoLevel))
	vip.SetDefault(ChainIdKey, 1)
	vip.SetDefault(SyncDebounceMsKey, 250)
	vip.SetDefault(GasPriceGweiKey, 21)
	vip.SetDefault(GasLimitKey, 21000)
	vip.SetDefault(ExplorerRequestsPerSecondKey, 10)

	if err := validate(); err != nil {
		log.Fatalf("invalid config: %s", err)
	}
	if err := initDatadir(); err != nil {
		log.Fatalf("config: error while creating datadir: %s", err)
	}
}

// GetString ...
func GetString(key string) string {
	return vip.GetString(key)
}

// GetInt ...
func GetInt(key string) int {
	return vip.GetInt(key)
}

// GetDuration reads a millisecond amount for the given key.
func GetDuration(key string) time.Duration {
	return time.Duration(vip.GetInt(key)) * time.Millisecond
}

// GetDatadir ...
func GetDatadir() string {
	return filepath.Clean(vip.GetString(DatadirKey))
}

func validate() error {
	if len(vip.GetString(ApiUrlKey)) <= 0 {
		return fmt.Errorf("%s must not be empty", ApiUrlKey)
	}
	if vip.GetInt(ChainIdKey) <= 0 {
		return fmt.Errorf("%s must be a positive number", ChainIdKey)
	}
	if vip.GetInt(SyncDebounceMsKey) <= 0 {
		return fmt.Errorf("%s must be a positive number", SyncDebounceMsKey)
	}
	if vip.GetInt(GasPriceGweiKey) <= 0 {
		return fmt.Errorf("%s must be a positive number", GasPriceGweiKey)
	}
	if vip.GetInt(GasLimitKey) <= 0 {
		return fmt.Errorf("%s must be a positive number", GasLimitKey)
	}
	if vip.GetInt(ExplorerRequestsPerSecondKey) <= 0 {
		return fmt.Errorf(
			"%s must be a positive number", ExplorerRequestsPerSecondKey,
		)
	}
	return nil
}

func initDatadir() error {
	return makeDirectoryIfNotExists(GetDatadir())
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}
