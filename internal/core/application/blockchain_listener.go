package application

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/kestrel-wallet/kestreld/pkg/ethsocket"
)

// BlockchainListener consumes the live-update push events and drives the
// same refresh path a manual fetch would.
type BlockchainListener interface {
	ObserveBlockchain()
}

type blockchainListener struct {
	socketSvc ethsocket.Service
	walletSvc WalletService
}

// NewBlockchainListener returns a listener wired to the given socket and
// wallet services.
func NewBlockchainListener(
	socketSvc ethsocket.Service, walletSvc WalletService,
) BlockchainListener {
	return &blockchainListener{
		socketSvc: socketSvc,
		walletSvc: walletSvc,
	}
}

// ObserveBlockchain starts consuming push events until the socket service is
// closed.
func (b *blockchainListener) ObserveBlockchain() {
	go b.listenToEvents()
}

func (b *blockchainListener) listenToEvents() {
	for event := range b.socketSvc.Events() {
		switch e := event.(type) {
		case ethsocket.BlockEvent:
			log.Debugf("blockchain listener: new block %d", e.Number)
			b.refresh()
		case ethsocket.AccountEvent:
			log.Debugf(
				"blockchain listener: activity for account %s (tx %s)",
				e.Address, e.TxHash,
			)
			b.refresh()
		case ethsocket.QuitEvent:
			log.Debug("blockchain listener: stopped")
			return
		}
	}
}

func (b *blockchainListener) refresh() {
	if err := b.walletSvc.RefreshWalletState(context.Background()); err != nil {
		log.WithError(err).Warn("blockchain listener: failed to refresh wallet")
	}
}
