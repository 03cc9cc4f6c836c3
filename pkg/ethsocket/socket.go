package ethsocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

const (
	eventQueueMaxSize = 100
	reconnectDelay    = 5 * time.Second
)

// Service is the live-update push channel of the wallet. Subscriptions are
// remembered so they are re-established after a reconnect without ever being
// duplicated on a live connection. The event channel has a single consumer
// per wallet.
type Service interface {
	Connect() error
	SubscribeToBlocks()
	SubscribeToAccount(address string)
	Events() <-chan Event
	Close()
}

type subscribeMsg struct {
	Op      string `json:"op"`
	Account string `json:"account,omitempty"`
}

type pushMsg struct {
	Op      string `json:"op"`
	Number  uint64 `json:"number,omitempty"`
	Address string `json:"address,omitempty"`
	TxHash  string `json:"txHash,omitempty"`
}

type ethSocket struct {
	url  string
	conn *websocket.Conn

	mutex        *sync.Mutex
	blocks       bool
	accounts     map[string]struct{}
	sentBlocks   bool
	sentAccounts map[string]struct{}
	eventChan    chan Event
	closed       bool
	closeChan    chan struct{}
}

// NewService returns a Service that connects to the given websocket endpoint.
func NewService(wsURL string) Service {
	return &ethSocket{
		url:          wsURL,
		mutex:        &sync.Mutex{},
		accounts:     map[string]struct{}{},
		sentAccounts: map[string]struct{}{},
		eventChan:    make(chan Event, eventQueueMaxSize),
		closeChan:    make(chan struct{}),
	}
}

// Connect dials the endpoint, flushes pending subscriptions and starts the
// read loop. Reconnection is handled internally until Close is called.
func (s *ethSocket) Connect() error {
	conn, _, err := websocket.DefaultDialer.Dial(s.url, nil)
	if err != nil {
		return err
	}

	s.mutex.Lock()
	s.conn = conn
	s.sentBlocks = false
	s.sentAccounts = map[string]struct{}{}
	s.mutex.Unlock()

	s.flushSubscriptions()
	go s.readLoop(conn)
	return nil
}

func (s *ethSocket) SubscribeToBlocks() {
	s.mutex.Lock()
	s.blocks = true
	s.mutex.Unlock()
	s.flushSubscriptions()
}

func (s *ethSocket) SubscribeToAccount(address string) {
	s.mutex.Lock()
	s.accounts[address] = struct{}{}
	s.mutex.Unlock()
	s.flushSubscriptions()
}

func (s *ethSocket) Events() <-chan Event {
	return s.eventChan
}

func (s *ethSocket) Close() {
	s.mutex.Lock()
	if s.closed {
		s.mutex.Unlock()
		return
	}
	s.closed = true
	close(s.closeChan)
	conn := s.conn
	s.mutex.Unlock()

	if conn != nil {
		conn.Close()
	}
	// sent outside the lock so a full queue cannot block the other methods
	s.eventChan <- QuitEvent{}
}

// flushSubscriptions sends every wanted subscription that has not been sent
// on the current connection yet.
func (s *ethSocket) flushSubscriptions() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.conn == nil {
		return
	}

	if s.blocks && !s.sentBlocks {
		if err := s.conn.WriteJSON(subscribeMsg{Op: "block_sub"}); err != nil {
			log.WithError(err).Warn("failed to subscribe to blocks")
			return
		}
		s.sentBlocks = true
	}
	for addr := range s.accounts {
		if _, ok := s.sentAccounts[addr]; ok {
			continue
		}
		msg := subscribeMsg{Op: "account_sub", Account: addr}
		if err := s.conn.WriteJSON(msg); err != nil {
			log.WithError(err).Warnf("failed to subscribe to account %s", addr)
			return
		}
		s.sentAccounts[addr] = struct{}{}
	}
}

func (s *ethSocket) readLoop(conn *websocket.Conn) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			s.mutex.Lock()
			closed := s.closed
			s.mutex.Unlock()
			if closed {
				return
			}
			log.WithError(err).Debug("socket read failed, reconnecting")
			s.reconnect()
			return
		}

		var msg pushMsg
		if err := json.Unmarshal(raw, &msg); err != nil {
			log.WithError(err).Debug("skipping malformed push message")
			continue
		}

		switch msg.Op {
		case "block":
			s.eventChan <- BlockEvent{Number: msg.Number}
		case "account_tx":
			s.eventChan <- AccountEvent{Address: msg.Address, TxHash: msg.TxHash}
		}
	}
}

func (s *ethSocket) reconnect() {
	for {
		select {
		case <-s.closeChan:
			return
		case <-time.After(reconnectDelay):
		}

		if err := s.Connect(); err != nil {
			log.WithError(err).Debug("reconnect attempt failed")
			continue
		}
		return
	}
}
