package ethsocket

const (
	// BlockSignal is emitted when a new block header is pushed.
	BlockSignal EventType = iota
	// AccountSignal is emitted when activity is pushed for a subscribed
	// account address.
	AccountSignal
	// QuitSignal is emitted once when the service is closed.
	QuitSignal
)

// EventType ...
type EventType int

func (et EventType) String() string {
	switch et {
	case BlockSignal:
		return "BlockSignal"
	case AccountSignal:
		return "AccountSignal"
	case QuitSignal:
		return "QuitSignal"
	default:
		return "Unknown"
	}
}

// Event is emitted through the service channel for every push message.
type Event interface {
	Type() EventType
}

// BlockEvent carries a pushed block height.
type BlockEvent struct {
	Number uint64
}

// Type ...
func (b BlockEvent) Type() EventType {
	return BlockSignal
}

// AccountEvent carries pushed activity of a subscribed address.
type AccountEvent struct {
	Address string
	TxHash  string
}

// Type ...
func (a AccountEvent) Type() EventType {
	return AccountSignal
}

// QuitEvent ...
type QuitEvent struct{}

// Type ...
func (q QuitEvent) Type() EventType {
	return QuitSignal
}
