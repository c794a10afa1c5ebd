package broker

import "log"

// KeyHeader carries the event type alongside the payload.
const KeyHeader = "Event-Type"

type Message struct {
	Subject string
	Key     string
	Data    []byte
}

type Handler func(Message)

type Publisher interface {
	Publish(subject, key string, data []byte) error
}

type Subscriber interface {
	// Subscribe registers handler for subject (wildcards allowed) and returns an unsubscribe func.
	Subscribe(subject string, handler Handler) (func(), error)
}

type Broker interface {
	Publisher
	Subscriber
	Close()
}

// New connects to NATS at url. An empty url, or a failed connection, yields an
// in-process broker so a single instance still delivers realtime events.
func New(url string) Broker {
	if url == "" {
		log.Println("NATS_URL not set, using in-process event bus")
		return NewLocalBroker()
	}
	nb, err := NewNatsBroker(url)
	if err != nil {
		log.Printf("Failed to connect to NATS at %s: %v", url, err)
		log.Println("Falling back to in-process event bus")
		return NewLocalBroker()
	}
	return nb
}
