package eventpubsub

import (
	"sync"

	"github.com/asaskevich/EventBus"
	log "github.com/sirupsen/logrus"
)

var (
	bus EventBus.Bus
	mu  sync.RWMutex
)

func Init() {
	mu.Lock()
	defer mu.Unlock()

	bus = EventBus.New()
}

func getBus() EventBus.Bus {
	mu.RLock()
	defer mu.RUnlock()

	return bus
}

// Publish is a no-op until Init has been called.
func Publish(topic string, event interface{}) {
	if b := getBus(); b != nil {
		b.Publish(topic, event)
	}
}

func Subscribe(topic string, callbackFn interface{}) error {
	b := getBus()
	if b == nil {
		Init()
		b = getBus()
	}

	if err := b.SubscribeAsync(topic, callbackFn, false); err != nil {
		return err
	}

	log.Debugf("Subscribed to topic %s", topic)
	return nil
}

func Unsubscribe(topic string, callbackFn interface{}) error {
	b := getBus()
	if b == nil {
		return nil
	}

	return b.Unsubscribe(topic, callbackFn)
}

// WaitAsync blocks until every async subscriber has handled what was published.
func WaitAsync() {
	if b := getBus(); b != nil {
		b.WaitAsync()
	}
}
