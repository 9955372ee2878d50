package events

import (
	"sync"

	"go.uber.org/zap"
)

// TopicDocumentIssued is published when the tax authority authorizes a document.
const TopicDocumentIssued = "sri-document-issued"

// DocumentIssued is the payload for TopicDocumentIssued.
type DocumentIssued struct {
	DocumentKind string
	DocumentID   string
	LegalNumber  string
	Environment  string
}

type Handler func(event any)

// Bus is a minimal in-process publish/subscribe bus. Handlers run
// synchronously on the publishing goroutine; they must not block.
type Bus struct {
	mu       sync.RWMutex
	log      *zap.Logger
	handlers map[string][]Handler
}

func NewBus(log *zap.Logger) *Bus {
	return &Bus{
		log:      log.Named("events"),
		handlers: make(map[string][]Handler),
	}
}

func (b *Bus) Subscribe(topic string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[topic] = append(b.handlers[topic], h)
}

func (b *Bus) Publish(topic string, event any) {
	b.mu.RLock()
	handlers := b.handlers[topic]
	b.mu.RUnlock()

	for _, h := range handlers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					b.log.Error("event handler panicked", zap.String("topic", topic), zap.Any("panic", r))
				}
			}()
			h(event)
		}()
	}
}
