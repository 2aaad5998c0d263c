package install

import (
	"sync"

	"github.com/mmrzaf/forumsetup/internal/logging"
)

type MessageLevel string

const (
	MessageWarning MessageLevel = "warning"
	MessageError   MessageLevel = "error"
)

// Message is a user-visible installer notice identified by a language key.
type Message struct {
	Level  MessageLevel `json:"level" yaml:"level"`
	Key    string       `json:"key" yaml:"key"`
	Detail string       `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// Messages collects notices for the front end and mirrors them to the log.
type Messages struct {
	mu     sync.Mutex
	items  []Message
	logger *logging.Logger
}

func NewMessages(logger *logging.Logger) *Messages {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Messages{logger: logger.WithComponent("installer")}
}

func (m *Messages) AddError(key, detail string) {
	m.add(Message{Level: MessageError, Key: key, Detail: detail})
	m.logger.Errorw("installer.message", map[string]any{"key": key, "detail": detail})
}

func (m *Messages) AddWarning(key, detail string) {
	m.add(Message{Level: MessageWarning, Key: key, Detail: detail})
	m.logger.Warnw("installer.message", map[string]any{"key": key, "detail": detail})
}

func (m *Messages) add(msg Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, msg)
}

func (m *Messages) All() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.items...)
}

// Count returns how many messages carry key.
func (m *Messages) Count(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, msg := range m.items {
		if msg.Key == key {
			n++
		}
	}
	return n
}
