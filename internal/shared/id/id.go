// Package id provides identifier generation for the desktop backend.
//
// Session and chat message identifiers are prefixed ULIDs: lexicographically
// sortable, so message ids order the same way the messages were written.
// WebSocket client identifiers are random UUIDs, matching what the browser
// expects for connection tracking.
//
// Window identifiers are not generated here: they are small monotonically
// increasing integers owned by the window manager.
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// SessionID identifies a desktop session
type SessionID string

// MessageID identifies a chat message
type MessageID string

// ClientID identifies a WebSocket client connection
type ClientID string

const (
	SessionPrefix = "sess"
	MessagePrefix = "msg"
	RequestPrefix = "req"
)

// Generator generates monotonic ULIDs
type Generator struct {
	mu      sync.Mutex
	entropy io.Reader
	now     func() time.Time
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the singleton generator instance
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a generator with cryptographically secure entropy
func NewGenerator() *Generator {
	return NewGeneratorWithEntropy(rand.Reader, time.Now)
}

// NewGeneratorWithEntropy creates a generator with a custom entropy source and
// time function, for deterministic tests
func NewGeneratorWithEntropy(entropy io.Reader, now func() time.Time) *Generator {
	return &Generator{
		entropy: ulid.Monotonic(entropy, 0),
		now:     now,
	}
}

// Generate creates a new ULID, strictly greater than the previous one
// generated in the same millisecond
func (g *Generator) Generate() ulid.ULID {
	g.mu.Lock()
	defer g.mu.Unlock()

	return ulid.MustNew(ulid.Timestamp(g.now()), g.entropy)
}

// GenerateWithPrefix creates a prefixed ULID string
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.Generate().String())
}

// NewSessionID generates a new session ID
func NewSessionID() SessionID {
	return SessionID(Default().GenerateWithPrefix(SessionPrefix))
}

// NewMessageID generates a new chat message ID
func NewMessageID() MessageID {
	return MessageID(Default().GenerateWithPrefix(MessagePrefix))
}

// NewRequestID generates an identifier for an HTTP or gRPC request
func NewRequestID() string {
	return Default().GenerateWithPrefix(RequestPrefix)
}

// NewClientID generates a new WebSocket client ID
func NewClientID() ClientID {
	return ClientID(uuid.New().String())
}

func (id SessionID) String() string { return string(id) }
func (id MessageID) String() string { return string(id) }
func (id ClientID) String() string  { return string(id) }

// Timestamp extracts the creation time from a prefixed or bare ULID
func Timestamp(id string) (time.Time, error) {
	if i := strings.LastIndex(id, "_"); i >= 0 {
		id = id[i+1:]
	}
	parsed, err := ulid.Parse(id)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(parsed.Time()), nil
}
