// CarMatch - Vehicle Recommendation and Reliability Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carmatch

/*
Package session keeps short conversational histories keyed by session id.

A session is created on first use and holds an ordered list of user and
assistant messages. Sessions that stay idle longer than the configured TTL are
removed by Sweep, which the server runs periodically under its supervisor.

The store is a fixed number of shards, each a map guarded by its own RWMutex,
so unrelated sessions never contend on the same lock.
*/
package session

import (
	"errors"
	"hash/fnv"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/carmatch/internal/metrics"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Defaults.
const (
	DefaultShards      = 16
	DefaultIdleTTL     = 2 * time.Hour
	DefaultMaxMessages = 200
)

var (
	// ErrInvalidID is returned for an empty session id.
	ErrInvalidID = errors.New("session id is required")

	// ErrInvalidRole is returned for a role other than user or assistant.
	ErrInvalidRole = errors.New("role must be user or assistant")

	// ErrEmptyContent is returned when appending an empty message.
	ErrEmptyContent = errors.New("message content is required")
)

// Message is one entry of a session history.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Info describes a session without its messages.
type Info struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	LastActive time.Time `json:"last_active"`
	Messages   int       `json:"messages"`
}

type session struct {
	id         string
	createdAt  time.Time
	lastActive time.Time
	messages   []Message
}

func (s *session) info() Info {
	return Info{ID: s.id, CreatedAt: s.createdAt, LastActive: s.lastActive, Messages: len(s.messages)}
}

type shard struct {
	mu       sync.RWMutex
	sessions map[string]*session
}

// Options configures a Store. Zero fields take the package defaults.
type Options struct {
	Shards      int
	IdleTTL     time.Duration
	MaxMessages int
	Now         func() time.Time
}

// Store holds sessions in memory. It is safe for concurrent use.
type Store struct {
	shards      []*shard
	idleTTL     time.Duration
	maxMessages int
	now         func() time.Time
	count       atomic.Int64
}

// NewStore creates an empty store.
func NewStore(opts Options) *Store {
	if opts.Shards <= 0 {
		opts.Shards = DefaultShards
	}
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = DefaultIdleTTL
	}
	if opts.MaxMessages <= 0 {
		opts.MaxMessages = DefaultMaxMessages
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Store{
		shards:      make([]*shard, opts.Shards),
		idleTTL:     opts.IdleTTL,
		maxMessages: opts.MaxMessages,
		now:         opts.Now,
	}
	for i := range s.shards {
		s.shards[i] = &shard{sessions: make(map[string]*session)}
	}
	return s
}

// IdleTTL returns how long a session may stay idle before Sweep removes it.
func (s *Store) IdleTTL() time.Duration {
	return s.idleTTL
}

func (s *Store) shardFor(id string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return s.shards[h.Sum32()%uint32(len(s.shards))]
}

// Create starts a session with a fresh random id.
func (s *Store) Create() Info {
	info, _ := s.GetOrCreate(uuid.NewString())
	return info
}

// GetOrCreate returns the session with id, creating it if needed.
func (s *Store) GetOrCreate(id string) (Info, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Info{}, ErrInvalidID
	}

	sh := s.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	return s.getOrCreateLocked(sh, id).info(), nil
}

// getOrCreateLocked returns the session for id. Caller must hold sh.mu.
func (s *Store) getOrCreateLocked(sh *shard, id string) *session {
	if sess, ok := sh.sessions[id]; ok {
		return sess
	}
	now := s.now()
	sess := &session{id: id, createdAt: now, lastActive: now}
	sh.sessions[id] = sess
	metrics.SetActiveSessions(int(s.count.Add(1)))
	return sess
}

// Append adds a message to the session, creating the session if needed.
// Histories are capped at the configured maximum; the oldest messages are
// dropped first.
func (s *Store) Append(id, role, content string) (Info, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Info{}, ErrInvalidID
	}
	if role != RoleUser && role != RoleAssistant {
		return Info{}, ErrInvalidRole
	}
	if strings.TrimSpace(content) == "" {
		return Info{}, ErrEmptyContent
	}

	sh := s.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	sess := s.getOrCreateLocked(sh, id)
	now := s.now()
	sess.messages = append(sess.messages, Message{Role: role, Content: content, CreatedAt: now})
	if over := len(sess.messages) - s.maxMessages; over > 0 {
		sess.messages = slices.Delete(sess.messages, 0, over)
	}
	sess.lastActive = now
	return sess.info(), nil
}

// History returns a copy of the session's messages in order. An unknown
// session has an empty history.
func (s *Store) History(id string) []Message {
	sh := s.shardFor(strings.TrimSpace(id))
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	sess, ok := sh.sessions[strings.TrimSpace(id)]
	if !ok {
		return []Message{}
	}
	return slices.Clone(sess.messages)
}

// Reset removes the session. It reports whether the session existed.
func (s *Store) Reset(id string) bool {
	id = strings.TrimSpace(id)
	sh := s.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	if _, ok := sh.sessions[id]; !ok {
		return false
	}
	delete(sh.sessions, id)
	metrics.SetActiveSessions(int(s.count.Add(-1)))
	return true
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	return int(s.count.Load())
}

// Sweep removes sessions idle for longer than the TTL and returns how many
// were removed.
func (s *Store) Sweep() int {
	cutoff := s.now().Add(-s.idleTTL)
	removed := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		for id, sess := range sh.sessions {
			if sess.lastActive.Before(cutoff) {
				delete(sh.sessions, id)
				removed++
			}
		}
		sh.mu.Unlock()
	}
	if removed > 0 {
		metrics.SetActiveSessions(int(s.count.Add(int64(-removed))))
	}
	return removed
}
