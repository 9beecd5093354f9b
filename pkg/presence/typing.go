// Package presence implements the ephemeral typing-indicator protocol. A
// Session is owned by one conversation view: it broadcasts the local user's
// typing state over the conversation's realtime channel and mirrors remote
// signals into a displayed set with TTL expiry. Nothing here is persisted;
// the TTL is the only backstop when a remote peer vanishes without sending a
// stop signal.
package presence

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"teeup/pkg/realtime"
)

// EventName is the broadcast event carrying typing signals.
const EventName = "typing"

const (
	defaultRefreshInterval = 1200 * time.Millisecond
	defaultStopDebounce    = 2200 * time.Millisecond
	defaultTTL             = 2500 * time.Millisecond
)

// Signal is the wire payload exchanged between clients.
type Signal struct {
	UserID   string `json:"userId"`
	IsTyping bool   `json:"isTyping"`
}

// Options tunes the protocol timers. Zero values use the production defaults.
type Options struct {
	// RefreshInterval bounds outgoing broadcast volume: while typing, a
	// refreshed true signal is sent at most once per interval.
	RefreshInterval time.Duration
	// StopDebounce is the inactivity window after which a single false
	// signal is sent.
	StopDebounce time.Duration
	// TTL is how long a remote user stays in the typing set without a
	// refreshing signal. It must exceed RefreshInterval, or remote
	// indicators would flicker off between refreshes; smaller values are
	// raised.
	TTL time.Duration
	// OnChange, when set, is invoked with the new typing set after every
	// change. Called without internal locks held.
	OnChange func(userIDs []string)

	now func() time.Time
}

func (o Options) normalized() Options {
	if o.RefreshInterval <= 0 {
		o.RefreshInterval = defaultRefreshInterval
	}
	if o.StopDebounce <= 0 {
		o.StopDebounce = defaultStopDebounce
	}
	if o.TTL <= 0 {
		o.TTL = defaultTTL
	}
	if o.TTL <= o.RefreshInterval {
		o.TTL = 2 * o.RefreshInterval
	}
	if o.now == nil {
		o.now = time.Now
	}
	return o
}

// Session is the per-(conversation, user) typing state machine.
type Session struct {
	ch   realtime.Channel
	self string
	opts Options

	mu        sync.Mutex
	closed    bool
	typing    bool
	lastSend  time.Time
	stopTimer *time.Timer
	expiry    map[string]*time.Timer
	remote    map[string]bool
	unsub     func()
}

// Open subscribes to the conversation channel and returns a live session.
// Close must be called when the view goes away.
func Open(ctx context.Context, ch realtime.Channel, selfUserID string, opts Options) (*Session, error) {
	s := &Session{
		ch:     ch,
		self:   selfUserID,
		opts:   opts.normalized(),
		expiry: make(map[string]*time.Timer),
		remote: make(map[string]bool),
	}
	unsub, err := ch.Subscribe(ctx, s.handleEvent)
	if err != nil {
		return nil, err
	}
	s.unsub = unsub
	return s, nil
}

// TextChanged reports the current input text. Non-empty text keeps the local
// user in the typing state (broadcasting at most once per refresh interval)
// and re-arms the stop debounce; empty text stops immediately.
func (s *Session) TextChanged(ctx context.Context, text string) {
	if strings.TrimSpace(text) == "" {
		s.Stop(ctx)
		return
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	now := s.opts.now()
	send := !s.typing || now.Sub(s.lastSend) >= s.opts.RefreshInterval
	if send {
		s.typing = true
		s.lastSend = now
	}
	if s.stopTimer != nil {
		s.stopTimer.Stop()
	}
	s.stopTimer = time.AfterFunc(s.opts.StopDebounce, func() {
		s.Stop(context.Background())
	})
	s.mu.Unlock()

	if send {
		_ = s.ch.Publish(ctx, EventName, Signal{UserID: s.self, IsTyping: true})
	}
}

// Stop transitions to idle immediately, bypassing the debounce. Used when a
// message is sent, the input is cleared, or the view is hidden. The false
// broadcast is sent only if the local user was typing.
func (s *Session) Stop(ctx context.Context) {
	s.mu.Lock()
	if s.closed || !s.typing {
		s.mu.Unlock()
		return
	}
	s.typing = false
	s.lastSend = time.Time{}
	if s.stopTimer != nil {
		s.stopTimer.Stop()
		s.stopTimer = nil
	}
	s.mu.Unlock()

	_ = s.ch.Publish(ctx, EventName, Signal{UserID: s.self, IsTyping: false})
}

// TypingUserIDs returns the remote users currently shown as typing, sorted.
func (s *Session) TypingUserIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := make([]string, 0, len(s.remote))
	for id := range s.remote {
		res = append(res, id)
	}
	sort.Strings(res)
	return res
}

// Close cancels every timer, sends a final stop if needed and tears down the
// subscription. The session is unusable afterwards.
func (s *Session) Close(ctx context.Context) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	wasTyping := s.typing
	s.typing = false
	if s.stopTimer != nil {
		s.stopTimer.Stop()
		s.stopTimer = nil
	}
	for id, timer := range s.expiry {
		timer.Stop()
		delete(s.expiry, id)
	}
	s.remote = make(map[string]bool)
	unsub := s.unsub
	s.unsub = nil
	s.mu.Unlock()

	if wasTyping {
		_ = s.ch.Publish(ctx, EventName, Signal{UserID: s.self, IsTyping: false})
	}
	if unsub != nil {
		unsub()
	}
}

func (s *Session) handleEvent(e realtime.Event) {
	if e.Name != EventName {
		return
	}
	var sig Signal
	if err := e.Decode(&sig); err != nil || sig.UserID == "" || sig.UserID == s.self {
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	changed := false
	if sig.IsTyping {
		if !s.remote[sig.UserID] {
			s.remote[sig.UserID] = true
			changed = true
		}
		if timer, ok := s.expiry[sig.UserID]; ok {
			timer.Stop()
		}
		s.expiry[sig.UserID] = time.AfterFunc(s.opts.TTL, func() {
			s.expire(sig.UserID)
		})
	} else {
		changed = s.dropLocked(sig.UserID)
	}
	var snapshot []string
	if changed && s.opts.OnChange != nil {
		snapshot = s.typingLocked()
	}
	s.mu.Unlock()

	if changed && s.opts.OnChange != nil {
		s.opts.OnChange(snapshot)
	}
}

// expire fires when no refreshing signal arrived within the TTL.
func (s *Session) expire(userID string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	changed := s.dropLocked(userID)
	var snapshot []string
	if changed && s.opts.OnChange != nil {
		snapshot = s.typingLocked()
	}
	s.mu.Unlock()

	if changed && s.opts.OnChange != nil {
		s.opts.OnChange(snapshot)
	}
}

func (s *Session) dropLocked(userID string) bool {
	if timer, ok := s.expiry[userID]; ok {
		timer.Stop()
		delete(s.expiry, userID)
	}
	if s.remote[userID] {
		delete(s.remote, userID)
		return true
	}
	return false
}

func (s *Session) typingLocked() []string {
	res := make([]string, 0, len(s.remote))
	for id := range s.remote {
		res = append(res, id)
	}
	sort.Strings(res)
	return res
}
