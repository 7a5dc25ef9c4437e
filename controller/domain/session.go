package domain

import (
	"math"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Session はコントローラ1接続ぶんの論理的な状態を表す構造体です。
type Session struct {
	id   string
	name string

	// activity
	lastRead  atomic.Int64
	lastWrite atomic.Int64
	tickRate  atomic.Uint64 // math.Float64bits

	// counters
	received  atomic.Uint64
	processed atomic.Uint64
	dropped   atomic.Uint64

	// lifecycle
	closed atomic.Bool
}

// SessionStats は Session の読み取り専用スナップショットです。
type SessionStats struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Received  uint64    `json:"received"`
	Processed uint64    `json:"processed"`
	Dropped   uint64    `json:"dropped"`
	TickRate  float64   `json:"tick_rate"`
	LastRead  time.Time `json:"last_read"`
	LastWrite time.Time `json:"last_write"`
	Closed    bool      `json:"closed"`
}

func NewSession(name string) *Session {
	s := &Session{
		id:   uuid.NewString(),
		name: name,
	}
	now := time.Now().UnixNano()
	s.lastRead.Store(now)
	s.lastWrite.Store(now)
	return s
}

func (s *Session) ID() string   { return s.id }
func (s *Session) Name() string { return s.name }

// TouchRead は受信時刻を更新し、前回受信からの間隔で求めた tick レートを返します。
// 最初の受信では間隔が定まらないため ok は false です。
func (s *Session) TouchRead(now time.Time) (rate float64, ok bool) {
	prev := s.lastRead.Swap(now.UnixNano())
	if s.received.Add(1) == 1 {
		return 0, false
	}
	elapsed := now.Sub(unixNanoToTime(prev)).Seconds()
	if elapsed <= 0 {
		return s.TickRate(), false
	}
	// 小数第1位で切り捨て
	rate = math.Floor(10.0/elapsed) / 10.0
	s.tickRate.Store(math.Float64bits(rate))
	return rate, true
}

func (s *Session) TouchWrite() {
	s.lastWrite.Store(time.Now().UnixNano())
}

func (s *Session) MarkProcessed() { s.processed.Add(1) }
func (s *Session) MarkDropped()   { s.dropped.Add(1) }

func (s *Session) TickRate() float64 {
	return math.Float64frombits(s.tickRate.Load())
}

func (s *Session) Close() bool {
	return s.closed.CompareAndSwap(false, true)
}

func (s *Session) IsClosed() bool {
	return s.closed.Load()
}

func (s *Session) IsIdle(timeout time.Duration) (bool, IdleReason) {
	if timeout <= 0 {
		return false, IdleDisabled
	}
	var reason IdleReason
	if s.IsReadIdle(timeout) {
		reason |= IdleRead
	}
	if s.IsWriteIdle(timeout) {
		reason |= IdleWrite
	}
	return reason != IdleNone, reason
}

func (s *Session) IsReadIdle(timeout time.Duration) bool {
	return isIdleSince(unixNanoToTime(s.lastRead.Load()), timeout)
}

func (s *Session) IsWriteIdle(timeout time.Duration) bool {
	return isIdleSince(unixNanoToTime(s.lastWrite.Load()), timeout)
}

func (s *Session) Stats() SessionStats {
	return SessionStats{
		ID:        s.id,
		Name:      s.name,
		Received:  s.received.Load(),
		Processed: s.processed.Load(),
		Dropped:   s.dropped.Load(),
		TickRate:  s.TickRate(),
		LastRead:  unixNanoToTime(s.lastRead.Load()),
		LastWrite: unixNanoToTime(s.lastWrite.Load()),
		Closed:    s.closed.Load(),
	}
}

func isIdleSince(last time.Time, timeout time.Duration) bool {
	return time.Since(last) > timeout
}

func unixNanoToTime(nano int64) time.Time {
	return time.Unix(0, nano)
}
