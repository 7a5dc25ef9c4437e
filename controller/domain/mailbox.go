package domain

import (
	"errors"
	"sync"
)

var ErrMailboxClosed = errors.New("mailbox is closed")

// Mailbox は受信ループと判断ループの間で最新メッセージだけを受け渡す1スロットの箱です。
// Put は未取得の値を上書きし、Take は値を取り出して空にします。キューイングはしません。
type Mailbox struct {
	mu      sync.Mutex
	latest  []byte
	pending bool
	closed  bool

	ready chan struct{} // 容量1: 値が入ったことの通知
	done  chan struct{}
}

func NewMailbox() *Mailbox {
	return &Mailbox{
		ready: make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
}

// Put は値を格納します。未取得の値を上書きした場合は replaced が true になります。
func (m *Mailbox) Put(data []byte) (replaced bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return false, ErrMailboxClosed
	}
	replaced = m.pending
	m.latest = data
	m.pending = true
	select {
	case m.ready <- struct{}{}:
	default:
		// 通知は既に積まれている
	}
	return replaced, nil
}

// Take は最新の値を取り出して空にします。値がなければ ok は false です。
func (m *Mailbox) Take() (data []byte, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.pending {
		return nil, false
	}
	data = m.latest
	m.latest = nil
	m.pending = false
	return data, true
}

// Ready は値が格納されたときに通知を受け取るチャネルを返します。
func (m *Mailbox) Ready() <-chan struct{} {
	return m.ready
}

// Done は Close 後にクローズされるチャネルを返します。
func (m *Mailbox) Done() <-chan struct{} {
	return m.done
}

// Close は以降の Put を拒否し、Done を閉じます。複数回呼んでも安全です。
func (m *Mailbox) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	close(m.done)
}
