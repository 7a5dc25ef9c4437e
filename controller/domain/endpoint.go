package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

var (
	// ErrTransportFault は接続断や読み書き失敗など、そのエンドポイントにとって致命的なI/Oエラーです。
	ErrTransportFault = errors.New("transport fault")
	// ErrEndpointInit はエンドポイントの初期化に失敗した場合に返されるエラーです。
	ErrEndpointInit = errors.New("failed to initialize controller endpoint")
)

// 受信間隔から求めた tick レートがこの範囲を外れると警告します。
const (
	MinStableTickRate = 10.0
	MaxStableTickRate = 20.0
)

// Endpoint はコントローラ1接続を駆動します。
// 受信ループは1メッセージずつ読んで Mailbox に置き、判断ループは常に最新の1件だけを処理します。
// 判断が追いつかない間に届いたスナップショットは捨てられます。
type Endpoint struct {
	session   *Session
	transport Transport
	app       Application
	mailbox   *Mailbox

	// lifecycle
	closeOnce sync.Once
	closed    atomic.Bool
}

func NewEndpoint(session *Session, transport Transport, app Application) (*Endpoint, error) {
	if session == nil {
		return nil, ErrEndpointInit
	}
	if transport == nil {
		return nil, ErrEndpointInit
	}
	if app == nil {
		return nil, ErrEndpointInit
	}
	return &Endpoint{
		session:   session,
		transport: transport,
		app:       app,
		mailbox:   NewMailbox(),
	}, nil
}

func (e *Endpoint) Session() *Session {
	return e.session
}

// Run はハンドシェイクを送り、受信ループと判断ループを起動します。
// 空行でストリームが終わった場合や ctx がキャンセルされた場合は nil を、
// 読み書きに失敗した場合や壊れた行を受け取った場合は ErrTransportFault をラップしたエラーを返します。
// 種類の分からないメッセージは読み飛ばします。
func (e *Endpoint) Run(ctx context.Context) error {
	defer e.close()

	hello, err := EncodeHandshake(e.session.Name())
	if err != nil {
		return fmt.Errorf("encode handshake: %w", err)
	}
	if err := e.transport.Write(ctx, hello); err != nil {
		return fmt.Errorf("%w: handshake: %w", ErrTransportFault, err)
	}
	e.session.TouchWrite()

	eg, ctx := errgroup.WithContext(ctx)
	// Read が ctx を見ない実装でもブロックを解除できるように、キャンセル時に接続を閉じる
	stop := context.AfterFunc(ctx, e.close)
	defer stop()

	eg.Go(func() error {
		return e.ingestLoop(ctx)
	})
	eg.Go(func() error {
		return e.decisionLoop(ctx)
	})
	return eg.Wait()
}

func (e *Endpoint) ingestLoop(ctx context.Context) error {
	defer e.mailbox.Close()
	for {
		data, err := e.transport.Read(ctx)
		if err != nil {
			if ctx.Err() != nil || e.closed.Load() {
				return nil
			}
			return fmt.Errorf("%w: read: %w", ErrTransportFault, err)
		}

		if IsEndOfStream(data) {
			slog.InfoContext(ctx, "end of stream", "controller", e.session.Name())
			return nil
		}

		rate, ok := e.session.TouchRead(time.Now())
		if ok && (rate < MinStableTickRate || rate > MaxStableTickRate) {
			slog.WarnContext(ctx, "unstable tick rate", "controller", e.session.Name(), "tps", rate)
		}

		// 壊れた行は Mailbox で上書きされる前にここで止める
		if err := CheckWellFormed(data); err != nil {
			return fmt.Errorf("%w: read: %w", ErrTransportFault, err)
		}

		replaced, err := e.mailbox.Put(data)
		if err != nil {
			return nil
		}
		if replaced {
			e.session.MarkDropped()
		}
	}
}

func (e *Endpoint) decisionLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-e.mailbox.Done():
			return nil
		case <-e.mailbox.Ready():
			data, ok := e.mailbox.Take()
			if !ok {
				continue
			}
			if err := e.process(ctx, data); err != nil {
				return err
			}
		}
	}
}

func (e *Endpoint) process(ctx context.Context, data []byte) error {
	msg, err := DecodeMessage(data)
	if err != nil {
		if errors.Is(err, ErrMalformedMessage) {
			return fmt.Errorf("%w: decode: %w", ErrTransportFault, err)
		}
		slog.WarnContext(ctx, "skipping message", "controller", e.session.Name(), "err", err)
		return nil
	}

	cmd, err := e.app.Handle(ctx, msg)
	if err != nil {
		slog.WarnContext(ctx, "application failed to handle message", "controller", e.session.Name(), "err", err)
		return nil
	}
	e.session.MarkProcessed()
	if cmd == nil {
		return nil
	}

	out, err := EncodeCommand(*cmd)
	if err != nil {
		slog.WarnContext(ctx, "failed to encode command", "controller", e.session.Name(), "err", err)
		return nil
	}
	if err := e.transport.Write(ctx, out); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("%w: write: %w", ErrTransportFault, err)
	}
	e.session.TouchWrite()
	return nil
}

// close は接続を閉じます。並行に呼ばれた場合も最初の呼び出しが終わるまで待ちます。
func (e *Endpoint) close() {
	e.closeOnce.Do(func() {
		e.closed.Store(true)
		e.session.Close()
		e.mailbox.Close()
		_ = e.transport.Close(1000, "")
	})
}
