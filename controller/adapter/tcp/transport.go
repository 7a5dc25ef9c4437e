package adaptertcp

import (
	"bufio"
	"bytes"
	"context"
	"net"
	"time"

	"machinethread/controller/domain"
)

// tcpTransport は1行1メッセージの改行区切りでやりとりします。
type tcpTransport struct {
	conn   net.Conn
	reader *bufio.Reader
}

func Dial(ctx context.Context, addr string) (domain.Transport, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	return NewTransportFrom(conn), nil
}

func NewTransportFrom(conn net.Conn) domain.Transport {
	return &tcpTransport{conn: conn, reader: bufio.NewReader(conn)}
}

// Read は改行までを1メッセージとして返します。改行文字は含みません。
func (t *tcpTransport) Read(ctx context.Context) ([]byte, error) {
	stop := context.AfterFunc(ctx, func() {
		_ = t.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	line, err := t.reader.ReadBytes('\n')
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	return bytes.TrimRight(line, "\r\n"), nil
}

func (t *tcpTransport) Write(ctx context.Context, data []byte) error {
	stop := context.AfterFunc(ctx, func() {
		_ = t.conn.SetWriteDeadline(time.Now())
	})
	defer stop()

	buf := make([]byte, 0, len(data)+1)
	buf = append(buf, data...)
	buf = append(buf, '\n')
	if _, err := t.conn.Write(buf); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

// Close は接続を閉じます。TCP にはクローズコードがないため code と reason は使いません。
func (t *tcpTransport) Close(code int32, reason string) error {
	return t.conn.Close()
}
