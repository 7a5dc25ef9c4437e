package adapterwebsocket

import (
	"bytes"
	"context"

	"github.com/coder/websocket"

	"machinethread/controller/domain"
)

// スナップショットは壁の一覧を含むため、既定の32KiBでは足りないことがある
const readLimit = 1 << 20

// wsTransport は1テキストフレームを1メッセージとして扱います。
type wsTransport struct {
	conn *websocket.Conn
}

// Dial は url に接続して Transport を返します。
func Dial(ctx context.Context, url string) (domain.Transport, error) {
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return NewTransportFrom(conn), nil
}

func NewTransportFrom(conn *websocket.Conn) domain.Transport {
	conn.SetReadLimit(readLimit)
	return &wsTransport{conn: conn}
}

// Read は1フレームを読み、末尾の改行を取り除いて返します。
func (t *wsTransport) Read(ctx context.Context) ([]byte, error) {
	_, data, err := t.conn.Read(ctx)
	if err != nil {
		return nil, err
	}
	return bytes.TrimRight(data, "\r\n"), nil
}

func (t *wsTransport) Write(ctx context.Context, data []byte) error {
	return t.conn.Write(ctx, websocket.MessageText, data)
}

func (t *wsTransport) Close(code int32, reason string) error {
	return t.conn.Close(websocket.StatusCode(code), reason)
}
