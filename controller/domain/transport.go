package domain

import (
	"context"
)

//go:generate go tool mockgen -destination=./mocks/transport_mock.go -package=mocks . Transport

// Transport はエンドポイントが依存するI/O境界です。
// Read は1メッセージ（1行）を返し、Write は1メッセージを送ります。フレーミングは実装側の責務です。
type Transport interface {
	Read(ctx context.Context) (data []byte, err error)
	Write(ctx context.Context, data []byte) error
	Close(code int32, reason string) error
}
