package domain

import "context"

//go:generate go tool mockgen -destination=./mocks/application_mock.go -package=mocks . Application

// Application はデコード済みのメッセージから操作指示を決める判断層です。
// 送信すべきコマンドがなければ nil を返します。
type Application interface {
	Handle(ctx context.Context, msg *Message) (*Command, error)
}
