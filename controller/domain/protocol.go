package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ワイヤプロトコルは改行区切りのJSONレコードです。
//
//	controller -> server  {"name": "..."}                       ハンドシェイク (1回)
//	server -> controller  {"gamestate": {...}}                   スナップショット
//	server -> controller  {"lobby": {"timeout": n}}              試合開始前の待機通知
//	controller -> server  {"speed":..,"turn":..,"aim":..,"shoot":0|1|2}
//	空行                                                         ストリーム終了

var (
	ErrMalformedMessage = errors.New("malformed message")
	ErrUnknownMessage   = errors.New("unknown message kind")
	ErrInvalidSegment   = errors.New("invalid segment: expected two points")
)

// Handshake は接続直後に1度だけ送る名乗りメッセージです。
type Handshake struct {
	Name string `json:"name"`
}

// GameState はサーバーから毎tick届くスナップショットです。
// Walls は受信するたびに正として扱います（差分更新はしません）。
type GameState struct {
	Player         Pose               `json:"player"`
	Players        []Pose             `json:"players"`
	Projectiles    []json.RawMessage  `json:"projectiles"`
	Walls          []Segment          `json:"walls"`
	Ranking        map[string]float64 `json:"ranking"`
	RemainingTicks int                `json:"remaining_ticks"`
}

// Lobby は試合開始までの待機時間の通知です。
type Lobby struct {
	Timeout int `json:"timeout"`
}

// Message はサーバーから受信する1レコードです。GameState と Lobby のどちらか一方が入ります。
type Message struct {
	GameState *GameState `json:"gamestate,omitempty"`
	Lobby     *Lobby     `json:"lobby,omitempty"`
}

type wireCommand struct {
	Speed float64  `json:"speed"`
	Turn  float64  `json:"turn"`
	Aim   float64  `json:"aim"`
	Shoot FireMode `json:"shoot"`
}

// IsEndOfStream は受信データが終端を示す空行かどうかを返します。
func IsEndOfStream(data []byte) bool {
	return len(bytes.TrimSpace(data)) == 0
}

// CheckWellFormed は1行が完結した JSON かどうかを確かめます。途中で切れた行は ErrMalformedMessage です。
func CheckWellFormed(data []byte) error {
	if !json.Valid(data) {
		return ErrMalformedMessage
	}
	return nil
}

// DecodeMessage は1行ぶんのデータを Message にデコードします。
func DecodeMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedMessage, err)
	}
	if msg.GameState == nil && msg.Lobby == nil {
		return nil, ErrUnknownMessage
	}
	return &msg, nil
}

// EncodeHandshake はハンドシェイクを1レコードにエンコードします。
func EncodeHandshake(name string) ([]byte, error) {
	return json.Marshal(Handshake{Name: name})
}

// EncodeCommand はコマンドを [-1, 1] に収めてから1レコードにエンコードします。
func EncodeCommand(c Command) ([]byte, error) {
	c = c.Clamped()
	return json.Marshal(wireCommand{Speed: c.Speed, Turn: c.Turn, Aim: c.Aim, Shoot: c.Fire})
}

// UnmarshalJSON は [{"x":..,"y":..},{"x":..,"y":..}] 形式の壁をデコードします。
func (s *Segment) UnmarshalJSON(data []byte) error {
	var pts []Point
	if err := json.Unmarshal(data, &pts); err != nil {
		return err
	}
	if len(pts) < 2 {
		return ErrInvalidSegment
	}
	s.A, s.B = pts[0], pts[1]
	return nil
}

func (s Segment) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]Point{s.A, s.B})
}
