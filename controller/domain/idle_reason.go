package domain

import (
	"fmt"
	"strings"
)

// IdleReason はコントローラが止まって見える理由のビット集合です。
type IdleReason uint8

const (
	IdleNone  IdleReason = 0
	IdleRead  IdleReason = 1 << 0 // スナップショットが届いていない
	IdleWrite IdleReason = 1 << 1 // コマンドを送っていない（ロビー中は正常）

	IdleDisabled IdleReason = 1 << 7
)

var idleReasonNames = []struct {
	bit  IdleReason
	name string
}{
	{IdleRead, "read"},
	{IdleWrite, "write"},
}

func (r IdleReason) Has(x IdleReason) bool { return r&x != 0 }

// Stalled は受信が途絶えているかどうかを返します。送信側の沈黙だけでは止まったと見なしません。
func (r IdleReason) Stalled() bool {
	return r.Has(IdleRead)
}

func (r IdleReason) String() string {
	switch r {
	case IdleNone:
		return "none"
	case IdleDisabled:
		return "disabled"
	}
	var names []string
	for _, n := range idleReasonNames {
		if r.Has(n.bit) {
			names = append(names, n.name)
		}
	}
	if len(names) == 0 {
		return fmt.Sprintf("unknown(%d)", uint8(r))
	}
	return strings.Join(names, "|")
}
