//go:build windows

package sleep

import (
	"context"

	"github.com/lxn/win"

	"github.com/ECeternalcat/CO-MP-UT-ER/internal/adapter/winmsg"
	"github.com/ECeternalcat/CO-MP-UT-ER/internal/event"
)

const (
	wmPowerBroadcast      = 0x0218
	pbtAPMSuspend         = 0x0004
	pbtAPMResumeSuspend   = 0x0007
	pbtAPMResumeAutomatic = 0x0012
)

// Run слушает WM_POWERBROADCAST на скрытом окне. Регистрации не требуется:
// suspend/resume рассылаются всем окнам верхнего уровня.
// ОС может прислать оба варианта resume подряд; дубликат гасится монитором.
func (a *Adapter) Run(ctx context.Context) error {
	a.logger.Infow("Sleep transition notifications registered")
	handler := func(_ win.HWND, msg uint32, wParam, _ uintptr) bool {
		if msg != wmPowerBroadcast {
			return false
		}
		switch wParam {
		case pbtAPMSuspend:
			a.bus.Publish(event.NewSleepTransition(event.PhaseEntering))
		case pbtAPMResumeAutomatic, pbtAPMResumeSuspend:
			a.bus.Publish(event.NewSleepTransition(event.PhaseResuming))
		default:
			return false
		}
		return true
	}
	return winmsg.Run(ctx, "ComputerSleepWndClass", nil, handler)
}
