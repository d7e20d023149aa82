//go:build windows

package power

import (
	"context"
	"fmt"
	"syscall"
	"unsafe"

	"github.com/lxn/win"

	"github.com/ECeternalcat/CO-MP-UT-ER/internal/adapter"
	"github.com/ECeternalcat/CO-MP-UT-ER/internal/adapter/winmsg"
	"github.com/ECeternalcat/CO-MP-UT-ER/internal/event"
)

// Обёртки для функций, которых нет в lxn/win
var (
	user32                          = syscall.NewLazyDLL("user32.dll")
	procRegisterPowerSettingNotif   = user32.NewProc("RegisterPowerSettingNotification")
	procUnregisterPowerSettingNotif = user32.NewProc("UnregisterPowerSettingNotification")
)

const (
	wmPowerBroadcast      = 0x0218
	pbtPowerSettingChange = 0x8013

	deviceNotifyWindowHandle = 0
)

// GUID_ACDC_POWER_SOURCE
var guidACDCPowerSource = syscall.GUID{
	Data1: 0x5D3E9A59, Data2: 0xE9D5, Data3: 0x4B00,
	Data4: [8]byte{0xA6, 0xBD, 0xFF, 0x34, 0xFF, 0x51, 0x65, 0x48},
}

// POWERBROADCAST_SETTING для GUID_ACDC_POWER_SOURCE: Data — один DWORD.
type powerBroadcastSetting struct {
	PowerSetting syscall.GUID
	DataLength   uint32
	Data         uint32
}

// Run регистрирует уведомления AC/DC на скрытом окне и публикует события
// до отмены контекста.
func (a *Adapter) Run(ctx context.Context) error {
	setup := func(hwnd win.HWND) (func(), error) {
		h, _, _ := procRegisterPowerSettingNotif.Call(
			uintptr(hwnd),
			uintptr(unsafe.Pointer(&guidACDCPowerSource)),
			deviceNotifyWindowHandle,
		)
		if h == 0 {
			return nil, fmt.Errorf("%w: power setting notification", adapter.ErrRegistration)
		}
		a.logger.Infow("Power source notifications registered")
		return func() { _, _, _ = procUnregisterPowerSettingNotif.Call(h) }, nil
	}

	handler := func(_ win.HWND, msg uint32, wParam, lParam uintptr) bool {
		if msg != wmPowerBroadcast || wParam != pbtPowerSettingChange {
			return false
		}
		if lParam == 0 {
			// неожиданный пустой payload — событие отбрасываем целиком
			a.logger.Warnw("Power broadcast without payload, dropping")
			return true
		}
		s := (*powerBroadcastSetting)(unsafe.Pointer(lParam))
		if s.PowerSetting != guidACDCPowerSource || s.DataLength < 4 {
			return false
		}
		switch s.Data {
		case 0: // AC
			a.bus.Publish(event.NewPowerChanged(event.SourceAC))
		case 1: // DC
			a.bus.Publish(event.NewPowerChanged(event.SourceBattery))
		default:
			// 2 = UPS/hot — не озвучиваем
		}
		return true
	}

	return winmsg.Run(ctx, "ComputerPowerWndClass", setup, handler)
}
