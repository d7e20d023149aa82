//go:build windows

package device

import (
	"context"
	"fmt"
	"syscall"
	"time"
	"unsafe"

	"github.com/lxn/win"

	"github.com/ECeternalcat/CO-MP-UT-ER/internal/adapter"
	"github.com/ECeternalcat/CO-MP-UT-ER/internal/adapter/winmsg"
	"github.com/ECeternalcat/CO-MP-UT-ER/internal/event"
)

var (
	user32                           = syscall.NewLazyDLL("user32.dll")
	procRegisterDeviceNotification   = user32.NewProc("RegisterDeviceNotificationW")
	procUnregisterDeviceNotification = user32.NewProc("UnregisterDeviceNotification")

	kernel32                 = syscall.NewLazyDLL("kernel32.dll")
	procGetSystemPowerStatus = kernel32.NewProc("GetSystemPowerStatus")
)

const (
	wmDeviceChange          = 0x0219
	dbtDeviceArrival        = 0x8000
	dbtDeviceRemoveComplete = 0x8004
	dbtDevTypDeviceIface    = 5

	deviceNotifyWindowHandle = 0

	batteryFlagNoBattery = 128
	batteryLifeUnknown   = 255
)

// GUID_DEVINTERFACE_USB_DEVICE
var guidUsbDevice = syscall.GUID{
	Data1: 0xA5DCBF10, Data2: 0x6530, Data3: 0x11D2,
	Data4: [8]byte{0x90, 0x1F, 0x00, 0xC0, 0x4F, 0xB9, 0x51, 0xED},
}

// DEV_BROADCAST_DEVICEINTERFACE_W без хвостовой строки имени
type devBroadcastDeviceInterface struct {
	Size       uint32
	DeviceType uint32
	Reserved   uint32
	ClassGUID  syscall.GUID
	Name       [1]uint16
}

// DEV_BROADCAST_HDR
type devBroadcastHdr struct {
	Size       uint32
	DeviceType uint32
	Reserved   uint32
}

type systemPowerStatus struct {
	ACLineStatus        byte
	BatteryFlag         byte
	BatteryLifePercent  byte
	SystemStatusFlag    byte
	BatteryLifeTime     uint32
	BatteryFullLifeTime uint32
}

// Run слушает USB-хотплаг на скрытом окне и параллельно опрашивает статус
// батареи; завершается по отмене контекста.
func (a *Adapter) Run(ctx context.Context) error {
	// опрос батареи живёт ровно столько, сколько сам адаптер: при отказе
	// регистрации USB канал деградирует целиком, без осиротевшего опросчика
	pollCtx, cancelPoll := context.WithCancel(ctx)
	defer cancelPoll()
	go a.pollBattery(pollCtx)

	setup := func(hwnd win.HWND) (func(), error) {
		filter := devBroadcastDeviceInterface{
			DeviceType: dbtDevTypDeviceIface,
			ClassGUID:  guidUsbDevice,
		}
		filter.Size = uint32(unsafe.Sizeof(filter))
		h, _, _ := procRegisterDeviceNotification.Call(
			uintptr(hwnd),
			uintptr(unsafe.Pointer(&filter)),
			deviceNotifyWindowHandle,
		)
		if h == 0 {
			return nil, fmt.Errorf("%w: usb device notification", adapter.ErrRegistration)
		}
		a.logger.Infow("USB device notifications registered")
		return func() { _, _, _ = procUnregisterDeviceNotification.Call(h) }, nil
	}

	handler := func(_ win.HWND, msg uint32, wParam, lParam uintptr) bool {
		if msg != wmDeviceChange {
			return false
		}
		if wParam != dbtDeviceArrival && wParam != dbtDeviceRemoveComplete {
			return false
		}
		if lParam == 0 {
			return false
		}
		hdr := (*devBroadcastHdr)(unsafe.Pointer(lParam))
		if hdr.DeviceType != dbtDevTypDeviceIface {
			// другой тип широковещания — не наш класс устройства
			return false
		}
		action := event.ActionInserted
		if wParam == dbtDeviceRemoveComplete {
			action = event.ActionRemoved
		}
		a.bus.Publish(event.NewDeviceChanged(event.ClassUsb, action, event.LevelUnknown))
		return true
	}

	return winmsg.Run(ctx, "ComputerDeviceWndClass", setup, handler)
}

// pollBattery превращает снимки GetSystemPowerStatus в события вставки,
// извлечения и изменения уровня заряда батареи.
func (a *Adapter) pollBattery(ctx context.Context) {
	t := time.NewTicker(a.pollInterval)
	defer t.Stop()
	for {
		present, level, ok := readPowerStatus()
		if ok {
			for _, ev := range a.battery.update(present, level) {
				a.bus.Publish(ev)
			}
		} else {
			// одиночный сбой опроса не событие; просто пропускаем тик
			a.logger.Debugw("GetSystemPowerStatus failed, skipping tick")
		}
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}

func readPowerStatus() (present bool, level int, ok bool) {
	var sps systemPowerStatus
	r, _, _ := procGetSystemPowerStatus.Call(uintptr(unsafe.Pointer(&sps)))
	if r == 0 {
		return false, event.LevelUnknown, false
	}
	present = sps.BatteryFlag&batteryFlagNoBattery == 0 && sps.BatteryFlag != batteryLifeUnknown
	level = event.LevelUnknown
	if sps.BatteryLifePercent != batteryLifeUnknown {
		level = int(sps.BatteryLifePercent)
	}
	return present, level, true
}
