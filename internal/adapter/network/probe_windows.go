//go:build windows

package network

import (
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/ECeternalcat/CO-MP-UT-ER/internal/event"
)

type winProber struct{}

func newProber() prober { return winProber{} }

const ifTypeLoopback = 24

// Active перечисляет адаптеры через GetAdaptersAddresses и выбирает
// активное подключение по приоритету типа интерфейса.
func (winProber) Active() (*Link, error) {
	var size uint32 = 16 * 1024
	var buf []byte
	var err error
	for i := 0; i < 3; i++ {
		buf = make([]byte, size)
		err = windows.GetAdaptersAddresses(
			windows.AF_UNSPEC,
			windows.GAA_FLAG_INCLUDE_PREFIX,
			0,
			(*windows.IpAdapterAddresses)(unsafe.Pointer(&buf[0])),
			&size,
		)
		if err != windows.ERROR_BUFFER_OVERFLOW {
			break
		}
	}
	if err == windows.ERROR_NO_DATA {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var candidates []Link
	for aa := (*windows.IpAdapterAddresses)(unsafe.Pointer(&buf[0])); aa != nil; aa = aa.Next {
		if aa.OperStatus != windows.IfOperStatusUp || aa.IfType == ifTypeLoopback {
			continue
		}
		if aa.FirstUnicastAddress == nil {
			continue
		}
		medium := classify(aa.IfType)
		l := Link{
			Medium: medium,
			Name:   windows.UTF16PtrToString(aa.FriendlyName),
		}
		if medium == event.MediumWiFi {
			l.SSID = currentSSID()
		}
		candidates = append(candidates, l)
	}
	return pick(candidates), nil
}

// SSID активного WiFi-подключения через wlanapi; lxn/win эти функции
// не оборачивает. Любой сбой означает пустой SSID, не ошибку.
var (
	wlanapi                = syscall.NewLazyDLL("wlanapi.dll")
	procWlanOpenHandle     = wlanapi.NewProc("WlanOpenHandle")
	procWlanCloseHandle    = wlanapi.NewProc("WlanCloseHandle")
	procWlanEnumInterfaces = wlanapi.NewProc("WlanEnumInterfaces")
	procWlanQueryInterface = wlanapi.NewProc("WlanQueryInterface")
	procWlanFreeMemory     = wlanapi.NewProc("WlanFreeMemory")
)

const wlanIntfOpcodeCurrentConnection = 7

type wlanInterfaceInfo struct {
	guid        windows.GUID
	description [256]uint16
	state       uint32
}

type wlanInterfaceInfoList struct {
	numberOfItems uint32
	index         uint32
	first         wlanInterfaceInfo
}

type dot11SSID struct {
	length uint32
	ssid   [32]byte
}

type wlanConnectionAttributes struct {
	state       uint32
	mode        uint32
	profileName [256]uint16
	ssid        dot11SSID
	// остаток структуры не нужен
}

func currentSSID() string {
	var handle windows.Handle
	var negotiated uint32
	r, _, _ := procWlanOpenHandle.Call(2, 0, uintptr(unsafe.Pointer(&negotiated)), uintptr(unsafe.Pointer(&handle)))
	if r != 0 {
		return ""
	}
	defer procWlanCloseHandle.Call(uintptr(handle), 0)

	var list *wlanInterfaceInfoList
	r, _, _ = procWlanEnumInterfaces.Call(uintptr(handle), 0, uintptr(unsafe.Pointer(&list)))
	if r != 0 || list == nil {
		return ""
	}
	defer procWlanFreeMemory.Call(uintptr(unsafe.Pointer(list)))

	infos := unsafe.Slice(&list.first, list.numberOfItems)
	for i := range infos {
		var size uint32
		var attrs *wlanConnectionAttributes
		r, _, _ = procWlanQueryInterface.Call(
			uintptr(handle),
			uintptr(unsafe.Pointer(&infos[i].guid)),
			wlanIntfOpcodeCurrentConnection,
			0,
			uintptr(unsafe.Pointer(&size)),
			uintptr(unsafe.Pointer(&attrs)),
			0,
		)
		if r != 0 || attrs == nil {
			continue
		}
		n := attrs.ssid.length
		if n > uint32(len(attrs.ssid.ssid)) {
			n = uint32(len(attrs.ssid.ssid))
		}
		ssid := string(attrs.ssid.ssid[:n])
		procWlanFreeMemory.Call(uintptr(unsafe.Pointer(attrs)))
		if ssid != "" {
			return ssid
		}
	}
	return ""
}
