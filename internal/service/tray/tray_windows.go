//go:build windows

package tray

import (
	"context"
	"os"
	"syscall"
	"unsafe"

	"github.com/lxn/win"

	"github.com/ECeternalcat/CO-MP-UT-ER/internal/adapter/winmsg"
)

const (
	wmTrayCallback = win.WM_APP + 1

	idToggle   = 1
	idSettings = 2
	idQuit     = 3

	mfString      = 0x0000
	tpmReturnCmd  = 0x0100
	tpmRightAlign = 0x0008
)

// AppendMenuW и TrackPopupMenu в lxn/win не обёрнуты
var (
	user32            = syscall.NewLazyDLL("user32.dll")
	procAppendMenuW   = user32.NewProc("AppendMenuW")
	procTrackPopupMnu = user32.NewProc("TrackPopupMenu")
)

// Run регистрирует значок в трее и обслуживает его меню до отмены контекста.
func (s *Service) Run(ctx context.Context) error {
	var nid win.NOTIFYICONDATA

	setup := func(hwnd win.HWND) (func(), error) {
		nid.CbSize = uint32(unsafe.Sizeof(nid))
		nid.HWnd = hwnd
		nid.UID = 1
		nid.UFlags = win.NIF_MESSAGE | win.NIF_ICON | win.NIF_TIP
		nid.UCallbackMessage = wmTrayCallback
		nid.HIcon = win.LoadIcon(0, win.MAKEINTRESOURCE(win.IDI_APPLICATION))
		tip := syscall.StringToUTF16(s.tooltip)
		copy(nid.SzTip[:], tip)
		if !win.Shell_NotifyIcon(win.NIM_ADD, &nid) {
			s.logger.Warnw("Tray icon registration failed, continuing without tray")
			return func() {}, nil
		}
		s.logger.Infow("Tray icon registered", "tooltip", s.tooltip)
		return func() { win.Shell_NotifyIcon(win.NIM_DELETE, &nid) }, nil
	}

	handler := func(hwnd win.HWND, msg uint32, wParam, lParam uintptr) bool {
		if msg != wmTrayCallback {
			return false
		}
		switch lParam {
		case win.WM_RBUTTONUP, win.WM_LBUTTONUP:
			s.showMenu(hwnd)
		}
		return true
	}

	return winmsg.Run(ctx, "ComputerTrayWnd", setup, handler)
}

func (s *Service) showMenu(hwnd win.HWND) {
	menu := win.CreatePopupMenu()
	if menu == 0 {
		return
	}
	defer win.DestroyMenu(menu)

	toggleLabel := "Pause announcements"
	if s.ctrl.Paused() {
		toggleLabel = "Resume announcements"
	}
	appendMenu(menu, idToggle, toggleLabel)
	appendMenu(menu, idSettings, "Open configuration")
	appendMenu(menu, idQuit, "Exit")

	var pt win.POINT
	win.GetCursorPos(&pt)
	// без фокуса на окне меню не закрывается по клику мимо
	win.SetForegroundWindow(hwnd)

	cmd, _, _ := procTrackPopupMnu.Call(
		uintptr(menu),
		tpmReturnCmd|tpmRightAlign,
		uintptr(pt.X),
		uintptr(pt.Y),
		0,
		uintptr(hwnd),
		0,
	)
	switch cmd {
	case idToggle:
		s.ctrl.Toggle()
		s.logger.Infow("Announcements toggled from tray", "paused", s.ctrl.Paused())
	case idSettings:
		s.openConfigDir()
	case idQuit:
		s.logger.Infow("Exit requested from tray")
		if s.quit != nil {
			s.quit()
		}
	}
}

// openConfigDir открывает рабочий каталог (.env, locales) в проводнике.
func (s *Service) openConfigDir() {
	dir, err := os.Getwd()
	if err != nil {
		s.logger.Warnw("Failed to resolve working directory", "error", err)
		return
	}
	win.ShellExecute(
		0,
		syscall.StringToUTF16Ptr("open"),
		syscall.StringToUTF16Ptr(dir),
		nil,
		nil,
		win.SW_SHOWNORMAL,
	)
}

func appendMenu(menu win.HMENU, id uintptr, label string) {
	procAppendMenuW.Call(
		uintptr(menu),
		mfString,
		id,
		uintptr(unsafe.Pointer(syscall.StringToUTF16Ptr(label))),
	)
}
