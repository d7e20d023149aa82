//go:build windows

package winmsg

import (
	"context"
	"fmt"
	"runtime"
	"syscall"
	"unsafe"

	"github.com/lxn/win"
)

// Handler обрабатывает сообщение окна; вернуть true, если сообщение обработано.
// Паника внутри нативного колбэка — неопределённое поведение для цикла
// сообщений, поэтому обработчик обязан сам гасить свои ошибки.
type Handler func(hwnd win.HWND, msg uint32, wParam, lParam uintptr) (handled bool)

// Setup вызывается после создания окна для нативных регистраций
// (RegisterDeviceNotification и т.п.); возвращает функцию очистки.
type Setup func(hwnd win.HWND) (cleanup func(), err error)

// Run создаёт скрытое окно верхнего уровня и крутит цикл сообщений до отмены
// контекста. Широковещательные сообщения (WM_POWERBROADCAST, WM_DEVICECHANGE)
// приходят только обычным окнам, поэтому окно не message-only, но невидимо.
func Run(ctx context.Context, className string, setup Setup, handler Handler) error {
	// UI/WinAPI должен жить в закреплённом системном потоке
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	classNamePtr := syscall.StringToUTF16Ptr(className)

	// Регистрация класса окна
	var wc win.WNDCLASSEX
	wc.CbSize = uint32(unsafe.Sizeof(wc))
	wc.LpfnWndProc = syscall.NewCallback(func(hwnd win.HWND, msg uint32, wParam, lParam uintptr) uintptr {
		if msg == win.WM_DESTROY {
			win.PostQuitMessage(0)
			return 0
		}
		if handler != nil && handler(hwnd, msg, wParam, lParam) {
			return 0
		}
		return win.DefWindowProc(hwnd, msg, wParam, lParam)
	})
	wc.HInstance = win.GetModuleHandle(nil)
	wc.LpszClassName = classNamePtr
	if win.RegisterClassEx(&wc) == 0 {
		// возможно, уже зарегистрирован — пробуем продолжить
	}

	hwnd := win.CreateWindowEx(
		0,
		classNamePtr,
		classNamePtr,
		0,
		0, 0, 0, 0, // x, y, width, height
		0, // parent
		0, // menu
		wc.HInstance,
		nil,
	)
	if hwnd == 0 {
		return fmt.Errorf("winmsg: create window %s failed", className)
	}

	cleanup := func() {}
	if setup != nil {
		var err error
		cleanup, err = setup(hwnd)
		if err != nil {
			win.DestroyWindow(hwnd)
			return err
		}
		if cleanup == nil {
			cleanup = func() {}
		}
	}

	// Параллельно следим за ctx и закрываем окно
	go func() {
		<-ctx.Done()
		win.PostMessage(hwnd, win.WM_CLOSE, 0, 0)
	}()

	// Цикл сообщений до WM_QUIT
	msg := new(win.MSG)
	for {
		r := win.GetMessage(msg, 0, 0, 0)
		if r == 0 || r == -1 { // WM_QUIT или ошибка
			break
		}
		win.TranslateMessage(msg)
		win.DispatchMessage(msg)
	}

	cleanup()
	win.DestroyWindow(hwnd)
	return nil
}
