// Package tray показывает значок в системном трее с меню паузы и выхода.
package tray

import "go.uber.org/zap"

// Controller — то, чем трей управляет (пауза объявлений).
type Controller interface {
	Toggle()
	Paused() bool
}

type Service struct {
	ctrl    Controller
	logger  *zap.SugaredLogger
	tooltip string
	// quit вызывается из пункта меню «выход»; завершает всё приложение
	quit func()
}

func New(ctrl Controller, tooltip string, quit func(), logger *zap.SugaredLogger) *Service {
	if tooltip == "" {
		tooltip = "CO-MP-UT-ER"
	}
	return &Service{ctrl: ctrl, logger: logger, tooltip: tooltip, quit: quit}
}
