//go:build !windows

package tray

import "context"

// Run вне Windows просто ждёт отмены контекста: трей недоступен,
// но приложение работает.
func (s *Service) Run(ctx context.Context) error {
	s.logger.Infow("System tray is unavailable on this platform")
	<-ctx.Done()
	return context.Cause(ctx)
}
