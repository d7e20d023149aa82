package adapter

import (
	"context"
	"errors"
)

// ErrRegistration — нативная регистрация канала уведомлений не удалась.
// Деградирует только этот канал; остальные адаптеры продолжают работать.
var ErrRegistration = errors.New("adapter: native registration failed")

// Source — один канал нативных уведомлений ОС. Run регистрируется в нативном
// механизме и до отмены контекста публикует нормализованные события в шину.
// Трансляция события обязана быть O(1) и не блокировать нативный колбэк.
type Source interface {
	Name() string
	Run(ctx context.Context) error
}
