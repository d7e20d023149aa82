package phrase

import (
	"errors"
	"fmt"
	"strings"
)

// ErrTemplateMissing — ключ шаблона отсутствует и в запрошенной, и в запасной локали.
// Для вызывающего это «пропустить данное объявление», не фатальная ошибка.
var ErrTemplateMissing = errors.New("phrase: template missing")

// Table — карта locale -> templateKey -> строка формата с плейсхолдерами вида {name}.
// Заполняется внешним загрузчиком (см. load.go); резолвер её не изменяет.
type Table map[string]map[string]string

// Resolver превращает (ключ, локаль, параметры) в готовый текст объявления.
// Чистая логика без состояния, безопасна для конкурентного чтения.
type Resolver struct {
	table         Table
	defaultLocale string
}

func New(table Table, defaultLocale string) *Resolver {
	if defaultLocale == "" {
		defaultLocale = "en"
	}
	return &Resolver{table: table, defaultLocale: defaultLocale}
}

// Resolve подставляет параметры в шаблон. Отсутствующая локаль откатывается
// на запасную; отсутствующий ключ — ErrTemplateMissing. Плейсхолдеры, для
// которых параметра нет, остаются как есть.
func (r *Resolver) Resolve(locale, key string, params map[string]string) (string, error) {
	tpl, ok := r.lookup(locale, key)
	if !ok {
		return "", fmt.Errorf("%w: locale=%s key=%s", ErrTemplateMissing, locale, key)
	}
	for name, value := range params {
		tpl = strings.ReplaceAll(tpl, "{"+name+"}", value)
	}
	return tpl, nil
}

func (r *Resolver) lookup(locale, key string) (string, bool) {
	if m, ok := r.table[locale]; ok {
		if tpl, ok := m[key]; ok {
			return tpl, true
		}
	}
	if locale == r.defaultLocale {
		return "", false
	}
	m, ok := r.table[r.defaultLocale]
	if !ok {
		return "", false
	}
	tpl, ok := m[key]
	return tpl, ok
}

// ClampLevel приводит процент заряда к диапазону 0..100.
// Значения вне диапазона обрезаются, а не считаются ошибкой.
func ClampLevel(level int) int {
	if level < 0 {
		return 0
	}
	if level > 100 {
		return 100
	}
	return level
}
