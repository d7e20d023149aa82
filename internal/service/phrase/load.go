package phrase

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LoadDir читает все файлы <locale>.json из каталога и собирает общую таблицу.
// Формат файла — плоский объект {"templateKey": "format string"}.
func LoadDir(dir string) (Table, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("phrase: read locales dir: %w", err)
	}

	table := Table{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".json") {
			continue
		}
		locale := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		m, lerr := loadFile(filepath.Join(dir, e.Name()))
		if lerr != nil {
			return nil, fmt.Errorf("phrase: locale %s: %w", locale, lerr)
		}
		table[locale] = m
	}
	if len(table) == 0 {
		return nil, fmt.Errorf("phrase: no locale files in %s", dir)
	}
	return table, nil
}

func loadFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	// Нестроковые значения пропускаем, как и вложенные объекты
	m := make(map[string]string, len(raw))
	for k, v := range raw {
		if s, ok := v.(string); ok {
			m[k] = s
		}
	}
	return m, nil
}
