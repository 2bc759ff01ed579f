package guard

import "strings"

// Table - объявленные требования страниц. Ключ либо точный путь,
// либо "префикс/*" для всего поддерева. Остальные пути публичные.
type Table map[string]Requirement

// Requirement ищет требование пути: сначала точное совпадение,
// затем ближайшее поддерево.
func (t Table) Requirement(p string) Requirement {
	p = cleanPath(p)
	if req, ok := t[p]; ok {
		return req
	}

	for dir := p; dir != "/" && dir != "."; {
		i := strings.LastIndex(dir, "/")
		if i < 0 {
			break
		}
		dir = dir[:i]
		if dir == "" {
			dir = "/"
		}
		if req, ok := t[strings.TrimSuffix(dir, "/")+"/*"]; ok {
			return req
		}
	}
	return Public
}
