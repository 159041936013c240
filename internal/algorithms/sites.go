package algorithms

import (
	"strings"
)

const (
	sitePrefix      = "amazon"
	siteLabelPrefix = "Amazon "
)

// DesiredSite - нормализованный сайт: slug (код) и отображаемая метка "Amazon <CODE>"
type DesiredSite struct {
	Slug  string
	Label string
}

// SiteCode извлекает код сайта в каноническом (верхнем) регистре: последний токен
// строки без префикса "amazon". "Amazon CTZ" -> "CTZ", "amazonden2" -> "DEN2", "Amazon" -> "".
func SiteCode(item string) string {
	fields := strings.Fields(item)
	if len(fields) == 0 {
		return ""
	}
	code := fields[len(fields)-1]
	if len(code) >= len(sitePrefix) && strings.EqualFold(code[:len(sitePrefix)], sitePrefix) {
		code = code[len(sitePrefix):]
	}
	return strings.ToUpper(strings.TrimLeft(code, "-_:"))
}

// SiteKey - ключ сравнения сайтов, не зависящий от регистра и префикса.
// Совпадает с кодом, поэтому один сайт всегда дает один slug и одну метку.
func SiteKey(item string) string {
	return SiteCode(item)
}

// SiteLabel строит каноническую метку для кода
func SiteLabel(code string) string {
	return siteLabelPrefix + code
}

// NormalizeSites приводит ввод к списку уникальных сайтов в порядке первого появления.
// Пустые элементы и элементы без кода отбрасываются.
func NormalizeSites(items []string) []DesiredSite {
	seen := make(map[string]struct{}, len(items))
	out := make([]DesiredSite, 0, len(items))

	for _, item := range items {
		code := SiteCode(item)
		if code == "" {
			continue
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		out = append(out, DesiredSite{Slug: code, Label: SiteLabel(code)})
	}
	return out
}

// NormalizeSiteLabels - то же, что NormalizeSites, но только метки
func NormalizeSiteLabels(items []string) []string {
	sites := NormalizeSites(items)
	labels := make([]string, len(sites))
	for i, s := range sites {
		labels[i] = s.Label
	}
	return labels
}

// NormalizeAccounts чистит список идентификаторов других аккаунтов:
// trim, без пустых, без дублей, порядок сохраняется. Всегда не nil.
func NormalizeAccounts(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		v := strings.TrimSpace(item)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
