package algorithms

import (
	"sort"

	"portal_backend/internal/models"
)

// SiteUpdate - существующая строка, которая остается и получает новые значения
type SiteUpdate struct {
	ID        uint
	Slug      string
	Label     string
	IsDefault bool
}

// SiteInsert - новая строка
type SiteInsert struct {
	Slug      string
	Label     string
	IsDefault bool
}

// SitePlan - набор изменений, приводящий реестр сайтов аккаунта к желаемому.
// Применять в одной транзакции в порядке: Delete, сброс default, Update, Insert.
type SitePlan struct {
	Delete      []uint
	Update      []SiteUpdate
	Insert      []SiteInsert
	DefaultSlug string
}

// PlanSiteSync сопоставляет существующие строки с желаемым упорядоченным набором:
// строки, которых нет в желаемом, удаляются; совпавшие по ключу обновляются на месте;
// недостающие вставляются. Первый желаемый сайт становится default.
// Повторный вызов на результате дает план без вставок и удалений.
func PlanSiteSync(existing []models.UserSite, desired []DesiredSite) SitePlan {
	rows := make([]models.UserSite, len(existing))
	copy(rows, existing)
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })

	// При дублях по ключу остается самая старая строка
	byKey := make(map[string]models.UserSite, len(rows))
	var plan SitePlan
	for _, row := range rows {
		key := SiteKey(row.SiteSlug)
		if _, dup := byKey[key]; dup || key == "" {
			plan.Delete = append(plan.Delete, row.ID)
			continue
		}
		byKey[key] = row
	}

	kept := make(map[uint]struct{}, len(desired))
	for i, d := range desired {
		isDefault := i == 0
		if isDefault {
			plan.DefaultSlug = d.Slug
		}
		if row, ok := byKey[SiteKey(d.Slug)]; ok {
			kept[row.ID] = struct{}{}
			plan.Update = append(plan.Update, SiteUpdate{
				ID:        row.ID,
				Slug:      d.Slug,
				Label:     d.Label,
				IsDefault: isDefault,
			})
			continue
		}
		plan.Insert = append(plan.Insert, SiteInsert{Slug: d.Slug, Label: d.Label, IsDefault: isDefault})
	}

	for _, row := range byKey {
		if _, ok := kept[row.ID]; !ok {
			plan.Delete = append(plan.Delete, row.ID)
		}
	}
	sort.Slice(plan.Delete, func(i, j int) bool { return plan.Delete[i] < plan.Delete[j] })

	return plan
}

// DefaultSite возвращает default-строку или, если ее нет, самую старую
func DefaultSite(sites []models.UserSite) *models.UserSite {
	var oldest *models.UserSite
	for i := range sites {
		if sites[i].IsDefault {
			return &sites[i]
		}
		if oldest == nil || sites[i].ID < oldest.ID {
			oldest = &sites[i]
		}
	}
	return oldest
}
