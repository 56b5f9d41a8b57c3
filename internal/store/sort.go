package store

import (
	"sort"
	"strings"

	"buymore_back_end/internal/models"
)

func sortProducts(ps []models.Product) {
	sort.SliceStable(ps, func(i, j int) bool {
		return strings.ToLower(ps[i].Name) < strings.ToLower(ps[j].Name)
	})
}

func sortCategories(cs []models.Category) {
	sort.SliceStable(cs, func(i, j int) bool {
		return strings.ToLower(cs[i].Name) < strings.ToLower(cs[j].Name)
	})
}

// mais recentes primeiro
func sortOrders(list []models.Order) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
}

func sortPromotions(ps []models.Promotion) {
	sort.SliceStable(ps, func(i, j int) bool {
		return ps[i].CreatedAt.After(ps[j].CreatedAt)
	})
}

func limitOrders(list []models.Order, limit int) []models.Order {
	if limit > 0 && len(list) > limit {
		return list[:limit]
	}
	return list
}

// mais recentes primeiro, como na lista de usuários do painel
func sortProfiles(ps []models.Profile) {
	sort.SliceStable(ps, func(i, j int) bool {
		return ps[i].CreatedAt.After(ps[j].CreatedAt)
	})
}
