package service

import (
	"cbt_cms/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
)

func menuTitles(items []model.MenuItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Title)
	}
	return out
}

func TestNavigationMenu(t *testing.T) {
	nav := NewNavigationService()

	t.Run("superadmin sees the question bank", func(t *testing.T) {
		menu := nav.Menu(model.Viewer{ID: 1, Roles: []model.RoleName{model.RoleSuperadmin}})
		assert.Contains(t, menuTitles(menu.Main), "Bank Soal")
		assert.Equal(t, []string{"Settings"}, menuTitles(menu.Secondary))
	})

	t.Run("pengawas gets the restricted menu", func(t *testing.T) {
		menu := nav.Menu(model.Viewer{ID: 2, Roles: []model.RoleName{model.RolePengawas}})
		assert.Equal(t, []string{"Dashboard", "Ujian Online"}, menuTitles(menu.Main))
	})

	t.Run("unknown role falls back to the restricted menu", func(t *testing.T) {
		menu := nav.Menu(model.Viewer{ID: 3})
		assert.Equal(t, []string{"Dashboard", "Ujian Online"}, menuTitles(menu.Main))
	})

	t.Run("menus are copies", func(t *testing.T) {
		a := nav.Menu(model.Viewer{Roles: []model.RoleName{model.RoleSuperadmin}})
		a.Main[4].Children[0].Title = "changed"
		b := nav.Menu(model.Viewer{Roles: []model.RoleName{model.RoleSuperadmin}})
		assert.Equal(t, "Kategori Soal", b.Main[4].Children[0].Title)
	})
}
