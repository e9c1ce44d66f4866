package service

import "cbt_cms/internal/model"

// NavigationService builds the sidebar for a viewer's roles.
type NavigationService struct{}

func NewNavigationService() *NavigationService {
	return &NavigationService{}
}

var settingsMenu = []model.MenuItem{
	{Title: "Settings", URL: "/setting", Icon: "settings"},
}

var superadminMenu = []model.MenuItem{
	{Title: "Dashboard", URL: "/cms/dashboard", Icon: "layout-dashboard"},
	{Title: "Data Mahasiswa", URL: "/cms/mahasiswa", Icon: "brand-databricks"},
	{Title: "LMS", URL: "/cms/lms", Icon: "folder-question"},
	{Title: "Ujian Online", URL: "/cms/tryout", Icon: "zoom-question"},
	{Title: "Bank Soal", URL: "/category-questions", Icon: "book", Children: []model.MenuItem{
		{Title: "Kategori Soal", URL: "/cms/category-questions"},
		{Title: "Soal", URL: "/cms/questions"},
	}},
	{Title: "Konfigurasi", URL: "#", Icon: "zoom-question", Children: []model.MenuItem{
		{Title: "Prodi", URL: "/cms/prodi"},
		{Title: "Jurusan", URL: "/cms/jurusan"},
		{Title: "Kelas", URL: "/cms/class"},
		{Title: "Mata Kuliah", URL: "/cms/mata-kuliah"},
	}},
	{Title: "Manajemen User", URL: "#", Icon: "user-cog", Children: []model.MenuItem{
		{Title: "Users", URL: "/cms/users"},
		{Title: "Roles", URL: "/cms/roles"},
	}},
}

// pengawas only reaches the dashboard and the tryout list.
var supervisorMenu = []model.MenuItem{
	{Title: "Dashboard", URL: "/dashboard", Icon: "dashboard"},
	{Title: "Ujian Online", URL: "/cms/tryout", Icon: "zoom-question"},
}

// Menu returns the superadmin menu for superadmins. Everyone else gets the
// restricted supervisor menu.
func (s *NavigationService) Menu(viewer model.Viewer) model.Menu {
	main := supervisorMenu
	if viewer.IsSuperadmin() {
		main = superadminMenu
	}
	return model.Menu{Main: cloneMenu(main), Secondary: cloneMenu(settingsMenu)}
}

func cloneMenu(items []model.MenuItem) []model.MenuItem {
	out := make([]model.MenuItem, len(items))
	for i, it := range items {
		out[i] = it
		if it.Children != nil {
			out[i].Children = cloneMenu(it.Children)
		}
	}
	return out
}
