package model

import "strconv"

type RoleName string

const (
	RoleSuperadmin RoleName = "superadmin"
	RolePengawas   RoleName = "pengawas"
)

// SupervisorRoleID is the role id the user list is filtered by to resolve
// supervisor names.
const SupervisorRoleID = 3

type Role struct {
	Name RoleName `json:"name"`
}

// User is an exam platform account as returned by /me and the user list.
type User struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Roles []Role `json:"roles"`
}

func (u *User) RoleNames() []RoleName {
	names := make([]RoleName, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}

type School struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// Viewer is the authenticated caller of a request.
type Viewer struct {
	ID    uint
	Name  string
	Roles []RoleName
}

func (v Viewer) HasRole(role RoleName) bool {
	for _, r := range v.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (v Viewer) IsSuperadmin() bool {
	return v.HasRole(RoleSuperadmin)
}

// IsSupervisor reports a pengawas that is not also superadmin. Such a viewer
// only ever sees and writes its own tests.
func (v Viewer) IsSupervisor() bool {
	return v.HasRole(RolePengawas) && !v.HasRole(RoleSuperadmin)
}

func (v Viewer) IDString() string {
	return strconv.FormatUint(uint64(v.ID), 10)
}

// Menu is the role gated navigation: main entries and the secondary block
// pinned to the bottom of the sidebar.
type Menu struct {
	Main      []MenuItem `json:"navMain"`
	Secondary []MenuItem `json:"navSecondary"`
}

// MenuItem is one navigation entry.
type MenuItem struct {
	Title    string     `json:"title"`
	URL      string     `json:"url"`
	Icon     string     `json:"icon,omitempty"`
	Children []MenuItem `json:"items,omitempty"`
}
