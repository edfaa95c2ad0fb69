package settings

import "time"

type Role string

const (
	RoleAdmin       Role = "admin"
	RoleMember      Role = "member"
	RoleLimitedUser Role = "limitedUser"
	RoleStaff       Role = "staff"
)

type Area string

const (
	AreaPantry   Area = "pantry"
	AreaShopping Area = "shopping"
	AreaRecipes  Area = "recipes"
	AreaChef     Area = "chef"
	AreaCalendar Area = "calendar"
	AreaFamily   Area = "family"
)

type Access string

const (
	AccessNone Access = "none"
	AccessView Access = "view"
	AccessEdit Access = "edit"
)

var Areas = []Area{AreaPantry, AreaShopping, AreaRecipes, AreaChef, AreaCalendar, AreaFamily}

type MemberSettings struct {
	Role        Role            `json:"role"`
	Permissions map[Area]Access `json:"permissions"`
}

type Settings struct {
	FamilyID  string
	Members   map[string]MemberSettings
	UpdatedAt time.Time
}

type MemberUpdate struct {
	Role        *Role
	Permissions map[Area]Access
}

var defaultMatrix = map[Role]map[Area]Access{
	RoleAdmin: {
		AreaPantry:   AccessEdit,
		AreaShopping: AccessEdit,
		AreaRecipes:  AccessEdit,
		AreaChef:     AccessEdit,
		AreaCalendar: AccessEdit,
		AreaFamily:   AccessEdit,
	},
	RoleMember: {
		AreaPantry:   AccessEdit,
		AreaShopping: AccessEdit,
		AreaRecipes:  AccessEdit,
		AreaChef:     AccessView,
		AreaCalendar: AccessEdit,
		AreaFamily:   AccessView,
	},
	RoleLimitedUser: {
		AreaPantry:   AccessView,
		AreaShopping: AccessEdit,
		AreaRecipes:  AccessView,
		AreaChef:     AccessNone,
		AreaCalendar: AccessView,
		AreaFamily:   AccessNone,
	},
	RoleStaff: {
		AreaPantry:   AccessEdit,
		AreaShopping: AccessEdit,
		AreaRecipes:  AccessView,
		AreaChef:     AccessView,
		AreaCalendar: AccessView,
		AreaFamily:   AccessNone,
	},
}

func DefaultPermissions(role Role) map[Area]Access {
	defaults, ok := defaultMatrix[role]
	if !ok {
		defaults = defaultMatrix[RoleLimitedUser]
	}
	return clonePermissions(defaults)
}

func (r Role) Valid() bool {
	_, ok := defaultMatrix[r]
	return ok
}

func (a Area) Valid() bool {
	for _, area := range Areas {
		if area == a {
			return true
		}
	}
	return false
}

func (a Access) Valid() bool {
	return a == AccessNone || a == AccessView || a == AccessEdit
}

// Allows reports whether a grants at least need.
func (a Access) Allows(need Access) bool {
	return accessRank(a) >= accessRank(need)
}

func accessRank(a Access) int {
	switch a {
	case AccessEdit:
		return 2
	case AccessView:
		return 1
	default:
		return 0
	}
}

func (s *Settings) Clone() *Settings {
	if s == nil {
		return nil
	}
	cloned := &Settings{
		FamilyID:  s.FamilyID,
		Members:   make(map[string]MemberSettings, len(s.Members)),
		UpdatedAt: s.UpdatedAt,
	}
	for userID, member := range s.Members {
		cloned.Members[userID] = MemberSettings{
			Role:        member.Role,
			Permissions: clonePermissions(member.Permissions),
		}
	}
	return cloned
}

func clonePermissions(permissions map[Area]Access) map[Area]Access {
	cloned := make(map[Area]Access, len(permissions))
	for area, access := range permissions {
		cloned[area] = access
	}
	return cloned
}
