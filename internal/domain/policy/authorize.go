// Package policy holds the authorization decision table.
package policy

import "github.com/oksasatya/go-ddd-blog/internal/domain/entity"

type Action string

const (
	ActionReadPost                 Action = "read_post"
	ActionCreatePost               Action = "create_post"
	ActionUpdateOwnProfile         Action = "update_own_profile"
	ActionViewContributorDashboard Action = "view_contributor_dashboard"
	ActionViewAdminDashboard       Action = "view_admin_dashboard"
)

type Decision bool

const (
	Deny  Decision = false
	Allow Decision = true
)

func (d Decision) Allowed() bool { return bool(d) }

func (d Decision) String() string {
	if d {
		return "allow"
	}
	return "deny"
}

var table = map[Action]map[entity.Role]bool{
	ActionReadPost: {
		entity.RoleAnonymous:   true,
		entity.RoleReader:      true,
		entity.RoleContributor: true,
		entity.RoleAdmin:       true,
	},
	ActionCreatePost: {
		entity.RoleContributor: true,
		entity.RoleAdmin:       true,
	},
	ActionUpdateOwnProfile: {
		entity.RoleReader:      true,
		entity.RoleContributor: true,
		entity.RoleAdmin:       true,
	},
	ActionViewContributorDashboard: {
		entity.RoleContributor: true,
	},
	ActionViewAdminDashboard: {
		entity.RoleAdmin: true,
	},
}

// Authorize decides whether role may perform action. Anything not listed is denied.
func Authorize(role entity.Role, action Action) Decision {
	return Decision(table[action][role])
}
