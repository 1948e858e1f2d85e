package policy

import (
	"github.com/wbsdickson/bpsp-portal-sub001/internal/gate"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/models"
)

// ResourceDashboard is the resource type of the merchant dashboard summary.
const ResourceDashboard = "dashboard"

// ResourceTypes lists every gated resource type in display order.
func ResourceTypes() []string {
	types := []string{
		models.EntityMerchant, models.EntityMerchantCard, models.EntityUser,
		models.EntityClient, models.EntityItem, models.EntityBankAccount,
	}
	for _, k := range models.DocumentKinds {
		types = append(types, string(k))
	}
	return append(types, models.EntitySchedule, models.EntityPayment, ResourceDashboard)
}

func documentPermissions(actions ...gate.Action) []gate.Permission {
	var perms []gate.Permission
	for _, k := range models.DocumentKinds {
		for _, a := range actions {
			perms = append(perms, gate.NewPermission(string(k), a))
		}
	}
	return perms
}

// RoleProfiles returns the profile of each role.
func RoleProfiles() map[models.Role]gate.Profile {
	admin := append([]gate.Permission{
		gate.NewPermission(models.EntityMerchant, gate.ActionView),
		gate.NewPermission(models.EntityMerchant, gate.ActionUpdate),
		"merchant_card:*", "user:*", "client:*", "item:*", "bank_account:*",
		"auto_issuance:*", "payment:*", "dashboard:view",
	}, documentPermissions("*")...)

	staff := append([]gate.Permission{
		"*:view", "*:list",
		gate.NewPermission(models.EntityClient, gate.ActionCreate),
		gate.NewPermission(models.EntityClient, gate.ActionUpdate),
		gate.NewPermission(models.EntityPayment, gate.ActionCreate),
	}, documentPermissions(gate.ActionCreate, gate.ActionUpdate)...)

	return map[models.Role]gate.Profile{
		models.RoleOperator:      gate.NewStaticProfile(string(models.RoleOperator), gate.PermissionEverything),
		models.RoleMerchantAdmin: gate.NewStaticProfile(string(models.RoleMerchantAdmin), admin...),
		models.RoleMerchantStaff: gate.NewStaticProfile(string(models.RoleMerchantStaff), staff...),
	}
}
