package constants

// Permission scopes have the form resource:action:scope.
const (
	PermPropertiesReadAll          = "properties:read:all"
	PermPropertiesReadOrganization = "properties:read:organization"
	PermPropertiesReadAssigned     = "properties:read:assigned"
	PermPropertiesUpdate           = "properties:update:organization"
	PermPropertiesUpdateAssigned   = "properties:update:assigned"

	PermRentRead   = "rent:read:organization"
	PermRentCreate = "rent:create:organization"
	PermRentUpdate = "rent:update:organization"

	PermPaymentsRead   = "payments:read:organization"
	PermPaymentsCreate = "payments:create:organization"
	PermInvoicesCreate = "invoices:create:organization"

	PermUsersManage = "users:manage:organization"
)

// Global role names seeded for every deployment.
const (
	RoleSuperAdmin   = "super_admin"
	RoleOrgAdmin     = "org_admin"
	RolePropertyMgr  = "property_manager"
	RoleFinanceStaff = "finance_staff"
	RoleViewer       = "viewer"
)

// DefaultRolePermissions lists the scopes each global role grants.
var DefaultRolePermissions = map[string][]string{
	RoleSuperAdmin: {
		PermPropertiesReadAll, PermPropertiesUpdate,
		PermRentRead, PermRentCreate, PermRentUpdate,
		PermPaymentsRead, PermPaymentsCreate, PermInvoicesCreate,
		PermUsersManage,
	},
	RoleOrgAdmin: {
		PermPropertiesReadOrganization, PermPropertiesUpdate,
		PermRentRead, PermRentCreate, PermRentUpdate,
		PermPaymentsRead, PermPaymentsCreate, PermInvoicesCreate,
		PermUsersManage,
	},
	RolePropertyMgr: {
		PermPropertiesReadAssigned, PermPropertiesUpdateAssigned,
		PermRentRead, PermRentCreate, PermRentUpdate,
		PermPaymentsRead, PermPaymentsCreate,
	},
	RoleFinanceStaff: {
		PermPropertiesReadOrganization,
		PermRentRead,
		PermPaymentsRead, PermPaymentsCreate, PermInvoicesCreate,
	},
	RoleViewer: {
		PermPropertiesReadOrganization,
		PermRentRead,
	},
}
