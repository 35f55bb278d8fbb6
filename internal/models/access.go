package models

// Permission codes. Created by the catalog seed, referenced by RolePermission
// edges and by route guards.
const (
	PermissionFormRead           = "form_read"
	PermissionFormUpdate         = "form_update"
	PermissionFormDelete         = "form_delete"
	PermissionFormShare          = "form_share"
	PermissionSubmissionCreate   = "submission_create"
	PermissionSubmissionRead     = "submission_read"
	PermissionSubmissionDelete   = "submission_delete"
	PermissionEmbedDomainRequest = "embed_domain_request"
	PermissionEmbedDomainReview  = "embed_domain_review"
)

// Role codes assignable on a form.
const (
	RoleOwner       = "owner"
	RoleTeamManager = "team_manager"
	RoleEditor      = "editor"
	RoleViewer      = "viewer"
	RoleSubmitter   = "submitter"
)

// Role is immutable reference data, created by the catalog seed.
type Role struct {
	Base
	Code        string `gorm:"uniqueIndex;not null" json:"code"`
	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`
	Active      bool   `gorm:"not null;default:true" json:"active"`
}

// Permission is immutable reference data, created by the catalog seed.
type Permission struct {
	Base
	Code        string `gorm:"uniqueIndex;not null" json:"code"`
	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`
	Active      bool   `gorm:"not null;default:true" json:"active"`
}

// RolePermission is the static authorization matrix: one row per
// role code / permission code edge.
type RolePermission struct {
	Base
	RoleCode       string `gorm:"not null;index:idx_role_permission,unique" json:"roleCode"`
	PermissionCode string `gorm:"not null;index:idx_role_permission,unique" json:"permissionCode"`
}

// UserFormRole assigns a role to a user on a single form. A user may hold
// several roles on the same form.
type UserFormRole struct {
	Base
	UserID   string `gorm:"type:uuid;not null;index:idx_user_form_role,unique" json:"userId"`
	User     *User  `json:"user,omitempty"`
	FormID   string `gorm:"type:uuid;not null;index:idx_user_form_role,unique" json:"formId"`
	Form     *Form  `json:"form,omitempty"`
	RoleCode string `gorm:"not null;index:idx_user_form_role,unique" json:"roleCode"`
}
