package models

import (
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"

	console "formgate/internal/utils/logger"

	"gorm.io/gorm"
)

var log = console.New("SEEDER")

// Default permission catalog
var defaultPermissions = []Permission{
	{Code: PermissionFormRead, Name: "Read form", Description: "View a form and its settings"},
	{Code: PermissionFormUpdate, Name: "Update form", Description: "Edit form settings"},
	{Code: PermissionFormDelete, Name: "Delete form", Description: "Delete a form"},
	{Code: PermissionFormShare, Name: "Share form", Description: "Assign and unassign roles on a form"},
	{Code: PermissionSubmissionCreate, Name: "Create submission", Description: "Submit a response to a form"},
	{Code: PermissionSubmissionRead, Name: "Read submissions", Description: "View form submissions"},
	{Code: PermissionSubmissionDelete, Name: "Delete submissions", Description: "Delete form submissions"},
	{Code: PermissionEmbedDomainRequest, Name: "Request embed domain", Description: "Request an external domain for embedding"},
	{Code: PermissionEmbedDomainReview, Name: "Review embed domain", Description: "Approve or deny embed domain requests"},
}

var defaultRoles = []Role{
	{Code: RoleOwner, Name: "Owner", Description: "Full control over the form"},
	{Code: RoleTeamManager, Name: "Team manager", Description: "Manages sharing and embed trust"},
	{Code: RoleEditor, Name: "Editor", Description: "Edits the form and reads submissions"},
	{Code: RoleViewer, Name: "Viewer", Description: "Read-only access"},
	{Code: RoleSubmitter, Name: "Submitter", Description: "May view and submit the form"},
}

// Role-based permission matrix
var rolePermissionMatrix = map[string][]string{
	RoleOwner: {
		PermissionFormRead, PermissionFormUpdate, PermissionFormDelete, PermissionFormShare,
		PermissionSubmissionCreate, PermissionSubmissionRead, PermissionSubmissionDelete,
		PermissionEmbedDomainRequest, PermissionEmbedDomainReview,
	},
	RoleTeamManager: {
		PermissionFormRead, PermissionFormUpdate, PermissionFormShare,
		PermissionSubmissionCreate, PermissionSubmissionRead, PermissionSubmissionDelete,
		PermissionEmbedDomainRequest, PermissionEmbedDomainReview,
	},
	RoleEditor: {
		PermissionFormRead, PermissionFormUpdate,
		PermissionSubmissionCreate, PermissionSubmissionRead,
		PermissionEmbedDomainRequest,
	},
	RoleViewer: {
		PermissionFormRead, PermissionSubmissionRead,
	},
	RoleSubmitter: {
		PermissionFormRead, PermissionSubmissionCreate,
	},
}

// SeedAccessCatalog creates the role and permission reference data and the
// role→permission matrix. Idempotent; safe to run on every boot.
func SeedAccessCatalog(db *gorm.DB) error {
	for _, perm := range defaultPermissions {
		perm.Active = true
		if err := db.FirstOrCreate(&perm, Permission{Code: perm.Code}).Error; err != nil {
			return fmt.Errorf("failed to create permission %s: %v", perm.Code, err)
		}
	}

	for _, role := range defaultRoles {
		role.Active = true
		if err := db.FirstOrCreate(&role, Role{Code: role.Code}).Error; err != nil {
			return fmt.Errorf("failed to create role %s: %v", role.Code, err)
		}
	}

	for roleCode, permCodes := range rolePermissionMatrix {
		log.Info("Wiring permissions for role: %s", roleCode)
		for _, permCode := range permCodes {
			edge := RolePermission{RoleCode: roleCode, PermissionCode: permCode}
			if err := db.FirstOrCreate(&edge, RolePermission{
				RoleCode:       roleCode,
				PermissionCode: permCode,
			}).Error; err != nil {
				return fmt.Errorf("failed to create role permission %s -> %s: %v", roleCode, permCode, err)
			}
		}
	}

	return nil
}

// CreatePlatformAdminFromEnv creates the platform admin account on first
// boot, from ADMIN_EMAIL / ADMIN_PASSWORD / ADMIN_NAME.
func CreatePlatformAdminFromEnv(db *gorm.DB) error {
	var count int64
	db.Model(&User{}).Where("role = ?", UserRolePlatformAdmin).Count(&count)
	if count > 0 {
		return nil
	}

	email, ok := os.LookupEnv("ADMIN_EMAIL")
	if !ok {
		return fmt.Errorf("ADMIN_EMAIL not set")
	}

	password, ok := os.LookupEnv("ADMIN_PASSWORD")
	if !ok {
		return fmt.Errorf("ADMIN_PASSWORD not set")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %v", err)
	}

	user := User{
		Email:       email,
		Password:    string(hashedPassword),
		DisplayName: os.Getenv("ADMIN_NAME"),
		Role:        UserRolePlatformAdmin,
	}

	if err := db.Create(&user).Error; err != nil {
		return fmt.Errorf("failed to create platform admin: %v", err)
	}

	return nil
}
