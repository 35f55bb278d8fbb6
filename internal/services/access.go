package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"gorm.io/gorm"

	"formgate/internal/models"
)

// PublicFallback is the permission set granted on a publicly accessible form
// to callers with no role assignment at all. It is a fixed policy constant,
// never derived from the RolePermission catalog.
var PublicFallback = []string{
	models.PermissionSubmissionCreate,
	models.PermissionFormRead,
}

// ErrUnknownRole reports an assignment against a role code the catalog does
// not define.
var ErrUnknownRole = errors.New("access: unknown role code")

// AccessService resolves roles and effective permissions for a (user, form)
// pair. The caller identity is always an explicit argument; an empty userID
// means anonymous.
type AccessService struct {
	db *gorm.DB
}

func NewAccessService(db *gorm.DB) *AccessService {
	return &AccessService{db: db}
}

// Roles returns the role codes assigned to the user on the form. An empty
// result is a valid terminal state, not an error: anonymous callers and
// users without assignments both land here.
func (s *AccessService) Roles(ctx context.Context, userID, formID string) ([]string, error) {
	var codes []string
	err := s.db.WithContext(ctx).
		Model(&models.UserFormRole{}).
		Where("user_id = ? AND form_id = ?", userID, formID).
		Distinct().
		Pluck("role_code", &codes).Error
	if err != nil {
		return nil, err
	}
	return codes, nil
}

// EffectivePermissions computes the caller's permission set on the form:
// the union of the catalog permissions of every assigned role, or the public
// fallback when the form is public and the caller holds no assignment.
func (s *AccessService) EffectivePermissions(ctx context.Context, userID, formID string) ([]string, error) {
	roles, err := s.Roles(ctx, userID, formID)
	if err != nil {
		return nil, err
	}

	if len(roles) == 0 {
		var form models.Form
		if err := s.db.WithContext(ctx).Select("public_access").First(&form, "id = ?", formID).Error; err != nil {
			return nil, err
		}
		if form.PublicAccess {
			return append([]string(nil), PublicFallback...), nil
		}
		return []string{}, nil
	}

	var edges []models.RolePermission
	if err := s.db.WithContext(ctx).Where("role_code IN ?", roles).Find(&edges).Error; err != nil {
		return nil, err
	}

	grants := make(map[string][]string, len(roles))
	for _, edge := range edges {
		grants[edge.RoleCode] = append(grants[edge.RoleCode], edge.PermissionCode)
	}

	return UnionPermissions(grants, roles), nil
}

// UnionPermissions expands role codes into the deduplicated union of their
// granted permission codes, sorted for stable output. A role code with no
// grants contributes nothing; that models a defined-but-unwired role and is
// deliberately not an error.
func UnionPermissions(grants map[string][]string, roles []string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, role := range roles {
		for _, perm := range grants[role] {
			if _, ok := seen[perm]; ok {
				continue
			}
			seen[perm] = struct{}{}
			out = append(out, perm)
		}
	}
	sort.Strings(out)
	return out
}

// AssignRole grants a role to a user on a form. Assigning an already-held
// role is a no-op.
func (s *AccessService) AssignRole(ctx context.Context, userID, formID, roleCode string) error {
	var role models.Role
	err := s.db.WithContext(ctx).Where("code = ? AND active = ?", roleCode, true).First(&role).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", ErrUnknownRole, roleCode)
	}
	if err != nil {
		return err
	}

	assignment := models.UserFormRole{UserID: userID, FormID: formID, RoleCode: roleCode}
	return s.db.WithContext(ctx).FirstOrCreate(&assignment, models.UserFormRole{
		UserID:   userID,
		FormID:   formID,
		RoleCode: roleCode,
	}).Error
}

// UnassignRole removes a role from a user on a form.
func (s *AccessService) UnassignRole(ctx context.Context, userID, formID, roleCode string) error {
	return s.db.WithContext(ctx).
		Where("user_id = ? AND form_id = ? AND role_code = ?", userID, formID, roleCode).
		Delete(&models.UserFormRole{}).Error
}
