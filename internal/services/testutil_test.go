package services

import (
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"formgate/internal/models"
)

// openTestDB opens a fresh in-memory store migrated with the full schema.
// Each test gets its own database, named after the test so parallel tests
// never share state.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Form{},
		&models.Role{},
		&models.Permission{},
		&models.RolePermission{},
		&models.UserFormRole{},
		&models.FormEmbedDomain{},
		&models.FormEmbedDomainHistory{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	return db
}

func createForm(t *testing.T, db *gorm.DB, public bool) *models.Form {
	t.Helper()

	owner := &models.User{Email: fmt.Sprintf("%s-owner@example.com", strings.ToLower(t.Name())), Password: "x"}
	if err := db.Create(owner).Error; err != nil {
		t.Fatalf("create owner: %v", err)
	}

	form := &models.Form{Title: "Test form", OwnerID: owner.ID, PublicAccess: public}
	if err := db.Create(form).Error; err != nil {
		t.Fatalf("create form: %v", err)
	}
	return form
}

func createUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	user := &models.User{Email: email, Password: "x"}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func grant(t *testing.T, db *gorm.DB, roleCode string, permCodes ...string) {
	t.Helper()

	for _, code := range permCodes {
		edge := models.RolePermission{RoleCode: roleCode, PermissionCode: code}
		if err := db.Create(&edge).Error; err != nil {
			t.Fatalf("create role permission %s -> %s: %v", roleCode, code, err)
		}
	}
}

func assign(t *testing.T, db *gorm.DB, userID, formID, roleCode string) {
	t.Helper()

	edge := models.UserFormRole{UserID: userID, FormID: formID, RoleCode: roleCode}
	if err := db.Create(&edge).Error; err != nil {
		t.Fatalf("assign role %s: %v", roleCode, err)
	}
}
