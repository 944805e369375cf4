package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alves212/gastos/internal/database"
	"github.com/alves212/gastos/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func updateProfileRequest(t *testing.T, db *gorm.DB, user *models.User, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/profile",
		bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set("currentUser", user)

	UpdateProfile(db)(c)
	return w
}

func TestUpdateProfile_RejectsLongDisplayName(t *testing.T) {
	db := newTestDB(t)
	user := &models.User{Email: "ana@example.com", PasswordHash: "x"}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}

	long := strings.Repeat("a", 65)
	body, _ := json.Marshal(map[string]string{"display_name": long})

	w := updateProfileRequest(t, db, user, string(body))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}

	var fresh models.User
	if err := db.First(&fresh, user.ID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if fresh.DisplayName != "" {
		t.Errorf("display name persisted despite rejection: %q", fresh.DisplayName)
	}
}

func TestUpdateProfile_TrimsAndStores(t *testing.T) {
	db := newTestDB(t)
	user := &models.User{Email: "ana@example.com", PasswordHash: "x"}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}

	w := updateProfileRequest(t, db, user, `{"display_name":"  Ana Alves  "}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var fresh models.User
	if err := db.First(&fresh, user.ID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if fresh.DisplayName != "Ana Alves" {
		t.Errorf("stored display name = %q, want trimmed %q", fresh.DisplayName, "Ana Alves")
	}
}
