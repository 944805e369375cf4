package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/alves212/gastos/internal/ledger"
	"github.com/alves212/gastos/internal/models"
	"github.com/alves212/gastos/internal/util"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UpdateProfileReq updates basic profile data.
type UpdateProfileReq struct {
	DisplayName string `json:"display_name"`
}

// ChangePasswordReq changes the account password.
type ChangePasswordReq struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6,max=64"`
}

// DeleteAccountReq closes the account; the current password is required
// again (re-authentication).
type DeleteAccountReq struct {
	Password string `json:"password" binding:"required"`
}

// UpdateProfile updates the current user's display name.
func UpdateProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		var req UpdateProfileReq
		if err := c.ShouldBindJSON(&req); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Parâmetros inválidos")
			return
		}

		req.DisplayName = strings.TrimSpace(req.DisplayName)
		if err := util.ValidateDisplayName(req.DisplayName); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Nome de exibição muito longo")
			return
		}

		if err := db.Model(user).Update("display_name", req.DisplayName).Error; err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Erro ao atualizar perfil")
			return
		}

		user.DisplayName = req.DisplayName

		util.Success(c, util.Response{
			"user": gin.H{
				"id":           user.ID,
				"email":        user.Email,
				"display_name": user.DisplayName,
			},
		})
	}
}

// ChangePassword changes the current user's password.
func ChangePassword(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		var req ChangePasswordReq
		if err := c.ShouldBindJSON(&req); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Parâmetros inválidos")
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Senha atual incorreta")
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Erro ao alterar senha")
			return
		}

		if err := db.Model(user).Update("password_hash", string(hash)).Error; err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Erro ao alterar senha")
			return
		}

		util.Success(c, util.Response{
			"message": "Senha alterada com sucesso, entre novamente com a nova senha",
		})
	}
}

// DeleteAccount closes the current account after re-authenticating with
// the password (7 day grace period before permanent removal; a login
// inside the period revives the account). Wrong password and other
// failures map to distinct responses.
func DeleteAccount(db *gorm.DB, ledgers *ledger.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		var req DeleteAccountReq
		if err := c.ShouldBindJSON(&req); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Parâmetros inválidos")
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Senha incorreta")
			return
		}

		if user.DeletedAt != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Conta já está encerrada")
			return
		}

		now := time.Now()
		permanentlyAt := now.Add(7 * 24 * time.Hour)

		user.DeletedAt = &now
		user.DeletePermanentlyAt = &permanentlyAt

		if err := db.Save(user).Error; err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Erro ao encerrar conta, tente novamente")
			return
		}

		// revoke every open session and drop the live ledger
		_ = db.Model(&models.Session{}).
			Where("user_id = ?", user.ID).
			Update("revoked", true).Error
		ledgers.Release(user.ID)

		util.Success(c, util.Response{
			"message":               "Conta encerrada",
			"deleted_at":            now,
			"delete_permanently_at": permanentlyAt,
			"tip":                   "Entre novamente em até 7 dias para reativar a conta",
		})
	}
}
