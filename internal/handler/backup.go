package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/alves212/gastos/internal/docstore"
	"github.com/alves212/gastos/internal/ledger"
	"github.com/alves212/gastos/internal/models"
	"github.com/alves212/gastos/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BackupHandler snapshots a user's ledger document into encrypted files
// under the backup dir, and restores from them.
type BackupHandler struct {
	DB         *gorm.DB
	Docs       *docstore.Store
	Ledgers    *ledger.Manager
	EncryptKey string
	BackupDir  string
}

func NewBackupHandler(db *gorm.DB, docs *docstore.Store, ledgers *ledger.Manager, encryptKey, backupDir string) *BackupHandler {
	return &BackupHandler{
		DB:         db,
		Docs:       docs,
		Ledgers:    ledgers,
		EncryptKey: encryptKey,
		BackupDir:  backupDir,
	}
}

// backupData is the plaintext content of a backup file.
type backupData struct {
	UserID   uint            `json:"user_id"`
	Created  time.Time       `json:"created"`
	Document json.RawMessage `json:"document"`
}

// CreateBackup writes an encrypted snapshot of the current document.
func (h *BackupHandler) CreateBackup(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	raw, found, err := h.Docs.Get(user.ID)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Erro ao ler dados")
		return
	}
	if !found {
		raw = json.RawMessage(`{"items":[]}`)
	}

	data := backupData{
		UserID:   user.ID,
		Created:  time.Now(),
		Document: raw,
	}
	plain, err := json.MarshalIndent(&data, "", "  ")
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Erro ao serializar backup")
		return
	}

	enc, err := util.EncryptAES(h.EncryptKey, plain)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Erro ao criptografar backup")
		return
	}

	if err := os.MkdirAll(h.BackupDir, 0o755); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Erro ao criar diretório de backup")
		return
	}

	fileName := fmt.Sprintf("backup-%d-%s.bin", user.ID, uuid.New().String())
	filePath := filepath.Join(h.BackupDir, fileName)

	if err := os.WriteFile(filePath, enc, 0o600); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Erro ao gravar arquivo de backup")
		return
	}

	info, _ := os.Stat(filePath)

	backup := models.Backup{
		UserID:   user.ID,
		FileName: fileName,
		FilePath: filePath,
		Size:     info.Size(),
	}
	if err := h.DB.Create(&backup).Error; err != nil {
		_ = os.Remove(filePath)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Erro ao registrar backup")
		return
	}

	util.Success(c, util.Response{
		"backup": gin.H{
			"id":         backup.ID,
			"file_name":  backup.FileName,
			"size":       backup.Size,
			"created_at": backup.CreatedAt,
		},
	})
}

// ListBackups lists the current user's backups, newest first.
func (h *BackupHandler) ListBackups(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var backups []models.Backup
	if err := h.DB.Where("user_id = ?", user.ID).
		Order("created_at DESC").
		Find(&backups).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Erro ao listar backups")
		return
	}

	list := make([]gin.H, 0, len(backups))
	for _, b := range backups {
		list = append(list, gin.H{
			"id":         b.ID,
			"file_name":  b.FileName,
			"size":       b.Size,
			"created_at": b.CreatedAt,
		})
	}

	util.Success(c, util.Response{
		"backups": list,
	})
}

// findBackup loads one of the current user's backups by path id.
func (h *BackupHandler) findBackup(c *gin.Context, user *models.User) (*models.Backup, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "ID inválido")
		return nil, false
	}

	var backup models.Backup
	if err := h.DB.Where("id = ? AND user_id = ?", id, user.ID).First(&backup).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "Backup não encontrado")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Erro ao consultar backup")
		}
		return nil, false
	}
	return &backup, true
}

// DownloadBackup streams the encrypted backup file.
func (h *BackupHandler) DownloadBackup(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	backup, ok := h.findBackup(c, user)
	if !ok {
		return
	}

	c.FileAttachment(backup.FilePath, backup.FileName)
}

// RestoreBackup replaces the stored document with the backup's content
// and reloads the live ledger, if any.
func (h *BackupHandler) RestoreBackup(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	backup, ok := h.findBackup(c, user)
	if !ok {
		return
	}

	enc, err := os.ReadFile(backup.FilePath)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Erro ao ler arquivo de backup")
		return
	}

	plain, err := util.DecryptAES(h.EncryptKey, enc)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Erro ao descriptografar backup")
		return
	}

	var data backupData
	if err := json.Unmarshal(plain, &data); err != nil || data.UserID != user.ID {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Backup inválido")
		return
	}

	if err := h.Docs.Put(user.ID, data.Document); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Erro ao restaurar dados")
		return
	}
	if err := h.Ledgers.Reload(user.ID); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Erro ao recarregar dados")
		return
	}

	util.Success(c, util.Response{
		"message": "Backup restaurado",
	})
}

// DeleteBackup removes the backup record and its file.
func (h *BackupHandler) DeleteBackup(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	backup, ok := h.findBackup(c, user)
	if !ok {
		return
	}

	if err := h.DB.Delete(backup).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Erro ao excluir backup")
		return
	}
	_ = os.Remove(backup.FilePath)

	util.Success(c, util.Response{
		"message": "Backup excluído",
	})
}
