package router

import (
	"net/http"

	"github.com/alves212/gastos/internal/config"
	"github.com/alves212/gastos/internal/docstore"
	"github.com/alves212/gastos/internal/handler"
	"github.com/alves212/gastos/internal/ledger"
	"github.com/alves212/gastos/internal/middleware"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter configures Gin engine, templates and static resources.
func SetupRouter(cfg *config.Config, db *gorm.DB, docs *docstore.Store, ledgers *ledger.Manager) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// static files and templates
	r.Static("/static", "./web/static")
	r.LoadHTMLGlob("web/templates/*")

	// entry -> login page
	r.GET("/", func(c *gin.Context) {
		c.HTML(http.StatusOK, "login.html", gin.H{
			"title": "Gastos - Login",
		})
	})

	r.GET("/signup", func(c *gin.Context) {
		c.HTML(http.StatusOK, "signup.html", gin.H{
			"title": "Gastos - Criar Conta",
		})
	})

	r.GET("/dashboard", func(c *gin.Context) {
		c.HTML(http.StatusOK, "dashboard.html", gin.H{
			"title": "Gastos - Dashboard",
		})
	})

	// unknown paths go back to the entry screen
	r.NoRoute(func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/")
	})

	// ====== API ======
	api := r.Group("/api")

	jwtSecret := cfg.JWT.Secret

	authHandler := handler.NewAuthHandler(db, jwtSecret, cfg.JWT.ExpireHours, cfg.Security.BcryptCost, ledgers)
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(
		middleware.AuthMiddleware(jwtSecret, db),
		middleware.AuditMiddleware(db, cfg.Security.EncryptionKey),
	)

	protected.POST("/auth/logout", authHandler.Logout)
	protected.GET("/me", handler.GetMe)

	ledgerHandler := handler.NewLedgerHandler(ledgers, cfg.App.Currency)
	protected.GET("/ledger", ledgerHandler.GetLedger)
	protected.POST("/ledger/items", ledgerHandler.AddItem)
	protected.PUT("/ledger/items/:id", ledgerHandler.UpdateItem)
	protected.DELETE("/ledger/items/:id", ledgerHandler.RemoveItem)
	protected.POST("/ledger/select", ledgerHandler.Select)
	protected.POST("/ledger/move-up", ledgerHandler.MoveUp)
	protected.POST("/ledger/move-down", ledgerHandler.MoveDown)
	protected.POST("/ledger/sort", ledgerHandler.CycleSort)
	protected.POST("/ledger/filter", ledgerHandler.CycleFilter)

	backupHandler := handler.NewBackupHandler(db, docs, ledgers, cfg.Security.EncryptionKey, cfg.Backup.Dir)
	protected.POST("/backups", backupHandler.CreateBackup)
	protected.GET("/backups", backupHandler.ListBackups)
	protected.GET("/backups/:id/download", backupHandler.DownloadBackup)
	protected.POST("/backups/:id/restore", backupHandler.RestoreBackup)
	protected.DELETE("/backups/:id", backupHandler.DeleteBackup)

	protected.POST("/profile", handler.UpdateProfile(db))
	protected.POST("/profile/password", handler.ChangePassword(db))
	protected.POST("/profile/delete", handler.DeleteAccount(db, ledgers))

	logHandler := handler.NewLogHandler(db, cfg.Security.EncryptionKey)
	protected.GET("/logs", logHandler.ListLogs)

	exportHandler := handler.NewExportHandler(ledgers)
	protected.GET("/export/csv", exportHandler.ExportCSV)
	protected.GET("/export/xlsx", exportHandler.ExportXLSX)

	return r
}
