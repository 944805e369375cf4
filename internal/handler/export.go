package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/alves212/gastos/internal/ledger"
	"github.com/alves212/gastos/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// ExportHandler writes the current ledger out as CSV or XLSX.
type ExportHandler struct {
	Ledgers *ledger.Manager
}

func NewExportHandler(ledgers *ledger.Manager) *ExportHandler {
	return &ExportHandler{Ledgers: ledgers}
}

var exportHeader = []string{"Tipo", "Descrição", "Valor", "Marcado"}

func exportRow(it ledger.LineItem) []string {
	tipo := "Despesa"
	if it.Sign == ledger.SignCredit {
		tipo = "Receita"
	}
	marcado := "não"
	if it.Checked {
		marcado = "sim"
	}
	return []string{
		tipo,
		it.Description,
		strconv.FormatFloat(it.Amount, 'f', 2, 64),
		marcado,
	}
}

// ExportCSV streams the ledger as CSV.
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	s, err := h.Ledgers.Acquire(user.ID)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Erro ao carregar dados")
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"gastos_%s.csv\"",
		time.Now().Format("20060102")))

	// UTF-8 BOM so spreadsheet apps pick up the accents
	_, _ = c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	_ = writer.Write(exportHeader)
	for _, it := range s.Items() {
		_ = writer.Write(exportRow(it))
	}
}

// ExportXLSX streams the ledger as an Excel workbook with a totals block.
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	s, err := h.Ledgers.Acquire(user.ID)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Erro ao carregar dados")
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Lançamentos"
	f.SetSheetName("Sheet1", sheet)

	for col, title := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = f.SetCellValue(sheet, cell, title)
	}

	items := s.Items()
	for row, it := range items {
		for col, value := range exportRow(it) {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			_ = f.SetCellValue(sheet, cell, value)
		}
	}

	totals := s.Totals()
	base := len(items) + 3
	_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", base), "Receitas")
	_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", base), totals.Income.StringFixed(2))
	_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", base+1), "Despesas")
	_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", base+1), totals.Expenses.StringFixed(2))
	_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", base+2), "Saldo")
	_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", base+2), totals.Balance.StringFixed(2))

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"gastos_%s.xlsx\"",
		time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Erro ao gerar planilha")
	}
}
