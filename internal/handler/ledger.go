package handler

import (
	"net/http"

	"github.com/alves212/gastos/internal/ledger"
	"github.com/alves212/gastos/internal/util"

	"github.com/gin-gonic/gin"
)

// LedgerHandler exposes the ledger store operations. Rows are addressed
// by item id, never by a position into the filtered view, so an active
// filter can never make an operation hit a hidden row.
type LedgerHandler struct {
	Ledgers  *ledger.Manager
	Currency string
}

func NewLedgerHandler(ledgers *ledger.Manager, currency string) *LedgerHandler {
	return &LedgerHandler{
		Ledgers:  ledgers,
		Currency: currency,
	}
}

// ---------- request/response shapes ----------

type itemResp struct {
	ID          string      `json:"id"`
	Description string      `json:"description"`
	Amount      float64     `json:"amount"`
	Sign        ledger.Sign `json:"sign"`
	Checked     bool        `json:"checked"`
}

type addItemReq struct {
	Sign ledger.Sign `json:"sign" binding:"required,oneof=+ -"`
}

type updateItemReq struct {
	Field string `json:"field" binding:"required,oneof=description amount sign checked"`
	Value string `json:"value"`
}

type selectReq struct {
	ID string `json:"id"` // empty clears the selection
}

func toItemResp(items []ledger.LineItem) []itemResp {
	out := make([]itemResp, 0, len(items))
	for _, it := range items {
		out = append(out, itemResp{
			ID:          it.ID,
			Description: it.Description,
			Amount:      it.Amount,
			Sign:        it.Sign,
			Checked:     it.Checked,
		})
	}
	return out
}

// stateResponse renders one consistent snapshot: the displayed rows, the
// aggregates of the full ledger and the display state.
func (h *LedgerHandler) stateResponse(s *ledger.Store) util.Response {
	st := s.State()

	totals := gin.H{
		"income":    st.Totals.Income,
		"expenses":  st.Totals.Expenses,
		"balance":   st.Totals.Balance,
		"formatted": st.Totals.Formatted(h.Currency),
	}

	resp := util.Response{
		"items":       toItemResp(st.Items),
		"item_count":  len(st.All),
		"totals":      totals,
		"sort_mode":   st.SortMode.String(),
		"filter":      st.Filter.String(),
		"selected_id": st.SelectedID,
		"unsaved":     st.Unsaved,
	}
	if st.SaveErr != nil {
		resp["save_error"] = st.SaveErr.Error()
	}
	return resp
}

// acquire resolves the session's live store, loading it on first use.
func (h *LedgerHandler) acquire(c *gin.Context) (*ledger.Store, bool) {
	user, ok := currentUser(c)
	if !ok {
		return nil, false
	}
	s, err := h.Ledgers.Acquire(user.ID)
	if err != nil {
		// a read failure is not an empty ledger; surface it
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Erro ao carregar dados")
		return nil, false
	}
	return s, true
}

// ---------- operations ----------

// GetLedger returns the current snapshot.
func (h *LedgerHandler) GetLedger(c *gin.Context) {
	s, ok := h.acquire(c)
	if !ok {
		return
	}
	util.Success(c, h.stateResponse(s))
}

// AddItem appends a blank income ("+") or expense ("-") row.
func (h *LedgerHandler) AddItem(c *gin.Context) {
	s, ok := h.acquire(c)
	if !ok {
		return
	}

	var req addItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Parâmetros inválidos")
		return
	}

	item, _ := s.AddItem(req.Sign)

	resp := h.stateResponse(s)
	resp["added_id"] = item.ID
	util.Success(c, resp)
}

// RemoveItem deletes one row by id. A stale id is a silent no-op, per the
// ledger's failure semantics.
func (h *LedgerHandler) RemoveItem(c *gin.Context) {
	s, ok := h.acquire(c)
	if !ok {
		return
	}

	s.RemoveItem(c.Param("id"))
	util.Success(c, h.stateResponse(s))
}

// UpdateItem writes one field of one row; values are coerced, never
// rejected (bad amounts become 0, long descriptions are truncated).
func (h *LedgerHandler) UpdateItem(c *gin.Context) {
	s, ok := h.acquire(c)
	if !ok {
		return
	}

	var req updateItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Parâmetros inválidos")
		return
	}

	s.UpdateField(c.Param("id"), req.Field, req.Value)
	util.Success(c, h.stateResponse(s))
}

// Select marks a row for the move operations; empty id clears it.
func (h *LedgerHandler) Select(c *gin.Context) {
	s, ok := h.acquire(c)
	if !ok {
		return
	}

	var req selectReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Parâmetros inválidos")
		return
	}

	s.Select(req.ID)
	util.Success(c, h.stateResponse(s))
}

// MoveUp swaps the selected row with its upper neighbour; no-op at the
// top or without a selection.
func (h *LedgerHandler) MoveUp(c *gin.Context) {
	s, ok := h.acquire(c)
	if !ok {
		return
	}
	s.MoveUp()
	util.Success(c, h.stateResponse(s))
}

// MoveDown swaps the selected row with its lower neighbour.
func (h *LedgerHandler) MoveDown(c *gin.Context) {
	s, ok := h.acquire(c)
	if !ok {
		return
	}
	s.MoveDown()
	util.Success(c, h.stateResponse(s))
}

// CycleSort advances original -> asc -> desc -> original.
func (h *LedgerHandler) CycleSort(c *gin.Context) {
	s, ok := h.acquire(c)
	if !ok {
		return
	}
	s.CycleSort()
	util.Success(c, h.stateResponse(s))
}

// CycleFilter advances all -> checked -> unchecked -> all.
func (h *LedgerHandler) CycleFilter(c *gin.Context) {
	s, ok := h.acquire(c)
	if !ok {
		return
	}
	s.CycleFilter()
	util.Success(c, h.stateResponse(s))
}
