package expense

import (
	"net/http"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/ykuznetsov/settleup/internal/money"
	"github.com/ykuznetsov/settleup/pkg/response"
)

// csvRow is one exported line: one row per share, so an expense split three
// ways produces three rows that each carry the expense header fields.
type csvRow struct {
	ExpenseID     string `csv:"expense_id"`
	Date          string `csv:"date"`
	Description   string `csv:"description"`
	PayerID       string `csv:"payer_id"`
	TotalAmount   string `csv:"total_amount"`
	SplitType     string `csv:"split_type"`
	ParticipantID string `csv:"participant_id"`
	ShareAmount   string `csv:"share_amount"`
	GroupID       string `csv:"group_id"`
}

// ExportExpenses godoc
// @Summary      Export expenses as CSV
// @Description  Streams the matching expenses as CSV, one row per share
// @Tags         expenses
// @Produce      text/csv
// @Param        user_id     query  string  false  "Only expenses this user paid or shares in"
// @Param        group_id    query  string  false  "Only expenses in this group"
// @Param        start_date  query  string  false  "RFC 3339 lower bound on the expense date"
// @Param        end_date    query  string  false  "RFC 3339 upper bound on the expense date"
// @Success      200  {string}  string  "CSV content"
// @Security     BearerAuth
// @Router       /expenses/export [get]
func (h *Handler) ExportExpenses(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	// Export is unpaginated: page through the store until exhausted.
	const pageSize = 100
	var rows []*csvRow
	for page := 1; ; page++ {
		batch, total, err := h.service.List(r.Context(), filter, page, pageSize)
		if err != nil {
			h.writeError(w, err)
			return
		}
		for _, ws := range batch {
			rows = append(rows, csvRowsFor(ws)...)
		}
		if page*pageSize >= total || len(batch) == 0 {
			break
		}
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="expenses.csv"`)
	if err := gocsv.Marshal(rows, w); err != nil {
		response.InternalError(w, "failed to write csv")
	}
}

func csvRowsFor(ws *WithShares) []*csvRow {
	e := ws.Expense
	groupID := ""
	if e.GroupID != nil {
		groupID = *e.GroupID
	}

	out := make([]*csvRow, 0, len(ws.Shares))
	for _, sh := range ws.Shares {
		out = append(out, &csvRow{
			ExpenseID:     e.ID,
			Date:          e.Date.Format(time.RFC3339),
			Description:   e.Description,
			PayerID:       e.PayerID,
			TotalAmount:   money.Format(e.Amount),
			SplitType:     string(e.SplitType),
			ParticipantID: sh.ParticipantID,
			ShareAmount:   money.Format(sh.Amount),
			GroupID:       groupID,
		})
	}
	return out
}
