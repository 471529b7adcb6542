// Package httpapi serves transactions, summaries and imports over HTTP.
package httpapi

import (
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/aggregate"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/container"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/currency"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/dateutils"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/logging"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/models"
)

// maxUploadBytes caps the size of an imported file.
const maxUploadBytes = 10 << 20

// Handler implements the API endpoints on top of the application container.
type Handler struct {
	app    *container.Container
	logger logging.Logger
	now    func() time.Time
}

// NewHandler creates a handler. The container must already be loaded.
func NewHandler(app *container.Container) *Handler {
	return &Handler{
		app:    app,
		logger: app.GetLogger().WithField(logging.FieldComponent, "httpapi"),
		now:    time.Now,
	}
}

// TransactionView is a transaction as shown to clients.
type TransactionView struct {
	models.Transaction
	AmountSecondary decimal.Decimal `json:"amountSecondary"`
	CategoryMissing bool            `json:"categoryMissing"`
}

func (h *Handler) view(t models.Transaction) TransactionView {
	secondary := h.app.GetNormalizer().ToSecondary(t.Amount)
	if t.AmountOriginal != nil {
		secondary = *t.AmountOriginal
	}
	return TransactionView{
		Transaction:     t,
		AmountSecondary: currency.Round2(secondary),
		CategoryMissing: t.CategoryID != "" && !h.app.KnownCategory(t.CategoryID),
	}
}

// dateRange reads `start`/`end` or a `range` preset. No parameters select all time.
func (h *Handler) dateRange(c *gin.Context) (models.DateRange, error) {
	start, end := c.Query("start"), c.Query("end")
	if start != "" || end != "" {
		r := models.DateRange{Label: "Custom"}
		var err error
		if start != "" {
			if r.Start, err = dateutils.NormalizeISO(start); err != nil {
				return r, err
			}
		}
		if end != "" {
			if r.End, err = dateutils.NormalizeISO(end); err != nil {
				return r, err
			}
		}
		return r, nil
	}
	return aggregate.PresetRange(c.DefaultQuery("range", aggregate.PresetAllTime), h.now())
}

func filterFromQuery(c *gin.Context) (aggregate.Filter, error) {
	f := aggregate.Filter{
		CategoryID:  c.Query("category"),
		Subcategory: c.Query("subcategory"),
		BankName:    c.Query("bank"),
		Search:      c.Query("search"),
	}
	if raw := c.Query("type"); raw != "" {
		t, ok := models.ParseTransactionType(raw)
		if !ok {
			return f, &invalidParam{name: "type", value: raw}
		}
		f.Type = t
	}
	return f, nil
}

type invalidParam struct{ name, value string }

func (e *invalidParam) Error() string {
	return "invalid " + e.name + " parameter: " + e.value
}

// selection applies the range and filters from the query.
func (h *Handler) selection(c *gin.Context) (models.DateRange, []models.Transaction, bool) {
	r, err := h.dateRange(c)
	if err != nil {
		BadRequest(c, err.Error())
		return r, nil, false
	}
	f, err := filterFromQuery(c)
	if err != nil {
		BadRequest(c, err.Error())
		return r, nil, false
	}
	txs := aggregate.ApplyFilters(aggregate.FilterByDateRange(h.app.GetRepository().List(), r), f)
	return r, txs, true
}

// ListTransactions handles GET /api/transactions.
func (h *Handler) ListTransactions(c *gin.Context) {
	r, txs, ok := h.selection(c)
	if !ok {
		return
	}
	sort.SliceStable(txs, func(i, j int) bool { return txs[i].Date > txs[j].Date })

	views := make([]TransactionView, 0, len(txs))
	for _, t := range txs {
		views = append(views, h.view(t))
	}
	Success(c, gin.H{"range": r, "count": len(views), "transactions": views})
}

// CreateTransaction handles POST /api/transactions.
func (h *Handler) CreateTransaction(c *gin.Context) {
	var entry container.ManualEntry
	if err := c.ShouldBindJSON(&entry); err != nil {
		BadRequest(c, err.Error())
		return
	}
	tx, err := h.app.AddTransaction(c.Request.Context(), entry)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, h.view(tx))
}

type patchRequest struct {
	models.TransactionPatch
	// Remember confirms the merchant mapping when a category is assigned.
	Remember bool `json:"remember"`
}

// UpdateTransaction handles PATCH /api/transactions/:id. Category changes go
// through the categorization flow; the other present fields are applied as a
// partial update.
func (h *Handler) UpdateTransaction(c *gin.Context) {
	id := c.Param("id")
	var req patchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	patch := req.TransactionPatch
	ctx := c.Request.Context()

	var (
		tx  models.Transaction
		err error
	)
	if patch.CategoryID != nil {
		sub := ""
		if patch.SubcategoryName != nil {
			sub = *patch.SubcategoryName
		}
		if tx, err = h.app.Categorize(ctx, id, *patch.CategoryID, sub, req.Remember); err != nil {
			Fail(c, err)
			return
		}
		patch.CategoryID, patch.CategoryName, patch.SubcategoryName = nil, nil, nil
	} else if patch.CategoryName != nil {
		BadRequest(c, "categoryName cannot be set without categoryId")
		return
	}

	if !patch.IsEmpty() {
		if patch.Date != nil {
			iso, err := dateutils.NormalizeISO(*patch.Date)
			if err != nil {
				BadRequest(c, err.Error())
				return
			}
			patch.Date = &iso
		}
		if tx, err = h.app.GetRepository().Update(ctx, id, patch); err != nil {
			Fail(c, err)
			return
		}
	} else if req.CategoryID == nil {
		BadRequest(c, "no fields to update")
		return
	}
	Success(c, h.view(tx))
}

// DeleteTransaction handles DELETE /api/transactions/:id.
func (h *Handler) DeleteTransaction(c *gin.Context) {
	if err := h.app.GetRepository().Delete(c.Request.Context(), c.Param("id")); err != nil {
		Fail(c, err)
		return
	}
	SuccessWithMessage(c, "deleted", nil)
}

// Overview handles GET /api/overview.
func (h *Handler) Overview(c *gin.Context) {
	r, txs, ok := h.selection(c)
	if !ok {
		return
	}
	Success(c, aggregate.BuildOverview(txs, r, h.now(), h.app.KnownCategory))
}

// CategoryBreakdown handles GET /api/breakdown/categories.
func (h *Handler) CategoryBreakdown(c *gin.Context) {
	r, txs, ok := h.selection(c)
	if !ok {
		return
	}
	active, _ := aggregate.PartitionActive(txs)
	Success(c, gin.H{"range": r, "categories": aggregate.CategoryBreakdown(active, h.app.GetCategories().List())})
}

// SubcategoryBreakdown handles GET /api/breakdown/subcategories/:id.
func (h *Handler) SubcategoryBreakdown(c *gin.Context) {
	r, txs, ok := h.selection(c)
	if !ok {
		return
	}
	active, _ := aggregate.PartitionActive(txs)
	Success(c, gin.H{
		"range":         r,
		"categoryId":    c.Param("id"),
		"subcategories": aggregate.SubcategoryBreakdown(active, c.Param("id")),
	})
}

// Merchants handles GET /api/merchants. With excluded=true the excluded
// transactions are grouped and ordered by signed magnitude.
func (h *Handler) Merchants(c *gin.Context) {
	r, txs, ok := h.selection(c)
	if !ok {
		return
	}
	active, excluded := aggregate.PartitionActive(txs)

	groups := aggregate.GroupByMerchant(active, aggregate.SortByAmount)
	if showExcluded, _ := strconv.ParseBool(c.Query("excluded")); showExcluded {
		groups = aggregate.GroupByMerchant(excluded, aggregate.SortBySignedMagnitude)
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 && limit < len(groups) {
		groups = groups[:limit]
	}
	Success(c, gin.H{"range": r, "merchants": groups})
}

// Trend handles GET /api/trend.
func (h *Handler) Trend(c *gin.Context) {
	g, err := aggregate.ParseGranularity(c.DefaultQuery("granularity", string(aggregate.Monthly)))
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	r, txs, ok := h.selection(c)
	if !ok {
		return
	}
	buckets, err := aggregate.TrendSeries(txs, g, r, h.app.GetNormalizer())
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	Success(c, gin.H{"range": r, "granularity": g, "buckets": buckets})
}

// Categories handles GET /api/categories.
func (h *Handler) Categories(c *gin.Context) {
	cats := h.app.GetCategories().List()
	if raw := c.Query("type"); raw != "" {
		t, ok := models.ParseTransactionType(raw)
		if !ok {
			BadRequest(c, (&invalidParam{name: "type", value: raw}).Error())
			return
		}
		cats = h.app.GetCategories().ListByType(t)
	}
	Success(c, cats)
}

// Mappings handles GET /api/mappings.
func (h *Handler) Mappings(c *gin.Context) {
	Success(c, h.app.GetMerchants().List())
}

// Import handles POST /api/import with a multipart `file`, an optional
// `bank` and `dryRun`.
func (h *Handler) Import(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "missing file: "+err.Error())
		return
	}
	if fileHeader.Size > maxUploadBytes {
		Error(c, http.StatusRequestEntityTooLarge, "file too large")
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			h.logger.WithError(err).Warn("Failed to close upload")
		}
	}()
	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	opts := h.app.ImportOptions(fileHeader.Filename, strings.TrimSpace(c.PostForm("bank")))
	if dryRun, _ := strconv.ParseBool(c.PostForm("dryRun")); dryRun {
		res, err := h.app.GetImporter().Preview(data, opts)
		if err != nil {
			Fail(c, err)
			return
		}
		SuccessWithMessage(c, "preview", res)
		return
	}

	outcome, err := h.app.GetImporter().Import(c.Request.Context(), data, opts)
	if err != nil {
		Fail(c, err)
		return
	}
	SuccessWithMessage(c, outcome.Message(), gin.H{
		"imported":        len(outcome.Imported),
		"autoCategorized": outcome.Result.AutoCategorized,
		"skipped":         outcome.Result.Skipped,
		"layout":          outcome.Result.Layout,
	})
}
