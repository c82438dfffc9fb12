package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "divvy/internal/errors"
	"divvy/internal/models"
	"divvy/internal/money"
	"divvy/internal/pagination"
	"divvy/internal/services"
)

// ExpenseHandler handles expense requests.
type ExpenseHandler struct {
	expenseService services.ExpenseServicer
}

// NewExpenseHandler creates a new ExpenseHandler.
func NewExpenseHandler(expenseService services.ExpenseServicer) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService}
}

// SplitRequest is one participant's share, in major units.
type SplitRequest struct {
	UserID     uint    `json:"user_id" binding:"required"`
	AmountOwed float64 `json:"amount_owed" binding:"gte=0"`
}

// ExpenseRequest represents the request payload for creating or updating
// an expense. Amounts are major units with two decimals.
type ExpenseRequest struct {
	GroupID     uint           `json:"group_id" binding:"required"`
	PayerID     uint           `json:"payer_id" binding:"required"`
	Description string         `json:"description" binding:"required,max=255"`
	Amount      float64        `json:"amount" binding:"required,gt=0"`
	Currency    string         `json:"currency" binding:"omitempty,iso4217"`
	Category    string         `json:"category" binding:"omitempty,expense_category"`
	Date        *time.Time     `json:"date"`
	Splits      []SplitRequest `json:"splits" binding:"required,min=1,dive"`
}

// expenseJSON renders an expense with amounts converted back to major
// units; minor units never leave the API.
func expenseJSON(e *models.Expense) gin.H {
	splits := make([]gin.H, 0, len(e.Splits))
	for _, s := range e.Splits {
		splits = append(splits, gin.H{
			"id":          s.ID,
			"user_id":     s.UserID,
			"amount_owed": money.FromMinor(s.AmountOwed),
		})
	}
	return gin.H{
		"id":          e.ID,
		"group_id":    e.GroupID,
		"payer_id":    e.PayerID,
		"description": e.Description,
		"amount":      money.FromMinor(e.Amount),
		"currency":    e.Currency,
		"category":    e.Category,
		"date":        e.Date,
		"created_at":  e.CreatedAt,
		"splits":      splits,
	}
}

func (r *ExpenseRequest) toInput() services.ExpenseInput {
	in := services.ExpenseInput{
		GroupID:     r.GroupID,
		PayerID:     r.PayerID,
		Description: r.Description,
		Amount:      money.ToMinor(r.Amount),
		Currency:    r.Currency,
		Category:    models.CategoryGeneral,
	}
	if r.Category != "" {
		in.Category = models.Category(r.Category)
	}
	if r.Date != nil {
		in.Date = *r.Date
	}
	for _, s := range r.Splits {
		in.Splits = append(in.Splits, services.SplitInput{
			UserID:     s.UserID,
			AmountOwed: money.ToMinor(s.AmountOwed),
		})
	}
	return in
}

// CreateExpense records a new expense
// @Summary     Create an expense
// @Description Record an expense with its splits; split amounts must sum exactly to the total
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body ExpenseRequest true "Expense data"
// @Success     201 {object} map[string]interface{} "Created expense"
// @Failure     400 {object} ErrorResponse "Invalid input or split mismatch"
// @Failure     404 {object} ErrorResponse "Group not found"
// @Router      /expenses [post]
func (h *ExpenseHandler) CreateExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	expense, err := h.expenseService.CreateExpense(userID, req.toInput())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, expenseJSON(expense))
}

// UpdateExpense rewrites an expense and its splits
// @Summary     Update an expense
// @Description Replace an expense's fields and splits atomically
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Expense ID"
// @Param       request body ExpenseRequest true "New expense data"
// @Success     200 {object} map[string]interface{} "Updated expense"
// @Failure     400 {object} ErrorResponse "Invalid input or split mismatch"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Router      /expenses/{id} [put]
func (h *ExpenseHandler) UpdateExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	expenseID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	expense, err := h.expenseService.UpdateExpense(userID, expenseID, req.toInput())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, expenseJSON(expense))
}

// DeleteExpense removes an expense
// @Summary     Delete an expense
// @Description Delete an expense and its splits
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Expense ID"
// @Success     204 "Deleted"
// @Failure     400 {object} ErrorResponse "Not a member"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Router      /expenses/{id} [delete]
func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	expenseID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.expenseService.DeleteExpense(userID, expenseID); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetGroupExpenses lists a group's expenses
// @Summary     List group expenses
// @Description Paginated expense history for a group, newest first
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       groupId path int true "Group ID"
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size (max 100)"
// @Success     200 {object} map[string]interface{} "Page of expenses"
// @Failure     400 {object} ErrorResponse "Not a member"
// @Failure     404 {object} ErrorResponse "Group not found"
// @Router      /expenses/group/{groupId} [get]
func (h *ExpenseHandler) GetGroupExpenses(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	groupID, err := parsePathID(c, "groupId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.expenseService.GetGroupExpenses(userID, groupID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	data := make([]gin.H, 0, len(result.Data))
	for i := range result.Data {
		data = append(data, expenseJSON(&result.Data[i]))
	}
	c.JSON(http.StatusOK, pagination.PageResponse[gin.H]{
		Data:       data,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalItems: result.TotalItems,
		TotalPages: result.TotalPages,
	})
}
