package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "divvy/internal/errors"
	"divvy/internal/models"
	"divvy/internal/money"
	"divvy/internal/services"
)

// RecurringHandler handles recurring expense rule requests.
type RecurringHandler struct {
	recurringService services.RecurringServicer
}

// NewRecurringHandler creates a new RecurringHandler.
func NewRecurringHandler(recurringService services.RecurringServicer) *RecurringHandler {
	return &RecurringHandler{recurringService: recurringService}
}

// RecurringRequest represents the request payload for creating a recurring
// expense rule. Amounts are major units with two decimals.
type RecurringRequest struct {
	GroupID       uint           `json:"group_id" binding:"required"`
	PayerID       uint           `json:"payer_id" binding:"required"`
	Description   string         `json:"description" binding:"required,max=255"`
	Amount        float64        `json:"amount" binding:"required,gt=0"`
	Currency      string         `json:"currency" binding:"omitempty,iso4217"`
	Category      string         `json:"category" binding:"omitempty,expense_category"`
	Frequency     string         `json:"frequency" binding:"required,recurring_frequency"`
	NextSpawnDate time.Time      `json:"next_spawn_date" binding:"required"`
	Splits        []SplitRequest `json:"splits" binding:"required,min=1,dive"`
}

// SetStatusRequest represents the request payload for a status transition.
type SetStatusRequest struct {
	Status string `json:"status" binding:"required,recurring_status"`
}

// TriggerResponse lists the expenses a trigger pass materialized.
type TriggerResponse struct {
	SpawnedExpenseIDs []uint `json:"spawned_expense_ids"`
}

// recurringJSON renders a recurring rule with amounts converted back to
// major units; minor units never leave the API.
func recurringJSON(r *models.RecurringExpense) gin.H {
	splits := make([]gin.H, 0, len(r.Splits))
	for i := range r.Splits {
		splits = append(splits, gin.H{
			"id":          r.Splits[i].ID,
			"user_id":     r.Splits[i].UserID,
			"amount_owed": money.FromMinor(r.Splits[i].AmountOwed),
		})
	}
	return gin.H{
		"id":              r.ID,
		"group_id":        r.GroupID,
		"payer_id":        r.PayerID,
		"description":     r.Description,
		"amount":          money.FromMinor(r.Amount),
		"currency":        r.Currency,
		"category":        r.Category,
		"frequency":       r.Frequency,
		"status":          r.Status,
		"next_spawn_date": r.NextSpawnDate,
		"created_at":      r.CreatedAt,
		"splits":          splits,
	}
}

// CreateRecurring creates a recurring expense rule
// @Summary     Create a recurring expense
// @Description Create a rule that spawns an expense every period from its next spawn date
// @Tags        recurring
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body RecurringRequest true "Recurring rule data"
// @Success     201 {object} map[string]interface{} "Created rule"
// @Failure     400 {object} ErrorResponse "Invalid input or split mismatch"
// @Failure     404 {object} ErrorResponse "Group not found"
// @Router      /recurring [post]
func (h *RecurringHandler) CreateRecurring(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req RecurringRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	in := services.RecurringInput{
		GroupID:       req.GroupID,
		PayerID:       req.PayerID,
		Description:   req.Description,
		Amount:        money.ToMinor(req.Amount),
		Currency:      req.Currency,
		Category:      models.CategoryGeneral,
		Frequency:     models.Frequency(req.Frequency),
		NextSpawnDate: req.NextSpawnDate,
	}
	if req.Category != "" {
		in.Category = models.Category(req.Category)
	}
	for _, s := range req.Splits {
		in.Splits = append(in.Splits, services.SplitInput{
			UserID:     s.UserID,
			AmountOwed: money.ToMinor(s.AmountOwed),
		})
	}

	rule, err := h.recurringService.CreateRecurring(userID, in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, recurringJSON(rule))
}

// GetGroupRecurring lists a group's recurring rules
// @Summary     List group recurring expenses
// @Description All recurring rules of a group with their split templates
// @Tags        recurring
// @Produce     json
// @Security    BearerAuth
// @Param       groupId path int true "Group ID"
// @Success     200 {array} map[string]interface{} "Recurring rules"
// @Failure     400 {object} ErrorResponse "Not a member"
// @Failure     404 {object} ErrorResponse "Group not found"
// @Router      /recurring/group/{groupId} [get]
func (h *RecurringHandler) GetGroupRecurring(c *gin.Context) {
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

	rules, err := h.recurringService.GetGroupRecurring(userID, groupID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	out := make([]gin.H, 0, len(rules))
	for i := range rules {
		out = append(out, recurringJSON(&rules[i]))
	}
	c.JSON(http.StatusOK, out)
}

// SetStatus transitions a recurring rule's lifecycle state
// @Summary     Pause, resume or cancel a recurring expense
// @Description Transition a rule between active, paused and cancelled; cancelled is final
// @Tags        recurring
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Recurring expense ID"
// @Param       request body SetStatusRequest true "Target status"
// @Success     200 {object} map[string]interface{} "Updated rule"
// @Failure     400 {object} ErrorResponse "Invalid status"
// @Failure     404 {object} ErrorResponse "Rule not found"
// @Failure     409 {object} ErrorResponse "Rule already cancelled"
// @Router      /recurring/{id}/status [put]
func (h *RecurringHandler) SetStatus(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	recurringID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	rule, err := h.recurringService.SetStatus(userID, recurringID, models.RecurringStatus(req.Status))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, recurringJSON(rule))
}

// Trigger runs a spawn pass over all due recurring rules
// @Summary     Trigger recurring spawns
// @Description Materialize every due period of every active rule; safe to call concurrently
// @Tags        recurring
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} TriggerResponse "IDs of spawned expenses"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /recurring/trigger [post]
func (h *RecurringHandler) Trigger(c *gin.Context) {
	if _, err := getUserID(c); err != nil {
		respondWithError(c, err)
		return
	}

	spawned, err := h.recurringService.TriggerSpawn(time.Now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, TriggerResponse{SpawnedExpenseIDs: spawned})
}
