package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "divvy/internal/errors"
	"divvy/internal/models"
	"divvy/internal/money"
	"divvy/internal/pagination"
	"divvy/internal/services"
)

// SettlementHandler handles settlement requests.
type SettlementHandler struct {
	settlementService services.SettlementServicer
}

// NewSettlementHandler creates a new SettlementHandler.
func NewSettlementHandler(settlementService services.SettlementServicer) *SettlementHandler {
	return &SettlementHandler{settlementService: settlementService}
}

// SettlementRequest represents the request payload for recording a payment.
type SettlementRequest struct {
	GroupID uint    `json:"group_id" binding:"required"`
	PayerID uint    `json:"payer_id" binding:"required"`
	PayeeID uint    `json:"payee_id" binding:"required"`
	Amount  float64 `json:"amount" binding:"required,gt=0"`
}

// RecordSettlement records a repayment between two members
// @Summary     Record a settlement
// @Description Record a payment from one member to another within a group
// @Tags        settlements
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body SettlementRequest true "Settlement data"
// @Success     201 {object} map[string]interface{} "Recorded settlement"
// @Failure     400 {object} ErrorResponse "Invalid input or self settlement"
// @Failure     404 {object} ErrorResponse "Group not found"
// @Router      /settlements [post]
func (h *SettlementHandler) RecordSettlement(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SettlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	settlement, err := h.settlementService.RecordSettlement(
		userID, req.GroupID, req.PayerID, req.PayeeID, money.ToMinor(req.Amount))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, settlementJSON(settlement))
}

// settlementJSON renders a settlement with the amount converted back to
// major units; minor units never leave the API.
func settlementJSON(s *models.Settlement) gin.H {
	return gin.H{
		"id":         s.ID,
		"group_id":   s.GroupID,
		"payer_id":   s.PayerID,
		"payee_id":   s.PayeeID,
		"amount":     money.FromMinor(s.Amount),
		"currency":   s.Currency,
		"created_at": s.CreatedAt,
	}
}

// GetGroupSettlements lists a group's settlement history
// @Summary     List group settlements
// @Description Paginated settlement history for a group, newest first
// @Tags        settlements
// @Produce     json
// @Security    BearerAuth
// @Param       groupId path int true "Group ID"
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size (max 100)"
// @Success     200 {object} map[string]interface{} "Page of settlements"
// @Failure     400 {object} ErrorResponse "Not a member"
// @Failure     404 {object} ErrorResponse "Group not found"
// @Router      /settlements/group/{groupId} [get]
func (h *SettlementHandler) GetGroupSettlements(c *gin.Context) {
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

	result, err := h.settlementService.GetGroupSettlements(userID, groupID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	data := make([]gin.H, 0, len(result.Data))
	for i := range result.Data {
		data = append(data, settlementJSON(&result.Data[i]))
	}
	c.JSON(http.StatusOK, pagination.PageResponse[gin.H]{
		Data:       data,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalItems: result.TotalItems,
		TotalPages: result.TotalPages,
	})
}
