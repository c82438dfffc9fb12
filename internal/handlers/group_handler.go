package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "divvy/internal/errors"
	"divvy/internal/money"
	"divvy/internal/services"
)

// GroupHandler handles group, membership and balance requests.
type GroupHandler struct {
	groupService   services.GroupServicer
	balanceService services.BalanceServicer
}

// NewGroupHandler creates a new GroupHandler.
func NewGroupHandler(groupService services.GroupServicer, balanceService services.BalanceServicer) *GroupHandler {
	return &GroupHandler{groupService: groupService, balanceService: balanceService}
}

// CreateGroupRequest represents the request payload for creating a group
type CreateGroupRequest struct {
	Name         string `json:"name" binding:"required,min=1,max=100"`
	Description  string `json:"description" binding:"max=500"`
	BaseCurrency string `json:"base_currency" binding:"omitempty,iso4217"`
}

// MemberBalanceResponse is one member's net position in major units.
type MemberBalanceResponse struct {
	UserID  uint    `json:"user_id"`
	Balance float64 `json:"balance"`
}

// TransferResponse is one suggested settling payment in major units.
type TransferResponse struct {
	FromID uint    `json:"from_id"`
	ToID   uint    `json:"to_id"`
	Amount float64 `json:"amount"`
}

// GroupBalancesResponse is the balances endpoint payload.
type GroupBalancesResponse struct {
	Balances              []MemberBalanceResponse `json:"balances"`
	SuggestedTransactions []TransferResponse      `json:"suggested_transactions"`
}

// UserSummaryResponse aggregates the user's position across groups, major units.
type UserSummaryResponse struct {
	TotalOwed  float64 `json:"total_owed"`
	TotalOwe   float64 `json:"total_owe"`
	NetBalance float64 `json:"net_balance"`
}

// CreateGroup handles group creation
// @Summary     Create a group
// @Description Create a new expense group with the authenticated user as creator and first member
// @Tags        groups
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateGroupRequest true "Group data"
// @Success     201 {object} map[string]interface{} "Created group"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /groups [post]
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	group, err := h.groupService.CreateGroup(userID, req.Name, req.Description, req.BaseCurrency)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, group)
}

// GetUserGroups lists the authenticated user's groups
// @Summary     List groups
// @Description List every group the authenticated user belongs to
// @Tags        groups
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} map[string]interface{} "Groups"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /groups [get]
func (h *GroupHandler) GetUserGroups(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	groups, err := h.groupService.GetUserGroups(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, groups)
}

// GetGroupByID fetches a single group with its members
// @Summary     Get a group
// @Description Get a group with its member list; requester must be a member
// @Tags        groups
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Group ID"
// @Success     200 {object} map[string]interface{} "Group"
// @Failure     400 {object} ErrorResponse "Not a member"
// @Failure     404 {object} ErrorResponse "Group not found"
// @Router      /groups/{id} [get]
func (h *GroupHandler) GetGroupByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	groupID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	group, err := h.groupService.GetGroupByID(userID, groupID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, group)
}

// GetGroupBalances returns the group's derived balance sheet
// @Summary     Get group balances
// @Description Net balance per member plus the suggested transfers that settle the group
// @Tags        groups
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Group ID"
// @Success     200 {object} GroupBalancesResponse "Balances and suggested transactions"
// @Failure     400 {object} ErrorResponse "Not a member"
// @Failure     404 {object} ErrorResponse "Group not found"
// @Failure     500 {object} ErrorResponse "Ledger inconsistency"
// @Router      /groups/{id}/balances [get]
func (h *GroupHandler) GetGroupBalances(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	groupID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.balanceService.GetGroupBalances(userID, groupID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	resp := GroupBalancesResponse{
		Balances:              make([]MemberBalanceResponse, 0, len(result.Balances)),
		SuggestedTransactions: make([]TransferResponse, 0, len(result.Suggested)),
	}
	for _, mb := range result.Balances {
		resp.Balances = append(resp.Balances, MemberBalanceResponse{
			UserID:  mb.UserID,
			Balance: money.FromMinor(mb.Balance),
		})
	}
	for _, tr := range result.Suggested {
		resp.SuggestedTransactions = append(resp.SuggestedTransactions, TransferResponse{
			FromID: tr.FromID,
			ToID:   tr.ToID,
			Amount: money.FromMinor(tr.Amount),
		})
	}

	c.JSON(http.StatusOK, resp)
}

// GetSummary returns the user's cross-group totals
// @Summary     Get user summary
// @Description Total owed to the user, total the user owes, and net, across all groups
// @Tags        groups
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} UserSummaryResponse "Summary"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /groups/summary [get]
func (h *GroupHandler) GetSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.balanceService.GetUserSummary(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, UserSummaryResponse{
		TotalOwed:  money.FromMinor(summary.TotalOwed),
		TotalOwe:   money.FromMinor(summary.TotalOwe),
		NetBalance: money.FromMinor(summary.NetBalance),
	})
}

// AddMember adds a user to a group
// @Summary     Add a group member
// @Description Add a user to the group; requester must already be a member
// @Tags        groups
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Group ID"
// @Param       userId path int true "User ID to add"
// @Success     201 {object} map[string]interface{} "Membership"
// @Failure     400 {object} ErrorResponse "Not a member"
// @Failure     404 {object} ErrorResponse "Group or user not found"
// @Failure     409 {object} ErrorResponse "Already a member"
// @Router      /groups/{id}/members/{userId} [post]
func (h *GroupHandler) AddMember(c *gin.Context) {
	requesterID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	groupID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	userID, err := parsePathID(c, "userId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	membership, err := h.groupService.AddMember(requesterID, groupID, userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, membership)
}

// RemoveMember removes a user from a group
// @Summary     Remove a group member
// @Description Remove a member; refused while the member still has a non-zero balance
// @Tags        groups
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Group ID"
// @Param       userId path int true "User ID to remove"
// @Success     204 "Removed"
// @Failure     400 {object} ErrorResponse "Not a member"
// @Failure     403 {object} ErrorResponse "Creator cannot be removed"
// @Failure     409 {object} ErrorResponse "Outstanding balance"
// @Router      /groups/{id}/members/{userId} [delete]
func (h *GroupHandler) RemoveMember(c *gin.Context) {
	requesterID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	groupID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	userID, err := parsePathID(c, "userId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.groupService.RemoveMember(requesterID, groupID, userID); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
