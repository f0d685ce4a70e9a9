package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mrhexvel/ezgu/internal/middleware"
	"github.com/mrhexvel/ezgu/internal/service"
)

type InvitationHandler struct {
	invitationService *service.InvitationService
	authService       *service.AuthService
}

func NewInvitationHandler(invitationService *service.InvitationService, authService *service.AuthService) *InvitationHandler {
	return &InvitationHandler{invitationService: invitationService, authService: authService}
}

// POST /projects/:id/invite
func (h *InvitationHandler) Invite(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		UserIDs []uint `json:"user_ids" binding:"required"`
		Message string `json:"message" binding:"max=1000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.invitationService.Invite(c.Request.Context(), id, middleware.GetCurrentUser(c), req.UserIDs, req.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	LogOperation(h.authService, c, "invite", "project", id, map[string]interface{}{
		"invited": len(result.Invitations),
		"skipped": result.Skipped,
	})
	c.JSON(http.StatusCreated, gin.H{
		"message":     "invitations sent",
		"invitations": result.Invitations,
		"skipped":     result.Skipped,
	})
}

// GET /invitations
func (h *InvitationHandler) ListPending(c *gin.Context) {
	invitations, err := h.invitationService.ListPending(c.Request.Context(), middleware.GetCurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, "invitations", invitations)
}

// POST /invitations/:id/accept
func (h *InvitationHandler) Accept(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	invitation, participant, err := h.invitationService.Accept(c.Request.Context(), id, middleware.GetCurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":     "invitation accepted",
		"invitation":  invitation,
		"participant": participant,
	})
}

// POST /invitations/:id/decline
func (h *InvitationHandler) Decline(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	invitation, err := h.invitationService.Decline(c.Request.Context(), id, middleware.GetCurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	Updated(c, "invitation declined", "invitation", invitation)
}
