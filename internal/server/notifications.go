package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	fiscaldomain "github.com/tecnomade/clouget-pos/internal/fiscal/domain"
	notificationdomain "github.com/tecnomade/clouget-pos/internal/notification/domain"
)

func (s *Server) SendNotification(c *gin.Context) {
	var req struct {
		DocumentKind string `json:"document_kind"`
		DocumentID   string `json:"document_id"`
		Address      string `json:"address"`
		Subject      string `json:"subject"`
		Body         string `json:"body"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	kind := fiscaldomain.DocKind(strings.ToUpper(strings.TrimSpace(req.DocumentKind)))
	if kind != fiscaldomain.DocInvoice && kind != fiscaldomain.DocCreditNote {
		AbortWithError(c, newValidationError("document_kind", "invalid_document_kind", "invalid document_kind"))
		return
	}

	documentID, err := strconv.ParseInt(strings.TrimSpace(req.DocumentID), 10, 64)
	if err != nil {
		AbortWithError(c, newValidationError("document_id", "invalid_document_id", "invalid document_id"))
		return
	}

	resp, err := s.notificationSvc.SendOrQueue(c.Request.Context(), notificationdomain.SendRequest{
		DocumentKind: kind,
		DocumentID:   documentID,
		Address:      strings.TrimSpace(req.Address),
		Subject:      req.Subject,
		Body:         req.Body,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListPendingNotifications(c *gin.Context) {
	resp, err := s.notificationSvc.List(c.Request.Context(), notificationdomain.StatePending)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListNotifications(c *gin.Context) {
	state := notificationdomain.State(strings.ToUpper(strings.TrimSpace(c.DefaultQuery("state", string(notificationdomain.StatePending)))))
	switch state {
	case notificationdomain.StatePending, notificationdomain.StateSent, notificationdomain.StateFailed:
	default:
		AbortWithError(c, newValidationError("state", "invalid_state", "invalid state"))
		return
	}

	resp, err := s.notificationSvc.List(c.Request.Context(), state)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
