package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	cashsessiondomain "github.com/tecnomade/clouget-pos/internal/cashsession/domain"
	expensedomain "github.com/tecnomade/clouget-pos/internal/expense/domain"
)

func (s *Server) OpenCashSession(c *gin.Context) {
	var req cashsessiondomain.OpenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.OperatorID = strings.TrimSpace(req.OperatorID)

	resp, err := s.cashSessionSvc.Open(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CloseCashSession(c *gin.Context) {
	var req cashsessiondomain.CloseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.SessionID = strings.TrimSpace(c.Param("id"))

	resp, err := s.cashSessionSvc.Close(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetCashSession(c *gin.Context) {
	resp, err := s.cashSessionSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CurrentCashSession(c *gin.Context) {
	operatorID := strings.TrimSpace(c.Query("operator_id"))
	resp, err := s.cashSessionSvc.CurrentFor(c.Request.Context(), operatorID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CashSessionSummary(c *gin.Context) {
	resp, err := s.cashSessionSvc.Summary(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListCashSessions(c *gin.Context) {
	operatorID := strings.TrimSpace(c.Query("operator_id"))
	resp, err := s.cashSessionSvc.List(c.Request.Context(), operatorID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RegisterExpense(c *gin.Context) {
	var req expensedomain.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.CashSessionID = strings.TrimSpace(req.CashSessionID)

	resp, err := s.expenseSvc.Register(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListSessionExpenses(c *gin.Context) {
	resp, err := s.expenseSvc.ListBySession(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
