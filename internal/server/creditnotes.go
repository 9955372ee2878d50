package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	creditnotedomain "github.com/tecnomade/clouget-pos/internal/creditnote/domain"
)

type createCreditNoteRequest struct {
	SaleID string                       `json:"sale_id"`
	Reason string                       `json:"reason"`
	Lines  []creditnotedomain.BuildLine `json:"lines"`
}

func (s *Server) CreateCreditNote(c *gin.Context) {
	var req createCreditNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.creditNoteSvc.Build(c.Request.Context(), creditnotedomain.BuildRequest{
		SaleID: strings.TrimSpace(req.SaleID),
		Reason: req.Reason,
		Lines:  req.Lines,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListCreditNotes(c *gin.Context) {
	resp, err := s.creditNoteSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetCreditNote(c *gin.Context) {
	resp, err := s.creditNoteSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetCreditNoteBrackets(c *gin.Context) {
	resp, err := s.creditNoteSvc.Brackets(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
