package server

import (
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	fiscaldomain "github.com/tecnomade/clouget-pos/internal/fiscal/domain"
)

func (s *Server) EmitInvoice(c *gin.Context) {
	resp, err := s.fiscalSvc.EmitInvoice(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) EmitCreditNote(c *gin.Context) {
	resp, err := s.fiscalSvc.EmitCreditNote(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) FiscalStatus(c *gin.Context) {
	resp, err := s.fiscalSvc.Status(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetFiscalSettings(c *gin.Context) {
	resp, err := s.fiscalSvc.Settings(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateFiscalSettings(c *gin.Context) {
	var req fiscaldomain.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.fiscalSvc.UpdateSettings(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) SetFiscalEnvironment(c *gin.Context) {
	var req struct {
		Environment string `json:"environment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.fiscalSvc.SetEnvironment(c.Request.Context(), fiscaldomain.Environment(strings.TrimSpace(req.Environment)))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ConfirmFiscalEnvironment(c *gin.Context) {
	resp, err := s.fiscalSvc.ConfirmEnvironment(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UploadFiscalCertificate(c *gin.Context) {
	var req struct {
		// Blob is the PKCS#12 bundle, base64-encoded.
		Blob     string `json:"blob"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	blob, err := base64.StdEncoding.DecodeString(req.Blob)
	if err != nil {
		AbortWithError(c, newValidationError("blob", "invalid_blob", "invalid base64 certificate"))
		return
	}

	if err := s.fiscalSvc.UploadCertificate(c.Request.Context(), fiscaldomain.UploadCertificateRequest{
		Blob:     blob,
		Password: req.Password,
	}); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"loaded": true}})
}
