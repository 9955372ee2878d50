package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) SubscriptionState(c *gin.Context) {
	resp, err := s.subscriptionSvc.State(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ValidateSubscription(c *gin.Context) {
	resp, err := s.subscriptionSvc.Validate(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
