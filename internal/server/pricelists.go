package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	pricelistdomain "github.com/tecnomade/clouget-pos/internal/pricelist/domain"
)

func (s *Server) CreatePriceList(c *gin.Context) {
	var req pricelistdomain.CreateListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.Name = strings.TrimSpace(req.Name)

	resp, err := s.priceListSvc.CreateList(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListPriceLists(c *gin.Context) {
	resp, err := s.priceListSvc.ListLists(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetPriceList(c *gin.Context) {
	resp, err := s.priceListSvc.GetList(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) SetDefaultPriceList(c *gin.Context) {
	resp, err := s.priceListSvc.SetDefault(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) SetPriceListPrice(c *gin.Context) {
	var req struct {
		ProductID string          `json:"product_id"`
		Price     decimal.Decimal `json:"price"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.priceListSvc.SetProductPrice(c.Request.Context(), pricelistdomain.SetProductPriceRequest{
		PriceListID: strings.TrimSpace(c.Param("id")),
		ProductID:   strings.TrimSpace(req.ProductID),
		Price:       req.Price,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RemovePriceListPrice(c *gin.Context) {
	err := s.priceListSvc.RemoveProductPrice(c.Request.Context(), pricelistdomain.RemoveProductPriceRequest{
		PriceListID: strings.TrimSpace(c.Param("id")),
		ProductID:   strings.TrimSpace(c.Param("productId")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"removed": true}})
}

func (s *Server) ListPriceListPrices(c *gin.Context) {
	resp, err := s.priceListSvc.ListPrices(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ResolvePrice(c *gin.Context) {
	var query struct {
		ProductID  string `form:"product_id"`
		CustomerID string `form:"customer_id"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.priceListSvc.Resolve(c.Request.Context(), pricelistdomain.ResolveRequest{
		ProductID:  strings.TrimSpace(query.ProductID),
		CustomerID: strings.TrimSpace(query.CustomerID),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// ResolveCartPrices reprices a whole cart in one call, typically when
// the attached customer changes.
func (s *Server) ResolveCartPrices(c *gin.Context) {
	var req struct {
		CustomerID string                     `json:"customer_id"`
		Items      []pricelistdomain.CartItem `json:"items"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if len(req.Items) == 0 {
		AbortWithError(c, newValidationError("items", "invalid_items", "items must not be empty"))
		return
	}

	resp, err := s.priceListSvc.ResolveCart(c.Request.Context(), strings.TrimSpace(req.CustomerID), req.Items)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
