package server

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	customerdomain "github.com/tecnomade/clouget-pos/internal/customer/domain"
	"github.com/tecnomade/clouget-pos/internal/providers/pdf"
	saledomain "github.com/tecnomade/clouget-pos/internal/sale/domain"
)

type checkoutRequest struct {
	OperatorID    string                    `json:"operator_id"`
	CustomerID    string                    `json:"customer_id"`
	Kind          string                    `json:"kind"`
	PaymentMethod string                    `json:"payment_method"`
	Tendered      decimal.Decimal           `json:"tendered"`
	Discount      decimal.Decimal           `json:"discount"`
	Lines         []saledomain.CheckoutLine `json:"lines"`
}

func (s *Server) Checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.saleSvc.Checkout(c.Request.Context(), saledomain.CheckoutRequest{
		OperatorID:    strings.TrimSpace(req.OperatorID),
		CustomerID:    strings.TrimSpace(req.CustomerID),
		Kind:          saledomain.DocumentKind(strings.ToUpper(strings.TrimSpace(req.Kind))),
		PaymentMethod: saledomain.PaymentMethod(strings.ToUpper(strings.TrimSpace(req.PaymentMethod))),
		Tendered:      req.Tendered,
		Discount:      req.Discount,
		Lines:         req.Lines,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListSales(c *gin.Context) {
	var query struct {
		Day       string `form:"day"`
		SessionID string `form:"session_id"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if sessionID := strings.TrimSpace(query.SessionID); sessionID != "" {
		resp, err := s.saleSvc.ListBySession(c.Request.Context(), sessionID)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": resp})
		return
	}

	day, err := parseOptionalTime(query.Day, false)
	if err != nil {
		AbortWithError(c, newValidationError("day", "invalid_day", "invalid day"))
		return
	}
	if day == nil {
		AbortWithError(c, newValidationError("day", "day_required", "day or session_id required"))
		return
	}

	resp, err := s.saleSvc.ListByDay(c.Request.Context(), saledomain.ListByDayRequest{Day: *day})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetSale(c *gin.Context) {
	resp, err := s.saleSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) VoidSale(c *gin.Context) {
	resp, err := s.saleSvc.Void(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetCreditNoteBySale(c *gin.Context) {
	resp, err := s.creditNoteSvc.GetBySale(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) SaleDocumentPDF(c *gin.Context) {
	ctx := c.Request.Context()

	saleRec, err := s.saleSvc.Get(ctx, strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	doc, err := s.buildSaleDocument(c, saleRec)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var reader io.Reader
	if saleRec.Kind == saledomain.KindInvoice {
		reader, err = s.pdfProvider.RenderInvoice(ctx, doc)
	} else {
		reader, err = s.pdfProvider.RenderReceipt(ctx, doc)
	}
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `inline; filename="`+saleRec.Number+`.pdf"`)
	c.DataFromReader(http.StatusOK, -1, "application/pdf", reader, nil)
}

func (s *Server) buildSaleDocument(c *gin.Context, saleRec saledomain.Sale) (pdf.Document, error) {
	ctx := c.Request.Context()

	settings, err := s.fiscalSvc.Settings(ctx)
	if err != nil {
		return pdf.Document{}, err
	}

	customerName := "CONSUMIDOR FINAL"
	customerIdent := ""
	if saleRec.CustomerID != nil {
		cust, err := s.customerSvc.GetByID(ctx, customerdomain.GetCustomerRequest{
			ID: strconv.FormatInt(*saleRec.CustomerID, 10),
		})
		if err != nil {
			return pdf.Document{}, err
		}
		customerName = cust.Name
		if cust.Identification != nil {
			customerIdent = *cust.Identification
		}
	}

	title := "NOTA DE VENTA"
	if saleRec.Kind == saledomain.KindInvoice {
		title = "FACTURA"
	}

	doc := pdf.Document{
		Title:                  title,
		BusinessName:           settings.BusinessName,
		RUC:                    settings.RUC,
		Regime:                 settings.Regime,
		Number:                 saleRec.Number,
		IssuedAt:               saleRec.IssuedAt.Format("2006-01-02 15:04"),
		CustomerName:           customerName,
		CustomerIdentification: customerIdent,
		SubtotalUntaxed:        saleRec.SubtotalUntaxed.StringFixed(2),
		SubtotalTaxed:          saleRec.SubtotalTaxed.StringFixed(2),
		Discount:               saleRec.Discount.StringFixed(2),
		TaxTotal:               saleRec.TaxTotal.StringFixed(2),
		Total:                  saleRec.Total.StringFixed(2),
		PaymentMethod:          string(saleRec.PaymentMethod),
		Tendered:               saleRec.Tendered.StringFixed(2),
		Change:                 saleRec.Change.StringFixed(2),
	}
	if saleRec.LegalNumber != nil {
		doc.LegalNumber = *saleRec.LegalNumber
	}
	if saleRec.AccessKey != nil {
		doc.AccessKey = *saleRec.AccessKey
	}
	if saleRec.AuthorizationNumber != nil {
		doc.AuthorizationNumber = *saleRec.AuthorizationNumber
	}

	for _, line := range saleRec.Lines {
		doc.Items = append(doc.Items, pdf.Item{
			Description: line.ProductName,
			Qty:         line.Quantity.String(),
			UnitPrice:   line.UnitPrice.StringFixed(2),
			Amount:      line.Subtotal.StringFixed(2),
		})
	}

	return doc, nil
}
