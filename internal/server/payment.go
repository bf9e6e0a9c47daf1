package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	paymentdomain "github.com/smallbiznis/netbill/internal/payment/domain"
	"github.com/smallbiznis/netbill/pkg/db/pagination"
)

func (s *Server) CreatePayment(c *gin.Context) {
	var req paymentdomain.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.paymentSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListPayments(c *gin.Context) {
	var query struct {
		pagination.Pagination
		CustomerID string `form:"customer_id"`
		InvoiceID  string `form:"invoice_id"`
		Status     string `form:"status"`
		Method     string `form:"payment_method"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.paymentSvc.List(c.Request.Context(), paymentdomain.ListPaymentsRequest{
		CustomerID: strings.TrimSpace(query.CustomerID),
		InvoiceID:  strings.TrimSpace(query.InvoiceID),
		Status:     strings.TrimSpace(query.Status),
		Method:     strings.TrimSpace(query.Method),
		Page:       query.Pagination,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CountPayments(c *gin.Context) {
	resp, err := s.paymentSvc.Count(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetPaymentByID(c *gin.Context) {
	resp, err := s.paymentSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetPaymentByNumber(c *gin.Context) {
	resp, err := s.paymentSvc.GetByNumber(c.Request.Context(), strings.TrimSpace(c.Param("number")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdatePayment(c *gin.Context) {
	var req paymentdomain.UpdatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.paymentSvc.Update(c.Request.Context(), strings.TrimSpace(c.Param("id")), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) VerifyPayment(c *gin.Context) {
	resp, err := s.paymentSvc.Verify(c.Request.Context(), strings.TrimSpace(c.Param("id")), currentUserID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RejectPayment(c *gin.Context) {
	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.paymentSvc.Reject(c.Request.Context(), strings.TrimSpace(c.Param("id")), currentUserID(c), strings.TrimSpace(req.Reason))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CancelPayment(c *gin.Context) {
	resp, err := s.paymentSvc.Cancel(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
