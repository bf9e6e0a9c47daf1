package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) GetDashboardStats(c *gin.Context) {
	resp, err := s.dashboardSvc.Stats(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetRevenueChart(c *gin.Context) {
	var query struct {
		Months int `form:"months,default=12"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.dashboardSvc.RevenueChart(c.Request.Context(), query.Months)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetCustomerGrowth(c *gin.Context) {
	var query struct {
		Months int `form:"months,default=12"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.dashboardSvc.CustomerGrowth(c.Request.Context(), query.Months)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetPackageDistribution(c *gin.Context) {
	resp, err := s.dashboardSvc.PackageDistribution(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetRecentActivities(c *gin.Context) {
	var query struct {
		Limit int `form:"limit,default=10"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.dashboardSvc.RecentActivities(c.Request.Context(), query.Limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetOverdueSummary(c *gin.Context) {
	resp, err := s.dashboardSvc.OverdueSummary(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
