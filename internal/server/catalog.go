package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	catalogdomain "github.com/smallbiznis/netbill/internal/catalog/domain"
	"github.com/smallbiznis/netbill/pkg/db/pagination"
)

func (s *Server) CreatePackage(c *gin.Context) {
	var req catalogdomain.CreatePackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.packageSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListPackages(c *gin.Context) {
	var query struct {
		pagination.Pagination
		IsActive *bool  `form:"is_active"`
		Type     string `form:"package_type"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.packageSvc.List(c.Request.Context(), catalogdomain.ListPackagesRequest{
		IsActive: query.IsActive,
		Type:     strings.TrimSpace(query.Type),
		Page:     query.Pagination,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetPackageByID(c *gin.Context) {
	resp, err := s.packageSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetPackageByCode(c *gin.Context) {
	resp, err := s.packageSvc.GetByCode(c.Request.Context(), strings.TrimSpace(c.Param("code")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdatePackage(c *gin.Context) {
	var req catalogdomain.UpdatePackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.packageSvc.Update(c.Request.Context(), strings.TrimSpace(c.Param("id")), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeletePackage(c *gin.Context) {
	if err := s.packageSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}

func (s *Server) TogglePackage(c *gin.Context) {
	resp, err := s.packageSvc.ToggleStatus(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
