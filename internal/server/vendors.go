package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	rateledgerdomain "github.com/smallbiznis/lotworks/internal/rateledger/domain"
)

type createVendorRequest struct {
	Name         string `json:"name"`
	ABN          string `json:"abn"`
	ContactEmail string `json:"contact_email"`
	IsInternal   bool   `json:"is_internal"`
}

type updateVendorRequest struct {
	Name         *string `json:"name"`
	ABN          *string `json:"abn"`
	ContactEmail *string `json:"contact_email"`
	IsInternal   *bool   `json:"is_internal"`
}

func (s *Server) CreateVendor(c *gin.Context) {
	var req createVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	vendor, err := s.rateledgerSvc.CreateVendor(c.Request.Context(), rateledgerdomain.CreateVendorRequest{
		Name:         req.Name,
		ABN:          req.ABN,
		ContactEmail: req.ContactEmail,
		IsInternal:   req.IsInternal,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": vendor})
}

func (s *Server) UpdateVendor(c *gin.Context) {
	var req updateVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	vendor, err := s.rateledgerSvc.UpdateVendor(c.Request.Context(), rateledgerdomain.UpdateVendorRequest{
		ID:           c.Param("id"),
		Name:         req.Name,
		ABN:          req.ABN,
		ContactEmail: req.ContactEmail,
		IsInternal:   req.IsInternal,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": vendor})
}

func (s *Server) GetVendor(c *gin.Context) {
	vendor, err := s.rateledgerSvc.GetVendor(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": vendor})
}

func (s *Server) ListVendors(c *gin.Context) {
	vendors, err := s.rateledgerSvc.ListVendors(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": vendors})
}

func (s *Server) ArchiveVendor(c *gin.Context) {
	if err := s.rateledgerSvc.ArchiveVendor(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "archived"})
}

func isRateledgerValidationError(err error) bool {
	switch {
	case errors.Is(err, rateledgerdomain.ErrInvalidID),
		errors.Is(err, rateledgerdomain.ErrInvalidName),
		errors.Is(err, rateledgerdomain.ErrInvalidRoleName),
		errors.Is(err, rateledgerdomain.ErrInvalidRate),
		errors.Is(err, rateledgerdomain.ErrInvalidUnit),
		errors.Is(err, rateledgerdomain.ErrInvalidResourceType):
		return true
	default:
		return false
	}
}

func isRateledgerConflictError(err error) bool {
	switch {
	case errors.Is(err, rateledgerdomain.ErrRateCardVendorMismatch),
		errors.Is(err, rateledgerdomain.ErrRateCardInUse),
		errors.Is(err, rateledgerdomain.ErrVendorHasActiveResources):
		return true
	default:
		return false
	}
}
