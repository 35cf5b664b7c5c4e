package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	rateledgerdomain "github.com/smallbiznis/lotworks/internal/rateledger/domain"
)

type createResourceRequest struct {
	VendorID           string                        `json:"vendor_id"`
	AssignedRateCardID string                        `json:"assigned_rate_card_id"`
	Name               string                        `json:"name"`
	Type               rateledgerdomain.ResourceType `json:"type"`
	Phone              string                        `json:"phone"`
	IsActive           *bool                         `json:"is_active"`
}

type updateResourceRequest struct {
	VendorID           *string                        `json:"vendor_id"`
	AssignedRateCardID *string                        `json:"assigned_rate_card_id"`
	Name               *string                        `json:"name"`
	Type               *rateledgerdomain.ResourceType `json:"type"`
	Phone              *string                        `json:"phone"`
	IsActive           *bool                          `json:"is_active"`
}

type setResourceActiveRequest struct {
	IsActive bool `json:"is_active"`
}

func (s *Server) CreateResource(c *gin.Context) {
	var req createResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	resource, err := s.rateledgerSvc.CreateResource(c.Request.Context(), rateledgerdomain.CreateResourceRequest{
		VendorID:           req.VendorID,
		AssignedRateCardID: req.AssignedRateCardID,
		Name:               req.Name,
		Type:               req.Type,
		Phone:              req.Phone,
		IsActive:           active,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resource})
}

func (s *Server) UpdateResource(c *gin.Context) {
	var req updateResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resource, err := s.rateledgerSvc.UpdateResource(c.Request.Context(), rateledgerdomain.UpdateResourceRequest{
		ID:                 c.Param("id"),
		VendorID:           req.VendorID,
		AssignedRateCardID: req.AssignedRateCardID,
		Name:               req.Name,
		Type:               req.Type,
		Phone:              req.Phone,
		IsActive:           req.IsActive,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resource})
}

func (s *Server) GetResource(c *gin.Context) {
	resource, err := s.rateledgerSvc.GetResource(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resource})
}

func (s *Server) ListResources(c *gin.Context) {
	activeOnly := c.Query("active") == "true"
	resources, err := s.rateledgerSvc.ListResources(c.Request.Context(), activeOnly)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resources})
}

func (s *Server) SetResourceActive(c *gin.Context) {
	var req setResourceActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.rateledgerSvc.SetResourceActive(c.Request.Context(), c.Param("id"), req.IsActive); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
