package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	projectdomain "github.com/smallbiznis/lotworks/internal/project/domain"
)

type createLotRequest struct {
	LotNumber   string `json:"lot_number"`
	Description string `json:"description"`
}

type importLotsRequest struct {
	Content string `json:"content"`
}

type updateLotStatusRequest struct {
	Status projectdomain.LotStatus `json:"status"`
}

func (s *Server) CreateLot(c *gin.Context) {
	var req createLotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	lot, err := s.projectSvc.CreateLot(c.Request.Context(), projectdomain.CreateLotRequest{
		ProjectID:   c.Param("id"),
		LotNumber:   req.LotNumber,
		Description: req.Description,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": lot})
}

func (s *Server) ListLots(c *gin.Context) {
	lots, err := s.projectSvc.ListLots(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": lots})
}

func (s *Server) ImportLots(c *gin.Context) {
	var req importLotsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.projectSvc.BulkImportLots(c.Request.Context(), c.Param("id"), req.Content)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": result})
}

func (s *Server) UpdateLotStatus(c *gin.Context) {
	var req updateLotStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	lot, err := s.projectSvc.UpdateLotStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": lot})
}

func (s *Server) DeleteLot(c *gin.Context) {
	if err := s.projectSvc.DeleteLot(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
