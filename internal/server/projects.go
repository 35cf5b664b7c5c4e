package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	projectdomain "github.com/smallbiznis/lotworks/internal/project/domain"
)

type createProjectRequest struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

type updateProjectRequest struct {
	Name   *string                      `json:"name"`
	Code   *string                      `json:"code"`
	Status *projectdomain.ProjectStatus `json:"status"`
}

func (s *Server) CreateProject(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	project, err := s.projectSvc.CreateProject(c.Request.Context(), projectdomain.CreateProjectRequest{
		Name: req.Name,
		Code: req.Code,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": project})
}

func (s *Server) UpdateProject(c *gin.Context) {
	var req updateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	project, err := s.projectSvc.UpdateProject(c.Request.Context(), projectdomain.UpdateProjectRequest{
		ID:     c.Param("id"),
		Name:   req.Name,
		Code:   req.Code,
		Status: req.Status,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": project})
}

func (s *Server) GetProject(c *gin.Context) {
	project, err := s.projectSvc.GetProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": project})
}

func (s *Server) ListProjects(c *gin.Context) {
	includeArchived := c.Query("include_archived") == "true"
	projects, err := s.projectSvc.ListProjects(c.Request.Context(), includeArchived)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": projects})
}

func isProjectValidationError(err error) bool {
	switch {
	case errors.Is(err, projectdomain.ErrInvalidID),
		errors.Is(err, projectdomain.ErrInvalidName),
		errors.Is(err, projectdomain.ErrInvalidCode),
		errors.Is(err, projectdomain.ErrInvalidLotNumber),
		errors.Is(err, projectdomain.ErrInvalidLotStatus):
		return true
	default:
		return false
	}
}

func isProjectConflictError(err error) bool {
	switch {
	case errors.Is(err, projectdomain.ErrDuplicateProjectCode),
		errors.Is(err, projectdomain.ErrDuplicateLotNumber),
		errors.Is(err, projectdomain.ErrLotHasDiaries),
		errors.Is(err, projectdomain.ErrLotHasItps):
		return true
	default:
		return false
	}
}
