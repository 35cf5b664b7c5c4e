package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	itpdomain "github.com/smallbiznis/lotworks/internal/itp/domain"
)

type templateItemInput struct {
	ID          string `json:"id"`
	Question    string `json:"question"`
	IsHoldPoint bool   `json:"is_hold_point"`
}

type createTemplateRequest struct {
	Title string              `json:"title"`
	Items []templateItemInput `json:"items"`
}

type updateTemplateTitleRequest struct {
	Title string `json:"title"`
}

type replaceTemplateItemsRequest struct {
	Items []templateItemInput `json:"items"`
}

type attachTemplateRequest struct {
	TemplateID string `json:"template_id"`
}

type updateCheckRequest struct {
	Status itpdomain.CheckStatus `json:"status"`
}

func toItemInputs(items []templateItemInput) []itpdomain.TemplateItemInput {
	inputs := make([]itpdomain.TemplateItemInput, 0, len(items))
	for _, item := range items {
		inputs = append(inputs, itpdomain.TemplateItemInput{
			ID:          item.ID,
			Question:    item.Question,
			IsHoldPoint: item.IsHoldPoint,
		})
	}
	return inputs
}

func (s *Server) CreateTemplate(c *gin.Context) {
	var req createTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	template, err := s.itpSvc.CreateTemplate(c.Request.Context(), itpdomain.CreateTemplateRequest{
		Title: req.Title,
		Items: toItemInputs(req.Items),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": template})
}

func (s *Server) UpdateTemplateTitle(c *gin.Context) {
	var req updateTemplateTitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	template, err := s.itpSvc.UpdateTemplateTitle(c.Request.Context(), itpdomain.UpdateTemplateTitleRequest{
		TemplateID: c.Param("id"),
		Title:      req.Title,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": template})
}

func (s *Server) ReplaceTemplateItems(c *gin.Context) {
	var req replaceTemplateItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	template, err := s.itpSvc.ReplaceTemplateItems(c.Request.Context(), itpdomain.ReplaceTemplateItemsRequest{
		TemplateID: c.Param("id"),
		Items:      toItemInputs(req.Items),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": template})
}

func (s *Server) DeleteTemplate(c *gin.Context) {
	if err := s.itpSvc.DeleteTemplate(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (s *Server) GetTemplate(c *gin.Context) {
	template, err := s.itpSvc.GetTemplate(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": template})
}

func (s *Server) ListTemplates(c *gin.Context) {
	templates, err := s.itpSvc.ListTemplates(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": templates})
}

func (s *Server) AvailableTemplates(c *gin.Context) {
	templates, err := s.itpSvc.AvailableTemplatesForLot(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": templates})
}

func (s *Server) AttachTemplate(c *gin.Context) {
	var req attachTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	detail, err := s.itpSvc.AttachToLot(c.Request.Context(), itpdomain.AttachRequest{
		LotID:      c.Param("id"),
		TemplateID: req.TemplateID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": detail})
}

func (s *Server) GetLotItp(c *gin.Context) {
	detail, err := s.itpSvc.GetLotItp(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": detail})
}

func (s *Server) ListLotItps(c *gin.Context) {
	details, err := s.itpSvc.ListForLot(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": details})
}

func (s *Server) ListInProgressItps(c *gin.Context) {
	details, err := s.itpSvc.ListInProgress(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": details})
}

func (s *Server) UpdateCheck(c *gin.Context) {
	var req updateCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	check, err := s.itpSvc.UpdateCheck(c.Request.Context(), itpdomain.UpdateCheckRequest{
		CheckID: c.Param("id"),
		Status:  req.Status,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": check})
}

func (s *Server) UploadCheckPhoto(c *gin.Context) {
	file, err := c.FormFile("photo")
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	src, err := file.Open()
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	defer src.Close()

	check, err := s.itpSvc.UploadCheckPhoto(c.Request.Context(), itpdomain.UploadCheckPhotoRequest{
		CheckID:  c.Param("id"),
		MimeType: file.Header.Get("Content-Type"),
		Body:     src,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": check})
}

func (s *Server) ClearCheckPhoto(c *gin.Context) {
	check, err := s.itpSvc.ClearCheckPhoto(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": check})
}

func (s *Server) SignOffLotItp(c *gin.Context) {
	lotItp, err := s.itpSvc.SignOff(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": lotItp})
}

func isItpValidationError(err error) bool {
	switch {
	case errors.Is(err, itpdomain.ErrInvalidID),
		errors.Is(err, itpdomain.ErrInvalidTitle),
		errors.Is(err, itpdomain.ErrInvalidQuestion),
		errors.Is(err, itpdomain.ErrInvalidCheckStatus):
		return true
	default:
		return false
	}
}

func isItpConflictError(err error) bool {
	switch {
	case errors.Is(err, itpdomain.ErrTemplateInUse),
		errors.Is(err, itpdomain.ErrTemplateEmpty),
		errors.Is(err, itpdomain.ErrTemplateAlreadyAttached),
		errors.Is(err, itpdomain.ErrFailRequiresPhoto),
		errors.Is(err, itpdomain.ErrItpSignedOff),
		errors.Is(err, itpdomain.ErrChecksOutstanding),
		errors.Is(err, itpdomain.ErrNoPhoto):
		return true
	default:
		return false
	}
}
