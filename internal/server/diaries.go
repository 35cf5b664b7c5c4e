package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	diarydomain "github.com/smallbiznis/lotworks/internal/diary/domain"
)

type initializeDiaryRequest struct {
	LotID string `json:"lot_id"`
	Date  string `json:"date"`
}

type addEntriesRequest struct {
	ResourceIDs []string `json:"resource_ids"`
}

type setEntryTimeRequest struct {
	StartTime  *string `json:"start_time"`
	FinishTime *string `json:"finish_time"`
	BreakHours float64 `json:"break_hours"`
}

type updateNotesRequest struct {
	Notes string `json:"notes"`
}

func (s *Server) InitializeDiary(c *gin.Context) {
	var req initializeDiaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.diarySvc.Initialize(c.Request.Context(), diarydomain.InitializeDiaryRequest{
		LotID: req.LotID,
		Date:  req.Date,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	status := http.StatusCreated
	if result.Existing {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{"data": result})
}

func (s *Server) GetDiary(c *gin.Context) {
	detail, err := s.diarySvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": detail})
}

func (s *Server) ListDiariesForDate(c *gin.Context) {
	diaries, err := s.diarySvc.ListForDate(c.Request.Context(), c.Query("project_id"), c.Query("date"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": diaries})
}

func (s *Server) ListDiariesForLot(c *gin.Context) {
	diaries, err := s.diarySvc.ListForLot(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": diaries})
}

func (s *Server) AddDiaryEntries(c *gin.Context) {
	var req addEntriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.diarySvc.AddEntries(c.Request.Context(), diarydomain.AddEntriesRequest{
		DiaryID:     c.Param("id"),
		ResourceIDs: req.ResourceIDs,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": result})
}

func (s *Server) SetEntryTime(c *gin.Context) {
	var req setEntryTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	entry, err := s.diarySvc.SetEntryTime(c.Request.Context(), diarydomain.SetEntryTimeRequest{
		EntryID:    c.Param("id"),
		StartTime:  req.StartTime,
		FinishTime: req.FinishTime,
		BreakHours: req.BreakHours,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": entry})
}

func (s *Server) RemoveEntry(c *gin.Context) {
	if err := s.diarySvc.RemoveEntry(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (s *Server) UpdateDiaryNotes(c *gin.Context) {
	var req updateNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	diary, err := s.diarySvc.UpdateNotes(c.Request.Context(), diarydomain.UpdateNotesRequest{
		DiaryID: c.Param("id"),
		Notes:   req.Notes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": diary})
}

func (s *Server) SubmitDiary(c *gin.Context) {
	diary, err := s.diarySvc.Submit(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": diary})
}

func isDiaryValidationError(err error) bool {
	switch {
	case errors.Is(err, diarydomain.ErrInvalidID),
		errors.Is(err, diarydomain.ErrInvalidDate),
		errors.Is(err, diarydomain.ErrInvalidBreak),
		errors.Is(err, diarydomain.ErrInvalidClock):
		return true
	default:
		return false
	}
}

func isDiaryConflictError(err error) bool {
	switch {
	case errors.Is(err, diarydomain.ErrDiarySubmitted),
		errors.Is(err, diarydomain.ErrDiaryEmpty),
		errors.Is(err, diarydomain.ErrEntriesIncomplete):
		return true
	default:
		return false
	}
}
