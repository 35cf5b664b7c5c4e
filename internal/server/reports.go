package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	reportdomain "github.com/smallbiznis/lotworks/internal/report/domain"
)

func weeklyRequestFromQuery(c *gin.Context) reportdomain.WeeklyRequest {
	return reportdomain.WeeklyRequest{
		Start:     c.Query("start"),
		End:       c.Query("end"),
		ProjectID: c.Query("project_id"),
		VendorID:  c.Query("vendor_id"),
	}
}

func (s *Server) WeeklyReport(c *gin.Context) {
	report, err := s.reportSvc.Weekly(c.Request.Context(), weeklyRequestFromQuery(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": report})
}

func (s *Server) ExportWeeklyReport(c *gin.Context) {
	req := weeklyRequestFromQuery(c)
	data, err := s.reportSvc.ExportXLSX(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	filename := fmt.Sprintf("weekly-report-%s.xlsx", req.Start)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func (s *Server) ReportSummary(c *gin.Context) {
	summary, err := s.reportSvc.Summary(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": summary})
}

func isReportValidationError(err error) bool {
	switch {
	case errors.Is(err, reportdomain.ErrInvalidID),
		errors.Is(err, reportdomain.ErrInvalidDate),
		errors.Is(err, reportdomain.ErrInvalidRange):
		return true
	default:
		return false
	}
}
