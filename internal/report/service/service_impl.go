package service

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/lotworks/internal/clock"
	"github.com/smallbiznis/lotworks/internal/orgcontext"
	"github.com/smallbiznis/lotworks/internal/report/domain"
	"github.com/xuri/excelize/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("report.service"),
		clock: p.Clock,
		repo:  p.Repo,
	}
}

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

func validDate(v string) bool {
	if !datePattern.MatchString(v) {
		return false
	}
	_, err := time.Parse("2006-01-02", v)
	return err == nil
}

// Weekly builds the cost breakdown for an inclusive date window. Hours
// and cents are summed from stored entry values; nothing is re-rated or
// re-rounded here.
func (s *Service) Weekly(ctx context.Context, req domain.WeeklyRequest) (domain.WeeklyReport, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.WeeklyReport{}, domain.ErrInvalidOrganization
	}

	f, err := buildFilter(orgID, req)
	if err != nil {
		return domain.WeeklyReport{}, err
	}
	rows, err := s.repo.ListEntryRows(ctx, s.db, f)
	if err != nil {
		return domain.WeeklyReport{}, err
	}
	return aggregate(req.Start, req.End, rows), nil
}

// Summary rolls up the current Monday-to-Sunday week.
func (s *Service) Summary(ctx context.Context) (domain.Summary, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.Summary{}, domain.ErrInvalidOrganization
	}

	start, end := weekBounds(s.clock.Now())
	rows, err := s.repo.ListEntryRows(ctx, s.db, domain.Filter{OrgID: orgID, Start: start, End: end})
	if err != nil {
		return domain.Summary{}, err
	}
	diaries, err := s.repo.CountDiaries(ctx, s.db, orgID, start, end)
	if err != nil {
		return domain.Summary{}, err
	}

	report := aggregate(start, end, rows)
	return domain.Summary{
		WeekStart:       start,
		WeekEnd:         end,
		TotalHours:      report.TotalHours,
		TotalCents:      report.TotalCents,
		ActiveResources: report.ActiveResources,
		DiaryCount:      int(diaries),
	}, nil
}

// ExportXLSX renders the weekly report as a spreadsheet.
func (s *Service) ExportXLSX(ctx context.Context, req domain.WeeklyRequest) ([]byte, error) {
	report, err := s.Weekly(ctx, req)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Weekly Report"
	f.SetSheetName("Sheet1", sheet)

	f.SetCellValue(sheet, "A1", fmt.Sprintf("Weekly cost report %s to %s", report.Start, report.End))
	headers := []string{"Vendor", "Resource", "Type", "Days Worked", "Hours", "Cost"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 3)
		f.SetCellValue(sheet, cell, h)
	}

	row := 4
	for _, vg := range report.Vendors {
		for _, line := range vg.Resources {
			f.SetCellValue(sheet, fmt.Sprintf("A%d", row), vg.VendorName)
			f.SetCellValue(sheet, fmt.Sprintf("B%d", row), line.ResourceName)
			f.SetCellValue(sheet, fmt.Sprintf("C%d", row), string(line.ResourceType))
			f.SetCellValue(sheet, fmt.Sprintf("D%d", row), line.DaysWorked)
			f.SetCellValue(sheet, fmt.Sprintf("E%d", row), line.TotalHours)
			f.SetCellValue(sheet, fmt.Sprintf("F%d", row), float64(line.TotalCents)/100)
			row++
		}
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("%s subtotal", vg.VendorName))
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), vg.TotalHours)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), float64(vg.TotalCents)/100)
		row += 2
	}
	f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "Total")
	f.SetCellValue(sheet, fmt.Sprintf("E%d", row), report.TotalHours)
	f.SetCellValue(sheet, fmt.Sprintf("F%d", row), float64(report.TotalCents)/100)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func buildFilter(orgID snowflake.ID, req domain.WeeklyRequest) (domain.Filter, error) {
	if !validDate(req.Start) || !validDate(req.End) {
		return domain.Filter{}, domain.ErrInvalidDate
	}
	if req.End < req.Start {
		return domain.Filter{}, domain.ErrInvalidRange
	}

	f := domain.Filter{OrgID: orgID, Start: req.Start, End: req.End}
	if req.ProjectID != "" {
		id, err := snowflake.ParseString(req.ProjectID)
		if err != nil {
			return domain.Filter{}, domain.ErrInvalidID
		}
		f.ProjectID = id
	}
	if req.VendorID != "" {
		id, err := snowflake.ParseString(req.VendorID)
		if err != nil {
			return domain.Filter{}, domain.ErrInvalidID
		}
		f.VendorID = id
	}
	return f, nil
}

// weekBounds returns the Monday and Sunday of the week containing t.
func weekBounds(t time.Time) (string, string) {
	t = t.UTC()
	offset := (int(t.Weekday()) + 6) % 7
	monday := t.AddDate(0, 0, -offset)
	sunday := monday.AddDate(0, 0, 6)
	return monday.Format("2006-01-02"), sunday.Format("2006-01-02")
}

// aggregate folds joined entry rows into vendor groups. Rows arrive
// sorted by vendor then resource, so first-seen order is already the
// display order.
func aggregate(start, end string, rows []domain.EntryRow) domain.WeeklyReport {
	report := domain.WeeklyReport{Start: start, End: end, Vendors: []domain.VendorGroup{}}

	vendorIdx := map[snowflake.ID]int{}
	lineIdx := map[snowflake.ID]int{}
	daysSeen := map[snowflake.ID]map[string]bool{}

	for _, row := range rows {
		vi, ok := vendorIdx[row.VendorID]
		if !ok {
			vi = len(report.Vendors)
			vendorIdx[row.VendorID] = vi
			report.Vendors = append(report.Vendors, domain.VendorGroup{
				VendorID:   row.VendorID,
				VendorName: row.VendorName,
				Resources:  []domain.ResourceLine{},
			})
		}
		vg := &report.Vendors[vi]

		li, ok := lineIdx[row.ResourceID]
		if !ok {
			li = len(vg.Resources)
			lineIdx[row.ResourceID] = li
			daysSeen[row.ResourceID] = map[string]bool{}
			vg.Resources = append(vg.Resources, domain.ResourceLine{
				ResourceID:   row.ResourceID,
				ResourceName: row.ResourceName,
				ResourceType: row.ResourceType,
			})
		}
		line := &vg.Resources[li]

		if !daysSeen[row.ResourceID][row.Date] {
			daysSeen[row.ResourceID][row.Date] = true
			line.DaysWorked++
		}
		if row.TotalHours != nil {
			line.TotalHours += *row.TotalHours
			vg.TotalHours += *row.TotalHours
			report.TotalHours += *row.TotalHours
		}
		if row.TotalCents != nil {
			line.TotalCents += *row.TotalCents
			vg.TotalCents += *row.TotalCents
			report.TotalCents += *row.TotalCents
		}
	}

	report.ActiveResources = len(lineIdx)
	return report
}
