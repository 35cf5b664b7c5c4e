package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/lotworks/internal/orgcontext"
	"github.com/smallbiznis/lotworks/internal/project/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("project.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) CreateProject(ctx context.Context, req domain.CreateProjectRequest) (domain.Project, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.Project{}, domain.ErrInvalidOrganization
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Project{}, domain.ErrInvalidName
	}
	code := strings.TrimSpace(req.Code)
	if code == "" {
		return domain.Project{}, domain.ErrInvalidCode
	}

	existing, err := s.repo.FindProjectByCode(ctx, s.db, orgID, code)
	if err != nil {
		return domain.Project{}, err
	}
	if existing != nil {
		return domain.Project{}, domain.ErrDuplicateProjectCode
	}

	now := time.Now().UTC()
	project := domain.Project{
		ID:        s.genID.Generate(),
		OrgID:     orgID,
		Name:      name,
		Code:      code,
		Status:    domain.ProjectActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.InsertProject(ctx, s.db, &project); err != nil {
		return domain.Project{}, err
	}
	return project, nil
}

func (s *Service) UpdateProject(ctx context.Context, req domain.UpdateProjectRequest) (domain.Project, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.Project{}, domain.ErrInvalidOrganization
	}

	id, err := parseID(req.ID)
	if err != nil {
		return domain.Project{}, err
	}

	project, err := s.repo.FindProjectByID(ctx, s.db, orgID, id)
	if err != nil {
		return domain.Project{}, err
	}
	if project == nil {
		return domain.Project{}, domain.ErrProjectNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Project{}, domain.ErrInvalidName
		}
		project.Name = name
	}
	if req.Code != nil {
		code := strings.TrimSpace(*req.Code)
		if code == "" {
			return domain.Project{}, domain.ErrInvalidCode
		}
		if code != project.Code {
			existing, err := s.repo.FindProjectByCode(ctx, s.db, orgID, code)
			if err != nil {
				return domain.Project{}, err
			}
			if existing != nil && existing.ID != project.ID {
				return domain.Project{}, domain.ErrDuplicateProjectCode
			}
		}
		project.Code = code
	}
	if req.Status != nil {
		project.Status = *req.Status
	}
	project.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateProject(ctx, s.db, project); err != nil {
		return domain.Project{}, err
	}
	return *project, nil
}

func (s *Service) GetProject(ctx context.Context, id string) (domain.ProjectSummary, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.ProjectSummary{}, domain.ErrInvalidOrganization
	}

	projectID, err := parseID(id)
	if err != nil {
		return domain.ProjectSummary{}, err
	}

	project, err := s.repo.FindProjectByID(ctx, s.db, orgID, projectID)
	if err != nil {
		return domain.ProjectSummary{}, err
	}
	if project == nil {
		return domain.ProjectSummary{}, domain.ErrProjectNotFound
	}

	counts, err := s.repo.CountLotsGrouped(ctx, s.db, orgID)
	if err != nil {
		return domain.ProjectSummary{}, err
	}

	summary := domain.ProjectSummary{Project: *project}
	for _, c := range counts {
		if c.ProjectID != project.ID {
			continue
		}
		summary.TotalLotCount += c.Count
		if c.Status == domain.LotOpen {
			summary.OpenLotCount += c.Count
		}
	}
	return summary, nil
}

func (s *Service) ListProjects(ctx context.Context, includeArchived bool) ([]domain.ProjectSummary, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	projects, err := s.repo.ListProjects(ctx, s.db, orgID, includeArchived)
	if err != nil {
		return nil, err
	}
	counts, err := s.repo.CountLotsGrouped(ctx, s.db, orgID)
	if err != nil {
		return nil, err
	}

	open := make(map[snowflake.ID]int)
	total := make(map[snowflake.ID]int)
	for _, c := range counts {
		total[c.ProjectID] += c.Count
		if c.Status == domain.LotOpen {
			open[c.ProjectID] += c.Count
		}
	}

	summaries := make([]domain.ProjectSummary, 0, len(projects))
	for _, project := range projects {
		summaries = append(summaries, domain.ProjectSummary{
			Project:       project,
			OpenLotCount:  open[project.ID],
			TotalLotCount: total[project.ID],
		})
	}
	return summaries, nil
}

func (s *Service) CreateLot(ctx context.Context, req domain.CreateLotRequest) (domain.Lot, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.Lot{}, domain.ErrInvalidOrganization
	}

	projectID, err := parseID(req.ProjectID)
	if err != nil {
		return domain.Lot{}, err
	}
	lotNumber := strings.TrimSpace(req.LotNumber)
	if lotNumber == "" {
		return domain.Lot{}, domain.ErrInvalidLotNumber
	}

	project, err := s.repo.FindProjectByID(ctx, s.db, orgID, projectID)
	if err != nil {
		return domain.Lot{}, err
	}
	if project == nil {
		return domain.Lot{}, domain.ErrProjectNotFound
	}

	existing, err := s.repo.ListLotNumbers(ctx, s.db, projectID)
	if err != nil {
		return domain.Lot{}, err
	}
	for _, number := range existing {
		if number == lotNumber {
			return domain.Lot{}, domain.ErrDuplicateLotNumber
		}
	}

	now := time.Now().UTC()
	lot := domain.Lot{
		ID:          s.genID.Generate(),
		OrgID:       orgID,
		ProjectID:   projectID,
		LotNumber:   lotNumber,
		Description: strings.TrimSpace(req.Description),
		Status:      domain.LotOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.InsertLot(ctx, s.db, &lot); err != nil {
		return domain.Lot{}, err
	}
	return lot, nil
}

func (s *Service) ListLots(ctx context.Context, projectID string) ([]domain.Lot, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	id, err := parseID(projectID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListLots(ctx, s.db, orgID, id)
}

// BulkImportLots parses pasted CSV text, one lot per line, skipping blank
// or unparsable lines and deduplicating against existing lot numbers and
// within the batch itself.
func (s *Service) BulkImportLots(ctx context.Context, projectID, csv string) (domain.BulkImportResult, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.BulkImportResult{}, domain.ErrInvalidOrganization
	}

	id, err := parseID(projectID)
	if err != nil {
		return domain.BulkImportResult{}, err
	}

	project, err := s.repo.FindProjectByID(ctx, s.db, orgID, id)
	if err != nil {
		return domain.BulkImportResult{}, err
	}
	if project == nil {
		return domain.BulkImportResult{}, domain.ErrProjectNotFound
	}

	existingNumbers, err := s.repo.ListLotNumbers(ctx, s.db, id)
	if err != nil {
		return domain.BulkImportResult{}, err
	}
	existing := make(map[string]bool, len(existingNumbers))
	for _, number := range existingNumbers {
		existing[number] = true
	}

	result := domain.BulkImportResult{
		SkippedLines: []string{},
		Duplicates:   []string{},
	}
	seenInBatch := make(map[string]bool)
	var toCreate []domain.Lot
	now := time.Now().UTC()

	for _, line := range strings.Split(csv, "\n") {
		parsed := parseImportLine(line)
		if parsed == nil {
			if strings.TrimSpace(line) != "" {
				result.SkippedLines = append(result.SkippedLines, strings.TrimSpace(line))
			}
			continue
		}

		if existing[parsed.lotNumber] || seenInBatch[parsed.lotNumber] {
			result.Duplicates = append(result.Duplicates, parsed.lotNumber)
			continue
		}
		seenInBatch[parsed.lotNumber] = true

		toCreate = append(toCreate, domain.Lot{
			ID:          s.genID.Generate(),
			OrgID:       orgID,
			ProjectID:   id,
			LotNumber:   parsed.lotNumber,
			Description: parsed.description,
			Status:      domain.LotOpen,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}

	if err := s.repo.InsertLots(ctx, s.db, toCreate); err != nil {
		return domain.BulkImportResult{}, err
	}

	result.Created = len(toCreate)
	result.Skipped = len(result.SkippedLines)
	return result, nil
}

func (s *Service) UpdateLotStatus(ctx context.Context, lotID string, status domain.LotStatus) (domain.Lot, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.Lot{}, domain.ErrInvalidOrganization
	}

	if !domain.ValidLotStatus(status) {
		return domain.Lot{}, domain.ErrInvalidLotStatus
	}

	id, err := parseID(lotID)
	if err != nil {
		return domain.Lot{}, err
	}

	lot, err := s.repo.FindLotByID(ctx, s.db, orgID, id)
	if err != nil {
		return domain.Lot{}, err
	}
	if lot == nil {
		return domain.Lot{}, domain.ErrLotNotFound
	}

	lot.Status = status
	lot.UpdatedAt = time.Now().UTC()
	if err := s.repo.UpdateLot(ctx, s.db, lot); err != nil {
		return domain.Lot{}, err
	}
	return *lot, nil
}

func (s *Service) DeleteLot(ctx context.Context, lotID string) error {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.ErrInvalidOrganization
	}

	id, err := parseID(lotID)
	if err != nil {
		return err
	}

	lot, err := s.repo.FindLotByID(ctx, s.db, orgID, id)
	if err != nil {
		return err
	}
	if lot == nil {
		return domain.ErrLotNotFound
	}

	diaries, err := s.repo.CountDiariesByLot(ctx, s.db, id)
	if err != nil {
		return err
	}
	if diaries > 0 {
		return domain.ErrLotHasDiaries
	}

	itps, err := s.repo.CountItpsByLot(ctx, s.db, id)
	if err != nil {
		return err
	}
	if itps > 0 {
		return domain.ErrLotHasItps
	}

	return s.repo.DeleteLot(ctx, s.db, orgID, id)
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
