package service

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/lotworks/internal/actorcontext"
	"github.com/smallbiznis/lotworks/internal/diary/domain"
	"github.com/smallbiznis/lotworks/internal/orgcontext"
	"github.com/smallbiznis/lotworks/pkg/db"
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
		log:   p.Log.Named("diary.service"),
		genID: p.GenID,
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

// Initialize opens the diary for a lot and date, or returns the existing
// one. Two foremen racing to open the same diary both get the same row:
// the loser's insert trips the unique index and re-reads the winner.
func (s *Service) Initialize(ctx context.Context, req domain.InitializeDiaryRequest) (domain.InitializeDiaryResult, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.InitializeDiaryResult{}, domain.ErrInvalidOrganization
	}
	userID, ok := actorcontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return domain.InitializeDiaryResult{}, domain.ErrInvalidOrganization
	}

	lotID, err := parseID(req.LotID)
	if err != nil {
		return domain.InitializeDiaryResult{}, err
	}
	if !validDate(req.Date) {
		return domain.InitializeDiaryResult{}, domain.ErrInvalidDate
	}

	lot, err := s.repo.FindLot(ctx, s.db, orgID, lotID)
	if err != nil {
		return domain.InitializeDiaryResult{}, err
	}
	if lot == nil {
		return domain.InitializeDiaryResult{}, domain.ErrLotNotFound
	}
	if req.ProjectID != "" {
		projectID, err := parseID(req.ProjectID)
		if err != nil {
			return domain.InitializeDiaryResult{}, err
		}
		if projectID != lot.ProjectID {
			return domain.InitializeDiaryResult{}, domain.ErrLotNotFound
		}
	}

	existing, err := s.repo.FindDiaryByLotDate(ctx, s.db, orgID, lotID, req.Date)
	if err != nil {
		return domain.InitializeDiaryResult{}, err
	}
	if existing != nil {
		return s.detailResult(ctx, *existing, true)
	}

	now := time.Now().UTC()
	diary := domain.Diary{
		ID:        s.genID.Generate(),
		OrgID:     orgID,
		ProjectID: lot.ProjectID,
		LotID:     lotID,
		Date:      req.Date,
		ForemanID: userID,
		Status:    domain.DiaryDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.SaveDiary(ctx, s.db, &diary); err != nil {
		if db.IsDuplicateKeyErr(err) {
			winner, ferr := s.repo.FindDiaryByLotDate(ctx, s.db, orgID, lotID, req.Date)
			if ferr != nil {
				return domain.InitializeDiaryResult{}, ferr
			}
			if winner != nil {
				return s.detailResult(ctx, *winner, true)
			}
		}
		return domain.InitializeDiaryResult{}, err
	}

	s.log.Info("diary initialized",
		zap.Int64("diary_id", diary.ID.Int64()),
		zap.Int64("lot_id", lotID.Int64()),
		zap.String("date", req.Date),
	)
	return s.detailResult(ctx, diary, false)
}

func (s *Service) detailResult(ctx context.Context, diary domain.Diary, existing bool) (domain.InitializeDiaryResult, error) {
	entries, err := s.repo.ListEntries(ctx, s.db, diary.ID)
	if err != nil {
		return domain.InitializeDiaryResult{}, err
	}
	return domain.InitializeDiaryResult{
		Diary:    domain.DiaryDetail{Diary: diary, Entries: entries},
		Existing: existing,
	}, nil
}

func (s *Service) Get(ctx context.Context, diaryID string) (domain.DiaryDetail, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.DiaryDetail{}, domain.ErrInvalidOrganization
	}
	id, err := parseID(diaryID)
	if err != nil {
		return domain.DiaryDetail{}, err
	}

	diary, err := s.repo.FindDiary(ctx, s.db, orgID, id)
	if err != nil {
		return domain.DiaryDetail{}, err
	}
	if diary == nil {
		return domain.DiaryDetail{}, domain.ErrDiaryNotFound
	}
	entries, err := s.repo.ListEntries(ctx, s.db, diary.ID)
	if err != nil {
		return domain.DiaryDetail{}, err
	}
	return domain.DiaryDetail{Diary: *diary, Entries: entries}, nil
}

func (s *Service) ListForDate(ctx context.Context, projectID, date string) ([]domain.Diary, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}
	if !validDate(date) {
		return nil, domain.ErrInvalidDate
	}

	var pid snowflake.ID
	if projectID != "" {
		var err error
		pid, err = parseID(projectID)
		if err != nil {
			return nil, err
		}
	}
	return s.repo.ListDiariesForDate(ctx, s.db, orgID, pid, date)
}

func (s *Service) ListForLot(ctx context.Context, lotID string) ([]domain.Diary, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}
	id, err := parseID(lotID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListDiariesForLot(ctx, s.db, orgID, id)
}

// AddEntries creates one blank entry per requested resource, copying the
// resource's current rate into the entry as the frozen rate. Resources
// already on the diary are counted as skipped, never duplicated.
func (s *Service) AddEntries(ctx context.Context, req domain.AddEntriesRequest) (domain.AddEntriesResult, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.AddEntriesResult{}, domain.ErrInvalidOrganization
	}

	diary, err := s.editableDiary(ctx, orgID, req.DiaryID)
	if err != nil {
		return domain.AddEntriesResult{}, err
	}

	ids := make([]snowflake.ID, 0, len(req.ResourceIDs))
	for _, raw := range req.ResourceIDs {
		id, err := parseID(raw)
		if err != nil {
			return domain.AddEntriesResult{}, err
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return domain.AddEntriesResult{}, nil
	}

	resources, err := s.repo.FindResources(ctx, s.db, orgID, ids)
	if err != nil {
		return domain.AddEntriesResult{}, err
	}
	byID := make(map[snowflake.ID]int64, len(resources))
	for _, r := range resources {
		var rate int64
		if r.RateCard != nil {
			rate = r.RateCard.RateCents
		}
		byID[r.ID] = rate
	}

	present, err := s.repo.ListEntryResourceIDs(ctx, s.db, diary.ID)
	if err != nil {
		return domain.AddEntriesResult{}, err
	}
	seen := make(map[snowflake.ID]bool, len(present))
	for _, id := range present {
		seen[id] = true
	}

	now := time.Now().UTC()
	var entries []domain.DiaryEntry
	skipped := 0
	for _, id := range ids {
		rate, found := byID[id]
		if !found {
			return domain.AddEntriesResult{}, fmt.Errorf("%w: %s", domain.ErrResourceNotFound, id)
		}
		if seen[id] {
			skipped++
			continue
		}
		seen[id] = true
		frozen := rate
		entries = append(entries, domain.DiaryEntry{
			ID:              s.genID.Generate(),
			OrgID:           orgID,
			DiaryID:         diary.ID,
			ResourceID:      id,
			FrozenRateCents: &frozen,
			CreatedAt:       now,
			UpdatedAt:       now,
		})
	}

	if len(entries) > 0 {
		if err := s.repo.CreateEntries(ctx, s.db, entries); err != nil {
			return domain.AddEntriesResult{}, err
		}
	}
	return domain.AddEntriesResult{Added: len(entries), Skipped: skipped}, nil
}

// SetEntryTime records an entry's worked times and recomputes its stored
// hours and cost from the frozen rate.
func (s *Service) SetEntryTime(ctx context.Context, req domain.SetEntryTimeRequest) (domain.DiaryEntry, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.DiaryEntry{}, domain.ErrInvalidOrganization
	}
	if req.BreakHours < 0 {
		return domain.DiaryEntry{}, domain.ErrInvalidBreak
	}

	entryID, err := parseID(req.EntryID)
	if err != nil {
		return domain.DiaryEntry{}, err
	}
	entry, err := s.repo.FindEntry(ctx, s.db, orgID, entryID)
	if err != nil {
		return domain.DiaryEntry{}, err
	}
	if entry == nil {
		return domain.DiaryEntry{}, domain.ErrEntryNotFound
	}
	if _, err := s.editableDiaryByID(ctx, orgID, entry.DiaryID); err != nil {
		return domain.DiaryEntry{}, err
	}

	start, err := clockValue(req.StartTime)
	if err != nil {
		return domain.DiaryEntry{}, err
	}
	finish, err := clockValue(req.FinishTime)
	if err != nil {
		return domain.DiaryEntry{}, err
	}

	brk := req.BreakHours
	entry.StartTime = start
	entry.FinishTime = finish
	entry.BreakHours = &brk
	entry.TotalHours = nil
	entry.TotalCostCents = nil
	if start != nil && finish != nil {
		hours, err := domain.CalculateHours(*start, *finish, brk)
		if err != nil {
			return domain.DiaryEntry{}, err
		}
		entry.TotalHours = &hours
		if entry.FrozenRateCents != nil {
			cost := domain.CalculateCostCents(hours, *entry.FrozenRateCents)
			entry.TotalCostCents = &cost
		}
	}
	entry.UpdatedAt = time.Now().UTC()

	if err := s.repo.SaveEntry(ctx, s.db, entry); err != nil {
		return domain.DiaryEntry{}, err
	}
	return *entry, nil
}

func (s *Service) RemoveEntry(ctx context.Context, entryID string) error {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.ErrInvalidOrganization
	}
	id, err := parseID(entryID)
	if err != nil {
		return err
	}

	entry, err := s.repo.FindEntry(ctx, s.db, orgID, id)
	if err != nil {
		return err
	}
	if entry == nil {
		return domain.ErrEntryNotFound
	}
	if _, err := s.editableDiaryByID(ctx, orgID, entry.DiaryID); err != nil {
		return err
	}
	return s.repo.DeleteEntry(ctx, s.db, entry)
}

func (s *Service) UpdateNotes(ctx context.Context, req domain.UpdateNotesRequest) (domain.Diary, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.Diary{}, domain.ErrInvalidOrganization
	}

	diary, err := s.editableDiary(ctx, orgID, req.DiaryID)
	if err != nil {
		return domain.Diary{}, err
	}
	diary.Notes = req.Notes
	diary.UpdatedAt = time.Now().UTC()
	if err := s.repo.SaveDiary(ctx, s.db, diary); err != nil {
		return domain.Diary{}, err
	}
	return *diary, nil
}

// Submit closes the diary. It refuses an empty diary and one with entries
// still missing times, and reports how many entries are incomplete. The
// status flip is conditional on the diary still being a draft, so a
// concurrent submit cannot apply twice.
func (s *Service) Submit(ctx context.Context, diaryID string) (domain.Diary, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.Diary{}, domain.ErrInvalidOrganization
	}

	diary, err := s.editableDiary(ctx, orgID, diaryID)
	if err != nil {
		return domain.Diary{}, err
	}

	total, incomplete, err := s.repo.CountIncompleteEntries(ctx, s.db, diary.ID)
	if err != nil {
		return domain.Diary{}, err
	}
	if total == 0 {
		return domain.Diary{}, domain.ErrDiaryEmpty
	}
	if incomplete > 0 {
		return domain.Diary{}, fmt.Errorf("%w: %d of %d", domain.ErrEntriesIncomplete, incomplete, total)
	}

	rows, err := s.repo.UpdateDiaryStatus(ctx, s.db, diary.ID, domain.DiaryDraft, domain.DiarySubmitted)
	if err != nil {
		return domain.Diary{}, err
	}
	if rows == 0 {
		return domain.Diary{}, domain.ErrDiarySubmitted
	}

	diary.Status = domain.DiarySubmitted
	s.log.Info("diary submitted",
		zap.Int64("diary_id", diary.ID.Int64()),
		zap.Int64("entries", total),
	)
	return *diary, nil
}

func (s *Service) editableDiary(ctx context.Context, orgID snowflake.ID, diaryID string) (*domain.Diary, error) {
	id, err := parseID(diaryID)
	if err != nil {
		return nil, err
	}
	return s.editableDiaryByID(ctx, orgID, id)
}

func (s *Service) editableDiaryByID(ctx context.Context, orgID, diaryID snowflake.ID) (*domain.Diary, error) {
	diary, err := s.repo.FindDiary(ctx, s.db, orgID, diaryID)
	if err != nil {
		return nil, err
	}
	if diary == nil {
		return nil, domain.ErrDiaryNotFound
	}
	if diary.Status != domain.DiaryDraft {
		return nil, domain.ErrDiarySubmitted
	}
	return diary, nil
}

func parseID(v string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(v)
	if err != nil {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

// clockValue validates an optional HH:MM input. Nil and empty both mean
// "no time recorded" and come back nil.
func clockValue(v *string) (*string, error) {
	if v == nil || *v == "" {
		return nil, nil
	}
	if _, err := domain.ParseClock(*v); err != nil {
		return nil, err
	}
	value := *v
	return &value, nil
}
