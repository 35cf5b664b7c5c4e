package domain

import (
	"context"
	"errors"
)

// InitializeDiaryRequest opens (or re-opens) the diary for a lot and date.
// ProjectID is optional; when present it must match the lot's project.
type InitializeDiaryRequest struct {
	LotID     string `json:"lot_id" binding:"required"`
	ProjectID string `json:"project_id"`
	Date      string `json:"date" binding:"required"`
}

// InitializeDiaryResult reports whether the diary already existed.
type InitializeDiaryResult struct {
	Diary    DiaryDetail `json:"diary"`
	Existing bool        `json:"existing"`
}

// AddEntriesRequest adds one blank entry per resource. Resources already
// on the diary are skipped, not duplicated.
type AddEntriesRequest struct {
	DiaryID     string   `json:"-"`
	ResourceIDs []string `json:"resource_ids" binding:"required"`
}

// AddEntriesResult counts what actually happened.
type AddEntriesResult struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
}

// SetEntryTimeRequest writes an entry's times and recomputes its totals.
// A nil or empty time clears the stored value; the derived hours and cost
// are null unless both times are present.
type SetEntryTimeRequest struct {
	EntryID    string  `json:"-"`
	StartTime  *string `json:"start_time"`
	FinishTime *string `json:"finish_time"`
	BreakHours float64 `json:"break_hours"`
}

// UpdateNotesRequest replaces the diary's free-text notes.
type UpdateNotesRequest struct {
	DiaryID string `json:"-"`
	Notes   string `json:"notes"`
}

// Service manages daily diaries and their costed entries.
type Service interface {
	Initialize(ctx context.Context, req InitializeDiaryRequest) (InitializeDiaryResult, error)
	Get(ctx context.Context, diaryID string) (DiaryDetail, error)
	ListForDate(ctx context.Context, projectID, date string) ([]Diary, error)
	ListForLot(ctx context.Context, lotID string) ([]Diary, error)
	AddEntries(ctx context.Context, req AddEntriesRequest) (AddEntriesResult, error)
	SetEntryTime(ctx context.Context, req SetEntryTimeRequest) (DiaryEntry, error)
	RemoveEntry(ctx context.Context, entryID string) error
	UpdateNotes(ctx context.Context, req UpdateNotesRequest) (Diary, error)
	Submit(ctx context.Context, diaryID string) (Diary, error)
}

var (
	// ErrInvalidOrganization indicates the request carried no resolvable org.
	ErrInvalidOrganization = errors.New("no organization resolved for request")

	// ErrInvalidID indicates a malformed identifier.
	ErrInvalidID = errors.New("invalid id")

	// ErrDiaryNotFound indicates the diary does not exist in this org.
	ErrDiaryNotFound = errors.New("diary not found")

	// ErrEntryNotFound indicates the diary entry does not exist in this org.
	ErrEntryNotFound = errors.New("diary entry not found")

	// ErrLotNotFound indicates the lot does not exist in this org.
	ErrLotNotFound = errors.New("lot not found")

	// ErrResourceNotFound indicates a referenced resource does not exist
	// in this org.
	ErrResourceNotFound = errors.New("resource not found")

	// ErrInvalidDate rejects dates not in YYYY-MM-DD form.
	ErrInvalidDate = errors.New("date must be in YYYY-MM-DD format")

	// ErrInvalidBreak rejects negative break durations.
	ErrInvalidBreak = errors.New("break hours must not be negative")

	// ErrDiarySubmitted rejects writes to a diary that has been submitted.
	ErrDiarySubmitted = errors.New("diary has been submitted and can no longer be edited")

	// ErrDiaryEmpty blocks submission of a diary with no entries.
	ErrDiaryEmpty = errors.New("cannot submit a diary with no entries")

	// ErrEntriesIncomplete blocks submission while entries are missing times.
	ErrEntriesIncomplete = errors.New("cannot submit: entries are missing start or finish times")
)
