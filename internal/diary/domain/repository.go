package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	projectdomain "github.com/smallbiznis/lotworks/internal/project/domain"
	rateledgerdomain "github.com/smallbiznis/lotworks/internal/rateledger/domain"
	"gorm.io/gorm"
)

// Repository is the persistence boundary for diaries. Methods take the
// *gorm.DB so services can run several calls inside one transaction.
type Repository interface {
	FindDiary(ctx context.Context, db *gorm.DB, orgID, diaryID snowflake.ID) (*Diary, error)
	FindDiaryByLotDate(ctx context.Context, db *gorm.DB, orgID, lotID snowflake.ID, date string) (*Diary, error)
	ListDiariesForDate(ctx context.Context, db *gorm.DB, orgID, projectID snowflake.ID, date string) ([]Diary, error)
	ListDiariesForLot(ctx context.Context, db *gorm.DB, orgID, lotID snowflake.ID) ([]Diary, error)
	SaveDiary(ctx context.Context, db *gorm.DB, diary *Diary) error
	UpdateDiaryStatus(ctx context.Context, db *gorm.DB, diaryID snowflake.ID, from, to DiaryStatus) (int64, error)

	FindEntry(ctx context.Context, db *gorm.DB, orgID, entryID snowflake.ID) (*DiaryEntry, error)
	ListEntries(ctx context.Context, db *gorm.DB, diaryID snowflake.ID) ([]DiaryEntry, error)
	ListEntryResourceIDs(ctx context.Context, db *gorm.DB, diaryID snowflake.ID) ([]snowflake.ID, error)
	CreateEntries(ctx context.Context, db *gorm.DB, entries []DiaryEntry) error
	SaveEntry(ctx context.Context, db *gorm.DB, entry *DiaryEntry) error
	DeleteEntry(ctx context.Context, db *gorm.DB, entry *DiaryEntry) error
	CountIncompleteEntries(ctx context.Context, db *gorm.DB, diaryID snowflake.ID) (int64, int64, error)

	FindLot(ctx context.Context, db *gorm.DB, orgID, lotID snowflake.ID) (*projectdomain.Lot, error)
	FindResources(ctx context.Context, db *gorm.DB, orgID snowflake.ID, ids []snowflake.ID) ([]rateledgerdomain.Resource, error)
}
