package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/pixelbuddy-backend/internal/data/repos/visual"
	"github.com/yungbote/pixelbuddy-backend/internal/platform/logger"
)

type ApplicationRepo = visual.ApplicationRepo
type BaselineRepo = visual.BaselineRepo
type TestRunRepo = visual.TestRunRepo
type ScreenshotRepo = visual.ScreenshotRepo

func NewApplicationRepo(db *gorm.DB, baseLog *logger.Logger) ApplicationRepo {
	return visual.NewApplicationRepo(db, baseLog)
}
func NewBaselineRepo(db *gorm.DB, baseLog *logger.Logger) BaselineRepo {
	return visual.NewBaselineRepo(db, baseLog)
}
func NewTestRunRepo(db *gorm.DB, baseLog *logger.Logger) TestRunRepo {
	return visual.NewTestRunRepo(db, baseLog)
}
func NewScreenshotRepo(db *gorm.DB, baseLog *logger.Logger) ScreenshotRepo {
	return visual.NewScreenshotRepo(db, baseLog)
}

// IsDuplicate reports a unique-constraint violation from either store driver.
func IsDuplicate(err error) bool { return visual.IsDuplicate(err) }
