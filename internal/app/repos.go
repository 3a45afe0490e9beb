package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/pixelbuddy-backend/internal/data/repos"
	"github.com/yungbote/pixelbuddy-backend/internal/platform/logger"
)

type Repos struct {
	Application repos.ApplicationRepo
	Baseline    repos.BaselineRepo
	TestRun     repos.TestRunRepo
	Screenshot  repos.ScreenshotRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Application: repos.NewApplicationRepo(db, log),
		Baseline:    repos.NewBaselineRepo(db, log),
		TestRun:     repos.NewTestRunRepo(db, log),
		Screenshot:  repos.NewScreenshotRepo(db, log),
	}
}
