//go:build integration

package steps

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"

	"conference-clipper/cmd"
	"conference-clipper/infrastructure/config"
	"conference-clipper/infrastructure/csv"

	"github.com/cucumber/godog"
)

type scheduleContext struct {
	tempDir string
	config  *config.Config
}

var SharedScheduleContext = &scheduleContext{}

func InitializeScheduleScenario(ctx *godog.ScenarioContext) {
	testCtx := SharedScheduleContext

	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "schedule-test-*")
		if err != nil {
			return c, err
		}
		testCtx.tempDir = tempDir
		testCtx.config = config.Default()
		testCtx.config.Schedule.File = filepath.Join(tempDir, "talks.csv")
		testCtx.config.Schedule.SkipHeader = true
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if testCtx.tempDir != "" {
			os.RemoveAll(testCtx.tempDir)
		}
		return c, nil
	})

	ctx.Step(`^a schedule file:$`, testCtx.aScheduleFile)
	ctx.Step(`^only room "([^"]*)" is allowed$`, testCtx.onlyRoomIsAllowed)
	ctx.Step(`^I list the talks$`, testCtx.iListTheTalks)
	ctx.Step(`^I list the talks with rejected rows$`, testCtx.iListTheTalksWithRejectedRows)
}

func (s *scheduleContext) aScheduleFile(doc *godog.DocString) error {
	content := strings.TrimSpace(doc.Content) + "\n"
	return os.WriteFile(s.config.Schedule.File, []byte(content), 0644)
}

func (s *scheduleContext) onlyRoomIsAllowed(room string) error {
	s.config.Rooms = []string{room}
	return nil
}

func (s *scheduleContext) listTalks(showRejected bool) error {
	reader := csv.NewReader(
		csv.WithColumns(csv.Columns(s.config.Schedule.Columns)),
		csv.WithSkipHeader(s.config.Schedule.SkipHeader),
	)
	lastOutput = &bytes.Buffer{}
	lastErr = cmd.RunTalksWithDependencies(s.config, reader, showRejected, lastOutput)
	return lastErr
}

func (s *scheduleContext) iListTheTalks() error {
	return s.listTalks(false)
}

func (s *scheduleContext) iListTheTalksWithRejectedRows() error {
	return s.listTalks(true)
}
