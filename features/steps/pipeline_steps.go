//go:build integration

package steps

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"conference-clipper/application/pipeline"
	"conference-clipper/cmd"
	"conference-clipper/domain/talk"
	"conference-clipper/infrastructure/config"
	"conference-clipper/infrastructure/filesystem"

	"github.com/cucumber/godog"
	"github.com/rs/zerolog"
)

type pipelineContext struct {
	tempDir    string
	config     *config.Config
	records    []talk.Record
	downloader *fakeDownloader
	clipper    *fakeClipper
	publisher  *fakePublisher
	summary    *pipeline.Summary
	output     *bytes.Buffer
	err        error
}

var SharedPipelineContext = &pipelineContext{}

func InitializePipelineScenario(ctx *godog.ScenarioContext) {
	testCtx := SharedPipelineContext

	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "pipeline-test-*")
		if err != nil {
			return c, err
		}
		testCtx.tempDir = tempDir
		testCtx.config = config.Default()
		testCtx.config.Paths.Root = tempDir
		testCtx.records = nil
		testCtx.downloader = &fakeDownloader{fail: map[string]bool{}}
		testCtx.clipper = &fakeClipper{}
		testCtx.publisher = &fakePublisher{}
		testCtx.summary = nil
		testCtx.output = &bytes.Buffer{}
		testCtx.err = nil
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if testCtx.tempDir != "" {
			os.RemoveAll(testCtx.tempDir)
		}
		return c, nil
	})

	ctx.Step(`^a conference "([^"]*)" in (\d+)$`, testCtx.aConference)
	ctx.Step(`^the schedule:$`, testCtx.theSchedule)
	ctx.Step(`^the schedule also has a talk "([^"]*)" in room "([^"]*)" starting at "([^"]*)"$`, testCtx.theScheduleAlsoHasATalkStartingAt)
	ctx.Step(`^the schedule also has a talk "([^"]*)" in room "([^"]*)" from "([^"]*)" to "([^"]*)"$`, testCtx.theScheduleAlsoHasATalkFromTo)
	ctx.Step(`^the download of room "([^"]*)" fails$`, testCtx.theDownloadOfRoomFails)
	ctx.Step(`^downloads, extraction and upload are switched off$`, testCtx.everyStageIsSwitchedOff)

	ctx.Step(`^I run the pipeline$`, testCtx.iRunThePipeline)
	ctx.Step(`^I run the pipeline one room at a time$`, testCtx.iRunThePipelineOneRoomAtATime)

	ctx.Step(`^(\d+) recordings? should be downloaded$`, testCtx.recordingsShouldBeDownloaded)
	ctx.Step(`^(\d+) clips? should be extracted$`, testCtx.clipsShouldBeExtracted)
	ctx.Step(`^the uploaded titles should be:$`, testCtx.theUploadedTitlesShouldBe)
	ctx.Step(`^every upload should be "([^"]*)"$`, testCtx.everyUploadShouldBe)
	ctx.Step(`^no upload should be titled "([^"]*)"$`, testCtx.noUploadShouldBeTitled)
	ctx.Step(`^the run should succeed$`, testCtx.theRunShouldSucceed)
	ctx.Step(`^the run should fail$`, testCtx.theRunShouldFail)
	ctx.Step(`^room "([^"]*)" should be "([^"]*)" with (\d+) uploads?$`, testCtx.roomShouldBeWithUploads)
	ctx.Step(`^room "([^"]*)" should be "([^"]*)"$`, testCtx.roomShouldBe)
	ctx.Step(`^the file "([^"]*)" should exist$`, testCtx.theFileShouldExist)
	ctx.Step(`^no video file should be written$`, testCtx.noVideoFileShouldBeWritten)
}

func (p *pipelineContext) aConference(product string, year int) error {
	p.config.Product = product
	p.config.Year = year
	return nil
}

func (p *pipelineContext) theSchedule(table *godog.Table) error {
	if len(table.Rows) < 2 {
		return fmt.Errorf("schedule table needs a header and at least one row")
	}
	for i, row := range table.Rows[1:] {
		if len(row.Cells) != 5 {
			return fmt.Errorf("schedule row %d has %d cells, want 5", i+1, len(row.Cells))
		}
		p.records = append(p.records, talk.Record{
			Room:  row.Cells[0].Value,
			Title: row.Cells[1].Value,
			Start: row.Cells[2].Value,
			End:   row.Cells[3].Value,
			URL:   row.Cells[4].Value,
			Line:  i + 2,
		})
	}
	return nil
}

func (p *pipelineContext) theScheduleAlsoHasATalkStartingAt(title, room, start string) error {
	return p.theScheduleAlsoHasATalkFromTo(title, room, start, "23:00:00")
}

func (p *pipelineContext) theScheduleAlsoHasATalkFromTo(title, room, start, end string) error {
	p.records = append(p.records, talk.Record{
		Room:  room,
		Title: title,
		Start: start,
		End:   end,
		URL:   "https://youtu.be/" + strings.ToLower(room),
		Line:  len(p.records) + 2,
	})
	return nil
}

func (p *pipelineContext) theDownloadOfRoomFails(room string) error {
	p.downloader.fail[room] = true
	return nil
}

func (p *pipelineContext) everyStageIsSwitchedOff() error {
	p.config.Features = config.FeaturesConfig{}
	return nil
}

func (p *pipelineContext) iRunThePipeline() error {
	deps := cmd.PipelineDependencies{
		Schedule:   &recordSource{records: p.records},
		Downloader: p.downloader,
		Clipper:    p.clipper,
		Files:      filesystem.NewChecker(),
		Publisher:  p.publisher,
		Logger:     zerolog.Nop(),
	}
	p.summary, p.err = cmd.RunPipelineWithDependencies(context.Background(), p.config, deps, p.output)
	lastOutput = p.output
	return nil
}

func (p *pipelineContext) iRunThePipelineOneRoomAtATime() error {
	p.config.Concurrency.MaxRooms = 1
	return p.iRunThePipeline()
}

func (p *pipelineContext) recordingsShouldBeDownloaded(n int) error {
	if got := p.downloader.count(); got != n {
		return fmt.Errorf("expected %d downloads, got %d", n, got)
	}
	return nil
}

func (p *pipelineContext) clipsShouldBeExtracted(n int) error {
	if got := p.clipper.count(); got != n {
		return fmt.Errorf("expected %d clips, got %d", n, got)
	}
	return nil
}

func (p *pipelineContext) theUploadedTitlesShouldBe(table *godog.Table) error {
	got := p.publisher.titles()
	if len(got) != len(table.Rows) {
		return fmt.Errorf("expected %d uploads, got %d: %v", len(table.Rows), len(got), got)
	}
	for i, row := range table.Rows {
		if got[i] != row.Cells[0].Value {
			return fmt.Errorf("upload %d: expected %q, got %q", i+1, row.Cells[0].Value, got[i])
		}
	}
	return nil
}

func (p *pipelineContext) everyUploadShouldBe(privacy string) error {
	p.publisher.mu.Lock()
	defer p.publisher.mu.Unlock()
	for _, u := range p.publisher.uploads {
		if string(u.Privacy) != privacy {
			return fmt.Errorf("upload %q is %q, expected %q", u.Title, u.Privacy, privacy)
		}
	}
	return nil
}

func (p *pipelineContext) noUploadShouldBeTitled(title string) error {
	for _, t := range p.publisher.titles() {
		if t == title {
			return fmt.Errorf("unexpected upload %q", title)
		}
	}
	return nil
}

func (p *pipelineContext) theRunShouldSucceed() error {
	if p.err != nil {
		return fmt.Errorf("expected success, got: %v", p.err)
	}
	return nil
}

func (p *pipelineContext) theRunShouldFail() error {
	if !errors.Is(p.err, cmd.ErrRoomsFailed) {
		return fmt.Errorf("expected ErrRoomsFailed, got: %v", p.err)
	}
	return nil
}

func (p *pipelineContext) room(name string) (*pipeline.RoomResult, error) {
	if p.summary == nil {
		return nil, fmt.Errorf("no summary, run error: %v", p.err)
	}
	for i := range p.summary.Rooms {
		if p.summary.Rooms[i].Room == name {
			return &p.summary.Rooms[i], nil
		}
	}
	return nil, fmt.Errorf("room %q not in summary", name)
}

func (p *pipelineContext) roomShouldBe(name, state string) error {
	r, err := p.room(name)
	if err != nil {
		return err
	}
	if string(r.State) != state {
		return fmt.Errorf("room %s is %s (%v), expected %s", name, r.State, r.Err, state)
	}
	return nil
}

func (p *pipelineContext) roomShouldBeWithUploads(name, state string, uploads int) error {
	if err := p.roomShouldBe(name, state); err != nil {
		return err
	}
	r, _ := p.room(name)
	if r.Uploaded() != uploads {
		return fmt.Errorf("room %s uploaded %d, expected %d", name, r.Uploaded(), uploads)
	}
	return nil
}

func (p *pipelineContext) theFileShouldExist(rel string) error {
	path := filepath.Join(p.tempDir, filepath.FromSlash(rel))
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("expected file %s: %w", rel, err)
	}
	return nil
}

func (p *pipelineContext) noVideoFileShouldBeWritten() error {
	return filepath.WalkDir(p.tempDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return fmt.Errorf("unexpected file %s", path)
		}
		return nil
	})
}
