//go:build integration

package steps

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	"slack-file-cleaner/clients"
	"slack-file-cleaner/models"
	"slack-file-cleaner/processor"
	"slack-file-cleaner/report"
	"slack-file-cleaner/units"

	"github.com/cucumber/godog"
)

// fakeSlackAPI serves files.list and files.delete from memory
type fakeSlackAPI struct {
	mu        sync.Mutex
	files     []models.FileRecord
	requests  int
	deletions int
}

func (f *fakeSlackAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests++

	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/auth.test":
		json.NewEncoder(w).Encode(map[string]any{"ok": true})
	case "/files.list":
		page, _ := strconv.Atoi(r.PostForm.Get("page"))
		pages := (len(f.files) + clients.PageSize - 1) / clients.PageSize
		start := min((page-1)*clients.PageSize, len(f.files))
		end := min(start+clients.PageSize, len(f.files))
		json.NewEncoder(w).Encode(map[string]any{
			"ok":     true,
			"files":  f.files[start:end],
			"paging": map[string]int{"count": clients.PageSize, "total": len(f.files), "page": page, "pages": pages},
		})
	case "/files.delete":
		f.deletions++
		json.NewEncoder(w).Encode(map[string]any{"ok": true})
	default:
		http.NotFound(w, r)
	}
}

type cleanupState struct {
	api     *fakeSlackAPI
	server  *httptest.Server
	output  bytes.Buffer
	reports []string
	err     error
}

func (s *cleanupState) reset() {
	if s.server != nil {
		s.server.Close()
	}
	s.api = &fakeSlackAPI{}
	s.server = httptest.NewServer(s.api)
	s.output.Reset()
	s.reports = nil
	s.err = nil
}

func (s *cleanupState) aWorkspaceWithFiles(count int) error {
	for i := 0; i < count; i++ {
		s.api.files = append(s.api.files, models.FileRecord{
			ID:        fmt.Sprintf("F%04d", i),
			Name:      fmt.Sprintf("notes-%04d.txt", i),
			Filetype:  "text",
			Size:      1024,
			Timestamp: 1600000000 + int64(i),
		})
	}
	return nil
}

func (s *cleanupState) someAreMiBEach(count, size int) error {
	if count > len(s.api.files) {
		return fmt.Errorf("workspace only has %d files", len(s.api.files))
	}
	step := len(s.api.files) / count
	for i := 0; i < count; i++ {
		f := &s.api.files[i*step]
		f.Size = int64(size) * 1024 * 1024
		f.Filetype = "mp4"
	}
	return nil
}

func (s *cleanupState) run(list bool, filter models.FilterSpec, out io.Writer) error {
	proc := processor.NewProcessor(&processor.Dependencies{
		Client:   clients.NewSlackClient(s.server.URL, "xoxp-test"),
		Renderer: report.NewRenderer(out),
		Logger:   log.New(io.Discard, "", 0),
	})
	return proc.Main(context.Background(), processor.Config{List: list, Filter: filter})
}

func (s *cleanupState) runWithSize(size string, dryRun bool) error {
	limit, err := units.ParseSize(size)
	if err != nil {
		s.err = err
		return nil
	}
	s.err = s.run(false, models.FilterSpec{MinSize: limit, HasMinSize: true, DryRun: dryRun}, &s.output)
	return nil
}

func (s *cleanupState) iRunTheCleanerWithSize(size string) error {
	return s.runWithSize(size, false)
}

func (s *cleanupState) iRunTheCleanerInDryRunModeWithSize(size string) error {
	return s.runWithSize(size, true)
}

func (s *cleanupState) iRunTheCleanerWithAge(days int) error {
	s.err = s.run(false, models.FilterSpec{MaxAgeDays: days, HasMaxAge: true}, &s.output)
	return nil
}

func (s *cleanupState) iListTheFilesTwice() error {
	for i := 0; i < 2; i++ {
		var out bytes.Buffer
		if err := s.run(true, models.FilterSpec{}, &out); err != nil {
			return err
		}
		s.reports = append(s.reports, out.String())
	}
	return nil
}

func (s *cleanupState) theSummaryReports(want string) error {
	if s.err != nil {
		return fmt.Errorf("run failed: %w", s.err)
	}
	if !strings.Contains(s.output.String(), want) {
		return fmt.Errorf("expected %q in output:\n%s", want, s.output.String())
	}
	return nil
}

func (s *cleanupState) deleteRequestsWereSent(count int) error {
	if s.api.deletions != count {
		return fmt.Errorf("expected %d delete requests, got %d", count, s.api.deletions)
	}
	return nil
}

func (s *cleanupState) theRunFailsWith(kind string) error {
	want := map[string]error{
		"invalid size unit": units.ErrInvalidSizeUnit,
		"no results":        clients.ErrNoResults,
	}[kind]
	if !errors.Is(s.err, want) {
		return fmt.Errorf("expected %s error, got %v", kind, s.err)
	}
	return nil
}

func (s *cleanupState) noRequestsReachTheAPI() error {
	if s.api.requests != 0 {
		return fmt.Errorf("expected no requests, got %d", s.api.requests)
	}
	return nil
}

func (s *cleanupState) bothReportsAreIdentical() error {
	if len(s.reports) != 2 {
		return fmt.Errorf("expected 2 reports, got %d", len(s.reports))
	}
	if s.reports[0] != s.reports[1] {
		return fmt.Errorf("reports differ:\n%s\n---\n%s", s.reports[0], s.reports[1])
	}
	return nil
}

// InitializeCleanupScenario registers the cleanup steps
func InitializeCleanupScenario(ctx *godog.ScenarioContext) {
	state := &cleanupState{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		state.reset()
		return ctx, nil
	})
	ctx.After(func(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if state.server != nil {
			state.server.Close()
			state.server = nil
		}
		return ctx, nil
	})

	ctx.Step(`^a workspace with (\d+) files across pages of 100$`, state.aWorkspaceWithFiles)
	ctx.Step(`^(\d+) of them are (\d+) MiB each$`, state.someAreMiBEach)
	ctx.Step(`^I run the cleaner with size "([^"]*)"$`, state.iRunTheCleanerWithSize)
	ctx.Step(`^I run the cleaner in dry-run mode with size "([^"]*)"$`, state.iRunTheCleanerInDryRunModeWithSize)
	ctx.Step(`^I run the cleaner with age (\d+) days$`, state.iRunTheCleanerWithAge)
	ctx.Step(`^I list the files twice$`, state.iListTheFilesTwice)
	ctx.Step(`^the summary reports "([^"]*)"$`, state.theSummaryReports)
	ctx.Step(`^(\d+) delete requests were sent$`, state.deleteRequestsWereSent)
	ctx.Step(`^the run fails with an? (invalid size unit|no results) error$`, state.theRunFailsWith)
	ctx.Step(`^no requests reach the API$`, state.noRequestsReachTheAPI)
	ctx.Step(`^both reports are identical$`, state.bothReportsAreIdentical)
}
