package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"

	"BourseLens/internal/fx"
	"BourseLens/internal/notifier"
	"BourseLens/internal/recorder"
	"BourseLens/internal/report"

	"github.com/robfig/cron/v3"
)

// GenerateFunc produces one report. It loads inputs, resolves FX and writes any file outputs.
type GenerateFunc func(ctx context.Context) (*report.Report, error)

// Scheduler runs report generation on a cron schedule, records every result
// and sends a digest.
type Scheduler struct {
	Cron     *cron.Cron
	Generate GenerateFunc
	Notifier notifier.Notifier
	Recorder recorder.Recorder
	Pegs     fx.PegTable
	Ctx      context.Context

	runMu sync.Mutex // one generation at a time
	mu    sync.Mutex
	last  *report.Report
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, gen GenerateFunc, n notifier.Notifier, rec recorder.Recorder, pegs fx.PegTable) *Scheduler {
	if n == nil {
		n = notifier.NoopNotifier{}
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	c := cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	return &Scheduler{
		Cron:     c,
		Generate: gen,
		Notifier: n,
		Recorder: rec,
		Pegs:     pegs,
		Ctx:      ctx,
	}
}

// Register adds the recurring report job.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.reportTask); err != nil {
		return fmt.Errorf("register report task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunNow generates, records and announces a report immediately. Overlapping calls
// from cron ticks, chat commands or startup wait for the running one to finish.
func (s *Scheduler) RunNow() (*report.Report, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	log.Println("[INFO] running report task")
	rep, err := s.Generate(s.Ctx)
	if err != nil {
		log.Printf("[ERROR] generate report: %v", err)
		s.trySend(fmt.Sprintf("❌ Report generation failed: %v", err))
		return nil, err
	}

	s.mu.Lock()
	s.last = rep
	s.mu.Unlock()

	if err := s.Recorder.RecordReport(rep); err != nil {
		log.Printf("[ERROR] record report: %v", err)
	}
	s.trySend(notifier.FormatReportDigest(rep))
	return rep, nil
}

// Last returns the most recent successful report, or nil.
func (s *Scheduler) Last() *report.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func (s *Scheduler) reportTask() {
	_, _ = s.RunNow()
}

// HandleCommand processes a chat command and returns a reply.
func (s *Scheduler) HandleCommand(_ context.Context, command string) string {
	switch command {
	case "/report":
		// RunNow sends the digest itself.
		s.RunNow()
		return ""
	case "/latest":
		if rep := s.Last(); rep != nil {
			return notifier.FormatReportDigest(rep)
		}
		return "No report generated yet. Send /report to create one."
	case "/pegs":
		return notifier.FormatPegs(s.Pegs)
	case "/history":
		rows, err := s.Recorder.ListReports(10)
		if err != nil {
			return fmt.Sprintf("❌ history unavailable: %v", err)
		}
		return notifier.FormatHistory(rows)
	default:
		return "Available commands:\n• /report\n• /latest\n• /pegs\n• /history"
	}
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
