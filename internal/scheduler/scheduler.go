package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/omarshaarawi/hoopsbot/internal/config"
	"github.com/omarshaarawi/hoopsbot/internal/models"
)

const jobTimeout = 10 * time.Minute

type Service interface {
	Export(ctx context.Context) (*models.ExportResult, error)
	GetWeeklyDigest(ctx context.Context) (string, error)
	GetStandings(ctx context.Context) (string, error)
	GetPreviewReport(ctx context.Context) (string, error)
}

type Scheduler struct {
	s              gocron.Scheduler
	fantasyService Service
	exportCron     string
	// sendMessage is nil when no chat is configured; report jobs are then
	// not scheduled.
	sendMessage func(string) error
}

func NewScheduler(cfg config.Scheduler, fantasyService Service, sendMessage func(string) error) (*Scheduler, error) {
	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load location %q: %w", cfg.Timezone, err)
	}

	s, err := gocron.NewScheduler(
		gocron.WithLocation(location),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	return &Scheduler{
		s:              s,
		fantasyService: fantasyService,
		exportCron:     cfg.ExportCron,
		sendMessage:    sendMessage,
	}, nil
}

func (s *Scheduler) Start() error {
	_, err := s.s.NewJob(
		gocron.CronJob(s.exportCron, false),
		gocron.NewTask(s.exportSnapshots),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to create export job: %w", err)
	}

	if s.sendMessage != nil {
		// All-play digest of the week that just ended - Monday 7:30 CT
		_, err = s.s.NewJob(
			gocron.WeeklyJob(1, gocron.NewWeekdays(time.Monday), gocron.NewAtTimes(gocron.NewAtTime(7, 30, 0))),
			gocron.NewTask(s.sendDigest),
		)
		if err != nil {
			return fmt.Errorf("failed to create digest job: %w", err)
		}

		// Standings - Wednesday 7:30 CT
		_, err = s.s.NewJob(
			gocron.WeeklyJob(1, gocron.NewWeekdays(time.Wednesday), gocron.NewAtTimes(gocron.NewAtTime(7, 30, 0))),
			gocron.NewTask(s.sendStandings),
		)
		if err != nil {
			return fmt.Errorf("failed to create standings job: %w", err)
		}

		// Next week's preview - Sunday 19:00 CT
		_, err = s.s.NewJob(
			gocron.WeeklyJob(1, gocron.NewWeekdays(time.Sunday), gocron.NewAtTimes(gocron.NewAtTime(19, 0, 0))),
			gocron.NewTask(s.sendPreview),
		)
		if err != nil {
			return fmt.Errorf("failed to create preview job: %w", err)
		}
	}

	s.s.Start()
	slog.Info("Scheduler started", "export_cron", s.exportCron, "jobs", len(s.s.Jobs()))
	return nil
}

func (s *Scheduler) Stop() error {
	return s.s.Shutdown()
}

func (s *Scheduler) exportSnapshots() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	result, err := s.fantasyService.Export(ctx)
	if err != nil {
		slog.Error("Failed to export snapshots", "error", err)
		return
	}
	if len(result.Failed) > 0 {
		slog.Warn("Export finished with failed weeks", "failed", result.Failed)
	}
}

func (s *Scheduler) sendDigest() {
	s.sendReport("weekly digest", s.fantasyService.GetWeeklyDigest)
}

func (s *Scheduler) sendStandings() {
	s.sendReport("standings", s.fantasyService.GetStandings)
}

func (s *Scheduler) sendPreview() {
	s.sendReport("preview", s.fantasyService.GetPreviewReport)
}

func (s *Scheduler) sendReport(name string, build func(context.Context) (string, error)) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	report, err := build(ctx)
	if err != nil {
		slog.Error("Failed to build report", "report", name, "error", err)
		return
	}
	if err := s.sendMessage(report); err != nil {
		slog.Error("Failed to send report", "report", name, "error", err)
	}
}
