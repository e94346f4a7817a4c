// Package scheduler runs the periodic jobs of the bot: the daily chat
// notification and the rebuild of the calendar feed. Cron expressions carry
// a seconds field and are evaluated in the policy zone.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/reugn/go-quartz/quartz"

	"github.com/ivancheban/salary-bot/internal/bot"
	"github.com/ivancheban/salary-bot/internal/config"
	"github.com/ivancheban/salary-bot/internal/engine"
)

// Notifier sends the daily notification.
type Notifier interface {
	NotifyDaily(ctx context.Context) (bot.NotifyResult, error)
}

// FeedPublisher receives every rebuilt calendar feed with its build time.
type FeedPublisher interface {
	UpdateCalendar(data []byte, built time.Time)
}

// Options configures the job triggers.
type Options struct {
	NotifyCron string
	FeedCron   string
	Clock      engine.Clock
}

// Scheduler owns a quartz scheduler and the two bot jobs.
type Scheduler struct {
	sched    quartz.Scheduler
	resolver *engine.Resolver
	notifier Notifier
	feed     FeedPublisher
	opts     Options
}

// New creates a scheduler. Empty cron fields take the defaults.
func New(resolver *engine.Resolver, notifier Notifier, feed FeedPublisher, opts Options) *Scheduler {
	if opts.NotifyCron == "" {
		opts.NotifyCron = config.DefaultNotifyCron
	}
	if opts.FeedCron == "" {
		opts.FeedCron = config.DefaultFeedCron
	}
	if opts.Clock == nil {
		opts.Clock = engine.RealClock{Location: resolver.Location()}
	}
	return &Scheduler{
		sched:    quartz.NewStdScheduler(),
		resolver: resolver,
		notifier: notifier,
		feed:     feed,
		opts:     opts,
	}
}

// RefreshFeed rebuilds the calendar feed and hands it to the publisher.
func (s *Scheduler) RefreshFeed(_ context.Context) error {
	now := s.opts.Clock.Now()
	data, err := engine.BuildFeed(s.resolver, now)
	if err != nil {
		return err
	}
	s.feed.UpdateCalendar(data, now)
	return nil
}

func (s *Scheduler) notify(ctx context.Context) error {
	_, err := s.notifier.NotifyDaily(ctx)
	return err
}

// Start publishes a first feed, then starts the quartz loop with both jobs.
// A feed failure at start is logged and the jobs are still scheduled.
func (s *Scheduler) Start(ctx context.Context) error {
	loc := s.resolver.Location()

	notifyTrigger, err := quartz.NewCronTriggerWithLoc(s.opts.NotifyCron, loc)
	if err != nil {
		return fmt.Errorf("%s %q: %w", config.ErrSchedulerJob, s.opts.NotifyCron, err)
	}
	feedTrigger, err := quartz.NewCronTriggerWithLoc(s.opts.FeedCron, loc)
	if err != nil {
		return fmt.Errorf("%s %q: %w", config.ErrSchedulerJob, s.opts.FeedCron, err)
	}

	if s.feed != nil {
		if err := newRunJob(config.JobFeedRefresh, s.RefreshFeed).Execute(ctx); err != nil {
			slog.Warn(config.ErrICalEncode,
				config.LogKeyComponent, config.CompScheduler,
				config.LogKeyError, err,
			)
		}
	}

	s.sched.Start(ctx)
	slog.Info(config.MsgSchedulerStart,
		config.LogKeyComponent, config.CompScheduler,
		config.LogKeyZone, loc.String(),
	)

	jobs := []scheduledJob{
		{newRunJob(config.JobDailyNotification, s.notify), notifyTrigger, s.opts.NotifyCron},
	}
	if s.feed != nil {
		jobs = append(jobs, scheduledJob{newRunJob(config.JobFeedRefresh, s.RefreshFeed), feedTrigger, s.opts.FeedCron})
	}

	for _, j := range jobs {
		detail := quartz.NewJobDetail(j.job, quartz.NewJobKey(j.job.name))
		if err := s.sched.ScheduleJob(detail, j.trigger); err != nil {
			s.Stop()
			return fmt.Errorf("%s %s: %w", config.ErrSchedulerJob, j.job.name, err)
		}
		slog.Info(config.MsgJobScheduled,
			config.LogKeyComponent, config.CompScheduler,
			config.LogKeyJob, j.job.name,
			config.LogKeyCron, j.cron,
		)
	}
	return nil
}

// Stop halts the quartz loop and waits for running jobs.
func (s *Scheduler) Stop() {
	if !s.sched.IsStarted() {
		return
	}
	s.sched.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	s.sched.Wait(ctx)

	slog.Info(config.MsgSchedulerStop, config.LogKeyComponent, config.CompScheduler)
}

type scheduledJob struct {
	job     *runJob
	trigger quartz.Trigger
	cron    string
}

// runJob adapts a function to quartz.Job and logs each run under its own id.
type runJob struct {
	name string
	run  func(ctx context.Context) error
}

var _ quartz.Job = (*runJob)(nil)

func newRunJob(name string, run func(ctx context.Context) error) *runJob {
	return &runJob{name: name, run: run}
}

func (j *runJob) Description() string {
	return j.name
}

func (j *runJob) Execute(ctx context.Context) error {
	log := slog.With(
		config.LogKeyComponent, config.CompScheduler,
		config.LogKeyJob, j.name,
		config.LogKeyRunID, uuid.NewString(),
	)
	start := time.Now()
	log.Debug(config.MsgJobStarted)

	if err := j.run(ctx); err != nil {
		log.Error(config.MsgJobFailed, config.LogKeyError, err)
		return err
	}

	log.Info(config.MsgJobFinished, config.LogKeyDuration, time.Since(start).Milliseconds())
	return nil
}
