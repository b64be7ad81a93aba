package monitoring

import (
	"fmt"
	"time"

	"github.com/lmoren/taskdeck-be/internal/services"
	ws "github.com/lmoren/taskdeck-be/internal/websocket"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// DueScanner periodically flags overdue tasks, records an activity event
// and notifies the owner's task feed. Each task is flagged at most once
// until its due date changes.
type DueScanner struct {
	taskSvc  services.TaskServiceProvider
	eventSvc services.EventServiceProvider
	hub      *ws.Hub
	schedule cron.Schedule
	nextRun  time.Time
	ticker   *time.Ticker
	done     chan bool
}

// NewDueScanner creates a scanner running on the given cron cadence.
func NewDueScanner(taskSvc services.TaskServiceProvider, eventSvc services.EventServiceProvider, hub *ws.Hub, cronSpec string) (*DueScanner, error) {
	schedule, err := cron.ParseStandard(cronSpec)
	if err != nil {
		return nil, fmt.Errorf("invalid due scan cron expression: %w", err)
	}

	return &DueScanner{
		taskSvc:  taskSvc,
		eventSvc: eventSvc,
		hub:      hub,
		schedule: schedule,
		done:     make(chan bool),
	}, nil
}

// Run starts the scanner's ticking loop.
func (s *DueScanner) Run() {
	log.Info().Msg("Starting due date scanner...")
	s.ticker = time.NewTicker(30 * time.Second)
	defer s.ticker.Stop()

	// Run once immediately on start
	s.scan()
	s.nextRun = s.schedule.Next(time.Now())

	for {
		select {
		case <-s.done:
			log.Info().Msg("Stopping due date scanner.")
			return
		case <-s.ticker.C:
			now := time.Now()
			if now.After(s.nextRun) {
				s.scan()
				s.nextRun = s.schedule.Next(now)
			}
		}
	}
}

// Stop halts the scanner.
func (s *DueScanner) Stop() {
	s.done <- true
}

// scan flags every not-yet-notified overdue task.
func (s *DueScanner) scan() {
	tasks, err := s.taskSvc.GetOverdueTasks(time.Now())
	if err != nil {
		log.Error().Err(err).Msg("Due scanner: failed to retrieve overdue tasks")
		return
	}

	for _, task := range tasks {
		msg := fmt.Sprintf("Task %d is past its due date.", task.ID)
		s.eventSvc.CreateEvent("task.overdue", "warn", msg, &task.UserID)
		if s.hub != nil {
			s.hub.BroadcastTo(task.UserID, ws.NewTaskMessage("task_overdue", task))
		}
		if err := s.taskSvc.MarkDueNotified(task.ID); err != nil {
			log.Error().Err(err).Int64("task_id", task.ID).Msg("Due scanner: failed to mark task as notified")
		}
	}

	if len(tasks) > 0 {
		log.Info().Int("count", len(tasks)).Msg("Due scanner: flagged overdue tasks")
	}
}
