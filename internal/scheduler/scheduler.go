package scheduler

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"GoldSentinel/internal/model"
	"GoldSentinel/internal/notifier"
	"GoldSentinel/internal/recorder"
	"GoldSentinel/internal/session"
	"GoldSentinel/internal/strategy"
)

// Scheduler runs the engine on a fixed interval inside the active sessions.
type Scheduler struct {
	Cron     *cron.Cron
	Engine   *strategy.Engine
	Gate     *session.Gate
	Recorder recorder.Recorder
	Ctx      context.Context

	now       func() time.Time
	inSession bool
}

// NewScheduler creates a new Scheduler. Cycles never overlap: a tick that
// fires while the previous cycle is still running waits for it to finish.
func NewScheduler(ctx context.Context, eng *strategy.Engine, gate *session.Gate, rec recorder.Recorder) *Scheduler {
	logger := cron.PrintfLogger(log.Default())
	return &Scheduler{
		Cron: cron.New(
			cron.WithLocation(gate.Location),
			cron.WithChain(cron.Recover(logger), cron.DelayIfStillRunning(logger)),
		),
		Engine:   eng,
		Gate:     gate,
		Recorder: rec,
		Ctx:      ctx,
		now:      time.Now,
	}
}

// Register schedules the polling job.
func (s *Scheduler) Register(interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("register poll task: interval must be positive, got %v", interval)
	}
	s.Cron.Schedule(cron.Every(interval), cron.FuncJob(s.tick))
	log.Printf("[INFO] polling every %v", interval)
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for a running cycle to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

func (s *Scheduler) tick() {
	w, active := s.Gate.Active(s.now())
	if active != s.inSession {
		if active {
			log.Printf("[INFO] %s session opened", w.Name)
		} else {
			log.Println("[INFO] outside trading sessions, engine paused")
		}
		s.inSession = active
	}
	if !active {
		return
	}
	s.run(s.Ctx)
}

// RunNow executes one cycle immediately, ignoring the session windows.
// It is safe to call concurrently with scheduled cycles.
func (s *Scheduler) RunNow(ctx context.Context) *model.CycleResult {
	log.Println("[INFO] out-of-band cycle requested")
	return s.run(ctx)
}

func (s *Scheduler) run(ctx context.Context) *model.CycleResult {
	res := s.Engine.Run(ctx)
	if err := s.Recorder.RecordCycle(res); err != nil {
		log.Printf("[ERROR] record cycle %s: %v", res.ID, err)
	}
	return res
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	cfg := s.Engine.Config()
	switch command {
	case "/status":
		now := s.now()
		return notifier.FormatStatus(cfg.Symbol, s.Engine.LastAlert(), s.Gate.Label(now), now.In(s.Gate.Location))
	case "/levels":
		return notifier.FormatLevels(cfg.Levels, cfg.Tolerance)
	case "/check":
		res := s.RunNow(ctx)
		if res.Dispatched() {
			return ""
		}
		return fmt.Sprintf("No setup: %s (price %.2f)", res.Stage, res.Price)
	case "/history":
		return s.formatHistory()
	default:
		return "Commands:\n• /status\n• /levels\n• /check\n• /history"
	}
}

func (s *Scheduler) formatHistory() string {
	alerts, err := s.Recorder.RecentAlerts(5)
	if err != nil {
		log.Printf("[ERROR] load history: %v", err)
		return "History unavailable"
	}
	if len(alerts) == 0 {
		return "No recorded alerts"
	}
	var b strings.Builder
	b.WriteString("🗂 <b>Recent alerts</b>\n\n")
	for _, a := range alerts {
		b.WriteString(fmt.Sprintf("%s %s @ %.2f SL %.2f TP %.2f [%s]\n",
			a.Time().In(s.Gate.Location).Format("01-02 15:04"), a.Signal, a.Entry, a.StopLoss, a.TakeProfit, a.Levels))
	}
	return b.String()
}
