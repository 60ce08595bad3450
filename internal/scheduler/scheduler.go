package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/allenshen-svg/fund-assistant/internal/calendar"
	"github.com/allenshen-svg/fund-assistant/internal/collector"
	"github.com/allenshen-svg/fund-assistant/internal/holdings"
	"github.com/allenshen-svg/fund-assistant/internal/model"
	"github.com/allenshen-svg/fund-assistant/internal/notifier"
	"github.com/allenshen-svg/fund-assistant/internal/planner"
	"github.com/allenshen-svg/fund-assistant/internal/recorder"
	"github.com/allenshen-svg/fund-assistant/internal/tracker"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Sender delivers formatted messages.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// HeatLoader provides the current sector heatmap.
type HeatLoader interface {
	Load(ctx context.Context) (model.HotEvents, bool)
}

// Run is the result of one refresh of the plan list.
type Run struct {
	ID       string
	Trigger  string
	Date     string
	Started  time.Time
	Data     *collector.MarketData
	Heat     model.HotEvents
	Plans    []model.Plan
	Overview model.Overview
	Fallback bool
	Market   calendar.MarketStatus
}

// Report converts the run to its message form.
func (r *Run) Report() notifier.Report {
	return notifier.Report{
		Date:         r.Date,
		Overview:     r.Overview,
		Plans:        r.Plans,
		Events:       r.Heat.Events,
		HeatFallback: r.Fallback,
		Failed:       r.Data.Failed,
		Market:       r.Market,
	}
}

// Scheduler manages cron tasks and user commands.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Heat      HeatLoader
	Holdings  *holdings.Manager
	Tracker   *tracker.Tracker
	Calendar  *calendar.Calendar
	Notifier  Sender
	Recorder  recorder.Recorder
	Options   planner.Options
	Logger    *zap.Logger
	Ctx       context.Context

	mu  sync.Mutex // serializes refresh runs
	now func() time.Time
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, col *collector.Collector, heat HeatLoader, hm *holdings.Manager,
	tr *tracker.Tracker, cal *calendar.Calendar, tn Sender, rec recorder.Recorder, opts planner.Options, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if cal == nil {
		cal = calendar.Default()
	}
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds(), cron.WithLocation(cal.Location())),
		Collector: col,
		Heat:      heat,
		Holdings:  hm,
		Tracker:   tr,
		Calendar:  cal,
		Notifier:  tn,
		Recorder:  rec,
		Options:   opts,
		Logger:    logger,
		Ctx:       ctx,
		now:       time.Now,
	}
}

// RegisterAll registers the report and verify tasks.
func (s *Scheduler) RegisterAll(reportCron, verifyCron string) error {
	if _, err := s.Cron.AddFunc(reportCron, s.reportTask); err != nil {
		return fmt.Errorf("register report task: %w", err)
	}
	if _, err := s.Cron.AddFunc(verifyCron, s.verifyTask); err != nil {
		return fmt.Errorf("register verify task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Logger.Info("scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.Logger.Info("scheduler stopped")
}

// RunReportNow executes the report task immediately (for RUN_ON_START).
func (s *Scheduler) RunReportNow() {
	s.report(recorder.TriggerStartup)
}

func (s *Scheduler) today() string { return s.Calendar.Key(s.now()) }

// Refresh recomputes the plan list from fresh market and heat data.
func (s *Scheduler) Refresh(ctx context.Context, trigger string) (*Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run := &Run{
		ID:      uuid.NewString(),
		Trigger: trigger,
		Date:    s.today(),
		Started: s.now(),
		Market:  s.Calendar.Status(s.now()),
	}
	log := s.Logger.With(zap.String("run_id", run.ID), zap.String("trigger", trigger))
	log.Info("refresh started")

	list := s.Holdings.List()
	data, err := s.Collector.Collect(ctx, s.Holdings.Codes())
	if err != nil {
		return nil, fmt.Errorf("collect market data: %w", err)
	}
	run.Data = data
	run.Heat, run.Fallback = s.Heat.Load(ctx)
	run.Plans = planner.BuildPlans(list, run.Heat.Heatmap, data.History, data.Flows, s.Options)
	run.Overview = planner.BuildOverview(run.Plans)

	if err := s.Recorder.RecordRun(&recorder.RunRecord{
		RunID:        run.ID,
		Trigger:      trigger,
		StartedAt:    run.Started,
		Duration:     s.now().Sub(run.Started),
		HeatFallback: run.Fallback,
		Failed:       data.Failed,
		Overview:     run.Overview,
		Plans:        run.Plans,
	}); err != nil {
		log.Error("record run", zap.Error(err))
	}
	log.Info("refresh finished",
		zap.Int("plans", len(run.Plans)),
		zap.Int("failed", len(data.Failed)),
		zap.Bool("heat_fallback", run.Fallback))
	return run, nil
}

func (s *Scheduler) reportTask() {
	if !s.Calendar.IsTradingDay(s.now()) {
		s.Logger.Info("report skipped, not a trading day", zap.String("date", s.today()))
		return
	}
	s.report(recorder.TriggerSchedule)
}

// report refreshes, sends the plan list and snapshots it for today.
func (s *Scheduler) report(trigger string) {
	run, err := s.Refresh(s.Ctx, trigger)
	if err != nil {
		s.Logger.Error("report refresh", zap.Error(err))
		s.trySend(fmt.Sprintf("❌ 数据刷新失败: %v", err))
		return
	}
	s.trySend(notifier.FormatPlans(run.Report()))

	entry, err := s.Tracker.Snapshot(s.Ctx, run.Date, run.Plans, false)
	switch {
	case err == nil:
		s.trySend(notifier.FormatSnapshot(entry))
	case errors.Is(err, tracker.ErrSnapshotExists), errors.Is(err, tracker.ErrNotTradingDay), errors.Is(err, tracker.ErrNoPlans):
		s.Logger.Info("snapshot skipped", zap.String("date", run.Date), zap.Error(err))
	default:
		s.Logger.Error("snapshot", zap.Error(err))
	}
}

func (s *Scheduler) verifyTask() {
	out, err := s.verify(s.Ctx, "")
	if err != nil {
		s.Logger.Error("verify", zap.Error(err))
		return
	}
	if out.Skipped {
		s.Logger.Info("verify skipped", zap.String("reason", out.Reason))
		return
	}
	s.trySend(notifier.FormatVerification(out))
}

// verify checks the latest pending entry, or the entry for date when given,
// against freshly collected realized moves.
func (s *Scheduler) verify(ctx context.Context, date string) (tracker.VerifyOutcome, error) {
	entries, err := s.Tracker.Entries(ctx)
	if err != nil {
		return tracker.VerifyOutcome{}, err
	}
	codes := pendingCodes(entries, date)
	if len(codes) == 0 {
		if date != "" {
			return s.Tracker.VerifyDate(ctx, date, nil)
		}
		return s.Tracker.Verify(ctx, s.verifyAsOf(), nil)
	}

	data, err := s.Collector.Collect(ctx, codes)
	if err != nil {
		return tracker.VerifyOutcome{}, fmt.Errorf("collect realized moves: %w", err)
	}
	var out tracker.VerifyOutcome
	if date != "" {
		out, err = s.Tracker.VerifyDate(ctx, date, data.Realized)
	} else {
		out, err = s.Tracker.Verify(ctx, s.verifyAsOf(), data.Realized)
	}
	if err != nil {
		return out, err
	}
	if !out.Skipped {
		if err := s.Recorder.RecordVerification(&out.Entry); err != nil {
			s.Logger.Error("record verification", zap.Error(err))
		}
	}
	return out, nil
}

// verifyAsOf is today, or the previous trading day while today's session
// has not closed yet.
func (s *Scheduler) verifyAsOf() string {
	now := s.now()
	if s.Calendar.Status(now).Session == calendar.SessionClosed {
		return s.Calendar.Key(now)
	}
	if prev, ok := s.Calendar.PrevTradingDay(now); ok {
		return s.Calendar.Key(prev)
	}
	return s.Calendar.Key(now)
}

// pendingCodes lists the codes of unverified entries, limited to date when given.
func pendingCodes(entries []model.PredictionEntry, date string) []string {
	seen := make(map[string]struct{})
	for _, e := range entries {
		if e.Verified || (date != "" && e.Date != date) {
			continue
		}
		for code := range e.Holdings {
			seen[code] = struct{}{}
		}
	}
	codes := make([]string, 0, len(seen))
	for c := range seen {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.FormatHelp()
	}
	cmd := fields[0]
	if i := strings.Index(cmd, "@"); i > 0 {
		cmd = cmd[:i]
	}
	args := fields[1:]

	switch cmd {
	case "/plan", "查看计划":
		run, err := s.Refresh(ctx, recorder.TriggerCommand)
		if err != nil {
			return fmt.Sprintf("❌ 数据刷新失败: %v", err)
		}
		return notifier.FormatPlans(run.Report())
	case "/snapshot", "/snapshot_force":
		return s.snapshotCommand(ctx, cmd == "/snapshot_force")
	case "/verify":
		date := ""
		if len(args) > 0 {
			date = args[0]
		}
		out, err := s.verify(ctx, date)
		if err != nil {
			return fmt.Sprintf("❌ 验证失败: %v", err)
		}
		return notifier.FormatVerification(out)
	case "/stats":
		stats, err := s.Tracker.Stats(ctx)
		if err != nil {
			return fmt.Sprintf("❌ 统计失败: %v", err)
		}
		return notifier.FormatStats(stats)
	case "/holdings", "查看持仓":
		return notifier.FormatHoldings(s.Holdings.List(), planner.ModelPortfolio())
	case "/add":
		return s.addCommand(args)
	case "/remove":
		if len(args) != 1 {
			return "用法: /remove &lt;代码&gt;"
		}
		h, err := s.Holdings.Remove(args[0])
		if err != nil {
			return fmt.Sprintf("❌ 删除失败: %v", err)
		}
		s.recordHolding("remove", h)
		return fmt.Sprintf("🗑 已删除 %s %s", h.Code, h.Name)
	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) snapshotCommand(ctx context.Context, overwrite bool) string {
	run, err := s.Refresh(ctx, recorder.TriggerCommand)
	if err != nil {
		return fmt.Sprintf("❌ 数据刷新失败: %v", err)
	}
	entry, err := s.Tracker.Snapshot(ctx, run.Date, run.Plans, overwrite)
	switch {
	case err == nil:
		return notifier.FormatSnapshot(entry)
	case errors.Is(err, tracker.ErrSnapshotExists):
		return fmt.Sprintf("⚠️ %s 已有预测记录，使用 /snapshot_force 覆盖", run.Date)
	case errors.Is(err, tracker.ErrNotTradingDay):
		return fmt.Sprintf("⏭ %s 不是交易日", run.Date)
	case errors.Is(err, tracker.ErrNoPlans):
		return "⚠️ 暂无持仓，无法记录预测"
	default:
		return fmt.Sprintf("❌ 记录失败: %v", err)
	}
}

func (s *Scheduler) addCommand(args []string) string {
	if len(args) < 1 || len(args) > 3 {
		return "用法: /add &lt;代码&gt; &lt;名称&gt; &lt;类型&gt;"
	}
	h := model.Holding{Code: args[0]}
	if len(args) > 1 {
		h.Name = args[1]
	}
	if len(args) > 2 {
		h.Type = args[2]
	}
	added, err := s.Holdings.Add(h)
	if err != nil {
		return fmt.Sprintf("❌ 添加失败: %v", err)
	}
	s.recordHolding("add", added)
	return fmt.Sprintf("✅ 已添加 %s %s [%s]", added.Code, added.Name, added.Type)
}

func (s *Scheduler) recordHolding(action string, h model.Holding) {
	if err := s.Recorder.RecordHoldingEvent(&recorder.HoldingEvent{
		Action: action,
		Code:   h.Code,
		Name:   h.Name,
		Type:   h.Type,
	}); err != nil {
		s.Logger.Error("record holding event", zap.Error(err))
	}
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		s.Logger.Error("send notification", zap.Error(err))
	}
}
