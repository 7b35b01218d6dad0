package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/username/attendance-dashboard/internal/attendance"
	"github.com/username/attendance-dashboard/internal/sheetapi"
	"github.com/username/attendance-dashboard/pkg/dateutil"
)

// ErrRosterUnavailable means the summary sheet could not be read.
// Nothing can be shown without the roster.
var ErrRosterUnavailable = errors.New("roster unavailable")

// Source is the sheet data the dashboard reads
type Source interface {
	FetchSummary(ctx context.Context) (attendance.Roster, error)
	FetchDaily(ctx context.Context, date time.Time) ([]attendance.RawRow, error)
	FetchDailyRange(ctx context.Context, dates []time.Time) []sheetapi.DayResult
	FetchMonthlyLog(ctx context.Context, month time.Time) ([]attendance.LogRow, error)
}

// EmployeeMonth is one employee's month plus the days that could not be fetched
type EmployeeMonth struct {
	attendance.MonthAttendance
	FailedDays []string `json:"failedDays,omitempty"`
}

// MasterLogView is the merged log of one month
type MasterLogView struct {
	Month time.Time `json:"month"`
	attendance.MasterLog
}

// Service assembles dashboard views from the sheet source
type Service struct {
	source     Source
	classifier *attendance.Classifier
	loc        *time.Location
	now        func() time.Time
	logger     *zap.Logger
}

// NewService creates a new dashboard service
func NewService(source Source, classifier *attendance.Classifier, loc *time.Location, logger *zap.Logger) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		source:     source,
		classifier: classifier,
		loc:        loc,
		now:        time.Now,
		logger:     logger,
	}
}

// Classifier returns the classifier in use
func (s *Service) Classifier() *attendance.Classifier {
	return s.classifier
}

// Location returns the timezone that decides "today"
func (s *Service) Location() *time.Location {
	return s.loc
}

// Now returns the current instant in the service timezone
func (s *Service) Now() time.Time {
	return s.now().In(s.loc)
}

// Today builds the today view for date. A zero date means today.
//
// The roster and the day's sheet are fetched concurrently. A failed daily
// fetch degrades the view; only a missing roster is an error.
func (s *Service) Today(ctx context.Context, date time.Time) (*attendance.TodayView, error) {
	now := s.Now()
	if date.IsZero() {
		date = now
	}
	date = dateutil.StartOfDay(date.In(s.loc))
	holiday := s.classifier.IsHoliday(date)

	s.logger.Info("Building today view",
		zap.String("date", dateutil.FormatDate(date)),
		zap.Bool("holiday", holiday))

	var (
		roster   attendance.Roster
		daily    []attendance.RawRow
		dailyErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		roster, err = s.source.FetchSummary(gctx)
		return err
	})
	if !holiday {
		g.Go(func() error {
			daily, dailyErr = s.source.FetchDaily(gctx, date)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRosterUnavailable, err)
	}

	degraded := false
	if dailyErr != nil {
		degraded = true
		s.logger.Warn("Daily data unavailable, showing roster only",
			zap.String("date", dateutil.FormatDate(date)),
			zap.Error(dailyErr))
	}

	view := s.classifier.BuildToday(date, now, roster, daily, degraded)

	if unknown := len(daily) - len(view.Present); unknown > 0 {
		s.logger.Debug("Ignored rows not in roster",
			zap.String("date", dateutil.FormatDate(date)),
			zap.Int("rows", unknown))
	}

	s.logger.Info("Today view built",
		zap.String("date", dateutil.FormatDate(date)),
		zap.Int("present", view.KPI.Present),
		zap.Int("absent", view.KPI.Absent),
		zap.Int("exceptions", view.KPI.Exceptions),
		zap.Bool("degraded", view.Degraded))

	return &view, nil
}

// EmployeeMonth classifies every day of month for one employee.
// Days whose sheet could not be fetched fall back to the summary hint.
func (s *Service) EmployeeMonth(ctx context.Context, uid string, month time.Time) (*EmployeeMonth, error) {
	now := s.Now()
	if month.IsZero() {
		month = now
	}
	month = dateutil.StartOfMonth(month.In(s.loc))

	roster, err := s.source.FetchSummary(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRosterUnavailable, err)
	}
	entry, err := roster.Lookup(uid)
	if err != nil {
		return nil, fmt.Errorf("employee %s: %w", uid, err)
	}

	dates := s.classifier.DaysToFetch(month, now)
	s.logger.Info("Fetching employee month",
		zap.String("uid", uid),
		zap.String("month", dateutil.FormatMonth(month)),
		zap.Int("days", len(dates)))

	results := s.source.FetchDailyRange(ctx, dates)

	rows := make(map[string]*attendance.RawRow, len(results))
	var failed []string
	for _, r := range results {
		key := dateutil.FormatDate(r.Date)
		if r.Err != nil {
			failed = append(failed, key)
			continue
		}
		row, err := attendance.FindRow(r.Rows, uid)
		if errors.Is(err, attendance.ErrMissingRecord) {
			continue
		}
		rows[key] = row
	}

	result := &EmployeeMonth{
		MonthAttendance: s.classifier.FoldMonth(entry, month, now, rows),
		FailedDays:      failed,
	}

	s.logger.Info("Employee month built",
		zap.String("uid", uid),
		zap.Int("present", result.Summary.Present),
		zap.Int("absent", result.Summary.Absent),
		zap.Int("half_day", result.Summary.HalfDay),
		zap.Int("failed_days", len(failed)))

	return result, nil
}

// MasterLog returns the merged monthly log
func (s *Service) MasterLog(ctx context.Context, month time.Time) (*MasterLogView, error) {
	if month.IsZero() {
		month = s.Now()
	}
	month = dateutil.StartOfMonth(month.In(s.loc))

	rows, err := s.source.FetchMonthlyLog(ctx, month)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch monthly log: %w", err)
	}

	merged := attendance.MergeLog(rows)
	s.logger.Info("Master log built",
		zap.String("month", dateutil.FormatMonth(month)),
		zap.Int("raw_rows", len(rows)),
		zap.Int("employees", len(merged.Rows)))

	return &MasterLogView{Month: month, MasterLog: merged}, nil
}
