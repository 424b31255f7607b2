package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AlibekovAA/cloudrun-demo/internal/action/domain"
	"github.com/AlibekovAA/cloudrun-demo/internal/common/clock"
	"github.com/AlibekovAA/cloudrun-demo/internal/common/constants"
	"github.com/AlibekovAA/cloudrun-demo/internal/common/logger"
	"github.com/AlibekovAA/cloudrun-demo/internal/common/random"
	"github.com/AlibekovAA/cloudrun-demo/internal/common/validation"
	"github.com/AlibekovAA/cloudrun-demo/internal/observability/metrics"
)

// Invalidator drops cached renderings of a view.
type Invalidator interface {
	Invalidate(ctx context.Context, key string) error
}

type Config struct {
	Environment   string
	ProcessDelay  time.Duration
	ReportDelay   time.Duration
	InvalidateKey string
}

type ActionService struct {
	clock       clock.Clock
	rnd         random.Source
	validator   *validation.Validator
	invalidator Invalidator
	log         *logger.Logger
	cfg         Config
}

func NewActionService(
	clk clock.Clock,
	rnd random.Source,
	v *validation.Validator,
	invalidator Invalidator,
	log *logger.Logger,
	cfg Config,
) *ActionService {
	if cfg.InvalidateKey == "" {
		cfg.InvalidateKey = constants.DashboardCacheKey
	}
	return &ActionService{
		clock:       clk,
		rnd:         rnd,
		validator:   v,
		invalidator: invalidator,
		log:         log,
		cfg:         cfg,
	}
}

// ProcessFormData simulates persisting the form. Missing title or
// description fails at once; otherwise it waits, builds the record and
// invalidates the dashboard.
func (s *ActionService) ProcessFormData(ctx context.Context, in domain.FormInput) (result domain.Result) {
	start := s.clock.Now()
	defer s.finish(domain.ActionProcessForm, start, &result)
	defer s.recoverInto(ctx, domain.ActionProcessForm, &result, domain.MessageProcessFailed)

	if err := s.validator.Struct(in); err != nil {
		var fe *validation.FieldsError
		if errors.As(err, &fe) {
			return s.failure(domain.MessageFormFieldsNeeded)
		}
		return s.fail(ctx, domain.ActionProcessForm, err, domain.MessageProcessFailed)
	}

	if err := s.clock.Sleep(ctx, s.cfg.ProcessDelay); err != nil {
		return s.fail(ctx, domain.ActionProcessForm, err, domain.MessageProcessFailed)
	}

	record := domain.ProcessedRecord{
		ID:          s.rnd.Intn(constants.ProcessedIDUpperBound),
		Title:       in.Title,
		Description: in.Description,
		Priority:    in.Priority,
		CreatedAt:   s.clock.Now(),
		ProcessedBy: constants.FormProcessorLabel,
		Environment: s.cfg.Environment,
	}

	if s.invalidator != nil {
		if err := s.invalidator.Invalidate(ctx, s.cfg.InvalidateKey); err != nil {
			return s.fail(ctx, domain.ActionProcessForm, fmt.Errorf("invalidate %s: %w", s.cfg.InvalidateKey, err), domain.MessageProcessFailed)
		}
	}

	s.log.WithFields(ctx, logger.Fields{
		"action":    domain.ActionProcessForm,
		"record_id": record.ID,
	}).Info("form data processed")

	return domain.Result{
		Success:   true,
		Message:   domain.MessageProcessed,
		Data:      record.Data(),
		Timestamp: clock.FormatISO(s.clock.Now()),
	}
}

// GenerateReport waits, then returns randomized system stats.
func (s *ActionService) GenerateReport(ctx context.Context) (result domain.Result) {
	start := s.clock.Now()
	defer s.finish(domain.ActionGenerateReport, start, &result)
	defer s.recoverInto(ctx, domain.ActionGenerateReport, &result, domain.MessageReportFailed)

	if err := s.clock.Sleep(ctx, s.cfg.ReportDelay); err != nil {
		return s.fail(ctx, domain.ActionGenerateReport, err, domain.MessageReportFailed)
	}

	now := s.clock.Now()
	report := domain.Report{
		ID:          fmt.Sprintf("report_%d", now.UnixMilli()),
		GeneratedAt: now,
		Stats: domain.ReportStats{
			TotalUsers:  s.rnd.Intn(constants.ReportTotalUsersSpan) + constants.ReportTotalUsersBase,
			ActiveUsers: s.rnd.Intn(constants.ReportActiveUsersSpan) + constants.ReportActiveUsersBase,
			SystemLoad:  s.rnd.Float64() * 100,
			UptimeHours: s.rnd.Intn(constants.ReportMaxUptimeHours) + 1,
		},
		Environment: s.cfg.Environment,
		Location:    constants.ReportLocation,
	}

	s.log.WithFields(ctx, logger.Fields{
		"action":    domain.ActionGenerateReport,
		"report_id": report.ID,
	}).Info("report generated")

	return domain.Result{
		Success:   true,
		Message:   domain.MessageReportGenerated,
		Data:      report.Data(),
		Timestamp: clock.FormatISO(now),
	}
}

func (s *ActionService) failure(message string) domain.Result {
	return domain.Result{
		Success:   false,
		Message:   message,
		Timestamp: clock.FormatISO(s.clock.Now()),
	}
}

func (s *ActionService) fail(ctx context.Context, action string, err error, message string) domain.Result {
	s.log.WithFields(ctx, logger.Fields{
		"action": action,
	}).Errorf("%s failed: %v", action, err)
	return s.failure(message)
}

func (s *ActionService) recoverInto(ctx context.Context, action string, result *domain.Result, message string) {
	if r := recover(); r != nil {
		*result = s.fail(ctx, action, fmt.Errorf("panic: %v", r), message)
	}
}

func (s *ActionService) finish(action string, start time.Time, result *domain.Result) {
	outcome := "success"
	if !result.Success {
		outcome = "failure"
	}
	metrics.ActionInvocationsTotal.WithLabelValues(action, outcome).Inc()
	metrics.ActionDurationSeconds.WithLabelValues(action).Observe(s.clock.Since(start).Seconds())
}
