package task

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/google/uuid"

	"github.com/medremind/reminder-api/internal/model"
	"github.com/medremind/reminder-api/internal/repository"
	"github.com/medremind/reminder-api/pkg/errors"
	"github.com/medremind/reminder-api/pkg/logger"
	"github.com/medremind/reminder-api/pkg/metrics"
)

const (
	defaultBranchTimeout = 5 * time.Second
	dependantCachePrefix = "dependants:"
)

// Service merges dose schedules across a caregiver's dependants into one
// sorted day-view task list, annotated with completion state and due
// phrasing relative to a reference clock.
type Service struct {
	dependantRepo  repository.DependantRepository
	medicationRepo repository.MedicationRepository
	scheduleRepo   repository.ScheduleRepository
	completionRepo repository.CompletionRepository
	logger         *logger.Logger
	metrics        *metrics.Metrics
	branchTimeout  time.Duration
	cache          *gocache.Cache
}

func NewService(
	dependantRepo repository.DependantRepository,
	medicationRepo repository.MedicationRepository,
	scheduleRepo repository.ScheduleRepository,
	completionRepo repository.CompletionRepository,
	logger *logger.Logger,
	metrics *metrics.Metrics,
	branchTimeout time.Duration,
	cacheTTL time.Duration,
) *Service {
	if branchTimeout <= 0 {
		branchTimeout = defaultBranchTimeout
	}
	return &Service{
		dependantRepo:  dependantRepo,
		medicationRepo: medicationRepo,
		scheduleRepo:   scheduleRepo,
		completionRepo: completionRepo,
		logger:         logger,
		metrics:        metrics,
		branchTimeout:  branchTimeout,
		cache:          gocache.New(cacheTTL, 2*cacheTTL),
	}
}

// branchResult carries one dependant's fetched data across the fan-in
// boundary. A branch that failed or timed out sets err and contributes
// nothing.
type branchResult struct {
	dependant   *model.Dependant
	medications []*model.Medication
	schedules   map[uuid.UUID][]model.DoseEvent
	completed   map[string]struct{}
	err         error
}

// Aggregate produces the caregiver's task list for the given day window.
// Per-dependant fetches fan out concurrently, each bounded by the branch
// timeout; a failed branch is logged and excluded rather than failing the
// whole view, so the caller always gets a valid (possibly partial) list.
func (s *Service) Aggregate(ctx context.Context, caregiverID uuid.UUID, window model.DayWindow, now time.Time) ([]model.Task, error) {
	if caregiverID == uuid.Nil {
		return nil, errors.NewUnauthenticated(nil)
	}

	start := time.Now()
	defer func() {
		s.metrics.AggregationLatency.Observe(time.Since(start).Seconds())
	}()

	dependants, err := s.listDependants(ctx, caregiverID)
	if err != nil {
		return nil, fmt.Errorf("failed to list dependants: %w", err)
	}
	if len(dependants) == 0 {
		return []model.Task{}, nil
	}

	results := make([]branchResult, len(dependants))
	var wg sync.WaitGroup
	for i, dependant := range dependants {
		wg.Add(1)
		go func(i int, dependant *model.Dependant) {
			defer wg.Done()
			branchCtx, cancel := context.WithTimeout(ctx, s.branchTimeout)
			defer cancel()
			results[i] = s.fetchBranch(branchCtx, dependant)
		}(i, dependant)
	}
	wg.Wait()

	tasks := make([]model.Task, 0)
	for _, result := range results {
		if result.err != nil {
			s.metrics.AggregationBranchFailed.Inc()
			s.logger.Warn("excluding dependant from aggregation",
				"dependant_id", result.dependant.ID,
				"error", result.err.Error())
			continue
		}
		tasks = append(tasks, s.buildTasks(result, window, now)...)
	}

	s.sortTasks(tasks)
	return tasks, nil
}

// AggregateForDependant is the single-dependant day view used by the
// dependant detail screen. Same pipeline without fan-out.
func (s *Service) AggregateForDependant(ctx context.Context, caregiverID, dependantID uuid.UUID, window model.DayWindow, now time.Time) ([]model.Task, error) {
	if caregiverID == uuid.Nil {
		return nil, errors.NewUnauthenticated(nil)
	}

	dependant, err := s.dependantRepo.Get(ctx, dependantID)
	if err != nil {
		return nil, errors.NewNotFound("dependant", err)
	}
	if dependant.CaregiverID != caregiverID {
		return nil, errors.NewNotFound("dependant", nil)
	}

	result := s.fetchBranch(ctx, dependant)
	if result.err != nil {
		return nil, result.err
	}

	tasks := s.buildTasks(result, window, now)
	s.sortTasks(tasks)
	return tasks, nil
}

func (s *Service) fetchBranch(ctx context.Context, dependant *model.Dependant) branchResult {
	result := branchResult{dependant: dependant}

	medications, err := s.medicationRepo.List(ctx, dependant.ID)
	if err != nil {
		result.err = fmt.Errorf("failed to list medications: %w", err)
		return result
	}
	result.medications = medications

	records, err := s.scheduleRepo.ListByDependant(ctx, dependant.ID)
	if err != nil {
		result.err = fmt.Errorf("failed to list schedules: %w", err)
		return result
	}
	result.schedules = make(map[uuid.UUID][]model.DoseEvent, len(records))
	for _, record := range records {
		result.schedules[record.MedicationID] = record.Events
	}

	keys, err := s.completionRepo.ListKeysByDependant(ctx, dependant.ID)
	if err != nil {
		result.err = fmt.Errorf("failed to list completion keys: %w", err)
		return result
	}
	result.completed = make(map[string]struct{}, len(keys))
	for _, key := range keys {
		result.completed[key] = struct{}{}
	}
	return result
}

func (s *Service) buildTasks(result branchResult, window model.DayWindow, now time.Time) []model.Task {
	tasks := make([]model.Task, 0)
	for _, medication := range result.medications {
		for _, event := range result.schedules[medication.ID] {
			if event.DoseTime.IsZero() {
				s.metrics.MalformedEntriesSkipped.Inc()
				s.logger.Warn("skipping schedule entry with missing timestamp",
					"medication_id", medication.ID)
				continue
			}
			if !window.Contains(event.DoseTime) {
				continue
			}

			label := model.FormatDoseTime(event.DoseTime)
			dueLabel := dueLabelFor(event.DoseTime, now)
			key := model.CompletionKey(medication.ID, event.DoseTime)
			_, completed := result.completed[key]

			tasks = append(tasks, model.Task{
				DependantID:    result.dependant.ID,
				DependantName:  result.dependant.DisplayName(),
				MedicationID:   medication.ID,
				MedicationName: medication.Name,
				DoseTime:       event.DoseTime,
				TimeLabel:      label,
				PillsPerDose:   medication.PillsPerDose,
				Completed:      completed,
				DueLabel:       dueLabel,
				Overdue:        strings.Contains(dueLabel, "Overdue"),
				DueNow:         strings.Contains(dueLabel, "Due now"),
			})
		}
	}
	return tasks
}

// sortTasks orders by time of day recovered from the 12-hour label rather
// than the raw timestamp, so that rows from different dates in a window
// share one clock axis. Unparseable labels sort first instead of failing
// the view.
func (s *Service) sortTasks(tasks []model.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return s.sortKey(tasks[i].TimeLabel) < s.sortKey(tasks[j].TimeLabel)
	})
}

func (s *Service) sortKey(label string) int {
	minutes, err := parseTimeLabel(label)
	if err != nil {
		s.logger.Warn("unparseable task time label", "label", label)
		return -1
	}
	return minutes
}

// parseTimeLabel converts "03:04 PM" style labels back to minutes since
// midnight. 12 AM maps to hour 0 and 12 PM stays 12.
func parseTimeLabel(label string) (int, error) {
	parts := strings.SplitN(label, " ", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("bad time label %q", label)
	}
	clock := strings.SplitN(parts[0], ":", 2)
	if len(clock) != 2 {
		return 0, fmt.Errorf("bad time label %q", label)
	}
	hour, err := strconv.Atoi(clock[0])
	if err != nil || hour < 1 || hour > 12 {
		return 0, fmt.Errorf("bad hour in time label %q", label)
	}
	minute, err := strconv.Atoi(clock[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("bad minute in time label %q", label)
	}
	switch strings.ToUpper(parts[1]) {
	case "AM":
		if hour == 12 {
			hour = 0
		}
	case "PM":
		if hour != 12 {
			hour += 12
		}
	default:
		return 0, fmt.Errorf("bad meridiem in time label %q", label)
	}
	return hour*60 + minute, nil
}

// dueLabelFor phrases the distance between the reference clock and a dose
// time. diff is now minus doseTime in whole minutes. The boundary at
// exactly 60 minutes resolves to the hours branch.
func dueLabelFor(doseTime, now time.Time) string {
	diff := int(now.Sub(doseTime).Minutes())
	abs := diff
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs <= 1:
		return "Due now"
	case diff >= 60:
		return fmt.Sprintf("Due %d hours and %d minutes ago", diff/60, diff%60)
	case diff < -60:
		return fmt.Sprintf("Due in %d hours and %d minutes", abs/60, abs%60)
	case diff < 0:
		return fmt.Sprintf("Due in %d min", abs)
	default:
		return fmt.Sprintf("Overdue by %d min", diff)
	}
}

func (s *Service) listDependants(ctx context.Context, caregiverID uuid.UUID) ([]*model.Dependant, error) {
	cacheKey := dependantCachePrefix + caregiverID.String()
	if cached, ok := s.cache.Get(cacheKey); ok {
		return cached.([]*model.Dependant), nil
	}
	dependants, err := s.dependantRepo.List(ctx, caregiverID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(cacheKey, dependants, gocache.DefaultExpiration)
	return dependants, nil
}

// InvalidateDependants drops the cached dependant list after a mutation.
func (s *Service) InvalidateDependants(caregiverID uuid.UUID) {
	s.cache.Delete(dependantCachePrefix + caregiverID.String())
}
