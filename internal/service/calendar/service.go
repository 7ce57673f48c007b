package calendar

import (
	"time"

	"github.com/medremind/reminder-api/internal/model"
)

const bucketDateLayout = "2006-01-02"

// Service shapes an already-sorted task list for rendering. It buckets and
// groups only; task order inside each bucket is exactly the aggregator's
// order.
type Service struct{}

func NewService() *Service {
	return &Service{}
}

// Project buckets tasks for the requested presentation mode. Grid mode
// spreads tasks over their calendar dates; list mode keeps one bucket for
// the selected date, dropping tasks from other dates. In both modes a
// bucket holding more than one dependant's tasks is additionally grouped
// per dependant name for the caretaker view. Grid mode ignores selected.
func (s *Service) Project(tasks []model.Task, mode model.CalendarMode, selected time.Time) model.CalendarProjection {
	if mode == model.CalendarModeList {
		return s.projectList(tasks, selected)
	}
	return s.projectGrid(tasks)
}

func (s *Service) projectGrid(tasks []model.Task) model.CalendarProjection {
	buckets := make(map[string]model.DateBucket)
	for _, task := range tasks {
		date := task.DoseTime.Format(bucketDateLayout)
		bucket := buckets[date]
		bucket.Date = date
		bucket.Tasks = append(bucket.Tasks, task)
		buckets[date] = bucket
	}

	for date, bucket := range buckets {
		bucket.Groups = groupByDependant(bucket.Tasks)
		buckets[date] = bucket
	}

	return model.CalendarProjection{
		Mode:    model.CalendarModeGrid,
		Buckets: buckets,
	}
}

func (s *Service) projectList(tasks []model.Task, selected time.Time) model.CalendarProjection {
	date := selected.Format(bucketDateLayout)
	day := model.DateBucket{Date: date}
	for _, task := range tasks {
		if task.DoseTime.Format(bucketDateLayout) != date {
			continue
		}
		day.Tasks = append(day.Tasks, task)
	}
	day.Groups = groupByDependant(day.Tasks)

	return model.CalendarProjection{
		Mode: model.CalendarModeList,
		Day:  &day,
	}
}

// groupByDependant splits a bucket per dependant name, preserving task
// order within each group. A single-dependant bucket stays ungrouped.
func groupByDependant(tasks []model.Task) map[string][]model.Task {
	if !multipleDependants(tasks) {
		return nil
	}
	groups := make(map[string][]model.Task)
	for _, task := range tasks {
		groups[task.DependantName] = append(groups[task.DependantName], task)
	}
	return groups
}

func multipleDependants(tasks []model.Task) bool {
	if len(tasks) == 0 {
		return false
	}
	first := tasks[0].DependantID
	for _, task := range tasks[1:] {
		if task.DependantID != first {
			return true
		}
	}
	return false
}
