package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/resqed/resqed-bot/internal/domain/entities"
)

var (
	ErrCourseNotIdentified = errors.New("no course identified")
	ErrModuleOutOfRange    = errors.New("module index out of range")
)

// ModuleControl is a "mark complete" control of a course page.
type ModuleControl struct {
	Index     int
	ID        string
	Title     string
	Completed bool
}

// CoursePage binds a page's module controls to learner progress.
// Build one per page view with CourseService.Open.
type CoursePage struct {
	LearnerID int64
	CourseKey string
	Heading   string
	Modules   []ModuleControl

	progress *entities.Progress
	repo     ProgressRepository
}

// Identified reports whether the heading matched a course.
func (p *CoursePage) Identified() bool {
	return p.CourseKey != ""
}

// CompletedCount returns how many page modules are complete.
func (p *CoursePage) CompletedCount() int {
	n := 0
	for _, m := range p.Modules {
		if m.Completed {
			n++
		}
	}
	return n
}

// Activate marks the module at index complete and persists it.
// Completing an already completed module changes nothing and reports false.
func (p *CoursePage) Activate(ctx context.Context, index int) (bool, error) {
	if !p.Identified() {
		return false, ErrCourseNotIdentified
	}
	if index < 0 || index >= len(p.Modules) {
		return false, fmt.Errorf("%w: %d", ErrModuleOutOfRange, index)
	}

	m := &p.Modules[index]
	if !p.progress.MarkComplete(m.ID) {
		m.Completed = true
		return false, nil
	}
	m.Completed = true

	if err := p.repo.Save(ctx, p.LearnerID, p.progress); err != nil {
		return false, err
	}

	return true, nil
}

// CourseService opens course pages.
type CourseService struct {
	progressRepo ProgressRepository
}

func NewCourseService(progressRepo ProgressRepository) *CourseService {
	return &CourseService{progressRepo: progressRepo}
}

// Open identifies the course from the page heading and derives one module
// control per sub-header, in order. An unidentified page has no controls.
func (s *CourseService) Open(ctx context.Context, learnerID int64, heading string, subHeaders []string) *CoursePage {
	page := &CoursePage{
		LearnerID: learnerID,
		Heading:   heading,
		repo:      s.progressRepo,
	}

	key, ok := entities.IdentifyCourse(heading)
	if !ok {
		return page
	}

	page.CourseKey = key
	page.progress = s.progressRepo.Load(ctx, learnerID)
	page.Modules = make([]ModuleControl, 0, len(subHeaders))

	for i, title := range subHeaders {
		id := entities.ModuleID(key, entities.Disambiguator(i, title))
		page.Modules = append(page.Modules, ModuleControl{
			Index:     i,
			ID:        id,
			Title:     title,
			Completed: page.progress.IsComplete(id),
		})
	}

	return page
}

// OpenCourse opens the catalog page of the course with the given key.
func (s *CourseService) OpenCourse(ctx context.Context, learnerID int64, key string) (*CoursePage, error) {
	course, ok := entities.CourseByKey(key)
	if !ok {
		return nil, ErrCourseNotIdentified
	}

	page := s.Open(ctx, learnerID, course.Title, course.Modules)
	if page.CourseKey != course.Key {
		return nil, fmt.Errorf("course %s heading resolves to %q", key, page.CourseKey)
	}

	return page, nil
}
