// Package directory is the entry point the UI layers call into: it validates and
// maps form values, then drives the record client.
package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/jonathan/employee-directory/internal/forms"
	"github.com/jonathan/employee-directory/internal/logging"
	"github.com/jonathan/employee-directory/internal/metrics"
	"github.com/jonathan/employee-directory/internal/query"
	"github.com/jonathan/employee-directory/internal/records"
	"github.com/jonathan/employee-directory/internal/schemas"
	"github.com/jonathan/employee-directory/internal/search"
	"github.com/jonathan/employee-directory/internal/types"
	"github.com/jonathan/employee-directory/internal/validation"
)

// ErrImmutableField is returned when a patch tries to change a store-owned field.
var ErrImmutableField = errors.New("patch must not change id, created, updated or collection fields")

// ValidationError carries the field messages of a form that failed validation.
type ValidationError = validation.Error

var immutableFields = []string{"id", "created", "updated", "collectionId", "collectionName"}

// RecordStore is the set of record operations the service needs.
// *records.Client satisfies it.
type RecordStore interface {
	List(ctx context.Context, page, perPage int) (*types.EmployeePage, error)
	Query(ctx context.Context, rawQuery string) (*types.EmployeePage, error)
	Get(ctx context.Context, id string) (*types.Employee, error)
	Create(ctx context.Context, in types.EmployeeInput) (*types.Employee, error)
	Update(ctx context.Context, id string, patch types.Patch) (*types.Employee, error)
	Delete(ctx context.Context, id string) error
}

// Options configures a Service.
type Options struct {
	Logger  *zap.Logger
	Metrics *metrics.Recorder
	// Now is used for the month-to-date dashboard figure. Defaults to time.Now.
	Now func() time.Time
	// SearchDelay is the quiet period of search sessions. Defaults to search.DefaultDelay.
	SearchDelay time.Duration
	// Clock drives search session timers; nil uses the real clock.
	Clock search.Clock
}

// Service implements the directory operations. It keeps no state between
// requests apart from collapsing concurrent identical reads.
type Service struct {
	store     RecordStore
	validator *validation.Validator
	reads     singleflight.Group

	logger      *zap.Logger
	metrics     *metrics.Recorder
	now         func() time.Time
	searchDelay time.Duration
	clock       search.Clock
}

// New creates a Service over store.
func New(store RecordStore, opts Options) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		store:       store,
		validator:   validation.New(),
		logger:      logging.OrNop(opts.Logger).Named("directory"),
		metrics:     opts.Metrics,
		now:         opts.Now,
		searchDelay: opts.SearchDelay,
		clock:       opts.Clock,
	}
}

// ListEmployees returns one page of employees.
func (s *Service) ListEmployees(ctx context.Context, page, perPage int) (*types.EmployeePage, error) {
	return s.store.List(ctx, page, perPage)
}

// GetEmployee returns one employee. Concurrent calls for the same id share a
// single request; nothing is cached once it completes. The shared request is
// detached from any one caller's cancellation, and each caller stops waiting
// when its own ctx is done.
func (s *Service) GetEmployee(ctx context.Context, id string) (*types.Employee, error) {
	if strings.TrimSpace(id) == "" {
		return nil, records.ErrEmptyID
	}

	shared := context.WithoutCancel(ctx)
	ch := s.reads.DoChan(id, func() (any, error) {
		return s.store.Get(shared, id)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}
	if res.Shared {
		s.logger.Debug("shared in-flight read", zap.String("id", id))
	}
	emp := *res.Val.(*types.Employee)
	emp.NotificationPreferences = append([]string(nil), emp.NotificationPreferences...)
	return &emp, nil
}

// Validate checks create-form values. An empty map means the form is valid.
func (s *Service) Validate(form types.CreateForm) validation.Errors {
	return s.validator.ValidateCreate(form)
}

// ValidateProfile checks profile-editor values.
func (s *Service) ValidateProfile(form types.ProfileForm) validation.Errors {
	return s.validator.ValidateProfile(form)
}

// CreateEmployee validates, maps and stores a new employee. When the form is
// invalid a *ValidationError is returned and no request is made.
func (s *Service) CreateEmployee(ctx context.Context, form types.CreateForm) (*types.Employee, error) {
	if errs := s.validator.ValidateCreate(form); len(errs) > 0 {
		return nil, validation.NewError(errs)
	}

	in := forms.CreateFormToInput(form)
	if err := schemas.ValidateValue(schemas.EmployeeCreate, in); err != nil {
		return nil, fmt.Errorf("failed to build employee payload: %w", err)
	}

	emp, err := s.store.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	s.logger.Info("employee created", zap.String("id", emp.ID))
	return emp, nil
}

// UpdateEmployee applies a partial patch. Keys absent from patch are left unchanged.
func (s *Service) UpdateEmployee(ctx context.Context, id string, patch types.Patch) (*types.Employee, error) {
	if strings.TrimSpace(id) == "" {
		return nil, records.ErrEmptyID
	}
	for _, field := range immutableFields {
		if _, ok := patch[field]; ok {
			return nil, fmt.Errorf("%w: %s", ErrImmutableField, field)
		}
	}
	if err := schemas.ValidateValue(schemas.EmployeePatch, patch); err != nil {
		return nil, fmt.Errorf("failed to build employee patch: %w", err)
	}

	emp, err := s.store.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.logger.Info("employee updated", zap.String("id", id), zap.Int("fields", len(patch)))
	return emp, nil
}

// UpdateProfile validates the edited profile, diffs it against the stored record
// and sends only the fields that changed. Cleared fields are sent as empty values.
// When nothing changed the stored record is returned without an update request.
func (s *Service) UpdateProfile(ctx context.Context, id string, form types.ProfileForm) (*types.Employee, error) {
	if strings.TrimSpace(id) == "" {
		return nil, records.ErrEmptyID
	}
	if errs := s.validator.ValidateProfile(form); len(errs) > 0 {
		return nil, validation.NewError(errs)
	}

	current, err := s.GetEmployee(ctx, id)
	if err != nil {
		return nil, err
	}

	patch, err := forms.ProfileChanges(current, form)
	if err != nil {
		return nil, err
	}
	if len(patch) == 0 {
		return current, nil
	}
	return s.UpdateEmployee(ctx, id, patch)
}

// DeleteEmployee removes an employee.
func (s *Service) DeleteEmployee(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("employee deleted", zap.String("id", id))
	return nil
}

// SearchEmployees matches text against the searchable fields. Empty text
// returns no employees without contacting the store.
func (s *Service) SearchEmployees(ctx context.Context, text string) ([]types.Employee, error) {
	rawQuery := query.BuildSearchFilter(text)
	if rawQuery == "" {
		return []types.Employee{}, nil
	}
	page, err := s.store.Query(ctx, rawQuery)
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

// Search implements search.Searcher.
func (s *Service) Search(ctx context.Context, text string) ([]types.Employee, error) {
	return s.SearchEmployees(ctx, text)
}

// NewSearchSession starts a debounced search surface. Close it when the surface goes away.
func (s *Service) NewSearchSession(ctx context.Context, onResult func(search.Result)) *search.Debouncer {
	return search.New(s, search.Options{
		Delay:       s.searchDelay,
		Clock:       s.clock,
		OnResult:    onResult,
		BaseContext: ctx,
		Logger:      s.logger,
		Metrics:     s.metrics,
	})
}

// Dashboard gathers the landing page figures. The three queries run
// concurrently and the dashboard fails if any of them does.
func (s *Service) Dashboard(ctx context.Context) (*types.Dashboard, error) {
	now := s.now()
	dash := &types.Dashboard{
		MonthStartsOn:   query.FirstDayOfMonth(now),
		DepartmentCount: len(types.Departments),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		page, err := s.store.Query(gctx, query.TotalCount())
		if err != nil {
			return fmt.Errorf("failed to count employees: %w", err)
		}
		dash.TotalEmployees = page.TotalItems
		return nil
	})
	g.Go(func() error {
		page, err := s.store.Query(gctx, query.BuildMonthToDateFilter(now))
		if err != nil {
			return fmt.Errorf("failed to count employees added this month: %w", err)
		}
		dash.AddedThisMonth = page.TotalItems
		return nil
	})
	g.Go(func() error {
		page, err := s.store.Query(gctx, query.RecentlyAdded(query.RecentlyAddedCount))
		if err != nil {
			return fmt.Errorf("failed to fetch recently added employees: %w", err)
		}
		dash.RecentlyAdded = page.Items
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return dash, nil
}

// AllEmployees walks every page of the directory in store order.
func (s *Service) AllEmployees(ctx context.Context, perPage int) ([]types.Employee, error) {
	if perPage <= 0 {
		perPage = records.DefaultPerPage
	}

	var all []types.Employee
	for page := 1; ; page++ {
		result, err := s.store.List(ctx, page, perPage)
		if err != nil {
			return nil, err
		}
		all = append(all, result.Items...)
		if page >= result.TotalPages {
			break
		}
	}
	if all == nil {
		all = []types.Employee{}
	}
	return all, nil
}

// ImportResult is the outcome of creating one imported row.
type ImportResult struct {
	// Index is the position of the form in the imported batch.
	Index    int
	Employee *types.Employee
	Err      error
}

// DefaultImportConcurrency bounds concurrent create requests during an import.
const DefaultImportConcurrency = 4

// ImportEmployees creates every form, at most concurrency at a time. A failing
// row does not stop the others; results are returned in input order.
func (s *Service) ImportEmployees(ctx context.Context, batch []types.CreateForm, concurrency int) []ImportResult {
	if concurrency <= 0 {
		concurrency = DefaultImportConcurrency
	}

	results := make([]ImportResult, len(batch))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i := range batch {
		i := i // per-iteration copy (pre-Go 1.22 loop semantics)
		g.Go(func() error {
			emp, err := s.CreateEmployee(gctx, batch[i])
			results[i] = ImportResult{Index: i, Employee: emp, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	var failed int
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	s.logger.Info("import finished", zap.Int("rows", len(batch)), zap.Int("failed", failed))
	return results
}
