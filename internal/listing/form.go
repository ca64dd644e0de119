package listing

import (
	"context"
	"sync"

	"github.com/MiltonTSilva/ContasReceber-sub000/internal/domain"
)

// Validator is implemented by models that check their own required fields.
type Validator interface {
	Validate() error
}

// FormController loads-or-initializes one record's editable fields, validates
// and persists them. An empty id selects create mode; create success resets
// the fields for rapid successive entry, edit success signals Done.
type FormController[T Record] struct {
	gw Gateway[T]
	id string

	mu        sync.Mutex
	fields    T
	loaded    bool
	done      bool
	lastError string
}

func NewForm[T Record](gw Gateway[T], id string) *FormController[T] {
	return &FormController[T]{gw: gw, id: id}
}

// EditMode reports whether a route-supplied identifier selected edit mode.
func (f *FormController[T]) EditMode() bool { return f.id != "" }

// Done reports a successful edit-mode submit (navigate back to the list).
func (f *FormController[T]) Done() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.done
}

// LastError is the message for the error dialog, empty when none.
func (f *FormController[T]) LastError() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastError
}

// Load fetches the record in edit mode and pre-fills the fields. In create
// mode it is a no-op: fields keep their type defaults.
func (f *FormController[T]) Load(ctx context.Context) error {
	if !f.EditMode() {
		return nil
	}
	row, err := f.gw.Get(ctx, f.id)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.lastError = err.Error()
		return err
	}
	f.fields = row
	f.loaded = true
	f.lastError = ""
	return nil
}

// Fields returns the current editable values.
func (f *FormController[T]) Fields() T {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fields
}

// SetFields replaces the editable values (form input binding).
func (f *FormController[T]) SetFields(v T) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fields = v
}

// Submit validates locally and persists. Validation failures stay local to
// the form (no dialog); persistence failures populate LastError and keep the
// fields for correction.
func (f *FormController[T]) Submit(ctx context.Context) (T, error) {
	f.mu.Lock()
	fields := f.fields
	f.mu.Unlock()
	var zero T

	if v, ok := any(fields).(Validator); ok {
		if err := v.Validate(); err != nil {
			return zero, err
		}
	}

	var (
		saved T
		err   error
	)
	if f.EditMode() {
		saved, err = f.gw.Update(ctx, f.id, fields)
	} else {
		saved, err = f.gw.Insert(ctx, fields)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.lastError = err.Error()
		return zero, err
	}
	f.lastError = ""
	if f.EditMode() {
		f.fields = saved
		f.done = true
	} else {
		// create mode clears the form for the next record
		f.fields = zero
	}
	return saved, nil
}

// CanSubmit is the UI pre-check mirror of the gateway's enforcement for edit
// mode: a loaded record the principal cannot mutate disables the form.
func (f *FormController[T]) CanSubmit(p *domain.Principal) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.EditMode() || !f.loaded {
		return true
	}
	return domain.CanMutate(p, f.fields)
}
