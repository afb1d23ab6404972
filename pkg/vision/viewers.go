package vision

import (
	"errors"
	"fmt"

	"github.com/gravitas-games/hextactics/pkg/search"
)

var (
	ErrDuplicateViewer = errors.New("vision: viewer already registered")
	ErrUnknownViewer   = errors.New("vision: viewer not registered")
)

// AddViewer registers a viewer and adds its visibility.
func (f *Field) AddViewer(ctx *search.Context, id string, cell, rng int) error {
	if _, ok := f.viewers[id]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateViewer, id)
	}
	f.Increase(ctx, cell, rng)
	f.viewers[id] = &viewer{cell: cell, rng: rng}
	return nil
}

// MoveViewer relocates a viewer. The new area is added before the old one is
// withdrawn so cells seen from both spots raise no events.
func (f *Field) MoveViewer(ctx *search.Context, id string, cell int) error {
	v, ok := f.viewers[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownViewer, id)
	}
	if v.cell == cell {
		return nil
	}
	f.Increase(ctx, cell, v.rng)
	f.Decrease(ctx, v.cell, v.rng)
	v.cell = cell
	return nil
}

// SetViewerRange changes how far a registered viewer sees.
func (f *Field) SetViewerRange(ctx *search.Context, id string, rng int) error {
	v, ok := f.viewers[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownViewer, id)
	}
	if v.rng == rng {
		return nil
	}
	f.Increase(ctx, v.cell, rng)
	f.Decrease(ctx, v.cell, v.rng)
	v.rng = rng
	return nil
}

// RemoveViewer withdraws a viewer's visibility and forgets it.
func (f *Field) RemoveViewer(ctx *search.Context, id string) error {
	v, ok := f.viewers[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownViewer, id)
	}
	f.Decrease(ctx, v.cell, v.rng)
	delete(f.viewers, id)
	return nil
}

// Viewers returns the number of registered viewers.
func (f *Field) Viewers() int { return len(f.viewers) }
