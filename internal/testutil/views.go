package testutil

import (
	"fmt"
	"io"
	"sync"

	"yatube/internal/models"
	"yatube/internal/pagination"

	"github.com/gofiber/fiber/v2"
)

// Rendered is one call captured by RecordingViews.
type Rendered struct {
	Name    string
	Layouts []string
	Context fiber.Map
}

// PostPage returns the page_obj of the render, or nil.
func (r Rendered) PostPage() *pagination.Page[*models.Post] {
	page, _ := r.Context["page_obj"].(*pagination.Page[*models.Post])
	return page
}

// RecordingViews is a fiber.Views that records template names and contexts.
// Its output lists the template and the posts on page_obj, one per line.
type RecordingViews struct {
	mu      sync.Mutex
	renders []Rendered
}

func NewRecordingViews() *RecordingViews {
	return &RecordingViews{}
}

func (v *RecordingViews) Load() error {
	return nil
}

func (v *RecordingViews) Render(w io.Writer, name string, binding interface{}, layouts ...string) error {
	ctx, _ := binding.(fiber.Map)

	v.mu.Lock()
	v.renders = append(v.renders, Rendered{Name: name, Layouts: layouts, Context: ctx})
	v.mu.Unlock()

	if _, err := fmt.Fprintf(w, "template=%s\n", name); err != nil {
		return err
	}
	if page, ok := ctx["page_obj"].(*pagination.Page[*models.Post]); ok {
		for _, p := range page.Items {
			if _, err := fmt.Fprintf(w, "post=%d %s\n", p.ID, p.Text); err != nil {
				return err
			}
		}
	}
	return nil
}

// Last returns the most recent render, or a zero Rendered.
func (v *RecordingViews) Last() Rendered {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.renders) == 0 {
		return Rendered{}
	}
	return v.renders[len(v.renders)-1]
}

// Count is the number of renders so far.
func (v *RecordingViews) Count() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.renders)
}
