package app

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/specialistvlad/previewgo/internal/story"
)

// Frame is one painted story.
type Frame struct {
	StoryID      story.ID       `json:"storyId"`
	Title        string         `json:"title"`
	Name         string         `json:"name"`
	ImportPath   story.ModuleID `json:"importPath"`
	Output       string         `json:"output"`
	ForceRemount bool           `json:"forceRemount"`
	RenderedAt   time.Time      `json:"renderedAt"`
}

// TextCanvas paints stories as text to a writer and remembers the last frame.
type TextCanvas struct {
	mu     sync.Mutex
	w      io.Writer
	last   Frame
	frames int
}

// NewTextCanvas creates a canvas that paints to w.
func NewTextCanvas(w io.Writer) *TextCanvas {
	return &TextCanvas{w: w}
}

// Render implements story.RenderToCanvas.
func (c *TextCanvas) Render(ctx context.Context, rc story.RenderContext) error {
	out, err := rc.StoryFn(ctx, rc.Story)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	frame := Frame{
		StoryID:      rc.Story.ID,
		Title:        rc.Story.Title,
		Name:         rc.Story.Name,
		ImportPath:   rc.ImportPath,
		Output:       fmt.Sprint(out),
		ForceRemount: rc.ForceRemount,
		RenderedAt:   time.Now(),
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.last = frame
	c.frames++
	_, err = fmt.Fprintf(c.w, "─── %s / %s ───\n%s\n", frame.Title, frame.Name, frame.Output)
	return err
}

// Last returns the most recent frame.
func (c *TextCanvas) Last() (Frame, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last, c.frames > 0
}

// Frames counts painted frames.
func (c *TextCanvas) Frames() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frames
}
