package registry

import (
	"fmt"
	"sort"

	"github.com/specialistvlad/previewgo/internal/story"
)

// RemovedAPIError is returned by members that no longer exist.
type RemovedAPIError struct {
	Name string
}

func (e *RemovedAPIError) Error() string {
	return fmt.Sprintf("client-api:%s was removed in storyStoreV7", e.Name)
}

// StoriesOf is the retired imperative registration API. It always fails.
func (r *Registry) StoriesOf(kind string) error {
	return &RemovedAPIError{Name: "storiesOf"}
}

// Raw returns every registered story, ordered by story id.
func (r *Registry) Raw() ([]story.Annotation, error) {
	pa, err := r.ProjectAnnotations()
	if err != nil {
		return nil, err
	}
	out := make([]story.Annotation, 0, len(pa.Stories))
	for _, a := range pa.Stories {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
