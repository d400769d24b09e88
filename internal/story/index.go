package story

import "sort"

// IndexVersion is the version of the index format emitted on the channel.
const IndexVersion = 4

// IndexEntry is one story as listed in the Index.
type IndexEntry struct {
	ID         ID       `json:"id"`
	Title      string   `json:"title"`
	Name       string   `json:"name"`
	ImportPath ModuleID `json:"importPath"`
	Tags       []string `json:"tags,omitempty"`
	Type       string   `json:"type"`
}

// Index is the catalogue of every known story.
type Index struct {
	V       int               `json:"v"`
	Entries map[ID]IndexEntry `json:"entries"`
}

// NewIndex builds an index from processed modules.
func NewIndex(modules ...ModuleAnnotations) Index {
	idx := Index{V: IndexVersion, Entries: make(map[ID]IndexEntry)}
	for _, m := range modules {
		for _, a := range m.Stories {
			idx.Entries[a.ID] = IndexEntry{
				ID:         a.ID,
				Title:      a.Title,
				Name:       a.Name,
				ImportPath: a.ImportPath,
				Tags:       a.Tags,
				Type:       "story",
			}
		}
	}
	return idx
}

// Has reports whether the index contains id.
func (i Index) Has(id ID) bool {
	_, ok := i.Entries[id]
	return ok
}

// Get returns the entry for id.
func (i Index) Get(id ID) (IndexEntry, bool) {
	e, ok := i.Entries[id]
	return e, ok
}

// Sorted returns the entries ordered by title, then by id.
func (i Index) Sorted() []IndexEntry {
	out := make([]IndexEntry, 0, len(i.Entries))
	for _, e := range i.Entries {
		out = append(out, e)
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Title != out[b].Title {
			return out[a].Title < out[b].Title
		}
		return out[a].ID < out[b].ID
	})
	return out
}

// First returns the first entry in Sorted order.
func (i Index) First() (IndexEntry, bool) {
	sorted := i.Sorted()
	if len(sorted) == 0 {
		return IndexEntry{}, false
	}
	return sorted[0], true
}
