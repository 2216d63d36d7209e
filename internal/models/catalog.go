package models

// Task is one required daily task.
type Task struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	SOP           string `json:"sop"`
	RequiresPhoto bool   `json:"requires_photo"`
	// Personal tasks are completed per person (e.g. a grooming self-check),
	// so they never count against a store's missing-task tally by default.
	Personal bool `json:"personal,omitempty"`
}

// Store is one retail location.
type Store struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Placeholder bool   `json:"placeholder,omitempty"`
}

// TaskCatalog is an ordered, read-only set of tasks.
type TaskCatalog struct {
	tasks []Task
	index map[string]int
}

func NewTaskCatalog(tasks []Task) TaskCatalog {
	c := TaskCatalog{
		tasks: append([]Task(nil), tasks...),
		index: make(map[string]int, len(tasks)),
	}
	for i, t := range c.tasks {
		c.index[t.ID] = i
	}
	return c
}

// Tasks returns a copy of the tasks in catalog order.
func (c TaskCatalog) Tasks() []Task {
	return append([]Task(nil), c.tasks...)
}

func (c TaskCatalog) Get(id string) (Task, bool) {
	i, ok := c.index[id]
	if !ok {
		return Task{}, false
	}
	return c.tasks[i], true
}

func (c TaskCatalog) IDs() []string {
	ids := make([]string, len(c.tasks))
	for i, t := range c.tasks {
		ids[i] = t.ID
	}
	return ids
}

func (c TaskCatalog) Len() int { return len(c.tasks) }

// StoreCatalog is an ordered, read-only set of stores, placeholders included.
type StoreCatalog struct {
	stores []Store
	index  map[string]int
}

func NewStoreCatalog(stores []Store) StoreCatalog {
	c := StoreCatalog{
		stores: append([]Store(nil), stores...),
		index:  make(map[string]int, len(stores)),
	}
	for i, s := range c.stores {
		c.index[s.ID] = i
	}
	return c
}

// Stores returns every store including placeholders, in catalog order.
func (c StoreCatalog) Stores() []Store {
	return append([]Store(nil), c.stores...)
}

// Real returns the non-placeholder stores in catalog order.
func (c StoreCatalog) Real() []Store {
	var out []Store
	for _, s := range c.stores {
		if !s.Placeholder {
			out = append(out, s)
		}
	}
	return out
}

func (c StoreCatalog) Get(id string) (Store, bool) {
	i, ok := c.index[id]
	if !ok {
		return Store{}, false
	}
	return c.stores[i], true
}

// IsValid reports whether id names a real (non-placeholder) store.
func (c StoreCatalog) IsValid(id string) bool {
	s, ok := c.Get(id)
	return ok && !s.Placeholder
}
