package tasks

import (
	"fmt"

	"github.com/vytor/vocabflash/internal/models"
)

// Registry maps task type tags to tasks. It is filled once at startup and
// only read afterwards, so it is safe for concurrent use.
type Registry struct {
	tasks map[models.TaskType]Task
	order []models.TaskType
}

// NewRegistry registers tasks in the given order. It panics when two tasks
// share a type tag.
func NewRegistry(tasks ...Task) *Registry {
	r := &Registry{tasks: make(map[models.TaskType]Task, len(tasks))}
	for _, t := range tasks {
		if _, dup := r.tasks[t.Type()]; dup {
			panic(fmt.Sprintf("tasks: duplicate task type %q", t.Type()))
		}
		r.tasks[t.Type()] = t
		r.order = append(r.order, t.Type())
	}
	return r
}

// DefaultRegistry holds the definition task followed by the choice task.
func DefaultRegistry() *Registry {
	return NewRegistry(NewDefinitionTask(), NewChoiceTask(nil))
}

func (r *Registry) Get(t models.TaskType) (Task, bool) {
	task, ok := r.tasks[t]
	return task, ok
}

// Types returns the registered tags in registration order.
func (r *Registry) Types() []models.TaskType {
	out := make([]models.TaskType, len(r.order))
	copy(out, r.order)
	return out
}
