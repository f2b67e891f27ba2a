// Package task holds the task model and the in-memory list operations shared
// by every front end.
package task

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrNotFound matches any *NotFoundError through errors.Is.
var ErrNotFound = errors.New("not found")

// ErrEmptyTitle is returned by Add when the title is blank after trimming.
var ErrEmptyTitle = errors.New("title cannot be empty")

// ErrIDExhausted is returned by Add once the highest id is math.MaxInt.
var ErrIDExhausted = errors.New("no task ids left")

// NotFoundError reports a task id that is not in the list.
type NotFoundError struct {
	ID int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("task with id %d not found", e.ID)
}

// Is makes errors.Is(err, ErrNotFound) hold.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// Task is a single to-do entry.
type Task struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	Done        bool    `json:"done"`
}

// HasDescription reports whether a description is present.
func (t Task) HasDescription() bool {
	return t.Description != nil
}

// DescriptionText returns the description, or "" when absent.
func (t Task) DescriptionText() string {
	if t.Description == nil {
		return ""
	}
	return *t.Description
}

// List is an ordered task sequence plus the highest id ever handed out.
// Insertion order is preserved; Toggle and Remove never reorder.
type List struct {
	Tasks []Task

	// LastID survives removals so ids are never reused.
	LastID int
}

// HighestID returns the largest of LastID and every task id.
func (l List) HighestID() int {
	highest := l.LastID
	for _, t := range l.Tasks {
		if t.ID > highest {
			highest = t.ID
		}
	}
	return highest
}

// NextID returns the id the next Add will assign, or 0 when none is left.
func (l List) NextID() int {
	highest := l.HighestID()
	if highest == math.MaxInt {
		return 0
	}
	return highest + 1
}

// Add appends a new open task and returns it. It does not persist.
// An empty description after trimming is treated as absent.
func (l *List) Add(title string, description *string) (Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Task{}, ErrEmptyTitle
	}

	var desc *string
	if description != nil {
		if d := strings.TrimSpace(*description); d != "" {
			desc = &d
		}
	}

	id := l.NextID()
	if id == 0 {
		return Task{}, ErrIDExhausted
	}
	t := Task{
		ID:          id,
		Title:       title,
		Description: desc,
	}
	l.Tasks = append(l.Tasks, t)
	l.LastID = t.ID
	return t, nil
}

// Toggle flips the done flag of the task with the given id.
func (l *List) Toggle(id int) (Task, error) {
	i := l.index(id)
	if i < 0 {
		return Task{}, &NotFoundError{ID: id}
	}
	l.Tasks[i].Done = !l.Tasks[i].Done
	return l.Tasks[i], nil
}

// Remove deletes the task with the given id, keeping the order of the rest.
func (l *List) Remove(id int) (Task, error) {
	i := l.index(id)
	if i < 0 {
		return Task{}, &NotFoundError{ID: id}
	}
	removed := l.Tasks[i]
	rest := make([]Task, 0, len(l.Tasks)-1)
	rest = append(rest, l.Tasks[:i]...)
	rest = append(rest, l.Tasks[i+1:]...)
	l.Tasks = rest
	if removed.ID > l.LastID {
		l.LastID = removed.ID
	}
	return removed, nil
}

// Filter applies the package-level Filter to the list's tasks.
func (l List) Filter(done *bool) []Task {
	return Filter(l.Tasks, done)
}

func (l *List) index(id int) int {
	for i, t := range l.Tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// Filter returns a copy of tasks, restricted to those whose Done equals *done
// when done is non-nil. Relative order is preserved.
func Filter(tasks []Task, done *bool) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if done == nil || t.Done == *done {
			out = append(out, t)
		}
	}
	return out
}

// View is what a rendering layer needs: the ordered tasks and an optional
// one-line notice describing the last operation.
type View struct {
	Tasks  []Task
	Notice string
}
