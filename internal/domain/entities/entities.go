package entities

import (
	"errors"
	"strings"
)

// Common errors
var (
	ErrNotFound       = errors.New("record not found")
	ErrMissingID      = errors.New("record has no id")
	ErrReadOnlySample = errors.New("sample data is read-only")
	ErrOffline        = errors.New("server unreachable, showing sample data")
	ErrNoPermission   = errors.New("notification permission not granted")
	ErrNotConfigured  = errors.New("api base url is not configured")
)

// SamplePrefix marks fallback records that must never be written to the server.
const SamplePrefix = "sample-"

// TaskStatus is the lifecycle state of a task
type TaskStatus string

const (
	TaskStatusPendiente  TaskStatus = "pendiente"
	TaskStatusEnProgreso TaskStatus = "en_progreso"
	TaskStatusDetenida   TaskStatus = "detenida"
	TaskStatusCompletada TaskStatus = "completada"
)

// DebtType distinguishes charges from payments in the ledger
type DebtType string

const (
	DebtTypeDeuda DebtType = "deuda"
	DebtTypeAbono DebtType = "abono"
)

// NoteType distinguishes pinned "manzana" notes from normal ones
type NoteType string

const (
	NoteTypeNormal  NoteType = "normal"
	NoteTypeManzana NoteType = "manzana"
)

// Task represents a single to-do item inside a category
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      TaskStatus `json:"status"`
	DueDate     *string    `json:"dueDate,omitempty"`
	CreatedAt   string     `json:"createdAt,omitempty"`
	UpdatedAt   string     `json:"updatedAt,omitempty"`
	Order       *int       `json:"order,omitempty"`
}

// IsSample reports whether the task belongs to the offline fallback set
func (t Task) IsSample() bool {
	return strings.HasPrefix(t.ID, SamplePrefix)
}

// Clone returns a copy of the task with no shared pointers
func (t Task) Clone() Task {
	out := t
	if t.DueDate != nil {
		v := *t.DueDate
		out.DueDate = &v
	}
	if t.Order != nil {
		v := *t.Order
		out.Order = &v
	}
	return out
}

// TaskOrderRef is the {id, order} pair sent in reorder and repair calls
type TaskOrderRef struct {
	ID    string `json:"id"`
	Order int    `json:"order"`
}

// Category is a named bucket of tasks
type Category struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Color       *string `json:"color,omitempty"`
	CreatedAt   string  `json:"createdAt,omitempty"`
	UpdatedAt   string  `json:"updatedAt,omitempty"`
	Tasks       []Task  `json:"tasks"`
	TasksCount  int     `json:"tasksCount"`
}

// IsSample reports whether the category belongs to the offline fallback set
func (c Category) IsSample() bool {
	return strings.HasPrefix(c.ID, SamplePrefix)
}

// Clone returns a deep copy of the category and its tasks
func (c Category) Clone() Category {
	out := c
	if c.Color != nil {
		v := *c.Color
		out.Color = &v
	}
	out.Tasks = CloneTasks(c.Tasks)
	return out
}

// CloneTasks deep-copies a task slice
func CloneTasks(tasks []Task) []Task {
	if tasks == nil {
		return nil
	}
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}

// CloneCategories deep-copies a category slice
func CloneCategories(categories []Category) []Category {
	if categories == nil {
		return nil
	}
	out := make([]Category, len(categories))
	for i, c := range categories {
		out[i] = c.Clone()
	}
	return out
}

// DebtEntry is one movement in the debt ledger
type DebtEntry struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Amount    float64  `json:"amount"`
	Type      DebtType `json:"type"`
	Date      string   `json:"date"`
	CreatedAt string   `json:"createdAt,omitempty"`
	UpdatedAt string   `json:"updatedAt,omitempty"`
	Notes     string   `json:"notes,omitempty"`
}

// DebtBalance is derived from the entry set, never stored
type DebtBalance struct {
	Balance     float64 `json:"balance"`
	TotalDeudas float64 `json:"totalDeudas"`
	TotalAbonos float64 `json:"totalAbonos"`
}

// CalendarEvent is a dated entry that may carry a local reminder.
// NotifyBeforeMinutes nil means "no reminder"; zero means "notify at start".
type CalendarEvent struct {
	ID                  string `json:"id"`
	Title               string `json:"title"`
	Description         string `json:"description,omitempty"`
	Date                string `json:"date"`      // YYYY-MM-DD
	StartTime           string `json:"startTime"` // HH:mm, 24h
	NotifyBeforeMinutes *int   `json:"notifyBeforeMinutes,omitempty"`
	CreatedAt           string `json:"createdAt,omitempty"`
	UpdatedAt           string `json:"updatedAt,omitempty"`
}

// Note is a freeform note; IsManzana is authoritative over Type
type Note struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Type      NoteType `json:"type"`
	IsManzana bool     `json:"isManzana"`
	CreatedAt string   `json:"createdAt,omitempty"`
	UpdatedAt string   `json:"updatedAt,omitempty"`
}

// SupermarketItem is one row of the shopping list
type SupermarketItem struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Quantity  float64  `json:"quantity"`
	Unit      string   `json:"unit"`
	Category  string   `json:"category,omitempty"`
	Store     string   `json:"store,omitempty"`
	Price     *float64 `json:"price,omitempty"`
	Priority  int      `json:"priority"`
	Notes     string   `json:"notes,omitempty"`
	Recurring string   `json:"recurring,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	Checked   bool     `json:"checked"`
	CreatedAt string   `json:"createdAt,omitempty"`
	UpdatedAt string   `json:"updatedAt,omitempty"`
}

// Clone returns a copy of the item with no shared pointers
func (i SupermarketItem) Clone() SupermarketItem {
	out := i
	if i.Price != nil {
		v := *i.Price
		out.Price = &v
	}
	if i.Tags != nil {
		out.Tags = append([]string(nil), i.Tags...)
	}
	return out
}

// CloneSupermarketItems deep-copies an item slice
func CloneSupermarketItems(items []SupermarketItem) []SupermarketItem {
	if items == nil {
		return nil
	}
	out := make([]SupermarketItem, len(items))
	for i, item := range items {
		out[i] = item.Clone()
	}
	return out
}

// SupermarketStats summarizes the shopping list
type SupermarketStats struct {
	Total          int     `json:"total"`
	Pending        int     `json:"pending"`
	Checked        int     `json:"checked"`
	EstimatedTotal float64 `json:"estimatedTotal"`
}

// Device is a paired device registered for push messages
type Device struct {
	Token       string `json:"token"`
	Platform    string `json:"platform"`
	DeviceID    string `json:"deviceId"`
	AppVersion  string `json:"appVersion,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
}
