package types

import (
	"fmt"
	"strings"
)

// Role is a user's role on the platform.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleUser   Role = "user"
	RoleWorker Role = "worker"
)

// Roles lists every role in display order
func Roles() []Role {
	return []Role{RoleAdmin, RoleUser, RoleWorker}
}

// IsValid checks if the role is one of the predefined roles
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleUser, RoleWorker:
		return true
	default:
		return false
	}
}

// ParseRole parses a role name case-insensitively
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", fmt.Errorf("unknown role %q (supported: admin, user, worker)", s)
	}
	return r, nil
}

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	TaskStatusNew        TaskStatus = "new"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusRework     TaskStatus = "rework"
)

// IsValid checks if the status is one of the predefined statuses
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusNew, TaskStatusInProgress, TaskStatusCompleted, TaskStatusRework:
		return true
	default:
		return false
	}
}

// TaskPriority ranks tasks.
type TaskPriority string

const (
	PriorityLow      TaskPriority = "low"
	PriorityMedium   TaskPriority = "medium"
	PriorityHigh     TaskPriority = "high"
	PriorityCritical TaskPriority = "critical"
)

// IsValid checks if the priority is one of the predefined priorities
func (p TaskPriority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	default:
		return false
	}
}

// HistoryEventType classifies entries in a task's history.
type HistoryEventType string

const (
	EventCreated         HistoryEventType = "created"
	EventStatusChanged   HistoryEventType = "status_changed"
	EventAssigned        HistoryEventType = "assigned"
	EventCommentAdded    HistoryEventType = "comment_added"
	EventWorkerCompleted HistoryEventType = "worker_completed"
	EventApproved        HistoryEventType = "approved"
	EventReturned        HistoryEventType = "returned"
)

// User is a platform account as returned by the auth service.
type User struct {
	ID        int64     `json:"id" yaml:"id"`
	Email     string    `json:"email" yaml:"email"`
	FullName  string    `json:"full_name" yaml:"full_name"`
	Role      Role      `json:"role" yaml:"role"`
	IsActive  bool      `json:"is_active" yaml:"is_active"`
	CreatedAt Timestamp `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt Timestamp `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// DisplayName returns the name used when authoring comments:
// full name, then email, then "Unknown User".
func (u *User) DisplayName() string {
	if u == nil {
		return "Unknown User"
	}
	if u.FullName != "" {
		return u.FullName
	}
	if u.Email != "" {
		return u.Email
	}
	return "Unknown User"
}

// Task is a unit of work assigned to workers.
type Task struct {
	ID                int64              `json:"id" yaml:"id"`
	Title             string             `json:"title" yaml:"title"`
	Description       string             `json:"description" yaml:"description"`
	Status            TaskStatus         `json:"status" yaml:"status"`
	Priority          TaskPriority       `json:"priority" yaml:"priority"`
	CreatedBy         int64              `json:"created_by,omitempty" yaml:"created_by,omitempty"`
	CreatedAt         Timestamp          `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt         Timestamp          `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
	WorkerIDs         []int64            `json:"worker_ids" yaml:"worker_ids"`
	Comments          []Comment          `json:"comments,omitempty" yaml:"comments,omitempty"`
	History           []HistoryEntry     `json:"history,omitempty" yaml:"history,omitempty"`
	WorkerCompletions []WorkerCompletion `json:"worker_completions,omitempty" yaml:"worker_completions,omitempty"`
}

// Comment is a note left on a task.
type Comment struct {
	ID        int64     `json:"id" yaml:"id"`
	TaskID    int64     `json:"task_id" yaml:"task_id"`
	UserID    int64     `json:"user_id" yaml:"user_id"`
	FullName  string    `json:"full_name" yaml:"full_name"`
	Text      string    `json:"text" yaml:"text"`
	CreatedAt Timestamp `json:"created_at,omitempty" yaml:"created_at,omitempty"`
}

// HistoryEntry records a change made to a task.
type HistoryEntry struct {
	ID        int64            `json:"id" yaml:"id"`
	TaskID    int64            `json:"task_id" yaml:"task_id"`
	EventType HistoryEventType `json:"event_type" yaml:"event_type"`
	UserID    int64            `json:"user_id" yaml:"user_id"`
	Details   string           `json:"details,omitempty" yaml:"details,omitempty"`
	CreatedAt Timestamp        `json:"created_at,omitempty" yaml:"created_at,omitempty"`
}

// WorkerCompletion marks one worker finishing their part of a task.
type WorkerCompletion struct {
	ID          int64     `json:"id,omitempty" yaml:"id,omitempty"`
	TaskID      int64     `json:"task_id,omitempty" yaml:"task_id,omitempty"`
	WorkerID    int64     `json:"worker_id" yaml:"worker_id"`
	CompletedAt Timestamp `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
}
