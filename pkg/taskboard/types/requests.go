package types

import "fmt"

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the unwrapped reply of POST /auth/login
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
	User        User   `json:"user"`
}

// TaskCreate is the body of POST /tasks/
type TaskCreate struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Priority    TaskPriority `json:"priority,omitempty"`
	WorkerIDs   []int64      `json:"worker_ids"`
}

// Validate checks required fields before the request is sent
func (c TaskCreate) Validate() error {
	if c.Title == "" {
		return fmt.Errorf("title is required")
	}
	if c.Priority != "" && !c.Priority.IsValid() {
		return fmt.Errorf("invalid priority %q", c.Priority)
	}
	return nil
}

// TaskUpdate is the body of PUT /tasks/{id}. Nil fields are left untouched.
type TaskUpdate struct {
	Title       *string       `json:"title,omitempty"`
	Description *string       `json:"description,omitempty"`
	Status      *TaskStatus   `json:"status,omitempty"`
	Priority    *TaskPriority `json:"priority,omitempty"`
	WorkerIDs   []int64       `json:"worker_ids,omitempty"`
}

// IsEmpty reports whether the update changes nothing
func (u TaskUpdate) IsEmpty() bool {
	return u.Title == nil && u.Description == nil && u.Status == nil && u.Priority == nil && u.WorkerIDs == nil
}

// Validate checks enum fields
func (u TaskUpdate) Validate() error {
	if u.Status != nil && !u.Status.IsValid() {
		return fmt.Errorf("invalid status %q", *u.Status)
	}
	if u.Priority != nil && !u.Priority.IsValid() {
		return fmt.Errorf("invalid priority %q", *u.Priority)
	}
	return nil
}

// UserCreate is the body of POST /auth/users
type UserCreate struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Role     Role   `json:"role,omitempty"`
	IsActive bool   `json:"is_active"`
}

// Validate mirrors the backend's constraints so obvious mistakes fail locally
func (c UserCreate) Validate() error {
	if c.Email == "" {
		return fmt.Errorf("email is required")
	}
	if len(c.Password) < 6 {
		return fmt.Errorf("password must be at least 6 characters")
	}
	if c.FullName == "" {
		return fmt.Errorf("full name is required")
	}
	if c.Role != "" && !c.Role.IsValid() {
		return fmt.Errorf("invalid role %q", c.Role)
	}
	return nil
}

// UserUpdate is the body of PUT /auth/users/{id}. Nil fields are left untouched.
type UserUpdate struct {
	Email    *string `json:"email,omitempty"`
	FullName *string `json:"full_name,omitempty"`
	Role     *Role   `json:"role,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// CommentCreate is the body of POST /tasks/{id}/comments
type CommentCreate struct {
	Text     string `json:"text"`
	FullName string `json:"full_name"`
}

// TaskList is the unwrapped reply of GET /tasks/list
type TaskList struct {
	Tasks []Task `json:"tasks"`
}
