package transport

type AuthLoginRequest struct {
	UserID string `json:"user_id"`
	TTL    int    `json:"ttl_seconds"`
}

type RefreshRequest struct {
	SessionID string `json:"session_id"`
	TTL       int    `json:"ttl_seconds"`
}

// ProfileUpdateRequest leaves fields that are absent from the body untouched.
type ProfileUpdateRequest struct {
	Email  *string           `json:"email"`
	Name   *string           `json:"name"`
	Role   *string           `json:"role"`
	Status *string           `json:"status"`
	Meta   map[string]string `json:"metadata"`
}

type ProjectRequest struct {
	Name         string `json:"name"`
	ClientName   string `json:"client_name"`
	Status       string `json:"status"`
	StartDate    string `json:"start_date"`
	DeliveryDate string `json:"delivery_date"`
}

// ProjectPatchRequest clears a date when it is sent as an empty string.
type ProjectPatchRequest struct {
	Name         *string `json:"name"`
	ClientName   *string `json:"client_name"`
	Status       *string `json:"status"`
	StartDate    *string `json:"start_date"`
	DeliveryDate *string `json:"delivery_date"`
}

type TaskRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ProjectID   string `json:"project_id"`
	AssigneeID  string `json:"assignee_id"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	TicketMax   *int   `json:"ticket_max"`
	DueDate     string `json:"due_date"`
}

// TaskPatchRequest clears the due date when it is sent as an empty string.
type TaskPatchRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	ProjectID   *string `json:"project_id"`
	AssigneeID  *string `json:"assignee_id"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	TicketMax   *int    `json:"ticket_max"`
	DueDate     *string `json:"due_date"`
}

type TicketRequest struct {
	TaskID      string `json:"task_id"`
	IssueType   string `json:"issue_type"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

type TicketPatchRequest struct {
	IssueType   *string `json:"issue_type"`
	Category    *string `json:"category"`
	Description *string `json:"description"`
	Priority    *string `json:"priority"`
	Status      *string `json:"status"`
}
