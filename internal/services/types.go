package services

import (
	"encoding/json"

	"github.com/ksred/ironforge/internal/models"
)

// Response is the envelope returned by every outer surface
type Response struct {
	Success bool          `json:"success"`
	Message string        `json:"message,omitempty"`
	Data    interface{}   `json:"data,omitempty"`
	Error   string        `json:"error,omitempty"`
	Meta    *ResponseMeta `json:"meta,omitempty"`
}

// ResponseMeta contains metadata about the response
type ResponseMeta struct {
	Count int    `json:"count,omitempty"`
	Mode  string `json:"mode,omitempty"`
}

// NewSuccessResponse creates a successful response
func NewSuccessResponse(message string, data interface{}) *Response {
	return &Response{
		Success: true,
		Message: message,
		Data:    data,
	}
}

// NewErrorResponse creates an error response
func NewErrorResponse(error string) *Response {
	return &Response{
		Success: false,
		Error:   error,
	}
}

// ToJSON converts the response to JSON
func (r *Response) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}

// MigrationOutcome is the JSON form of one migration's outcome
type MigrationOutcome struct {
	Migration string `json:"migration"`
	Action    string `json:"action"`
	Error     string `json:"error,omitempty"`
}

// MigrationResult is the JSON form of a migration run
type MigrationResult struct {
	Mode     string                     `json:"mode"`
	Success  bool                       `json:"success"`
	Outcomes []MigrationOutcome         `json:"outcomes,omitempty"`
	Summary  map[string]int             `json:"summary,omitempty"`
	History  []*models.MigrationHistory `json:"history,omitempty"`
	Errors   []string                   `json:"errors,omitempty"`
}

// SeedRequest describes how much fake data to create
type SeedRequest struct {
	Users        int `json:"users" binding:"min=0,max=1000" example:"10"`
	PostsPerUser int `json:"posts_per_user" binding:"min=0,max=100" example:"3"`
	Roles        int `json:"roles" binding:"min=0,max=100" example:"3"`
}

// SeedResult counts what a seed run created
type SeedResult struct {
	Users     int `json:"users"`
	Posts     int `json:"posts"`
	Roles     int `json:"roles"`
	RoleLinks int `json:"role_links"`
}
