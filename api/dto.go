/*
dto.go - Data Transfer Objects for API responses

PURPOSE:
  Defines the JSON envelopes returned to clients. Report rows are served
  directly from hiring.QuarterlyHires and hiring.DepartmentHires, whose json
  tags already carry the public field names.

TYPES:
  MessageResponse:  {"message": "..."} for health and upload confirmations
  ErrorResponse:    {"error": "..."} for every failed request

SEE ALSO:
  - handlers.go: Uses these types
  - hiring/types.go: Report row types
*/
package api

// MessageResponse is a plain confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response. Details is only set for
// untagged internal errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
