package handler

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error errorPayload `json:"error"`
}

func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{
		Error: errorPayload{
			Code:    code,
			Message: message,
		},
	}
}

// OpsResult is the fixed envelope of the operational endpoints. They always
// answer HTTP 200; the code field carries the outcome.
type OpsResult struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var (
	opsSuccess = OpsResult{Code: "0000", Message: "SUCCESS"}
	opsFailed  = OpsResult{Code: "9999", Message: "FAILED"}
)
