package response

var (
	ErrInvalidRequestFormat = ErrorResponse{
		Status:  "error",
		Error:   "invalid_request",
		Details: "Invalid request format",
	}

	ErrAuthenticationFailed = ErrorResponse{
		Status: "error",
		Error:  "authentication_failed",
	}

	ErrNotFound = ErrorResponse{
		Status:  "error",
		Error:   "not_found",
		Details: "Requested resource does not exist",
	}

	ErrSectionReferenced = ErrorResponse{
		Status:  "error",
		Error:   "section_in_use",
		Details: "Section is referenced by existing content",
	}
)
