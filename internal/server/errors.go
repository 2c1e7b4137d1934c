// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/pdiddy/academic-mcp/internal/httputil"
)

// maxErrDetail bounds how much of an unclassified error message is
// shown to the client.
const maxErrDetail = 200

// apiError converts a backend failure into a tool error result.
func apiError(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(apiErrorMessage(err))
}

// apiErrorMessage maps a backend error to a user-readable message.
// HTTP statuses are classified first, then transport failures; what
// remains is shown clipped.
func apiErrorMessage(err error) string {
	switch {
	case httputil.IsNotFound(err):
		return "Resource not found. Please check the ID is correct."
	case httputil.IsAuth(err):
		return "Access denied. This resource may require authentication."
	case httputil.IsRateLimited(err):
		return "Rate limit exceeded. Please wait before making more requests."
	case httputil.IsServerError(err):
		return fmt.Sprintf("Server error (%d). The API may be temporarily unavailable.",
			httputil.StatusCodeOf(err))
	case httputil.StatusCodeOf(err) != 0:
		if snippet := statusSnippet(err); snippet != "" {
			return fmt.Sprintf("HTTP error %d: %s",
				httputil.StatusCodeOf(err), clipText(snippet, maxErrDetail))
		}
		return fmt.Sprintf("HTTP error %d", httputil.StatusCodeOf(err))
	case httputil.IsCircuitOpen(err):
		return "Backend temporarily suspended after repeated failures. Please try again shortly."
	case isTimeout(err):
		return "Request timed out. Please try again."
	case isConnection(err):
		return "Connection failed. Please check your network."
	}
	return "Unexpected error: " + clipText(err.Error(), maxErrDetail)
}

func statusSnippet(err error) string {
	var se *httputil.StatusError
	if errors.As(err, &se) {
		return se.Snippet
	}
	return ""
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func isConnection(err error) bool {
	var oe *net.OpError
	return errors.As(err, &oe)
}
