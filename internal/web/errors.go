package web

// errors.go provides unified error response handling for the web layer.
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls respondError(w, r, err, statusCode)
//  3. Error is mapped via core.MapError to get user-friendly message
//  4. Technical error + context is logged with request ID for correlation
//  5. User message is rendered as JSON, or plain text for browser form posts

import (
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/movieloader/internal/core"
	"github.com/JonMunkholm/movieloader/internal/logging"
)

// ErrorResponse represents the JSON structure for error responses.
// Detail and Line are set when a load stops on a failing row.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
	Detail  string `json:"detail,omitempty"`
	Line    int    `json:"line,omitempty"`
	LoadID  string `json:"load_id,omitempty"`
}

// respondError logs err and writes a user-facing error response.
func respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	respondLoadError(w, r, err, statusCode, nil)
}

// respondLoadError is respondError with the partial result of a failed load.
func respondLoadError(w http.ResponseWriter, r *http.Request, err error, statusCode int, result *core.IngestResult) {
	userMsg := core.MapError(err)

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
	)

	resp := ErrorResponse{
		Error:   userMsg.Message,
		Message: userMsg.Message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
	}

	// A failing row is reported with its underlying message so the file
	// can be fixed; prior rows stay committed.
	var rowErr *core.RowError
	if errors.As(err, &rowErr) {
		resp.Detail = rowErr.Err.Error()
		resp.Line = rowErr.Line
	}
	if result != nil {
		resp.LoadID = result.LoadID
	}

	if wantsJSON(r) {
		writeJSON(w, statusCode, resp)
		return
	}
	respondErrorText(w, resp, statusCode)
}

// respondErrorText writes a plain text error for browser form posts.
func respondErrorText(w http.ResponseWriter, resp ErrorResponse, statusCode int) {
	msg := resp.Message + " (" + resp.Code + ")"
	if resp.Detail != "" {
		msg += ": " + resp.Detail
	}
	http.Error(w, msg, statusCode)
}

// wantsJSON reports whether the client should get JSON. Browsers submitting
// the index page forms ask for HTML; everything else gets JSON.
func wantsJSON(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	accept := r.Header.Get("Accept")
	if strings.Contains(accept, "application/json") {
		return true
	}
	return !strings.Contains(accept, "text/html")
}
