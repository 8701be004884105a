// Package provider invokes the text-generation providers: an OpenAI-backed
// primary and a Gemini-backed secondary used as fallback for quota-class
// primary failures.
package provider

import (
	"errors"
	"strings"

	"google.golang.org/api/googleapi"
)

// FailureClass is the closed set of provider failure categories.
type FailureClass int

const (
	// FailureFatal aborts the request immediately; no fallback is attempted.
	FailureFatal FailureClass = iota
	// FailureQuota indicates exhausted quota, rate limiting, or missing
	// credentials. It is the only class that triggers secondary fallback.
	FailureQuota
	// FailureModelNotFound indicates the requested model does not exist;
	// the secondary advances to its next candidate.
	FailureModelNotFound
)

// quotaMarkers are the substring heuristics for quota-class failures.
var quotaMarkers = []string{
	"quota",
	"resource_exhausted",
	"rate limit",
	"429",
	"api key",
	"missing credentials",
}

var notFoundMarkers = []string{
	"not found",
	"not_found",
	"404",
}

// Classify categorizes a provider failure. Structured googleapi codes are
// checked before falling back to message inspection.
func Classify(err error) FailureClass {
	if err == nil {
		return FailureFatal
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case 404:
			return FailureModelNotFound
		case 429:
			return FailureQuota
		}
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range notFoundMarkers {
		if strings.Contains(msg, marker) {
			return FailureModelNotFound
		}
	}
	for _, marker := range quotaMarkers {
		if strings.Contains(msg, marker) {
			return FailureQuota
		}
	}
	return FailureFatal
}
