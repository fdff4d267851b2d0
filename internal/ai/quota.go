package ai

import (
	"context"
	stderrors "errors"
	"regexp"

	"github.com/mrz1836/forja/internal/errors"
)

// quotaPattern matches provider messages that signal a quota or
// availability failure. Status codes only count as whole numbers.
//
//nolint:gochecknoglobals // compiled once
var quotaPattern = regexp.MustCompile(`(?i)` +
	`quota|rate[ _]limit|too many requests|resource[ _]exhausted|overloaded|` +
	`service unavailable|temporarily unavailable|\b(?:429|503)\b`)

// IsQuotaError reports whether err is a quota or availability failure that
// warrants the alternate capability. Context cancellation and deadlines
// never qualify.
func IsQuotaError(err error) bool {
	if err == nil {
		return false
	}
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if stderrors.Is(err, errors.ErrQuota) {
		return true
	}
	return hasQuotaMarker(err.Error())
}

func hasQuotaMarker(s string) bool {
	return quotaPattern.MatchString(s)
}
