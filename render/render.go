// Package render provides a headless-Chrome page renderer session used by the
// collector and extractor. All network access in the pipeline goes through a
// Session; everything above this package works against the interface so tests
// can substitute a fake.
package render

import (
	"context"
	"fmt"
	"strings"
)

// Session is a render-capable browser session. A session is a scoped
// resource: acquire one per collection run or per extraction call and always
// Close it, including on failure paths.
type Session interface {
	// Load navigates to the URL and waits for the initial paint. Fails with
	// a *NavigationError.
	Load(ctx context.Context, url string) error

	// Evaluate runs a script against the rendered document and unmarshals
	// the result into out (out may be nil to discard it). Fails with a
	// *ScriptError.
	Evaluate(ctx context.Context, script string, out any) error

	// HTML returns the serialized rendered document.
	HTML(ctx context.Context) (string, error)

	// Title returns the current document title.
	Title(ctx context.Context) (string, error)

	// Location returns the current URL, after any redirects.
	Location(ctx context.Context) (string, error)

	// Close tears the session down. Safe to call more than once.
	Close()
}

// NavigationError reports a failed page load. Navigation failures are run
// scoped: a collection run that hits one returns its partial result.
type NavigationError struct {
	URL string
	Err error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigation to %s failed: %v", e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error { return e.Err }

// ScriptError reports a failed script evaluation against the rendered
// document.
type ScriptError struct {
	Err error
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("script evaluation failed: %v", e.Err)
}

func (e *ScriptError) Unwrap() error { return e.Err }

// IsChallengeTitle reports whether a document title indicates an
// anti-automation interstitial rather than real content. The caller is
// expected to wait once and proceed; there is no retry loop.
func IsChallengeTitle(title string) bool {
	return strings.Contains(title, "Just a moment") ||
		strings.Contains(title, "Cloudflare")
}
