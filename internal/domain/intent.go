package domain

// IntentKind enumerates the actions the classifier can recognize.
type IntentKind string

const (
	IntentInstall         IntentKind = "install"
	IntentRemove          IntentKind = "remove"
	IntentUpdate          IntentKind = "update"
	IntentRollback        IntentKind = "rollback"
	IntentReconfigure     IntentKind = "reconfigure"
	IntentSearch          IntentKind = "search"
	IntentStatus          IntentKind = "status"
	IntentListInstalled   IntentKind = "list_installed"
	IntentListGenerations IntentKind = "list_generations"
	IntentGarbageCollect  IntentKind = "garbage_collect"
	IntentUnknown         IntentKind = "unknown"
)

// Mutating reports whether the intent changes system state.
func (k IntentKind) Mutating() bool {
	switch k {
	case IntentInstall, IntentRemove, IntentUpdate, IntentRollback,
		IntentReconfigure, IntentGarbageCollect:
		return true
	}
	return false
}

// Intent is one classification of a query.
type Intent struct {
	Kind       IntentKind
	Confidence float64
	PatternID  string
	// Span is the trigger text matched inside the normalized query.
	Span SourceSpan
}

// SourceSpan locates matched text inside the normalized query.
type SourceSpan struct {
	Start int
	End   int
}

// Slot is a candidate entity string extracted from a query.
type Slot struct {
	Text string
	Span SourceSpan
}
