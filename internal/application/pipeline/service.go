// Package pipeline orchestrates a natural-language query end-to-end: hook
// rewrites, intent classification, slot resolution, planning, the safety
// gate, tiered execution, caching and learning.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/doeshing/nixwish/internal/domain"
	"github.com/doeshing/nixwish/internal/ports"
)

// Service wires the pipeline collaborators. Cache, Learning, Hooks and
// Prompter may be nil; the pipeline degrades gracefully without them.
type Service struct {
	ConfigProvider ports.ConfigProvider
	Classifier     ports.IntentClassifier
	Extractor      ports.SlotExtractor
	Resolver       ports.KnowledgeResolver
	Renderer       ports.CommandRenderer
	Selector       ports.ExecutionSelector
	Cache          ports.CacheRepository
	Learning       ports.LearningStore
	Hooks          ports.HookEngine
	Prompter       ports.ConfirmationPrompter
	Logger         ports.Logger
}

// Run processes a single natural-language request. Recoverable outcomes
// (unrecognized query, ambiguity, missing confirmation) come back as statuses
// with suggestions, not as errors; the error return is reserved for genuine
// infrastructure failures and context cancellation.
func (s *Service) Run(req domain.QueryRequest) (domain.PipelineResult, error) {
	if s.ConfigProvider == nil || s.Classifier == nil || s.Extractor == nil ||
		s.Resolver == nil || s.Renderer == nil || s.Selector == nil || s.Logger == nil {
		return domain.PipelineResult{}, errors.New("pipeline.Service dependencies not satisfied")
	}

	ctx := req.Context
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		return domain.PipelineResult{}, fmt.Errorf("load config: %w", err)
	}

	raw := req.Text
	if s.Hooks != nil {
		raw = s.Hooks.PreIntent(ctx, raw)
	}

	query := domain.Query{
		Raw:        req.Text,
		Normalized: domain.Normalize(raw),
		ReceivedAt: time.Now(),
	}
	result := domain.PipelineResult{Query: query}

	intents := s.Classifier.Classify(query.Normalized)
	if len(intents) == 0 {
		result.Status = domain.StatusUnrecognized
		result.Suggestions = unrecognizedSuggestions(s.Classifier.Verbs())
		s.record(req, query, domain.IntentUnknown, "", "", domain.OutcomeFailed)
		return result, nil
	}

	intent := intents[0]
	result.Intent = &intent
	s.Logger.Debug("intent classified", map[string]interface{}{
		"kind":       string(intent.Kind),
		"pattern":    intent.PatternID,
		"confidence": intent.Confidence,
	})

	op, ok := operationFor(intent.Kind)
	if !ok {
		result.Status = domain.StatusUnrecognized
		result.Suggestions = unrecognizedSuggestions(s.Classifier.Verbs())
		s.record(req, query, intent.Kind, "", "", domain.OutcomeFailed)
		return result, nil
	}

	slots := s.Extractor.Extract(query.Normalized, intent.Span)
	slotText := firstSlotText(slots)

	var targets []domain.KnowledgeEntry
	if needsTargets(op) {
		if len(slots) == 0 {
			result.Status = domain.StatusNotFound
			result.Suggestions = []string{fmt.Sprintf("name a package, e.g. %q", string(op)+" firefox")}
			s.record(req, query, intent.Kind, "", "", domain.OutcomeNotFound)
			return result, nil
		}
		targets = make([]domain.KnowledgeEntry, len(slots))
		g, gctx := errgroup.WithContext(ctx)
		for i, slot := range slots {
			i, slot := i, slot
			g.Go(func() error {
				res, err := s.Resolver.Resolve(gctx, slot.Text, req.Caller)
				if err != nil {
					return err
				}
				targets[i] = res.Entry
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return s.resolutionFailure(req, query, intent, slotText, result, err)
		}
	}

	plan, ok := buildPlan(intent, slots, targets, req, cfg.Preferences)
	if !ok {
		result.Status = domain.StatusUnrecognized
		result.Suggestions = unrecognizedSuggestions(s.Classifier.Verbs())
		s.record(req, query, intent.Kind, slotText, "", domain.OutcomeFailed)
		return result, nil
	}

	if s.Hooks != nil {
		outcome := s.Hooks.PreExecute(ctx, plan)
		if outcome.Veto {
			result.Plan = &plan
			result.Status = domain.StatusError
			result.Suggestions = []string{"blocked by plugin: " + outcome.Reason}
			s.record(req, query, intent.Kind, slotText, firstTargetName(plan), domain.OutcomeFailed)
			return result, nil
		}
		plan = outcome.Plan
	}

	rendered := s.Renderer.Render(plan)
	result.Plan = &plan
	result.RenderedCommand = rendered

	if cached, ok := s.cachedView(plan, query, intent.Kind); ok {
		result.Status = domain.StatusSuccess
		result.FromCache = true
		result.Busy = s.Selector.MutationInFlight()
		result.ExecutionResult = &cached.Result
		result.RenderedCommand = cached.Rendered
		s.record(req, query, intent.Kind, slotText, firstTargetName(plan), domain.OutcomeSuccess)
		return result, nil
	}

	if err := gate(plan, rendered, req.ConfirmToken, s.Prompter); err != nil {
		var confirm *domain.ConfirmationRequiredError
		if errors.As(err, &confirm) {
			result.Status = domain.StatusConfirmationRequired
			result.Suggestions = []string{err.Error()}
			s.record(req, query, intent.Kind, slotText, firstTargetName(plan), domain.OutcomeUnconfirmed)
			return result, nil
		}
		result.Status = domain.StatusError
		return result, fmt.Errorf("confirmation prompt: %w", err)
	}

	if plan.DryRun {
		preview := domain.ExecutionResult{
			Tier:       domain.TierManual,
			Ran:        false,
			Unexecuted: true,
			Output:     s.Renderer.Instruction(plan),
			FinishedAt: time.Now(),
		}
		result.Status = domain.StatusSuccess
		result.ExecutionResult = &preview
		if s.Hooks != nil {
			result.Annotations = s.Hooks.PostExecute(ctx, plan, preview)
		}
		s.record(req, query, intent.Kind, slotText, firstTargetName(plan), domain.OutcomePreviewed)
		return result, nil
	}

	if plan.Operation.Mutating() && s.Selector.MutationInFlight() {
		result.Status = domain.StatusError
		result.Busy = true
		result.Suggestions = []string{"another change is already in progress; try again in a moment"}
		s.record(req, query, intent.Kind, slotText, firstTargetName(plan), domain.OutcomeFailed)
		return result, nil
	}

	execResult, err := s.Selector.Execute(ctx, plan)
	result.ExecutionResult = &execResult
	if err != nil {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		result.Status = domain.StatusError
		result.Suggestions = append([]string{err.Error()}, s.errorSuggestions(ctx, plan, err)...)
		s.record(req, query, intent.Kind, slotText, firstTargetName(plan), domain.OutcomeFailed)
		return result, nil
	}

	result.Status = domain.StatusSuccess
	if s.Hooks != nil {
		result.Annotations = s.Hooks.PostExecute(ctx, plan, execResult)
	}
	s.storeInCache(plan, query, intent.Kind, rendered, execResult)
	s.record(req, query, intent.Kind, slotText, firstTargetName(plan), domain.OutcomeSuccess)
	return result, nil
}

// resolutionFailure turns resolver errors into their recoverable statuses.
func (s *Service) resolutionFailure(
	req domain.QueryRequest,
	query domain.Query,
	intent domain.Intent,
	slotText string,
	result domain.PipelineResult,
	err error,
) (domain.PipelineResult, error) {
	var ambiguous *domain.DisambiguationError
	if errors.As(err, &ambiguous) {
		result.Status = domain.StatusDisambiguationRequired
		result.Candidates = ambiguous.Candidates
		result.Suggestions = candidateSuggestions(intent.Kind, ambiguous.Candidates)
		s.record(req, query, intent.Kind, ambiguous.Slot, "", domain.OutcomeAmbiguous)
		return result, nil
	}
	var notFound *domain.NotFoundError
	if errors.As(err, &notFound) {
		result.Status = domain.StatusNotFound
		result.Suggestions = notFound.Suggestions
		s.record(req, query, intent.Kind, notFound.Slot, "", domain.OutcomeNotFound)
		return result, nil
	}
	result.Status = domain.StatusError
	return result, fmt.Errorf("resolve %q: %w", slotText, err)
}

// cachedView serves a prior result for safe, executable plans. The entry must
// match both the intent kind and the plan's free-text argument; a stale entry
// written under different semantics never leaks through.
func (s *Service) cachedView(plan domain.CommandPlan, query domain.Query, kind domain.IntentKind) (domain.CacheEntry, bool) {
	if s.Cache == nil || plan.Operation.Mutating() || plan.DryRun {
		return domain.CacheEntry{}, false
	}
	entry, ok, err := s.Cache.Get(s.Cache.Key(query.Normalized, kind))
	if err != nil {
		s.Logger.Warn("cache read failed", map[string]interface{}{"error": err.Error()})
		return domain.CacheEntry{}, false
	}
	if !ok || entry.Intent != kind || entry.Entity != plan.Query {
		return domain.CacheEntry{}, false
	}
	return entry, true
}

func (s *Service) storeInCache(plan domain.CommandPlan, query domain.Query, kind domain.IntentKind, rendered string, res domain.ExecutionResult) {
	if s.Cache == nil || plan.Operation.Mutating() || !res.Ran {
		return
	}
	entry := domain.CacheEntry{
		Key:       s.Cache.Key(query.Normalized, kind),
		Intent:    kind,
		Entity:    plan.Query,
		Result:    res,
		Rendered:  rendered,
		CreatedAt: time.Now(),
	}
	if err := s.Cache.Set(entry); err != nil {
		s.Logger.Warn("cache write failed", map[string]interface{}{"error": err.Error()})
	}
}

func (s *Service) errorSuggestions(ctx context.Context, plan domain.CommandPlan, failure error) []string {
	if s.Hooks == nil {
		return nil
	}
	return s.Hooks.OnError(ctx, plan, failure)
}

// record appends exactly one learning entry per completed run.
func (s *Service) record(req domain.QueryRequest, query domain.Query, kind domain.IntentKind, slot, entity string, outcome domain.LearningOutcome) {
	if s.Learning == nil {
		return
	}
	err := s.Learning.Append(domain.LearningRecord{
		Caller:  req.Caller,
		Query:   query.Normalized,
		Intent:  kind,
		Slot:    slot,
		Entity:  entity,
		Outcome: outcome,
	})
	if err != nil {
		s.Logger.Warn("learning append failed", map[string]interface{}{"error": err.Error()})
	}
}

func unrecognizedSuggestions(verbs []string) []string {
	if len(verbs) == 0 {
		return []string{`try: "install firefox"`}
	}
	return []string{"try one of: " + strings.Join(verbs, ", ")}
}

func candidateSuggestions(kind domain.IntentKind, candidates []domain.KnowledgeEntry) []string {
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		hint := c.Name
		if c.Description != "" {
			hint += " (" + c.Description + ")"
		}
		out = append(out, fmt.Sprintf("%s %s", kind, hint))
	}
	return out
}

func firstSlotText(slots []domain.Slot) string {
	if len(slots) == 0 {
		return ""
	}
	return slots[0].Text
}

func firstTargetName(plan domain.CommandPlan) string {
	if len(plan.Targets) == 0 {
		return ""
	}
	return plan.Targets[0].Name
}
