package core

import (
	"context"
	"wafconsole/logger"
	"wafconsole/models"
	"wafconsole/wafclient"

	"github.com/google/uuid"
)

// ApplyStrategyAnnotation materializes policy through ingress annotations.
// It is the only strategy the console issues.
const ApplyStrategyAnnotation = "annotation"

// SaveState tags how far a save got. The backend models mode, exceptions
// and custom rules as three separate resources, so a create is a sequence
// of calls that can stop partway; the tag tells the caller exactly which
// partial state the backend was left in.
type SaveState string

const (
	// SaveCreated: all attempted creation steps succeeded.
	SaveCreated SaveState = "created"
	// SaveCreatedModeOnly: mode was written but a later step failed. The
	// policy exists; exceptions and rules need a manual retry.
	SaveCreatedModeOnly SaveState = "created_mode_only"
	// SaveCreatedModeAndExceptions: mode and exceptions were written but
	// the rules step failed.
	SaveCreatedModeAndExceptions SaveState = "created_mode_and_exceptions"
	// SaveUpdated: the single-call update succeeded.
	SaveUpdated SaveState = "updated"
	// SaveFailed: nothing usable was written (validation failure, or the
	// very first backend call failed).
	SaveFailed SaveState = "failed"
)

// SaveOutcome is the result of one save invocation. Err is nil only for
// SaveCreated and SaveUpdated; FailedStep names the mutation step that
// stopped the sequence, empty for validation failures.
type SaveOutcome struct {
	State      SaveState
	FailedStep string
	Err        error
}

// Sequencer orders the backend calls needed to save a policy draft. Steps
// run strictly sequentially: a later step is only issued after the previous
// response is observed, because it is meaningless unless the policy from
// step one exists. Every step is a single attempt with no rollback of
// earlier steps -- a mode-only policy is valid, if incomplete, backend
// state, and the operator retries the failed sub-resource manually.
type Sequencer struct {
	client wafclient.API
	store  *Store
}

// NewSequencer wires the sequencer to the backend client and the store it
// refreshes after each save attempt.
func NewSequencer(client wafclient.API, store *Store) *Sequencer {
	return &Sequencer{client: client, store: store}
}

// refreshStatus re-fetches backend truth so displayed state never reflects
// the optimistic draft. Runs after every save attempt, success or not.
func (q *Sequencer) refreshStatus(ctx context.Context) {
	if err := q.store.FetchStatus(ctx); err != nil {
		logger.Error("Sequencer: post-save status refresh failed: %v", err)
	}
}

// assignProvisionalRuleIDs gives id-less custom rules a client-generated
// identifier. The backend may replace these on its side.
func assignProvisionalRuleIDs(rules []models.CustomRule) {
	for i := range rules {
		if rules[i].ID == "" {
			rules[i].ID = uuid.New().String()
		}
	}
}

// SavePolicy applies a draft. For a new policy this is the ordered creation
// protocol (mode, then exceptions if any, then rules if any); for an
// existing policy only the mode endpoint is called -- exceptions and rules
// have their own independent operations. The draft is discarded by the
// caller regardless of outcome; nothing is queued for a later retry.
func (q *Sequencer) SavePolicy(ctx context.Context, draft models.PolicyDraft, existing bool) SaveOutcome {
	if err := draft.Validate(); err != nil {
		// Validation failures never reach the network and trigger no
		// refresh: the backend was not touched.
		return SaveOutcome{State: SaveFailed, Err: err}
	}
	defer q.refreshStatus(ctx)

	enableCRS := draft.EnableCRS
	modeReq := wafclient.ModeRequest{Host: draft.Host, Mode: draft.Mode, EnableCRS: &enableCRS}
	if err := q.client.SetMode(ctx, modeReq); err != nil {
		logger.Error("Sequencer: mode step failed for host %q: %v", draft.Host, err)
		return SaveOutcome{State: SaveFailed, FailedStep: wafclient.StepMode, Err: err}
	}

	if existing {
		return SaveOutcome{State: SaveUpdated}
	}

	wroteExceptions := false
	if draft.Exceptions.HasEntries() {
		excReq := wafclient.ExceptionsRequest{
			Host:         draft.Host,
			Paths:        draft.Exceptions.Paths,
			Methods:      draft.Exceptions.Methods,
			IPAllow:      draft.Exceptions.IPAllow,
			HeadersAllow: draft.Exceptions.HeadersAllow,
			Enabled:      true,
		}
		if err := q.client.SetExceptions(ctx, excReq); err != nil {
			logger.Error("Sequencer: exceptions step failed for host %q: %v", draft.Host, err)
			return SaveOutcome{State: SaveCreatedModeOnly, FailedStep: wafclient.StepExceptions, Err: err}
		}
		wroteExceptions = true
	}

	if len(draft.CustomRules) > 0 {
		assignProvisionalRuleIDs(draft.CustomRules)
		rulesReq := wafclient.RulesRequest{Host: draft.Host, Rules: draft.CustomRules}
		if err := q.client.SetRules(ctx, rulesReq); err != nil {
			logger.Error("Sequencer: rules step failed for host %q: %v", draft.Host, err)
			state := SaveCreatedModeOnly
			if wroteExceptions {
				state = SaveCreatedModeAndExceptions
			}
			return SaveOutcome{State: state, FailedStep: wafclient.StepRules, Err: err}
		}
	}

	return SaveOutcome{State: SaveCreated}
}

// UpdateExceptions replaces the exception object for an existing policy.
// Invoked independently of save, from the per-exception edit controls.
func (q *Sequencer) UpdateExceptions(ctx context.Context, host string, exceptions models.WAFExceptions) error {
	req := wafclient.ExceptionsRequest{
		Host:         host,
		Paths:        exceptions.Paths,
		Methods:      exceptions.Methods,
		IPAllow:      exceptions.IPAllow,
		HeadersAllow: exceptions.HeadersAllow,
		Enabled:      true,
	}
	err := q.client.SetExceptions(ctx, req)
	q.refreshStatus(ctx)
	return err
}

// UpdateRules replaces the custom rule list for an existing policy.
func (q *Sequencer) UpdateRules(ctx context.Context, host string, rules []models.CustomRule) error {
	assignProvisionalRuleIDs(rules)
	err := q.client.SetRules(ctx, wafclient.RulesRequest{Host: host, Rules: rules})
	q.refreshStatus(ctx)
	return err
}

// Apply pushes the saved policy for host into active enforcement. Always a
// separate action after a successful save; unsaved drafts are never
// applied.
func (q *Sequencer) Apply(ctx context.Context, host string) error {
	return q.client.Apply(ctx, wafclient.ApplyRequest{Host: host, Strategy: ApplyStrategyAnnotation})
}
