package alexa

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/mkieser/alexactl/internal/sync"
	"github.com/mkieser/alexactl/internal/transport"
)

// Verification is the outcome of a post-mutation existence check.
// Deletions in particular are only provisional on a 2xx: the remote
// directory is eventually consistent, so confirmation requires a
// follow-up read.
type Verification int

const (
	// VerifyConfirmed means the remote state matches the mutation.
	VerifyConfirmed Verification = iota

	// VerifyPending means the remote has not caught up yet; the
	// operation is retried as a consistency failure.
	VerifyPending

	// VerifyFailed means the check itself could not be performed.
	VerifyFailed
)

const (
	mutateTimeout = 10 * time.Second
	checkTimeout  = 10 * time.Second

	// maxAttempts is the retry budget per operation. Persistent 4xx
	// responses are retried too: the remote API is eventually
	// consistent and a 400 can resolve itself within the budget.
	maxAttempts = 3

	baseDelay = 1 * time.Second
	maxDelay  = 10 * time.Second
)

// Executor applies mutating operations against the remote directory.
//
// Every operation follows the same envelope: dry-run short circuit,
// bounded-timeout HTTP call, optional post-condition verification, and
// exponential backoff across a fixed retry budget. Exhausting the budget
// surfaces a structured error; it never panics and never aborts sibling
// items in a batch.
type Executor struct {
	sender    transport.Sender
	endpoints Endpoints
	headers   map[string]string
	run       sync.RunContext
	log       *slog.Logger

	// sleep is swapped out in tests so retry backoff does not stall
	// the suite.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewExecutor creates an executor honoring the run context's dry-run and
// do-not-delete switches.
func NewExecutor(s transport.Sender, endpoints Endpoints, headers map[string]string, run sync.RunContext, log *slog.Logger) *Executor {
	if log == nil {
		log = slog.Default()
	}
	return &Executor{
		sender:    s,
		endpoints: endpoints,
		headers:   headers,
		run:       run,
		log:       log,
		sleep:     sleepContext,
	}
}

// DeleteEntity removes one entity. Success is confirmed only once the
// existence check reports the entity gone; a 2xx on the DELETE alone is
// provisional.
func (e *Executor) DeleteEntity(ctx context.Context, entity Entity) error {
	url := e.endpoints.DeleteEntity(entity.DeleteID)
	if e.run.DryRun {
		e.log.Info("dry-run: would delete entity",
			"run_id", e.run.RunID, "entity_id", entity.ID, "display_name", entity.DisplayName, "url", url)
		return nil
	}
	if e.run.DoNotDelete {
		e.log.Info("do-not-delete active, skipping entity deletion",
			"run_id", e.run.RunID, "entity_id", entity.ID, "display_name", entity.DisplayName)
		return nil
	}
	return e.do(ctx, "delete entity", entity.ID, transport.Request{
		Method:  "DELETE",
		URL:     url,
		Headers: e.headers,
		Timeout: mutateTimeout,
	}, func(ctx context.Context) Verification {
		return e.checkEntityDeleted(ctx, entity.ID)
	})
}

// CreateGroup creates a group from its full payload.
func (e *Executor) CreateGroup(ctx context.Context, group Group) error {
	if e.run.DryRun {
		e.log.Info("dry-run: would create group",
			"run_id", e.run.RunID, "name", group.Name, "appliance_ids", group.ApplianceIDs, "url", e.endpoints.Groups())
		return nil
	}
	body, err := json.Marshal(group)
	if err != nil {
		return sync.NewOpError(sync.CodeConfiguration, "create group", group.Name, err)
	}
	return e.do(ctx, "create group", group.Name, transport.Request{
		Method:  "POST",
		URL:     e.endpoints.Groups(),
		Headers: e.headers,
		Body:    body,
		Timeout: mutateTimeout,
	}, nil)
}

// UpdateGroup replaces a group via PUT. The payload must carry every
// remote-required field; partial payloads are rejected, which is why the
// caller round-trips the fetched group rather than building a fresh one.
func (e *Executor) UpdateGroup(ctx context.Context, group Group) error {
	url := e.endpoints.Group(group.ID)
	if e.run.DryRun {
		e.log.Info("dry-run: would update group",
			"run_id", e.run.RunID, "group_id", group.ID, "name", group.Name, "appliance_ids", group.ApplianceIDs, "url", url)
		return nil
	}
	body, err := json.Marshal(group)
	if err != nil {
		return sync.NewOpError(sync.CodeConfiguration, "update group", group.Name, err)
	}
	return e.do(ctx, "update group", group.Name, transport.Request{
		Method:  "PUT",
		URL:     url,
		Headers: e.headers,
		Body:    body,
		Timeout: mutateTimeout,
	}, nil)
}

// DeleteGroup removes one group.
func (e *Executor) DeleteGroup(ctx context.Context, group Group) error {
	url := e.endpoints.Group(group.ID)
	if e.run.DryRun {
		e.log.Info("dry-run: would delete group",
			"run_id", e.run.RunID, "group_id", group.ID, "name", group.Name, "url", url)
		return nil
	}
	if e.run.DoNotDelete {
		e.log.Info("do-not-delete active, skipping group deletion",
			"run_id", e.run.RunID, "group_id", group.ID, "name", group.Name)
		return nil
	}
	return e.do(ctx, "delete group", group.Name, transport.Request{
		Method:  "DELETE",
		URL:     url,
		Headers: e.headers,
		Timeout: mutateTimeout,
	}, nil)
}

// do runs the retry envelope around one mutating call. verify, when
// non-nil, must report VerifyConfirmed before a 2xx counts as success;
// anything else is retried as an eventual-consistency failure.
func (e *Executor) do(ctx context.Context, op, target string, req transport.Request, verify func(context.Context) Verification) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			if err := e.sleep(ctx, backoffDelay(attempt-1)); err != nil {
				return sync.NewOpError(sync.CodeCancelled, op, target, err)
			}
		}

		resp, err := e.sender.Send(ctx, req)
		if err != nil {
			lastErr = sync.NewOpError(sync.CodeTransient, op, target, err)
			e.log.Warn("operation failed, will retry",
				"run_id", e.run.RunID, "op", op, "target", target, "attempt", attempt, "error", err)
			continue
		}
		if !resp.OK() {
			lastErr = sync.NewOpError(sync.CodeTransient, op, target,
				fmt.Errorf("status %d: %s", resp.StatusCode, bodyPrefix(resp.Body)))
			e.log.Warn("operation rejected, will retry",
				"run_id", e.run.RunID, "op", op, "target", target, "attempt", attempt, "status", resp.StatusCode)
			continue
		}

		if verify == nil {
			return nil
		}
		switch verify(ctx) {
		case VerifyConfirmed:
			return nil
		case VerifyPending:
			lastErr = sync.NewOpError(sync.CodeInconsistent, op, target,
				fmt.Errorf("accepted but not yet visible on re-query"))
			e.log.Warn("operation accepted but unconfirmed, will retry",
				"run_id", e.run.RunID, "op", op, "target", target, "attempt", attempt)
		default:
			lastErr = sync.NewOpError(sync.CodeTransient, op, target,
				fmt.Errorf("existence check failed"))
			e.log.Warn("existence check failed, will retry",
				"run_id", e.run.RunID, "op", op, "target", target, "attempt", attempt)
		}
	}
	return lastErr
}

// checkEntityDeleted confirms a deletion by re-querying the entity and
// expecting a 404.
func (e *Executor) checkEntityDeleted(ctx context.Context, entityID string) Verification {
	resp, err := e.sender.Send(ctx, transport.Request{
		Method:  "GET",
		URL:     e.endpoints.EntityCheck(entityID),
		Headers: e.headers,
		Timeout: checkTimeout,
	})
	if err != nil {
		return VerifyFailed
	}
	if resp.StatusCode == 404 {
		return VerifyConfirmed
	}
	return VerifyPending
}

func backoffDelay(retries int) time.Duration {
	d := baseDelay << (retries - 1)
	if d > maxDelay {
		return maxDelay
	}
	return d
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
