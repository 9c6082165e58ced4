package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"estately/db"
)

// Entry is one append-only audit record. Detail is marshalled to JSONB.
type Entry struct {
	EntityType string
	EntityID   string
	Action     string
	ActorID    string
	Detail     map[string]any
}

// Append writes an audit entry using the caller's querier, which is
// normally the transaction carrying the state change being recorded.
func Append(ctx context.Context, q db.Querier, e Entry, at time.Time) error {
	detail := e.Detail
	if detail == nil {
		detail = map[string]any{}
	}
	payload, err := json.Marshal(detail)
	if err != nil {
		return fmt.Errorf("audit: marshal detail: %w", err)
	}

	_, err = q.Exec(ctx, `
		INSERT INTO audit_log (entity_type, entity_id, action, actor_id, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, e.EntityType, e.EntityID, e.Action, e.ActorID, payload, at)
	if err != nil {
		return fmt.Errorf("audit: insert entry: %w", err)
	}
	return nil
}
