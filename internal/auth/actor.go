/*-------------------------------------------------------------------------
 *
 * actor.go
 *    Actor model for the Loanzaar workflow server
 *
 * Defines the two workflow roles and the Actor identity threaded through
 * every workflow call. Identity verification itself is handled by the
 * upstream identity provider; the workflow treats the resolved actor as
 * trusted input.
 *
 * Copyright (c) 2024-2026, Loanzaar <support@loanzaar.in>
 *
 * IDENTIFICATION
 *    internal/auth/actor.go
 *
 *-------------------------------------------------------------------------
 */

package auth

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

/* Role is a workflow role */
type Role string

const (
	RoleAgent Role = "agent"
	RoleAdmin Role = "admin"
)

/* IsValid returns true if the role is known */
func (r Role) IsValid() bool {
	return r == RoleAgent || r == RoleAdmin
}

/* String returns the string representation of the role */
func (r Role) String() string {
	return string(r)
}

/* Actor is the authenticated caller of a workflow operation */
type Actor struct {
	ID   uuid.UUID
	Role Role
}

type contextKey string

const actorContextKey contextKey = "actor"

/* WithActor stores the actor in the context */
func WithActor(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, actorContextKey, actor)
}

/* ActorFromContext gets the actor from context */
func ActorFromContext(ctx context.Context) (*Actor, bool) {
	actor, ok := ctx.Value(actorContextKey).(*Actor)
	return actor, ok
}

/* MustActorFromContext gets the actor from context or returns an error */
func MustActorFromContext(ctx context.Context) (*Actor, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return nil, fmt.Errorf("actor not found in context: authentication required")
	}
	return actor, nil
}
