package main

import (
	"context"

	"github.com/looplab/fsm"
)

const (
	identityUnresolved = "unresolved"
	identityLoading    = "loading"
	identityResolved   = "resolved"
	identityCleared    = "cleared"

	eventValidate = "validate"
	eventSucceed  = "succeed"
	eventFail     = "fail"
	eventLogout   = "logout"
)

// Identity is who the current request is authenticated as. It starts
// unresolved, is loading while the backend validates the session, and ends
// either resolved (with a username) or cleared. A username is held only in
// the resolved state.
type Identity struct {
	state    *fsm.FSM
	username string
}

// NewIdentity returns an unresolved identity.
func NewIdentity() *Identity {
	id := &Identity{}
	id.state = fsm.NewFSM(
		identityUnresolved,
		fsm.Events{
			{Name: eventValidate, Src: []string{identityUnresolved, identityResolved, identityCleared}, Dst: identityLoading},
			{Name: eventSucceed, Src: []string{identityLoading}, Dst: identityResolved},
			{Name: eventFail, Src: []string{identityLoading}, Dst: identityCleared},
			{Name: eventLogout, Src: []string{identityUnresolved, identityLoading, identityResolved}, Dst: identityCleared},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				if e.Dst == identityResolved && len(e.Args) > 0 {
					id.username, _ = e.Args[0].(string)
					return
				}
				id.username = ""
			},
		},
	)
	return id
}

// State returns one of the identity* states.
func (id *Identity) State() string {
	return id.state.Current()
}

// Username is "" unless the identity is resolved.
func (id *Identity) Username() string {
	return id.username
}

func (id *Identity) IsResolved() bool {
	return id.state.Current() == identityResolved
}

// BeginValidation moves to loading.
func (id *Identity) BeginValidation(ctx context.Context) error {
	return id.state.Event(ctx, eventValidate)
}

// Resolve ends a validation successfully.
func (id *Identity) Resolve(ctx context.Context, username string) error {
	if username == "" {
		return id.state.Event(ctx, eventFail)
	}
	return id.state.Event(ctx, eventSucceed, username)
}

// Fail ends a validation without a user.
func (id *Identity) Fail(ctx context.Context) error {
	return id.state.Event(ctx, eventFail)
}

// Clear drops the username, e.g. on logout. Clearing a cleared identity is a
// no-op.
func (id *Identity) Clear(ctx context.Context) error {
	if id.state.Current() == identityCleared {
		return nil
	}
	return id.state.Event(ctx, eventLogout)
}
