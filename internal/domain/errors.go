package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Sentinel errors for coordination and migration operations
var (
	// ErrUnauthorized is returned when the caller lacks the role an operation requires
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotAProxy is returned when admin queries against an address fail entirely
	ErrNotAProxy = errors.New("not a proxy")

	// ErrNotAdminOwner is returned when the coordinator does not own the proxy admin
	ErrNotAdminOwner = errors.New("coordinator is not the proxy admin owner")

	// ErrNotContractOwner is returned when the coordinator does not own the proxied contract
	ErrNotContractOwner = errors.New("coordinator is not the contract owner")

	// ErrDuplicateContractID is returned when adopting an id that is already registered
	ErrDuplicateContractID = errors.New("duplicate contract id")

	// ErrNotAdopted is returned when an operation references an id that was never adopted
	ErrNotAdopted = errors.New("contract not adopted")

	// ErrNothingPending is returned when withdrawing an id without a staged change
	ErrNothingPending = errors.New("no pending change")

	// ErrNothingToCommit is returned when committing an empty change set
	ErrNothingToCommit = errors.New("no pending changes to commit")

	// ErrStaleNonce is returned when the caller's observed nonce is no longer current
	ErrStaleNonce = errors.New("stale upgrade nonce")

	// ErrLayoutIncompatible is returned when storage layouts are not compatible
	ErrLayoutIncompatible = errors.New("storage layout incompatible")

	// ErrOwnerChanged is returned when the contract owner differs across an implementation swap
	ErrOwnerChanged = errors.New("contract owner changed")

	// ErrUnhandledStorageType is returned when a set-like storage type has no registered encoding
	ErrUnhandledStorageType = errors.New("unhandled storage type")

	// ErrTransientRPC marks node-level failures that are safe to retry
	ErrTransientRPC = errors.New("transient rpc error")

	// ErrNotInitialized is returned when the coordinator state has not been created yet
	ErrNotInitialized = errors.New("coordinator not initialized")

	// ErrCallReverted is returned when a call inside a batch reverts
	ErrCallReverted = errors.New("call reverted")

	// ErrNotForkNetwork is returned when a fork-only facility is pointed at a non-dev node
	ErrNotForkNetwork = errors.New("network is not a local fork")
)

// AuthorizationError reports a caller acting outside its role.
type AuthorizationError struct {
	ContractID string
	Caller     string
	Operation  string
	Required   string
}

func (e *AuthorizationError) Error() string {
	target := ""
	if e.ContractID != "" {
		target = fmt.Sprintf(" on %s", e.ContractID)
	}
	return fmt.Sprintf("%s%s: caller %s is not %s", e.Operation, target, e.Caller, e.Required)
}

func (e *AuthorizationError) Unwrap() error { return ErrUnauthorized }

// RegistrationError reports a failed adoption precondition.
type RegistrationError struct {
	ContractID string
	Reason     error
	Detail     string
}

func (e *RegistrationError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("adopt %s: %v (%s)", e.ContractID, e.Reason, e.Detail)
	}
	return fmt.Sprintf("adopt %s: %v", e.ContractID, e.Reason)
}

func (e *RegistrationError) Unwrap() error { return e.Reason }

// StateMismatchError reports observed state that no longer matches what an operation expected.
// It must abort any in-flight migration.
type StateMismatchError struct {
	ContractID string
	Reason     error
	Expected   string
	Actual     string
}

func (e *StateMismatchError) Error() string {
	msg := e.Reason.Error()
	if e.ContractID != "" {
		msg = fmt.Sprintf("%s: %s", e.ContractID, msg)
	}
	if e.Expected != "" || e.Actual != "" {
		msg = fmt.Sprintf("%s: expected %s, got %s", msg, e.Expected, e.Actual)
	}
	return msg
}

func (e *StateMismatchError) Unwrap() error { return e.Reason }

// TransientRPCError wraps a node-level failure that may succeed on retry.
type TransientRPCError struct {
	Method string
	Err    error
}

func (e *TransientRPCError) Error() string {
	if e.Method != "" {
		return fmt.Sprintf("transient rpc error in %s: %v", e.Method, e.Err)
	}
	return fmt.Sprintf("transient rpc error: %v", e.Err)
}

func (e *TransientRPCError) Unwrap() []error { return []error{ErrTransientRPC, e.Err} }

// FatalMigrationError aborts an entire migration or verification run.
type FatalMigrationError struct {
	ContractID string
	Step       string
	Err        error
	// Unhandled lists storage types that had no registered handler.
	Unhandled []string
}

func (e *FatalMigrationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "migration of %s aborted", e.ContractID)
	if e.Step != "" {
		fmt.Fprintf(&b, " at %s", e.Step)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if len(e.Unhandled) > 0 {
		fmt.Fprintf(&b, "\nunhandled storage types:\n  - %s", strings.Join(e.Unhandled, "\n  - "))
	}
	return b.String()
}

func (e *FatalMigrationError) Unwrap() error { return e.Err }

// UnconfirmedTxError reports a transaction that was broadcast but whose
// outcome could not be read. It is never transient: the transaction may
// still be mined, so it must not be sent again.
type UnconfirmedTxError struct {
	TxHash common.Hash
	Err    error
}

func (e *UnconfirmedTxError) Error() string {
	return fmt.Sprintf("transaction %s was broadcast but not confirmed: %v", e.TxHash.Hex(), e.Err)
}

func (e *UnconfirmedTxError) Unwrap() error { return e.Err }

// CallRevertedError reports the call that reverted a batch. Nothing in the
// batch was applied.
type CallRevertedError struct {
	Index       int
	ContractID  string
	Description string
	Reason      string
}

func (e *CallRevertedError) Error() string {
	target := e.Description
	if e.ContractID != "" {
		target = fmt.Sprintf("%s (%s)", e.ContractID, e.Description)
	}
	if e.Reason != "" {
		return fmt.Sprintf("call #%d %s reverted: %s", e.Index, target, e.Reason)
	}
	return fmt.Sprintf("call #%d %s reverted", e.Index, target)
}

func (e *CallRevertedError) Unwrap() error { return ErrCallReverted }

// IsTransient reports whether err belongs to the retryable RPC error class.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransientRPC)
}
