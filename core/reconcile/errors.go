package reconcile

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration reports missing wiring, unknown options or a same-provider reconciliation.
	ErrConfiguration = errors.New("configuration error")
	// ErrSchemaViolation reports a canonical table that breaks the position schema.
	ErrSchemaViolation = errors.New("schema violation")
	// ErrJoinIntegrity reports a duplicate (account_id, identifier) key inside one side of a match pass.
	ErrJoinIntegrity = errors.New("join integrity error")
	// ErrTransport reports a failed raw byte read or identifier lookup.
	ErrTransport = errors.New("transport error")
	// ErrUnknownProvider reports a provider label with no registered adapter.
	ErrUnknownProvider = errors.New("unknown provider")
)

// SchemaViolationError names the offending column and row of a canonical table.
type SchemaViolationError struct {
	Provider string
	Column   string
	Row      int
	Reason   string
}

func (e *SchemaViolationError) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("schema violation in %s: column %q row %d: %s", e.Provider, e.Column, e.Row, e.Reason)
	}
	return fmt.Sprintf("schema violation: column %q row %d: %s", e.Column, e.Row, e.Reason)
}

func (e *SchemaViolationError) Unwrap() error {
	return ErrSchemaViolation
}

// JoinIntegrityError reports the key that appeared twice on one side of a 1:1 join.
type JoinIntegrityError struct {
	Provider   string
	Identifier Identifier
	AccountID  string
	Value      string
}

func (e *JoinIntegrityError) Error() string {
	return fmt.Sprintf("join integrity error: %s has duplicate key (account_id=%q, %s=%q)",
		e.Provider, e.AccountID, e.Identifier, e.Value)
}

func (e *JoinIntegrityError) Unwrap() error {
	return ErrJoinIntegrity
}

// Transport marks a collaborator failure as a transport error.
func Transport(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrTransport, op, err)
}
