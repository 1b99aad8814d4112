package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"
)

// WriteOperation replaces the content of one file under the root directory.
// Path is relative to the root and uses forward or OS-native separators.
// Content must be valid UTF-8.
type WriteOperation struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// NewWriteOperation creates a write operation from raw bytes. Bytes that
// are not valid UTF-8 are rejected by Transaction.Validate.
func NewWriteOperation(path string, content []byte) WriteOperation {
	return WriteOperation{Path: path, Content: string(content)}
}

// Bytes returns the payload as a byte slice.
func (o WriteOperation) Bytes() []byte {
	return []byte(o.Content)
}

// UnmarshalJSON requires both path and content and rejects unknown fields.
func (o *WriteOperation) UnmarshalJSON(data []byte) error {
	var raw struct {
		Path    *string `json:"path"`
		Content *string `json:"content"`
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	if raw.Path == nil || raw.Content == nil {
		return fmt.Errorf("%w: operation needs path and content", ErrMalformedEntry)
	}
	o.Path, o.Content = *raw.Path, *raw.Content
	return nil
}

// Transaction is a caller-defined batch of writes. Operations are applied
// in slice order.
type Transaction struct {
	ID         string           `json:"id"`
	Operations []WriteOperation `json:"operations"`
}

// NewTransaction creates a transaction. The operations slice is copied.
func NewTransaction(id string, ops ...WriteOperation) Transaction {
	cp := make([]WriteOperation, len(ops))
	copy(cp, ops)
	return Transaction{ID: id, Operations: cp}
}

// Validate checks that the transaction can be logged and replayed
// byte for byte.
func (t Transaction) Validate() error {
	if t.ID == "" {
		return ErrEmptyTransactionID
	}
	for i, op := range t.Operations {
		if !utf8.ValidString(op.Content) {
			return fmt.Errorf("operation %d (%s): %w", i, op.Path, ErrInvalidContent)
		}
	}
	return nil
}

// WalEntry returns the WAL projection of the transaction.
func (t Transaction) WalEntry() WalEntry {
	return WalEntry{TransactionID: t.ID, Operations: nonNil(t.Operations)}
}

// WalEntry is one line of the write-ahead log. It holds exactly what is
// needed to replay a transaction.
type WalEntry struct {
	TransactionID string           `json:"transaction_id"`
	Operations    []WriteOperation `json:"operations"`
}

// Validate rejects entries that decoded from JSON without their required fields.
func (e WalEntry) Validate() error {
	if e.TransactionID == "" {
		return fmt.Errorf("%w: missing transaction_id", ErrMalformedEntry)
	}
	if e.Operations == nil {
		return fmt.Errorf("%w: missing operations", ErrMalformedEntry)
	}
	return nil
}

// OpsLogEntry is one line of the audit log, written once per committed
// transaction and never rewritten.
type OpsLogEntry struct {
	ID            string           `json:"id"`
	Timestamp     int64            `json:"timestamp"`
	TransactionID string           `json:"transaction_id"`
	Operations    []WriteOperation `json:"operations"`
}

// NewOpsLogEntry creates the audit record of tx.
func NewOpsLogEntry(id string, at time.Time, tx Transaction) OpsLogEntry {
	return OpsLogEntry{
		ID:            id,
		Timestamp:     at.UnixMilli(),
		TransactionID: tx.ID,
		Operations:    nonNil(tx.Operations),
	}
}

// Validate rejects entries that decoded from JSON without their required fields.
func (e OpsLogEntry) Validate() error {
	switch {
	case e.ID == "":
		return fmt.Errorf("%w: missing id", ErrMalformedEntry)
	case e.TransactionID == "":
		return fmt.Errorf("%w: missing transaction_id", ErrMalformedEntry)
	case e.Operations == nil:
		return fmt.Errorf("%w: missing operations", ErrMalformedEntry)
	}
	return nil
}

// Time returns the entry timestamp as a time.Time.
func (e OpsLogEntry) Time() time.Time {
	return time.UnixMilli(e.Timestamp)
}

// nonNil keeps an empty batch serialized as [] rather than null.
func nonNil(ops []WriteOperation) []WriteOperation {
	if ops == nil {
		return []WriteOperation{}
	}
	return ops
}
