// Package service implements the organization, invitation and membership
// operations on top of the store. Every mutation that changes seat usage
// runs inside a single store transaction.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/aussiebroadwan/tenancy/internal/orgs/domain"
	"github.com/aussiebroadwan/tenancy/internal/orgs/metrics"
	"github.com/aussiebroadwan/tenancy/internal/orgs/store"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ErrValidation is matched by every *ValidationError.
var ErrValidation = errors.New("validation failed")

// ValidationError lists the offending fields and the rule each one broke.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for f, rule := range e.Fields {
		parts = append(parts, f+": "+rule)
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

var validate = validator.New(validator.WithRequiredStructEnabled())

func init() {
	// Report JSON field names rather than Go field names.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
}

// validateParams runs struct tag validation and converts failures to a
// *ValidationError.
func validateParams(params any) error {
	err := validate.Struct(params)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		fields[fe.Field()] = rule
	}
	return &ValidationError{Fields: fields}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// appendEvent writes an outbox row inside tx.
func appendEvent(ctx context.Context, tx store.Tx, now time.Time, typ domain.EventType, orgID string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", typ, err)
	}
	// Version 7 ids sort by creation; delivery order falls back on them.
	id, err := uuid.NewV7()
	if err != nil {
		return err
	}
	return tx.Events().AppendEvent(ctx, domain.Event{
		ID:             id.String(),
		Type:           typ,
		OrganizationID: orgID,
		Payload:        body,
		CreatedAt:      now,
	})
}

// record counts an operation outcome and returns err unchanged.
func record(m *metrics.Metrics, op string, err error) error {
	switch {
	case err == nil:
		m.Operation(op, "ok")
	case errors.Is(err, domain.ErrConflict):
		m.Conflict()
		m.Operation(op, "conflict")
	default:
		m.Operation(op, "rejected")
	}
	return err
}

// seatConflict maps a seat CAS miss to the error callers understand.
func seatConflict(err error) error {
	switch {
	case errors.Is(err, store.ErrStale):
		return domain.ErrConflict
	case errors.Is(err, store.ErrNoCapacity):
		return domain.ErrSeatsExhausted
	}
	return err
}
