// Airlog - Radio Program Activity Analytics and Live Notifications
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/airlog

package validation

import (
	"strings"
	"testing"
)

type recordEventRequest struct {
	Kind       string `validate:"required,oneof=download upload"`
	ActorID    string `validate:"required"`
	EntityType string `validate:"required,entity_type"`
	Outcome    string `validate:"required,outcome"`
	SizeBytes  int64  `validate:"gte=0"`
}

func TestValidateStructPasses(t *testing.T) {
	req := recordEventRequest{
		Kind:       "download",
		ActorID:    "u1",
		EntityType: "episode",
		Outcome:    "completed",
		SizeBytes:  1024,
	}

	if err := ValidateStruct(&req); err != nil {
		t.Errorf("expected pass, got %v", err)
	}
}

func TestValidateStructFailures(t *testing.T) {
	tests := []struct {
		name      string
		req       recordEventRequest
		wantField string
	}{
		{
			name: "missing actor",
			req: recordEventRequest{
				Kind: "download", EntityType: "episode", Outcome: "completed",
			},
			wantField: "ActorID",
		},
		{
			name: "invalid entity type",
			req: recordEventRequest{
				Kind: "download", ActorID: "u1", EntityType: "galaxy", Outcome: "completed",
			},
			wantField: "EntityType",
		},
		{
			name: "invalid outcome",
			req: recordEventRequest{
				Kind: "upload", ActorID: "u1", EntityType: "script", Outcome: "vanished",
			},
			wantField: "Outcome",
		},
		{
			name: "negative size",
			req: recordEventRequest{
				Kind: "upload", ActorID: "u1", EntityType: "script", Outcome: "completed",
				SizeBytes: -1,
			},
			wantField: "SizeBytes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.req)
			if err == nil {
				t.Fatal("expected validation failure")
			}
			if len(err.Errors()) != 1 {
				t.Fatalf("got %d errors, want 1: %v", len(err.Errors()), err)
			}
			if got := err.Errors()[0].Field(); got != tt.wantField {
				t.Errorf("failed field = %q, want %q", got, tt.wantField)
			}
		})
	}
}

func TestValidateStructRoleValidator(t *testing.T) {
	type req struct {
		Role string `validate:"required,role"`
	}

	if err := ValidateStruct(&req{Role: "organizer"}); err != nil {
		t.Errorf("organizer should be valid: %v", err)
	}
	err := ValidateStruct(&req{Role: "superuser"})
	if err == nil {
		t.Fatal("superuser should fail")
	}
	if !strings.Contains(err.Error(), "valid role") {
		t.Errorf("message = %q, want role message", err.Error())
	}
}
