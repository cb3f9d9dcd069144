// Annolytics - Annotation Analytics and Growth Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/annolytics

package validation

import (
	"strings"
	"testing"
)

type rangeRequest struct {
	Start string `validate:"required,dateonly"`
	End   string `validate:"required,dateonly"`
}

type classCheckpointRequest struct {
	ClassName string `validate:"required"`
	Modality  string `validate:"required,modality"`
}

func TestValidateStructDateonly(t *testing.T) {
	tests := []struct {
		name    string
		req     rangeRequest
		wantErr bool
	}{
		{
			name: "valid range",
			req:  rangeRequest{Start: "2026-08-01", End: "2026-08-31"},
		},
		{
			name:    "missing start",
			req:     rangeRequest{End: "2026-08-31"},
			wantErr: true,
		},
		{
			name:    "timestamp instead of date",
			req:     rangeRequest{Start: "2026-08-01T00:00:00Z", End: "2026-08-31"},
			wantErr: true,
		},
		{
			name:    "not a date at all",
			req:     rangeRequest{Start: "yesterday", End: "2026-08-31"},
			wantErr: true,
		},
		{
			name:    "month out of range",
			req:     rangeRequest{Start: "2026-13-01", End: "2026-08-31"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.req)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateStruct() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateStructModality(t *testing.T) {
	tests := []struct {
		name     string
		modality string
		wantErr  bool
	}{
		{name: "opg", modality: "OPG"},
		{name: "bitewing", modality: "Bitewing"},
		{name: "iopa", modality: "IOPA"},
		{name: "others", modality: "Others"},
		{name: "lowercase rejected", modality: "opg", wantErr: true},
		{name: "unknown rejected", modality: "CBCT", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := classCheckpointRequest{ClassName: "cavity", Modality: tt.modality}
			err := ValidateStruct(&req)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateStruct() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestToAPIError(t *testing.T) {
	req := rangeRequest{}
	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("expected validation error")
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Code = %q, want VALIDATION_ERROR", apiErr.Code)
	}
	if !strings.Contains(apiErr.Message, "Start") || !strings.Contains(apiErr.Message, "End") {
		t.Errorf("Message %q should name both failing fields", apiErr.Message)
	}
	if apiErr.Details == nil {
		t.Error("Details should list failing fields")
	}
}
