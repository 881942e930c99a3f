package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func validParams() GenerationParams {
	return GenerationParams{Name: "Ana", Age: 30, Content: "a garden"}
}

func TestNewFutureViewing(t *testing.T) {
	t.Parallel()

	fv, err := NewFutureViewing(validParams())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if fv.ID == uuid.Nil {
		t.Error("Expected non-nil UUID, got nil UUID")
	}

	if fv.Status != ViewingStatusPending {
		t.Errorf("Expected status %s, got %s", ViewingStatusPending, fv.Status)
	}

	if fv.ImageURL != nil {
		t.Errorf("Expected nil image URL, got %q", *fv.ImageURL)
	}

	if fv.CreatedAt.IsZero() {
		t.Error("Expected non-zero CreatedAt time")
	}

	if fv.Params() != validParams() {
		t.Errorf("Expected params %+v, got %+v", validParams(), fv.Params())
	}
}

func TestGenerationParamsValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(p *GenerationParams)
		wantErr error
	}{
		{"valid", func(p *GenerationParams) {}, nil},
		{"blank name", func(p *GenerationParams) { p.Name = "  " }, ErrEmptyName},
		{"long name", func(p *GenerationParams) { p.Name = strings.Repeat("n", MaxNameLength+1) }, ErrNameTooLong},
		{"name at limit", func(p *GenerationParams) { p.Name = strings.Repeat("ñ", MaxNameLength) }, nil},
		{"negative age", func(p *GenerationParams) { p.Age = -1 }, ErrInvalidAge},
		{"age too high", func(p *GenerationParams) { p.Age = MaxAge + 1 }, ErrInvalidAge},
		{"empty content", func(p *GenerationParams) { p.Content = "" }, ErrEmptyContent},
		{"long content", func(p *GenerationParams) { p.Content = strings.Repeat("c", MaxContentLength+1) }, ErrContentTooLong},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := validParams()
			tt.mutate(&p)
			err := p.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestFutureViewingValidate(t *testing.T) {
	t.Parallel()

	fv, err := NewFutureViewing(validParams())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	url := "/static/images/x.png"
	fv.ImageURL = &url
	if err := fv.Validate(); !errors.Is(err, ErrImageURLWithoutDone) {
		t.Errorf("Expected %v for image URL on pending viewing, got %v", ErrImageURLWithoutDone, err)
	}

	fv.Status = ViewingStatusCompleted
	if err := fv.Validate(); err != nil {
		t.Errorf("Expected completed viewing with image to be valid, got %v", err)
	}

	fv.Status = "DONE"
	if err := fv.Validate(); !errors.Is(err, ErrInvalidViewingStatus) {
		t.Errorf("Expected %v, got %v", ErrInvalidViewingStatus, err)
	}

	fv.ID = uuid.Nil
	if err := fv.Validate(); !errors.Is(err, ErrEmptyViewingID) {
		t.Errorf("Expected %v, got %v", ErrEmptyViewingID, err)
	}
}

func TestViewingStatusIsTerminal(t *testing.T) {
	t.Parallel()

	if ViewingStatusPending.IsTerminal() {
		t.Error("PENDING must not be terminal")
	}
	if !ViewingStatusCompleted.IsTerminal() || !ViewingStatusFailed.IsTerminal() {
		t.Error("COMPLETED and FAILED must be terminal")
	}
}

func TestIsValidationError(t *testing.T) {
	t.Parallel()

	if !IsValidationError(ErrNameTooLong) {
		t.Error("Expected ErrNameTooLong to be a validation error")
	}
	if IsValidationError(errors.New("boom")) {
		t.Error("Expected arbitrary error not to be a validation error")
	}
}
