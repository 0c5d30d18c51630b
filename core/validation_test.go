package core

import (
	"errors"
	"testing"
)

func TestValidateAuthor(t *testing.T) {
	tests := []struct {
		name    string
		author  *Author
		wantErr error
	}{
		{
			name:    "valid author",
			author:  &Author{Id: 1, Name: "Clement of Rome", IsSaint: true},
			wantErr: nil,
		},
		{
			name:    "valid author without flags",
			author:  &Author{Name: "Tertullian"},
			wantErr: nil,
		},
		{
			name:    "nil author",
			author:  nil,
			wantErr: ErrInvalidAuthor,
		},
		{
			name:    "empty name",
			author:  &Author{Id: 2},
			wantErr: ErrEmptyName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAuthor(tt.author)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateAuthor() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateAuthor() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateWork(t *testing.T) {
	tests := []struct {
		name    string
		work    *Work
		wantErr error
	}{
		{
			name:    "valid work",
			work:    &Work{Id: 1, AuthorId: 1, Title: "First Epistle to the Corinthians", URL: "https://example.org/clement/1"},
			wantErr: nil,
		},
		{
			name:    "valid work without URL",
			work:    &Work{AuthorId: 2, Title: "Confessions"},
			wantErr: nil,
		},
		{
			name:    "nil work",
			work:    nil,
			wantErr: ErrInvalidWork,
		},
		{
			name:    "empty title",
			work:    &Work{AuthorId: 1},
			wantErr: ErrEmptyTitle,
		},
		{
			name:    "missing author reference",
			work:    &Work{Title: "On the Incarnation"},
			wantErr: ErrMissingAuthorRef,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateWork(tt.work)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateWork() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateWork() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateChapter(t *testing.T) {
	tests := []struct {
		name    string
		chapter *Chapter
		wantErr error
	}{
		{
			name:    "valid chapter",
			chapter: &Chapter{Id: 1, WorkId: 1, Number: 1, Title: "Salutation", Content: "The Church of God which sojourneth at Rome."},
			wantErr: nil,
		},
		{
			name:    "valid untitled chapter",
			chapter: &Chapter{WorkId: 3, Number: 0, Content: "Prefatory remarks."},
			wantErr: nil,
		},
		{
			name:    "nil chapter",
			chapter: nil,
			wantErr: ErrInvalidChapter,
		},
		{
			name:    "empty content",
			chapter: &Chapter{WorkId: 1, Number: 2},
			wantErr: ErrEmptyContent,
		},
		{
			name:    "missing work reference",
			chapter: &Chapter{Number: 1, Content: "Text without a home."},
			wantErr: ErrMissingWorkRef,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateChapter(tt.chapter)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateChapter() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateChapter() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
