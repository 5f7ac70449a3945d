package fieldpath

import (
	"errors"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		wantKinds []SegmentKind
		wantErr   bool
		errIndex  int
	}{
		{
			name:      "single field",
			path:      "field_test1",
			wantKinds: []SegmentKind{SegmentName},
		},
		{
			name:      "delta and keyword",
			path:      "field_test_ref1.0.entity.field_test_text.value",
			wantKinds: []SegmentKind{SegmentName, SegmentDelta, SegmentKeyword, SegmentName, SegmentName},
		},
		{
			name:      "leading underscore and digits in name",
			path:      "_private.field2",
			wantKinds: []SegmentKind{SegmentName, SegmentName},
		},
		{
			name:     "empty path",
			path:     "",
			wantErr:  true,
			errIndex: 0,
		},
		{
			name:     "invalid characters",
			path:     "host.fail!!.deep",
			wantErr:  true,
			errIndex: 1,
		},
		{
			name:     "empty segment",
			path:     "a..b",
			wantErr:  true,
			errIndex: 1,
		},
		{
			name:     "name starting with digit",
			path:     "1abc",
			wantErr:  true,
			errIndex: 0,
		},
		{
			name:     "delta overflow",
			path:     "ref.99999999999999999999999",
			wantErr:  true,
			errIndex: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Tokenize(tt.path)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Tokenize(%q) expected error", tt.path)
				}
				if !errors.Is(err, ErrInvalidPathSyntax) {
					t.Errorf("error = %v, want ErrInvalidPathSyntax", err)
				}
				var perr *Error
				if errors.As(err, &perr) && perr.Index != tt.errIndex {
					t.Errorf("Index = %d, want %d", perr.Index, tt.errIndex)
				}
				return
			}
			if err != nil {
				t.Fatalf("Tokenize(%q) error = %v", tt.path, err)
			}
			if len(got) != len(tt.wantKinds) {
				t.Fatalf("len(segments) = %d, want %d", len(got), len(tt.wantKinds))
			}
			for i, seg := range got {
				if seg.Kind != tt.wantKinds[i] {
					t.Errorf("segment %d kind = %s, want %s", i, seg.Kind, tt.wantKinds[i])
				}
			}
		})
	}
}

func TestSplit_KeepsInvalidSegments(t *testing.T) {
	got, err := Split("host.fail!!.deep")
	if err != nil {
		t.Fatalf("Split error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len(segments) = %d, want 3", len(got))
	}
	if got[1].Kind != SegmentInvalid {
		t.Errorf("segment 1 kind = %s, want invalid", got[1].Kind)
	}
}

func TestSplit_Delta(t *testing.T) {
	got, err := Split("ref.12")
	if err != nil {
		t.Fatalf("Split error = %v", err)
	}
	if got[1].Kind != SegmentDelta || got[1].Delta != 12 {
		t.Errorf("segment 1 = %+v, want delta 12", got[1])
	}
}

func TestJoin(t *testing.T) {
	path := "field_test_ref1.0.entity.field_test_text"
	segments, err := Tokenize(path)
	if err != nil {
		t.Fatalf("Tokenize error = %v", err)
	}
	if got := Join(segments); got != path {
		t.Errorf("Join() = %q, want %q", got, path)
	}
}
