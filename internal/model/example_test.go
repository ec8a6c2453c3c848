package model

import (
	"errors"
	"testing"
)

func TestEntitySpanValue(t *testing.T) {
	tests := []struct {
		name string
		span EntitySpan
		text string
		want string
	}{
		{"simple", EntitySpan{Start: 0, End: 2, Entity: "greet"}, "hi there", "hi"},
		{"middle", EntitySpan{Start: 3, End: 8, Entity: "city"}, "to Paris now", "Paris"},
		{"unicode counts runes", EntitySpan{Start: 0, End: 2, Entity: "word"}, "日本語", "日本"},
		{"end beyond text clamps", EntitySpan{Start: 3, End: 50, Entity: "rest"}, "go home", "home"},
		{"negative start clamps", EntitySpan{Start: -2, End: 2, Entity: "w"}, "abcd", "ab"},
		{"inverted range is empty", EntitySpan{Start: 5, End: 2, Entity: "w"}, "abcdef", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.span.Value(tt.text); got != tt.want {
				t.Errorf("Value() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEntitySpanValidate(t *testing.T) {
	tests := []struct {
		name    string
		span    EntitySpan
		text    string
		wantErr bool
	}{
		{"valid", EntitySpan{Start: 0, End: 2, Entity: "w"}, "hi", false},
		{"valid unicode boundary", EntitySpan{Start: 0, End: 3, Entity: "w"}, "日本語", false},
		{"empty span allowed", EntitySpan{Start: 2, End: 2, Entity: "w"}, "hi there", false},
		{"negative start", EntitySpan{Start: -1, End: 2, Entity: "w"}, "hi", true},
		{"end beyond text", EntitySpan{Start: 0, End: 3, Entity: "w"}, "hi", true},
		{"start after end", EntitySpan{Start: 3, End: 1, Entity: "w"}, "hello", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.span.Validate(tt.text)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidEntitySpan) {
				t.Errorf("Validate() error = %v, want ErrInvalidEntitySpan", err)
			}
		})
	}
}

func TestCountEntities(t *testing.T) {
	spans := []EntitySpan{
		{Start: 0, End: 2, Entity: "city"},
		{Start: 5, End: 8, Entity: "city"},
		{Start: 10, End: 12, Entity: "date"},
	}

	counts := CountEntities(spans)
	if counts["city"] != 2 {
		t.Errorf("counts[city] = %d, want 2", counts["city"])
	}
	if counts["date"] != 1 {
		t.Errorf("counts[date] = %d, want 1", counts["date"])
	}
	if len(counts) != 2 {
		t.Errorf("len(counts) = %d, want 2", len(counts))
	}
}

func TestSameEntities(t *testing.T) {
	tests := []struct {
		name string
		a    []EntitySpan
		b    []EntitySpan
		want bool
	}{
		{
			"both empty",
			nil, nil,
			true,
		},
		{
			"same multiset different positions",
			[]EntitySpan{{Start: 0, End: 2, Entity: "city"}, {Start: 5, End: 8, Entity: "date"}},
			[]EntitySpan{{Start: 10, End: 14, Entity: "date"}, {Start: 3, End: 7, Entity: "city"}},
			true,
		},
		{
			"duplicate entity name respected",
			[]EntitySpan{{Entity: "city"}, {Entity: "city"}},
			[]EntitySpan{{Entity: "city"}, {Entity: "city"}},
			true,
		},
		{
			"count mismatch",
			[]EntitySpan{{Entity: "city"}, {Entity: "city"}},
			[]EntitySpan{{Entity: "city"}, {Entity: "date"}},
			false,
		},
		{
			"length mismatch",
			[]EntitySpan{{Entity: "city"}},
			[]EntitySpan{{Entity: "city"}, {Entity: "city"}},
			false,
		},
		{
			"different names",
			[]EntitySpan{{Entity: "city"}},
			[]EntitySpan{{Entity: "date"}},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SameEntities(tt.a, tt.b); got != tt.want {
				t.Errorf("SameEntities() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExampleGetTranslation(t *testing.T) {
	example := &RepositoryExample{
		Version: &RepositoryVersion{Language: "en"},
		Text:    "hello world",
		Translations: []RepositoryTranslation{
			{Language: "pt", Text: "olá mundo"},
		},
	}

	translation, err := example.GetTranslation("pt")
	if err != nil {
		t.Fatalf("GetTranslation(pt) error = %v", err)
	}
	if translation.Text != "olá mundo" {
		t.Errorf("translation text = %q, want %q", translation.Text, "olá mundo")
	}

	if _, err := example.GetTranslation("de"); !errors.Is(err, ErrNoTranslation) {
		t.Errorf("GetTranslation(de) error = %v, want ErrNoTranslation", err)
	}
}

func TestExampleGetText(t *testing.T) {
	example := &RepositoryExample{
		Version: &RepositoryVersion{Language: "en"},
		Text:    "hello",
		Translations: []RepositoryTranslation{
			{Language: "pt", Text: "olá"},
		},
	}

	tests := []struct {
		language string
		want     string
		wantErr  bool
	}{
		{"", "hello", false},
		{"en", "hello", false},
		{"pt", "olá", false},
		{"de", "", true},
	}

	for _, tt := range tests {
		got, err := example.GetText(tt.language)
		if (err != nil) != tt.wantErr {
			t.Errorf("GetText(%q) error = %v, wantErr %v", tt.language, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("GetText(%q) = %q, want %q", tt.language, got, tt.want)
		}
	}
}

func TestExampleHasValidEntities(t *testing.T) {
	example := &RepositoryExample{
		Version: &RepositoryVersion{Language: "en"},
		Text:    "fly to Paris",
		Entities: []ExampleEntity{
			{EntitySpan: EntitySpan{Start: 7, End: 12, Entity: "city"}},
		},
		Translations: []RepositoryTranslation{
			{
				Language: "pt",
				Text:     "voar para Paris",
				Entities: []TranslationEntity{
					{EntitySpan: EntitySpan{Start: 10, End: 15, Entity: "city"}},
				},
			},
			{
				Language: "de",
				Text:     "nach Paris fliegen",
				// 翻译缺少实体标注
			},
		},
	}

	if !example.HasValidEntities("en") {
		t.Error("HasValidEntities(en) = false, want true for own language")
	}
	if !example.HasValidEntities("") {
		t.Error("HasValidEntities(\"\") = false, want true")
	}
	if !example.HasValidEntities("pt") {
		t.Error("HasValidEntities(pt) = false, want true for matching translation")
	}
	if example.HasValidEntities("de") {
		t.Error("HasValidEntities(de) = true, want false for entity mismatch")
	}
	if example.HasValidEntities("ru") {
		t.Error("HasValidEntities(ru) = true, want false for missing translation")
	}
}

func TestExampleToRasaData(t *testing.T) {
	example := &RepositoryExample{
		Version: &RepositoryVersion{Language: "en"},
		Text:    "fly to Paris",
		Intent:  "travel",
		Entities: []ExampleEntity{
			{EntitySpan: EntitySpan{Start: 7, End: 12, Entity: "city"}},
		},
	}

	data, err := example.ToRasaData("en")
	if err != nil {
		t.Fatalf("ToRasaData() error = %v", err)
	}
	if data.Text != "fly to Paris" || data.Intent != "travel" {
		t.Errorf("unexpected payload: %+v", data)
	}
	if len(data.Entities) != 1 {
		t.Fatalf("len(entities) = %d, want 1", len(data.Entities))
	}
	if data.Entities[0].Value != "Paris" {
		t.Errorf("entity value = %q, want %q", data.Entities[0].Value, "Paris")
	}
}

func TestEntityMismatchError(t *testing.T) {
	err := &EntityMismatchError{
		Entities:         map[string]int{"city": 1},
		OriginalEntities: map[string]int{"city": 2},
	}

	if !errors.Is(err, ErrEntityMismatch) {
		t.Error("EntityMismatchError should unwrap to ErrEntityMismatch")
	}
	if err.Error() == "" {
		t.Error("Error() should describe both sides")
	}
}
