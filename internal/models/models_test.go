package models

import (
	"encoding/json"
	"testing"
)

func TestID(t *testing.T) {
	t.Run("UnmarshalJSON", func(t *testing.T) {
		tc := []struct {
			name    string
			input   string
			want    ID
			wantErr bool
		}{
			{name: "number", input: `7`, want: "7"},
			{name: "string", input: `"65f1c0ffee"`, want: "65f1c0ffee"},
			{name: "null", input: `null`, want: ""},
			{name: "integral float", input: `7.0`, want: "7"},
			{name: "exponent", input: `7e0`, want: "7"},
			{name: "fraction", input: `7.5`, want: "7.5"},
			{name: "string keeps leading zeros", input: `"007"`, want: "007"},
			{name: "bool", input: `true`, wantErr: true},
			{name: "object", input: `{}`, wantErr: true},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				var id ID
				err := json.Unmarshal([]byte(tt.input), &id)
				if (err != nil) != tt.wantErr {
					t.Fatalf("Unmarshal(%s) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				}
				if !tt.wantErr && id != tt.want {
					t.Errorf("Unmarshal(%s) = %q, want %q", tt.input, id, tt.want)
				}
			})
		}
	})

	t.Run("MarshalJSON keeps numeric ids numeric", func(t *testing.T) {
		data, err := json.Marshal(User{ID: "7", Email: "a@b.com", Name: "A"})
		if err != nil {
			t.Fatalf("Marshal() error = %v", err)
		}
		if string(data) != `{"id":7,"email":"a@b.com","name":"A"}` {
			t.Errorf("unexpected JSON: %s", data)
		}

		data, _ = json.Marshal(ID("abc"))
		if string(data) != `"abc"` {
			t.Errorf("expected string id, got %s", data)
		}
	})

	t.Run("non-canonical numeric strings stay strings", func(t *testing.T) {
		for _, id := range []ID{"007", "+7", "-0"} {
			data, err := json.Marshal(User{ID: id})
			if err != nil {
				t.Fatalf("Marshal(%q) error = %v", id, err)
			}

			var back User
			if err := json.Unmarshal(data, &back); err != nil {
				t.Fatalf("Unmarshal(%s) error = %v", data, err)
			}
			if back.ID != id {
				t.Errorf("round trip of %q gave %q", id, back.ID)
			}
		}

		data, _ := json.Marshal(ID("-7"))
		if string(data) != `-7` {
			t.Errorf("expected canonical negative id to stay numeric, got %s", data)
		}
	})

	t.Run("Truthy", func(t *testing.T) {
		for id, want := range map[ID]bool{"": false, "0": false, "7": true, "abc": true} {
			if got := id.Truthy(); got != want {
				t.Errorf("ID(%q).Truthy() = %v, want %v", id, got, want)
			}
		}
	})

	t.Run("ImageKey", func(t *testing.T) {
		if got := ImageKey("42"); got != "movieImage_42" {
			t.Errorf("ImageKey() = %s", got)
		}
	})
}

func TestSession(t *testing.T) {
	if (Session{}).Authenticated() {
		t.Error("empty session should not be authenticated")
	}
	if !(Session{Token: "T1", User: &User{ID: "7"}}).Authenticated() {
		t.Error("session with token should be authenticated")
	}
}

func TestAuthResultValidate(t *testing.T) {
	tc := []struct {
		name    string
		result  *AuthResult
		wantErr bool
	}{
		{name: "valid", result: &AuthResult{Token: "T1", User: &User{ID: "7"}}},
		{name: "nil", result: nil, wantErr: true},
		{name: "missing token", result: &AuthResult{User: &User{ID: "7"}}, wantErr: true},
		{name: "missing user", result: &AuthResult{Token: "T1"}, wantErr: true},
		{name: "zero user id", result: &AuthResult{Token: "T1", User: &User{ID: "0"}}, wantErr: true},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.result.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseMovieType(t *testing.T) {
	tc := []struct {
		input   string
		want    MovieType
		wantErr bool
	}{
		{input: "Movie", want: TypeMovie},
		{input: "film", want: TypeMovie},
		{input: "TV Show", want: TypeTVShow},
		{input: "tvshow", want: TypeTVShow},
		{input: "tv", want: TypeTVShow},
		{input: "podcast", wantErr: true},
	}

	for _, tt := range tc {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseMovieType(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMovieType(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseMovieType(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestMovieFields(t *testing.T) {
	t.Run("Set and Get", func(t *testing.T) {
		f := NewMovieFields()
		if f.Type != TypeMovie {
			t.Errorf("expected default type Movie, got %q", f.Type)
		}

		if err := f.Set(FieldType, "tv show"); err != nil {
			t.Fatalf("Set(type) error = %v", err)
		}
		if err := f.Set(FieldTitle, "Dune"); err != nil {
			t.Fatalf("Set(title) error = %v", err)
		}
		if v, _ := f.Get(FieldTitle); v != "Dune" {
			t.Errorf("Get(title) = %q", v)
		}
		if f.Type != TypeTVShow {
			t.Errorf("expected TV Show, got %q", f.Type)
		}
		if err := f.Set("rating", "5"); err == nil {
			t.Error("expected error for unknown field")
		}
		if err := f.Set(FieldType, "podcast"); err == nil {
			t.Error("expected error for unknown type")
		}
	})

	t.Run("Validate", func(t *testing.T) {
		f := MovieFields{Title: "Dune", Type: TypeMovie, Director: "Villeneuve", Budget: "$165M", Location: "Jordan", Duration: "155 min", Year: "2021"}
		if err := f.Validate(); err != nil {
			t.Errorf("expected valid fields, got %v", err)
		}

		f.Year = "  "
		if err := f.Validate(); err == nil {
			t.Error("expected blank year to be rejected")
		}

		f.Year = "2021"
		f.Type = "Anime"
		if err := f.Validate(); err == nil {
			t.Error("expected unknown type to be rejected")
		}
	})

	t.Run("Fields drops id and image", func(t *testing.T) {
		m := Movie{ID: "1", Title: "Dune", Type: TypeMovie, Image: "https://img"}
		data, _ := json.Marshal(m.Fields())
		var raw map[string]any
		json.Unmarshal(data, &raw)
		if _, ok := raw["id"]; ok {
			t.Error("fields payload must not include id")
		}
		if _, ok := raw["image"]; ok {
			t.Error("fields payload must not include image")
		}
		if raw["title"] != "Dune" {
			t.Errorf("unexpected payload: %s", data)
		}
	})
}

func TestListQuery(t *testing.T) {
	q := ListQuery{Page: 3, PageSize: 10, Search: "old"}

	searched := q.WithSearch("Inception")
	if searched.Page != 1 || searched.Search != "Inception" {
		t.Errorf("WithSearch() = %+v", searched)
	}

	if next := searched.Next(); next.Page != 2 {
		t.Errorf("Next() page = %d", next.Page)
	}

	v := searched.Values()
	if v.Get("page") != "1" || v.Get("limit") != "10" || v.Get("search") != "Inception" {
		t.Errorf("Values() = %v", v)
	}

	if got := (ListQuery{PageSize: 10}).Values().Get("page"); got != "1" {
		t.Errorf("expected page to clamp to 1, got %s", got)
	}
}
