package validation

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type sample struct {
	EventID string   `json:"eventId" validate:"required,objectid"`
	Hobbies []string `json:"hobbies" validate:"dive,hobby"`
	Radius  float64  `form:"radius" validate:"gte=0"`
}

func TestRegister(t *testing.T) {
	v := validator.New()
	Register(v)

	valid := primitive.NewObjectID().Hex()
	tests := []struct {
		name      string
		in        sample
		wantField string
	}{
		{"valid", sample{EventID: valid, Hobbies: []string{"rock climbing", "D&D", "café"}}, ""},
		{"bad object id", sample{EventID: "123"}, "eventId"},
		{"bad hobby", sample{EventID: valid, Hobbies: []string{"<script>"}}, "hobbies[0]"},
		{"leading dash", sample{EventID: valid, Hobbies: []string{"-x"}}, "hobbies[0]"},
		{"form name", sample{EventID: valid, Radius: -1}, "radius"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.in)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Struct() error = %v", err)
				}
				return
			}
			var verrs validator.ValidationErrors
			if !errors.As(err, &verrs) || len(verrs) != 1 {
				t.Fatalf("Struct() error = %v, want one field error", err)
			}
			if verrs[0].Field() != tt.wantField {
				t.Errorf("field = %q, want %q", verrs[0].Field(), tt.wantField)
			}
		})
	}
}
