package validators

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

type sample struct {
	MeetAt   string `validate:"iso8601"`
	Category string `validate:"category"`
	Handle   string `validate:"nospaces"`
	Title    string `validate:"notblank"`
	Status   string `validate:"gathstatus"`
}

func valid() sample {
	return sample{
		MeetAt:   "2026-05-01T19:00:00+09:00",
		Category: "workout",
		Handle:   "mina_k",
		Title:    "Evening run",
		Status:   "recruiting",
	}
}

func TestCustomTags(t *testing.T) {
	validate := validator.New()
	Register(validate)

	tests := []struct {
		name   string
		mutate func(s *sample)
		field  string
	}{
		{name: "valid", mutate: func(*sample) {}},
		{name: "date only", mutate: func(s *sample) { s.MeetAt = "2026-05-01" }, field: "MeetAt"},
		{name: "unknown category", mutate: func(s *sample) { s.Category = "karaoke-battle" }, field: "Category"},
		{name: "space in handle", mutate: func(s *sample) { s.Handle = "mina k" }, field: "Handle"},
		{name: "blank title", mutate: func(s *sample) { s.Title = "   " }, field: "Title"},
		{name: "bad status", mutate: func(s *sample) { s.Status = "done" }, field: "Status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.mutate(&s)
			err := validate.Struct(s)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}

			var verrs validator.ValidationErrors
			if assert.ErrorAs(t, err, &verrs) {
				assert.Len(t, verrs, 1)
				assert.Equal(t, tt.field, verrs[0].Field())
			}
		})
	}
}
