package alerts

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forumkit/alertkit/pkg/alerttypes"
)

func TestAlertDedupKey(t *testing.T) {
	t.Parallel()

	a := NewAlert(7, alerttypes.AlertType{ID: 3, Code: "mention"}, 42)
	assert.Equal(t, "mention_7_42", a.DedupKey())
}

func TestAlertSetFromUser(t *testing.T) {
	t.Parallel()

	a := NewAlert(1, alerttypes.NewAlertType("pm"), 9)
	require.Zero(t, a.FromUserID)

	a.SetFromUser(&User{ID: 12, Username: "bob"})
	assert.Equal(t, int64(12), a.FromUserID)
	assert.Equal(t, "bob", a.FromUser.Username)
}

func TestAlertRecord(t *testing.T) {
	t.Parallel()

	t.Run("serializes details", func(t *testing.T) {
		t.Parallel()

		a := NewAlertWithDetails(7, alerttypes.AlertType{ID: 3, Code: "quoted"}, 42,
			map[string]any{"tid": 11})
		r := a.record()

		assert.Equal(t, int64(7), r.UserID)
		assert.Equal(t, int64(3), r.TypeID)
		assert.JSONEq(t, `{"tid":11}`, r.ExtraDetails)
		assert.True(t, r.Unread)
	})

	t.Run("empty details become empty document", func(t *testing.T) {
		t.Parallel()

		a := NewAlert(7, alerttypes.AlertType{ID: 3, Code: "quoted"}, 42)
		assert.Equal(t, "{}", a.record().ExtraDetails)
	})

	t.Run("unserializable details degrade to empty document", func(t *testing.T) {
		t.Parallel()

		a := NewAlertWithDetails(7, alerttypes.AlertType{ID: 3, Code: "quoted"}, 42,
			map[string]any{"bad": math.NaN()})
		assert.Equal(t, "{}", a.record().ExtraDetails)
	})

	t.Run("preserves timestamps", func(t *testing.T) {
		t.Parallel()

		ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		a := NewAlert(7, alerttypes.AlertType{ID: 3, Code: "pm"}, 42)
		a.CreatedAt = ts
		assert.Equal(t, ts, a.record().CreatedAt)
	})
}

func TestDetailInt64(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   any
		want int64
		ok   bool
	}{
		{name: "int64", in: int64(42), want: 42, ok: true},
		{name: "int", in: 42, want: 42, ok: true},
		{name: "float64 from json", in: float64(42), want: 42, ok: true},
		{name: "numeric string", in: "42", want: 42, ok: true},
		{name: "garbage string", in: "forty-two", ok: false},
		{name: "nil", in: nil, ok: false},
		{name: "bool", in: true, ok: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := detailInt64(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestParseDisabledTypes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want []int64
	}{
		{name: "empty", raw: "", want: nil},
		{name: "valid list", raw: "[1,3,5]", want: []int64{1, 3, 5}},
		{name: "empty list", raw: "[]", want: []int64{}},
		{name: "malformed fails open", raw: "{not json", want: nil},
		{name: "wrong shape fails open", raw: `{"a":1}`, want: nil},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, parseDisabledTypes(tt.raw))
		})
	}
}
