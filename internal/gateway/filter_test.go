package gateway_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oggyb/muzz-chat/internal/gateway"
)

func decode(t *testing.T, s string) gateway.Row {
	t.Helper()
	var row gateway.Row
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	if err := dec.Decode(&row); err != nil {
		t.Fatalf("decode %q: %v", s, err)
	}
	return row
}

func TestFilter_Match(t *testing.T) {
	row := decode(t, `{"sender_id":12,"receiver_id":7,"content":"hi","gender":"male"}`)

	tests := []struct {
		name   string
		filter gateway.Filter
		want   bool
	}{
		{"eq number", gateway.Eq("sender_id", uint64(12)), true},
		{"eq mismatch", gateway.Eq("sender_id", uint64(7)), false},
		{"eq missing column", gateway.Eq("nope", 1), false},
		{"eq string", gateway.Eq("gender", "male"), true},
		{"in", gateway.In("receiver_id", []uint64{1, 7}), true},
		{"in empty", gateway.In("receiver_id", []uint64{}), false},
		{"not in", gateway.NotIn("receiver_id", []uint64{1, 2}), true},
		{"not in hit", gateway.NotIn("receiver_id", []uint64{7}), false},
		{"not in empty", gateway.NotIn("receiver_id", []uint64(nil)), true},
		{"and", gateway.And(gateway.Eq("sender_id", 12), gateway.Eq("receiver_id", 7)), true},
		{"and one false", gateway.And(gateway.Eq("sender_id", 12), gateway.Eq("receiver_id", 8)), false},
		{"or", gateway.Or(gateway.Eq("sender_id", 1), gateway.Eq("receiver_id", 7)), true},
		{"or none", gateway.Or(gateway.Eq("sender_id", 1), gateway.Eq("receiver_id", 1)), false},
		{
			"pair either direction",
			gateway.Or(
				gateway.And(gateway.Eq("sender_id", 7), gateway.Eq("receiver_id", 12)),
				gateway.And(gateway.Eq("sender_id", 12), gateway.Eq("receiver_id", 7)),
			),
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Match(row))
		})
	}
}

func TestFilter_EmptyNotInHasNoExpr(t *testing.T) {
	assert.Nil(t, gateway.NotIn("id", []uint64{}).Expr())
	assert.NotNil(t, gateway.NotIn("id", []uint64{1}).Expr())
	assert.Nil(t, gateway.Or(gateway.NotIn("id", []uint64{}), gateway.Eq("id", 1)).Expr())
}
