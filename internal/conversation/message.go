package conversation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/oggyb/muzz-chat/internal/db"
	svcErr "github.com/oggyb/muzz-chat/internal/errors"
	"github.com/oggyb/muzz-chat/internal/gateway"
)

const defaultMaxLength = 2000

var validate = validator.New()

// CleanContent trims content and checks it is non-empty and at most maxLen
// characters. maxLen <= 0 means no limit.
func CleanContent(content string, maxLen int) (string, error) {
	text := strings.TrimSpace(content)
	rule := "required"
	if maxLen > 0 {
		rule = fmt.Sprintf("required,max=%d", maxLen)
	}
	if err := validate.Var(text, rule); err != nil {
		if fe, ok := err.(validator.ValidationErrors); ok && len(fe) > 0 && fe[0].Tag() == "required" {
			return "", svcErr.Validation("content", "must not be empty")
		}
		return "", svcErr.Validation("content", fmt.Sprintf("must be at most %d characters", maxLen))
	}
	return text, nil
}

// Post stores one message from sender to receiver. content must already be
// clean. The id is generated here, so a copy kept by the sender and the
// store's echo share it.
func Post(ctx context.Context, gw *gateway.Gateway, senderID, receiverID uint64, content string) (db.Message, error) {
	msg := db.Message{
		ID:         uuid.NewString(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		// stored precision
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	out, err := gateway.Insert(ctx, gw, db.TableMessages, msg)
	if err != nil {
		return db.Message{}, fmt.Errorf("send message: %w", err)
	}
	return out[0], nil
}

// History lists every message between a and b in either direction, oldest
// first.
func History(ctx context.Context, gw *gateway.Gateway, a, b uint64) ([]db.Message, error) {
	return gateway.Select[db.Message](ctx, gw, gateway.Query{
		Table:   db.TableMessages,
		Where:   []gateway.Filter{pairFilter(a, b)},
		OrderBy: "created_at",
	})
}

// pairFilter matches messages between a and b, whoever sent them.
func pairFilter(a, b uint64) gateway.Filter {
	return gateway.Or(
		gateway.And(gateway.Eq("sender_id", a), gateway.Eq("receiver_id", b)),
		gateway.And(gateway.Eq("sender_id", b), gateway.Eq("receiver_id", a)),
	)
}
