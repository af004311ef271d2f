package wsrouter

import "context"

type ctxKey string

const (
	messageTypeKey ctxKey = "message_type"
	messageIDKey   ctxKey = "message_id"
)

func GetMessageTypeFromCtx(ctx context.Context) string {
	t, _ := ctx.Value(messageTypeKey).(string)
	return t
}

func GetMessageIDFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(messageIDKey).(string)
	return id
}
