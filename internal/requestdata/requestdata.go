package requestdata

import "context"

type requestDataKey struct{}

// RequestData carries the already-authenticated actor identity for one
// request. Identity arrives from the outer auth layer (JWT claims or trusted
// headers); the governance core never issues or verifies credentials itself.
type RequestData struct {
	UserID  string
	Role    string
	IsAdmin bool
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	if rd, ok := ctx.Value(requestDataKey{}).(*RequestData); ok {
		return rd
	}
	return nil
}
