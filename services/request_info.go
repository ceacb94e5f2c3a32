package services

import "context"

type keyType string

const requestInfoKey keyType = "requestInfo"

// RequestInfo identifies who triggered an admin action, for the action log.
type RequestInfo struct {
	RequestID  string
	RemoteAddr string
}

// WithRequestInfo adds request metadata to the context
func WithRequestInfo(ctx context.Context, info RequestInfo) context.Context {
	return context.WithValue(ctx, requestInfoKey, info)
}

// RequestInfoFrom returns the metadata stored by WithRequestInfo, or the zero value.
func RequestInfoFrom(ctx context.Context) RequestInfo {
	info, _ := ctx.Value(requestInfoKey).(RequestInfo)
	return info
}
