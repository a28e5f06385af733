package middlewares

const (
	CtxRequestID = "request_id"

	ctxKindKey   = "auth.kind"
	ctxUserKey   = "auth.user"
	ctxVendorKey = "auth.vendor"
)
