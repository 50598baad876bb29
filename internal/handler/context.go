package handler

type ctxKey string

const (
	SubCtxKey  ctxKey = "sub"
	StudentCtx ctxKey = "student"
	ProjectCtx ctxKey = "project"
	RunCtx     ctxKey = "run"
)
