// Package analytics implements the dashboard actions. Every action is a
// Module: it reads the loaded tables from an Env, takes explicit selection
// params and returns a renderable domain.View.
//
// Actions never reload data and never keep per-user state. Models that do
// not depend on the selection (the top-5 classifier and the pit stop
// regressor) are trained once per Env on first use and shared by all
// callers.
//
// Usage:
//
//	env := analytics.NewEnv(tables, cfg.Analytics)
//	action, ok := analytics.Lookup("head-to-head")
//	params := action.Defaults(env)
//	view, err := action.Run(ctx, env, params)
package analytics
