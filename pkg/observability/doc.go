/*
Package observability provides lifecycle hooks for monitoring the cado engine.

Hooks returned by this package plug into cado.WithLifecycleHooks and can be
combined with domain.LifecycleHooks.Merge:

	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)
	hooks := metrics.Hooks().Merge(observability.LogHooks(logger))
	eng := cado.New(nb, cado.WithLifecycleHooks(hooks))
*/
package observability
