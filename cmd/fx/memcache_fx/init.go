package memcache_fx

import (
	"go.uber.org/fx"
	mem "quizsolver/pkg/memcache"
)

var Module = fx.Provide(provideTaskResultStore)

func provideTaskResultStore() mem.TaskResultStore {
	return mem.NewTaskResults()
}
