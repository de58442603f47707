// Package memory keeps profiles in memory, for tests and for sessions run
// with persistence disabled.
package memory

import (
	"github.com/viant/guidebook/model"
	"github.com/viant/guidebook/service/dao"
	"github.com/viant/guidebook/service/dao/store"
)

type Service struct {
	*store.MemoryStore[string, model.Profile]
}

var _ dao.Service[string, model.Profile] = (*Service)(nil)

func New() *Service {
	return &Service{MemoryStore: store.NewMemoryStore[string, model.Profile](
		func(p *model.Profile) string { return p.Name },
		func(p *model.Profile) *model.Profile { return p.Clone() },
	)}
}
