package guidebook

import "github.com/viant/guidebook/service/meta"

type Option func(s *Service)

// WithMetaService sets the document loader.
func WithMetaService(metaService *meta.Service) Option {
	return func(s *Service) {
		s.metaService = metaService
	}
}
