package common

import (
	profiledomain "koffa/internal/domain/profile"
	"koffa/pkg/logger"
)

type Handlers struct {
	Profiles *profiledomain.Service
	log      logger.Logger
}

func New(profiles *profiledomain.Service, log logger.Logger) *Handlers {
	return &Handlers{
		Profiles: profiles,
		log:      log,
	}
}
