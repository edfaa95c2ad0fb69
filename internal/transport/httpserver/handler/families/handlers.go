package families

import (
	familydomain "koffa/internal/domain/family"
	invitationdomain "koffa/internal/domain/invitation"
	settingsdomain "koffa/internal/domain/settings"
	"koffa/pkg/logger"
)

type Handlers struct {
	Families    *familydomain.Service
	Invitations *invitationdomain.Service
	Settings    *settingsdomain.Service
	log         logger.Logger
}

func New(families *familydomain.Service, invitations *invitationdomain.Service, settings *settingsdomain.Service, log logger.Logger) *Handlers {
	return &Handlers{
		Families:    families,
		Invitations: invitations,
		Settings:    settings,
		log:         log,
	}
}
