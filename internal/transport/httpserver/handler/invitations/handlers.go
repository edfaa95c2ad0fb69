package invitations

import (
	invitationdomain "koffa/internal/domain/invitation"
	"koffa/pkg/logger"
)

type Handlers struct {
	Invitations *invitationdomain.Service
	log         logger.Logger
}

func New(invitations *invitationdomain.Service, log logger.Logger) *Handlers {
	return &Handlers{
		Invitations: invitations,
		log:         log,
	}
}
