package handler

import (
	familydomain "koffa/internal/domain/family"
	invitationdomain "koffa/internal/domain/invitation"
	profiledomain "koffa/internal/domain/profile"
	settingsdomain "koffa/internal/domain/settings"
	commonhandler "koffa/internal/transport/httpserver/handler/common"
	familieshandler "koffa/internal/transport/httpserver/handler/families"
	invitationshandler "koffa/internal/transport/httpserver/handler/invitations"
	"koffa/pkg/logger"
)

type Handlers struct {
	Common      *commonhandler.Handlers
	Families    *familieshandler.Handlers
	Invitations *invitationshandler.Handlers
}

func New(profiles *profiledomain.Service, families *familydomain.Service, invitations *invitationdomain.Service, settings *settingsdomain.Service, log logger.Logger) *Handlers {
	return &Handlers{
		Common:      commonhandler.New(profiles, log),
		Families:    familieshandler.New(families, invitations, settings, log),
		Invitations: invitationshandler.New(invitations, log),
	}
}
