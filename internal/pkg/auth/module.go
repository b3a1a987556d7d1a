package auth

import (
	"go.uber.org/fx"

	"github.com/ntroshin/orderflow/internal/config"
)

// Module provides authentication primitives via fx.
var Module = fx.Options(
	fx.Provide(newTokenStrategy),
	fx.Provide(newActionSigner),
	fx.Provide(newInternalCredential),
)

type params struct {
	fx.In

	Config *config.Config
}

func newTokenStrategy(p params) Strategy {
	return NewHMACStrategy(p.Config.AuthTokenSecret, Options{})
}

func newActionSigner(p params) *ActionSigner {
	return NewActionSigner(p.Config.ApprovalSecret)
}

func newInternalCredential(p params) CredentialVerifier {
	return NewBcryptCredential(p.Config.InternalTokenHash)
}
