package auth

import (
	"context"

	"github.com/Abraxas-365/staffhub/pkg/directory"
	"github.com/Abraxas-365/staffhub/pkg/errx"
	"github.com/Abraxas-365/staffhub/pkg/iam"
	"github.com/Abraxas-365/staffhub/pkg/iam/idp"
	"github.com/Abraxas-365/staffhub/pkg/kernel"
)

// AccountResolver asks the identity provider who owns the token and maps the
// email to a local employee or admin.
type AccountResolver struct {
	gateway  idp.Gateway
	accounts directory.AccountFinder
}

func NewAccountResolver(gateway idp.Gateway, accounts directory.AccountFinder) *AccountResolver {
	return &AccountResolver{gateway: gateway, accounts: accounts}
}

var _ PrincipalResolver = (*AccountResolver)(nil)

func (r *AccountResolver) Resolve(ctx context.Context, token *VerifiedToken) (*kernel.AuthContext, error) {
	info, err := r.gateway.GetUser(ctx, token.Raw)
	if err != nil {
		if idp.IsKind(err, idp.KindNotAuthorized) {
			return nil, iam.ErrInvalidToken().WithCause(err)
		}
		return nil, err
	}

	acct, err := r.accounts.FindAccountByEmail(ctx, info.Email)
	if err != nil {
		if errx.HasCode(err, directory.CodeUserNotFound) {
			return nil, iam.ErrAccountNotFound()
		}
		return nil, err
	}

	subject := info.SubjectID
	if subject == "" {
		subject = token.Username
	}
	return acct.AuthContext(subject, token.Raw), nil
}
