package idpcognito

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"

	"github.com/Abraxas-365/staffhub/pkg/iam/idp"
	"github.com/Abraxas-365/staffhub/pkg/logx"
	"github.com/aws/aws-sdk-go-v2/aws"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/aws/smithy-go"
)

// CognitoAPI is the part of the Cognito user pool client the gateway calls.
type CognitoAPI interface {
	AdminCreateUser(ctx context.Context, in *cip.AdminCreateUserInput, optFns ...func(*cip.Options)) (*cip.AdminCreateUserOutput, error)
	InitiateAuth(ctx context.Context, in *cip.InitiateAuthInput, optFns ...func(*cip.Options)) (*cip.InitiateAuthOutput, error)
	RespondToAuthChallenge(ctx context.Context, in *cip.RespondToAuthChallengeInput, optFns ...func(*cip.Options)) (*cip.RespondToAuthChallengeOutput, error)
	GlobalSignOut(ctx context.Context, in *cip.GlobalSignOutInput, optFns ...func(*cip.Options)) (*cip.GlobalSignOutOutput, error)
	AdminUpdateUserAttributes(ctx context.Context, in *cip.AdminUpdateUserAttributesInput, optFns ...func(*cip.Options)) (*cip.AdminUpdateUserAttributesOutput, error)
	ForgotPassword(ctx context.Context, in *cip.ForgotPasswordInput, optFns ...func(*cip.Options)) (*cip.ForgotPasswordOutput, error)
	ConfirmForgotPassword(ctx context.Context, in *cip.ConfirmForgotPasswordInput, optFns ...func(*cip.Options)) (*cip.ConfirmForgotPasswordOutput, error)
	AdminSetUserPassword(ctx context.Context, in *cip.AdminSetUserPasswordInput, optFns ...func(*cip.Options)) (*cip.AdminSetUserPasswordOutput, error)
	ChangePassword(ctx context.Context, in *cip.ChangePasswordInput, optFns ...func(*cip.Options)) (*cip.ChangePasswordOutput, error)
	GetUser(ctx context.Context, in *cip.GetUserInput, optFns ...func(*cip.Options)) (*cip.GetUserOutput, error)
	AdminDeleteUser(ctx context.Context, in *cip.AdminDeleteUserInput, optFns ...func(*cip.Options)) (*cip.AdminDeleteUserOutput, error)
}

type Config struct {
	UserPoolID   string
	ClientID     string
	ClientSecret string
}

// Gateway implements idp.Gateway on a Cognito user pool whose app client has a secret.
type Gateway struct {
	client CognitoAPI
	cfg    Config
}

func NewGateway(client CognitoAPI, cfg Config) *Gateway {
	return &Gateway{client: client, cfg: cfg}
}

var _ idp.Gateway = (*Gateway)(nil)

func (g *Gateway) Register(ctx context.Context, email, tempPassword string) error {
	_, err := g.client.AdminCreateUser(ctx, &cip.AdminCreateUserInput{
		UserPoolId:        aws.String(g.cfg.UserPoolID),
		Username:          aws.String(email),
		TemporaryPassword: aws.String(tempPassword),
		UserAttributes: []types.AttributeType{
			{Name: aws.String("email"), Value: aws.String(email)},
		},
	})
	return g.fail("register", email, err)
}

func (g *Gateway) Authenticate(ctx context.Context, email, password string) (*idp.AuthResult, error) {
	out, err := g.client.InitiateAuth(ctx, &cip.InitiateAuthInput{
		ClientId: aws.String(g.cfg.ClientID),
		AuthFlow: types.AuthFlowTypeUserPasswordAuth,
		AuthParameters: map[string]string{
			"USERNAME":    email,
			"PASSWORD":    password,
			"SECRET_HASH": g.SecretHash(email),
		},
	})
	if err != nil {
		return nil, g.fail("authenticate", email, err)
	}
	return authResult(out.AuthenticationResult, out.ChallengeName, out.Session), nil
}

// RefreshToken signs the secret hash with subjectID, the pool username
// Cognito expects for refresh flows.
func (g *Gateway) RefreshToken(ctx context.Context, refreshToken, subjectID string) (*idp.AuthResult, error) {
	out, err := g.client.InitiateAuth(ctx, &cip.InitiateAuthInput{
		ClientId: aws.String(g.cfg.ClientID),
		AuthFlow: types.AuthFlowTypeRefreshTokenAuth,
		AuthParameters: map[string]string{
			"REFRESH_TOKEN": refreshToken,
			"SECRET_HASH":   g.SecretHash(subjectID),
		},
	})
	if err != nil {
		return nil, g.fail("refresh token", subjectID, err)
	}
	res := authResult(out.AuthenticationResult, out.ChallengeName, out.Session)
	if res.Tokens != nil && res.Tokens.RefreshToken == "" {
		res.Tokens.RefreshToken = refreshToken
	}
	return res, nil
}

func (g *Gateway) RevokeToken(ctx context.Context, accessToken string) error {
	_, err := g.client.GlobalSignOut(ctx, &cip.GlobalSignOutInput{AccessToken: aws.String(accessToken)})
	return g.fail("revoke token", "", err)
}

func (g *Gateway) SetNewPassword(ctx context.Context, email, newPassword, sessionCode string) error {
	attrs, err := json.Marshal(map[string]string{"email": email})
	if err != nil {
		return idp.NewError(idp.KindUnexpected, err)
	}

	_, err = g.client.RespondToAuthChallenge(ctx, &cip.RespondToAuthChallengeInput{
		ClientId:      aws.String(g.cfg.ClientID),
		ChallengeName: types.ChallengeNameTypeNewPasswordRequired,
		Session:       aws.String(sessionCode),
		ChallengeResponses: map[string]string{
			"USERNAME":        email,
			"NEW_PASSWORD":    newPassword,
			"SECRET_HASH":     g.SecretHash(email),
			"USER_ATTRIBUTES": string(attrs),
		},
	})
	return g.fail("set new password", email, err)
}

func (g *Gateway) VerifyEmail(ctx context.Context, email string) error {
	_, err := g.client.AdminUpdateUserAttributes(ctx, &cip.AdminUpdateUserAttributesInput{
		UserPoolId: aws.String(g.cfg.UserPoolID),
		Username:   aws.String(email),
		UserAttributes: []types.AttributeType{
			{Name: aws.String("email_verified"), Value: aws.String("true")},
		},
	})
	return g.fail("verify email", email, err)
}

func (g *Gateway) RequestPasswordReset(ctx context.Context, email string) error {
	_, err := g.client.ForgotPassword(ctx, &cip.ForgotPasswordInput{
		ClientId:   aws.String(g.cfg.ClientID),
		Username:   aws.String(email),
		SecretHash: aws.String(g.SecretHash(email)),
	})
	return g.fail("forgot password", email, err)
}

func (g *Gateway) ConfirmPasswordReset(ctx context.Context, email, newPassword, confirmationCode string) error {
	_, err := g.client.ConfirmForgotPassword(ctx, &cip.ConfirmForgotPasswordInput{
		ClientId:         aws.String(g.cfg.ClientID),
		Username:         aws.String(email),
		ConfirmationCode: aws.String(confirmationCode),
		Password:         aws.String(newPassword),
		SecretHash:       aws.String(g.SecretHash(email)),
	})
	return g.fail("confirm forgot password", email, err)
}

func (g *Gateway) AdminSetPassword(ctx context.Context, email, newPassword string) error {
	_, err := g.client.AdminSetUserPassword(ctx, &cip.AdminSetUserPasswordInput{
		UserPoolId: aws.String(g.cfg.UserPoolID),
		Username:   aws.String(email),
		Password:   aws.String(newPassword),
		Permanent:  true,
	})
	return g.fail("admin set password", email, err)
}

func (g *Gateway) ChangePassword(ctx context.Context, accessToken, oldPassword, newPassword string) error {
	_, err := g.client.ChangePassword(ctx, &cip.ChangePasswordInput{
		AccessToken:      aws.String(accessToken),
		PreviousPassword: aws.String(oldPassword),
		ProposedPassword: aws.String(newPassword),
	})
	return g.fail("change password", "", err)
}

func (g *Gateway) GetUser(ctx context.Context, accessToken string) (*idp.UserInfo, error) {
	out, err := g.client.GetUser(ctx, &cip.GetUserInput{AccessToken: aws.String(accessToken)})
	if err != nil {
		return nil, g.fail("get user", "", err)
	}

	info := &idp.UserInfo{
		SubjectID:  aws.ToString(out.Username),
		Attributes: make(map[string]string, len(out.UserAttributes)),
	}
	for _, a := range out.UserAttributes {
		info.Attributes[aws.ToString(a.Name)] = aws.ToString(a.Value)
	}
	info.Email = info.Attributes["email"]
	return info, nil
}

func (g *Gateway) DeleteUser(ctx context.Context, email string) error {
	_, err := g.client.AdminDeleteUser(ctx, &cip.AdminDeleteUserInput{
		UserPoolId: aws.String(g.cfg.UserPoolID),
		Username:   aws.String(email),
	})
	return g.fail("delete user", email, err)
}

// SecretHash is base64(HMAC-SHA256(client secret, username + client id)).
func (g *Gateway) SecretHash(username string) string {
	mac := hmac.New(sha256.New, []byte(g.cfg.ClientSecret))
	mac.Write([]byte(username + g.cfg.ClientID))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// fail logs and translates err; nil passes through.
func (g *Gateway) fail(op, username string, err error) error {
	if err == nil {
		return nil
	}

	kind := Classify(err)
	fields := logx.Fields{"op": op, "kind": string(kind)}
	if username != "" {
		fields["username"] = username
	}
	logx.WithFields(fields).WithError(err).Warn("cognito request failed")

	return idp.NewError(kind, err)
}

var exceptionKinds = map[string]idp.Kind{
	"InvalidPasswordException":  idp.KindInvalidPassword,
	"CodeMismatchException":     idp.KindCodeMismatch,
	"ExpiredCodeException":      idp.KindExpiredCode,
	"UserNotConfirmedException": idp.KindUserNotConfirmed,
	"UserNotFoundException":     idp.KindUserNotFound,
	"NotAuthorizedException":    idp.KindNotAuthorized,
	"TooManyRequestsException":  idp.KindTooManyRequests,
	"UsernameExistsException":   idp.KindUserAlreadyExists,
	"InvalidParameterException": idp.KindInvalidParameter,
	"LimitExceededException":    idp.KindTooManyRequests,
	"AliasExistsException":      idp.KindUserAlreadyExists,
}

// Classify maps a Cognito API error code to its gateway kind.
func Classify(err error) idp.Kind {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		if k, ok := exceptionKinds[apiErr.ErrorCode()]; ok {
			return k
		}
	}
	return idp.KindUnexpected
}

func authResult(res *types.AuthenticationResultType, challenge types.ChallengeNameType, session *string) *idp.AuthResult {
	if challenge != "" {
		return &idp.AuthResult{Challenge: &idp.Challenge{
			Name:        string(challenge),
			SessionCode: aws.ToString(session),
		}}
	}
	if res == nil {
		return &idp.AuthResult{Tokens: &idp.Tokens{}}
	}
	return &idp.AuthResult{Tokens: &idp.Tokens{
		AccessToken:  aws.ToString(res.AccessToken),
		RefreshToken: aws.ToString(res.RefreshToken),
		IDToken:      aws.ToString(res.IdToken),
		ExpiresIn:    res.ExpiresIn,
	}}
}
