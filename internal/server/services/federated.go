package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/medtrack/internal/common"
	"github.com/dmitrijs2005/medtrack/internal/server/federation"
	"github.com/dmitrijs2005/medtrack/internal/server/models"
)

// StartFederatedSignIn returns the provider URL to open and the state the
// client later redeems with GetRedirectResult.
func (s *IdentityService) StartFederatedSignIn(ctx context.Context) (authURL, state string, err error) {
	if s.federation == nil {
		return "", "", common.ErrProviderUnavailable
	}
	state, err = common.MakeRandHexString(16)
	if err != nil {
		return "", "", common.ErrorInternal
	}
	nonce, err := common.MakeRandHexString(16)
	if err != nil {
		return "", "", common.ErrorInternal
	}
	verifier := federation.NewVerifier()

	err = s.repomanager.FederatedStates(s.db).CreateFederated(ctx, &models.FederatedState{
		State:        state,
		Nonce:        nonce,
		CodeVerifier: verifier,
		ExpiresAt:    s.now().Add(federatedStateTTL),
	})
	if err != nil {
		return "", "", fmt.Errorf("error storing state: %w", err)
	}
	return s.federation.AuthCodeURL(state, nonce, verifier), state, nil
}

// CompleteFederatedSignIn handles the provider callback: it redeems code,
// resolves the account and marks state ready for GetRedirectResult.
func (s *IdentityService) CompleteFederatedSignIn(ctx context.Context, state, code string) error {
	if s.federation == nil {
		return common.ErrProviderUnavailable
	}
	repo := s.repomanager.FederatedStates(s.db)
	st, err := repo.GetFederated(ctx, state)
	if err != nil || st.Completed || s.now().After(st.ExpiresAt) {
		return common.ErrInvalidActionCode
	}

	id, err := s.federation.Exchange(ctx, code, st.CodeVerifier, st.Nonce)
	if err != nil {
		return fmt.Errorf("federated exchange: %w", err)
	}
	user, err := s.resolveFederatedUser(ctx, id)
	if err != nil {
		return err
	}
	if err := repo.CompleteFederated(ctx, state, user.ID); err != nil {
		return fmt.Errorf("error completing state: %w", err)
	}
	return nil
}

// resolveFederatedUser finds the account by provider subject, then by
// verified email, and creates one otherwise.
func (s *IdentityService) resolveFederatedUser(ctx context.Context, id *federation.Identity) (*models.User, error) {
	users := s.repomanager.Users(s.db)

	user, err := users.GetByProviderSubject(ctx, models.ProviderOIDC, id.Subject)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, common.ErrorInternal
	}

	if id.Email != "" && id.EmailVerified {
		user, err = users.GetByEmail(ctx, id.Email)
		if err == nil {
			if !user.EmailVerified {
				if err := users.MarkEmailVerified(ctx, user.ID); err != nil {
					return nil, common.ErrorInternal
				}
				user.EmailVerified = true
			}
			return user, nil
		}
		if !errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorInternal
		}
	}

	user, err = users.Create(ctx, &models.User{
		Email:           id.Email,
		EmailVerified:   id.EmailVerified,
		DisplayName:     id.Name,
		PhotoURL:        id.Picture,
		Provider:        models.ProviderOIDC,
		ProviderSubject: id.Subject,
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrEmailAlreadyInUse
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return user, nil
}

// GetRedirectResult hands out the session for a completed state exactly once.
func (s *IdentityService) GetRedirectResult(ctx context.Context, state string) (*Session, error) {
	repo := s.repomanager.FederatedStates(s.db)
	st, err := repo.GetFederated(ctx, state)
	if err != nil || !st.Completed || s.now().After(st.ExpiresAt) {
		return nil, common.ErrNoRedirectResult
	}
	if err := repo.DeleteFederated(ctx, state); err != nil {
		return nil, common.ErrorInternal
	}

	user, err := s.GetCurrentUser(ctx, st.UserID)
	if err != nil {
		return nil, err
	}
	return s.newSession(ctx, user)
}
