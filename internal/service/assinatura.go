package service

import (
	"context"

	"github.com/example/estudos/internal/billing"
	"github.com/example/estudos/pkg/models"
)

// Assinar opens a subscription checkout and returns the URL to send the user to
func (s *Service) Assinar(ctx context.Context, user *models.User) (string, error) {
	if s.billing == nil || s.opts.PriceID == "" {
		return "", ErrNaoConfigurado
	}

	req := billing.CheckoutRequest{
		PriceID:    s.opts.PriceID,
		UserID:     user.ID,
		SuccessURL: s.opts.SuccessURL,
		CancelURL:  s.opts.CancelURL,
	}
	if user.StripeCustomerID != nil {
		req.CustomerID = *user.StripeCustomerID
	}

	resp, err := s.billing.CreateCheckoutSession(ctx, req)
	if err != nil {
		return "", err
	}

	if resp.CustomerID != "" && user.StripeCustomerID == nil {
		if err := s.repos.Users.SetStripeCustomer(ctx, user.ID, resp.CustomerID); err != nil {
			return "", err
		}
		user.StripeCustomerID = &resp.CustomerID
	}
	return resp.URL, nil
}

// Portal opens the billing portal for a user who already subscribed
func (s *Service) Portal(ctx context.Context, user *models.User) (string, error) {
	if s.billing == nil {
		return "", ErrNaoConfigurado
	}
	if user.StripeCustomerID == nil {
		return "", billing.ErrSemCliente
	}

	resp, err := s.billing.CreatePortalSession(ctx, billing.PortalRequest{
		CustomerID: *user.StripeCustomerID,
		ReturnURL:  s.opts.SuccessURL,
	})
	if err != nil {
		return "", err
	}
	return resp.URL, nil
}
