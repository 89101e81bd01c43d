package service

import (
	"context"
	"time"

	"github.com/chainvoice/chainvoice/internal/domain/company"
	"github.com/chainvoice/chainvoice/internal/domain/user"
	ierr "github.com/chainvoice/chainvoice/internal/errors"
	"github.com/chainvoice/chainvoice/internal/types"
)

// AccessService resolves the acting user and enforces the tenant, role,
// module and billing preconditions shared by every ledger operation.
type AccessService interface {
	ResolveActor(ctx context.Context, companyID string) (*user.User, *company.Company, error)
	AuthorizeIssue(actor *user.User, comp *company.Company, now time.Time) error
	AuthorizeVerify(actor *user.User, comp *company.Company) error
	CheckPeriodLock(actor *user.User, comp *company.Company, deliveryDate *time.Time) error
}

type accessService struct {
	ServiceParams
}

func NewAccessService(params ServiceParams) AccessService {
	return &accessService{ServiceParams: params}
}

// ResolveActor loads the acting user from the request context and the target
// company, and enforces membership. Super admins may act on any company.
func (s *accessService) ResolveActor(ctx context.Context, companyID string) (*user.User, *company.Company, error) {
	if err := types.ValidateActorContext(ctx); err != nil {
		return nil, nil, ierr.WithError(err).
			WithHint("Authentication is required").
			Mark(ierr.ErrUnauthenticated)
	}

	actor, err := s.UserRepo.Get(ctx, types.GetUserID(ctx))
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, nil, ierr.NewError("unknown acting user").
				WithHint("Authentication is required").
				Mark(ierr.ErrUnauthenticated)
		}
		return nil, nil, err
	}
	if actor.Status != types.StatusActive {
		return nil, nil, ierr.NewError("user is not active").
			WithHint("This account has been deactivated").
			Mark(ierr.ErrPermissionDenied)
	}

	if !actor.IsSuperAdmin() && actor.CompanyID != companyID {
		return nil, nil, ierr.NewError("user does not belong to company").
			WithHint("You do not have access to this company").
			Mark(ierr.ErrPermissionDenied)
	}

	comp, err := s.CompanyRepo.Get(ctx, companyID)
	if err != nil {
		return nil, nil, err
	}
	if comp.Status != types.StatusActive {
		return nil, nil, ierr.NewError("company is not active").
			WithHintf("Company %s is not active", companyID).
			Mark(ierr.ErrPermissionDenied)
	}

	return actor, comp, nil
}

// AuthorizeIssue gates document issuance: admins and dispatchers of a company
// with the accounting module and a billing state that permits writes.
func (s *accessService) AuthorizeIssue(actor *user.User, comp *company.Company, now time.Time) error {
	if actor.IsSuperAdmin() {
		return nil
	}

	if !actor.HasRole(types.UserRoleAdmin, types.UserRoleDispatcher) {
		return ierr.NewError("role cannot issue documents").
			WithHint("Only admins and dispatchers can issue documents").
			Mark(ierr.ErrPermissionDenied)
	}
	if !comp.ModuleEnabled(types.ModuleKeyAccounting) {
		return ierr.NewError("accounting module disabled").
			WithHint("The accounting module is not enabled for this company").
			Mark(ierr.ErrPermissionDenied)
	}
	if !comp.BillingAllowsWrite(now) {
		return ierr.NewError("billing state blocks writes").
			WithHintf("Billing status %s does not permit issuing documents", comp.BillingStatus).
			Mark(ierr.ErrPermissionDenied)
	}
	return nil
}

// AuthorizeVerify gates chain verification: admins only.
func (s *accessService) AuthorizeVerify(actor *user.User, comp *company.Company) error {
	if actor.IsSuperAdmin() {
		return nil
	}

	if !actor.HasRole(types.UserRoleAdmin) {
		return ierr.NewError("role cannot verify the ledger").
			WithHint("Only admins can run integrity verification").
			Mark(ierr.ErrPermissionDenied)
	}
	if !comp.ModuleEnabled(types.ModuleKeyAccounting) {
		return ierr.NewError("accounting module disabled").
			WithHint("The accounting module is not enabled for this company").
			Mark(ierr.ErrPermissionDenied)
	}
	return nil
}

// CheckPeriodLock rejects issuance of documents whose delivery date falls in a
// closed accounting period. Super admins may issue into locked periods.
func (s *accessService) CheckPeriodLock(actor *user.User, comp *company.Company, deliveryDate *time.Time) error {
	if actor.IsSuperAdmin() {
		return nil
	}
	if comp.AccountingLockedUntil == nil || deliveryDate == nil {
		return nil
	}
	if !deliveryDate.After(*comp.AccountingLockedUntil) {
		return ierr.NewError("accounting period is locked").
			WithHintf("Documents dated on or before %s cannot be issued", comp.AccountingLockedUntil.Format(time.RFC3339)).
			Mark(ierr.ErrInvalidOperation)
	}
	return nil
}
