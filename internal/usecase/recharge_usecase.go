package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/infrastructure/metrics"
)

// RechargeUseCase runs the recharge workflow and its admission gate.
type RechargeUseCase struct {
	ledger       *LedgerUseCase
	rechargeRepo RechargeRepository
	outboxRepo   OutboxRepository
	auditRepo    AuditRepository
	idGen        IDGenerator
	metrics      *metrics.Metrics
	maxPending   int
}

// NewRechargeUseCase creates a new RechargeUseCase.
func NewRechargeUseCase(
	ledger *LedgerUseCase,
	rechargeRepo RechargeRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	metrics *metrics.Metrics,
) *RechargeUseCase {
	return &RechargeUseCase{
		ledger:       ledger,
		rechargeRepo: rechargeRepo,
		outboxRepo:   outboxRepo,
		auditRepo:    auditRepo,
		idGen:        idGen,
		metrics:      metrics,
		maxPending:   DefaultMaxPendingRecharges,
	}
}

// WithMaxPending overrides the per-user cap on PENDING requests.
func (uc *RechargeUseCase) WithMaxPending(n int) *RechargeUseCase {
	if n > 0 {
		uc.maxPending = n
	}
	return uc
}

// SubmitRechargeInput is a member's top-up request.
type SubmitRechargeInput struct {
	UserID           string
	PaymentMethod    string
	PaymentReference string
	ProofImage       string
	Amount           decimal.Decimal
}

// Submit admits a new PENDING request unless the user already holds maxPending of them.
// The wallet row lock serializes concurrent submissions for one user, so the cap is hard.
func (uc *RechargeUseCase) Submit(ctx context.Context, input SubmitRechargeInput) (*domain.RechargeRequest, error) {
	now := time.Now().UTC()
	req := &domain.RechargeRequest{
		UserID:           strings.TrimSpace(input.UserID),
		Amount:           input.Amount,
		PaymentMethod:    strings.TrimSpace(input.PaymentMethod),
		PaymentReference: strings.TrimSpace(input.PaymentReference),
		ProofImage:       input.ProofImage,
		Status:           domain.RechargeStatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	err := uc.ledger.tx.run(ctx, func(ctx context.Context, tx Transaction) error {
		if _, err := uc.ledger.lockWallet(ctx, tx, req.UserID); err != nil {
			return err
		}

		pending, err := uc.rechargeRepo.CountPending(ctx, tx, req.UserID)
		if err != nil {
			return err
		}
		if pending >= uc.maxPending {
			return fmt.Errorf("%w: %d of %d pending", domain.ErrTooManyPendingRequests, pending, uc.maxPending)
		}

		req.ID = uc.idGen.Generate()
		if err := uc.rechargeRepo.Create(ctx, tx, req); err != nil {
			return err
		}

		if err := emitEvent(ctx, tx, uc.outboxRepo, uc.idGen, req.ID, domain.AggregateTypeRecharge,
			domain.EventTypeRechargeSubmitted, domain.NewRechargeEvent(req)); err != nil {
			return err
		}

		return writeAudit(ctx, tx, uc.auditRepo, uc.idGen, uc.metrics,
			domain.AuditActionRechargeSubmit, domain.AggregateTypeRecharge, req.ID, nil, req)
	})
	if err != nil {
		if uc.metrics != nil && isTooMany(err) {
			uc.metrics.AdmissionRejections.Inc()
		}
		return nil, err
	}

	uc.count(req.Status)
	return req, nil
}

// ReviewInput carries the reviewer's decision details.
type ReviewInput struct {
	RechargeID string
	ReviewerID string
	Note       string
}

// Approve credits the wallet and marks the request APPROVED in one transaction.
func (uc *RechargeUseCase) Approve(ctx context.Context, input ReviewInput) (*domain.RechargeRequest, error) {
	var req *domain.RechargeRequest
	err := uc.ledger.tx.run(ctx, func(ctx context.Context, tx Transaction) error {
		var err error
		req, err = uc.lockPending(ctx, tx, input.RechargeID)
		if err != nil {
			return err
		}
		before := *req

		description := "Recharge approved"
		if input.Note != "" {
			description = input.Note
		}

		entry, err := uc.ledger.PostTx(ctx, tx, PostInput{
			UserID:          req.UserID,
			EntryType:       domain.EntryTypeCredit,
			TransactionType: domain.TransactionRechargeRequest,
			Amount:          req.Amount,
			ReferenceTable:  domain.RechargeReferenceTable,
			ReferenceID:     req.ID,
			Description:     description,
			Meta: map[string]any{
				"payment_method":    req.PaymentMethod,
				"payment_reference": req.PaymentReference,
			},
		})
		if err != nil {
			return err
		}

		uc.review(req, input, domain.RechargeStatusApproved)
		req.EntryID = &entry.ID

		return uc.finishReview(ctx, tx, req, before, domain.EventTypeRechargeApproved, domain.AuditActionRechargeApprove)
	})
	if err != nil {
		return nil, err
	}

	uc.count(req.Status)
	return req, nil
}

// Reject closes the request without touching the ledger.
func (uc *RechargeUseCase) Reject(ctx context.Context, input ReviewInput) (*domain.RechargeRequest, error) {
	var req *domain.RechargeRequest
	err := uc.ledger.tx.run(ctx, func(ctx context.Context, tx Transaction) error {
		var err error
		req, err = uc.lockPending(ctx, tx, input.RechargeID)
		if err != nil {
			return err
		}
		before := *req

		uc.review(req, input, domain.RechargeStatusRejected)

		return uc.finishReview(ctx, tx, req, before, domain.EventTypeRechargeRejected, domain.AuditActionRechargeReject)
	})
	if err != nil {
		return nil, err
	}

	uc.count(req.Status)
	return req, nil
}

// Get returns a single recharge request.
func (uc *RechargeUseCase) Get(ctx context.Context, id string) (*domain.RechargeRequest, error) {
	req, err := uc.rechargeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storageError(ctx, err)
	}
	return req, nil
}

// RechargePage is one page of recharge requests.
type RechargePage struct {
	Items    []*domain.RechargeRequest
	Total    int64
	Page     int
	PageSize int
}

// List returns recharge requests matching filter.
func (uc *RechargeUseCase) List(ctx context.Context, filter domain.RechargeFilter) (*RechargePage, error) {
	filter = filter.Normalize()

	items, total, err := uc.rechargeRepo.List(ctx, filter)
	if err != nil {
		return nil, storageError(ctx, err)
	}
	if items == nil {
		items = []*domain.RechargeRequest{}
	}

	return &RechargePage{Items: items, Total: total, Page: filter.Page, PageSize: filter.PageSize}, nil
}

func (uc *RechargeUseCase) lockPending(ctx context.Context, tx Transaction, id string) (*domain.RechargeRequest, error) {
	req, err := uc.rechargeRepo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if !req.IsPending() {
		return nil, fmt.Errorf("%w: status is %s", domain.ErrRechargeNotPending, req.Status)
	}
	return req, nil
}

func (uc *RechargeUseCase) review(req *domain.RechargeRequest, input ReviewInput, status domain.RechargeStatus) {
	now := time.Now().UTC()
	req.Status = status
	req.ReviewedBy = input.ReviewerID
	req.ReviewNote = input.Note
	req.ReviewedAt = &now
	req.UpdatedAt = now
}

func (uc *RechargeUseCase) finishReview(
	ctx context.Context,
	tx Transaction,
	req *domain.RechargeRequest,
	before domain.RechargeRequest,
	eventType string,
	action domain.AuditAction,
) error {
	if err := uc.rechargeRepo.UpdateReview(ctx, tx, req); err != nil {
		return err
	}

	if err := emitEvent(ctx, tx, uc.outboxRepo, uc.idGen, req.ID, domain.AggregateTypeRecharge,
		eventType, domain.NewRechargeEvent(req)); err != nil {
		return err
	}

	return writeAudit(ctx, tx, uc.auditRepo, uc.idGen, uc.metrics, action, domain.AggregateTypeRecharge, req.ID, before, req)
}

func (uc *RechargeUseCase) count(status domain.RechargeStatus) {
	if uc.metrics != nil {
		uc.metrics.RechargeRequests.WithLabelValues(string(status)).Inc()
	}
}

func isTooMany(err error) bool {
	return errors.Is(err, domain.ErrTooManyPendingRequests)
}
