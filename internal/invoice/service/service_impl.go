// Package service implements the invoice lifecycle.
package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/smallbiznis/faktur/internal/config"
	"github.com/smallbiznis/faktur/internal/invoice/domain"
	"github.com/smallbiznis/faktur/internal/invoice/format"
	"github.com/smallbiznis/faktur/internal/invoice/number"
	notifdomain "github.com/smallbiznis/faktur/internal/notification/domain"
	obsmetrics "github.com/smallbiznis/faktur/internal/observability/metrics"
	"github.com/smallbiznis/faktur/internal/usercontext"
	"github.com/smallbiznis/faktur/pkg/db/pagination"
)

type Params struct {
	fx.In

	Config     config.Config
	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Repo       domain.Repository
	Allocator  *number.Allocator
	Dispatcher notifdomain.Dispatcher
	Metrics    *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	cfg        config.Config
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	repo       domain.Repository
	allocator  *number.Allocator
	dispatcher notifdomain.Dispatcher
	metrics    *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		cfg:        p.Config,
		db:         p.DB,
		log:        p.Log.Named("invoice.service"),
		genID:      p.GenID,
		repo:       p.Repo,
		allocator:  p.Allocator,
		dispatcher: p.Dispatcher,
		metrics:    p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateInvoiceRequest) (*domain.Invoice, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrNoAuthenticatedUser
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	issueDate := req.IssueDate
	if issueDate.IsZero() {
		issueDate = now
	}

	inv := &domain.Invoice{
		ID:            s.genID.Generate(),
		UserID:        userID,
		Name:          strings.TrimSpace(req.Name),
		Currency:      strings.ToUpper(strings.TrimSpace(req.Currency)),
		FromName:      strings.TrimSpace(req.FromName),
		FromEmail:     normalizeEmail(req.FromEmail),
		FromAddress:   strings.TrimSpace(req.FromAddress),
		ClientName:    strings.TrimSpace(req.ClientName),
		ClientEmail:   normalizeEmail(req.ClientEmail),
		ClientAddress: strings.TrimSpace(req.ClientAddress),
		IssueDate:     issueDate,
		DueInDays:     req.DueInDays,
		DueDate:       issueDate.AddDate(0, 0, req.DueInDays),
		Note:          strings.TrimSpace(req.Note),
		Status:        domain.InvoiceStatusCreated,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	items := buildItems(s.genID, inv, req.Items, now)
	inv.Total = sumItems(items)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoiceNumber, err := s.allocator.Next(ctx, tx, issueDate)
		if err != nil {
			return err
		}
		inv.InvoiceNumber = invoiceNumber
		if err := s.repo.InsertInvoice(ctx, tx, inv); err != nil {
			return err
		}
		return s.repo.InsertItems(ctx, tx, items)
	})
	if err != nil {
		return nil, err
	}

	inv.Items = items
	s.metrics.RecordInvoiceCreated(ctx, inv.Currency)
	s.log.Info("invoice created",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.Int64("total", inv.Total),
	)
	return inv, nil
}

func (s *Service) Update(ctx context.Context, invoiceID string, req domain.UpdateInvoiceRequest) (*domain.Invoice, error) {
	inv, err := s.loadOwned(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv.Status == domain.InvoiceStatusPaid {
		return nil, domain.ErrInvoiceClosed
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	issueDate := req.IssueDate
	if issueDate.IsZero() {
		issueDate = inv.IssueDate
	}

	inv.Name = strings.TrimSpace(req.Name)
	inv.Currency = strings.ToUpper(strings.TrimSpace(req.Currency))
	inv.FromName = strings.TrimSpace(req.FromName)
	inv.FromEmail = normalizeEmail(req.FromEmail)
	inv.FromAddress = strings.TrimSpace(req.FromAddress)
	inv.ClientName = strings.TrimSpace(req.ClientName)
	inv.ClientEmail = normalizeEmail(req.ClientEmail)
	inv.ClientAddress = strings.TrimSpace(req.ClientAddress)
	inv.IssueDate = issueDate
	inv.DueInDays = req.DueInDays
	inv.DueDate = issueDate.AddDate(0, 0, req.DueInDays)
	inv.Note = strings.TrimSpace(req.Note)
	inv.UpdatedAt = now

	items := buildItems(s.genID, inv, req.Items, now)
	inv.Total = sumItems(items)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// the item set is replaced wholesale; partial edits are not a thing
		if err := s.repo.DeleteItems(ctx, tx, inv.ID); err != nil {
			return err
		}
		if err := s.repo.InsertItems(ctx, tx, items); err != nil {
			return err
		}
		return s.repo.UpdateInvoice(ctx, tx, inv)
	})
	if err != nil {
		return nil, err
	}

	inv.Items = items
	s.log.Info("invoice updated", zap.String("invoice_id", inv.ID.String()))
	return inv, nil
}

func (s *Service) Delete(ctx context.Context, invoiceID string) error {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok {
		return domain.ErrNoAuthenticatedUser
	}
	id, err := parseInvoiceID(invoiceID)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		affected, err := s.repo.DeleteInvoice(ctx, tx, userID, id)
		if err != nil {
			return err
		}
		if affected == 0 {
			return domain.ErrInvoiceNotFound
		}
		return s.repo.DeleteItems(ctx, tx, id)
	})
}

func (s *Service) MarkPaid(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	inv, err := s.loadOwned(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv.Status == domain.InvoiceStatusPaid {
		return nil, domain.ErrInvoiceClosed
	}

	if err := s.repo.UpdateStatus(ctx, s.db, inv.UserID, inv.ID, domain.InvoiceStatusPaid); err != nil {
		return nil, err
	}
	inv.Status = domain.InvoiceStatusPaid

	s.metrics.RecordStatusTransition(ctx, string(domain.InvoiceStatusPaid))
	s.log.Info("invoice paid", zap.String("invoice_id", inv.ID.String()))
	return inv, nil
}

// Send queues the invoice email and moves CREATED invoices to SENT.
// Delivery failures surface in logs only; the transition is driven by
// the dispatch attempt, not by delivery.
func (s *Service) Send(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	inv, err := s.loadOwned(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv.Status == domain.InvoiceStatusPaid {
		return nil, domain.ErrInvoiceClosed
	}

	if err := s.dispatcher.Dispatch(ctx, s.buildMessage(inv, notifdomain.TemplateInvoiceNew)); err != nil {
		return nil, err
	}

	if inv.Status == domain.InvoiceStatusCreated {
		if err := s.repo.UpdateStatus(ctx, s.db, inv.UserID, inv.ID, domain.InvoiceStatusSent); err != nil {
			return nil, err
		}
		inv.Status = domain.InvoiceStatusSent
		s.metrics.RecordStatusTransition(ctx, string(domain.InvoiceStatusSent))
	}

	s.log.Info("invoice sent",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("client_email", inv.ClientEmail),
	)
	return inv, nil
}

func (s *Service) SendReminder(ctx context.Context, invoiceID string) error {
	inv, err := s.loadOwned(ctx, invoiceID)
	if err != nil {
		return err
	}
	if inv.Status == domain.InvoiceStatusPaid {
		return domain.ErrInvoiceClosed
	}

	if err := s.dispatcher.Dispatch(ctx, s.buildMessage(inv, notifdomain.TemplateInvoiceReminder)); err != nil {
		return err
	}
	if err := s.repo.MarkReminderSent(ctx, s.db, inv.UserID, inv.ID, time.Now().UTC()); err != nil {
		return err
	}

	s.log.Info("invoice reminder sent", zap.String("invoice_id", inv.ID.String()))
	return nil
}

func (s *Service) List(ctx context.Context, req domain.ListInvoiceRequest) (*domain.ListInvoiceResponse, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrNoAuthenticatedUser
	}

	invoices, err := s.repo.List(ctx, s.db, userID, domain.InvoiceFilter{Status: req.Status}, req.Pagination)
	if err != nil {
		return nil, err
	}

	limit := req.Limit()
	pageInfo := pagination.BuildCursorPageInfo(invoices, limit, func(inv *domain.Invoice) string {
		token, _ := pagination.EncodeCursor(pagination.Cursor{ID: inv.ID.String()})
		return token
	})
	if len(invoices) > limit {
		invoices = invoices[:limit]
	}

	resp := &domain.ListInvoiceResponse{Invoices: invoices, HasMore: pageInfo.HasMore}
	if pageInfo.HasMore {
		resp.NextPageToken = pageInfo.NextPageToken
	}
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	inv, err := s.loadOwned(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.ListItems(ctx, s.db, inv.ID)
	if err != nil {
		return nil, err
	}
	inv.Items = items
	return inv, nil
}

func (s *Service) GetForRender(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	id, err := parseInvoiceID(invoiceID)
	if err != nil {
		return nil, err
	}
	inv, err := s.repo.FindByIDUnscoped(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrInvoiceNotFound
	}
	items, err := s.repo.ListItems(ctx, s.db, inv.ID)
	if err != nil {
		return nil, err
	}
	inv.Items = items
	return inv, nil
}

func (s *Service) Summarize(ctx context.Context) (*domain.Summary, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrNoAuthenticatedUser
	}

	counts, err := s.repo.CountByStatus(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	revenue, err := s.repo.RevenueByCurrency(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	recent, err := s.repo.List(ctx, s.db, userID, domain.InvoiceFilter{}, pagination.Pagination{PageSize: 5})
	if err != nil {
		return nil, err
	}
	if len(recent) > 5 {
		recent = recent[:5]
	}

	summary := &domain.Summary{
		PaidInvoices: counts[domain.InvoiceStatusPaid],
		OpenInvoices: counts[domain.InvoiceStatusCreated] + counts[domain.InvoiceStatusSent],
		Revenue:      make(map[string]int64, len(revenue)),
		Recent:       recent,
	}
	for _, c := range counts {
		summary.TotalInvoices += c
	}
	for _, row := range revenue {
		summary.Revenue[row.Currency] = row.Total
	}
	return summary, nil
}

func (s *Service) loadOwned(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrNoAuthenticatedUser
	}
	id, err := parseInvoiceID(invoiceID)
	if err != nil {
		return nil, err
	}
	inv, err := s.repo.FindByID(ctx, s.db, userID, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		// a foreign-owned invoice looks exactly like a missing one
		return nil, domain.ErrInvoiceNotFound
	}
	return inv, nil
}

func (s *Service) buildMessage(inv *domain.Invoice, template notifdomain.Template) notifdomain.Message {
	return notifdomain.Message{
		Template: template,
		To:       inv.ClientEmail,
		ToName:   inv.ClientName,
		Variables: map[string]string{
			"client_name":    inv.ClientName,
			"from_name":      inv.FromName,
			"invoice_number": inv.InvoiceNumber,
			"due_date":       format.Date(inv.DueDate),
			"total":          format.Amount(inv.Total, inv.Currency),
			"invoice_link":   s.cfg.BaseURL + "/api/invoice/" + inv.ID.String(),
		},
	}
}

func parseInvoiceID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil {
		return 0, domain.ErrInvalidInvoiceID
	}
	return id, nil
}

func buildItems(genID *snowflake.Node, inv *domain.Invoice, inputs []domain.InvoiceItemInput, now time.Time) []domain.InvoiceItem {
	items := make([]domain.InvoiceItem, 0, len(inputs))
	for _, in := range inputs {
		items = append(items, domain.InvoiceItem{
			ID:          genID.Generate(),
			InvoiceID:   inv.ID,
			UserID:      inv.UserID,
			Description: strings.TrimSpace(in.Description),
			Quantity:    in.Quantity,
			Rate:        in.Rate,
			Amount:      in.Quantity * in.Rate,
			CreatedAt:   now,
		})
	}
	return items
}

func sumItems(items []domain.InvoiceItem) int64 {
	var total int64
	for _, item := range items {
		total += item.Amount
	}
	return total
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
