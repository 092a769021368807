package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	accountdomain "github.com/smallbiznis/faktur/internal/account/domain"
	"github.com/smallbiznis/faktur/internal/account/session"
	"github.com/smallbiznis/faktur/internal/config"
	invoicedomain "github.com/smallbiznis/faktur/internal/invoice/domain"
	"github.com/smallbiznis/faktur/internal/providers/pdf"
)

const testToken = "raw-session-token"

type stubAccountService struct {
	user      accountdomain.User
	loginErr  error
	signupErr error
}

func (s *stubAccountService) Signup(_ context.Context, _ accountdomain.SignupRequest) (*accountdomain.LoginResult, error) {
	if s.signupErr != nil {
		return nil, s.signupErr
	}
	return &accountdomain.LoginResult{User: s.user, RawToken: testToken, ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (s *stubAccountService) Login(_ context.Context, _ accountdomain.LoginRequest) (*accountdomain.LoginResult, error) {
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return &accountdomain.LoginResult{User: s.user, RawToken: testToken, ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (s *stubAccountService) Logout(_ context.Context, _ string) error { return nil }

func (s *stubAccountService) Authenticate(_ context.Context, rawToken string) (*accountdomain.User, error) {
	if rawToken != testToken {
		return nil, accountdomain.ErrInvalidSession
	}
	u := s.user
	return &u, nil
}

func (s *stubAccountService) Onboard(_ context.Context, req accountdomain.OnboardRequest) (accountdomain.User, error) {
	if err := req.Validate(); err != nil {
		return accountdomain.User{}, err
	}
	u := s.user
	u.BusinessName = req.BusinessName
	u.Onboarded = true
	return u, nil
}

func (s *stubAccountService) GetByID(_ context.Context, _ string) (accountdomain.User, error) {
	return s.user, nil
}

type stubInvoiceService struct {
	invoice   *invoicedomain.Invoice
	err       error
	reminders []string
}

func (s *stubInvoiceService) Create(_ context.Context, req invoicedomain.CreateInvoiceRequest) (*invoicedomain.Invoice, error) {
	if s.err != nil {
		return nil, s.err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.invoice, nil
}

func (s *stubInvoiceService) Update(_ context.Context, _ string, _ invoicedomain.UpdateInvoiceRequest) (*invoicedomain.Invoice, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.invoice, nil
}

func (s *stubInvoiceService) Delete(_ context.Context, _ string) error { return s.err }

func (s *stubInvoiceService) MarkPaid(_ context.Context, _ string) (*invoicedomain.Invoice, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.invoice, nil
}

func (s *stubInvoiceService) Send(_ context.Context, _ string) (*invoicedomain.Invoice, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.invoice, nil
}

func (s *stubInvoiceService) SendReminder(_ context.Context, invoiceID string) error {
	if s.err != nil {
		return s.err
	}
	s.reminders = append(s.reminders, invoiceID)
	return nil
}

func (s *stubInvoiceService) List(_ context.Context, _ invoicedomain.ListInvoiceRequest) (*invoicedomain.ListInvoiceResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &invoicedomain.ListInvoiceResponse{Invoices: []*invoicedomain.Invoice{s.invoice}}, nil
}

func (s *stubInvoiceService) GetByID(_ context.Context, _ string) (*invoicedomain.Invoice, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.invoice, nil
}

func (s *stubInvoiceService) Summarize(_ context.Context) (*invoicedomain.Summary, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &invoicedomain.Summary{TotalInvoices: 1}, nil
}

func (s *stubInvoiceService) GetForRender(_ context.Context, invoiceID string) (*invoicedomain.Invoice, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.invoice == nil || s.invoice.ID.String() != strings.TrimSpace(invoiceID) {
		return nil, invoicedomain.ErrInvoiceNotFound
	}
	return s.invoice, nil
}

type stubPDFProvider struct {
	err error
}

func (p *stubPDFProvider) GenerateInvoice(_ context.Context, _ pdf.InvoiceData) (io.Reader, error) {
	if p.err != nil {
		return nil, p.err
	}
	return bytes.NewReader([]byte("%PDF-1.7 fake")), nil
}

type testHarness struct {
	server     *Server
	accountSvc *stubAccountService
	invoiceSvc *stubInvoiceService
	pdfSvc     *stubPDFProvider
}

func sampleInvoice(t *testing.T) (*invoicedomain.Invoice, *snowflake.Node) {
	t.Helper()
	node, err := snowflake.NewNode(2)
	require.NoError(t, err)
	return &invoicedomain.Invoice{
		ID:            node.Generate(),
		UserID:        node.Generate(),
		InvoiceNumber: "INV-000001",
		Currency:      "ZAR",
		FromName:      "Acme Studio",
		FromEmail:     "billing@acme.test",
		ClientName:    "Jan Smit",
		ClientEmail:   "jan@client.test",
		Status:        invoicedomain.InvoiceStatusCreated,
		Total:         2000000,
		Items: []invoicedomain.InvoiceItem{
			{Description: "Design", Quantity: 10, Rate: 50000, Amount: 500000},
		},
	}, node
}

func newHarness(t *testing.T) *testHarness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	inv, node := sampleInvoice(t)
	h := &testHarness{
		accountSvc: &stubAccountService{user: accountdomain.User{
			ID:        node.Generate(),
			Email:     "owner@acme.test",
			BankName:  "First National",
			Onboarded: true,
		}},
		invoiceSvc: &stubInvoiceService{invoice: inv},
		pdfSvc:     &stubPDFProvider{},
	}

	r := gin.New()
	r.Use(ErrorHandlingMiddleware())

	cfg := config.Config{HTTPAddr: ":0"}
	h.server = NewServer(ServerParams{
		Gin:        r,
		Cfg:        cfg,
		Sessions:   session.NewManager(cfg),
		AccountSvc: h.accountSvc,
		InvoiceSvc: h.invoiceSvc,
		PDFSvc:     h.pdfSvc,
	})
	return h
}

func (h *testHarness) do(t *testing.T, method, path string, body any, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.AddCookie(&http.Cookie{Name: session.DefaultCookieName, Value: testToken})
	}
	w := httptest.NewRecorder()
	h.server.Engine().ServeHTTP(w, req)
	return w
}

func TestSignupSetsSessionCookie(t *testing.T) {
	h := newHarness(t)

	w := h.do(t, http.MethodPost, "/auth/signup", gin.H{"email": "owner@acme.test", "password": "longenough"}, false)
	require.Equal(t, http.StatusCreated, w.Code)

	var found bool
	for _, c := range w.Result().Cookies() {
		if c.Name == session.DefaultCookieName && c.Value == testToken {
			found = true
			assert.True(t, c.HttpOnly)
		}
	}
	assert.True(t, found, "session cookie should be set")
}

func TestLoginInvalidCredentials(t *testing.T) {
	h := newHarness(t)
	h.accountSvc.loginErr = accountdomain.ErrInvalidCredentials

	w := h.do(t, http.MethodPost, "/auth/login", gin.H{"email": "x@y.test", "password": "wrong"}, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSignupConflict(t *testing.T) {
	h := newHarness(t)
	h.accountSvc.signupErr = accountdomain.ErrUserExists

	w := h.do(t, http.MethodPost, "/auth/signup", gin.H{"email": "x@y.test", "password": "longenough"}, false)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAPIRequiresAuth(t *testing.T) {
	h := newHarness(t)

	for _, path := range []string{"/api/invoices", "/api/dashboard"} {
		w := h.do(t, http.MethodGet, path, nil, false)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestOnboardValidation(t *testing.T) {
	h := newHarness(t)

	w := h.do(t, http.MethodPost, "/auth/onboarding", gin.H{"business_name": ""}, true)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Error struct {
			Type   string            `json:"type"`
			Errors []ValidationError `json:"errors"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "validation_error", resp.Error.Type)
	assert.NotEmpty(t, resp.Error.Errors)
}

func TestOnboardSuccess(t *testing.T) {
	h := newHarness(t)

	w := h.do(t, http.MethodPost, "/auth/onboarding", gin.H{
		"business_name":     "Acme Studio",
		"address":           "12 Long Street, Cape Town",
		"bank_name":         "First National",
		"bank_account_name": "Acme Studio",
		"account_number":    "1234567890",
		"branch_code":       "250655",
	}, true)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateInvoice(t *testing.T) {
	h := newHarness(t)

	w := h.do(t, http.MethodPost, "/api/invoices", gin.H{
		"currency":       "ZAR",
		"from_name":      "Acme Studio",
		"from_email":     "billing@acme.test",
		"from_address":   "12 Long Street, Cape Town",
		"client_name":    "Jan Smit",
		"client_email":   "jan@client.test",
		"client_address": "4 Main Road, Durban",
		"items": []gin.H{
			{"description": "Design", "quantity": 10, "rate": 50000},
		},
	}, true)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCreateInvoiceValidation(t *testing.T) {
	h := newHarness(t)

	w := h.do(t, http.MethodPost, "/api/invoices", gin.H{"currency": "ZAR"}, true)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "client_email")
}

func TestInvoiceNotFound(t *testing.T) {
	h := newHarness(t)
	h.invoiceSvc.err = invoicedomain.ErrInvoiceNotFound

	w := h.do(t, http.MethodGet, "/api/invoices/12345", nil, true)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSendClosedInvoice(t *testing.T) {
	h := newHarness(t)
	h.invoiceSvc.err = invoicedomain.ErrInvoiceClosed

	w := h.do(t, http.MethodPost, "/api/invoices/12345/send", nil, true)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSendReminderQueued(t *testing.T) {
	h := newHarness(t)
	id := h.invoiceSvc.invoice.ID.String()

	w := h.do(t, http.MethodPost, "/api/email/"+id, nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "queued")
	assert.Equal(t, []string{id}, h.invoiceSvc.reminders)
}

func TestDownloadInvoicePDF(t *testing.T) {
	h := newHarness(t)
	id := h.invoiceSvc.invoice.ID.String()

	w := h.do(t, http.MethodGet, "/api/invoice/"+id, nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "INV-000001.pdf")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))
}

func TestDownloadInvoicePDFNotFound(t *testing.T) {
	h := newHarness(t)

	w := h.do(t, http.MethodGet, "/api/invoice/999999999", nil, false)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDownloadInvoicePDFRenderFailure(t *testing.T) {
	h := newHarness(t)
	h.pdfSvc.err = errors.New("render blew up")

	w := h.do(t, http.MethodGet, "/api/invoice/"+h.invoiceSvc.invoice.ID.String(), nil, false)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestDashboard(t *testing.T) {
	h := newHarness(t)

	w := h.do(t, http.MethodGet, "/api/dashboard", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "total_invoices")
}
