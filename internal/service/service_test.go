package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/solarcare/inverter-service/internal/config"
	"github.com/solarcare/inverter-service/internal/domain"
	"github.com/solarcare/inverter-service/internal/events"
	"github.com/solarcare/inverter-service/internal/persistence"
	"github.com/solarcare/inverter-service/internal/repository"
	apperrors "github.com/solarcare/inverter-service/pkg/util"
)

type fakeResets struct {
	mu     sync.Mutex
	tokens map[string]domain.PasswordResetToken
}

func (f *fakeResets) Create(_ context.Context, token *domain.PasswordResetToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[token.Token] = *token
	return nil
}

func (f *fakeResets) Get(_ context.Context, token string) (*domain.PasswordResetToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tokens[token]
	if !ok || time.Now().After(t.ExpiresAt) {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (f *fakeResets) Delete(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tokens, token)
	return nil
}

type sentMail struct {
	to, subject, body string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (f *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

func (f *fakeMailer) last() sentMail {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return sentMail{}
	}
	return f.sent[len(f.sent)-1]
}

type env struct {
	users     repository.UserRepository
	devices   repository.DeviceRepository
	tickets   repository.TicketRepository
	resets    *fakeResets
	mailer    *fakeMailer
	auth      *AuthService
	customers *CustomerService
	deviceSvc *DeviceService
	ticketSvc *TicketService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	logger := zap.NewNop()
	store := persistence.NewMemoryStore()
	cfg := config.Config{
		App: config.AppConfig{ClientURL: "http://client.test"},
		Auth: config.AuthConfig{
			JWTSecret:               "test-secret",
			SessionTTLMinutes:       60,
			PasswordResetTTLMinutes: 30,
			BcryptCost:              bcrypt.MinCost,
		},
	}

	e := &env{
		users:   repository.NewUserRepository(store, logger),
		devices: repository.NewDeviceRepository(store, logger),
		tickets: repository.NewTicketRepository(store, logger),
		resets:  &fakeResets{tokens: map[string]domain.PasswordResetToken{}},
		mailer:  &fakeMailer{},
	}
	dispatcher := events.NewInMemoryDispatcher(logger)
	NewNotificationService(dispatcher, e.mailer, logger, cfg.App.ClientURL).RegisterHandlers()

	e.auth = NewAuthService(cfg, AuthDependencies{
		UserRepo:          e.users,
		PasswordResetRepo: e.resets,
		Dispatcher:        dispatcher,
		Logger:            logger,
	})
	e.customers = NewCustomerService(CustomerDependencies{UserRepo: e.users, DeviceRepo: e.devices, TicketRepo: e.tickets})
	e.deviceSvc = NewDeviceService(DeviceDependencies{DeviceRepo: e.devices, UserRepo: e.users})
	e.ticketSvc = NewTicketService(TicketDependencies{TicketRepo: e.tickets, UserRepo: e.users, Dispatcher: dispatcher, Logger: logger})
	return e
}

func (e *env) register(t *testing.T, email, first string) *domain.User {
	t.Helper()
	user, err := e.auth.Register(context.Background(), RegisterInput{
		FirstName: first,
		LastName:  "Doe",
		EmailID:   email,
		Address:   "12 Grid Road",
		Password:  "Secret1!",
	})
	require.NoError(t, err)
	return user
}

func statusOf(err error) int {
	return apperrors.ToDomainError(err).HTTPStatus
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	e := newEnv(t)
	first := e.register(t, "a@b.com", "Ann")
	assert.Equal(t, domain.RoleCustomer, first.Role)
	assert.NotEmpty(t, first.PasswordHash)

	_, err := e.auth.Register(context.Background(), RegisterInput{
		FirstName: "Other", LastName: "Person", EmailID: "A@B.com", Address: "x",
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, statusOf(err))
}

func TestRegisterChecksPasswordPolicy(t *testing.T) {
	e := newEnv(t)
	_, err := e.auth.Register(context.Background(), RegisterInput{
		FirstName: "Ann", LastName: "Doe", EmailID: "weak@b.com", Password: "short",
	})
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, http.StatusBadRequest, domainErr.HTTPStatus)
	assert.Contains(t, domainErr.Violations, "password must contain a digit")

	_, err = e.auth.Register(context.Background(), RegisterInput{
		FirstName: "Ann", LastName: "Doe", EmailID: "role@b.com", Role: "OWNER",
	})
	assert.Equal(t, http.StatusBadRequest, statusOf(err))
}

func TestLogin(t *testing.T) {
	e := newEnv(t)
	user := e.register(t, "a@b.com", "Ann")

	got, session, err := e.auth.Login(context.Background(), "a@b.com", "Secret1!")
	require.NoError(t, err)
	assert.Equal(t, user.UserID, got.UserID)
	assert.NotEmpty(t, session.Token)

	claims, err := e.auth.TokenManager().ParseToken(session.Token)
	require.NoError(t, err)
	assert.Equal(t, user.UserID, claims.UserID)

	_, _, err = e.auth.Login(context.Background(), "a@b.com", "Wrong1!!")
	assert.Equal(t, http.StatusUnauthorized, statusOf(err))

	_, _, err = e.auth.Login(context.Background(), "nobody@b.com", "Secret1!")
	assert.Equal(t, http.StatusUnauthorized, statusOf(err))
}

func TestLoginWithoutPasswordIsRejected(t *testing.T) {
	e := newEnv(t)
	_, err := e.auth.Register(context.Background(), RegisterInput{
		FirstName: "No", LastName: "Pass", EmailID: "nopass@b.com",
	})
	require.NoError(t, err)

	_, _, err = e.auth.Login(context.Background(), "nopass@b.com", "")
	assert.Equal(t, http.StatusUnauthorized, statusOf(err))
}

func TestPasswordResetFlow(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.register(t, "reset@b.com", "Rita")

	_, err := e.auth.RequestPasswordReset(ctx, "missing@b.com")
	assert.Equal(t, http.StatusNotFound, statusOf(err))

	token, err := e.auth.RequestPasswordReset(ctx, "reset@b.com")
	require.NoError(t, err)
	mail := e.mailer.last()
	assert.Equal(t, "reset@b.com", mail.to)
	assert.Contains(t, mail.body, "http://client.test/reset-password?token="+token.Token)

	err = e.auth.ConfirmPasswordReset(ctx, token.Token, "weak")
	assert.Equal(t, http.StatusBadRequest, statusOf(err))

	require.NoError(t, e.auth.ConfirmPasswordReset(ctx, token.Token, "Brand-new1"))
	_, _, err = e.auth.Login(ctx, "reset@b.com", "Brand-new1")
	assert.NoError(t, err)

	err = e.auth.ConfirmPasswordReset(ctx, token.Token, "Another-1")
	assert.Equal(t, http.StatusUnauthorized, statusOf(err))
}

func TestCustomerPagination(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	for i := 0; i < 7; i++ {
		e.register(t, fmt.Sprintf("c%d@b.com", i), fmt.Sprintf("Customer%d", i))
	}
	_, err := e.auth.Register(ctx, RegisterInput{FirstName: "Admin", LastName: "A", EmailID: "admin@b.com", Role: "ADMIN"})
	require.NoError(t, err)

	page, err := e.customers.List(ctx, CustomerQuery{Page: 2, Limit: 3})
	require.NoError(t, err)
	assert.Len(t, page.Customers, 3)
	assert.Equal(t, Pagination{
		Page:            2,
		Limit:           3,
		TotalCustomers:  7,
		TotalPages:      3,
		HasNextPage:     true,
		HasPreviousPage: true,
	}, page.Pagination)
	assert.Equal(t, "createdAt", page.Query.SortBy)
	assert.Equal(t, "desc", page.Query.SortOrder)

	last, err := e.customers.List(ctx, CustomerQuery{Page: 3, Limit: 3})
	require.NoError(t, err)
	assert.Len(t, last.Customers, 1)
	assert.False(t, last.Pagination.HasNextPage)

	beyond, err := e.customers.List(ctx, CustomerQuery{Page: 9, Limit: 3})
	require.NoError(t, err)
	assert.Empty(t, beyond.Customers)
}

func TestCustomerSearchAndSort(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.register(t, "zed@b.com", "Zed")
	e.register(t, "amy@b.com", "Amy")
	e.register(t, "bob@b.com", "Bob")

	page, err := e.customers.List(ctx, CustomerQuery{Search: "ZED"})
	require.NoError(t, err)
	require.Len(t, page.Customers, 1)
	assert.Equal(t, "zed@b.com", page.Customers[0].EmailID)

	sorted, err := e.customers.List(ctx, CustomerQuery{SortBy: "firstName", SortOrder: "ASC"})
	require.NoError(t, err)
	var names []string
	for _, c := range sorted.Customers {
		names = append(names, c.FirstName)
	}
	assert.Equal(t, []string{"Amy", "Bob", "Zed"}, names)
}

func TestCustomerQueryBounds(t *testing.T) {
	e := newEnv(t)
	tests := []CustomerQuery{
		{Limit: 101},
		{Limit: -1},
		{Page: -2},
		{SortBy: "password"},
		{SortOrder: "sideways"},
	}
	for _, q := range tests {
		_, err := e.customers.List(context.Background(), q)
		assert.Equal(t, http.StatusBadRequest, statusOf(err), "%+v", q)
	}
}

func TestCustomerUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	user := e.register(t, "upd@b.com", "Una")

	_, err := e.customers.Update(ctx, user.UserID, repository.UserUpdate{})
	assert.Equal(t, http.StatusBadRequest, statusOf(err))

	city := "Accra"
	updated, err := e.customers.Update(ctx, user.UserID, repository.UserUpdate{City: &city})
	require.NoError(t, err)
	assert.Equal(t, "Accra", updated.City)

	removed, err := e.customers.Delete(ctx, user.UserID)
	require.NoError(t, err)
	assert.Equal(t, user.UserID, removed.UserID)

	_, err = e.customers.Delete(ctx, user.UserID)
	assert.Equal(t, http.StatusNotFound, statusOf(err))
	_, err = e.customers.Update(ctx, user.UserID, repository.UserUpdate{City: &city})
	assert.Equal(t, http.StatusNotFound, statusOf(err))
}

func TestDashboard(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	user := e.register(t, "dash@b.com", "Dana")

	device, err := e.deviceSvc.Register(ctx, DeviceRegisterInput{SerialNo: "SN-1", CustomerID: user.UserID})
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		_, err := e.ticketSvc.Create(ctx, TicketCreateInput{CustomerID: user.UserID, DeviceID: device.DeviceID, Message: "fault"})
		require.NoError(t, err)
	}
	tickets, err := e.ticketSvc.List(ctx, repository.TicketFilter{CustomerID: user.UserID})
	require.NoError(t, err)
	_, err = e.ticketSvc.UpdateStatus(ctx, tickets[0].TicketID, domain.TicketStatusCompleted)
	require.NoError(t, err)

	summary, err := e.customers.Dashboard(ctx, user.UserID)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.DeviceCount)
	assert.Equal(t, 2, summary.TotalTickets)
	assert.Equal(t, 1, summary.TicketCounts[domain.TicketStatusOpen])
	assert.Equal(t, 1, summary.TicketCounts[domain.TicketStatusCompleted])
	assert.Equal(t, 0, summary.TicketCounts[domain.TicketStatusInProgress])

	_, err = e.customers.Dashboard(ctx, "ghost")
	assert.Equal(t, http.StatusNotFound, statusOf(err))
}

func TestDeviceRegistration(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	user := e.register(t, "dev@b.com", "Dev")

	_, err := e.deviceSvc.Register(ctx, DeviceRegisterInput{SerialNo: "SN-100", CustomerID: "ghost"})
	assert.Equal(t, http.StatusNotFound, statusOf(err))

	device, err := e.deviceSvc.Register(ctx, DeviceRegisterInput{SerialNo: "SN-100", DeviceType: "hybrid", CustomerID: user.UserID})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(device.DeviceID, "DEV"))

	_, err = e.deviceSvc.Register(ctx, DeviceRegisterInput{SerialNo: "SN-100", CustomerID: user.UserID})
	assert.Equal(t, http.StatusConflict, statusOf(err))

	devices, err := e.deviceSvc.List(ctx, user.UserID)
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, "SN-100", devices[0].SerialNo)

	ghost := "ghost"
	_, err = e.deviceSvc.Update(ctx, device.DeviceID, repository.DeviceUpdate{CustomerID: &ghost})
	assert.Equal(t, http.StatusNotFound, statusOf(err))

	removed, err := e.deviceSvc.Delete(ctx, device.DeviceID)
	require.NoError(t, err)
	assert.Equal(t, device.DeviceID, removed.DeviceID)
	_, err = e.deviceSvc.Delete(ctx, device.DeviceID)
	assert.Equal(t, http.StatusNotFound, statusOf(err))
}

func TestTicketNotifications(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	user := e.register(t, "owner@b.com", "Olu")

	ticket, err := e.ticketSvc.Create(ctx, TicketCreateInput{CustomerID: user.UserID, DeviceID: "DEV1", Message: "inverter beeping"})
	require.NoError(t, err)
	assert.Equal(t, "owner@b.com", ticket.EmailID)

	mail := e.mailer.last()
	assert.Equal(t, "owner@b.com", mail.to)
	assert.Contains(t, mail.subject, ticket.TicketID)

	e.mailer.sent = nil
	_, err = e.ticketSvc.UpdateStatus(ctx, ticket.TicketID, domain.TicketStatusOpen)
	require.NoError(t, err)
	assert.Empty(t, e.mailer.sent)

	updated, err := e.ticketSvc.UpdateStatus(ctx, ticket.TicketID, domain.TicketStatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, updated.Status)
	assert.Contains(t, e.mailer.last().body, "IN_PROGRESS")

	_, err = e.ticketSvc.UpdateStatus(ctx, "TKTMISSING", domain.TicketStatusOpen)
	assert.Equal(t, http.StatusNotFound, statusOf(err))
}

func TestParseTicketStatus(t *testing.T) {
	status, err := ParseTicketStatus(" done ")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusCompleted, status)

	_, err = ParseTicketStatus("bogus")
	assert.Equal(t, http.StatusBadRequest, statusOf(err))
}

func TestEnsureAdminSeedsOnce(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	require.NoError(t, e.auth.EnsureAdmin(ctx, "root@example.com", "Str0ng!Pass"))
	require.NoError(t, e.auth.EnsureAdmin(ctx, "ROOT@example.com", "Str0ng!Pass"))

	admins, err := e.users.ListByRole(ctx, domain.RoleSuperAdmin)
	require.NoError(t, err)
	require.Len(t, admins, 1)
	assert.Equal(t, "root@example.com", admins[0].EmailID)

	user, _, err := e.auth.Login(ctx, "root@example.com", "Str0ng!Pass")
	require.NoError(t, err)
	assert.True(t, user.Role.IsAdmin())
}

func TestBlankInputsAreRejected(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	_, err := e.auth.Register(ctx, RegisterInput{FirstName: "  ", LastName: "\t", EmailID: "blank@b.com"})
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, http.StatusBadRequest, domainErr.HTTPStatus)
	assert.Equal(t, []string{"firstName must not be blank", "lastName must not be blank"}, domainErr.Violations)

	found, err := e.users.FindByEmail(ctx, "blank@b.com")
	require.NoError(t, err)
	assert.Nil(t, found)
	e.register(t, "blank@b.com", "Bea")

	owner := e.register(t, "owner@b.com", "Olu")
	_, err = e.deviceSvc.Register(ctx, DeviceRegisterInput{SerialNo: "   ", CustomerID: owner.UserID})
	assert.Equal(t, http.StatusBadRequest, statusOf(err))

	_, err = e.ticketSvc.Create(ctx, TicketCreateInput{CustomerID: owner.UserID, DeviceID: "DEV1", Message: "   "})
	assert.Equal(t, http.StatusBadRequest, statusOf(err))
	tickets, err := e.ticketSvc.List(ctx, repository.TicketFilter{})
	require.NoError(t, err)
	assert.Empty(t, tickets)
}
