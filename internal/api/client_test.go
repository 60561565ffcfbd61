package api_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jask/warehousedash/internal/api"
	"github.com/jask/warehousedash/internal/devserver"
	"github.com/jask/warehousedash/internal/session"
)

type fixture struct {
	srv    *devserver.Server
	client *api.Client
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := devserver.NewStore(bcrypt.MinCost)
	require.NoError(t, devserver.Seed(store))
	srv := devserver.New(devserver.Config{JWTSecret: "api-client-test"}, store)
	client := api.NewClient(api.Config{BaseURL: "http://warehouse.test/", HTTPClient: srv.HTTPClient()})
	return fixture{srv: srv, client: client}
}

func (f fixture) session(t *testing.T, email string) session.Session {
	t.Helper()
	tok, err := f.srv.TokenFor(email)
	require.NoError(t, err)
	sess, err := session.FromToken(tok)
	require.NoError(t, err)
	return sess
}

func TestListAndUpdateUsers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.session(t, "ada@warehouse.test")

	users, err := f.client.ListUsers(ctx, admin)
	require.NoError(t, err)
	require.Len(t, users, len(devserver.SeedUsers))
	require.Equal(t, session.RoleAdmin, users[0].Role)
	require.False(t, users[0].CreatedAt.IsZero())

	updated, err := f.client.UpdateUser(ctx, admin, 3, api.UserUpdate{FullName: "Chidi E.", Email: "chidi@warehouse.test", Role: session.RoleManager})
	require.NoError(t, err)
	require.Equal(t, int64(3), updated.ID)
	require.Equal(t, "Chidi E.", updated.FullName)
	require.Equal(t, session.RoleManager, updated.Role)
}

func TestErrorKinds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.session(t, "ada@warehouse.test")
	staff := f.session(t, "chidi@warehouse.test")

	_, err := f.client.ListUsers(ctx, staff)
	require.Equal(t, api.KindForbidden, api.KindOf(err))
	require.Equal(t, "You don't have permission to do this. Admin access required.", api.Message(err))

	_, err = f.client.UpdateUser(ctx, admin, 3, api.UserUpdate{FullName: "x", Email: "bola@warehouse.test", Role: session.RoleStaff})
	require.Equal(t, api.KindValidation, api.KindOf(err))
	require.Equal(t, "Email already registered", api.Message(err))

	_, err = f.client.UpdateUser(ctx, admin, 3, api.UserUpdate{FullName: "", Email: "nope", Role: session.RoleStaff})
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	require.Equal(t, "Full name must not be empty; value is not a valid email address", apiErr.Detail)

	err = f.client.DeleteUser(ctx, admin, 404)
	require.Equal(t, api.KindNotFound, api.KindOf(err))
	require.Equal(t, api.MsgNotFound, api.Message(err))

	_, err = f.client.ListProducts(ctx, session.Session{Token: "garbage"})
	require.Equal(t, api.KindUnauthorized, api.KindOf(err))
}

func TestMessageShowsServerDetail(t *testing.T) {
	err := &api.Error{Op: "list products", Kind: api.KindUnknown, Status: http.StatusInternalServerError, Detail: "database is locked"}
	require.Equal(t, "database is locked", api.Message(err))

	err = &api.Error{Op: "list products", Kind: api.KindUnknown, Status: http.StatusInternalServerError}
	require.Equal(t, api.MsgRetry, api.Message(err))

	err = &api.Error{Op: "list products", Kind: api.KindNetwork, Detail: "dial tcp: connection refused"}
	require.Equal(t, api.MsgRetry, api.Message(err))
}

func TestExpiredSessionIsRejectedLocally(t *testing.T) {
	f := newFixture(t)
	sess := f.session(t, "ada@warehouse.test")
	sess.ExpiresAt = time.Now().Add(-time.Minute)

	_, err := f.client.ListOrders(context.Background(), sess)
	require.Equal(t, api.KindUnauthorized, api.KindOf(err))
	require.Equal(t, api.MsgUnauthorized, api.Message(err))
}

func TestChangeOwnPassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess := f.session(t, "dayo@warehouse.test")

	err := f.client.ChangeOwnPassword(ctx, sess, "wrong", "Abcdefg1!")
	require.Equal(t, api.KindValidation, api.KindOf(err))
	require.Equal(t, "Old password is incorrect", api.PasswordMessage(err))

	require.NoError(t, f.client.ChangeOwnPassword(ctx, sess, "Staff#2024", "Abcdefg1!"))
}

func TestProductsAndOrders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	manager := f.session(t, "bola@warehouse.test")

	before, err := f.client.ListProducts(ctx, manager)
	require.NoError(t, err)
	require.NotEmpty(t, before)

	p, err := f.client.CreateProduct(ctx, manager, api.ProductInput{SKU: "ZZ-1", Name: "Zip Ties", Category: "Packaging", CurrentStock: 10, ReorderLevel: 20, UnitPrice: decimal.RequireFromString("1.25")})
	require.NoError(t, err)
	require.True(t, p.LowStock())
	require.Equal(t, "1.25", p.UnitPrice.StringFixed(2))

	after, err := f.client.ListProducts(ctx, manager)
	require.NoError(t, err)
	require.Len(t, after, len(before)+1)

	orders, err := f.client.ListOrders(ctx, manager)
	require.NoError(t, err)
	require.NotEmpty(t, orders)
	require.NotNil(t, orders[0].DateCreated)
}

type failingTransport struct{ calls int }

func (f *failingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	f.calls++
	return nil, errors.New("connection refused")
}

func TestBreakerOpensOnTransportFailures(t *testing.T) {
	transport := &failingTransport{}
	client := api.NewClient(api.Config{
		BaseURL:         "http://warehouse.test",
		HTTPClient:      &http.Client{Transport: transport},
		BreakerRequests: 2,
		BreakerTimeout:  time.Minute,
	})
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, err := client.ListOrders(ctx, session.Session{Token: "t"})
		require.Equal(t, api.KindNetwork, api.KindOf(err))
	}
	_, err := client.ListOrders(ctx, session.Session{Token: "t"})
	require.Equal(t, api.KindNetwork, api.KindOf(err))
	require.Equal(t, api.MsgRetry, api.Message(err))
	require.Equal(t, 2, transport.calls, "open breaker short-circuits the request")
}

func TestClientErrorsDoNotTripBreaker(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	staff := f.session(t, "chidi@warehouse.test")
	for i := 0; i < 8; i++ {
		_, err := f.client.ListUsers(ctx, staff)
		require.Equal(t, api.KindForbidden, api.KindOf(err))
	}
	_, err := f.client.ListProducts(ctx, staff)
	require.NoError(t, err)
}
