package booking_test

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eIIka/tour-agency/internal/auth"
	"github.com/eIIka/tour-agency/internal/booking"
	"github.com/eIIka/tour-agency/internal/domain"
	"github.com/eIIka/tour-agency/internal/gateway"
	"github.com/eIIka/tour-agency/internal/notify"
	"github.com/eIIka/tour-agency/internal/session"
	"github.com/eIIka/tour-agency/internal/stub"
)

// Exercises the whole client stack the way the CLI wires it: session
// restore, login, flow entry, checkout, finalize against the stub backend.
func TestCheckoutAgainstStubBackend(t *testing.T) {
	backend := stub.NewServer("test-secret", time.Hour)
	backend.SeedDemoData()
	ts := httptest.NewServer(backend.Handler())
	t.Cleanup(ts.Close)

	creds := session.NewFileCredentialStore(filepath.Join(t.TempDir(), "credential"))
	store, err := session.New(creds)
	require.NoError(t, err)

	gw := gateway.New(ts.URL+"/v1", 5*time.Second, store)
	notifier := notify.New(time.Minute)

	resp, err := gw.Login(context.Background(), "anna@example.com", "client123")
	require.NoError(t, err)
	identity, err := auth.Decode(resp.Token, time.Now())
	require.NoError(t, err)
	require.NoError(t, store.Login(resp.Token, identity))

	cfg := booking.Config{Gateway: gw, Notifier: notifier}
	flow, err := booking.Begin(context.Background(), cfg, store.Current(), 1)
	require.NoError(t, err)

	// Details were seeded from the stored client profile.
	assert.Equal(t, domain.PassengerDetails{
		Name: "Anna Rossi", PassportNumber: "P123", Phone: "+1234567",
	}, flow.Details())
	require.NoError(t, flow.ConfirmDetails())

	require.NoError(t, flow.SetCardNumber("4111111111111111"))
	require.NoError(t, flow.SetExpiryDate("1227"))
	require.NoError(t, flow.SetCVV("123"))
	require.NoError(t, flow.SetCardHolderName("Anna Rossi"))
	require.NoError(t, flow.SubmitPayment(context.Background()))

	assert.Equal(t, booking.StateConfirmed, flow.State())
	require.NotNil(t, flow.Booking())

	active := notifier.Active()
	require.Len(t, active, 1)
	assert.Equal(t, notify.KindSuccess, active[0].Kind)

	// A second flow for the same tour is a fresh instance; the backend
	// rejects the duplicate and the flow stays at payment capture.
	again, err := booking.Begin(context.Background(), cfg, store.Current(), 1)
	require.NoError(t, err)
	require.NoError(t, again.ConfirmDetails())
	require.NoError(t, again.SetCardNumber("4111111111111111"))
	require.NoError(t, again.SetExpiryDate("1227"))
	require.NoError(t, again.SetCVV("123"))
	require.NoError(t, again.SetCardHolderName("Anna Rossi"))

	err = again.SubmitPayment(context.Background())
	var rejected *domain.BookingRejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, "Tour is already booked", rejected.Message)
	assert.Equal(t, booking.StateCollectingPayment, again.State())
}

func TestFlowEntryDeniedForGuideAccount(t *testing.T) {
	backend := stub.NewServer("test-secret", time.Hour)
	backend.SeedDemoData()
	ts := httptest.NewServer(backend.Handler())
	t.Cleanup(ts.Close)

	creds := session.NewFileCredentialStore(filepath.Join(t.TempDir(), "credential"))
	store, err := session.New(creds)
	require.NoError(t, err)

	gw := gateway.New(ts.URL+"/v1", 5*time.Second, store)

	resp, err := gw.Login(context.Background(), "vlad@tour.agency", "guide123")
	require.NoError(t, err)
	identity, err := auth.Decode(resp.Token, time.Now())
	require.NoError(t, err)
	require.NoError(t, store.Login(resp.Token, identity))

	cfg := booking.Config{Gateway: gw, Notifier: notify.New(time.Minute)}
	_, err = booking.Begin(context.Background(), cfg, store.Current(), 1)
	assert.ErrorIs(t, err, booking.ErrNotPermitted)
}
