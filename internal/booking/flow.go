// Package booking drives the checkout sequence: confirm passenger details,
// capture payment input, finalize the reservation against the backend.
package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/eIIka/tour-agency/internal/authz"
	"github.com/eIIka/tour-agency/internal/domain"
	"github.com/eIIka/tour-agency/internal/payment"
	"github.com/eIIka/tour-agency/pkg/logger"
)

// State of a single flow instance. The flow is forward-only: there is no
// transition from payment back to details, only full abandonment.
type State string

const (
	StateCollectingDetails State = "COLLECTING_DETAILS"
	StateCollectingPayment State = "COLLECTING_PAYMENT"
	StateConfirmed         State = "CONFIRMED"
)

var (
	// ErrNotPermitted is returned when a non-client tries to start a flow.
	ErrNotPermitted = errors.New("booking flow requires a client account")
	// ErrWrongState is returned when an action does not apply to the
	// flow's current state, including any action after abandonment.
	ErrWrongState = errors.New("action not available in current flow state")
)

// PaymentInput is the ephemeral card input held only in the flow's working
// state. It carries no serialization tags on purpose: it must never leave
// the process.
type PaymentInput struct {
	CardNumber     string
	CardHolderName string
	ExpiryDate     string
	CVV            string
}

// Complete checks the normalized field shapes: 16 card digits grouped to
// 19 characters, MM/YY expiry, 3 digit CVV, non-empty holder name.
func (p PaymentInput) Complete() bool {
	return len(p.CardNumber) == 19 &&
		len(p.ExpiryDate) == 5 &&
		len(p.CVV) == 3 &&
		p.CardHolderName != ""
}

// Gateway is the slice of the backend contract the flow depends on.
type Gateway interface {
	GetTour(ctx context.Context, id int64) (*domain.Tour, error)
	CurrentClient(ctx context.Context) (*domain.ClientProfile, error)
	CreateBooking(ctx context.Context, req domain.BookingRequest) (*domain.Booking, error)
}

// Notifier receives the user-visible outcome of flow transitions.
type Notifier interface {
	Success(message string)
	Error(message string)
}

type Config struct {
	Gateway  Gateway
	Notifier Notifier
	// ProcessingDelay bounds the simulated payment step.
	ProcessingDelay time.Duration
}

// Flow is one run of the checkout state machine, scoped to a single tour
// and user session. A confirmed flow is terminal; booking the same tour
// again starts a fresh instance.
//
// The flow is meant to be driven by a single interaction context, but the
// finalize step is a suspension point, so the working state is guarded
// against a submit arriving while an earlier one is still outstanding.
type Flow struct {
	id     string
	gw     Gateway
	notify Notifier
	delay  time.Duration
	sleep  func(ctx context.Context, d time.Duration) error

	mu         sync.Mutex
	tour       domain.Tour
	details    domain.PassengerDetails
	pay        PaymentInput
	state      State
	submitting bool
	abandoned  bool
	booking    *domain.Booking
}

// Begin gates entry through the role gate, loads the tour and the client
// profile, and seeds the passenger details draft from the profile.
func Begin(ctx context.Context, cfg Config, identity domain.Identity, tourID int64) (*Flow, error) {
	if !authz.Authorize(identity, authz.CapEnterBookingFlow) {
		return nil, ErrNotPermitted
	}

	tour, err := cfg.Gateway.GetTour(ctx, tourID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tour: %w", err)
	}
	profile, err := cfg.Gateway.CurrentClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load client profile: %w", err)
	}

	f := &Flow{
		id:     uuid.NewString(),
		gw:     cfg.Gateway,
		notify: cfg.Notifier,
		delay:  cfg.ProcessingDelay,
		sleep:  sleepCtx,
		tour:   *tour,
		details: domain.PassengerDetails{
			Name:           profile.Name,
			PassportNumber: profile.PassportNumber,
			Phone:          profile.Phone,
		},
		state: StateCollectingDetails,
	}

	logger.Info("booking flow started",
		"flow_id", f.id, "tour_id", tour.ID, "user", identity.Subject)
	return f, nil
}

func (f *Flow) ID() string { return f.id }

func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Flow) Tour() domain.Tour {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tour
}

func (f *Flow) Details() domain.PassengerDetails {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.details
}

// Booking returns the created reservation once the flow is confirmed,
// nil before that.
func (f *Flow) Booking() *domain.Booking {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.booking
}

// Payment returns a copy of the current payment draft for display.
func (f *Flow) Payment() PaymentInput {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pay
}

// SetDetails replaces the passenger details draft. Only valid while the
// flow is still collecting details.
func (f *Flow) SetDetails(d domain.PassengerDetails) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.abandoned || f.state != StateCollectingDetails {
		return ErrWrongState
	}
	f.details = d
	return nil
}

// Payment field setters run the normalizer on every write, mirroring
// per-keystroke reformatting. Writes after confirmation are rejected.

func (f *Flow) SetCardNumber(raw string) error {
	return f.setPaymentField(func(p *PaymentInput) {
		p.CardNumber = payment.NormalizeCardNumber(raw)
	})
}

func (f *Flow) SetCardHolderName(raw string) error {
	return f.setPaymentField(func(p *PaymentInput) {
		p.CardHolderName = raw
	})
}

func (f *Flow) SetExpiryDate(raw string) error {
	return f.setPaymentField(func(p *PaymentInput) {
		p.ExpiryDate = payment.NormalizeExpiryDate(raw)
	})
}

func (f *Flow) SetCVV(raw string) error {
	return f.setPaymentField(func(p *PaymentInput) {
		p.CVV = payment.NormalizeCVV(raw)
	})
}

func (f *Flow) setPaymentField(apply func(*PaymentInput)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.abandoned || f.state == StateConfirmed {
		return ErrWrongState
	}
	apply(&f.pay)
	return nil
}

// ConfirmDetails advances the flow to payment capture. All passenger
// fields must be filled in; on failure the state does not move and the
// error message is meant for inline display.
func (f *Flow) ConfirmDetails() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.abandoned || f.state != StateCollectingDetails {
		return ErrWrongState
	}
	if !f.details.Complete() {
		return &domain.ValidationError{Msg: "missing required passenger field"}
	}
	f.state = StateCollectingPayment
	logger.Info("passenger details confirmed", "flow_id", f.id, "tour_id", f.tour.ID)
	return nil
}

// SubmitPayment finalizes the booking: validate the captured input,
// simulate processing, then issue the single BookingRequest. While a
// finalize call is outstanding, repeated submissions are no-ops, so a
// double-click can never create two bookings. On rejection or transport
// failure the flow stays in payment capture for a user-initiated retry.
func (f *Flow) SubmitPayment(ctx context.Context) error {
	f.mu.Lock()
	if f.abandoned || f.state != StateCollectingPayment {
		f.mu.Unlock()
		return ErrWrongState
	}
	if f.submitting {
		f.mu.Unlock()
		return nil
	}
	if !f.pay.Complete() {
		f.mu.Unlock()
		return &domain.ValidationError{Msg: "incomplete payment details"}
	}
	f.submitting = true
	tourID := f.tour.ID
	f.mu.Unlock()

	if err := f.sleep(ctx, f.delay); err != nil {
		f.clearSubmitting()
		return err
	}

	created, err := f.gw.CreateBooking(ctx, domain.BookingRequest{TourID: tourID})
	if err != nil {
		f.clearSubmitting()
		var rejected *domain.BookingRejectedError
		if errors.As(err, &rejected) {
			logger.Warn("booking rejected", "flow_id", f.id, "tour_id", tourID, "reason", rejected.Message)
			f.notify.Error(rejected.Message)
			return err
		}
		logger.Error("booking finalize failed", "flow_id", f.id, "tour_id", tourID, "error", err)
		f.notify.Error("Payment failed. Please try again.")
		return err
	}

	f.mu.Lock()
	f.submitting = false
	f.state = StateConfirmed
	f.booking = created
	f.pay = PaymentInput{}
	f.mu.Unlock()

	logger.Info("booking confirmed", "flow_id", f.id, "tour_id", tourID, "booking_id", created.ID)
	f.notify.Success("Booking confirmed!")
	return nil
}

// Abandon discards the instance and zeroes the ephemeral input. No
// compensating backend call is made: the reservation only exists after a
// successful finalize.
func (f *Flow) Abandon() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.abandoned {
		return
	}
	f.abandoned = true
	f.pay = PaymentInput{}
	f.details = domain.PassengerDetails{}
	logger.Info("booking flow abandoned", "flow_id", f.id, "tour_id", f.tour.ID, "state", f.state)
}

func (f *Flow) clearSubmitting() {
	f.mu.Lock()
	f.submitting = false
	f.mu.Unlock()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
