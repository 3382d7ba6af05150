package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/eIIka/tour-agency/internal/auth"
	"github.com/eIIka/tour-agency/internal/authz"
	"github.com/eIIka/tour-agency/internal/booking"
	"github.com/eIIka/tour-agency/internal/domain"
	"github.com/eIIka/tour-agency/internal/gateway"
	"github.com/eIIka/tour-agency/internal/notify"
	"github.com/eIIka/tour-agency/internal/session"
	"github.com/eIIka/tour-agency/pkg/config"
	"github.com/eIIka/tour-agency/pkg/logger"
)

const usage = `Usage: touragency <command> [flags]

Commands:
  login      -email -password      authenticate and store the session
  logout                           clear the stored session
  whoami                           show the current identity
  register   -role -email ...      create an account
  tours      [-country] [-guide] [-max-price]
  book       -tour <id>            run the booking checkout
  bookings                         list my bookings
`

type app struct {
	cfg      *config.Config
	store    *session.Store
	gw       *gateway.Client
	notifier *notify.Notifier
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	store, err := session.New(session.NewFileCredentialStore(cfg.Session.CredentialFile))
	if err != nil {
		logger.Error("failed to restore session", "error", err)
		os.Exit(1)
	}

	notifier := notify.New(cfg.Notify.DismissAfter)
	notifier.OnChange(func(visible []notify.Notification) {
		for _, n := range visible {
			fmt.Printf("[%s] %s\n", n.Kind, n.Message)
		}
	})

	a := &app{
		cfg:      cfg,
		store:    store,
		gw:       gateway.New(cfg.Backend.BaseURL, cfg.Backend.Timeout, store),
		notifier: notifier,
	}

	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(2)
	}

	ctx := context.Background()
	if err := a.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "login":
		return a.login(ctx, args)
	case "logout":
		return a.store.Logout()
	case "whoami":
		return a.whoami()
	case "register":
		return a.register(ctx, args)
	case "tours":
		return a.tours(ctx, args)
	case "book":
		return a.book(ctx, args)
	case "bookings":
		return a.bookings(ctx)
	default:
		fmt.Print(usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	_ = fs.Parse(args)
	if *email == "" || *password == "" {
		return errors.New("both -email and -password are required")
	}

	resp, err := a.gw.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	identity, err := auth.Decode(resp.Token, time.Now())
	if err != nil {
		return fmt.Errorf("backend returned an unusable token: %w", err)
	}
	if err := a.store.Login(resp.Token, identity); err != nil {
		return err
	}
	fmt.Printf("Logged in as %s (%s)\n", identity.Subject, identity.Role)
	return nil
}

func (a *app) whoami() error {
	identity := a.store.Current()
	if identity.IsAnonymous() {
		fmt.Println("Not logged in.")
		return nil
	}
	fmt.Printf("%s (%s), session expires %s\n",
		identity.Subject, identity.Role, identity.ExpiresAt.Format("2006-01-02 15:04"))
	return nil
}

func (a *app) register(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	role := fs.String("role", "client", "account role: client or guide")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	name := fs.String("name", "", "full name")
	phone := fs.String("phone", "", "phone number (clients)")
	passport := fs.String("passport", "", "passport number (clients)")
	language := fs.String("language", "", "spoken language (guides)")
	_ = fs.Parse(args)

	req := gateway.RegisterRequest{
		Email:    *email,
		Password: *password,
		Name:     *name,
	}
	switch strings.ToLower(*role) {
	case "client":
		req.Role = string(domain.RoleClient)
		req.Phone = *phone
		req.PassportNumber = *passport
	case "guide":
		req.Role = string(domain.RoleGuide)
		req.Language = *language
	default:
		return fmt.Errorf("unknown role %q", *role)
	}

	info, err := a.gw.Register(ctx, req)
	if err != nil {
		return err
	}
	fmt.Printf("Registered %s. You can log in now.\n", info.Email)
	return nil
}

func (a *app) tours(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("tours", flag.ExitOnError)
	country := fs.String("country", "", "filter by country name")
	guide := fs.String("guide", "", "filter by guide name")
	maxPrice := fs.Float64("max-price", 0, "filter by maximum price")
	_ = fs.Parse(args)

	tours, err := a.gw.ListTours(ctx, gateway.TourFilter{
		Country:  *country,
		Guide:    *guide,
		MaxPrice: *maxPrice,
	})
	if err != nil {
		return err
	}
	if len(tours) == 0 {
		fmt.Println("No tours found matching your criteria.")
		return nil
	}
	for _, t := range tours {
		fmt.Printf("#%d  %-24s %-14s $%-8.2f %s – %s  guide: %s\n",
			t.ID, t.Name, t.CountryName, t.Price, t.StartDate, t.EndDate, t.GuideName)
	}
	return nil
}

func (a *app) book(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("book", flag.ExitOnError)
	tourID := fs.Int64("tour", 0, "tour id to book")
	_ = fs.Parse(args)
	if *tourID == 0 {
		return errors.New("-tour is required")
	}

	identity := a.store.Current()
	if !authz.Authorize(identity, authz.CapEnterBookingFlow) {
		return errors.New("booking requires a logged-in client account")
	}

	flow, err := booking.Begin(ctx, booking.Config{
		Gateway:         a.gw,
		Notifier:        a.notifier,
		ProcessingDelay: a.cfg.Booking.ProcessingDelay,
	}, identity, *tourID)
	if err != nil {
		return err
	}
	defer func() {
		if flow.State() != booking.StateConfirmed {
			flow.Abandon()
		}
	}()

	tour := flow.Tour()
	fmt.Printf("Booking tour: %s (%s), $%.2f\n", tour.Name, tour.CountryName, tour.Price)

	in := bufio.NewReader(os.Stdin)
	if err := a.collectDetails(in, flow); err != nil {
		return err
	}
	if err := a.collectPayment(ctx, in, flow); err != nil {
		return err
	}

	created := flow.Booking()
	fmt.Printf("E-ticket voucher: booking #%d, %s – %s, guide %s\n",
		created.ID, tour.StartDate, tour.EndDate, tour.GuideName)
	return nil
}

// collectDetails lets the user edit the profile-seeded draft until it
// passes confirmation.
func (a *app) collectDetails(in *bufio.Reader, flow *booking.Flow) error {
	fmt.Println("Step 1 of 2: confirm passenger details (enter keeps the current value)")
	for {
		draft := flow.Details()
		draft.Name = promptDefault(in, "Name", draft.Name)
		draft.PassportNumber = promptDefault(in, "Passport number", draft.PassportNumber)
		draft.Phone = promptDefault(in, "Phone", draft.Phone)
		if err := flow.SetDetails(draft); err != nil {
			return err
		}

		err := flow.ConfirmDetails()
		var validation *domain.ValidationError
		if errors.As(err, &validation) {
			fmt.Println(validation.Msg)
			continue
		}
		return err
	}
}

// collectPayment captures card input until the flow accepts the submit.
// Normalization runs on every write, so the echoed values are canonical.
func (a *app) collectPayment(ctx context.Context, in *bufio.Reader, flow *booking.Flow) error {
	fmt.Println("Step 2 of 2: payment (simulated, nothing is charged)")
	for {
		_ = flow.SetCardNumber(prompt(in, "Card number"))
		_ = flow.SetCardHolderName(prompt(in, "Card holder name"))
		_ = flow.SetExpiryDate(prompt(in, "Expiry date (MM/YY)"))
		_ = flow.SetCVV(prompt(in, "CVV"))

		pay := flow.Payment()
		fmt.Printf("  %s  exp %s  cvv %s\n", pay.CardNumber, pay.ExpiryDate, pay.CVV)

		fmt.Println("Processing payment...")
		err := flow.SubmitPayment(ctx)
		if err == nil {
			return nil
		}
		var validation *domain.ValidationError
		if errors.As(err, &validation) {
			fmt.Println(validation.Msg)
			continue
		}
		var rejected *domain.BookingRejectedError
		if errors.As(err, &rejected) {
			// Already surfaced through the notifier; let the user retry
			// or give up.
			if promptDefault(in, "Try again? (y/n)", "n") != "y" {
				return err
			}
			continue
		}
		return err
	}
}

func (a *app) bookings(ctx context.Context) error {
	profile, err := a.gw.CurrentClient(ctx)
	if err != nil {
		return err
	}
	bookings, err := a.gw.ListClientBookings(ctx, profile.ID)
	if err != nil {
		return err
	}
	if len(bookings) == 0 {
		fmt.Println("You currently have no active bookings. Time to explore!")
		return nil
	}
	for _, b := range bookings {
		fmt.Printf("#%d  %s (%s), %s – %s\n",
			b.ID, b.Tour.Name, b.Tour.CountryName, b.Tour.StartDate, b.Tour.EndDate)
	}
	return nil
}

func prompt(in *bufio.Reader, label string) string {
	fmt.Printf("%s: ", label)
	line, _ := in.ReadString('\n')
	return strings.TrimSpace(line)
}

func promptDefault(in *bufio.Reader, label, current string) string {
	fmt.Printf("%s [%s]: ", label, current)
	line, _ := in.ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		return current
	}
	return line
}
