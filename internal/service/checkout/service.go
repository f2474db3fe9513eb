package checkout

import (
	"context"
	"strconv"
	"strings"
	"time"
)

// Payment method identifiers accepted by the mock gateway.
const (
	MethodCard       = "card"
	MethodUPI        = "upi"
	MethodNetBanking = "netbanking"
)

// Request carries the payment selection for one offer.
type Request struct {
	OfferID string `json:"offerId"`
	Method  string `json:"method"`

	CardNumber string `json:"cardNumber,omitempty"`
	CardName   string `json:"cardName,omitempty"`
	ExpiryDate string `json:"expiryDate,omitempty"`
	CVV        string `json:"cvv,omitempty"`

	UPIID string `json:"upiId,omitempty"`
	Bank  string `json:"bank,omitempty"`
}

// Confirmation is returned on successful payment.
type Confirmation struct {
	ConfirmationID string    `json:"confirmationId"`
	OfferID        string    `json:"offerId"`
	PaidAt         time.Time `json:"paidAt"`
}

// ValidationError marks user-correctable input problems; callers surface
// the message verbatim.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(msg string) error {
	return &ValidationError{Message: msg}
}

// Service is the mock payment gateway: it validates the payment details,
// waits out a simulated processing delay and mints a confirmation id.
type Service struct {
	delay time.Duration
	now   func() time.Time
}

// NewService returns a gateway with the given processing delay.
func NewService(delay time.Duration) *Service {
	return &Service{
		delay: delay,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Process validates the request and, after the simulated delay, confirms
// the payment. Validation failures are *ValidationError; conversation and
// recommendation state are never touched.
func (s *Service) Process(ctx context.Context, req Request) (Confirmation, error) {
	if err := validate(req); err != nil {
		return Confirmation{}, err
	}

	if s.delay > 0 {
		select {
		case <-ctx.Done():
			return Confirmation{}, ctx.Err()
		case <-time.After(s.delay):
		}
	}

	now := s.now()
	return Confirmation{
		ConfirmationID: confirmationID(now),
		OfferID:        req.OfferID,
		PaidAt:         now,
	}, nil
}

// confirmationID is the policy number shown to the customer: a fixed prefix
// plus the last 8 digits of the millisecond timestamp.
func confirmationID(now time.Time) string {
	ts := strconv.FormatInt(now.UnixMilli(), 10)
	return "INS-" + ts[len(ts)-8:]
}

func validate(req Request) error {
	if req.OfferID == "" {
		return invalid("Please select a policy")
	}

	switch req.Method {
	case MethodCard:
		if req.CardNumber == "" || req.CardName == "" || req.ExpiryDate == "" || req.CVV == "" {
			return invalid("Please fill in all card details")
		}
		if len(digitsOnly(req.CardNumber)) != 16 {
			return invalid("Card number must be 16 digits")
		}
		if len(req.CVV) < 3 {
			return invalid("CVV must be at least 3 digits")
		}
	case MethodUPI:
		if req.UPIID == "" || !strings.Contains(req.UPIID, "@") {
			return invalid("Please enter a valid UPI ID")
		}
	case MethodNetBanking:
		if req.Bank == "" {
			return invalid("Please select a bank")
		}
	case "":
		return invalid("Please select a payment method")
	default:
		return invalid("Unsupported payment method")
	}
	return nil
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
