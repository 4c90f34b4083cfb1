package domain

const CheckoutStatusSuccess = "SUCCESS"

// CheckoutSession is the response of the session-creation endpoint. On
// success SessionURL is set, otherwise Message explains the failure.
type CheckoutSession struct {
	Status     string `json:"status"`
	SessionURL string `json:"sessionUrl,omitempty"`
	Message    string `json:"message,omitempty"`
}

func (s *CheckoutSession) Succeeded() bool {
	return s.Status == CheckoutStatusSuccess && s.SessionURL != ""
}
