package handlers

// AppHandlers holds every handler the router mounts.
type AppHandlers struct {
	AuthHandler         *AuthHandler
	DiscountHandler     *DiscountHandler
	SubscriptionHandler *SubscriptionHandler
	PaymentHandler      *PaymentHandler
	ResumeHandler       *ResumeHandler
}
