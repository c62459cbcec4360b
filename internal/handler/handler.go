package handler

import "perpustakaan-backend/internal/service"

type Handlers struct {
	Auth         *AuthHandler
	User         *UserHandler
	Book         *BookHandler
	Loan         *LoanHandler
	Review       *ReviewHandler
	Notification *NotificationHandler
	Dashboard    *DashboardHandler
	Audit        *AuditHandler
}

func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{
		Auth:         NewAuthHandler(services.Auth),
		User:         NewUserHandler(services.User),
		Book:         NewBookHandler(services.Book),
		Loan:         NewLoanHandler(services.Loan),
		Review:       NewReviewHandler(services.Review),
		Notification: NewNotificationHandler(services.Notification),
		Dashboard:    NewDashboardHandler(services.Dashboard),
		Audit:        NewAuditHandler(services.Audit),
	}
}
