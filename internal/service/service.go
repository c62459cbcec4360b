package service

import (
	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"

	"perpustakaan-backend/internal/config"
	"perpustakaan-backend/internal/repository"
	"perpustakaan-backend/internal/service/audit"
	"perpustakaan-backend/internal/service/auth"
	"perpustakaan-backend/internal/service/book"
	"perpustakaan-backend/internal/service/dashboard"
	"perpustakaan-backend/internal/service/email"
	"perpustakaan-backend/internal/service/loan"
	"perpustakaan-backend/internal/service/notification"
	"perpustakaan-backend/internal/service/review"
	"perpustakaan-backend/internal/service/user"
)

type Services struct {
	Auth         auth.Service
	User         user.Service
	Book         book.Service
	Loan         loan.Service
	Review       review.Service
	Notification notification.Service
	Email        email.Service
	Dashboard    dashboard.Service
	Audit        audit.Service
}

func NewServices(repos *repository.Repositories, redisClient *redis.Client, minioClient *minio.Client, cfg *config.Config) *Services {
	emailSvc := email.NewService(cfg)
	notifSvc := notification.NewService(repos.Notification, repos.User, repos.Book, emailSvc)

	loanSvc := loan.NewService(repos.Loan, repos.Book, repos.User, repos.AuditLog, redisClient, cfg)
	loanSvc.SetNotificationService(notifSvc)

	return &Services{
		Auth:         auth.NewService(repos.User, repos.Session, cfg),
		User:         user.NewService(repos.User),
		Book:         book.NewService(repos.Book, repos.Loan, minioClient, redisClient, cfg),
		Loan:         loanSvc,
		Review:       review.NewService(repos.Review, repos.Book),
		Notification: notifSvc,
		Email:        emailSvc,
		Dashboard:    dashboard.NewService(repos.Book, repos.Loan, redisClient),
		Audit:        audit.NewService(repos.AuditLog),
	}
}
