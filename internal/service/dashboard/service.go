package dashboard

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"perpustakaan-backend/internal/domain"
	"perpustakaan-backend/internal/repository"
)

const (
	statsCacheKey = "dashboard:stats"
	statsCacheTTL = 5 * time.Minute
)

type Stats struct {
	TotalBooks      int64 `json:"total_books"`
	TotalCopies     int64 `json:"total_copies"`
	AvailableCopies int64 `json:"available_copies"`
	PendingLoans    int64 `json:"pending_loans"`
	ActiveLoans     int64 `json:"active_loans"`
	OverdueLoans    int64 `json:"overdue_loans"`
	ReturnedLoans   int64 `json:"returned_loans"`
}

type Service interface {
	GetStats(ctx context.Context) (*Stats, error)
}

type service struct {
	bookRepo repository.BookRepository
	loanRepo repository.LoanRepository
	redis    *redis.Client
}

func NewService(bookRepo repository.BookRepository, loanRepo repository.LoanRepository, redisClient *redis.Client) Service {
	return &service{
		bookRepo: bookRepo,
		loanRepo: loanRepo,
		redis:    redisClient,
	}
}

func (s *service) GetStats(ctx context.Context) (*Stats, error) {
	if s.redis != nil {
		cached, err := s.redis.Get(ctx, statsCacheKey).Result()
		if err == nil {
			var stats Stats
			if err := json.Unmarshal([]byte(cached), &stats); err == nil {
				return &stats, nil
			}
		} else if err != redis.Nil {
			log.Printf("dashboard: redis get failed: %v", err)
		}
	}

	stats, err := s.computeStats(ctx)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		if payload, err := json.Marshal(stats); err == nil {
			if err := s.redis.Set(ctx, statsCacheKey, payload, statsCacheTTL).Err(); err != nil {
				log.Printf("dashboard: redis set failed: %v", err)
			}
		}
	}

	return stats, nil
}

func (s *service) computeStats(ctx context.Context) (*Stats, error) {
	totalBooks, err := s.bookRepo.CountAll(ctx)
	if err != nil {
		return nil, err
	}

	totalCopies, availableCopies, err := s.bookRepo.SumCopies(ctx)
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		TotalBooks:      totalBooks,
		TotalCopies:     totalCopies,
		AvailableCopies: availableCopies,
	}

	counts := []struct {
		status domain.LoanStatus
		dest   *int64
	}{
		{domain.LoanPending, &stats.PendingLoans},
		{domain.LoanActive, &stats.ActiveLoans},
		{domain.LoanOverdue, &stats.OverdueLoans},
		{domain.LoanReturned, &stats.ReturnedLoans},
	}
	for _, c := range counts {
		count, err := s.loanRepo.CountByStatus(ctx, c.status)
		if err != nil {
			return nil, err
		}
		*c.dest = count
	}

	return stats, nil
}
