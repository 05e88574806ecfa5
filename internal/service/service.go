package service

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/avolkov/family-costs-bot/internal/chatstate"
	"github.com/avolkov/family-costs-bot/internal/logger"
	"github.com/avolkov/family-costs-bot/internal/parser"
	"github.com/avolkov/family-costs-bot/internal/repository"
)

type CostService struct {
	repo   *repository.SQLiteRepository
	state  *chatstate.Store
	atomic bool
}

// SavedCost — записанный расход вместе с id строки в базе.
type SavedCost struct {
	ID   int64
	Cost parser.Cost
}

// Report — итог записи пачки. В атомарном режиме Failed всегда пуст;
// в построчном режиме там оказываются расходы, которые не записались.
type Report struct {
	Saved  []SavedCost
	Failed []parser.Cost
}

func (r *Report) SavedCosts() []parser.Cost {
	costs := make([]parser.Cost, 0, len(r.Saved))
	for _, s := range r.Saved {
		costs = append(costs, s.Cost)
	}
	return costs
}

func (r *Report) IDs() []int64 {
	ids := make([]int64, 0, len(r.Saved))
	for _, s := range r.Saved {
		ids = append(ids, s.ID)
	}
	return ids
}

// UserStats — агрегат расходов пользователя для меню.
type UserStats struct {
	Count  int
	Total  decimal.Decimal
	First  time.Time
	Last   time.Time
	Recent []repository.Cost
}

func NewCostService(repo *repository.SQLiteRepository, state *chatstate.Store, atomic bool) *CostService {
	return &CostService{repo: repo, state: state, atomic: atomic}
}

// SaveBatch записывает пачку расходов одного сообщения. Дата записи
// вычисляется в момент коммита: активный режим прошедшего месяца даёт
// первое число месяца 00:00 UTC, иначе берётся текущее время.
func (s *CostService) SaveBatch(chatID, userID int64, costs []parser.Cost) (*Report, error) {
	createdAt := s.effectiveTime(chatID)

	if s.atomic {
		texts := make([]string, 0, len(costs))
		for _, c := range costs {
			texts = append(texts, c.Text())
		}

		ids, err := s.repo.SaveCosts(userID, texts, createdAt)
		if err != nil {
			return nil, fmt.Errorf("save batch: %w", err)
		}

		report := &Report{Saved: make([]SavedCost, 0, len(costs))}
		for i, c := range costs {
			report.Saved = append(report.Saved, SavedCost{ID: ids[i], Cost: c})
		}
		return report, nil
	}

	// построчный режим: шлюз без транзакций, сбои отражаем поимённо
	report := &Report{}
	for _, c := range costs {
		id, err := s.repo.SaveCost(userID, c.Text(), createdAt)
		if err != nil {
			logger.Error("Failed to save cost", "user_id", userID, "cost", c.Name, "error", err)
			report.Failed = append(report.Failed, c)
			continue
		}
		report.Saved = append(report.Saved, SavedCost{ID: id, Cost: c})
	}
	return report, nil
}

// Undo удаляет ровно те записи, id которых пришли в callback, и только
// принадлежащие действующему пользователю.
func (s *CostService) Undo(ids []int64, userID int64) (int64, error) {
	n, err := s.repo.DeleteCostsByIDs(ids, userID)
	if err != nil {
		return 0, fmt.Errorf("undo: %w", err)
	}
	return n, nil
}

func (s *CostService) EnablePastMode(chatID int64, year int, month time.Month) {
	s.state.SetPastMode(chatID, year, month)
}

func (s *CostService) DisablePastMode(chatID int64) {
	s.state.ClearPastMode(chatID)
}

func (s *CostService) PastMode(chatID int64) (chatstate.PastMode, bool) {
	return s.state.PastMode(chatID)
}

func (s *CostService) effectiveTime(chatID int64) time.Time {
	if pm, ok := s.state.PastMode(chatID); ok {
		return time.Date(pm.Year, pm.Month, 1, 0, 0, 0, 0, time.UTC)
	}
	return time.Now().UTC()
}

// Stats собирает сводку по пользователю: количество, сумма, период и
// последние записи. Суммы достаются обратным разбором сохранённого текста.
func (s *CostService) Stats(userID int64, recentLimit int) (*UserStats, error) {
	costs, err := s.repo.CostsByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("user stats: %w", err)
	}

	stats := &UserStats{Total: decimal.Zero}
	for _, c := range costs {
		stats.Count++
		if cost, ok := parser.ParseLine(c.Text); ok {
			stats.Total = stats.Total.Add(cost.Amount)
		}
		if stats.First.IsZero() || c.CreatedAt.Before(stats.First) {
			stats.First = c.CreatedAt
		}
		if c.CreatedAt.After(stats.Last) {
			stats.Last = c.CreatedAt
		}
	}

	if recentLimit > 0 {
		recent, err := s.repo.RecentCosts(userID, recentLimit)
		if err != nil {
			return nil, fmt.Errorf("recent costs: %w", err)
		}
		stats.Recent = recent
	}
	return stats, nil
}

func (s *CostService) KnownUserIDs() ([]int64, error) {
	return s.repo.UniqueUserIDs()
}

func (s *CostService) CostsByPeriod(from, to time.Time) ([]repository.Cost, error) {
	return s.repo.CostsByPeriod(from, to)
}
