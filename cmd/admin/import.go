package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/avolkov/family-costs-bot/internal/format"
	"github.com/avolkov/family-costs-bot/internal/logger"
	"github.com/avolkov/family-costs-bot/internal/parser"
)

const maxImportUpload = 5 << 20 // 5 МБ

// Выгрузка заказов ВкусВилл: список чеков с позициями.
type importFile struct {
	Checks []struct {
		Date  string `json:"date"`
		Store string `json:"store"`
		Items []struct {
			Name string      `json:"name"`
			Sum  json.Number `json:"sum"`
		} `json:"items"`
	} `json:"checks"`
}

type importItem struct {
	Date  string
	Store string
	Name  string
	Sum   string

	date time.Time
	sum  decimal.Decimal
}

// pendingImports держит разобранные позиции между шагом загрузки и
// шагом выбора; ключ — одноразовый токен из бота.
type pendingImports struct {
	mu    sync.Mutex
	items map[string][]importItem
}

func newPendingImports() *pendingImports {
	return &pendingImports{items: make(map[string][]importItem)}
}

func (p *pendingImports) put(token string, items []importItem) {
	p.mu.Lock()
	p.items[token] = items
	p.mu.Unlock()
}

func (p *pendingImports) take(token string) []importItem {
	p.mu.Lock()
	defer p.mu.Unlock()
	items := p.items[token]
	delete(p.items, token)
	return items
}

type importPageData struct {
	Token string
	Error string
	Items []importItem
}

// importForm доступна без сессии: одноразовый токен из бота и есть
// авторизация.
func (a *app) importForm(w http.ResponseWriter, r *http.Request) {
	token, ok := a.importToken(w, r)
	if !ok {
		return
	}
	importTmpl.Execute(w, importPageData{Token: token})
}

func (a *app) importUpload(w http.ResponseWriter, r *http.Request) {
	token, ok := a.importToken(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImportUpload)
	file, _, err := r.FormFile("file")
	if err != nil {
		importTmpl.Execute(w, importPageData{Token: token, Error: "Не удалось прочитать файл."})
		return
	}
	defer file.Close()

	var parsed importFile
	if err := json.NewDecoder(file).Decode(&parsed); err != nil {
		importTmpl.Execute(w, importPageData{Token: token, Error: "Файл не похож на выгрузку заказов."})
		return
	}

	var items []importItem
	for _, check := range parsed.Checks {
		date, err := time.Parse("2006-01-02", check.Date)
		if err != nil {
			importTmpl.Execute(w, importPageData{Token: token, Error: fmt.Sprintf("Некорректная дата чека: %q.", check.Date)})
			return
		}
		for _, it := range check.Items {
			sum, err := decimal.NewFromString(it.Sum.String())
			if err != nil || it.Name == "" {
				continue
			}
			items = append(items, importItem{
				Date:  date.Format("02.01.2006"),
				Store: check.Store,
				Name:  it.Name,
				Sum:   format.Amount(sum, format.NBSP),
				date:  date.UTC(),
				sum:   sum,
			})
		}
	}
	if len(items) == 0 {
		importTmpl.Execute(w, importPageData{Token: token, Error: "В файле не нашлось ни одной позиции."})
		return
	}

	a.pending.put(token, items)
	importSelectTmpl.Execute(w, importPageData{Token: token, Items: items})
}

func (a *app) importSave(w http.ResponseWriter, r *http.Request) {
	token, ok := a.importToken(w, r)
	if !ok {
		return
	}

	items := a.pending.take(token)
	if items == nil {
		importTmpl.Execute(w, importPageData{Token: token, Error: "Сессия импорта истекла, загрузите файл снова."})
		return
	}

	tok, err := a.repo.GetImportToken(token)
	if err != nil || tok == nil {
		http.NotFound(w, r)
		return
	}

	r.ParseForm()
	picked := make(map[string]bool)
	for _, idx := range r.Form["pick"] {
		picked[idx] = true
	}

	var saved int
	for i, it := range items {
		if !picked[fmt.Sprint(i)] {
			continue
		}
		cost := parser.Cost{Name: it.Name, Amount: it.sum}
		if _, err := a.repo.SaveCost(tok.UserID, cost.Text(), it.date); err != nil {
			logger.Error("Failed to save imported cost", "user_id", tok.UserID, "error", err)
			continue
		}
		saved++
	}

	// токен одноразовый: после записи ссылка из бота гаснет
	if err := a.repo.DeleteImportToken(token); err != nil {
		logger.Error("Failed to delete import token", "error", err)
	}

	logger.Info("Import finished", "user_id", tok.UserID, "saved", saved)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, `%s<div class="card" style="max-width:420px"><h1>Готово</h1><p>Записано позиций: %d. Можно вернуться в Telegram.</p></div>`, baseCSS, saved)
}

func (a *app) importToken(w http.ResponseWriter, r *http.Request) (string, bool) {
	token := chi.URLParam(r, "token")
	tok, err := a.repo.GetImportToken(token)
	if err != nil {
		logger.Error("Failed to check import token", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return "", false
	}
	if tok == nil {
		http.NotFound(w, r)
		return "", false
	}
	return token, true
}
