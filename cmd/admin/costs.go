package main

import (
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/avolkov/family-costs-bot/internal/format"
	"github.com/avolkov/family-costs-bot/internal/logger"
	"github.com/avolkov/family-costs-bot/internal/parser"
	"github.com/avolkov/family-costs-bot/internal/repository"
)

const defaultPerPage = 50

// размеры страницы, которые можно запросить через ?per_page=
var allowedPerPage = map[int]bool{20: true, 50: true, 100: true, 200: true}

type costView struct {
	ID        int64
	Name      string
	Amount    string
	UserLabel string
	Date      string

	amount decimal.Decimal
	name   string
}

type userOption struct {
	ID    int64
	Label string
}

type costsPageData struct {
	UserName   string
	IsAdmin    bool
	CSRF       string
	Flash      string
	Error      string
	Today      string
	SelfID     int64
	KnownUsers []userOption
	Items      []costView
	Page       int
	PerPage    int
	TotalPages int
	Total      int
	PrevPage   int
	NextPage   int
	Sort       string
	Order      string
}

func (d *costsPageData) NextOrder(field string) string {
	if d.Sort == field && d.Order == "asc" {
		return "desc"
	}
	return "asc"
}

// Поля name и amount лежат внутри текста записи, сортировка по ним
// делается в памяти после разбора. Остальные поля сортирует SQL.
var inMemorySort = map[string]bool{"name": true, "amount": true}

func (a *app) costsList(w http.ResponseWriter, r *http.Request) {
	sess := a.currentSession(r)

	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	sortBy := q.Get("sort")
	if sortBy == "" {
		sortBy = "created_at"
	}
	order := q.Get("order")
	if order != "asc" {
		order = "desc"
	}
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	if !allowedPerPage[perPage] {
		perPage = defaultPerPage
	}

	var (
		items      []costView
		total      int
		totalPages int
		err        error
	)
	if inMemorySort[sortBy] {
		items, total, totalPages, page, err = a.costsSortedInMemory(page, perPage, sortBy, order)
	} else {
		items, total, totalPages, page, err = a.costsSortedBySQL(page, perPage, sortBy, order)
	}
	if err != nil {
		logger.Error("Failed to list costs", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	self, _ := a.repo.GetUserByID(sess.UserID)
	var selfID int64
	if self != nil {
		selfID = self.TelegramID
	}

	data := &costsPageData{
		UserName:   sess.Name,
		IsAdmin:    sess.Role == "admin",
		CSRF:       sess.CSRF,
		Flash:      q.Get("flash"),
		Error:      q.Get("error"),
		Today:      time.Now().Format("2006-01-02"),
		SelfID:     selfID,
		KnownUsers: a.userOptions(),
		Items:      items,
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages,
		Total:      total,
		PrevPage:   page - 1,
		NextPage:   page + 1,
		Sort:       sortBy,
		Order:      order,
	}
	costsTmpl.Execute(w, data)
}

func (a *app) costsSortedBySQL(page, perPage int, sortBy, order string) ([]costView, int, int, int, error) {
	p, err := a.repo.CostsPage(page, perPage, sortBy, order)
	if err != nil {
		return nil, 0, 0, 0, err
	}
	views := make([]costView, 0, len(p.Items))
	for _, c := range p.Items {
		views = append(views, a.costToView(c))
	}
	return views, p.Total, p.TotalPages, p.Page, nil
}

func (a *app) costsSortedInMemory(page, perPage int, sortBy, order string) ([]costView, int, int, int, error) {
	costs, err := a.repo.AllCosts()
	if err != nil {
		return nil, 0, 0, 0, err
	}

	views := make([]costView, 0, len(costs))
	for _, c := range costs {
		views = append(views, a.costToView(c))
	}

	less := func(i, j int) bool { return views[i].name < views[j].name }
	if sortBy == "amount" {
		less = func(i, j int) bool { return views[i].amount.LessThan(views[j].amount) }
	}
	if order == "desc" {
		inner := less
		less = func(i, j int) bool { return inner(j, i) }
	}
	sort.SliceStable(views, less)

	total := len(views)
	totalPages := (total + perPage - 1) / perPage
	if totalPages == 0 {
		totalPages = 1
	}
	if page > totalPages {
		page = totalPages
	}
	lo := (page - 1) * perPage
	hi := lo + perPage
	if hi > total {
		hi = total
	}
	return views[lo:hi], total, totalPages, page, nil
}

func (a *app) costToView(c repository.Cost) costView {
	v := costView{
		ID:        c.ID,
		Name:      c.Text,
		UserLabel: a.userLabel(c.UserID),
		Date:      c.CreatedAt.Format("02.01.2006"),
	}
	if cost, ok := parser.ParseLine(c.Text); ok {
		v.Name = cost.Name
		v.Amount = format.Amount(cost.Amount, format.NBSP)
		v.name = cost.Name
		v.amount = cost.Amount
	}
	return v
}

func (a *app) costAdd(w http.ResponseWriter, r *http.Request) {
	name := r.FormValue("name")
	amount := r.FormValue("amount")
	userID, err := strconv.ParseInt(r.FormValue("user_id"), 10, 64)
	if err != nil || userID <= 0 {
		redirectWithError(w, r, "/costs", "Некорректный пользователь.")
		return
	}

	cost, ok := parser.ParseLine(name + " " + amount)
	if !ok {
		redirectWithError(w, r, "/costs", "Не удалось разобрать название или сумму.")
		return
	}

	createdAt, err := parseDateOrNow(r.FormValue("date"))
	if err != nil {
		redirectWithError(w, r, "/costs", "Некорректная дата.")
		return
	}

	if _, err := a.repo.SaveCost(userID, cost.Text(), createdAt); err != nil {
		logger.Error("Failed to add cost", "error", err)
		redirectWithError(w, r, "/costs", "Ошибка базы данных.")
		return
	}
	redirectWithFlash(w, r, "/costs", "Запись добавлена.")
}

type costEditData struct {
	ID     int64
	CSRF   string
	Name   string
	Amount string
	Date   string
	Error  string
}

func (a *app) costEditForm(w http.ResponseWriter, r *http.Request) {
	sess := a.currentSession(r)
	id, cost, ok := a.costFromURL(w, r)
	if !ok {
		return
	}

	data := costEditData{ID: id, CSRF: sess.CSRF, Date: cost.CreatedAt.Format("2006-01-02"), Name: cost.Text}
	if parsed, ok := parser.ParseLine(cost.Text); ok {
		data.Name = parsed.Name
		data.Amount = parsed.Amount.String()
	}
	costEditTmpl.Execute(w, data)
}

func (a *app) costEditSubmit(w http.ResponseWriter, r *http.Request) {
	id, cost, ok := a.costFromURL(w, r)
	if !ok {
		return
	}

	parsed, okLine := parser.ParseLine(r.FormValue("name") + " " + r.FormValue("amount"))
	if !okLine {
		redirectWithError(w, r, "/costs", "Не удалось разобрать название или сумму.")
		return
	}
	createdAt, err := parseDateOrNow(r.FormValue("date"))
	if err != nil {
		redirectWithError(w, r, "/costs", "Некорректная дата.")
		return
	}

	if _, err := a.repo.UpdateCost(id, cost.UserID, parsed.Text(), createdAt); err != nil {
		logger.Error("Failed to update cost", "id", id, "error", err)
		redirectWithError(w, r, "/costs", "Ошибка базы данных.")
		return
	}
	redirectWithFlash(w, r, "/costs", "Запись обновлена.")
}

func (a *app) costDelete(w http.ResponseWriter, r *http.Request) {
	id, _, ok := a.costFromURL(w, r)
	if !ok {
		return
	}
	if _, err := a.repo.DeleteCostByID(id); err != nil {
		logger.Error("Failed to delete cost", "id", id, "error", err)
		redirectWithError(w, r, "/costs", "Ошибка базы данных.")
		return
	}
	redirectWithFlash(w, r, "/costs", "Запись удалена.")
}

func (a *app) costsBulkDelete(w http.ResponseWriter, r *http.Request) {
	ids := formIDs(r)
	if len(ids) == 0 {
		redirectWithError(w, r, "/costs", "Ничего не выбрано.")
		return
	}
	n, err := a.repo.BulkDeleteCosts(ids)
	if err != nil {
		logger.Error("Failed to bulk delete costs", "error", err)
		redirectWithError(w, r, "/costs", "Ошибка базы данных.")
		return
	}
	redirectWithFlash(w, r, "/costs", "Удалено записей: "+strconv.FormatInt(n, 10))
}

func (a *app) costsBulkDate(w http.ResponseWriter, r *http.Request) {
	ids := formIDs(r)
	if len(ids) == 0 {
		redirectWithError(w, r, "/costs", "Ничего не выбрано.")
		return
	}
	newDate, err := time.Parse("2006-01-02", r.FormValue("new_date"))
	if err != nil {
		redirectWithError(w, r, "/costs", "Некорректная дата.")
		return
	}
	n, err := a.repo.BulkUpdateCostsDate(ids, newDate.UTC())
	if err != nil {
		logger.Error("Failed to bulk update cost dates", "error", err)
		redirectWithError(w, r, "/costs", "Ошибка базы данных.")
		return
	}
	redirectWithFlash(w, r, "/costs", "Дата изменена у записей: "+strconv.FormatInt(n, 10))
}

func (a *app) costFromURL(w http.ResponseWriter, r *http.Request) (int64, *repository.Cost, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "bad cost id", http.StatusBadRequest)
		return 0, nil, false
	}
	cost, err := a.repo.CostByID(id)
	if err != nil {
		logger.Error("Failed to fetch cost", "id", id, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return 0, nil, false
	}
	if cost == nil {
		http.NotFound(w, r)
		return 0, nil, false
	}
	return id, cost, true
}

// userOptions — кандидаты для выпадающего списка «кто потратил»:
// все, кто уже писал расходы, плюс заведённые в админке пользователи.
func (a *app) userOptions() []userOption {
	seen := make(map[int64]bool)
	var opts []userOption

	if ids, err := a.repo.UniqueUserIDs(); err == nil {
		for _, id := range ids {
			seen[id] = true
			opts = append(opts, userOption{ID: id, Label: a.userLabel(id)})
		}
	}
	if users, err := a.repo.GetAllUsers(); err == nil {
		for _, u := range users {
			if u.TelegramID > 0 && !seen[u.TelegramID] {
				opts = append(opts, userOption{ID: u.TelegramID, Label: u.Name})
			}
		}
	}
	return opts
}

func (a *app) userLabel(telegramID int64) string {
	u, err := a.repo.GetUserByTelegramID(telegramID)
	if err == nil && u != nil && u.Name != "" {
		return u.Name
	}
	return "id " + strconv.FormatInt(telegramID, 10)
}

func formIDs(r *http.Request) []int64 {
	r.ParseForm()
	var ids []int64
	for _, raw := range r.Form["ids"] {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

func parseDateOrNow(raw string) (time.Time, error) {
	if raw == "" {
		return time.Now().UTC(), nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func redirectWithFlash(w http.ResponseWriter, r *http.Request, path, msg string) {
	http.Redirect(w, r, path+"?flash="+url.QueryEscape(msg), http.StatusSeeOther)
}

func redirectWithError(w http.ResponseWriter, r *http.Request, path, msg string) {
	http.Redirect(w, r, path+"?error="+url.QueryEscape(msg), http.StatusSeeOther)
}
