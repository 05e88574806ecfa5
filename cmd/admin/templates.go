package main

import "html/template"

var (
	loginTmpl        = template.Must(template.New("login").Parse(baseCSS + loginHTML))
	costsTmpl        = template.Must(template.New("costs").Parse(baseCSS + costsHTML))
	costEditTmpl     = template.Must(template.New("cost_edit").Parse(baseCSS + costEditHTML))
	usersTmpl        = template.Must(template.New("users").Parse(baseCSS + usersHTML))
	importTmpl       = template.Must(template.New("import").Parse(baseCSS + importHTML))
	importSelectTmpl = template.Must(template.New("import_select").Parse(baseCSS + importSelectHTML))
)

const baseCSS = `<style>
    :root {
        --primary: #6366f1;
        --danger: #ef4444;
        --dark: #1f2937;
        --gray: #6b7280;
        --gray-light: #e5e7eb;
    }
    * { margin: 0; padding: 0; box-sizing: border-box; }
    body {
        font-family: 'Inter', 'Segoe UI', system-ui, sans-serif;
        background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
        min-height: 100vh;
        color: var(--dark);
        padding: 24px;
    }
    .card {
        background: rgba(255, 255, 255, 0.95);
        border-radius: 12px;
        padding: 24px;
        max-width: 1100px;
        margin: 0 auto 20px;
        box-shadow: 0 10px 25px -5px rgba(0, 0, 0, 0.1);
    }
    h1 { margin-bottom: 16px; font-size: 1.6em; }
    table { width: 100%; border-collapse: collapse; margin: 12px 0; }
    th, td { padding: 8px 10px; text-align: left; border-bottom: 1px solid var(--gray-light); }
    th a { color: var(--dark); text-decoration: none; }
    input, select, button {
        padding: 8px 10px;
        border: 1px solid var(--gray-light);
        border-radius: 8px;
        font-size: 0.95em;
    }
    button {
        background: var(--primary);
        color: white;
        border: none;
        cursor: pointer;
    }
    button.danger { background: var(--danger); }
    .error { color: var(--danger); margin: 8px 0; }
    .flash { color: #10b981; margin: 8px 0; }
    .muted { color: var(--gray); font-size: 0.9em; }
    .topbar { display: flex; justify-content: space-between; align-items: center; margin-bottom: 16px; }
    .topbar form { display: inline; }
    .row { display: flex; gap: 8px; align-items: center; flex-wrap: wrap; }
    .pager a { margin-right: 8px; text-decoration: none; color: var(--primary); }
</style>`

const loginHTML = `<!DOCTYPE html>
<html lang="ru">
<head><meta charset="UTF-8"><title>Вход — учёт расходов</title></head>
<body>
<div class="card" style="max-width: 420px">
    <h1>Вход в админку</h1>
    {{if .Error}}<p class="error">{{.Error}}</p>{{end}}
    <form method="post" action="/login">
        <p style="margin-bottom:10px">
            <select name="user_id" required style="width:100%">
                {{range .Users}}<option value="{{.ID}}">{{.Name}}</option>{{end}}
            </select>
        </p>
        <p style="margin-bottom:10px">
            <input type="password" name="password" placeholder="Пароль" required style="width:100%">
        </p>
        <button type="submit" style="width:100%">Войти</button>
    </form>
    <p class="muted" style="margin-top:10px">Для нового пользователя введённый пароль станет его паролем.</p>
</div>
</body>
</html>`

const costsHTML = `<!DOCTYPE html>
<html lang="ru">
<head><meta charset="UTF-8"><title>Расходы</title></head>
<body>
<div class="card">
    <div class="topbar">
        <h1>💰 Расходы</h1>
        <div class="row">
            <span class="muted">{{.UserName}}</span>
            {{if .IsAdmin}}<a href="/users">Пользователи</a>{{end}}
            <form method="post" action="/logout">
                <input type="hidden" name="csrf_token" value="{{.CSRF}}">
                <button type="submit">Выйти</button>
            </form>
        </div>
    </div>
    {{if .Flash}}<p class="flash">{{.Flash}}</p>{{end}}
    {{if .Error}}<p class="error">{{.Error}}</p>{{end}}

    <form method="post" action="/costs/add" class="row" style="margin-bottom:14px">
        <input type="hidden" name="csrf_token" value="{{.CSRF}}">
        <input name="name" placeholder="Название" required>
        <input name="amount" placeholder="Сумма" required>
        <input type="date" name="date" value="{{.Today}}">
        <select name="user_id">
            {{range .KnownUsers}}<option value="{{.ID}}" {{if eq .ID $.SelfID}}selected{{end}}>{{.Label}}</option>{{end}}
        </select>
        <button type="submit">Добавить</button>
    </form>

    <form method="post" id="bulk">
        <input type="hidden" name="csrf_token" value="{{.CSRF}}">
        <table>
            <tr>
                <th></th>
                <th><a href="?sort=id&order={{.NextOrder "id"}}">#</a></th>
                <th><a href="?sort=name&order={{.NextOrder "name"}}">Название</a></th>
                <th><a href="?sort=amount&order={{.NextOrder "amount"}}">Сумма</a></th>
                <th><a href="?sort=user_id&order={{.NextOrder "user_id"}}">Кто</a></th>
                <th><a href="?sort=created_at&order={{.NextOrder "created_at"}}">Дата</a></th>
                <th></th>
            </tr>
            {{range .Items}}
            <tr>
                <td><input type="checkbox" name="ids" value="{{.ID}}"></td>
                <td>{{.ID}}</td>
                <td>{{.Name}}</td>
                <td>{{.Amount}} ₽</td>
                <td>{{.UserLabel}}</td>
                <td>{{.Date}}</td>
                <td><a href="/costs/{{.ID}}/edit">✏️</a></td>
            </tr>
            {{end}}
        </table>
        <div class="row">
            <button type="submit" formaction="/costs/bulk_delete" class="danger"
                onclick="return confirm('Удалить выбранные записи?')">Удалить выбранные</button>
            <input type="date" name="new_date">
            <button type="submit" formaction="/costs/bulk_date">Сменить дату выбранным</button>
        </div>
    </form>

    <p class="pager" style="margin-top:12px">
        {{if gt .Page 1}}<a href="?page={{.PrevPage}}&sort={{.Sort}}&order={{.Order}}&per_page={{.PerPage}}">← Назад</a>{{end}}
        Стр. {{.Page}} из {{.TotalPages}} ({{.Total}} записей)
        {{if lt .Page .TotalPages}}<a href="?page={{.NextPage}}&sort={{.Sort}}&order={{.Order}}&per_page={{.PerPage}}">Вперёд →</a>{{end}}
        <span class="muted">На странице:</span>
        <a href="?per_page=20&sort={{.Sort}}&order={{.Order}}">20</a>
        <a href="?per_page=50&sort={{.Sort}}&order={{.Order}}">50</a>
        <a href="?per_page=100&sort={{.Sort}}&order={{.Order}}">100</a>
        <a href="?per_page=200&sort={{.Sort}}&order={{.Order}}">200</a>
    </p>
</div>
</body>
</html>`

const costEditHTML = `<!DOCTYPE html>
<html lang="ru">
<head><meta charset="UTF-8"><title>Правка расхода</title></head>
<body>
<div class="card" style="max-width: 480px">
    <h1>Правка записи #{{.ID}}</h1>
    {{if .Error}}<p class="error">{{.Error}}</p>{{end}}
    <form method="post">
        <input type="hidden" name="csrf_token" value="{{.CSRF}}">
        <p style="margin-bottom:10px"><input name="name" value="{{.Name}}" required style="width:100%"></p>
        <p style="margin-bottom:10px"><input name="amount" value="{{.Amount}}" required style="width:100%"></p>
        <p style="margin-bottom:10px"><input type="date" name="date" value="{{.Date}}" style="width:100%"></p>
        <div class="row">
            <button type="submit">Сохранить</button>
            <button type="submit" formaction="/costs/{{.ID}}/delete" class="danger"
                onclick="return confirm('Удалить запись?')">Удалить</button>
            <a href="/costs">Отмена</a>
        </div>
    </form>
</div>
</body>
</html>`

const usersHTML = `<!DOCTYPE html>
<html lang="ru">
<head><meta charset="UTF-8"><title>Пользователи</title></head>
<body>
<div class="card">
    <div class="topbar">
        <h1>👥 Пользователи</h1>
        <a href="/costs">← К расходам</a>
    </div>
    {{if .Flash}}<p class="flash">{{.Flash}}</p>{{end}}
    {{if .Error}}<p class="error">{{.Error}}</p>{{end}}

    <form method="post" action="/users/add" class="row" style="margin-bottom:14px">
        <input type="hidden" name="csrf_token" value="{{.CSRF}}">
        <input name="name" placeholder="Имя" required>
        <input name="telegram_id" placeholder="Telegram ID" required>
        <select name="role"><option value="user">user</option><option value="admin">admin</option></select>
        <button type="submit">Добавить</button>
    </form>

    <table>
        <tr><th>#</th><th>Имя</th><th>Telegram ID</th><th>Роль</th><th>Пароль</th><th></th></tr>
        {{range .Users}}
        <tr>
            <td>{{.ID}}</td>
            <td>{{.Name}}</td>
            <td>{{.TelegramID}}</td>
            <td>
                <form method="post" action="/users/{{.ID}}/role" class="row">
                    <input type="hidden" name="csrf_token" value="{{$.CSRF}}">
                    <select name="role">
                        <option value="user" {{if eq .Role "user"}}selected{{end}}>user</option>
                        <option value="admin" {{if eq .Role "admin"}}selected{{end}}>admin</option>
                    </select>
                    <button type="submit">OK</button>
                </form>
            </td>
            <td>
                <form method="post" action="/users/{{.ID}}/password" class="row">
                    <input type="hidden" name="csrf_token" value="{{$.CSRF}}">
                    <input type="password" name="password" placeholder="Новый пароль">
                    <button type="submit">Сменить</button>
                </form>
            </td>
            <td>
                <form method="post" action="/users/{{.ID}}/delete">
                    <input type="hidden" name="csrf_token" value="{{$.CSRF}}">
                    <button type="submit" class="danger" onclick="return confirm('Удалить пользователя?')">✕</button>
                </form>
            </td>
        </tr>
        {{end}}
    </table>
</div>
</body>
</html>`

const importHTML = `<!DOCTYPE html>
<html lang="ru">
<head><meta charset="UTF-8"><title>Импорт чеков</title></head>
<body>
<div class="card" style="max-width: 520px">
    <h1>📥 Импорт чеков</h1>
    {{if .Error}}<p class="error">{{.Error}}</p>{{end}}
    <p class="muted" style="margin-bottom:12px">Загрузите JSON-выгрузку заказов (формат ВкусВилл).</p>
    <form method="post" enctype="multipart/form-data">
        <p style="margin-bottom:10px"><input type="file" name="file" accept="application/json" required></p>
        <button type="submit">Загрузить</button>
    </form>
</div>
</body>
</html>`

const importSelectHTML = `<!DOCTYPE html>
<html lang="ru">
<head><meta charset="UTF-8"><title>Импорт чеков</title></head>
<body>
<div class="card">
    <h1>Выберите позиции для записи</h1>
    {{if .Error}}<p class="error">{{.Error}}</p>{{end}}
    <form method="post" action="/import/{{.Token}}/save">
        <table>
            <tr><th></th><th>Дата</th><th>Магазин</th><th>Позиция</th><th>Сумма</th></tr>
            {{range $i, $it := .Items}}
            <tr>
                <td><input type="checkbox" name="pick" value="{{$i}}" checked></td>
                <td>{{$it.Date}}</td>
                <td>{{$it.Store}}</td>
                <td>{{$it.Name}}</td>
                <td>{{$it.Sum}} ₽</td>
            </tr>
            {{end}}
        </table>
        <button type="submit">Записать выбранное</button>
    </form>
</div>
</body>
</html>`
