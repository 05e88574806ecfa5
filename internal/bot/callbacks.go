package bot

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Telegram ограничивает callback_data 64 байтами.
const maxCallbackData = 64

const (
	actionConfirm     = "confirm"
	actionCancel      = "cancel"
	actionUndo        = "undo"
	actionPastMonth   = "enter_past_month"
	actionDisablePast = "disable_past"
	actionMyCosts     = "my_costs"
	actionUserCosts   = "menu_user"
)

type callbackData struct {
	Action string
	Args   []string
}

func parseCallback(data string) callbackData {
	parts := strings.Split(data, ":")
	return callbackData{Action: parts[0], Args: parts[1:]}
}

func confirmCallback(sessionID string) string {
	return actionConfirm + ":" + sessionID
}

func cancelCallback(sessionID string) string {
	return actionCancel + ":" + sessionID
}

// undoCallback кодирует id записанных строк в payload кнопки отмены.
// Если список не помещается в лимит Telegram, кнопка не показывается.
func undoCallback(ids []int64) (string, bool) {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.FormatInt(id, 10))
	}
	data := actionUndo + ":" + strings.Join(parts, ",")
	if len(data) > maxCallbackData {
		return "", false
	}
	return data, true
}

func parseUndoIDs(arg string) ([]int64, error) {
	var ids []int64
	for _, p := range strings.Split(arg, ",") {
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad cost id %q: %w", p, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func pastMonthCallback(year int, month time.Month) string {
	return fmt.Sprintf("%s:%d:%d", actionPastMonth, year, int(month))
}

func parsePastMonth(args []string) (int, time.Month, error) {
	if len(args) != 2 {
		return 0, 0, fmt.Errorf("bad past month payload: %v", args)
	}
	year, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, 0, fmt.Errorf("bad year %q: %w", args[0], err)
	}
	m, err := strconv.Atoi(args[1])
	if err != nil || m < 1 || m > 12 {
		return 0, 0, fmt.Errorf("bad month %q", args[1])
	}
	return year, time.Month(m), nil
}

func userCostsCallback(userID int64) string {
	return actionUserCosts + ":" + strconv.FormatInt(userID, 10)
}
