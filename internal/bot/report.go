package bot

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jung-kurt/gofpdf"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/avolkov/family-costs-bot/internal/logger"
	"github.com/avolkov/family-costs-bot/internal/parser"
)

// handleReportCommand собирает PDF-отчёт по расходам всей семьи за
// текущий месяц и отправляет его файлом.
func (b *Bot) handleReportCommand(m *tgbotapi.Message) {
	b.send(m.Chat.ID, msgReportBuilding)

	now := time.Now().UTC()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	pdfBytes, err := b.generatePDFReport(from, to)
	if err != nil {
		logger.Error("Failed to build report", "error", err)
		b.send(m.Chat.ID, msgDBError)
		return
	}

	doc := tgbotapi.NewDocument(m.Chat.ID, tgbotapi.FileBytes{
		Name:  fmt.Sprintf("costs_%s.pdf", from.Format("2006_01")),
		Bytes: pdfBytes,
	})
	doc.Caption = fmt.Sprintf("Расходы за %s %d", monthNames[int(from.Month())], from.Year())
	if _, err := b.api.Send(doc); err != nil {
		logger.Error("Failed to send report", "chat_id", m.Chat.ID, "error", err)
	}
}

func (b *Bot) generatePDFReport(from, to time.Time) ([]byte, error) {
	costs, err := b.svc.CostsByPeriod(from, to)
	if err != nil {
		return nil, fmt.Errorf("fetch costs: %w", err)
	}

	var (
		total      float64
		byUser     = make(map[string]float64)
		byDay      = make(map[string]float64)
		countTotal int
	)
	for _, c := range costs {
		cost, ok := parser.ParseLine(c.Text)
		if !ok {
			continue
		}
		amount := cost.Amount.InexactFloat64()
		total += amount
		byUser[b.userLabel(c.UserID)] += amount
		byDay[c.CreatedAt.Format("2006-01-02")] += amount
		countTotal++
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	fontPath := filepath.Join("fonts", "DejaVuSans.ttf")
	pdf.AddUTF8Font("DejaVuSans", "", fontPath)
	pdf.AddUTF8Font("DejaVuSans", "B", fontPath)
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pdf.SetFont("DejaVuSans", "B", 20)
	pdf.SetTextColor(30, 30, 30)
	pdf.CellFormat(190, 10, "Отчёт о расходах", "", 1, "C", false, 0, "")
	pdf.SetFont("DejaVuSans", "", 12)
	pdf.CellFormat(190, 8, fmt.Sprintf("Период: %s – %s", from.Format("02.01.2006"), to.AddDate(0, 0, -1).Format("02.01.2006")), "", 1, "C", false, 0, "")
	pdf.CellFormat(190, 8, fmt.Sprintf("Сформировано: %s", time.Now().Format("02.01.2006 15:04")), "", 1, "C", false, 0, "")
	pdf.Ln(10)

	pdf.SetFont("DejaVuSans", "B", 16)
	pdf.CellFormat(190, 10, "Итоги", "", 1, "L", false, 0, "")
	pdf.SetFont("DejaVuSans", "", 12)
	pdf.CellFormat(190, 8, fmt.Sprintf("Всего записей: %d", countTotal), "", 1, "L", false, 0, "")
	pdf.CellFormat(190, 8, fmt.Sprintf("Общая сумма: %.2f ₽", total), "", 1, "L", false, 0, "")
	pdf.Ln(8)

	startY := pdf.GetY()
	if trend := dailyTrend(byDay); len(trend) > 1 {
		img, err := renderLineChart(trend, drawing.ColorFromHex("ED7D31"))
		if err == nil {
			addImageToPDF(pdf, img, "Расходы по дням", 10, startY+6, 130, 55)
			pdf.SetY(startY + 65)
		}
	}

	if len(byUser) > 0 {
		pdf.SetFont("DejaVuSans", "B", 14)
		pdf.CellFormat(190, 10, "Распределение по людям", "", 1, "L", false, 0, "")
		img, legend := renderPieWithLegend(byUser)
		addImageToPDF(pdf, img, "", 10, pdf.GetY(), 90, 60)
		addLegend(pdf, legend, 105, pdf.GetY()+10)
		pdf.SetY(pdf.GetY() + 65)

		pdf.SetFont("DejaVuSans", "B", 14)
		pdf.CellFormat(190, 10, "Детализация", "", 1, "L", false, 0, "")
		pdf.SetFont("DejaVuSans", "", 12)
		for _, name := range sortedKeys(byUser) {
			pdf.CellFormat(190, 6, fmt.Sprintf("- %s: %.2f ₽", name, byUser[name]), "", 1, "L", false, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func dailyTrend(byDay map[string]float64) []chart.Value {
	days := sortedKeys(byDay)
	var running float64
	trend := make([]chart.Value, 0, len(days))
	for _, d := range days {
		running += byDay[d]
		trend = append(trend, chart.Value{Label: d, Value: running})
	}
	return trend
}

func renderLineChart(data []chart.Value, lineColor drawing.Color) ([]byte, error) {
	xs := make([]float64, len(data))
	ys := make([]float64, len(data))
	for i, v := range data {
		xs[i] = float64(i)
		ys[i] = v.Value
	}
	graph := chart.Chart{
		Width:  600,
		Height: 220,
		XAxis:  chart.XAxis{Style: chart.Style{FontSize: 8}},
		YAxis:  chart.YAxis{Style: chart.Style{FontSize: 8}},
		Series: []chart.Series{
			chart.ContinuousSeries{
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: lineColor,
					FillColor:   drawing.ColorTransparent,
				},
			},
		},
	}
	var buf bytes.Buffer
	err := graph.Render(chart.PNG, &buf)
	return buf.Bytes(), err
}

func renderPieWithLegend(data map[string]float64) ([]byte, []string) {
	keys := sortedKeys(data)
	var total float64
	for _, v := range data {
		total += v
	}

	var values []chart.Value
	var legend []string
	for i, k := range keys {
		val := data[k]
		percent := 0.0
		if total != 0 {
			percent = val / total * 100
		}
		legend = append(legend, fmt.Sprintf("%s – %.2f ₽ (%.0f%%)", k, val, percent))
		values = append(values, chart.Value{
			Value: val,
			Style: chart.Style{FillColor: chart.GetDefaultColor(i)},
		})
	}

	graph := chart.PieChart{
		Width:  300,
		Height: 200,
		Values: values,
	}
	var buf bytes.Buffer
	graph.Render(chart.PNG, &buf)
	return buf.Bytes(), legend
}

func addImageToPDF(pdf *gofpdf.Fpdf, img []byte, title string, x, y, w, h float64) {
	tmpfile, err := os.CreateTemp("", "chart*.png")
	if err != nil {
		return
	}
	defer os.Remove(tmpfile.Name())
	tmpfile.Write(img)
	tmpfile.Close()
	if title != "" {
		pdf.SetFont("DejaVuSans", "B", 12)
		pdf.SetXY(x, y-6)
		pdf.CellFormat(w, 6, title, "", 0, "C", false, 0, "")
	}
	options := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptions(tmpfile.Name(), options)
	pdf.ImageOptions(tmpfile.Name(), x, y, w, h, false, options, 0, "")
}

func addLegend(pdf *gofpdf.Fpdf, items []string, x, y float64) {
	pdf.SetXY(x, y)
	pdf.SetFont("DejaVuSans", "", 10)
	for _, item := range items {
		pdf.SetX(x)
		pdf.CellFormat(90, 5, item, "", 1, "L", false, 0, "")
	}
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
