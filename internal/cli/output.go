package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"github.com/dukerupert/tally/internal/model"
	"github.com/dukerupert/tally/internal/stats"
	"github.com/dukerupert/tally/internal/tracker"
)

const barWidth = 30

var (
	bold  = color.New(color.Bold)
	title = color.New(color.Bold, color.Underline)
	faint = color.New(color.Faint)
	green = color.New(color.FgGreen)
)

func printTitle(w io.Writer, s string) {
	_, _ = title.Fprintln(w, s)
}

func printNone(w io.Writer) {
	_, _ = color.New(color.Faint, color.Italic).Fprintln(w, " none")
}

func minutes(v *float64) string {
	if v == nil {
		return "-"
	}
	return formatMinutes(*v)
}

func formatMinutes(m float64) string {
	if m >= 60 {
		return fmt.Sprintf("%.1f h", m/60)
	}
	return fmt.Sprintf("%.0f min", m)
}

func printSummary(w io.Writer, s tracker.Summary) {
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("Today"), s.Today)
	tbl.AddRow(bold.Sprint("This month"), s.Month)
	tbl.AddRow(bold.Sprint("This year"), s.Year)
	tbl.AddRow(bold.Sprint("Avg interval"), minutes(s.AverageIntervalMinutes))
	tbl.AddRow(bold.Sprint("Daily target"), fmt.Sprintf("%d / %d", s.Progress.TodayCount, s.Progress.DailyTarget))
	tbl.RightAlign(0)
	_, _ = fmt.Fprintln(w, tbl)
}

func printProgress(w io.Writer, p stats.Progress) {
	tbl := uitable.New()
	tbl.Separator = "  "
	if p.QuitDate == "" {
		tbl.AddRow(bold.Sprint("Quit date"), faint.Sprint("not set (tally settings --quit-date)"))
	} else {
		tbl.AddRow(bold.Sprint("Quit date"), p.QuitDate)
	}
	tbl.AddRow(bold.Sprint("Days since"), p.DaysSinceQuit)
	tbl.AddRow(bold.Sprint("Today"), fmt.Sprintf("%d / %d (%.0f%% left)", p.TodayCount, p.DailyTarget, p.TargetProgress))
	tbl.AddRow(bold.Sprint("Avoided"), p.Avoided)
	tbl.AddRow(bold.Sprint("Saved"), fmt.Sprintf("%.2f (%.0f%% of target)", p.MoneySaved, p.SavingsProgress))
	tbl.AddRow(bold.Sprint("Health index"), fmt.Sprintf("%.0f%%", p.HealthIndex))
	tbl.AddRow(bold.Sprint("Recovery"), fmt.Sprintf("lung %.0f%%  heart %.0f%%  mental %.0f%%",
		p.Recovery.Lung, p.Recovery.Heart, p.Recovery.Mental))
	tbl.RightAlign(0)
	_, _ = fmt.Fprintln(w, tbl)
	_, _ = fmt.Fprintln(w)

	printTitle(w, "Milestones")
	ms := uitable.New()
	ms.Separator = "  "
	for _, a := range p.Achievements {
		mark := faint.Sprint("·")
		if a.Completed {
			mark = green.Sprint("✓")
		}
		ms.AddRow(mark, a.Title, faint.Sprint(a.Description))
	}
	_, _ = fmt.Fprintln(w, ms)
	_, _ = fmt.Fprintln(w)
	_, _ = faint.Fprintln(w, p.Motivation)
}

func printEvents(w io.Writer, events []model.Event, loc *time.Location) {
	if len(events) == 0 {
		printNone(w)
		return
	}
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 60
	tbl.Wrap = true
	tbl.AddRow(bold.Sprint("When"), bold.Sprint("Trigger"), bold.Sprint("Mood"), bold.Sprint("Note"))
	for _, e := range events {
		mood := ""
		if e.Mood > 0 {
			mood = strconv.Itoa(e.Mood)
		}
		tbl.AddRow(e.Time(loc).Format("2006-01-02 15:04"), e.Trigger, mood, e.Note)
	}
	_, _ = fmt.Fprintln(w, tbl)
}

func printSettings(w io.Writer, s model.Settings, quitDate string) {
	if quitDate == "" {
		quitDate = "-"
	}
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("Habit"), s.HabitName)
	tbl.AddRow(bold.Sprint("Notification title"), s.NotifyTitle)
	tbl.AddRow(bold.Sprint("Reminder interval"), fmt.Sprintf("%d min", s.RemindInterval))
	tbl.AddRow(bold.Sprint("Quit date"), quitDate)
	tbl.AddRow(bold.Sprint("Baseline per day"), s.BaselinePerDay)
	tbl.AddRow(bold.Sprint("Pack price"), fmt.Sprintf("%.2f for %d", s.PackPrice, s.UnitsPerPack))
	tbl.AddRow(bold.Sprint("Daily target"), s.DailyTarget)
	tbl.AddRow(bold.Sprint("Savings target"), fmt.Sprintf("%.2f", s.SavingsTarget))
	tbl.RightAlign(0)
	_, _ = fmt.Fprintln(w, tbl)
}

func printReport(w io.Writer, r stats.Report) {
	printTitle(w, fmt.Sprintf("%s (%s)", strings.ToUpper(string(r.Scope[:1]))+string(r.Scope[1:]), r.Date))

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("Count"), r.Count)
	tbl.AddRow(bold.Sprint("Active days"), r.ActiveDays)
	tbl.AddRow(bold.Sprint("Avg interval"), minutes(r.AverageIntervalMinutes))
	peak := "-"
	if r.PeakHour != nil {
		peak = fmt.Sprintf("%02d:00", *r.PeakHour)
	}
	tbl.AddRow(bold.Sprint("Peak hour"), peak)
	if r.AverageMood != nil {
		tbl.AddRow(bold.Sprint("Avg mood"), fmt.Sprintf("%.1f", *r.AverageMood))
	}
	tbl.RightAlign(0)
	_, _ = fmt.Fprintln(w, tbl)
	_, _ = fmt.Fprintln(w)

	printHistogram(w, histogramLabels(r), r.Histogram)

	if len(r.Triggers) > 0 {
		_, _ = fmt.Fprintln(w)
		printTitle(w, "Triggers")
		tbl := uitable.New()
		tbl.Separator = "  "
		for _, t := range r.Triggers {
			tbl.AddRow(t.Trigger, t.Count)
		}
		_, _ = fmt.Fprintln(w, tbl)
	}
}

func histogramLabels(r stats.Report) []string {
	labels := make([]string, len(r.Histogram))
	for i := range labels {
		switch r.Scope {
		case stats.ScopeToday:
			labels[i] = fmt.Sprintf("%02d:00", i)
		case stats.ScopeMonth:
			labels[i] = strconv.Itoa(i + 1)
		default:
			labels[i] = time.Month(i + 1).String()[:3]
		}
	}
	return labels
}

func printHistogram(w io.Writer, labels []string, counts []int) {
	peak := 0
	for _, c := range counts {
		peak = max(peak, c)
	}
	if peak == 0 {
		printNone(w)
		return
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	for i, c := range counts {
		if c == 0 {
			tbl.AddRow(faint.Sprint(labels[i]), faint.Sprint("0"), "")
			continue
		}
		n := max(1, c*barWidth/peak)
		tbl.AddRow(labels[i], c, green.Sprint(strings.Repeat("█", n)))
	}
	tbl.RightAlign(0)
	tbl.RightAlign(1)
	_, _ = fmt.Fprintln(w, tbl)
}

func printTrend(w io.Writer, trend []stats.DayCount) {
	labels := make([]string, len(trend))
	counts := make([]int, len(trend))
	for i, d := range trend {
		labels[i] = d.Date
		counts[i] = d.Count
	}
	printHistogram(w, labels, counts)
}

func printMoods(w io.Writer, h [10]int) {
	labels := make([]string, len(h))
	for i := range labels {
		labels[i] = strconv.Itoa(i + 1)
	}
	printHistogram(w, labels, h[:])
}
