// Command hourcalc classifies punches from a JSON file without a server or database.
//
//	hourcalc calc --punches march.json --rate 25.00 --holidays feriados.ics --format table
//	hourcalc holidays --year 2025 --optional
//	hourcalc rules --rules rules.toml
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/warp/payroll-engine/calendar"
	"github.com/warp/payroll-engine/export"
	"github.com/warp/payroll-engine/factory"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/hours"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "hourcalc",
		Short:         "Classify worked hours under CLT rules",
		Long:          "hourcalc reads clock-in/clock-out pairs and prints normal, night and overtime hours per workday, with their value at an hourly rate.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(newCalcCmd())
	root.AddCommand(newHolidaysCmd())
	root.AddCommand(newRulesCmd())
	return root
}

// =============================================================================
// calc
// =============================================================================

type calcOptions struct {
	punches    string
	employee   string
	rate       string
	holidays   string
	rulesFile  string
	timezone   string
	format     string
	optional   bool
	noNational bool
}

func newCalcCmd() *cobra.Command {
	var opts calcOptions

	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Compute the bulletin of a punches file",
		Long: "The punches file is a JSON array of {id, entry, exit, date}. Entry and exit may be\n" +
			"ISO-8601 strings, epoch seconds, epoch milliseconds or null.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCalc(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.punches, "punches", "", "JSON file with the punches (required)")
	f.StringVar(&opts.employee, "employee", "cli", "employee ID reported in the output")
	f.StringVar(&opts.rate, "rate", "0", "hourly rate")
	f.StringVar(&opts.holidays, "holidays", "", "iCalendar file or URL with extra holidays")
	f.StringVar(&opts.rulesFile, "rules", "", "JSON or TOML rules document")
	f.StringVar(&opts.timezone, "timezone", "", "IANA zone punches are read in (overrides the rules)")
	f.StringVar(&opts.format, "format", "table", "output format: table, csv or json")
	f.BoolVar(&opts.optional, "optional", false, "include Carnival and Corpus Christi")
	f.BoolVar(&opts.noNational, "no-national", false, "ignore the Brazilian national calendar")
	cmd.MarkFlagRequired("punches")

	return cmd
}

func runCalc(cmd *cobra.Command, opts calcOptions) error {
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelWarn}))

	rate, err := decimal.NewFromString(opts.rate)
	if err != nil {
		return fmt.Errorf("invalid --rate: %w", err)
	}

	rules, err := loadRules(opts.rulesFile, opts.timezone)
	if err != nil {
		return err
	}

	raws, err := readPunches(opts.punches)
	if err != nil {
		return err
	}
	employeeID := generic.EmployeeID(opts.employee)
	for i := range raws {
		if raws[i].EmployeeID == "" {
			raws[i].EmployeeID = employeeID
		}
	}

	set := generic.NewHolidaySet()
	if opts.holidays != "" {
		holidays, err := calendar.FetchICS(cmd.Context(), opts.holidays, "")
		if err != nil {
			return fmt.Errorf("loading holidays: %w", err)
		}
		for _, h := range holidays {
			set.Add(h)
		}
	}
	var cal generic.HolidayCalendar = set
	if !opts.noNational {
		cal = calendar.Brazil{IncludeOptional: opts.optional, CompanyHolidays: set}
	}

	engine, err := hours.NewEngine(rules, cal)
	if err != nil {
		return err
	}

	run := engine.Calculate(employeeID, raws, rate)
	for _, s := range run.Skipped {
		logger.Warn("punch skipped",
			slog.String("employee_id", string(s.EmployeeID)),
			slog.String("punch_id", string(s.PunchID)),
			slog.Any("error", s.Reason))
	}
	skipped := hours.BatchReport{Skipped: run.Skipped}.SkippedMessage()

	rows := export.Rows(run)
	out := cmd.OutOrStdout()
	switch opts.format {
	case "csv":
		return export.WriteCSV(out, rows)
	case "json":
		return export.WriteJSON(out, rows, skipped)
	case "table":
		renderTable(out, rows)
		if skipped != "" {
			fmt.Fprintln(out, skipped)
		}
		return nil
	default:
		return fmt.Errorf("unknown --format %q (want table, csv or json)", opts.format)
	}
}

func loadRules(path, timezone string) (hours.Rules, error) {
	rules := hours.DefaultRules()
	if path != "" {
		var err error
		rules, err = factory.LoadRulesFile(path)
		if err != nil {
			return hours.Rules{}, err
		}
	}
	if timezone != "" {
		loc, err := time.LoadLocation(timezone)
		if err != nil {
			return hours.Rules{}, fmt.Errorf("invalid --timezone: %w", err)
		}
		rules.Location = loc
	}
	return rules, nil
}

func readPunches(path string) ([]hours.RawPunch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading punches: %w", err)
	}
	var raws []hours.RawPunch
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("parsing punches %s: %w", path, err)
	}
	return raws, nil
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	totalStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
)

func renderTable(w io.Writer, rows []export.BulletinRow) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Date", "Punches", "Day", "Night", "Fict.", "Normal", "Night prem.",
			"50% day", "50% night", "100% day", "100% night", "Value").
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row >= 0 && row < len(rows) && rows[row].Date == export.TotalLabel:
				return totalStyle
			default:
				return cellStyle
			}
		})

	for _, r := range rows {
		t.Row(r.Date, fmt.Sprint(r.Punches), r.DayHours, r.NightHours, r.FictitiousHours,
			r.NormalHours, r.NightPremiumHours, r.Extra50Day, r.Extra50Night,
			r.Extra100Day, r.Extra100Night, r.ValueTotal)
	}

	fmt.Fprintln(w, t.Render())
}

// =============================================================================
// holidays
// =============================================================================

func newHolidaysCmd() *cobra.Command {
	var (
		year     int
		optional bool
	)

	cmd := &cobra.Command{
		Use:   "holidays",
		Short: "List the Brazilian national holidays of a year",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, h := range (calendar.Brazil{IncludeOptional: optional}).Holidays(year) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %-9s  %s\n", h.Date.Key(), h.Date.Weekday(), h.Name)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&year, "year", time.Now().Year(), "calendar year")
	cmd.Flags().BoolVar(&optional, "optional", false, "include Carnival and Corpus Christi")
	return cmd
}

// =============================================================================
// rules
// =============================================================================

func newRulesCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Print the effective rules as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			rules, err := loadRules(path, "")
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(factory.NewRulesFactory().ToJSON(rules))
		},
	}

	cmd.Flags().StringVar(&path, "rules", "", "JSON or TOML rules document")
	return cmd
}
