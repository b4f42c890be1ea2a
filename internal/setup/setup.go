// Package setup provides an interactive terminal wizard that produces a
// starter config.yaml for the bot.
package setup

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/vutang50/binance-dca-bot/config"
)

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)

	stepStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true).
			MarginTop(1).
			MarginBottom(0)
)

const configFileName = "config.yaml"

// RunWizard launches the terminal configuration wizard and writes the
// resulting config.yaml to the working directory.
func RunWizard() error {
	var (
		asset      string
		currency   string
		sizeKind   string
		amountStr  string
		schedule   string
		useWeight  bool
		weightCfg  config.WeightConfig
		botToken   string
		chatID     string
		addAnother bool
		confirm    bool
	)

	// defaults
	currency = "USDT"
	amountStr = "100"
	schedule = "0 9 * * 1"

	var trades []config.TradeConfig

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("DCA BOT CONFIG WIZARD"))
	fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("A few questions and your bot is ready to buy.\n"))

	for {
		step := len(trades) + 1

		fmt.Println(stepStyle.Render(fmt.Sprintf("TRADE %d: ASSET", step)))
		err := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Asset to buy").
					Description("Base asset, e.g. BTC").
					Value(&asset).
					Validate(notEmpty("asset")),
				huh.NewInput().
					Title("Currency to spend").
					Description("Quote asset, e.g. USDT").
					Value(&currency).
					Validate(notEmpty("currency")),
			),
		).Run()
		if err != nil {
			return err
		}

		fmt.Println(stepStyle.Render(fmt.Sprintf("TRADE %d: SIZE", step)))
		err = huh.NewForm(
			huh.NewGroup(
				huh.NewSelect[string]().
					Title("How should the order be sized?").
					Options(
						huh.NewOption("Spend a fixed amount of "+strings.ToUpper(currency), "quote"),
						huh.NewOption("Buy a fixed amount of "+strings.ToUpper(asset), "base"),
					).
					Value(&sizeKind),
				huh.NewInput().
					Title("Amount").
					Value(&amountStr).
					Validate(validateAmount),
			),
		).Run()
		if err != nil {
			return err
		}

		fmt.Println(stepStyle.Render(fmt.Sprintf("TRADE %d: SCHEDULE", step)))
		err = huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Cron schedule").
					Description("Standard 5-field cron, empty for a one-off buy at startup").
					Value(&schedule),
			),
		).Run()
		if err != nil {
			return err
		}

		trade := config.TradeConfig{
			Asset:    strings.ToUpper(strings.TrimSpace(asset)),
			Currency: strings.ToUpper(strings.TrimSpace(currency)),
			Schedule: strings.TrimSpace(schedule),
		}
		if sizeKind == "base" {
			trade.Quantity = amountStr
		} else {
			trade.QuoteOrderQty = amountStr

			err = huh.NewForm(
				huh.NewGroup(
					huh.NewConfirm().
						Title("Adjust the spend dynamically?").
						Description("Scales the amount with the Mayer Multiple and distance from the all-time high").
						Affirmative("Yes").
						Negative("No").
						Value(&useWeight),
				),
			).Run()
			if err != nil {
				return err
			}

			if useWeight {
				weightCfg = config.WeightConfig{
					MaxATHFactor:     "1.0",
					MayerMultipleAvg: "1.2",
					MayerMultipleMax: "2.4",
				}
				fmt.Println(stepStyle.Render(fmt.Sprintf("TRADE %d: WEIGHTING", step)))
				err = huh.NewForm(
					huh.NewGroup(
						huh.NewInput().
							Title("All-time high price").
							Value(&weightCfg.ATH).
							Validate(validateAmount),
						huh.NewInput().
							Title("Max ATH factor").
							Value(&weightCfg.MaxATHFactor).
							Validate(validateAmount),
						huh.NewInput().
							Title("Average Mayer Multiple").
							Value(&weightCfg.MayerMultipleAvg).
							Validate(validateAmount),
						huh.NewInput().
							Title("Max Mayer Multiple").
							Value(&weightCfg.MayerMultipleMax).
							Validate(validateAmount),
					),
				).Run()
				if err != nil {
					return err
				}
				w := weightCfg
				trade.Weight = &w
			}
		}

		trades = append(trades, trade)

		err = huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title("Add another trade?").
					Affirmative("Yes").
					Negative("No").
					Value(&addAnother),
			),
		).Run()
		if err != nil {
			return err
		}
		if !addAnother {
			break
		}
		asset, useWeight, addAnother = "", false, false
	}

	fmt.Println(stepStyle.Render("NOTIFICATIONS"))
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Telegram bot token").
				Description("Leave empty to skip Telegram notifications").
				Value(&botToken),
			huh.NewInput().
				Title("Telegram chat ID").
				Value(&chatID),
		),
	).Run()
	if err != nil {
		return err
	}

	cfg := config.Config{Trades: trades}
	cfg.Telegram.BotToken = strings.TrimSpace(botToken)
	cfg.Telegram.ChatID = strings.TrimSpace(chatID)

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("REVIEW"))
	fmt.Println(renderSummary(trades))

	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Write " + configFileName + "?").
				Affirmative("Save").
				Negative("Cancel").
				Value(&confirm),
		),
	).Run()
	if err != nil {
		return err
	}
	if !confirm {
		fmt.Println("Aborted, nothing written.")
		return nil
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(configFileName, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", configFileName, err)
	}

	fmt.Println(lipgloss.NewStyle().Foreground(special).Bold(true).Render("\nSaved " + configFileName))
	fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("Set BINANCE_API_KEY and BINANCE_API_SECRET, then start the bot."))
	return nil
}

func renderSummary(trades []config.TradeConfig) string {
	var b strings.Builder
	for _, t := range trades {
		switch {
		case t.Quantity != "":
			fmt.Fprintf(&b, "%s %s", t.Quantity, t.Asset)
		default:
			fmt.Fprintf(&b, "%s %s worth of %s", t.QuoteOrderQty, t.Currency, t.Asset)
		}
		if t.Schedule != "" {
			fmt.Fprintf(&b, " on schedule %q", t.Schedule)
		} else {
			b.WriteString(" once at startup")
		}
		if t.Weight != nil {
			b.WriteString(" (dynamic sizing)")
		}
		b.WriteString("\n")
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(highlight).
		Padding(1, 2).
		Render(strings.TrimRight(b.String(), "\n"))
}

func notEmpty(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s cannot be empty", field)
		}
		return nil
	}
}

func validateAmount(s string) error {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("must be a number")
	}
	if d.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("must be positive")
	}
	return nil
}
