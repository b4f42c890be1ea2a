package notifier

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vutang50/binance-dca-bot/internal/domain"
)

// Subjects shared by all channels.
const (
	SubjectStartup    = "DCA bot started"
	SubjectOrder      = "Purchase executed"
	SubjectOrderFail  = "Purchase failed"
	SubjectSkipped    = "Purchase skipped"
	SubjectLowBalance = "Low balance warning"
)

// FormatStartupSummary describes every configured trade in human-readable
// form. describe turns a cron expression into natural language.
func FormatStartupSummary(trades []domain.TradeSpec, describe func(string) string) string {
	var b strings.Builder
	b.WriteString("The following trades are configured:\n")
	for _, trade := range trades {
		when := "immediately"
		if trade.Schedule != "" {
			when = describe(trade.Schedule)
		}
		fmt.Fprintf(&b, "• buying %s: %s\n", trade.String(), when)
	}
	return b.String()
}

// FormatOrderPlaced builds the detailed success message for one order.
func FormatOrderPlaced(trade domain.TradeSpec, order *domain.OrderResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Bought %s %s for %s %s\n\n",
		order.ExecutedQty.String(), trade.Asset,
		order.CumulativeQuoteQty.String(), trade.Currency)
	fmt.Fprintf(&b, "Order ID: %d\n", order.OrderID)
	fmt.Fprintf(&b, "Time: %s\n", order.TransactTime.UTC().Format(time.RFC1123))
	fmt.Fprintf(&b, "Average price: %s %s\n", order.AveragePrice().Round(2).String(), trade.Currency)

	if len(order.Fills) > 0 {
		b.WriteString("\nFills:\n")
		for _, fill := range order.Fills {
			fmt.Fprintf(&b, "• %s %s @ %s %s (fee %s %s)\n",
				fill.Quantity.String(), trade.Asset,
				fill.Price.String(), trade.Currency,
				fill.Commission.String(), fill.CommissionAsset)
		}
	}
	return b.String()
}

// FormatOrderFailed builds the failure message.
func FormatOrderFailed(trade domain.TradeSpec, reason string) string {
	return fmt.Sprintf("Buying %s failed: %s", trade.String(), reason)
}

// FormatPurchaseSkipped explains a firing the weighting algorithm zeroed out.
func FormatPurchaseSkipped(trade domain.TradeSpec) string {
	return fmt.Sprintf("Buying %s was skipped: the weighting algorithm reduced the spend to zero at the current price", trade.String())
}

// FormatLowBalance warns that fewer purchases of this size remain affordable.
func FormatLowBalance(currency string, free, totalCost, factor decimal.Decimal) string {
	return fmt.Sprintf("Only %s %s left free; fewer than %s more purchases of %s %s remain affordable",
		free.String(), currency, factor.String(), totalCost.String(), currency)
}
