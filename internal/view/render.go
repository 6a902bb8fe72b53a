package view

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"allowance-client/internal/api"
	"allowance-client/internal/domain"
)

const DateLayout = "Jan 2, 2006, 15:04"

// Renderer escribe el estado del store como texto plano.
type Renderer struct {
	w   io.Writer
	loc *time.Location
}

func NewRenderer(w io.Writer, loc *time.Location) *Renderer {
	if loc == nil {
		loc = time.Local
	}
	return &Renderer{w: w, loc: loc}
}

func dash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// FormatDate acepta RFC 3339; si no parsea devuelve el texto tal cual.
func (r *Renderer) FormatDate(raw string) string {
	if raw == "" {
		return "-"
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return raw
	}
	return t.In(r.loc).Format(DateLayout)
}

func (r *Renderer) Session(s domain.Session) {
	if !s.IsAuthenticated || s.User == nil {
		fmt.Fprintln(r.w, "Not logged in.")
		return
	}
	fmt.Fprintf(r.w, "Logged in as %s (%s)\n", s.User.DisplayName(), s.User.Username)
}

func (r *Renderer) Rates(rates []domain.Rate) {
	if len(rates) == 0 {
		fmt.Fprintln(r.w, "No exchange rates available.")
		return
	}
	tw := tabwriter.NewWriter(r.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Currency\tRate to USD\tUpdated")
	for _, rate := range rates {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", dash(rate.CurrencyCode), dash(rate.RateToUSD.String()), r.FormatDate(rate.LastUpdated))
	}
	tw.Flush()
}

func (r *Renderer) Ads(ads []domain.Advertisement) {
	if len(ads) == 0 {
		fmt.Fprintln(r.w, "No promotions right now.")
		return
	}
	for _, ad := range ads {
		fmt.Fprintf(r.w, "* %s\n", dash(ad.Title))
		if ad.Description != "" {
			fmt.Fprintf(r.w, "  %s\n", ad.Description)
		}
		if ad.LinkURL != "" {
			fmt.Fprintf(r.w, "  %s\n", ad.LinkURL)
		}
	}
}

func (r *Renderer) Calculation(c domain.Calculation) {
	tw := tabwriter.NewWriter(r.w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Amount (USD)\t$%s\n", dash(c.AmountUSD.String()))
	fmt.Fprintf(tw, "Exchange rate\t%s\n", dash(c.ExchangeRate.String()))
	fmt.Fprintf(tw, "Fee\t$%s (%s%%)\n", dash(c.FeeAmount.String()), dash(c.FeePercentage.String()))
	fmt.Fprintf(tw, "Recipient gets\t%s\n", withCurrency(c.FinalAmount, c.TargetCurrency))
	tw.Flush()
}

func withCurrency(a domain.Amount, currency string) string {
	if a == "" {
		return "-"
	}
	return strings.TrimSpace(a.String() + " " + currency)
}

// History pinta la tabla y, si hay mas de una pagina, los controles.
func (r *Renderer) History(page domain.HistoryPage, requested int) {
	if len(page.Transactions) == 0 {
		fmt.Fprintln(r.w, "No transactions found.")
	} else {
		tw := tabwriter.NewWriter(r.w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tDate\tRecipient\tAmount (USD)\tCurrency\tExchange Rate\tFinal Amount\tStatus")
		for _, tx := range page.Transactions {
			amount := "-"
			if tx.AmountUSD != "" {
				amount = "$" + tx.AmountUSD.String()
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				dash(tx.ID),
				r.FormatDate(tx.Date()),
				dash(tx.RecipientName),
				amount,
				dash(tx.TargetCurrency),
				dash(tx.ExchangeRate.String()),
				withCurrency(tx.FinalAmount, tx.TargetCurrency),
				dash(tx.Status),
			)
		}
		tw.Flush()
	}

	p := Pager(page, requested)
	if p.Visible {
		fmt.Fprintf(r.w, "%s  Page %d of %d  %s\n", p.Previous, p.Current, p.Total, p.Next)
	}
}

func (r *Renderer) Transaction(tx domain.Transaction) {
	tw := tabwriter.NewWriter(r.w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Transaction\t%s\n", dash(tx.Ref()))
	if tx.TransactionID != "" && tx.TransactionID != tx.Ref() {
		fmt.Fprintf(tw, "Reference\t%s\n", tx.TransactionID)
	}
	fmt.Fprintf(tw, "Date\t%s\n", r.FormatDate(tx.Date()))
	fmt.Fprintf(tw, "Recipient\t%s\n", dash(tx.RecipientName))
	fmt.Fprintf(tw, "Amount (USD)\t%s\n", dash(tx.AmountUSD.String()))
	fmt.Fprintf(tw, "Exchange rate\t%s\n", dash(tx.ExchangeRate.String()))
	fmt.Fprintf(tw, "Fee\t%s\n", dash(tx.FeeAmount.String()))
	fmt.Fprintf(tw, "Final amount\t%s\n", withCurrency(tx.FinalAmount, tx.TargetCurrency))
	fmt.Fprintf(tw, "Status\t%s\n", dash(tx.Status))
	tw.Flush()
}

// Sent confirma un envio. El backend solo devuelve la referencia; el id que
// acepta el detalle aparece en la primera columna del historial.
func (r *Renderer) Sent(tx domain.Transaction) {
	fmt.Fprintf(r.w, "Transfer %s. Reference: %s\n", strings.ToLower(dash(tx.Status)), dash(tx.TransactionID))
	if tx.ID != "" {
		fmt.Fprintf(r.w, "Transaction id: %s\n", tx.ID)
		return
	}
	fmt.Fprintln(r.w, "Open History to find the transaction id for its details.")
}

// Error muestra un mensaje ya normalizado.
func (r *Renderer) Error(msg string) {
	fmt.Fprintf(r.w, "Error: %s\n", msg)
}

// Failure muestra un error del store. Los rechazos de validacion se listan
// campo por campo; non_field_errors va sin etiqueta.
func (r *Renderer) Failure(err error, fallback string) {
	var apiErr *api.APIError
	if !errors.As(err, &apiErr) {
		r.Error(api.Message(err, fallback))
		return
	}
	fields := apiErr.FieldErrors()
	if len(fields) == 0 {
		r.Error(api.Message(err, fallback))
		return
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(r.w, "Error:")
	for _, name := range names {
		msg := strings.Join(fields[name], ", ")
		if name == "non_field_errors" {
			fmt.Fprintf(r.w, "  %s\n", msg)
			continue
		}
		fmt.Fprintf(r.w, "  %s: %s\n", name, msg)
	}
}
