package notify

import (
	"bytes"
	"fmt"
	"html/template"
)

// statementTemplate renders the monthly statement email. The commission
// rate shown is the rate the settlement stored, so the statement can
// never disagree with the ledger.
var statementTemplate = template.Must(template.New("statement").Parse(`<!DOCTYPE html>
<html>
<body>
  <p>Hello {{.PartnerName}},</p>
  <p>Here is your fleet settlement for <strong>{{.MonthLabel}}</strong>:</p>
  <table>
    <tr><td>Bookings</td><td>{{.BookingsCount}}</td></tr>
    <tr><td>Gross revenue</td><td>{{.GrossRevenue}} {{.Currency}}</td></tr>
    <tr><td>Commission ({{.RatePercent}})</td><td>-{{.CommissionAmount}} {{.Currency}}</td></tr>
    <tr><td><strong>Your payout</strong></td><td><strong>{{.NetPayout}} {{.Currency}}</strong></td></tr>
  </table>
  <p>The payout is transferred to your registered bank account within 5 business days.</p>
</body>
</html>
`))

type statementView struct {
	PartnerName      string
	MonthLabel       string
	BookingsCount    int
	GrossRevenue     string
	RatePercent      string
	CommissionAmount string
	NetPayout        string
	Currency         string
}

// RenderStatement produces the subject and HTML body for a statement.
func RenderStatement(stmt Statement) (subject string, body string, err error) {
	monthLabel := stmt.Month.Format("January 2006")
	view := statementView{
		PartnerName:      stmt.PartnerName,
		MonthLabel:       monthLabel,
		BookingsCount:    stmt.BookingsCount,
		GrossRevenue:     stmt.GrossRevenue.StringFixed(0),
		RatePercent:      stmt.CommissionRate.Shift(2).String() + "%",
		CommissionAmount: stmt.CommissionAmount.StringFixed(0),
		NetPayout:        stmt.NetPayout.StringFixed(0),
		Currency:         stmt.Currency,
	}

	var buf bytes.Buffer
	if err := statementTemplate.Execute(&buf, view); err != nil {
		return "", "", err
	}
	subject = fmt.Sprintf("Your fleet settlement for %s", monthLabel)
	return subject, buf.String(), nil
}
