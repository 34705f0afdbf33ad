package workflow

import (
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jordanlanch/talentdb/pkg/models"
)

// render applies the substitution passes to a template. Unknown tokens are
// left verbatim in the output on purpose; templates are user-authored and a
// typo'd token showing up literally in a preview is easier to diagnose than
// one that silently disappears.
func render(tmpl *models.Template, tc templateContext) (subject, body string) {
	subject = basePass(tmpl.Subject, tc)
	body = basePass(tmpl.Body, tc)

	if tc.offer != nil {
		subject = offerPass(subject, tc.offer)
		body = offerPass(body, tc.offer)
	}
	return subject, body
}

func basePass(s string, tc templateContext) string {
	s = strings.ReplaceAll(s, "{candidate_name}", tc.candidateName)
	s = strings.ReplaceAll(s, "{job_title}", tc.jobTitle)
	s = strings.ReplaceAll(s, "{company_name}", tc.companyName)
	s = strings.ReplaceAll(s, "{your_name}", tc.yourName)
	return s
}

func offerPass(s string, o *models.Offer) string {
	s = strings.ReplaceAll(s, "{position_title}", o.PositionTitle)
	s = strings.ReplaceAll(s, "{salary}", formatSalary(o))
	s = strings.ReplaceAll(s, "{salary_amount}", formatAmount(o.SalaryAmount))
	s = strings.ReplaceAll(s, "{salary_currency}", o.SalaryCurrency)
	s = strings.ReplaceAll(s, "{salary_period}", periodPhrase(o.SalaryPeriod))
	s = strings.ReplaceAll(s, "{start_date}", formatDate(o.StartDate))
	s = strings.ReplaceAll(s, "{expires_at}", formatDate(o.ExpiresAt))
	s = strings.ReplaceAll(s, "{benefits}", formatBenefits(o.Benefits))
	s = strings.ReplaceAll(s, "{benefits_list}", formatBenefitsList(o.Benefits))
	s = strings.ReplaceAll(s, "{notes}", o.Notes)
	return s
}

var englishPrinter = message.NewPrinter(language.English)

// formatSalary renders "$120,000 per year" style strings.
func formatSalary(o *models.Offer) string {
	if o.SalaryAmount == nil {
		return "To be discussed"
	}
	amount := currencySymbol(o.SalaryCurrency) + englishPrinter.Sprintf("%d", *o.SalaryAmount)
	if phrase := periodPhrase(o.SalaryPeriod); phrase != "" {
		return amount + " " + phrase
	}
	return amount
}

func formatAmount(amount *int64) string {
	if amount == nil {
		return "To be discussed"
	}
	return englishPrinter.Sprintf("%d", *amount)
}

func currencySymbol(currency string) string {
	switch currency {
	case "USD", "":
		return "$"
	case "EUR":
		return "€"
	case "GBP":
		return "£"
	default:
		return currency + " "
	}
}

func periodPhrase(period string) string {
	switch period {
	case "yearly":
		return "per year"
	case "monthly":
		return "per month"
	case "hourly":
		return "per hour"
	default:
		return ""
	}
}

// dateLayouts are the formats offer dates are accepted in. Values that
// parse as none of them pass through verbatim.
var dateLayouts = []string{"2006-01-02", time.RFC3339}

func formatDate(raw *string) string {
	if raw == nil || *raw == "" {
		return "Not specified"
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, *raw); err == nil {
			return t.Format("January 2, 2006")
		}
	}
	return *raw
}

func formatBenefits(benefits []string) string {
	if len(benefits) == 0 {
		return "Standard benefits package"
	}
	return strings.Join(benefits, ", ")
}

// formatBenefitsList joins with an "and" conjunction before the final item:
// "Health insurance, Stock options, and Gym membership".
func formatBenefitsList(benefits []string) string {
	switch len(benefits) {
	case 0:
		return "Standard benefits package"
	case 1:
		return benefits[0]
	case 2:
		return benefits[0] + " and " + benefits[1]
	default:
		return strings.Join(benefits[:len(benefits)-1], ", ") + ", and " + benefits[len(benefits)-1]
	}
}
