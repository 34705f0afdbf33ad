package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jordanlanch/talentdb/pkg/models"
)

func int64Ptr(i int64) *int64 { return &i }

func strPtr(s string) *string { return &s }

func TestRender_BasePass(t *testing.T) {
	tmpl := &models.Template{
		Subject: "Hi {candidate_name}, re: {job_title}",
		Body:    "Dear {candidate_name}, {company_name} would like to talk about the {job_title} role. Regards, {your_name}",
	}
	tc := templateContext{
		candidateName: "Ada Lovelace",
		jobTitle:      "Backend Engineer",
		companyName:   "Initech",
		yourName:      "Sam",
	}

	subject, body := render(tmpl, tc)
	assert.Equal(t, "Hi Ada Lovelace, re: Backend Engineer", subject)
	assert.Equal(t, "Dear Ada Lovelace, Initech would like to talk about the Backend Engineer role. Regards, Sam", body)
}

func TestRender_UnknownTokensPassThrough(t *testing.T) {
	tmpl := &models.Template{
		Subject: "Hello {candidate_name}",
		Body:    "Your code is {interview_code} and {not_a_token}",
	}
	tc := templateContext{candidateName: "Ada"}

	_, body := render(tmpl, tc)
	assert.Contains(t, body, "{interview_code}")
	assert.Contains(t, body, "{not_a_token}")
}

func TestRender_OfferTokensWithoutOfferPassThrough(t *testing.T) {
	tmpl := &models.Template{
		Subject: "Offer for {candidate_name}",
		Body:    "Salary: {salary}",
	}
	tc := templateContext{candidateName: "Ada"}

	_, body := render(tmpl, tc)
	assert.Equal(t, "Salary: {salary}", body)
}

func TestRender_OfferPass(t *testing.T) {
	tmpl := &models.Template{
		Subject: "Your offer: {position_title}",
		Body:    "Salary: {salary}. Start: {start_date}. Benefits: {benefits_list}. Notes: {notes}",
	}
	tc := templateContext{
		candidateName: "Ada",
		offer: &models.Offer{
			PositionTitle:  "Senior Backend Engineer",
			SalaryAmount:   int64Ptr(120000),
			SalaryCurrency: "USD",
			SalaryPeriod:   "yearly",
			StartDate:      strPtr("2026-09-15"),
			Benefits:       []string{"Health insurance", "Stock options", "Gym membership"},
			Notes:          "Relocation supported",
		},
	}

	subject, body := render(tmpl, tc)
	assert.Equal(t, "Your offer: Senior Backend Engineer", subject)
	assert.Equal(t, "Salary: $120,000 per year. Start: September 15, 2026. Benefits: Health insurance, Stock options, and Gym membership. Notes: Relocation supported", body)
}

func TestFormatSalary(t *testing.T) {
	tests := []struct {
		name  string
		offer *models.Offer
		want  string
	}{
		{
			name:  "usd yearly",
			offer: &models.Offer{SalaryAmount: int64Ptr(120000), SalaryCurrency: "USD", SalaryPeriod: "yearly"},
			want:  "$120,000 per year",
		},
		{
			name:  "eur monthly",
			offer: &models.Offer{SalaryAmount: int64Ptr(8500), SalaryCurrency: "EUR", SalaryPeriod: "monthly"},
			want:  "€8,500 per month",
		},
		{
			name:  "gbp hourly",
			offer: &models.Offer{SalaryAmount: int64Ptr(95), SalaryCurrency: "GBP", SalaryPeriod: "hourly"},
			want:  "£95 per hour",
		},
		{
			name:  "other currency uses code",
			offer: &models.Offer{SalaryAmount: int64Ptr(450000000), SalaryCurrency: "COP", SalaryPeriod: "yearly"},
			want:  "COP 450,000,000 per year",
		},
		{
			name:  "no amount",
			offer: &models.Offer{SalaryCurrency: "USD", SalaryPeriod: "yearly"},
			want:  "To be discussed",
		},
		{
			name:  "unknown period omits phrase",
			offer: &models.Offer{SalaryAmount: int64Ptr(100000), SalaryCurrency: "USD", SalaryPeriod: ""},
			want:  "$100,000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatSalary(tt.offer))
		})
	}
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "Not specified", formatDate(nil))
	assert.Equal(t, "Not specified", formatDate(strPtr("")))
	assert.Equal(t, "January 15, 2024", formatDate(strPtr("2024-01-15")))
	assert.Equal(t, "March 3, 2026", formatDate(strPtr("2026-03-03T10:30:00Z")))
	assert.Equal(t, "whenever works", formatDate(strPtr("whenever works")))
}

func TestFormatBenefits(t *testing.T) {
	assert.Equal(t, "Standard benefits package", formatBenefits(nil))
	assert.Equal(t, "Health, Dental", formatBenefits([]string{"Health", "Dental"}))

	assert.Equal(t, "Standard benefits package", formatBenefitsList(nil))
	assert.Equal(t, "Health", formatBenefitsList([]string{"Health"}))
	assert.Equal(t, "Health and Dental", formatBenefitsList([]string{"Health", "Dental"}))
	assert.Equal(t, "Health, Dental, and Vision", formatBenefitsList([]string{"Health", "Dental", "Vision"}))
}
