// internal/financial/fetcher.go
package financial

import (
	"context"
	"fmt"
	"strings"

	httpclient "loan-intake-workers/internal/common/http"
)

type Source string

const (
	SourceCreditReport   Source = "credit_report"
	SourceEmployment     Source = "employment"
	SourceBankStatements Source = "bank_statements"
	SourceKYC            Source = "kyc"
	SourceFraudCheck     Source = "fraud_check"
	SourceITR            Source = "itr"
)

// AllSources lists every financial data source.
var AllSources = []Source{
	SourceCreditReport,
	SourceEmployment,
	SourceBankStatements,
	SourceKYC,
	SourceFraudCheck,
	SourceITR,
}

var toolNames = map[Source]string{
	SourceCreditReport:   "parse_credit_report",
	SourceEmployment:     "verify_employment",
	SourceBankStatements: "parse_bank_statements",
	SourceKYC:            "verify_kyc_details",
	SourceFraudCheck:     "check_fraud_indicators",
	SourceITR:            "parse_itr_fields",
}

// ToolName is the service endpoint that serves src.
func ToolName(src Source) string {
	return toolNames[src]
}

// Known response keys.
const (
	KeyCreditScore        = "credit_score"
	KeyEMIBurdenPct       = "emi_burden_pct"
	KeyMonthlyIncome      = "monthly_income"
	KeyEmploymentVerified = "is_verified"
	KeyEmployerName       = "employer_name"
	KeyAverageBalance     = "average_balance"
	KeyOverdraftInstances = "overdraft_instances"
	KeyKYCVerified        = "is_verified"
	KeyRiskScore          = "risk_score"
	KeyFraudAlerts        = "alerts"
	KeyAnnualIncome       = "annual_income"
	KeyConsistencyYears   = "consistency_years"
)

// Fetcher retrieves one source's data for an applicant.
type Fetcher interface {
	Fetch(ctx context.Context, applicantID string) (Response, error)
}

// Services maps each source to the fetcher that serves it.
type Services map[Source]Fetcher

// HTTPFetcher posts {"applicant_id"} to <baseURL>/tools/<tool>.
type HTTPFetcher struct {
	client  *httpclient.Client
	baseURL string
	source  Source
}

func NewHTTPFetcher(baseURL string, source Source, client *httpclient.Client) *HTTPFetcher {
	return &HTTPFetcher{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		source:  source,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, applicantID string) (Response, error) {
	tool := ToolName(f.source)
	if tool == "" {
		return nil, fmt.Errorf("unknown financial source %q", f.source)
	}

	var resp Response
	body := map[string]string{"applicant_id": applicantID}
	if err := f.client.PostJSON(ctx, f.baseURL+"/tools/"+tool, body, &resp); err != nil {
		return nil, fmt.Errorf("%s: %w", tool, err)
	}
	if resp == nil {
		resp = Response{}
	}
	return resp, nil
}

// NewHTTPServices builds an HTTP fetcher for every source against one service.
func NewHTTPServices(baseURL string, client *httpclient.Client) Services {
	services := make(Services, len(AllSources))
	for _, src := range AllSources {
		services[src] = NewHTTPFetcher(baseURL, src, client)
	}
	return services
}
