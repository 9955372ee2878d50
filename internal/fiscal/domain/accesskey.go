package domain

import (
	"fmt"
	"time"
)

// AccessKeyInput carries everything that goes into the 49-digit key.
type AccessKeyInput struct {
	IssuedAt      time.Time
	DocType       string // TypeCodeInvoice / TypeCodeCreditNote
	RUC           string // 13 digits
	Environment   Environment
	Establishment string // 3 digits
	EmissionPoint string // 3 digits
	Sequential    int64
	NumericCode   string // 8 digits, fixed per installation
	EmissionType  string // "1" normal
}

// BuildAccessKey renders the 48-digit body and appends the module-11
// check digit.
func BuildAccessKey(in AccessKeyInput) string {
	body := fmt.Sprintf("%s%s%s%s%s%s%09d%s%s",
		in.IssuedAt.Format("02012006"),
		in.DocType,
		in.RUC,
		in.Environment.Code(),
		in.Establishment,
		in.EmissionPoint,
		in.Sequential,
		in.NumericCode,
		in.EmissionType,
	)
	return body + checkDigit(body)
}

// checkDigit is module 11 with weights 2..7 cycling from the rightmost
// digit; 11 maps to 0 and 10 maps to 1.
func checkDigit(body string) string {
	weight := 2
	sum := 0
	for i := len(body) - 1; i >= 0; i-- {
		sum += int(body[i]-'0') * weight
		weight++
		if weight > 7 {
			weight = 2
		}
	}
	digit := 11 - (sum % 11)
	switch digit {
	case 11:
		digit = 0
	case 10:
		digit = 1
	}
	return fmt.Sprintf("%d", digit)
}
