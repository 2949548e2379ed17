package thai

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/billydoc/backend/internal/domain/shared"
)

// Validation errors
var (
	ErrTaxIDFormat   = shared.NewDomainError("INVALID_TAX_ID", "Tax ID must be exactly 13 digits")
	ErrTaxIDChecksum = shared.NewDomainError("INVALID_TAX_ID_CHECKSUM", "Invalid tax ID checksum")
	ErrPhoneFormat   = shared.NewDomainError("INVALID_PHONE", "Invalid Thai phone number format")
	ErrNotThaiText   = shared.NewDomainError("INVALID_THAI_TEXT", "Text should contain Thai characters")
)

var (
	taxIDPattern = regexp.MustCompile(`^\d{13}$`)
	// landline 0XXXXXXXX, mobile 0[689]XXXXXXXX
	phonePatterns = []*regexp.Regexp{
		regexp.MustCompile(`^0[2-7]\d{7}$`),
		regexp.MustCompile(`^0[689]\d{8}$`),
	}
	phoneSeparators = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")
)

// MinThaiRatio is the share of Thai runes required by ValidateThaiText
const MinThaiRatio = 0.3

// ValidateTaxID checks a 13 digit Thai taxpayer identification number.
// The last digit is (11 - Σ d[i]*(13-i) mod 11) mod 10 over the first twelve.
func ValidateTaxID(taxID string) error {
	if !taxIDPattern.MatchString(taxID) {
		return ErrTaxIDFormat
	}

	sum := 0
	for i := 0; i < 12; i++ {
		sum += int(taxID[i]-'0') * (13 - i)
	}
	check := (11 - sum%11) % 10
	if int(taxID[12]-'0') != check {
		return ErrTaxIDChecksum
	}
	return nil
}

// NormalizePhone strips spaces, dashes and parentheses and folds a +66 prefix to 0
func NormalizePhone(phone string) string {
	p := phoneSeparators.Replace(strings.TrimSpace(phone))
	if strings.HasPrefix(p, "+66") {
		p = "0" + strings.TrimPrefix(p, "+66")
	}
	return p
}

// ValidatePhone checks a Thai landline or mobile number
func ValidatePhone(phone string) error {
	p := NormalizePhone(phone)
	for _, pattern := range phonePatterns {
		if pattern.MatchString(p) {
			return nil
		}
	}
	return ErrPhoneFormat
}

// ValidateThaiText requires at least MinThaiRatio of the trimmed text to be Thai script
func ValidateThaiText(text string) error {
	s := strings.TrimSpace(text)
	if s == "" {
		return ErrNotThaiText
	}

	total, thaiRunes := 0, 0
	for _, r := range s {
		total++
		if unicode.Is(unicode.Thai, r) {
			thaiRunes++
		}
	}
	if float64(thaiRunes) < float64(total)*MinThaiRatio {
		return ErrNotThaiText
	}
	return nil
}

var businessTerms = map[string]string{
	"invoice":     "ใบแจ้งหนี้",
	"receipt":     "ใบเสร็จรับเงิน",
	"quotation":   "ใบเสนอราคา",
	"tax":         "ภาษี",
	"vat":         "ภาษีมูลค่าเพิ่ม",
	"company":     "บริษัท",
	"limited":     "จำกัด",
	"address":     "ที่อยู่",
	"telephone":   "โทรศัพท์",
	"email":       "อีเมล",
	"customer":    "ลูกค้า",
	"payment":     "การชำระเงิน",
	"bank":        "ธนาคาร",
	"account":     "บัญชี",
	"amount":      "จำนวนเงิน",
	"total":       "รวมทั้งสิ้น",
	"subtotal":    "รวมเงิน",
	"discount":    "ส่วนลด",
	"tax_id":      "เลขประจำตัวผู้เสียภาษี",
	"description": "รายการ",
	"quantity":    "จำนวน",
	"unit_price":  "ราคาต่อหน่วย",
	"date":        "วันที่",
	"number":      "เลขที่",
	"note":        "หมายเหตุ",
	"signature":   "ลายมือชื่อ",
}

// BusinessTerm returns the Thai term for an English business word,
// or the input unchanged when no translation is known
func BusinessTerm(english string) string {
	if t, ok := businessTerms[strings.ToLower(english)]; ok {
		return t
	}
	return english
}
