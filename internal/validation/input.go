package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// Константы валидации
const (
	MinPasswordLength    = 6
	MaxPasswordLength    = 100
	MinNameLength        = 1
	MaxNameLength        = 100
	MaxAddressLength     = 300
	MaxTypeLength        = 100
	MaxDescriptionLength = 5000
)

var (
	phoneRegex       = regexp.MustCompile(`^[0-9]{10}$`)
	emailLocalRegex  = regexp.MustCompile(`^[a-z0-9._+-]+$`)
	emailDomainRegex = regexp.MustCompile(`^[a-z0-9.-]+\.[a-z]{2,}$`)
)

// Форматы, в которых принимается дата инцидента.
var incidentDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
}

// NormalizeEmail приводит email к каноническому виду хранения.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail проверяет формат email.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email обязателен")
	}

	email = NormalizeEmail(email)

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return fmt.Errorf("некорректный формат email")
	}

	localPart := parts[0]
	domainPart := parts[1]

	if len(localPart) == 0 || len(localPart) > 64 {
		return fmt.Errorf("локальная часть email должна быть от 1 до 64 символов")
	}

	if len(domainPart) == 0 || len(domainPart) > 255 {
		return fmt.Errorf("доменная часть email должна быть от 1 до 255 символов")
	}

	if !emailLocalRegex.MatchString(localPart) {
		return fmt.Errorf("локальная часть email содержит недопустимые символы")
	}

	if !emailDomainRegex.MatchString(domainPart) {
		return fmt.Errorf("доменная часть email имеет некорректный формат")
	}

	return nil
}

// ValidatePassword проверяет пароль при регистрации.
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("пароль обязателен")
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return fmt.Errorf("пароль должен быть не менее %d символов", MinPasswordLength)
	}
	if utf8.RuneCountInString(password) > MaxPasswordLength {
		return fmt.Errorf("пароль должен быть не более %d символов", MaxPasswordLength)
	}
	return nil
}

// ValidatePhone проверяет номер телефона: ровно 10 цифр.
func ValidatePhone(phone string) error {
	if phone == "" {
		return fmt.Errorf("номер телефона обязателен")
	}
	if !phoneRegex.MatchString(phone) {
		return fmt.Errorf("номер телефона должен состоять из 10 цифр")
	}
	return nil
}

// ValidateName проверяет имя заявителя.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("имя обязательно")
	}
	if err := ValidateLength("имя", name, MinNameLength, MaxNameLength); err != nil {
		return err
	}
	return nil
}

// ValidateAddress проверяет адрес заявителя. Поле необязательное,
// пустая строка допустима.
func ValidateAddress(address string) error {
	if address == "" {
		return nil
	}
	return ValidateLength("адрес", address, 0, MaxAddressLength)
}

// ValidateLength проверяет длину строки.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s должен быть не менее %d символов", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s должен быть не более %d символов", fieldName, max)
	}
	return nil
}

// ValidateReportType проверяет тип инцидента.
func ValidateReportType(reportType string) error {
	reportType = strings.TrimSpace(reportType)
	if reportType == "" {
		return fmt.Errorf("тип инцидента обязателен")
	}
	if err := ValidateLength("тип инцидента", reportType, 1, MaxTypeLength); err != nil {
		return err
	}
	return nil
}

// ValidateReportDescription проверяет описание инцидента.
func ValidateReportDescription(description string) error {
	description = strings.TrimSpace(description)
	if description == "" {
		return fmt.Errorf("описание обязательно")
	}
	if err := ValidateLength("описание", description, 1, MaxDescriptionLength); err != nil {
		return err
	}
	return nil
}

// ParseIncidentDate разбирает дату инцидента из поддерживаемых форматов.
func ParseIncidentDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("дата инцидента обязательна")
	}

	for _, layout := range incidentDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("некорректный формат даты")
}
